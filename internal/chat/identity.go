package chat

import (
	"regexp"
	"strings"
)

// IdentityAnswer is the fixed branding statement returned for identity
// questions, regardless of what the underlying model would say.
const IdentityAnswer = "I am EmpaTalk, an AI assistant created by Pushya and team for mental health support."

// identityPatterns is the fixed, ordered rule table for meta-questions about
// the assistant's identity and origin. Matching is done on the trimmed,
// lower-cased message.
var identityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`who (are|is) (you|empatalk|the agent)`),
	regexp.MustCompile(`what (ai|model|agent|bot) (are|is) (this|you|empatalk)`),
	regexp.MustCompile(`which ai model`),
	regexp.MustCompile(`what is your name`),
	regexp.MustCompile(`who created (you|empatalk|the agent|this)`),
	regexp.MustCompile(`who made (you|empatalk|the agent|this)`),
	regexp.MustCompile(`are you (alibaba|openai|gpt|chatgpt|cloud)`),
	regexp.MustCompile(`what is alibaba cloud`),
	regexp.MustCompile(`who owns you`),
}

// InterceptIdentity checks a message against the identity rule table. On a
// match it returns the canned answer and true; callers must then skip prompt
// rendering and model invocation entirely.
func InterceptIdentity(message string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(message))
	for _, pat := range identityPatterns {
		if pat.MatchString(q) {
			return IdentityAnswer, true
		}
	}
	return "", false
}
