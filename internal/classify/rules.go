package classify

import (
	"regexp"
	"strings"

	"github.com/Pushya04/Mental-Health-Chatbot/internal/interfaces"
	"github.com/Pushya04/Mental-Health-Chatbot/pkg/models"
)

// emotionRules map keyword patterns onto the fixed label set. Checked in
// order; first hit wins.
var emotionRules = []struct {
	pattern *regexp.Regexp
	label   string
}{
	{regexp.MustCompile(`anxious|anxiety|nervous|panic|scared|terrified|afraid`), "fear"},
	{regexp.MustCompile(`sad|down|cry|alone|depress|hopeless`), "sad"},
	{regexp.MustCompile(`angry|mad|rage|furious`), "angry"},
	{regexp.MustCompile(`happy|glad|great|excited|grateful`), "happy"},
}

// RuleClassifier is the keyword fallback used when the trained models are
// unavailable. It labels emotion from keyword rules and reports no measurable
// risk, so a degraded classifier never raises false alerts.
type RuleClassifier struct{}

// Assess labels text using the keyword rules
func (RuleClassifier) Assess(text string) (*models.Assessment, error) {
	t := strings.ToLower(text)
	for _, rule := range emotionRules {
		if rule.pattern.MatchString(t) {
			return &models.Assessment{Emotion: rule.label}, nil
		}
	}
	return &models.Assessment{Emotion: "neutral"}, nil
}

var _ interfaces.TextClassifier = RuleClassifier{}
