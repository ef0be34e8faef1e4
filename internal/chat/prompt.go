package chat

import (
	"strings"

	"github.com/Pushya04/Mental-Health-Chatbot/internal/interfaces"
	"github.com/Pushya04/Mental-Health-Chatbot/pkg/models"
)

// RenderPrompt turns a conversation into a single text prompt. Models with a
// native chat template get it applied; when the tokenizer has no template
// capability, or the template itself errors, the fixed fallback format is used.
func RenderPrompt(tok interfaces.Tokenizer, turns []models.Turn) string {
	if ct, ok := tok.(interfaces.ChatTemplater); ok {
		prompt, err := ct.ApplyChatTemplate(turns)
		if err == nil {
			return prompt
		}
	}
	return FallbackPrompt(turns)
}

// FallbackPrompt renders the fixed textual prompt format. It is deterministic
// and cannot fail; there is no further fallback level below it.
func FallbackPrompt(turns []models.Turn) string {
	var b strings.Builder
	if len(turns) > 0 {
		b.WriteString("<s>[SYSTEM]: ")
		b.WriteString(turns[0].Content)
		for _, t := range turns[1:] {
			b.WriteString("\n[")
			b.WriteString(roleTag(t.Role))
			b.WriteString("]: ")
			b.WriteString(t.Content)
		}
	}
	b.WriteString("\n[ASSISTANT]:")
	return b.String()
}

func roleTag(role string) string {
	switch role {
	case models.RoleUser:
		return "USER"
	case models.RoleAssistant:
		return "ASSISTANT"
	default:
		return "SYSTEM"
	}
}
