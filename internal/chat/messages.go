package chat

import (
	"strings"

	"github.com/Pushya04/Mental-Health-Chatbot/pkg/models"
)

// Persona is the fixed system instruction prepended to every conversation
const Persona = "You are an empathetic, helpful assistant for mental-health support. " +
	"Be clear, kind, non-judgmental, and avoid medical claims. " +
	"If user indicates crisis, advise contacting local professional help."

// NormalizeRole maps an arbitrary role string onto the canonical role set.
// Roles already in the set pass through; "human"/"client"-like aliases become
// user; anything else is treated as assistant.
func NormalizeRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	switch r {
	case models.RoleUser, models.RoleAssistant, models.RoleSystem:
		return r
	case "human", "client":
		return models.RoleUser
	default:
		return models.RoleAssistant
	}
}

// BuildConversation assembles the canonical conversation: one persona system
// turn, the normalized history in original order, then the current message as
// a trailing user turn. History content is never altered.
func BuildConversation(message string, history []models.Turn) []models.Turn {
	turns := make([]models.Turn, 0, len(history)+2)
	turns = append(turns, models.Turn{Role: models.RoleSystem, Content: Persona})
	for _, t := range history {
		turns = append(turns, models.Turn{Role: NormalizeRole(t.Role), Content: t.Content})
	}
	turns = append(turns, models.Turn{Role: models.RoleUser, Content: message})
	return turns
}
