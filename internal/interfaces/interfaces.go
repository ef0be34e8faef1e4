package interfaces

import (
	"context"

	"github.com/Pushya04/Mental-Health-Chatbot/pkg/models"
)

// Tokenizer converts between text and token ids for one model
type Tokenizer interface {
	// Encode converts text into token ids
	Encode(text string) []int64
	// Decode converts token ids back into text, dropping special tokens
	Decode(ids []int64) string
	// PadID returns the padding token id, or -1 if unset
	PadID() int64
	// SetPadID sets the padding token id
	SetPadID(id int64)
	// EOSID returns the end-of-sequence token id, or -1 if unset
	EOSID() int64
	// SetEOSID sets the end-of-sequence token id
	SetEOSID(id int64)
}

// ChatTemplater is the optional model-native prompt templating capability.
// Tokenizers that ship a chat template implement it; callers must fall back
// to a fixed textual format when the capability is absent or returns an error.
type ChatTemplater interface {
	// ApplyChatTemplate renders a conversation into a generation-ready prompt,
	// including the cue for the assistant's next turn
	ApplyChatTemplate(turns []models.Turn) (string, error)
}

// Generator runs causal-language-model inference
type Generator interface {
	// Generate produces output token ids for the given input ids. The returned
	// sequence echoes the input ids followed by the newly generated ids.
	Generate(ctx context.Context, inputIDs []int64, params models.GenParams) ([]int64, error)
}

// ModelStore loads tokenizer/generator pairs from disk
type ModelStore interface {
	// Load obtains the tokenizer and generator for a model identifier
	Load(modelID string) (Tokenizer, Generator, error)
}

// TextClassifier scores raw text with the separately trained sequence models
type TextClassifier interface {
	// Assess returns the emotion label and risk-of-harm probability for text
	Assess(text string) (*models.Assessment, error)
}

// ChatStore persists chat exchanges and risk alerts
type ChatStore interface {
	// SaveExchange stores one user/assistant round trip
	SaveExchange(ex *models.Exchange) (int64, error)
	// SaveAlert records a high-risk message for follow-up
	SaveAlert(sessionID, message string, riskProb float64) error
	// History returns the stored turns for a session, oldest first
	History(sessionID string, limit int) ([]models.Turn, error)
}
