package models

// Role names used in normalized conversations
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn represents one message in a conversation, tagged with a role
type Turn struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// GenParams holds the final, resolved generation parameters
type GenParams struct {
	MaxNewTokens      int     `json:"max_new_tokens" yaml:"max_new_tokens"`
	Temperature       float64 `json:"temperature" yaml:"temperature"`
	TopP              float64 `json:"top_p" yaml:"top_p"`
	RepetitionPenalty float64 `json:"repetition_penalty" yaml:"repetition_penalty"`
	DoSample          bool    `json:"do_sample" yaml:"do_sample"`
}

// ParamOverrides carries optional per-request parameter overrides.
// A nil field means "keep the configured default".
type ParamOverrides struct {
	MaxNewTokens      *int     `json:"max_new_tokens,omitempty"`
	Temperature       *float64 `json:"temperature,omitempty"`
	TopP              *float64 `json:"top_p,omitempty"`
	RepetitionPenalty *float64 `json:"repetition_penalty,omitempty"`
}

// GenerateRequest is the body of POST /generate
type GenerateRequest struct {
	Message   string `json:"message"`
	History   []Turn `json:"history,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	ParamOverrides
}

// GenerateResponse is the body of a successful generation
type GenerateResponse struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

// HealthResponse reports service status and cached models
type HealthResponse struct {
	OK           bool     `json:"ok"`
	DefaultModel string   `json:"default_model"`
	Loaded       []string `json:"loaded"`
}

// Assessment is the result of the emotion/risk classification pipeline
type Assessment struct {
	Emotion  string  `json:"emotion"`
	RiskProb float64 `json:"suicide_prob"`
	Flag     bool    `json:"flag"`
}

// Exchange is one stored user/assistant round trip
type Exchange struct {
	ID        int64   `json:"id"`
	SessionID string  `json:"session_id"`
	Message   string  `json:"message"`
	Reply     string  `json:"reply"`
	Model     string  `json:"model"`
	Emotion   string  `json:"emotion,omitempty"`
	RiskProb  float64 `json:"suicide_prob,omitempty"`
	CreatedAt int64   `json:"created_at"`
}
