package chat

import (
	"context"
	"strings"

	"github.com/Pushya04/Mental-Health-Chatbot/internal/model"
	"github.com/Pushya04/Mental-Health-Chatbot/pkg/models"
)

// Service is the generation orchestrator: it resolves parameters, builds the
// prompt, consults the identity intercept and drives the model registry.
type Service struct {
	registry       *model.Registry
	modelID        string
	defaults       models.GenParams
	maxInputTokens int
}

// NewService creates the orchestrator for the given default model
func NewService(registry *model.Registry, modelID string, defaults models.GenParams, maxInputTokens int) *Service {
	return &Service{
		registry:       registry,
		modelID:        modelID,
		defaults:       defaults,
		maxInputTokens: maxInputTokens,
	}
}

// DefaultModel returns the configured default model identifier
func (s *Service) DefaultModel() string {
	return s.modelID
}

// LoadedModels returns the identifiers currently cached by the registry
func (s *Service) LoadedModels() []string {
	return s.registry.Loaded()
}

// Generate answers one chat request. Identity questions short-circuit before
// any model work; everything else runs the full pipeline. A first call may be
// slow while the model loads. Errors are *model.ModelLoadError or
// *GenerationError; neither affects the registry cache or the process.
func (s *Service) Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
	if answer, ok := InterceptIdentity(req.Message); ok {
		return &models.GenerateResponse{Model: s.modelID, Text: answer}, nil
	}

	params := ResolveParams(s.defaults, req.ParamOverrides)

	handle, err := s.registry.Get(s.modelID)
	if err != nil {
		return nil, err
	}

	turns := BuildConversation(req.Message, req.History)
	prompt := RenderPrompt(handle.Tokenizer, turns)

	ids := handle.Tokenizer.Encode(prompt)
	ids = TruncateTail(ids, s.maxInputTokens)

	out, err := handle.Generator.Generate(ctx, ids, params)
	if err != nil {
		return nil, &GenerationError{ModelID: s.modelID, Err: err}
	}

	// Strip the echoed input, keep only the generated tail
	var gen []int64
	if len(out) > len(ids) {
		gen = out[len(ids):]
	}
	text := strings.TrimSpace(handle.Tokenizer.Decode(gen))

	return &models.GenerateResponse{Model: s.modelID, Text: text}, nil
}

// Warmup eagerly loads the default model and runs a short trial generation so
// the first real request doesn't pay the load cost.
func (s *Service) Warmup(ctx context.Context) error {
	handle, err := s.registry.Get(s.modelID)
	if err != nil {
		return err
	}

	turns := BuildConversation("hi", nil)
	prompt := RenderPrompt(handle.Tokenizer, turns)

	ids := TruncateTail(handle.Tokenizer.Encode(prompt), 256)
	params := s.defaults
	params.MaxNewTokens = 4

	if _, err := handle.Generator.Generate(ctx, ids, params); err != nil {
		return &GenerationError{ModelID: s.modelID, Err: err}
	}
	return nil
}

// TruncateTail bounds ids to at most max tokens, dropping the earliest ones so
// the most recent content survives.
func TruncateTail(ids []int64, max int) []int64 {
	if max > 0 && len(ids) > max {
		return ids[len(ids)-max:]
	}
	return ids
}
