package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Pushya04/Mental-Health-Chatbot/internal/interfaces"
	"github.com/Pushya04/Mental-Health-Chatbot/internal/mocks"
	"github.com/Pushya04/Mental-Health-Chatbot/internal/model"
	"github.com/Pushya04/Mental-Health-Chatbot/pkg/models"
)

// captureStore wires a service whose tokenizer records the rendered prompt
// and whose generator records the resolved parameters.
type capture struct {
	prompt string
	params models.GenParams
	store  *mocks.MockModelStore
	gen    *mocks.MockGenerator
}

func newCaptureService(t *testing.T) (*Service, *capture) {
	t.Helper()

	cap := &capture{}

	tok := mocks.NewMockTokenizer()
	tok.EncodeFunc = func(text string) []int64 {
		cap.prompt = text
		return []int64{1, 2, 3}
	}
	tok.DecodeFunc = func(ids []int64) string {
		return fmt.Sprintf("  reply(%d tokens)  ", len(ids))
	}

	cap.gen = &mocks.MockGenerator{
		GenerateFunc: func(ctx context.Context, inputIDs []int64, params models.GenParams) ([]int64, error) {
			cap.params = params
			out := append(append([]int64{}, inputIDs...), 10, 11)
			return out, nil
		},
	}

	cap.store = &mocks.MockModelStore{
		LoadFunc: func(modelID string) (interfaces.Tokenizer, interfaces.Generator, error) {
			return tok, cap.gen, nil
		},
	}

	registry := model.NewRegistry(cap.store)
	svc := NewService(registry, "test-model", defaultParams(), 1024)
	return svc, cap
}

func TestGenerateIdentityIntercept(t *testing.T) {
	svc, cap := newCaptureService(t)

	resp, err := svc.Generate(context.Background(), &models.GenerateRequest{Message: "Who made you?"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if resp.Text != IdentityAnswer {
		t.Errorf("Expected the fixed identity answer, got %q", resp.Text)
	}
	if resp.Model != "test-model" {
		t.Errorf("Expected model id in response, got %q", resp.Model)
	}
	if cap.store.Loads() != 0 {
		t.Errorf("Model must never be loaded for intercepted messages, loads=%d", cap.store.Loads())
	}
}

func TestGenerateSimpleMessage(t *testing.T) {
	svc, cap := newCaptureService(t)

	resp, err := svc.Generate(context.Background(), &models.GenerateRequest{Message: "Hello"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.Contains(cap.prompt, Persona) {
		t.Error("Rendered prompt should contain the persona text")
	}
	if !strings.HasSuffix(cap.prompt, "[ASSISTANT]:") {
		t.Errorf("Rendered prompt should end with the assistant cue, got %q", cap.prompt)
	}
	if cap.params != defaultParams() {
		t.Errorf("Expected configured defaults, got %+v", cap.params)
	}
	// Echoed input stripped: only the 2 generated ids reach decode, and the
	// result is whitespace-trimmed.
	if resp.Text != "reply(2 tokens)" {
		t.Errorf("Unexpected response text %q", resp.Text)
	}
}

func TestGenerateMapsHistoryRoles(t *testing.T) {
	svc, cap := newCaptureService(t)

	_, err := svc.Generate(context.Background(), &models.GenerateRequest{
		Message: "how are you",
		History: []models.Turn{{Role: "human", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.Contains(cap.prompt, "[USER]: hi") {
		t.Errorf("History human turn should render as USER, prompt: %q", cap.prompt)
	}
	if !strings.Contains(cap.prompt, "[USER]: how are you") {
		t.Errorf("Current message should render as trailing USER turn, prompt: %q", cap.prompt)
	}
}

func TestGenerateTemperatureOverride(t *testing.T) {
	svc, cap := newCaptureService(t)

	temp := 0.2
	_, err := svc.Generate(context.Background(), &models.GenerateRequest{
		Message:        "Hello",
		ParamOverrides: models.ParamOverrides{Temperature: &temp},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if cap.params.Temperature != 0.2 {
		t.Errorf("Expected temperature override 0.2, got %v", cap.params.Temperature)
	}
	if cap.params.MaxNewTokens != 96 || cap.params.TopP != 0.9 {
		t.Errorf("Other fields should keep defaults, got %+v", cap.params)
	}
}

func TestGenerateModelLoadFailureRetries(t *testing.T) {
	failures := 1
	store := &mocks.MockModelStore{
		LoadFunc: func(modelID string) (interfaces.Tokenizer, interfaces.Generator, error) {
			if failures > 0 {
				failures--
				return nil, nil, fmt.Errorf("store offline")
			}
			return mocks.NewMockTokenizer(), &mocks.MockGenerator{}, nil
		},
	}
	registry := model.NewRegistry(store)
	svc := NewService(registry, "test-model", defaultParams(), 1024)

	_, err := svc.Generate(context.Background(), &models.GenerateRequest{Message: "Hello"})
	var loadErr *model.ModelLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected ModelLoadError, got %v", err)
	}
	if len(registry.Loaded()) != 0 {
		t.Errorf("Failed load must not leave a cache entry, loaded=%v", registry.Loaded())
	}

	// The next call retries the load and succeeds
	if _, err := svc.Generate(context.Background(), &models.GenerateRequest{Message: "Hello"}); err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	if store.Loads() != 2 {
		t.Errorf("Expected exactly 2 load attempts, got %d", store.Loads())
	}
}

func TestGenerateWrapsGeneratorError(t *testing.T) {
	svc, cap := newCaptureService(t)
	cap.gen.GenerateFunc = func(ctx context.Context, inputIDs []int64, params models.GenParams) ([]int64, error) {
		return nil, fmt.Errorf("decode blew up")
	}

	_, err := svc.Generate(context.Background(), &models.GenerateRequest{Message: "Hello"})
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Expected GenerationError, got %v", err)
	}
	if genErr.ModelID != "test-model" {
		t.Errorf("Expected model id on error, got %q", genErr.ModelID)
	}
}

func TestTruncateTail(t *testing.T) {
	tests := []struct {
		name     string
		ids      []int64
		max      int
		expected []int64
	}{
		{"Under limit", []int64{1, 2, 3}, 5, []int64{1, 2, 3}},
		{"At limit", []int64{1, 2, 3}, 3, []int64{1, 2, 3}},
		{"Over limit keeps tail", []int64{1, 2, 3, 4, 5}, 3, []int64{3, 4, 5}},
		{"Zero max disables", []int64{1, 2, 3}, 0, []int64{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateTail(tt.ids, tt.max)
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Fatalf("Expected %v, got %v", tt.expected, got)
				}
			}
		})
	}
}
