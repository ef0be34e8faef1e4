package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/Pushya04/Mental-Health-Chatbot/internal/interfaces"
	"github.com/Pushya04/Mental-Health-Chatbot/pkg/models"
)

// MockTokenizer is a deterministic in-memory tokenizer for testing. Its
// default behavior assigns ids to whitespace-separated words on first sight,
// so Decode(Encode(text)) round-trips.
type MockTokenizer struct {
	EncodeFunc func(text string) []int64
	DecodeFunc func(ids []int64) string

	mu    sync.Mutex
	words []string
	ids   map[string]int64
	pad   int64
	eos   int64
}

// NewMockTokenizer creates a mock tokenizer with eos id 0 and no pad token
func NewMockTokenizer() *MockTokenizer {
	return &MockTokenizer{
		words: []string{"</s>"},
		ids:   map[string]int64{"</s>": 0},
		pad:   -1,
		eos:   0,
	}
}

func (m *MockTokenizer) Encode(text string) []int64 {
	if m.EncodeFunc != nil {
		return m.EncodeFunc(text)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []int64
	for _, word := range strings.Fields(text) {
		id, ok := m.ids[word]
		if !ok {
			id = int64(len(m.words))
			m.ids[word] = id
			m.words = append(m.words, word)
		}
		out = append(out, id)
	}
	return out
}

func (m *MockTokenizer) Decode(ids []int64) string {
	if m.DecodeFunc != nil {
		return m.DecodeFunc(ids)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var words []string
	for _, id := range ids {
		if id == m.eos || id == m.pad {
			continue
		}
		if id >= 0 && int(id) < len(m.words) {
			words = append(words, m.words[id])
		}
	}
	return strings.Join(words, " ")
}

func (m *MockTokenizer) PadID() int64      { return m.pad }
func (m *MockTokenizer) SetPadID(id int64) { m.pad = id }
func (m *MockTokenizer) EOSID() int64      { return m.eos }
func (m *MockTokenizer) SetEOSID(id int64) { m.eos = id }

var _ interfaces.Tokenizer = (*MockTokenizer)(nil)

// MockTemplateTokenizer is a MockTokenizer with a native chat template
type MockTemplateTokenizer struct {
	MockTokenizer
	ApplyChatTemplateFunc func(turns []models.Turn) (string, error)
}

func (m *MockTemplateTokenizer) ApplyChatTemplate(turns []models.Turn) (string, error) {
	if m.ApplyChatTemplateFunc != nil {
		return m.ApplyChatTemplateFunc(turns)
	}
	var b strings.Builder
	for _, t := range turns {
		b.WriteString("<|" + t.Role + "|>")
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	b.WriteString("<|assistant|>")
	return b.String(), nil
}

var _ interfaces.ChatTemplater = (*MockTemplateTokenizer)(nil)

// MockGenerator is a mock generator for testing
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, inputIDs []int64, params models.GenParams) ([]int64, error)

	mu    sync.Mutex
	calls int
}

func (m *MockGenerator) Generate(ctx context.Context, inputIDs []int64, params models.GenParams) ([]int64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, inputIDs, params)
	}
	// Default: echo the input with no new tokens
	out := make([]int64, len(inputIDs))
	copy(out, inputIDs)
	return out, nil
}

// Calls returns how many times Generate was invoked
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var _ interfaces.Generator = (*MockGenerator)(nil)

// MockModelStore is a mock model store for testing registry behavior
type MockModelStore struct {
	LoadFunc func(modelID string) (interfaces.Tokenizer, interfaces.Generator, error)

	mu    sync.Mutex
	loads int
}

func (m *MockModelStore) Load(modelID string) (interfaces.Tokenizer, interfaces.Generator, error) {
	m.mu.Lock()
	m.loads++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc(modelID)
	}
	return NewMockTokenizer(), &MockGenerator{}, nil
}

// Loads returns how many times Load was invoked
func (m *MockModelStore) Loads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

var _ interfaces.ModelStore = (*MockModelStore)(nil)

// MockClassifier is a mock text classifier for testing
type MockClassifier struct {
	AssessFunc func(text string) (*models.Assessment, error)
}

func (m *MockClassifier) Assess(text string) (*models.Assessment, error) {
	if m.AssessFunc != nil {
		return m.AssessFunc(text)
	}
	return &models.Assessment{Emotion: "neutral"}, nil
}

var _ interfaces.TextClassifier = (*MockClassifier)(nil)

// MockChatStore is an in-memory chat store for testing
type MockChatStore struct {
	SaveExchangeFunc func(ex *models.Exchange) (int64, error)
	SaveAlertFunc    func(sessionID, message string, riskProb float64) error
	HistoryFunc      func(sessionID string, limit int) ([]models.Turn, error)

	mu        sync.Mutex
	Exchanges []models.Exchange
	Alerts    []string
}

func (m *MockChatStore) SaveExchange(ex *models.Exchange) (int64, error) {
	if m.SaveExchangeFunc != nil {
		return m.SaveExchangeFunc(ex)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Exchanges = append(m.Exchanges, *ex)
	return int64(len(m.Exchanges)), nil
}

func (m *MockChatStore) SaveAlert(sessionID, message string, riskProb float64) error {
	if m.SaveAlertFunc != nil {
		return m.SaveAlertFunc(sessionID, message, riskProb)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Alerts = append(m.Alerts, message)
	return nil
}

func (m *MockChatStore) History(sessionID string, limit int) ([]models.Turn, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(sessionID, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var turns []models.Turn
	for _, ex := range m.Exchanges {
		if ex.SessionID != sessionID {
			continue
		}
		turns = append(turns, models.Turn{Role: models.RoleUser, Content: ex.Message})
		turns = append(turns, models.Turn{Role: models.RoleAssistant, Content: ex.Reply})
	}
	return turns, nil
}

var _ interfaces.ChatStore = (*MockChatStore)(nil)
