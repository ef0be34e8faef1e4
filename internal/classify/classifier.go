package classify

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/Pushya04/Mental-Health-Chatbot/internal/interfaces"
	"github.com/Pushya04/Mental-Health-Chatbot/pkg/models"
)

// EmotionLabels is the fixed label set, in the output order the emotion model
// was trained with.
var EmotionLabels = []string{"happy", "sad", "angry", "fear", "neutral"}

// RiskThreshold is the probability above which a message raises an alert flag
const RiskThreshold = 0.5

// maxSeqLen is the fixed input length both classifiers were trained with
const maxSeqLen = 100

// Classifier scores raw text with the emotion and suicide-risk models. Both
// share the word-index tokenizer and run over ONNX sessions.
type Classifier struct {
	dir     string
	tok     *WordIndexTokenizer
	emotion scorer
	risk    scorer
	loaded  bool
	mu      sync.RWMutex
}

// scorer produces a fixed-length score vector for one padded id sequence
type scorer interface {
	Score(seq []int64) ([]float32, error)
	Close() error
}

// NewClassifier creates a classifier reading models from dir
func NewClassifier(dir string) *Classifier {
	return &Classifier{dir: dir}
}

// Load initializes the tokenizer and both model sessions
func (c *Classifier) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return nil
	}

	tok, err := LoadWordIndex(filepath.Join(c.dir, "tokenizer_word_index.json"), maxSeqLen)
	if err != nil {
		return fmt.Errorf("failed to load tokenizer: %w", err)
	}

	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
		}
	}

	emotion, err := newONNXScorer(filepath.Join(c.dir, "emotion_model.onnx"), len(EmotionLabels))
	if err != nil {
		return fmt.Errorf("failed to load emotion model: %w", err)
	}

	risk, err := newONNXScorer(filepath.Join(c.dir, "model.onnx"), 2)
	if err != nil {
		_ = emotion.Close()
		return fmt.Errorf("failed to load risk model: %w", err)
	}

	c.tok = tok
	c.emotion = emotion
	c.risk = risk
	c.loaded = true
	return nil
}

// Assess returns the emotion label and risk probability for text. The emotion
// is the arg-max label; the risk probability is read from the final output
// position of the suicide model.
func (c *Classifier) Assess(text string) (*models.Assessment, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.loaded {
		return nil, fmt.Errorf("classifier not loaded")
	}

	seq := c.tok.Sequence(text)

	emoScores, err := c.emotion.Score(seq)
	if err != nil {
		return nil, fmt.Errorf("emotion inference failed: %w", err)
	}

	riskScores, err := c.risk.Score(seq)
	if err != nil {
		return nil, fmt.Errorf("risk inference failed: %w", err)
	}

	prob := float64(riskScores[len(riskScores)-1])

	return &models.Assessment{
		Emotion:  EmotionLabels[argmaxF32(emoScores)],
		RiskProb: prob,
		Flag:     prob >= RiskThreshold,
	}, nil
}

// IsLoaded returns whether the models are loaded
func (c *Classifier) IsLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Close releases both sessions
func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.emotion != nil {
		_ = c.emotion.Close()
		c.emotion = nil
	}
	if c.risk != nil {
		_ = c.risk.Close()
		c.risk = nil
	}
	c.loaded = false
	return nil
}

var _ interfaces.TextClassifier = (*Classifier)(nil)

// onnxScorer wraps one fixed-shape classification session. The in/out tensors
// are shared, so scoring is serialized on a mutex.
type onnxScorer struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	outLen  int
}

func newONNXScorer(modelPath string, outLen int) (*onnxScorer, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model not found at %s", modelPath)
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(maxSeqLen)), make([]float32, maxSeqLen))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	output, err := ort.NewTensor(ort.NewShape(1, int64(outLen)), make([]float32, outLen))
	if err != nil {
		_ = input.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input"},
		[]string{"output"},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		nil,
	)
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &onnxScorer{
		session: session,
		input:   input,
		output:  output,
		outLen:  outLen,
	}, nil
}

func (s *onnxScorer) Score(seq []int64) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := s.input.GetData()
	for i := range in {
		if i < len(seq) {
			in[i] = float32(seq[i])
		} else {
			in[i] = 0
		}
	}

	if err := s.session.Run(); err != nil {
		return nil, err
	}

	out := make([]float32, s.outLen)
	copy(out, s.output.GetData())
	return out, nil
}

func (s *onnxScorer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		_ = s.session.Destroy()
		s.session = nil
	}
	if s.input != nil {
		_ = s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		_ = s.output.Destroy()
		s.output = nil
	}
	return nil
}

func argmaxF32(scores []float32) int {
	best := 0
	for i, v := range scores {
		if v > scores[best] {
			best = i
		}
	}
	return best
}
