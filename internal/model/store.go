package model

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/Pushya04/Mental-Health-Chatbot/internal/interfaces"
)

// ONNXStore loads tokenizer/generator pairs from model directories on disk.
// A model directory holds model.onnx, vocab.txt and optionally
// chat_template.tmpl.
type ONNXStore struct {
	maxSeqLen  int
	numThreads int
	initOnce   sync.Once
	initErr    error
}

// NewONNXStore creates a store. maxSeqLen bounds the generation session's
// fixed input shape; numThreads is the intra-op thread hint for the compute
// backend.
func NewONNXStore(maxSeqLen, numThreads int) *ONNXStore {
	return &ONNXStore{
		maxSeqLen:  maxSeqLen,
		numThreads: numThreads,
	}
}

// Load obtains the tokenizer and generator for a model directory
func (s *ONNXStore) Load(modelID string) (interfaces.Tokenizer, interfaces.Generator, error) {
	modelPath := filepath.Join(modelID, "model.onnx")
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("model not found at %s", modelPath)
	}

	tok, err := LoadVocabTokenizer(modelID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	// The classifier may have brought the runtime up already
	s.initOnce.Do(func() {
		if !ort.IsInitialized() {
			s.initErr = ort.InitializeEnvironment()
		}
	})
	if s.initErr != nil {
		return nil, nil, fmt.Errorf("failed to initialize ONNX Runtime: %w", s.initErr)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer func() { _ = options.Destroy() }()

	if err := options.SetIntraOpNumThreads(s.numThreads); err != nil {
		return nil, nil, fmt.Errorf("failed to set threads: %w", err)
	}

	vocabSize := tok.VocabSize()
	seqLen := int64(s.maxSeqLen)

	inputIDs, err := ort.NewTensor(ort.NewShape(1, seqLen), make([]int64, s.maxSeqLen))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	attentionMask, err := ort.NewTensor(ort.NewShape(1, seqLen), make([]int64, s.maxSeqLen))
	if err != nil {
		_ = inputIDs.Destroy()
		return nil, nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	logits, err := ort.NewTensor(ort.NewShape(1, seqLen, int64(vocabSize)),
		make([]float32, s.maxSeqLen*vocabSize))
	if err != nil {
		_ = inputIDs.Destroy()
		_ = attentionMask.Destroy()
		return nil, nil, fmt.Errorf("failed to create logits tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		[]ort.ArbitraryTensor{inputIDs, attentionMask},
		[]ort.ArbitraryTensor{logits},
		options,
	)
	if err != nil {
		_ = inputIDs.Destroy()
		_ = attentionMask.Destroy()
		_ = logits.Destroy()
		return nil, nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	gen := &ONNXGenerator{
		session:       session,
		inputIDs:      inputIDs,
		attentionMask: attentionMask,
		logits:        logits,
		maxSeqLen:     s.maxSeqLen,
		vocabSize:     vocabSize,
		padID:         tok.PadID(),
		eosID:         tok.EOSID(),
	}

	return tok, gen, nil
}
