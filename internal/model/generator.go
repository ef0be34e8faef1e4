package model

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/Pushya04/Mental-Health-Chatbot/pkg/models"
)

// ONNXGenerator runs the causal-LM decoding loop over a fixed-shape ONNX
// session. The session's tensors are shared state, so generation calls are
// serialized on an internal mutex; concurrent requests against the same model
// queue here.
type ONNXGenerator struct {
	mu            sync.Mutex
	session       *ort.AdvancedSession
	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	logits        *ort.Tensor[float32]
	maxSeqLen     int
	vocabSize     int
	padID         int64
	eosID         int64
}

// Generate produces output ids for inputIDs with the given parameters. The
// returned sequence echoes the input followed by the generated tail. The call
// blocks until complete; the context is only checked between decode steps.
func (g *ONNXGenerator) Generate(ctx context.Context, inputIDs []int64, params models.GenParams) ([]int64, error) {
	if len(inputIDs) == 0 {
		return nil, fmt.Errorf("empty input sequence")
	}
	if len(inputIDs) >= g.maxSeqLen {
		return nil, fmt.Errorf("input of %d tokens exceeds session limit %d", len(inputIDs), g.maxSeqLen)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	seq := make([]int64, len(inputIDs), len(inputIDs)+params.MaxNewTokens)
	copy(seq, inputIDs)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for step := 0; step < params.MaxNewTokens; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		g.fillInputs(seq)
		if err := g.session.Run(); err != nil {
			return nil, fmt.Errorf("inference failed: %w", err)
		}

		// Logits for the last real position of the sequence
		offset := (len(seq) - 1) * g.vocabSize
		stepLogits := g.logits.GetData()[offset : offset+g.vocabSize]

		next := pickToken(stepLogits, seq, params, rng)
		seq = append(seq, next)

		if g.eosID >= 0 && next == g.eosID {
			break
		}
		if len(seq) >= g.maxSeqLen {
			break
		}
	}

	out := make([]int64, len(seq))
	copy(out, seq)
	return out, nil
}

// fillInputs writes the sequence into the session's fixed-shape input tensors
func (g *ONNXGenerator) fillInputs(seq []int64) {
	ids := g.inputIDs.GetData()
	mask := g.attentionMask.GetData()

	pad := g.padID
	if pad < 0 {
		pad = 0
	}

	for i := 0; i < g.maxSeqLen; i++ {
		if i < len(seq) {
			ids[i] = seq[i]
			mask[i] = 1
		} else {
			ids[i] = pad
			mask[i] = 0
		}
	}
}

// Close releases the session and its tensors
func (g *ONNXGenerator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session != nil {
		_ = g.session.Destroy()
		g.session = nil
	}
	if g.inputIDs != nil {
		_ = g.inputIDs.Destroy()
		g.inputIDs = nil
	}
	if g.attentionMask != nil {
		_ = g.attentionMask.Destroy()
		g.attentionMask = nil
	}
	if g.logits != nil {
		_ = g.logits.Destroy()
		g.logits = nil
	}
	return nil
}

// pickToken selects the next token id from raw logits. Sampling applies
// repetition penalty, temperature scaling and top-p filtering; with sampling
// disabled it degrades to argmax.
func pickToken(logits []float32, seq []int64, params models.GenParams, rng *rand.Rand) int64 {
	scores := make([]float64, len(logits))
	for i, v := range logits {
		scores[i] = float64(v)
	}

	if params.RepetitionPenalty > 1 {
		applyRepetitionPenalty(scores, seq, params.RepetitionPenalty)
	}

	if !params.DoSample || params.Temperature <= 0 {
		return argmax(scores)
	}

	for i := range scores {
		scores[i] /= params.Temperature
	}

	probs := softmax(scores)
	probs = topPFilter(probs, params.TopP)

	r := rng.Float64()
	var cum float64
	for i, p := range probs {
		cum += p
		if r <= cum {
			return int64(i)
		}
	}
	return argmax(scores)
}

func applyRepetitionPenalty(scores []float64, seq []int64, penalty float64) {
	seen := make(map[int64]bool, len(seq))
	for _, id := range seq {
		seen[id] = true
	}
	for id := range seen {
		if id < 0 || int(id) >= len(scores) {
			continue
		}
		if scores[id] > 0 {
			scores[id] /= penalty
		} else {
			scores[id] *= penalty
		}
	}
}

func argmax(scores []float64) int64 {
	best := 0
	for i, v := range scores {
		if v > scores[best] {
			best = i
		}
	}
	return int64(best)
}

func softmax(scores []float64) []float64 {
	maxScore := scores[0]
	for _, v := range scores {
		if v > maxScore {
			maxScore = v
		}
	}

	probs := make([]float64, len(scores))
	var sum float64
	for i, v := range scores {
		probs[i] = math.Exp(v - maxScore)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// topPFilter zeroes out the low-probability tail beyond the nucleus mass and
// renormalizes the remainder.
func topPFilter(probs []float64, topP float64) []float64 {
	if topP <= 0 || topP >= 1 {
		return probs
	}

	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return probs[order[a]] > probs[order[b]]
	})

	keep := make(map[int]bool, len(order))
	var cum float64
	for _, idx := range order {
		keep[idx] = true
		cum += probs[idx]
		if cum >= topP {
			break
		}
	}

	var kept float64
	filtered := make([]float64, len(probs))
	for idx := range keep {
		filtered[idx] = probs[idx]
		kept += probs[idx]
	}
	if kept > 0 {
		for i := range filtered {
			filtered[i] /= kept
		}
	}
	return filtered
}
