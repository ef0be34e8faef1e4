package classify

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// WordIndexTokenizer converts text into fixed-length id sequences using a
// word-to-index vocabulary exported at training time. Words outside the
// vocabulary map to 0, and sequences are post-padded/post-truncated.
type WordIndexTokenizer struct {
	index  map[string]int64
	maxLen int
}

// LoadWordIndex reads the tokenizer_word_index.json vocabulary
func LoadWordIndex(path string, maxLen int) (*WordIndexTokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read word index: %w", err)
	}

	var index map[string]int64
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse word index: %w", err)
	}
	if len(index) == 0 {
		return nil, fmt.Errorf("word index is empty")
	}

	return &WordIndexTokenizer{
		index:  index,
		maxLen: maxLen,
	}, nil
}

// Sequence converts text into a padded id sequence of exactly maxLen entries
func (t *WordIndexTokenizer) Sequence(text string) []int64 {
	seq := make([]int64, t.maxLen)

	i := 0
	for _, word := range strings.Fields(text) {
		if i >= t.maxLen {
			break
		}
		seq[i] = t.index[strings.ToLower(word)]
		i++
	}
	return seq
}
