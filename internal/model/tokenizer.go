package model

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/Pushya04/Mental-Health-Chatbot/pkg/models"
)

var wordRe = regexp.MustCompile(`[\w]+|[^\s\w]`)

// VocabTokenizer tokenizes text against a vocab.txt file (one token per line,
// id = line number). Words missing from the vocabulary are split greedily into
// "##"-prefixed sub-word pieces, with [UNK]/<unk> as the last resort.
type VocabTokenizer struct {
	vocab     map[string]int64
	idToToken map[int64]string
	unkID     int64
	padID     int64
	eosID     int64
	bosID     int64
	tmpl      *template.Template
}

// LoadVocabTokenizer reads the vocabulary and optional chat template from a
// model directory.
func LoadVocabTokenizer(modelDir string) (*VocabTokenizer, error) {
	data, err := os.ReadFile(filepath.Join(modelDir, "vocab.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to read vocab file: %w", err)
	}

	vocab := make(map[string]int64)
	idToToken := make(map[int64]string)

	for i, line := range strings.Split(string(data), "\n") {
		token := strings.TrimSpace(line)
		if token == "" {
			continue
		}
		vocab[token] = int64(i)
		idToToken[int64(i)] = token
	}

	if len(vocab) == 0 {
		return nil, fmt.Errorf("vocab file is empty")
	}

	t := &VocabTokenizer{
		vocab:     vocab,
		idToToken: idToToken,
		unkID:     findSpecial(vocab, "<unk>", "[UNK]"),
		padID:     findSpecial(vocab, "<pad>", "[PAD]"),
		eosID:     findSpecial(vocab, "</s>", "[SEP]", "<|endoftext|>"),
		bosID:     findSpecial(vocab, "<s>", "[CLS]"),
	}
	if t.unkID < 0 {
		return nil, fmt.Errorf("vocab missing unknown-word token")
	}

	// Models that ship a chat template get the native prompt path; its
	// absence is expected and simply disables that path.
	tmplPath := filepath.Join(modelDir, "chat_template.tmpl")
	if raw, err := os.ReadFile(tmplPath); err == nil {
		tmpl, err := template.New("chat").Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse chat template: %w", err)
		}
		t.tmpl = tmpl
	}

	return t, nil
}

func findSpecial(vocab map[string]int64, names ...string) int64 {
	for _, name := range names {
		if id, ok := vocab[name]; ok {
			return id
		}
	}
	return -1
}

// Encode converts text into token ids
func (t *VocabTokenizer) Encode(text string) []int64 {
	words := wordRe.FindAllString(strings.ToLower(text), -1)

	var ids []int64
	for _, word := range words {
		for _, piece := range t.wordpiece(word) {
			id, ok := t.vocab[piece]
			if !ok {
				id = t.unkID
			}
			ids = append(ids, id)
		}
	}
	return ids
}

// Decode converts token ids back into text, skipping special tokens and
// rejoining sub-word pieces.
func (t *VocabTokenizer) Decode(ids []int64) string {
	var b strings.Builder
	for _, id := range ids {
		if id == t.padID || id == t.eosID || id == t.bosID || id == t.unkID {
			continue
		}
		token, ok := t.idToToken[id]
		if !ok {
			continue
		}
		if rest, joined := strings.CutPrefix(token, "##"); joined {
			b.WriteString(rest)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(token)
	}
	return b.String()
}

// ApplyChatTemplate renders the model's native chat template, erroring when
// the model ships none or the template itself fails.
func (t *VocabTokenizer) ApplyChatTemplate(turns []models.Turn) (string, error) {
	if t.tmpl == nil {
		return "", fmt.Errorf("model has no chat template")
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, map[string]interface{}{"Turns": turns}); err != nil {
		return "", fmt.Errorf("chat template failed: %w", err)
	}
	return buf.String(), nil
}

// VocabSize returns the number of entries in the vocabulary
func (t *VocabTokenizer) VocabSize() int {
	return len(t.vocab)
}

func (t *VocabTokenizer) PadID() int64      { return t.padID }
func (t *VocabTokenizer) SetPadID(id int64) { t.padID = id }
func (t *VocabTokenizer) EOSID() int64      { return t.eosID }
func (t *VocabTokenizer) SetEOSID(id int64) { t.eosID = id }

// wordpiece splits a word into sub-word tokens using greedy longest-match
func (t *VocabTokenizer) wordpiece(word string) []string {
	if len(word) == 0 {
		return nil
	}

	if _, ok := t.vocab[word]; ok {
		return []string{word}
	}

	var tokens []string
	start := 0

	for start < len(word) {
		end := len(word)
		var curToken string
		found := false

		for end > start {
			substr := word[start:end]
			if start > 0 {
				substr = "##" + substr
			}

			if _, ok := t.vocab[substr]; ok {
				curToken = substr
				found = true
				break
			}
			end--
		}

		if !found {
			if start > 0 {
				tokens = append(tokens, "##"+string(word[start]))
			} else {
				tokens = append(tokens, string(word[start]))
			}
			start++
		} else {
			tokens = append(tokens, curToken)
			start = end
		}
	}

	return tokens
}
