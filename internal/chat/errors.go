package chat

import "fmt"

// GenerationError indicates tokenization or generation failed for one request.
// It is fatal for the request but never for the process.
type GenerationError struct {
	ModelID string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed for model %s: %v", e.ModelID, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
