package model

import "fmt"

// ModelLoadError indicates the tokenizer or model could not be obtained from
// the store. The registry cache is left unchanged, so a later request retries
// the load.
type ModelLoadError struct {
	ModelID string
	Err     error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("failed to load model %s: %v", e.ModelID, e.Err)
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}
