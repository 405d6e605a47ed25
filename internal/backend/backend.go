// Package backend wraps the external text-generation service behind a
// narrow interface and adds bounded retry with response validation.
package backend

import (
	"context"
	"fmt"
)

// Completer is the completion backend contract. Any text-generation
// service satisfying this signature is interchangeable: a hosted LLM API,
// a local model server, or a test double.
type Completer interface {
	// Complete sends a single prompt and returns the raw completion text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// GenerationError reports that the backend failed to produce a valid
// response after all retry attempts were exhausted.
type GenerationError struct {
	Attempts int
	Err      error // last underlying cause
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("backend: generation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
