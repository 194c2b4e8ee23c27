// Package input provides input adapters that read notification submissions
// for notext send.
package input

import (
	"context"
	"os"

	"github.com/jmylchreest/notext/internal/model"
)

// InputAdapter reads submissions from a source.
type InputAdapter interface {
	// Name returns the adapter identifier (e.g., "stdin", "file").
	Name() string

	// Import reads submissions from the source.
	// Returns the submissions and any error encountered.
	Import(ctx context.Context) ([]model.Submission, error)
}

// NewAdapter creates an InputAdapter for source: "-" or "stdin" reads
// standard input, anything else is a file path.
func NewAdapter(source string) (InputAdapter, error) {
	switch source {
	case "", "-", "stdin":
		return NewStdinAdapter(), nil
	default:
		f, err := os.Open(source)
		if err != nil {
			return nil, &AdapterError{
				Source:  source,
				Message: "failed to open input file",
				Err:     err,
			}
		}
		return &StdinAdapter{reader: f, name: "file", closer: f}, nil
	}
}

// AdapterError represents an adapter-related error.
type AdapterError struct {
	Source  string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
