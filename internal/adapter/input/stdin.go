package input

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmylchreest/notext/internal/model"
)

// StdinAdapter reads submissions from standard input or any reader.
type StdinAdapter struct {
	reader io.Reader
	name   string
	closer io.Closer
}

// NewStdinAdapter creates a new StdinAdapter reading from os.Stdin.
func NewStdinAdapter() *StdinAdapter {
	return &StdinAdapter{reader: os.Stdin, name: "stdin"}
}

// NewStdinAdapterWithReader creates a new StdinAdapter with a custom reader.
func NewStdinAdapterWithReader(r io.Reader) *StdinAdapter {
	return &StdinAdapter{reader: r, name: "stdin"}
}

// Name returns the adapter identifier.
func (a *StdinAdapter) Name() string {
	return a.name
}

// Import reads submissions from the reader.
// Supports two formats:
// 1. JSON array of objects
// 2. JSON lines, one object per line
func (a *StdinAdapter) Import(ctx context.Context) ([]model.Submission, error) {
	if a.closer != nil {
		defer func() { _ = a.closer.Close() }()
	}

	// Read all input
	scanner := bufio.NewScanner(a.reader)
	const maxSize = 10 * 1024 * 1024 // 10MB max
	scanner.Buffer(make([]byte, 64*1024), maxSize)

	var lines [][]byte
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		lines = append(lines, bytes.Clone(line))
	}

	if err := scanner.Err(); err != nil {
		return nil, &AdapterError{
			Source:  a.name,
			Message: "failed to read input",
			Err:     err,
		}
	}

	if len(lines) == 0 {
		return nil, nil
	}

	if lines[0][0] == '[' {
		return a.parseJSONArray(bytes.Join(lines, []byte("\n")))
	}
	return a.parseJSONLines(lines)
}

// parseJSONArray parses a JSON array of submissions.
func (a *StdinAdapter) parseJSONArray(data []byte) ([]model.Submission, error) {
	var entries []stdinEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &AdapterError{
			Source:  a.name,
			Message: "failed to parse JSON input",
			Err:     err,
		}
	}

	submissions := make([]model.Submission, 0, len(entries))
	for i, entry := range entries {
		s, err := entry.submission()
		if err != nil {
			return nil, &AdapterError{
				Source:  a.name,
				Message: fmt.Sprintf("invalid entry %d", i+1),
				Err:     err,
			}
		}
		submissions = append(submissions, s)
	}
	return submissions, nil
}

// parseJSONLines parses one JSON object per line.
func (a *StdinAdapter) parseJSONLines(lines [][]byte) ([]model.Submission, error) {
	submissions := make([]model.Submission, 0, len(lines))
	for i, line := range lines {
		var entry stdinEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, &AdapterError{
				Source:  a.name,
				Message: fmt.Sprintf("failed to parse line %d", i+1),
				Err:     err,
			}
		}
		s, err := entry.submission()
		if err != nil {
			return nil, &AdapterError{
				Source:  a.name,
				Message: fmt.Sprintf("invalid entry on line %d", i+1),
				Err:     err,
			}
		}
		submissions = append(submissions, s)
	}
	return submissions, nil
}

// stdinEntry represents a submission in the simple JSON format.
// Field names follow the json output of notext list; unknown fields such as id are ignored.
type stdinEntry struct {
	AppName       string `json:"app_name"`
	Summary       string `json:"summary"`
	Body          string `json:"body"`
	ReplacesID    uint32 `json:"replaces_id,omitempty"`
	ExpireTimeout *int32 `json:"expire_timeout,omitempty"`
}

// submission converts an entry to a validated Submission.
func (e stdinEntry) submission() (model.Submission, error) {
	s := model.Submission{
		AppName:       sanitizeString(e.AppName),
		ReplacesID:    e.ReplacesID,
		Summary:       sanitizeString(e.Summary),
		Body:          sanitizeString(e.Body),
		ExpireTimeout: model.TimeoutDefault,
	}
	if e.ExpireTimeout != nil {
		s.ExpireTimeout = *e.ExpireTimeout
	}
	if s.Summary == "" {
		return model.Submission{}, fmt.Errorf("summary is required")
	}
	if err := s.Validate(); err != nil {
		return model.Submission{}, err
	}
	return s, nil
}

// sanitizeString removes control characters and trims surrounding whitespace.
func sanitizeString(s string) string {
	// Replace control characters with spaces
	var result strings.Builder
	for _, r := range s {
		if r < 32 && r != '\n' && r != '\t' {
			result.WriteRune(' ')
		} else {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}
