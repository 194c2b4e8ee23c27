package output

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/notext/internal/model"
)

// JSONFormatter formats notifications as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes notifications as a JSON array.
func (f *JSONFormatter) Format(w io.Writer, notifications []model.Notification) error {
	if notifications == nil {
		notifications = []model.Notification{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(notifications)
}

// FormatSingle writes a single notification as JSON.
func (f *JSONFormatter) FormatSingle(w io.Writer, n *model.Notification) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(n)
}

// YAMLFormatter formats notifications as a YAML sequence.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Format writes notifications as YAML.
func (f *YAMLFormatter) Format(w io.Writer, notifications []model.Notification) error {
	if notifications == nil {
		notifications = []model.Notification{}
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(notifications); err != nil {
		return err
	}
	return encoder.Close()
}
