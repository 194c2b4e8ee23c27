// Package output provides output formatters for notifications.
package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/notext/internal/model"
)

// Formatter formats notifications for output.
type Formatter interface {
	// Format writes formatted notifications to the writer.
	Format(w io.Writer, notifications []model.Notification) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatDmenu FormatType = "dmenu"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatIDs   FormatType = "ids"
)

// FormatTypes lists every supported format, for flag help and validation.
var FormatTypes = []FormatType{FormatPlain, FormatDmenu, FormatJSON, FormatYAML, FormatIDs}

// ParseFormatType returns the FormatType named by s.
func ParseFormatType(s string) (FormatType, error) {
	for _, f := range FormatTypes {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of %v)", s, FormatTypes)
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatDmenu:
		return NewDmenuFormatter(opts)
	case FormatIDs:
		return NewIDsFormatter()
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template       string // Custom template for dmenu/plain format
	ShowIndex      bool   // Show 1-based index prefix
	ShowTime       bool   // Show relative time
	ShowApp        bool   // Show app name
	BodyMaxWidth   int    // Maximum body width in display columns (0 = unlimited)
	Separator      string // Field separator for dmenu format
	IncludeNewline bool   // Include newlines in body (default: replace with space)
	Current        int    // 1-based position of the selected notification, 0 if none
}

// DefaultFormatterOptions returns sensible defaults for terminal output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:      true,
		ShowTime:       true,
		ShowApp:        true,
		BodyMaxWidth:   80,
		Separator:      " | ",
		IncludeNewline: false,
	}
}
