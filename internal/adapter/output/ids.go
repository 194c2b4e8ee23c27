package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/notext/internal/model"
)

// IDsFormatter outputs just the notification IDs, one per line.
// Useful for piping to other commands (e.g., notext close --id).
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format writes notification IDs to the writer, one per line.
func (f *IDsFormatter) Format(w io.Writer, notifications []model.Notification) error {
	for _, n := range notifications {
		if _, err := fmt.Fprintln(w, n.ID); err != nil {
			return err
		}
	}
	return nil
}
