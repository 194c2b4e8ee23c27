// Package render prints the daemon state for status bars.
//
// Each change event produces one record of "tag|type|value" lines followed by
// a blank line, the script format read by bars such as yambar:
//
//	app_id|string|Firefox
//	summary|string|Download complete
//	body|string|file.zip
//	index|int|1
//	len|int|3
//	has|bool|true
package render

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mattn/go-runewidth"

	"github.com/jmylchreest/notext/internal/registry"
)

// StateSource provides the state a record is rendered from.
type StateSource interface {
	Snapshot() registry.View
}

// Printer drains the change stream and writes one record per event.
type Printer struct {
	source  StateSource
	changes *registry.Changes
	logger  *slog.Logger

	mu sync.Mutex
	w  *bufio.Writer

	bodyLimit atomic.Int64
}

// NewPrinter creates a printer writing to w.
func NewPrinter(source StateSource, changes *registry.Changes, w io.Writer, logger *slog.Logger) *Printer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Printer{
		source:  source,
		changes: changes,
		logger:  logger,
		w:       bufio.NewWriter(w),
	}
}

// SetBodyLimit sets the display width the body is cut to in the compact
// view. 0 means unlimited.
func (p *Printer) SetBodyLimit(limit int) {
	if limit < 0 {
		limit = 0
	}
	p.bodyLimit.Store(int64(limit))
}

// Run prints the initial state and then one record per change event until
// ctx is cancelled or the change stream is closed.
func (p *Printer) Run(ctx context.Context) error {
	if err := p.Print(false); err != nil {
		return err
	}

	for {
		ev, err := p.changes.Next(ctx)
		if err != nil {
			if errors.Is(err, registry.ErrChangesClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		p.logger.Debug("rendering", "event", ev.Kind, "id", ev.ID)
		if err := p.Print(ev.Kind == registry.EventExpanded); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
}

// Print writes a record for the current state. expanded prints the whole body.
func (p *Printer) Print(expanded bool) error {
	view := p.source.Snapshot()

	p.mu.Lock()
	defer p.mu.Unlock()

	if !view.Has {
		writeRecord(p.w, "", "", "", 0, 0, false)
		return p.w.Flush()
	}

	body := flatten(view.Current.Body)
	if !expanded {
		if limit := int(p.bodyLimit.Load()); limit > 0 {
			body = runewidth.Truncate(body, limit, "…")
		}
	}

	writeRecord(p.w,
		flatten(view.Current.AppName),
		flatten(view.Current.Summary),
		body,
		view.Index+1,
		view.Len,
		true,
	)
	return p.w.Flush()
}

func writeRecord(w io.Writer, app, summary, body string, index, n int, has bool) {
	fmt.Fprintf(w, "app_id|string|%s\n", app)
	fmt.Fprintf(w, "summary|string|%s\n", summary)
	fmt.Fprintf(w, "body|string|%s\n", body)
	fmt.Fprintf(w, "index|int|%d\n", index)
	fmt.Fprintf(w, "len|int|%d\n", n)
	fmt.Fprintf(w, "has|bool|%t\n\n", has)
}

// flatten keeps a value on one line; a newline would end the field.
func flatten(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}
