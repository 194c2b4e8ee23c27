package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/jmylchreest/notext/internal/model"
)

// DmenuFormatter formats notifications for dmenu/rofi/fuzzel.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) *DmenuFormatter {
	f := &DmenuFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("dmenu").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes notifications in dmenu format (one per line).
func (f *DmenuFormatter) Format(w io.Writer, notifications []model.Notification) error {
	for i, n := range notifications {
		line := f.formatLine(i+1, &n)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// formatLine formats a single notification line.
func (f *DmenuFormatter) formatLine(index int, n *model.Notification) string {
	// Use custom template if available
	if f.template != nil {
		var buf strings.Builder
		data := templateData{
			Index:        index,
			Current:      index == f.opts.Current,
			Notification: n,
			RelativeTime: relativeTime(n.ReceivedAt),
		}
		if err := f.template.Execute(&buf, data); err == nil {
			return buf.String()
		}
	}

	// Default format: [index] [time] [app] summary: body
	var parts []string
	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}

	if f.opts.ShowIndex {
		parts = append(parts, fmt.Sprintf("%d", index))
	}

	if f.opts.ShowTime {
		parts = append(parts, relativeTime(n.ReceivedAt))
	}

	if f.opts.ShowApp && n.AppName != "" {
		parts = append(parts, n.AppName)
	}

	// Summary and body
	content := n.Summary
	if n.Body != "" {
		body := sanitizeBody(n.Body, f.opts.BodyMaxWidth, f.opts.IncludeNewline)
		if body != "" {
			content += ": " + body
		}
	}
	parts = append(parts, content)

	return strings.Join(parts, sep)
}

// templateData provides data for custom templates.
type templateData struct {
	Index        int
	Current      bool
	Notification *model.Notification
	RelativeTime string
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": truncate,
		"reltime":  relativeTime,
	}
}

// relativeTime returns a human-readable relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.Time(t)
}

// truncate shortens s to at most width display columns, marking the cut with
// an ellipsis. A width of 0 or less leaves s unchanged.
func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

// sanitizeBody cleans up body text for single-line display.
func sanitizeBody(body string, maxWidth int, includeNewline bool) string {
	// Replace newlines with spaces unless explicitly included
	if !includeNewline {
		body = strings.ReplaceAll(body, "\n", " ")
		body = strings.ReplaceAll(body, "\r", "")
	}

	// Collapse multiple spaces
	for strings.Contains(body, "  ") {
		body = strings.ReplaceAll(body, "  ", " ")
	}

	body = strings.TrimSpace(body)

	return truncate(body, maxWidth)
}
