package render

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/notext/internal/model"
	"github.com/jmylchreest/notext/internal/registry"
)

// syncBuffer lets the test read what the printer goroutine writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) records() []string {
	return strings.Split(strings.TrimSuffix(b.String(), "\n\n"), "\n\n")
}

func submit(reg *registry.Registry, app, summary, body string) uint32 {
	return reg.Submit(model.Submission{
		AppName:       app,
		Summary:       summary,
		Body:          body,
		ExpireTimeout: model.TimeoutNever,
	}, time.Now()).ID
}

func TestPrinter_PrintEmpty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(registry.New(), registry.NewChanges(), &buf, nil)

	require.NoError(t, p.Print(false))

	assert.Equal(t, "app_id|string|\n"+
		"summary|string|\n"+
		"body|string|\n"+
		"index|int|0\n"+
		"len|int|0\n"+
		"has|bool|false\n\n", buf.String())
}

func TestPrinter_PrintCurrent(t *testing.T) {
	reg := registry.New()
	submit(reg, "App1", "Hi", "first")
	submit(reg, "App2", "Yo", "second")
	reg.Prev()

	var buf bytes.Buffer
	p := NewPrinter(reg, registry.NewChanges(), &buf, nil)
	require.NoError(t, p.Print(false))

	assert.Equal(t, "app_id|string|App1\n"+
		"summary|string|Hi\n"+
		"body|string|first\n"+
		"index|int|1\n"+
		"len|int|2\n"+
		"has|bool|true\n\n", buf.String())
}

func TestPrinter_BodyLimit(t *testing.T) {
	reg := registry.New()
	submit(reg, "mail", "New mail", "a rather long body\nspanning lines")

	tests := []struct {
		name     string
		limit    int
		expanded bool
		want     string
	}{
		{"unlimited", 0, false, "body|string|a rather long body spanning lines"},
		{"compact", 8, false, "body|string|a rathe…"},
		{"expanded ignores limit", 8, true, "body|string|a rather long body spanning lines"},
		{"negative treated as unlimited", -3, false, "body|string|a rather long body spanning lines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := NewPrinter(reg, registry.NewChanges(), &buf, nil)
			p.SetBodyLimit(tt.limit)

			require.NoError(t, p.Print(tt.expanded))
			assert.Contains(t, strings.Split(buf.String(), "\n"), tt.want)
		})
	}
}

func TestPrinter_RunPrintsPerEvent(t *testing.T) {
	reg := registry.New()
	changes := registry.NewChanges()
	var buf syncBuffer
	p := NewPrinter(reg, changes, &buf, nil)
	p.SetBodyLimit(3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	assert.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "has|bool|false")
	}, time.Second, 5*time.Millisecond)

	id := submit(reg, "App1", "Hi", "hello")
	changes.Publish(registry.Event{Kind: registry.EventSubmitted, ID: id})
	changes.Publish(registry.Event{Kind: registry.EventExpanded, ID: id})

	assert.Eventually(t, func() bool {
		return len(buf.records()) == 3
	}, time.Second, 5*time.Millisecond)

	records := buf.records()
	assert.Contains(t, records[0], "has|bool|false")
	assert.Contains(t, records[1], "body|string|he…")
	assert.Contains(t, records[2], "body|string|hello")

	changes.Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("printer did not stop after the change stream closed")
	}
}

func TestPrinter_RunStopsOnCancel(t *testing.T) {
	var buf syncBuffer
	p := NewPrinter(registry.New(), registry.NewChanges(), &buf, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("printer did not stop after cancel")
	}
}

func TestFlatten(t *testing.T) {
	assert.Equal(t, "plain", flatten("plain"))
	assert.Equal(t, "a b c d", flatten("a\nb\r\nc\rd"))
}
