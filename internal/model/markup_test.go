package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"plain text", "nothing to do", "nothing to do"},
		{"empty", "", ""},
		{"bold italic underline", "<b>bold</b>, <i>italic</i> and <u>under</u>", "bold, italic and under"},
		{"hyperlink keeps text", `see <a href="https://example.org">the docs</a>`, "see the docs"},
		{"image dropped", `<img src="/tmp/x.png" alt="pic"/>caption`, "caption"},
		{"entities decoded", "fish &amp; chips &lt;3", "fish & chips <3"},
		{"bare less-than", "1 < 2", "1 < 2"},
		{"unknown tag kept", "<span>x</span>", "<span>x</span>"},
		{"upper case tags", "<B>loud</B>", "loud"},
		{"unterminated tag-like text", "if a<b then c", "if a<b then c"},
		{"trailing unterminated tag", "x <foo", "x <foo"},
		{"markup then unterminated", "<b>bold</b> and a<c", "bold and a<c"},
		{"newlines preserved", "line one\n<b>line two</b>", "line one\nline two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripMarkup(tt.body))
		})
	}
}
