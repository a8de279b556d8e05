package tui

import (
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{name: "fits", in: "Fix parser", width: 20, want: "Fix parser"},
		{name: "ascii cut", in: "Fix overflow in parser", width: 10, want: "Fix overf…"},
		{name: "zero width", in: "anything", width: 0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.width))
		})
	}
}

func TestTruncate_WideCharacters(t *testing.T) {
	got := Truncate("修复编码检测的问题", 9)

	assert.LessOrEqual(t, runewidth.StringWidth(got), 9)
	assert.Contains(t, got, "…")
}

func TestTerminalWidth_NotATerminal(t *testing.T) {
	// go test does not attach stdout to a terminal
	assert.Positive(t, TerminalWidth())
}
