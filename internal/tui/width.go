package tui

import (
	"os"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// DefaultWidth is used when the terminal size cannot be read.
const DefaultWidth = 100

// TerminalWidth returns the column count of stdout, or DefaultWidth.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}

// Truncate shortens s to at most width display columns, ending in "…".
// East Asian wide characters count as two columns.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
