// Package tui renders svnbridge output for terminals.
//
// Colors use lipgloss.AdaptiveColor so they read on light and dark
// backgrounds. Call CheckNoColor before printing to honor NO_COLOR and
// TERM=dumb.
package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mrz1836/svnbridge/internal/svn"
)

//nolint:gochecknoglobals // package-level palette is the styling API
var (
	// ColorPrimary marks paths and headings.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess marks additions and successful operations.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning marks states that need attention.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError marks removals and failures.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted marks secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}
)

// CheckNoColor drops lipgloss to plain ASCII when colors are unwanted.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport is false when NO_COLOR is present (any value) or TERM=dumb.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// StatusColor returns the color for a working-copy status.
func StatusColor(status svn.FileStatus) lipgloss.AdaptiveColor {
	switch status {
	case svn.StatusAdded:
		return ColorSuccess
	case svn.StatusModified, svn.StatusReplaced, svn.StatusTypeChanged:
		return ColorPrimary
	case svn.StatusDeleted, svn.StatusMissing, svn.StatusConflicted:
		return ColorError
	case svn.StatusUntracked:
		return ColorWarning
	case svn.StatusUnknown, svn.StatusUnmodified, svn.StatusIgnored:
		return ColorMuted
	default:
		return ColorMuted
	}
}

// StatusLetter returns the single-column code svn prints for status.
func StatusLetter(status svn.FileStatus) string {
	switch status {
	case svn.StatusUnmodified:
		return " "
	case svn.StatusModified:
		return "M"
	case svn.StatusAdded:
		return "A"
	case svn.StatusDeleted:
		return "D"
	case svn.StatusReplaced:
		return "R"
	case svn.StatusConflicted:
		return "C"
	case svn.StatusUntracked:
		return "?"
	case svn.StatusMissing:
		return "!"
	case svn.StatusIgnored:
		return "I"
	case svn.StatusTypeChanged:
		return "~"
	case svn.StatusUnknown:
		return "-"
	default:
		return "-"
	}
}

// FormatStatusLine renders "<letter> <status> <path>" with the status color.
// The letter and name are both printed so the line reads without color.
func FormatStatusLine(status svn.FileStatus, path string) string {
	style := lipgloss.NewStyle().Foreground(StatusColor(status))
	label := style.Render(StatusLetter(status) + " " + padRight(status.String(), statusWidth))
	return label + " " + path
}

// statusWidth fits the longest status name ("typechanged").
const statusWidth = 11

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// DiffStyles colors unified diff lines.
type DiffStyles struct {
	Header  lipgloss.Style
	Hunk    lipgloss.Style
	Added   lipgloss.Style
	Removed lipgloss.Style
	Note    lipgloss.Style
}

// NewDiffStyles returns the default diff palette.
func NewDiffStyles() *DiffStyles {
	return &DiffStyles{
		Header:  lipgloss.NewStyle().Bold(true),
		Hunk:    lipgloss.NewStyle().Foreground(ColorPrimary),
		Added:   lipgloss.NewStyle().Foreground(ColorSuccess),
		Removed: lipgloss.NewStyle().Foreground(ColorError),
		Note:    lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// RenderDiff styles each line of a unified diff or summary.
func (s *DiffStyles) RenderDiff(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lines[i] = s.styleFor(line).Render(line)
	}
	return strings.Join(lines, "\n")
}

func (s *DiffStyles) styleFor(line string) lipgloss.Style {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"),
		strings.HasPrefix(line, "Index:"), strings.HasPrefix(line, "===="):
		return s.Header
	case strings.HasPrefix(line, "@@"):
		return s.Hunk
	case strings.HasPrefix(line, "+"):
		return s.Added
	case strings.HasPrefix(line, "-"):
		return s.Removed
	case strings.HasPrefix(line, "#"), strings.HasPrefix(line, "Note:"), strings.HasPrefix(line, `\`):
		return s.Note
	default:
		return lipgloss.NewStyle()
	}
}
