package tui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	bridgeerrors "github.com/mrz1836/svnbridge/internal/errors"
	"github.com/mrz1836/svnbridge/internal/svn"
)

// Output formats for --output.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Output writes command results in one format.
type Output interface {
	// Success reports a completed mutation.
	Success(msg string)
	// Warning reports a non-fatal condition.
	Warning(msg string)
	// Info prints informational text.
	Info(msg string)
	// StatusLine prints one path with its status.
	StatusLine(status fmt.Stringer, path string)
	// Diff prints reconciled diff text.
	Diff(text string)
	// JSON encodes v. Text output prints it indented as well.
	JSON(v any) error
	// IsJSON reports whether the caller should emit structured values.
	IsJSON() bool
}

// NewOutput returns the Output for format. Anything but "json" is text.
func NewOutput(w io.Writer, format string) Output {
	if format == FormatJSON {
		return &JSONOutput{w: w}
	}
	return NewTextOutput(w)
}

// ValidateFormat rejects unsupported --output values.
func ValidateFormat(format string) error {
	switch format {
	case "", FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: %q (use text or json)", bridgeerrors.ErrInvalidOutputFormat, format)
	}
}

// TextOutput prints styled human-readable text.
type TextOutput struct {
	w    io.Writer
	diff *DiffStyles
	ok   lipgloss.Style
	warn lipgloss.Style
}

// NewTextOutput creates a TextOutput writing to w.
func NewTextOutput(w io.Writer) *TextOutput {
	return &TextOutput{
		w:    w,
		diff: NewDiffStyles(),
		ok:   lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		warn: lipgloss.NewStyle().Foreground(ColorWarning),
	}
}

// Success prints a check-marked message.
func (o *TextOutput) Success(msg string) {
	_, _ = fmt.Fprintln(o.w, o.ok.Render("✓ "+msg))
}

// Warning prints a warning.
func (o *TextOutput) Warning(msg string) {
	_, _ = fmt.Fprintln(o.w, o.warn.Render("⚠ "+msg))
}

// Info prints msg unstyled.
func (o *TextOutput) Info(msg string) {
	_, _ = fmt.Fprintln(o.w, msg)
}

// StatusLine prints a styled status row. Non-svn statuses print plainly.
func (o *TextOutput) StatusLine(status fmt.Stringer, path string) {
	if s, ok := status.(svn.FileStatus); ok {
		_, _ = fmt.Fprintln(o.w, FormatStatusLine(s, path))
		return
	}
	_, _ = fmt.Fprintf(o.w, "%s %s\n", status, path)
}

// Diff prints styled diff text.
func (o *TextOutput) Diff(text string) {
	_, _ = fmt.Fprintln(o.w, o.diff.RenderDiff(text))
}

// JSON prints v as indented JSON.
func (o *TextOutput) JSON(v any) error {
	return encodeJSON(o.w, v)
}

// IsJSON is false for text output.
func (o *TextOutput) IsJSON() bool { return false }

// JSONOutput emits only structured values.
type JSONOutput struct {
	w io.Writer
}

// Success is a no-op for JSON output.
func (o *JSONOutput) Success(string) {}

// Warning is a no-op for JSON output.
func (o *JSONOutput) Warning(string) {}

// Info is a no-op for JSON output.
func (o *JSONOutput) Info(string) {}

// StatusLine emits {"path","status"}.
func (o *JSONOutput) StatusLine(status fmt.Stringer, path string) {
	_ = encodeJSON(o.w, map[string]string{"path": path, "status": status.String()})
}

// Diff emits {"diff"}.
func (o *JSONOutput) Diff(text string) {
	_ = encodeJSON(o.w, map[string]string{"diff": text})
}

// JSON encodes v.
func (o *JSONOutput) JSON(v any) error {
	return encodeJSON(o.w, v)
}

// IsJSON is true for JSON output.
func (o *JSONOutput) IsJSON() bool { return true }

func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
