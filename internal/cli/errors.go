package cli

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/mrz1836/svnbridge/internal/errors"
	"github.com/mrz1836/svnbridge/internal/svn"
	"github.com/mrz1836/svnbridge/internal/tui"
)

// errorReport is the JSON shape of a failed command.
type errorReport struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
	Action string `json:"action,omitempty"`
}

// describeError turns err into what the user sees. svn's own stderr is
// shown verbatim; everything else goes through the sentinel message table.
func describeError(err error) errorReport {
	var toolErr *svn.ToolError
	if stderrors.As(err, &toolErr) {
		return errorReport{Error: toolErr.Message(), Detail: err.Error()}
	}

	message, action := errors.Actionable(err)
	report := errorReport{Error: message, Action: action}
	if detail := err.Error(); detail != message {
		report.Detail = detail
	}
	return report
}

// printError writes err to w in the requested output format.
func printError(w io.Writer, format string, err error) {
	report := describeError(err)

	if format == tui.FormatJSON {
		data, marshalErr := json.Marshal(report)
		if marshalErr == nil {
			_, _ = fmt.Fprintln(w, string(data))
			return
		}
	}

	tui.CheckNoColor()
	errStyle := lipgloss.NewStyle().Foreground(tui.ColorError).Bold(true)
	dim := lipgloss.NewStyle().Foreground(tui.ColorMuted)

	_, _ = fmt.Fprintln(w, errStyle.Render("✗ "+report.Error))
	if report.Detail != "" {
		_, _ = fmt.Fprintln(w, dim.Render("  "+report.Detail))
	}
	if report.Action != "" {
		_, _ = fmt.Fprintln(w, "  → "+report.Action)
	}
}
