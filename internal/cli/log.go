package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/svnbridge/internal/ctxutil"
	"github.com/mrz1836/svnbridge/internal/tui"
)

// LogFlags holds flags specific to the log command.
type LogFlags struct {
	Limit   int
	OneLine bool
}

// defaultLogLimit is the number of revisions shown without --limit.
const defaultLogLimit = 10

func addLogCommand(parent *cobra.Command, a *app) {
	flags := &LogFlags{}
	cmd := &cobra.Command{
		Use:   "log [path]",
		Short: "Show recent revisions touching a path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runLog(cmd.Context(), a, cmd.OutOrStdout(), path, flags)
		},
	}
	cmd.Flags().IntVarP(&flags.Limit, "limit", "l", defaultLogLimit, "maximum number of revisions")
	cmd.Flags().BoolVar(&flags.OneLine, "oneline", false, "one line per revision, cut to the terminal width")
	parent.AddCommand(cmd)
}

func runLog(ctx context.Context, a *app, w io.Writer, path string, flags *LogFlags) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	out := a.output(w)
	svc, err := a.services(ctx, w)
	if err != nil {
		return err
	}

	entries, err := svc.client.LogEntries(ctx, path, flags.Limit)
	if err != nil {
		return err
	}

	if out.IsJSON() {
		return out.JSON(entries)
	}
	if flags.OneLine {
		width := a.width()
		for _, entry := range entries {
			out.Info(tui.Truncate(fmt.Sprintf("r%d %s %s", entry.Revision, entry.Author, firstLine(entry.Message)), width))
		}
		return nil
	}
	for _, entry := range entries {
		out.Info(fmt.Sprintf("r%d | %s | %s", entry.Revision, entry.Author, entry.Date.Local().Format(time.DateTime)))
		for _, changed := range entry.Paths {
			out.Info(fmt.Sprintf("   %s %s", changed.Action, changed.Path))
		}
		if entry.Message != "" {
			out.Info(entry.Message)
		}
		out.Info("")
	}
	return nil
}

func firstLine(msg string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(msg), "\n")
	return line
}
