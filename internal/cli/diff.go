package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/svnbridge/internal/ctxutil"
	"github.com/mrz1836/svnbridge/internal/errors"
)

// DiffFlags holds flags specific to the diff command.
type DiffFlags struct {
	SideBySide bool
}

func addDiffCommand(parent *cobra.Command, a *app) {
	flags := &DiffFlags{}
	cmd := &cobra.Command{
		Use:   "diff <path>",
		Short: "Show how a file differs from its base revision",
		Long: `Produce a diff for one file. svn's own diff is tried first; when it is
empty or fails the repository and working contents are compared directly,
decoded with automatic encoding detection, and diffed with the system diff
utility. If that is unavailable a size summary is printed instead.

Examples:
  svnbridge diff src/main.c
  svnbridge diff legacy/gbk.txt --side-by-side
  svnbridge diff src/main.c --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), a, cmd.OutOrStdout(), args[0], flags)
		},
	}
	cmd.Flags().BoolVar(&flags.SideBySide, "side-by-side", false, "show both versions side by side")
	parent.AddCommand(cmd)
}

func runDiff(ctx context.Context, a *app, w io.Writer, path string, flags *DiffFlags) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	out := a.output(w)
	svc, err := a.services(ctx, w)
	if err != nil {
		return err
	}

	if flags.SideBySide {
		if !svc.reconciler.ShowSideBySide(ctx, path) {
			return fmt.Errorf("%s: %w", path, errors.ErrViewerFailed)
		}
		return nil
	}

	result, err := svc.reconciler.GetDiff(ctx, path)
	if err != nil {
		return err
	}

	if out.IsJSON() {
		return out.JSON(result)
	}
	logger := GetLogger()
	logger.Debug().
		Str("path", result.Path).
		Str("provenance", string(result.Provenance)).
		Msg("diff produced")
	out.Diff(result.Text)
	return nil
}
