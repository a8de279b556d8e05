package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/svnbridge/internal/ctxutil"
)

func addResolveCommand(parent *cobra.Command, a *app) {
	parent.AddCommand(&cobra.Command{
		Use:   "resolve <path>",
		Short: "Show the working-copy root and relative path for a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), a, cmd.OutOrStdout(), args[0])
		},
	})
}

func runResolve(ctx context.Context, a *app, w io.Writer, path string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	out := a.output(w)
	svc, err := a.services(ctx, w)
	if err != nil {
		return err
	}

	tracked, err := svc.client.Resolve(ctx, path)
	if err != nil {
		return err
	}

	if out.IsJSON() {
		return out.JSON(tracked)
	}
	out.Info(fmt.Sprintf("Path:     %s", tracked.Path))
	out.Info(fmt.Sprintf("Root:     %s", tracked.Root))
	out.Info(fmt.Sprintf("Relative: %s", tracked.RelativePath))
	if tracked.ViaOverride {
		out.Info("Resolved through the override root")
	}
	return nil
}
