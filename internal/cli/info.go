package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/svnbridge/internal/ctxutil"
)

func addInfoCommand(parent *cobra.Command, a *app) {
	parent.AddCommand(&cobra.Command{
		Use:   "info [path]",
		Short: "Show repository information for a path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runInfo(cmd.Context(), a, cmd.OutOrStdout(), path)
		},
	})
}

func runInfo(ctx context.Context, a *app, w io.Writer, path string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	out := a.output(w)
	svc, err := a.services(ctx, w)
	if err != nil {
		return err
	}

	info, err := svc.client.Info(ctx, path)
	if err != nil {
		return err
	}

	if out.IsJSON() {
		return out.JSON(info)
	}
	out.Info(fmt.Sprintf("Path:              %s", info.Path))
	out.Info(fmt.Sprintf("Kind:              %s", info.Kind))
	out.Info(fmt.Sprintf("URL:               %s", info.URL))
	out.Info(fmt.Sprintf("Repository root:   %s", info.RepositoryRoot))
	out.Info(fmt.Sprintf("Revision:          %d", info.Revision))
	out.Info(fmt.Sprintf("Last changed rev:  %d", info.LastChangedRev))
	if info.LastChangedAuthor != "" {
		out.Info(fmt.Sprintf("Last changed by:   %s", info.LastChangedAuthor))
	}
	if !info.LastChangedDate.IsZero() {
		out.Info(fmt.Sprintf("Last changed date: %s", info.LastChangedDate.Local().Format(time.DateTime)))
	}
	return nil
}
