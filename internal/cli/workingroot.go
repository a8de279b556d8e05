package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/svnbridge/internal/ctxutil"
)

func addRootCommand(parent *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "root",
		Short: "Manage the override working-copy root",
		Long: `The override root is used when a path cannot be resolved on its own,
for example when the checkout's metadata lives in a parent directory.
It is persisted in ~/.svnbridge/state.yaml.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the override root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRootShow(cmd.Context(), a, cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <dir>",
		Short: "Set the override root (the directory must contain .svn)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRootSet(cmd.Context(), a, cmd.OutOrStdout(), args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the override root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRootClear(cmd.Context(), a, cmd.OutOrStdout())
		},
	})

	parent.AddCommand(cmd)
}

type rootReport struct {
	OverrideRoot string `json:"override_root"`
}

func runRootShow(ctx context.Context, a *app, w io.Writer) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	out := a.output(w)
	svc, err := a.services(ctx, w)
	if err != nil {
		return err
	}

	root := svc.resolver.OverrideRoot()
	if out.IsJSON() {
		return out.JSON(rootReport{OverrideRoot: root})
	}
	if root == "" {
		out.Info("No override root set")
		return nil
	}
	out.Info(root)
	return nil
}

func runRootSet(ctx context.Context, a *app, w io.Writer, dir string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	out := a.output(w)
	svc, err := a.services(ctx, w)
	if err != nil {
		return err
	}

	if err := svc.resolver.SetOverrideRoot(ctx, dir); err != nil {
		return err
	}
	if out.IsJSON() {
		return out.JSON(rootReport{OverrideRoot: svc.resolver.OverrideRoot()})
	}
	out.Success("Override root set to " + svc.resolver.OverrideRoot())
	return nil
}

func runRootClear(ctx context.Context, a *app, w io.Writer) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	out := a.output(w)
	svc, err := a.services(ctx, w)
	if err != nil {
		return err
	}

	if err := svc.resolver.ClearOverrideRoot(ctx); err != nil {
		return err
	}
	if out.IsJSON() {
		return out.JSON(rootReport{})
	}
	out.Success("Override root cleared")
	return nil
}
