package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/svnbridge/internal/ctxutil"
	"github.com/mrz1836/svnbridge/internal/errors"
)

// RevertFlags holds flags specific to the revert command.
type RevertFlags struct {
	Yes bool
}

// CommitFlags holds flags specific to the commit command.
type CommitFlags struct {
	Message string
}

// addWorkCommands registers the commands that modify the working copy.
func addWorkCommands(parent *cobra.Command, a *app) {
	parent.AddCommand(&cobra.Command{
		Use:   "add <path...>",
		Short: "Schedule paths for addition (parents included)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd.Context(), a, cmd.OutOrStdout(), "Added", args, func(ctx context.Context, svc *services) error {
				return svc.client.Add(ctx, args...)
			})
		},
	})

	revertFlags := &RevertFlags{}
	revertCmd := &cobra.Command{
		Use:   "revert <path...>",
		Short: "Discard local changes to paths",
		Long: `Discard local changes to the given paths. This cannot be undone, so
svnbridge asks first on a terminal. Pass --yes to skip the prompt; it is
required when stdin is not a terminal.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := confirmRevert(a, args, revertFlags.Yes); err != nil {
				return err
			}
			return runMutation(cmd.Context(), a, cmd.OutOrStdout(), "Reverted", args, func(ctx context.Context, svc *services) error {
				return svc.client.Revert(ctx, args...)
			})
		},
	}
	revertCmd.Flags().BoolVarP(&revertFlags.Yes, "yes", "y", false, "revert without asking")
	parent.AddCommand(revertCmd)

	commitFlags := &CommitFlags{}
	commitCmd := &cobra.Command{
		Use:   "commit -m <message> <path...>",
		Short: "Commit paths to the repository",
		Long: `Commit the given paths with a log message. All paths must resolve to the
same working-copy root.

Examples:
  svnbridge commit -m "Fix encoding of legacy reports" reports/q1.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(cmd.Context(), a, cmd.OutOrStdout(), commitFlags.Message, args)
		},
	}
	commitCmd.Flags().StringVarP(&commitFlags.Message, "message", "m", "", "log message")
	_ = commitCmd.MarkFlagRequired("message")
	parent.AddCommand(commitCmd)

	parent.AddCommand(&cobra.Command{
		Use:   "update [path]",
		Short: "Bring a working copy up to date",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runUpdate(cmd.Context(), a, cmd.OutOrStdout(), path)
		},
	})
}

// confirmRevert asks before discarding changes unless --yes was given.
func confirmRevert(a *app, paths []string, yes bool) error {
	if yes {
		return nil
	}
	if !a.interactive() {
		return errors.NewExitCode2Error(fmt.Errorf("revert needs --yes when not run from a terminal: %w", errors.ErrConfirmationRequired))
	}
	ok, err := a.confirm(fmt.Sprintf("Revert %d path(s)?", len(paths)), strings.Join(paths, "\n")+"\n\nLocal changes will be lost.")
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrOperationCanceled
	}
	return nil
}

type mutationReport struct {
	Action string   `json:"action"`
	Paths  []string `json:"paths"`
}

func runMutation(ctx context.Context, a *app, w io.Writer, verb string, paths []string, fn func(context.Context, *services) error) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	out := a.output(w)
	svc, err := a.services(ctx, w)
	if err != nil {
		return err
	}

	if err := fn(ctx, svc); err != nil {
		return err
	}

	if out.IsJSON() {
		return out.JSON(mutationReport{Action: strings.ToLower(verb), Paths: paths})
	}
	out.Success(fmt.Sprintf("%s %s", verb, strings.Join(paths, ", ")))
	return nil
}

func runCommit(ctx context.Context, a *app, w io.Writer, message string, paths []string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(message) == "" {
		return errors.NewExitCode2Error(fmt.Errorf("commit message: %w", errors.ErrEmptyValue))
	}

	out := a.output(w)
	svc, err := a.services(ctx, w)
	if err != nil {
		return err
	}

	result, err := svc.client.Commit(ctx, message, paths...)
	if err != nil {
		return err
	}

	if out.IsJSON() {
		return out.JSON(result)
	}
	if result.Revision == 0 {
		out.Info("Nothing to commit")
		return nil
	}
	out.Success(fmt.Sprintf("Committed revision %d", result.Revision))
	return nil
}

func runUpdate(ctx context.Context, a *app, w io.Writer, path string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	out := a.output(w)
	svc, err := a.services(ctx, w)
	if err != nil {
		return err
	}

	result, err := svc.client.Update(ctx, path)
	if err != nil {
		return err
	}

	if out.IsJSON() {
		return out.JSON(result)
	}
	out.Success(fmt.Sprintf("At revision %d", result.Revision))
	return nil
}
