package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/svnbridge/internal/ctxutil"
	"github.com/mrz1836/svnbridge/internal/svn"
)

func addStatusCommands(parent *cobra.Command, a *app) {
	parent.AddCommand(&cobra.Command{
		Use:   "status [path...]",
		Short: "Show the working-copy status of paths",
		Long: `Report the status of each path as one of: unmodified, modified, added,
deleted, replaced, conflicted, untracked, missing, ignored, typechanged,
unknown.

A single directory argument lists every changed entry below it. Several
arguments are queried in parallel (svn.status_concurrency).

Examples:
  svnbridge status src/main.c
  svnbridge status .
  svnbridge status a.txt b.txt --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), a, cmd.OutOrStdout(), args)
		},
	})

	parent.AddCommand(&cobra.Command{
		Use:   "changed <path>",
		Short: "Report whether a file differs from its base revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChanged(cmd.Context(), a, cmd.OutOrStdout(), args[0])
		},
	})
}

func runStatus(ctx context.Context, a *app, w io.Writer, args []string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"."}
	}

	out := a.output(w)
	svc, err := a.services(ctx, w)
	if err != nil {
		return err
	}

	var entries []svn.StatusEntry
	if len(args) == 1 && isDir(args[0]) {
		entries, err = svc.client.StatusEntries(ctx, args[0])
	} else {
		entries, err = svc.client.StatusMany(ctx, args, svc.cfg.SVN.StatusConcurrency)
	}
	if err != nil {
		return err
	}

	if out.IsJSON() {
		if entries == nil {
			entries = []svn.StatusEntry{}
		}
		return out.JSON(entries)
	}
	if len(entries) == 0 {
		out.Info("No local changes")
		return nil
	}
	for _, entry := range entries {
		out.StatusLine(entry.Status, entry.Path)
	}
	return nil
}

type changedResult struct {
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
}

func runChanged(ctx context.Context, a *app, w io.Writer, path string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	out := a.output(w)
	svc, err := a.services(ctx, w)
	if err != nil {
		return err
	}

	changed := svc.reconciler.HasChanges(ctx, path)
	if out.IsJSON() {
		return out.JSON(changedResult{Path: path, Changed: changed})
	}
	out.Info(fmt.Sprintf("%s: %t", path, changed))
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
