// Package main provides the entry point for the svnbridge CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/svnbridge/internal/cli"
	"github.com/mrz1836/svnbridge/internal/signal"
)

// Set via ldflags at build time.
var (
	version = "dev"     //nolint:gochecknoglobals // set by ldflags
	commit  = "none"    //nolint:gochecknoglobals // set by ldflags
	date    = "unknown" //nolint:gochecknoglobals // set by ldflags
)

func main() {
	handler := signal.NewHandler(context.Background())

	err := cli.Execute(handler.Context(), cli.BuildInfo{Version: version, Commit: commit, Date: date}, os.Stderr)

	interrupted := handler.WasInterrupted()
	handler.Stop()

	if interrupted {
		os.Exit(cli.ExitInterrupted)
	}
	os.Exit(cli.ExitCodeForError(err))
}
