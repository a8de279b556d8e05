// Package cli provides the command-line interface for svnbridge.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/mrz1836/svnbridge/internal/errors"
	"github.com/mrz1836/svnbridge/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalLogger stores the logger initialized in PersistentPreRunE.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the logger initialized by the root command. Before
// PersistentPreRunE runs it is a zero-value logger that discards output.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

func setLogger(logger zerolog.Logger) {
	globalLoggerMu.Lock()
	globalLogger = logger
	globalLoggerMu.Unlock()
}

// app carries what every subcommand needs.
type app struct {
	flags   *GlobalFlags
	factory serviceFactory
	// initLogger builds the invocation logger. Tests swap it for a buffer.
	initLogger func(verbose, quiet bool) zerolog.Logger
	// interactive reports whether prompts can be shown.
	interactive func() bool
	// confirm shows a yes/no prompt.
	confirm func(title, description string) (bool, error)
	// width returns the terminal width for truncated output.
	width func() int
}

// output returns the Output for the current --output flag.
func (a *app) output(w io.Writer) tui.Output {
	tui.CheckNoColor()
	return tui.NewOutput(w, a.flags.Output)
}

// services builds the service graph for one invocation.
func (a *app) services(ctx context.Context, w io.Writer) (*services, error) {
	return a.factory(ctx, GetLogger(), a.flags.configOverrides(), w)
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newRootCmd creates the root command. factory builds the service graph.
func newRootCmd(a *app, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "svnbridge",
		Short: "Subversion working-copy status and diff reconciliation",
		Long: `svnbridge drives the svn command-line client to report working-copy
status and to produce reliable diffs, even for files in regional encodings
or when svn's own diff comes back empty.

Paths are resolved to their working-copy root. If your checkout's metadata
lives above the directory you work in, set an override root with
'svnbridge root set <dir>'.`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if err := tui.ValidateFormat(a.flags.Output); err != nil {
				return errors.NewExitCode2Error(err)
			}

			logger := a.initLogger(a.flags.Verbose, a.flags.Quiet).
				With().Str("invocation_id", uuid.NewString()).Logger()
			setLogger(logger)
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, a.flags)

	addStatusCommands(cmd, a)
	addDiffCommand(cmd, a)
	addResolveCommand(cmd, a)
	addRootCommand(cmd, a)
	addWorkCommands(cmd, a)
	addLogCommand(cmd, a)
	addInfoCommand(cmd, a)
	addConfigCommand(cmd, a)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command. Errors are printed to stderr before
// being returned so main only has to choose the exit code.
func Execute(ctx context.Context, info BuildInfo, stderr io.Writer) error {
	a := &app{
		flags:       &GlobalFlags{},
		factory:     newServices,
		initLogger:  InitLogger,
		interactive: stdinIsTerminal,
		confirm:     tui.Confirm,
		width:       tui.TerminalWidth,
	}
	defer CloseLogFile()

	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(a, info)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		printError(stderr, a.flags.Output, err)
	}
	return err
}
