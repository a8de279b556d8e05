package cli

import (
	stderrors "errors"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/svnbridge/internal/config"
	"github.com/mrz1836/svnbridge/internal/constants"
	"github.com/mrz1836/svnbridge/internal/errors"
	"github.com/mrz1836/svnbridge/internal/tui"
)

// Exit codes for the CLI.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitError indicates a general error.
	ExitError = 1
	// ExitInvalidInput indicates invalid user input.
	ExitInvalidInput = 2
	// ExitInterrupted follows the shell convention for SIGINT.
	ExitInterrupted = 130
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Output specifies the output format (text or json).
	Output string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
	// SVNBinary overrides svn.binary.
	SVNBinary string
	// Timeout overrides svn.timeout.
	Timeout time.Duration
	// Encoding overrides encoding.default_file_encoding.
	Encoding string
}

// configOverrides returns the flag values that take precedence over every
// configuration file. Unset flags stay zero and are ignored.
func (f *GlobalFlags) configOverrides() *config.Config {
	overrides := &config.Config{}
	overrides.SVN.Binary = f.SVNBinary
	overrides.SVN.Timeout = f.Timeout
	overrides.Encoding.DefaultFileEncoding = f.Encoding
	return overrides
}

// AddGlobalFlags adds global flags to a command.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", tui.FormatText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "log warnings and errors only")
	cmd.PersistentFlags().StringVar(&flags.SVNBinary, "svn-binary", "", "svn executable (overrides svn.binary)")
	cmd.PersistentFlags().DurationVar(&flags.Timeout, "timeout", 0, "per-command timeout (overrides svn.timeout)")
	cmd.PersistentFlags().StringVar(&flags.Encoding, "encoding", "", "assume this file encoding (overrides encoding.default_file_encoding)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags binds global flags to Viper so SVNBRIDGE_OUTPUT,
// SVNBRIDGE_VERBOSE and SVNBRIDGE_QUIET are honored.
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	rootFlags := cmd.Root().PersistentFlags()

	for _, name := range []string{"output", "verbose", "quiet"} {
		if err := v.BindPFlag(name, rootFlags.Lookup(name)); err != nil {
			return err
		}
	}

	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()

	// Environment only applies when the flag was not given explicitly
	applyEnvDefault(v, cmd, "output")
	applyEnvDefault(v, cmd, "verbose")
	applyEnvDefault(v, cmd, "quiet")
	return nil
}

func applyEnvDefault(v *viper.Viper, cmd *cobra.Command, name string) {
	flag := cmd.Root().PersistentFlags().Lookup(name)
	if flag == nil || flag.Changed || !v.IsSet(name) {
		return
	}
	_ = flag.Value.Set(v.GetString(name))
}

// ExitCodeForError returns the process exit code for err.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.IsExitCode2Error(err) || stderrors.Is(err, errors.ErrInvalidOutputFormat) {
		return ExitInvalidInput
	}

	if isInvalidInputError(err.Error()) {
		return ExitInvalidInput
	}

	return ExitError
}

// isInvalidInputError recognizes cobra's argument and flag validation errors.
func isInvalidInputError(errMsg string) bool {
	invalidInputPatterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"invalid argument",
		"if any flags in the group",
		"required flag",
		"unknown command",
		"accepts ",
		"requires at least",
	}

	for _, pattern := range invalidInputPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
