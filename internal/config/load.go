package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/svnbridge/internal/constants"
	"github.com/mrz1836/svnbridge/internal/errors"
)

// newViperInstance creates a new Viper instance with standard svnbridge configuration.
// This includes environment variable prefix (SVNBRIDGE_), key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (SVNBRIDGE_* prefix)
//  2. Project config (.svnbridge/config.yaml)
//  3. Global config (~/.svnbridge/config.yaml)
//  4. Built-in defaults
//
// Missing config files are not an error.
func Load(ctx context.Context) (*Config, error) {
	globalPath, err := GlobalConfigPath()
	if err != nil {
		// Home dir unavailable, continue with project config and defaults
		globalPath = ""
	}

	cfg, err := LoadFromPaths(ctx, ProjectConfigPath(), globalPath)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("svn.binary", cfg.SVN.Binary).
		Str("svn.locale", cfg.SVN.Locale).
		Dur("svn.timeout", cfg.SVN.Timeout).
		Bool("encoding.enable_detection", cfg.Encoding.EnableDetection).
		Strs("encoding.fallbacks", cfg.Encoding.Fallbacks).
		Msg("configuration loaded")

	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths.
// Either path can be empty to skip that level; files that do not exist are skipped.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	// Load global config first (lower precedence)
	if globalConfigPath != "" && fileExists(globalConfigPath) {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	// Load project config (higher precedence, merges over global)
	if projectConfigPath != "" && fileExists(projectConfigPath) {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
// Only non-zero values in overrides are applied.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}

	return cfg, nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// setDefaults configures all default values on the Viper instance.
// IMPORTANT: Keys must match the YAML tag names exactly for proper mapping.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("svn.binary", d.SVN.Binary)
	v.SetDefault("svn.locale", d.SVN.Locale)
	v.SetDefault("svn.timeout", d.SVN.Timeout.String())
	v.SetDefault("svn.max_output_bytes", d.SVN.MaxOutputBytes)
	v.SetDefault("svn.username", d.SVN.Username)
	v.SetDefault("svn.password_env_var", d.SVN.PasswordEnvVar)
	v.SetDefault("svn.diff_binary", d.SVN.DiffBinary)
	v.SetDefault("svn.status_concurrency", d.SVN.StatusConcurrency)

	v.SetDefault("encoding.default_file_encoding", d.Encoding.DefaultFileEncoding)
	v.SetDefault("encoding.enable_detection", d.Encoding.EnableDetection)
	v.SetDefault("encoding.fallbacks", d.Encoding.Fallbacks)
	v.SetDefault("encoding.force_utf8_output", d.Encoding.ForceUTF8Output)
	v.SetDefault("encoding.show_encoding_info", d.Encoding.ShowEncodingInfo)
}

// applyOverrides merges non-zero override values into the config.
//
// IMPORTANT: Boolean fields cannot be overridden to false here because the
// zero value is indistinguishable from "not set". CLI code handles bool flags
// with cmd.Flags().Changed.
func applyOverrides(cfg, overrides *Config) {
	if overrides.SVN.Binary != "" {
		cfg.SVN.Binary = overrides.SVN.Binary
	}
	if overrides.SVN.Locale != "" {
		cfg.SVN.Locale = overrides.SVN.Locale
	}
	if overrides.SVN.Timeout != 0 {
		cfg.SVN.Timeout = overrides.SVN.Timeout
	}
	if overrides.SVN.Username != "" {
		cfg.SVN.Username = overrides.SVN.Username
	}
	if overrides.SVN.DiffBinary != "" {
		cfg.SVN.DiffBinary = overrides.SVN.DiffBinary
	}

	if overrides.Encoding.DefaultFileEncoding != "" {
		cfg.Encoding.DefaultFileEncoding = overrides.Encoding.DefaultFileEncoding
	}
	if len(overrides.Encoding.Fallbacks) > 0 {
		cfg.Encoding.Fallbacks = overrides.Encoding.Fallbacks
	}
}

// viperDecoderOption configures mapstructure to handle time.Duration and
// comma-separated slices from strings (environment variables).
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}
