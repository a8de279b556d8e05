// Package config provides configuration management for svnbridge with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (SVNBRIDGE_* prefix)
//  3. Project config (.svnbridge/config.yaml)
//  4. Global config (~/.svnbridge/config.yaml)
//  5. Built-in defaults
//
// IMPORTANT: This package may import internal/constants, internal/errors and
// internal/encoding (for encoding name validation), but MUST NOT import
// other internal packages.
package config

import "time"

// Config is the root configuration structure for svnbridge.
type Config struct {
	// SVN contains settings for invoking the external svn client.
	SVN SVNConfig `yaml:"svn" json:"svn" mapstructure:"svn"`

	// Encoding contains settings for detecting and converting file encodings.
	Encoding EncodingConfig `yaml:"encoding" json:"encoding" mapstructure:"encoding"`
}

// SVNConfig contains settings for the external client.
type SVNConfig struct {
	// Binary is the svn executable name or path.
	// Default: "svn"
	Binary string `yaml:"binary" json:"binary" mapstructure:"binary"`

	// Locale is assigned to LANG, LC_ALL, LC_MESSAGES and LC_CTYPE for every command.
	// Default: "en_US.UTF-8"
	Locale string `yaml:"locale" json:"locale" mapstructure:"locale"`

	// Timeout bounds each external command.
	// Default: 30 seconds
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`

	// MaxOutputBytes caps captured stdout and stderr per command.
	// Default: 50 MiB
	MaxOutputBytes int64 `yaml:"max_output_bytes" json:"max_output_bytes" mapstructure:"max_output_bytes"`

	// Username is passed as --username when set.
	Username string `yaml:"username" json:"username" mapstructure:"username"`

	// PasswordEnvVar names the environment variable that holds the password.
	// The password itself is never stored in config files.
	// Default: "SVNBRIDGE_SVN_PASSWORD"
	PasswordEnvVar string `yaml:"password_env_var" json:"password_env_var" mapstructure:"password_env_var"`

	// DiffBinary is the system diff utility used when native diff is unreliable.
	// Default: "diff"
	DiffBinary string `yaml:"diff_binary" json:"diff_binary" mapstructure:"diff_binary"`

	// StatusConcurrency bounds parallel status queries across paths.
	// Default: 4
	StatusConcurrency int `yaml:"status_concurrency" json:"status_concurrency" mapstructure:"status_concurrency"`
}

// EncodingConfig controls the encoding detector.
type EncodingConfig struct {
	// DefaultFileEncoding, when set, overrides auto-detection entirely.
	DefaultFileEncoding string `yaml:"default_file_encoding" json:"default_file_encoding" mapstructure:"default_file_encoding"`

	// EnableDetection turns on BOM/UTF-8/regional detection.
	// When false, DefaultFileEncoding (or UTF-8) is always used.
	// Default: true
	EnableDetection bool `yaml:"enable_detection" json:"enable_detection" mapstructure:"enable_detection"`

	// Fallbacks is the ordered list of regional encodings tried when content
	// is not valid UTF-8.
	Fallbacks []string `yaml:"fallbacks" json:"fallbacks" mapstructure:"fallbacks"`

	// ForceUTF8Output normalizes output text to valid UTF-8 for display.
	// Default: true
	ForceUTF8Output bool `yaml:"force_utf8_output" json:"force_utf8_output" mapstructure:"force_utf8_output"`

	// ShowEncodingInfo annotates diff output with the detected encodings.
	ShowEncodingInfo bool `yaml:"show_encoding_info" json:"show_encoding_info" mapstructure:"show_encoding_info"`
}
