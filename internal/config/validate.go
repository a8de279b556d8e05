package config

import (
	"strings"

	"github.com/mrz1836/svnbridge/internal/encoding"
	"github.com/mrz1836/svnbridge/internal/errors"
)

// IsKnownEncoding reports whether name (case-insensitive) is a supported encoding.
func IsKnownEncoding(name string) bool {
	_, err := encoding.ParseTag(name)
	return err == nil
}

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - svn.binary and svn.locale must not be empty
//   - svn.timeout and svn.max_output_bytes must be positive
//   - svn.status_concurrency must be between 1 and 64
//   - encoding names must be supported
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateSVNConfig(&cfg.SVN); err != nil {
		return err
	}

	return validateEncodingConfig(&cfg.Encoding)
}

// validateSVNConfig checks client-specific configuration values.
func validateSVNConfig(cfg *SVNConfig) error {
	if strings.TrimSpace(cfg.Binary) == "" {
		return errors.Wrap(errors.ErrConfigInvalidSVN, "svn.binary must not be empty")
	}
	if strings.TrimSpace(cfg.Locale) == "" {
		return errors.Wrap(errors.ErrConfigInvalidSVN, "svn.locale must not be empty")
	}
	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidSVN,
			"svn.timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.MaxOutputBytes <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidSVN,
			"svn.max_output_bytes must be positive, got %d", cfg.MaxOutputBytes)
	}
	if cfg.StatusConcurrency < 1 || cfg.StatusConcurrency > 64 {
		return errors.Wrapf(errors.ErrConfigInvalidSVN,
			"svn.status_concurrency must be between 1 and 64, got %d", cfg.StatusConcurrency)
	}
	return nil
}

// validateEncodingConfig checks encoding names.
func validateEncodingConfig(cfg *EncodingConfig) error {
	if cfg.DefaultFileEncoding != "" && !IsKnownEncoding(cfg.DefaultFileEncoding) {
		return errors.Wrapf(errors.ErrConfigInvalidEncoding,
			"encoding.default_file_encoding %q is not supported", cfg.DefaultFileEncoding)
	}
	for _, name := range cfg.Fallbacks {
		if !IsKnownEncoding(name) {
			return errors.Wrapf(errors.ErrConfigInvalidEncoding,
				"encoding.fallbacks entry %q is not supported", name)
		}
	}
	return nil
}
