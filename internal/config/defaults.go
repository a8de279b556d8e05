package config

import (
	"github.com/mrz1836/svnbridge/internal/constants"
)

// DefaultFallbackEncodings is the ordered list of regional encodings tried
// when content is not valid UTF-8.
func DefaultFallbackEncodings() []string {
	return []string{"gbk", "gb18030", "big5", "shift_jis", "euc-jp", "euc-kr"}
}

// DefaultConfig returns a new Config with sensible default values.
// These defaults are used as the base layer that can be overridden by
// config files, environment variables, and CLI flags.
func DefaultConfig() *Config {
	return &Config{
		SVN: SVNConfig{
			Binary: constants.DefaultSVNBinary,

			// Locale: keywords and dates must come back in a parseable language.
			Locale: constants.DefaultLocale,

			Timeout:        constants.DefaultCommandTimeout,
			MaxOutputBytes: constants.DefaultMaxOutputBytes,

			// Username: empty means rely on the client's cached credentials.
			Username:       "",
			PasswordEnvVar: constants.DefaultPasswordEnvVar,

			DiffBinary:        constants.DefaultDiffBinary,
			StatusConcurrency: constants.DefaultStatusConcurrency,
		},
		Encoding: EncodingConfig{
			// DefaultFileEncoding: empty means auto-detect.
			DefaultFileEncoding: "",
			EnableDetection:     true,
			Fallbacks:           DefaultFallbackEncodings(),
			ForceUTF8Output:     true,
			ShowEncodingInfo:    false,
		},
	}
}
