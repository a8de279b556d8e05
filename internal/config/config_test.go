package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/svnbridge/internal/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, Validate(cfg))
	assert.Equal(t, "svn", cfg.SVN.Binary)
	assert.Equal(t, "en_US.UTF-8", cfg.SVN.Locale)
	assert.Equal(t, 30*time.Second, cfg.SVN.Timeout)
	assert.Equal(t, int64(50*1024*1024), cfg.SVN.MaxOutputBytes)
	assert.True(t, cfg.Encoding.EnableDetection)
	assert.Equal(t, []string{"gbk", "gb18030", "big5", "shift_jis", "euc-jp", "euc-kr"}, cfg.Encoding.Fallbacks)
}

func TestLoadFromPaths_DefaultsWhenNoFiles(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFromPaths(context.Background(), filepath.Join(dir, "missing.yaml"), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().SVN.Timeout, cfg.SVN.Timeout)
	assert.Equal(t, DefaultConfig().Encoding.Fallbacks, cfg.Encoding.Fallbacks)
}

func TestLoadFromPaths_ProjectOverridesGlobal(t *testing.T) {
	globalDir := t.TempDir()
	projectDir := t.TempDir()

	globalPath := writeConfig(t, globalDir, `
svn:
  timeout: 45s
  username: global-user
encoding:
  fallbacks: [big5]
`)
	projectPath := writeConfig(t, projectDir, `
svn:
  username: project-user
encoding:
  show_encoding_info: true
`)

	cfg, err := LoadFromPaths(context.Background(), projectPath, globalPath)
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.SVN.Timeout)
	assert.Equal(t, "project-user", cfg.SVN.Username)
	assert.Equal(t, []string{"big5"}, cfg.Encoding.Fallbacks)
	assert.True(t, cfg.Encoding.ShowEncodingInfo)
}

func TestLoadFromPaths_EnvOverrides(t *testing.T) {
	t.Setenv("SVNBRIDGE_SVN_LOCALE", "C.UTF-8")
	t.Setenv("SVNBRIDGE_SVN_TIMEOUT", "2m")

	cfg, err := LoadFromPaths(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "C.UTF-8", cfg.SVN.Locale)
	assert.Equal(t, 2*time.Minute, cfg.SVN.Timeout)
}

func TestLoadFromPaths_InvalidEncodingRejected(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
encoding:
  fallbacks: [gbk, klingon]
`)

	_, err := LoadFromPaths(context.Background(), path, "")
	require.Error(t, err)
	require.ErrorIs(t, err, errors.ErrConfigInvalidEncoding)
	assert.Contains(t, err.Error(), "klingon")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid defaults", func(*Config) {}, nil},
		{"empty binary", func(c *Config) { c.SVN.Binary = " " }, errors.ErrConfigInvalidSVN},
		{"empty locale", func(c *Config) { c.SVN.Locale = "" }, errors.ErrConfigInvalidSVN},
		{"zero timeout", func(c *Config) { c.SVN.Timeout = 0 }, errors.ErrConfigInvalidSVN},
		{"negative buffer", func(c *Config) { c.SVN.MaxOutputBytes = -1 }, errors.ErrConfigInvalidSVN},
		{"zero concurrency", func(c *Config) { c.SVN.StatusConcurrency = 0 }, errors.ErrConfigInvalidSVN},
		{"unknown default encoding", func(c *Config) { c.Encoding.DefaultFileEncoding = "ebcdic" }, errors.ErrConfigInvalidEncoding},
		{"mixed case encoding accepted", func(c *Config) { c.Encoding.DefaultFileEncoding = "GBK" }, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := Validate(cfg)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	t.Run("nil config", func(t *testing.T) {
		require.ErrorIs(t, Validate(nil), errors.ErrConfigNil)
	})
}

func TestApplyOverrides(t *testing.T) {
	cfg := DefaultConfig()
	applyOverrides(cfg, &Config{
		SVN:      SVNConfig{Binary: "/opt/svn/bin/svn", Timeout: time.Minute},
		Encoding: EncodingConfig{Fallbacks: []string{"euc-kr"}},
	})

	assert.Equal(t, "/opt/svn/bin/svn", cfg.SVN.Binary)
	assert.Equal(t, time.Minute, cfg.SVN.Timeout)
	assert.Equal(t, "en_US.UTF-8", cfg.SVN.Locale)
	assert.Equal(t, []string{"euc-kr"}, cfg.Encoding.Fallbacks)
}

func TestPaths_HomeEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SVNBRIDGE_HOME", dir)

	home, err := HomeDir()
	require.NoError(t, err)
	assert.Equal(t, dir, home)

	statePath, err := StatePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "state.yaml"), statePath)

	globalPath, err := GlobalConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), globalPath)
}
