package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libinjection "github.com/jptosso/libinjection-sqli"
)

func writeFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "auto", cfg.Dialect)
	assert.Equal(t, libinjection.DefaultMaxTokens, cfg.MaxTokens)
	assert.Equal(t, libinjection.DefaultFingerprintLen, cfg.FingerprintLen)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Zero(t, cfg.RateLimit)

	opts := cfg.Options()
	assert.Equal(t, libinjection.DialectAuto, opts.Dialect)
	assert.Equal(t, libinjection.DefaultFingerprintLen, opts.FingerprintLen)
}

func TestLoadFile(t *testing.T) {
	sets := writeFile(t, "words.txt", "nnnnn words\n")
	path := writeFile(t, "sqli.yaml", `
log_format: json
dialect: mysql
fingerprint_len: 8
rate_limit: 50
sets:
  words: `+sets+`
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, libinjection.DialectMySQL, cfg.Options().Dialect)
	assert.Equal(t, 8, cfg.FingerprintLen)
	assert.Equal(t, 50.0, cfg.RateLimit)
	assert.Equal(t, map[string]string{"words": sets}, cfg.Sets)

	reg, err := cfg.Registry()
	require.NoError(t, err)
	assert.Equal(t, []string{libinjection.DefaultSet, "words"}, reg.Names())
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("SQLI_DIALECT", "ansi")
	t.Setenv("SQLI_MAX_TOKENS", "32")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ansi", cfg.Dialect)
	assert.Equal(t, 32, cfg.MaxTokens)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "dialect: oracle\n"))
	assert.ErrorContains(t, err, "invalid dialect")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			LogFormat:      "text",
			Dialect:        "auto",
			MaxTokens:      10,
			FingerprintLen: 5,
			MaxLineBytes:   1024,
			MaxBodyBytes:   1024,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"dialect", func(c *Config) { c.Dialect = "oracle" }, "dialect"},
		{"max tokens", func(c *Config) { c.MaxTokens = 0 }, "max_tokens"},
		{"fingerprint too long", func(c *Config) { c.FingerprintLen = libinjection.MaxFingerprintLen + 1 }, "fingerprint_len"},
		{"line size", func(c *Config) { c.MaxLineBytes = 0 }, "max_line_bytes"},
		{"rate limit", func(c *Config) { c.RateLimit = -1 }, "rate_limit"},
		{"body size", func(c *Config) { c.MaxBodyBytes = 0 }, "max_body_bytes"},
		{"reserved set", func(c *Config) { c.Sets = map[string]string{"Default": "x.txt"} }, "reserved"},
		{"empty set path", func(c *Config) { c.Sets = map[string]string{"x": ""} }, "path is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			require.NoError(t, cfg.Validate())
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
