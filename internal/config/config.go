// Package config loads the settings shared by the sqli commands.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	libinjection "github.com/jptosso/libinjection-sqli"
)

// EnvPrefix is prepended to every environment override, e.g. SQLI_DIALECT.
const EnvPrefix = "SQLI"

// Config holds the detector, harness and server settings
type Config struct {
	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // text, json

	// Detector
	Dialect        string `mapstructure:"dialect"` // auto, ansi, mysql
	MaxTokens      int    `mapstructure:"max_tokens"`
	FingerprintLen int    `mapstructure:"fingerprint_len"`
	CaseSensitive  bool   `mapstructure:"case_sensitive"`

	// Pattern sets, name to table file
	Sets map[string]string `mapstructure:"sets"`

	// Harness
	MaxLineBytes int `mapstructure:"max_line_bytes"`

	// Server
	ListenAddr      string        `mapstructure:"listen_addr"`
	RateLimit       float64       `mapstructure:"rate_limit"` // requests per second, 0 disables
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("dialect", "auto")
	v.SetDefault("max_tokens", libinjection.DefaultMaxTokens)
	v.SetDefault("fingerprint_len", libinjection.DefaultFingerprintLen)
	v.SetDefault("case_sensitive", false)
	v.SetDefault("sets", map[string]string{})

	v.SetDefault("max_line_bytes", 1<<20)

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("rate_limit", 0.0)
	v.SetDefault("max_body_bytes", int64(1<<20))
	v.SetDefault("shutdown_timeout", 30*time.Second)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables take precedence
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format: %s (must be one of: text, json)", c.LogFormat)
	}

	if _, ok := libinjection.ParseDialect(c.Dialect); !ok {
		return fmt.Errorf("invalid dialect: %s (must be one of: auto, ansi, mysql)", c.Dialect)
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be > 0")
	}

	if c.FingerprintLen <= 0 || c.FingerprintLen > libinjection.MaxFingerprintLen {
		return fmt.Errorf("invalid fingerprint_len: must be 1-%d", libinjection.MaxFingerprintLen)
	}

	if c.MaxLineBytes <= 0 {
		return fmt.Errorf("max_line_bytes must be > 0")
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be >= 0")
	}

	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be > 0")
	}

	for name, path := range c.Sets {
		if path == "" {
			return fmt.Errorf("set %s: path is required", name)
		}
		if strings.EqualFold(name, libinjection.DefaultSet) {
			return fmt.Errorf("set name %q is reserved", libinjection.DefaultSet)
		}
	}

	return nil
}

// Options returns the detector options. The configuration must be valid.
func (c *Config) Options() libinjection.Options {
	dialect, _ := libinjection.ParseDialect(c.Dialect)
	return libinjection.Options{
		Dialect:        dialect,
		MaxTokens:      c.MaxTokens,
		CaseSensitive:  c.CaseSensitive,
		FingerprintLen: c.FingerprintLen,
	}
}

// Registry loads every configured pattern set next to the default one.
func (c *Config) Registry() (*libinjection.Registry, error) {
	reg, err := libinjection.NewRegistry(c.Sets)
	if err != nil {
		return nil, fmt.Errorf("failed to load pattern sets: %w", err)
	}
	return reg, nil
}
