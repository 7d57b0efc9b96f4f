// Package config loads client settings from defaults, an optional
// menjava.yaml, MENJAVA_* environment variables and bound CLI flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration keys.
const (
	APIURL       = "api_url"
	StatePath    = "state_path"
	LogLevel     = "log_level"
	LogFile      = "log_file"
	HTTPTimeout  = "http_timeout"
	PollInterval = "poll_interval"
)

// EnvPrefix prefixes every environment variable, e.g. MENJAVA_API_URL.
const EnvPrefix = "MENJAVA"

// Config holds the client configuration.
type Config struct {
	APIURL       string
	StatePath    string
	LogLevel     string
	LogFile      string
	HTTPTimeout  time.Duration
	PollInterval time.Duration
}

// New returns a viper instance with defaults, config file search paths and
// environment binding set up. Flags are bound by the caller.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("menjava")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "menjava"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(StatePath, defaultStatePath())
	v.SetDefault(LogLevel, "info")
	v.SetDefault(LogFile, "")
	v.SetDefault(HTTPTimeout, 30*time.Second)
	v.SetDefault(PollInterval, 30*time.Second)
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "menjava.sqlite3"
	}
	return filepath.Join(dir, "menjava", "menjava.sqlite3")
}

// Load reads the config file, if any, and returns the validated settings.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{
		APIURL:       strings.TrimRight(strings.TrimSpace(v.GetString(APIURL)), "/"),
		StatePath:    v.GetString(StatePath),
		LogLevel:     strings.ToLower(v.GetString(LogLevel)),
		LogFile:      v.GetString(LogFile),
		HTTPTimeout:  v.GetDuration(HTTPTimeout),
		PollInterval: v.GetDuration(PollInterval),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("%s is required (set --api or %s_API_URL)", APIURL, EnvPrefix)
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", APIURL, c.APIURL)
	}
	if c.StatePath == "" {
		return fmt.Errorf("%s is required", StatePath)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%s must be positive", HTTPTimeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%s must be positive", PollInterval)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%s must be debug, info, warn or error, got %q", LogLevel, c.LogLevel)
	}
	return level, nil
}
