// Package config handles configuration loading and defaults.
//
// Precedence, lowest to highest: built-in defaults, the TOML file under
// ~/.todotui, TODOTUI_* environment variables, then command-line flags
// (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	configFileName = "config.toml"
	logFileName    = "todotui.log"

	// EnvPrefix namespaces every environment override.
	EnvPrefix = "TODOTUI_"
)

// Default values.
const (
	DefaultAPIURL   = "http://localhost:8080"
	DefaultUserID   = 1
	DefaultTheme    = "classic"
	DefaultLogLevel = "info"
)

// Config holds the full configuration for the client.
type Config struct {
	APIURL   string `toml:"api_url"`
	UserID   int    `toml:"user_id"`
	Theme    string `toml:"theme"`
	LogLevel string `toml:"log_level"`
}

// Default returns a config usable out of the box against a local todotuid.
func Default() Config {
	return Config{
		APIURL:   DefaultAPIURL,
		UserID:   DefaultUserID,
		Theme:    DefaultTheme,
		LogLevel: DefaultLogLevel,
	}
}

// Dir returns the dotfile directory (~/.todotui), creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	dir := filepath.Join(home, ".todotui")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	return dir, nil
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LogPath returns the default log file location.
func LogPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logFileName), nil
}

// Load resolves the config from path (empty means the default location),
// then applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := getenv("API_URL"); v != "" {
		c.APIURL = v
	}
	if v := getenv("USER_ID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.UserID = n
		}
	}
	if v := getenv("THEME"); v != "" {
		c.Theme = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate rejects configs the client cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("api_url is empty")
	}
	if c.UserID <= 0 {
		return fmt.Errorf("user_id must be positive, got %d", c.UserID)
	}
	return nil
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + key))
}
