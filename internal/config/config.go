// Package config loads taskdeck settings from the XDG config file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "taskdeck"

	// FileName is the config file inside the config directory.
	FileName = "config.yaml"

	EnvAPIURL = "TASKDECK_API_URL"
	EnvTheme  = "TASKDECK_THEME"
)

type Config struct {
	API    APIConfig    `yaml:"api"`
	UI     UIConfig     `yaml:"ui"`
	Notify NotifyConfig `yaml:"notify"`
	Server ServerConfig `yaml:"server"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type UIConfig struct {
	PageSize       int           `yaml:"page_size"`
	SearchDebounce time.Duration `yaml:"search_debounce"`
	Theme          string        `yaml:"theme"`
}

type NotifyConfig struct {
	// Desktop mirrors toasts to notify-send.
	Desktop bool `yaml:"desktop"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr"`
	DataDir string `yaml:"data_dir"` // empty means the XDG data dir
}

// Default returns the settings used when no file or environment overrides exist
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:5000/api",
			Timeout: 10 * time.Second,
		},
		UI: UIConfig{
			PageSize:       6,
			SearchDebounce: 500 * time.Millisecond,
			Theme:          "nord",
		},
		Server: ServerConfig{
			Addr: ":5000",
		},
	}
}

// DefaultDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultPath returns the default config file path
func DefaultPath() string {
	return filepath.Join(DefaultDir(), FileName)
}

// Load reads path (DefaultPath when empty) over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTheme)); v != "" {
		c.UI.Theme = v
	}
}

// Validate rejects settings the client cannot run with
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.UI.PageSize < 1 || c.UI.PageSize > 100 {
		return fmt.Errorf("ui.page_size must be between 1 and 100, got %d", c.UI.PageSize)
	}
	if c.UI.SearchDebounce < 0 {
		return fmt.Errorf("ui.search_debounce cannot be negative")
	}
	return nil
}
