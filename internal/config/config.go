// Package config loads the client's settings: defaults, then
// $MOPS_CONFIG_DIR/config.yaml (default ~/.mops), then MOPS_* environment
// variables. Command-line flags are applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL  = "http://127.0.0.1:8787"
	DefaultTimeout = 15 * time.Second
	fileName       = "config.yaml"
)

type Config struct {
	APIURL  string        `yaml:"apiUrl" json:"apiUrl" env:"MOPS_API_URL"`
	OrgID   string        `yaml:"orgId" json:"orgId" env:"MOPS_ORG_ID"`
	Token   string        `yaml:"token,omitempty" json:"token,omitempty" env:"MOPS_TOKEN"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" env:"MOPS_TIMEOUT"`
	Log     LogConfig     `yaml:"log" json:"log"`
	TUI     TUIConfig     `yaml:"tui" json:"tui"`
}

// LogConfig picks the level (debug|info|warn|error) and an optional output
// file. The TUI always logs to a file since stdout is the screen.
type LogConfig struct {
	Level       string `yaml:"level" json:"level" env:"MOPS_LOG_LEVEL"`
	File        string `yaml:"file,omitempty" json:"file,omitempty" env:"MOPS_LOG_FILE"`
	Development bool   `yaml:"development,omitempty" json:"development,omitempty" env:"MOPS_LOG_DEVELOPMENT"`
}

// TUIConfig holds the appearance profile (default|contrast|mono) and the
// calendar's initial view (day|week|month).
type TUIConfig struct {
	Profile      string `yaml:"profile,omitempty" json:"profile,omitempty" env:"MOPS_TUI_PROFILE"`
	CalendarView string `yaml:"calendarView,omitempty" json:"calendarView,omitempty" env:"MOPS_TUI_CALENDAR_VIEW"`
}

func Default() Config {
	return Config{
		APIURL:  DefaultAPIURL,
		Timeout: DefaultTimeout,
		Log:     LogConfig{Level: "info"},
		TUI:     TUIConfig{Profile: "default", CalendarView: "week"},
	}
}

func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.mops).
	if v := strings.TrimSpace(os.Getenv("MOPS_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".mops"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load returns defaults overlaid with the config file (if any) and the environment.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(path)
}

func LoadFile(path string) (Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// ReadFile returns defaults overlaid with path alone, ignoring the
// environment. A missing file is not an error.
func ReadFile(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, err
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	c.OrgID = strings.TrimSpace(c.OrgID)
	c.Token = strings.TrimSpace(c.Token)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.File = strings.TrimSpace(c.Log.File)
	c.TUI.Profile = strings.ToLower(strings.TrimSpace(c.TUI.Profile))
	c.TUI.CalendarView = strings.ToLower(strings.TrimSpace(c.TUI.CalendarView))
}

// Validate checks what every command needs to reach the backend.
func (c Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("config: apiUrl is empty")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: apiUrl %q is not an http(s) URL", c.APIURL)
	}
	if c.OrgID == "" {
		return errors.New("config: orgId is empty (set it in config.yaml, MOPS_ORG_ID or --org)")
	}
	if c.Timeout < 0 {
		return errors.New("config: timeout must not be negative")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Token != "" {
		c.Token = "********"
	}
	return c
}

// Save writes cfg to the config file, keeping the previous file as config.yaml.bak.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, fileName+".bak.*.tmp", path+".bak", prev, 0o600)
	}
	return atomicWriteFile(dir, fileName+".*.tmp", path, b, 0o600)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
