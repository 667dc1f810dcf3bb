// Package config loads user configuration from
// $XDG_CONFIG_HOME/propboard/config.yaml. Missing values fall back to
// defaults and PROPBOARD_* environment variables override the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thenoetrevino/propboard/internal/config/colors"
	"github.com/thenoetrevino/propboard/internal/types"
	"github.com/thenoetrevino/propboard/internal/workflow"
)

// Config represents the application configuration
type Config struct {
	Database    DatabaseConfig     `yaml:"database"`
	Daemon      DaemonConfig       `yaml:"daemon"`
	Redis       RedisConfig        `yaml:"redis"`
	Boards      BoardsConfig       `yaml:"boards"`
	Workflow    WorkflowConfig     `yaml:"workflow"`
	KeyMappings KeyMappings        `yaml:"key_mappings"`
	ColorScheme colors.ColorScheme `yaml:"theme"`
}

// DatabaseConfig locates the sqlite file. Empty means ~/.propboard/propboard.db.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// DaemonConfig configures the local event daemon
type DaemonConfig struct {
	Socket      string `yaml:"socket"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// RedisConfig enables the redis event bus when Addr is set
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// BoardsConfig points at board definition files
type BoardsConfig struct {
	Dir           string `yaml:"dir"`
	WatchDebounce string `yaml:"watch_debounce"`
}

// WorkflowConfig holds the acting role and column matching policy
type WorkflowConfig struct {
	Role        types.Role `yaml:"role"`
	MatchPolicy string     `yaml:"match_policy"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads config from the user's config directory.
// Returns default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		c := Default()
		c.applyEnv()
		return c, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads config from an explicit path. A missing file yields defaults.
func LoadFile(configPath string) (*Config, error) {
	var c Config
	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	}

	loadThemeFile(&c)
	c.applyDefaults()
	c.applyEnv()

	if _, err := c.Policy(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save writes the config to the user's config directory
func (c *Config) Save() error {
	configPath, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0o644)
}

// Path returns the path to the config file
func Path() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "propboard", "config.yaml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "propboard", "config.yaml"), nil
}

// Policy parses the configured match policy
func (c *Config) Policy() (workflow.MatchPolicy, error) {
	p, err := workflow.ParseMatchPolicy(c.Workflow.MatchPolicy)
	if err != nil {
		return p, fmt.Errorf("workflow.match_policy: %w", err)
	}
	return p, nil
}

// WatchDebounce returns the board watch debounce, 500ms when unset or invalid
func (c *Config) WatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Boards.WatchDebounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// loadThemeFile merges the theme from PROPBOARD_THEME_FILE when set
func loadThemeFile(c *Config) {
	themeFile := os.Getenv("PROPBOARD_THEME_FILE")
	if themeFile == "" {
		return
	}
	themeData, err := os.ReadFile(themeFile)
	if err != nil {
		return
	}
	var themeConfig struct {
		Theme colors.ColorScheme `yaml:"theme"`
	}
	if yaml.Unmarshal(themeData, &themeConfig) == nil {
		c.ColorScheme.MergeFrom(themeConfig.Theme)
	}
}

func (c *Config) applyDefaults() {
	if c.Daemon.Socket == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Daemon.Socket = filepath.Join(home, ".propboard", "propboard.sock")
		}
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "propboard"
	}
	if c.Boards.WatchDebounce == "" {
		c.Boards.WatchDebounce = "500ms"
	}
	if c.Workflow.Role == "" {
		c.Workflow.Role = "user"
	}
	if c.Workflow.MatchPolicy == "" {
		c.Workflow.MatchPolicy = workflow.MatchColumnOrder.String()
	}
	c.KeyMappings.applyDefaults()
	c.ColorScheme.ApplyDefaults()
}

// applyEnv overrides file values with PROPBOARD_* variables
func (c *Config) applyEnv() {
	override := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override("PROPBOARD_DB_PATH", &c.Database.Path)
	override("PROPBOARD_SOCKET", &c.Daemon.Socket)
	override("PROPBOARD_METRICS_ADDR", &c.Daemon.MetricsAddr)
	override("PROPBOARD_REDIS_ADDR", &c.Redis.Addr)
	override("PROPBOARD_REDIS_PASSWORD", &c.Redis.Password)
	override("PROPBOARD_BOARDS_DIR", &c.Boards.Dir)
	override("PROPBOARD_MATCH_POLICY", &c.Workflow.MatchPolicy)
	if v := os.Getenv("PROPBOARD_ROLE"); v != "" {
		c.Workflow.Role = types.Role(v)
	}
	if v := os.Getenv("PROPBOARD_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = n
		}
	}
}
