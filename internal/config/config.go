package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Backend   BackendConfig   `yaml:"backend"`
	State     StateConfig     `yaml:"state"`
	Timers    TimersConfig    `yaml:"timers"`
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Log       LogConfig       `yaml:"log"`
}

type BackendConfig struct {
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

type StateConfig struct {
	Dir string `yaml:"dir"`
}

type TimersConfig struct {
	Tick time.Duration `yaml:"tick"`
}

type ServerConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Addr returns the host:port the companion API listens on without tailscale.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error when path is empty; everything can come from env.
// Env vars use the prefix REPSESSION_ and underscore-separated paths:
//
//	REPSESSION_BACKEND_URL, REPSESSION_BACKEND_TOKEN, REPSESSION_BACKEND_TIMEOUT,
//	REPSESSION_STATE_DIR, REPSESSION_TIMERS_TICK,
//	REPSESSION_SERVER_HOST, REPSESSION_SERVER_PORT, REPSESSION_SERVER_API_KEY,
//	REPSESSION_TAILSCALE_ENABLED, REPSESSION_TAILSCALE_HOSTNAME, REPSESSION_TAILSCALE_STATE_DIR,
//	REPSESSION_LOG_LEVEL, REPSESSION_LOG_FILE
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	str := map[string]*string{
		"REPSESSION_BACKEND_URL":         &cfg.Backend.URL,
		"REPSESSION_BACKEND_TOKEN":       &cfg.Backend.Token,
		"REPSESSION_STATE_DIR":           &cfg.State.Dir,
		"REPSESSION_SERVER_HOST":         &cfg.Server.Host,
		"REPSESSION_SERVER_API_KEY":      &cfg.Server.APIKey,
		"REPSESSION_TAILSCALE_HOSTNAME":  &cfg.Tailscale.Hostname,
		"REPSESSION_TAILSCALE_STATE_DIR": &cfg.Tailscale.StateDir,
		"REPSESSION_LOG_LEVEL":           &cfg.Log.Level,
		"REPSESSION_LOG_FILE":            &cfg.Log.File,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"REPSESSION_BACKEND_TIMEOUT": &cfg.Backend.Timeout,
		"REPSESSION_TIMERS_TICK":     &cfg.Timers.Tick,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}

	if v := os.Getenv("REPSESSION_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REPSESSION_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("REPSESSION_TAILSCALE_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("REPSESSION_TAILSCALE_ENABLED: %w", err)
		}
		cfg.Tailscale.Enabled = enabled
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 30 * time.Second
	}
	if c.State.Dir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			c.State.Dir = filepath.Join(dir, "repsession")
		} else {
			c.State.Dir = ".repsession"
		}
	}
	if c.Timers.Tick == 0 {
		c.Timers.Tick = time.Second
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8420
	}
	if c.Tailscale.Hostname == "" {
		c.Tailscale.Hostname = "repsession"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url is required")
	}
	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.url %q is not an absolute URL", c.Backend.URL)
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout must not be negative")
	}
	if c.Timers.Tick < 0 {
		return fmt.Errorf("timers.tick must not be negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}
