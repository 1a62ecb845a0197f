package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = ".pbadm.yaml"
	logFileName    = ".pbadm.log"
)

// DefaultURL is the backend used when no server profile is configured.
const DefaultURL = "http://72.62.92.138:5419"

// DefaultPageSize is the users page size when a profile does not set one.
const DefaultPageSize = 10

// Data source variants for a server profile.
const (
	SourceRemote = "remote"
	SourceStatic = "static"
)

// ServerConfig holds configuration for a single backend.
type ServerConfig struct {
	URL      string `yaml:"url"`
	Locale   string `yaml:"locale,omitempty"`
	PageSize int    `yaml:"page-size,omitempty"`
	Source   string `yaml:"source,omitempty"`
	// Optional user mutation endpoints; both take ?id=. Unset means the
	// server cannot block or delete users from this console.
	UserUpdatePath string `yaml:"user-update-path,omitempty"`
	UserDeletePath string `yaml:"user-delete-path,omitempty"`
}

// Config is the top-level configuration structure.
type Config struct {
	CurrentServer string                  `yaml:"current-server,omitempty"`
	Servers       map[string]ServerConfig `yaml:"servers,omitempty"`
}

// Env holds environment overrides. Flags take precedence over these.
type Env struct {
	ConfigPath string `env:"PBADM_CONFIG"`
	Server     string `env:"PBADM_SERVER"`
	URL        string `env:"PBADM_URL"`
	Locale     string `env:"PBADM_LOCALE"`
	Source     string `env:"PBADM_SOURCE"`
	PageSize   int    `env:"PBADM_PAGE_SIZE"`
	LogFile    string `env:"PBADM_LOG_FILE"`
	LogLevel   string `env:"PBADM_LOG_LEVEL"`
}

// LoadEnv reads the PBADM_* environment variables.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// configPath returns the path to the config file: PBADM_CONFIG when set,
// else ~/.pbadm.yaml.
func configPath() (string, error) {
	e, err := LoadEnv()
	if err != nil {
		return "", err
	}
	if e.ConfigPath != "" {
		return e.ConfigPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return configFileName, nil
	}
	return filepath.Join(home, configFileName), nil
}

// DefaultLogPath is where the TUI logs when no log file is given.
func DefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), logFileName)
	}
	return filepath.Join(home, logFileName)
}

// Load reads the config file and returns a Config.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Servers: map[string]ServerConfig{}}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Servers == nil {
		cfg.Servers = map[string]ServerConfig{}
	}
	return &cfg, nil
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Resolve returns the ServerConfig to use based on priority:
// 1. named server (from --server flag or PBADM_SERVER env)
// 2. current-server in config
// 3. the built-in default backend when no servers are configured
func (c *Config) Resolve(serverName string) (*ServerConfig, string, error) {
	if serverName == "" {
		e, err := LoadEnv()
		if err != nil {
			return nil, "", err
		}
		serverName = e.Server
	}
	if serverName == "" {
		serverName = c.CurrentServer
	}
	if serverName == "" {
		if len(c.Servers) == 0 {
			def := Default()
			return &def, "default", nil
		}
		return nil, "", fmt.Errorf("no server selected; run 'pbadm server use <name>' or set PBADM_SERVER")
	}

	srv, ok := c.Servers[serverName]
	if !ok {
		return nil, "", fmt.Errorf("server %q not found in config", serverName)
	}
	srv = srv.WithDefaults()
	return &srv, serverName, nil
}

// Default returns the built-in server profile.
func Default() ServerConfig {
	return ServerConfig{URL: DefaultURL}.WithDefaults()
}

// WithDefaults fills unset fields.
func (s ServerConfig) WithDefaults() ServerConfig {
	if s.PageSize < 1 {
		s.PageSize = DefaultPageSize
	}
	if s.Source == "" {
		s.Source = SourceRemote
	}
	if s.Locale == "" {
		s.Locale = "en"
	}
	return s
}

// ApplyEnv overlays non-empty environment values.
func (s ServerConfig) ApplyEnv(e Env) ServerConfig {
	return s.Merge(ServerConfig{URL: e.URL, Locale: e.Locale, Source: e.Source, PageSize: e.PageSize})
}

// Merge overlays the non-empty fields of o.
func (s ServerConfig) Merge(o ServerConfig) ServerConfig {
	if o.URL != "" {
		s.URL = o.URL
	}
	if o.Locale != "" {
		s.Locale = o.Locale
	}
	if o.Source != "" {
		s.Source = o.Source
	}
	if o.PageSize > 0 {
		s.PageSize = o.PageSize
	}
	if o.UserUpdatePath != "" {
		s.UserUpdatePath = o.UserUpdatePath
	}
	if o.UserDeletePath != "" {
		s.UserDeletePath = o.UserDeletePath
	}
	return s
}

// Validate checks a resolved profile.
func (s ServerConfig) Validate() error {
	switch s.Source {
	case SourceRemote:
		if s.URL == "" {
			return fmt.Errorf("server URL is not set")
		}
	case SourceStatic:
	default:
		return fmt.Errorf("unknown source %q (use %s or %s)", s.Source, SourceRemote, SourceStatic)
	}
	if s.PageSize < 1 {
		return fmt.Errorf("page size must be at least 1")
	}
	return nil
}
