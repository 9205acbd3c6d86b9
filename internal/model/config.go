package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultRemoteURL is the remote task collection imported by default.
const DefaultRemoteURL = "https://683097576205ab0d6c39b6ae.mockapi.io/todos"

// DatabaseConfig locates the embedded store file.
type DatabaseConfig struct {
	// Path is the SQLite file. ":memory:" opens a throwaway database.
	Path string `mapstructure:"path" yaml:"path" json:"path"`
}

// RemoteConfig describes the remote task collection used by import.
type RemoteConfig struct {
	// URL is fetched with a single GET and must return a JSON array.
	URL string `mapstructure:"url" yaml:"url" json:"url"`

	// TimeoutSec bounds the fetch step of an import.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`

	// MaxRetries is how many times an HTTP 429 response is retried.
	// Zero disables retries.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries" json:"max_retries"`
}

// SeedConfig controls first-run sample data.
type SeedConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level" json:"level"`
	JSON       bool   `mapstructure:"json" yaml:"json" json:"json"`
	File       string `mapstructure:"file" yaml:"file" json:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" json:"max_backups"`
}

// ServerConfig holds settings for the export endpoint.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr" json:"addr"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database" json:"database"`
	Remote   RemoteConfig   `mapstructure:"remote" yaml:"remote" json:"remote"`
	Seed     SeedConfig     `mapstructure:"seed" yaml:"seed" json:"seed"`
	Log      LogConfig      `mapstructure:"log" yaml:"log" json:"log"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server" json:"server"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/tasklite/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "tasklite", "config.yaml")
}

// DefaultDatabasePath returns ~/.local/share/tasklite/todos.db.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "todos.db"
	}
	return filepath.Join(home, ".local", "share", "tasklite", "todos.db")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{Path: DefaultDatabasePath()},
		Remote: RemoteConfig{
			URL:        DefaultRemoteURL,
			TimeoutSec: 15,
			MaxRetries: 0,
		},
		Seed: SeedConfig{Enabled: true},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with TASKLITE_ override file values
// (remote.url becomes TASKLITE_REMOTE_URL). If the file does not exist,
// defaults plus environment overrides are returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("tasklite")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	def := DefaultAppConfig()
	v.SetDefault("database.path", def.Database.Path)
	v.SetDefault("remote.url", def.Remote.URL)
	v.SetDefault("remote.timeout_sec", def.Remote.TimeoutSec)
	v.SetDefault("remote.max_retries", def.Remote.MaxRetries)
	v.SetDefault("seed.enabled", def.Seed.Enabled)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.json", def.Log.JSON)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("log.max_size_mb", def.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", def.Log.MaxBackups)
	v.SetDefault("server.addr", def.Server.Addr)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.Database.Path = expandHome(cfg.Database.Path)
	cfg.Log.File = expandHome(cfg.Log.File)
	if cfg.Remote.TimeoutSec <= 0 {
		cfg.Remote.TimeoutSec = def.Remote.TimeoutSec
	}
	if cfg.Remote.MaxRetries < 0 {
		cfg.Remote.MaxRetries = 0
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("remote", cfg.Remote)
	v.Set("seed", cfg.Seed)
	v.Set("log", cfg.Log)
	v.Set("server", cfg.Server)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
