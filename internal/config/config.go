// Package config handles the configuration file, its defaults and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tiwariParth/taskboard/internal/storage"
)

const (
	// AppName is the application directory name.
	AppName = "taskboard"

	// ConfigFile is the configuration filename.
	ConfigFile = "config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. TASKBOARD_STORAGE_BACKEND.
	EnvPrefix = "TASKBOARD"

	// SQLiteFile is the database filename used when storage.path is unset.
	SQLiteFile = "taskboard.db"
)

// Storage backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config represents the full configuration
type Config struct {
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Display DisplayConfig `yaml:"display" mapstructure:"display"`
}

// StorageConfig selects where the task list is persisted
type StorageConfig struct {
	// Backend is one of file, sqlite or memory.
	Backend string `yaml:"backend" mapstructure:"backend"`

	// Path is the data directory (file) or database file (sqlite).
	// Empty selects a location under the XDG data directory.
	Path string `yaml:"path" mapstructure:"path"`

	// Key is the storage key the task list lives under.
	Key string `yaml:"key" mapstructure:"key"`
}

// ServerConfig configures the local HTTP server
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// DisplayConfig configures terminal output
type DisplayConfig struct {
	// Timezone is an IANA name or "Local".
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
	Color    bool   `yaml:"color" mapstructure:"color"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendFile,
			Key:     "tasks",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:3000",
		},
		Display: DisplayConfig{
			Timezone: "Local",
			Color:    true,
		},
	}
}

// Load reads the configuration at path on top of the defaults and applies
// TASKBOARD_* environment overrides. An empty path selects DefaultConfigPath.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg, err := LoadRaw(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadRaw is Load without validation, for callers that apply their own
// overrides first and validate the result.
func LoadRaw(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("storage.key", cfg.Storage.Key)
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("display.timezone", cfg.Display.Timezone)
	v.SetDefault("display.color", cfg.Display.Color)
}

// Validate checks the configuration for values no component can use
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("invalid storage.backend %q: must be file, sqlite, or memory", c.Storage.Backend)
	}
	if err := storage.ValidateKey(c.Storage.Key); err != nil {
		return fmt.Errorf("invalid storage.key %q: %w", c.Storage.Key, err)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the display timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Display.Timezone == "" || c.Display.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid display.timezone %q: %w", c.Display.Timezone, err)
	}
	return loc, nil
}

// StoragePath returns the resolved storage location for the configured backend.
// It is empty for the memory backend.
func (c *Config) StoragePath() string {
	if c.Storage.Backend == BackendMemory {
		return ""
	}
	if c.Storage.Path != "" {
		return expandHome(c.Storage.Path)
	}
	if c.Storage.Backend == BackendSQLite {
		return filepath.Join(DefaultDataDir(), SQLiteFile)
	}
	return DefaultDataDir()
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/taskboard/config.yaml,
// falling back to $HOME/.config.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName, ConfigFile)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(AppName, ConfigFile)
	}
	return filepath.Join(home, ".config", AppName, ConfigFile)
}

// DefaultDataDir returns $XDG_DATA_HOME/taskboard, falling back to
// $HOME/.local/share.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// WriteDefault writes the default configuration to path, creating the
// directory. It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := DefaultConfig().Marshal()
	if err != nil {
		return err
	}
	header := "# taskboard configuration\n# storage.backend: file | sqlite | memory\n"
	return os.WriteFile(path, append([]byte(header), data...), 0600)
}

// Marshal renders the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
