package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultReferenceURL is the authority resolved paths are compared against
const DefaultReferenceURL = "https://xml2rfc.tools.ietf.org/"

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Source  SourceConfig  `mapstructure:"source"`
	Cache   CacheConfig   `mapstructure:"cache"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds resolution server configuration
type ServerConfig struct {
	URL          string        `mapstructure:"url"`           // Resolution service base URL
	GlobalPrefix string        `mapstructure:"global_prefix"` // Prepended to every path, e.g. "public/rfc/"
	ReferenceURL string        `mapstructure:"reference_url"` // Authority used by --compare
	Timeout      time.Duration `mapstructure:"timeout"`
}

// SourceConfig says where the path index comes from
type SourceConfig struct {
	Location string `mapstructure:"location"` // File path or http(s) URL
	Watch    bool   `mapstructure:"watch"`    // Reload file indexes on change
}

// CacheConfig holds resolution cache configuration
type CacheConfig struct {
	Dir           string        `mapstructure:"dir"` // Empty means memory-only
	Key           string        `mapstructure:"key"` // Bump to invalidate every cached resolution
	TTL           time.Duration `mapstructure:"ttl"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// UIConfig holds listing configuration
type UIConfig struct {
	ItemHeight     int           `mapstructure:"item_height"`
	MarginBefore   int           `mapstructure:"margin_before"`
	MarginAfter    int           `mapstructure:"margin_after"`
	ScrollDebounce time.Duration `mapstructure:"scroll_debounce"`
	Selected       string        `mapstructure:"selected"` // Path selected at startup
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ReferenceURL: DefaultReferenceURL,
			Timeout:      30 * time.Second,
		},
		Source: SourceConfig{
			Watch: true,
		},
		Cache: CacheConfig{
			Dir:           defaultCachePath(),
			Key:           "default",
			TTL:           time.Hour,
			FlushInterval: 10 * time.Second,
		},
		UI: UIConfig{
			ItemHeight:     1,
			MarginBefore:   10,
			MarginAfter:    10,
			ScrollDebounce: 50 * time.Millisecond,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "rfcpaths", "rfcpaths.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "rfcpaths", "rfcpaths.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "rfcpaths")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "rfcpaths")
	}
}

// defaultCachePath returns the default cache directory for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "rfcpaths", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "rfcpaths", "cache")
	}
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.url", cfg.Server.URL)
	v.SetDefault("server.global_prefix", cfg.Server.GlobalPrefix)
	v.SetDefault("server.reference_url", cfg.Server.ReferenceURL)
	v.SetDefault("server.timeout", cfg.Server.Timeout)

	v.SetDefault("source.location", cfg.Source.Location)
	v.SetDefault("source.watch", cfg.Source.Watch)

	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("cache.key", cfg.Cache.Key)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("cache.flush_interval", cfg.Cache.FlushInterval)

	v.SetDefault("ui.item_height", cfg.UI.ItemHeight)
	v.SetDefault("ui.margin_before", cfg.UI.MarginBefore)
	v.SetDefault("ui.margin_after", cfg.UI.MarginAfter)
	v.SetDefault("ui.scroll_debounce", cfg.UI.ScrollDebounce)
	v.SetDefault("ui.selected", cfg.UI.Selected)

	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// Load reads configuration into v. An explicit configFile wins over the
// default search paths.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	setDefaults(v, DefaultConfig())

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides: RFCPATHS_SERVER_URL etc.
	v.SetEnvPrefix("RFCPATHS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.UI.ItemHeight < 1 {
		cfg.UI.ItemHeight = 1
	}

	return cfg, nil
}

// DefaultConfigFile returns the config file written by first-run setup
func DefaultConfigFile() string {
	return filepath.Join(defaultConfigPath(), "config.yaml")
}

// Save writes cfg to configFile through v
func Save(v *viper.Viper, cfg *Config, configFile string) error {
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to keep snake_case key names
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.global_prefix", cfg.Server.GlobalPrefix)
	v.Set("server.reference_url", cfg.Server.ReferenceURL)

	v.Set("source.location", cfg.Source.Location)
	v.Set("source.watch", cfg.Source.Watch)

	v.Set("cache.key", cfg.Cache.Key)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if a server and a path index are set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != "" && c.Source.Location != ""
}

// CacheKeyPrefix starts every durable key holding resolution results
const CacheKeyPrefix = "path-resolution-"

// CacheStoreKey returns the durable key resolution results are persisted under
func (c *Config) CacheStoreKey() string {
	return CacheKeyPrefix + c.Cache.Key
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
