package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// DefaultConfigPath is used when CONFIG_PATH is unset.
const DefaultConfigPath = "/app/config/citations.yaml"

// EnvPrefix prefixes every environment override, e.g. CITATIONS_SERVER_PORT.
const EnvPrefix = "CITATIONS"

type ServerConfig struct {
	Port           int   `mapstructure:"port"`
	MaxBodyBytes   int64 `mapstructure:"max_body_bytes"`
	ReadTimeoutMs  int   `mapstructure:"read_timeout_ms"`
	WriteTimeoutMs int   `mapstructure:"write_timeout_ms"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json|console
}

// DisplayConfig mirrors the knobs of the citation display list.
type DisplayConfig struct {
	MaxItems         int    `mapstructure:"max_items"`
	PlaceholderTitle string `mapstructure:"placeholder_title"`
	SnippetMaxRunes  int    `mapstructure:"snippet_max_runes"`
}

// RateLimitConfig configures the API token bucket. Zero RequestsPerSecond disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Display   DisplayConfig   `mapstructure:"display"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8081,
			MaxBodyBytes:   1 << 20,
			ReadTimeoutMs:  10000,
			WriteTimeoutMs: 10000,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    2113,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Display: DisplayConfig{
			MaxItems:         10,
			PlaceholderTitle: "Source",
			SnippetMaxRunes:  200,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 0,
			Burst:             20,
		},
	}
}

// ConfigPath returns CONFIG_PATH or DefaultConfigPath.
func ConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultConfigPath
}

// Loader reads the service configuration from a YAML file with env overrides.
type Loader struct {
	v          *viper.Viper
	path       string
	fileLoaded bool
}

// NewLoader creates a loader for path. An empty path resolves through ConfigPath.
func NewLoader(path string) *Loader {
	if path == "" {
		path = ConfigPath()
	}
	v := viper.New()
	setDefaults(v, Default())
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v, path: path}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string { return l.path }

// FileLoaded reports whether the last Load found the config file.
func (l *Loader) FileLoaded() bool { return l.fileLoaded }

// Load reads the file (when present) and returns the merged configuration.
// A missing file is not an error: defaults and env overrides still apply.
func (l *Loader) Load() (*Config, error) {
	l.fileLoaded = false
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config %s: %w", l.path, err)
		}
	} else {
		l.fileLoaded = true
	}
	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var c Config
	if err := l.v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.normalize()
	return &c, nil
}

// Load is a convenience wrapper reading from ConfigPath().
func Load() (*Config, error) {
	return NewLoader("").Load()
}

// normalize replaces out-of-range values with defaults.
func (c *Config) normalize() {
	d := Default()
	if c.Server.Port <= 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = d.Server.MaxBodyBytes
	}
	if c.Server.ReadTimeoutMs <= 0 {
		c.Server.ReadTimeoutMs = d.Server.ReadTimeoutMs
	}
	if c.Server.WriteTimeoutMs <= 0 {
		c.Server.WriteTimeoutMs = d.Server.WriteTimeoutMs
	}
	if c.Metrics.Port <= 0 {
		c.Metrics.Port = d.Metrics.Port
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format != "console" {
		c.Logging.Format = d.Logging.Format
	}
	if c.Display.MaxItems <= 0 {
		c.Display.MaxItems = d.Display.MaxItems
	}
	if strings.TrimSpace(c.Display.PlaceholderTitle) == "" {
		c.Display.PlaceholderTitle = d.Display.PlaceholderTitle
	}
	if c.Display.SnippetMaxRunes <= 0 {
		c.Display.SnippetMaxRunes = d.Display.SnippetMaxRunes
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		c.RateLimit.RequestsPerSecond = 0
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = d.RateLimit.Burst
	}
}

// setDefaults registers every key so env overrides reach Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
	v.SetDefault("server.read_timeout_ms", d.Server.ReadTimeoutMs)
	v.SetDefault("server.write_timeout_ms", d.Server.WriteTimeoutMs)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.port", d.Metrics.Port)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("display.max_items", d.Display.MaxItems)
	v.SetDefault("display.placeholder_title", d.Display.PlaceholderTitle)
	v.SetDefault("display.snippet_max_runes", d.Display.SnippetMaxRunes)
	v.SetDefault("rate_limit.requests_per_second", d.RateLimit.RequestsPerSecond)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)
}
