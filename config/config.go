/*
Package config loads the planner configuration.

SOURCES (later wins):
  1. Defaults (setDefaults)
  2. config.yaml in ., $HOME/.pochivni or /etc/pochivni, or an explicit path
  3. .env in the working directory (loaded into the process environment)
  4. PLANNER_* environment variables, e.g. PLANNER_SERVER_PORT

Durations are strings ("24h", "750ms") read through the Get* helpers, which
fall back to the default on empty or malformed input.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pochivni/planner/calendar"
)

// Config represents application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Local    LocalConfig    `mapstructure:"local"`
	Holidays HolidaysConfig `mapstructure:"holidays"`
	School   SchoolConfig   `mapstructure:"school"`
	Bridges  BridgesConfig  `mapstructure:"bridges"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Cloud    CloudConfig    `mapstructure:"cloud"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig configures planner serve
type ServerConfig struct {
	Port             int      `mapstructure:"port"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	PrefetchInterval string   `mapstructure:"prefetch_interval"`
}

// AuthConfig configures token signing
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	TokenTTL  string `mapstructure:"token_ttl"`
}

// StorageConfig selects the cloud record backend of the server
type StorageConfig struct {
	Driver      string `mapstructure:"driver"` // "sqlite", "postgres" or "memory"
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// LocalConfig is the device store of the CLI
type LocalConfig struct {
	Driver string `mapstructure:"driver"` // "file" or "sqlite"
	Dir    string `mapstructure:"dir"`
}

// HolidaysConfig configures the holiday provider
type HolidaysConfig struct {
	APIURL   string `mapstructure:"api_url"`
	CacheTTL string `mapstructure:"cache_ttl"`
	Timeout  string `mapstructure:"timeout"`
	Retries  int    `mapstructure:"retries"`
	Offline  bool   `mapstructure:"offline"` // computed calendar only
}

// SchoolConfig configures school-break highlighting
type SchoolConfig struct {
	Exclude []string `mapstructure:"exclude"`
}

// BridgesConfig selects the default bridge-day strategy
type BridgesConfig struct {
	Strategy string `mapstructure:"strategy"`
}

// SyncConfig tunes the cloud reconciler
type SyncConfig struct {
	DebounceWait    string `mapstructure:"debounce_wait"`
	DebounceMaxWait string `mapstructure:"debounce_max_wait"`
	RemoteTimeout   string `mapstructure:"remote_timeout"`
}

// CloudConfig is how the CLI reaches planner serve
type CloudConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
	User  string `mapstructure:"user"`
}

// LogConfig configures zap
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Load loads configuration. A missing config file is not an error; a
// malformed one is.
func Load(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.pochivni")
		v.AddConfigPath("/etc/pochivni")
	}

	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("server.prefetch_interval", "6h")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "720h")
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite_path", "./data/planner.db")
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("local.driver", "file")
	v.SetDefault("local.dir", "$HOME/.pochivni/local")
	v.SetDefault("holidays.api_url", "https://openholidaysapi.org")
	v.SetDefault("holidays.cache_ttl", "24h")
	v.SetDefault("holidays.timeout", "10s")
	v.SetDefault("holidays.retries", 3)
	v.SetDefault("holidays.offline", false)
	v.SetDefault("school.exclude", calendar.DefaultSchoolExclusions)
	v.SetDefault("bridges.strategy", string(calendar.StrategyFullWeek))
	v.SetDefault("sync.debounce_wait", "1s")
	v.SetDefault("sync.debounce_max_wait", "5s")
	v.SetDefault("sync.remote_timeout", "5s")
	v.SetDefault("cloud.url", "http://localhost:8080")
	v.SetDefault("cloud.token", "")
	v.SetDefault("cloud.user", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for sqlite driver")
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.driver must be 'sqlite', 'postgres' or 'memory', got '%s'", c.Storage.Driver)
	}

	switch c.Local.Driver {
	case "file", "sqlite":
	default:
		return fmt.Errorf("local.driver must be 'file' or 'sqlite', got '%s'", c.Local.Driver)
	}
	if c.Local.Dir == "" {
		return fmt.Errorf("local.dir is required")
	}

	if _, err := calendar.BridgeDetector(c.Bridges.Strategy); err != nil {
		return fmt.Errorf("bridges.strategy: %w", err)
	}

	if c.Holidays.Retries < 0 {
		return fmt.Errorf("holidays.retries must not be negative")
	}

	for key, value := range map[string]string{
		"server.prefetch_interval": c.Server.PrefetchInterval,
		"auth.token_ttl":           c.Auth.TokenTTL,
		"holidays.cache_ttl":       c.Holidays.CacheTTL,
		"holidays.timeout":         c.Holidays.Timeout,
		"sync.debounce_wait":       c.Sync.DebounceWait,
		"sync.debounce_max_wait":   c.Sync.DebounceMaxWait,
		"sync.remote_timeout":      c.Sync.RemoteTimeout,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s: invalid duration %q", key, value)
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got '%s'", c.Log.Level)
	}

	return nil
}

// ValidateServer checks what planner serve needs on top of Validate.
func (c *Config) ValidateServer() error {
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("auth.jwt_secret must be at least 16 characters")
	}
	return nil
}

func duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// GetPrefetchInterval returns how often the holiday cache is warmed
func (c *ServerConfig) GetPrefetchInterval() time.Duration {
	return duration(c.PrefetchInterval, 6*time.Hour)
}

// GetTokenTTL returns the lifetime of issued tokens
func (c *AuthConfig) GetTokenTTL() time.Duration {
	return duration(c.TokenTTL, 30*24*time.Hour)
}

// GetCacheTTL returns holiday cache TTL duration
func (c *HolidaysConfig) GetCacheTTL() time.Duration {
	return duration(c.CacheTTL, 24*time.Hour)
}

// GetTimeout returns the holiday request timeout
func (c *HolidaysConfig) GetTimeout() time.Duration {
	return duration(c.Timeout, 10*time.Second)
}

// GetDebounceWait returns the quiet period before a cloud write
func (c *SyncConfig) GetDebounceWait() time.Duration {
	return duration(c.DebounceWait, time.Second)
}

// GetDebounceMaxWait returns the longest a burst may delay a cloud write
func (c *SyncConfig) GetDebounceMaxWait() time.Duration {
	return duration(c.DebounceMaxWait, 5*time.Second)
}

// GetRemoteTimeout returns the timeout of each cloud call
func (c *SyncConfig) GetRemoteTimeout() time.Duration {
	return duration(c.RemoteTimeout, 5*time.Second)
}

// GetDir returns the device directory with environment variables expanded
func (c *LocalConfig) GetDir() string {
	return os.ExpandEnv(c.Dir)
}
