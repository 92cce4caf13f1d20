// Package config holds the server defaults and the optional YAML settings
// file. Command-line flags and environment variables override file values.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "5000"

	// DefaultDatabaseURL is empty; must be provided via flag, environment or file.
	DefaultDatabaseURL = ""

	DefaultLogLevel       = "info"
	DefaultAccessTTL      = 15 * time.Minute
	DefaultRefreshTTL     = 7 * 24 * time.Hour
	DefaultUploadDir      = "uploads"
	DefaultMaxUploadSize  = 5 << 20
	DefaultStorageBackend = StorageLocal
	DefaultStuckSweep     = "@every 1h"
	DefaultLoginRate      = 5
	DefaultLoginBurst     = 10
)

// Storage backends for uploaded resumes.
const (
	StorageLocal = "local"
	StorageGCS   = "gcs"
)

// Config is the full server configuration.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
	// LoginPerMinute limits login and registration attempts per client IP.
	LoginPerMinute int `yaml:"login_per_minute"`
	LoginBurst     int `yaml:"login_burst"`
}

// DatabaseConfig configures the Postgres pool.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
}

// AuthConfig configures token signing.
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	RefreshSecret string        `yaml:"refresh_secret"`
	AccessTTL     time.Duration `yaml:"-"`
	RefreshTTL    time.Duration `yaml:"-"`
	AccessTTLRaw  string        `yaml:"access_ttl"`
	RefreshTTLRaw string        `yaml:"refresh_ttl"`
}

// StorageConfig configures where resumes are kept.
type StorageConfig struct {
	Backend         string `yaml:"backend"`
	UploadDir       string `yaml:"upload_dir"`
	PublicBaseURL   string `yaml:"public_base_url"`
	GCSBucket       string `yaml:"gcs_bucket"`
	CredentialsFile string `yaml:"credentials_file"`
	MaxUploadSize   int64  `yaml:"max_upload_size"`
}

// RedisConfig enables change-event publishing when URL is set.
type RedisConfig struct {
	URL     string `yaml:"url"`
	Channel string `yaml:"channel"`
}

// OpenAIConfig enables model-backed search when APIKey is set.
type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// SchedulerConfig configures the background sweep.
type SchedulerConfig struct {
	StuckSweep string `yaml:"stuck_sweep"`
}

// Default returns a configuration with every optional value filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the YAML file at path and fills in defaults for missing values.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings needed to serve requests.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("config: database.url must be set")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret must be set")
	}
	if c.Storage.Backend == StorageGCS && c.Storage.GCSBucket == "" {
		return fmt.Errorf("config: storage.gcs_bucket must be set for the gcs backend")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("config: database.min_conns (%d) exceeds max_conns (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}
	return nil
}

func (c *Config) normalize() error {
	access, err := parseDurationAllowEmpty(c.Auth.AccessTTLRaw)
	if err != nil {
		return fmt.Errorf("config: auth.access_ttl: %w", err)
	}
	c.Auth.AccessTTL = access

	refresh, err := parseDurationAllowEmpty(c.Auth.RefreshTTLRaw)
	if err != nil {
		return fmt.Errorf("config: auth.refresh_ttl: %w", err)
	}
	c.Auth.RefreshTTL = refresh

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case "", StorageLocal, StorageGCS:
	default:
		return fmt.Errorf("config: storage.backend must be %q or %q, got %q",
			StorageLocal, StorageGCS, c.Storage.Backend)
	}

	if c.Storage.MaxUploadSize < 0 {
		return fmt.Errorf("config: storage.max_upload_size must not be negative")
	}

	c.applyDefaults()
	return nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Server.LoginPerMinute == 0 {
		c.Server.LoginPerMinute = DefaultLoginRate
	}
	if c.Server.LoginBurst == 0 {
		c.Server.LoginBurst = DefaultLoginBurst
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 10
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = 2
	}
	if c.Auth.AccessTTL == 0 {
		c.Auth.AccessTTL = DefaultAccessTTL
	}
	if c.Auth.RefreshTTL == 0 {
		c.Auth.RefreshTTL = DefaultRefreshTTL
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = DefaultStorageBackend
	}
	if c.Storage.UploadDir == "" {
		c.Storage.UploadDir = DefaultUploadDir
	}
	if c.Storage.MaxUploadSize == 0 {
		c.Storage.MaxUploadSize = DefaultMaxUploadSize
	}
	if c.Scheduler.StuckSweep == "" {
		c.Scheduler.StuckSweep = DefaultStuckSweep
	}
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %s must not be negative", raw)
	}
	return d, nil
}
