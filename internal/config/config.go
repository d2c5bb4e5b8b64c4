package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Presence PresenceConfig `yaml:"presence"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// RedisConfig holds the quick-access token store configuration
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// Duration wraps time.Duration so yaml accepts "5m"-style strings
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// PresenceConfig holds presence and message-lifecycle tuning
type PresenceConfig struct {
	StaleThreshold   Duration `yaml:"stale_threshold"`
	GracePeriod      Duration `yaml:"grace_period"`
	QuickTokenTTL    Duration `yaml:"quick_token_ttl"`
	MaxMessageLength int      `yaml:"max_message_length"`
	PageSize         int      `yaml:"page_size"`
}

// SweepConfig holds the scheduler credential for the sweep endpoints
type SweepConfig struct {
	Secret string `yaml:"secret"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills the reference-system values for anything unset
func (c *Config) applyDefaults() {
	if c.Presence.StaleThreshold <= 0 {
		c.Presence.StaleThreshold = Duration(5 * time.Minute)
	}
	if c.Presence.GracePeriod <= 0 {
		c.Presence.GracePeriod = Duration(15 * time.Minute)
	}
	if c.Presence.QuickTokenTTL <= 0 {
		c.Presence.QuickTokenTTL = Duration(24 * time.Hour)
	}
	if c.Presence.MaxMessageLength <= 0 {
		c.Presence.MaxMessageLength = 2000
	}
	if c.Presence.PageSize <= 0 {
		c.Presence.PageSize = 20
	}
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
