// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Cast      CastConfig      `mapstructure:"cast"`
	Pond      PondConfig      `mapstructure:"pond"`
	Inventory InventoryConfig `mapstructure:"inventory"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// CastConfig holds timed-cast session configuration.
type CastConfig struct {
	MinDelaySeconds       int `mapstructure:"min_delay_seconds"`
	MaxDelaySeconds       int `mapstructure:"max_delay_seconds"`
	ReactionWindowSeconds int `mapstructure:"reaction_window_seconds"`
	SessionTimeoutSeconds int `mapstructure:"session_timeout_seconds"`
	CooldownCasts         int `mapstructure:"cooldown_casts"`
	CooldownSeconds       int `mapstructure:"cooldown_seconds"`
}

// PondConfig holds grid game configuration.
type PondConfig struct {
	Rows                  int `mapstructure:"rows"`
	Cols                  int `mapstructure:"cols"`
	Tries                 int `mapstructure:"tries"`
	SessionTimeoutSeconds int `mapstructure:"session_timeout_seconds"`
}

// InventoryConfig holds item paginator configuration.
type InventoryConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase
	// e.g., BOT_TOKEN, DATABASE_HOST, DATABASE_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file not found is OK, env vars can provide all config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "fishingbot")
	v.SetDefault("database.name", "fishingbot")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Cast defaults
	v.SetDefault("cast.min_delay_seconds", 3)
	v.SetDefault("cast.max_delay_seconds", 7)
	v.SetDefault("cast.reaction_window_seconds", 3)
	v.SetDefault("cast.session_timeout_seconds", 30)
	v.SetDefault("cast.cooldown_casts", 2)
	v.SetDefault("cast.cooldown_seconds", 60)

	// Pond defaults
	v.SetDefault("pond.rows", 5)
	v.SetDefault("pond.cols", 5)
	v.SetDefault("pond.tries", 10)
	v.SetDefault("pond.session_timeout_seconds", 60)

	// Inventory defaults
	v.SetDefault("inventory.timeout_seconds", 180)
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}
