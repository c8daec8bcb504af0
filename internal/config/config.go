package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the main structure mapping the entire application configuration.
type Config struct {
	// Server configuration section containing HTTP server settings
	Server struct {
		Port    int    `mapstructure:"port"`     // HTTP server port (default: 8080)
		BaseURL string `mapstructure:"base_url"` // Base URL for generating short links
	} `mapstructure:"server"`

	// Database configuration section for SQLite settings
	Database struct {
		Name string `mapstructure:"name"` // SQLite database file name
	} `mapstructure:"database"`

	// Shortener configuration for code generation
	Shortener struct {
		CodeLength int `mapstructure:"code_length"` // Generated short code length
		MaxRetries int `mapstructure:"max_retries"` // Generation attempts before giving up
	} `mapstructure:"shortener"`

	// RateLimit configuration for per-client admission control
	RateLimit struct {
		Points        int `mapstructure:"points"`         // Requests admitted per window
		WindowSeconds int `mapstructure:"window_seconds"` // Window length in seconds
	} `mapstructure:"ratelimit"`

	// Analytics configuration for asynchronous click tracking
	Analytics struct {
		BufferSize  int `mapstructure:"buffer_size"`  // Size of the click event channel buffer
		WorkerCount int `mapstructure:"worker_count"` // Number of worker goroutines for processing clicks
	} `mapstructure:"analytics"`

	// Monitor configuration for URL health checking
	Monitor struct {
		IntervalMinutes int `mapstructure:"interval_minutes"` // Interval in minutes between URL health checks
	} `mapstructure:"monitor"`

	// Redis configuration for the optional resolve cache.
	// An empty addr disables the cache entirely.
	Redis struct {
		Addr            string `mapstructure:"addr"`              // host:port, empty = no cache
		CacheTTLMinutes int    `mapstructure:"cache_ttl_minutes"` // Cached resolve entry lifetime
	} `mapstructure:"redis"`
}

// LoadConfig loads the application configuration using Viper.
// It supports environment variable overrides (SERVER_PORT, REDIS_ADDR, ...)
// and a YAML configuration file under ./configs; every key has a default so
// a missing file is not fatal.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.AddConfigPath("./configs")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("database.name", "shortener.db")
	viper.SetDefault("shortener.code_length", 6)
	viper.SetDefault("shortener.max_retries", 5)
	viper.SetDefault("ratelimit.points", 100)
	viper.SetDefault("ratelimit.window_seconds", 900)
	viper.SetDefault("analytics.buffer_size", 1000)
	viper.SetDefault("analytics.worker_count", 5)
	viper.SetDefault("monitor.interval_minutes", 5)
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.cache_ttl_minutes", 1440)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using default values")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	log.Printf("Configuration loaded: Server Port=%d, DB Name=%s, RateLimit=%d/%ds, Analytics Buffer=%d",
		cfg.Server.Port, cfg.Database.Name, cfg.RateLimit.Points, cfg.RateLimit.WindowSeconds, cfg.Analytics.BufferSize)

	return &cfg, nil
}
