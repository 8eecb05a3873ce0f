package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	AlphaVantage struct {
		APIKey      string        `yaml:"api_key"`
		BaseURL     string        `yaml:"base_url"`
		Interval    string        `yaml:"interval"`
		TierTimeout time.Duration `yaml:"tier_timeout"`
		RateLimit   struct {
			Capacity     float64 `yaml:"capacity"`
			RefillPerMin float64 `yaml:"refill_per_min"`
		} `yaml:"rate_limit"`
	} `yaml:"alphavantage"`
	Quotes struct {
		CacheTTL      time.Duration `yaml:"cache_ttl"`
		HistoryMonths int           `yaml:"history_months"`
	} `yaml:"quotes"`
	Cache struct {
		Type  string `yaml:"type"`
		Redis struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment
// variables. Validation runs after the overrides so values like the API key
// may come from the environment alone.
func LoadWithEnv(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		c.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("CACHE_TYPE"); v != "" {
		c.Cache.Type = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.AlphaVantage.BaseURL == "" {
		c.AlphaVantage.BaseURL = "https://www.alphavantage.co/query"
	}
	if c.AlphaVantage.Interval == "" {
		c.AlphaVantage.Interval = "5min"
	}
	if c.AlphaVantage.TierTimeout == 0 {
		c.AlphaVantage.TierTimeout = 5 * time.Second
	}
	if c.AlphaVantage.RateLimit.Capacity == 0 {
		c.AlphaVantage.RateLimit.Capacity = 5
	}
	if c.AlphaVantage.RateLimit.RefillPerMin == 0 {
		c.AlphaVantage.RateLimit.RefillPerMin = 5
	}
	if c.Quotes.CacheTTL == 0 {
		c.Quotes.CacheTTL = 5 * time.Minute
	}
	if c.Quotes.HistoryMonths == 0 {
		c.Quotes.HistoryMonths = 5
	}
	if c.Cache.Type == "" {
		c.Cache.Type = "memory"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.AlphaVantage.APIKey == "" {
		return fmt.Errorf("alphavantage.api_key is required")
	}
	if c.Cache.Type != "memory" && c.Cache.Type != "redis" {
		return fmt.Errorf("cache.type must be 'memory' or 'redis', got '%s'", c.Cache.Type)
	}
	if c.Quotes.HistoryMonths < 1 || c.Quotes.HistoryMonths > 6 {
		return fmt.Errorf("quotes.history_months must be between 1 and 6, got %d", c.Quotes.HistoryMonths)
	}
	return nil
}
