package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
alphavantage:
  api_key: demo
`

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if c.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", c.Server.Port)
	}
	if c.AlphaVantage.BaseURL != "https://www.alphavantage.co/query" {
		t.Errorf("BaseURL = %q", c.AlphaVantage.BaseURL)
	}
	if c.AlphaVantage.Interval != "5min" {
		t.Errorf("Interval = %q", c.AlphaVantage.Interval)
	}
	if c.Quotes.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", c.Quotes.CacheTTL)
	}
	if c.Quotes.HistoryMonths != 5 {
		t.Errorf("HistoryMonths = %d, want 5", c.Quotes.HistoryMonths)
	}
	if c.Cache.Type != "memory" {
		t.Errorf("Cache.Type = %q, want memory", c.Cache.Type)
	}
	if c.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", c.Log.Level)
	}
}

func TestLoadExplicitValues(t *testing.T) {
	c, err := Load(writeConfig(t, `
environment: production
server:
  port: 9090
  read_timeout: 15s
alphavantage:
  api_key: real-key
  tier_timeout: 2s
quotes:
  cache_ttl: 10m
  history_months: 6
cache:
  type: redis
  redis:
    host: cache.internal
    port: 6379
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if c.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", c.Server.Port)
	}
	if c.Server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v", c.Server.ReadTimeout)
	}
	if c.AlphaVantage.TierTimeout != 2*time.Second {
		t.Errorf("TierTimeout = %v", c.AlphaVantage.TierTimeout)
	}
	if c.Quotes.CacheTTL != 10*time.Minute {
		t.Errorf("CacheTTL = %v", c.Quotes.CacheTTL)
	}
	if c.Cache.Redis.Host != "cache.internal" {
		t.Errorf("Redis.Host = %q", c.Cache.Redis.Host)
	}
}

func TestLoadRejectsMissingAPIKey(t *testing.T) {
	if _, err := Load(writeConfig(t, "environment: test\n")); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestLoadRejectsBadCacheType(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+"cache:\n  type: memcached\n"))
	if err == nil {
		t.Fatal("expected error for unknown cache type")
	}
}

func TestLoadRejectsHistoryMonthsOutOfRange(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+"quotes:\n  history_months: 9\n"))
	if err == nil {
		t.Fatal("expected error for history_months out of range")
	}
}

func TestLoadWithEnvAPIKeyFromEnvOnly(t *testing.T) {
	t.Setenv("ALPHA_VANTAGE_API_KEY", "env-key")

	c, err := LoadWithEnv(writeConfig(t, "environment: test\n"))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if c.AlphaVantage.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env-key", c.AlphaVantage.APIKey)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("ALPHA_VANTAGE_API_KEY", "from-env")
	t.Setenv("PORT", "3000")
	t.Setenv("CACHE_TYPE", "redis")
	t.Setenv("REDIS_HOST", "redis.env")

	c, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}

	if c.AlphaVantage.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want env override", c.AlphaVantage.APIKey)
	}
	if c.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", c.Server.Port)
	}
	if c.Cache.Type != "redis" {
		t.Errorf("Cache.Type = %q, want redis", c.Cache.Type)
	}
	if c.Cache.Redis.Host != "redis.env" {
		t.Errorf("Redis.Host = %q", c.Cache.Redis.Host)
	}
}
