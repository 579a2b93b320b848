package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Routing  RoutingConfig
	Daimo    ProviderConfig
	Lumen    ProviderConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

// RoutingConfig tunes provider selection and the payment cache.
type RoutingConfig struct {
	DefaultProvider     string
	EnableFallback      bool
	Rules               []RoutingRule
	MaxRetries          int
	RetryBaseDelay      time.Duration
	HealthProbeTimeout  time.Duration
	HealthCheckInterval time.Duration
	StaleWindow         time.Duration
}

// RoutingRule pins a chain to a named provider, overriding whatever
// the adapter registered for that chain.
type RoutingRule struct {
	ChainID  int64
	Provider string
}

// ProviderConfig is the per-upstream connection block. WebhookSecret
// doubles as the shared token for providers that authenticate
// deliveries via query parameter.
type ProviderConfig struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
	Timeout       time.Duration
	Retries       int
	Priority      int
	Enabled       bool
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Payrouter API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "payrouter"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Routing: RoutingConfig{
			DefaultProvider:     getEnv("ROUTING_DEFAULT_PROVIDER", "daimo"),
			EnableFallback:      getEnvBool("ROUTING_ENABLE_FALLBACK", true),
			Rules:               parseRoutingRules(getEnv("ROUTING_RULES", "")),
			MaxRetries:          getEnvInt("ROUTING_MAX_RETRIES", 3),
			RetryBaseDelay:      getEnvDuration("ROUTING_RETRY_BASE_DELAY", 500*time.Millisecond),
			HealthProbeTimeout:  getEnvDuration("ROUTING_HEALTH_PROBE_TIMEOUT", 5*time.Second),
			HealthCheckInterval: getEnvDuration("ROUTING_HEALTH_CHECK_INTERVAL", time.Minute),
			StaleWindow:         getEnvDuration("ROUTING_STALE_WINDOW", 15*time.Minute),
		},
		Daimo: ProviderConfig{
			BaseURL:       getEnv("DAIMO_API_URL", "https://pay.daimo.com/api"),
			APIKey:        getEnv("DAIMO_API_KEY", ""),
			WebhookSecret: getEnv("DAIMO_WEBHOOK_SECRET", ""),
			Timeout:       getEnvDuration("DAIMO_TIMEOUT", 30*time.Second),
			Retries:       getEnvInt("DAIMO_RETRIES", 3),
			Priority:      getEnvInt("DAIMO_PRIORITY", 1),
			Enabled:       getEnvBool("DAIMO_ENABLED", true),
		},
		Lumen: ProviderConfig{
			BaseURL:       getEnv("LUMEN_API_URL", "https://api.lumenpay.io"),
			APIKey:        getEnv("LUMEN_API_KEY", ""),
			WebhookSecret: getEnv("LUMEN_WEBHOOK_TOKEN", ""),
			Timeout:       getEnvDuration("LUMEN_TIMEOUT", 30*time.Second),
			Retries:       getEnvInt("LUMEN_RETRIES", 3),
			Priority:      getEnvInt("LUMEN_PRIORITY", 2),
			Enabled:       getEnvBool("LUMEN_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the config for production-readiness.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if c.Daimo.Enabled && c.Daimo.APIKey == "" {
			return fmt.Errorf("DAIMO_API_KEY must be set in production")
		}
		if c.Lumen.Enabled && c.Lumen.APIKey == "" {
			return fmt.Errorf("LUMEN_API_KEY must be set in production")
		}
		if c.Daimo.Enabled && c.Daimo.WebhookSecret == "" {
			fmt.Println("WARNING: Daimo webhook secret not set - webhook deliveries will be rejected")
		}
		if c.Lumen.Enabled && c.Lumen.WebhookSecret == "" {
			fmt.Println("WARNING: Lumen webhook token not set - webhook deliveries will be rejected")
		}
	}

	if !c.Daimo.Enabled && !c.Lumen.Enabled {
		return fmt.Errorf("at least one payment provider must be enabled")
	}

	return nil
}

// parseRoutingRules parses ROUTING_RULES, a comma-separated list of
// chainID:provider pairs (e.g. "8453:daimo,10001:lumen"). Malformed
// entries are skipped.
func parseRoutingRules(raw string) []RoutingRule {
	if raw == "" {
		return nil
	}

	var rules []RoutingRule
	for _, part := range strings.Split(raw, ",") {
		pair := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(pair) != 2 {
			continue
		}
		chainID, err := strconv.ParseInt(strings.TrimSpace(pair[0]), 10, 64)
		if err != nil {
			continue
		}
		providerName := strings.TrimSpace(pair[1])
		if providerName == "" {
			continue
		}
		rules = append(rules, RoutingRule{ChainID: chainID, Provider: providerName})
	}
	return rules
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
