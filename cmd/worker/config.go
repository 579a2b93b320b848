package main

import (
	"log"
	"os"
	"strconv"

	"payrouter-backend/internal/infrastructure/queue"
)

// Config holds all configuration for the worker
type Config struct {
	RedisAddr string
	Jobs      queue.JobConfig
}

// loadConfig loads configuration from environment variables
func loadConfig() *Config {
	jobs := queue.DefaultJobConfig()
	if v := os.Getenv("WORKER_PROBE_CRON"); v != "" {
		jobs.ProbeInterval = v
	}
	if v := os.Getenv("WORKER_SWEEP_CRON"); v != "" {
		jobs.SweepInterval = v
	}
	if v := os.Getenv("WORKER_SWEEP_LIMIT"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			jobs.SweepLimit = limit
		}
	}

	cfg := &Config{
		RedisAddr: getEnvVar("REDIS_HOST", "localhost:6379"),
		Jobs:      jobs,
	}

	log.Printf("[Config] Redis: %s, probe: %q, sweep: %q (limit %d)",
		cfg.RedisAddr, cfg.Jobs.ProbeInterval, cfg.Jobs.SweepInterval, cfg.Jobs.SweepLimit)

	return cfg
}

func getEnvVar(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
