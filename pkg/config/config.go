// Package config loads the settings of the background worker. Settings shared
// with the API server live in internal/platform/config.
package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

// WorkerConfig holds the worker's runtime configuration.
type WorkerConfig struct {
	RedisURL    string `envconfig:"REDIS_URL" required:"true"`
	Concurrency int    `envconfig:"WORKER_CONCURRENCY" default:"5"`
	MetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`

	// SystemActorID is recorded as the actor of scheduled maintenance.
	SystemActorID string `envconfig:"WORKER_ACTOR_ID" default:"ledger-worker"`

	// Cron specs run in UTC; an empty spec disables the task.
	RebuildPayablesCron string `envconfig:"WORKER_REBUILD_PAYABLES_CRON" default:"0 2 * * *"`
	IntegrityCron       string `envconfig:"WORKER_INTEGRITY_CRON" default:"30 2 * * *"`
}

// LoadWorkerConfig reads the worker configuration from environment variables and
// a .env file when present.
func LoadWorkerConfig() (*WorkerConfig, error) {
	_ = godotenv.Load()

	var cfg WorkerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *WorkerConfig) validate() error {
	if strings.TrimSpace(c.RedisURL) == "" {
		return errors.New("REDIS_URL must be set for the worker")
	}
	if strings.TrimSpace(c.SystemActorID) == "" {
		return errors.New("WORKER_ACTOR_ID must not be empty")
	}
	if c.Concurrency <= 0 {
		return errors.New("WORKER_CONCURRENCY must be positive")
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, spec := range map[string]string{
		"WORKER_REBUILD_PAYABLES_CRON": c.RebuildPayablesCron,
		"WORKER_INTEGRITY_CRON":        c.IntegrityCron,
	} {
		if spec == "" {
			continue
		}
		if _, err := parser.Parse(spec); err != nil {
			return errors.New(name + ": " + err.Error())
		}
	}
	return nil
}
