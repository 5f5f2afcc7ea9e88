package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Black-And-White-Club/league-ledger/app/shared/observability"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	Ledger        LedgerConfig        `yaml:"ledger"`
	Queue         QueueConfig         `yaml:"queue"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn" env:"DATABASE_URL"`
}

// LedgerConfig holds ingestion and ledger settings.
type LedgerConfig struct {
	// DisplayNames maps scraped usernames to the name shown in standings.
	DisplayNames map[string]string `yaml:"display_names"`
	// OperationTimeout bounds every ingestion or recompute unit of work.
	OperationTimeout time.Duration `yaml:"operation_timeout" env:"LEDGER_OPERATION_TIMEOUT"`
}

// QueueConfig holds River job runner configuration.
type QueueConfig struct {
	Name         string        `yaml:"name" env:"QUEUE_NAME"`
	PollInterval time.Duration `yaml:"poll_interval" env:"QUEUE_POLL_INTERVAL"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment     string  `yaml:"environment" env:"ENV"`
	LogLevel        string  `yaml:"log_level" env:"LOG_LEVEL"`
	MetricsAddress  string  `yaml:"metrics_address" env:"METRICS_ADDRESS"`
	OTLPEndpoint    string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	OTLPInsecure    bool    `yaml:"otlp_insecure" env:"OTLP_INSECURE"`
	TraceSampleRate float64 `yaml:"trace_sample_rate" env:"TRACE_SAMPLE_RATE"`
}

// LoadConfig loads the configuration from a YAML file, then overrides it with
// any environment variables that are set. A missing file falls back to the
// environment alone.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// env only
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", filename, err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.applyDefaults()

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("postgres dsn not set (config file or DATABASE_URL)")
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Ledger.OperationTimeout <= 0 {
		c.Ledger.OperationTimeout = 30 * time.Second
	}
	if c.Ledger.DisplayNames == nil {
		c.Ledger.DisplayNames = map[string]string{}
	}
	if c.Queue.Name == "" {
		c.Queue.Name = "ledger"
	}
	if c.Queue.PollInterval <= 0 {
		c.Queue.PollInterval = time.Second
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
	if c.Observability.TraceSampleRate <= 0 {
		c.Observability.TraceSampleRate = 0.1
	}
}

func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		Environment:     appCfg.Observability.Environment,
		Version:         Version,
		LogLevel:        appCfg.Observability.LogLevel,
		OTLPEndpoint:    appCfg.Observability.OTLPEndpoint,
		OTLPInsecure:    appCfg.Observability.OTLPInsecure,
		TraceSampleRate: appCfg.Observability.TraceSampleRate,
	}
}
