package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// Wallet configuration
	StartingBalance decimal.Decimal // welcome bonus credited on account creation

	// Storage retry configuration
	MaxRetries uint64 // bounded retries for transient storage failures

	// Optional operational integrations; disabled when empty
	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string
	MetricsPort  string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Defaults
		StartingBalance: decimal.NewFromInt(1000),
		MaxRetries:      3,
		MetricsPort:     "9090",

		RedisAddr:  os.Getenv("REDIS_ADDR"),
		KafkaTopic: os.Getenv("KAFKA_TOPIC"),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		parsed, err := decimal.NewFromString(balance)
		if err != nil || parsed.IsNegative() {
			return nil, fmt.Errorf("invalid STARTING_BALANCE %q", balance)
		}
		config.StartingBalance = parsed
	}
	if retries := os.Getenv("MAX_RETRIES"); retries != "" {
		if parsed, err := strconv.ParseUint(retries, 10, 8); err == nil {
			config.MaxRetries = parsed
		}
	}
	if port := os.Getenv("METRICS_PORT"); port != "" {
		config.MetricsPort = port
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			b = strings.TrimSpace(b)
			if b != "" {
				config.KafkaBrokers = append(config.KafkaBrokers, b)
			}
		}
	}
	if len(config.KafkaBrokers) > 0 && config.KafkaTopic == "" {
		config.KafkaTopic = "bookie.ledger"
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
