package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP server configuration
	HTTPAddr string

	// Wallet configuration
	SignupCredit int64 // credited once at registration

	// Bid settlement configuration
	BidMaxRetries int // optimistic retries before surfacing contention

	// Lot closing sweep
	SweepInterval time.Duration

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
		HTTPAddr:    os.Getenv("HTTP_ADDR"),
		Environment: os.Getenv("ENVIRONMENT"),

		// Defaults
		SignupCredit:  1000,
		BidMaxRetries: 5,
		SweepInterval: 30 * time.Second,
	}

	// Override defaults if environment variables are set
	if credit := os.Getenv("SIGNUP_CREDIT"); credit != "" {
		if parsedCredit, err := strconv.ParseInt(credit, 10, 64); err == nil {
			config.SignupCredit = parsedCredit
		}
	}
	if retries := os.Getenv("BID_MAX_RETRIES"); retries != "" {
		if parsedRetries, err := strconv.Atoi(retries); err == nil && parsedRetries > 0 {
			config.BidMaxRetries = parsedRetries
		}
	}
	if interval := os.Getenv("SWEEP_INTERVAL"); interval != "" {
		if parsedInterval, err := time.ParseDuration(interval); err == nil && parsedInterval > 0 {
			config.SweepInterval = parsedInterval
		}
	}

	if config.HTTPAddr == "" {
		config.HTTPAddr = ":8080"
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
