// Package config loads the concurrency core's runtime settings from
// environment variables, grounded on internal/config/config.go's
// getEnv/getIntEnv/getDurationEnv helpers and its flat
// struct-of-struct-fields shape.
package config

import (
	"os"
	"strconv"
	"time"

	"dev.helix.gds/internal/concurrency"
)

// Config is every tunable the concurrency core reads from the process
// environment (spec.md SPEC_FULL.md §4.13).
type Config struct {
	PoolCoreSize int
	PoolMaxSize  int

	Concurrency concurrency.Concurrency

	WaitMillis     int64
	MaxWaitRetries int64

	TerminationPollInterval time.Duration

	CSVBatchSize int
}

// Load reads the process environment, falling back to the spec's defaults
// for anything unset or unparsable.
func Load() *Config {
	defaults := concurrency.DefaultPoolSizes()
	defaultConcurrency := concurrency.CPUDerivedPoolSizes(0.75)

	coreSize := getIntEnv("GDS_POOL_CORE_SIZE", defaults.Core())
	maxSize := getIntEnv("GDS_POOL_MAX_SIZE", defaults.Max())

	concurrencyValue := getIntEnv("GDS_CONCURRENCY", defaultConcurrency.Max())
	conc, err := concurrency.New(concurrencyValue)
	if err != nil {
		conc = concurrency.MustNew(1)
	}

	return &Config{
		PoolCoreSize:            coreSize,
		PoolMaxSize:             maxSize,
		Concurrency:             conc,
		WaitMillis:              getInt64Env("GDS_WAIT_MILLIS", 100),
		MaxWaitRetries:          getInt64Env("GDS_MAX_WAIT_RETRIES", 250_000_000),
		TerminationPollInterval: getDurationEnv("GDS_TERMINATION_POLL_INTERVAL", 10*time.Second),
		CSVBatchSize:            getIntEnv("GDS_CSV_BATCH_SIZE", 1),
	}
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
