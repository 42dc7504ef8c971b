package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.helix.gds/internal/concurrency"
)

func TestLoad_DefaultsWhenEnvironmentUnset(t *testing.T) {
	cfg := Load()
	defaults := concurrency.DefaultPoolSizes()

	assert.Equal(t, defaults.Core(), cfg.PoolCoreSize)
	assert.Equal(t, defaults.Max(), cfg.PoolMaxSize)
	assert.EqualValues(t, 100, cfg.WaitMillis)
	assert.EqualValues(t, 250_000_000, cfg.MaxWaitRetries)
	assert.Equal(t, 10*time.Second, cfg.TerminationPollInterval)
	assert.Equal(t, 1, cfg.CSVBatchSize)
}

func TestLoad_EnvironmentOverridesEveryField(t *testing.T) {
	t.Setenv("GDS_POOL_CORE_SIZE", "4")
	t.Setenv("GDS_POOL_MAX_SIZE", "16")
	t.Setenv("GDS_CONCURRENCY", "8")
	t.Setenv("GDS_WAIT_MILLIS", "50")
	t.Setenv("GDS_MAX_WAIT_RETRIES", "10")
	t.Setenv("GDS_TERMINATION_POLL_INTERVAL", "5s")
	t.Setenv("GDS_CSV_BATCH_SIZE", "256")

	cfg := Load()
	assert.Equal(t, 4, cfg.PoolCoreSize)
	assert.Equal(t, 16, cfg.PoolMaxSize)
	assert.Equal(t, 8, cfg.Concurrency.Value())
	assert.EqualValues(t, 50, cfg.WaitMillis)
	assert.EqualValues(t, 10, cfg.MaxWaitRetries)
	assert.Equal(t, 5*time.Second, cfg.TerminationPollInterval)
	assert.Equal(t, 256, cfg.CSVBatchSize)
}

func TestLoad_UnparsableEnvironmentFallsBackToDefault(t *testing.T) {
	t.Setenv("GDS_WAIT_MILLIS", "not-a-number")
	t.Setenv("GDS_TERMINATION_POLL_INTERVAL", "not-a-duration")

	cfg := Load()
	assert.EqualValues(t, 100, cfg.WaitMillis)
	assert.Equal(t, 10*time.Second, cfg.TerminationPollInterval)
}

func TestLoad_InvalidConcurrencyFallsBackToOne(t *testing.T) {
	t.Setenv("GDS_CONCURRENCY", "0")
	cfg := Load()
	require.Equal(t, 1, cfg.Concurrency.Value())
}
