package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateSharesLimitersAcrossCalls(t *testing.T) {
	ClearGovernors()
	defer ClearGovernors()

	a := globalGovernors.GetOrCreate("host-a", RateLimitConfig{ReadRequestsPerSecond: 5}, ConcurrencyLimitConfig{})
	b := globalGovernors.GetOrCreate("host-a", RateLimitConfig{ReadRequestsPerSecond: 999}, ConcurrencyLimitConfig{})
	assert.Same(t, a, b, "second call for the same host must return the first-created limiters")
}

func TestGetOrCreateLeavesNilLimitersWhenUnconfigured(t *testing.T) {
	ClearGovernors()
	defer ClearGovernors()

	hl := globalGovernors.GetOrCreate("host-b", RateLimitConfig{}, ConcurrencyLimitConfig{})
	assert.Nil(t, hl.readRate)
	assert.Nil(t, hl.writeRate)
	assert.Nil(t, hl.readSem)
	assert.Nil(t, hl.writeSem)
}

func TestGovernorAcquireWithNoLimitsNeverBlocks(t *testing.T) {
	ClearGovernors()
	defer ClearGovernors()

	g := ReadGovernor("host-c", RateLimitConfig{}, ConcurrencyLimitConfig{})
	release, err := g.Acquire(context.Background())
	require.NoError(t, err)
	release()
}

func TestGovernorAcquireRespectsConcurrencyLimit(t *testing.T) {
	ClearGovernors()
	defer ClearGovernors()

	g := ReadGovernor("host-d", RateLimitConfig{}, ConcurrencyLimitConfig{MaxConcurrentReads: 1})
	release1, err := g.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = g.Acquire(ctx)
	assert.Error(t, err, "second acquire must block until the first slot is released")

	release1()
}

func TestSemaphoreAcquireRelease(t *testing.T) {
	s := newSemaphore(1)
	require.NoError(t, s.acquire(context.Background()))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, s.acquire(ctx))
	s.release()
	require.NoError(t, s.acquire(context.Background()))
}

func TestRateLimitConfigFromEnv(t *testing.T) {
	t.Setenv("TERMINUSDB_RATE_LIMIT_READ", "10")
	t.Setenv("TERMINUSDB_RATE_LIMIT_WRITE", "2.5")
	cfg := RateLimitConfigFromEnv()
	assert.Equal(t, 10.0, cfg.ReadRequestsPerSecond)
	assert.Equal(t, 2.5, cfg.WriteRequestsPerSecond)
}

func TestConcurrencyLimitConfigFromEnv(t *testing.T) {
	t.Setenv("TERMINUSDB_CONCURRENCY_LIMIT_READ", "4")
	t.Setenv("TERMINUSDB_CONCURRENCY_LIMIT_WRITE", "1")
	cfg := ConcurrencyLimitConfigFromEnv()
	assert.Equal(t, 4, cfg.MaxConcurrentReads)
	assert.Equal(t, 1, cfg.MaxConcurrentWrites)
}

func TestBurstForFloorsAtOne(t *testing.T) {
	assert.Equal(t, 1, burstFor(0.2))
	assert.Equal(t, 5, burstFor(5))
}
