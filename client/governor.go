package client

import (
	"context"
	"os"
	"strconv"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures requests-per-second limits for read and write
// operations. A nil/zero field means no limit of that kind is applied.
type RateLimitConfig struct {
	ReadRequestsPerSecond  float64
	WriteRequestsPerSecond float64
}

// RateLimitConfigFromEnv reads TERMINUSDB_RATE_LIMIT_READ/_WRITE, mirroring
// the rate-limiter's environment-variable configuration.
func RateLimitConfigFromEnv() RateLimitConfig {
	var cfg RateLimitConfig
	if v := os.Getenv("TERMINUSDB_RATE_LIMIT_READ"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.ReadRequestsPerSecond = f
		}
	}
	if v := os.Getenv("TERMINUSDB_RATE_LIMIT_WRITE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.WriteRequestsPerSecond = f
		}
	}
	return cfg
}

// ConcurrencyLimitConfig configures the maximum number of concurrent read
// and write requests in flight. A zero field means no limit of that kind.
type ConcurrencyLimitConfig struct {
	MaxConcurrentReads  int
	MaxConcurrentWrites int
}

// ConcurrencyLimitConfigFromEnv reads TERMINUSDB_CONCURRENCY_LIMIT_READ/_WRITE.
func ConcurrencyLimitConfigFromEnv() ConcurrencyLimitConfig {
	var cfg ConcurrencyLimitConfig
	if v := os.Getenv("TERMINUSDB_CONCURRENCY_LIMIT_READ"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxConcurrentReads = n
		}
	}
	if v := os.Getenv("TERMINUSDB_CONCURRENCY_LIMIT_WRITE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxConcurrentWrites = n
		}
	}
	return cfg
}

// semaphore is a simple counting semaphore built on a buffered channel,
// acquired/released around a request so at most N are in flight at once.
type semaphore chan struct{}

func newSemaphore(n int) semaphore { return make(semaphore, n) }

func (s semaphore) acquire(ctx context.Context) error {
	select {
	case s <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s semaphore) release() { <-s }

// hostLimiters bundles the optional read/write rate limiters and
// concurrency semaphores shared by every governor for a single host.
type hostLimiters struct {
	readRate  *rate.Limiter
	writeRate *rate.Limiter
	readSem   semaphore
	writeSem  semaphore
}

// governorRegistry is the global per-host registry of limiters, ensuring
// that every client instance pointed at the same host shares one set of
// governors (the teacher's per-domain rate_limiter.go keys by host the
// same way; here the key space is TerminusDB hosts instead of crawl
// targets, and pairs a token-bucket rate limiter with a concurrency
// semaphore per direction).
type governorRegistry struct {
	mu    sync.Mutex
	hosts map[string]*hostLimiters
}

var globalGovernors = &governorRegistry{hosts: make(map[string]*hostLimiters)}

// GetOrCreate returns the shared limiters for host, creating them from the
// given configs on first use. Rate/concurrency values of zero mean "no
// limit" and leave the corresponding field nil.
func (r *governorRegistry) GetOrCreate(host string, rl RateLimitConfig, cl ConcurrencyLimitConfig) *hostLimiters {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.hosts[host]; ok {
		return existing
	}

	hl := &hostLimiters{}
	if rl.ReadRequestsPerSecond > 0 {
		hl.readRate = rate.NewLimiter(rate.Limit(rl.ReadRequestsPerSecond), burstFor(rl.ReadRequestsPerSecond))
	}
	if rl.WriteRequestsPerSecond > 0 {
		hl.writeRate = rate.NewLimiter(rate.Limit(rl.WriteRequestsPerSecond), burstFor(rl.WriteRequestsPerSecond))
	}
	if cl.MaxConcurrentReads > 0 {
		hl.readSem = newSemaphore(cl.MaxConcurrentReads)
	}
	if cl.MaxConcurrentWrites > 0 {
		hl.writeSem = newSemaphore(cl.MaxConcurrentWrites)
	}

	r.hosts[host] = hl
	return hl
}

// Clear empties the registry; used by tests to avoid cross-test pollution.
func (r *governorRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hosts = make(map[string]*hostLimiters)
}

func burstFor(rps float64) int {
	if rps < 1 {
		return 1
	}
	return int(rps)
}

// Governor gates a single direction (read or write) of traffic to a host,
// applying a rate limiter and a concurrency semaphore where configured.
type Governor struct {
	rateLimiter *rate.Limiter
	sem         semaphore
}

// ReadGovernor returns the governor gating read (GET) requests to host.
func ReadGovernor(host string, rl RateLimitConfig, cl ConcurrencyLimitConfig) *Governor {
	hl := globalGovernors.GetOrCreate(host, rl, cl)
	return &Governor{rateLimiter: hl.readRate, sem: hl.readSem}
}

// WriteGovernor returns the governor gating write (POST/PUT/DELETE)
// requests to host.
func WriteGovernor(host string, rl RateLimitConfig, cl ConcurrencyLimitConfig) *Governor {
	hl := globalGovernors.GetOrCreate(host, rl, cl)
	return &Governor{rateLimiter: hl.writeRate, sem: hl.writeSem}
}

// Acquire blocks until both the rate limiter (if any) admits the request
// and a concurrency slot (if any) is free, returning a release func to call
// when the request completes.
func (g *Governor) Acquire(ctx context.Context) (release func(), err error) {
	if g.sem != nil {
		if err := g.sem.acquire(ctx); err != nil {
			return nil, err
		}
	}
	if g.rateLimiter != nil {
		if err := g.rateLimiter.Wait(ctx); err != nil {
			if g.sem != nil {
				g.sem.release()
			}
			return nil, err
		}
	}
	release = func() {
		if g.sem != nil {
			g.sem.release()
		}
	}
	return release, nil
}

// ClearGovernors empties the global registry. Exposed for tests that need
// isolation between runs against the same host string.
func ClearGovernors() { globalGovernors.Clear() }
