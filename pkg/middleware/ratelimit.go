package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	pkgredis "github.com/emldov7/evMonde--sub000/pkg/redis"
	"github.com/emldov7/evMonde--sub000/pkg/response"
)

// RateLimitConfig holds rate limiting configuration. Used on the auth
// endpoints to slow down credential stuffing.
type RateLimitConfig struct {
	// Rate limit per second per IP
	RequestsPerSecond int
	// Burst size (token bucket capacity)
	BurstSize int
	// Whether to use Redis for distributed rate limiting
	UseRedis bool
	// Redis client (required if UseRedis is true)
	RedisClient *pkgredis.Client
	// Key prefix for Redis
	KeyPrefix string
	// Cleanup interval for local rate limiter
	CleanupInterval time.Duration
	// Entry TTL for local rate limiter
	EntryTTL time.Duration
}

// DefaultRateLimitConfig returns sensible defaults
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		UseRedis:          false,
		KeyPrefix:         "ratelimit:",
		CleanupInterval:   time.Minute,
		EntryTTL:          time.Minute,
	}
}

type rateLimitEntry struct {
	tokens     float64
	lastUpdate time.Time
	mu         sync.Mutex
}

// LocalRateLimiter implements in-memory token bucket rate limiting
type LocalRateLimiter struct {
	config  RateLimitConfig
	entries sync.Map
	stop    chan struct{}

	totalAllowed  uint64
	totalRejected uint64
}

// NewLocalRateLimiter creates a new local rate limiter
func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	rl := &LocalRateLimiter{
		config: config,
		stop:   make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Allow checks if a request should be allowed
func (rl *LocalRateLimiter) Allow(key string) bool {
	now := time.Now()

	entry, _ := rl.entries.LoadOrStore(key, &rateLimitEntry{
		tokens:     float64(rl.config.BurstSize),
		lastUpdate: now,
	})
	e := entry.(*rateLimitEntry)

	e.mu.Lock()
	defer e.mu.Unlock()

	elapsed := now.Sub(e.lastUpdate).Seconds()
	tokensToAdd := elapsed * float64(rl.config.RequestsPerSecond)
	e.tokens = min(float64(rl.config.BurstSize), e.tokens+tokensToAdd)
	e.lastUpdate = now

	if e.tokens >= 1 {
		e.tokens--
		atomic.AddUint64(&rl.totalAllowed, 1)
		return true
	}

	atomic.AddUint64(&rl.totalRejected, 1)
	return false
}

// GetStats returns rate limiter statistics
func (rl *LocalRateLimiter) GetStats() (allowed, rejected uint64) {
	return atomic.LoadUint64(&rl.totalAllowed), atomic.LoadUint64(&rl.totalRejected)
}

func (rl *LocalRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.config.EntryTTL)
			rl.entries.Range(func(key, value interface{}) bool {
				e := value.(*rateLimitEntry)
				e.mu.Lock()
				if e.lastUpdate.Before(cutoff) {
					rl.entries.Delete(key)
				}
				e.mu.Unlock()
				return true
			})
		case <-rl.stop:
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (rl *LocalRateLimiter) Stop() {
	close(rl.stop)
}

// RedisRateLimiter implements Redis-based distributed rate limiting
type RedisRateLimiter struct {
	config RateLimitConfig
	script string
}

// NewRedisRateLimiter creates a new Redis rate limiter
func NewRedisRateLimiter(config RateLimitConfig) *RedisRateLimiter {
	// Atomic token bucket
	script := `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = 1

local data = redis.call("HMGET", key, "tokens", "last_update")
local tokens = tonumber(data[1]) or burst
local last_update = tonumber(data[2]) or now

local elapsed = now - last_update
local tokens_to_add = elapsed * rate
tokens = math.min(burst, tokens + tokens_to_add)

if tokens >= requested then
    tokens = tokens - requested
    redis.call("HMSET", key, "tokens", tokens, "last_update", now)
    redis.call("EXPIRE", key, 60)
    return {1, tokens}
else
    redis.call("HMSET", key, "tokens", tokens, "last_update", now)
    redis.call("EXPIRE", key, 60)
    return {0, tokens}
end
`
	return &RedisRateLimiter{
		config: config,
		script: script,
	}
}

// Allow checks if a request should be allowed using Redis
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := float64(time.Now().UnixNano()) / 1e9

	result := rl.config.RedisClient.Eval(ctx, rl.script,
		[]string{rl.config.KeyPrefix + key},
		float64(rl.config.RequestsPerSecond),
		float64(rl.config.BurstSize),
		now,
	)

	if result.Err() != nil {
		return false, result.Err()
	}

	values, err := result.Slice()
	if err != nil {
		return false, err
	}

	if len(values) < 1 {
		return false, fmt.Errorf("unexpected result length")
	}

	allowed, _ := values[0].(int64)
	return allowed == 1, nil
}

// RateLimiter creates a rate limiting middleware keyed by client IP
func RateLimiter(config RateLimitConfig) gin.HandlerFunc {
	var localLimiter *LocalRateLimiter
	var redisLimiter *RedisRateLimiter

	if config.UseRedis && config.RedisClient != nil {
		redisLimiter = NewRedisRateLimiter(config)
	} else {
		localLimiter = NewLocalRateLimiter(config)
	}

	return func(c *gin.Context) {
		key := c.ClientIP()

		var allowed bool
		if redisLimiter != nil {
			ok, err := redisLimiter.Allow(c.Request.Context(), key)
			if err != nil {
				// fail open when redis is unreachable
				ok = true
			}
			allowed = ok
		} else {
			allowed = localLimiter.Allow(key)
		}

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.TooManyRequests(""))
			return
		}

		c.Next()
	}
}
