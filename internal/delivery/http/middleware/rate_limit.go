package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-resume-matcher/internal/delivery/http/response"
	"go-resume-matcher/pkg/redis"
	"go-resume-matcher/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Time window duration
	Window time.Duration
	// Key extractor (default: client IP)
	KeyFunc func(*gin.Context) string
	// Redis key prefix
	KeyPrefix string
	// Reject instead of falling back to memory when Redis errors
	FailClosed bool
	// Redis client source (default: redis.Client); nil client means in-memory
	Client func() *goredis.Client
	// Audit logger (default: security.DefaultLogger)
	SecurityLogger *security.SecurityLogger
}

// rateLimitEntry tracks request count for a key (in-memory fallback)
type rateLimitEntry struct {
	count   int
	resetAt time.Time
	mu      sync.Mutex
}

// memoryStore is the per-middleware fallback when Redis is unavailable
type memoryStore struct {
	entries     sync.Map
	lastCleanup time.Time
	mu          sync.Mutex
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

var rateLimitScript = goredis.NewScript(rateLimitLuaScript)

// GlobalRateLimitConfig applies to every route
func GlobalRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:ip:",
	}
}

// AnalyzeRateLimitConfig is the stricter bucket for analysis and upload routes
func AnalyzeRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:analyze:",
	}
}

// RateLimitMiddleware creates a fixed-window limiter.
// Uses Redis when available, falls back to in-memory when not.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	if config.Limit <= 0 {
		config.Limit = 100
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if config.Client == nil {
		config.Client = redis.Client
	}
	store := &memoryStore{lastCleanup: time.Now()}

	return func(c *gin.Context) {
		fullKey := config.KeyPrefix + config.KeyFunc(c)
		now := time.Now()

		var count int
		var resetAt time.Time

		if client := config.Client(); client != nil {
			var err error
			count, resetAt, err = checkRateLimitRedis(c.Request.Context(), client, fullKey, config)
			if err != nil {
				if config.FailClosed {
					logRateLimitError(c, config, err)
					response.Abort(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.")
					return
				}
				count, resetAt = store.hit(fullKey, config.Window, now)
			}
		} else {
			count, resetAt = store.hit(fullKey, config.Window, now)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			logRateLimitTriggered(c, config)
			response.Abort(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(config.Limit-count))
		c.Next()
	}
}

// checkRateLimitRedis counts the request with the atomic Lua script
func checkRateLimitRedis(ctx context.Context, client *goredis.Client, key string, config RateLimitConfig) (int, time.Time, error) {
	ttlSeconds := int(config.Window.Seconds())
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	result, err := rateLimitScript.Run(ctx, client, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}

// hit increments the in-memory counter for key
func (s *memoryStore) hit(key string, window time.Duration, now time.Time) (int, time.Time) {
	s.cleanup(now, window)

	entryI, _ := s.entries.LoadOrStore(key, &rateLimitEntry{resetAt: now.Add(window)})
	entry := entryI.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(window)
	}
	entry.count++

	return entry.count, entry.resetAt
}

// cleanup drops expired entries at most once per window
func (s *memoryStore) cleanup(now time.Time, window time.Duration) {
	s.mu.Lock()
	if now.Sub(s.lastCleanup) < window {
		s.mu.Unlock()
		return
	}
	s.lastCleanup = now
	s.mu.Unlock()

	s.entries.Range(func(key, value interface{}) bool {
		entry := value.(*rateLimitEntry)
		entry.mu.Lock()
		if now.After(entry.resetAt) {
			s.entries.Delete(key)
		}
		entry.mu.Unlock()
		return true
	})
}

func securityLogger(config RateLimitConfig) *security.SecurityLogger {
	if config.SecurityLogger != nil {
		return config.SecurityLogger
	}
	return security.DefaultLogger()
}

func logRateLimitTriggered(c *gin.Context, config RateLimitConfig) {
	securityLogger(config).LogRateLimitTriggered(
		c.Request.Context(),
		c.ClientIP(),
		c.GetHeader("User-Agent"),
		response.RequestID(c),
		c.FullPath(),
	)
}

func logRateLimitError(c *gin.Context, config RateLimitConfig, err error) {
	securityLogger(config).Log(c.Request.Context(), security.SecurityEvent{
		Event:       security.EventRateLimitTriggered,
		SubjectType: "system",
		IP:          c.ClientIP(),
		RequestID:   response.RequestID(c),
		Details: map[string]interface{}{
			"error_type": "redis_error",
			"error":      err.Error(),
		},
	})
}
