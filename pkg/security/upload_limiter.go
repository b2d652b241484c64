package security

import (
	"context"
	"fmt"
	"time"

	"go-resume-matcher/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

// UploadLimiter enforces per-IP upload quotas using a Redis sliding window
type UploadLimiter struct {
	maxPerMinute int
	maxPerDay    int
	client       func() *goredis.Client
}

// Lua script for sliding window rate limiting
// KEYS[1] = rate limit key
// ARGV[1] = max count allowed
// ARGV[2] = window size in seconds
// ARGV[3] = current timestamp
// Returns: 1 if allowed, 0 if rate limited
const uploadRateLimitScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

-- Remove expired entries outside the window
redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local count = redis.call('ZCARD', key)
if count >= limit then
    return 0
end

redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
redis.call('EXPIRE', key, window)
return 1
`

// NewUploadLimiter creates an upload limiter.
// Default: 10 uploads/min and 200 uploads/day per IP.
func NewUploadLimiter(perMin, perDay int) *UploadLimiter {
	if perMin <= 0 {
		perMin = 10
	}
	if perDay <= 0 {
		perDay = 200
	}
	return &UploadLimiter{
		maxPerMinute: perMin,
		maxPerDay:    perDay,
		client:       redis.Client,
	}
}

// WithClient overrides the Redis client source
func (ul *UploadLimiter) WithClient(client func() *goredis.Client) *UploadLimiter {
	ul.client = client
	return ul
}

// AllowUpload checks both quotas for ip.
// Returns (allowed, retryAfterSeconds, error). Without Redis every upload is allowed
// and the error says so; Redis errors deny the upload.
func (ul *UploadLimiter) AllowUpload(ctx context.Context, ip string) (bool, int, error) {
	client := ul.client()
	if client == nil {
		return true, 0, fmt.Errorf("upload limiter unavailable - Redis not connected")
	}

	now := time.Now().Unix()

	allowed, err := ul.checkLimit(ctx, client, fmt.Sprintf("ratelimit:upload:ip:%s", ip), ul.maxPerMinute, 60, now)
	if err != nil {
		return false, 60, fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		return false, 60, nil
	}

	allowed, err = ul.checkLimit(ctx, client, fmt.Sprintf("ratelimit:upload:day:%s", ip), ul.maxPerDay, 86400, now)
	if err != nil {
		return false, 3600, fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		return false, 3600, nil
	}

	return true, 0, nil
}

// checkLimit performs the atomic sliding window check
func (ul *UploadLimiter) checkLimit(ctx context.Context, client *goredis.Client, key string, limit, window int, now int64) (bool, error) {
	result, err := client.Eval(ctx, uploadRateLimitScript, []string{key}, limit, window, now).Result()
	if err != nil {
		return false, err
	}
	allowed, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected result type from rate limit script")
	}
	return allowed == 1, nil
}
