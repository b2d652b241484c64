package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	client     *redis.Client
	clientOnce sync.Once
	clientErr  error
)

// ErrNotConfigured is returned by Initialize when no URL is set
var ErrNotConfigured = errors.New("redis: UPSTASH_REDIS_URL not configured")

// Config holds Redis connection configuration
type Config struct {
	URL      string // redis://host:port or rediss://host:port for TLS
	Password string // overrides the password embedded in URL
}

// Client returns the shared client, or nil when Redis is unavailable.
// The result cache and the rate limiter both fall back to memory on nil.
func Client() *redis.Client {
	return client
}

// Initialize connects the shared client once. Later calls return the first result.
func Initialize(cfg Config) error {
	clientOnce.Do(func() {
		opts, err := Options(cfg)
		if err != nil {
			clientErr = err
			return
		}

		c := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := c.Ping(ctx).Err(); err != nil {
			_ = c.Close()
			clientErr = fmt.Errorf("redis: connection failed: %w", err)
			return
		}
		client = c
	})

	return clientErr
}

// Options converts a connection URL into client options.
func Options(cfg Config) (*redis.Options, error) {
	if cfg.URL == "" {
		return nil, ErrNotConfigured
	}

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}
	if parsedURL.Scheme != "redis" && parsedURL.Scheme != "rediss" {
		return nil, fmt.Errorf("redis: unsupported scheme %q", parsedURL.Scheme)
	}

	useTLS := parsedURL.Scheme == "rediss"

	addr := parsedURL.Host
	if parsedURL.Port() == "" {
		addr = parsedURL.Hostname() + ":6379"
	}

	password := cfg.Password
	if password == "" && parsedURL.User != nil {
		password, _ = parsedURL.User.Password()
	}

	opts := &redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	}

	if useTLS {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}
	return opts, nil
}

// Close closes the Redis connection gracefully.
func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// HealthCheck pings Redis. Returns nil if healthy.
func HealthCheck(ctx context.Context) error {
	if client == nil {
		return errors.New("redis: client not initialized")
	}
	return client.Ping(ctx).Err()
}
