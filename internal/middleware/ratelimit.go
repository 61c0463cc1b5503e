package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
)

// Counter counts hits on a key within a fixed window. It returns the count
// including this hit and when the window ends.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error)
}

// RateLimitConfig defines the limit for a specific route or group.
type RateLimitConfig struct {
	Name    string                   // Key namespace, keeps limiters on a shared Counter apart
	Max     int                      // Maximum requests allowed in the window
	Window  time.Duration            // Time window for the limit
	KeyFn   func(c fiber.Ctx) string // Returns the key to rate limit on (IP, voter, etc.)
	Counter Counter                  // Defaults to an in-process counter
}

// RateLimiter is a fixed-window rate limiter. A failing Counter lets
// requests through.
type RateLimiter struct {
	config RateLimitConfig
}

// NewRateLimiter creates a rate limiter with the given config.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Counter == nil {
		cfg.Counter = NewMemoryCounter()
	}
	return &RateLimiter{config: cfg}
}

func (rl *RateLimiter) key(k string) string {
	return "rl:" + rl.config.Name + ":" + k
}

// Handler returns a Fiber middleware handler that enforces the rate limit.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		count, resetAt, err := rl.config.Counter.Incr(c.Context(), rl.key(rl.config.KeyFn(c)), rl.config.Window)
		if err != nil {
			Logger.Warn().Err(err).Str("limiter", rl.config.Name).Msg("rate limit counter unavailable, allowing request")
			return c.Next()
		}

		remaining := rl.config.Max - int(count)
		setRateLimitHeaders(c, rl.config.Max, remaining, resetAt)

		if remaining < 0 {
			retryAfter := int(time.Until(resetAt).Seconds()) + 1
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": fiber.Map{
					"code":       "RATE_LIMITED",
					"message":    fmt.Sprintf("Too many requests. Try again in %d seconds.", retryAfter),
					"retryAfter": retryAfter,
				},
			})
		}

		return c.Next()
	}
}

// Allow checks if a request with the given key is allowed (for testing).
func (rl *RateLimiter) Allow(key string) bool {
	count, _, err := rl.config.Counter.Incr(context.Background(), rl.key(key), rl.config.Window)
	if err != nil {
		return true
	}
	return int(count) <= rl.config.Max
}

func setRateLimitHeaders(c fiber.Ctx, limit, remaining int, resetAt time.Time) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}

// entry tracks request count and window end for a single key.
type entry struct {
	count     int64
	windowEnd time.Time
}

// MemoryCounter keeps windows in process memory. Counts are per instance.
type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

func NewMemoryCounter() *MemoryCounter {
	mc := &MemoryCounter{entries: make(map[string]*entry), now: time.Now}
	// Background cleanup every 5 minutes
	go mc.cleanup()
	return mc
}

func (mc *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.now()
	e, exists := mc.entries[key]
	if !exists || now.After(e.windowEnd) {
		e = &entry{windowEnd: now.Add(window)}
		mc.entries[key] = e
	}
	e.count++
	return e.count, e.windowEnd, nil
}

func (mc *MemoryCounter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		mc.mu.Lock()
		now := mc.now()
		for key, e := range mc.entries {
			if now.After(e.windowEnd) {
				delete(mc.entries, key)
			}
		}
		mc.mu.Unlock()
	}
}

// RedisCounter shares windows across instances. The first hit of a window
// sets the key's expiry; later hits only increment.
type RedisCounter struct {
	rdb *redis.Client
}

func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{rdb: rdb}
}

func (rc *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rc.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		ttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, time.Time{}, err
	}
	remaining := ttl.Val()
	if remaining <= 0 {
		remaining = window
	}
	return incr.Val(), time.Now().Add(remaining), nil
}

// KeyByIP returns the client IP as the rate limit key.
func KeyByIP(c fiber.Ctx) string {
	return "ip:" + c.IP()
}

// --- Pre-configured rate limiters for the public and login routes ---

// NewSubmitRateLimiter: 5 complaints/min per IP
func NewSubmitRateLimiter(counter Counter) *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Name:    "submit",
		Max:     5,
		Window:  time.Minute,
		KeyFn:   KeyByIP,
		Counter: counter,
	})
}

// NewLikeRateLimiter: 30 likes/min per IP. The voter header is chosen by
// the client, so it cannot be the key.
func NewLikeRateLimiter(counter Counter) *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Name:    "like",
		Max:     30,
		Window:  time.Minute,
		KeyFn:   KeyByIP,
		Counter: counter,
	})
}

// NewLoginRateLimiter: 10 attempts/min per IP
func NewLoginRateLimiter(counter Counter) *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Name:    "login",
		Max:     10,
		Window:  time.Minute,
		KeyFn:   KeyByIP,
		Counter: counter,
	})
}
