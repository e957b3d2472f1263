package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"arcadeorders/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window limiter ──────────────────────────────────────────────────────

type windowEntry struct {
	count     int
	windowEnd time.Time
}

// Limiter counts requests per key in fixed windows. With a Redis client the
// counters are shared across instances (INCR + EXPIRE); without one, or when
// Redis fails, an in-process map is used.
type Limiter struct {
	rdb    *redis.Client
	name   string
	limit  int
	window time.Duration

	mu      sync.Mutex
	entries map[string]*windowEntry
}

func NewLimiter(rdb *redis.Client, name string, limit int, window time.Duration) *Limiter {
	return &Limiter{
		rdb:     rdb,
		name:    name,
		limit:   limit,
		window:  window,
		entries: make(map[string]*windowEntry),
	}
}

// Allow registers one hit for key and reports whether it is within the limit,
// plus the seconds until the window resets.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, int) {
	if l.rdb != nil {
		ok, retry, err := l.allowRedis(ctx, key)
		if err == nil {
			return ok, retry
		}
		log.Warn().Err(err).Str("limiter", l.name).Msg("rate limiter: redis unavailable, using memory")
	}
	return l.allowMemory(key, time.Now())
}

func (l *Limiter) allowRedis(ctx context.Context, key string) (bool, int, error) {
	rk := fmt.Sprintf("ratelimit:%s:%s", l.name, key)
	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, rk)
	pipe.ExpireNX(ctx, rk, l.window)
	ttl := pipe.TTL(ctx, rk)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}
	retry := int(ttl.Val().Seconds())
	if retry <= 0 {
		retry = int(l.window.Seconds())
	}
	return incr.Val() <= int64(l.limit), retry, nil
}

func (l *Limiter) allowMemory(key string, now time.Time) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok || now.After(entry.windowEnd) {
		entry = &windowEntry{windowEnd: now.Add(l.window)}
		l.entries[key] = entry
	}
	entry.count++
	retry := int(entry.windowEnd.Sub(now).Seconds()) + 1
	return entry.count <= l.limit, retry
}

// Purge drops expired in-memory windows.
func (l *Limiter) Purge(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	purged := 0
	for k, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, k)
			purged++
		}
	}
	return purged
}

// StartPurge removes expired entries periodically until ctx is done.
func (l *Limiter) StartPurge(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := l.Purge(now); n > 0 {
					log.Debug().Str("limiter", l.name).Int("purged", n).Msg("rate limiter entries purged")
				}
			}
		}
	}()
}

// ── Middleware ────────────────────────────────────────────────────────────────

// RateLimit rejects requests over the limiter's budget with 429, keyed by
// client IP. A non-positive limit disables the check.
func RateLimit(l *Limiter, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.limit <= 0 {
			c.Next()
			return
		}
		ok, retry := l.Allow(c.Request.Context(), c.ClientIP())
		if !ok {
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(apierror.CodeRateLimited, msg))
			return
		}
		c.Next()
	}
}
