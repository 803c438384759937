package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/flash"
	"github.com/rpupo63/portfolio-backend/metrics"
	"golang.org/x/time/rate"
)

// RateLimiter decides whether one more event for key fits in its budget.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Name() string
}

// MemoryRateLimiter is a per-key token bucket kept in process. Keys idle for
// longer than idleTTL are swept on a later Allow.
type MemoryRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*memoryEntry
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type memoryEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const defaultLimiterIdleTTL = 10 * time.Minute

// NewMemoryRateLimiter allows perMinute events per key with the given burst.
func NewMemoryRateLimiter(perMinute float64, burst int) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		limiters: make(map[string]*memoryEntry),
		limit:    rate.Limit(perMinute / 60),
		burst:    burst,
		idleTTL:  defaultLimiterIdleTTL,
		now:      time.Now,
	}
}

func (l *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}

	entry, ok := l.limiters[key]
	if !ok {
		entry = &memoryEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1), nil
}

// sweep drops limiters not used within idleTTL. Callers hold mu.
func (l *MemoryRateLimiter) sweep(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) >= l.idleTTL {
			delete(l.limiters, key)
		}
	}
	l.lastSweep = now
}

// Len is the number of keys currently tracked.
func (l *MemoryRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *MemoryRateLimiter) Name() string { return "memory" }

// RedisRateLimiter is a fixed-window counter shared by every instance using the same Redis.
// A key may make floor(perMinute*window)+burst requests per window.
type RedisRateLimiter struct {
	client  *redis.Client
	window  time.Duration
	allowed int64
	prefix  string
	now     func() time.Time
}

func NewRedisRateLimiter(client *redis.Client, perMinute float64, burst int, window time.Duration) *RedisRateLimiter {
	if window < time.Second {
		window = time.Second
	}
	return &RedisRateLimiter{
		client:  client,
		window:  window,
		allowed: int64(perMinute*window.Minutes()) + int64(burst),
		prefix:  "portfolio:rl:",
		now:     time.Now,
	}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowSeconds := int64(l.window.Seconds())
	bucket := l.now().Unix() / windowSeconds
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, key, bucket)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	return incr.Val() <= l.allowed, nil
}

func (l *RedisRateLimiter) Name() string { return "redis" }

// rateLimitContact guards the contact form. Browsers are sent back to the home
// page with a notice; JSON clients get a 429.
func rateLimitContact(limiter RateLimiter, rd *renderer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := limiter.Allow(r.Context(), "ip:"+clientIP(r))
			if err != nil {
				// fail open when the limiter is unreachable
				rd.logger.Warn().Err(err).Str("limiter", limiter.Name()).Msg("rate limit check failed")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				metrics.RateLimitRejected.WithLabelValues(limiter.Name()).Inc()
				w.Header().Set("Retry-After", "60")
				if wantsJSON(r) {
					rd.responder.WriteError(w, errs.NewRateLimitError("contact", time.Minute))
					return
				}
				rd.redirect(w, r, "/", flash.Error("Too many messages, please try again later."))
				return
			}

			metrics.RateLimitAllowed.WithLabelValues(limiter.Name()).Inc()
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP keys on RemoteAddr. Forwarding headers only count when chi's RealIP
// middleware is installed for a trusted proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		if r.RemoteAddr == "" {
			return "unknown"
		}
		return r.RemoteAddr
	}
	return host
}
