package middleware

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultRateLimit is the default rate limit per minute
	DefaultRateLimit = 100
	// DefaultBurstSize is the default burst size
	DefaultBurstSize = 10
	// CleanupInterval is the interval for cleaning up stale limiters
	CleanupInterval = 5 * time.Minute
	// LimiterTTL is the time-to-live for inactive limiters
	LimiterTTL = 10 * time.Minute
)

// RateLimiter keeps a token bucket per authenticated user
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[int32]*bucket
	perMinute int
	limit     rate.Limit
	burst     int
	stopCh    chan struct{}
	stopOnce  sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Decision is the outcome of a single rate limit check
type Decision struct {
	Allowed    bool
	Remaining  int
	Reset      time.Time
	RetryAfter time.Duration
}

// NewRateLimiter creates a new RateLimiter with default settings
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithConfig(DefaultRateLimit, DefaultBurstSize)
}

// NewRateLimiterWithConfig creates a RateLimiter allowing requestsPerMinute
// sustained with bursts of up to burstSize
func NewRateLimiterWithConfig(requestsPerMinute int, burstSize int) *RateLimiter {
	rl := &RateLimiter{
		buckets:   make(map[int32]*bucket),
		perMinute: requestsPerMinute,
		limit:     rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:     burstSize,
		stopCh:    make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

func (r *RateLimiter) bucketFor(userID int32, now time.Time) *bucket {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[userID]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.buckets[userID] = b
	}
	b.lastSeen = now
	return b
}

// Take consumes one token from the user's bucket if one is available
func (r *RateLimiter) Take(userID int32) Decision {
	now := time.Now()
	limiter := r.bucketFor(userID, now).limiter

	reservation := limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return Decision{Reset: now.Add(time.Minute), RetryAfter: time.Minute}
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return Decision{Reset: now.Add(delay), RetryAfter: delay}
	}

	tokens := math.Max(0, limiter.TokensAt(now))
	refill := time.Duration((float64(r.burst) - tokens) / float64(r.limit) * float64(time.Second))
	return Decision{
		Allowed:   true,
		Remaining: int(tokens),
		Reset:     now.Add(refill),
	}
}

// Allow reports whether a request from the given user may proceed
func (r *RateLimiter) Allow(userID int32) bool {
	return r.Take(userID).Allowed
}

// cleanup periodically drops buckets of users that went quiet
func (r *RateLimiter) cleanup() {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle(time.Now())
		case <-r.stopCh:
			return
		}
	}
}

func (r *RateLimiter) evictIdle(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for userID, b := range r.buckets {
		if now.Sub(b.lastSeen) > LimiterTTL {
			delete(r.buckets, userID)
			evicted++
		}
	}
	if evicted > 0 {
		log.Debug().Int("evicted", evicted).Msg("Cleaned up stale rate limiters")
	}
	return evicted
}

// Stop stops the cleanup goroutine
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// RateLimitMiddleware returns an Echo middleware that applies rate limiting
// to authenticated requests. It must run after Authenticate.
func RateLimitMiddleware(rl *RateLimiter) echo.MiddlewareFunc {
	limit := strconv.Itoa(rl.perMinute)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := GetUserID(c)
			if userID == 0 {
				return next(c)
			}

			decision := rl.Take(userID)

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(decision.Reset.Unix(), 10))

			if !decision.Allowed {
				retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				h.Set("Retry-After", strconv.Itoa(retryAfter))

				log.Warn().
					Int32("user_id", userID).
					Int("retry_after", retryAfter).
					Msg("Rate limit exceeded")

				return rateLimitError(c, fmt.Sprintf("Too many requests. Please retry after %d seconds.", retryAfter))
			}

			return next(c)
		}
	}
}
