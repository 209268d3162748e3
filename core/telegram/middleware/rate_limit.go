package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maypok86/otter"
	"golang.org/x/time/rate"

	"github.com/pixol20/MemeSender/core/logger"
	tghelpers "github.com/pixol20/MemeSender/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const defaultLimiterCapacity = 10_000

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	// Interval is the minimum spacing between updates of one user.
	Interval time.Duration
	// Burst allows that many updates back to back; defaults to 1.
	Burst   int
	Exclude map[string]struct{}
	// Capacity bounds the number of users tracked at once.
	Capacity  int
	OnLimited tele.HandlerFunc
}

// limiters hands out one token bucket per user. Buckets idle for a few
// intervals are evicted; a fresh bucket starts full, which is equivalent.
type limiters struct {
	mu    sync.Mutex
	cache otter.Cache[int64, *rate.Limiter]
	every rate.Limit
	burst int
}

func newLimiters(opts RateLimitOptions) (*limiters, error) {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = defaultLimiterCapacity
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	ttl := time.Duration(burst+1) * opts.Interval
	if ttl < time.Second {
		ttl = time.Second
	}
	cache, err := otter.MustBuilder[int64, *rate.Limiter](capacity).WithTTL(ttl).Build()
	if err != nil {
		return nil, err
	}
	return &limiters{cache: cache, every: rate.Every(opts.Interval), burst: burst}, nil
}

func (l *limiters) allow(userID int64, now time.Time) bool {
	l.mu.Lock()
	lim, ok := l.cache.Get(userID)
	if !ok {
		lim = rate.NewLimiter(l.every, l.burst)
	}
	l.cache.Set(userID, lim)
	l.mu.Unlock()
	return lim.AllowN(now, 1)
}

// UpdateKind names the update type used by rate limit exclusions.
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}

// RateLimitMiddleware returns a middleware that enforces a minimum interval
// between updates from the same user. Limited updates are logged and dropped.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	if opts.Interval <= 0 {
		return func(next tele.HandlerFunc) tele.HandlerFunc { return next }
	}
	lims, err := newLimiters(opts)
	if err != nil {
		logger.Error(context.Background(), "tg", "rate_limit.disabled", slog.String("err", err.Error()))
		return func(next tele.HandlerFunc) tele.HandlerFunc { return next }
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil {
				return next(c)
			}
			kind := UpdateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}

			if lims.allow(user.ID, time.Now()) {
				return next(c)
			}

			logger.Warn(tghelpers.BuildContext(c), "tg", "rate_limit",
				slog.String("status", "rate_limited"),
				slog.String("kind", kind),
				slog.Int64("user_id", user.ID),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}
