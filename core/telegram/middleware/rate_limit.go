package middleware

import (
	"log/slog"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"crmbot/core/logger"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	// Window is the sliding interval inside which at most Burst events are admitted.
	Window time.Duration
	// Burst is the number of events allowed per user within the window.
	Burst     int
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc

	// now is overridable in tests.
	now func() time.Time
}

// RateLimitMiddleware returns a middleware enforcing a per-user sliding window:
// at most Burst events within Window. An event over the limit is dropped after
// the OnLimited response; it is admission control, not a queue.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	limiter := newSlidingLimiter(opts.Window, opts.Burst, opts.now)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Window <= 0 || opts.Burst <= 0 {
				return next(c)
			}

			upd := c.Update()
			kind := "other"
			switch {
			case upd.Callback != nil:
				kind = "callback"
			case upd.Message != nil:
				kind = "message"
			}
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}

			if !limiter.Allow(user.ID) {
				logger.TG.Warn("rate limit",
					slog.String("event", "tg.rate_limit"),
					slog.Int64("user_id", user.ID),
					slog.String("kind", kind),
				)
				if opts.OnLimited != nil {
					_ = opts.OnLimited(c)
				}
				return nil
			}
			return next(c)
		}
	}
}

// slidingLimiter keeps per-user timestamps of recent events.
type slidingLimiter struct {
	mu     sync.Mutex
	window time.Duration
	burst  int
	seen   map[int64][]time.Time
	now    func() time.Time
}

func newSlidingLimiter(window time.Duration, burst int, now func() time.Time) *slidingLimiter {
	if now == nil {
		now = time.Now
	}
	return &slidingLimiter{
		window: window,
		burst:  burst,
		seen:   make(map[int64][]time.Time),
		now:    now,
	}
}

// Allow records the event and reports whether it fits the window.
func (l *slidingLimiter) Allow(userID int64) bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.seen[userID][:0]
	for _, ts := range l.seen[userID] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	if len(recent) >= l.burst {
		l.seen[userID] = recent
		return false
	}
	l.seen[userID] = append(recent, now)
	return true
}
