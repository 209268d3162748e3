package state

import (
	"log/slog"
	"time"

	"github.com/pixol20/MemeSender/core/logger"
	tghelpers "github.com/pixol20/MemeSender/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const sessionKey = "fsm_session"

// WithSession acquires the sender's session for the whole downstream handler
// and stores it in the context. Updates without a sender pass through
// untouched. The lock is released even if the handler panics.
func WithSession[S any](reg *Registry[S]) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return next(c)
			}

			start := time.Now()
			session, release := reg.Acquire(sender.ID)
			defer release()

			if wait := time.Since(start); wait > 50*time.Millisecond {
				logger.Debug(tghelpers.BuildContext(c), "tg", "session.wait",
					slog.Int64("user_id", sender.ID),
					slog.Int64("wait_ms", wait.Milliseconds()),
				)
			}

			c.Set(sessionKey, session)
			return next(c)
		}
	}
}

// SessionFrom returns the session stored by WithSession.
func SessionFrom[S any](c tele.Context) (*S, bool) {
	if c == nil {
		return nil, false
	}
	s, ok := c.Get(sessionKey).(*S)
	return s, ok && s != nil
}
