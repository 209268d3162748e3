package middleware

import (
	"log/slog"

	"github.com/pixol20/MemeSender/core/logger"
	tghelpers "github.com/pixol20/MemeSender/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions restricts handlers to a single operator account.
// A zero AdminID rejects everyone.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// IsAdmin reports whether c was sent by the configured admin.
func (o AdminOptions) IsAdmin(c tele.Context) bool {
	if o.AdminID == 0 {
		return false
	}
	u := c.Sender()
	return u != nil && u.ID == o.AdminID
}

// AdminOnlyMiddleware runs next for the admin and OnReject for anyone else.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.IsAdmin(c) {
				return next(c)
			}
			logger.Debug(tghelpers.BuildContext(c), "tg", "admin.reject",
				slog.Bool("admin_configured", opts.AdminID != 0),
			)
			if opts.OnReject == nil {
				return nil
			}
			return opts.OnReject(c)
		}
	}
}
