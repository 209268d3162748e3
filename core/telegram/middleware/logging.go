package middleware

import (
	"log/slog"
	"time"

	"github.com/maypok86/otter"

	"github.com/pixol20/MemeSender/core/logger"
	"github.com/pixol20/MemeSender/core/telegram/callbacks"
	tghelpers "github.com/pixol20/MemeSender/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// KeyUpdateStart holds the time the update entered the middleware chain.
const KeyUpdateStart = "update_start"

// seen remembers recently received update ids so a redelivered update is
// logged once.
var seen = func() otter.Cache[int, struct{}] {
	c, err := otter.MustBuilder[int, struct{}](4096).WithTTL(10 * time.Second).Build()
	if err != nil {
		panic(err)
	}
	return c
}()

func firstSighting(updateID int) bool {
	if _, ok := seen.Get(updateID); ok {
		return false
	}
	seen.Set(updateID, struct{}{})
	return true
}

// LoggerMiddleware stores the update context (rid, update, user, chat) for
// downstream handlers and logs a sampled receipt line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		o := tghelpers.OriginOf(c)
		rid := logger.BuildRID(o.UpdateID, o.ChatID, o.UserID)
		c.Set(tghelpers.KeyRID, rid)
		c.Set(KeyUpdateStart, time.Now())
		ctx := tghelpers.NewContext(c, rid)

		if logger.ShouldSampleDebug() && firstSighting(o.UpdateID) {
			logger.Debug(ctx, "tg", "update.received", receiptAttrs(c)...)
		}
		return next(c)
	}
}

func receiptAttrs(c tele.Context) []slog.Attr {
	upd := c.Update()
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.String("kind", UpdateKind(upd)),
	}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if u := c.Sender(); u != nil {
		if u.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
		}
		if u.LanguageCode != "" {
			attrs = append(attrs, slog.String("lang", u.LanguageCode))
		}
	}

	switch {
	case upd.Callback != nil:
		if prefix, payload, ok := callbacks.Split(upd.Callback.Data); ok {
			attrs = append(attrs, slog.String("cb_key", prefix))
			if payload != "" {
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 64)))
			}
		}
	case upd.Query != nil:
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(upd.Query.Text, 256)))
	case upd.Message != nil:
		if t := c.Text(); t != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
		}
	}
	return attrs
}
