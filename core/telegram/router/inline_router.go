package router

import (
	"log/slog"
	"time"

	tg "github.com/pixol20/MemeSender/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// InlineRoute binds an inline query handler. Queries carry no chat, so no
// session middleware applies.
func InlineRoute(h tele.HandlerFunc) tg.Route {
	return tg.Route{Endpoint: tele.OnQuery, Handler: func(c tele.Context) error {
		q := c.Query()
		if q == nil || h == nil {
			return nil
		}
		return run(c, "inline", time.Now(), h, slog.Int("query_len", len([]rune(q.Text))))
	}}
}
