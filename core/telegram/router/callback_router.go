package router

import (
	"log/slog"
	"time"

	tg "github.com/pixol20/MemeSender/core/telegram"
	"github.com/pixol20/MemeSender/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions configures CallbackRoute. NotFound, when set, receives
// callbacks whose prefix has no handler.
type CallbackOptions struct {
	NotFound    tele.HandlerFunc
	Middlewares []tele.MiddlewareFunc
}

// CallbackRoute dispatches callbacks by data prefix. Every callback is
// acknowledged first so the client stops its spinner whatever happens next.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		start := time.Now()
		_ = c.Respond()

		prefix, _, _ := callbacks.Split(cb.Data)
		name := "callback." + handlerName(prefix)
		if h, ok := reg.GetCallback(prefix); ok {
			return run(c, name, start, h, slog.String("cb_key", prefix))
		}
		if opts.NotFound == nil {
			skip(c, name, start)
			return nil
		}
		return run(c, name, start, opts.NotFound,
			slog.String("cb_key", prefix),
			slog.String("reason", "not_found"),
		)
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler, Middlewares: opts.Middlewares}
}
