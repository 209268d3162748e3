package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/pixol20/MemeSender/core/logger"
	"github.com/pixol20/MemeSender/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var notices atomic.Pointer[sender.Dispatcher]

// SetDispatcher routes replies sent through this package via d. With no
// dispatcher set they are sent inline.
func SetDispatcher(d *sender.Dispatcher) {
	notices.Store(d)
}

// SendText queues a plain text notice to the current chat. It is meant for
// replies that no tracker owns, so the message id is not reported back.
// A full or closed queue degrades to an inline send.
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := []interface{}{}
	if len(markup) > 0 && markup[0] != nil {
		opts = append(opts, markup[0])
	}
	send := func() error { return c.Send(text, opts...) }

	d := notices.Load()
	if d == nil {
		return send()
	}
	ctx := BuildContext(c)
	err := d.Enqueue(ctx, "send.text", "sendMessage", send)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("endpoint", "sendMessage"),
			slog.String("err", err.Error()),
		)
		return send()
	}
	return err
}
