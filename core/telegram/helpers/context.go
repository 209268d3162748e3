package helpers

import (
	"context"

	"github.com/pixol20/MemeSender/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Keys under which per-update values live in tele.Context storage.
const (
	KeyContext = "logger_ctx"
	KeyRID     = "rid"
)

// Origin identifies where an update came from.
type Origin struct {
	UpdateID int
	UserID   int64
	ChatID   int64
}

// OriginOf reads the update, sender and chat ids of c. Inline queries carry
// no chat, so ChatID stays zero for them.
func OriginOf(c tele.Context) Origin {
	o := Origin{UpdateID: c.Update().ID}
	if u := c.Sender(); u != nil {
		o.UserID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		o.ChatID = ch.ID
	}
	return o
}

// NewContext builds a fresh logging context for c tagged with rid, stores it
// on c and returns it. An empty rid is derived from the update origin.
func NewContext(c tele.Context, rid string) context.Context {
	o := OriginOf(c)
	if rid == "" {
		rid = logger.BuildRID(o.UpdateID, o.ChatID, o.UserID)
	}
	ctx := logger.WithRID(context.Background(), rid)
	ctx = logger.WithUpdateMeta(ctx, o.UpdateID, o.UserID, o.ChatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	StoreContext(c, ctx)
	return ctx
}

// StoreContext replaces the context kept on c.
func StoreContext(c tele.Context, ctx context.Context) {
	if c != nil && ctx != nil {
		c.Set(KeyContext, ctx)
	}
}

// ContextFrom returns the context stored on c, if any.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(KeyContext).(context.Context)
	return ctx, ok && ctx != nil
}

// BuildContext returns the stored context of c, creating one on first use.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := ContextFrom(c); ok {
		return ctx
	}
	rid, _ := c.Get(KeyRID).(string)
	return NewContext(c, rid)
}

// WithHandler tags the stored context with the handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler != "" {
		ctx = logger.WithHandler(ctx, handler)
		StoreContext(c, ctx)
	}
	return ctx
}
