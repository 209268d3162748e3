package middleware

import (
	"context"
	"sync/atomic"

	tghelpers "github.com/pixol20/MemeSender/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Counters tracks the messages produced while handling one update.
type Counters struct {
	messages atomic.Int32
	kb       atomic.Bool
}

type countersKey struct{}

// WithCounters attaches fresh counters to ctx.
func WithCounters(ctx context.Context) (context.Context, *Counters) {
	cnt := &Counters{}
	return context.WithValue(ctx, countersKey{}, cnt), cnt
}

// CountersFrom returns the counters attached to ctx, or nil.
func CountersFrom(ctx context.Context) *Counters {
	if ctx == nil {
		return nil
	}
	cnt, _ := ctx.Value(countersKey{}).(*Counters)
	return cnt
}

// Record counts one sent or edited message. It is safe to call on contexts
// without counters.
func Record(ctx context.Context, hasKB bool) {
	cnt := CountersFrom(ctx)
	if cnt == nil {
		return
	}
	cnt.messages.Add(1)
	if hasKB {
		cnt.kb.Store(true)
	}
}

// metricsContext wraps tele.Context to count messages sent through it.
type metricsContext struct {
	tele.Context
	ctx context.Context
}

func hasKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

// Send proxies tele.Context.Send while updating message counters.
func (m metricsContext) Send(what interface{}, opts ...interface{}) error {
	err := m.Context.Send(what, opts...)
	if err == nil {
		Record(m.ctx, hasKeyboard(opts))
	}
	return err
}

// Reply proxies tele.Context.Reply while updating message counters.
func (m metricsContext) Reply(what interface{}, opts ...interface{}) error {
	err := m.Context.Reply(what, opts...)
	if err == nil {
		Record(m.ctx, hasKeyboard(opts))
	}
	return err
}

// Edit proxies tele.Context.Edit while updating message counters.
func (m metricsContext) Edit(what interface{}, opts ...interface{}) error {
	err := m.Context.Edit(what, opts...)
	if err == nil {
		Record(m.ctx, hasKeyboard(opts))
	}
	return err
}

// MessageMetricsMiddleware attaches per-update counters to the stored
// context and instruments tele.Context sends.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx, _ := WithCounters(tghelpers.BuildContext(c))
		tghelpers.StoreContext(c, ctx)
		return next(metricsContext{Context: c, ctx: ctx})
	}
}

// GetCounters reads message count and keyboard presence flags from context.
func GetCounters(c tele.Context) (int, bool) {
	ctx, ok := tghelpers.ContextFrom(c)
	if !ok {
		return 0, false
	}
	cnt := CountersFrom(ctx)
	if cnt == nil {
		return 0, false
	}
	return int(cnt.messages.Load()), cnt.kb.Load()
}
