package router

import (
	"time"

	tg "github.com/pixol20/MemeSender/core/telegram"
	"github.com/pixol20/MemeSender/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// commandDispatcher resolves registry commands from message text. Commands
// are not bound as telebot endpoints so an active dialog sees them first.
type commandDispatcher struct {
	reg   *tg.Registry
	admin middleware.AdminOptions
}

func newCommandDispatcher(reg *tg.Registry, opts CommandRouteOptions) *commandDispatcher {
	if reg == nil {
		return nil
	}
	return &commandDispatcher{
		reg: reg,
		admin: middleware.AdminOptions{
			AdminID:  opts.AdminID,
			OnReject: opts.OnAdminReject,
		},
	}
}

// dispatch runs the command named by text. handled is false when text is
// not a registered command.
func (d *commandDispatcher) dispatch(c tele.Context, text string, start time.Time) (handled bool, err error) {
	if d == nil {
		return false, nil
	}
	key, cmd, ok := d.reg.LookupCommand(text)
	if !ok || cmd.Handler == nil {
		return false, nil
	}
	h := cmd.Handler
	if cmd.AdminOnly {
		h = middleware.AdminOnlyMiddleware(d.admin)(h)
	}
	return true, run(c, handlerName(key), start, h)
}
