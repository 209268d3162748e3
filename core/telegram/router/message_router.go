package router

import (
	"time"

	tg "github.com/pixol20/MemeSender/core/telegram"
	"github.com/pixol20/MemeSender/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

// FSM is the dialog owner consulted before commands. InProgress and
// ManagerHandler run inside the route middlewares, so a per-user session is
// already held.
type FSM interface {
	InProgress(c tele.Context) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions controls routing of text and media updates.
type TextOptions struct {
	Commands    CommandRouteOptions
	Fallback    ui.FallbackProvider
	Middlewares []tele.MiddlewareFunc
}

// MediaEndpoints are the message kinds routed to the dialog. Anything the
// dialog cannot use still reaches it so it can ignore the update.
var MediaEndpoints = []string{
	tele.OnPhoto,
	tele.OnVideo,
	tele.OnAnimation,
	tele.OnVoice,
	tele.OnAudio,
	tele.OnDocument,
	tele.OnSticker,
	tele.OnVideoNote,
}

// TextRoutes builds handlers for text and media routing. Text goes to an
// FSM in progress first, then to registry commands, then to the fallback.
// Media goes to an FSM in progress or to the fallback.
func TextRoutes(fsmMgr FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	cmds := newCommandDispatcher(reg, opts.Commands)

	handler := func(c tele.Context) error {
		start := time.Now()
		if fsmMgr != nil && fsmMgr.InProgress(c) {
			return run(c, "fsm", start, fsmMgr.ManagerHandler)
		}
		if handled, err := cmds.dispatch(c, c.Text(), start); handled {
			return err
		}
		if opts.Fallback == nil {
			skip(c, "unknown_text", start)
			return nil
		}
		return run(c, "unknown_text", start, opts.Fallback.UnknownText())
	}

	mediaHandler := func(c tele.Context) error {
		start := time.Now()
		if fsmMgr != nil && fsmMgr.InProgress(c) {
			return run(c, "fsm_media", start, fsmMgr.ManagerHandler)
		}
		if opts.Fallback == nil {
			skip(c, "unexpected_media", start)
			return nil
		}
		return run(c, "unexpected_media", start, opts.Fallback.UnknownMedia())
	}

	routes := []tg.Route{{
		Endpoint:    tele.OnText,
		Handler:     handler,
		Middlewares: opts.Middlewares,
	}}
	for _, ep := range MediaEndpoints {
		routes = append(routes, tg.Route{
			Endpoint:    ep,
			Handler:     mediaHandler,
			Middlewares: opts.Middlewares,
		})
	}
	return routes
}
