// Package bot binds the upload dialog and the menu navigator to telebot:
// commands, callbacks, media input, inline search and the chat transport.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixol20/MemeSender/core/logger"
	tg "github.com/pixol20/MemeSender/core/telegram"
	"github.com/pixol20/MemeSender/core/telegram/callbacks"
	"github.com/pixol20/MemeSender/core/telegram/commands"
	tghelpers "github.com/pixol20/MemeSender/core/telegram/helpers"
	"github.com/pixol20/MemeSender/core/telegram/router"
	"github.com/pixol20/MemeSender/core/telegram/sender"
	"github.com/pixol20/MemeSender/core/telegram/state"
	"github.com/pixol20/MemeSender/internal/callback"
	"github.com/pixol20/MemeSender/internal/chat"
	"github.com/pixol20/MemeSender/internal/meme"
	"github.com/pixol20/MemeSender/internal/menu"
	"github.com/pixol20/MemeSender/internal/session"
	"github.com/pixol20/MemeSender/internal/upload"

	tele "gopkg.in/telebot.v4"
)

const component = "bot"

// DefaultInlineLimit caps inline search results.
const DefaultInlineLimit = 20

// Options wires the bot to its collaborators.
type Options struct {
	Store     meme.Store
	Transport chat.Transport
	Sessions  *state.Registry[session.Session]
	// Dispatcher is only read for /stats.
	Dispatcher  *sender.Dispatcher
	AdminID     int64
	InlineLimit int
}

// Bot owns the command registry and the dialogs.
type Bot struct {
	store       meme.Store
	sessions    *state.Registry[session.Session]
	dispatcher  *sender.Dispatcher
	upload      *upload.Dialog
	menu        *menu.Navigator
	registry    *tg.Registry
	adminID     int64
	inlineLimit int
}

// New registers commands and callbacks and returns the bot.
func New(opts Options) (*Bot, error) {
	switch {
	case opts.Store == nil:
		return nil, fmt.Errorf("bot: store is required")
	case opts.Transport == nil:
		return nil, fmt.Errorf("bot: transport is required")
	case opts.Sessions == nil:
		return nil, fmt.Errorf("bot: session registry is required")
	}
	if opts.InlineLimit <= 0 {
		opts.InlineLimit = DefaultInlineLimit
	}

	b := &Bot{
		store:       opts.Store,
		sessions:    opts.Sessions,
		dispatcher:  opts.Dispatcher,
		upload:      upload.New(opts.Store, opts.Transport),
		menu:        menu.New(opts.Store),
		registry:    tg.NewRegistry(),
		adminID:     opts.AdminID,
		inlineLimit: opts.InlineLimit,
	}
	if err := b.registerCommands(); err != nil {
		return nil, fmt.Errorf("bot: %w", err)
	}
	if err := b.registerCallbacks(); err != nil {
		return nil, err
	}
	return b, nil
}

// Registry exposes the command and callback registry.
func (b *Bot) Registry() *tg.Registry { return b.registry }

// Routes returns every telebot route of the bot. Text, media and callback
// routes run with the sender's session locked.
func (b *Bot) Routes() []tg.Route {
	withSession := []tele.MiddlewareFunc{state.WithSession(b.sessions)}
	fb := fallbacks{}

	routes := router.TextRoutes(b, b.registry, router.TextOptions{
		Commands: router.CommandRouteOptions{
			AdminID:       b.adminID,
			OnAdminReject: b.rejectAdmin,
		},
		Fallback:    fb,
		Middlewares: withSession,
	})
	routes = append(routes,
		router.CallbackRoute(b.registry, router.CallbackOptions{
			NotFound:    fb.UnknownCallback(),
			Middlewares: withSession,
		}),
		router.InlineRoute(b.handleInline),
	)
	return routes
}

// OnLimited answers rate limited callbacks so the client stops spinning.
// Other limited updates are dropped silently.
func (b *Bot) OnLimited(c tele.Context) error {
	if c.Callback() == nil {
		return nil
	}
	return c.Respond(&tele.CallbackResponse{Text: msgLimited})
}

// InProgress reports whether the upload dialog owns the sender's session.
func (b *Bot) InProgress(c tele.Context) bool {
	s, ok := state.SessionFrom[session.Session](c)
	return ok && s.Uploading()
}

// ManagerHandler feeds the current message to the upload dialog.
func (b *Bot) ManagerHandler(c tele.Context) error {
	s, ctx, ok := b.session(c)
	if !ok {
		return nil
	}
	out := b.upload.Handle(ctx, s, inputOf(c.Message()))
	logger.Debug(ctx, component, "upload.input",
		slog.Int64("user_id", s.UserID),
		slog.String("outcome", out.String()),
	)
	return nil
}

func (b *Bot) registerCallbacks() error {
	for _, prefix := range callback.Prefixes() {
		if err := b.registry.RegisterCallback(prefix, b.handleMenuCallback); err != nil {
			return fmt.Errorf("bot: %w", err)
		}
	}
	return nil
}

func (b *Bot) handleMenuCallback(c tele.Context) error {
	s, ctx, ok := b.session(c)
	if !ok {
		return nil
	}
	b.menu.Handle(ctx, s, callbacks.Data(c))
	return nil
}

// session returns the locked session of the sender with its chat refreshed.
func (b *Bot) session(c tele.Context) (*session.Session, context.Context, bool) {
	s, ok := state.SessionFrom[session.Session](c)
	if !ok {
		return nil, nil, false
	}
	if ch := c.Chat(); ch != nil {
		s.ChatID = ch.ID
	}
	return s, tghelpers.BuildContext(c), true
}

// inputOf classifies a message for the upload dialog.
func inputOf(msg *tele.Message) upload.Input {
	if msg == nil {
		return upload.OtherInput()
	}
	switch {
	case msg.Photo != nil:
		return upload.MediaInput(chat.Media{Ref: msg.Photo.FileID, Kind: meme.KindPhoto})
	case msg.Animation != nil:
		return upload.MediaInput(chat.Media{Ref: msg.Animation.FileID, Kind: meme.KindGIF, Duration: msg.Animation.Duration})
	case msg.Video != nil:
		return upload.MediaInput(chat.Media{Ref: msg.Video.FileID, Kind: meme.KindVideo, Duration: msg.Video.Duration})
	case msg.Voice != nil:
		return upload.MediaInput(chat.Media{Ref: msg.Voice.FileID, Kind: meme.KindVoice, Duration: msg.Voice.Duration})
	case msg.Audio != nil:
		return upload.MediaInput(chat.Media{Ref: msg.Audio.FileID, Kind: meme.KindAudio, Duration: msg.Audio.Duration})
	case msg.Text != "":
		if name := commands.Normalize(msg.Text); name != "" {
			return upload.CommandInput(name)
		}
		return upload.TextInput(msg.Text)
	}
	return upload.OtherInput()
}

var _ router.FSM = (*Bot)(nil)
