package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/pixol20/MemeSender/core/config"
	"github.com/pixol20/MemeSender/core/logger"
	tghelpers "github.com/pixol20/MemeSender/core/telegram/helpers"
	tgsender "github.com/pixol20/MemeSender/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware is a named global middleware installed with bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route binds Handler to a telebot endpoint with route-level middlewares.
type Route struct {
	Endpoint    any
	Handler     tele.HandlerFunc
	Middlewares []tele.MiddlewareFunc
}

// RunOptions controls RunTelegram. Hooks run after wiring and after the
// poller stops; OnStop gets a context that is no longer cancelled.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	DispatcherOptions tgsender.Options
	Dispatcher        *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	DisableWebhookCleanup   bool
	DisableHelperDispatcher bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes runtime components to lifecycle hooks.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram builds the bot from opts and serves updates until ctx is done.
// A dispatcher created here is closed on return; one passed in stays open.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return errors.New("telegram: nil config provided")
	}
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	bot, err := newBot(ctx, opts.Config, !opts.DisableWebhookCleanup)
	if err != nil {
		return err
	}

	dispatcher, owned := opts.Dispatcher, false
	if dispatcher == nil {
		dispatcher, owned = tgsender.NewDispatcher(opts.DispatcherOptions), true
	}
	if !opts.DisableHelperDispatcher {
		tghelpers.SetDispatcher(dispatcher)
	}
	release := func() {
		if !opts.DisableHelperDispatcher {
			tghelpers.SetDispatcher(nil)
		}
		if owned {
			dispatcher.Close()
		}
	}
	defer release()

	wire(ctx, bot, reg, opts)
	rt := Runtime{Bot: bot, Dispatcher: dispatcher, Registry: reg}
	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	runErr := serve(ctx, bot)
	if opts.OnStop != nil {
		if err := opts.OnStop(context.WithoutCancel(ctx), rt); err != nil {
			return err
		}
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// newBot creates the telebot instance for cfg. In long polling mode a stale
// webhook would swallow updates, so it is removed when cleanup is set.
func newBot(ctx context.Context, cfg *coreconfig.Config, cleanup bool) (*tele.Bot, error) {
	popts := PollerOptionsFrom(cfg)
	poller := BuildPoller(popts)

	start := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.Telegram.Token,
		Poller:  poller,
		Client:  BuildHTTPClient(popts.Timeout()),
		OnError: logHandlerError,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	took := logger.Took(start)

	if wh, ok := poller.(*tele.Webhook); ok {
		logger.Info(ctx, "tg", "mode",
			slog.String("mode", coreconfig.RunModeWebhook),
			slog.String("listen", wh.Listen),
			slog.String("public_url", wh.Endpoint.PublicURL),
			slog.Duration("duration", took),
		)
		return bot, nil
	}

	logger.Info(ctx, "tg", "mode",
		slog.String("mode", "polling"),
		slog.Duration("timeout", popts.Timeout()),
		slog.Duration("duration", took),
	)
	if cleanup {
		if err := bot.RemoveWebhook(false); err != nil {
			logger.Warn(ctx, "tg", "delete_webhook", slog.String("status", "fail"), slog.String("err", err.Error()))
		} else {
			logger.Info(ctx, "tg", "delete_webhook", slog.String("status", "ok"))
		}
	}
	return bot, nil
}

// wire installs global middlewares and routes, then publishes the command menu.
func wire(ctx context.Context, bot *tele.Bot, reg *Registry, opts RunOptions) {
	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	routes := 0
	for _, route := range opts.Routes {
		if route.Endpoint == nil || route.Handler == nil {
			continue
		}
		bot.Handle(route.Endpoint, route.Handler, route.Middlewares...)
		routes++
	}
	logger.Info(ctx, "tg.wire", "complete",
		slog.Int("middlewares", len(opts.Middlewares)),
		slog.Int("routes", routes),
		slog.Int("commands", len(reg.ListCommands(false))),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	PublishCommands(ctx, bot, reg)
}

// serve runs the poller until it stops by itself or ctx is done.
func serve(ctx context.Context, bot *tele.Bot) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		bot.Start()
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		bot.Stop()
		<-done
		return ctx.Err()
	}
}

// logHandlerError receives errors returned by handlers and telebot itself.
func logHandlerError(err error, c tele.Context) {
	ctx := context.Background()
	if c != nil {
		ctx = tghelpers.BuildContext(c)
	}
	logger.Error(ctx, "tg", "handler.error",
		slog.String("status", "fail"),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
}
