// Package app composes storage, sessions, the dispatcher and the bot from
// configuration and hands the result to the core runner.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixol20/MemeSender/core/bootstrap"
	"github.com/pixol20/MemeSender/core/logger"
	coretelegram "github.com/pixol20/MemeSender/core/telegram"
	"github.com/pixol20/MemeSender/core/telegram/sender"
	"github.com/pixol20/MemeSender/core/telegram/state"
	"github.com/pixol20/MemeSender/internal/bot"
	"github.com/pixol20/MemeSender/internal/config"
	"github.com/pixol20/MemeSender/internal/meme"
	"github.com/pixol20/MemeSender/internal/session"
	"github.com/pixol20/MemeSender/internal/storage/memory"
	"github.com/pixol20/MemeSender/internal/storage/postgres"
)

// App is the composed bot.
type App struct {
	cfg        *config.Config
	infra      *bootstrap.Result
	store      meme.Store
	sessions   *state.Registry[session.Session]
	dispatcher *sender.Dispatcher
	transport  *bot.Transport
	bot        *bot.Bot
}

// Bootstrap initializes the logger and, for the postgres driver, the
// database and its migrations, then builds the app.
func Bootstrap(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	infra, err := bootstrap.Run(bootstrap.Options{
		Config:       cfg.CoreConfig(),
		Database:     cfg.Database,
		SkipDatabase: cfg.Storage.Driver == config.DriverMemory,
	})
	if err != nil {
		return nil, err
	}
	a, err := New(cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	return a, nil
}

// New builds the app on already initialized infrastructure.
func New(cfg *config.Config, infra *bootstrap.Result) (*App, error) {
	if infra == nil {
		infra = &bootstrap.Result{}
	}

	var store meme.Store
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		store = memory.New()
	default:
		if infra.DB == nil {
			return nil, fmt.Errorf("app: storage driver %q needs a database", cfg.Storage.Driver)
		}
		store = postgres.New(infra.DB)
	}

	dispatcher := sender.NewDispatcher(cfg.DispatcherOptions())
	transport := bot.NewTransport(dispatcher)

	sessions, err := state.NewRegistry(cfg.SessionOptions(), session.Constructor(transport))
	if err != nil {
		dispatcher.Close()
		return nil, fmt.Errorf("app: %w", err)
	}
	sessions.OnEvict(func(userID int64, s *session.Session) {
		ctx := logger.WithUpdateMeta(context.Background(), 0, userID, s.ChatID)
		logger.Debug(ctx, "session", "evicted", slog.String("state", string(s.State)))
		s.Messages.Destroy(ctx)
	})

	b, err := bot.New(bot.Options{
		Store:      store,
		Transport:  transport,
		Sessions:   sessions,
		Dispatcher: dispatcher,
		AdminID:    cfg.Telegram.AdminID,
	})
	if err != nil {
		sessions.Close()
		dispatcher.Close()
		return nil, err
	}

	logger.Info(context.Background(), "app", "composed",
		slog.String("storage", cfg.Storage.Driver),
		slog.Int("session_capacity", cfg.Sessions.Capacity),
		slog.Duration("session_idle_ttl", cfg.Sessions.IdleTTL),
	)
	return &App{
		cfg:        cfg,
		infra:      infra,
		store:      store,
		sessions:   sessions,
		dispatcher: dispatcher,
		transport:  transport,
		bot:        b,
	}, nil
}

// TelegramRunOptions describes how the core runtime should run the bot.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := a.cfg.CoreConfig()
	return coretelegram.RunOptions{
		Config:      core,
		Registry:    a.bot.Registry(),
		Dispatcher:  a.dispatcher,
		Middlewares: coretelegram.DefaultMiddlewares(core, a.bot.OnLimited),
		Routes:      a.bot.Routes(),
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.transport.Attach(rt.Bot)
			logger.Info(ctx, "app", "bot.attached")
			return nil
		},
		OnStop: func(ctx context.Context, _ coretelegram.Runtime) error {
			logger.Info(ctx, "app", "bot.stopped",
				slog.Int("sessions", a.sessions.Size()),
				slog.Uint64("send_errors", a.dispatcher.ErrorCount()),
			)
			return nil
		},
	}, nil
}

// Close releases the dispatcher, the session registry and the database.
func (a *App) Close() error {
	a.dispatcher.Close()
	a.sessions.Close()
	return a.infra.Close()
}
