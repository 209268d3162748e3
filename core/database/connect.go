package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/pixol20/MemeSender/core/logger"
)

const (
	component = "db"

	// readyTimeout bounds how long startup waits for the server to accept
	// connections, which matters when the bot and database start together.
	readyTimeout = 30 * time.Second
	pingTimeout  = 5 * time.Second
	readyPoll    = 2 * time.Second
)

// Connect opens a pooled connection and waits until the server answers.
func Connect(cfg Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	defer cancel()
	target := []slog.Attr{
		slog.String("driver", "postgres"),
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.Name),
	}

	start := time.Now()
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err == nil {
		err = pingUntilReady(ctx, db.DB)
	}
	took := logger.Took(start)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		logger.Error(ctx, component, "db.connect",
			append(target, slog.Duration("duration", took), slog.String("err", err.Error()))...)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if n := cfg.MaxConnections; n > 0 {
		db.SetMaxOpenConns(n)
		db.SetMaxIdleConns(n)
	}
	logger.Info(ctx, component, "db.connect",
		append(target, slog.Int("pool_open", cfg.MaxConnections), slog.Duration("duration", took))...)
	return db, nil
}

// waitForServer blocks until the server behind dsn answers a ping.
func waitForServer(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	defer cancel()
	return pingUntilReady(ctx, db)
}

func pingUntilReady(ctx context.Context, db *sql.DB) error {
	for attempt := 1; ; attempt++ {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := db.PingContext(pctx)
		cancel()
		if err == nil {
			return nil
		}
		logger.Debug(ctx, component, "db.wait", slog.Int("attempt", attempt), slog.String("err", err.Error()))

		t := time.NewTimer(readyPoll)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("database not ready: %w", err)
		case <-t.C:
		}
	}
}
