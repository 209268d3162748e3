// Package bootstrap brings up process infrastructure in order: the logger,
// then the database connection, then schema migrations.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/pixol20/MemeSender/core/config"
	coredatabase "github.com/pixol20/MemeSender/core/database"
	"github.com/pixol20/MemeSender/core/logger"
)

// Options feed Run. The function fields default to the real logger and
// database packages; tests stub them.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config
	// SkipDatabase stops after the logger, for in-process storage.
	SkipDatabase bool

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error
}

func (o *Options) defaults() {
	if o.LoggerInit == nil {
		o.LoggerInit = logger.Init
	}
	if o.Connect == nil {
		o.Connect = coredatabase.Connect
	}
	if o.Migrate == nil {
		o.Migrate = coredatabase.RunMigrations
	}
}

// Result holds what Run brought up. DB is nil when the database was skipped.
type Result struct {
	DB *sqlx.DB
}

// Close releases the resources held by r.
func (r *Result) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// Run executes the pipeline and stops at the first failing stage.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New("bootstrap: nil config provided")
	}
	opts.defaults()

	if err := opts.LoggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}
	ctx := context.Background()
	if opts.SkipDatabase {
		logger.Info(ctx, "bootstrap", "database.skip")
		return &Result{}, nil
	}

	start := time.Now()
	db, err := opts.Connect(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	if err := opts.Migrate(opts.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}
	logger.Info(ctx, "bootstrap", "database.ready", slog.Duration("duration", logger.Took(start)))
	return &Result{DB: db}, nil
}
