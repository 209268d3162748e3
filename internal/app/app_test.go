package app

import (
	"context"
	"testing"

	coretelegram "github.com/pixol20/MemeSender/core/telegram"
	"github.com/pixol20/MemeSender/core/telegram/router"
	"github.com/pixol20/MemeSender/internal/config"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	cfg := &config.Config{Storage: config.StorageConfig{Driver: driver}}
	cfg.Telegram.Token = "t"
	cfg.RateLimit.IntervalMS = 500
	cfg.Database.Host, cfg.Database.User, cfg.Database.Name = "db", "u", "memes"
	if err := config.Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return cfg
}

func TestMemoryAppRunOptions(t *testing.T) {
	a, err := New(testConfig(t, config.DriverMemory), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	opts, err := a.TelegramRunOptions()
	if err != nil {
		t.Fatalf("TelegramRunOptions: %v", err)
	}
	if opts.Dispatcher == nil || opts.Registry == nil || opts.Config == nil {
		t.Fatalf("incomplete options %+v", opts)
	}
	// OnText, media endpoints, callbacks and inline queries.
	if want := 1 + len(router.MediaEndpoints) + 2; len(opts.Routes) != want {
		t.Fatalf("routes = %d, want %d", len(opts.Routes), want)
	}
	names := make(map[string]bool)
	for _, mw := range opts.Middlewares {
		names[mw.Name] = true
	}
	for _, want := range []string{"recover", "rate_limit", "logger", "metrics"} {
		if !names[want] {
			t.Errorf("middleware %q missing", want)
		}
	}
	if _, _, ok := opts.Registry.LookupCommand("/add"); !ok {
		t.Fatal("/add not registered")
	}
	if err := opts.OnStart(context.Background(), coretelegram.Runtime{}); err != nil {
		t.Fatalf("OnStart: %v", err)
	}
	if err := opts.OnStop(context.Background(), coretelegram.Runtime{}); err != nil {
		t.Fatalf("OnStop: %v", err)
	}
}

func TestPostgresNeedsDatabase(t *testing.T) {
	if _, err := New(testConfig(t, config.DriverPostgres), nil); err == nil {
		t.Fatal("expected error without a database")
	}
}
