// Package logger owns the process-wide structured logger.
//
// Lines are written as JSON or key=value with a fixed leading key order and
// carry the correlation data stored in the context (rid, update, user, chat,
// handler). Output goes through an asynchronous buffered writer to stdout and,
// optionally, to a log file and a warnings-and-errors file.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/pixol20/MemeSender/core/buildinfo"
	coreconfig "github.com/pixol20/MemeSender/core/config"
)

var (
	initOnce sync.Once
	closeMu  sync.Mutex
	closed   bool

	writers []*asyncWriter
	files   []io.Closer

	levelVar slog.LevelVar

	debugSampler  = newRatioSampler(1, 50)
	traceOverride bool

	// L is the root logger. It stays nil until Init runs, in which case the
	// package helpers drop events silently.
	L *slog.Logger
)

// Init configures the global logger from cfg. Only the first call has effect.
func Init(cfg *coreconfig.Config) error {
	var initErr error
	initOnce.Do(func() {
		var lc coreconfig.LoggingConfig
		if cfg != nil {
			lc = cfg.Logging
		}
		levelVar.Set(parseLevel(lc.Level))
		debugSampler.Set(parseRatio(orDefault(lc.DebugSample, "1/50")))
		traceOverride = truthy(os.Getenv("TRACE")) || truthy(os.Getenv("LOG_TRACE"))

		sinks := []io.Writer{os.Stdout}
		if f, err := openLogFile(lc.Dir, lc.BotFile); err != nil {
			initErr = err
			return
		} else if f != nil {
			sinks = append(sinks, f)
		}
		out := newAsyncWriter(sinks, 64*1024)
		writers = append(writers, out)

		var errOut *asyncWriter
		if f, err := openLogFile(lc.Dir, lc.ErrorsFile); err != nil {
			initErr = err
			return
		} else if f != nil {
			errOut = newAsyncWriter([]io.Writer{f}, 16*1024)
			writers = append(writers, errOut)
		}

		L = slog.New(newStructuredHandler(handlerConfig{
			level:  &levelVar,
			format: parseFormat(lc),
			order:  parseKeyOrder(lc.KeysOrder),
			out:    out,
			errOut: errOut,
		}))
		slog.SetDefault(L)

		attrs := append([]slog.Attr{slog.String("go_version", runtime.Version())}, buildinfo.Attrs()...)
		Info(context.Background(), "app", "startup", append(attrs, slog.String("cfg_profile", profile(lc)))...)
	})
	return initErr
}

// Shutdown flushes pending lines and closes the log files.
func Shutdown() error {
	closeMu.Lock()
	defer closeMu.Unlock()
	if closed {
		return nil
	}
	closed = true

	var errs []error
	for _, w := range writers {
		errs = append(errs, w.Close())
	}
	for _, f := range files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

// Component returns the root logger scoped to a component, or nil before Init.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// Event writes one event line for component at level.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	log := FromContext(ctx)
	if log == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if !log.Enabled(ctx, level) {
		return
	}
	head := make([]slog.Attr, 0, len(attrs)+2)
	if component = strings.TrimSpace(component); component != "" {
		head = append(head, slog.String("component", component))
	}
	if event != "" {
		head = append(head, slog.String("event", event))
	}
	log.LogAttrs(ctx, level, event, append(head, attrs...)...)
}

func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether a high-volume debug detail should be
// logged. TRACE=1 lets everything through.
func ShouldSampleDebug() bool {
	return traceOverride || debugSampler.Allow()
}

// RoundMS rounds d to whole milliseconds; negative values become zero.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// Took returns the rounded time elapsed since start.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// SummarizeStrings joins at most limit values and reports whether some were cut.
func SummarizeStrings(values []string, limit int) (string, bool) {
	if limit <= 0 || len(values) == 0 {
		return "", len(values) > 0
	}
	if len(values) <= limit {
		return strings.Join(values, ", "), false
	}
	return strings.Join(values[:limit], ", "), true
}

func openLogFile(dir, name string) (io.Writer, error) {
	dir, name = strings.TrimSpace(dir), strings.TrimSpace(name)
	if dir == "" || name == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logger: create log dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file %s: %w", path, err)
	}
	files = append(files, f)
	return f, nil
}

func parseFormat(lc coreconfig.LoggingConfig) logFormat {
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	switch profile(lc) {
	case "debug", "dev":
		return formatKV
	}
	return formatJSON
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func profile(lc coreconfig.LoggingConfig) string {
	return strings.ToLower(orDefault(lc.Profile, "prod"))
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// SanitizeLimit collapses newlines and cuts s to at most limit runes.
func SanitizeLimit(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if limit <= 0 {
		return s
	}
	if r := []rune(s); len(r) > limit {
		return string(r[:limit]) + "…"
	}
	return s
}
