package router

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/pixol20/MemeSender/core/logger"
	tghelpers "github.com/pixol20/MemeSender/core/telegram/helpers"
	"github.com/pixol20/MemeSender/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// run tags the update context with handler name, calls h and writes one
// handler.handled line for the update.
func run(c tele.Context, name string, start time.Time, h tele.HandlerFunc, extras ...slog.Attr) error {
	tghelpers.WithHandler(c, name)
	err := h(c)
	status := "ok"
	if err != nil {
		status = "fail"
	}
	summarize(c, name, start, status, err, extras...)
	return err
}

// skip records an update that no handler took.
func skip(c tele.Context, name string, start time.Time) {
	summarize(c, name, start, "skip", nil)
}

func summarize(c tele.Context, name string, start time.Time, status string, err error, extras ...slog.Attr) {
	ctx := tghelpers.WithHandler(c, name)
	msgs, kb := middleware.GetCounters(c)
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	logger.Info(ctx, "tg", "handler.handled", append(attrs, extras...)...)
}

// handlerName turns a command or callback prefix into a log-friendly name:
// "/Menu" is "menu" and "page:" is "page".
func handlerName(raw string) string {
	name := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(raw), "/"), ":")
	if name == "" {
		return "unknown"
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// errorCode is TG_<code> for Telegram API errors and the upper-cased Go
// type name otherwise.
func errorCode(err error) string {
	var apiErr *tele.Error
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return "TG_" + strconv.Itoa(apiErr.Code)
	}
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return "TG_429"
	}
	typ := strings.TrimLeft(fmt.Sprintf("%T", err), "*")
	if i := strings.LastIndexByte(typ, '.'); i >= 0 {
		typ = typ[i+1:]
	}
	if typ == "" {
		return "UNKNOWN_ERROR"
	}
	return strings.ToUpper(typ)
}
