package bot

import (
	"log/slog"
	"strings"

	"github.com/pixol20/MemeSender/core/logger"
	tghelpers "github.com/pixol20/MemeSender/core/telegram/helpers"
	"github.com/pixol20/MemeSender/core/telegram/ui"
	"github.com/pixol20/MemeSender/internal/meme"

	tele "gopkg.in/telebot.v4"
)

// inlineCacheTime is how long Telegram may cache an answer, in seconds.
const inlineCacheTime = 4

// handleInline answers an inline query with the caller's visible items.
// Empty queries get no answer.
func (b *Bot) handleInline(c tele.Context) error {
	q := c.Query()
	u := c.Sender()
	if q == nil || u == nil {
		return nil
	}
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil
	}

	ctx := tghelpers.BuildContext(c)
	items, err := b.store.SearchVisible(ctx, text, u.ID, b.inlineLimit)
	if err != nil {
		logger.Error(ctx, component, "inline.failed",
			slog.Int64("user_id", u.ID),
			slog.String("err", err.Error()),
		)
		return nil
	}

	results := inlineResults(items)
	logger.Debug(ctx, component, "inline.results",
		slog.Int64("user_id", u.ID),
		slog.Int("results", len(results)),
	)
	return c.Answer(&tele.QueryResponse{
		Results:    results,
		CacheTime:  inlineCacheTime,
		IsPersonal: true,
	})
}

func inlineResults(items []meme.Item) tele.Results {
	results := make(tele.Results, 0, len(items))
	for _, it := range items {
		if r, ok := ui.CachedResult(string(it.Kind), it.MediaRef, it.Title); ok {
			results = append(results, r)
		}
	}
	return results
}
