package bot

import (
	"log/slog"

	"github.com/pixol20/MemeSender/core/logger"
	"github.com/pixol20/MemeSender/core/telegram/callbacks"
	tghelpers "github.com/pixol20/MemeSender/core/telegram/helpers"
	"github.com/pixol20/MemeSender/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

// fallbacks answers updates that no dialog or command claimed.
type fallbacks struct{}

func (f fallbacks) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, msgUnknown)
	}
}

func (f fallbacks) UnknownMedia() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, msgUseAdd)
	}
}

// UnknownCallback logs and drops the callback; the router has already
// acknowledged it.
func (f fallbacks) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		logger.Debug(tghelpers.BuildContext(c), component, "callback.unknown",
			slog.String("data", logger.SanitizeLimit(callbacks.Data(c), 64)),
		)
		return nil
	}
}

var _ ui.FallbackProvider = fallbacks{}
