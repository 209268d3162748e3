// Package tracker remembers which bot messages belong to a session's current
// screen, so they can be edited in place or removed when the screen changes.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pixol20/MemeSender/core/logger"
	"github.com/pixol20/MemeSender/internal/chat"
)

const component = "tracker"

// Tracker holds at most one control message (text with inline keyboard) and
// one media message. It is not safe for concurrent use; the session lock
// serializes access.
type Tracker struct {
	transport chat.Transport
	control   chat.MessageRef
	media     chat.MessageRef
}

// New returns an empty tracker sending through transport.
func New(transport chat.Transport) *Tracker {
	return &Tracker{transport: transport}
}

// Control returns the tracked control message.
func (t *Tracker) Control() chat.MessageRef { return t.control }

// Media returns the tracked media message.
func (t *Tracker) Media() chat.MessageRef { return t.media }

// Active reports whether any message is tracked.
func (t *Tracker) Active() bool { return !t.control.IsZero() || !t.media.IsZero() }

// Render shows text as the control message. An existing control message in
// the same chat is edited in place; when it is gone a fresh one is sent.
// Messages tracked in another chat are deleted first.
func (t *Tracker) Render(ctx context.Context, chatID int64, text string, markup *chat.Markup) error {
	t.leave(ctx, chatID)
	if !t.control.IsZero() && t.control.ChatID == chatID {
		ref, err := t.transport.EditText(ctx, t.control, text, markup)
		if err == nil {
			t.control = ref
			return nil
		}
		if !errors.Is(err, chat.ErrMessageGone) {
			return fmt.Errorf("edit control message: %w", err)
		}
		logger.Debug(ctx, component, "control.gone",
			slog.Int64("chat_id", chatID),
			slog.Int("message_id", t.control.MessageID),
		)
		t.control = chat.MessageRef{}
	}

	ref, err := t.transport.SendText(ctx, chatID, text, markup)
	if err != nil {
		return fmt.Errorf("send control message: %w", err)
	}
	t.control = ref
	return nil
}

// ShowMedia replaces the tracked media message with a new one.
func (t *Tracker) ShowMedia(ctx context.Context, chatID int64, media chat.Media, markup *chat.Markup) error {
	t.ClearMedia(ctx)

	ref, err := t.transport.SendMedia(ctx, chatID, media, markup)
	if err != nil {
		return fmt.Errorf("send media message: %w", err)
	}
	t.media = ref
	return nil
}

// leave deletes tracked messages that live outside chatID.
func (t *Tracker) leave(ctx context.Context, chatID int64) {
	if !t.control.IsZero() && t.control.ChatID != chatID {
		t.delete(ctx, &t.control, "control")
	}
	if !t.media.IsZero() && t.media.ChatID != chatID {
		t.delete(ctx, &t.media, "media")
	}
}

// ClearMedia deletes the tracked media message. Calling it with nothing
// tracked is a no-op.
func (t *Tracker) ClearMedia(ctx context.Context) {
	t.delete(ctx, &t.media, "media")
}

// Destroy deletes both tracked messages.
func (t *Tracker) Destroy(ctx context.Context) {
	t.delete(ctx, &t.media, "media")
	t.delete(ctx, &t.control, "control")
}

// delete removes *ref from the chat and clears it even when the transport
// fails, so a stale reference is never retried forever.
func (t *Tracker) delete(ctx context.Context, ref *chat.MessageRef, role string) {
	if ref.IsZero() {
		return
	}
	if err := t.transport.DeleteMessage(ctx, *ref); err != nil {
		logger.Warn(ctx, component, "delete.failed",
			slog.String("role", role),
			slog.Int64("chat_id", ref.ChatID),
			slog.Int("message_id", ref.MessageID),
			slog.String("err", err.Error()),
		)
	}
	*ref = chat.MessageRef{}
}
