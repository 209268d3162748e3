// Package chat describes the outbound chat operations the dialog code needs,
// independent of the Telegram client library.
package chat

import (
	"context"
	"errors"

	"github.com/pixol20/MemeSender/internal/meme"
)

// ErrMessageGone is returned by EditText when the target message no longer
// exists or can no longer be edited.
var ErrMessageGone = errors.New("chat: message is gone")

// MessageRef identifies a message previously sent by the bot.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// IsZero reports whether the reference points nowhere.
func (r MessageRef) IsZero() bool { return r.MessageID == 0 }

// Button is an inline keyboard button. Data is delivered back verbatim.
type Button struct {
	Text string
	Data string
}

// Markup carries at most one of: an inline keyboard, a one-time reply
// keyboard, or a request to remove the reply keyboard.
type Markup struct {
	Inline      [][]Button
	Reply       [][]string
	RemoveReply bool
}

// InlineRows builds an inline markup from rows of buttons. Empty rows are
// dropped; nil is returned when nothing is left.
func InlineRows(rows ...[]Button) *Markup {
	out := make([][]Button, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			out = append(out, row)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return &Markup{Inline: out}
}

// ReplyKeyboard builds a single-row reply keyboard.
func ReplyKeyboard(labels ...string) *Markup {
	return &Markup{Reply: [][]string{labels}}
}

// RemoveKeyboard hides a previously shown reply keyboard.
func RemoveKeyboard() *Markup {
	return &Markup{RemoveReply: true}
}

// Media is a stored media reference with its kind.
type Media struct {
	Ref      string
	Kind     meme.Kind
	Duration int
	Caption  string
}

// MediaOf returns the media part of an item.
func MediaOf(item meme.Item) Media {
	return Media{Ref: item.MediaRef, Kind: item.Kind, Duration: item.Duration}
}

// Transport sends, edits and deletes chat messages. Implementations are
// synchronous and must be safe for concurrent use.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string, markup *Markup) (MessageRef, error)
	// EditText replaces the text and inline keyboard of ref. An edit that
	// changes nothing succeeds. ErrMessageGone is returned when ref is stale.
	EditText(ctx context.Context, ref MessageRef, text string, markup *Markup) (MessageRef, error)
	SendMedia(ctx context.Context, chatID int64, media Media, markup *Markup) (MessageRef, error)
	// DeleteMessage is idempotent: deleting a missing message succeeds.
	DeleteMessage(ctx context.Context, ref MessageRef) error
}
