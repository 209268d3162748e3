package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/pixol20/MemeSender/core/telegram/keyboard"
	"github.com/pixol20/MemeSender/core/telegram/middleware"
	"github.com/pixol20/MemeSender/core/telegram/sender"
	"github.com/pixol20/MemeSender/internal/chat"
	"github.com/pixol20/MemeSender/internal/meme"

	tele "gopkg.in/telebot.v4"
)

var errNotAttached = errors.New("bot: transport used before the bot was attached")

// Transport implements chat.Transport on top of a telebot Bot. Every call
// goes through the dispatcher so transient failures are retried.
type Transport struct {
	bot        atomic.Pointer[tele.Bot]
	dispatcher *sender.Dispatcher
}

// NewTransport returns a transport that runs calls through d. A nil d runs
// them directly.
func NewTransport(d *sender.Dispatcher) *Transport {
	return &Transport{dispatcher: d}
}

// Attach binds the running bot. Calls made before Attach fail.
func (t *Transport) Attach(b *tele.Bot) {
	t.bot.Store(b)
}

func (t *Transport) SendText(ctx context.Context, chatID int64, text string, markup *chat.Markup) (chat.MessageRef, error) {
	rm := replyMarkup(markup)
	var ref chat.MessageRef
	err := t.do(ctx, "send.text", "sendMessage", func(b *tele.Bot) error {
		msg, err := b.Send(tele.ChatID(chatID), text, sendOptions(rm)...)
		if err != nil {
			return err
		}
		ref = refOf(msg, chatID)
		return nil
	})
	if err != nil {
		return chat.MessageRef{}, err
	}
	middleware.Record(ctx, rm != nil)
	return ref, nil
}

func (t *Transport) EditText(ctx context.Context, ref chat.MessageRef, text string, markup *chat.Markup) (chat.MessageRef, error) {
	rm := replyMarkup(markup)
	err := t.do(ctx, "edit.text", "editMessageText", func(b *tele.Bot) error {
		_, err := b.Edit(stored(ref), text, sendOptions(rm)...)
		switch {
		case err == nil, isNotModified(err):
			return nil
		case isGone(err):
			return chat.ErrMessageGone
		}
		return err
	})
	if err != nil {
		return chat.MessageRef{}, err
	}
	middleware.Record(ctx, rm != nil)
	return ref, nil
}

func (t *Transport) SendMedia(ctx context.Context, chatID int64, media chat.Media, markup *chat.Markup) (chat.MessageRef, error) {
	what, endpoint, err := mediaValue(media)
	if err != nil {
		return chat.MessageRef{}, err
	}
	rm := replyMarkup(markup)
	var ref chat.MessageRef
	err = t.do(ctx, "send.media", endpoint, func(b *tele.Bot) error {
		msg, err := b.Send(tele.ChatID(chatID), what, sendOptions(rm)...)
		if err != nil {
			return err
		}
		ref = refOf(msg, chatID)
		return nil
	})
	if err != nil {
		return chat.MessageRef{}, err
	}
	middleware.Record(ctx, rm != nil)
	return ref, nil
}

func (t *Transport) DeleteMessage(ctx context.Context, ref chat.MessageRef) error {
	if ref.IsZero() {
		return nil
	}
	return t.do(ctx, "delete", "deleteMessage", func(b *tele.Bot) error {
		if err := b.Delete(stored(ref)); err != nil && !isDeleteMissing(err) {
			return err
		}
		return nil
	})
}

func (t *Transport) do(ctx context.Context, action, endpoint string, run func(*tele.Bot) error) error {
	b := t.bot.Load()
	if b == nil {
		return errNotAttached
	}
	call := func() error { return run(b) }
	if t.dispatcher == nil {
		return call()
	}
	return t.dispatcher.Do(ctx, action, endpoint, call)
}

// replyMarkup converts a chat markup to its telebot form. Inline keyboards
// win over reply keyboards when both are set.
func replyMarkup(m *chat.Markup) *tele.ReplyMarkup {
	switch {
	case m == nil:
		return nil
	case len(m.Inline) > 0:
		rows := make([][]keyboard.InlineBtn, 0, len(m.Inline))
		for _, row := range m.Inline {
			r := make([]keyboard.InlineBtn, 0, len(row))
			for _, b := range row {
				r = append(r, keyboard.InlineBtn{Text: b.Text, Data: b.Data})
			}
			rows = append(rows, r)
		}
		return keyboard.InlineButtonsRows(rows...)
	case len(m.Reply) > 0:
		return keyboard.ReplyButtons(m.Reply...)
	case m.RemoveReply:
		return keyboard.RemoveKeyboard()
	}
	return nil
}

func sendOptions(rm *tele.ReplyMarkup) []interface{} {
	if rm == nil {
		return nil
	}
	return []interface{}{rm}
}

// mediaValue builds the telebot sendable for a stored file id.
func mediaValue(m chat.Media) (interface{}, string, error) {
	if m.Ref == "" {
		return nil, "", fmt.Errorf("bot: media without file id")
	}
	file := tele.File{FileID: m.Ref}
	switch m.Kind {
	case meme.KindPhoto:
		return &tele.Photo{File: file, Caption: m.Caption}, "sendPhoto", nil
	case meme.KindVideo:
		return &tele.Video{File: file, Duration: m.Duration, Caption: m.Caption}, "sendVideo", nil
	case meme.KindGIF:
		return &tele.Animation{File: file, Duration: m.Duration, Caption: m.Caption}, "sendAnimation", nil
	case meme.KindVoice:
		return &tele.Voice{File: file, Duration: m.Duration, Caption: m.Caption}, "sendVoice", nil
	case meme.KindAudio:
		return &tele.Audio{File: file, Duration: m.Duration, Caption: m.Caption}, "sendAudio", nil
	}
	return nil, "", fmt.Errorf("bot: unsupported media kind %q", m.Kind)
}

func stored(ref chat.MessageRef) tele.StoredMessage {
	return tele.StoredMessage{MessageID: strconv.Itoa(ref.MessageID), ChatID: ref.ChatID}
}

func refOf(msg *tele.Message, chatID int64) chat.MessageRef {
	if msg == nil {
		return chat.MessageRef{}
	}
	if msg.Chat != nil {
		chatID = msg.Chat.ID
	}
	return chat.MessageRef{ChatID: chatID, MessageID: msg.ID}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return strings.ToLower(err.Error())
}

func isNotModified(err error) bool {
	return strings.Contains(errText(err), "message is not modified")
}

func isGone(err error) bool {
	s := errText(err)
	return strings.Contains(s, "message to edit not found") ||
		strings.Contains(s, "message can't be edited")
}

func isDeleteMissing(err error) bool {
	return strings.Contains(errText(err), "message to delete not found")
}

var _ chat.Transport = (*Transport)(nil)
