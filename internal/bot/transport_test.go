package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/pixol20/MemeSender/internal/chat"
	"github.com/pixol20/MemeSender/internal/meme"

	tele "gopkg.in/telebot.v4"
)

func TestReplyMarkup(t *testing.T) {
	if replyMarkup(nil) != nil {
		t.Fatal("nil markup must stay nil")
	}

	inline := replyMarkup(chat.InlineRows([]chat.Button{{Text: "a", Data: "meme:1"}}, nil, []chat.Button{{Text: "b", Data: "back:"}}))
	if inline == nil || len(inline.InlineKeyboard) != 2 {
		t.Fatalf("inline = %+v", inline)
	}
	if btn := inline.InlineKeyboard[0][0]; btn.Data != "meme:1" || btn.Unique != "" {
		t.Fatalf("button = %+v", btn)
	}

	reply := replyMarkup(chat.ReplyKeyboard("Yes", "No"))
	if reply == nil || len(reply.ReplyKeyboard) != 1 || len(reply.ReplyKeyboard[0]) != 2 || !reply.OneTimeKeyboard {
		t.Fatalf("reply = %+v", reply)
	}

	if rm := replyMarkup(chat.RemoveKeyboard()); rm == nil || !rm.RemoveKeyboard {
		t.Fatalf("remove = %+v", rm)
	}
}

func TestMediaValue(t *testing.T) {
	cases := []struct {
		kind     meme.Kind
		endpoint string
	}{
		{meme.KindPhoto, "sendPhoto"},
		{meme.KindVideo, "sendVideo"},
		{meme.KindGIF, "sendAnimation"},
		{meme.KindVoice, "sendVoice"},
		{meme.KindAudio, "sendAudio"},
	}
	for _, tc := range cases {
		what, endpoint, err := mediaValue(chat.Media{Ref: "f", Kind: tc.kind, Duration: 7})
		if err != nil || endpoint != tc.endpoint {
			t.Fatalf("%s: endpoint %q err %v", tc.kind, endpoint, err)
		}
		switch v := what.(type) {
		case *tele.Video:
			if v.Duration != 7 || v.FileID != "f" {
				t.Fatalf("video = %+v", v)
			}
		case *tele.Animation:
			if v.Duration != 7 {
				t.Fatalf("animation = %+v", v)
			}
		}
	}

	if _, _, err := mediaValue(chat.Media{Ref: "f", Kind: "sticker"}); err == nil {
		t.Fatal("unknown kind accepted")
	}
	if _, _, err := mediaValue(chat.Media{Kind: meme.KindPhoto}); err == nil {
		t.Fatal("empty file id accepted")
	}
}

func TestErrorClassification(t *testing.T) {
	notModified := errors.New("telegram: Bad Request: message is not modified: specified new message content is the same (400)")
	if !isNotModified(notModified) || isGone(notModified) {
		t.Fatal("not modified misclassified")
	}
	gone := errors.New("telegram: Bad Request: message to edit not found (400)")
	if !isGone(gone) || !isGone(errors.New("Bad Request: message can't be edited")) {
		t.Fatal("gone misclassified")
	}
	if !isDeleteMissing(errors.New("telegram: Bad Request: message to delete not found (400)")) {
		t.Fatal("missing delete misclassified")
	}
	if isNotModified(nil) || isGone(nil) || isDeleteMissing(nil) {
		t.Fatal("nil error classified")
	}
}

func TestTransportRequiresBot(t *testing.T) {
	tr := NewTransport(nil)
	ctx := context.Background()
	if _, err := tr.SendText(ctx, 1, "hi", nil); !errors.Is(err, errNotAttached) {
		t.Fatalf("send err = %v", err)
	}
	if err := tr.DeleteMessage(ctx, chat.MessageRef{}); err != nil {
		t.Fatalf("zero ref delete = %v", err)
	}
}

func TestRefOf(t *testing.T) {
	ref := refOf(&tele.Message{ID: 5, Chat: &tele.Chat{ID: 9}}, 1)
	if ref != (chat.MessageRef{ChatID: 9, MessageID: 5}) {
		t.Fatalf("ref = %+v", ref)
	}
	if got := stored(ref); got.MessageID != "5" || got.ChatID != 9 {
		t.Fatalf("stored = %+v", got)
	}
}
