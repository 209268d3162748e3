package tracker

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/pixol20/MemeSender/internal/chat"
	"github.com/pixol20/MemeSender/internal/chat/chattest"
	"github.com/pixol20/MemeSender/internal/meme"
)

const chatID = 100

func TestRenderSendsThenEdits(t *testing.T) {
	tr := chattest.New()
	tk := New(tr)
	ctx := context.Background()

	if err := tk.Render(ctx, chatID, "one", nil); err != nil {
		t.Fatalf("first render: %v", err)
	}
	first := tk.Control()
	if err := tk.Render(ctx, chatID, "two", nil); err != nil {
		t.Fatalf("second render: %v", err)
	}

	if got := tr.Ops(); !reflect.DeepEqual(got, []string{"send", "edit"}) {
		t.Fatalf("ops = %v", got)
	}
	if tk.Control() != first {
		t.Fatal("control message must be edited in place")
	}
	if tr.Live() != 1 {
		t.Fatalf("live messages = %d, want 1", tr.Live())
	}
}

func TestRenderResendsWhenControlGone(t *testing.T) {
	tr := chattest.New()
	tk := New(tr)
	ctx := context.Background()

	_ = tk.Render(ctx, chatID, "one", nil)
	tr.Drop(tk.Control())

	if err := tk.Render(ctx, chatID, "two", nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if last := tr.Last(); last.Op != "send" || last.Text != "two" {
		t.Fatalf("expected a fresh send, got %+v", last)
	}
}

func TestRenderKeepsRefOnTransportError(t *testing.T) {
	tr := chattest.New()
	tk := New(tr)
	ctx := context.Background()

	_ = tk.Render(ctx, chatID, "one", nil)
	ref := tk.Control()
	tr.FailEdit = errors.New("boom")

	if err := tk.Render(ctx, chatID, "two", nil); err == nil {
		t.Fatal("expected error")
	}
	if tk.Control() != ref {
		t.Fatal("control ref must survive a failed edit")
	}
}

func TestShowMediaReplacesPrevious(t *testing.T) {
	tr := chattest.New()
	tk := New(tr)
	ctx := context.Background()

	a := chat.Media{Ref: "file-a", Kind: meme.KindPhoto}
	b := chat.Media{Ref: "file-b", Kind: meme.KindVideo, Duration: 3}

	if err := tk.ShowMedia(ctx, chatID, a, nil); err != nil {
		t.Fatal(err)
	}
	old := tk.Media()
	if err := tk.ShowMedia(ctx, chatID, b, nil); err != nil {
		t.Fatal(err)
	}

	if got := tr.Ops(); !reflect.DeepEqual(got, []string{"media", "delete", "media"}) {
		t.Fatalf("ops = %v", got)
	}
	if tr.IsLive(old) {
		t.Fatal("previous media message still present")
	}
	if tr.Last().Media != b {
		t.Fatalf("sent media = %+v", tr.Last().Media)
	}
}

func TestClearMediaIdempotent(t *testing.T) {
	tr := chattest.New()
	tk := New(tr)
	ctx := context.Background()

	_ = tk.ShowMedia(ctx, chatID, chat.Media{Ref: "f", Kind: meme.KindGIF}, nil)
	tk.ClearMedia(ctx)
	tk.ClearMedia(ctx)

	deletes := 0
	for _, op := range tr.Ops() {
		if op == "delete" {
			deletes++
		}
	}
	if deletes != 1 {
		t.Fatalf("deletes = %d, want 1", deletes)
	}
	if !tk.Media().IsZero() {
		t.Fatal("media ref not cleared")
	}
}

func TestDestroyClearsRefsEvenOnFailure(t *testing.T) {
	tr := chattest.New()
	tk := New(tr)
	ctx := context.Background()

	_ = tk.Render(ctx, chatID, "menu", nil)
	_ = tk.ShowMedia(ctx, chatID, chat.Media{Ref: "f", Kind: meme.KindAudio}, nil)
	tr.FailDelete = errors.New("forbidden")

	tk.Destroy(ctx)

	if tk.Active() {
		t.Fatal("tracker must forget messages after destroy")
	}
	tr.FailDelete = nil
	tr.Reset()
	tk.Destroy(ctx)
	if len(tr.Calls()) != 0 {
		t.Fatal("second destroy must not touch the transport")
	}
}

func TestRenderInAnotherChatRemovesOldScreen(t *testing.T) {
	tr := chattest.New()
	tk := New(tr)
	ctx := context.Background()

	_ = tk.Render(ctx, 1, "a", nil)
	_ = tk.ShowMedia(ctx, 1, chat.Media{Ref: "file-a", Kind: meme.KindPhoto}, nil)
	old := tk.Control()

	if err := tk.Render(ctx, 2, "b", nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if tr.Live() != 1 || tr.IsLive(old) {
		t.Fatalf("live = %d ops = %v", tr.Live(), tr.Ops())
	}
	if tk.Control().ChatID != 2 || !tk.Media().IsZero() {
		t.Fatalf("control %+v media %+v", tk.Control(), tk.Media())
	}
}
