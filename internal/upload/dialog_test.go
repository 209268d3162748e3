package upload

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/pixol20/MemeSender/core/telegram/state"
	"github.com/pixol20/MemeSender/internal/chat"
	"github.com/pixol20/MemeSender/internal/chat/chattest"
	"github.com/pixol20/MemeSender/internal/meme"
	"github.com/pixol20/MemeSender/internal/session"
	"github.com/pixol20/MemeSender/internal/storage/memory"
)

const (
	userID = 11
	chatID = 11
)

type fixture struct {
	dialog    *Dialog
	store     *memory.Store
	transport *chattest.Transport
	session   *session.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tr := chattest.New()
	st := memory.New()
	s := session.New(userID, tr)
	s.ChatID = chatID
	return &fixture{dialog: New(st, tr), store: st, transport: tr, session: s}
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	f.dialog.Start(context.Background(), f.session)
	if f.session.State != StateAwaitingMedia {
		t.Fatalf("state after start = %q", f.session.State)
	}
}

func (f *fixture) feed(t *testing.T, in Input) Outcome {
	t.Helper()
	out := f.dialog.Handle(context.Background(), f.session, in)
	assertDraftInvariant(t, f.session)
	return out
}

func (f *fixture) lastText() string {
	texts := f.transport.Texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

// assertDraftInvariant checks that a draft only exists while uploading.
func assertDraftInvariant(t *testing.T, s *session.Session) {
	t.Helper()
	if !s.Uploading() && !s.Draft.Empty() {
		t.Fatalf("draft %+v left behind in state %q", s.Draft, s.State)
	}
}

func photo() Input {
	return MediaInput(chat.Media{Ref: "photo-1", Kind: meme.KindPhoto, Duration: 5})
}

func TestPhotoNamedCatPublicNoTags(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	steps := []struct {
		in    Input
		state state.State
	}{
		{photo(), StateAwaitingName},
		{TextInput("  cat "), StateAwaitingTagDecision},
		{TextInput(TokenNo), StateAwaitingVisibility},
	}
	for i, step := range steps {
		if out := f.feed(t, step.in); out != Continue {
			t.Fatalf("step %d outcome = %v", i, out)
		}
		if f.session.State != step.state {
			t.Fatalf("step %d state = %q, want %q", i, f.session.State, step.state)
		}
	}

	if out := f.feed(t, TextInput(TokenYes)); out != Done {
		t.Fatalf("final outcome = %v", out)
	}
	if !f.session.Idle() {
		t.Fatalf("state after done = %q", f.session.State)
	}
	if f.store.Calls(memory.OpCreate) != 1 {
		t.Fatalf("create calls = %d", f.store.Calls(memory.OpCreate))
	}

	items, _ := f.store.ListItemsByOwner(context.Background(), userID)
	if len(items) != 1 {
		t.Fatalf("items = %+v", items)
	}
	got := items[0]
	if got.Kind != meme.KindPhoto || got.Title != "cat" || len(got.Tags) != 0 || !got.Public || got.Duration != 0 {
		t.Fatalf("stored item %+v", got)
	}
	if f.lastText() != msgUploaded {
		t.Fatalf("last reply = %q", f.lastText())
	}
}

func TestTooLongNameKeepsState(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.feed(t, MediaInput(chat.Media{Ref: "video-1", Kind: meme.KindVideo, Duration: 7}))

	before := f.session.Draft
	f.feed(t, TextInput(strings.Repeat("я", meme.MaxTextLength+1)))

	if f.session.State != StateAwaitingName {
		t.Fatalf("state = %q", f.session.State)
	}
	if f.lastText() != msgNameTooLong {
		t.Fatalf("reply = %q", f.lastText())
	}
	if !reflect.DeepEqual(f.session.Draft, before) {
		t.Fatalf("draft mutated: %+v", f.session.Draft)
	}
	if f.session.Draft.Duration != 7 {
		t.Fatalf("duration = %d", f.session.Draft.Duration)
	}
	if f.store.Calls(memory.OpCreate) != 0 {
		t.Fatal("create called too early")
	}
}

func TestNameAtLimitAccepted(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.feed(t, photo())
	f.feed(t, TextInput(strings.Repeat("a", meme.MaxTextLength)))
	if f.session.State != StateAwaitingTagDecision {
		t.Fatalf("state = %q", f.session.State)
	}
}

func TestEmptyNameRejected(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.feed(t, photo())
	f.feed(t, TextInput("   "))
	if f.session.State != StateAwaitingName || f.lastText() != msgNameEmpty {
		t.Fatalf("state = %q reply = %q", f.session.State, f.lastText())
	}
}

func TestPersistFailureStillFinishes(t *testing.T) {
	f := newFixture(t)
	f.store.Fail(memory.OpCreate, memory.ErrInjected)
	f.start(t)

	f.feed(t, photo())
	f.feed(t, TextInput("cat"))
	f.feed(t, TextInput(TokenNo))
	out := f.feed(t, TextInput(TokenNo))

	if out != Done || !f.session.Idle() {
		t.Fatalf("outcome = %v state = %q", out, f.session.State)
	}
	if !f.session.Draft.Empty() {
		t.Fatal("draft not cleared")
	}
	if f.lastText() != msgUploadFailed {
		t.Fatalf("reply = %q", f.lastText())
	}
	if f.store.Calls(memory.OpCreate) != 1 {
		t.Fatal("failed create must not be retried")
	}
}

func TestTagsCollected(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.feed(t, MediaInput(chat.Media{Ref: "gif-1", Kind: meme.KindGIF, Duration: 2}))
	f.feed(t, TextInput("dance"))
	f.feed(t, TextInput(" "+TokenYes+" "))

	if f.session.State != StateCollectingTags || f.session.Draft.Tags == nil {
		t.Fatalf("state = %q tags = %#v", f.session.State, f.session.Draft.Tags)
	}

	f.feed(t, TextInput(" Funny "))
	f.feed(t, TextInput(""))
	if f.lastText() != msgTagEmpty {
		t.Fatalf("empty tag reply = %q", f.lastText())
	}
	f.feed(t, TextInput(strings.Repeat("x", meme.MaxTextLength+1)))
	if f.lastText() != msgTagTooLong {
		t.Fatalf("long tag reply = %q", f.lastText())
	}
	f.feed(t, TextInput("party"))

	if out := f.feed(t, CommandInput(CommandFinishTags)); out != Continue {
		t.Fatalf("finish outcome = %v", out)
	}
	if f.session.State != StateAwaitingVisibility {
		t.Fatalf("state = %q", f.session.State)
	}
	texts := f.transport.Texts()
	if summary := texts[len(texts)-2]; summary != "Tags collected: Funny, party" {
		t.Fatalf("summary = %q", summary)
	}

	f.feed(t, TextInput(TokenNo))
	items, _ := f.store.ListItemsByOwner(context.Background(), userID)
	if len(items) != 1 || !reflect.DeepEqual(items[0].Tags, []string{"Funny", "party"}) || items[0].Public {
		t.Fatalf("stored %+v", items)
	}
}

func TestWrongTokenReprompts(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.feed(t, photo())
	f.feed(t, TextInput("cat"))

	if out := f.feed(t, TextInput("maybe")); out != Continue {
		t.Fatalf("outcome = %v", out)
	}
	if f.session.State != StateAwaitingTagDecision {
		t.Fatalf("state = %q", f.session.State)
	}
	last := f.transport.Last()
	if last.Text != msgChooseToken || last.Markup == nil || len(last.Markup.Reply) != 1 {
		t.Fatalf("re-prompt = %+v", last)
	}
}

func TestCancelFromAnyState(t *testing.T) {
	prefixes := [][]Input{
		nil,
		{photo()},
		{photo(), TextInput("cat")},
		{photo(), TextInput("cat"), TextInput(TokenYes)},
		{photo(), TextInput("cat"), TextInput(TokenNo)},
	}
	for i, inputs := range prefixes {
		f := newFixture(t)
		f.start(t)
		for _, in := range inputs {
			f.feed(t, in)
		}
		if out := f.feed(t, CommandInput(CommandCancel)); out != Cancelled {
			t.Fatalf("case %d outcome = %v", i, out)
		}
		if !f.session.Idle() || f.lastText() != msgCancelled {
			t.Fatalf("case %d state = %q reply = %q", i, f.session.State, f.lastText())
		}
	}
}

func TestUnexpectedCommandCancels(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.feed(t, photo())

	if out := f.feed(t, CommandInput("/menu")); out != Cancelled {
		t.Fatalf("outcome = %v", out)
	}
	if f.lastText() != msgWrongCommand {
		t.Fatalf("reply = %q", f.lastText())
	}

	f = newFixture(t)
	f.start(t)
	f.feed(t, photo())
	if out := f.feed(t, CommandInput(CommandFinishTags)); out != Cancelled {
		t.Fatalf("finish_tags outside tag collection: %v", out)
	}
}

func TestAwaitingMediaIgnoresText(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.transport.Reset()

	for _, in := range []Input{TextInput("hello"), OtherInput()} {
		if out := f.feed(t, in); out != Ignored {
			t.Fatalf("outcome = %v", out)
		}
	}
	if f.session.State != StateAwaitingMedia || !f.session.Draft.Empty() {
		t.Fatalf("state = %q draft = %+v", f.session.State, f.session.Draft)
	}
	if len(f.transport.Calls()) != 0 {
		t.Fatal("ignored input must not reply")
	}
}

func TestHandleIgnoredWhenIdle(t *testing.T) {
	f := newFixture(t)
	if out := f.feed(t, photo()); out != Ignored {
		t.Fatalf("outcome = %v", out)
	}
}

func TestStartDestroysOpenMenu(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.session.Messages.Render(ctx, chatID, "menu", nil)
	_ = f.session.Messages.ShowMedia(ctx, chatID, chat.Media{Ref: "x", Kind: meme.KindPhoto}, nil)
	f.session.State = "menu.item"

	f.start(t)

	if f.session.Messages.Active() {
		t.Fatal("menu messages still tracked")
	}
	if f.transport.Live() != 1 {
		t.Fatalf("live messages = %d, want only the prompt", f.transport.Live())
	}
}
