package helpers

import (
	"testing"

	"github.com/pixol20/MemeSender/core/logger"

	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context
	update tele.Update
	store  map[string]any
}

func newFakeContext(updateID int, userID int64) *fakeContext {
	msg := &tele.Message{
		Sender: &tele.User{ID: userID},
		Chat:   &tele.Chat{ID: userID},
	}
	return &fakeContext{update: tele.Update{ID: updateID, Message: msg}, store: map[string]any{}}
}

func (c *fakeContext) Update() tele.Update { return c.update }
func (c *fakeContext) Sender() *tele.User { return c.update.Message.Sender }
func (c *fakeContext) Chat() *tele.Chat { return c.update.Message.Chat }
func (c *fakeContext) Get(key string) any { return c.store[key] }
func (c *fakeContext) Set(key string, v any) { c.store[key] = v }

func TestBuildContextCachesMeta(t *testing.T) {
	c := newFakeContext(10, 77)
	ctx := BuildContext(c)

	m := logger.MetaFrom(ctx)
	if m.UpdateID != 10 || m.UserID != 77 || m.ChatID != 77 || m.RID != logger.BuildRID(10, 77, 77) {
		t.Fatalf("meta = %+v", m)
	}
	if again := BuildContext(c); logger.MetaFrom(again) != m {
		t.Fatal("context not cached on tele.Context")
	}
}

func TestWithHandlerStoresName(t *testing.T) {
	c := newFakeContext(1, 2)
	WithHandler(c, "menu")
	ctx, ok := ContextFrom(c)
	if !ok || logger.HandlerFrom(ctx) != "menu" {
		t.Fatalf("handler = %q", logger.HandlerFrom(ctx))
	}
}

func TestBuildContextReusesMiddlewareRID(t *testing.T) {
	c := newFakeContext(3, 4)
	c.Set(KeyRID, "fixed")
	if rid := logger.MetaFrom(BuildContext(c)).RID; rid != "fixed" {
		t.Fatalf("rid = %q", rid)
	}
}

func TestOriginWithoutChat(t *testing.T) {
	c := newFakeContext(5, 6)
	c.update.Message.Chat = nil
	if o := OriginOf(c); o.ChatID != 0 || o.UserID != 6 || o.UpdateID != 5 {
		t.Fatalf("origin = %+v", o)
	}
}
