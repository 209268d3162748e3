// Package chattest provides an in-memory chat.Transport for tests.
package chattest

import (
	"context"
	"fmt"
	"sync"

	"github.com/pixol20/MemeSender/internal/chat"
)

// Call records one transport operation.
type Call struct {
	Op     string // send, edit, media, delete
	ChatID int64
	Ref    chat.MessageRef
	Text   string
	Media  chat.Media
	Markup *chat.Markup
}

// Transport records calls and simulates a chat that holds messages.
// Fail* fields inject errors for the matching operation.
type Transport struct {
	mu     sync.Mutex
	nextID int
	calls  []Call
	live   map[chat.MessageRef]string

	FailSend   error
	FailEdit   error
	FailMedia  error
	FailDelete error
}

// New returns an empty transport.
func New() *Transport {
	return &Transport{live: make(map[chat.MessageRef]string)}
}

func (t *Transport) SendText(_ context.Context, chatID int64, text string, markup *chat.Markup) (chat.MessageRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailSend != nil {
		return chat.MessageRef{}, t.FailSend
	}
	ref := t.newRef(chatID)
	t.live[ref] = text
	t.calls = append(t.calls, Call{Op: "send", ChatID: chatID, Ref: ref, Text: text, Markup: markup})
	return ref, nil
}

func (t *Transport) EditText(_ context.Context, ref chat.MessageRef, text string, markup *chat.Markup) (chat.MessageRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailEdit != nil {
		return chat.MessageRef{}, t.FailEdit
	}
	if _, ok := t.live[ref]; !ok {
		return chat.MessageRef{}, chat.ErrMessageGone
	}
	t.live[ref] = text
	t.calls = append(t.calls, Call{Op: "edit", ChatID: ref.ChatID, Ref: ref, Text: text, Markup: markup})
	return ref, nil
}

func (t *Transport) SendMedia(_ context.Context, chatID int64, media chat.Media, markup *chat.Markup) (chat.MessageRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailMedia != nil {
		return chat.MessageRef{}, t.FailMedia
	}
	ref := t.newRef(chatID)
	t.live[ref] = fmt.Sprintf("[%s %s]", media.Kind, media.Ref)
	t.calls = append(t.calls, Call{Op: "media", ChatID: chatID, Ref: ref, Media: media, Markup: markup})
	return ref, nil
}

func (t *Transport) DeleteMessage(_ context.Context, ref chat.MessageRef) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, Call{Op: "delete", ChatID: ref.ChatID, Ref: ref})
	if t.FailDelete != nil {
		return t.FailDelete
	}
	delete(t.live, ref)
	return nil
}

// Drop removes a message as if the user deleted it by hand.
func (t *Transport) Drop(ref chat.MessageRef) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.live, ref)
}

// Calls returns a copy of all recorded calls.
func (t *Transport) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Call(nil), t.calls...)
}

// Ops returns the operation names in call order.
func (t *Transport) Ops() []string {
	calls := t.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Op
	}
	return out
}

// Last returns the most recent call, or a zero Call.
func (t *Transport) Last() Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.calls) == 0 {
		return Call{}
	}
	return t.calls[len(t.calls)-1]
}

// Texts returns the texts of send and edit calls in order.
func (t *Transport) Texts() []string {
	var out []string
	for _, c := range t.Calls() {
		if c.Op == "send" || c.Op == "edit" {
			out = append(out, c.Text)
		}
	}
	return out
}

// Live reports how many sent messages still exist in the chat.
func (t *Transport) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

// IsLive reports whether ref still exists.
func (t *Transport) IsLive(ref chat.MessageRef) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.live[ref]
	return ok
}

// Reset forgets recorded calls but keeps live messages.
func (t *Transport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = nil
}

func (t *Transport) newRef(chatID int64) chat.MessageRef {
	t.nextID++
	return chat.MessageRef{ChatID: chatID, MessageID: t.nextID}
}

var _ chat.Transport = (*Transport)(nil)
