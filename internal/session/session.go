// Package session defines the per-user conversation record shared by the
// upload dialog and the menu navigator.
package session

import (
	"github.com/pixol20/MemeSender/core/telegram/state"
	"github.com/pixol20/MemeSender/internal/chat"
	"github.com/pixol20/MemeSender/internal/meme"
	"github.com/pixol20/MemeSender/internal/tracker"
)

// State groups owned by the two dialogs.
const (
	GroupUpload = "upload"
	GroupMenu   = "menu"
)

// Session is the conversation record of one user. It is only touched while
// the user's registry lock is held.
type Session struct {
	UserID int64
	// ChatID is the chat of the most recent event.
	ChatID int64
	State  state.State

	Draft meme.Draft

	LastListPage   int
	SelectedItemID int64

	Messages *tracker.Tracker
}

// New returns an idle session for userID.
func New(userID int64, transport chat.Transport) *Session {
	return &Session{
		UserID:   userID,
		State:    state.StateIdle,
		Messages: tracker.New(transport),
	}
}

// Constructor adapts New to the registry's constructor signature.
func Constructor(transport chat.Transport) func(int64) *Session {
	return func(userID int64) *Session {
		return New(userID, transport)
	}
}

// Idle reports whether no dialog is active.
func (s *Session) Idle() bool { return s.State == state.StateIdle || s.State == "" }

// Uploading reports whether the upload dialog owns the session.
func (s *Session) Uploading() bool { return s.State.Group() == GroupUpload }

// Browsing reports whether the menu navigator owns the session.
func (s *Session) Browsing() bool { return s.State.Group() == GroupMenu }

// ToIdle returns to idle and forgets dialog-local data. Tracked messages
// are left to the caller.
func (s *Session) ToIdle() {
	s.State = state.StateIdle
	s.Draft.Reset()
	s.LastListPage = 0
	s.SelectedItemID = 0
}
