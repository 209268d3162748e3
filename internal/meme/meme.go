// Package meme holds the media item model shared by the dialogs and the
// storage adapters.
package meme

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Kind identifies the Telegram media type of an item.
type Kind string

const (
	KindPhoto Kind = "photo"
	KindVideo Kind = "video"
	KindGIF   Kind = "gif"
	KindVoice Kind = "voice"
	KindAudio Kind = "audio"
)

// MaxTextLength bounds titles and tags, counted in runes after trimming.
const MaxTextLength = 512

// ErrNotFound reports a missing item or an item owned by someone else.
var ErrNotFound = errors.New("meme: not found")

// Valid reports whether k is one of the supported media kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPhoto, KindVideo, KindGIF, KindVoice, KindAudio:
		return true
	}
	return false
}

// HasDuration reports whether media of this kind carries a playback length.
func (k Kind) HasDuration() bool {
	return k.Valid() && k != KindPhoto
}

// Marker returns the short label prefix used in list buttons.
func (k Kind) Marker() string {
	switch k {
	case KindPhoto:
		return "🖼"
	case KindVideo:
		return "🎬"
	case KindGIF:
		return "🎞"
	case KindVoice:
		return "🎤"
	case KindAudio:
		return "🎵"
	}
	return "❔"
}

// Item is a stored media item.
type Item struct {
	ID        int64     `db:"id"`
	OwnerID   int64     `db:"creator_telegram_id"`
	MediaRef  string    `db:"telegram_media_id"`
	Kind      Kind      `db:"media_type"`
	Duration  int       `db:"duration"`
	Title     string    `db:"title"`
	Tags      []string  `db:"-"`
	Public    bool      `db:"is_public"`
	CreatedAt time.Time `db:"created_at"`
}

// NewItem carries everything needed to persist a finished upload.
type NewItem struct {
	OwnerID  int64
	MediaRef string
	Kind     Kind
	Duration int
	Title    string
	Tags     []string
	Public   bool
}

// Store is the persistence contract used by the dialogs.
type Store interface {
	EnsureUser(ctx context.Context, userID int64) error
	CreateItem(ctx context.Context, item NewItem) error
	ListItemsByOwner(ctx context.Context, ownerID int64) ([]Item, error)
	GetItemIfOwned(ctx context.Context, itemID, ownerID int64) (Item, error)
	DeleteItemIfOwned(ctx context.Context, itemID, ownerID int64) error
	SearchVisible(ctx context.Context, query string, userID int64, limit int) ([]Item, error)
}

// NormalizeText trims s and reports whether it fits MaxTextLength.
func NormalizeText(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	return trimmed, utf8.RuneCountInString(trimmed) <= MaxTextLength
}

// QueryWords splits a search query into lower-cased words.
func QueryWords(query string) []string {
	fields := strings.Fields(query)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToLower(f))
	}
	return out
}
