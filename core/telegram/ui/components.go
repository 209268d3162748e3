// Package ui builds inline query results and declares the fallback handlers
// used for updates no route claims.
package ui

import (
	"github.com/google/uuid"

	tele "gopkg.in/telebot.v4"
)

// Media kinds understood by CachedResult. They match the file types Telegram
// accepts for cached inline results.
const (
	MediaPhoto = "photo"
	MediaVideo = "video"
	MediaGIF   = "gif"
	MediaVoice = "voice"
	MediaAudio = "audio"
)

// NewResultID returns a random inline result id.
func NewResultID() string {
	return uuid.NewString()
}

// CachedResult builds an inline result that resends a file already stored on
// Telegram servers. ok is false for unknown kinds.
func CachedResult(kind, fileID, title string) (result tele.Result, ok bool) {
	switch kind {
	case MediaPhoto:
		result = &tele.PhotoResult{Cache: fileID, Title: title}
	case MediaVideo:
		result = &tele.VideoResult{Cache: fileID, Title: title}
	case MediaGIF:
		result = &tele.GifResult{Cache: fileID, Title: title}
	case MediaVoice:
		result = &tele.VoiceResult{Cache: fileID, Title: title}
	case MediaAudio:
		result = &tele.AudioResult{Cache: fileID, Title: title}
	default:
		return nil, false
	}
	result.SetResultID(NewResultID())
	return result, true
}
