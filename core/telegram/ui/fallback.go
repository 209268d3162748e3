package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider answers updates that reached no command, callback prefix
// or dialog step. Media covers every non-text message kind.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnknownMedia() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}
