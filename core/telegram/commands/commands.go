// Package commands describes bot commands and normalizes command text.
package commands

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}

// Normalize reduces message text to its command token: "/Menu@my_bot x"
// becomes "/menu". Text that is not a command yields "".
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	token, _, _ := strings.Cut(text, " ")
	token, _, _ = strings.Cut(token, "@")
	if token == "/" {
		return ""
	}
	return strings.ToLower(token)
}

// IsCommand reports whether text starts with a command token.
func IsCommand(text string) bool {
	return Normalize(text) != ""
}
