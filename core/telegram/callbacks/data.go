// Package callbacks parses raw callback data of the form <prefix><payload>,
// where the prefix has a fixed width and carries its own separator
// (for example "page:" + "3").
package callbacks

import (
	"strconv"

	tele "gopkg.in/telebot.v4"
)

// PrefixWidth is the number of leading bytes that identify the action.
const PrefixWidth = 5

// MaxDataLength is the Telegram limit for callback_data in bytes.
const MaxDataLength = 64

// Split separates raw data into its fixed-width prefix and payload.
// ok is false when data is shorter than the prefix.
func Split(data string) (prefix, payload string, ok bool) {
	if len(data) < PrefixWidth {
		return "", "", false
	}
	return data[:PrefixWidth], data[PrefixWidth:], true
}

// Join builds callback data from a prefix and payload. The caller is expected
// to pass a prefix of exactly PrefixWidth bytes.
func Join(prefix, payload string) string {
	return prefix + payload
}

// Data returns the raw callback data of the current update.
func Data(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	return cb.Data
}

// ParseInt64 parses a decimal payload. Signs and surrounding spaces are
// rejected so that "meme:+1" and "meme: 1" are not treated as valid.
func ParseInt64(payload string) (int64, error) {
	if payload == "" {
		return 0, strconv.ErrSyntax
	}
	if payload[0] == '+' || payload[0] == ' ' {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(payload, 10, 64)
}
