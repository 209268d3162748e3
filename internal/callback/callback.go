// Package callback decodes menu button payloads into a closed set of actions
// and encodes actions back into the wire strings embedded in buttons.
package callback

import (
	"strconv"

	"github.com/pixol20/MemeSender/core/telegram/callbacks"
)

// Kind is the decoded action type of a callback.
type Kind int

const (
	KindUnknown Kind = iota
	// KindItem opens an item ("meme:<id>").
	KindItem
	// KindPage switches the list page ("page:<n>").
	KindPage
	// KindDelete asks for delete confirmation ("delt:<id>").
	KindDelete
	// KindConfirmDelete deletes the item ("cdel:<id>").
	KindConfirmDelete
	// KindBack returns to the list ("back:").
	KindBack
)

// Wire prefixes. They are echoed back by Telegram verbatim and must not change.
const (
	PrefixItem          = "meme:"
	PrefixPage          = "page:"
	PrefixDelete        = "delt:"
	PrefixConfirmDelete = "cdel:"
	PrefixBack          = "back:"
)

var prefixes = map[string]Kind{
	PrefixItem:          KindItem,
	PrefixPage:          KindPage,
	PrefixDelete:        KindDelete,
	PrefixConfirmDelete: KindConfirmDelete,
	PrefixBack:          KindBack,
}

// Prefixes lists every known wire prefix.
func Prefixes() []string {
	return []string{PrefixItem, PrefixPage, PrefixDelete, PrefixConfirmDelete, PrefixBack}
}

// String returns a log-friendly name.
func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindPage:
		return "page"
	case KindDelete:
		return "delete"
	case KindConfirmDelete:
		return "confirm_delete"
	case KindBack:
		return "back"
	}
	return "unknown"
}

// Action is a decoded callback. Arg is an item id or a page index.
type Action struct {
	Kind Kind
	Arg  int64
}

// Unknown is the zero action returned for anything that does not decode.
var Unknown = Action{Kind: KindUnknown}

// Decode parses raw callback data. Unknown prefixes, missing or malformed
// numeric payloads and a non-empty "back:" payload all yield Unknown.
func Decode(data string) Action {
	prefix, payload, ok := callbacks.Split(data)
	if !ok {
		return Unknown
	}
	kind, known := prefixes[prefix]
	if !known {
		return Unknown
	}
	if kind == KindBack {
		if payload != "" {
			return Unknown
		}
		return Action{Kind: KindBack}
	}
	arg, err := callbacks.ParseInt64(payload)
	if err != nil {
		return Unknown
	}
	return Action{Kind: kind, Arg: arg}
}

// Encode renders the action into its wire form. Unknown encodes to "".
func (a Action) Encode() string {
	switch a.Kind {
	case KindItem:
		return callbacks.Join(PrefixItem, strconv.FormatInt(a.Arg, 10))
	case KindPage:
		return callbacks.Join(PrefixPage, strconv.FormatInt(a.Arg, 10))
	case KindDelete:
		return callbacks.Join(PrefixDelete, strconv.FormatInt(a.Arg, 10))
	case KindConfirmDelete:
		return callbacks.Join(PrefixConfirmDelete, strconv.FormatInt(a.Arg, 10))
	case KindBack:
		return PrefixBack
	}
	return ""
}

// Item returns the payload that opens item id.
func Item(id int64) string { return Action{Kind: KindItem, Arg: id}.Encode() }

// Page returns the payload that shows list page p.
func Page(p int) string { return Action{Kind: KindPage, Arg: int64(p)}.Encode() }

// Delete returns the payload that asks to delete item id.
func Delete(id int64) string { return Action{Kind: KindDelete, Arg: id}.Encode() }

// ConfirmDelete returns the payload that deletes item id.
func ConfirmDelete(id int64) string { return Action{Kind: KindConfirmDelete, Arg: id}.Encode() }

// Back returns the payload that returns to the list.
func Back() string { return PrefixBack }
