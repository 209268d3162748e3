package upload

import "github.com/pixol20/MemeSender/internal/chat"

// Category classifies an inbound message for the transition table.
type Category int

const (
	CategoryOther Category = iota
	CategoryMedia
	CategoryText
	CategoryCommand
)

func (c Category) String() string {
	switch c {
	case CategoryMedia:
		return "media"
	case CategoryText:
		return "text"
	case CategoryCommand:
		return "command"
	}
	return "other"
}

// Input is one user message as seen by the dialog.
type Input struct {
	Category Category
	// Text is the raw text, or the normalized command name ("/cancel").
	Text  string
	Media chat.Media
}

// TextInput wraps a plain text message.
func TextInput(text string) Input { return Input{Category: CategoryText, Text: text} }

// CommandInput wraps a bot command. name must already be normalized.
func CommandInput(name string) Input { return Input{Category: CategoryCommand, Text: name} }

// MediaInput wraps a supported media message.
func MediaInput(m chat.Media) Input { return Input{Category: CategoryMedia, Media: m} }

// OtherInput stands for stickers, documents and anything else.
func OtherInput() Input { return Input{Category: CategoryOther} }

// Outcome reports what Handle did with an input.
type Outcome int

const (
	// Ignored means the input did not belong to the dialog or was not valid in
	// the current state; nothing changed.
	Ignored Outcome = iota
	// Continue means the dialog consumed the input and is still active.
	Continue
	// Done means the item was submitted for persistence and the dialog ended.
	Done
	// Cancelled means the dialog was aborted and the draft discarded.
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Done:
		return "done"
	case Cancelled:
		return "cancelled"
	}
	return "ignored"
}
