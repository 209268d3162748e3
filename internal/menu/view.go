package menu

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pixol20/MemeSender/internal/callback"
	"github.com/pixol20/MemeSender/internal/chat"
	"github.com/pixol20/MemeSender/internal/meme"
	"github.com/pixol20/MemeSender/internal/pagination"
)

// MaxLabelLength bounds item button labels in runes.
const MaxLabelLength = 48

const (
	msgEmpty        = "You have no memes yet. Use /add"
	msgListFailed   = "Something failed while loading your memes, try /menu again"
	msgDeleted      = "Meme deleted"
	msgDeleteFailed = "Failed to delete the meme"

	btnPrev    = "⬅️"
	btnNext    = "➡️"
	btnDelete  = "🗑 Delete"
	btnBack    = "↩️ Back"
	btnConfirm = "✅ Yes, delete"
	btnKeep    = "❌ No"
)

// Label renders the list button text of an item.
func Label(item meme.Item) string {
	return truncate(item.Kind.Marker()+" "+item.Title, MaxLabelLength)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}

func listView(page pagination.Page[meme.Item]) (string, *chat.Markup) {
	if page.LastPage < 0 {
		return msgEmpty, nil
	}

	rows := make([][]chat.Button, 0, len(page.Items)+1)
	for _, item := range page.Items {
		rows = append(rows, []chat.Button{{Text: Label(item), Data: callback.Item(item.ID)}})
	}

	var nav []chat.Button
	if page.HasPrev {
		nav = append(nav, chat.Button{Text: btnPrev, Data: callback.Page(page.Index - 1)})
	}
	if page.HasNext {
		nav = append(nav, chat.Button{Text: btnNext, Data: callback.Page(page.Index + 1)})
	}
	rows = append(rows, nav)

	text := fmt.Sprintf("Your memes, page %d of %d", page.Index+1, page.LastPage+1)
	return text, chat.InlineRows(rows...)
}

func itemView(item meme.Item) (string, *chat.Markup) {
	var b strings.Builder
	b.WriteString(item.Title)
	if len(item.Tags) > 0 {
		b.WriteString("\nTags: ")
		b.WriteString(strings.Join(item.Tags, ", "))
	}
	if item.Public {
		b.WriteString("\nVisibility: public")
	} else {
		b.WriteString("\nVisibility: private")
	}
	return b.String(), chat.InlineRows(
		[]chat.Button{{Text: btnDelete, Data: callback.Delete(item.ID)}},
		[]chat.Button{{Text: btnBack, Data: callback.Back()}},
	)
}

func confirmView(item meme.Item) (string, *chat.Markup) {
	return "Delete " + item.Title + "?", chat.InlineRows([]chat.Button{
		{Text: btnConfirm, Data: callback.ConfirmDelete(item.ID)},
		{Text: btnKeep, Data: callback.Item(item.ID)},
	})
}

func backOnly() *chat.Markup {
	return chat.InlineRows([]chat.Button{{Text: btnBack, Data: callback.Back()}})
}
