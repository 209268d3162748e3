package keyboard

import "testing"

func TestInlineButtonsKeepRawData(t *testing.T) {
	m := InlineButtonsRows(
		[]InlineBtn{{Text: "a", Data: "meme:1"}},
		nil,
		[]InlineBtn{{Text: "<", Data: "page:0"}, {Text: ">", Data: "page:2"}},
	)
	if len(m.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d", len(m.InlineKeyboard))
	}
	if b := m.InlineKeyboard[1][1]; b.Data != "page:2" || b.Unique != "" {
		t.Fatalf("button = %+v", b)
	}
	if InlineButtonsRows(nil) != nil {
		t.Fatal("empty keyboard must be nil")
	}
}

func TestInlineButtonsNPerRow(t *testing.T) {
	btns := []InlineBtn{{Text: "1"}, {Text: "2"}, {Text: "3"}}
	m := InlineButtonsNPerRow(btns, 2)
	if len(m.InlineKeyboard) != 2 || len(m.InlineKeyboard[1]) != 1 {
		t.Fatalf("rows = %+v", m.InlineKeyboard)
	}
	if m := InlineButtonsNPerRow(btns, 0); len(m.InlineKeyboard) != 3 {
		t.Fatalf("rows = %d", len(m.InlineKeyboard))
	}
}

func TestReplyButtons(t *testing.T) {
	m := ReplyButtons([]string{"Yes✅", "No❌"})
	if !m.OneTimeKeyboard || !m.ResizeKeyboard {
		t.Fatalf("markup = %+v", m)
	}
	if len(m.ReplyKeyboard) != 1 || m.ReplyKeyboard[0][1].Text != "No❌" {
		t.Fatalf("keyboard = %+v", m.ReplyKeyboard)
	}
	if ReplyButtons() != nil {
		t.Fatal("empty keyboard must be nil")
	}
	if !RemoveKeyboard().RemoveKeyboard {
		t.Fatal("remove flag not set")
	}
}
