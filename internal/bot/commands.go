package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pixol20/MemeSender/core/logger"
	"github.com/pixol20/MemeSender/core/telegram/commands"
	tghelpers "github.com/pixol20/MemeSender/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

func (b *Bot) registerCommands() error {
	r := b.registry
	return errors.Join(
		r.RegisterCommand("/start", commands.Command{Handler: b.handleStart, Description: "Start the bot"}),
		r.RegisterCommand("/add", commands.Command{Handler: b.handleAdd, Description: "Upload a new meme"}),
		r.RegisterCommand("/menu", commands.Command{Handler: b.handleMenu, Description: "Browse your memes"}),
		r.RegisterCommand("/close", commands.Command{Handler: b.handleClose, Description: "Close the menu"}),
		r.RegisterCommand("/cancel", commands.Command{Handler: b.handleCancel, Description: "Cancel the upload"}),
		r.RegisterCommand("/help", commands.Command{Handler: b.handleHelp, Description: "List commands"}),
		r.RegisterCommand("/finish_tags", commands.Command{
			Handler:     b.handleFinishTags,
			Description: "Finish entering tags",
			Hidden:      true,
		}),
		r.RegisterCommand("/stats", commands.Command{
			Handler:     b.handleStats,
			Description: "Show runtime statistics",
			AdminOnly:   true,
		}),
	)
}

func (b *Bot) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	u := c.Sender()
	if u == nil {
		return nil
	}
	if err := b.store.EnsureUser(ctx, u.ID); err != nil {
		logger.Error(ctx, component, "start.failed",
			slog.Int64("user_id", u.ID),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, msgStartFailed)
	}
	logger.Info(ctx, component, "start", slog.Int64("user_id", u.ID))
	return tghelpers.SendText(c, msgGreeting)
}

func (b *Bot) handleAdd(c tele.Context) error {
	if s, ctx, ok := b.session(c); ok {
		b.upload.Start(ctx, s)
	}
	return nil
}

func (b *Bot) handleMenu(c tele.Context) error {
	if s, ctx, ok := b.session(c); ok {
		b.menu.Open(ctx, s)
	}
	return nil
}

func (b *Bot) handleClose(c tele.Context) error {
	if s, ctx, ok := b.session(c); ok {
		b.menu.Close(ctx, s)
	}
	return nil
}

// handleCancel and handleFinishTags only run outside an upload; inside one
// the dialog consumes them first.
func (b *Bot) handleCancel(c tele.Context) error {
	return tghelpers.SendText(c, msgNothingCancel)
}

func (b *Bot) handleFinishTags(c tele.Context) error {
	return tghelpers.SendText(c, msgNoUpload)
}

func (b *Bot) handleHelp(c tele.Context) error {
	return tghelpers.SendText(c, b.helpText())
}

func (b *Bot) helpText() string {
	var sb strings.Builder
	sb.WriteString(msgHelpHeader)
	for _, cmd := range b.registry.ListCommands(true) {
		fmt.Fprintf(&sb, "\n%s - %s", cmd.Text, cmd.Description)
	}
	return sb.String()
}

func (b *Bot) handleStats(c tele.Context) error {
	return tghelpers.SendText(c, b.statsText())
}

func (b *Bot) statsText() string {
	var errs uint64
	if b.dispatcher != nil {
		errs = b.dispatcher.ErrorCount()
	}
	return fmt.Sprintf("Sessions: %d\nSend errors: %d", b.sessions.Size(), errs)
}

func (b *Bot) rejectAdmin(c tele.Context) error {
	logger.Warn(tghelpers.BuildContext(c), component, "admin.rejected",
		slog.String("command", commands.Normalize(c.Text())),
	)
	return tghelpers.SendText(c, msgAdminOnly)
}
