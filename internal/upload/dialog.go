// Package upload implements the multi-step dialog that turns a media message
// into a stored item: media, name, optional tags, visibility, persist.
package upload

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pixol20/MemeSender/core/logger"
	"github.com/pixol20/MemeSender/core/telegram/state"
	"github.com/pixol20/MemeSender/internal/chat"
	"github.com/pixol20/MemeSender/internal/meme"
	"github.com/pixol20/MemeSender/internal/session"
)

const component = "fsm.upload"

const (
	StateAwaitingMedia       state.State = "upload.awaiting_media"
	StateAwaitingName        state.State = "upload.awaiting_name"
	StateAwaitingTagDecision state.State = "upload.awaiting_tag_decision"
	StateCollectingTags      state.State = "upload.collecting_tags"
	StateAwaitingVisibility  state.State = "upload.awaiting_visibility"
)

type transition func(d *Dialog, ctx context.Context, s *session.Session, in Input) Outcome

// transitions maps (state, input category) to a step. Commands are resolved
// before the table: /cancel works everywhere, /finish_tags only while
// collecting tags, and any other command aborts the dialog.
var transitions = map[state.State]map[Category]transition{
	StateAwaitingMedia: {
		CategoryMedia: (*Dialog).acceptMedia,
	},
	StateAwaitingName: {
		CategoryText: (*Dialog).acceptName,
	},
	StateAwaitingTagDecision: {
		CategoryText: (*Dialog).decideTags,
	},
	StateCollectingTags: {
		CategoryText: (*Dialog).acceptTag,
	},
	StateAwaitingVisibility: {
		CategoryText: (*Dialog).decideVisibility,
	},
}

// Dialog runs the upload flow for any number of sessions. Callers must hold
// the session lock.
type Dialog struct {
	store     meme.Store
	transport chat.Transport
}

// New returns a dialog persisting through store and replying through transport.
func New(store meme.Store, transport chat.Transport) *Dialog {
	return &Dialog{store: store, transport: transport}
}

// Start begins a new upload. Any open menu is destroyed first.
func (d *Dialog) Start(ctx context.Context, s *session.Session) {
	s.Messages.Destroy(ctx)
	s.ToIdle()
	s.State = StateAwaitingMedia
	d.log(ctx, s, "start", slog.LevelInfo)
	d.reply(ctx, s, msgSendMedia, chat.RemoveKeyboard())
}

// Handle feeds one input to the dialog. Inputs for a session that is not
// uploading are Ignored.
func (d *Dialog) Handle(ctx context.Context, s *session.Session, in Input) Outcome {
	if !s.Uploading() {
		return Ignored
	}

	if in.Category == CategoryCommand {
		switch {
		case in.Text == CommandCancel:
			return d.cancel(ctx, s, msgCancelled)
		case in.Text == CommandFinishTags && s.State == StateCollectingTags:
			return d.finishTags(ctx, s)
		default:
			return d.cancel(ctx, s, msgWrongCommand)
		}
	}

	step, ok := transitions[s.State][in.Category]
	if !ok {
		logger.Debug(ctx, component, "input.ignored",
			slog.Int64("user_id", s.UserID),
			slog.String("state", string(s.State)),
			slog.String("kind", in.Category.String()),
		)
		return Ignored
	}
	return step(d, ctx, s, in)
}

func (d *Dialog) acceptMedia(ctx context.Context, s *session.Session, in Input) Outcome {
	m := in.Media
	if !m.Kind.Valid() || m.Ref == "" {
		return Ignored
	}
	duration := m.Duration
	if !m.Kind.HasDuration() {
		duration = 0
	}
	s.Draft.MediaRef = m.Ref
	s.Draft.Kind = m.Kind
	s.Draft.Duration = duration

	d.advance(ctx, s, StateAwaitingName)
	d.reply(ctx, s, msgName, nil)
	return Continue
}

func (d *Dialog) acceptName(ctx context.Context, s *session.Session, in Input) Outcome {
	title, ok := meme.NormalizeText(in.Text)
	switch {
	case !ok:
		d.reply(ctx, s, msgNameTooLong, nil)
		return Continue
	case title == "":
		d.reply(ctx, s, msgNameEmpty, nil)
		return Continue
	}
	s.Draft.Title = title

	d.advance(ctx, s, StateAwaitingTagDecision)
	d.reply(ctx, s, msgAskTags, yesNo())
	return Continue
}

func (d *Dialog) decideTags(ctx context.Context, s *session.Session, in Input) Outcome {
	switch strings.TrimSpace(in.Text) {
	case TokenYes:
		s.Draft.Tags = []string{}
		d.advance(ctx, s, StateCollectingTags)
		d.reply(ctx, s, msgCollectTags, chat.RemoveKeyboard())
	case TokenNo:
		d.advance(ctx, s, StateAwaitingVisibility)
		d.reply(ctx, s, msgAskPublic, yesNo())
	default:
		d.reply(ctx, s, msgChooseToken, yesNo())
	}
	return Continue
}

func (d *Dialog) acceptTag(ctx context.Context, s *session.Session, in Input) Outcome {
	tag, ok := meme.NormalizeText(in.Text)
	switch {
	case !ok:
		d.reply(ctx, s, msgTagTooLong, nil)
		return Continue
	case tag == "":
		d.reply(ctx, s, msgTagEmpty, nil)
		return Continue
	}
	s.Draft.Tags = append(s.Draft.Tags, tag)
	d.reply(ctx, s, msgTagAccepted, nil)
	return Continue
}

func (d *Dialog) finishTags(ctx context.Context, s *session.Session) Outcome {
	summary := msgNoTags
	if len(s.Draft.Tags) > 0 {
		summary = msgTagsCollected + strings.Join(s.Draft.Tags, ", ")
	}
	d.reply(ctx, s, summary, nil)

	d.advance(ctx, s, StateAwaitingVisibility)
	d.reply(ctx, s, msgAskPublic, yesNo())
	return Continue
}

func (d *Dialog) decideVisibility(ctx context.Context, s *session.Session, in Input) Outcome {
	var public bool
	switch strings.TrimSpace(in.Text) {
	case TokenYes:
		public = true
		d.reply(ctx, s, msgPublic, chat.RemoveKeyboard())
	case TokenNo:
		d.reply(ctx, s, msgPrivate, chat.RemoveKeyboard())
	default:
		d.reply(ctx, s, msgChooseToken, yesNo())
		return Continue
	}
	s.Draft.Public = &public

	item := s.Draft.ToNewItem(s.UserID)
	s.ToIdle()

	if err := d.store.CreateItem(ctx, item); err != nil {
		logger.Error(ctx, component, "persist.failed",
			slog.Int64("user_id", s.UserID),
			slog.String("kind", string(item.Kind)),
			slog.String("err", err.Error()),
		)
		d.reply(ctx, s, msgUploadFailed, nil)
		return Done
	}

	logger.Info(ctx, component, "persist.ok",
		slog.Int64("user_id", s.UserID),
		slog.String("kind", string(item.Kind)),
		slog.Int("tags", len(item.Tags)),
		slog.Bool("public", item.Public),
	)
	d.reply(ctx, s, msgUploaded, nil)
	return Done
}

func (d *Dialog) cancel(ctx context.Context, s *session.Session, text string) Outcome {
	d.log(ctx, s, "cancel", slog.LevelInfo)
	s.ToIdle()
	d.reply(ctx, s, text, chat.RemoveKeyboard())
	return Cancelled
}

func (d *Dialog) advance(ctx context.Context, s *session.Session, next state.State) {
	prev := s.State
	s.State = next
	logger.Debug(ctx, component, "transition",
		slog.Int64("user_id", s.UserID),
		slog.String("state", string(next)),
		slog.String("from", string(prev)),
	)
}

// reply sends a prompt that is not tracked as part of any screen. Failures
// are logged; the dialog state has already moved on.
func (d *Dialog) reply(ctx context.Context, s *session.Session, text string, markup *chat.Markup) {
	if _, err := d.transport.SendText(ctx, s.ChatID, text, markup); err != nil {
		logger.Warn(ctx, component, "reply.failed",
			slog.Int64("user_id", s.UserID),
			slog.String("state", string(s.State)),
			slog.String("err", err.Error()),
		)
	}
}

func (d *Dialog) log(ctx context.Context, s *session.Session, event string, level slog.Level) {
	logger.Event(ctx, component, level, event,
		slog.Int64("user_id", s.UserID),
		slog.String("state", string(s.State)),
	)
}

func yesNo() *chat.Markup {
	return chat.ReplyKeyboard(TokenYes, TokenNo)
}
