// Package menu implements the inline-button browser over a user's own items:
// a paginated list, an item card with its media, and a delete confirmation.
package menu

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pixol20/MemeSender/core/logger"
	"github.com/pixol20/MemeSender/core/telegram/state"
	"github.com/pixol20/MemeSender/internal/callback"
	"github.com/pixol20/MemeSender/internal/chat"
	"github.com/pixol20/MemeSender/internal/meme"
	"github.com/pixol20/MemeSender/internal/pagination"
	"github.com/pixol20/MemeSender/internal/session"
)

const component = "fsm.menu"

const (
	StateList          state.State = "menu.list"
	StateItem          state.State = "menu.item"
	StateConfirmDelete state.State = "menu.confirm_delete"
	StateDeleted       state.State = "menu.deleted"
)

type action func(n *Navigator, ctx context.Context, s *session.Session, a callback.Action) bool

// routes is the callback router: a pure lookup of (state, kind). Anything
// missing here is acknowledged and dropped by Handle.
var routes = map[state.State]map[callback.Kind]action{
	StateList: {
		callback.KindPage: (*Navigator).showPage,
		callback.KindItem: (*Navigator).selectItem,
	},
	StateItem: {
		callback.KindDelete: (*Navigator).askDelete,
		callback.KindBack:   (*Navigator).backToList,
	},
	StateConfirmDelete: {
		callback.KindConfirmDelete: (*Navigator).confirmDelete,
		callback.KindItem:          (*Navigator).selectItem,
		callback.KindBack:          (*Navigator).backToList,
	},
	StateDeleted: {
		callback.KindBack: (*Navigator).backToList,
	},
}

// Navigator drives menus for all sessions. Callers must hold the session lock.
type Navigator struct {
	store    meme.Store
	pageSize int
}

// New returns a navigator over store with the default page size.
func New(store meme.Store) *Navigator {
	return &Navigator{store: store, pageSize: pagination.DefaultSize}
}

// Open destroys any menu already on screen and shows the first list page.
func (n *Navigator) Open(ctx context.Context, s *session.Session) {
	s.Messages.Destroy(ctx)
	s.ToIdle()
	s.State = StateList
	logger.Info(ctx, component, "open", slog.Int64("user_id", s.UserID))
	n.renderList(ctx, s, 0)
}

// Close removes the menu messages and returns the session to idle.
func (n *Navigator) Close(ctx context.Context, s *session.Session) {
	s.Messages.Destroy(ctx)
	if s.Browsing() {
		s.ToIdle()
	}
	logger.Info(ctx, component, "close", slog.Int64("user_id", s.UserID))
}

// Handle applies raw callback data to the session. It reports whether a
// transition ran; false means the callback was unknown, malformed, not valid
// in the current state, or referred to an item the user does not own.
func (n *Navigator) Handle(ctx context.Context, s *session.Session, data string) bool {
	a := callback.Decode(data)
	act, ok := routes[s.State][a.Kind]
	if !ok {
		logger.Debug(ctx, component, "callback.dropped",
			slog.Int64("user_id", s.UserID),
			slog.String("state", string(s.State)),
			slog.String("kind", a.Kind.String()),
			slog.String("data", data),
		)
		return false
	}
	return act(n, ctx, s, a)
}

func (n *Navigator) showPage(ctx context.Context, s *session.Session, a callback.Action) bool {
	n.renderList(ctx, s, clampInt(a.Arg))
	return true
}

func (n *Navigator) selectItem(ctx context.Context, s *session.Session, a callback.Action) bool {
	item, ok := n.lookup(ctx, s, a.Arg)
	if !ok {
		return false
	}
	// Coming back from the confirmation keeps the media already on screen.
	if item.ID != s.SelectedItemID || s.Messages.Media().IsZero() {
		if err := s.Messages.ShowMedia(ctx, s.ChatID, chat.MediaOf(item), nil); err != nil {
			n.warn(ctx, s, "media.failed", err)
		}
	}
	text, markup := itemView(item)
	n.render(ctx, s, text, markup)
	s.SelectedItemID = item.ID
	n.advance(ctx, s, StateItem, item.ID)
	return true
}

func (n *Navigator) askDelete(ctx context.Context, s *session.Session, a callback.Action) bool {
	item, ok := n.lookup(ctx, s, a.Arg)
	if !ok {
		return false
	}
	text, markup := confirmView(item)
	n.render(ctx, s, text, markup)
	s.SelectedItemID = item.ID
	n.advance(ctx, s, StateConfirmDelete, item.ID)
	return true
}

func (n *Navigator) confirmDelete(ctx context.Context, s *session.Session, a callback.Action) bool {
	if a.Arg != s.SelectedItemID {
		logger.Debug(ctx, component, "delete.mismatch",
			slog.Int64("user_id", s.UserID),
			slog.Int64("item_id", a.Arg),
			slog.Int64("selected", s.SelectedItemID),
		)
		return false
	}

	if err := n.store.DeleteItemIfOwned(ctx, a.Arg, s.UserID); err != nil {
		n.warn(ctx, s, "delete.failed", err, slog.Int64("item_id", a.Arg))
		n.render(ctx, s, msgDeleteFailed, backOnly())
	} else {
		s.Messages.ClearMedia(ctx)
		n.render(ctx, s, msgDeleted, backOnly())
		logger.Info(ctx, component, "delete.ok",
			slog.Int64("user_id", s.UserID),
			slog.Int64("item_id", a.Arg),
		)
	}
	s.SelectedItemID = 0
	n.advance(ctx, s, StateDeleted, a.Arg)
	return true
}

func (n *Navigator) backToList(ctx context.Context, s *session.Session, _ callback.Action) bool {
	s.Messages.ClearMedia(ctx)
	s.SelectedItemID = 0
	n.renderList(ctx, s, s.LastListPage)
	return true
}

// renderList loads the owner's items and shows page p clamped into range.
func (n *Navigator) renderList(ctx context.Context, s *session.Session, p int) {
	items, err := n.store.ListItemsByOwner(ctx, s.UserID)
	if err != nil {
		n.warn(ctx, s, "list.failed", err)
		n.render(ctx, s, msgListFailed, nil)
		s.State = StateList
		return
	}

	p = pagination.Clamp(p, len(items), n.pageSize)
	page := pagination.Paginate(items, p, n.pageSize)
	text, markup := listView(page)
	n.render(ctx, s, text, markup)

	s.LastListPage = p
	n.advance(ctx, s, StateList, 0, slog.Int("page", p))
}

// lookup fetches an item of the session's user. Not found is a silent no-op
// for the caller; other failures are logged as well.
func (n *Navigator) lookup(ctx context.Context, s *session.Session, id int64) (meme.Item, bool) {
	item, err := n.store.GetItemIfOwned(ctx, id, s.UserID)
	switch {
	case err == nil:
		return item, true
	case errors.Is(err, meme.ErrNotFound):
		logger.Debug(ctx, component, "item.not_found",
			slog.Int64("user_id", s.UserID),
			slog.Int64("item_id", id),
		)
	default:
		n.warn(ctx, s, "lookup.failed", err, slog.Int64("item_id", id))
	}
	return meme.Item{}, false
}

func (n *Navigator) render(ctx context.Context, s *session.Session, text string, markup *chat.Markup) {
	if err := s.Messages.Render(ctx, s.ChatID, text, markup); err != nil {
		n.warn(ctx, s, "render.failed", err)
	}
}

func (n *Navigator) advance(ctx context.Context, s *session.Session, next state.State, itemID int64, extra ...slog.Attr) {
	s.State = next
	attrs := []slog.Attr{
		slog.Int64("user_id", s.UserID),
		slog.String("state", string(next)),
	}
	if itemID != 0 {
		attrs = append(attrs, slog.Int64("item_id", itemID))
	}
	logger.Debug(ctx, component, "transition", append(attrs, extra...)...)
}

func (n *Navigator) warn(ctx context.Context, s *session.Session, event string, err error, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.Int64("user_id", s.UserID),
		slog.String("state", string(s.State)),
		slog.String("err", err.Error()),
	}
	logger.Warn(ctx, component, event, append(attrs, extra...)...)
}

// clampInt narrows a decoded page argument; pagination clamps the rest.
func clampInt(v int64) int {
	const maxPage = 1 << 30
	switch {
	case v < 0:
		return 0
	case v > maxPage:
		return maxPage
	}
	return int(v)
}
