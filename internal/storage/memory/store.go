// Package memory is an in-process meme.Store used for tests and for running
// the bot without a database.
package memory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pixol20/MemeSender/internal/meme"
)

// ErrInjected is returned by operations listed in Store.Fail.
var ErrInjected = errors.New("memory: injected failure")

// Operation names accepted by Fail.
const (
	OpEnsureUser = "ensure_user"
	OpCreate     = "create"
	OpList       = "list"
	OpGet        = "get"
	OpDelete     = "delete"
	OpSearch     = "search"
)

// Store keeps items in a map guarded by a mutex.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]struct{}
	items  map[int64]meme.Item
	fail   map[string]error
	calls  map[string]int
	now    func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users: make(map[int64]struct{}),
		items: make(map[int64]meme.Item),
		fail:  make(map[string]error),
		calls: make(map[string]int),
		now:   time.Now,
	}
}

// Fail makes op return err until cleared with a nil err.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, op)
		return
	}
	s.fail[op] = err
}

// Calls reports how many times op was invoked.
func (s *Store) Calls(op string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[op]
}

// HasUser reports whether EnsureUser or CreateItem registered userID.
func (s *Store) HasUser(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[userID]
	return ok
}

// Seed inserts an item directly and returns its id.
func (s *Store) Seed(item meme.NewItem) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(item)
}

func (s *Store) EnsureUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpEnsureUser); err != nil {
		return err
	}
	s.users[userID] = struct{}{}
	return nil
}

func (s *Store) CreateItem(_ context.Context, item meme.NewItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpCreate); err != nil {
		return err
	}
	s.insert(item)
	return nil
}

func (s *Store) ListItemsByOwner(_ context.Context, ownerID int64) ([]meme.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpList); err != nil {
		return nil, err
	}
	var out []meme.Item
	for _, it := range s.items {
		if it.OwnerID == ownerID {
			out = append(out, clone(it))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *Store) GetItemIfOwned(_ context.Context, itemID, ownerID int64) (meme.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpGet); err != nil {
		return meme.Item{}, err
	}
	it, ok := s.items[itemID]
	if !ok || it.OwnerID != ownerID {
		return meme.Item{}, meme.ErrNotFound
	}
	return clone(it), nil
}

func (s *Store) DeleteItemIfOwned(_ context.Context, itemID, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpDelete); err != nil {
		return err
	}
	it, ok := s.items[itemID]
	if !ok || it.OwnerID != ownerID {
		return meme.ErrNotFound
	}
	delete(s.items, itemID)
	return nil
}

func (s *Store) SearchVisible(_ context.Context, query string, userID int64, limit int) ([]meme.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpSearch); err != nil {
		return nil, err
	}
	words := meme.QueryWords(query)
	if len(words) == 0 {
		return nil, nil
	}
	var out []meme.Item
	for _, it := range s.items {
		if !it.Public && it.OwnerID != userID {
			continue
		}
		if matches(it, words) {
			out = append(out, clone(it))
		}
	}
	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// enter counts the call and returns an injected failure. Callers hold mu.
func (s *Store) enter(op string) error {
	s.calls[op]++
	return s.fail[op]
}

func (s *Store) insert(item meme.NewItem) int64 {
	s.nextID++
	s.users[item.OwnerID] = struct{}{}
	s.items[s.nextID] = meme.Item{
		ID:        s.nextID,
		OwnerID:   item.OwnerID,
		MediaRef:  item.MediaRef,
		Kind:      item.Kind,
		Duration:  item.Duration,
		Title:     item.Title,
		Tags:      slices.Clone(item.Tags),
		Public:    item.Public,
		CreatedAt: s.now(),
	}
	return s.nextID
}

func matches(it meme.Item, words []string) bool {
	title := strings.ToLower(it.Title)
	for _, w := range words {
		if strings.Contains(title, w) {
			return true
		}
		for _, tag := range it.Tags {
			if strings.Contains(strings.ToLower(tag), w) {
				return true
			}
		}
	}
	return false
}

func sortNewestFirst(items []meme.Item) {
	slices.SortFunc(items, func(a, b meme.Item) int {
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
}

func clone(it meme.Item) meme.Item {
	it.Tags = slices.Clone(it.Tags)
	return it
}

var _ meme.Store = (*Store)(nil)
