package state

import (
	"fmt"
	"sync"

	"github.com/maypok86/otter"
)

type entry[S any] struct {
	mu      sync.Mutex
	session *S
	// holders counts goroutines inside or waiting for mu. Guarded by Registry.mu.
	holders int
}

// Registry maps user ids to sessions of type S.
//
// Idle sessions are evicted by the underlying otter cache. Entries that are
// currently held are additionally pinned in a side map, so eviction of a busy
// session never lets two goroutines of the same user run concurrently.
type Registry[S any] struct {
	mu     sync.Mutex
	cache  otter.Cache[int64, *entry[S]]
	pinned map[int64]*entry[S]
	create func(userID int64) *S
	// onEvict is guarded by mu.
	onEvict func(userID int64, s *S)
}

// NewRegistry builds a registry that creates sessions with create on first
// access.
func NewRegistry[S any](opts Options, create func(userID int64) *S) (*Registry[S], error) {
	if create == nil {
		return nil, fmt.Errorf("state: session constructor is nil")
	}
	opts = opts.normalize()

	r := &Registry[S]{
		pinned: make(map[int64]*entry[S]),
		create: create,
	}
	var (
		cache otter.Cache[int64, *entry[S]]
		err   error
	)
	builder := otter.MustBuilder[int64, *entry[S]](opts.Capacity).DeletionListener(r.evicted)
	if opts.IdleTTL > 0 {
		cache, err = builder.WithTTL(opts.IdleTTL).Build()
	} else {
		cache, err = builder.Build()
	}
	if err != nil {
		return nil, fmt.Errorf("state: build session cache with capacity %d: %w", opts.Capacity, err)
	}

	r.cache = cache
	return r, nil
}

// OnEvict sets fn to run with the session locked after the cache drops an
// idle session for expiry or capacity. Sessions that are held, or that were
// picked up again before the callback ran, are skipped.
func (r *Registry[S]) OnEvict(fn func(userID int64, s *S)) {
	r.mu.Lock()
	r.onEvict = fn
	r.mu.Unlock()
}

func (r *Registry[S]) evicted(userID int64, e *entry[S], cause otter.DeletionCause) {
	if cause != otter.Expired && cause != otter.Size {
		return
	}
	// The listener may run inside a cache call made under r.mu.
	go r.expire(userID, e)
}

func (r *Registry[S]) expire(userID int64, e *entry[S]) {
	r.mu.Lock()
	fn := r.onEvict
	live := r.pinned[userID] == e
	if !live {
		cur, ok := r.cache.Get(userID)
		live = ok && cur == e
	}
	r.mu.Unlock()
	if fn == nil || live {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(userID, e.session)
}

// Acquire returns the session of userID with its lock held. The caller must
// invoke release exactly once when done; until then other Acquire calls for
// the same user block.
func (r *Registry[S]) Acquire(userID int64) (session *S, release func()) {
	e := r.pin(userID)
	e.mu.Lock()

	var once sync.Once
	return e.session, func() {
		once.Do(func() {
			e.mu.Unlock()
			r.unpin(userID, e)
		})
	}
}

// Do runs fn with the session of userID locked.
func (r *Registry[S]) Do(userID int64, fn func(*S)) {
	s, release := r.Acquire(userID)
	defer release()
	fn(s)
}

// Size reports the number of live sessions.
func (r *Registry[S]) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.cache.Size()
	for id := range r.pinned {
		if _, ok := r.cache.Get(id); !ok {
			n++
		}
	}
	return n
}

// Close stops the cache background workers.
func (r *Registry[S]) Close() {
	r.cache.Close()
}

func (r *Registry[S]) pin(userID int64) *entry[S] {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.pinned[userID]
	if !ok {
		e, ok = r.cache.Get(userID)
	}
	if !ok {
		e = &entry[S]{session: r.create(userID)}
	}
	e.holders++
	r.pinned[userID] = e
	// Set refreshes the idle TTL.
	r.cache.Set(userID, e)
	return e
}

func (r *Registry[S]) unpin(userID int64, e *entry[S]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.holders--
	if e.holders == 0 && r.pinned[userID] == e {
		delete(r.pinned, userID)
	}
}
