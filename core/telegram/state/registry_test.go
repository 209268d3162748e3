package state

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type counter struct {
	userID int64
	n      int
}

func newTestRegistry(t *testing.T) *Registry[counter] {
	t.Helper()
	reg, err := NewRegistry(Options{Capacity: 128, IdleTTL: time.Hour}, func(id int64) *counter {
		return &counter{userID: id}
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	t.Cleanup(reg.Close)
	return reg
}

func TestRegistryReturnsSameSession(t *testing.T) {
	reg := newTestRegistry(t)

	a, release := reg.Acquire(7)
	a.n = 3
	release()

	b, release := reg.Acquire(7)
	defer release()
	if a != b {
		t.Fatal("expected the same session for repeated acquire")
	}
	if b.n != 3 || b.userID != 7 {
		t.Fatalf("unexpected session %+v", b)
	}
}

func TestRegistrySerializesOneUser(t *testing.T) {
	reg := newTestRegistry(t)

	var (
		inside  atomic.Int32
		overlap atomic.Bool
		wg      sync.WaitGroup
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Do(1, func(c *counter) {
				if inside.Add(1) > 1 {
					overlap.Store(true)
				}
				n := c.n
				time.Sleep(time.Millisecond)
				c.n = n + 1
				inside.Add(-1)
			})
		}()
	}
	wg.Wait()

	if overlap.Load() {
		t.Fatal("two handlers of the same user ran concurrently")
	}
	reg.Do(1, func(c *counter) {
		if c.n != 32 {
			t.Fatalf("lost updates: n = %d, want 32", c.n)
		}
	})
}

func TestRegistryUsersRunInParallel(t *testing.T) {
	reg := newTestRegistry(t)

	_, releaseA := reg.Acquire(1)
	defer releaseA()

	done := make(chan struct{})
	go func() {
		reg.Do(2, func(*counter) {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("user 2 blocked by user 1")
	}
}

func TestRegistryReleaseIsIdempotent(t *testing.T) {
	reg := newTestRegistry(t)

	_, release := reg.Acquire(5)
	release()
	release()

	done := make(chan struct{})
	go func() {
		_, r := reg.Acquire(5)
		r()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("double release corrupted the lock")
	}
}

func TestRegistryEvictCallback(t *testing.T) {
	reg := newTestRegistry(t)
	var got []int64
	reg.OnEvict(func(id int64, c *counter) { got = append(got, c.userID) })

	gone := &entry[counter]{session: &counter{userID: 3}}
	reg.expire(3, gone)

	_, release := reg.Acquire(4)
	reg.mu.Lock()
	held := reg.pinned[4]
	reg.mu.Unlock()
	reg.expire(4, held)
	release()

	// Still cached after release, so not stale either.
	reg.expire(4, held)

	if len(got) != 1 || got[0] != 3 {
		t.Fatalf("evicted = %v, want [3]", got)
	}
}

func TestRegistryRejectsNilConstructor(t *testing.T) {
	if _, err := NewRegistry[counter](Options{}, nil); err == nil {
		t.Fatal("expected error for nil constructor")
	}
}

func TestStateGroup(t *testing.T) {
	cases := map[State]string{
		StateIdle:               "idle",
		"upload.awaiting_media": "upload",
		"menu.list":             "menu",
	}
	for st, want := range cases {
		if got := st.Group(); got != want {
			t.Errorf("%q.Group() = %q, want %q", st, got, want)
		}
	}
}
