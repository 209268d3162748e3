package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/pixol20/MemeSender/internal/meme"
)

func seed(s *Store, owner int64, title string, public bool, tags ...string) int64 {
	return s.Seed(meme.NewItem{
		OwnerID:  owner,
		MediaRef: "file-" + title,
		Kind:     meme.KindPhoto,
		Title:    title,
		Tags:     tags,
		Public:   public,
	})
}

func TestListNewestFirstAndOwnerScoped(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := seed(s, 1, "a", false)
	seed(s, 2, "other", true)
	b := seed(s, 1, "b", false)

	items, err := s.ListItemsByOwner(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].ID != b || items[1].ID != a {
		t.Fatalf("unexpected list %+v", items)
	}
}

func TestOwnershipEnforced(t *testing.T) {
	s := New()
	ctx := context.Background()
	id := seed(s, 1, "mine", true)

	if _, err := s.GetItemIfOwned(ctx, id, 2); !errors.Is(err, meme.ErrNotFound) {
		t.Fatalf("get by stranger: %v", err)
	}
	if err := s.DeleteItemIfOwned(ctx, id, 2); !errors.Is(err, meme.ErrNotFound) {
		t.Fatalf("delete by stranger: %v", err)
	}
	if err := s.DeleteItemIfOwned(ctx, id, 1); err != nil {
		t.Fatalf("delete by owner: %v", err)
	}
	if _, err := s.GetItemIfOwned(ctx, id, 1); !errors.Is(err, meme.ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
}

func TestSearchHonoursVisibility(t *testing.T) {
	s := New()
	ctx := context.Background()
	pub := seed(s, 1, "Funny Cat", true)
	priv := seed(s, 1, "secret", false, "cat")
	seed(s, 1, "dog", true)

	got, err := s.SearchVisible(ctx, "CAT", 2, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != pub {
		t.Fatalf("stranger sees %+v", got)
	}

	got, _ = s.SearchVisible(ctx, "cat", 1, 20)
	if len(got) != 2 || got[0].ID != priv {
		t.Fatalf("owner sees %+v", got)
	}

	if got, _ := s.SearchVisible(ctx, "   ", 1, 20); len(got) != 0 {
		t.Fatalf("blank query matched %+v", got)
	}
}

func TestFailureInjection(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Fail(OpCreate, ErrInjected)

	if err := s.CreateItem(ctx, meme.NewItem{OwnerID: 1}); !errors.Is(err, ErrInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if s.Calls(OpCreate) != 1 {
		t.Fatalf("calls = %d", s.Calls(OpCreate))
	}

	s.Fail(OpCreate, nil)
	if err := s.CreateItem(ctx, meme.NewItem{OwnerID: 1}); err != nil {
		t.Fatal(err)
	}
	if !s.HasUser(1) {
		t.Fatal("create must register the owner")
	}
}

func TestReturnedTagsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	id := seed(s, 1, "t", false, "x")

	it, _ := s.GetItemIfOwned(ctx, id, 1)
	it.Tags[0] = "mutated"

	again, _ := s.GetItemIfOwned(ctx, id, 1)
	if again.Tags[0] != "x" {
		t.Fatal("store leaked internal slice")
	}
}
