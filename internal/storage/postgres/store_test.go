package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/pixol20/MemeSender/internal/meme"
)

func TestLikePatternsEscapeWildcards(t *testing.T) {
	got := likePatterns([]string{"cat", "", "100%", "snake_case", `back\slash`})
	want := []string{"%cat%", `%100\%%`, `%snake\_case%`, `%back\\slash%`}
	if len(got) != len(want) {
		t.Fatalf("patterns = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pattern %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRowItemNeverNilTags(t *testing.T) {
	it := row{Item: meme.Item{ID: 1}}.item()
	if it.Tags == nil || len(it.Tags) != 0 {
		t.Fatalf("tags = %#v", it.Tags)
	}
}

// openTestDB connects to MEMESENDER_TEST_DSN. The schema must already be
// migrated; the test skips when the variable is unset.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("MEMESENDER_TEST_DSN")
	if dsn == "" {
		t.Skip("MEMESENDER_TEST_DSN not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(`TRUNCATE memes, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

func TestStoreRoundTrip(t *testing.T) {
	s := New(openTestDB(t))
	ctx := context.Background()

	if err := s.EnsureUser(ctx, 1); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := s.EnsureUser(ctx, 1); err != nil {
		t.Fatalf("ensure twice: %v", err)
	}
	for _, it := range []meme.NewItem{
		{OwnerID: 1, MediaRef: "a", Kind: meme.KindPhoto, Title: "Funny Cat", Tags: []string{"animals"}},
		{OwnerID: 1, MediaRef: "b", Kind: meme.KindVideo, Duration: 7, Title: "dog", Public: true},
		{OwnerID: 2, MediaRef: "c", Kind: meme.KindGIF, Title: "secret cat"},
	} {
		if err := s.CreateItem(ctx, it); err != nil {
			t.Fatalf("create %q: %v", it.Title, err)
		}
	}

	own, err := s.ListItemsByOwner(ctx, 1)
	if err != nil || len(own) != 2 || own[0].Title != "dog" || own[0].Duration != 7 {
		t.Fatalf("list = %+v, %v", own, err)
	}

	if _, err := s.GetItemIfOwned(ctx, own[0].ID, 2); !errors.Is(err, meme.ErrNotFound) {
		t.Fatalf("foreign get err = %v", err)
	}
	if err := s.DeleteItemIfOwned(ctx, own[0].ID, 2); !errors.Is(err, meme.ErrNotFound) {
		t.Fatalf("foreign delete err = %v", err)
	}

	found, err := s.SearchVisible(ctx, "CAT", 1, 10)
	if err != nil || len(found) != 1 || found[0].MediaRef != "a" {
		t.Fatalf("search = %+v, %v", found, err)
	}
	found, err = s.SearchVisible(ctx, "animals", 1, 10)
	if err != nil || len(found) != 1 || found[0].Tags[0] != "animals" {
		t.Fatalf("tag search = %+v, %v", found, err)
	}

	if err := s.DeleteItemIfOwned(ctx, own[1].ID, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
