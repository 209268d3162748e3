// Package postgres implements meme.Store on PostgreSQL through sqlx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pixol20/MemeSender/core/logger"
	"github.com/pixol20/MemeSender/internal/meme"
)

const component = "store"

const itemColumns = `id, creator_telegram_id, telegram_media_id, media_type, duration, title, tags, is_public, created_at`

// Store persists users and memes. It is safe for concurrent use.
type Store struct {
	db *sqlx.DB
}

// New wraps an open connection pool.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// row mirrors a memes row; tags need pq's array scanner.
type row struct {
	meme.Item
	Tags pq.StringArray `db:"tags"`
}

func (r row) item() meme.Item {
	it := r.Item
	it.Tags = []string(r.Tags)
	if it.Tags == nil {
		it.Tags = []string{}
	}
	return it
}

func (s *Store) EnsureUser(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (telegram_id) VALUES ($1) ON CONFLICT (telegram_id) DO NOTHING`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// CreateItem registers the owner if needed and inserts the item in one
// transaction.
func (s *Store) CreateItem(ctx context.Context, item meme.NewItem) (err error) {
	if !item.Kind.Valid() {
		return fmt.Errorf("create item: invalid media kind %q", item.Kind)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create item: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO users (telegram_id) VALUES ($1)
		 ON CONFLICT (telegram_id) DO UPDATE SET last_upload_date = NOW()`,
		item.OwnerID,
	); err != nil {
		return fmt.Errorf("create item: upsert user: %w", err)
	}

	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO memes (creator_telegram_id, telegram_media_id, media_type, duration, title, tags, is_public)
		 VALUES ($1, $2, $3::media_type, $4, $5, $6, $7)`,
		item.OwnerID, item.MediaRef, string(item.Kind), item.Duration, item.Title, pq.Array(tags), item.Public,
	); err != nil {
		return fmt.Errorf("create item: insert: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("create item: commit: %w", err)
	}
	return nil
}

func (s *Store) ListItemsByOwner(ctx context.Context, ownerID int64) ([]meme.Item, error) {
	var rows []row
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+itemColumns+` FROM memes WHERE creator_telegram_id = $1 ORDER BY id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items(rows), nil
}

func (s *Store) GetItemIfOwned(ctx context.Context, itemID, ownerID int64) (meme.Item, error) {
	var r row
	err := s.db.GetContext(ctx, &r,
		`SELECT `+itemColumns+` FROM memes WHERE id = $1 AND creator_telegram_id = $2`,
		itemID, ownerID,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return meme.Item{}, meme.ErrNotFound
	case err != nil:
		return meme.Item{}, fmt.Errorf("get item: %w", err)
	}
	return r.item(), nil
}

func (s *Store) DeleteItemIfOwned(ctx context.Context, itemID, ownerID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM memes WHERE id = $1 AND creator_telegram_id = $2`,
		itemID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if n == 0 {
		return meme.ErrNotFound
	}
	return nil
}

// searchQuery matches any word against the title or any tag. Words are
// bound as one array parameter and escaped for LIKE.
const searchQuery = `SELECT ` + itemColumns + `
FROM memes m
WHERE (m.is_public OR m.creator_telegram_id = $1)
  AND EXISTS (
    SELECT 1 FROM unnest($2::text[]) AS w(pattern)
    WHERE m.title ILIKE w.pattern
       OR EXISTS (SELECT 1 FROM unnest(m.tags) AS t(tag) WHERE t.tag ILIKE w.pattern)
  )
ORDER BY m.id DESC
LIMIT $3`

func (s *Store) SearchVisible(ctx context.Context, query string, userID int64, limit int) ([]meme.Item, error) {
	patterns := likePatterns(meme.QueryWords(query))
	if len(patterns) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	start := time.Now()
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, searchQuery, userID, pq.Array(patterns), limit); err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	logger.Debug(ctx, component, "search",
		slog.Int64("user_id", userID),
		slog.Int("words", len(patterns)),
		slog.Int("results", len(rows)),
		slog.Duration("duration", logger.Took(start)),
	)
	return items(rows), nil
}

func items(rows []row) []meme.Item {
	out := make([]meme.Item, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.item())
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePatterns turns words into %word% patterns with LIKE wildcards escaped.
func likePatterns(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		out = append(out, "%"+likeEscaper.Replace(w)+"%")
	}
	return out
}

var _ meme.Store = (*Store)(nil)
