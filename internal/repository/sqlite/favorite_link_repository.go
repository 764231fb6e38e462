package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"character-hub/internal/repository"
)

const createFavoriteLinksTable = `
CREATE TABLE IF NOT EXISTS favorite_links (
	subject TEXT NOT NULL,
	character_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE (subject, character_id),
	FOREIGN KEY (character_id) REFERENCES characters (id)
);
`

type FavoriteLinkRepository struct {
	db *sql.DB
}

func NewFavoriteLinkRepository(db *sql.DB) repository.FavoriteLinkRepository {
	return &FavoriteLinkRepository{db: db}
}

func (r *FavoriteLinkRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createFavoriteLinksTable); err != nil {
		return fmt.Errorf("create favorite links table: %w", err)
	}
	return nil
}

// Insert records the link durably. Re-inserting an existing link is a no-op
// so retries after a lost set write stay safe.
func (r *FavoriteLinkRepository) Insert(ctx context.Context, subject string, characterID int64) error {
	if _, err := r.db.ExecContext(ctx, `
INSERT OR IGNORE INTO favorite_links (subject, character_id, created_at)
VALUES (?, ?, ?)`,
		subject, characterID, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("insert favorite link: %w", err)
	}
	return nil
}
