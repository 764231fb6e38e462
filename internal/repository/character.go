package repository

import (
	"context"

	"character-hub/internal/domain"
)

// CharacterRepository defines read access to the character catalog.
type CharacterRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, character *domain.Character) (int64, error)
	Search(ctx context.Context, keyword string, limit, offset int) (int, []domain.Character, error)
	GetByID(ctx context.Context, id int64) (*domain.Character, error)
}

// FavoriteLinkRepository durably records which subjects bookmarked which
// characters. The favorites set store publishes membership only after a
// link insert succeeds.
type FavoriteLinkRepository interface {
	Init(ctx context.Context) error
	Insert(ctx context.Context, subject string, characterID int64) error
}
