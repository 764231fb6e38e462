package favorites

import (
	"context"
	"errors"
	"fmt"

	"character-hub/internal/repository"
)

// ErrPersistFailed indicates the durable link write did not go through.
// The set is left untouched, so retrying is safe.
var ErrPersistFailed = errors.New("favorite persist failed")

// Service is the per-subject favorites cache. Membership is published to the
// set store only after the link repository has durably recorded it.
type Service struct {
	sets  SetStore
	links repository.FavoriteLinkRepository
}

func NewService(sets SetStore, links repository.FavoriteLinkRepository) *Service {
	return &Service{
		sets:  sets,
		links: links,
	}
}

// Add bookmarks a character for the subject. Adding an id that is already a
// member is a no-op.
func (s *Service) Add(ctx context.Context, subject string, characterID int64) error {
	member, err := s.sets.Contains(ctx, subject, characterID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if member {
		return nil
	}

	// persist before publish: the set must never hold an id the link
	// store does not
	if err := s.links.Insert(ctx, subject, characterID); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	if err := s.sets.Add(ctx, subject, characterID); err != nil {
		return fmt.Errorf("publish membership: %w", err)
	}
	return nil
}

// Contains reports whether the subject already bookmarked the character.
func (s *Service) Contains(ctx context.Context, subject string, characterID int64) (bool, error) {
	return s.sets.Contains(ctx, subject, characterID)
}

// Members enumerates the subject's bookmarked character ids.
func (s *Service) Members(ctx context.Context, subject string) ([]int64, error) {
	return s.sets.Members(ctx, subject)
}
