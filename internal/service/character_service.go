package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"character-hub/internal/domain"
	"character-hub/internal/favorites"
	"character-hub/internal/repository"
	"character-hub/internal/storage"
)

var (
	// ErrKeywordRequired indicates a catalog search without a keyword.
	ErrKeywordRequired = errors.New("keyword is empty")
	// ErrCharacterNotFound indicates a lookup for an unknown character id.
	ErrCharacterNotFound = errors.New("no character")
)

// ArtOptions configures presigned URL generation for character art keys.
type ArtOptions struct {
	Bucket string
	URLTTL time.Duration
}

// CharacterService exposes catalog reads and identity-keyed favorites.
type CharacterService interface {
	Search(ctx context.Context, keyword string, page, size int) (int, []domain.Character, error)
	GetBackground(ctx context.Context, id int64) (string, error)
	SaveFavorite(ctx context.Context, subject string, characterID int64) error
	ListFavorites(ctx context.Context, subject string) ([]domain.Character, error)
}

type characterService struct {
	characters repository.CharacterRepository
	favorites  *favorites.Service
	store      storage.Service
	art        ArtOptions
	logger     *logrus.Logger
}

func NewCharacterService(characters repository.CharacterRepository, favs *favorites.Service, store storage.Service, art ArtOptions, logger *logrus.Logger) CharacterService {
	return &characterService{
		characters: characters,
		favorites:  favs,
		store:      store,
		art:        art,
		logger:     logger,
	}
}

// Search pages through catalog entries whose name matches the keyword.
func (s *characterService) Search(ctx context.Context, keyword string, page, size int) (int, []domain.Character, error) {
	if strings.TrimSpace(keyword) == "" {
		return 0, nil, ErrKeywordRequired
	}
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}

	total, characters, err := s.characters.Search(ctx, keyword, size, (page-1)*size)
	if err != nil {
		return 0, nil, err
	}

	for i := range characters {
		s.resolveArt(ctx, &characters[i])
	}
	return total, characters, nil
}

// GetBackground returns the character's background story.
func (s *characterService) GetBackground(ctx context.Context, id int64) (string, error) {
	character, err := s.characters.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrCharacterNotFound
		}
		return "", err
	}
	return character.Background, nil
}

// SaveFavorite bookmarks the character for the subject attached by the
// request gate.
func (s *characterService) SaveFavorite(ctx context.Context, subject string, characterID int64) error {
	if _, err := s.characters.GetByID(ctx, characterID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCharacterNotFound
		}
		return err
	}
	return s.favorites.Add(ctx, subject, characterID)
}

// ListFavorites resolves the subject's bookmarked ids to full characters.
// A failed lookup for one member is logged and skipped; it never aborts the
// rest of the enumeration.
func (s *characterService) ListFavorites(ctx context.Context, subject string) ([]domain.Character, error) {
	members, err := s.favorites.Members(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("list favorite members: %w", err)
	}

	characters := make([]domain.Character, 0, len(members))
	for _, id := range members {
		character, err := s.characters.GetByID(ctx, id)
		if err != nil {
			s.logger.WithError(err).Warnf("skip favorite %d for %s", id, subject)
			continue
		}
		s.resolveArt(ctx, character)
		characters = append(characters, *character)
	}
	return characters, nil
}

// resolveArt swaps object storage keys for presigned URLs. Values that are
// already URLs, or any presign failure, pass the raw value through.
func (s *characterService) resolveArt(ctx context.Context, character *domain.Character) {
	if s.store == nil || s.art.Bucket == "" {
		return
	}
	character.Avatar = s.presign(ctx, character.Avatar)
	character.Background = s.presign(ctx, character.Background)
}

func (s *characterService) presign(ctx context.Context, value string) string {
	if value == "" || strings.Contains(value, "://") {
		return value
	}
	url, err := s.store.ObjectURL(ctx, s.art.Bucket, value, s.art.URLTTL)
	if err != nil {
		s.logger.WithError(err).Debugf("presign art key %s", value)
		return value
	}
	return url
}
