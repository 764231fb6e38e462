package favorites

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const guestQuotaHash = "guest"

// RedisStore keeps favorite sets and guest quotas in redis.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func favoritesKey(subject string) string {
	return "favorites:" + subject
}

func (s *RedisStore) Add(ctx context.Context, subject string, characterID int64) error {
	if err := s.client.SAdd(ctx, favoritesKey(subject), characterID).Err(); err != nil {
		return fmt.Errorf("sadd favorite: %w", err)
	}
	return nil
}

func (s *RedisStore) Contains(ctx context.Context, subject string, characterID int64) (bool, error) {
	member, err := s.client.SIsMember(ctx, favoritesKey(subject), characterID).Result()
	if err != nil {
		return false, fmt.Errorf("sismember favorite: %w", err)
	}
	return member, nil
}

func (s *RedisStore) Members(ctx context.Context, subject string) ([]int64, error) {
	raw, err := s.client.SMembers(ctx, favoritesKey(subject)).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers favorites: %w", err)
	}

	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse favorite member %q: %w", v, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *RedisStore) SetGuestQuota(ctx context.Context, subject string, remaining int) error {
	if err := s.client.HSet(ctx, guestQuotaHash, subject, remaining).Err(); err != nil {
		return fmt.Errorf("hset guest quota: %w", err)
	}
	return nil
}

var _ SetStore = (*RedisStore)(nil)
