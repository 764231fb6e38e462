package favorites

import "context"

// SetStore is the key-value/set backend holding per-subject favorite
// membership and guest quota counters. Implementations must make the
// individual operations atomic.
type SetStore interface {
	Add(ctx context.Context, subject string, characterID int64) error
	Contains(ctx context.Context, subject string, characterID int64) (bool, error)
	Members(ctx context.Context, subject string) ([]int64, error)
	SetGuestQuota(ctx context.Context, subject string, remaining int) error
}
