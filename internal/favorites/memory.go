package favorites

import (
	"context"
	"sync"
)

// MemoryStore is an in-process SetStore used when no redis address is
// configured, and by tests. Membership does not survive a restart.
type MemoryStore struct {
	mu     sync.Mutex
	sets   map[string]map[int64]struct{}
	quotas map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sets:   make(map[string]map[int64]struct{}),
		quotas: make(map[string]int),
	}
}

func (s *MemoryStore) Add(_ context.Context, subject string, characterID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[subject]
	if !ok {
		set = make(map[int64]struct{})
		s.sets[subject] = set
	}
	set[characterID] = struct{}{}
	return nil
}

func (s *MemoryStore) Contains(_ context.Context, subject string, characterID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sets[subject][characterID]
	return ok, nil
}

func (s *MemoryStore) Members(_ context.Context, subject string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.sets[subject]
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) SetGuestQuota(_ context.Context, subject string, remaining int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotas[subject] = remaining
	return nil
}

// GuestQuota reports the stored quota for a guest subject.
func (s *MemoryStore) GuestQuota(subject string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quota, ok := s.quotas[subject]
	return quota, ok
}

var _ SetStore = (*MemoryStore)(nil)
