package ban

import (
	"context"
	"sync"
	"time"
)

type strikeCount struct {
	count   int
	expires time.Time
}

// MemoryStore keeps strikes and bans in process. It is used when Redis is
// not configured.
type MemoryStore struct {
	mu      sync.Mutex
	strikes map[string]strikeCount
	bans    map[string]time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		strikes: map[string]strikeCount{},
		bans:    map[string]time.Time{},
		now:     time.Now,
	}
}

func (s *MemoryStore) Strike(_ context.Context, target string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c := s.strikes[target]
	if c.count == 0 || !now.Before(c.expires) {
		c = strikeCount{expires: now.Add(window)}
	}
	c.count++
	s.strikes[target] = c
	return c.count, nil
}

func (s *MemoryStore) Ban(_ context.Context, target, _ string, _ int, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bans[target] = s.now().Add(d)
	delete(s.strikes, target)
	return nil
}

func (s *MemoryStore) IsBanned(_ context.Context, target string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.bans[target]
	if !ok {
		return false, nil
	}
	if !s.now().Before(until) {
		delete(s.bans, target)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Reset(_ context.Context, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.strikes, target)
	return nil
}
