package memory

import (
	"context"
	"sync"
	"time"

	"live-leaderboard-service/internal/domain"
)

// ChallengeStore keeps challenges in memory. Start holds the write lock for
// the whole deactivate-and-create step, so readers always observe exactly one
// active challenge after a successful Start.
type ChallengeStore struct {
	mu         sync.RWMutex
	challenges []domain.Challenge
	nextID     int64
	clock      func() time.Time
}

func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{nextID: 1, clock: time.Now}
}

// NewChallengeStoreWithClock is test-only for deterministic timestamps.
func NewChallengeStoreWithClock(now func() time.Time) *ChallengeStore {
	return &ChallengeStore{nextID: 1, clock: now}
}

func (s *ChallengeStore) Start(_ context.Context, name string) (domain.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	for i := range s.challenges {
		if s.challenges[i].Active {
			s.challenges[i].Active = false
			ended := now
			s.challenges[i].EndedAt = &ended
		}
	}

	challenge := domain.Challenge{
		ID:        s.nextID,
		Name:      name,
		Active:    true,
		StartedAt: now,
	}
	s.nextID++
	s.challenges = append(s.challenges, challenge)
	return challenge, nil
}

func (s *ChallengeStore) Active(_ context.Context) (domain.Challenge, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.challenges) - 1; i >= 0; i-- {
		if s.challenges[i].Active {
			return s.challenges[i], true, nil
		}
	}
	return domain.Challenge{}, false, nil
}

func (s *ChallengeStore) ByID(_ context.Context, id int64) (domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.challenges {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Challenge{}, domain.ErrChallengeNotFound
}

func (s *ChallengeStore) List(_ context.Context) ([]domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Challenge, 0, len(s.challenges))
	// most recent first
	for i := len(s.challenges) - 1; i >= 0; i-- {
		out = append(out, s.challenges[i])
	}
	return out, nil
}
