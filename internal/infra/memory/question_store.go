package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"live-leaderboard-service/internal/domain"
)

// QuestionStore serves a static question bank from memory.
type QuestionStore struct {
	mu        sync.RWMutex
	questions map[int64]domain.Question
	rnd       *rand.Rand
}

func NewQuestionStore(questions []domain.Question) *QuestionStore {
	byID := make(map[int64]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	return &QuestionStore{
		questions: byID,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *QuestionStore) CorrectAnswer(_ context.Context, questionID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[questionID]
	if !ok {
		return "", domain.ErrQuestionNotFound
	}
	return q.CorrectAnswer, nil
}

func (s *QuestionStore) Random(_ context.Context, limit int) ([]domain.Question, error) {
	// Write lock: Shuffle mutates rnd's internal state.
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]domain.Question, 0, len(s.questions))
	for _, q := range s.questions {
		all = append(all, q)
	}
	s.rnd.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
