package memory

import (
	"context"
	"sync"

	"live-leaderboard-service/internal/domain"
)

// GameStore keeps mini-game answers and session summaries in memory.
type GameStore struct {
	mu            sync.Mutex
	answers       []domain.GameAnswer
	sessions      []domain.GameSession
	nextSessionID int64
}

func NewGameStore() *GameStore {
	return &GameStore{nextSessionID: 1}
}

func (s *GameStore) SaveSession(_ context.Context, answers []domain.GameAnswer, session domain.GameSession) (domain.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = append(s.answers, answers...)
	session.ID = s.nextSessionID
	s.nextSessionID++
	s.sessions = append(s.sessions, session)
	return session, nil
}

func (s *GameStore) PlayerStats(_ context.Context, participantID int64, gameType *domain.GameType) (domain.GameStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats domain.GameStats
	for _, a := range s.answers {
		if a.ParticipantID != participantID {
			continue
		}
		if gameType != nil && a.GameType != *gameType {
			continue
		}
		stats.TotalAnswers++
		if a.Correct {
			stats.TotalCorrect++
		}
	}
	for _, sess := range s.sessions {
		if sess.ParticipantID != participantID {
			continue
		}
		if gameType != nil && sess.GameType != *gameType {
			continue
		}
		stats.TotalGames++
	}
	return stats, nil
}
