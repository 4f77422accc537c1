package memory

import (
	"context"
	"sort"
	"sync"

	"live-leaderboard-service/internal/domain"
)

// StatStore holds AnswerStat rows as an append-only slice and derives every
// aggregate on read, the same way the SQL store does with GROUP BY.
type StatStore struct {
	mu        sync.RWMutex
	rows      []domain.AnswerStat
	directory *ParticipantDirectory
}

func NewStatStore(directory *ParticipantDirectory) *StatStore {
	return &StatStore{directory: directory}
}

func (s *StatStore) Append(_ context.Context, stat domain.AnswerStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, stat)
	return nil
}

// Len reports the number of stored rows (test helper).
func (s *StatStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func (s *StatStore) ChallengeStats(_ context.Context, challengeID int64) ([]domain.ParticipantStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aggregate(func(r domain.AnswerStat) bool {
		return r.ChallengeID != nil && *r.ChallengeID == challengeID
	}), nil
}

func (s *StatStore) ParticipantStats(_ context.Context, ids []int64) ([]domain.ParticipantStats, error) {
	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aggregate(func(r domain.AnswerStat) bool {
		_, ok := wanted[r.ParticipantID]
		return ok
	}), nil
}

func (s *StatStore) ParticipantChallengeStats(_ context.Context, participantID, challengeID int64) (domain.ParticipantStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := s.aggregate(func(r domain.AnswerStat) bool {
		return r.ParticipantID == participantID && r.ChallengeID != nil && *r.ChallengeID == challengeID
	})
	if len(stats) == 0 {
		p, _ := s.directory.ByID(participantID)
		return domain.ParticipantStats{ParticipantID: participantID, Code: p.Code, Name: p.Name}, nil
	}
	return stats[0], nil
}

// aggregate folds matching rows into per-participant stats, ordered by
// ascending participant id for deterministic ranking.
func (s *StatStore) aggregate(match func(domain.AnswerStat) bool) []domain.ParticipantStats {
	byParticipant := make(map[int64]*domain.ParticipantStats)
	lastAt := make(map[int64]domain.AnswerStat)
	for _, r := range s.rows {
		if !match(r) {
			continue
		}
		st, ok := byParticipant[r.ParticipantID]
		if !ok {
			p, found := s.directory.ByID(r.ParticipantID)
			if !found {
				continue
			}
			st = &domain.ParticipantStats{ParticipantID: r.ParticipantID, Code: p.Code, Name: p.Name}
			byParticipant[r.ParticipantID] = st
		}
		st.TotalAnswered++
		if r.Correct {
			st.TotalCorrect++
		} else {
			st.TotalFailed++
		}
		st.TotalTime += r.ElapsedSec
		if prev, seen := lastAt[r.ParticipantID]; !seen || r.At.After(prev.At) {
			lastAt[r.ParticipantID] = r
		}
	}

	out := make([]domain.ParticipantStats, 0, len(byParticipant))
	for id, st := range byParticipant {
		if last, ok := lastAt[id]; ok {
			q := last.QuestionID
			st.LastQuestionID = &q
		}
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParticipantID < out[j].ParticipantID })
	return out
}
