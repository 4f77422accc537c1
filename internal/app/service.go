package app

import (
	"context"
	"errors"
	"time"

	"live-leaderboard-service/internal/domain"
)

// ChallengeStore owns the single-active-challenge invariant. Start must be
// atomic with respect to Active: readers never observe two active challenges
// or none right after a successful Start.
type ChallengeStore interface {
	Active(ctx context.Context) (domain.Challenge, bool, error)
	ByID(ctx context.Context, id int64) (domain.Challenge, error)
	Start(ctx context.Context, name string) (domain.Challenge, error)
	List(ctx context.Context) ([]domain.Challenge, error)
}

// StatStore appends answer facts and aggregates them per participant.
// Aggregates must be returned in ascending participant-id order.
type StatStore interface {
	Append(ctx context.Context, stat domain.AnswerStat) error
	ChallengeStats(ctx context.Context, challengeID int64) ([]domain.ParticipantStats, error)
	ParticipantStats(ctx context.Context, ids []int64) ([]domain.ParticipantStats, error)
	ParticipantChallengeStats(ctx context.Context, participantID, challengeID int64) (domain.ParticipantStats, error)
}

// GameStore persists bulk mini-game answers together with their session summary.
type GameStore interface {
	SaveSession(ctx context.Context, answers []domain.GameAnswer, session domain.GameSession) (domain.GameSession, error)
	PlayerStats(ctx context.Context, participantID int64, gameType *domain.GameType) (domain.GameStats, error)
}

// QuestionStore resolves stored correct answers (typically cache-backed).
type QuestionStore interface {
	CorrectAnswer(ctx context.Context, questionID int64) (string, error)
	Random(ctx context.Context, limit int) ([]domain.Question, error)
}

// ParticipantDirectory is the boundary to the external account subsystem.
type ParticipantDirectory interface {
	ByCode(ctx context.Context, code string) (domain.Participant, bool, error)
}

// LeaderboardService contains the competitive-round use cases: recording
// answers, managing challenges and computing leaderboards.
type LeaderboardService struct {
	challenges   ChallengeStore
	stats        StatStore
	games        GameStore
	questions    QuestionStore
	participants ParticipantDirectory
	clock        func() time.Time
}

func NewLeaderboardService(challenges ChallengeStore, stats StatStore, games GameStore, questions QuestionStore, participants ParticipantDirectory) *LeaderboardService {
	return &LeaderboardService{
		challenges:   challenges,
		stats:        stats,
		games:        games,
		questions:    questions,
		participants: participants,
		clock:        time.Now,
	}
}

// NewLeaderboardServiceWithClock is test-only for deterministic timestamps.
func NewLeaderboardServiceWithClock(challenges ChallengeStore, stats StatStore, games GameStore, questions QuestionStore, participants ParticipantDirectory, now func() time.Time) *LeaderboardService {
	s := NewLeaderboardService(challenges, stats, games, questions, participants)
	s.clock = now
	return s
}

// RecordAnswer checks a submitted answer against the stored correct answer
// and appends one immutable AnswerStat. A nil challengeID resolves to the
// active challenge. Unknown question IDs score as incorrect rather than
// failing, so a client racing a question-bank refresh still gets its fact
// recorded.
func (s *LeaderboardService) RecordAnswer(ctx context.Context, code string, questionID int64, answer string, challengeID *int64, elapsedSec float64) (bool, error) {
	participant, err := s.resolveParticipant(ctx, code)
	if err != nil {
		return false, err
	}

	var challenge domain.Challenge
	if challengeID != nil {
		challenge, err = s.challenges.ByID(ctx, *challengeID)
		if err != nil {
			return false, err
		}
	} else {
		active, ok, err := s.challenges.Active(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, domain.ErrNoActiveChallenge
		}
		challenge = active
	}

	correct := false
	stored, err := s.questions.CorrectAnswer(ctx, questionID)
	switch {
	case err == nil:
		correct = domain.NormalizeAnswer(answer) == domain.NormalizeAnswer(stored)
	case errors.Is(err, domain.ErrQuestionNotFound):
		// scored as incorrect
	default:
		return false, err
	}

	chID := challenge.ID
	stat := domain.AnswerStat{
		ParticipantID: participant.ID,
		ChallengeID:   &chID,
		QuestionID:    questionID,
		Correct:       correct,
		ElapsedSec:    elapsedSec,
		At:            s.clock(),
	}
	if err := s.stats.Append(ctx, stat); err != nil {
		return false, err
	}
	return correct, nil
}

// BulkAnswer is one pre-scored answer inside a bulk mini-game submission.
type BulkAnswer struct {
	QuestionID     int64   `json:"questionId"`
	QuestionText   string  `json:"questionText"`
	SelectedAnswer string  `json:"selectedAnswer"`
	CorrectAnswer  string  `json:"correctAnswer"`
	Correct        bool    `json:"isCorrect"`
	ElapsedSec     float64 `json:"timeTakenSeconds"`
}

// BulkResult reports how many answers were saved and the session summary row.
type BulkResult struct {
	Saved   int
	Session domain.GameSession
}

// RecordBulkAnswers saves one mini-game's worth of answers plus a session
// summary. The whole list is validated before anything is written.
func (s *LeaderboardService) RecordBulkAnswers(ctx context.Context, code string, gameType domain.GameType, answers []BulkAnswer, totalTime float64) (BulkResult, error) {
	if !gameType.Valid() {
		return BulkResult{}, domain.ErrInvalidGameType
	}
	if len(answers) == 0 {
		return BulkResult{}, domain.ErrEmptyAnswerList
	}

	participant, err := s.resolveParticipant(ctx, code)
	if err != nil {
		return BulkResult{}, err
	}

	now := s.clock()
	rows := make([]domain.GameAnswer, 0, len(answers))
	correct := 0
	for _, a := range answers {
		if a.Correct {
			correct++
		}
		rows = append(rows, domain.GameAnswer{
			ParticipantID:  participant.ID,
			GameType:       gameType,
			QuestionID:     a.QuestionID,
			QuestionText:   a.QuestionText,
			SelectedAnswer: a.SelectedAnswer,
			CorrectAnswer:  a.CorrectAnswer,
			Correct:        a.Correct,
			ElapsedSec:     a.ElapsedSec,
			At:             now,
		})
	}

	session := domain.GameSession{
		ParticipantID:  participant.ID,
		GameType:       gameType,
		TotalQuestions: len(answers),
		CorrectAnswers: correct,
		TotalTime:      totalTime,
		Completed:      true,
		CompletedAt:    &now,
	}
	saved, err := s.games.SaveSession(ctx, rows, session)
	if err != nil {
		return BulkResult{}, err
	}
	return BulkResult{Saved: len(rows), Session: saved}, nil
}

// StartChallenge deactivates every prior challenge and creates the new
// active one in a single atomic step.
func (s *LeaderboardService) StartChallenge(ctx context.Context, name string) (domain.Challenge, error) {
	return s.challenges.Start(ctx, name)
}

// ActiveChallenge returns the currently active challenge, if any.
func (s *LeaderboardService) ActiveChallenge(ctx context.Context) (domain.Challenge, bool, error) {
	return s.challenges.Active(ctx)
}

// ListChallenges returns all challenges, most recent first.
func (s *LeaderboardService) ListChallenges(ctx context.Context) ([]domain.Challenge, error) {
	return s.challenges.List(ctx)
}

// Leaderboard computes the ranked board for one challenge. A nil id resolves
// to the active challenge; when none is active an empty board is returned,
// not an error.
func (s *LeaderboardService) Leaderboard(ctx context.Context, challengeID *int64) (domain.Leaderboard, error) {
	var challenge domain.Challenge
	if challengeID != nil {
		ch, err := s.challenges.ByID(ctx, *challengeID)
		if err != nil {
			return domain.Leaderboard{}, err
		}
		challenge = ch
	} else {
		active, ok, err := s.challenges.Active(ctx)
		if err != nil {
			return domain.Leaderboard{}, err
		}
		if !ok {
			return domain.Leaderboard{Entries: []domain.LeaderboardEntry{}, UpdatedAt: s.clock()}, nil
		}
		challenge = active
	}
	return s.leaderboardFor(ctx, challenge)
}

func (s *LeaderboardService) leaderboardFor(ctx context.Context, challenge domain.Challenge) (domain.Leaderboard, error) {
	stats, err := s.stats.ChallengeStats(ctx, challenge.ID)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{
		ChallengeID: challenge.ID,
		Entries:     Rank(stats),
		UpdatedAt:   s.clock(),
	}, nil
}

// ParticipantStats aggregates all-history stats for an explicit id set,
// without challenge scoping.
func (s *LeaderboardService) ParticipantStats(ctx context.Context, ids []int64) ([]domain.ParticipantStats, error) {
	if len(ids) == 0 {
		return []domain.ParticipantStats{}, nil
	}
	return s.stats.ParticipantStats(ctx, ids)
}

// SessionProgress is one player's position within the active challenge.
type SessionProgress struct {
	ChallengeID     int64  `json:"challengeId"`
	ChallengeName   string `json:"challengeName"`
	CurrentQuestion int    `json:"currentQuestion"`
	TotalAnswered   int    `json:"totalAnswered"`
	TotalCorrect    int    `json:"totalCorrect"`
	TotalFailed     int    `json:"totalFailed"`
}

// GameSessionSnapshot reports a player's aggregates for the active challenge.
func (s *LeaderboardService) GameSessionSnapshot(ctx context.Context, code string) (SessionProgress, error) {
	participant, err := s.resolveParticipant(ctx, code)
	if err != nil {
		return SessionProgress{}, err
	}
	challenge, ok, err := s.challenges.Active(ctx)
	if err != nil {
		return SessionProgress{}, err
	}
	if !ok {
		return SessionProgress{}, domain.ErrNoActiveChallenge
	}
	stats, err := s.stats.ParticipantChallengeStats(ctx, participant.ID, challenge.ID)
	if err != nil {
		return SessionProgress{}, err
	}
	return SessionProgress{
		ChallengeID:     challenge.ID,
		ChallengeName:   challenge.Name,
		CurrentQuestion: stats.TotalAnswered,
		TotalAnswered:   stats.TotalAnswered,
		TotalCorrect:    stats.TotalCorrect,
		TotalFailed:     stats.TotalFailed,
	}, nil
}

// PlayerGameStats summarizes a player's mini-game history, optionally
// filtered by game type.
func (s *LeaderboardService) PlayerGameStats(ctx context.Context, code string, gameType *domain.GameType) (domain.GameStats, error) {
	if gameType != nil && !gameType.Valid() {
		return domain.GameStats{}, domain.ErrInvalidGameType
	}
	participant, err := s.resolveParticipant(ctx, code)
	if err != nil {
		return domain.GameStats{}, err
	}
	stats, err := s.games.PlayerStats(ctx, participant.ID, gameType)
	if err != nil {
		return domain.GameStats{}, err
	}
	stats.PlayerName = participant.Name
	if stats.TotalAnswers > 0 {
		stats.Accuracy = domain.Round2(float64(stats.TotalCorrect) / float64(stats.TotalAnswers) * 100)
	}
	return stats, nil
}

// RandomQuestions returns up to limit questions for game clients.
func (s *LeaderboardService) RandomQuestions(ctx context.Context, limit int) ([]domain.Question, error) {
	return s.questions.Random(ctx, limit)
}

func (s *LeaderboardService) resolveParticipant(ctx context.Context, code string) (domain.Participant, error) {
	participant, ok, err := s.participants.ByCode(ctx, domain.NormalizeCode(code))
	if err != nil {
		return domain.Participant{}, err
	}
	if !ok || !participant.Active {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	return participant, nil
}
