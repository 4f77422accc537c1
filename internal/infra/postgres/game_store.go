package postgres

import (
	"context"
	"fmt"

	"live-leaderboard-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// GameStore persists mini-game answers and their session summary in one
// transaction, so a bulk save is all-or-nothing.
type GameStore struct {
	pool *pgxpool.Pool
}

func NewGameStore(pool *pgxpool.Pool) *GameStore {
	return &GameStore{pool: pool}
}

func (s *GameStore) SaveSession(ctx context.Context, answers []domain.GameAnswer, session domain.GameSession) (domain.GameSession, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.GameSession{}, fmt.Errorf("save session: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range answers {
		if _, err := tx.Exec(ctx,
			`INSERT INTO game_answers (participant_id, game_type, question_id, question_text,
			                           selected_answer, correct_answer, correct, elapsed_sec, answered_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			a.ParticipantID, string(a.GameType), a.QuestionID, a.QuestionText,
			a.SelectedAnswer, a.CorrectAnswer, a.Correct, a.ElapsedSec, a.At); err != nil {
			return domain.GameSession{}, fmt.Errorf("insert game answer: %w", err)
		}
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO game_sessions (participant_id, game_type, total_questions, correct_answers,
		                            total_time_sec, completed, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		session.ParticipantID, string(session.GameType), session.TotalQuestions,
		session.CorrectAnswers, session.TotalTime, session.Completed, session.CompletedAt,
	).Scan(&session.ID)
	if err != nil {
		return domain.GameSession{}, fmt.Errorf("insert game session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.GameSession{}, fmt.Errorf("commit game session: %w", err)
	}
	return session, nil
}

func (s *GameStore) PlayerStats(ctx context.Context, participantID int64, gameType *domain.GameType) (domain.GameStats, error) {
	var stats domain.GameStats
	var filter *string
	if gameType != nil {
		t := string(*gameType)
		filter = &t
	}

	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*)::int, COUNT(*) FILTER (WHERE correct)::int
		 FROM game_answers
		 WHERE participant_id = $1 AND ($2::text IS NULL OR game_type = $2)`,
		participantID, filter,
	).Scan(&stats.TotalAnswers, &stats.TotalCorrect)
	if err != nil {
		return domain.GameStats{}, fmt.Errorf("game answer stats: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*)::int FROM game_sessions
		 WHERE participant_id = $1 AND ($2::text IS NULL OR game_type = $2)`,
		participantID, filter,
	).Scan(&stats.TotalGames)
	if err != nil {
		return domain.GameStats{}, fmt.Errorf("game session stats: %w", err)
	}
	return stats, nil
}
