package postgres

import (
	"context"
	"errors"
	"fmt"

	"live-leaderboard-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionStore loads questions from Postgres. Answer lookups are usually
// fronted by the redis cache; see infra/redis.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

func (s *QuestionStore) CorrectAnswer(ctx context.Context, questionID int64) (string, error) {
	var answer string
	err := s.pool.QueryRow(ctx, `SELECT correct_answer FROM questions WHERE id=$1`, questionID).Scan(&answer)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrQuestionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("correct answer: %w", err)
	}
	return answer, nil
}

func (s *QuestionStore) Random(ctx context.Context, limit int) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, text FROM questions ORDER BY random() LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("random questions: %w", err)
	}
	defer rows.Close()

	questions := []domain.Question{}
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Text); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
