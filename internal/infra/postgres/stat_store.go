package postgres

import (
	"context"
	"fmt"

	"live-leaderboard-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// StatStore appends answer facts and aggregates them with GROUP BY queries.
// Rows are never updated in place, so plain inserts plus aggregate reads need
// no extra locking.
type StatStore struct {
	pool *pgxpool.Pool
}

func NewStatStore(pool *pgxpool.Pool) *StatStore {
	return &StatStore{pool: pool}
}

func (s *StatStore) Append(ctx context.Context, stat domain.AnswerStat) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO answer_stats (participant_id, challenge_id, question_id, correct, elapsed_sec, answered_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		stat.ParticipantID, stat.ChallengeID, stat.QuestionID, stat.Correct, stat.ElapsedSec, stat.At)
	if err != nil {
		return fmt.Errorf("append stat: %w", err)
	}
	return nil
}

// Last question comes from the grouped rows themselves, so it stays scoped
// to whatever filter the surrounding query applies.
const aggregateColumns = `
	p.id, p.code, p.name,
	COUNT(*)::int,
	COUNT(*) FILTER (WHERE s.correct)::int,
	COUNT(*) FILTER (WHERE NOT s.correct)::int,
	COALESCE(SUM(s.elapsed_sec), 0),
	(array_agg(s.question_id ORDER BY s.answered_at DESC, s.id DESC))[1]`

func (s *StatStore) ChallengeStats(ctx context.Context, challengeID int64) ([]domain.ParticipantStats, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+aggregateColumns+`
		 FROM answer_stats s JOIN participants p ON p.id = s.participant_id
		 WHERE s.challenge_id = $1
		 GROUP BY p.id, p.code, p.name
		 ORDER BY p.id`, challengeID)
	if err != nil {
		return nil, fmt.Errorf("challenge stats: %w", err)
	}
	return scanStats(rows)
}

func (s *StatStore) ParticipantStats(ctx context.Context, ids []int64) ([]domain.ParticipantStats, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+aggregateColumns+`
		 FROM answer_stats s JOIN participants p ON p.id = s.participant_id
		 WHERE s.participant_id = ANY($1)
		 GROUP BY p.id, p.code, p.name
		 ORDER BY p.id`, ids)
	if err != nil {
		return nil, fmt.Errorf("participant stats: %w", err)
	}
	return scanStats(rows)
}

func (s *StatStore) ParticipantChallengeStats(ctx context.Context, participantID, challengeID int64) (domain.ParticipantStats, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+aggregateColumns+`
		 FROM answer_stats s JOIN participants p ON p.id = s.participant_id
		 WHERE s.participant_id = $1 AND s.challenge_id = $2
		 GROUP BY p.id, p.code, p.name`, participantID, challengeID)
	if err != nil {
		return domain.ParticipantStats{}, fmt.Errorf("participant challenge stats: %w", err)
	}
	stats, err := scanStats(rows)
	if err != nil {
		return domain.ParticipantStats{}, err
	}
	if len(stats) == 0 {
		return domain.ParticipantStats{ParticipantID: participantID}, nil
	}
	return stats[0], nil
}

func scanStats(rows pgx.Rows) ([]domain.ParticipantStats, error) {
	defer rows.Close()
	stats := []domain.ParticipantStats{}
	for rows.Next() {
		var st domain.ParticipantStats
		if err := rows.Scan(&st.ParticipantID, &st.Code, &st.Name,
			&st.TotalAnswered, &st.TotalCorrect, &st.TotalFailed,
			&st.TotalTime, &st.LastQuestionID); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
