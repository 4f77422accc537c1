package postgres

import (
	"context"
	"errors"
	"fmt"

	"live-leaderboard-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ChallengeStore persists challenges in Postgres. Start runs the
// deactivate-all plus insert inside one transaction so concurrent readers of
// Active never see a half-updated state.
type ChallengeStore struct {
	pool *pgxpool.Pool
}

func NewChallengeStore(pool *pgxpool.Pool) *ChallengeStore {
	return &ChallengeStore{pool: pool}
}

func (s *ChallengeStore) Start(ctx context.Context, name string) (domain.Challenge, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("start challenge: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE challenges SET active=false, ended_at=now() WHERE active`); err != nil {
		return domain.Challenge{}, fmt.Errorf("deactivate challenges: %w", err)
	}

	var challenge domain.Challenge
	err = tx.QueryRow(ctx,
		`INSERT INTO challenges (name, active, started_at) VALUES ($1, true, now())
		 RETURNING id, name, active, started_at, ended_at`, name,
	).Scan(&challenge.ID, &challenge.Name, &challenge.Active, &challenge.StartedAt, &challenge.EndedAt)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("insert challenge: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Challenge{}, fmt.Errorf("commit challenge: %w", err)
	}
	return challenge, nil
}

func (s *ChallengeStore) Active(ctx context.Context) (domain.Challenge, bool, error) {
	var challenge domain.Challenge
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, active, started_at, ended_at FROM challenges
		 WHERE active ORDER BY started_at DESC LIMIT 1`,
	).Scan(&challenge.ID, &challenge.Name, &challenge.Active, &challenge.StartedAt, &challenge.EndedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Challenge{}, false, nil
	}
	if err != nil {
		return domain.Challenge{}, false, fmt.Errorf("active challenge: %w", err)
	}
	return challenge, true, nil
}

func (s *ChallengeStore) ByID(ctx context.Context, id int64) (domain.Challenge, error) {
	var challenge domain.Challenge
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, active, started_at, ended_at FROM challenges WHERE id=$1`, id,
	).Scan(&challenge.ID, &challenge.Name, &challenge.Active, &challenge.StartedAt, &challenge.EndedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("challenge by id: %w", err)
	}
	return challenge, nil
}

func (s *ChallengeStore) List(ctx context.Context) ([]domain.Challenge, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, active, started_at, ended_at FROM challenges ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	defer rows.Close()

	challenges := []domain.Challenge{}
	for rows.Next() {
		var c domain.Challenge
		if err := rows.Scan(&c.ID, &c.Name, &c.Active, &c.StartedAt, &c.EndedAt); err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}
