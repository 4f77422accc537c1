package postgres

import (
	"context"
	"errors"
	"fmt"

	"live-leaderboard-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ParticipantDirectory reads participant identity from the accounts tables.
// This core never writes to them.
type ParticipantDirectory struct {
	pool *pgxpool.Pool
}

func NewParticipantDirectory(pool *pgxpool.Pool) *ParticipantDirectory {
	return &ParticipantDirectory{pool: pool}
}

func (d *ParticipantDirectory) ByCode(ctx context.Context, code string) (domain.Participant, bool, error) {
	var p domain.Participant
	err := d.pool.QueryRow(ctx,
		`SELECT id, code, name, active FROM participants WHERE upper(code)=$1`,
		domain.NormalizeCode(code),
	).Scan(&p.ID, &p.Code, &p.Name, &p.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Participant{}, false, nil
	}
	if err != nil {
		return domain.Participant{}, false, fmt.Errorf("participant by code: %w", err)
	}
	return p, true, nil
}
