package memory

import (
	"context"
	"sync"

	"live-leaderboard-service/internal/domain"
)

// ParticipantDirectory is an in-memory stand-in for the external account
// subsystem (useful for tests/demos).
type ParticipantDirectory struct {
	mu     sync.RWMutex
	byCode map[string]domain.Participant
	byID   map[int64]domain.Participant
}

func NewParticipantDirectory(participants []domain.Participant) *ParticipantDirectory {
	d := &ParticipantDirectory{
		byCode: make(map[string]domain.Participant, len(participants)),
		byID:   make(map[int64]domain.Participant, len(participants)),
	}
	for _, p := range participants {
		d.byCode[domain.NormalizeCode(p.Code)] = p
		d.byID[p.ID] = p
	}
	return d
}

func (d *ParticipantDirectory) ByCode(_ context.Context, code string) (domain.Participant, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.byCode[domain.NormalizeCode(code)]
	return p, ok, nil
}

// ByID is used by the in-memory stat store to decorate aggregates with
// participant identity, mirroring the SQL join the postgres store performs.
func (d *ParticipantDirectory) ByID(id int64) (domain.Participant, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.byID[id]
	return p, ok
}
