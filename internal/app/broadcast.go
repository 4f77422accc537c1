package app

import (
	"context"
	"time"

	"live-leaderboard-service/internal/domain"
)

// StreamUpdate is the wire shape pushed to leaderboard viewers. ChallengeID
// is null (with an explanatory Message) while no challenge is active.
type StreamUpdate struct {
	Type        string                    `json:"type"`
	ChallengeID *int64                    `json:"challengeId"`
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
	Timestamp   *time.Time                `json:"timestamp,omitempty"`
	Message     string                    `json:"message,omitempty"`
}

// StreamError is the terminal notice sent before a failing stream closes.
type StreamError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SendFunc delivers one message to the connected viewer.
type SendFunc func(msg any) error

// BroadcastCadence controls the polling intervals of a broadcast session.
type BroadcastCadence struct {
	// ActiveEvery is the poll interval while tracking an active challenge.
	ActiveEvery time.Duration
	// IdleEvery is the slower interval used while no challenge is active.
	IdleEvery time.Duration
}

// DefaultCadence matches the production polling rates.
var DefaultCadence = BroadcastCadence{ActiveEvery: 2 * time.Second, IdleEvery: 5 * time.Second}

// BroadcastSession runs the per-viewer update loop. Each session is owned by
// exactly one connection and shares no state with other sessions; the only
// cross-session surface is the read-only leaderboard computation.
type BroadcastSession struct {
	service *LeaderboardService
	cadence BroadcastCadence
	clock   func() time.Time

	trackedChallengeID int64
	forceSend          bool
	lastSent           []domain.LeaderboardEntry
}

func NewBroadcastSession(service *LeaderboardService, cadence BroadcastCadence) *BroadcastSession {
	if cadence.ActiveEvery <= 0 {
		cadence.ActiveEvery = DefaultCadence.ActiveEvery
	}
	if cadence.IdleEvery <= 0 {
		cadence.IdleEvery = DefaultCadence.IdleEvery
	}
	return &BroadcastSession{service: service, cadence: cadence, clock: time.Now}
}

// Run polls for leaderboard changes and pushes updates until ctx is
// cancelled. An update is sent only when rank positions changed since the
// last send (see RanksChanged) or when the tracked challenge switched. On an
// unexpected failure a best-effort error notice is sent and Run returns; the
// caller is expected to close the connection (fail-closed).
func (b *BroadcastSession) Run(ctx context.Context, send SendFunc) error {
	for {
		wait, err := b.tick(ctx, send)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			_ = send(StreamError{Type: "error", Message: err.Error()})
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (b *BroadcastSession) tick(ctx context.Context, send SendFunc) (time.Duration, error) {
	challenge, ok, err := b.service.ActiveChallenge(ctx)
	if err != nil {
		return 0, err
	}

	if !ok {
		notice := StreamUpdate{
			Type:        "leaderboard_update",
			Leaderboard: []domain.LeaderboardEntry{},
			Message:     "No active challenge",
		}
		if err := b.deliver(ctx, send, notice); err != nil {
			return 0, err
		}
		return b.cadence.IdleEvery, nil
	}

	// A new challenge invalidates the session baseline: the next board is
	// sent unconditionally so the viewer learns the new challenge id.
	if b.trackedChallengeID != challenge.ID {
		b.trackedChallengeID = challenge.ID
		b.lastSent = nil
		b.forceSend = true
	}

	board, err := b.service.leaderboardFor(ctx, challenge)
	if err != nil {
		return 0, err
	}

	if b.forceSend || RanksChanged(b.lastSent, board.Entries) {
		now := b.clock()
		update := StreamUpdate{
			Type:        "leaderboard_update",
			ChallengeID: &challenge.ID,
			Leaderboard: board.Entries,
			Timestamp:   &now,
		}
		if err := b.deliver(ctx, send, update); err != nil {
			return 0, err
		}
		b.lastSent = board.Entries
		b.forceSend = false
	}
	return b.cadence.ActiveEvery, nil
}

// deliver re-checks cancellation immediately before the send so a tick racing
// a disconnect never writes to a closed connection.
func (b *BroadcastSession) deliver(ctx context.Context, send SendFunc, msg any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return send(msg)
}
