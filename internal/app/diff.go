package app

import "live-leaderboard-service/internal/domain"

// RanksChanged reports whether a freshly computed board is worth broadcasting.
// Rank stability, not score stability, is the trigger: a participant whose
// counts moved without changing any rank position does not produce a send.
// This is an intentional bandwidth trade-off, not an oversight.
func RanksChanged(previous, current []domain.LeaderboardEntry) bool {
	if len(previous) != len(current) {
		return true
	}
	prevRanks := make(map[int64]int, len(previous))
	for _, e := range previous {
		prevRanks[e.ParticipantID] = e.Rank
	}
	for _, e := range current {
		rank, ok := prevRanks[e.ParticipantID]
		if !ok || rank != e.Rank {
			return true
		}
	}
	return false
}
