package app

import (
	"sort"

	"live-leaderboard-service/internal/domain"
)

// Rank orders raw per-participant aggregates into a leaderboard: most correct
// answers first, ties broken by lower total time (faster wins). The sort is
// stable over the store's ascending participant-id order, so full ties get
// deterministic sequential ranks.
func Rank(stats []domain.ParticipantStats) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(stats))
	for _, st := range stats {
		entries = append(entries, domain.LeaderboardEntry{
			ParticipantID: st.ParticipantID,
			Code:          st.Code,
			Name:          st.Name,
			TotalAnswered: st.TotalAnswered,
			TotalCorrect:  st.TotalCorrect,
			TotalTime:     domain.Round2(st.TotalTime),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalCorrect != entries[j].TotalCorrect {
			return entries[i].TotalCorrect > entries[j].TotalCorrect
		}
		return entries[i].TotalTime < entries[j].TotalTime
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
