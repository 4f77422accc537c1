package domain

import (
	"math"
	"strings"
	"time"
)

// Participant is a registered player. Identity is owned by the external
// account subsystem; this core only reads the code, name and active flag.
type Participant struct {
	ID     int64
	Code   string
	Name   string
	Active bool
}

// Challenge is one time-bounded competitive round. At most one challenge is
// active at any time; starting a new one ends all others.
type Challenge struct {
	ID        int64      `json:"challengeId"`
	Name      string     `json:"name"`
	Active    bool       `json:"active"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt"`
}

// Question holds the stored correct answer for one quiz question.
type Question struct {
	ID            int64  `json:"id"`
	Text          string `json:"text"`
	CorrectAnswer string `json:"-"`
}

// AnswerStat is the immutable fact "this participant answered this question,
// correctly or not, taking this long". Never updated or deleted; all scores
// are derived by aggregating these rows.
type AnswerStat struct {
	ParticipantID int64
	ChallengeID   *int64
	QuestionID    int64
	Correct       bool
	ElapsedSec    float64
	At            time.Time
}

// ParticipantStats is the raw per-participant aggregate the ranking engine
// consumes. Stores must produce these in ascending participant-id order so
// ranking stays deterministic.
type ParticipantStats struct {
	ParticipantID  int64   `json:"userId"`
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	TotalAnswered  int     `json:"totalAnswered"`
	TotalCorrect   int     `json:"totalCorrect"`
	TotalFailed    int     `json:"totalFailed"`
	TotalTime      float64 `json:"totalTime"`
	LastQuestionID *int64  `json:"currentQuestion"`
}

// LeaderboardEntry is one ranked row of a computed leaderboard. Derived on
// every request, never persisted.
type LeaderboardEntry struct {
	ParticipantID int64   `json:"userId"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	TotalAnswered int     `json:"totalAnswered"`
	TotalCorrect  int     `json:"totalCorrect"`
	TotalTime     float64 `json:"totalTime"`
	Rank          int     `json:"rank"`
}

// Leaderboard is the ordered scoreboard for one challenge.
type Leaderboard struct {
	ChallengeID int64              `json:"challengeId"`
	Entries     []LeaderboardEntry `json:"leaderboard"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// NormalizeAnswer trims and case-folds a submitted answer so that
// correctness checks ignore whitespace and letter case.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeCode canonicalizes a participant code for case-insensitive lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Round2 rounds to 2 decimal places for display totals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
