package domain

import "time"

// GameType tags which mini-game produced a batch of answers.
type GameType string

const (
	GameDragDrop GameType = "drag_drop"
	GameJigsaw   GameType = "jigsaw"
	GameGeneric  GameType = "generic"
)

// Valid reports whether the game type is one of the known variants.
func (g GameType) Valid() bool {
	switch g {
	case GameDragDrop, GameJigsaw, GameGeneric:
		return true
	}
	return false
}

// GameAnswer is one answer fact captured from a mini-game session. Unlike
// AnswerStat, correctness is judged client-side by the game engine, so the
// selected and expected answers are recorded verbatim for auditing.
type GameAnswer struct {
	ParticipantID  int64
	GameType       GameType
	QuestionID     int64
	QuestionText   string
	SelectedAnswer string
	CorrectAnswer  string
	Correct        bool
	ElapsedSec     float64
	At             time.Time
}

// GameSession is the summary row emitted alongside a bulk answer save. It is
// a convenience aggregate; the per-answer facts remain the source of truth.
type GameSession struct {
	ID             int64      `json:"sessionId"`
	ParticipantID  int64      `json:"-"`
	GameType       GameType   `json:"gameType"`
	TotalQuestions int        `json:"totalQuestions"`
	CorrectAnswers int        `json:"correctAnswers"`
	TotalTime      float64    `json:"totalTimeSeconds"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completedAt"`
}

// ScorePercentage is the session score as a percentage, rounded to 2 decimals.
func (s GameSession) ScorePercentage() float64 {
	if s.TotalQuestions == 0 {
		return 0
	}
	return Round2(float64(s.CorrectAnswers) / float64(s.TotalQuestions) * 100)
}

// GameStats summarizes a player's history across game sessions.
type GameStats struct {
	PlayerName   string  `json:"playerName"`
	TotalGames   int     `json:"totalGames"`
	TotalAnswers int     `json:"totalAnswers"`
	TotalCorrect int     `json:"totalCorrect"`
	Accuracy     float64 `json:"accuracyPercentage"`
}
