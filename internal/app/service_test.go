package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"live-leaderboard-service/internal/app"
	"live-leaderboard-service/internal/domain"
	"live-leaderboard-service/internal/infra/memory"
)

type testEnv struct {
	service    *app.LeaderboardService
	stats      *memory.StatStore
	challenges *memory.ChallengeStore
}

func newTestEnv() *testEnv {
	directory := memory.NewParticipantDirectory([]domain.Participant{
		{ID: 1, Code: "AAAA1111", Name: "Alice", Active: true},
		{ID: 2, Code: "BBBB2222", Name: "Bob", Active: true},
		{ID: 3, Code: "CCCC3333", Name: "Carol", Active: false},
	})
	challenges := memory.NewChallengeStore()
	stats := memory.NewStatStore(directory)
	questions := memory.NewQuestionStore([]domain.Question{
		{ID: 1, Text: "What is 2 + 2?", CorrectAnswer: "4"},
		{ID: 2, Text: "Capital of France?", CorrectAnswer: "Paris"},
		{ID: 3, Text: "Largest planet?", CorrectAnswer: "Jupiter"},
	})
	return &testEnv{
		service:    app.NewLeaderboardService(challenges, stats, memory.NewGameStore(), questions, directory),
		stats:      stats,
		challenges: challenges,
	}
}

func TestRecordAnswerNormalizesBeforeComparing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	if _, err := env.service.StartChallenge(ctx, "round 1"); err != nil {
		t.Fatalf("start challenge: %v", err)
	}

	correct, err := env.service.RecordAnswer(ctx, "aaaa1111", 2, "  PARIS ", nil, 3.5)
	if err != nil {
		t.Fatalf("record answer: %v", err)
	}
	if !correct {
		t.Fatalf("expected normalized answer to be correct")
	}

	correct, err = env.service.RecordAnswer(ctx, "AAAA1111", 2, "London", nil, 2.0)
	if err != nil {
		t.Fatalf("record answer: %v", err)
	}
	if correct {
		t.Fatalf("expected wrong answer to be incorrect")
	}
	if env.stats.Len() != 2 {
		t.Fatalf("expected 2 stats recorded, got %d", env.stats.Len())
	}
}

func TestRecordAnswerUnknownParticipant(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_, _ = env.service.StartChallenge(ctx, "round 1")

	_, err := env.service.RecordAnswer(ctx, "ZZZZ9999", 1, "4", nil, 1.0)
	if !errors.Is(err, domain.ErrParticipantNotFound) {
		t.Fatalf("expected participant error, got %v", err)
	}
	if env.stats.Len() != 0 {
		t.Fatalf("expected no stat persisted, got %d", env.stats.Len())
	}
}

func TestRecordAnswerInactiveParticipant(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_, _ = env.service.StartChallenge(ctx, "round 1")

	_, err := env.service.RecordAnswer(ctx, "CCCC3333", 1, "4", nil, 1.0)
	if !errors.Is(err, domain.ErrParticipantNotFound) {
		t.Fatalf("expected participant error for inactive player, got %v", err)
	}
}

func TestRecordAnswerNoActiveChallenge(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	_, err := env.service.RecordAnswer(ctx, "AAAA1111", 1, "4", nil, 1.0)
	if !errors.Is(err, domain.ErrNoActiveChallenge) {
		t.Fatalf("expected no-active-challenge error, got %v", err)
	}
}

func TestRecordAnswerExplicitChallenge(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	first, _ := env.service.StartChallenge(ctx, "round 1")
	_, _ = env.service.StartChallenge(ctx, "round 2")

	// answers can still target an ended challenge explicitly
	correct, err := env.service.RecordAnswer(ctx, "AAAA1111", 1, "4", &first.ID, 1.0)
	if err != nil || !correct {
		t.Fatalf("expected correct answer against ended challenge, got correct=%v err=%v", correct, err)
	}

	missing := int64(999)
	_, err = env.service.RecordAnswer(ctx, "AAAA1111", 1, "4", &missing, 1.0)
	if !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Fatalf("expected challenge-not-found error, got %v", err)
	}
}

func TestRecordAnswerUnknownQuestionScoresIncorrect(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_, _ = env.service.StartChallenge(ctx, "round 1")

	correct, err := env.service.RecordAnswer(ctx, "AAAA1111", 999, "anything", nil, 1.0)
	if err != nil {
		t.Fatalf("record answer: %v", err)
	}
	if correct {
		t.Fatalf("unknown question must score as incorrect")
	}
	if env.stats.Len() != 1 {
		t.Fatalf("expected the fact recorded anyway, got %d rows", env.stats.Len())
	}
}

func TestStartChallengeKeepsSingleActive(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	for _, name := range []string{"round 1", "round 2", "round 3"} {
		if _, err := env.service.StartChallenge(ctx, name); err != nil {
			t.Fatalf("start %s: %v", name, err)
		}
	}

	challenges, err := env.service.ListChallenges(ctx)
	if err != nil {
		t.Fatalf("list challenges: %v", err)
	}
	if len(challenges) != 3 {
		t.Fatalf("expected 3 challenges, got %d", len(challenges))
	}
	if challenges[0].Name != "round 3" {
		t.Fatalf("expected most recent first, got %s", challenges[0].Name)
	}

	active := 0
	for _, c := range challenges {
		if c.Active {
			active++
			if c.EndedAt != nil {
				t.Fatalf("active challenge must not have an end timestamp")
			}
		} else if c.EndedAt == nil {
			t.Fatalf("ended challenge %s missing end timestamp", c.Name)
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one active challenge, got %d", active)
	}
}

func TestLeaderboardTieBrokenByTime(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_, _ = env.service.StartChallenge(ctx, "round 1")

	// Alice: 2 correct of 3, total 10.0s
	mustRecord(t, env.service, "AAAA1111", 1, "4", 4.0)
	mustRecord(t, env.service, "AAAA1111", 2, "Paris", 3.0)
	mustRecord(t, env.service, "AAAA1111", 3, "Mars", 3.0)
	// Bob: 2 correct of 3, total 8.0s
	mustRecord(t, env.service, "BBBB2222", 1, "4", 3.0)
	mustRecord(t, env.service, "BBBB2222", 2, "Paris", 2.0)
	mustRecord(t, env.service, "BBBB2222", 3, "Venus", 3.0)

	board, err := env.service.Leaderboard(ctx, nil)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(board.Entries))
	}
	if board.Entries[0].Name != "Bob" || board.Entries[0].Rank != 1 {
		t.Fatalf("expected Bob rank 1 on faster time, got %+v", board.Entries[0])
	}
	if board.Entries[1].Name != "Alice" || board.Entries[1].Rank != 2 {
		t.Fatalf("expected Alice rank 2, got %+v", board.Entries[1])
	}
	if board.Entries[0].TotalTime != 8.0 || board.Entries[1].TotalTime != 10.0 {
		t.Fatalf("unexpected total times: %+v", board.Entries)
	}
}

func TestLeaderboardNoActiveChallenge(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	board, err := env.service.Leaderboard(ctx, nil)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board.Entries) != 0 {
		t.Fatalf("expected empty board, got %d entries", len(board.Entries))
	}
}

func TestConcurrentSubmissionsAllRecorded(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_, _ = env.service.StartChallenge(ctx, "round 1")

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.service.RecordAnswer(ctx, "AAAA1111", 1, "4", nil, 1.0); err != nil {
				t.Errorf("record answer: %v", err)
			}
		}()
	}
	wg.Wait()

	if env.stats.Len() != n {
		t.Fatalf("expected %d stats, got %d", n, env.stats.Len())
	}
	board, err := env.service.Leaderboard(ctx, nil)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if board.Entries[0].TotalAnswered != n || board.Entries[0].TotalCorrect != n {
		t.Fatalf("expected all %d submissions aggregated, got %+v", n, board.Entries[0])
	}
}

func TestBulkAnswersValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	answers := []app.BulkAnswer{{QuestionID: 1, SelectedAnswer: "4", Correct: true}}

	_, err := env.service.RecordBulkAnswers(ctx, "AAAA1111", "pinball", answers, 1.0)
	if !errors.Is(err, domain.ErrInvalidGameType) {
		t.Fatalf("expected invalid game type, got %v", err)
	}

	_, err = env.service.RecordBulkAnswers(ctx, "AAAA1111", domain.GameDragDrop, nil, 1.0)
	if !errors.Is(err, domain.ErrEmptyAnswerList) {
		t.Fatalf("expected empty list error, got %v", err)
	}

	_, err = env.service.RecordBulkAnswers(ctx, "ZZZZ9999", domain.GameDragDrop, answers, 1.0)
	if !errors.Is(err, domain.ErrParticipantNotFound) {
		t.Fatalf("expected participant error, got %v", err)
	}
}

func TestBulkAnswersSavesSessionSummary(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	result, err := env.service.RecordBulkAnswers(ctx, "BBBB2222", domain.GameJigsaw, []app.BulkAnswer{
		{QuestionID: 1, SelectedAnswer: "4", CorrectAnswer: "4", Correct: true, ElapsedSec: 5},
		{QuestionID: 2, SelectedAnswer: "Lyon", CorrectAnswer: "Paris", Correct: false, ElapsedSec: 7},
		{QuestionID: 3, SelectedAnswer: "Jupiter", CorrectAnswer: "Jupiter", Correct: true, ElapsedSec: 4},
	}, 16.0)
	if err != nil {
		t.Fatalf("bulk answers: %v", err)
	}
	if result.Saved != 3 {
		t.Fatalf("expected 3 answers saved, got %d", result.Saved)
	}
	session := result.Session
	if session.TotalQuestions != 3 || session.CorrectAnswers != 2 || !session.Completed {
		t.Fatalf("unexpected session summary: %+v", session)
	}
	if session.ScorePercentage() != 66.67 {
		t.Fatalf("expected 66.67%%, got %v", session.ScorePercentage())
	}

	stats, err := env.service.PlayerGameStats(ctx, "BBBB2222", nil)
	if err != nil {
		t.Fatalf("game stats: %v", err)
	}
	if stats.TotalGames != 1 || stats.TotalAnswers != 3 || stats.TotalCorrect != 2 {
		t.Fatalf("unexpected game stats: %+v", stats)
	}
	if stats.Accuracy != 66.67 {
		t.Fatalf("expected accuracy 66.67, got %v", stats.Accuracy)
	}
}

func TestParticipantStatsSpanChallenges(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	_, _ = env.service.StartChallenge(ctx, "round 1")
	mustRecord(t, env.service, "AAAA1111", 1, "4", 2.0)
	_, _ = env.service.StartChallenge(ctx, "round 2")
	mustRecord(t, env.service, "AAAA1111", 2, "Paris", 3.0)
	mustRecord(t, env.service, "AAAA1111", 3, "Mars", 1.0)

	stats, err := env.service.ParticipantStats(ctx, []int64{1})
	if err != nil {
		t.Fatalf("participant stats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected 1 row, got %d", len(stats))
	}
	st := stats[0]
	if st.TotalAnswered != 3 || st.TotalCorrect != 2 || st.TotalFailed != 1 {
		t.Fatalf("expected all-history aggregation, got %+v", st)
	}
	if st.LastQuestionID == nil || *st.LastQuestionID != 3 {
		t.Fatalf("expected last question 3, got %v", st.LastQuestionID)
	}
}

func TestGameSessionSnapshot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	_, err := env.service.GameSessionSnapshot(ctx, "AAAA1111")
	if !errors.Is(err, domain.ErrNoActiveChallenge) {
		t.Fatalf("expected no-active-challenge error, got %v", err)
	}

	challenge, _ := env.service.StartChallenge(ctx, "round 1")
	mustRecord(t, env.service, "AAAA1111", 1, "4", 2.0)
	mustRecord(t, env.service, "AAAA1111", 2, "Rome", 2.0)

	progress, err := env.service.GameSessionSnapshot(ctx, "AAAA1111")
	if err != nil {
		t.Fatalf("session snapshot: %v", err)
	}
	if progress.ChallengeID != challenge.ID || progress.ChallengeName != "round 1" {
		t.Fatalf("unexpected challenge in snapshot: %+v", progress)
	}
	if progress.TotalAnswered != 2 || progress.TotalCorrect != 1 || progress.TotalFailed != 1 {
		t.Fatalf("unexpected totals: %+v", progress)
	}
}

func mustRecord(t *testing.T, service *app.LeaderboardService, code string, questionID int64, answer string, elapsed float64) {
	t.Helper()
	if _, err := service.RecordAnswer(context.Background(), code, questionID, answer, nil, elapsed); err != nil {
		t.Fatalf("record answer for %s: %v", code, err)
	}
}
