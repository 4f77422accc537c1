package memory

import (
	"context"
	"testing"
	"time"

	"live-leaderboard-service/internal/domain"
)

func TestStatStoreAggregatesPerChallenge(t *testing.T) {
	ctx := context.Background()
	directory := NewParticipantDirectory([]domain.Participant{
		{ID: 1, Code: "AAAA1111", Name: "Alice", Active: true},
		{ID: 2, Code: "BBBB2222", Name: "Bob", Active: true},
	})
	store := NewStatStore(directory)

	ch1, ch2 := int64(1), int64(2)
	base := time.Now()
	rows := []domain.AnswerStat{
		{ParticipantID: 1, ChallengeID: &ch1, QuestionID: 10, Correct: true, ElapsedSec: 2.5, At: base},
		{ParticipantID: 1, ChallengeID: &ch1, QuestionID: 11, Correct: false, ElapsedSec: 1.5, At: base.Add(time.Second)},
		{ParticipantID: 2, ChallengeID: &ch1, QuestionID: 10, Correct: true, ElapsedSec: 3.0, At: base},
		{ParticipantID: 1, ChallengeID: &ch2, QuestionID: 12, Correct: true, ElapsedSec: 9.0, At: base.Add(2 * time.Second)},
	}
	for _, r := range rows {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	stats, err := store.ChallengeStats(ctx, ch1)
	if err != nil {
		t.Fatalf("challenge stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(stats))
	}
	// ascending participant id
	if stats[0].ParticipantID != 1 || stats[1].ParticipantID != 2 {
		t.Fatalf("expected id order 1,2 got %+v", stats)
	}
	alice := stats[0]
	if alice.TotalAnswered != 2 || alice.TotalCorrect != 1 || alice.TotalFailed != 1 || alice.TotalTime != 4.0 {
		t.Fatalf("unexpected aggregate for alice: %+v", alice)
	}
	if alice.Code != "AAAA1111" || alice.Name != "Alice" {
		t.Fatalf("expected identity join, got %+v", alice)
	}
	if alice.LastQuestionID == nil || *alice.LastQuestionID != 11 {
		t.Fatalf("expected last question 11, got %v", alice.LastQuestionID)
	}
}

func TestStatStoreUnscopedParticipantStats(t *testing.T) {
	ctx := context.Background()
	directory := NewParticipantDirectory([]domain.Participant{
		{ID: 1, Code: "AAAA1111", Name: "Alice", Active: true},
	})
	store := NewStatStore(directory)

	ch := int64(1)
	_ = store.Append(ctx, domain.AnswerStat{ParticipantID: 1, ChallengeID: &ch, QuestionID: 1, Correct: true, At: time.Now()})
	_ = store.Append(ctx, domain.AnswerStat{ParticipantID: 1, QuestionID: 2, Correct: false, At: time.Now()})

	stats, err := store.ParticipantStats(ctx, []int64{1})
	if err != nil {
		t.Fatalf("participant stats: %v", err)
	}
	if len(stats) != 1 || stats[0].TotalAnswered != 2 {
		t.Fatalf("expected challenge-less rows included, got %+v", stats)
	}
}
