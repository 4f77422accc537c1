package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"live-leaderboard-service/internal/domain"
	"live-leaderboard-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestAnswerCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backing := &countingQuestions{
		QuestionStore: memory.NewQuestionStore([]domain.Question{
			{ID: 1, Text: "What is 2 + 2?", CorrectAnswer: "4"},
		}),
	}
	cache := NewAnswerCache(client, backing, time.Minute)

	answer, err := cache.CorrectAnswer(context.Background(), 1)
	if err != nil {
		t.Fatalf("correct answer: %v", err)
	}
	if answer != "4" {
		t.Fatalf("expected 4, got %q", answer)
	}
	if backing.calls != 1 {
		t.Fatalf("expected one backing call, got %d", backing.calls)
	}
	if got := mr.HGet(answersKey, "1"); got != "4" {
		t.Fatalf("expected answer cached in redis, got %q", got)
	}

	if _, err := cache.CorrectAnswer(context.Background(), 1); err != nil {
		t.Fatalf("cached lookup: %v", err)
	}
	if backing.calls != 1 {
		t.Fatalf("expected cache hit, backing calls %d", backing.calls)
	}
}

func TestAnswerCacheUnknownQuestion(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewAnswerCache(client, memory.NewQuestionStore(nil), time.Minute)

	if _, err := cache.CorrectAnswer(context.Background(), 42); err != domain.ErrQuestionNotFound {
		t.Fatalf("expected question-not-found, got %v", err)
	}
}

func TestAnswerCacheConcurrentFills(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	questions := make([]domain.Question, 0, 16)
	for i := int64(1); i <= 16; i++ {
		questions = append(questions, domain.Question{ID: i, Text: "q", CorrectAnswer: "a"})
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewAnswerCache(client, memory.NewQuestionStore(questions), time.Minute)

	var wg sync.WaitGroup
	for i := int64(1); i <= 16; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			answer, err := cache.CorrectAnswer(context.Background(), id)
			if err != nil {
				t.Errorf("correct answer %d: %v", id, err)
				return
			}
			if answer != "a" {
				t.Errorf("question %d: expected a, got %q", id, answer)
			}
		}(i)
	}
	wg.Wait()
}

type countingQuestions struct {
	*memory.QuestionStore
	calls int
}

func (c *countingQuestions) CorrectAnswer(ctx context.Context, questionID int64) (string, error) {
	c.calls++
	return c.QuestionStore.CorrectAnswer(ctx, questionID)
}
