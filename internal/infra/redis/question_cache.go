package redis

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"live-leaderboard-service/internal/app"
	"live-leaderboard-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// AnswerCache is a read-through cache over a QuestionStore. Correct answers
// are stored as: HSET questions:answers {questionID} {answer}. Every single
// answer submission hits this path, so misses are collapsed with
// singleflight.
type AnswerCache struct {
	client  *redis.Client
	backing app.QuestionStore
	ttl     time.Duration
	sf      singleflight.Group
}

func NewAnswerCache(client *redis.Client, backing app.QuestionStore, ttl time.Duration) *AnswerCache {
	return &AnswerCache{
		client:  client,
		backing: backing,
		ttl:     ttl,
	}
}

func (c *AnswerCache) CorrectAnswer(ctx context.Context, questionID int64) (string, error) {
	field := strconv.FormatInt(questionID, 10)
	if answer, err := c.client.HGet(ctx, answersKey, field).Result(); err == nil {
		return answer, nil
	}

	result, err, _ := c.sf.Do(field, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if answer, err := c.client.HGet(ctx, answersKey, field).Result(); err == nil {
			return answer, nil
		}

		answer, err := c.backing.CorrectAnswer(ctx, questionID)
		if err != nil {
			return "", err
		}

		pipe := c.client.Pipeline()
		pipe.HSet(ctx, answersKey, field, answer)
		if c.ttl > 0 {
			pipe.Expire(ctx, answersKey, c.ttlWithJitter())
		}
		_, _ = pipe.Exec(ctx)
		return answer, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// Random is not cached; question sets are refetched per request on purpose.
func (c *AnswerCache) Random(ctx context.Context, limit int) ([]domain.Question, error) {
	return c.backing.Random(ctx, limit)
}

const answersKey = "questions:answers"

func (c *AnswerCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations; the shared rand source is
	// safe for concurrent fills
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
