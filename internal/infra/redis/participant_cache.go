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

// ParticipantCache is a read-through cache over the account directory.
// Identity is stored as: HSET participant:{CODE} id {id} name {name} active {0|1}.
// Unknown codes are not cached, so a participant registered mid-round is
// picked up on the next lookup.
type ParticipantCache struct {
	client  *redis.Client
	backing app.ParticipantDirectory
	ttl     time.Duration
	sf      singleflight.Group
}

func NewParticipantCache(client *redis.Client, backing app.ParticipantDirectory, ttl time.Duration) *ParticipantCache {
	return &ParticipantCache{
		client:  client,
		backing: backing,
		ttl:     ttl,
	}
}

func (c *ParticipantCache) ByCode(ctx context.Context, code string) (domain.Participant, bool, error) {
	normalized := domain.NormalizeCode(code)
	key := c.key(normalized)

	if fields, err := c.client.HGetAll(ctx, key).Result(); err == nil && len(fields) > 0 {
		return participantFromFields(normalized, fields), true, nil
	}

	type lookup struct {
		participant domain.Participant
		found       bool
	}
	result, err, _ := c.sf.Do(normalized, func() (interface{}, error) {
		if fields, err := c.client.HGetAll(ctx, key).Result(); err == nil && len(fields) > 0 {
			return lookup{participantFromFields(normalized, fields), true}, nil
		}

		participant, found, err := c.backing.ByCode(ctx, normalized)
		if err != nil {
			return lookup{}, err
		}
		if !found {
			return lookup{}, nil
		}

		active := "0"
		if participant.Active {
			active = "1"
		}
		pipe := c.client.Pipeline()
		pipe.HSet(ctx, key,
			"id", strconv.FormatInt(participant.ID, 10),
			"name", participant.Name,
			"active", active)
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttlWithJitter())
		}
		_, _ = pipe.Exec(ctx)
		return lookup{participant, true}, nil
	})
	if err != nil {
		return domain.Participant{}, false, err
	}
	l := result.(lookup)
	return l.participant, l.found, nil
}

func (c *ParticipantCache) key(code string) string {
	return "participant:" + code
}

func participantFromFields(code string, fields map[string]string) domain.Participant {
	id, _ := strconv.ParseInt(fields["id"], 10, 64)
	return domain.Participant{
		ID:     id,
		Code:   code,
		Name:   fields["name"],
		Active: fields["active"] == "1",
	}
}

func (c *ParticipantCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
