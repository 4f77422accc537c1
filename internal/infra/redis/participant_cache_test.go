package redis

import (
	"context"
	"testing"
	"time"

	"live-leaderboard-service/internal/domain"
	"live-leaderboard-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestParticipantCacheSetsAndReadsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backing := memory.NewParticipantDirectory([]domain.Participant{
		{ID: 7, Code: "AB12CD34", Name: "Alice", Active: true},
	})
	cache := NewParticipantCache(client, backing, time.Minute)

	participant, found, err := cache.ByCode(context.Background(), "ab12cd34")
	if err != nil || !found {
		t.Fatalf("expected participant, found=%v err=%v", found, err)
	}
	if participant.ID != 7 || participant.Name != "Alice" || !participant.Active {
		t.Fatalf("unexpected participant: %+v", participant)
	}
	if !mr.Exists("participant:AB12CD34") {
		t.Fatalf("expected redis key to be set")
	}

	// second lookup is served from redis
	participant, found, err = cache.ByCode(context.Background(), "AB12CD34")
	if err != nil || !found {
		t.Fatalf("cached lookup failed: found=%v err=%v", found, err)
	}
	if participant.ID != 7 || !participant.Active {
		t.Fatalf("cached participant mismatch: %+v", participant)
	}
}

func TestParticipantCacheUnknownCodeNotCached(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewParticipantCache(client, memory.NewParticipantDirectory(nil), time.Minute)

	_, found, err := cache.ByCode(context.Background(), "ZZZZ9999")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found {
		t.Fatalf("expected not found")
	}
	if mr.Exists("participant:ZZZZ9999") {
		t.Fatalf("unknown codes must not be cached")
	}
}
