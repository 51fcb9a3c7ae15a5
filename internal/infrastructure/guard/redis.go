package guard

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "proposal:decision:"

// releaseScript deletes the lock only while it still holds this holder's token, so an
// expired lock taken over by another instance is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisGuard serialises decisions on one proposal across server instances with a
// short-lived SET NX lock.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) (*RedisGuard, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if ttl <= 0 {
		return nil, errors.New("guard ttl must be positive")
	}
	return &RedisGuard{client: client, ttl: ttl}, nil
}

func (g *RedisGuard) Acquire(ctx context.Context, proposalID uuid.UUID) (func(), bool, error) {
	key := Key(proposalID)
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, g.client, []string{key}, token).Err()
	}
	return release, true, nil
}

func Key(proposalID uuid.UUID) string {
	return keyPrefix + proposalID.String()
}
