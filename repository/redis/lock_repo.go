package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskpulse/repository"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redislib.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type jobLock struct {
	client *redislib.Client
	prefix string
}

// NewJobLock creates a Redis-backed lock keyed by job name.
func NewJobLock(client *redislib.Client) repository.JobLock {
	return &jobLock{
		client: client,
		prefix: "job:lock:",
	}
}

func (l *jobLock) Acquire(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	token := uuid.NewString()
	key := l.key(name)

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}
	return release, true, nil
}

func (l *jobLock) key(name string) string {
	return fmt.Sprintf("%s%s", l.prefix, name)
}
