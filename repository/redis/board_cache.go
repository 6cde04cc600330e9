package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

type boardListCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewBoardListCache caches board columns in Redis for ttl.
func NewBoardListCache(client *redislib.Client, ttl time.Duration) repository.BoardListCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &boardListCache{
		client: client,
		prefix: "board:lists:",
		ttl:    ttl,
	}
}

func (c *boardListCache) Get(ctx context.Context, boardID string) ([]domain.BoardList, error) {
	result, err := c.client.Get(ctx, c.key(boardID)).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, nil
		}
		return nil, err
	}

	var lists []domain.BoardList
	if err := json.Unmarshal([]byte(result), &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

func (c *boardListCache) Set(ctx context.Context, boardID string, lists []domain.BoardList) error {
	payload, err := json.Marshal(lists)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(boardID), payload, c.ttl).Err()
}

func (c *boardListCache) Invalidate(ctx context.Context, boardID string) error {
	return c.client.Del(ctx, c.key(boardID)).Err()
}

func (c *boardListCache) key(boardID string) string {
	return fmt.Sprintf("%s%s", c.prefix, boardID)
}
