package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/taskhive/backend/repository"
)

type flashRepository struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewFlashRepository creates a Redis-backed flash message store. Each
// session's pending messages live in a list that expires on its own if
// the user never loads another page.
func NewFlashRepository(client *redislib.Client, ttl time.Duration) repository.FlashRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &flashRepository{
		client: client,
		prefix: "flash:",
		ttl:    ttl,
	}
}

func (r *flashRepository) Push(ctx context.Context, sessionID, message string) error {
	key := r.key(sessionID)
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, message)
	pipe.Expire(ctx, key, r.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *flashRepository) Pop(ctx context.Context, sessionID string) ([]string, error) {
	key := r.key(sessionID)
	pipe := r.client.TxPipeline()
	lrange := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return lrange.Val(), nil
}

func (r *flashRepository) key(sessionID string) string {
	return fmt.Sprintf("%s%s", r.prefix, sessionID)
}
