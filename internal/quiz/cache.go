package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 5 * time.Minute

// RedisCache keeps recently validated quizzes so repeated topics skip the provider.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Cache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// CacheKey normalizes topic casing and whitespace so "History" and " history " share an entry.
func CacheKey(req Request) string {
	topic := strings.ToLower(strings.Join(strings.Fields(req.Topic), " "))
	return strings.Join([]string{
		"quiz",
		fmt.Sprint(int(req.Level)),
		fmt.Sprint(req.ExpectedCount),
		topic,
	}, ":")
}

func (c *RedisCache) Get(ctx context.Context, req Request) ([]Question, error) {
	data, err := c.client.Get(ctx, CacheKey(req)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (c *RedisCache) Set(ctx context.Context, req Request, questions []Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, CacheKey(req), data, c.ttl).Err()
}
