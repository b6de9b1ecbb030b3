package redisstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/divyansh1004/Manthan/internal/domain"
	"github.com/divyansh1004/Manthan/internal/repository"
)

// rosterTTL bounds staleness if an invalidation is ever missed.
const rosterTTL = 15 * time.Minute

// RedisRosterCache is the Redis implementation of RosterCache. Classrooms
// are stored as JSON under <prefix>classroom:<code>.
type RedisRosterCache struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisRosterCache(client *redis.Client, keyPrefix string) *RedisRosterCache {
	if client == nil {
		panic("redis client cannot be nil for RedisRosterCache")
	}
	if keyPrefix == "" {
		keyPrefix = "mn:"
	}
	return &RedisRosterCache{client: client, keyPrefix: keyPrefix}
}

func (r *RedisRosterCache) classroomKey(code string) string {
	return fmt.Sprintf("%sclassroom:%s", r.keyPrefix, code)
}

func (r *RedisRosterCache) GetByCode(ctx context.Context, code string) (*domain.Classroom, error) {
	key := r.classroomKey(code)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get classroom '%s' from %s: %w", code, key, err)
	}
	var classroom domain.Classroom
	if err := json.Unmarshal(data, &classroom); err != nil {
		// A corrupt entry is as good as a miss; drop it.
		_ = r.client.Del(ctx, key).Err()
		return nil, repository.ErrNotFound
	}
	return &classroom, nil
}

func (r *RedisRosterCache) Set(ctx context.Context, classroom *domain.Classroom) error {
	data, err := json.Marshal(classroom)
	if err != nil {
		return fmt.Errorf("redis: marshal classroom '%s': %w", classroom.Code, err)
	}
	key := r.classroomKey(classroom.Code)
	if err := r.client.Set(ctx, key, data, rosterTTL).Err(); err != nil {
		return fmt.Errorf("redis: set classroom '%s' at %s: %w", classroom.Code, key, err)
	}
	return nil
}

func (r *RedisRosterCache) Invalidate(ctx context.Context, code string) error {
	key := r.classroomKey(code)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis: invalidate classroom '%s' at %s: %w", code, key, err)
	}
	return nil
}

// Codes scans for every cached classroom key and returns the join codes.
func (r *RedisRosterCache) Codes(ctx context.Context) ([]string, error) {
	pattern := r.classroomKey("*")
	prefix := r.classroomKey("")

	var codes []string
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("redis: scan cached classrooms: %w", err)
		}
		for _, key := range keys {
			codes = append(codes, strings.TrimPrefix(key, prefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return codes, nil
}
