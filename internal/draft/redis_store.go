package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each draft in a string key and indexes the names in a
// sorted set scored by last update time.
type RedisStore struct {
	client *redis.Client
	prefix string
	index  string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore connects to redisURL. A zero ttl keeps drafts forever.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisStoreWithClient(client, ttl), nil
}

func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "contentlab:draft:",
		index:  "contentlab:drafts",
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

func (s *RedisStore) indexKey() string {
	return s.index
}

func (s *RedisStore) Save(ctx context.Context, name, data string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	updated := s.now()
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(name), data, s.ttl)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(updated.UnixMilli()), Member: name})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save draft %s: %w", name, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	data, err := s.client.Get(ctx, s.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("load draft %s: %w", name, err)
	}
	return data, nil
}

// List returns drafts most recently updated first. Index entries whose
// draft has expired are pruned.
func (s *RedisStore) List(ctx context.Context) ([]Info, error) {
	entries, err := s.client.ZRevRangeWithScores(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}

	sizes := make([]*redis.IntCmd, len(entries))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, entry := range entries {
			sizes[i] = pipe.StrLen(ctx, s.key(entry.Member.(string)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}

	infos := make([]Info, 0, len(entries))
	var stale []any
	for i, entry := range entries {
		name := entry.Member.(string)
		size := sizes[i].Val()
		if size == 0 {
			stale = append(stale, name)
			continue
		}
		infos = append(infos, Info{
			Name:      name,
			UpdatedAt: time.UnixMilli(int64(entry.Score)).UTC(),
			Size:      size,
		})
	}
	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			return nil, fmt.Errorf("prune draft index: %w", err)
		}
	}
	return infos, nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	var removed *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.Del(ctx, s.key(name))
		pipe.ZRem(ctx, s.indexKey(), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete draft %s: %w", name, err)
	}
	if removed.Val() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
