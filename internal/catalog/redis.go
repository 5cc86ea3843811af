package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/theater-billing/internal/theater"
)

const defaultRedisPrefix = "catalog:"

// RedisStore keeps plays as JSON values with an index set of identifiers.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore constructs a Redis-backed store. A non-positive ttl keeps entries forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, prefix: defaultRedisPrefix}
}

func (s *RedisStore) playKey(id string) string { return s.prefix + "play:" + id }

func (s *RedisStore) indexKey() string { return s.prefix + "plays" }

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, id string) (theater.Play, error) {
	if s == nil || s.client == nil {
		return theater.Play{}, errors.New("catalog redis client not configured")
	}
	data, err := s.client.Get(ctx, s.playKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return theater.Play{}, fmt.Errorf("%w: %s", theater.ErrUnknownPlay, id)
		}
		return theater.Play{}, err
	}
	var play theater.Play
	if err := json.Unmarshal(data, &play); err != nil {
		return theater.Play{}, fmt.Errorf("decode play %s: %w", id, err)
	}
	return play, nil
}

// List implements Store. Index entries whose value has expired are pruned.
func (s *RedisStore) List(ctx context.Context) (theater.Plays, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("catalog redis client not configured")
	}
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, err
	}
	plays := make(theater.Plays, len(ids))
	if len(ids) == 0 {
		return plays, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.playKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	var stale []any
	for i, raw := range values {
		str, ok := raw.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var play theater.Play
		if err := json.Unmarshal([]byte(str), &play); err != nil {
			return nil, fmt.Errorf("decode play %s: %w", ids[i], err)
		}
		plays[ids[i]] = play
	}
	if len(stale) > 0 {
		if err := s.client.SRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			return nil, err
		}
	}
	return plays, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, id string, play theater.Play) error {
	if s == nil || s.client == nil {
		return errors.New("catalog redis client not configured")
	}
	if id == "" {
		return errEmptyID
	}
	data, err := json.Marshal(play)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.playKey(id), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), id)
	_, err = pipe.Exec(ctx)
	return err
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.client == nil {
		return errors.New("catalog redis client not configured")
	}
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, s.playKey(id))
	pipe.SRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	if del.Val() == 0 {
		return fmt.Errorf("%w: %s", theater.ErrUnknownPlay, id)
	}
	return nil
}

// Ping reports whether the backing Redis instance is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return errors.New("catalog redis client not configured")
	}
	return s.client.Ping(ctx).Err()
}
