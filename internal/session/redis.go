package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisKeyPrefix    = "gradecalc:session:"
	maxUpdateAttempts = 5
)

var errConflict = errors.New("session was modified concurrently")

// RedisStore keeps sessions as JSON values with a sliding TTL. Updates use
// optimistic WATCH/MULTI transactions and retry on conflict.
type RedisStore struct {
	client   *redis.Client
	ttl      time.Duration
	greeting string
	logger   *zap.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, greeting string, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, ttl: ttl, greeting: greeting, logger: logger}
}

// NewRedisClient connects and pings, closing the client when the ping fails.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func key(id string) string { return redisKeyPrefix + id }

func (r *RedisStore) Load(ctx context.Context, id string) (State, error) {
	return r.get(ctx, r.client, id)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisStore) get(ctx context.Context, c getter, id string) (State, error) {
	raw, err := c.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewState(id, r.greeting), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("redis get session %s: %w", id, err)
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return st, nil
}

func (r *RedisStore) Update(ctx context.Context, id string, fn func(*State) error) (State, error) {
	k := key(id)
	var result State

	txf := func(tx *redis.Tx) error {
		st, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(&st); err != nil {
			return err
		}
		st.ID = id
		st.UpdatedAt = time.Now().UTC()

		payload, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("marshal session %s: %w", id, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, payload, r.ttl)
			return nil
		})
		if errors.Is(err, redis.TxFailedErr) {
			return errConflict
		}
		if err != nil {
			return fmt.Errorf("redis save session %s: %w", id, err)
		}
		result = st
		return nil
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, k)
		if !errors.Is(err, errConflict) {
			if err != nil {
				return State{}, err
			}
			return result, nil
		}
		r.logger.Debug("session update conflict, retrying", zap.String("session_id", id), zap.Int("attempt", attempt))
	}
	return State{}, fmt.Errorf("update session %s: %w", id, errConflict)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session %s: %w", id, err)
	}
	return nil
}
