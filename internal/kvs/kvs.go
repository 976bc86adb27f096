// Package kvs provides the TTL key-value store backing tokens, codes, bindings and challenges.
//
// All single-use semantics rely on server-side Lua scripts so that check-and-delete is atomic
// across every instance of the service. Expiry is enforced by the store's per-key TTL.
package kvs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/bouncr/iam/internal/errors"
)

var (
	// ErrKeyNotFound indicates the key does not exist or its TTL elapsed. The two are indistinguishable.
	ErrKeyNotFound = apperrors.Wrap(apperrors.ErrNotFound, "key not found")

	// ErrAlreadyConsumed indicates a single-use key was consumed by another caller.
	ErrAlreadyConsumed = apperrors.Wrap(apperrors.ErrConflict, "key already consumed")
)

const consumedSuffix = ":consumed"

// consumeScript returns {1, value} for the winner, {2} when a tombstone shows the key was
// already consumed and {0} when the key never existed or expired.
var consumeScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if v then
  redis.call('DEL', KEYS[1])
  redis.call('SET', KEYS[2], '1', 'PX', ARGV[1])
  return {1, v}
end
if redis.call('EXISTS', KEYS[2]) == 1 then
  return {2}
end
return {0}
`)

// replaceScript stores a value under KEYS[2] and points KEYS[1] at it, deleting whatever key the
// index pointed to before.
var replaceScript = redis.NewScript(`
local old = redis.call('GET', KEYS[1])
if old and old ~= KEYS[2] then
  redis.call('DEL', old)
end
redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[2])
redis.call('SET', KEYS[1], KEYS[2], 'PX', ARGV[2])
return 1
`)

var incrementScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// Config holds connection settings for the key-value store.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Connect creates a client and verifies the connection with a PING.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping key-value store: %w", err)
	}

	return client, nil
}

// Store wraps a Redis client with the primitives the domain needs.
type Store struct {
	client redis.UniversalClient
}

// NewStore creates a Store over the given client.
func NewStore(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

// Set stores value under key with the given TTL, overwriting any previous value.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return apperrors.Wrap(err, "failed to set key")
	}
	return nil
}

// SetNX stores value only if key does not exist. It reports whether the value was stored.
func (s *Store) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to set key if absent")
	}
	return ok, nil
}

// Get returns the value stored under key or ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get key")
	}
	return value, nil
}

// Delete removes the given keys. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return apperrors.Wrap(err, "failed to delete keys")
	}
	return nil
}

// Consume atomically reads and deletes key. Exactly one concurrent caller receives the value;
// the others get ErrAlreadyConsumed while the tombstone lives (tombstoneTTL), ErrKeyNotFound after.
func (s *Store) Consume(ctx context.Context, key string, tombstoneTTL time.Duration) ([]byte, error) {
	res, err := consumeScript.Run(
		ctx, s.client,
		[]string{key, key + consumedSuffix},
		tombstoneTTL.Milliseconds(),
	).Slice()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to consume key")
	}

	status, _ := res[0].(int64)
	switch status {
	case 1:
		value, ok := res[1].(string)
		if !ok {
			return nil, apperrors.New("unexpected consume payload")
		}
		return []byte(value), nil
	case 2:
		return nil, ErrAlreadyConsumed
	default:
		return nil, ErrKeyNotFound
	}
}

// WasConsumed reports whether a tombstone for key is still live.
func (s *Store) WasConsumed(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key+consumedSuffix).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check tombstone")
	}
	return n == 1, nil
}

// Replace stores value under key and records key in indexKey, deleting the key previously
// recorded there. It keeps at most one live key per index.
func (s *Store) Replace(ctx context.Context, indexKey, key string, value []byte, ttl time.Duration) error {
	err := replaceScript.Run(ctx, s.client, []string{indexKey, key}, value, ttl.Milliseconds()).Err()
	if err != nil {
		return apperrors.Wrap(err, "failed to replace key")
	}
	return nil
}

// Increment adds one to the counter at key. The TTL starts when the counter is created.
func (s *Store) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := incrementScript.Run(ctx, s.client, []string{key}, ttl.Milliseconds()).Int64()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to increment key")
	}
	return n, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
