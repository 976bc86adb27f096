package kvs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), mr
}

func TestConnect(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
		require.NoError(t, err)
		defer func() { _ = client.Close() }()
	})

	t.Run("Error_Unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		client, err := Connect(context.Background(), Config{Addr: addr})
		assert.Error(t, err)
		assert.Nil(t, client)
	})
}

func TestStore_SetGetDelete(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "session:a", []byte("payload"), time.Minute))

	value, err := store.Get(ctx, "session:a")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), value)

	mr.FastForward(time.Minute)
	_, err = store.Get(ctx, "session:a")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "session:b", []byte("payload"), time.Minute))
	require.NoError(t, store.Delete(ctx, "session:b", "session:missing"))
	_, err = store.Get(ctx, "session:b")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.NoError(t, store.Delete(ctx))
}

func TestStore_SetNX(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ok, err := store.SetNX(ctx, "otp:used", []byte("1"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.SetNX(ctx, "otp:used", []byte("1"), time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Consume(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_FirstCallerWins", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.Set(ctx, "code:x", []byte("principal"), time.Minute))

		value, err := store.Consume(ctx, "code:x", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, []byte("principal"), value)

		_, err = store.Consume(ctx, "code:x", time.Minute)
		assert.ErrorIs(t, err, ErrAlreadyConsumed)
	})

	t.Run("Success_TombstoneVisible", func(t *testing.T) {
		store, mr := newTestStore(t)
		require.NoError(t, store.Set(ctx, "code:t", []byte("p"), time.Minute))

		consumed, err := store.WasConsumed(ctx, "code:t")
		require.NoError(t, err)
		assert.False(t, consumed)

		_, err = store.Consume(ctx, "code:t", time.Minute)
		require.NoError(t, err)
		consumed, err = store.WasConsumed(ctx, "code:t")
		require.NoError(t, err)
		assert.True(t, consumed)

		mr.FastForward(time.Minute)
		consumed, err = store.WasConsumed(ctx, "code:t")
		require.NoError(t, err)
		assert.False(t, consumed)
	})

	t.Run("Error_UnknownKey", func(t *testing.T) {
		store, _ := newTestStore(t)
		_, err := store.Consume(ctx, "code:unknown", time.Minute)
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("Error_ExpiredKeyLooksUnknown", func(t *testing.T) {
		store, mr := newTestStore(t)
		require.NoError(t, store.Set(ctx, "code:y", []byte("p"), time.Second))
		mr.FastForward(2 * time.Second)

		_, err := store.Consume(ctx, "code:y", time.Minute)
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("Success_ExactlyOneWinnerUnderRace", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.Set(ctx, "code:race", []byte("p"), time.Minute))

		const callers = 16
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			winners  int
			consumed int
		)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Consume(ctx, "code:race", time.Minute)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					winners++
				case assert.ErrorIs(t, err, ErrAlreadyConsumed):
					consumed++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, winners)
		assert.Equal(t, callers-1, consumed)
	})
}

func TestStore_Replace(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Replace(ctx, "reset:user:1", "reset:first", []byte("1"), time.Hour))
	require.NoError(t, store.Replace(ctx, "reset:user:1", "reset:second", []byte("1"), time.Hour))

	_, err := store.Get(ctx, "reset:first")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	value, err := store.Get(ctx, "reset:second")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), value)
}

func TestStore_Increment(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, err := store.Increment(ctx, "signin:failures:alice", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	mr.FastForward(time.Minute)
	n, err := store.Increment(ctx, "signin:failures:alice", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
