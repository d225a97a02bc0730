package wrapped

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, time.Hour), mr
}

func TestStores(t *testing.T) {
	redisStore, _ := newRedisStore(t)
	stores := map[string]Store{
		"redis":  redisStore,
		"memory": NewMemoryStore(),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess := NewSession(4)
			require.NoError(t, store.Create(ctx, sess))
			require.Error(t, store.Create(ctx, sess))

			got, err := store.Get(ctx, sess.ID)
			require.NoError(t, err)
			require.Equal(t, int64(4), got.OwnerID)
			require.Equal(t, StateBrowsing, got.State)

			updated, err := store.Update(ctx, sess.ID, func(s *Session) error { return s.Select("red-flags") })
			require.NoError(t, err)
			require.Equal(t, []string{"red-flags"}, updated.Selected)

			_, err = store.Update(ctx, sess.ID, func(s *Session) error {
				s.Selected = nil
				return errors.New("rejected")
			})
			require.Error(t, err)
			got, err = store.Get(ctx, sess.ID)
			require.NoError(t, err)
			require.Equal(t, []string{"red-flags"}, got.Selected)

			require.NoError(t, store.Delete(ctx, sess.ID))
			_, err = store.Get(ctx, sess.ID)
			require.ErrorIs(t, err, ErrSessionNotFound)
			_, err = store.Update(ctx, sess.ID, func(*Session) error { return nil })
			require.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestRedisStoreExpires(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	sess := NewSession(1)
	require.NoError(t, store.Create(ctx, sess))

	mr.FastForward(2 * time.Hour)
	_, err := store.Get(ctx, sess.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStoreSingleGenerationWins(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()
	sess := NewSession(1)
	require.NoError(t, sess.Select("total-dates"))
	require.NoError(t, store.Create(ctx, sess))

	var wg sync.WaitGroup
	var mu sync.Mutex
	started := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, sess.ID, func(s *Session) error { return s.BeginGeneration() })
			if err == nil {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, started)
}
