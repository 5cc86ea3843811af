package catalog

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/theater-billing/internal/theater"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func storeContract(t *testing.T, store Store) {
	ctx := context.Background()
	hamlet := theater.Play{Name: "Hamlet", Type: theater.GenreTragedy}
	asLike := theater.Play{Name: "As You Like It", Type: theater.GenreComedy}

	require.NoError(t, Seed(ctx, store, theater.Plays{"hamlet": hamlet, "as-like": asLike}))

	got, err := store.Get(ctx, "hamlet")
	require.NoError(t, err)
	require.Equal(t, hamlet, got)

	_, err = store.Get(ctx, "macbeth")
	require.ErrorIs(t, err, theater.ErrUnknownPlay)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, theater.Plays{"hamlet": hamlet, "as-like": asLike}, all)

	require.Error(t, store.Put(ctx, "", hamlet))

	require.NoError(t, store.Delete(ctx, "hamlet"))
	require.ErrorIs(t, store.Delete(ctx, "hamlet"), theater.ErrUnknownPlay)
	_, err = store.Get(ctx, "hamlet")
	require.ErrorIs(t, err, theater.ErrUnknownPlay)
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	store, _ := newRedisStore(t, 0)
	storeContract(t, store)
	require.NoError(t, store.Ping(context.Background()))
}

func TestRedisStoreExpiryPrunesIndex(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "othello", theater.Play{Name: "Othello", Type: theater.GenreTragedy}))

	mr.FastForward(2 * time.Minute)

	plays, err := store.List(ctx)
	require.NoError(t, err)
	require.Empty(t, plays)

	if members, err := mr.Members("catalog:plays"); err == nil {
		require.Empty(t, members)
	}
}

func TestRedisStoreStoresGenreTag(t *testing.T) {
	store, mr := newRedisStore(t, 0)
	require.NoError(t, store.Put(context.Background(), "as-like", theater.Play{Name: "As You Like It", Type: theater.GenreComedy}))
	raw, err := mr.Get("catalog:play:as-like")
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"As You Like It","type":"comedy"}`, raw)
}

func TestRedisStoreRejectsCorruptGenre(t *testing.T) {
	store, mr := newRedisStore(t, 0)
	require.NoError(t, mr.Set("catalog:play:henry-v", `{"name":"Henry V","type":"history"}`))
	_, err := store.Get(context.Background(), "henry-v")
	require.ErrorIs(t, err, theater.ErrUnknownPlayType)
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, Seed(ctx, store, theater.Plays{
		"hamlet":  {Name: "Hamlet", Type: theater.GenreTragedy},
		"othello": {Name: "Othello", Type: theater.GenreTragedy},
		"as-like": {Name: "As You Like It", Type: theater.GenreComedy},
	}))

	inv := theater.Invoice{Customer: "BigCo", Performances: []theater.Performance{
		{PlayID: "hamlet", Audience: 55},
		{PlayID: "hamlet", Audience: 20},
		{PlayID: "othello", Audience: 40},
	}}
	plays, err := Snapshot(ctx, store, inv)
	require.NoError(t, err)
	require.Len(t, plays, 2)
	require.Contains(t, plays, "hamlet")
	require.NotContains(t, plays, "as-like")

	inv.Performances = append(inv.Performances, theater.Performance{PlayID: "macbeth", Audience: 1})
	_, err = Snapshot(ctx, store, inv)
	require.ErrorIs(t, err, theater.ErrUnknownPlay)
}
