package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-gateway/internal/account/models"
	"account-gateway/pkg/platform/sentinel"
)

func TestHashRecords(t *testing.T) {
	store := New()
	ctx := context.Background()

	t.Run("Find for missing id returns ErrNotFound", func(t *testing.T) {
		_, err := store.Find(ctx, "missing")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("Save overwrites, not appends", func(t *testing.T) {
		first := &models.HashRecord{ID: "h1", Tokens: 20, Email: "a@b.com", CreatedAt: time.Now()}
		require.NoError(t, store.Save(ctx, first))

		second := &models.HashRecord{ID: "h1", Tokens: 5, Email: "a@b.com", CreatedAt: time.Now()}
		require.NoError(t, store.Save(ctx, second))

		got, err := store.Find(ctx, "h1")
		require.NoError(t, err)
		assert.Equal(t, int64(5), got.Tokens, "latest write wins")
	})
}

func TestUserRecords(t *testing.T) {
	store := New()
	ctx := context.Background()

	t.Run("Get for missing uid returns ErrNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("AddTokens for missing uid aborts without creating a record", func(t *testing.T) {
		_, err := store.AddTokens(ctx, "ghost", 50)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		_, err = store.Get(ctx, "ghost")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("AddTokens defaults a missing balance to zero", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, &models.UserRecord{UID: "u-empty"}))

		balance, err := store.AddTokens(ctx, "u-empty", 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), balance)
	})

	t.Run("AddTokens accumulates", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, &models.UserRecord{
			UID:    "u1",
			Tokens: map[string]int64{models.PremiumTokenField: 100},
		}))

		balance, err := store.AddTokens(ctx, "u1", 50)
		require.NoError(t, err)
		assert.Equal(t, int64(150), balance)

		got, err := store.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(150), got.PremiumTokens())
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, &models.UserRecord{UID: "u2"}))
		require.NoError(t, store.Delete(ctx, "u2"))
		require.NoError(t, store.Delete(ctx, "u2"))

		_, err := store.Get(ctx, "u2")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("Get returns a copy", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, &models.UserRecord{
			UID:    "u3",
			Tokens: map[string]int64{models.PremiumTokenField: 10},
		}))

		got, err := store.Get(ctx, "u3")
		require.NoError(t, err)
		got.Tokens[models.PremiumTokenField] = 999

		again, err := store.Get(ctx, "u3")
		require.NoError(t, err)
		assert.Equal(t, int64(10), again.PremiumTokens())
	})
}

func TestAddTokens_Concurrent(t *testing.T) {
	store := New()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, &models.UserRecord{
		UID:    "u1",
		Tokens: map[string]int64{models.PremiumTokenField: 100},
	}))

	const goroutines = 100
	const amount = 3

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			_, err := store.AddTokens(ctx, "u1", amount)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(100+goroutines*amount), got.PremiumTokens(),
		"concurrent increments must not lose updates")
}
