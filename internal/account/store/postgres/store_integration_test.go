//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	platformpg "account-gateway/internal/platform/postgres"

	"account-gateway/internal/account/models"
	"account-gateway/pkg/platform/sentinel"
)

func newPostgresStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("accounts"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, RunMigrations(ctx, dsn))

	pool, err := platformpg.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return New(pool)
}

func TestPostgresStore(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	t.Run("hash records overwrite on duplicate saves", func(t *testing.T) {
		record := &models.HashRecord{ID: "h1", Tokens: 20, Email: "a@b.com", CreatedAt: time.Now().UTC()}
		require.NoError(t, store.Save(ctx, record))

		record.Tokens = 5
		require.NoError(t, store.Save(ctx, record))

		got, err := store.Find(ctx, "h1")
		require.NoError(t, err)
		assert.Equal(t, int64(5), got.Tokens)
	})

	t.Run("missing records return ErrNotFound", func(t *testing.T) {
		_, err := store.Find(ctx, "missing")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		_, err = store.Get(ctx, "missing")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		_, err = store.AddTokens(ctx, "missing", 5)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, &models.UserRecord{UID: "gone"}))
		require.NoError(t, store.Delete(ctx, "gone"))
		require.NoError(t, store.Delete(ctx, "gone"))
	})

	t.Run("add tokens defaults absent balance to zero", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, &models.UserRecord{UID: "fresh"}))

		balance, err := store.AddTokens(ctx, "fresh", 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), balance)

		got, err := store.Get(ctx, "fresh")
		require.NoError(t, err)
		assert.Equal(t, int64(7), got.PremiumTokens())
	})

	t.Run("concurrent credits never lose updates", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, &models.UserRecord{
			UID:    "u1",
			Tokens: map[string]int64{models.PremiumTokenField: 100},
		}))

		const goroutines = 20
		const amount = 5

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
		assert.Equal(t, int64(100+goroutines*amount), got.PremiumTokens())
	})
}
