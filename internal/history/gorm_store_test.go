package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) *GormStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("test_llmbench"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = ctr.Terminate(ctx)
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := OpenPostgres(dsn)
	require.NoError(t, err)
	store, err := NewGormStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGormStore(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	first := rec("11111111-aaaa", "first", base)
	first.Warnings = []string{"Provider gemini unavailable"}
	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, rec("22222222-bbbb", "second", base.Add(time.Minute))))
	require.NoError(t, store.Append(ctx, rec("22222222-cccc", "third", base.Add(2*time.Minute))))

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Query)

	limited, err := store.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	got, err := store.Get(ctx, "11111111")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Query)
	assert.Equal(t, []string{"Provider gemini unavailable"}, got.Warnings)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "gpt-4", got.Results[0].Model)

	_, err = store.Get(ctx, "22222222")
	assert.ErrorIs(t, err, ErrAmbiguous)

	_, err = store.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Clear(ctx))
	all, err = store.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}
