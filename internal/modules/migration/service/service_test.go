package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/reshetovitsme/tg-watch-relay/internal/modules/watch/domain"
	"github.com/reshetovitsme/tg-watch-relay/internal/modules/watch/repository"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/database"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/errors"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrect(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "relay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := repository.NewSQLiteStorage(ctx, db)
	require.NoError(t, err)
	svc := New(repo, metrics.New(prometheus.NewRegistry()))

	for _, watcher := range []int64{1, 2} {
		require.NoError(t, repo.CreateSubscription(ctx, &domain.Subscription{
			WatcherID:      watcher,
			SourceStreamID: "-4001",
			TargetAuthorID: 42,
		}))
	}

	t.Run("rewrites all rows", func(t *testing.T) {
		affected, err := svc.Correct(ctx, "-4001", "-1004001")
		require.NoError(t, err)
		assert.Equal(t, int64(2), affected)
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		affected, err := svc.Correct(ctx, "-4001", "-1004001")
		require.NoError(t, err)
		assert.Zero(t, affected)

		old, err := repo.FindSubscriptions(ctx, "-4001", 42)
		require.NoError(t, err)
		assert.Empty(t, old)

		current, err := repo.FindSubscriptions(ctx, "-1004001", 42)
		require.NoError(t, err)
		assert.Len(t, current, 2)
	})

	t.Run("rejects degenerate ids", func(t *testing.T) {
		_, err := svc.Correct(ctx, "-1004001", "-1004001")
		require.ErrorIs(t, err, errors.ErrInvalidMigration)

		_, err = svc.Correct(ctx, "", "-1")
		require.ErrorIs(t, err, errors.ErrInvalidMigration)
	})
}

func TestCorrectDropsDuplicateSubscriptions(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "relay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := repository.NewSQLiteStorage(ctx, db)
	require.NoError(t, err)
	m := metrics.New(prometheus.NewRegistry())
	svc := New(repo, m)

	subscriptions := []*domain.Subscription{
		{WatcherID: 1, SourceStreamID: "-4001", TargetAuthorID: 42},
		{WatcherID: 2, SourceStreamID: "-4001", TargetAuthorID: 42},
		{WatcherID: 2, SourceStreamID: "-1004001", TargetAuthorID: 42},
	}
	for _, subscription := range subscriptions {
		require.NoError(t, repo.CreateSubscription(ctx, subscription))
	}
	m.Subscriptions.Set(float64(len(subscriptions)))

	affected, err := svc.Correct(ctx, "-4001", "-1004001")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	current, err := repo.FindSubscriptions(ctx, "-1004001", 42)
	require.NoError(t, err)
	assert.Len(t, current, 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Subscriptions))

	_, err = svc.Correct(ctx, "-4001", "-1004001")
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Subscriptions))
}
