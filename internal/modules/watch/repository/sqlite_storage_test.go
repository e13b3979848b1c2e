package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/reshetovitsme/tg-watch-relay/internal/modules/watch/domain"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/database"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) Repository {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "relay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewSQLiteStorage(ctx, db)
	require.NoError(t, err)
	return repo
}

func TestDestinations(t *testing.T) {
	ctx := context.Background()
	repo := newTestStorage(t)

	_, err := repo.GetDestination(ctx, 1)
	require.ErrorIs(t, err, errors.ErrDestinationNotFound)

	require.NoError(t, repo.SetDestination(ctx, &domain.Destination{WatcherID: 1, StreamID: "-100111"}))
	require.NoError(t, repo.SetDestination(ctx, &domain.Destination{WatcherID: 1, StreamID: "-100222"}))

	destination, err := repo.GetDestination(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "-100222", destination.StreamID)

	require.NoError(t, repo.DeleteDestination(ctx, 1))
	require.ErrorIs(t, repo.DeleteDestination(ctx, 1), errors.ErrDestinationNotFound)
}

func TestSubscriptions(t *testing.T) {
	ctx := context.Background()
	repo := newTestStorage(t)

	sub := &domain.Subscription{WatcherID: 1, SourceStreamID: "-100500", TargetAuthorID: 42, TargetDisplayName: "alice"}
	require.NoError(t, repo.CreateSubscription(ctx, sub))
	assert.NotZero(t, sub.ID)

	t.Run("duplicate triple is rejected", func(t *testing.T) {
		dup := &domain.Subscription{WatcherID: 1, SourceStreamID: "-100500", TargetAuthorID: 42}
		require.ErrorIs(t, repo.CreateSubscription(ctx, dup), errors.ErrDuplicateSubscription)
	})

	t.Run("find by source and author", func(t *testing.T) {
		other := &domain.Subscription{WatcherID: 2, SourceStreamID: "-100500", TargetAuthorID: 42}
		require.NoError(t, repo.CreateSubscription(ctx, other))
		unrelated := &domain.Subscription{WatcherID: 2, SourceStreamID: "-100500", TargetAuthorID: 43}
		require.NoError(t, repo.CreateSubscription(ctx, unrelated))

		found, err := repo.FindSubscriptions(ctx, "-100500", 42)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{sub.ID, other.ID}, lo.Map(found, func(s *domain.Subscription, _ int) int64 { return s.ID }))
	})

	t.Run("list by watcher", func(t *testing.T) {
		listed, err := repo.ListSubscriptions(ctx, 1)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, "alice", listed[0].TargetDisplayName)
	})

	t.Run("delete cascades filters", func(t *testing.T) {
		filter := lo.Must(domain.NewKeywordInclude("moon"))
		filter.SubscriptionID = sub.ID
		require.NoError(t, repo.CreateFilter(ctx, &filter))

		require.NoError(t, repo.DeleteSubscription(ctx, sub.ID))
		_, err := repo.GetSubscription(ctx, sub.ID)
		require.ErrorIs(t, err, errors.ErrSubscriptionNotFound)

		filters, err := repo.ListFilters(ctx, sub.ID)
		require.NoError(t, err)
		assert.Empty(t, filters)
	})
}

func TestFilters(t *testing.T) {
	ctx := context.Background()
	repo := newTestStorage(t)

	sub := &domain.Subscription{WatcherID: 1, SourceStreamID: "-100500", TargetAuthorID: 42}
	require.NoError(t, repo.CreateSubscription(ctx, sub))

	include := lo.Must(domain.NewKeywordInclude("pump"))
	include.SubscriptionID = sub.ID
	require.NoError(t, repo.CreateFilter(ctx, &include))

	contentType := lo.Must(domain.NewContentTypeFilter(domain.ContentTypeSolanaCa))
	contentType.SubscriptionID = sub.ID
	require.NoError(t, repo.CreateFilter(ctx, &contentType))

	filters, err := repo.ListFilters(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, filters, 2)
	assert.Equal(t, domain.FilterKindKeywordInclude, filters[0].Kind())
	assert.Equal(t, "pump", filters[0].Keyword())
	assert.Equal(t, domain.ContentTypeSolanaCa, filters[1].ContentType())

	orphan := lo.Must(domain.NewKeywordExclude("rug"))
	orphan.SubscriptionID = 999
	require.ErrorIs(t, repo.CreateFilter(ctx, &orphan), errors.ErrSubscriptionNotFound)

	require.NoError(t, repo.DeleteFilter(ctx, sub.ID, include.ID))
	require.ErrorIs(t, repo.DeleteFilter(ctx, sub.ID, include.ID), errors.ErrFilterNotFound)
}

func TestRewriteSourceStream(t *testing.T) {
	ctx := context.Background()
	repo := newTestStorage(t)

	moved := &domain.Subscription{WatcherID: 1, SourceStreamID: "-500", TargetAuthorID: 42}
	require.NoError(t, repo.CreateSubscription(ctx, moved))
	alreadyThere := &domain.Subscription{WatcherID: 2, SourceStreamID: "-100500", TargetAuthorID: 42}
	require.NoError(t, repo.CreateSubscription(ctx, alreadyThere))
	twin := &domain.Subscription{WatcherID: 2, SourceStreamID: "-500", TargetAuthorID: 42}
	require.NoError(t, repo.CreateSubscription(ctx, twin))

	affected, dropped, err := repo.RewriteSourceStream(ctx, "-500", "-100500")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.Equal(t, int64(1), dropped)

	old, err := repo.FindSubscriptions(ctx, "-500", 42)
	require.NoError(t, err)
	assert.Empty(t, old)

	current, err := repo.FindSubscriptions(ctx, "-100500", 42)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{moved.ID, alreadyThere.ID}, lo.Map(current, func(s *domain.Subscription, _ int) int64 { return s.ID }))

	affected, dropped, err = repo.RewriteSourceStream(ctx, "-500", "-100500")
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.Zero(t, dropped)
}
