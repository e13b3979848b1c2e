package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/reshetovitsme/tg-watch-relay/internal/modules/watch/domain"
	"github.com/reshetovitsme/tg-watch-relay/internal/modules/watch/repository"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/errors"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/metrics"
	"github.com/samber/oops"
)

// Service handles the management side of watching: destinations,
// subscriptions and filter chains
type Service struct {
	repo    repository.Repository
	metrics *metrics.Metrics
}

// New creates a new watch service
func New(repo repository.Repository, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		metrics: m,
	}
}

// SetDestination points all of a watcher's forwards at streamID
func (s *Service) SetDestination(ctx context.Context, watcherID int64, streamID string) (*domain.Destination, error) {
	streamID = strings.TrimSpace(streamID)
	if streamID == "" {
		return nil, oops.With("watcher_id", watcherID).Errorf("destination stream id is required")
	}

	destination := &domain.Destination{
		WatcherID: watcherID,
		StreamID:  streamID,
		UpdatedAt: time.Now(),
	}
	if err := s.repo.SetDestination(ctx, destination); err != nil {
		return nil, err
	}

	slog.Info("Destination set", "watcher_id", watcherID, "stream_id", streamID)
	return destination, nil
}

// GetDestination retrieves a watcher's destination
func (s *Service) GetDestination(ctx context.Context, watcherID int64) (*domain.Destination, error) {
	return s.repo.GetDestination(ctx, watcherID)
}

// RemoveDestination deletes a watcher's destination. Subscriptions are kept
// and stay silent until a new destination is set.
func (s *Service) RemoveDestination(ctx context.Context, watcherID int64) error {
	if err := s.repo.DeleteDestination(ctx, watcherID); err != nil {
		return err
	}
	slog.Info("Destination removed", "watcher_id", watcherID)
	return nil
}

// Watch subscribes a watcher to an author's messages in a source stream. The
// watcher must already have a destination.
func (s *Service) Watch(ctx context.Context, watcherID int64, sourceStreamID string, authorID int64, displayName string) (*domain.Subscription, error) {
	if _, err := s.repo.GetDestination(ctx, watcherID); err != nil {
		return nil, err
	}

	sourceStreamID = strings.TrimSpace(sourceStreamID)
	if sourceStreamID == "" || authorID == 0 {
		return nil, oops.With("watcher_id", watcherID).Errorf("source stream id and author id are required")
	}

	subscription := &domain.Subscription{
		WatcherID:         watcherID,
		SourceStreamID:    sourceStreamID,
		TargetAuthorID:    authorID,
		TargetDisplayName: displayName,
	}
	if err := s.repo.CreateSubscription(ctx, subscription); err != nil {
		return nil, err
	}

	s.metrics.Subscriptions.Inc()
	slog.Info("Subscription created",
		"subscription_id", subscription.ID,
		"watcher_id", watcherID,
		"source_stream_id", sourceStreamID,
		"author_id", authorID,
	)
	return subscription, nil
}

// Unwatch removes a subscription owned by watcherID
func (s *Service) Unwatch(ctx context.Context, watcherID int64, subscriptionID int64) error {
	if _, err := s.ownedSubscription(ctx, watcherID, subscriptionID); err != nil {
		return err
	}

	if err := s.repo.DeleteSubscription(ctx, subscriptionID); err != nil {
		return err
	}

	s.metrics.Subscriptions.Dec()
	slog.Info("Subscription removed", "subscription_id", subscriptionID, "watcher_id", watcherID)
	return nil
}

// ListSubscriptions retrieves every subscription of a watcher
func (s *Service) ListSubscriptions(ctx context.Context, watcherID int64) ([]*domain.Subscription, error) {
	return s.repo.ListSubscriptions(ctx, watcherID)
}

// AddFilter appends a filter to a subscription's chain
func (s *Service) AddFilter(ctx context.Context, subscriptionID int64, filter domain.Filter) (domain.Filter, error) {
	filter.SubscriptionID = subscriptionID
	if err := s.repo.CreateFilter(ctx, &filter); err != nil {
		return domain.Filter{}, err
	}

	slog.Info("Filter added", "subscription_id", subscriptionID, "kind", filter.Kind(), "value", filter.Value())
	return filter, nil
}

// RemoveFilter deletes one filter from a subscription's chain
func (s *Service) RemoveFilter(ctx context.Context, subscriptionID int64, filterID int64) error {
	return s.repo.DeleteFilter(ctx, subscriptionID, filterID)
}

// ListFilters retrieves a subscription's filter chain
func (s *Service) ListFilters(ctx context.Context, subscriptionID int64) ([]domain.Filter, error) {
	if _, err := s.repo.GetSubscription(ctx, subscriptionID); err != nil {
		return nil, err
	}
	return s.repo.ListFilters(ctx, subscriptionID)
}

func (s *Service) ownedSubscription(ctx context.Context, watcherID int64, subscriptionID int64) (*domain.Subscription, error) {
	subscription, err := s.repo.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if subscription.WatcherID != watcherID {
		return nil, oops.With("subscription_id", subscriptionID, "watcher_id", watcherID).Wrap(errors.ErrUnauthorized)
	}
	return subscription, nil
}
