package repository

import (
	"context"

	"github.com/reshetovitsme/tg-watch-relay/internal/modules/watch/domain"
)

// Repository defines the persistence of destinations, subscriptions and their
// filter chains.
type Repository interface {
	SetDestination(ctx context.Context, destination *domain.Destination) error
	GetDestination(ctx context.Context, watcherID int64) (*domain.Destination, error)
	DeleteDestination(ctx context.Context, watcherID int64) error

	// CreateSubscription fills in ID and CreatedAt. A subscription that already
	// exists for the same (watcher, source stream, author) yields
	// errors.ErrDuplicateSubscription.
	CreateSubscription(ctx context.Context, subscription *domain.Subscription) error
	GetSubscription(ctx context.Context, subscriptionID int64) (*domain.Subscription, error)
	DeleteSubscription(ctx context.Context, subscriptionID int64) error
	ListSubscriptions(ctx context.Context, watcherID int64) ([]*domain.Subscription, error)
	FindSubscriptions(ctx context.Context, sourceStreamID string, authorID int64) ([]*domain.Subscription, error)

	CreateFilter(ctx context.Context, filter *domain.Filter) error
	DeleteFilter(ctx context.Context, subscriptionID int64, filterID int64) error
	ListFilters(ctx context.Context, subscriptionID int64) ([]domain.Filter, error)

	// RewriteSourceStream moves every subscription on oldID to newID in one
	// transaction. It returns the number of rows moved and the number of
	// rows dropped because the watcher already had the same subscription on
	// newID.
	RewriteSourceStream(ctx context.Context, oldID string, newID string) (moved int64, dropped int64, err error)
}
