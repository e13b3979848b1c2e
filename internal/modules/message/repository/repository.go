package repository

import (
	"context"
	"time"

	"github.com/reshetovitsme/tg-watch-relay/internal/modules/message/domain"
)

// Repository defines the interface for delivery journal persistence
type Repository interface {
	SaveDelivery(ctx context.Context, delivery *domain.Delivery) error
	GetDeliveries(ctx context.Context, watcherID int64, limit int) ([]*domain.Delivery, error)
	GetRecentDeliveries(ctx context.Context, watcherID int64, since time.Time) ([]*domain.Delivery, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
