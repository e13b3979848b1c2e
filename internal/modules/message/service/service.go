package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/reshetovitsme/tg-watch-relay/internal/modules/message/domain"
	"github.com/reshetovitsme/tg-watch-relay/internal/modules/message/repository"
)

const pruneInterval = time.Hour

// Service keeps the journal of forwarded messages
type Service struct {
	repo      repository.Repository
	retention time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New creates a new message service. A zero retention keeps records forever.
func New(repo repository.Repository, retention time.Duration) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		repo:      repo,
		retention: retention,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Record journals a delivery. Failures are logged only: the forward already happened.
func (s *Service) Record(ctx context.Context, delivery *domain.Delivery) {
	if err := s.repo.SaveDelivery(ctx, delivery); err != nil {
		slog.Warn("Failed to record delivery",
			"watcher_id", delivery.WatcherID,
			"subscription_id", delivery.SubscriptionID,
			"error", err,
		)
	}
}

// GetDeliveries retrieves the latest deliveries of a watcher, newest first
func (s *Service) GetDeliveries(ctx context.Context, watcherID int64, limit int) ([]*domain.Delivery, error) {
	return s.repo.GetDeliveries(ctx, watcherID, limit)
}

// GetRecentDeliveries retrieves deliveries made after since
func (s *Service) GetRecentDeliveries(ctx context.Context, watcherID int64, since time.Time) ([]*domain.Delivery, error) {
	return s.repo.GetRecentDeliveries(ctx, watcherID, since)
}

// Prune removes deliveries older than the retention window
func (s *Service) Prune(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	return s.repo.PruneBefore(ctx, time.Now().Add(-s.retention))
}

// Start begins the periodic pruning loop
func (s *Service) Start() {
	if s.retention <= 0 {
		return
	}
	s.wg.Add(1)
	go s.pruneLoop()
}

// Stop stops the pruning loop
func (s *Service) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Service) pruneLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Prune(s.ctx)
			if err != nil {
				slog.Error("Failed to prune delivery journal", "error", err)
				continue
			}
			if removed > 0 {
				slog.Debug("Pruned delivery journal", "removed", removed)
			}
		}
	}
}
