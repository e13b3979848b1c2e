package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/reshetovitsme/tg-watch-relay/internal/shared/errors"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/metrics"
	"github.com/samber/oops"
)

// Rewriter is the storage operation the corrector relies on
type Rewriter interface {
	RewriteSourceStream(ctx context.Context, oldID string, newID string) (moved int64, dropped int64, err error)
}

// Service rewrites stored stream ids after the transport reports a migration
type Service struct {
	repo    Rewriter
	metrics *metrics.Metrics
}

// New creates a new migration service
func New(repo Rewriter, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		metrics: m,
	}
}

// Correct moves every subscription watching oldID over to newID. Running it
// again after the rows have moved is a no-op.
func (s *Service) Correct(ctx context.Context, oldID string, newID string) (int64, error) {
	oldID = strings.TrimSpace(oldID)
	newID = strings.TrimSpace(newID)
	if oldID == "" || newID == "" || oldID == newID {
		s.metrics.Migrations.WithLabelValues("invalid").Inc()
		return 0, oops.With("old_stream_id", oldID, "new_stream_id", newID).Wrap(errors.ErrInvalidMigration)
	}

	affected, dropped, err := s.repo.RewriteSourceStream(ctx, oldID, newID)
	if err != nil {
		s.metrics.Migrations.WithLabelValues("failed").Inc()
		return 0, oops.In("migration").With("old_stream_id", oldID, "new_stream_id", newID).Wrap(err)
	}
	if dropped > 0 {
		s.metrics.Subscriptions.Sub(float64(dropped))
		slog.Info("Dropped duplicate subscriptions during migration", "old_stream_id", oldID, "new_stream_id", newID, "subscriptions", dropped)
	}

	if affected == 0 {
		s.metrics.Migrations.WithLabelValues("noop").Inc()
		slog.Debug("Stream migration already applied", "old_stream_id", oldID, "new_stream_id", newID)
		return 0, nil
	}

	s.metrics.Migrations.WithLabelValues("applied").Inc()
	slog.Warn("Stream migration corrected", "old_stream_id", oldID, "new_stream_id", newID, "subscriptions", affected)
	return affected, nil
}
