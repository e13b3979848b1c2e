package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/reshetovitsme/tg-watch-relay/internal/modules/watch/domain"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/errors"
	"github.com/samber/oops"
)

const schema = `
CREATE TABLE IF NOT EXISTS destinations (
	watcher_id INTEGER PRIMARY KEY,
	stream_id TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS subscriptions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	watcher_id INTEGER NOT NULL,
	source_stream_id TEXT NOT NULL,
	target_author_id INTEGER NOT NULL,
	target_display_name TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	UNIQUE(watcher_id, source_stream_id, target_author_id)
);

CREATE INDEX IF NOT EXISTS idx_subscriptions_source_author
	ON subscriptions(source_stream_id, target_author_id);

CREATE TABLE IF NOT EXISTS filters (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	subscription_id INTEGER NOT NULL REFERENCES subscriptions(id) ON DELETE CASCADE,
	kind TEXT NOT NULL,
	value TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_filters_subscription ON filters(subscription_id);
`

// collidingRows selects subscriptions on the old stream that already have a
// twin on the new stream; moving them would break the uniqueness constraint.
const collidingRows = `
SELECT s.id FROM subscriptions s
WHERE s.source_stream_id = ?
  AND EXISTS (
	SELECT 1 FROM subscriptions n
	WHERE n.source_stream_id = ?
	  AND n.watcher_id = s.watcher_id
	  AND n.target_author_id = s.target_author_id
  )`

// SQLiteStorage implements Repository on a shared SQLite handle
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates the watch tables if needed and returns the repository
func NewSQLiteStorage(ctx context.Context, db *sql.DB) (Repository, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, oops.With("context", "failed to create watch tables").Wrap(err)
	}
	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) SetDestination(ctx context.Context, destination *domain.Destination) error {
	if destination.UpdatedAt.IsZero() {
		destination.UpdatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO destinations (watcher_id, stream_id, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(watcher_id) DO UPDATE SET stream_id = excluded.stream_id, updated_at = excluded.updated_at
	`, destination.WatcherID, destination.StreamID, destination.UpdatedAt.Unix())
	if err != nil {
		return oops.With("watcher_id", destination.WatcherID, "context", "failed to save destination").Wrap(err)
	}
	return nil
}

func (s *SQLiteStorage) GetDestination(ctx context.Context, watcherID int64) (*domain.Destination, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT watcher_id, stream_id, updated_at FROM destinations WHERE watcher_id = ?
	`, watcherID)

	var destination domain.Destination
	var updatedAt int64
	err := row.Scan(&destination.WatcherID, &destination.StreamID, &updatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrDestinationNotFound
	}
	if err != nil {
		return nil, oops.With("watcher_id", watcherID, "context", "failed to read destination").Wrap(err)
	}

	destination.UpdatedAt = time.Unix(updatedAt, 0)
	return &destination, nil
}

func (s *SQLiteStorage) DeleteDestination(ctx context.Context, watcherID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM destinations WHERE watcher_id = ?`, watcherID)
	if err != nil {
		return oops.With("watcher_id", watcherID, "context", "failed to delete destination").Wrap(err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.ErrDestinationNotFound
	}
	return nil
}

func (s *SQLiteStorage) CreateSubscription(ctx context.Context, subscription *domain.Subscription) error {
	if subscription.CreatedAt.IsZero() {
		subscription.CreatedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (watcher_id, source_stream_id, target_author_id, target_display_name, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(watcher_id, source_stream_id, target_author_id) DO NOTHING
	`,
		subscription.WatcherID,
		subscription.SourceStreamID,
		subscription.TargetAuthorID,
		subscription.TargetDisplayName,
		subscription.CreatedAt.Unix(),
	)
	if err != nil {
		return oops.With("watcher_id", subscription.WatcherID, "context", "failed to create subscription").Wrap(err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.ErrDuplicateSubscription
	}

	id, err := result.LastInsertId()
	if err != nil {
		return oops.With("watcher_id", subscription.WatcherID, "context", "failed to read subscription id").Wrap(err)
	}
	subscription.ID = id
	return nil
}

func (s *SQLiteStorage) GetSubscription(ctx context.Context, subscriptionID int64) (*domain.Subscription, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, watcher_id, source_stream_id, target_author_id, target_display_name, created_at
		FROM subscriptions WHERE id = ?
	`, subscriptionID)

	subscription, err := scanSubscription(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, oops.With("subscription_id", subscriptionID, "context", "failed to read subscription").Wrap(err)
	}
	return subscription, nil
}

func (s *SQLiteStorage) DeleteSubscription(ctx context.Context, subscriptionID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return oops.With("subscription_id", subscriptionID, "context", "failed to begin transaction").Wrap(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM filters WHERE subscription_id = ?`, subscriptionID); err != nil {
		return oops.With("subscription_id", subscriptionID, "context", "failed to delete filters").Wrap(err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, subscriptionID)
	if err != nil {
		return oops.With("subscription_id", subscriptionID, "context", "failed to delete subscription").Wrap(err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.ErrSubscriptionNotFound
	}

	return tx.Commit()
}

func (s *SQLiteStorage) ListSubscriptions(ctx context.Context, watcherID int64) ([]*domain.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, watcher_id, source_stream_id, target_author_id, target_display_name, created_at
		FROM subscriptions WHERE watcher_id = ? ORDER BY id
	`, watcherID)
	if err != nil {
		return nil, oops.With("watcher_id", watcherID, "context", "failed to list subscriptions").Wrap(err)
	}
	return collectSubscriptions(rows)
}

func (s *SQLiteStorage) FindSubscriptions(ctx context.Context, sourceStreamID string, authorID int64) ([]*domain.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, watcher_id, source_stream_id, target_author_id, target_display_name, created_at
		FROM subscriptions WHERE source_stream_id = ? AND target_author_id = ? ORDER BY id
	`, sourceStreamID, authorID)
	if err != nil {
		return nil, oops.With("source_stream_id", sourceStreamID, "author_id", authorID, "context", "failed to find subscriptions").Wrap(err)
	}
	return collectSubscriptions(rows)
}

func (s *SQLiteStorage) CreateFilter(ctx context.Context, filter *domain.Filter) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO filters (subscription_id, kind, value, created_at)
		SELECT ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM subscriptions WHERE id = ?)
	`, filter.SubscriptionID, string(filter.Kind()), filter.Value(), time.Now().Unix(), filter.SubscriptionID)
	if err != nil {
		return oops.With("subscription_id", filter.SubscriptionID, "context", "failed to create filter").Wrap(err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.ErrSubscriptionNotFound
	}

	id, err := result.LastInsertId()
	if err != nil {
		return oops.With("subscription_id", filter.SubscriptionID, "context", "failed to read filter id").Wrap(err)
	}
	filter.ID = id
	return nil
}

func (s *SQLiteStorage) DeleteFilter(ctx context.Context, subscriptionID int64, filterID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM filters WHERE id = ? AND subscription_id = ?`, filterID, subscriptionID)
	if err != nil {
		return oops.With("filter_id", filterID, "context", "failed to delete filter").Wrap(err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.ErrFilterNotFound
	}
	return nil
}

func (s *SQLiteStorage) ListFilters(ctx context.Context, subscriptionID int64) ([]domain.Filter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subscription_id, kind, value FROM filters WHERE subscription_id = ? ORDER BY id
	`, subscriptionID)
	if err != nil {
		return nil, oops.With("subscription_id", subscriptionID, "context", "failed to list filters").Wrap(err)
	}
	defer rows.Close()

	var filters []domain.Filter
	for rows.Next() {
		var id, ownerID int64
		var kind, value string
		if err := rows.Scan(&id, &ownerID, &kind, &value); err != nil {
			return nil, oops.With("subscription_id", subscriptionID, "context", "failed to scan filter").Wrap(err)
		}

		filter, err := domain.ParseFilter(kind, value)
		if err != nil {
			slog.Warn("Skipping unreadable filter", "filter_id", id, "kind", kind, "error", err)
			continue
		}
		filters = append(filters, filter.WithIDs(id, ownerID))
	}

	if err := rows.Err(); err != nil {
		return nil, oops.With("subscription_id", subscriptionID, "context", "failed to iterate filters").Wrap(err)
	}
	return filters, nil
}

func (s *SQLiteStorage) RewriteSourceStream(ctx context.Context, oldID string, newID string) (int64, int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, oops.With("old_stream_id", oldID, "new_stream_id", newID, "context", "failed to begin transaction").Wrap(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM filters WHERE subscription_id IN (`+collidingRows+`)`, oldID, newID); err != nil {
		return 0, 0, oops.With("old_stream_id", oldID, "context", "failed to drop colliding filters").Wrap(err)
	}
	dropResult, err := tx.ExecContext(ctx, `DELETE FROM subscriptions WHERE id IN (`+collidingRows+`)`, oldID, newID)
	if err != nil {
		return 0, 0, oops.With("old_stream_id", oldID, "context", "failed to drop colliding subscriptions").Wrap(err)
	}
	dropped, err := dropResult.RowsAffected()
	if err != nil {
		return 0, 0, oops.With("old_stream_id", oldID, "context", "failed to count dropped rows").Wrap(err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE subscriptions SET source_stream_id = ? WHERE source_stream_id = ?`, newID, oldID)
	if err != nil {
		return 0, 0, oops.With("old_stream_id", oldID, "new_stream_id", newID, "context", "failed to rewrite source stream").Wrap(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, 0, oops.With("old_stream_id", oldID, "context", "failed to count rewritten rows").Wrap(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, oops.With("old_stream_id", oldID, "new_stream_id", newID, "context", "failed to commit rewrite").Wrap(err)
	}
	return affected, dropped, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*domain.Subscription, error) {
	var subscription domain.Subscription
	var createdAt int64
	err := row.Scan(
		&subscription.ID,
		&subscription.WatcherID,
		&subscription.SourceStreamID,
		&subscription.TargetAuthorID,
		&subscription.TargetDisplayName,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	subscription.CreatedAt = time.Unix(createdAt, 0)
	return &subscription, nil
}

func collectSubscriptions(rows *sql.Rows) ([]*domain.Subscription, error) {
	defer rows.Close()

	var subscriptions []*domain.Subscription
	for rows.Next() {
		subscription, err := scanSubscription(rows)
		if err != nil {
			return nil, oops.With("context", "failed to scan subscription").Wrap(err)
		}
		subscriptions = append(subscriptions, subscription)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.With("context", "failed to iterate subscriptions").Wrap(err)
	}
	return subscriptions, nil
}
