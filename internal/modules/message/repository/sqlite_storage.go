package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/reshetovitsme/tg-watch-relay/internal/modules/message/domain"
	"github.com/samber/oops"
)

const schema = `
CREATE TABLE IF NOT EXISTS deliveries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	watcher_id INTEGER NOT NULL,
	subscription_id INTEGER NOT NULL,
	source_stream_id TEXT NOT NULL,
	source_title TEXT NOT NULL DEFAULT '',
	source_message_id INTEGER NOT NULL,
	destination_id TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	text TEXT NOT NULL DEFAULT '',
	media TEXT NOT NULL,
	identifier TEXT NOT NULL DEFAULT '',
	delivered_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_deliveries_watcher ON deliveries(watcher_id, delivered_at);
`

const selectDeliveries = `
SELECT id, watcher_id, subscription_id, source_stream_id, source_title, source_message_id,
	destination_id, author, text, media, identifier, delivered_at
FROM deliveries`

// SQLiteStorage implements Repository on the shared SQLite handle
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates the journal table if needed
func NewSQLiteStorage(ctx context.Context, db *sql.DB) (Repository, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, oops.With("context", "failed to create deliveries table").Wrap(err)
	}
	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) SaveDelivery(ctx context.Context, delivery *domain.Delivery) error {
	if delivery.DeliveredAt.IsZero() {
		delivery.DeliveredAt = time.Now()
	}
	if delivery.Media == "" {
		delivery.Media = domain.MediaTypeNone
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO deliveries (watcher_id, subscription_id, source_stream_id, source_title, source_message_id,
			destination_id, author, text, media, identifier, delivered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		delivery.WatcherID,
		delivery.SubscriptionID,
		delivery.SourceStreamID,
		delivery.SourceTitle,
		delivery.SourceMessageID,
		delivery.DestinationID,
		delivery.Author,
		delivery.Text,
		string(delivery.Media),
		delivery.Identifier,
		delivery.DeliveredAt.UnixMilli(),
	)
	if err != nil {
		return oops.With("watcher_id", delivery.WatcherID, "subscription_id", delivery.SubscriptionID, "context", "failed to save delivery").Wrap(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return oops.With("watcher_id", delivery.WatcherID, "context", "failed to read delivery id").Wrap(err)
	}
	delivery.ID = id
	return nil
}

func (s *SQLiteStorage) GetDeliveries(ctx context.Context, watcherID int64, limit int) ([]*domain.Delivery, error) {
	rows, err := s.db.QueryContext(ctx, selectDeliveries+`
		WHERE watcher_id = ? ORDER BY delivered_at DESC, id DESC LIMIT ?
	`, watcherID, limit)
	if err != nil {
		return nil, oops.With("watcher_id", watcherID, "context", "failed to list deliveries").Wrap(err)
	}
	return collectDeliveries(rows)
}

func (s *SQLiteStorage) GetRecentDeliveries(ctx context.Context, watcherID int64, since time.Time) ([]*domain.Delivery, error) {
	rows, err := s.db.QueryContext(ctx, selectDeliveries+`
		WHERE watcher_id = ? AND delivered_at > ? ORDER BY delivered_at DESC, id DESC
	`, watcherID, since.UnixMilli())
	if err != nil {
		return nil, oops.With("watcher_id", watcherID, "since", since, "context", "failed to list recent deliveries").Wrap(err)
	}
	return collectDeliveries(rows)
}

func (s *SQLiteStorage) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM deliveries WHERE delivered_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, oops.With("cutoff", cutoff, "context", "failed to prune deliveries").Wrap(err)
	}
	return result.RowsAffected()
}

func collectDeliveries(rows *sql.Rows) ([]*domain.Delivery, error) {
	defer rows.Close()

	var deliveries []*domain.Delivery
	for rows.Next() {
		var d domain.Delivery
		var media string
		var deliveredAt int64
		err := rows.Scan(
			&d.ID,
			&d.WatcherID,
			&d.SubscriptionID,
			&d.SourceStreamID,
			&d.SourceTitle,
			&d.SourceMessageID,
			&d.DestinationID,
			&d.Author,
			&d.Text,
			&media,
			&d.Identifier,
			&deliveredAt,
		)
		if err != nil {
			return nil, oops.With("context", "failed to scan delivery").Wrap(err)
		}

		d.Media, err = domain.ParseMediaType(media)
		if err != nil {
			d.Media = domain.MediaTypeNone
		}
		d.DeliveredAt = time.UnixMilli(deliveredAt)
		deliveries = append(deliveries, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.With("context", "failed to iterate deliveries").Wrap(err)
	}
	return deliveries, nil
}
