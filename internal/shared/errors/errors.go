package errors

import (
	"errors"
	"fmt"
)

var (
	ErrMissingBotToken       = errors.New("TELEGRAM_BOT_TOKEN environment variable is required")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDestinationNotFound   = errors.New("destination not found")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
	ErrFilterNotFound        = errors.New("filter not found")
	ErrDuplicateSubscription = errors.New("subscription already exists")
	ErrInvalidFilter         = errors.New("invalid filter")
	ErrInvalidMigration      = errors.New("invalid migration")
)

// MigrationError is returned by a transport when the stream it tried to reach
// has been upgraded and now lives under a new identifier.
type MigrationError struct {
	OldStreamID string
	NewStreamID string
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("stream %s migrated to %s", e.OldStreamID, e.NewStreamID)
}

// AsMigration reports whether err carries a MigrationError.
func AsMigration(err error) (*MigrationError, bool) {
	var migrationErr *MigrationError
	if errors.As(err, &migrationErr) {
		return migrationErr, true
	}
	return nil, false
}
