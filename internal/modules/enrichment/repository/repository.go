package repository

import (
	"context"

	"github.com/reshetovitsme/tg-watch-relay/internal/modules/enrichment/domain"
)

// MarketData looks up a token by contract address. When no usable quote exists
// the error is a *domain.AbsenceError.
type MarketData interface {
	Lookup(ctx context.Context, address string) (*domain.Quote, error)
}
