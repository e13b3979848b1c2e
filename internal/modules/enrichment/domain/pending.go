package domain

import "github.com/reshetovitsme/tg-watch-relay/internal/shared/outbound"

// PendingEnrichment lives for the duration of one enrichment run.
type PendingEnrichment struct {
	Identifier    string
	DestinationID string
	Placeholder   outbound.MessageRef
}
