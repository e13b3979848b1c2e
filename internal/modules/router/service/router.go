package service

import (
	"context"
	stderrors "errors"
	"html"
	"log/slog"
	"strings"

	filter "github.com/reshetovitsme/tg-watch-relay/internal/modules/filter/service"
	messageDomain "github.com/reshetovitsme/tg-watch-relay/internal/modules/message/domain"
	"github.com/reshetovitsme/tg-watch-relay/internal/modules/watch/domain"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/errors"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/metrics"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/outbound"
	"github.com/samber/oops"
)

// Index is the read side of the subscription store
type Index interface {
	FindSubscriptions(ctx context.Context, sourceStreamID string, authorID int64) ([]*domain.Subscription, error)
	ListFilters(ctx context.Context, subscriptionID int64) ([]domain.Filter, error)
	GetDestination(ctx context.Context, watcherID int64) (*domain.Destination, error)
}

// Forwarder delivers content to a destination
type Forwarder interface {
	SendText(ctx context.Context, chatID string, msg outbound.Text) (outbound.MessageRef, error)
	CopyContent(ctx context.Context, msg outbound.Copy) (outbound.MessageRef, error)
}

// Corrector rewrites stored stream ids after a migration
type Corrector interface {
	Correct(ctx context.Context, oldID string, newID string) (int64, error)
}

// Enricher schedules a background enrichment of a forwarded message
type Enricher interface {
	Enqueue(identifier, destinationID string)
}

// Journal records successful forwards
type Journal interface {
	Record(ctx context.Context, delivery *messageDomain.Delivery)
}

// Router fans an incoming event out to every matching subscription
type Router struct {
	index     Index
	forwarder Forwarder
	corrector Corrector
	enricher  Enricher
	journal   Journal
	metrics   *metrics.Metrics
}

// New creates a new router
func New(index Index, forwarder Forwarder, corrector Corrector, enricher Enricher, journal Journal, m *metrics.Metrics) *Router {
	return &Router{
		index:     index,
		forwarder: forwarder,
		corrector: corrector,
		enricher:  enricher,
		journal:   journal,
		metrics:   m,
	}
}

// Route delivers event to every subscription watching its author in its
// source stream. Failures are logged per subscription and never returned.
func (r *Router) Route(ctx context.Context, event *domain.Event) {
	if event.AuthorID == 0 || event.SourceStreamID == "" {
		return
	}

	subscriptions, err := r.index.FindSubscriptions(ctx, event.SourceStreamID, event.AuthorID)
	if err != nil {
		slog.Error("Failed to look up subscriptions",
			"source_stream_id", event.SourceStreamID,
			"author_id", event.AuthorID,
			"error", err,
		)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	r.metrics.EventsRouted.Inc()
	for _, subscription := range subscriptions {
		if err := r.routeOne(ctx, event, subscription); err != nil {
			r.metrics.Forwards.WithLabelValues("failed").Inc()
			slog.Error("Failed to forward message",
				"subscription_id", subscription.ID,
				"watcher_id", subscription.WatcherID,
				"source_stream_id", event.SourceStreamID,
				"message_id", event.MessageID,
				"error", err,
			)
		}
	}
}

func (r *Router) routeOne(ctx context.Context, event *domain.Event, subscription *domain.Subscription) error {
	filters, err := r.index.ListFilters(ctx, subscription.ID)
	if err != nil {
		return oops.With("subscription_id", subscription.ID).Wrapf(err, "failed to load filters")
	}

	decision := filter.Evaluate(event, filters)
	if !decision.Forward {
		r.metrics.Filtered.Inc()
		slog.Debug("Message filtered out", "subscription_id", subscription.ID, "message_id", event.MessageID)
		return nil
	}

	destination, err := r.index.GetDestination(ctx, subscription.WatcherID)
	if stderrors.Is(err, errors.ErrDestinationNotFound) {
		r.metrics.Forwards.WithLabelValues("no_destination").Inc()
		slog.Debug("Watcher has no destination", "watcher_id", subscription.WatcherID, "subscription_id", subscription.ID)
		return nil
	}
	if err != nil {
		return oops.With("watcher_id", subscription.WatcherID).Wrapf(err, "failed to resolve destination")
	}

	err = r.forward(ctx, event, subscription, destination.StreamID)
	if migration, ok := errors.AsMigration(err); ok {
		if _, correctErr := r.corrector.Correct(ctx, event.SourceStreamID, migration.NewStreamID); correctErr != nil {
			slog.Error("Failed to correct stream migration",
				"old_stream_id", event.SourceStreamID,
				"new_stream_id", migration.NewStreamID,
				"error", correctErr,
			)
		}
		r.metrics.Forwards.WithLabelValues("migrated").Inc()
		err = r.forward(ctx, event, subscription, destination.StreamID)
	}
	if err != nil {
		return err
	}

	r.metrics.Forwards.WithLabelValues("sent").Inc()
	r.journal.Record(ctx, &messageDomain.Delivery{
		WatcherID:       subscription.WatcherID,
		SubscriptionID:  subscription.ID,
		SourceStreamID:  event.SourceStreamID,
		SourceTitle:     event.SourceTitle,
		SourceMessageID: event.MessageID,
		DestinationID:   destination.StreamID,
		Author:          event.AuthorName,
		Text:            event.Body(),
		Media:           mediaType(event),
		Identifier:      decision.Identifier,
	})

	if decision.Identifier != "" {
		r.enricher.Enqueue(decision.Identifier, destination.StreamID)
	}
	return nil
}

// forward sends text messages as text and copies everything else with the
// footer as its caption.
func (r *Router) forward(ctx context.Context, event *domain.Event, subscription *domain.Subscription, destinationID string) error {
	tail := footer(event, subscription)
	buttons := stopButton(subscription.ID)

	if event.Text != "" {
		_, err := r.forwarder.SendText(ctx, destinationID, outbound.Text{
			Body:           html.EscapeString(event.Text) + tail,
			DisablePreview: true,
			Buttons:        buttons,
		})
		return err
	}

	caption := strings.TrimLeft(tail, "\n")
	if event.Caption != "" {
		caption = html.EscapeString(event.Caption) + tail
	}
	_, err := r.forwarder.CopyContent(ctx, outbound.Copy{
		FromChatID: event.SourceStreamID,
		MessageID:  event.MessageID,
		ToChatID:   destinationID,
		Caption:    caption,
		Buttons:    buttons,
	})
	return err
}

func mediaType(event *domain.Event) messageDomain.MediaType {
	switch {
	case event.HasPhoto:
		return messageDomain.MediaTypePhoto
	case event.HasVideo:
		return messageDomain.MediaTypeVideo
	default:
		return messageDomain.MediaTypeNone
	}
}
