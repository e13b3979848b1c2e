package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/reshetovitsme/tg-watch-relay/internal/modules/feed/domain"
	messageDomain "github.com/reshetovitsme/tg-watch-relay/internal/modules/message/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const feedSize = 50

// DeliverySource is the part of the journal feeds are rendered from
type DeliverySource interface {
	GetDeliveries(ctx context.Context, watcherID int64, limit int) ([]*messageDomain.Delivery, error)
	GetRecentDeliveries(ctx context.Context, watcherID int64, since time.Time) ([]*messageDomain.Delivery, error)
}

// Service handles RSS feed generation
type Service struct {
	deliveries DeliverySource
}

// New creates a new feed service
func New(deliveries DeliverySource) *Service {
	return &Service{deliveries: deliveries}
}

// GenerateFeed renders the latest deliveries of a watcher as a feed. A non-zero
// since limits the feed to deliveries made after it.
func (s *Service) GenerateFeed(ctx context.Context, watcherID int64, baseURL string, since time.Time) (*feeds.Feed, error) {
	deliveries, err := s.load(ctx, watcherID, since)
	if err != nil {
		return nil, oops.With("watcher_id", watcherID, "since", since, "context", "failed to get deliveries").Wrap(err)
	}

	cfg := domain.FeedConfig{
		WatcherID: watcherID,
		Title:     fmt.Sprintf("Watch relay - watcher %d", watcherID),
		Link:      fmt.Sprintf("%s/feeds/%d", strings.TrimSuffix(baseURL, "/"), watcherID),
		Updated:   time.Now(),
	}
	if len(deliveries) > 0 {
		cfg.Updated = deliveries[0].DeliveredAt
	}

	feed := &feeds.Feed{
		Title:       cfg.Title,
		Link:        &feeds.Link{Href: cfg.Link},
		Description: fmt.Sprintf("Messages forwarded to watcher %d", watcherID),
		Updated:     cfg.Updated,
	}
	feed.Items = lo.Map(deliveries, func(d *messageDomain.Delivery, _ int) *feeds.Item {
		return deliveryToFeedItem(d)
	})

	return feed, nil
}

func (s *Service) load(ctx context.Context, watcherID int64, since time.Time) ([]*messageDomain.Delivery, error) {
	if since.IsZero() {
		return s.deliveries.GetDeliveries(ctx, watcherID, feedSize)
	}
	deliveries, err := s.deliveries.GetRecentDeliveries(ctx, watcherID, since)
	if err != nil {
		return nil, err
	}
	return lo.Subset(deliveries, 0, feedSize), nil
}

func deliveryToFeedItem(d *messageDomain.Delivery) *feeds.Item {
	description := lo.Ternary(d.Text != "", d.Text, "No text content")
	if d.Media != messageDomain.MediaTypeNone && d.Media != "" {
		description += fmt.Sprintf("\n\nMedia: %s", d.Media)
	}

	content := fmt.Sprintf("<p>%s</p>", strings.ReplaceAll(html.EscapeString(description), "\n", "<br>"))
	if d.Identifier != "" {
		content += fmt.Sprintf("<p><strong>Token:</strong> <code>%s</code></p>", html.EscapeString(d.Identifier))
	}

	source := lo.Ternary(d.SourceTitle != "", d.SourceTitle, d.SourceStreamID)
	title := lo.Ternary(d.Text != "", truncate(d.Text, 100), fmt.Sprintf("%s in %s", d.Media, source))

	return &feeds.Item{
		Title:       title,
		Link:        &feeds.Link{Href: messageLink(d.SourceStreamID, d.SourceMessageID)},
		Description: description,
		Content:     content,
		Author:      &feeds.Author{Name: fmt.Sprintf("%s (%s)", d.Author, source)},
		Created:     d.DeliveredAt,
		Id:          fmt.Sprintf("%d-%s-%d", d.WatcherID, d.SourceStreamID, d.SourceMessageID),
	}
}

// messageLink builds a t.me link for supergroup messages. Other chats have no
// public message URL.
func messageLink(streamID string, messageID int) string {
	internal, ok := strings.CutPrefix(streamID, "-100")
	if !ok {
		return ""
	}
	return fmt.Sprintf("https://t.me/c/%s/%d", internal, messageID)
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
