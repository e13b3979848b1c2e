package service

import (
	"context"
	"strings"
	"testing"
	"time"

	messageDomain "github.com/reshetovitsme/tg-watch-relay/internal/modules/message/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDeliveries []*messageDomain.Delivery

func (s stubDeliveries) GetDeliveries(_ context.Context, watcherID int64, limit int) ([]*messageDomain.Delivery, error) {
	var out []*messageDomain.Delivery
	for _, d := range s {
		if d.WatcherID == watcherID && len(out) < limit {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s stubDeliveries) GetRecentDeliveries(_ context.Context, watcherID int64, since time.Time) ([]*messageDomain.Delivery, error) {
	var out []*messageDomain.Delivery
	for _, d := range s {
		if d.WatcherID == watcherID && d.DeliveredAt.After(since) {
			out = append(out, d)
		}
	}
	return out, nil
}

func TestGenerateFeed(t *testing.T) {
	delivered := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := New(stubDeliveries{
		{
			WatcherID:       1,
			SourceStreamID:  "-1001234",
			SourceTitle:     "Alpha Calls",
			SourceMessageID: 77,
			Author:          "alice",
			Text:            "new <token> " + strings.Repeat("x", 120),
			Media:           messageDomain.MediaTypeNone,
			Identifier:      "So11111111111111111111111111111111111111112",
			DeliveredAt:     delivered,
		},
		{WatcherID: 1, SourceStreamID: "-42", SourceMessageID: 3, Media: messageDomain.MediaTypePhoto},
		{WatcherID: 2, SourceStreamID: "-1001234", SourceMessageID: 5},
	})

	feed, err := svc.GenerateFeed(context.Background(), 1, "http://localhost:8080/", time.Time{})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/feeds/1", feed.Link.Href)
	assert.Equal(t, delivered, feed.Updated)
	require.Len(t, feed.Items, 2)

	first := feed.Items[0]
	assert.Equal(t, "https://t.me/c/1234/77", first.Link.Href)
	assert.True(t, strings.HasSuffix(first.Title, "..."))
	assert.Contains(t, first.Content, "&lt;token&gt;")
	assert.Contains(t, first.Content, "So11111111111111111111111111111111111111112")
	assert.Equal(t, "alice (Alpha Calls)", first.Author.Name)

	second := feed.Items[1]
	assert.Empty(t, second.Link.Href)
	assert.Equal(t, "photo in -42", second.Title)
	assert.Contains(t, second.Description, "Media: photo")

	rss, err := feed.ToRss()
	require.NoError(t, err)
	assert.Contains(t, rss, "<rss")
}

func TestGenerateFeedSince(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var source stubDeliveries
	for i := range feedSize + 10 {
		source = append(source, &messageDomain.Delivery{
			WatcherID:       1,
			SourceStreamID:  "-1001234",
			SourceMessageID: i,
			Text:            "msg",
			DeliveredAt:     base.Add(-time.Duration(i) * time.Minute),
		})
	}
	svc := New(source)

	tests := []struct {
		name  string
		since time.Time
		want  int
	}{
		{name: "recent window", since: base.Add(-5*time.Minute - time.Second), want: 6},
		{name: "nothing newer", since: base, want: 0},
		{name: "capped at feed size", since: base.Add(-24 * time.Hour), want: feedSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed, err := svc.GenerateFeed(context.Background(), 1, "http://localhost:8080", tt.since)
			require.NoError(t, err)
			assert.Len(t, feed.Items, tt.want)
			for _, item := range feed.Items {
				assert.True(t, item.Created.After(tt.since))
			}
		})
	}
}
