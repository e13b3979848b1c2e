package telegram

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/reshetovitsme/tg-watch-relay/internal/modules/watch/domain"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRouter struct{ events []*domain.Event }

func (r *recordingRouter) Route(_ context.Context, event *domain.Event) {
	r.events = append(r.events, event)
}

type unwatchCall struct{ watcherID, subscriptionID int64 }

type fakeUnwatcher struct {
	calls []unwatchCall
	err   error
}

func (f *fakeUnwatcher) Unwatch(_ context.Context, watcherID int64, subscriptionID int64) error {
	f.calls = append(f.calls, unwatchCall{watcherID, subscriptionID})
	return f.err
}

type correction struct{ oldID, newID string }

type fakeCorrector struct{ calls []correction }

func (f *fakeCorrector) Correct(_ context.Context, oldID string, newID string) (int64, error) {
	f.calls = append(f.calls, correction{oldID, newID})
	return 1, nil
}

func TestHandleUpdateRoutesGroupMessages(t *testing.T) {
	router := &recordingRouter{}
	h := New(router, &fakeUnwatcher{}, &fakeCorrector{})

	h.HandleUpdate(context.Background(), nil, &models.Update{Message: &models.Message{
		ID:   5,
		Chat: models.Chat{ID: -100500, Type: models.ChatTypeSupergroup, Title: "Alpha"},
		From: &models.User{ID: 42, FirstName: "Alice"},
		Text: "gm",
	}})
	h.HandleUpdate(context.Background(), nil, &models.Update{Message: &models.Message{
		Chat: models.Chat{ID: 42, Type: models.ChatTypePrivate},
		From: &models.User{ID: 42},
		Text: "/start",
	}})
	h.HandleUpdate(context.Background(), nil, &models.Update{Message: &models.Message{
		Chat: models.Chat{ID: -100500, Type: models.ChatTypeSupergroup},
		Text: "anonymous",
	}})

	require.Len(t, router.events, 1)
	assert.Equal(t, "-100500", router.events[0].SourceStreamID)
	assert.Equal(t, int64(42), router.events[0].AuthorID)
}

func TestHandleUpdateAppliesMigrations(t *testing.T) {
	router := &recordingRouter{}
	corrector := &fakeCorrector{}
	h := New(router, &fakeUnwatcher{}, corrector)

	h.HandleUpdate(context.Background(), nil, &models.Update{Message: &models.Message{
		Chat:            models.Chat{ID: -500, Type: models.ChatTypeGroup},
		From:            &models.User{ID: 1},
		MigrateToChatID: -100500,
	}})
	h.HandleUpdate(context.Background(), nil, &models.Update{Message: &models.Message{
		Chat:              models.Chat{ID: -100500, Type: models.ChatTypeSupergroup},
		From:              &models.User{ID: 1},
		MigrateFromChatID: -500,
	}})

	assert.Empty(t, router.events)
	assert.Equal(t, []correction{{"-500", "-100500"}, {"-500", "-100500"}}, corrector.calls)
}

func TestStopWatch(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		err      error
		want     string
		wantCall bool
	}{
		{name: "owner", data: "stop_watch:12", want: "✅ Stopped tracking", wantCall: true},
		{name: "someone else", data: "stop_watch:12", err: errors.ErrUnauthorized, want: "❌ Only the watcher who created this can stop it", wantCall: true},
		{name: "already gone", data: "stop_watch:12", err: errors.ErrSubscriptionNotFound, want: "Already stopped", wantCall: true},
		{name: "storage failure", data: "stop_watch:12", err: stderrors.New("disk full"), want: "❌ Something went wrong", wantCall: true},
		{name: "garbage", data: "stop_watch:abc", want: "❌ Invalid request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			watches := &fakeUnwatcher{err: tt.err}
			h := New(&recordingRouter{}, watches, &fakeCorrector{})

			assert.Equal(t, tt.want, h.stopWatch(context.Background(), 7, tt.data))
			if tt.wantCall {
				assert.Equal(t, []unwatchCall{{7, 12}}, watches.calls)
			} else {
				assert.Empty(t, watches.calls)
			}
		})
	}
}
