package telegram

import (
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
)

func TestToEvent(t *testing.T) {
	event := toEvent(&models.Message{
		ID:      9,
		Date:    1_700_000_000,
		Chat:    models.Chat{ID: -100123, Type: models.ChatTypeSupergroup, Title: "Calls"},
		From:    &models.User{ID: 42, FirstName: "Alice", LastName: "Smith"},
		Caption: "see link",
		Photo:   []models.PhotoSize{{FileID: "a"}},
		CaptionEntities: []models.MessageEntity{
			{Type: models.MessageEntityTypeTextLink, URL: "https://example.com"},
		},
	})

	assert.Equal(t, 9, event.MessageID)
	assert.Equal(t, "-100123", event.SourceStreamID)
	assert.Equal(t, "Calls", event.SourceTitle)
	assert.Equal(t, int64(42), event.AuthorID)
	assert.Equal(t, "Alice Smith", event.AuthorName)
	assert.True(t, event.HasPhoto)
	assert.False(t, event.HasVideo)
	assert.True(t, event.HasEntities)
	assert.True(t, event.HasLinkEntity)
	assert.Equal(t, time.Unix(1_700_000_000, 0), event.Date)
	assert.Equal(t, "see link", event.Body())
}

func TestToEventPlainText(t *testing.T) {
	event := toEvent(&models.Message{
		Chat: models.Chat{ID: -5, Type: models.ChatTypeGroup},
		From: &models.User{ID: 1, Username: "bob"},
		Text: "plain words",
		Entities: []models.MessageEntity{
			{Type: models.MessageEntityTypeBold},
		},
	})

	assert.Equal(t, "@bob", event.AuthorName)
	assert.True(t, event.HasEntities)
	assert.False(t, event.HasLinkEntity)
	assert.False(t, event.IsTextOnly())
}
