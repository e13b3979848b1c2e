package telegram

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/reshetovitsme/tg-watch-relay/internal/modules/watch/domain"
	"github.com/samber/lo"
)

func isGroup(chat models.Chat) bool {
	return chat.Type == models.ChatTypeGroup || chat.Type == models.ChatTypeSupergroup
}

// toEvent reduces a group message to what routing needs
func toEvent(msg *models.Message) *domain.Event {
	entities := append(append([]models.MessageEntity{}, msg.Entities...), msg.CaptionEntities...)

	event := &domain.Event{
		MessageID:      msg.ID,
		SourceStreamID: strconv.FormatInt(msg.Chat.ID, 10),
		SourceTitle:    msg.Chat.Title,
		Text:           msg.Text,
		Caption:        msg.Caption,
		HasPhoto:       len(msg.Photo) > 0,
		HasVideo:       msg.Video != nil,
		HasEntities:    len(entities) > 0,
		HasLinkEntity: lo.ContainsBy(entities, func(e models.MessageEntity) bool {
			return e.Type == models.MessageEntityTypeURL || e.Type == models.MessageEntityTypeTextLink
		}),
		Date: time.Unix(int64(msg.Date), 0),
	}

	if msg.From != nil {
		event.AuthorID = msg.From.ID
		event.AuthorName = authorName(msg.From)
	}
	return event
}

func authorName(user *models.User) string {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name != "" {
		return name
	}
	if user.Username != "" {
		return "@" + user.Username
	}
	return "Unknown"
}
