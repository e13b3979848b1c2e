package telegram

import (
	"context"
	stderrors "errors"
	"regexp"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/errors"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/outbound"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Bot API errors only sometimes arrive typed; the description always carries the id.
var newChatIDPattern = regexp.MustCompile(`New chat id: (-?\d+)`)

type api interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	CopyMessage(ctx context.Context, params *bot.CopyMessageParams) (*models.MessageID, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
}

// Sender delivers outbound messages through the Bot API
type Sender struct {
	api api
}

// NewSender creates a sender. The bot is attached later with SetBot since the
// bot itself is built around handlers that need the sender.
func NewSender() *Sender {
	return &Sender{}
}

// SetBot sets the Telegram bot instance
func (s *Sender) SetBot(b *bot.Bot) {
	s.api = b
}

// SendText sends an HTML message to chatID
func (s *Sender) SendText(ctx context.Context, chatID string, msg outbound.Text) (outbound.MessageRef, error) {
	if s.api == nil {
		return outbound.MessageRef{}, oops.In("telegram").Errorf("bot is not attached")
	}

	params := &bot.SendMessageParams{
		ChatID:      toChatID(chatID),
		Text:        msg.Body,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: keyboard(msg.Buttons),
	}
	if msg.DisablePreview {
		params.LinkPreviewOptions = &models.LinkPreviewOptions{IsDisabled: bot.True()}
	}

	sent, err := s.api.SendMessage(ctx, params)
	if err != nil {
		return outbound.MessageRef{}, translate(chatID, err, "failed to send message")
	}
	return outbound.MessageRef{ChatID: chatID, MessageID: sent.ID}, nil
}

// CopyContent copies a message into another chat with a new caption
func (s *Sender) CopyContent(ctx context.Context, msg outbound.Copy) (outbound.MessageRef, error) {
	if s.api == nil {
		return outbound.MessageRef{}, oops.In("telegram").Errorf("bot is not attached")
	}

	copied, err := s.api.CopyMessage(ctx, &bot.CopyMessageParams{
		ChatID:      toChatID(msg.ToChatID),
		FromChatID:  toChatID(msg.FromChatID),
		MessageID:   msg.MessageID,
		Caption:     msg.Caption,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: keyboard(msg.Buttons),
	})
	if err != nil {
		return outbound.MessageRef{}, translate(msg.ToChatID, err, "failed to copy message")
	}
	return outbound.MessageRef{ChatID: msg.ToChatID, MessageID: copied.ID}, nil
}

// EditText replaces the text of a message the bot sent earlier
func (s *Sender) EditText(ctx context.Context, ref outbound.MessageRef, text string) error {
	if s.api == nil {
		return oops.In("telegram").Errorf("bot is not attached")
	}

	_, err := s.api.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:             toChatID(ref.ChatID),
		MessageID:          ref.MessageID,
		Text:               text,
		ParseMode:          models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: bot.True()},
	})
	if err != nil {
		return translate(ref.ChatID, err, "failed to edit message")
	}
	return nil
}

// translate turns a chat-migrated failure into a MigrationError and wraps
// everything else.
func translate(chatID string, err error, msg string) error {
	var migrate *bot.MigrateError
	if stderrors.As(err, &migrate) && migrate.MigrateToChatID != 0 {
		return &errors.MigrationError{OldStreamID: chatID, NewStreamID: strconv.Itoa(migrate.MigrateToChatID)}
	}
	if match := newChatIDPattern.FindStringSubmatch(err.Error()); match != nil {
		return &errors.MigrationError{OldStreamID: chatID, NewStreamID: match[1]}
	}
	return oops.In("telegram").With("chat_id", chatID).Wrapf(err, "%s", msg)
}

// toChatID sends numeric ids as numbers and anything else (an @username) as is.
func toChatID(chatID string) any {
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		return id
	}
	return chatID
}

func keyboard(buttons []outbound.Button) models.ReplyMarkup {
	if len(buttons) == 0 {
		return nil
	}
	row := lo.Map(buttons, func(b outbound.Button, _ int) models.InlineKeyboardButton {
		return models.InlineKeyboardButton{Text: b.Text, URL: b.URL, CallbackData: b.CallbackData}
	})
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{row}}
}
