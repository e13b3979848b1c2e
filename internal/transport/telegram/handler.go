package telegram

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	routerService "github.com/reshetovitsme/tg-watch-relay/internal/modules/router/service"
	"github.com/reshetovitsme/tg-watch-relay/internal/modules/watch/domain"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/errors"
)

// Router consumes group message events
type Router interface {
	Route(ctx context.Context, event *domain.Event)
}

// Unwatcher removes a subscription on behalf of its owner
type Unwatcher interface {
	Unwatch(ctx context.Context, watcherID int64, subscriptionID int64) error
}

// Corrector rewrites stored stream ids after a migration
type Corrector interface {
	Correct(ctx context.Context, oldID string, newID string) (int64, error)
}

// Handler handles Telegram bot updates
type Handler struct {
	router    Router
	watches   Unwatcher
	corrector Corrector
}

// New creates a new Telegram handler
func New(router Router, watches Unwatcher, corrector Corrector) *Handler {
	return &Handler{
		router:    router,
		watches:   watches,
		corrector: corrector,
	}
}

// RegisterHandlers registers the callback handlers on b
func (h *Handler) RegisterHandlers(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, routerService.StopWatchPrefix, bot.MatchTypePrefix, h.handleStopWatch)
}

// HandleUpdate processes incoming updates
func (h *Handler) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message != nil {
		h.processMessage(ctx, update.Message)
	}
}

func (h *Handler) processMessage(ctx context.Context, msg *models.Message) {
	if !isGroup(msg.Chat) {
		return
	}

	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	switch {
	case msg.MigrateToChatID != 0:
		h.correct(ctx, chatID, strconv.FormatInt(msg.MigrateToChatID, 10))
		return
	case msg.MigrateFromChatID != 0:
		h.correct(ctx, strconv.FormatInt(msg.MigrateFromChatID, 10), chatID)
		return
	}

	if msg.From == nil {
		return
	}
	h.router.Route(ctx, toEvent(msg))
}

func (h *Handler) correct(ctx context.Context, oldID, newID string) {
	if _, err := h.corrector.Correct(ctx, oldID, newID); err != nil {
		slog.Error("Failed to apply chat migration", "old_stream_id", oldID, "new_stream_id", newID, "error", err)
	}
}

func (h *Handler) handleStopWatch(ctx context.Context, b *bot.Bot, update *models.Update) {
	query := update.CallbackQuery
	if query == nil {
		return
	}

	answer := h.stopWatch(ctx, query.From.ID, query.Data)
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: query.ID,
		Text:            answer,
	}); err != nil {
		slog.Warn("Failed to answer callback query", "callback_query_id", query.ID, "error", err)
	}
}

// stopWatch removes the subscription named in a stop_watch callback and returns
// the text shown to the user who pressed the button.
func (h *Handler) stopWatch(ctx context.Context, userID int64, data string) string {
	subscriptionID, err := strconv.ParseInt(strings.TrimPrefix(data, routerService.StopWatchPrefix), 10, 64)
	if err != nil {
		return "❌ Invalid request"
	}

	err = h.watches.Unwatch(ctx, userID, subscriptionID)
	switch {
	case err == nil:
		return "✅ Stopped tracking"
	case stderrors.Is(err, errors.ErrSubscriptionNotFound):
		return "Already stopped"
	case stderrors.Is(err, errors.ErrUnauthorized):
		return "❌ Only the watcher who created this can stop it"
	default:
		slog.Error("Failed to stop watching", "subscription_id", subscriptionID, "user_id", userID, "error", err)
		return "❌ Something went wrong"
	}
}
