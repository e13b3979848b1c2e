package service

import (
	"fmt"
	"html"
	"strconv"

	"github.com/reshetovitsme/tg-watch-relay/internal/modules/watch/domain"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/outbound"
	"github.com/samber/lo"
)

// StopWatchPrefix prefixes the callback data of the stop-watching button.
const StopWatchPrefix = "stop_watch:"

const footerFormat = "\n\n🎯 — — — — — — — — 🎯\n🔔 <b>Notification from:</b> %s\n🌐 <b>Source:</b> %s"

func footer(event *domain.Event, subscription *domain.Subscription) string {
	author := lo.CoalesceOrEmpty(event.AuthorName, subscription.TargetDisplayName, strconv.FormatInt(event.AuthorID, 10))
	source := lo.CoalesceOrEmpty(event.SourceTitle, event.SourceStreamID)
	return fmt.Sprintf(footerFormat, html.EscapeString(author), html.EscapeString(source))
}

func stopButton(subscriptionID int64) []outbound.Button {
	return []outbound.Button{{
		Text:         "🗑️ Stop Tracking",
		CallbackData: StopWatchPrefix + strconv.FormatInt(subscriptionID, 10),
	}}
}
