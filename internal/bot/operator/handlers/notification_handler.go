package handlers

import (
	"PayoutDesk/internal/bot/messages"
	"PayoutDesk/internal/core/domain"
	"PayoutDesk/internal/core/ports"
	"context"

	"github.com/rs/zerolog"
)

// NotificationHandler listens for console notifications on the EventBus
// and delivers them to the operator chat.
// It is NOT a registered router handler; it's a system component.
type NotificationHandler struct {
	log zerolog.Logger
	bot ports.BotClientPort
}

func NewNotificationHandler(bot ports.BotClientPort, baseLogger *zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		log: baseLogger.With().Str("component", "notification_handler").Logger(),
		bot: bot,
	}
}

// HandleNotification is an EventHandler for ports.TopicNotification.
func (h *NotificationHandler) HandleNotification(ctx context.Context, event ports.Event) error {
	n, ok := event.Data.(domain.NotificationEvent)
	if !ok {
		h.log.Error().Msg("Received invalid data for notification event")
		return nil // Don't retry
	}

	msg := messages.NewBuilder(n.ChatID).WithText(messages.Notification(n.Notification)).Build()
	if _, err := h.bot.SendMessage(ctx, msg); err != nil {
		h.log.Error().Err(err).Int64("chat_id", n.ChatID).Msg("Failed to deliver notification")
		return err
	}
	return nil
}
