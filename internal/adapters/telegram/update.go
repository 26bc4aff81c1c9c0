package telegram

import (
	"PayoutDesk/internal/core/ports"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ParseUpdate converts a Telegram update into our generic BotUpdate.
// Updates without a sender or chat are not supported.
func ParseUpdate(update *tgbotapi.Update) (*ports.BotUpdate, bool) {
	if cb := update.CallbackQuery; cb != nil {
		if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
			return nil, false
		}
		data := cb.Data
		return &ports.BotUpdate{
			MessageID:       cb.Message.MessageID,
			ChatID:          cb.Message.Chat.ID,
			UserID:          cb.From.ID,
			CallbackQueryID: cb.ID,
			CallbackData:    &data,
		}, true
	}

	if msg := update.Message; msg != nil {
		if msg.From == nil || msg.Chat == nil {
			return nil, false
		}
		return &ports.BotUpdate{
			MessageID:   msg.MessageID,
			ChatID:      msg.Chat.ID,
			UserID:      msg.From.ID,
			Text:        strings.TrimSpace(msg.Text),
			Command:     msg.Command(),
			CommandArgs: strings.TrimSpace(msg.CommandArguments()),
		}, true
	}

	return nil, false
}
