package handlers

import (
	"PayoutDesk/internal/bot/messages"
	"PayoutDesk/internal/core/ports"
	"PayoutDesk/internal/payouts"
	"context"
)

const busyText = "Still working on the previous request, try again in a moment."

// sendText sends plain text, escaped for MarkdownV2.
func sendText(ctx context.Context, bot ports.BotClientPort, chatID int64, text string) error {
	_, err := bot.SendMessage(ctx, messages.NewBuilder(chatID).WithPlainText(text).Build())
	return err
}

// consoleMessage is the payout listing with its keyboard.
func consoleMessage(desk *payouts.Desk) *messages.Builder {
	state := desk.Snapshot()
	return messages.NewBuilder(desk.ChatID()).
		WithText(messages.PayoutList(state)).
		WithInlineButtons(messages.PayoutKeyboard(state))
}

func sendConsole(ctx context.Context, bot ports.BotClientPort, desk *payouts.Desk) error {
	_, err := bot.SendMessage(ctx, consoleMessage(desk).Build())
	return err
}

// editConsole redraws a console message in place.
func editConsole(ctx context.Context, bot ports.BotClientPort, desk *payouts.Desk, messageID int) error {
	return bot.EditMessageText(ctx, consoleMessage(desk).Edit(messageID))
}

// sendDialog shows whichever dialog the desk has open.
func sendDialog(ctx context.Context, bot ports.BotClientPort, desk *payouts.Desk) error {
	state := desk.Snapshot()
	b := messages.NewBuilder(desk.ChatID())
	switch {
	case state.Rejection != nil:
		b.WithText(messages.RejectionPrompt(state.Rejection))
	case state.Confirmation != nil:
		b.WithText(messages.Confirmation(state.Confirmation)).WithInlineButtons(messages.ConfirmKeyboard())
	default:
		return nil
	}
	_, err := bot.SendMessage(ctx, b.Build())
	return err
}

func answer(ctx context.Context, bot ports.BotClientPort, update *ports.BotUpdate, text string) error {
	return bot.AnswerCallbackQuery(ctx, ports.AnswerCallbackParams{
		CallbackQueryID: update.CallbackQueryID,
		Text:            text,
	})
}
