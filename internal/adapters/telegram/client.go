package telegram

import (
	"PayoutDesk/internal/core/ports"
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// OperatorCommands is the menu shown next to the chat input.
var OperatorCommands = []tgbotapi.BotCommand{
	{Command: "payouts", Description: "List payouts, optionally by status"},
	{Command: "refresh", Description: "Re-fetch payouts, stats and window"},
	{Command: "stats", Description: "Counts and amounts per status"},
	{Command: "window", Description: "Is the payout window open?"},
	{Command: "settings", Description: "Show payout settings"},
	{Command: "set", Description: "Change one setting: /set <field> <value>"},
	{Command: "hold", Description: "Toggle the global payout hold"},
	{Command: "bulk", Description: "Apply approve|reject|hold to the selection"},
	{Command: "selectall", Description: "Select every payout on the page"},
	{Command: "clear", Description: "Clear the selection"},
	{Command: "cancel", Description: "Close the open dialog"},
	{Command: "logout", Description: "End the admin session"},
}

// tgClient implements the BotClientPort. Every outbound call waits on a
// shared limiter to stay under Telegram's flood limits.
type tgClient struct {
	api     *tgbotapi.BotAPI
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewClient creates a new Telegram client adapter sending at most
// perSecond requests per second.
func NewClient(api *tgbotapi.BotAPI, perSecond float64, baseLogger *zerolog.Logger) ports.BotClientPort {
	if perSecond <= 0 {
		perSecond = 20
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &tgClient{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		log:     baseLogger.With().Str("component", "tg_client").Logger(),
	}
}

func (c *tgClient) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limiter: %w", err)
	}
	return nil
}

// SendMessage translates our params into a tgbotapi message and returns
// the new message id.
func (c *tgClient) SendMessage(ctx context.Context, params ports.SendMessageParams) (int, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}

	msg := tgbotapi.NewMessage(params.ChatID, params.Text)
	msg.ParseMode = params.ParseMode
	if params.ReplyMarkup != nil {
		msg.ReplyMarkup = buildInlineKeyboard(params.ReplyMarkup.Buttons)
	}

	sent, err := c.api.Send(msg)
	if err != nil {
		c.log.Error().Err(err).Int64("chat_id", params.ChatID).Msg("Failed to send message")
		return 0, err
	}
	return sent.MessageID, nil
}

// buildInlineKeyboard is a helper to create the inline keyboard.
func buildInlineKeyboard(buttons [][]ports.Button) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, buttonRow := range buttons {
		var row []tgbotapi.InlineKeyboardButton
		for _, btn := range buttonRow {
			if btn.URL != "" {
				row = append(row, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
			} else {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
			}
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// SetMenuCommands sets the operator /menu commands.
func (c *tgClient) SetMenuCommands(ctx context.Context) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	config := tgbotapi.NewSetMyCommands(OperatorCommands...)
	if _, err := c.api.Request(config); err != nil {
		c.log.Error().Err(err).Msg("Failed to set menu commands")
		return err
	}
	return nil
}

// EditMessageText replaces a message in place. A nil markup removes the
// inline keyboard.
func (c *tgClient) EditMessageText(ctx context.Context, params ports.EditMessageParams) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	msg := tgbotapi.NewEditMessageText(params.ChatID, params.MessageID, params.Text)
	msg.ParseMode = params.ParseMode
	if params.ReplyMarkup != nil {
		inlineMarkup := buildInlineKeyboard(params.ReplyMarkup.Buttons)
		msg.ReplyMarkup = &inlineMarkup
	}

	if _, err := c.api.Send(msg); err != nil {
		c.log.Error().Err(err).
			Int64("chat_id", params.ChatID).
			Int("message_id", params.MessageID).
			Msg("Failed to edit message text")
		return err
	}
	return nil
}

// AnswerCallbackQuery sends a response to a callback query (stops the spinner)
func (c *tgClient) AnswerCallbackQuery(ctx context.Context, params ports.AnswerCallbackParams) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	callbackConfig := tgbotapi.NewCallback(params.CallbackQueryID, params.Text)
	callbackConfig.ShowAlert = params.ShowAlert

	if _, err := c.api.Request(callbackConfig); err != nil {
		c.log.Error().Err(err).
			Str("callback_query_id", params.CallbackQueryID).
			Msg("Failed to answer callback query")
		return err
	}
	return nil
}
