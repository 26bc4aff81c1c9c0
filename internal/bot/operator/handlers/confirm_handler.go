package handlers

import (
	"PayoutDesk/internal/bot/messages"
	"PayoutDesk/internal/bot/operator"
	"PayoutDesk/internal/core/domain"
	"PayoutDesk/internal/core/ports"
	"PayoutDesk/internal/payouts"
	"PayoutDesk/internal/shared/config"
	"context"
	"errors"

	"github.com/rs/zerolog"
)

func init() {
	operator.RegisterCallback(NewConfirmHandler)
}

// confirmHandler answers the generic dialog's buttons.
type confirmHandler struct {
	log   zerolog.Logger
	desks *payouts.Desks
	bot   ports.BotClientPort
}

func NewConfirmHandler(
	cfg *config.Config,
	desks *payouts.Desks,
	bot ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CallbackHandler {
	return &confirmHandler{
		log:   baseLogger.With().Str("component", "confirm_handler").Logger(),
		desks: desks,
		bot:   bot,
	}
}

func (h *confirmHandler) Prefix() string {
	return messages.PrefixConfirm
}

func (h *confirmHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	desk, _ := h.desks.Get(update.ChatID)
	c := desk.Snapshot().Confirmation

	if c == nil {
		_ = answer(ctx, h.bot, update, "Nothing to confirm.")
		return h.edit(ctx, update, "This dialog is closed.", nil)
	}

	if *update.CallbackData != messages.DataConfirmYes {
		desk.CancelConfirmation()
		_ = answer(ctx, h.bot, update, "Cancelled")
		return h.edit(ctx, update, "✖️ "+c.Message, nil)
	}

	_ = answer(ctx, h.bot, update, "Working…")
	// Drop the buttons first so a second tap cannot resubmit.
	if err := h.edit(ctx, update, "⏳ "+c.Message, nil); err != nil {
		h.log.Warn().Err(err).Msg("Failed to mark dialog as in progress")
	}

	err := desk.HandleConfirmedAction(ctx)
	switch {
	case errors.Is(err, domain.ErrBusy):
		return h.edit(ctx, update, busyText+"\n"+c.Message, messages.ConfirmKeyboard())
	case errors.Is(err, domain.ErrNothingPending):
		return h.edit(ctx, update, "This dialog is closed.", nil)
	case err != nil:
		// The failure itself was delivered as a notification.
		return h.edit(ctx, update, "❌ "+c.Message, nil)
	}

	h.log.Info().
		Str("action", string(c.Action)).
		Str("payout_id", c.PayoutID).
		Int64("operator_id", update.UserID).
		Msg("Confirmed action completed")
	if err := h.edit(ctx, update, "✅ "+c.Message, nil); err != nil {
		h.log.Warn().Err(err).Msg("Failed to mark dialog as done")
	}
	return sendConsole(ctx, h.bot, desk)
}

func (h *confirmHandler) edit(ctx context.Context, update *ports.BotUpdate, text string, buttons [][]ports.Button) error {
	params := messages.NewBuilder(update.ChatID).WithPlainText(text).WithInlineButtons(buttons).Edit(update.MessageID)
	return h.bot.EditMessageText(ctx, params)
}
