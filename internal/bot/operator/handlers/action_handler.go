package handlers

import (
	"PayoutDesk/internal/bot/messages"
	"PayoutDesk/internal/bot/operator"
	"PayoutDesk/internal/core/domain"
	"PayoutDesk/internal/core/ports"
	"PayoutDesk/internal/payouts"
	"PayoutDesk/internal/shared/config"
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

func init() {
	operator.RegisterCallback(NewActionHandler)
}

// actionHandler opens the dialog for a per-payout button.
type actionHandler struct {
	log   zerolog.Logger
	desks *payouts.Desks
	bot   ports.BotClientPort
}

func NewActionHandler(
	cfg *config.Config,
	desks *payouts.Desks,
	bot ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CallbackHandler {
	return &actionHandler{
		log:   baseLogger.With().Str("component", "action_handler").Logger(),
		desks: desks,
		bot:   bot,
	}
}

func (h *actionHandler) Prefix() string {
	return messages.PrefixPayout
}

func (h *actionHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	log := h.log.With().Int64("operator_id", update.UserID).Logger()

	// 1. Answer the callback to stop the spinner
	if err := answer(ctx, h.bot, update, ""); err != nil {
		log.Warn().Err(err).Msg("Failed to answer action callback")
	}

	// 2. Parse the callback data
	action, payoutID, err := messages.ParsePayoutData(*update.CallbackData)
	if err != nil {
		log.Error().Err(err).Msg("Invalid callback data format")
		return nil
	}
	log = log.With().Str("payout_id", payoutID).Str("action", string(action)).Logger()

	// 3. The button may be stale; offer only what the current status allows
	desk, _ := h.desks.Get(update.ChatID)
	p, ok := desk.Payout(payoutID)
	if !ok {
		return sendText(ctx, h.bot, update.ChatID,
			fmt.Sprintf("Payout %s is no longer listed. Use /refresh.", payoutID))
	}
	if !domain.Offers(p.Status, action) {
		log.Warn().Str("status", string(p.Status)).Msg("Action not offered for payout status")
		return sendText(ctx, h.bot, update.ChatID,
			fmt.Sprintf("Cannot %s payout %s while it is %s.", action.Label(), payoutID, p.Status))
	}

	// 4. Open the dialog
	if err := desk.ConfirmAction(action, payoutID, ""); err != nil {
		return sendText(ctx, h.bot, update.ChatID, err.Error())
	}
	return sendDialog(ctx, h.bot, desk)
}
