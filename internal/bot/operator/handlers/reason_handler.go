package handlers

import (
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
	operator.RegisterMessage(NewReasonHandler)
}

// reasonHandler takes free text as the rejection reason while the
// rejection modal is open.
type reasonHandler struct {
	log   zerolog.Logger
	desks *payouts.Desks
	bot   ports.BotClientPort
}

func NewReasonHandler(
	cfg *config.Config,
	desks *payouts.Desks,
	bot ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.MessageHandler {
	return &reasonHandler{
		log:   baseLogger.With().Str("component", "reason_handler").Logger(),
		desks: desks,
		bot:   bot,
	}
}

func (h *reasonHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	desk, _ := h.desks.Get(update.ChatID)
	r := desk.Snapshot().Rejection
	if r == nil {
		return sendText(ctx, h.bot, update.ChatID, "I only understand commands here. Type /start for help.")
	}

	err := desk.HandleRejectionConfirm(ctx, r.PayoutID, update.Text)
	switch {
	case err == nil:
		h.log.Info().Str("payout_id", r.PayoutID).Int64("operator_id", update.UserID).Msg("Payout rejected")
		return sendConsole(ctx, h.bot, desk)
	case errors.Is(err, domain.ErrBusy):
		return sendText(ctx, h.bot, update.ChatID, busyText)
	case errors.Is(err, domain.ErrNothingPending):
		return sendText(ctx, h.bot, update.ChatID, "This rejection is closed.")
	}
	// Invalid or refused reason: the modal is still open with its error.
	return sendDialog(ctx, h.bot, desk)
}
