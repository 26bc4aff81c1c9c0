package handlers

import (
	"PayoutDesk/internal/bot/operator"
	"PayoutDesk/internal/core/domain"
	"PayoutDesk/internal/core/ports"
	"PayoutDesk/internal/payouts"
	"PayoutDesk/internal/shared/config"
	"context"
	"strings"

	"github.com/rs/zerolog"
)

func init() {
	operator.RegisterCommand(NewHoldHandler)
	operator.RegisterCommand(NewBulkHandler)
}

// holdHandler asks to flip the global hold. The optional argument is the
// hold reason.
type holdHandler struct {
	log   zerolog.Logger
	desks *payouts.Desks
	bot   ports.BotClientPort
}

func NewHoldHandler(
	cfg *config.Config,
	desks *payouts.Desks,
	sessions operator.Sessions,
	bot ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CommandHandler {
	return &holdHandler{
		log:   baseLogger.With().Str("component", "hold_handler").Logger(),
		desks: desks,
		bot:   bot,
	}
}

func (h *holdHandler) Command() string {
	return "hold"
}

func (h *holdHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	desk, _ := h.desks.Get(update.ChatID)
	if err := desk.ConfirmGlobalHold(update.CommandArgs); err != nil {
		return sendText(ctx, h.bot, update.ChatID, err.Error())
	}
	return sendDialog(ctx, h.bot, desk)
}

// bulkHandler asks to apply one action to every selected payout.
type bulkHandler struct {
	log   zerolog.Logger
	desks *payouts.Desks
	bot   ports.BotClientPort
}

func NewBulkHandler(
	cfg *config.Config,
	desks *payouts.Desks,
	sessions operator.Sessions,
	bot ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CommandHandler {
	return &bulkHandler{
		log:   baseLogger.With().Str("component", "bulk_handler").Logger(),
		desks: desks,
		bot:   bot,
	}
}

func (h *bulkHandler) Command() string {
	return "bulk"
}

func (h *bulkHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	action, err := domain.ParseAction(update.CommandArgs)
	if err != nil || !action.Bulkable() {
		return sendText(ctx, h.bot, update.ChatID, "Usage: /bulk <approve|reject|hold>")
	}

	desk, _ := h.desks.Get(update.ChatID)
	if len(desk.Selected()) == 0 {
		return sendText(ctx, h.bot, update.ChatID,
			capitalize(domain.ErrNoSelection.Error())+". Tap the box next to a payout or use /selectall.")
	}

	if err := desk.ConfirmAction(action, "", ""); err != nil {
		return sendText(ctx, h.bot, update.ChatID, err.Error())
	}
	return sendDialog(ctx, h.bot, desk)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
