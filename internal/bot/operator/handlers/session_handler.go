package handlers

import (
	"PayoutDesk/internal/bot/operator"
	"PayoutDesk/internal/core/ports"
	"PayoutDesk/internal/payouts"
	"PayoutDesk/internal/shared/config"
	"context"

	"github.com/rs/zerolog"
)

func init() {
	operator.RegisterCommand(NewCancelHandler)
	operator.RegisterCommand(NewLogoutHandler)
}

// cancelHandler closes whichever dialog is open.
type cancelHandler struct {
	desks *payouts.Desks
	bot   ports.BotClientPort
}

func NewCancelHandler(
	cfg *config.Config,
	desks *payouts.Desks,
	sessions operator.Sessions,
	bot ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CommandHandler {
	return &cancelHandler{desks: desks, bot: bot}
}

func (h *cancelHandler) Command() string {
	return "cancel"
}

func (h *cancelHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	desk, _ := h.desks.Get(update.ChatID)
	state := desk.Snapshot()
	if state.Confirmation == nil && state.Rejection == nil {
		return sendText(ctx, h.bot, update.ChatID, "Nothing to cancel.")
	}
	desk.CancelConfirmation()
	desk.CancelRejection()
	return sendText(ctx, h.bot, update.ChatID, "Cancelled.")
}

// logoutHandler ends the admin session and forgets this chat's console.
type logoutHandler struct {
	log      zerolog.Logger
	desks    *payouts.Desks
	sessions operator.Sessions
	bot      ports.BotClientPort
}

func NewLogoutHandler(
	cfg *config.Config,
	desks *payouts.Desks,
	sessions operator.Sessions,
	bot ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CommandHandler {
	return &logoutHandler{
		log:      baseLogger.With().Str("component", "logout_handler").Logger(),
		desks:    desks,
		sessions: sessions,
		bot:      bot,
	}
}

func (h *logoutHandler) Command() string {
	return "logout"
}

func (h *logoutHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	if err := h.sessions.Logout(ctx); err != nil {
		h.log.Error().Err(err).Msg("Logout failed")
		return sendText(ctx, h.bot, update.ChatID, "Logout failed: "+err.Error())
	}
	h.desks.Drop(update.ChatID)
	h.log.Info().Int64("operator_id", update.UserID).Msg("Operator logged out")
	return sendText(ctx, h.bot, update.ChatID, "Logged out. Your next message signs in again.")
}
