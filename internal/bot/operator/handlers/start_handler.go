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
	operator.RegisterCommand(NewStartHandler)
	operator.RegisterCommand(NewHelpHandler)
}

const helpText = `Payout console

/payouts [status] - list payouts (pending, approved, on_hold, paid, rejected or all)
/refresh - re-fetch payouts, stats and window
/stats - counts and amounts per status
/window - is the payout window open?
/settings - show payout settings
/set <field> <value> - change one setting
/hold [reason] - toggle the global payout hold
/bulk <approve|reject|hold> - act on the selected payouts
/selectall, /clear - manage the selection
/cancel - close the open dialog
/logout - end the admin session

Tap a payout's buttons to act on it, or its box to select it.`

type startHandler struct {
	command string
	log     zerolog.Logger
	desks   *payouts.Desks
	bot     ports.BotClientPort
}

func newStart(command string, desks *payouts.Desks, bot ports.BotClientPort, baseLogger *zerolog.Logger) *startHandler {
	return &startHandler{
		command: command,
		log:     baseLogger.With().Str("component", command+"_handler").Logger(),
		desks:   desks,
		bot:     bot,
	}
}

// NewStartHandler greets the operator with help and the console.
func NewStartHandler(
	cfg *config.Config,
	desks *payouts.Desks,
	sessions operator.Sessions,
	bot ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CommandHandler {
	return newStart("start", desks, bot, baseLogger)
}

// NewHelpHandler is /start under another name.
func NewHelpHandler(
	cfg *config.Config,
	desks *payouts.Desks,
	sessions operator.Sessions,
	bot ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CommandHandler {
	return newStart("help", desks, bot, baseLogger)
}

func (h *startHandler) Command() string {
	return h.command
}

func (h *startHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	if err := sendText(ctx, h.bot, update.ChatID, helpText); err != nil {
		return err
	}
	desk, _ := h.desks.Get(update.ChatID)
	return sendConsole(ctx, h.bot, desk)
}
