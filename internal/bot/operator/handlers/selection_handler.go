package handlers

import (
	"PayoutDesk/internal/bot/messages"
	"PayoutDesk/internal/bot/operator"
	"PayoutDesk/internal/core/ports"
	"PayoutDesk/internal/payouts"
	"PayoutDesk/internal/shared/config"
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

func init() {
	operator.RegisterCommand(NewSelectAllHandler)
	operator.RegisterCommand(NewClearHandler)
	operator.RegisterCallback(NewSelectHandler)
}

// selectionCommand is /selectall or /clear.
type selectionCommand struct {
	command string
	apply   func(d *payouts.Desk) string
	desks   *payouts.Desks
	bot     ports.BotClientPort
}

func (h *selectionCommand) Command() string {
	return h.command
}

func (h *selectionCommand) Handle(ctx context.Context, update *ports.BotUpdate) error {
	desk, _ := h.desks.Get(update.ChatID)
	if err := sendText(ctx, h.bot, update.ChatID, h.apply(desk)); err != nil {
		return err
	}
	return sendConsole(ctx, h.bot, desk)
}

func NewSelectAllHandler(
	cfg *config.Config,
	desks *payouts.Desks,
	sessions operator.Sessions,
	bot ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CommandHandler {
	return &selectionCommand{
		command: "selectall",
		apply: func(d *payouts.Desk) string {
			return fmt.Sprintf("Selected %d payouts on this page.", d.SelectAll())
		},
		desks: desks,
		bot:   bot,
	}
}

func NewClearHandler(
	cfg *config.Config,
	desks *payouts.Desks,
	sessions operator.Sessions,
	bot ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CommandHandler {
	return &selectionCommand{
		command: "clear",
		apply: func(d *payouts.Desk) string {
			d.ClearSelection()
			return "Selection cleared."
		},
		desks: desks,
		bot:   bot,
	}
}

// selectHandler toggles one payout and redraws the console in place.
type selectHandler struct {
	log   zerolog.Logger
	desks *payouts.Desks
	bot   ports.BotClientPort
}

func NewSelectHandler(
	cfg *config.Config,
	desks *payouts.Desks,
	bot ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CallbackHandler {
	return &selectHandler{
		log:   baseLogger.With().Str("component", "select_handler").Logger(),
		desks: desks,
		bot:   bot,
	}
}

func (h *selectHandler) Prefix() string {
	return messages.PrefixSelect
}

func (h *selectHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	payoutID := strings.TrimPrefix(*update.CallbackData, messages.PrefixSelect)
	desk, _ := h.desks.Get(update.ChatID)

	if _, ok := desk.Payout(payoutID); !ok {
		return answer(ctx, h.bot, update, "That payout is no longer listed.")
	}

	text := "Unselected " + payoutID
	if desk.ToggleSelect(payoutID) {
		text = "Selected " + payoutID
	}
	if err := answer(ctx, h.bot, update, text); err != nil {
		h.log.Warn().Err(err).Msg("Failed to answer select callback")
	}
	return editConsole(ctx, h.bot, desk, update.MessageID)
}
