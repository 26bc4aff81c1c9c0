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
	"strings"

	"github.com/rs/zerolog"
)

func init() {
	operator.RegisterCommand(NewSetHandler)
}

// setHandler changes one payout setting: /set <field> <value>.
type setHandler struct {
	log   zerolog.Logger
	desks *payouts.Desks
	bot   ports.BotClientPort
}

func NewSetHandler(
	cfg *config.Config,
	desks *payouts.Desks,
	sessions operator.Sessions,
	bot ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CommandHandler {
	return &setHandler{
		log:   baseLogger.With().Str("component", "set_handler").Logger(),
		desks: desks,
		bot:   bot,
	}
}

func (h *setHandler) Command() string {
	return "set"
}

func (h *setHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	fields := strings.Fields(update.CommandArgs)
	if len(fields) < 2 {
		return sendText(ctx, h.bot, update.ChatID,
			"Usage: /set <field> <value>. Fields: "+strings.Join(payouts.SettingNames(), ", "))
	}
	field, value := fields[0], strings.Join(fields[1:], " ")

	desk, _ := h.desks.Get(update.ChatID)
	draft, err := payouts.ApplySetting(desk.Snapshot().Settings, field, value)
	if err != nil {
		return sendText(ctx, h.bot, update.ChatID, err.Error())
	}

	err = desk.SaveSettings(ctx, *draft)
	switch {
	case errors.Is(err, domain.ErrInvalidSettings):
		// Validation failures never reach the backend, so no notification went out.
		return sendText(ctx, h.bot, update.ChatID, err.Error())
	case errors.Is(err, domain.ErrBusy):
		return sendText(ctx, h.bot, update.ChatID, busyText)
	case err != nil:
		return nil
	}

	h.log.Info().Str("field", field).Int64("operator_id", update.UserID).Msg("Payout setting changed")
	msg := messages.NewBuilder(update.ChatID).WithText(messages.Settings(desk.Snapshot().Settings)).Build()
	_, err = h.bot.SendMessage(ctx, msg)
	return err
}
