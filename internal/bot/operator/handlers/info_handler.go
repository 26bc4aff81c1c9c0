package handlers

import (
	"PayoutDesk/internal/bot/messages"
	"PayoutDesk/internal/bot/operator"
	"PayoutDesk/internal/core/ports"
	"PayoutDesk/internal/payouts"
	"PayoutDesk/internal/shared/config"
	"context"

	"github.com/rs/zerolog"
)

func init() {
	operator.RegisterCommand(NewStatsHandler)
	operator.RegisterCommand(NewWindowHandler)
	operator.RegisterCommand(NewSettingsHandler)
}

// infoHandler renders one read-only part of the console. A busy desk still
// renders what it has.
type infoHandler struct {
	command string
	refresh bool
	render  func(payouts.State) string
	log     zerolog.Logger
	desks   *payouts.Desks
	bot     ports.BotClientPort
}

func (h *infoHandler) Command() string {
	return h.command
}

func (h *infoHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	desk, _ := h.desks.Get(update.ChatID)
	if h.refresh {
		if err := desk.Refresh(ctx); err != nil {
			h.log.Debug().Err(err).Msg("Refresh before render did not complete")
		}
	}
	msg := messages.NewBuilder(update.ChatID).WithText(h.render(desk.Snapshot())).Build()
	_, err := h.bot.SendMessage(ctx, msg)
	return err
}

func NewStatsHandler(
	cfg *config.Config,
	desks *payouts.Desks,
	sessions operator.Sessions,
	bot ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CommandHandler {
	return &infoHandler{
		command: "stats",
		refresh: true,
		render:  func(s payouts.State) string { return messages.Stats(s.Stats) },
		log:     baseLogger.With().Str("component", "stats_handler").Logger(),
		desks:   desks,
		bot:     bot,
	}
}

func NewWindowHandler(
	cfg *config.Config,
	desks *payouts.Desks,
	sessions operator.Sessions,
	bot ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CommandHandler {
	return &infoHandler{
		command: "window",
		refresh: true,
		render:  func(s payouts.State) string { return messages.Window(s.Window) },
		log:     baseLogger.With().Str("component", "window_handler").Logger(),
		desks:   desks,
		bot:     bot,
	}
}

// NewSettingsHandler shows the settings as last fetched; they are refreshed
// after every change the console makes.
func NewSettingsHandler(
	cfg *config.Config,
	desks *payouts.Desks,
	sessions operator.Sessions,
	bot ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CommandHandler {
	return &infoHandler{
		command: "settings",
		render:  func(s payouts.State) string { return messages.Settings(s.Settings) },
		log:     baseLogger.With().Str("component", "settings_handler").Logger(),
		desks:   desks,
		bot:     bot,
	}
}
