package handlers

import (
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
	operator.RegisterCommand(NewPayoutsHandler)
	operator.RegisterCommand(NewRefreshHandler)
}

// payoutsHandler lists payouts, optionally switching the status filter.
type payoutsHandler struct {
	log   zerolog.Logger
	desks *payouts.Desks
	bot   ports.BotClientPort
}

func NewPayoutsHandler(
	cfg *config.Config,
	desks *payouts.Desks,
	sessions operator.Sessions,
	bot ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CommandHandler {
	return &payoutsHandler{
		log:   baseLogger.With().Str("component", "payouts_handler").Logger(),
		desks: desks,
		bot:   bot,
	}
}

func (h *payoutsHandler) Command() string {
	return "payouts"
}

func (h *payoutsHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	desk, _ := h.desks.Get(update.ChatID)

	var err error
	if arg := strings.ToLower(update.CommandArgs); arg != "" {
		status := domain.PayoutStatus(arg)
		if arg == "all" {
			status = ""
		} else if !status.Valid() {
			return sendText(ctx, h.bot, update.ChatID,
				"Unknown status "+arg+". Use pending, approved, on_hold, paid, rejected or all.")
		}
		err = desk.SetFilter(ctx, status)
	} else {
		err = desk.Refresh(ctx)
	}

	if errors.Is(err, domain.ErrBusy) {
		return sendText(ctx, h.bot, update.ChatID, busyText)
	}
	// Fetch failures were already delivered as notifications.
	return sendConsole(ctx, h.bot, desk)
}

// refreshHandler re-fetches on demand.
type refreshHandler struct {
	log   zerolog.Logger
	desks *payouts.Desks
	bot   ports.BotClientPort
}

func NewRefreshHandler(
	cfg *config.Config,
	desks *payouts.Desks,
	sessions operator.Sessions,
	bot ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CommandHandler {
	return &refreshHandler{
		log:   baseLogger.With().Str("component", "refresh_handler").Logger(),
		desks: desks,
		bot:   bot,
	}
}

func (h *refreshHandler) Command() string {
	return "refresh"
}

func (h *refreshHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	desk, _ := h.desks.Get(update.ChatID)
	if err := desk.Refresh(ctx); errors.Is(err, domain.ErrBusy) {
		return sendText(ctx, h.bot, update.ChatID, busyText)
	}
	return sendConsole(ctx, h.bot, desk)
}
