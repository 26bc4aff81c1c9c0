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
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

func init() {
	operator.RegisterCallback(NewPageHandler)
}

// pageHandler moves the listing and redraws it in place.
type pageHandler struct {
	log   zerolog.Logger
	desks *payouts.Desks
	bot   ports.BotClientPort
}

func NewPageHandler(
	cfg *config.Config,
	desks *payouts.Desks,
	bot ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CallbackHandler {
	return &pageHandler{
		log:   baseLogger.With().Str("component", "page_handler").Logger(),
		desks: desks,
		bot:   bot,
	}
}

func (h *pageHandler) Prefix() string {
	return messages.PrefixPage
}

func (h *pageHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	page, err := strconv.Atoi(strings.TrimPrefix(*update.CallbackData, messages.PrefixPage))
	if err != nil {
		h.log.Error().Str("data", *update.CallbackData).Msg("Invalid page callback")
		return answer(ctx, h.bot, update, "")
	}

	desk, _ := h.desks.Get(update.ChatID)
	if err := desk.SetPage(ctx, page); errors.Is(err, domain.ErrBusy) {
		return answer(ctx, h.bot, update, busyText)
	}
	if err := answer(ctx, h.bot, update, ""); err != nil {
		h.log.Warn().Err(err).Msg("Failed to answer page callback")
	}
	return editConsole(ctx, h.bot, desk, update.MessageID)
}
