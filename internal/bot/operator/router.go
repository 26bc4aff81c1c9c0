package operator

import (
	"PayoutDesk/internal/adapters/telegram"
	"PayoutDesk/internal/bot/messages"
	"PayoutDesk/internal/core/ports"
	"PayoutDesk/internal/payouts"
	"PayoutDesk/internal/shared/config"
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Router holds all logic for the operator bot
type Router struct {
	log              zerolog.Logger
	cfg              *config.Config
	desks            *payouts.Desks
	sessions         Sessions
	botClient        ports.BotClientPort
	commandHandlers  map[string]ports.CommandHandler
	callbackHandlers map[string]ports.CallbackHandler
	messageHandler   ports.MessageHandler
}

// NewRouter creates the operator router and subscribes it to the bus.
func NewRouter(
	cfg *config.Config,
	desks *payouts.Desks,
	sessions Sessions,
	botClient ports.BotClientPort,
	bus ports.EventBus,
	baseLogger *zerolog.Logger,
) *Router {
	r := &Router{
		log:              baseLogger.With().Str("component", "operator_router").Logger(),
		cfg:              cfg,
		desks:            desks,
		sessions:         sessions,
		botClient:        botClient,
		commandHandlers:  make(map[string]ports.CommandHandler),
		callbackHandlers: make(map[string]ports.CallbackHandler),
	}

	bus.Subscribe(ports.TopicOperatorMessage, r.handleEvent)
	bus.Subscribe(ports.TopicOperatorCallback, r.handleEvent)
	return r
}

// RegisterCommandHandler
func (r *Router) RegisterCommandHandler(handler ports.CommandHandler) {
	cmd := handler.Command()
	r.commandHandlers[cmd] = handler
	r.log.Info().Str("command", cmd).Msg("Registered new operator command")
}

// RegisterCallbackHandler
func (r *Router) RegisterCallbackHandler(handler ports.CallbackHandler) {
	prefix := handler.Prefix()
	r.callbackHandlers[prefix] = handler
	r.log.Info().Str("prefix", prefix).Msg("Registered new operator callback")
}

// SetMessageHandler registers the single free-text handler
func (r *Router) SetMessageHandler(handler ports.MessageHandler) {
	r.messageHandler = handler
}

func (r *Router) handleEvent(ctx context.Context, event ports.Event) error {
	update, ok := event.Data.(tgbotapi.Update)
	if !ok {
		r.log.Error().Str("topic", event.Topic).Msg("Received invalid data on operator topic")
		return nil
	}
	r.HandleUpdate(ctx, &update)
	return nil
}

// HandleUpdate is the main entry point for the operator bot
func (r *Router) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	// 1. Convert to our generic BotUpdate
	botUpdate, isSupported := telegram.ParseUpdate(update)
	if !isSupported {
		r.log.Warn().Int("update_id", update.UpdateID).Msg("Received unsupported update type")
		return
	}

	// 2. Add logger context
	ctxLogger := r.log.With().
		Int64("user_id", botUpdate.UserID).
		Int64("chat_id", botUpdate.ChatID).
		Logger()
	ctx = ctxLogger.WithContext(ctx)

	// 3. --- CRITICAL SECURITY CHECK ---
	if !r.cfg.IsOperator(botUpdate.UserID) {
		ctxLogger.Warn().Msg("Unauthorized user tried to access the payout console")
		return
	}
	// --- END SECURITY CHECK ---

	// 4. Every call below needs a live admin token
	if err := r.sessions.Ensure(ctx); err != nil {
		ctxLogger.Error().Err(err).Msg("No admin session available")
		r.reply(ctx, botUpdate, "Admin session unavailable: "+err.Error())
		return
	}

	// 5. First contact with this chat loads its console
	desk, created := r.desks.Get(botUpdate.ChatID)
	if created {
		ctxLogger.Info().Msg("Opening payout console for chat")
		if err := desk.Load(ctx); err != nil {
			ctxLogger.Warn().Err(err).Msg("Initial console load failed")
		}
	}

	// 6. Route commands
	if botUpdate.Command != "" {
		if handler, ok := r.commandHandlers[botUpdate.Command]; ok {
			ctxLogger.Info().Str("handler", botUpdate.Command).Msg("Routing to operator command handler")
			if err := handler.Handle(ctx, botUpdate); err != nil {
				ctxLogger.Error().Err(err).Msg("Operator command handler failed")
			}
			return
		}
		r.reply(ctx, botUpdate, "Unknown command. Type /start to see what I can do.")
		return
	}

	// 7. Route callbacks
	if botUpdate.CallbackData != nil {
		for prefix, handler := range r.callbackHandlers {
			if strings.HasPrefix(*botUpdate.CallbackData, prefix) {
				ctxLogger.Info().Str("handler", prefix).Str("data", *botUpdate.CallbackData).Msg("Routing to operator callback handler")
				if err := handler.Handle(ctx, botUpdate); err != nil {
					ctxLogger.Error().Err(err).Msg("Operator callback handler failed")
				}
				return
			}
		}
		ctxLogger.Warn().Str("data", *botUpdate.CallbackData).Msg("No callback handler found")
		return
	}

	// 8. Route free text
	if r.messageHandler != nil {
		if err := r.messageHandler.Handle(ctx, botUpdate); err != nil {
			ctxLogger.Error().Err(err).Msg("Operator message handler failed")
		}
		return
	}

	ctxLogger.Info().Msg("Received unhandled message (no handler)")
}

func (r *Router) reply(ctx context.Context, update *ports.BotUpdate, text string) {
	msg := messages.NewBuilder(update.ChatID).WithPlainText(text).Build()
	if _, err := r.botClient.SendMessage(ctx, msg); err != nil {
		r.log.Error().Err(err).Msg("Failed to send reply")
	}
}
