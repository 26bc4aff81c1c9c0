package operator

import (
	"PayoutDesk/internal/core/ports"
	"PayoutDesk/internal/payouts"
	"PayoutDesk/internal/shared/config"
	"context"

	"github.com/rs/zerolog"
)

// Sessions is the part of the admin session the console drives.
type Sessions interface {
	Ensure(ctx context.Context) error
	Logout(ctx context.Context) error
}

// Define constructor types for operator handlers
type CommandHandlerConstructor func(
	cfg *config.Config,
	desks *payouts.Desks,
	sessions Sessions,
	botClient ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CommandHandler

type MessageHandlerConstructor func(
	cfg *config.Config,
	desks *payouts.Desks,
	botClient ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.MessageHandler

type CallbackHandlerConstructor func(
	cfg *config.Config,
	desks *payouts.Desks,
	botClient ports.BotClientPort,
	baseLogger *zerolog.Logger,
) ports.CallbackHandler

var (
	commandRegistry  []CommandHandlerConstructor
	messageHandler   MessageHandlerConstructor
	callbackRegistry []CallbackHandlerConstructor
)

// RegisterCommand is called by handlers in their init() function
func RegisterCommand(constructor CommandHandlerConstructor) {
	commandRegistry = append(commandRegistry, constructor)
}

// RegisterCallback
func RegisterCallback(constructor CallbackHandlerConstructor) {
	callbackRegistry = append(callbackRegistry, constructor)
}

// RegisterMessage sets the single free-text handler.
func RegisterMessage(constructor MessageHandlerConstructor) {
	messageHandler = constructor
}

// RegisterAllHandlers builds every registered handler and hands it to the router.
func RegisterAllHandlers(
	cfg *config.Config,
	router *Router,
	desks *payouts.Desks,
	sessions Sessions,
	botClient ports.BotClientPort,
	baseLogger *zerolog.Logger,
) {
	log := baseLogger.With().Str("component", "operator_registry").Logger()
	// Register all commands
	for _, constructor := range commandRegistry {
		handler := constructor(cfg, desks, sessions, botClient, baseLogger)
		router.RegisterCommandHandler(handler)
	}

	// Register the single message handler
	if messageHandler != nil {
		handler := messageHandler(cfg, desks, botClient, baseLogger)
		router.SetMessageHandler(handler)
		log.Info().Msg("Registered main message handler")
	}

	// Register all callbacks
	for _, constructor := range callbackRegistry {
		handler := constructor(cfg, desks, botClient, baseLogger)
		router.RegisterCallbackHandler(handler)
	}
}
