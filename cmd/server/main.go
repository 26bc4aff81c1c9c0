package main

import (
	"PayoutDesk/internal/adapters/eventbus"
	"PayoutDesk/internal/adapters/memory"
	"PayoutDesk/internal/adapters/postgres"
	"PayoutDesk/internal/adapters/redis"
	"PayoutDesk/internal/adapters/rest"
	"PayoutDesk/internal/adapters/security"
	"PayoutDesk/internal/adapters/telegram"
	"PayoutDesk/internal/bot/operator"
	"PayoutDesk/internal/bot/operator/handlers"
	"PayoutDesk/internal/core/ports"
	"PayoutDesk/internal/payouts"
	"PayoutDesk/internal/session"
	"PayoutDesk/internal/shared/config"
	"PayoutDesk/internal/shared/logger"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	isDevMode := cfg.AppEnv == "dev"
	baseLogger := logger.New(isDevMode, cfg.LogLevel)
	baseLogger.Info().Msg("Logger initialized")

	baseLogger.Info().
		Str("app_env", cfg.AppEnv).
		Str("api_base_url", cfg.API.BaseURL).
		Str("session_store", cfg.Session.Store).
		Str("bot_mode", cfg.Bot.Connection.Mode).
		Int("operators", len(cfg.Bot.OperatorIDs)).
		Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Token storage
	tokens, closeStore := buildTokenStore(ctx, cfg, &baseLogger)
	defer closeStore()

	// 4. Backend client and admin session
	apiClient := rest.NewClient(cfg.API.BaseURL, cfg.API.Timeout, tokens, &baseLogger)
	sessions := session.NewManager(tokens, apiClient, cfg.API.AdminEmail, cfg.API.AdminPassword, &baseLogger)
	if err := sessions.Ensure(ctx); err != nil {
		// Not fatal: the router retries on every operator message.
		baseLogger.Warn().Err(err).Msg("No admin session at startup")
	}

	// 5. Event bus and payout consoles
	bus := eventbus.NewInMemoryEventBus(&baseLogger)
	desks := payouts.NewDesks(apiClient, bus, payouts.Options{
		PageSize:         cfg.Payouts.PageSize,
		NotificationTTL:  cfg.Payouts.NotificationTTL,
		BulkRejectReason: cfg.Payouts.BulkRejectReason,
	}, &baseLogger)

	refresher := payouts.NewRefresher(desks, sessions, cfg.Payouts.RefreshInterval, &baseLogger)
	if err := refresher.Start(ctx); err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to start auto-refresh")
	}
	defer refresher.Stop()

	// 6. Telegram
	api, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to connect to Telegram")
	}
	baseLogger.Info().Str("bot", api.Self.UserName).Msg("Authorized on Telegram")

	botClient := telegram.NewClient(api, cfg.Bot.SendRatePerSecond, &baseLogger)
	if err := botClient.SetMenuCommands(ctx); err != nil {
		baseLogger.Warn().Err(err).Msg("Failed to set menu commands")
	}

	// 7. Operator bot: router, handlers and notification delivery
	router := operator.NewRouter(cfg, desks, sessions, botClient, bus, &baseLogger)
	operator.RegisterAllHandlers(cfg, router, desks, sessions, botClient, &baseLogger)

	notifier := handlers.NewNotificationHandler(botClient, &baseLogger)
	bus.Subscribe(ports.TopicNotification, notifier.HandleNotification)

	baseLogger.Info().Msg("All services initialized successfully")

	// 8. Receive updates until shutdown
	server := telegram.NewBotServer(api, &cfg.Bot.Connection, bus, &baseLogger)
	if err := server.Start(ctx); err != nil {
		baseLogger.Error().Err(err).Msg("Bot server stopped with error")
	}

	bus.Wait()
	baseLogger.Info().Msg("Shutdown complete")
}

// buildTokenStore opens the configured session store.
func buildTokenStore(ctx context.Context, cfg *config.Config, baseLogger *zerolog.Logger) (ports.TokenStore, func()) {
	switch cfg.Session.Store {
	case "postgres":
		secSvc, err := security.NewTokenCipherFromHex(cfg.EncryptionKey, baseLogger)
		if err != nil {
			baseLogger.Fatal().Err(err).Msg("Failed to initialize security service")
		}
		db, err := postgres.NewDB(ctx, cfg.Postgres.URL, baseLogger)
		if err != nil {
			baseLogger.Fatal().Err(err).Msg("Failed to initialize database")
		}
		if err := db.EnsureSchema(ctx); err != nil {
			baseLogger.Fatal().Err(err).Msg("Failed to prepare session table")
		}
		return postgres.NewTokenStore(db, secSvc, cfg.Session.KeyPrefix, baseLogger), db.Close

	case "redis":
		secSvc, err := security.NewTokenCipherFromHex(cfg.EncryptionKey, baseLogger)
		if err != nil {
			baseLogger.Fatal().Err(err).Msg("Failed to initialize security service")
		}
		client, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, baseLogger)
		if err != nil {
			baseLogger.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		return redis.NewTokenStore(client, secSvc, cfg.Session.KeyPrefix, baseLogger), func() { _ = client.Close() }

	default:
		baseLogger.Info().Msg("Using in-memory session store; the admin token is lost on restart")
		return memory.NewTokenStore(), func() {}
	}
}
