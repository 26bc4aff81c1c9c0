package telegram

import (
	"PayoutDesk/internal/core/ports"
	"PayoutDesk/internal/shared/config"
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// BotServer receives updates (polling or webhook) and publishes them on the
// event bus. It does not process anything itself.
type BotServer struct {
	api *tgbotapi.BotAPI
	cfg *config.BotConnectionConfig
	bus ports.EventBus
	log zerolog.Logger
}

// NewBotServer creates a new server instance
func NewBotServer(
	api *tgbotapi.BotAPI,
	cfg *config.BotConnectionConfig,
	bus ports.EventBus,
	baseLogger *zerolog.Logger,
) *BotServer {
	return &BotServer{
		api: api,
		cfg: cfg,
		bus: bus,
		log: baseLogger.With().Str("component", "bot_server").Logger(),
	}
}

// Start begins the bot server based on the config mode. It blocks until ctx
// is cancelled.
func (s *BotServer) Start(ctx context.Context) error {
	s.log.Info().Str("mode", s.cfg.Mode).Msg("Starting bot server...")

	switch s.cfg.Mode {
	case "polling":
		return s.startPolling(ctx)
	case "webhook":
		return s.startWebhook(ctx)
	default:
		return fmt.Errorf("unknown bot mode: %s", s.cfg.Mode)
	}
}

func (s *BotServer) startPolling(ctx context.Context) error {
	// 1. Clear any existing webhook
	deleteWebhookConfig := tgbotapi.DeleteWebhookConfig{
		DropPendingUpdates: false,
	}
	if _, err := s.api.Request(deleteWebhookConfig); err != nil {
		s.log.Warn().Err(err).Msg("Failed to delete webhook (continuing anyway)")
	} else {
		s.log.Info().Msg("Webhook deleted successfully")
	}

	// 2. Listen for messages and button presses only
	u := tgbotapi.NewUpdate(0)
	u.Timeout = s.cfg.Polling.Timeout
	u.AllowedUpdates = []string{"message", "callback_query"}

	updates := s.api.GetUpdatesChan(u)
	s.log.Info().Msg("Polling update listener started")

	// 3. Main loop: Poll and Publish
	for {
		select {
		case <-ctx.Done():
			s.api.StopReceivingUpdates()
			s.log.Info().Msg("Polling stopped gracefully")
			return nil
		case update := <-updates:
			s.publishUpdateToBus(ctx, update)
		}
	}
}

func (s *BotServer) startWebhook(ctx context.Context) error {
	// 1. Set the webhook
	webhookURL := fmt.Sprintf("%s/webhook/%s", s.cfg.Webhook.URL, s.api.Token)
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to create webhook config")
		return err
	}
	wh.AllowedUpdates = []string{"message", "callback_query"}
	if _, err = s.api.Request(wh); err != nil {
		s.log.Error().Err(err).Msg("Failed to set webhook")
		return err
	}

	info, err := s.api.GetWebhookInfo()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to get webhook info")
		return err
	}
	if info.LastErrorDate != 0 {
		s.log.Error().
			Str("error_message", info.LastErrorMessage).
			Msg("Telegram webhook has a last error")
	} else {
		s.log.Info().Msg("Webhook set successfully, no last error")
	}

	// 2. Start HTTP server; TLS is terminated by the reverse proxy
	listenAddr := fmt.Sprintf("127.0.0.1:%d", s.cfg.Webhook.ListenPort)
	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", listenAddr).Msg("Starting HTTP server for webhook")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// 3. Wait for shutdown
	select {
	case <-ctx.Done():
	case err := <-errCh:
		s.log.Error().Err(err).Msg("Webhook HTTP server failed")
		return err
	}

	s.log.Info().Msg("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	s.log.Info().Msg("Webhook server stopped gracefully")
	return nil
}

// Handler serves the webhook endpoint and a health probe.
func (s *BotServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/webhook/{token}", s.handleWebhook).Methods(http.MethodPost)
	return r
}

func (s *BotServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.api.Token)) != 1 {
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("Webhook call with wrong token")
		w.WriteHeader(http.StatusNotFound)
		return
	}

	update, err := s.api.HandleUpdate(r)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to decode webhook update")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// The bus runs handlers asynchronously, so Telegram gets its 200 at once.
	s.publishUpdateToBus(context.Background(), *update)
	w.WriteHeader(http.StatusOK)
}

// publishUpdateToBus inspects the update and publishes it to the correct topic.
func (s *BotServer) publishUpdateToBus(ctx context.Context, update tgbotapi.Update) {
	var topic string
	switch {
	case update.CallbackQuery != nil:
		topic = ports.TopicOperatorCallback
	case update.Message != nil:
		topic = ports.TopicOperatorMessage
	default:
		return
	}
	if err := s.bus.Publish(ctx, topic, update); err != nil {
		s.log.Error().Err(err).Str("topic", topic).Msg("Failed to publish update")
	}
}
