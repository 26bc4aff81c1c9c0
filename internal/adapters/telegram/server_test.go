package telegram

import (
	"PayoutDesk/internal/core/ports"
	"PayoutDesk/internal/shared/config"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockEventBus
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, topic string, data interface{}) error {
	args := m.Called(ctx, topic, data)
	return args.Error(0)
}
func (m *MockEventBus) Subscribe(topic string, handler ports.EventHandler) {
	m.Called(topic, handler)
}

func newTestServer() (*BotServer, *MockEventBus) {
	nopLogger := zerolog.Nop()
	bus := new(MockEventBus)
	api := &tgbotapi.BotAPI{Token: "123:abc"}
	cfg := &config.BotConnectionConfig{Mode: "webhook"}
	return NewBotServer(api, cfg, bus, &nopLogger), bus
}

func TestBotServer_Healthz(t *testing.T) {
	server, _ := newTestServer()

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBotServer_WebhookPublishesByKind(t *testing.T) {
	server, bus := newTestServer()
	bus.On("Publish", mock.Anything, ports.TopicOperatorMessage, mock.AnythingOfType("tgbotapi.Update")).Return(nil).Once()
	bus.On("Publish", mock.Anything, ports.TopicOperatorCallback, mock.AnythingOfType("tgbotapi.Update")).Return(nil).Once()

	bodies := []string{
		`{"update_id":1,"message":{"message_id":5,"date":0,"chat":{"id":1000,"type":"private"},"from":{"id":789},"text":"/payouts"}}`,
		`{"update_id":2,"callback_query":{"id":"cb","from":{"id":789},"data":"confirm_yes","message":{"message_id":5,"date":0,"chat":{"id":1000,"type":"private"}}}}`,
		`{"update_id":3,"edited_message":{"message_id":5,"date":0,"chat":{"id":1000,"type":"private"}}}`,
	}
	for _, body := range bodies {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/webhook/123:abc", strings.NewReader(body))
		server.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	bus.AssertExpectations(t)
	bus.AssertNumberOfCalls(t, "Publish", 2)
}

func TestBotServer_WebhookRejectsWrongToken(t *testing.T) {
	server, bus := newTestServer()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/nope", strings.NewReader(`{"update_id":1}`))
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestBotServer_WebhookBadBody(t *testing.T) {
	server, _ := newTestServer()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/123:abc", strings.NewReader(`not json`))
	server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
