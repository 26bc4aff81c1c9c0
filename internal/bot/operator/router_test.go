package operator

import (
	"PayoutDesk/internal/core/domain"
	"PayoutDesk/internal/core/ports"
	"PayoutDesk/internal/payouts"
	"PayoutDesk/internal/shared/config"
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

// MockPayoutAPI
type MockPayoutAPI struct {
	mock.Mock
}

func (m *MockPayoutAPI) ListPayouts(ctx context.Context, filter domain.PayoutFilter) (*domain.PayoutPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayoutPage), args.Error(1)
}
func (m *MockPayoutAPI) GetStats(ctx context.Context) (*domain.PayoutStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayoutStats), args.Error(1)
}
func (m *MockPayoutAPI) GetSettings(ctx context.Context) (*domain.PayoutSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayoutSettings), args.Error(1)
}
func (m *MockPayoutAPI) UpdateSettings(ctx context.Context, settings domain.PayoutSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}
func (m *MockPayoutAPI) SetGlobalHold(ctx context.Context, isHeld bool, reason string) error {
	args := m.Called(ctx, isHeld, reason)
	return args.Error(0)
}
func (m *MockPayoutAPI) GetWindowStatus(ctx context.Context) (*domain.PayoutWindowStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayoutWindowStatus), args.Error(1)
}
func (m *MockPayoutAPI) ProcessPayout(ctx context.Context, payoutID string, action domain.Action, reason string) error {
	args := m.Called(ctx, payoutID, action, reason)
	return args.Error(0)
}
func (m *MockPayoutAPI) BulkProcess(ctx context.Context, action domain.Action, payoutIDs []string, reason string) (*domain.BulkResult, error) {
	args := m.Called(ctx, action, payoutIDs, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BulkResult), args.Error(1)
}

// MockSessions
type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) Ensure(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockSessions) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockBotClient
type MockBotClient struct {
	mock.Mock
}

func (m *MockBotClient) SendMessage(ctx context.Context, params ports.SendMessageParams) (int, error) {
	args := m.Called(ctx, params)
	return args.Int(0), args.Error(1)
}
func (m *MockBotClient) EditMessageText(ctx context.Context, params ports.EditMessageParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}
func (m *MockBotClient) AnswerCallbackQuery(ctx context.Context, params ports.AnswerCallbackParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}
func (m *MockBotClient) SetMenuCommands(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCommandHandler
type MockCommandHandler struct {
	mock.Mock
}

func (m *MockCommandHandler) Command() string {
	args := m.Called()
	return args.String(0)
}
func (m *MockCommandHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

// MockCallbackHandler
type MockCallbackHandler struct {
	mock.Mock
}

func (m *MockCallbackHandler) Prefix() string {
	args := m.Called()
	return args.String(0)
}
func (m *MockCallbackHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

// MockMessageHandler
type MockMessageHandler struct {
	mock.Mock
}

func (m *MockMessageHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

// MockEventBus
type MockEventBus struct {
	mock.Mock
	Handlers map[string]ports.EventHandler
}

func (m *MockEventBus) Publish(ctx context.Context, topic string, data interface{}) error {
	args := m.Called(ctx, topic, data)
	return args.Error(0)
}
func (m *MockEventBus) Subscribe(topic string, handler ports.EventHandler) {
	m.Called(topic, handler)
	if m.Handlers == nil {
		m.Handlers = make(map[string]ports.EventHandler)
	}
	m.Handlers[topic] = handler // Store the handler so we can call it
}

// --- Fixtures ---

const (
	operatorID = int64(789)
	chatID     = int64(1000)
)

type routerFixture struct {
	router   *Router
	api      *MockPayoutAPI
	sessions *MockSessions
	bot      *MockBotClient
	bus      *MockEventBus
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	nopLogger := zerolog.Nop()

	api := new(MockPayoutAPI)
	api.On("ListPayouts", mock.Anything, mock.Anything).Return(&domain.PayoutPage{}, nil).Maybe()
	api.On("GetStats", mock.Anything).Return(&domain.PayoutStats{}, nil).Maybe()
	api.On("GetWindowStatus", mock.Anything).Return(&domain.PayoutWindowStatus{}, nil).Maybe()
	api.On("GetSettings", mock.Anything).Return(&domain.PayoutSettings{}, nil).Maybe()

	cfg := &config.Config{Bot: config.BotConfig{OperatorIDs: []int64{operatorID}}}
	desks := payouts.NewDesks(api, nil, payouts.Options{NotificationTTL: time.Minute}, &nopLogger)
	t.Cleanup(func() { desks.Drop(chatID) })

	bus := new(MockEventBus)
	bus.On("Subscribe", ports.TopicOperatorMessage, mock.Anything)
	bus.On("Subscribe", ports.TopicOperatorCallback, mock.Anything)

	sessions := new(MockSessions)
	bot := new(MockBotClient)

	return &routerFixture{
		router:   NewRouter(cfg, desks, sessions, bot, bus, &nopLogger),
		api:      api,
		sessions: sessions,
		bot:      bot,
		bus:      bus,
	}
}

func commandUpdate(userID int64, text string, length int) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 123,
		Message: &tgbotapi.Message{
			MessageID: 456,
			From:      &tgbotapi.User{ID: userID},
			Chat:      &tgbotapi.Chat{ID: chatID},
			Text:      text,
			Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
		},
	}
}

// --- Tests ---

func TestRouter_CommandThroughBus(t *testing.T) {
	f := newRouterFixture(t)
	f.sessions.On("Ensure", mock.Anything).Return(nil)

	payoutsHandler := new(MockCommandHandler)
	payoutsHandler.On("Command").Return("payouts")
	payoutsHandler.On("Handle", mock.Anything, mock.MatchedBy(func(u *ports.BotUpdate) bool {
		return u.Command == "payouts" && u.CommandArgs == "on_hold"
	})).Return(nil).Once()
	f.router.RegisterCommandHandler(payoutsHandler)

	assert.Len(t, f.bus.Handlers, 2)
	handler, ok := f.bus.Handlers[ports.TopicOperatorMessage]
	require.True(t, ok, "router must subscribe to operator messages")

	err := handler(context.Background(), ports.Event{
		Topic: ports.TopicOperatorMessage,
		Data:  commandUpdate(operatorID, "/payouts on_hold", 8),
	})
	require.NoError(t, err)

	f.bus.AssertExpectations(t)
	payoutsHandler.AssertExpectations(t)
	// The first contact loaded the console once.
	f.api.AssertNumberOfCalls(t, "GetSettings", 1)
}

func TestRouter_RejectsUnknownUser(t *testing.T) {
	f := newRouterFixture(t)

	payoutsHandler := new(MockCommandHandler)
	payoutsHandler.On("Command").Return("payouts")
	f.router.RegisterCommandHandler(payoutsHandler)

	update := commandUpdate(42, "/payouts", 8)
	f.router.HandleUpdate(context.Background(), &update)

	f.sessions.AssertNotCalled(t, "Ensure", mock.Anything)
	payoutsHandler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	f.bot.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
	f.api.AssertNotCalled(t, "ListPayouts", mock.Anything, mock.Anything)
}

func TestRouter_NoSessionStopsRouting(t *testing.T) {
	f := newRouterFixture(t)
	f.sessions.On("Ensure", mock.Anything).Return(domain.ErrNoSession).Once()
	f.bot.On("SendMessage", mock.Anything, mock.MatchedBy(func(p ports.SendMessageParams) bool {
		return p.ChatID == chatID
	})).Return(1, nil).Once()

	payoutsHandler := new(MockCommandHandler)
	payoutsHandler.On("Command").Return("payouts")
	f.router.RegisterCommandHandler(payoutsHandler)

	update := commandUpdate(operatorID, "/payouts", 8)
	f.router.HandleUpdate(context.Background(), &update)

	f.bot.AssertExpectations(t)
	payoutsHandler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	f.api.AssertNotCalled(t, "ListPayouts", mock.Anything, mock.Anything)
}

func TestRouter_CallbackByPrefix(t *testing.T) {
	f := newRouterFixture(t)
	f.sessions.On("Ensure", mock.Anything).Return(nil)

	selectHandler := new(MockCallbackHandler)
	selectHandler.On("Prefix").Return("select_")
	confirmHandler := new(MockCallbackHandler)
	confirmHandler.On("Prefix").Return("confirm_")
	confirmHandler.On("Handle", mock.Anything, mock.AnythingOfType("*ports.BotUpdate")).Return(errors.New("boom")).Once()
	f.router.RegisterCallbackHandler(selectHandler)
	f.router.RegisterCallbackHandler(confirmHandler)

	update := tgbotapi.Update{
		UpdateID: 124,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb_id_1",
			From:    &tgbotapi.User{ID: operatorID},
			Message: &tgbotapi.Message{MessageID: 456, Chat: &tgbotapi.Chat{ID: chatID}},
			Data:    "confirm_yes",
		},
	}
	f.router.HandleUpdate(context.Background(), &update)

	confirmHandler.AssertExpectations(t)
	selectHandler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestRouter_FreeTextGoesToMessageHandler(t *testing.T) {
	f := newRouterFixture(t)
	f.sessions.On("Ensure", mock.Anything).Return(nil)

	messageHandler := new(MockMessageHandler)
	messageHandler.On("Handle", mock.Anything, mock.MatchedBy(func(u *ports.BotUpdate) bool {
		return u.Text == "Duplicate request"
	})).Return(nil).Once()
	f.router.SetMessageHandler(messageHandler)

	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 457,
			From:      &tgbotapi.User{ID: operatorID},
			Chat:      &tgbotapi.Chat{ID: chatID},
			Text:      "  Duplicate request ",
		},
	}
	f.router.HandleUpdate(context.Background(), &update)

	messageHandler.AssertExpectations(t)
	f.bot.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}

func TestRouter_UnknownCommandReplies(t *testing.T) {
	f := newRouterFixture(t)
	f.sessions.On("Ensure", mock.Anything).Return(nil)
	f.bot.On("SendMessage", mock.Anything, mock.AnythingOfType("ports.SendMessageParams")).Return(1, nil).Once()

	update := commandUpdate(operatorID, "/refund", 7)
	f.router.HandleUpdate(context.Background(), &update)

	f.bot.AssertExpectations(t)
}

func TestRouter_ConsoleLoadsOncePerChat(t *testing.T) {
	f := newRouterFixture(t)
	f.sessions.On("Ensure", mock.Anything).Return(nil)
	f.bot.On("SendMessage", mock.Anything, mock.Anything).Return(1, nil)

	for i := 0; i < 3; i++ {
		update := commandUpdate(operatorID, "/nothing", 8)
		f.router.HandleUpdate(context.Background(), &update)
	}

	f.api.AssertNumberOfCalls(t, "GetSettings", 1)
	f.sessions.AssertNumberOfCalls(t, "Ensure", 3)
}
