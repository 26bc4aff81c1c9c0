package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUpdate_Command(t *testing.T) {
	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 456,
			From:      &tgbotapi.User{ID: 789},
			Chat:      &tgbotapi.Chat{ID: 1000},
			Text:      "/payouts on_hold",
			Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 8}},
		},
	}

	u, ok := ParseUpdate(&update)
	require.True(t, ok)
	assert.Equal(t, "payouts", u.Command)
	assert.Equal(t, "on_hold", u.CommandArgs)
	assert.Equal(t, int64(789), u.UserID)
	assert.Equal(t, int64(1000), u.ChatID)
	assert.Nil(t, u.CallbackData)
}

func TestParseUpdate_Callback(t *testing.T) {
	update := tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb_id_1",
			From:    &tgbotapi.User{ID: 789},
			Message: &tgbotapi.Message{MessageID: 456, Chat: &tgbotapi.Chat{ID: 1000}},
			Data:    "payout_approve_p1",
		},
	}

	u, ok := ParseUpdate(&update)
	require.True(t, ok)
	require.NotNil(t, u.CallbackData)
	assert.Equal(t, "payout_approve_p1", *u.CallbackData)
	assert.Equal(t, "cb_id_1", u.CallbackQueryID)
	assert.Equal(t, 456, u.MessageID)
}

func TestParseUpdate_Unsupported(t *testing.T) {
	_, ok := ParseUpdate(&tgbotapi.Update{})
	assert.False(t, ok)

	_, ok = ParseUpdate(&tgbotapi.Update{Message: &tgbotapi.Message{Text: "anonymous"}})
	assert.False(t, ok)
}
