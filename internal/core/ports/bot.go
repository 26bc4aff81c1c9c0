package ports

import (
	"context"
)

// --- Bot Message Structures ---

// Button represents a single button in a keyboard.
type Button struct {
	Text string
	Data string // For callbacks
	URL  string // For URL buttons
}

// ReplyMarkup represents an inline keyboard.
type ReplyMarkup struct {
	Buttons [][]Button
}

// SendMessageParams holds all possible options for sending a message.
type SendMessageParams struct {
	ChatID      int64
	Text        string
	ParseMode   string // e.g., "MarkdownV2" or "HTML"
	ReplyMarkup *ReplyMarkup
}

// EditMessageParams replaces the text (and keyboard) of a sent message.
type EditMessageParams struct {
	ChatID      int64
	MessageID   int
	Text        string
	ParseMode   string
	ReplyMarkup *ReplyMarkup // nil removes the keyboard
}

// AnswerCallbackParams acknowledges a button press.
type AnswerCallbackParams struct {
	CallbackQueryID string
	Text            string
	ShowAlert       bool
}

// --- Bot Client Port (Outbound) ---

// BotClientPort defines the interface for *sending* messages.
type BotClientPort interface {
	SendMessage(ctx context.Context, params SendMessageParams) (int, error)
	EditMessageText(ctx context.Context, params EditMessageParams) error
	AnswerCallbackQuery(ctx context.Context, params AnswerCallbackParams) error
	SetMenuCommands(ctx context.Context) error
}

// --- Bot Handler Port (Inbound) ---

// BotUpdate represents a simplified, generic update.
type BotUpdate struct {
	MessageID       int
	ChatID          int64
	UserID          int64
	Text            string
	Command         string
	CommandArgs     string
	CallbackQueryID string
	CallbackData    *string
}

// CommandHandler handles one slash command.
type CommandHandler interface {
	// Command returns the command string without the slash (e.g., "payouts")
	Command() string
	Handle(ctx context.Context, update *BotUpdate) error
}

// CallbackHandler handles inline button presses sharing a prefix.
type CallbackHandler interface {
	// Prefix returns the prefix for the callback (e.g., "payout_")
	Prefix() string
	Handle(ctx context.Context, update *BotUpdate) error
}

// MessageHandler handles free text that is not a command.
type MessageHandler interface {
	Handle(ctx context.Context, update *BotUpdate) error
}
