package messages

import (
	"PayoutDesk/internal/core/ports"
	"strings"
)

// Builder helps construct complex SendMessageParams.
type Builder struct {
	params ports.SendMessageParams
}

// NewBuilder creates a new message builder.
func NewBuilder(chatID int64) *Builder {
	return &Builder{
		params: ports.SendMessageParams{
			ChatID:    chatID,
			ParseMode: "MarkdownV2", // Default to Markdown
		},
	}
}

// WithText sets the message text.
func (b *Builder) WithText(text string) *Builder {
	b.params.Text = text
	return b
}

// WithPlainText sets text that is escaped for MarkdownV2.
func (b *Builder) WithPlainText(text string) *Builder {
	b.params.Text = Escape(text)
	return b
}

// WithParseMode overrides the default parse mode.
func (b *Builder) WithParseMode(mode string) *Builder {
	b.params.ParseMode = mode
	return b
}

// WithInlineButtons adds a set of inline buttons. An empty set adds none.
func (b *Builder) WithInlineButtons(buttons [][]ports.Button) *Builder {
	if len(buttons) == 0 {
		b.params.ReplyMarkup = nil
		return b
	}
	b.params.ReplyMarkup = &ports.ReplyMarkup{Buttons: buttons}
	return b
}

// Build returns the final SendMessageParams struct.
func (b *Builder) Build() ports.SendMessageParams {
	return b.params
}

// Edit turns the built message into an edit of messageID.
func (b *Builder) Edit(messageID int) ports.EditMessageParams {
	return ports.EditMessageParams{
		ChatID:      b.params.ChatID,
		MessageID:   messageID,
		Text:        b.params.Text,
		ParseMode:   b.params.ParseMode,
		ReplyMarkup: b.params.ReplyMarkup,
	}
}

var markdownReplacer = strings.NewReplacer(
	"\\", "\\\\",
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(", ")", "\\)",
	"~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
	"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}", ".", "\\.", "!", "\\!",
)

// Escape makes s safe to embed in a MarkdownV2 message.
func Escape(s string) string {
	return markdownReplacer.Replace(s)
}
