package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"trainbot/internal/ai"
	"trainbot/internal/session"
	"trainbot/internal/storage"
	"trainbot/internal/storage/ch"
)

// AnalyticsSink receives usage events. Nil disables analytics.
type AnalyticsSink interface {
	RecordEvent(ctx context.Context, event ch.UsageEvent) error
}

// Bot wraps the Telegram API together with storage, the generation
// client, and per-user conversation state.
type Bot struct {
	api       *tgbotapi.BotAPI
	db        storage.Storage
	sessions  session.Store
	ai        *ai.Client
	analytics AnalyticsSink
	logger    *zap.Logger
	adminID   int64
}

// Event is the normalized inbound update. Both plain messages and
// callback-button presses reduce to the same shape, so every handler
// sees one sender identity regardless of how Telegram delivered it.
type Event struct {
	TelegramID int64
	Username   string
	FullName   string
	ChatID     int64
	MessageID  int

	Text     string // message text, empty for callbacks
	Command  string // parsed /command, empty otherwise
	Args     string // text after the command

	CallbackID   string // non-empty when this is a button press
	CallbackData string
}

// IsCallback reports whether the event came from an inline button.
func (e Event) IsCallback() bool { return e.CallbackID != "" }
