package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"trainbot/internal/ai"
	"trainbot/internal/session"
	"trainbot/internal/storage"
)

// NewBot creates a new Telegram bot
func NewBot(token string, db storage.Storage, sessions session.Store, aiClient *ai.Client, analytics AnalyticsSink, adminID int64, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))

	b := newBot(db, sessions, aiClient, analytics, adminID, logger)
	b.api = api
	return b, nil
}

// newBot wires everything except the Telegram API. Tests use it directly
// so handlers run without network access.
func newBot(db storage.Storage, sessions session.Store, aiClient *ai.Client, analytics AnalyticsSink, adminID int64, logger *zap.Logger) *Bot {
	return &Bot{
		db:        db,
		sessions:  sessions,
		ai:        aiClient,
		analytics: analytics,
		adminID:   adminID,
		logger:    logger,
	}
}

// GetAPI returns the bot API for testing
func (b *Bot) GetAPI() *tgbotapi.BotAPI {
	return b.api
}
