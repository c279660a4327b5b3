package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Start starts the bot in polling mode
func (b *Bot) Start() error {
	b.logger.Info("Starting bot in polling mode")

	// Remove webhook (if any was set previously)
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.logger.Warn("Failed to delete webhook", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Bot started successfully. Waiting for updates...")

	for update := range updates {
		b.HandleUpdate(update)
	}
	return nil
}

// StartWebhook sets up the bot to receive updates via webhook
func (b *Bot) StartWebhook(webhookURL string) error {
	b.logger.Info("Setting up webhook", zap.String("webhook_url", webhookURL))

	webhookConfig, err := tgbotapi.NewWebhook(webhookURL + "/telegram-webhook")
	if err != nil {
		return err
	}
	webhookConfig.MaxConnections = 40

	if _, err := b.api.Request(webhookConfig); err != nil {
		b.logger.Error("Failed to set webhook", zap.Error(err), zap.String("webhook_url", webhookURL))
		return err
	}

	info, err := b.api.GetWebhookInfo()
	if err != nil {
		b.logger.Warn("Failed to get webhook info", zap.Error(err))
	} else {
		b.logger.Info("Webhook set successfully",
			zap.String("url", info.URL),
			zap.Int("pending_updates", info.PendingUpdateCount),
		)
	}

	return nil
}

// HandleUpdate normalizes one update and dispatches it. Updates that
// carry neither a message nor a callback are ignored.
func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	event, ok := normalizeUpdate(update)
	if !ok {
		return
	}
	b.dispatch(context.Background(), event)
}

// normalizeUpdate reduces the two update shapes the bot cares about to
// one Event with a definite sender identity.
func normalizeUpdate(update tgbotapi.Update) (Event, bool) {
	if update.Message != nil && update.Message.From != nil {
		msg := update.Message
		event := Event{
			TelegramID: msg.From.ID,
			Username:   msg.From.UserName,
			FullName:   fullName(msg.From.FirstName, msg.From.LastName),
			ChatID:     msg.Chat.ID,
			MessageID:  msg.MessageID,
			Text:       msg.Text,
		}
		if msg.IsCommand() {
			event.Command = msg.Command()
			event.Args = strings.TrimSpace(msg.CommandArguments())
		}
		return event, true
	}

	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		query := update.CallbackQuery
		event := Event{
			TelegramID:   query.From.ID,
			Username:     query.From.UserName,
			FullName:     fullName(query.From.FirstName, query.From.LastName),
			CallbackID:   query.ID,
			CallbackData: query.Data,
		}
		if query.Message != nil {
			event.ChatID = query.Message.Chat.ID
			event.MessageID = query.Message.MessageID
		}
		return event, true
	}

	return Event{}, false
}

func fullName(first, last string) string {
	name := strings.TrimSpace(first + " " + last)
	return name
}
