package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// sendText sends a plain text message.
func (b *Bot) sendText(chatID int64, text string) {
	if b.api == nil {
		return // For testing
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

// sendWithMarkup sends a text message with an inline keyboard.
func (b *Bot) sendWithMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	if b.api == nil {
		return // For testing
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

// editWithMarkup rewrites an existing message in place. Used for paging
// through lesson steps so the chat doesn't fill with stale pages.
func (b *Bot) editWithMarkup(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) {
	if b.api == nil {
		return // For testing
	}
	msg := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to edit message", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

// sendPhotoURL sends an image by URL so Telegram fetches it directly.
func (b *Bot) sendPhotoURL(chatID int64, url, caption string) {
	if b.api == nil {
		return // For testing
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(url))
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Error("Failed to send photo", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

// sendChatAction shows a typing or upload indicator during slow calls.
func (b *Bot) sendChatAction(chatID int64, action string) {
	if b.api == nil {
		return // For testing
	}
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, action)); err != nil {
		b.logger.Warn("Failed to send chat action", zap.Error(err))
	}
}

func (b *Bot) answerCallback(callbackID string) {
	if b.api == nil {
		return // For testing
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		b.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}
