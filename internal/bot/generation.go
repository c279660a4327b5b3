package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"trainbot/internal/ai"
	"trainbot/internal/models"
	"trainbot/internal/session"
	"trainbot/internal/storage/ch"
)

// Session data keys used by the practice flow.
const (
	practiceKeyKind   = "kind"
	practiceKeyPrompt = "prompt"
)

// handlePracticeKinds shows the text/image practice picker.
func (b *Bot) handlePracticeKinds(event Event) {
	text := fmt.Sprintf("✍️ Practice writing prompts. You get %d generations per day.\n\nWhat do you want to generate?",
		models.DailyGenerationLimit)
	b.sendWithMarkup(event.ChatID, text, practiceKindsKeyboard())
}

// handlePracticeStart asks the user for a prompt of the chosen kind.
func (b *Bot) handlePracticeStart(ctx context.Context, event Event) {
	kind := payloadArg(event.CallbackData, 0)
	if kind != models.KindText && kind != models.KindImage {
		b.logger.Warn("Bad practice payload", zap.String("data", event.CallbackData))
		return
	}

	state := session.State{Name: session.StateAwaitingPrompt}.With(practiceKeyKind, kind)
	if err := b.sessions.Set(ctx, event.TelegramID, state); err != nil {
		b.logger.Error("Failed to store practice session", zap.Error(err))
		b.sendText(event.ChatID, "Something went wrong. Please try again.")
		return
	}

	hint := "Describe what you want the model to write. Be specific about tone, length, and audience."
	if kind == models.KindImage {
		hint = "Describe the image in English: subject, style, composition, details, lighting."
	}
	b.sendText(event.ChatID, fmt.Sprintf("Send me your %s prompt.\n\n💡 %s\n\n/cancel to quit.", kindLabel(kind), hint))
}

// handlePracticePrompt reviews a submitted prompt with the local
// heuristic before any quota is spent on it.
func (b *Bot) handlePracticePrompt(ctx context.Context, event Event, state *session.State) {
	kind := state.Value(practiceKeyKind)
	if kind != models.KindText && kind != models.KindImage {
		b.logger.Error("Corrupt practice session, clearing",
			zap.Int64("telegram_id", event.TelegramID))
		if err := b.sessions.Clear(ctx, event.TelegramID); err != nil {
			b.logger.Warn("Failed to clear session", zap.Error(err))
		}
		b.sendText(event.ChatID, "Practice session was lost. Please start again with /practice.")
		return
	}

	review := ai.ReviewPrompt(event.Text, kind)
	if !review.Acceptable {
		// Stay in the awaiting state so the user can just retype.
		b.sendText(event.ChatID, "⚠️ "+review.Feedback)
		return
	}

	updated := session.State{Name: session.StateReviewingPrompt}.
		With(practiceKeyKind, kind).
		With(practiceKeyPrompt, event.Text)
	if err := b.sessions.Set(ctx, event.TelegramID, updated); err != nil {
		b.logger.Error("Failed to store practice session", zap.Error(err))
		b.sendText(event.ChatID, "Something went wrong. Please try again.")
		return
	}

	text := fmt.Sprintf("Prompt quality: %.0f%%\n\n%s\n\nGenerate with this prompt, or improve it first?",
		review.Score*100, review.Feedback)
	b.sendWithMarkup(event.ChatID, text, practiceReviewKeyboard())
}

// handlePracticeRevise sends the user back to prompt entry, keeping the
// chosen kind.
func (b *Bot) handlePracticeRevise(ctx context.Context, event Event) {
	state, err := b.sessions.Get(ctx, event.TelegramID)
	if err != nil || state == nil || state.Value(practiceKeyKind) == "" {
		b.sendText(event.ChatID, "Practice session was lost. Please start again with /practice.")
		return
	}

	updated := session.State{Name: session.StateAwaitingPrompt}.
		With(practiceKeyKind, state.Value(practiceKeyKind))
	if err := b.sessions.Set(ctx, event.TelegramID, updated); err != nil {
		b.logger.Error("Failed to store practice session", zap.Error(err))
		return
	}
	b.sendText(event.ChatID, "Send me the improved prompt.")
}

// handlePracticeGenerate consumes one generation from the daily quota
// and runs the reviewed prompt against the provider. Failed generations
// do not refund the quota.
func (b *Bot) handlePracticeGenerate(ctx context.Context, event Event) {
	state, err := b.sessions.Get(ctx, event.TelegramID)
	if err != nil || state == nil {
		b.sendText(event.ChatID, "Practice session was lost. Please start again with /practice.")
		return
	}
	kind := state.Value(practiceKeyKind)
	prompt := state.Value(practiceKeyPrompt)
	if prompt == "" || (kind != models.KindText && kind != models.KindImage) {
		b.sendText(event.ChatID, "Practice session was lost. Please start again with /practice.")
		return
	}

	allowed, remaining, err := b.db.CheckAndConsumeQuota(ctx, event.TelegramID)
	if err != nil {
		b.logger.Error("Failed to check quota", zap.Error(err), zap.Int64("telegram_id", event.TelegramID))
		b.sendText(event.ChatID, "Something went wrong. Please try again later.")
		return
	}
	if !allowed {
		if err := b.sessions.Clear(ctx, event.TelegramID); err != nil {
			b.logger.Warn("Failed to clear session", zap.Error(err))
		}
		b.sendText(event.ChatID, fmt.Sprintf("🚫 You've used all %d generations for today. The quota resets at midnight UTC.",
			models.DailyGenerationLimit))
		return
	}

	if err := b.sessions.Clear(ctx, event.TelegramID); err != nil {
		b.logger.Warn("Failed to clear session", zap.Error(err))
	}

	b.logger.Info("Running generation",
		zap.Int64("telegram_id", event.TelegramID),
		zap.String("kind", kind),
		zap.Int("remaining", remaining))

	switch kind {
	case models.KindImage:
		b.sendChatAction(event.ChatID, tgbotapi.ChatUploadPhoto)
		url, err := b.ai.GenerateImage(ctx, prompt)
		if err != nil {
			b.logger.Error("Image generation failed", zap.Error(err))
			b.sendText(event.ChatID, "⚠️ Image generation failed. Please try again later.")
			return
		}
		if err := b.db.SaveGeneratedPrompt(ctx, event.TelegramID, prompt, kind, url); err != nil {
			b.logger.Error("Failed to save generated prompt", zap.Error(err))
		}
		b.recordAnalytics(ctx, event.TelegramID, ch.EventGeneration, kind)
		b.sendPhotoURL(event.ChatID, url, fmt.Sprintf("🖼 Generated! %d generations left today.", remaining))
	default:
		b.sendChatAction(event.ChatID, tgbotapi.ChatTyping)
		result, err := b.ai.GenerateText(ctx, prompt)
		if err != nil {
			b.logger.Error("Text generation failed", zap.Error(err))
			b.sendText(event.ChatID, "⚠️ Text generation failed. Please try again later.")
			return
		}
		if err := b.db.SaveGeneratedPrompt(ctx, event.TelegramID, prompt, kind, result); err != nil {
			b.logger.Error("Failed to save generated prompt", zap.Error(err))
		}
		b.recordAnalytics(ctx, event.TelegramID, ch.EventGeneration, kind)
		b.sendText(event.ChatID, fmt.Sprintf("📄 %s\n\n%d generations left today.", result, remaining))
	}
}
