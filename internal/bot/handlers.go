package bot

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"trainbot/internal/models"
	"trainbot/internal/session"
)

// dispatch routes one normalized event: resolve the sender, gate
// deactivated accounts, then branch on commands, callbacks, and
// conversation state in that order.
func (b *Bot) dispatch(ctx context.Context, event Event) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in dispatch",
				zap.Any("panic", r),
				zap.Int64("telegram_id", event.TelegramID))
			b.sendText(event.ChatID, "An error occurred while processing your request. Please try again.")
		}
	}()

	if event.IsCallback() {
		// Answer immediately so the button stops showing a spinner.
		b.answerCallback(event.CallbackID)
	}

	user, err := b.db.ResolveOrCreateUser(ctx, event.TelegramID, event.Username, event.FullName)
	if err != nil {
		b.logger.Error("Failed to resolve user",
			zap.Error(err),
			zap.Int64("telegram_id", event.TelegramID))
		b.sendText(event.ChatID, "Something went wrong. Please try again later.")
		return
	}

	if !user.IsActive {
		b.logger.Info("Ignoring update from deactivated user",
			zap.Int64("telegram_id", event.TelegramID))
		b.sendText(event.ChatID, "Your account has been deactivated. Contact the administrator.")
		return
	}

	if event.Command != "" {
		// Any command interrupts an ongoing conversation.
		if err := b.sessions.Clear(ctx, event.TelegramID); err != nil {
			b.logger.Warn("Failed to clear session", zap.Error(err))
		}
		b.handleCommand(ctx, event, user)
		return
	}

	if event.IsCallback() {
		b.handleCallback(ctx, event, user)
		return
	}

	b.handleText(ctx, event, user)
}

func (b *Bot) handleCommand(ctx context.Context, event Event, user *models.User) {
	switch event.Command {
	case "start":
		b.handleStart(ctx, event)
	case "help":
		b.handleHelp(event)
	case "menu":
		b.handleMenu(event)
	case "lessons":
		b.handleLessonKinds(event)
	case "quiz":
		b.handleQuizList(ctx, event)
	case "practice":
		b.handlePracticeKinds(event)
	case "progress":
		b.handleProgress(ctx, event)
	case "leaderboard":
		b.handleLeaderboard(ctx, event)
	case "cancel":
		b.handleCancel(ctx, event)
	case "users", "activate", "deactivate", "promote":
		b.handleAdminCommand(ctx, event, user)
	default:
		b.sendText(event.ChatID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, event Event, user *models.User) {
	data := event.CallbackData
	switch {
	case data == cbMenu:
		b.handleMenu(event)
	case data == cbLessonKinds:
		b.handleLessonKinds(event)
	case data == cbProgress:
		b.handleProgress(ctx, event)
	case data == cbLeaderboard:
		b.handleLeaderboard(ctx, event)
	case data == cbQuizList:
		b.handleQuizList(ctx, event)
	case data == cbPracticeKinds:
		b.handlePracticeKinds(event)
	case strings.HasPrefix(data, "lessons:"):
		b.handleLessonList(ctx, event)
	case strings.HasPrefix(data, "lesson:"):
		b.handleLessonOpen(ctx, event)
	case strings.HasPrefix(data, "step:"):
		b.handleLessonStep(ctx, event)
	case strings.HasPrefix(data, "quiz:"):
		b.handleQuizStart(ctx, event)
	case strings.HasPrefix(data, "practice:"):
		b.handlePracticeStart(ctx, event)
	case data == cbPracticeGenerate:
		b.handlePracticeGenerate(ctx, event)
	case data == cbPracticeRevise:
		b.handlePracticeRevise(ctx, event)
	default:
		b.logger.Warn("Unhandled callback", zap.String("data", data))
	}
}

// handleText routes a plain message through the sender's conversation
// state. Idle users get pointed at the menu.
func (b *Bot) handleText(ctx context.Context, event Event, user *models.User) {
	state, err := b.sessions.Get(ctx, event.TelegramID)
	if err != nil {
		b.logger.Error("Failed to load session", zap.Error(err))
		b.sendText(event.ChatID, "Something went wrong. Please try again later.")
		return
	}
	if state == nil {
		b.sendText(event.ChatID, "Use /menu to pick an activity.")
		return
	}

	switch state.Name {
	case session.StateAwaitingPrompt:
		b.handlePracticePrompt(ctx, event, state)
	case session.StateReviewingPrompt:
		// A new prompt while reviewing replaces the pending one.
		b.handlePracticePrompt(ctx, event, state)
	case session.StateInQuiz:
		b.handleQuizAnswer(ctx, event, state)
	default:
		b.logger.Warn("Unknown session state", zap.String("state", state.Name))
		if err := b.sessions.Clear(ctx, event.TelegramID); err != nil {
			b.logger.Warn("Failed to clear session", zap.Error(err))
		}
		b.sendText(event.ChatID, "Use /menu to pick an activity.")
	}
}
