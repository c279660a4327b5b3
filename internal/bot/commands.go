package bot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"trainbot/internal/models"
)

// handleStart greets the user and shows the main menu. Registration
// already happened during dispatch.
func (b *Bot) handleStart(ctx context.Context, event Event) {
	text := `Welcome to the Prompt Engineering Trainer! 🎓

Learn to write effective prompts for text and image generation:

📚 Lessons - step-by-step theory with examples
📝 Quizzes - test your knowledge, answers are graded by AI
✍️ Practice - write prompts and run them against real models
📊 My Progress - track completed lessons
🏆 Leaderboard - compare quiz scores

Use /help for the full command list.`

	b.sendWithMarkup(event.ChatID, text, mainMenuKeyboard())
}

// handleHelp lists available commands
func (b *Bot) handleHelp(event Event) {
	text := `Available commands:
/menu - Open the main menu
/lessons - Browse lessons
/quiz - Take a quiz
/practice - Practice prompt writing
/progress - Show your progress
/leaderboard - Show the quiz leaderboard
/cancel - Cancel the current activity`

	b.sendText(event.ChatID, text)
}

func (b *Bot) handleMenu(event Event) {
	b.sendWithMarkup(event.ChatID, "What would you like to do?", mainMenuKeyboard())
}

// handleProgress shows per-category lesson completion.
func (b *Bot) handleProgress(ctx context.Context, event Event) {
	summary, err := b.db.UserProgressSummary(ctx, event.TelegramID)
	if err != nil {
		b.logger.Error("Failed to load progress summary", zap.Error(err))
		b.sendText(event.ChatID, "Failed to load your progress. Please try again.")
		return
	}

	text := fmt.Sprintf(`📊 Your progress:

📖 Text prompt lessons: %d of %d completed
🖼 Image prompt lessons: %d of %d completed`,
		summary.Text.Completed, summary.Text.Total,
		summary.Image.Completed, summary.Image.Total)

	b.sendText(event.ChatID, text)
}

const leaderboardSize = 10

// handleLeaderboard shows the top quiz scorers.
func (b *Bot) handleLeaderboard(ctx context.Context, event Event) {
	entries, err := b.db.Leaderboard(ctx, leaderboardSize)
	if err != nil {
		b.logger.Error("Failed to load leaderboard", zap.Error(err))
		b.sendText(event.ChatID, "Failed to load the leaderboard. Please try again.")
		return
	}

	if len(entries) == 0 {
		b.sendText(event.ChatID, "No quiz scores yet. Be the first — take a quiz!")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏆 Leaderboard:\n\n")
	for i, entry := range entries {
		sb.WriteString(fmt.Sprintf("%s %s — %.1f points\n", rankLabel(i), entry.DisplayName(), entry.TotalScore))
	}
	b.sendText(event.ChatID, sb.String())
}

func rankLabel(i int) string {
	switch i {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", i+1)
	}
}

// handleCancel abandons any ongoing conversation.
func (b *Bot) handleCancel(ctx context.Context, event Event) {
	if err := b.sessions.Clear(ctx, event.TelegramID); err != nil {
		b.logger.Warn("Failed to clear session", zap.Error(err))
	}
	b.sendWithMarkup(event.ChatID, "Cancelled. What's next?", mainMenuKeyboard())
}

func kindLabel(kind string) string {
	if kind == models.KindImage {
		return "image"
	}
	return "text"
}
