package bot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"trainbot/internal/models"
	"trainbot/internal/storage/ch"
)

// handleLessonKinds shows the text/image category picker.
func (b *Bot) handleLessonKinds(event Event) {
	b.sendWithMarkup(event.ChatID, "Which prompting skill do you want to study?", lessonKindsKeyboard())
}

// handleLessonList shows all active lessons of one kind, marking the
// ones the user has fully completed.
func (b *Bot) handleLessonList(ctx context.Context, event Event) {
	kind := payloadArg(event.CallbackData, 0)
	if kind != models.KindText && kind != models.KindImage {
		b.logger.Warn("Bad lesson list payload", zap.String("data", event.CallbackData))
		return
	}

	lessons, err := b.db.ListLessons(ctx, kind, true)
	if err != nil {
		b.logger.Error("Failed to list lessons", zap.Error(err))
		b.sendText(event.ChatID, "Failed to load lessons. Please try again.")
		return
	}
	if len(lessons) == 0 {
		b.sendText(event.ChatID, "No lessons in this category yet. Check back later!")
		return
	}

	completed := make(map[uint]bool, len(lessons))
	for _, lesson := range lessons {
		state, err := b.db.LessonCompletion(ctx, event.TelegramID, lesson.ID)
		if err != nil {
			b.logger.Error("Failed to load lesson completion",
				zap.Error(err), zap.Uint("lesson_id", lesson.ID))
			continue
		}
		completed[lesson.ID] = state.FullyCompleted()
	}

	label := "Text"
	if kind == models.KindImage {
		label = "Image"
	}
	text := fmt.Sprintf("📚 %s prompting lessons:", label)
	b.sendWithMarkup(event.ChatID, text, lessonListKeyboard(lessons, completed))
}

// handleLessonOpen shows the lesson intro with its examples and drops
// the user onto their next uncompleted step.
func (b *Bot) handleLessonOpen(ctx context.Context, event Event) {
	lessonID, err := payloadUint(event.CallbackData, 0)
	if err != nil {
		b.logger.Warn("Bad lesson payload", zap.String("data", event.CallbackData))
		return
	}

	lesson, err := b.db.GetLesson(ctx, lessonID)
	if err != nil {
		b.logger.Error("Failed to load lesson", zap.Error(err), zap.Uint("lesson_id", lessonID))
		b.sendText(event.ChatID, "Lesson not found.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📘 %s\n\n%s", lesson.Title, lesson.Description))

	examples, err := b.db.ListExamples(ctx, lessonID)
	if err != nil {
		b.logger.Error("Failed to load examples", zap.Error(err), zap.Uint("lesson_id", lessonID))
	} else if len(examples) > 0 {
		sb.WriteString("\n\n💡 Example prompts:")
		for _, example := range examples {
			sb.WriteString("\n\n• " + example.PromptText)
			if example.ResultPreview != "" {
				sb.WriteString("\n  → " + example.ResultPreview)
			}
		}
	}
	b.sendText(event.ChatID, sb.String())

	b.recordAnalytics(ctx, event.TelegramID, ch.EventLessonStarted, lesson.Title)

	next, err := b.db.NextStep(ctx, event.TelegramID, lessonID)
	if err != nil {
		b.logger.Error("Failed to find next step", zap.Error(err), zap.Uint("lesson_id", lessonID))
		b.sendText(event.ChatID, "Failed to open the lesson. Please try again.")
		return
	}
	if next == nil {
		// Either already completed or the lesson has no steps yet.
		state, err := b.db.LessonCompletion(ctx, event.TelegramID, lessonID)
		if err == nil && state.FullyCompleted() {
			b.sendText(event.ChatID, "✅ You have already completed this lesson. Feel free to review it again!")
		}
		if err == nil && state.TotalCount == 0 {
			b.sendText(event.ChatID, "This lesson has no content yet.")
			return
		}
		// Re-reading starts from the first step.
		b.showStep(ctx, event, lessonID, 1, false)
		return
	}

	b.showStep(ctx, event, lessonID, next.StepNumber, false)
}

// handleLessonStep pages to the requested step, finishing the lesson
// when paging past the last one.
func (b *Bot) handleLessonStep(ctx context.Context, event Event) {
	lessonID, err := payloadUint(event.CallbackData, 0)
	if err != nil {
		b.logger.Warn("Bad step payload", zap.String("data", event.CallbackData))
		return
	}
	stepNumber, err := payloadInt(event.CallbackData, 1)
	if err != nil {
		b.logger.Warn("Bad step payload", zap.String("data", event.CallbackData))
		return
	}

	steps, err := b.db.GetLessonSteps(ctx, lessonID)
	if err != nil {
		b.logger.Error("Failed to load steps", zap.Error(err), zap.Uint("lesson_id", lessonID))
		b.sendText(event.ChatID, "Failed to load the lesson. Please try again.")
		return
	}
	if stepNumber > len(steps) {
		b.finishLesson(ctx, event, lessonID)
		return
	}

	b.showStep(ctx, event, lessonID, stepNumber, true)
}

// showStep renders one step and records it as completed. Viewing a step
// is what completes it; repeat views are no-ops in storage.
func (b *Bot) showStep(ctx context.Context, event Event, lessonID uint, stepNumber int, edit bool) {
	step, err := b.db.GetLessonStep(ctx, lessonID, stepNumber)
	if err != nil {
		b.logger.Error("Failed to load step",
			zap.Error(err), zap.Uint("lesson_id", lessonID), zap.Int("step", stepNumber))
		b.sendText(event.ChatID, "Failed to load the lesson step. Please try again.")
		return
	}
	steps, err := b.db.GetLessonSteps(ctx, lessonID)
	if err != nil {
		b.logger.Error("Failed to load steps", zap.Error(err), zap.Uint("lesson_id", lessonID))
		return
	}

	if err := b.db.MarkStepComplete(ctx, event.TelegramID, step.ID); err != nil {
		b.logger.Error("Failed to mark step complete",
			zap.Error(err), zap.Uint("step_id", step.ID))
	}

	text := fmt.Sprintf("Step %d of %d\n\n%s", stepNumber, len(steps), step.Content)
	markup := stepKeyboard(lessonID, stepNumber, len(steps))
	if edit && event.MessageID != 0 {
		b.editWithMarkup(event.ChatID, event.MessageID, text, markup)
	} else {
		b.sendWithMarkup(event.ChatID, text, markup)
	}
}

func (b *Bot) finishLesson(ctx context.Context, event Event, lessonID uint) {
	lesson, err := b.db.GetLesson(ctx, lessonID)
	if err != nil {
		b.logger.Error("Failed to load lesson", zap.Error(err), zap.Uint("lesson_id", lessonID))
		return
	}
	text := fmt.Sprintf("🎉 Lesson \"%s\" completed! Try a quiz to check what stuck, or practice writing a prompt.", lesson.Title)
	b.sendWithMarkup(event.ChatID, text, mainMenuKeyboard())
}

// recordAnalytics forwards a usage event when a sink is configured.
// Analytics never block or fail the user-facing flow.
func (b *Bot) recordAnalytics(ctx context.Context, telegramID int64, kind, detail string) {
	if b.analytics == nil {
		return
	}
	event := ch.UsageEvent{TelegramID: telegramID, Kind: kind, Detail: detail}
	if err := b.analytics.RecordEvent(ctx, event); err != nil {
		b.logger.Warn("Failed to record usage event", zap.Error(err), zap.String("kind", kind))
	}
}
