package bot

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"trainbot/internal/session"
	"trainbot/internal/storage/ch"
)

// Session data keys used by the quiz flow.
const (
	quizKeyQuizID     = "quiz_id"
	quizKeyAttemptID  = "attempt_id"
	quizKeyQuestionID = "question_id"
	quizKeyOrder      = "order"
)

// handleQuizList shows all available quizzes.
func (b *Bot) handleQuizList(ctx context.Context, event Event) {
	quizzes, err := b.db.ListQuizzes(ctx)
	if err != nil {
		b.logger.Error("Failed to list quizzes", zap.Error(err))
		b.sendText(event.ChatID, "Failed to load quizzes. Please try again.")
		return
	}
	if len(quizzes) == 0 {
		b.sendText(event.ChatID, "No quizzes available yet. Check back later!")
		return
	}
	b.sendWithMarkup(event.ChatID, "📝 Pick a quiz. Answers are free-text and graded by AI on a 0-10 scale.", quizListKeyboard(quizzes))
}

// handleQuizStart opens a fresh attempt and asks the first question.
func (b *Bot) handleQuizStart(ctx context.Context, event Event) {
	quizID, err := payloadUint(event.CallbackData, 0)
	if err != nil {
		b.logger.Warn("Bad quiz payload", zap.String("data", event.CallbackData))
		return
	}

	quiz, err := b.db.GetQuiz(ctx, quizID)
	if err != nil {
		b.logger.Error("Failed to load quiz", zap.Error(err), zap.Uint("quiz_id", quizID))
		b.sendText(event.ChatID, "Quiz not found.")
		return
	}

	questions, err := b.db.QuestionsForQuiz(ctx, quizID)
	if err != nil {
		b.logger.Error("Failed to load questions", zap.Error(err), zap.Uint("quiz_id", quizID))
		b.sendText(event.ChatID, "Failed to start the quiz. Please try again.")
		return
	}
	if len(questions) == 0 {
		b.sendText(event.ChatID, "This quiz has no questions yet.")
		return
	}

	attempt, err := b.db.StartAttempt(ctx, event.TelegramID, quizID)
	if err != nil {
		b.logger.Error("Failed to start attempt", zap.Error(err), zap.Uint("quiz_id", quizID))
		b.sendText(event.ChatID, "Failed to start the quiz. Please try again.")
		return
	}

	first := questions[0]
	state := session.State{Name: session.StateInQuiz}.
		With(quizKeyQuizID, strconv.FormatUint(uint64(quizID), 10)).
		With(quizKeyAttemptID, strconv.FormatUint(uint64(attempt.ID), 10)).
		With(quizKeyQuestionID, strconv.FormatUint(uint64(first.ID), 10)).
		With(quizKeyOrder, strconv.Itoa(first.SortOrder))
	if err := b.sessions.Set(ctx, event.TelegramID, state); err != nil {
		b.logger.Error("Failed to store quiz session", zap.Error(err))
		b.sendText(event.ChatID, "Failed to start the quiz. Please try again.")
		return
	}

	b.sendText(event.ChatID, fmt.Sprintf("📝 %s\n\n%s\n\nQuestion 1 of %d:\n%s\n\nType your answer. /cancel to quit.",
		quiz.Title, quiz.Description, len(questions), first.Text))
}

// handleQuizAnswer records one answer, has the judge grade it, and moves
// to the next question or finishes the attempt.
func (b *Bot) handleQuizAnswer(ctx context.Context, event Event, state *session.State) {
	quizID, err1 := strconv.ParseUint(state.Value(quizKeyQuizID), 10, 32)
	attemptID, err2 := strconv.ParseUint(state.Value(quizKeyAttemptID), 10, 32)
	questionID, err3 := strconv.ParseUint(state.Value(quizKeyQuestionID), 10, 32)
	order, err4 := strconv.Atoi(state.Value(quizKeyOrder))
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		b.logger.Error("Corrupt quiz session, clearing",
			zap.Int64("telegram_id", event.TelegramID))
		if err := b.sessions.Clear(ctx, event.TelegramID); err != nil {
			b.logger.Warn("Failed to clear session", zap.Error(err))
		}
		b.sendText(event.ChatID, "Quiz session was lost. Please start again with /quiz.")
		return
	}

	question, err := b.db.GetQuestion(ctx, uint(questionID))
	if err != nil {
		b.logger.Error("Failed to load question", zap.Error(err), zap.Uint64("question_id", questionID))
		b.sendText(event.ChatID, "Failed to process your answer. Please try again.")
		return
	}

	answer, err := b.db.RecordAnswer(ctx, uint(attemptID), uint(questionID), event.Text)
	if err != nil {
		b.logger.Error("Failed to record answer", zap.Error(err), zap.Uint64("attempt_id", attemptID))
		b.sendText(event.ChatID, "Failed to save your answer. Please try again.")
		return
	}

	b.sendChatAction(event.ChatID, tgbotapi.ChatTyping)
	verdict := b.ai.EvaluateAnswer(ctx, question.Text, event.Text)
	if err := b.db.ApplyEvaluation(ctx, answer.ID, verdict.IsCorrect, verdict.Score, verdict.Feedback); err != nil {
		b.logger.Error("Failed to store evaluation", zap.Error(err), zap.Uint("answer_id", answer.ID))
	}

	mark := "❌"
	if verdict.IsCorrect {
		mark = "✅"
	}
	b.sendText(event.ChatID, fmt.Sprintf("%s Score: %.1f/10\n\n%s", mark, verdict.Score, verdict.Feedback))

	next, err := b.db.NextQuestion(ctx, uint(quizID), order)
	if err != nil {
		b.logger.Error("Failed to load next question", zap.Error(err), zap.Uint64("quiz_id", quizID))
		b.sendText(event.ChatID, "Failed to continue the quiz. Please try again.")
		return
	}
	if next == nil {
		b.finishQuiz(ctx, event, uint(quizID), uint(attemptID))
		return
	}

	updated := state.
		With(quizKeyQuestionID, strconv.FormatUint(uint64(next.ID), 10)).
		With(quizKeyOrder, strconv.Itoa(next.SortOrder))
	if err := b.sessions.Set(ctx, event.TelegramID, updated); err != nil {
		b.logger.Error("Failed to store quiz session", zap.Error(err))
		b.sendText(event.ChatID, "Failed to continue the quiz. Please start again with /quiz.")
		return
	}

	questions, err := b.db.QuestionsForQuiz(ctx, uint(quizID))
	position := 0
	if err == nil {
		for i, q := range questions {
			if q.ID == next.ID {
				position = i + 1
			}
		}
		b.sendText(event.ChatID, fmt.Sprintf("Question %d of %d:\n%s", position, len(questions), next.Text))
	} else {
		b.sendText(event.ChatID, "Next question:\n"+next.Text)
	}
}

// finishQuiz totals the attempt and shows the result.
func (b *Bot) finishQuiz(ctx context.Context, event Event, quizID, attemptID uint) {
	if err := b.sessions.Clear(ctx, event.TelegramID); err != nil {
		b.logger.Warn("Failed to clear session", zap.Error(err))
	}

	total, err := b.db.FinalizeAttempt(ctx, attemptID)
	if err != nil {
		b.logger.Error("Failed to finalize attempt", zap.Error(err), zap.Uint("attempt_id", attemptID))
		b.sendText(event.ChatID, "Failed to compute your result. Please try again.")
		return
	}

	quizTitle := ""
	if quiz, err := b.db.GetQuiz(ctx, quizID); err == nil {
		quizTitle = quiz.Title
	}
	b.recordAnalytics(ctx, event.TelegramID, ch.EventQuizFinished,
		fmt.Sprintf("%s: %.1f", quizTitle, total))

	b.sendWithMarkup(event.ChatID,
		fmt.Sprintf("🏁 Quiz finished! Total score: %.1f\n\nCheck /leaderboard to see where you stand.", total),
		mainMenuKeyboard())
}
