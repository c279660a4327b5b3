package bot

import (
	"context"
	"strconv"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trainbot/internal/ai"
	"trainbot/internal/models"
	"trainbot/internal/session"
	"trainbot/internal/storage/stubs"
)

// Note: We can't easily mock tgbotapi.BotAPI, so tests run handlers with
// a nil API and assert on storage and session effects instead.

func newTestBot(db *stubs.MockDB) *Bot {
	// Empty AI config disables both providers, so the judge degrades to
	// zero-score verdicts and generation calls fail fast.
	aiClient := ai.NewClient(ai.Config{}, zap.NewNop())
	return newBot(db, session.NewMemoryStore(), aiClient, nil, 1, zap.NewNop())
}

func messageEvent(telegramID, chatID int64, text string) Event {
	return Event{
		TelegramID: telegramID,
		Username:   "tester",
		FullName:   "Test User",
		ChatID:     chatID,
		Text:       text,
	}
}

func callbackEvent(telegramID, chatID int64, data string) Event {
	return Event{
		TelegramID:   telegramID,
		Username:     "tester",
		FullName:     "Test User",
		ChatID:       chatID,
		CallbackID:   "cb-1",
		CallbackData: data,
	}
}

func TestDispatchRegistersUser(t *testing.T) {
	db := stubs.NewMockDB()
	b := newTestBot(db)
	ctx := context.Background()

	event := messageEvent(123, 456, "/start")
	event.Command = "start"
	b.dispatch(ctx, event)

	user, err := db.GetUser(ctx, 123)
	require.NoError(t, err)
	assert.Equal(t, "tester", user.Username)
	assert.Equal(t, "Test User", user.FullName)
	assert.True(t, user.IsActive)
	assert.Equal(t, models.DailyGenerationLimit, user.DailyGenerationsLeft)
}

func TestDispatchIgnoresDeactivatedUser(t *testing.T) {
	db := stubs.NewMockDB()
	b := newTestBot(db)
	ctx := context.Background()

	_, err := db.ResolveOrCreateUser(ctx, 123, "tester", "Test User")
	require.NoError(t, err)
	require.NoError(t, db.SetActive(ctx, 123, false))

	// A deactivated user's quiz callback must not open an attempt.
	quiz := &models.Quiz{Title: "Basics", Questions: []models.Question{{Text: "Q1", SortOrder: 1}}}
	require.NoError(t, db.CreateQuiz(ctx, quiz))

	b.dispatch(ctx, callbackEvent(123, 456, quizPayload(quiz.ID)))

	state, err := b.sessions.Get(ctx, 123)
	require.NoError(t, err)
	assert.Nil(t, state, "deactivated user should not start a quiz")
}

func TestQuizFlow(t *testing.T) {
	db := stubs.NewMockDB()
	b := newTestBot(db)
	ctx := context.Background()

	_, err := db.ResolveOrCreateUser(ctx, 123, "tester", "Test User")
	require.NoError(t, err)

	quiz := &models.Quiz{
		Title:       "Prompt Basics",
		Description: "Check the fundamentals",
		Questions: []models.Question{
			{Text: "What makes a prompt specific?", SortOrder: 1},
			{Text: "Why does context matter?", SortOrder: 2},
		},
	}
	require.NoError(t, db.CreateQuiz(ctx, quiz))

	// Start the quiz via its callback.
	b.handleQuizStart(ctx, callbackEvent(123, 456, quizPayload(quiz.ID)))

	state, err := b.sessions.Get(ctx, 123)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, session.StateInQuiz, state.Name)

	// Answer the first question. The judge is unavailable, so the
	// answer gets a zero-score verdict but the flow still advances.
	b.handleQuizAnswer(ctx, messageEvent(123, 456, "It names the audience and format."), state)

	state, err = b.sessions.Get(ctx, 123)
	require.NoError(t, err)
	require.NotNil(t, state, "should still be in the quiz after question 1")

	attemptID, err := strconv.ParseUint(state.Value(quizKeyAttemptID), 10, 32)
	require.NoError(t, err)

	// Answer the second question; the attempt finishes.
	b.handleQuizAnswer(ctx, messageEvent(123, 456, "Context narrows the model's choices."), state)

	state, err = b.sessions.Get(ctx, 123)
	require.NoError(t, err)
	assert.Nil(t, state, "session should be cleared after the last question")

	// The attempt is finalized with an end time and a zero total.
	attempt, err := db.GetAttempt(ctx, uint(attemptID))
	require.NoError(t, err)
	assert.NotNil(t, attempt.EndTime)
	assert.Equal(t, 0.0, attempt.TotalScore)
}

func TestQuizReanswerReplacesAnswer(t *testing.T) {
	db := stubs.NewMockDB()
	ctx := context.Background()

	_, err := db.ResolveOrCreateUser(ctx, 123, "tester", "Test User")
	require.NoError(t, err)

	quiz := &models.Quiz{
		Title:     "Single",
		Questions: []models.Question{{Text: "Only question", SortOrder: 1}},
	}
	require.NoError(t, db.CreateQuiz(ctx, quiz))

	attempt, err := db.StartAttempt(ctx, 123, quiz.ID)
	require.NoError(t, err)

	first, err := db.RecordAnswer(ctx, attempt.ID, quiz.Questions[0].ID, "first try")
	require.NoError(t, err)
	second, err := db.RecordAnswer(ctx, attempt.ID, quiz.Questions[0].ID, "second try")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "re-answering must reuse the same row")
	assert.Equal(t, "second try", second.AnswerText)
	assert.Nil(t, second.Score, "replacing an answer clears its evaluation")
}

func TestPracticePromptTooShortStaysInState(t *testing.T) {
	db := stubs.NewMockDB()
	b := newTestBot(db)
	ctx := context.Background()

	_, err := db.ResolveOrCreateUser(ctx, 123, "tester", "Test User")
	require.NoError(t, err)

	b.handlePracticeStart(ctx, callbackEvent(123, 456, practicePayload(models.KindText)))

	state, err := b.sessions.Get(ctx, 123)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, session.StateAwaitingPrompt, state.Name)

	b.handlePracticePrompt(ctx, messageEvent(123, 456, "short"), state)

	state, err = b.sessions.Get(ctx, 123)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, session.StateAwaitingPrompt, state.Name, "rejected prompt keeps the user in entry state")
}

func TestPracticeGenerateConsumesQuotaWithoutRefund(t *testing.T) {
	db := stubs.NewMockDB()
	b := newTestBot(db)
	ctx := context.Background()

	_, err := db.ResolveOrCreateUser(ctx, 123, "tester", "Test User")
	require.NoError(t, err)

	b.handlePracticeStart(ctx, callbackEvent(123, 456, practicePayload(models.KindText)))

	state, err := b.sessions.Get(ctx, 123)
	require.NoError(t, err)
	b.handlePracticePrompt(ctx, messageEvent(123, 456, "Write a short story about a lighthouse keeper with clarity and structure"), state)

	state, err = b.sessions.Get(ctx, 123)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, session.StateReviewingPrompt, state.Name)

	// No provider is configured, so the generation itself fails. The
	// quota is still spent.
	b.handlePracticeGenerate(ctx, callbackEvent(123, 456, cbPracticeGenerate))

	user, err := db.GetUser(ctx, 123)
	require.NoError(t, err)
	assert.Equal(t, models.DailyGenerationLimit-1, user.DailyGenerationsLeft,
		"failed generations do not refund the quota")
	assert.Empty(t, db.GeneratedPrompts(), "nothing is persisted when generation fails")
}

func TestPracticeGenerateBlockedWhenQuotaExhausted(t *testing.T) {
	db := stubs.NewMockDB()
	b := newTestBot(db)
	ctx := context.Background()

	_, err := db.ResolveOrCreateUser(ctx, 123, "tester", "Test User")
	require.NoError(t, err)

	// Burn the whole daily allowance.
	for i := 0; i < models.DailyGenerationLimit; i++ {
		allowed, _, err := db.CheckAndConsumeQuota(ctx, 123)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	b.handlePracticeStart(ctx, callbackEvent(123, 456, practicePayload(models.KindText)))
	state, err := b.sessions.Get(ctx, 123)
	require.NoError(t, err)
	b.handlePracticePrompt(ctx, messageEvent(123, 456, "A long enough prompt with plenty of specific context inside"), state)

	b.handlePracticeGenerate(ctx, callbackEvent(123, 456, cbPracticeGenerate))

	state, err = b.sessions.Get(ctx, 123)
	require.NoError(t, err)
	assert.Nil(t, state, "exhausted quota ends the practice session")

	user, err := db.GetUser(ctx, 123)
	require.NoError(t, err)
	assert.Equal(t, 0, user.DailyGenerationsLeft)
}

func TestAdminCommandsGated(t *testing.T) {
	db := stubs.NewMockDB()
	b := newTestBot(db)
	ctx := context.Background()

	admin, err := db.ResolveOrCreateUser(ctx, 1, "owner", "Owner")
	require.NoError(t, err)
	_, err = db.ResolveOrCreateUser(ctx, 200, "victim", "Target User")
	require.NoError(t, err)

	// Non-admin cannot deactivate anyone.
	nonAdmin, err := db.ResolveOrCreateUser(ctx, 300, "mortal", "Regular User")
	require.NoError(t, err)
	event := messageEvent(300, 456, "/deactivate 200")
	event.Command = "deactivate"
	event.Args = "200"
	b.handleAdminCommand(ctx, event, nonAdmin)

	got, err := db.GetUser(ctx, 200)
	require.NoError(t, err)
	assert.True(t, got.IsActive, "non-admin must not deactivate users")

	// The configured owner ID counts as admin even without the flag.
	event = messageEvent(1, 456, "/deactivate 200")
	event.Command = "deactivate"
	event.Args = "200"
	b.handleAdminCommand(ctx, event, admin)

	got, err = db.GetUser(ctx, 200)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// Promote then verify the flag.
	event = messageEvent(1, 456, "/promote 300")
	event.Command = "promote"
	event.Args = "300"
	b.handleAdminCommand(ctx, event, admin)

	got, err = db.GetUser(ctx, 300)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)
}

func TestLessonStepCompletion(t *testing.T) {
	db := stubs.NewMockDB()
	b := newTestBot(db)
	ctx := context.Background()

	_, err := db.ResolveOrCreateUser(ctx, 123, "tester", "Test User")
	require.NoError(t, err)

	lesson := &models.Lesson{
		Title: "Clarity", Kind: models.KindText, SortOrder: 1, IsActive: true,
		Steps: []models.LessonStep{
			{StepNumber: 1, Content: "Page one"},
			{StepNumber: 2, Content: "Page two"},
		},
	}
	require.NoError(t, db.CreateLesson(ctx, lesson))

	// Viewing a step completes it.
	b.showStep(ctx, messageEvent(123, 456, ""), lesson.ID, 1, false)

	state, err := db.LessonCompletion(ctx, 123, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CompletedCount)
	assert.False(t, state.FullyCompleted())

	next, err := db.NextStep(ctx, 123, lesson.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, 2, next.StepNumber)

	b.showStep(ctx, messageEvent(123, 456, ""), lesson.ID, 2, false)

	state, err = db.LessonCompletion(ctx, 123, lesson.ID)
	require.NoError(t, err)
	assert.True(t, state.FullyCompleted())
}

func TestNormalizeUpdate(t *testing.T) {
	tests := []struct {
		name        string
		description string
		update      tgbotapi.Update
		wantOK      bool
		want        Event
	}{
		{
			name:        "plain message",
			description: "messages map sender identity and text",
			update: tgbotapi.Update{
				Message: &tgbotapi.Message{
					MessageID: 10,
					From:      &tgbotapi.User{ID: 123, UserName: "tester", FirstName: "Test", LastName: "User"},
					Chat:      &tgbotapi.Chat{ID: 456},
					Text:      "hello",
				},
			},
			wantOK: true,
			want: Event{
				TelegramID: 123, Username: "tester", FullName: "Test User",
				ChatID: 456, MessageID: 10, Text: "hello",
			},
		},
		{
			name:        "command with arguments",
			description: "commands are parsed out of the text",
			update: tgbotapi.Update{
				Message: &tgbotapi.Message{
					From: &tgbotapi.User{ID: 123, FirstName: "Test"},
					Chat: &tgbotapi.Chat{ID: 456},
					Text: "/activate 200",
					Entities: []tgbotapi.MessageEntity{
						{Type: "bot_command", Offset: 0, Length: 9},
					},
				},
			},
			wantOK: true,
			want: Event{
				TelegramID: 123, FullName: "Test",
				ChatID: 456, Text: "/activate 200",
				Command: "activate", Args: "200",
			},
		},
		{
			name:        "callback query",
			description: "button presses carry the same identity fields",
			update: tgbotapi.Update{
				CallbackQuery: &tgbotapi.CallbackQuery{
					ID:   "cb-9",
					From: &tgbotapi.User{ID: 123, UserName: "tester", FirstName: "Test"},
					Data: "lesson:4",
					Message: &tgbotapi.Message{
						MessageID: 11,
						Chat:      &tgbotapi.Chat{ID: 456},
					},
				},
			},
			wantOK: true,
			want: Event{
				TelegramID: 123, Username: "tester", FullName: "Test",
				ChatID: 456, MessageID: 11,
				CallbackID: "cb-9", CallbackData: "lesson:4",
			},
		},
		{
			name:        "empty update",
			description: "updates without message or callback are dropped",
			update:      tgbotapi.Update{},
			wantOK:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeUpdate(tt.update)
			assert.Equal(t, tt.wantOK, ok, tt.description)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPayloadHelpers(t *testing.T) {
	id, err := payloadUint("lesson:42", 0)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	lessonID, err := payloadUint("step:7:3", 0)
	require.NoError(t, err)
	assert.Equal(t, uint(7), lessonID)

	stepNumber, err := payloadInt("step:7:3", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, stepNumber)

	_, err = payloadUint("lesson:", 0)
	assert.Error(t, err)

	_, err = payloadUint("lesson:abc", 0)
	assert.Error(t, err)
}
