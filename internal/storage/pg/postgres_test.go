package pg

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	postgresTC "github.com/testcontainers/testcontainers-go/modules/postgres"

	"trainbot/internal/models"
	"trainbot/internal/storage"
)

// setupTestDB creates a test Postgres instance using testcontainers
func setupTestDB(t *testing.T) *PostgresDB {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	postgresContainer, err := postgresTC.Run(ctx,
		"postgres:16-alpine",
		postgresTC.WithDatabase("trainbot_test"),
		postgresTC.WithUsername("postgres"),
		postgresTC.WithPassword("test"),
		postgresTC.BasicWaitStrategies(),
	)
	require.NoError(t, err, "Failed to start Postgres container")
	t.Cleanup(func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := NewFromDSN(dsn)
	require.NoError(t, err, "Failed to connect to Postgres")
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Initialize(ctx))
	return db
}

func TestResolveOrCreateUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user, err := db.ResolveOrCreateUser(ctx, 123, "tester", "Test User")
	require.NoError(t, err)
	assert.Equal(t, int64(123), user.TelegramID)
	assert.True(t, user.IsActive)
	assert.Equal(t, models.DailyGenerationLimit, user.DailyGenerationsLeft)

	// A second resolve returns the same row, not a duplicate.
	again, err := db.ResolveOrCreateUser(ctx, 123, "tester", "Test User")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestGetUserNotFound(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.GetUser(ctx, 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestQuotaConsumptionAndReset(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.ResolveOrCreateUser(ctx, 123, "tester", "Test User")
	require.NoError(t, err)

	// Consume the whole daily allowance.
	for i := models.DailyGenerationLimit - 1; i >= 0; i-- {
		allowed, remaining, err := db.CheckAndConsumeQuota(ctx, 123)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, i, remaining)
	}

	allowed, remaining, err := db.CheckAndConsumeQuota(ctx, 123)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)

	// Push the last generation date into yesterday; the next check
	// refills the allowance before consuming.
	yesterday := time.Now().UTC().Add(-24 * time.Hour)
	err = db.db.Model(&models.User{}).
		Where("telegram_id = ?", int64(123)).
		Update("last_generation_date", yesterday).Error
	require.NoError(t, err)

	allowed, remaining, err = db.CheckAndConsumeQuota(ctx, 123)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, models.DailyGenerationLimit-1, remaining)
}

func TestAdminBypassesQuota(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.ResolveOrCreateUser(ctx, 123, "tester", "Test User")
	require.NoError(t, err)
	require.NoError(t, db.SetAdmin(ctx, 123, true))

	for i := 0; i < models.DailyGenerationLimit*2; i++ {
		allowed, _, err := db.CheckAndConsumeQuota(ctx, 123)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestLessonProgress(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.ResolveOrCreateUser(ctx, 123, "tester", "Test User")
	require.NoError(t, err)

	lesson := &models.Lesson{
		Title: "Clarity", Kind: models.KindText, SortOrder: 1, IsActive: true,
		Steps: []models.LessonStep{
			{StepNumber: 1, Content: "Page one"},
			{StepNumber: 2, Content: "Page two"},
			{StepNumber: 3, Content: "Page three"},
		},
	}
	require.NoError(t, db.CreateLesson(ctx, lesson))

	state, err := db.LessonCompletion(ctx, 123, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, state.TotalCount)
	assert.Equal(t, 0, state.CompletedCount)
	assert.False(t, state.FullyCompleted())

	next, err := db.NextStep(ctx, 123, lesson.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, 1, next.StepNumber)

	require.NoError(t, db.MarkStepComplete(ctx, 123, lesson.Steps[0].ID))
	// Marking the same step again is a no-op.
	require.NoError(t, db.MarkStepComplete(ctx, 123, lesson.Steps[0].ID))

	next, err = db.NextStep(ctx, 123, lesson.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, 2, next.StepNumber)

	require.NoError(t, db.MarkLessonComplete(ctx, 123, lesson.ID))

	state, err = db.LessonCompletion(ctx, 123, lesson.ID)
	require.NoError(t, err)
	assert.True(t, state.FullyCompleted())

	next, err = db.NextStep(ctx, 123, lesson.ID)
	require.NoError(t, err)
	assert.Nil(t, next)

	summary, err := db.UserProgressSummary(ctx, 123)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Text.Total)
	assert.Equal(t, 1, summary.Text.Completed)
	assert.Equal(t, 0, summary.Image.Total)
}

func TestEmptyLessonNeverCompleted(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.ResolveOrCreateUser(ctx, 123, "tester", "Test User")
	require.NoError(t, err)

	lesson := &models.Lesson{Title: "Empty", Kind: models.KindText, SortOrder: 1, IsActive: true}
	require.NoError(t, db.CreateLesson(ctx, lesson))

	state, err := db.LessonCompletion(ctx, 123, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, state.TotalCount)
	assert.False(t, state.FullyCompleted(), "a lesson with no steps is never fully completed")
}

func TestQuizAttemptLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.ResolveOrCreateUser(ctx, 123, "tester", "Test User")
	require.NoError(t, err)

	quiz := &models.Quiz{
		Title: "Basics",
		Questions: []models.Question{
			{Text: "Q1", SortOrder: 1},
			{Text: "Q2", SortOrder: 2},
		},
	}
	require.NoError(t, db.CreateQuiz(ctx, quiz))

	attempt, err := db.StartAttempt(ctx, 123, quiz.ID)
	require.NoError(t, err)
	assert.Nil(t, attempt.EndTime)

	// Record and grade the first answer.
	answer, err := db.RecordAnswer(ctx, attempt.ID, quiz.Questions[0].ID, "my answer")
	require.NoError(t, err)
	require.NoError(t, db.ApplyEvaluation(ctx, answer.ID, true, 8.5, "good"))

	// Re-answering the same question replaces the row and clears the
	// evaluation.
	replaced, err := db.RecordAnswer(ctx, attempt.ID, quiz.Questions[0].ID, "revised answer")
	require.NoError(t, err)
	assert.Equal(t, answer.ID, replaced.ID)
	assert.Equal(t, "revised answer", replaced.AnswerText)
	assert.Nil(t, replaced.Score)
	require.NoError(t, db.ApplyEvaluation(ctx, replaced.ID, true, 6.0, "decent"))

	// Second question stays ungraded; its score counts as zero.
	_, err = db.RecordAnswer(ctx, attempt.ID, quiz.Questions[1].ID, "unscored")
	require.NoError(t, err)

	next, err := db.NextQuestion(ctx, quiz.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, 2, next.SortOrder)

	next, err = db.NextQuestion(ctx, quiz.ID, 2)
	require.NoError(t, err)
	assert.Nil(t, next)

	total, err := db.FinalizeAttempt(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, total)

	final, err := db.GetAttempt(ctx, attempt.ID)
	require.NoError(t, err)
	assert.NotNil(t, final.EndTime)
	assert.Equal(t, 6.0, final.TotalScore)

	// A new start always opens a fresh attempt.
	second, err := db.StartAttempt(ctx, 123, quiz.ID)
	require.NoError(t, err)
	assert.NotEqual(t, attempt.ID, second.ID)
}

func TestLeaderboard(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.ResolveOrCreateUser(ctx, 1, "alice", "Alice")
	require.NoError(t, err)
	_, err = db.ResolveOrCreateUser(ctx, 2, "bob", "Bob")
	require.NoError(t, err)

	quiz := &models.Quiz{
		Title:     "Scored",
		Questions: []models.Question{{Text: "Q1", SortOrder: 1}},
	}
	require.NoError(t, db.CreateQuiz(ctx, quiz))

	for _, tc := range []struct {
		telegramID int64
		score      float64
	}{
		{1, 4.0},
		{2, 9.0},
	} {
		attempt, err := db.StartAttempt(ctx, tc.telegramID, quiz.ID)
		require.NoError(t, err)
		answer, err := db.RecordAnswer(ctx, attempt.ID, quiz.Questions[0].ID, "answer")
		require.NoError(t, err)
		require.NoError(t, db.ApplyEvaluation(ctx, answer.ID, true, tc.score, "graded"))
		_, err = db.FinalizeAttempt(ctx, attempt.ID)
		require.NoError(t, err)
	}

	entries, err := db.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Bob", entries[0].DisplayName())
	assert.Equal(t, 9.0, entries[0].TotalScore)
	assert.Equal(t, "Alice", entries[1].DisplayName())
}

func TestSaveGeneratedPrompt(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.ResolveOrCreateUser(ctx, 123, "tester", "Test User")
	require.NoError(t, err)

	err = db.SaveGeneratedPrompt(ctx, 123, "a castle at dusk", models.KindImage, "https://example.com/img.png")
	require.NoError(t, err)

	err = db.SaveGeneratedPrompt(ctx, 999, "prompt", models.KindText, "result")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
