package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trainbot/internal/models"
	"trainbot/internal/storage/stubs"
)

func TestRunSeedsCurriculum(t *testing.T) {
	db := stubs.NewMockDB()
	ctx := context.Background()

	require.NoError(t, Run(ctx, db, zap.NewNop()))

	textLessons, err := db.ListLessons(ctx, models.KindText, true)
	require.NoError(t, err)
	assert.NotEmpty(t, textLessons)

	imageLessons, err := db.ListLessons(ctx, models.KindImage, true)
	require.NoError(t, err)
	assert.NotEmpty(t, imageLessons)

	// Every lesson has at least one step.
	for _, lesson := range append(textLessons, imageLessons...) {
		steps, err := db.GetLessonSteps(ctx, lesson.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, steps, "lesson %q has no steps", lesson.Title)
		for i, step := range steps {
			assert.Equal(t, i+1, step.StepNumber, "steps of %q must be dense from 1", lesson.Title)
		}
	}

	quizzes, err := db.ListQuizzes(ctx)
	require.NoError(t, err)
	assert.Len(t, quizzes, len(quizSeeds))

	for _, quiz := range quizzes {
		questions, err := db.QuestionsForQuiz(ctx, quiz.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, questions, "quiz %q has no questions", quiz.Title)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	db := stubs.NewMockDB()
	ctx := context.Background()

	require.NoError(t, Run(ctx, db, zap.NewNop()))

	firstLessons, err := db.ListLessons(ctx, models.KindText, true)
	require.NoError(t, err)
	firstQuizzes, err := db.ListQuizzes(ctx)
	require.NoError(t, err)

	// Second run must not duplicate anything.
	require.NoError(t, Run(ctx, db, zap.NewNop()))

	secondLessons, err := db.ListLessons(ctx, models.KindText, true)
	require.NoError(t, err)
	secondQuizzes, err := db.ListQuizzes(ctx)
	require.NoError(t, err)

	assert.Equal(t, len(firstLessons), len(secondLessons))
	assert.Equal(t, len(firstQuizzes), len(secondQuizzes))
}

func TestQuizSeedsReferenceExistingLessons(t *testing.T) {
	titles := make(map[string]bool, len(lessonSeeds))
	for _, ls := range lessonSeeds {
		titles[ls.Title] = true
	}
	for _, qs := range quizSeeds {
		if qs.LessonTitle != "" {
			assert.True(t, titles[qs.LessonTitle],
				"quiz %q references unknown lesson %q", qs.Title, qs.LessonTitle)
		}
	}
}
