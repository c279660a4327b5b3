// Package seed loads the built-in curriculum into an empty database.
// Seeding is idempotent: lessons and quizzes are matched by title, so
// running it on every startup is safe.
package seed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"trainbot/internal/models"
	"trainbot/internal/storage"
)

// Run inserts any curriculum content that is not in the database yet.
func Run(ctx context.Context, db storage.Storage, logger *zap.Logger) error {
	lessonIDs, err := seedLessons(ctx, db, logger)
	if err != nil {
		return err
	}
	if err := seedQuizzes(ctx, db, lessonIDs, logger); err != nil {
		return err
	}
	return nil
}

func seedLessons(ctx context.Context, db storage.Storage, logger *zap.Logger) (map[string]uint, error) {
	ids := make(map[string]uint, len(lessonSeeds))

	for _, ls := range lessonSeeds {
		existing, err := db.GetLessonByTitle(ctx, ls.Title)
		if err == nil {
			ids[ls.Title] = existing.ID
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up lesson %q: %w", ls.Title, err)
		}

		lesson := &models.Lesson{
			Title:       ls.Title,
			Description: ls.Description,
			Kind:        ls.Kind,
			SortOrder:   ls.SortOrder,
			IsActive:    true,
		}
		for i, content := range ls.Steps {
			lesson.Steps = append(lesson.Steps, models.LessonStep{
				StepNumber: i + 1,
				Content:    content,
			})
		}
		for _, ex := range ls.Examples {
			lesson.Examples = append(lesson.Examples, models.PromptExample{
				PromptText:    ex.PromptText,
				ResultPreview: ex.ResultPreview,
				Kind:          ls.Kind,
			})
		}

		if err := db.CreateLesson(ctx, lesson); err != nil {
			return nil, fmt.Errorf("failed to create lesson %q: %w", ls.Title, err)
		}
		ids[ls.Title] = lesson.ID
		logger.Info("Seeded lesson",
			zap.String("title", ls.Title),
			zap.String("kind", ls.Kind),
			zap.Int("steps", len(ls.Steps)))
	}

	return ids, nil
}

func seedQuizzes(ctx context.Context, db storage.Storage, lessonIDs map[string]uint, logger *zap.Logger) error {
	for _, qs := range quizSeeds {
		if _, err := db.GetQuizByTitle(ctx, qs.Title); err == nil {
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to look up quiz %q: %w", qs.Title, err)
		}

		quiz := &models.Quiz{
			Title:       qs.Title,
			Description: qs.Description,
		}
		if lessonID, ok := lessonIDs[qs.LessonTitle]; ok {
			quiz.LessonID = &lessonID
		}
		for _, q := range qs.Questions {
			quiz.Questions = append(quiz.Questions, models.Question{
				Text:      q.Text,
				SortOrder: q.SortOrder,
			})
		}

		if err := db.CreateQuiz(ctx, quiz); err != nil {
			return fmt.Errorf("failed to create quiz %q: %w", qs.Title, err)
		}
		logger.Info("Seeded quiz",
			zap.String("title", qs.Title),
			zap.Int("questions", len(qs.Questions)))
	}

	return nil
}
