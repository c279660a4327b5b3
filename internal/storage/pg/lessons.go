package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"trainbot/internal/models"
	"trainbot/internal/storage"
)

// ListLessons returns lessons of one kind sorted by their authored order.
func (p *PostgresDB) ListLessons(ctx context.Context, kind string, activeOnly bool) ([]models.Lesson, error) {
	query := p.db.WithContext(ctx).Where("kind = ?", kind)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var lessons []models.Lesson
	if err := query.Order("sort_order").Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

// GetLesson returns one lesson by ID.
func (p *PostgresDB) GetLesson(ctx context.Context, lessonID uint) (*models.Lesson, error) {
	var lesson models.Lesson
	err := p.db.WithContext(ctx).First(&lesson, lessonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return &lesson, nil
}

// GetLessonByTitle returns one lesson by its title.
func (p *PostgresDB) GetLessonByTitle(ctx context.Context, title string) (*models.Lesson, error) {
	var lesson models.Lesson
	err := p.db.WithContext(ctx).Where("title = ?", title).First(&lesson).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson by title: %w", err)
	}
	return &lesson, nil
}

// GetLessonSteps returns all steps of a lesson ordered by step number.
// Step order is strictly the stored number; gaps are never filled.
func (p *PostgresDB) GetLessonSteps(ctx context.Context, lessonID uint) ([]models.LessonStep, error) {
	var steps []models.LessonStep
	err := p.db.WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Order("step_number").
		Find(&steps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson steps: %w", err)
	}
	return steps, nil
}

// GetLessonStep returns one step by its number within a lesson.
func (p *PostgresDB) GetLessonStep(ctx context.Context, lessonID uint, stepNumber int) (*models.LessonStep, error) {
	var step models.LessonStep
	err := p.db.WithContext(ctx).
		Where("lesson_id = ? AND step_number = ?", lessonID, stepNumber).
		First(&step).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson step: %w", err)
	}
	return &step, nil
}

// ListExamples returns all prompt examples attached to a lesson.
func (p *PostgresDB) ListExamples(ctx context.Context, lessonID uint) ([]models.PromptExample, error) {
	var examples []models.PromptExample
	if err := p.db.WithContext(ctx).Where("lesson_id = ?", lessonID).Find(&examples).Error; err != nil {
		return nil, fmt.Errorf("failed to list examples: %w", err)
	}
	return examples, nil
}

// LessonCompletion counts completed steps against the lesson's current
// total. A lesson with zero steps reports zero totals and can therefore
// never be fully completed.
func (p *PostgresDB) LessonCompletion(ctx context.Context, telegramID int64, lessonID uint) (models.CompletionState, error) {
	var state models.CompletionState

	user, err := p.GetUser(ctx, telegramID)
	if err != nil {
		return state, err
	}

	var total int64
	if err := p.db.WithContext(ctx).Model(&models.LessonStep{}).
		Where("lesson_id = ?", lessonID).
		Count(&total).Error; err != nil {
		return state, fmt.Errorf("failed to count lesson steps: %w", err)
	}

	var completed int64
	err = p.db.WithContext(ctx).Model(&models.UserProgress{}).
		Joins("JOIN lesson_steps ON lesson_steps.id = user_progresses.lesson_step_id").
		Where("user_progresses.user_id = ? AND lesson_steps.lesson_id = ? AND user_progresses.completed = ?",
			user.ID, lessonID, true).
		Count(&completed).Error
	if err != nil {
		return state, fmt.Errorf("failed to count completed steps: %w", err)
	}

	state.TotalCount = int(total)
	state.CompletedCount = int(completed)
	return state, nil
}

// NextStep returns the lowest-numbered step the user has not completed,
// or nil when the lesson is finished.
func (p *PostgresDB) NextStep(ctx context.Context, telegramID int64, lessonID uint) (*models.LessonStep, error) {
	user, err := p.GetUser(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	var step models.LessonStep
	err = p.db.WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Where(`id NOT IN (
			SELECT lesson_step_id FROM user_progresses
			WHERE user_id = ? AND completed = true
		)`, user.ID).
		Order("step_number").
		First(&step).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find next step: %w", err)
	}
	return &step, nil
}

// MarkStepComplete creates the progress row on first visit and marks it
// completed. Calling it again is a no-op.
func (p *PostgresDB) MarkStepComplete(ctx context.Context, telegramID int64, stepID uint) error {
	user, err := p.GetUser(ctx, telegramID)
	if err != nil {
		return err
	}

	progress := models.UserProgress{UserID: user.ID, LessonStepID: stepID}
	err = p.db.WithContext(ctx).
		Where("user_id = ? AND lesson_step_id = ?", user.ID, stepID).
		FirstOrCreate(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent first visit; the row exists now.
			if err := p.db.WithContext(ctx).
				Where("user_id = ? AND lesson_step_id = ?", user.ID, stepID).
				First(&progress).Error; err != nil {
				return fmt.Errorf("failed to re-read progress: %w", err)
			}
		} else {
			return fmt.Errorf("failed to get or create progress: %w", err)
		}
	}

	if progress.Completed {
		return nil
	}

	now := time.Now().UTC()
	err = p.db.WithContext(ctx).Model(&models.UserProgress{}).
		Where("id = ?", progress.ID).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark step complete: %w", err)
	}
	return nil
}

// MarkLessonComplete force-finishes every step of a lesson. Used when
// step-by-step navigation state was lost.
func (p *PostgresDB) MarkLessonComplete(ctx context.Context, telegramID int64, lessonID uint) error {
	steps, err := p.GetLessonSteps(ctx, lessonID)
	if err != nil {
		return err
	}
	for _, step := range steps {
		if err := p.MarkStepComplete(ctx, telegramID, step.ID); err != nil {
			return err
		}
	}
	return nil
}

// UserProgressSummary aggregates per-category lesson completion.
func (p *PostgresDB) UserProgressSummary(ctx context.Context, telegramID int64) (models.ProgressSummary, error) {
	var summary models.ProgressSummary

	for _, kind := range []string{models.KindText, models.KindImage} {
		lessons, err := p.ListLessons(ctx, kind, true)
		if err != nil {
			return summary, err
		}

		progress := models.CategoryProgress{Total: len(lessons)}
		for _, lesson := range lessons {
			state, err := p.LessonCompletion(ctx, telegramID, lesson.ID)
			if err != nil {
				return summary, err
			}
			if state.FullyCompleted() {
				progress.Completed++
			}
		}

		switch kind {
		case models.KindText:
			summary.Text = progress
		case models.KindImage:
			summary.Image = progress
		}
	}
	return summary, nil
}

// CreateLesson inserts a lesson along with any attached steps and examples.
func (p *PostgresDB) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	if err := p.db.WithContext(ctx).Create(lesson).Error; err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

// CreateLessonStep inserts one lesson step.
func (p *PostgresDB) CreateLessonStep(ctx context.Context, step *models.LessonStep) error {
	if err := p.db.WithContext(ctx).Create(step).Error; err != nil {
		return fmt.Errorf("failed to create lesson step: %w", err)
	}
	return nil
}

// CreatePromptExample inserts one prompt example.
func (p *PostgresDB) CreatePromptExample(ctx context.Context, example *models.PromptExample) error {
	if err := p.db.WithContext(ctx).Create(example).Error; err != nil {
		return fmt.Errorf("failed to create prompt example: %w", err)
	}
	return nil
}
