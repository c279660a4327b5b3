package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trainbot/internal/models"
	"trainbot/internal/storage"
)

// ListQuizzes returns all quizzes in creation order.
func (p *PostgresDB) ListQuizzes(ctx context.Context) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := p.db.WithContext(ctx).Order("id").Find(&quizzes).Error; err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, nil
}

// GetQuiz returns one quiz by ID.
func (p *PostgresDB) GetQuiz(ctx context.Context, quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := p.db.WithContext(ctx).First(&quiz, quizID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return &quiz, nil
}

// GetQuizByTitle returns one quiz by its unique title.
func (p *PostgresDB) GetQuizByTitle(ctx context.Context, title string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := p.db.WithContext(ctx).Where("title = ?", title).First(&quiz).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz by title: %w", err)
	}
	return &quiz, nil
}

// QuestionsForQuiz returns the quiz's questions in their authored order.
func (p *PostgresDB) QuestionsForQuiz(ctx context.Context, quizID uint) ([]models.Question, error) {
	var questions []models.Question
	err := p.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("sort_order").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	return questions, nil
}

// GetQuestion returns one question by ID.
func (p *PostgresDB) GetQuestion(ctx context.Context, questionID uint) (*models.Question, error) {
	var question models.Question
	err := p.db.WithContext(ctx).First(&question, questionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &question, nil
}

// StartAttempt opens a fresh attempt. Unfinished prior attempts on the same
// quiz are left as they are; every start is a new run.
func (p *PostgresDB) StartAttempt(ctx context.Context, telegramID int64, quizID uint) (*models.QuizAttempt, error) {
	user, err := p.GetUser(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	attempt := &models.QuizAttempt{
		UserID: user.ID,
		QuizID: quizID,
	}
	if err := p.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return nil, fmt.Errorf("failed to create quiz attempt: %w", err)
	}
	return attempt, nil
}

// GetAttempt returns one attempt by ID.
func (p *PostgresDB) GetAttempt(ctx context.Context, attemptID uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	err := p.db.WithContext(ctx).First(&attempt, attemptID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return &attempt, nil
}

// RecordAnswer stores an unevaluated answer. One row per (attempt, question):
// a repeated submission replaces the text and clears any prior evaluation.
func (p *PostgresDB) RecordAnswer(ctx context.Context, attemptID, questionID uint, answerText string) (*models.UserAnswer, error) {
	answer := models.UserAnswer{
		AttemptID:  attemptID,
		QuestionID: questionID,
		AnswerText: answerText,
	}
	err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"answer_text": answerText,
			"is_correct":  nil,
			"score":       nil,
			"feedback":    "",
		}),
	}).Create(&answer).Error
	if err != nil {
		return nil, fmt.Errorf("failed to record answer: %w", err)
	}

	// Re-read so the caller always sees the stored row, including the ID of
	// a pre-existing row updated by the conflict clause.
	var stored models.UserAnswer
	err = p.db.WithContext(ctx).
		Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		First(&stored).Error
	if err != nil {
		return nil, fmt.Errorf("failed to re-read answer: %w", err)
	}
	return &stored, nil
}

// ApplyEvaluation writes the judge's verdict onto an answer. Score range
// is the judge's declared 0-10 scale; callers validate upstream.
func (p *PostgresDB) ApplyEvaluation(ctx context.Context, answerID uint, isCorrect bool, score float64, feedback string) error {
	res := p.db.WithContext(ctx).Model(&models.UserAnswer{}).
		Where("id = ?", answerID).
		Updates(map[string]interface{}{
			"is_correct": isCorrect,
			"score":      score,
			"feedback":   feedback,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to apply evaluation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// NextQuestion returns the question with the lowest order strictly greater
// than afterOrder, or nil when the quiz is exhausted.
func (p *PostgresDB) NextQuestion(ctx context.Context, quizID uint, afterOrder int) (*models.Question, error) {
	var question models.Question
	err := p.db.WithContext(ctx).
		Where("quiz_id = ? AND sort_order > ?", quizID, afterOrder).
		Order("sort_order").
		First(&question).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next question: %w", err)
	}
	return &question, nil
}

// FinalizeAttempt sums the answer scores (unscored answers count as zero),
// writes the total, and stamps the end time. Idempotent: re-finalizing
// recomputes from current answer rows.
func (p *PostgresDB) FinalizeAttempt(ctx context.Context, attemptID uint) (float64, error) {
	var total float64
	err := p.db.WithContext(ctx).Model(&models.UserAnswer{}).
		Where("attempt_id = ?", attemptID).
		Select("COALESCE(SUM(score), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum answer scores: %w", err)
	}

	now := time.Now().UTC()
	res := p.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Where("id = ?", attemptID).
		Updates(map[string]interface{}{
			"total_score": total,
			"end_time":    now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to finalize attempt: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, storage.ErrNotFound
	}
	return total, nil
}

// Leaderboard returns the top users by total answer score across all
// attempts, highest first.
func (p *PostgresDB) Leaderboard(ctx context.Context, topN int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := p.db.WithContext(ctx).Model(&models.User{}).
		Select("users.username AS username, users.full_name AS full_name, COALESCE(SUM(user_answers.score), 0) AS total_score").
		Joins("JOIN quiz_attempts ON quiz_attempts.user_id = users.id").
		Joins("JOIN user_answers ON user_answers.attempt_id = quiz_attempts.id").
		Group("users.id, users.username, users.full_name").
		Order("total_score DESC").
		Limit(topN).
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return entries, nil
}

// CreateQuiz inserts a quiz along with any attached questions.
func (p *PostgresDB) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	if err := p.db.WithContext(ctx).Create(quiz).Error; err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

// CreateQuestion inserts one quiz question.
func (p *PostgresDB) CreateQuestion(ctx context.Context, question *models.Question) error {
	if err := p.db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}
