package storage

import (
	"context"
	"errors"

	"trainbot/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
// For users this means the caller should prompt re-initialization via
// /start rather than fabricating an account.
var ErrNotFound = errors.New("storage: not found")

// Storage defines the interface for data storage operations
type Storage interface {
	// Identity and entitlement
	//
	// ResolveOrCreateUser is an idempotent upsert keyed on telegramID.
	// Concurrent calls for the same new ID never create duplicates: the
	// unique index detects the race and the loser re-reads the winner's row.
	ResolveOrCreateUser(ctx context.Context, telegramID int64, username, fullName string) (*models.User, error)
	GetUser(ctx context.Context, telegramID int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SetAdmin(ctx context.Context, telegramID int64, isAdmin bool) error
	SetActive(ctx context.Context, telegramID int64, isActive bool) error

	// CheckAndConsumeQuota resets the daily allowance on the first use of a
	// new UTC day, then decrements it by one. Admins are always allowed and
	// never decremented. The decrement is a single conditional update, so
	// the remaining count cannot go negative under concurrent calls.
	CheckAndConsumeQuota(ctx context.Context, telegramID int64) (allowed bool, remaining int, err error)

	// Curriculum
	ListLessons(ctx context.Context, kind string, activeOnly bool) ([]models.Lesson, error)
	GetLesson(ctx context.Context, lessonID uint) (*models.Lesson, error)
	GetLessonSteps(ctx context.Context, lessonID uint) ([]models.LessonStep, error)
	GetLessonStep(ctx context.Context, lessonID uint, stepNumber int) (*models.LessonStep, error)
	ListExamples(ctx context.Context, lessonID uint) ([]models.PromptExample, error)

	// Progress tracking
	LessonCompletion(ctx context.Context, telegramID int64, lessonID uint) (models.CompletionState, error)
	NextStep(ctx context.Context, telegramID int64, lessonID uint) (*models.LessonStep, error)
	MarkStepComplete(ctx context.Context, telegramID int64, stepID uint) error
	MarkLessonComplete(ctx context.Context, telegramID int64, lessonID uint) error
	UserProgressSummary(ctx context.Context, telegramID int64) (models.ProgressSummary, error)

	// Quiz sessions
	ListQuizzes(ctx context.Context) ([]models.Quiz, error)
	GetQuiz(ctx context.Context, quizID uint) (*models.Quiz, error)
	QuestionsForQuiz(ctx context.Context, quizID uint) ([]models.Question, error)
	GetQuestion(ctx context.Context, questionID uint) (*models.Question, error)
	StartAttempt(ctx context.Context, telegramID int64, quizID uint) (*models.QuizAttempt, error)
	GetAttempt(ctx context.Context, attemptID uint) (*models.QuizAttempt, error)
	RecordAnswer(ctx context.Context, attemptID, questionID uint, answerText string) (*models.UserAnswer, error)
	ApplyEvaluation(ctx context.Context, answerID uint, isCorrect bool, score float64, feedback string) error
	NextQuestion(ctx context.Context, quizID uint, afterOrder int) (*models.Question, error)

	// FinalizeAttempt recomputes the attempt total as the sum of its answer
	// scores (unscored answers count as zero), stores it, and stamps the end
	// time. Re-finalizing recomputes from current rows.
	FinalizeAttempt(ctx context.Context, attemptID uint) (float64, error)
	Leaderboard(ctx context.Context, topN int) ([]models.LeaderboardEntry, error)

	// Generation history
	SaveGeneratedPrompt(ctx context.Context, telegramID int64, promptText, kind, result string) error

	// Curriculum authoring (used by seeding)
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	CreateLessonStep(ctx context.Context, step *models.LessonStep) error
	CreatePromptExample(ctx context.Context, example *models.PromptExample) error
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	CreateQuestion(ctx context.Context, question *models.Question) error
	GetLessonByTitle(ctx context.Context, title string) (*models.Lesson, error)
	GetQuizByTitle(ctx context.Context, title string) (*models.Quiz, error)

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
