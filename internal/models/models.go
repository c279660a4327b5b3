package models

import "time"

// Lesson categories and generation kinds share the same two values.
const (
	KindText  = "text"
	KindImage = "image"
)

// DailyGenerationLimit is the number of generations a non-admin user
// gets per UTC calendar day.
const DailyGenerationLimit = 5

// User is the internal account for one Telegram identity.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	TelegramID   int64     `gorm:"uniqueIndex;not null"`
	Username     string    `gorm:"size:100"`
	FullName     string    `gorm:"size:100"`
	RegisteredAt time.Time `gorm:"autoCreateTime"`
	IsActive     bool      `gorm:"default:true"`
	IsAdmin      bool      `gorm:"default:false"`

	DailyGenerationsLeft int       `gorm:"default:5"`
	LastGenerationDate   time.Time `gorm:"autoCreateTime"`

	Progress         []UserProgress    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	GeneratedPrompts []GeneratedPrompt `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	QuizAttempts     []QuizAttempt     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Lesson is one unit of curriculum content, either text or image prompting.
type Lesson struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	Kind        string `gorm:"size:50;not null"` // KindText or KindImage
	SortOrder   int    `gorm:"not null"`
	IsActive    bool   `gorm:"default:true"`

	Steps    []LessonStep    `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE"`
	Examples []PromptExample `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE"`
	Quizzes  []Quiz          `gorm:"foreignKey:LessonID"`
}

// LessonStep is one page of lesson content.
type LessonStep struct {
	ID         uint   `gorm:"primaryKey"`
	LessonID   uint   `gorm:"not null;uniqueIndex:idx_lesson_step_number"`
	StepNumber int    `gorm:"not null;uniqueIndex:idx_lesson_step_number"`
	Content    string `gorm:"type:text;not null"`
}

// PromptExample is a sample prompt attached to a lesson.
type PromptExample struct {
	ID            uint   `gorm:"primaryKey"`
	LessonID      uint   `gorm:"not null"`
	PromptText    string `gorm:"type:text;not null"`
	ResultPreview string `gorm:"size:255"`
	Kind          string `gorm:"size:50;not null"`
}

// UserProgress is one user's completion record for one lesson step.
// Rows are created lazily the first time a step is shown.
type UserProgress struct {
	ID           uint `gorm:"primaryKey"`
	UserID       uint `gorm:"not null;uniqueIndex:idx_user_step"`
	LessonStepID uint `gorm:"not null;uniqueIndex:idx_user_step"`
	Completed    bool `gorm:"default:false"`
	Score        *float64
	CompletedAt  *time.Time
}

// GeneratedPrompt records one generation exercise run by a user.
type GeneratedPrompt struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"not null"`
	PromptText string    `gorm:"type:text;not null"`
	Result     string    `gorm:"type:text"`
	Kind       string    `gorm:"size:50;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// Quiz is a set of free-text questions, optionally tied to a lesson.
type Quiz struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	LessonID    *uint

	Questions []Question    `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	Attempts  []QuizAttempt `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
}

// Question is one quiz question. SortOrder is unique within a quiz.
type Question struct {
	ID        uint   `gorm:"primaryKey"`
	QuizID    uint   `gorm:"not null;uniqueIndex:idx_quiz_question_order"`
	Text      string `gorm:"type:text;not null"`
	SortOrder int    `gorm:"not null;uniqueIndex:idx_quiz_question_order"`
}

// QuizAttempt is one run of a quiz by one user. Every start is a fresh
// attempt; abandoned attempts keep their partial answers.
type QuizAttempt struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"not null"`
	QuizID     uint      `gorm:"not null"`
	StartTime  time.Time `gorm:"autoCreateTime"`
	EndTime    *time.Time
	TotalScore float64 `gorm:"default:0"`

	Answers []UserAnswer `gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE"`
}

// UserAnswer is one submitted response within an attempt. The
// (attempt, question) pair is unique: re-answering replaces the row.
// Evaluation fields stay nil until the judge responds.
type UserAnswer struct {
	ID         uint   `gorm:"primaryKey"`
	AttemptID  uint   `gorm:"not null;uniqueIndex:idx_attempt_question"`
	QuestionID uint   `gorm:"not null;uniqueIndex:idx_attempt_question"`
	AnswerText string `gorm:"type:text;not null"`
	IsCorrect  *bool
	Score      *float64
	Feedback   string `gorm:"type:text"`
}

// CompletionState summarizes a user's progress within one lesson.
// A lesson with zero steps is never fully completed.
type CompletionState struct {
	CompletedCount int
	TotalCount     int
}

// FullyCompleted reports whether every step of a non-empty lesson is done.
func (c CompletionState) FullyCompleted() bool {
	return c.TotalCount > 0 && c.CompletedCount == c.TotalCount
}

// CategoryProgress summarizes lesson completion for one lesson kind.
type CategoryProgress struct {
	Total     int
	Completed int
}

// ProgressSummary is the aggregate view behind the "My Progress" screen.
type ProgressSummary struct {
	Text  CategoryProgress
	Image CategoryProgress
}

// LeaderboardEntry is one row of the quiz score leaderboard.
type LeaderboardEntry struct {
	Username   string
	FullName   string
	TotalScore float64
}

// DisplayName picks the best available name for a leaderboard row.
func (e LeaderboardEntry) DisplayName() string {
	if e.FullName != "" {
		return e.FullName
	}
	if e.Username != "" {
		return e.Username
	}
	return "anonymous"
}
