package stubs

import (
	"context"
	"sort"
	"sync"
	"time"

	"trainbot/internal/models"
	"trainbot/internal/storage"
)

// MockDB is an in-memory implementation of the Storage interface for testing
// and local development. It mirrors the relational semantics of the real
// store, including the uniqueness rules the contracts rely on.
type MockDB struct {
	mu sync.RWMutex

	users     map[int64]*models.User // keyed by Telegram ID
	lessons   map[uint]*models.Lesson
	steps     map[uint]*models.LessonStep
	examples  map[uint]*models.PromptExample
	progress  map[uint]*models.UserProgress
	quizzes   map[uint]*models.Quiz
	questions map[uint]*models.Question
	attempts  map[uint]*models.QuizAttempt
	answers   map[uint]*models.UserAnswer
	generated []models.GeneratedPrompt

	nextID uint

	// Now is swappable so quota-reset tests can control the clock.
	Now func() time.Time
}

// NewMockDB creates a new mock database
func NewMockDB() *MockDB {
	return &MockDB{
		users:     make(map[int64]*models.User),
		lessons:   make(map[uint]*models.Lesson),
		steps:     make(map[uint]*models.LessonStep),
		examples:  make(map[uint]*models.PromptExample),
		progress:  make(map[uint]*models.UserProgress),
		quizzes:   make(map[uint]*models.Quiz),
		questions: make(map[uint]*models.Question),
		attempts:  make(map[uint]*models.QuizAttempt),
		answers:   make(map[uint]*models.UserAnswer),
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// Initialize is a no-op; seeding happens through the authoring methods.
func (m *MockDB) Initialize(ctx context.Context) error { return nil }

// Close does nothing for mock DB
func (m *MockDB) Close() error { return nil }

func (m *MockDB) allocID() uint {
	m.nextID++
	return m.nextID
}

// ResolveOrCreateUser returns the existing user or registers a new one.
func (m *MockDB) ResolveOrCreateUser(ctx context.Context, telegramID int64, username, fullName string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.users[telegramID]; ok {
		u := *user
		return &u, nil
	}

	user := &models.User{
		ID:                   m.allocID(),
		TelegramID:           telegramID,
		Username:             username,
		FullName:             fullName,
		RegisteredAt:         m.Now(),
		IsActive:             true,
		DailyGenerationsLeft: models.DailyGenerationLimit,
		LastGenerationDate:   m.Now(),
	}
	m.users[telegramID] = user
	u := *user
	return &u, nil
}

// GetUser returns the user with the given Telegram ID.
func (m *MockDB) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[telegramID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u := *user
	return &u, nil
}

// ListUsers returns all users sorted by registration time.
func (m *MockDB) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var users []models.User
	for _, u := range m.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].RegisteredAt.Before(users[j].RegisteredAt)
	})
	return users, nil
}

// SetAdmin updates the admin flag.
func (m *MockDB) SetAdmin(ctx context.Context, telegramID int64, isAdmin bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[telegramID]
	if !ok {
		return storage.ErrNotFound
	}
	user.IsAdmin = isAdmin
	return nil
}

// SetActive updates the active flag.
func (m *MockDB) SetActive(ctx context.Context, telegramID int64, isActive bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[telegramID]
	if !ok {
		return storage.ErrNotFound
	}
	user.IsActive = isActive
	return nil
}

// CheckAndConsumeQuota resets the allowance on a new UTC day, then consumes
// one generation. Admins bypass the quota entirely.
func (m *MockDB) CheckAndConsumeQuota(ctx context.Context, telegramID int64) (bool, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[telegramID]
	if !ok {
		return false, 0, storage.ErrNotFound
	}

	if user.IsAdmin {
		return true, user.DailyGenerationsLeft, nil
	}

	now := m.Now()
	if beforeUTCDay(user.LastGenerationDate, now) {
		user.DailyGenerationsLeft = models.DailyGenerationLimit
		user.LastGenerationDate = now
	}

	if user.DailyGenerationsLeft <= 0 {
		return false, user.DailyGenerationsLeft, nil
	}
	user.DailyGenerationsLeft--
	return true, user.DailyGenerationsLeft, nil
}

func beforeUTCDay(t, ref time.Time) bool {
	ty, tm, td := t.UTC().Date()
	ry, rm, rd := ref.UTC().Date()
	if ty != ry {
		return ty < ry
	}
	if tm != rm {
		return tm < rm
	}
	return td < rd
}

// ListLessons returns lessons of one kind sorted by authored order.
func (m *MockDB) ListLessons(ctx context.Context, kind string, activeOnly bool) ([]models.Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var lessons []models.Lesson
	for _, l := range m.lessons {
		if l.Kind != kind {
			continue
		}
		if activeOnly && !l.IsActive {
			continue
		}
		lessons = append(lessons, *l)
	}
	sort.Slice(lessons, func(i, j int) bool {
		return lessons[i].SortOrder < lessons[j].SortOrder
	})
	return lessons, nil
}

// GetLesson returns one lesson by ID.
func (m *MockDB) GetLesson(ctx context.Context, lessonID uint) (*models.Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lesson, ok := m.lessons[lessonID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	l := *lesson
	return &l, nil
}

// GetLessonByTitle returns one lesson by title.
func (m *MockDB) GetLessonByTitle(ctx context.Context, title string) (*models.Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, l := range m.lessons {
		if l.Title == title {
			lesson := *l
			return &lesson, nil
		}
	}
	return nil, storage.ErrNotFound
}

// GetLessonSteps returns a lesson's steps ordered by step number.
func (m *MockDB) GetLessonSteps(ctx context.Context, lessonID uint) ([]models.LessonStep, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stepsForLesson(lessonID), nil
}

func (m *MockDB) stepsForLesson(lessonID uint) []models.LessonStep {
	var steps []models.LessonStep
	for _, s := range m.steps {
		if s.LessonID == lessonID {
			steps = append(steps, *s)
		}
	}
	sort.Slice(steps, func(i, j int) bool {
		return steps[i].StepNumber < steps[j].StepNumber
	})
	return steps
}

// GetLessonStep returns one step by number within a lesson.
func (m *MockDB) GetLessonStep(ctx context.Context, lessonID uint, stepNumber int) (*models.LessonStep, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.steps {
		if s.LessonID == lessonID && s.StepNumber == stepNumber {
			step := *s
			return &step, nil
		}
	}
	return nil, storage.ErrNotFound
}

// ListExamples returns all prompt examples for a lesson.
func (m *MockDB) ListExamples(ctx context.Context, lessonID uint) ([]models.PromptExample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var examples []models.PromptExample
	for _, e := range m.examples {
		if e.LessonID == lessonID {
			examples = append(examples, *e)
		}
	}
	sort.Slice(examples, func(i, j int) bool { return examples[i].ID < examples[j].ID })
	return examples, nil
}

// LessonCompletion counts completed steps against the lesson total.
func (m *MockDB) LessonCompletion(ctx context.Context, telegramID int64, lessonID uint) (models.CompletionState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var state models.CompletionState
	user, ok := m.users[telegramID]
	if !ok {
		return state, storage.ErrNotFound
	}

	steps := m.stepsForLesson(lessonID)
	state.TotalCount = len(steps)
	for _, step := range steps {
		if p := m.findProgress(user.ID, step.ID); p != nil && p.Completed {
			state.CompletedCount++
		}
	}
	return state, nil
}

func (m *MockDB) findProgress(userID, stepID uint) *models.UserProgress {
	for _, p := range m.progress {
		if p.UserID == userID && p.LessonStepID == stepID {
			return p
		}
	}
	return nil
}

// NextStep returns the lowest uncompleted step, nil when finished.
func (m *MockDB) NextStep(ctx context.Context, telegramID int64, lessonID uint) (*models.LessonStep, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[telegramID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	for _, step := range m.stepsForLesson(lessonID) {
		p := m.findProgress(user.ID, step.ID)
		if p == nil || !p.Completed {
			s := step
			return &s, nil
		}
	}
	return nil, nil
}

// MarkStepComplete lazily creates the progress row and marks it completed.
func (m *MockDB) MarkStepComplete(ctx context.Context, telegramID int64, stepID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[telegramID]
	if !ok {
		return storage.ErrNotFound
	}

	p := m.findProgress(user.ID, stepID)
	if p == nil {
		p = &models.UserProgress{
			ID:           m.allocID(),
			UserID:       user.ID,
			LessonStepID: stepID,
		}
		m.progress[p.ID] = p
	}
	if !p.Completed {
		now := m.Now()
		p.Completed = true
		p.CompletedAt = &now
	}
	return nil
}

// MarkLessonComplete force-finishes every step of a lesson.
func (m *MockDB) MarkLessonComplete(ctx context.Context, telegramID int64, lessonID uint) error {
	m.mu.RLock()
	steps := m.stepsForLesson(lessonID)
	m.mu.RUnlock()

	for _, step := range steps {
		if err := m.MarkStepComplete(ctx, telegramID, step.ID); err != nil {
			return err
		}
	}
	return nil
}

// UserProgressSummary aggregates per-category lesson completion.
func (m *MockDB) UserProgressSummary(ctx context.Context, telegramID int64) (models.ProgressSummary, error) {
	var summary models.ProgressSummary

	for _, kind := range []string{models.KindText, models.KindImage} {
		lessons, err := m.ListLessons(ctx, kind, true)
		if err != nil {
			return summary, err
		}
		progress := models.CategoryProgress{Total: len(lessons)}
		for _, lesson := range lessons {
			state, err := m.LessonCompletion(ctx, telegramID, lesson.ID)
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

// ListQuizzes returns all quizzes in creation order.
func (m *MockDB) ListQuizzes(ctx context.Context) ([]models.Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var quizzes []models.Quiz
	for _, q := range m.quizzes {
		quizzes = append(quizzes, *q)
	}
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].ID < quizzes[j].ID })
	return quizzes, nil
}

// GetQuiz returns one quiz by ID.
func (m *MockDB) GetQuiz(ctx context.Context, quizID uint) (*models.Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	quiz, ok := m.quizzes[quizID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	q := *quiz
	return &q, nil
}

// GetQuizByTitle returns one quiz by title.
func (m *MockDB) GetQuizByTitle(ctx context.Context, title string) (*models.Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, q := range m.quizzes {
		if q.Title == title {
			quiz := *q
			return &quiz, nil
		}
	}
	return nil, storage.ErrNotFound
}

// QuestionsForQuiz returns a quiz's questions in authored order.
func (m *MockDB) QuestionsForQuiz(ctx context.Context, quizID uint) ([]models.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var questions []models.Question
	for _, q := range m.questions {
		if q.QuizID == quizID {
			questions = append(questions, *q)
		}
	}
	sort.Slice(questions, func(i, j int) bool {
		return questions[i].SortOrder < questions[j].SortOrder
	})
	return questions, nil
}

// GetQuestion returns one question by ID.
func (m *MockDB) GetQuestion(ctx context.Context, questionID uint) (*models.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	question, ok := m.questions[questionID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	q := *question
	return &q, nil
}

// StartAttempt opens a fresh attempt; prior unfinished attempts stay as is.
func (m *MockDB) StartAttempt(ctx context.Context, telegramID int64, quizID uint) (*models.QuizAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[telegramID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if _, ok := m.quizzes[quizID]; !ok {
		return nil, storage.ErrNotFound
	}

	attempt := &models.QuizAttempt{
		ID:        m.allocID(),
		UserID:    user.ID,
		QuizID:    quizID,
		StartTime: m.Now(),
	}
	m.attempts[attempt.ID] = attempt
	a := *attempt
	return &a, nil
}

// GetAttempt returns one attempt by ID.
func (m *MockDB) GetAttempt(ctx context.Context, attemptID uint) (*models.QuizAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	attempt, ok := m.attempts[attemptID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	a := *attempt
	return &a, nil
}

// RecordAnswer upserts the answer for (attempt, question), clearing any
// prior evaluation when the text is replaced.
func (m *MockDB) RecordAnswer(ctx context.Context, attemptID, questionID uint, answerText string) (*models.UserAnswer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.attempts[attemptID]; !ok {
		return nil, storage.ErrNotFound
	}

	for _, a := range m.answers {
		if a.AttemptID == attemptID && a.QuestionID == questionID {
			a.AnswerText = answerText
			a.IsCorrect = nil
			a.Score = nil
			a.Feedback = ""
			ans := *a
			return &ans, nil
		}
	}

	answer := &models.UserAnswer{
		ID:         m.allocID(),
		AttemptID:  attemptID,
		QuestionID: questionID,
		AnswerText: answerText,
	}
	m.answers[answer.ID] = answer
	ans := *answer
	return &ans, nil
}

// ApplyEvaluation writes the judge's verdict onto an answer.
func (m *MockDB) ApplyEvaluation(ctx context.Context, answerID uint, isCorrect bool, score float64, feedback string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	answer, ok := m.answers[answerID]
	if !ok {
		return storage.ErrNotFound
	}
	answer.IsCorrect = &isCorrect
	answer.Score = &score
	answer.Feedback = feedback
	return nil
}

// NextQuestion returns the next question by order, nil when exhausted.
func (m *MockDB) NextQuestion(ctx context.Context, quizID uint, afterOrder int) (*models.Question, error) {
	questions, err := m.QuestionsForQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	for _, q := range questions {
		if q.SortOrder > afterOrder {
			question := q
			return &question, nil
		}
	}
	return nil, nil
}

// FinalizeAttempt recomputes the total from current answer rows.
func (m *MockDB) FinalizeAttempt(ctx context.Context, attemptID uint) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	attempt, ok := m.attempts[attemptID]
	if !ok {
		return 0, storage.ErrNotFound
	}

	var total float64
	for _, a := range m.answers {
		if a.AttemptID == attemptID && a.Score != nil {
			total += *a.Score
		}
	}
	now := m.Now()
	attempt.TotalScore = total
	attempt.EndTime = &now
	return total, nil
}

// Leaderboard returns the top users by total answer score.
func (m *MockDB) Leaderboard(ctx context.Context, topN int) ([]models.LeaderboardEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	totals := make(map[uint]float64)
	for _, a := range m.answers {
		if a.Score == nil {
			continue
		}
		attempt, ok := m.attempts[a.AttemptID]
		if !ok {
			continue
		}
		totals[attempt.UserID] += *a.Score
	}

	var entries []models.LeaderboardEntry
	for _, u := range m.users {
		score, ok := totals[u.ID]
		if !ok {
			continue
		}
		entries = append(entries, models.LeaderboardEntry{
			Username:   u.Username,
			FullName:   u.FullName,
			TotalScore: score,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].TotalScore > entries[j].TotalScore
	})
	if topN > 0 && topN < len(entries) {
		entries = entries[:topN]
	}
	return entries, nil
}

// SaveGeneratedPrompt records one generation exercise.
func (m *MockDB) SaveGeneratedPrompt(ctx context.Context, telegramID int64, promptText, kind, result string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[telegramID]
	if !ok {
		return storage.ErrNotFound
	}
	m.generated = append(m.generated, models.GeneratedPrompt{
		ID:         m.allocID(),
		UserID:     user.ID,
		PromptText: promptText,
		Kind:       kind,
		Result:     result,
		CreatedAt:  m.Now(),
	})
	return nil
}

// GeneratedPrompts exposes saved generations for test assertions.
func (m *MockDB) GeneratedPrompts() []models.GeneratedPrompt {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.GeneratedPrompt, len(m.generated))
	copy(out, m.generated)
	return out
}

// CreateLesson inserts a lesson along with attached steps and examples.
func (m *MockDB) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lesson.ID = m.allocID()
	stored := *lesson
	stored.Steps = nil
	stored.Examples = nil
	m.lessons[lesson.ID] = &stored

	for i := range lesson.Steps {
		step := lesson.Steps[i]
		step.ID = m.allocID()
		step.LessonID = lesson.ID
		m.steps[step.ID] = &step
		lesson.Steps[i] = step
	}
	for i := range lesson.Examples {
		example := lesson.Examples[i]
		example.ID = m.allocID()
		example.LessonID = lesson.ID
		m.examples[example.ID] = &example
		lesson.Examples[i] = example
	}
	return nil
}

// CreateLessonStep inserts one lesson step.
func (m *MockDB) CreateLessonStep(ctx context.Context, step *models.LessonStep) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	step.ID = m.allocID()
	stored := *step
	m.steps[step.ID] = &stored
	return nil
}

// CreatePromptExample inserts one prompt example.
func (m *MockDB) CreatePromptExample(ctx context.Context, example *models.PromptExample) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	example.ID = m.allocID()
	stored := *example
	m.examples[example.ID] = &stored
	return nil
}

// CreateQuiz inserts a quiz along with attached questions.
func (m *MockDB) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	quiz.ID = m.allocID()
	stored := *quiz
	stored.Questions = nil
	m.quizzes[quiz.ID] = &stored

	for i := range quiz.Questions {
		question := quiz.Questions[i]
		question.ID = m.allocID()
		question.QuizID = quiz.ID
		m.questions[question.ID] = &question
		quiz.Questions[i] = question
	}
	return nil
}

// CreateQuestion inserts one quiz question.
func (m *MockDB) CreateQuestion(ctx context.Context, question *models.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	question.ID = m.allocID()
	stored := *question
	m.questions[question.ID] = &stored
	return nil
}
