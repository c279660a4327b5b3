package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"trainbot/internal/models"
	"trainbot/internal/storage"
)

// PostgresDB implements storage.Storage on top of PostgreSQL via gorm.
type PostgresDB struct {
	db *gorm.DB
}

// NewPostgresDB creates a new PostgreSQL connection.
// TranslateError is enabled so unique-constraint races surface as
// gorm.ErrDuplicatedKey and can be resolved by re-reading.
func NewPostgresDB(host string, port int, database, user, password, sslMode string) (*PostgresDB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		host, user, password, database, port, sslMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	return &PostgresDB{db: db}, nil
}

// NewFromDSN creates a connection from a full DSN string. Used by tests.
func NewFromDSN(dsn string) (*PostgresDB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return &PostgresDB{db: db}, nil
}

// Initialize creates or updates the schema. Deployments that manage the
// schema with goose (see cmd/migrate) get the same tables; AutoMigrate is
// idempotent either way.
func (p *PostgresDB) Initialize(ctx context.Context) error {
	return p.db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Lesson{},
		&models.LessonStep{},
		&models.PromptExample{},
		&models.UserProgress{},
		&models.GeneratedPrompt{},
		&models.Quiz{},
		&models.Question{},
		&models.QuizAttempt{},
		&models.UserAnswer{},
	)
}

// Close closes the underlying connection pool.
func (p *PostgresDB) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ResolveOrCreateUser finds the user by Telegram ID, creating the record on
// first contact. A concurrent create for the same ID loses the unique-index
// race and re-reads the winner's row instead of failing.
func (p *PostgresDB) ResolveOrCreateUser(ctx context.Context, telegramID int64, username, fullName string) (*models.User, error) {
	user, err := p.GetUser(ctx, telegramID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	newUser := &models.User{
		TelegramID:           telegramID,
		Username:             username,
		FullName:             fullName,
		IsActive:             true,
		DailyGenerationsLeft: models.DailyGenerationLimit,
		LastGenerationDate:   time.Now().UTC(),
	}
	if err := p.db.WithContext(ctx).Create(newUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return p.GetUser(ctx, telegramID)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return newUser, nil
}

// GetUser returns the user with the given Telegram ID.
func (p *PostgresDB) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := p.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// ListUsers returns all users ordered by registration time.
func (p *PostgresDB) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := p.db.WithContext(ctx).Order("registered_at").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// SetAdmin updates the admin flag for a user.
func (p *PostgresDB) SetAdmin(ctx context.Context, telegramID int64, isAdmin bool) error {
	return p.updateUserField(ctx, telegramID, "is_admin", isAdmin)
}

// SetActive updates the active flag for a user. Gating on inactive
// accounts happens at dispatch, not here.
func (p *PostgresDB) SetActive(ctx context.Context, telegramID int64, isActive bool) error {
	return p.updateUserField(ctx, telegramID, "is_active", isActive)
}

func (p *PostgresDB) updateUserField(ctx context.Context, telegramID int64, column string, value interface{}) error {
	res := p.db.WithContext(ctx).Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("failed to update user %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CheckAndConsumeQuota applies the daily reset and consumes one generation.
// The decrement is a single conditional UPDATE so two racing calls cannot
// drive the counter negative.
func (p *PostgresDB) CheckAndConsumeQuota(ctx context.Context, telegramID int64) (bool, int, error) {
	user, err := p.GetUser(ctx, telegramID)
	if err != nil {
		return false, 0, err
	}

	if user.IsAdmin {
		return true, user.DailyGenerationsLeft, nil
	}

	now := time.Now().UTC()
	if beforeUTCDay(user.LastGenerationDate, now) {
		res := p.db.WithContext(ctx).Model(&models.User{}).
			Where("telegram_id = ?", telegramID).
			Updates(map[string]interface{}{
				"daily_generations_left": models.DailyGenerationLimit,
				"last_generation_date":   now,
			})
		if res.Error != nil {
			return false, 0, fmt.Errorf("failed to reset quota: %w", res.Error)
		}
	}

	res := p.db.WithContext(ctx).Model(&models.User{}).
		Where("telegram_id = ? AND daily_generations_left > 0", telegramID).
		Update("daily_generations_left", gorm.Expr("daily_generations_left - 1"))
	if res.Error != nil {
		return false, 0, fmt.Errorf("failed to consume quota: %w", res.Error)
	}

	updated, err := p.GetUser(ctx, telegramID)
	if err != nil {
		return false, 0, err
	}
	if res.RowsAffected == 0 {
		return false, updated.DailyGenerationsLeft, nil
	}
	return true, updated.DailyGenerationsLeft, nil
}

// beforeUTCDay reports whether t falls on an earlier UTC calendar day than ref.
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

// SaveGeneratedPrompt records one generation exercise for a user.
func (p *PostgresDB) SaveGeneratedPrompt(ctx context.Context, telegramID int64, promptText, kind, result string) error {
	user, err := p.GetUser(ctx, telegramID)
	if err != nil {
		return err
	}
	record := &models.GeneratedPrompt{
		UserID:     user.ID,
		PromptText: promptText,
		Kind:       kind,
		Result:     result,
	}
	if err := p.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to save generated prompt: %w", err)
	}
	return nil
}
