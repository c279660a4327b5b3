package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"trainbot/internal/ai"
	"trainbot/internal/bot"
	"trainbot/internal/config"
	"trainbot/internal/seed"
	"trainbot/internal/session"
	"trainbot/internal/storage"
	"trainbot/internal/storage/ch"
	"trainbot/internal/storage/pg"
	"trainbot/internal/storage/stubs"
)

// App represents the application
type App struct {
	config    *config.Config
	logger    *zap.Logger
	db        storage.Storage
	sessions  session.Store
	analytics *ch.AnalyticsDB
	bot       *bot.Bot
	server    *http.Server
}

// New creates and initializes a new application instance
func New() (*App, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &App{config: cfg, logger: logger}

	logger.Info("Starting Prompt Trainer Bot...")

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initSessions(); err != nil {
		return nil, err
	}
	if err := app.initAnalytics(); err != nil {
		return nil, err
	}
	if err := app.initBot(); err != nil {
		return nil, err
	}
	app.initHTTPServer()

	return app, nil
}

// initDatabase connects the primary store, migrates the schema, and
// seeds the curriculum.
func (a *App) initDatabase() error {
	var db storage.Storage
	if a.config.UseMockDB {
		a.logger.Info("Using mock database")
		db = stubs.NewMockDB()
	} else {
		a.logger.Info("Connecting to Postgres",
			zap.String("host", a.config.DBHost),
			zap.Int("port", a.config.DBPort),
			zap.String("database", a.config.DBName),
			zap.String("user", a.config.DBUser))
		pgDB, err := pg.NewPostgresDB(
			a.config.DBHost,
			a.config.DBPort,
			a.config.DBName,
			a.config.DBUser,
			a.config.DBPassword,
			a.config.DBSSLMode,
		)
		if err != nil {
			return fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		db = pgDB
	}

	ctx := context.Background()
	if err := db.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := seed.Run(ctx, db, a.logger); err != nil {
		return fmt.Errorf("failed to seed curriculum: %w", err)
	}
	a.logger.Info("Database initialized successfully")

	a.db = db
	return nil
}

// initSessions picks Redis when configured, in-process memory otherwise.
func (a *App) initSessions() error {
	if a.config.RedisAddr == "" {
		a.logger.Info("Using in-memory session store")
		a.sessions = session.NewMemoryStore()
		return nil
	}

	a.logger.Info("Connecting to Redis", zap.String("addr", a.config.RedisAddr))
	store, err := session.NewRedisStore(context.Background(), a.config.RedisAddr, a.config.RedisPassword, a.config.RedisDB)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	a.sessions = store
	return nil
}

// initAnalytics connects the optional ClickHouse usage-event sink.
func (a *App) initAnalytics() error {
	if !a.config.AnalyticsEnabled() {
		a.logger.Info("Analytics disabled")
		return nil
	}

	a.logger.Info("Connecting to ClickHouse",
		zap.String("host", a.config.ClickHouseHost),
		zap.Int("port", a.config.ClickHousePort))
	analyticsDB, err := ch.NewAnalyticsDB(
		a.config.ClickHouseHost,
		a.config.ClickHousePort,
		a.config.ClickHouseDatabase,
		a.config.ClickHouseUser,
		a.config.ClickHousePassword,
		a.config.ClickHouseUseTLS,
	)
	if err != nil {
		return fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := analyticsDB.Initialize(context.Background()); err != nil {
		return fmt.Errorf("failed to initialize analytics: %w", err)
	}

	a.analytics = analyticsDB
	return nil
}

// initBot initializes the Telegram bot
func (a *App) initBot() error {
	aiClient := ai.NewClient(ai.Config{
		TextAPIKey:   a.config.LLMAPIKey,
		TextBaseURL:  a.config.LLMBaseURL,
		TextModel:    a.config.LLMModel,
		ImageAPIKey:  a.config.ImageAPIKey,
		ImageBaseURL: a.config.ImageBaseURL,
		ImageModel:   a.config.ImageModel,
	}, a.logger)

	var analytics bot.AnalyticsSink
	if a.analytics != nil {
		analytics = a.analytics
	}

	telegramBot, err := bot.NewBot(a.config.TelegramToken, a.db, a.sessions, aiClient, analytics, a.config.AdminID, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	a.bot = telegramBot
	return nil
}

// initHTTPServer initializes the HTTP server for health checks, the
// webhook endpoint, and the read-only API.
func (a *App) initHTTPServer() {
	mux := http.NewServeMux()
	bot.NewHTTPServer(a.bot).RegisterRoutes(mux)

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		a.logger.Info("Starting HTTP server", zap.Int("port", a.config.Port))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if a.config.WebhookMode {
		a.logger.Info("Starting bot in WEBHOOK mode", zap.String("url", a.config.WebhookURL))
		if err := a.bot.StartWebhook(a.config.WebhookURL); err != nil {
			return fmt.Errorf("failed to setup webhook: %w", err)
		}
	} else {
		go func() {
			a.logger.Info("Starting bot in POLLING mode...")
			if err := a.bot.Start(); err != nil {
				a.logger.Fatal("Failed to start bot", zap.Error(err))
			}
		}()
	}

	<-sigChan

	a.logger.Info("Shutting down...")
	return a.Shutdown()
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if a.analytics != nil {
		if err := a.analytics.Close(); err != nil {
			a.logger.Error("Error closing analytics", zap.Error(err))
		}
	}

	if closer, ok := a.sessions.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.logger.Error("Error closing session store", zap.Error(err))
		}
	}

	if err := a.db.Close(); err != nil {
		a.logger.Error("Error closing database", zap.Error(err))
		return err
	}

	a.logger.Info("Shutdown complete")
	return nil
}
