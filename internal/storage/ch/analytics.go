package ch

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// Event kinds recorded by the bot. The table is append-only; nothing in
// the bot's behavior depends on it.
const (
	EventGeneration    = "generation"
	EventQuizFinished  = "quiz_finished"
	EventLessonStarted = "lesson_started"
)

// UsageEvent is one analytics record.
type UsageEvent struct {
	OccurredAt time.Time
	TelegramID int64
	Kind       string
	Detail     string
}

// AnalyticsDB writes usage events to ClickHouse for offline reporting.
type AnalyticsDB struct {
	conn clickhouse.Conn
}

// NewAnalyticsDB creates a new ClickHouse connection for usage analytics
func NewAnalyticsDB(host string, port int, database, user, password string, useTLS bool) (*AnalyticsDB, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}

	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &AnalyticsDB{conn: conn}, nil
}

// Initialize creates the usage_events table if it does not exist.
func (db *AnalyticsDB) Initialize(ctx context.Context) error {
	err := db.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS usage_events (
			occurred_at DateTime,
			telegram_id Int64,
			kind        String,
			detail      String
		) ENGINE = MergeTree()
		ORDER BY (occurred_at, telegram_id)`)
	if err != nil {
		return fmt.Errorf("failed to create usage_events table: %w", err)
	}
	return nil
}

// RecordEvent appends one usage event.
func (db *AnalyticsDB) RecordEvent(ctx context.Context, event UsageEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	err := db.conn.Exec(ctx, `INSERT INTO usage_events (occurred_at, telegram_id, kind, detail) VALUES (?, ?, ?, ?)`,
		event.OccurredAt, event.TelegramID, event.Kind, event.Detail)
	if err != nil {
		return fmt.Errorf("failed to record usage event: %w", err)
	}
	return nil
}

// RecentEvents returns the last N usage events, newest first.
func (db *AnalyticsDB) RecentEvents(ctx context.Context, limit int) ([]UsageEvent, error) {
	rows, err := db.conn.Query(ctx, `SELECT occurred_at, telegram_id, kind, detail FROM usage_events ORDER BY occurred_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage events: %w", err)
	}
	defer rows.Close()

	var events []UsageEvent
	for rows.Next() {
		var event UsageEvent
		if err := rows.Scan(&event.OccurredAt, &event.TelegramID, &event.Kind, &event.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan usage event: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}

// Close closes the ClickHouse connection
func (db *AnalyticsDB) Close() error {
	return db.conn.Close()
}
