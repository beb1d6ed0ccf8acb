// Package postgres provides the PostgreSQL persistence adapters. The only
// durable state this service owns is the usage audit trail; everything else
// lives in memory or with external collaborators.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/owlingo/owlingo-api/internal/usage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open establishes a pooled database connection and verifies it with a ping.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// DBTX is the subset of database operations the usage store needs, satisfied
// by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// UsageStore is the PostgreSQL implementation of usage.Sink.
type UsageStore struct {
	db     DBTX
	logger *slog.Logger
}

// NewUsageStore creates a usage store over the given connection. A nil logger
// falls back to slog.Default.
func NewUsageStore(db DBTX, logger *slog.Logger) *UsageStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UsageStore{
		db:     db,
		logger: logger.With(slog.String("component", "usage_store")),
	}
}

var _ usage.Sink = (*UsageStore)(nil)

// Record implements usage.Sink by appending one audit row.
func (s *UsageStore) Record(ctx context.Context, entry usage.Entry) error {
	query := `
		INSERT INTO usage_logs (
			id, teacher_id, operation, provider, model,
			input_tokens, output_tokens, characters,
			cost, success, duration_ms, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.TeacherID,
		entry.Operation,
		entry.Provider,
		entry.Model,
		entry.InputTokens,
		entry.OutputTokens,
		entry.Characters,
		entry.Cost,
		entry.Success,
		entry.Duration.Milliseconds(),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting usage log entry: %w", err)
	}
	return nil
}
