package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/phish-filter/internal/core"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the AssessmentRepository interface
type SQLiteStore struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS phish_assessments (
			id TEXT PRIMARY KEY,
			sender TEXT,
			subject TEXT,
			score INTEGER,
			threat_level TEXT,
			indicators TEXT,
			analyzed_at TEXT,
			expires_at TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	for _, stmt := range []string{
		`CREATE INDEX IF NOT EXISTS idx_phish_expires_at ON phish_assessments(expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_phish_sender ON phish_assessments(sender)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
	}

	s := &SQLiteStore{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	if cleanupFreq > 0 {
		go s.startCleanupTask()
	}

	return s, nil
}

// Save stores an assessment record
func (s *SQLiteStore) Save(ctx context.Context, record *core.AssessmentRecord) error {
	indicators, err := encodeIndicators(record.Indicators)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO phish_assessments
			(id, sender, subject, score, threat_level, indicators, analyzed_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.Sender, record.Subject, record.Score, string(record.ThreatLevel), indicators,
		record.AnalyzedAt.UTC().Format(timeLayout), record.ExpiresAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert assessment record: %w", err)
	}

	return nil
}

// Get retrieves a record by ID
func (s *SQLiteStore) Get(ctx context.Context, id string) (*core.AssessmentRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sender, subject, score, threat_level, indicators, analyzed_at, expires_at
		FROM phish_assessments
		WHERE id = ? AND expires_at > ?
	`, id, nowText())

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query assessment record: %w", err)
	}
	return record, nil
}

// ListBySender returns the most recent unexpired records for a sender
func (s *SQLiteStore) ListBySender(ctx context.Context, sender string, limit int) ([]*core.AssessmentRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender, subject, score, threat_level, indicators, analyzed_at, expires_at
		FROM phish_assessments
		WHERE sender = ? AND expires_at > ?
		ORDER BY analyzed_at DESC
		LIMIT ?
	`, sender, nowText(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessment records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// Delete removes a record
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM phish_assessments
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete assessment record: %w", err)
	}

	return nil
}

// Cleanup removes expired records
func (s *SQLiteStore) Cleanup(ctx context.Context) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM phish_assessments
		WHERE expires_at <= ?
	`, nowText())
	if err != nil {
		return fmt.Errorf("failed to clean up expired records: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		s.logger.Debug("Cleaned up expired assessment records", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired records
func (s *SQLiteStore) startCleanupTask() {
	ticker := time.NewTicker(s.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Cleanup(context.Background()); err != nil {
				s.logger.Error("Failed to clean up store", zap.Error(err))
			}
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database connection
func (s *SQLiteStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close SQLite database", zap.Error(err))
		}
	})
}
