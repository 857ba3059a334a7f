package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/phish-filter/internal/core"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the AssessmentRepository interface
type MySQLStore struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewMySQLStore creates a new MySQL store
func NewMySQLStore(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS phish_assessments (
			id CHAR(36) PRIMARY KEY,
			sender VARCHAR(255),
			subject TEXT,
			score INT,
			threat_level VARCHAR(32),
			indicators TEXT,
			analyzed_at DATETIME,
			expires_at DATETIME,
			INDEX idx_phish_expires_at (expires_at),
			INDEX idx_phish_sender (sender)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	s := &MySQLStore{
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
func (s *MySQLStore) Save(ctx context.Context, record *core.AssessmentRecord) error {
	indicators, err := encodeIndicators(record.Indicators)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO phish_assessments
			(id, sender, subject, score, threat_level, indicators, analyzed_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			sender = VALUES(sender),
			subject = VALUES(subject),
			score = VALUES(score),
			threat_level = VALUES(threat_level),
			indicators = VALUES(indicators),
			analyzed_at = VALUES(analyzed_at),
			expires_at = VALUES(expires_at)
	`, record.ID, record.Sender, record.Subject, record.Score, string(record.ThreatLevel), indicators,
		record.AnalyzedAt.UTC().Format(timeLayout), record.ExpiresAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert assessment record: %w", err)
	}

	return nil
}

// Get retrieves a record by ID
func (s *MySQLStore) Get(ctx context.Context, id string) (*core.AssessmentRecord, error) {
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
func (s *MySQLStore) ListBySender(ctx context.Context, sender string, limit int) ([]*core.AssessmentRecord, error) {
	if limit <= 0 {
		limit = math.MaxInt32
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
func (s *MySQLStore) Delete(ctx context.Context, id string) error {
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
func (s *MySQLStore) Cleanup(ctx context.Context) error {
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
func (s *MySQLStore) startCleanupTask() {
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
func (s *MySQLStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close MySQL database", zap.Error(err))
		}
	})
}
