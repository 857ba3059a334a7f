package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mikey/phish-filter/internal/core"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func nowText() string {
	return time.Now().UTC().Format(timeLayout)
}

func scanRecord(row rowScanner) (*core.AssessmentRecord, error) {
	var (
		record                core.AssessmentRecord
		level, indicators     string
		analyzedAt, expiresAt string
	)
	if err := row.Scan(&record.ID, &record.Sender, &record.Subject, &record.Score,
		&level, &indicators, &analyzedAt, &expiresAt); err != nil {
		return nil, err
	}

	record.ThreatLevel = core.ThreatLevel(level)

	names, err := decodeIndicators(indicators)
	if err != nil {
		return nil, err
	}
	record.Indicators = names

	if record.AnalyzedAt, err = time.Parse(timeLayout, analyzedAt); err != nil {
		return nil, fmt.Errorf("failed to parse analyzed_at timestamp: %w", err)
	}
	if record.ExpiresAt, err = time.Parse(timeLayout, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to parse expires_at timestamp: %w", err)
	}

	return &record, nil
}

func collectRecords(rows *sql.Rows) ([]*core.AssessmentRecord, error) {
	var out []*core.AssessmentRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read assessment records: %w", err)
	}
	return out, nil
}
