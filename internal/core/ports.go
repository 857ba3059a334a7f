package core

import (
	"context"
)

// Scorer defines the interface of the phishing scoring engine
type Scorer interface {
	// Score evaluates every rule against the email and aggregates the result
	Score(email *Email) *Assessment
}

// AssessmentObserver receives every assessment produced by the service
type AssessmentObserver interface {
	Observe(assessment *Assessment)
}

// AssessmentRepository defines the interface for storing assessments
type AssessmentRepository interface {
	// Save stores an assessment record
	Save(ctx context.Context, record *AssessmentRecord) error

	// Get retrieves a record by ID
	Get(ctx context.Context, id string) (*AssessmentRecord, error)

	// ListBySender returns the most recent records for a sender
	ListBySender(ctx context.Context, sender string, limit int) ([]*AssessmentRecord, error)

	// Delete removes a record
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired records
	Cleanup(ctx context.Context) error
}
