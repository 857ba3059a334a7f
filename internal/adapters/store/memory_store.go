package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mikey/phish-filter/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the AssessmentRepository interface
type MemoryStore struct {
	records     map[string]*core.AssessmentRecord
	mu          sync.RWMutex
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

// NewMemoryStore creates a new in-memory store. A positive cleanupFreq starts
// a background task removing expired records.
func NewMemoryStore(logger *zap.Logger, cleanupFreq time.Duration) *MemoryStore {
	s := &MemoryStore{
		records:     make(map[string]*core.AssessmentRecord),
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
		now:         time.Now,
	}

	if cleanupFreq > 0 {
		go s.startCleanupTask()
	}

	return s
}

// Save stores an assessment record
func (s *MemoryStore) Save(ctx context.Context, record *core.AssessmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	stored.Indicators = append([]string(nil), record.Indicators...)
	s.records[record.ID] = &stored
	return nil
}

// Get retrieves a record by ID
func (s *MemoryStore) Get(ctx context.Context, id string) (*core.AssessmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok || s.expired(record) {
		return nil, ErrNotFound
	}

	out := *record
	return &out, nil
}

// ListBySender returns the most recent unexpired records for a sender
func (s *MemoryStore) ListBySender(ctx context.Context, sender string, limit int) ([]*core.AssessmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.AssessmentRecord
	for _, record := range s.records {
		if record.Sender == sender && !s.expired(record) {
			r := *record
			out = append(out, &r)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].AnalyzedAt.After(out[j].AnalyzedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes a record
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
	return nil
}

// Cleanup removes expired records
func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiredCount := 0
	for id, record := range s.records {
		if s.expired(record) {
			delete(s.records, id)
			expiredCount++
		}
	}

	s.logger.Debug("Cleaned up expired assessment records", zap.Int("expired_count", expiredCount))
	return nil
}

func (s *MemoryStore) expired(record *core.AssessmentRecord) bool {
	return !record.ExpiresAt.IsZero() && !s.now().Before(record.ExpiresAt)
}

// startCleanupTask starts a background task to clean up expired records
func (s *MemoryStore) startCleanupTask() {
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

// Stop stops the background cleanup task
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}
