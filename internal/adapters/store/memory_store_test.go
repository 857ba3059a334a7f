package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/phish-filter/internal/core"
)

func newRecord(id, sender string, analyzedAt time.Time, ttl time.Duration) *core.AssessmentRecord {
	return &core.AssessmentRecord{
		ID:          id,
		Sender:      sender,
		Subject:     "URGENT",
		Score:       20,
		ThreatLevel: core.ThreatLevelSafe,
		Indicators:  []string{"Common Scammer Buzzwords"},
		AnalyzedAt:  analyzedAt,
		ExpiresAt:   analyzedAt.Add(ttl),
	}
}

func TestMemoryStore_SaveGet(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), 0)
	defer s.Stop()
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, s.Save(ctx, newRecord("a", "x@example.com", now, time.Hour)))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "x@example.com", got.Sender)
	assert.Equal(t, []string{"Common Scammer Buzzwords"}, got.Indicators)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), 0)
	defer s.Stop()
	ctx := context.Background()

	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, s.Save(ctx, newRecord("old", "x@example.com", past, time.Hour)))
	require.NoError(t, s.Save(ctx, newRecord("new", "x@example.com", time.Now(), time.Hour)))

	_, err := s.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Cleanup(ctx))
	s.mu.RLock()
	assert.Len(t, s.records, 1)
	s.mu.RUnlock()
}

func TestMemoryStore_ListBySender(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), 0)
	defer s.Stop()
	ctx := context.Background()

	base := time.Now()
	require.NoError(t, s.Save(ctx, newRecord("1", "x@example.com", base.Add(-3*time.Minute), time.Hour)))
	require.NoError(t, s.Save(ctx, newRecord("2", "x@example.com", base.Add(-1*time.Minute), time.Hour)))
	require.NoError(t, s.Save(ctx, newRecord("3", "x@example.com", base.Add(-2*time.Minute), time.Hour)))
	require.NoError(t, s.Save(ctx, newRecord("4", "y@example.com", base, time.Hour)))

	records, err := s.ListBySender(ctx, "x@example.com", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2", records[0].ID)
	assert.Equal(t, "3", records[1].ID)

	all, err := s.ListBySender(ctx, "x@example.com", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestIndicatorsEncoding(t *testing.T) {
	raw, err := encodeIndicators(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	names, err := decodeIndicators(`["a","b"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	_, err = decodeIndicators("not json")
	assert.Error(t, err)
}
