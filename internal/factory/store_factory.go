package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mikey/phish-filter/internal/adapters/store"
	"github.com/mikey/phish-filter/internal/config"
	"github.com/mikey/phish-filter/internal/core"
	"go.uber.org/zap"
)

// StoreFactory creates assessment stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateStore creates an assessment repository based on the configuration.
// When storage is disabled an idle memory store is returned and no database
// is opened.
func (f *StoreFactory) CreateStore() (core.AssessmentRepository, error) {
	if !f.IsStoreEnabled() {
		f.logger.Info("Assessment storage disabled")
		return store.NewMemoryStore(f.logger.Named("store"), 0), nil
	}

	storeType := f.cfg.GetString("store.type")
	cleanupFreq, err := f.cfg.GetDuration("store.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid store cleanup frequency: %w", err)
	}

	logger := f.logger.Named("store")
	switch storeType {
	case "memory":
		return store.NewMemoryStore(logger, cleanupFreq), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("store.sqlite_path")
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return store.NewSQLiteStore(sqlitePath, logger, cleanupFreq)
	case "mysql":
		return store.NewMySQLStore(f.cfg.GetString("store.mysql_dsn"), logger, cleanupFreq)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeType)
	}
}

// GetRetention returns how long stored assessments are kept
func (f *StoreFactory) GetRetention() (time.Duration, error) {
	return f.cfg.GetDuration("store.retention")
}

// IsStoreEnabled returns whether assessments are stored
func (f *StoreFactory) IsStoreEnabled() bool {
	return f.cfg.GetBool("store.enabled")
}
