package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phish-filter/internal/allowlist"
	"github.com/mikey/phish-filter/internal/config"
	"github.com/mikey/phish-filter/internal/core"
	"github.com/mikey/phish-filter/internal/factory"
	"github.com/mikey/phish-filter/internal/ports"
	"github.com/mikey/phish-filter/internal/utils"
)

// provideScoring registers the pieces shared by the daemon and the CLI: the
// scoring engine, the allowlist, the text processor and the email filter
func provideScoring(container *dig.Container) error {
	if err := container.Provide(factory.NewScoringFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register scorer
	if err := container.Provide(func(f *factory.ScoringFactory) (core.Scorer, error) {
		return f.CreateEngine()
	}); err != nil {
		return err
	}

	// Register allowlist
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *allowlist.Checker {
		return allowlist.NewChecker(cfg.GetPhish().AllowlistedDomains, logger.Named("allowlist"))
	}); err != nil {
		return err
	}

	// Register email filter
	return container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	})
}

// blockLevel reads the configured block level, falling back to the default
func blockLevel(cfg *config.Config, logger *zap.Logger) core.ThreatLevel {
	raw := cfg.GetPhish().BlockLevel
	level, err := core.ParseThreatLevel(raw)
	if err != nil {
		logger.Warn("Invalid block level, using likely_phishing",
			zap.String("block_level", raw),
			zap.Error(err))
		return core.ThreatLevelLikelyPhishing
	}
	return level
}
