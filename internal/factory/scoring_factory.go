package factory

import (
	"fmt"

	"github.com/mikey/phish-filter/internal/config"
	"github.com/mikey/phish-filter/internal/scoring"
	"go.uber.org/zap"
)

// ScoringFactory builds the scoring engine from configuration
type ScoringFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewScoringFactory creates a new scoring factory
func NewScoringFactory(cfg *config.Config, logger *zap.Logger) *ScoringFactory {
	return &ScoringFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEngine creates the engine with the configured thresholds and rules
func (f *ScoringFactory) CreateEngine() (*scoring.Engine, error) {
	sc := f.cfg.GetScoring()
	thresholds, err := scoring.NewThresholds(sc.Critical, sc.Dangerous, sc.LikelyPhishing, sc.Suspicious)
	if err != nil {
		return nil, fmt.Errorf("invalid scoring thresholds: %w", err)
	}

	rc := f.cfg.GetRules()
	weights := map[string]int{
		"rules.buzzword.points":      rc.BuzzwordPoints,
		"rules.shortener.points":     rc.ShortenerPoints,
		"rules.impersonation.points": rc.ImpersonationPoints,
	}
	if rc.TyposquatEnabled {
		weights["rules.typosquat.points"] = rc.TyposquatPoints
	}
	for key, points := range weights {
		if points <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %d", key, points)
		}
	}

	buzzwords := rc.Buzzwords
	if len(buzzwords) == 0 {
		buzzwords = scoring.DefaultBuzzwords
	}

	rules := []scoring.Rule{
		scoring.NewBuzzwordRule(rc.BuzzwordPoints, buzzwords),
		scoring.NewShortenerRule(rc.ShortenerPoints, scoring.Shorteners),
		scoring.NewImpersonationRule(rc.ImpersonationPoints, scoring.TrustedBrands),
	}
	if rc.TyposquatEnabled {
		rules = append(rules, scoring.NewTyposquatRule(rc.TyposquatPoints, scoring.TrustedBrands))
	}

	engine := scoring.NewEngine(thresholds, rules...)
	f.logger.Info("Scoring engine ready",
		zap.Strings("rules", engine.Rules()),
		zap.Int("critical", thresholds.Critical),
		zap.Int("dangerous", thresholds.Dangerous),
		zap.Int("likely_phishing", thresholds.LikelyPhishing),
		zap.Int("suspicious", thresholds.Suspicious))

	return engine, nil
}
