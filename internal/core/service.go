package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Allowlist decides whether a sender bypasses scoring
type Allowlist interface {
	IsAllowlisted(from string) bool
}

// PhishingService is the core service for phishing detection
type PhishingService struct {
	scorer       Scorer
	store        AssessmentRepository
	observer     AssessmentObserver
	allowlist    Allowlist
	logger       *zap.Logger
	storeEnabled bool
	retention    time.Duration
	blockLevel   ThreatLevel
	now          func() time.Time
}

// ServiceOptions holds the optional collaborators and policy of the service
type ServiceOptions struct {
	Store        AssessmentRepository
	Observer     AssessmentObserver
	Allowlist    Allowlist
	StoreEnabled bool
	Retention    time.Duration
	BlockLevel   ThreatLevel
}

// NewPhishingService creates a new phishing service
func NewPhishingService(scorer Scorer, logger *zap.Logger, opts ServiceOptions) *PhishingService {
	blockLevel := opts.BlockLevel
	if blockLevel.Rank() < 0 {
		blockLevel = ThreatLevelLikelyPhishing
	}
	return &PhishingService{
		scorer:       scorer,
		store:        opts.Store,
		observer:     opts.Observer,
		allowlist:    opts.Allowlist,
		logger:       logger,
		storeEnabled: opts.StoreEnabled && opts.Store != nil,
		retention:    opts.Retention,
		blockLevel:   blockLevel,
		now:          time.Now,
	}
}

// AnalyzeEmail scores an email and records the assessment
func (s *PhishingService) AnalyzeEmail(ctx context.Context, email *Email) (*Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if email == nil {
		email = &Email{}
	}

	var assessment *Assessment
	if s.allowlist != nil && s.allowlist.IsAllowlisted(email.From) {
		s.logger.Info("Skipping phishing check for allowlisted domain",
			zap.String("sender", email.From),
			zap.String("action", "allowlist_bypass"))

		assessment = &Assessment{
			Score:       0,
			ThreatLevel: ThreatLevelSafe,
			Indicators:  []Indicator{},
			Bypassed:    true,
		}
	} else {
		assessment = s.scorer.Score(email)
	}

	assessment.ID = uuid.NewString()
	assessment.AnalyzedAt = s.now()

	s.logger.Debug("Scored email",
		zap.String("id", assessment.ID),
		zap.String("sender", email.From),
		zap.Int("score", assessment.Score),
		zap.String("threat_level", assessment.ThreatLevel.String()),
		zap.Strings("indicators", assessment.IndicatorNames()))

	if s.observer != nil {
		s.observer.Observe(assessment)
	}

	if s.storeEnabled {
		record := &AssessmentRecord{
			ID:          assessment.ID,
			Sender:      email.From,
			Subject:     email.Subject,
			Score:       assessment.Score,
			ThreatLevel: assessment.ThreatLevel,
			Indicators:  assessment.IndicatorNames(),
			AnalyzedAt:  assessment.AnalyzedAt,
			ExpiresAt:   assessment.AnalyzedAt.Add(s.retention),
		}
		if err := s.store.Save(ctx, record); err != nil {
			s.logger.Error("Failed to store assessment", zap.Error(err), zap.String("id", assessment.ID))
		}
	}

	return assessment, nil
}

// IsPhishing reports whether the assessment reaches the configured block level
func (s *PhishingService) IsPhishing(assessment *Assessment) bool {
	return assessment.ThreatLevel.AtLeast(s.blockLevel)
}

// BlockLevel returns the lowest threat level treated as phishing
func (s *PhishingService) BlockLevel() ThreatLevel {
	return s.blockLevel
}
