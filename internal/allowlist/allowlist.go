package allowlist

import (
	"strings"

	"github.com/mikey/phish-filter/internal/scoring"
	"go.uber.org/zap"
)

// Checker decides whether a sender domain is trusted enough to skip scoring
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new allowlist checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := scoring.Dedupe(domains)
	for i, domain := range normalized {
		normalized[i] = strings.TrimPrefix(domain, ".")
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized allowlist checker", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// Domains returns the normalized allowlisted domains
func (c *Checker) Domains() []string {
	return c.domains
}

// IsAllowlisted reports whether the sender's domain, or a parent of it, is
// on the allowlist
func (c *Checker) IsAllowlisted(from string) bool {
	if len(c.domains) == 0 {
		return false
	}

	domain := scoring.SenderDomain(from)
	if domain == "" {
		return false
	}

	for _, allowed := range c.domains {
		if domain == allowed || strings.HasSuffix(domain, "."+allowed) {
			if c.logger != nil {
				c.logger.Debug("Domain is allowlisted",
					zap.String("domain", domain),
					zap.String("email", from))
			}
			return true
		}
	}

	return false
}
