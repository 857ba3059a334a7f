package scoring

import (
	"strings"

	"github.com/mikey/phish-filter/internal/core"
)

// ImpersonationRule flags sender domains that carry a trusted brand name,
// possibly disguised with look-alike characters, without being one of the
// brand's own domains
type ImpersonationRule struct {
	points int
	brands []Brand
}

// NewImpersonationRule creates an impersonation rule over the given registry
func NewImpersonationRule(points int, brands []Brand) *ImpersonationRule {
	normalized := make([]Brand, 0, len(brands))
	for _, brand := range brands {
		normalized = append(normalized, Brand{
			Name:    strings.ToLower(brand.Name),
			Domains: Dedupe(brand.Domains),
		})
	}
	return &ImpersonationRule{
		points: points,
		brands: normalized,
	}
}

// Name returns the rule name
func (r *ImpersonationRule) Name() string {
	return "Brand Domain Impersonation"
}

// Evaluate checks the sender domain against the trusted brand registry
func (r *ImpersonationRule) Evaluate(email *core.Email) *core.Indicator {
	domain := SenderDomain(email.From)
	if domain == "" {
		return nil
	}
	normalized := NormalizeLookAlikes(domain)

	var impersonated []string
	seen := make(map[string]struct{})
	for _, brand := range r.brands {
		if brand.Name == "" || !strings.Contains(normalized, brand.Name) {
			continue
		}
		if isLegitimate(domain, brand.Domains) {
			continue
		}
		if _, ok := seen[brand.Name]; ok {
			continue
		}
		seen[brand.Name] = struct{}{}
		impersonated = append(impersonated, brand.Name)
	}
	if len(impersonated) == 0 {
		return nil
	}

	return &core.Indicator{
		Name:        r.Name(),
		Description: "The sender domain imitates a trusted brand but is not one of its legitimate domains.",
		Points:      r.points,
		Evidence: map[string][]string{
			"sender_domain":       {domain},
			"impersonated_brands": impersonated,
		},
	}
}

func isLegitimate(domain string, legitimate []string) bool {
	for _, d := range legitimate {
		if d == domain {
			return true
		}
	}
	return false
}
