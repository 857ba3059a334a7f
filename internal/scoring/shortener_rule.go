package scoring

import (
	"strings"

	"github.com/mikey/phish-filter/internal/core"
)

// ShortenerRule flags bodies linking through URL shorteners, which hide the
// real destination of a link
type ShortenerRule struct {
	points  int
	domains []string
}

// NewShortenerRule creates a shortener rule. The domain list is deduplicated
// here so a repeated entry can never be reported twice.
func NewShortenerRule(points int, domains []string) *ShortenerRule {
	return &ShortenerRule{
		points:  points,
		domains: Dedupe(domains),
	}
}

// Name returns the rule name
func (r *ShortenerRule) Name() string {
	return "Common URL Shortener"
}

// Evaluate scans the body for shortener domains. The rule contributes its
// weight once no matter how many shorteners are found.
func (r *ShortenerRule) Evaluate(email *core.Email) *core.Indicator {
	body := strings.ToLower(email.Body)

	var found []string
	for _, domain := range r.domains {
		if strings.Contains(body, domain) {
			found = append(found, domain)
		}
	}
	if len(found) == 0 {
		return nil
	}

	return &core.Indicator{
		Name:        r.Name(),
		Description: "The email body contains a URL shortener commonly used by scammers.",
		Points:      r.points,
		Evidence: map[string][]string{
			"shorteners_detected": found,
		},
	}
}
