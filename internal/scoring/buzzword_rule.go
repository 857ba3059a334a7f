package scoring

import (
	"strings"

	"github.com/mikey/phish-filter/internal/core"
)

// BuzzwordRule flags subjects containing words scammers commonly use
type BuzzwordRule struct {
	points    int
	buzzwords []string
}

// NewBuzzwordRule creates a buzzword rule. Buzzwords are lower-cased and deduplicated.
func NewBuzzwordRule(points int, buzzwords []string) *BuzzwordRule {
	return &BuzzwordRule{
		points:    points,
		buzzwords: Dedupe(buzzwords),
	}
}

// Name returns the rule name
func (r *BuzzwordRule) Name() string {
	return "Common Scammer Buzzwords"
}

// Evaluate checks the subject for buzzwords, ignoring case
func (r *BuzzwordRule) Evaluate(email *core.Email) *core.Indicator {
	subject := strings.ToLower(email.Subject)

	var matched []string
	for _, word := range r.buzzwords {
		if strings.Contains(subject, word) {
			matched = append(matched, word)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	return &core.Indicator{
		Name:        r.Name(),
		Description: "The email subject contains buzzwords commonly used by scammers.",
		Points:      r.points,
		Evidence: map[string][]string{
			"buzzwords": matched,
		},
	}
}
