package scoring

import (
	"math"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mikey/phish-filter/internal/core"
	"golang.org/x/net/idna"
)

// TyposquatRule flags sender domains within a small edit distance of a
// legitimate brand domain, e.g. "paypa1.com" or "gooogle.com"
type TyposquatRule struct {
	points int
	brands []Brand
}

// NewTyposquatRule creates a typosquat rule over the given registry
func NewTyposquatRule(points int, brands []Brand) *TyposquatRule {
	return &TyposquatRule{
		points: points,
		brands: brands,
	}
}

// Name returns the rule name
func (r *TyposquatRule) Name() string {
	return "Look-alike Domain"
}

// Evaluate compares the sender domain with every legitimate domain
func (r *TyposquatRule) Evaluate(email *core.Email) *core.Indicator {
	domain := SenderDomain(email.From)
	if domain == "" {
		return nil
	}
	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		ascii = domain
	}

	var similar []string
	for _, brand := range r.brands {
		for _, legit := range Dedupe(brand.Domains) {
			if ascii == legit {
				return nil
			}
			if d := fuzzy.LevenshteinDistance(ascii, legit); d > 0 && d <= maxDistance(len(legit)) {
				similar = append(similar, legit)
			}
		}
	}
	if len(similar) == 0 {
		return nil
	}

	return &core.Indicator{
		Name:        r.Name(),
		Description: "The sender domain is a near-miss spelling of a legitimate brand domain.",
		Points:      r.points,
		Evidence: map[string][]string{
			"sender_domain": {domain},
			"similar_to":    similar,
		},
	}
}

// maxDistance scales the tolerated edit distance with the domain length:
// 1 up to 11 characters, 2 up to 15, roughly 15% beyond that
func maxDistance(length int) int {
	switch {
	case length <= 11:
		return 1
	case length <= 15:
		return 2
	default:
		return int(math.Ceil(float64(length) * 0.15))
	}
}
