package scoring

import (
	"fmt"

	"github.com/mikey/phish-filter/internal/core"
)

// Thresholds holds the lowest score of each threat level above safe.
// Anything below Suspicious is safe.
type Thresholds struct {
	Critical       int
	Dangerous      int
	LikelyPhishing int
	Suspicious     int
}

// DefaultThresholds is the canonical classifier table
var DefaultThresholds = Thresholds{
	Critical:       90,
	Dangerous:      76,
	LikelyPhishing: 51,
	Suspicious:     21,
}

// NewThresholds validates a threshold table. The boundaries must be strictly
// descending so that every score lands in exactly one range.
func NewThresholds(critical, dangerous, likelyPhishing, suspicious int) (Thresholds, error) {
	t := Thresholds{
		Critical:       critical,
		Dangerous:      dangerous,
		LikelyPhishing: likelyPhishing,
		Suspicious:     suspicious,
	}
	if err := t.Validate(); err != nil {
		return Thresholds{}, err
	}
	return t, nil
}

// Validate checks that the boundaries are strictly descending
func (t Thresholds) Validate() error {
	if !(t.Critical > t.Dangerous && t.Dangerous > t.LikelyPhishing && t.LikelyPhishing > t.Suspicious) {
		return fmt.Errorf("thresholds must be strictly descending: critical=%d dangerous=%d likely_phishing=%d suspicious=%d",
			t.Critical, t.Dangerous, t.LikelyPhishing, t.Suspicious)
	}
	return nil
}

// Classify maps a score to its threat level. Ranges are checked top-down and
// the first match wins.
func (t Thresholds) Classify(score int) core.ThreatLevel {
	switch {
	case score >= t.Critical:
		return core.ThreatLevelCritical
	case score >= t.Dangerous:
		return core.ThreatLevelDangerous
	case score >= t.LikelyPhishing:
		return core.ThreatLevelLikelyPhishing
	case score >= t.Suspicious:
		return core.ThreatLevelSuspicious
	default:
		return core.ThreatLevelSafe
	}
}

// ThreatLevel classifies a score with the default thresholds
func ThreatLevel(score int) core.ThreatLevel {
	return DefaultThresholds.Classify(score)
}
