package core

import (
	"fmt"
	"time"
)

// Email represents an email message
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
	Headers map[string][]string
}

// ThreatLevel is the discrete category derived from an assessment score
type ThreatLevel string

const (
	ThreatLevelSafe           ThreatLevel = "safe"
	ThreatLevelSuspicious     ThreatLevel = "suspicious"
	ThreatLevelLikelyPhishing ThreatLevel = "likely_phishing"
	ThreatLevelDangerous      ThreatLevel = "dangerous"
	ThreatLevelCritical       ThreatLevel = "critical"
)

// ThreatLevels lists every level from least to most severe
var ThreatLevels = []ThreatLevel{
	ThreatLevelSafe,
	ThreatLevelSuspicious,
	ThreatLevelLikelyPhishing,
	ThreatLevelDangerous,
	ThreatLevelCritical,
}

// ParseThreatLevel converts a label back into a ThreatLevel
func ParseThreatLevel(s string) (ThreatLevel, error) {
	for _, level := range ThreatLevels {
		if string(level) == s {
			return level, nil
		}
	}
	return "", fmt.Errorf("invalid threat level: %q", s)
}

// Rank returns the position of the level in severity order, or -1 if unknown
func (l ThreatLevel) Rank() int {
	for i, level := range ThreatLevels {
		if level == l {
			return i
		}
	}
	return -1
}

// AtLeast reports whether l is as severe as other or more
func (l ThreatLevel) AtLeast(other ThreatLevel) bool {
	return l.Rank() >= other.Rank()
}

// String returns the label
func (l ThreatLevel) String() string {
	return string(l)
}

// Indicator is the output of a single triggered detection rule
type Indicator struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Points      int                 `json:"points"`
	Evidence    map[string][]string `json:"evidence,omitempty"`
}

// Assessment is the phishing risk assessment of one email
type Assessment struct {
	ID          string      `json:"id,omitempty"`
	Score       int         `json:"score"`
	ThreatLevel ThreatLevel `json:"threat_level"`
	Indicators  []Indicator `json:"indicators"`
	Bypassed    bool        `json:"bypassed,omitempty"`
	AnalyzedAt  time.Time   `json:"analyzed_at"`
}

// IndicatorNames returns the names of the triggered indicators in order
func (a *Assessment) IndicatorNames() []string {
	names := make([]string, 0, len(a.Indicators))
	for _, indicator := range a.Indicators {
		names = append(names, indicator.Name)
	}
	return names
}

// AssessmentRecord is the persisted form of an assessment
type AssessmentRecord struct {
	ID          string
	Sender      string
	Subject     string
	Score       int
	ThreatLevel ThreatLevel
	Indicators  []string
	AnalyzedAt  time.Time
	ExpiresAt   time.Time
}
