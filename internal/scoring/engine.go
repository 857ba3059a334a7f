package scoring

import (
	"github.com/mikey/phish-filter/internal/core"
)

// Engine runs a fixed, ordered rule set against emails and aggregates the
// triggered indicators into an assessment. An Engine is never modified after
// construction and is safe for concurrent use.
type Engine struct {
	rules      []Rule
	thresholds Thresholds
}

// NewEngine creates an engine. Rules are evaluated in the order given.
func NewEngine(thresholds Thresholds, rules ...Rule) *Engine {
	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	return &Engine{
		rules:      ordered,
		thresholds: thresholds,
	}
}

// DefaultRules returns the baseline rule set with the default weights
func DefaultRules() []Rule {
	return []Rule{
		NewBuzzwordRule(DefaultWeights.Buzzword, DefaultBuzzwords),
		NewShortenerRule(DefaultWeights.Shortener, Shorteners),
		NewImpersonationRule(DefaultWeights.Impersonation, TrustedBrands),
	}
}

var defaultEngine = NewEngine(DefaultThresholds, DefaultRules()...)

// Rules returns the names of the registered rules in evaluation order
func (e *Engine) Rules() []string {
	names := make([]string, 0, len(e.rules))
	for _, rule := range e.rules {
		names = append(names, rule.Name())
	}
	return names
}

// Thresholds returns the classifier table used by the engine
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Score evaluates every rule and returns a fresh assessment. A nil email is
// treated as an empty one.
func (e *Engine) Score(email *core.Email) *core.Assessment {
	if email == nil {
		email = &core.Email{}
	}

	indicators := make([]core.Indicator, 0, len(e.rules))
	for _, rule := range e.rules {
		if indicator := rule.Evaluate(email); indicator != nil {
			indicators = append(indicators, *indicator)
		}
	}

	score := 0
	for _, indicator := range indicators {
		score += indicator.Points
	}

	return &core.Assessment{
		Score:       score,
		ThreatLevel: e.thresholds.Classify(score),
		Indicators:  indicators,
	}
}

// ScoreEmail scores an email with the default engine
func ScoreEmail(sender, subject, body string) *core.Assessment {
	return defaultEngine.Score(&core.Email{
		From:    sender,
		Subject: subject,
		Body:    body,
	})
}
