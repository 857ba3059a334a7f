package scoring_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/phish-filter/internal/core"
	"github.com/mikey/phish-filter/internal/scoring"
)

func sumPoints(indicators []core.Indicator) int {
	total := 0
	for _, i := range indicators {
		total += i.Points
	}
	return total
}

func TestScoreEmail_Empty(t *testing.T) {
	a := scoring.ScoreEmail("", "", "")

	assert.Equal(t, 0, a.Score)
	assert.Equal(t, core.ThreatLevelSafe, a.ThreatLevel)
	assert.NotNil(t, a.Indicators)
	assert.Empty(t, a.Indicators)
}

func TestScoreEmail_Buzzword(t *testing.T) {
	a := scoring.ScoreEmail("test@example.com", "URGENT: verify now", "hello")

	require.Len(t, a.Indicators, 1)
	assert.Equal(t, "Common Scammer Buzzwords", a.Indicators[0].Name)
	assert.Equal(t, 20, a.Score)
	assert.Equal(t, core.ThreatLevelSafe, a.ThreatLevel)
}

func TestScoreEmail_Shortener(t *testing.T) {
	a := scoring.ScoreEmail("test@example.com", "hello", "see bit.ly/x and tinyurl.com/y")

	require.Len(t, a.Indicators, 1)
	assert.Equal(t, "Common URL Shortener", a.Indicators[0].Name)
	assert.Equal(t, []string{"bit.ly", "tinyurl.com"}, a.Indicators[0].Evidence["shorteners_detected"])
	assert.Equal(t, 40, a.Score)
	assert.Equal(t, core.ThreatLevelSuspicious, a.ThreatLevel)
}

func TestScoreEmail_Impersonation(t *testing.T) {
	a := scoring.ScoreEmail("support@amaz0n.com", "", "")

	require.Len(t, a.Indicators, 1)
	assert.Equal(t, "Brand Domain Impersonation", a.Indicators[0].Name)
	assert.Equal(t, []string{"amaz0n.com"}, a.Indicators[0].Evidence["sender_domain"])
	assert.Equal(t, []string{"amazon"}, a.Indicators[0].Evidence["impersonated_brands"])
	assert.Equal(t, 50, a.Score)
}

func TestScoreEmail_LegitimateSender(t *testing.T) {
	a := scoring.ScoreEmail("support@amazon.com", "", "")

	assert.Empty(t, a.Indicators)
	assert.Equal(t, 0, a.Score)
}

func TestScoreEmail_Combined(t *testing.T) {
	a := scoring.ScoreEmail("support@amaz0n.com", "URGENT: verify now", "Verify at bit.ly/x")

	require.Len(t, a.Indicators, 3)
	assert.Equal(t, []string{
		"Common Scammer Buzzwords",
		"Common URL Shortener",
		"Brand Domain Impersonation",
	}, a.IndicatorNames())
	assert.Equal(t, scoring.DefaultWeights.Buzzword+scoring.DefaultWeights.Shortener+scoring.DefaultWeights.Impersonation, a.Score)
	assert.Equal(t, 110, a.Score)
	assert.Equal(t, core.ThreatLevelCritical, a.ThreatLevel)
}

func TestScoreEmail_ScoreIsSumOfIndicators(t *testing.T) {
	inputs := []struct {
		sender, subject, body string
	}{
		{"", "", ""},
		{"no-at-sign", "urgent", "goo.gl"},
		{"a@b@paypa1.com", "Urgent!!", "is.gd adf.ly buff.ly"},
		{"@", "@", "@"},
		{"x@apple.com", "hi", "ow.ly ow.ly ow.ly"},
		{"promo@netf1ix-billing.net", "Account URGENT", ""},
	}

	for _, in := range inputs {
		a := scoring.ScoreEmail(in.sender, in.subject, in.body)
		assert.Equal(t, sumPoints(a.Indicators), a.Score)
		assert.Equal(t, scoring.ThreatLevel(a.Score), a.ThreatLevel)
	}
}

func TestScoreEmail_Deterministic(t *testing.T) {
	first := scoring.ScoreEmail("support@amaz0n.com", "URGENT", "bit.ly/x")
	second := scoring.ScoreEmail("support@amaz0n.com", "URGENT", "bit.ly/x")

	assert.Equal(t, first, second)
}

func TestEngine_NilEmail(t *testing.T) {
	engine := scoring.NewEngine(scoring.DefaultThresholds, scoring.DefaultRules()...)

	a := engine.Score(nil)
	assert.Equal(t, 0, a.Score)
	assert.Equal(t, core.ThreatLevelSafe, a.ThreatLevel)
}

func TestEngine_RegistrationOrder(t *testing.T) {
	engine := scoring.NewEngine(scoring.DefaultThresholds,
		scoring.NewImpersonationRule(10, scoring.TrustedBrands),
		scoring.NewBuzzwordRule(5, []string{"urgent"}),
	)

	assert.Equal(t, []string{"Brand Domain Impersonation", "Common Scammer Buzzwords"}, engine.Rules())

	a := engine.Score(&core.Email{From: "x@paypa1.com", Subject: "urgent"})
	assert.Equal(t, []string{"Brand Domain Impersonation", "Common Scammer Buzzwords"}, a.IndicatorNames())
	assert.Equal(t, 15, a.Score)
	assert.Equal(t, core.ThreatLevelSafe, a.ThreatLevel)
}

func TestEngine_CustomThresholds(t *testing.T) {
	th, err := scoring.NewThresholds(90, 70, 50, 20)
	require.NoError(t, err)
	engine := scoring.NewEngine(th, scoring.NewBuzzwordRule(20, scoring.DefaultBuzzwords))

	a := engine.Score(&core.Email{Subject: "urgent"})
	assert.Equal(t, core.ThreatLevelSuspicious, a.ThreatLevel)
	assert.Equal(t, th, engine.Thresholds())
}

func TestEngine_ConcurrentScoring(t *testing.T) {
	engine := scoring.NewEngine(scoring.DefaultThresholds,
		append(scoring.DefaultRules(), scoring.NewTyposquatRule(scoring.DefaultWeights.Typosquat, scoring.TrustedBrands))...)

	emails := []*core.Email{
		{From: "support@amaz0n.com", Subject: "URGENT: verify now", Body: "Verify at bit.ly/x"},
		{From: "billing@paypa1.com", Subject: "invoice", Body: "see tinyurl.com/y"},
		{From: "test@example.com", Subject: "hello", Body: "nothing here"},
	}
	want := make([]*core.Assessment, len(emails))
	for i, email := range emails {
		want[i] = engine.Score(email)
	}

	const workers = 16
	got := make([][]*core.Assessment, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for _, email := range emails {
				got[w] = append(got[w], engine.Score(email))
				got[w] = append(got[w], scoring.ScoreEmail(email.From, email.Subject, email.Body))
			}
		}(w)
	}
	wg.Wait()

	for w := 0; w < workers; w++ {
		require.Len(t, got[w], 2*len(emails))
		for i := range emails {
			assert.Equal(t, want[i], got[w][2*i])
			assert.Equal(t, scoring.ScoreEmail(emails[i].From, emails[i].Subject, emails[i].Body), got[w][2*i+1])
		}
	}
}
