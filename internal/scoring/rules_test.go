package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/phish-filter/internal/core"
	"github.com/mikey/phish-filter/internal/scoring"
)

func TestSenderDomain(t *testing.T) {
	tests := []struct {
		sender   string
		expected string
	}{
		{"support@amazon.com", "amazon.com"},
		{"Support@AMAZ0N.COM", "amaz0n.com"},
		{"a@b@paypal.com", "paypal.com"},
		{"no-at-sign", ""},
		{"", ""},
		{"trailing@", ""},
	}

	for _, tt := range tests {
		t.Run(tt.sender, func(t *testing.T) {
			assert.Equal(t, tt.expected, scoring.SenderDomain(tt.sender))
		})
	}
}

func TestNormalizeLookAlikes(t *testing.T) {
	assert.Equal(t, "amazon.com", scoring.NormalizeLookAlikes("amaz0n.com"))
	assert.Equal(t, "paypal.com", scoring.NormalizeLookAlikes("paypa1.com"))
	assert.Equal(t, "olsea", scoring.NormalizeLookAlikes("0153@"))
	assert.Equal(t, "example.org", scoring.NormalizeLookAlikes("example.org"))
}

func TestShorteners_Deduplicated(t *testing.T) {
	assert.Len(t, scoring.Shorteners, 8)
	assert.Equal(t, 1, countOf(scoring.Shorteners, "ow.ly"))
}

func countOf(items []string, want string) int {
	n := 0
	for _, item := range items {
		if item == want {
			n++
		}
	}
	return n
}

func TestBuzzwordRule(t *testing.T) {
	rule := scoring.NewBuzzwordRule(20, []string{"Urgent", "urgent", "act now"})

	ind := rule.Evaluate(&core.Email{Subject: "URGENT - Act Now"})
	require.NotNil(t, ind)
	assert.Equal(t, 20, ind.Points)
	assert.Equal(t, []string{"urgent", "act now"}, ind.Evidence["buzzwords"])

	assert.Nil(t, rule.Evaluate(&core.Email{Subject: "weekly newsletter", Body: "urgent"}))
}

func TestShortenerRule_DuplicateEntries(t *testing.T) {
	rule := scoring.NewShortenerRule(40, []string{"ow.ly", "ow.ly", "OW.LY"})

	ind := rule.Evaluate(&core.Email{Body: "go to ow.ly/abc and ow.ly/def"})
	require.NotNil(t, ind)
	assert.Equal(t, []string{"ow.ly"}, ind.Evidence["shorteners_detected"])
	assert.Equal(t, 40, ind.Points)
}

func TestShortenerRule_CaseInsensitive(t *testing.T) {
	rule := scoring.NewShortenerRule(40, scoring.Shorteners)

	ind := rule.Evaluate(&core.Email{Body: "HTTPS://BIT.LY/abc"})
	require.NotNil(t, ind)
	assert.Equal(t, []string{"bit.ly"}, ind.Evidence["shorteners_detected"])

	assert.Nil(t, rule.Evaluate(&core.Email{Body: "nothing to see here"}))
}

func TestImpersonationRule(t *testing.T) {
	rule := scoring.NewImpersonationRule(50, scoring.TrustedBrands)

	tests := []struct {
		name   string
		sender string
		brands []string
	}{
		{"look-alike digit", "support@amaz0n.com", []string{"amazon"}},
		{"upper case sender", "Support@AMAZ0N.COM", []string{"amazon"}},
		{"brand in foreign domain", "billing@paypal-security.net", []string{"paypal"}},
		{"multiple brands in registry order", "x@paypa1-amazon-secure.com", []string{"amazon", "paypal"}},
		{"subdomain is not a listed domain", "news@mail.amazon.com", []string{"amazon"}},
		{"legitimate domain", "support@amazon.com", nil},
		{"second legitimate domain", "alerts@amazonaws.com", nil},
		{"unrelated domain", "bob@example.org", nil},
		{"no at sign", "amazon.com", nil},
		{"empty sender", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := rule.Evaluate(&core.Email{From: tt.sender})
			if tt.brands == nil {
				assert.Nil(t, ind)
				return
			}
			require.NotNil(t, ind)
			assert.Equal(t, tt.brands, ind.Evidence["impersonated_brands"])
			assert.Equal(t, []string{scoring.SenderDomain(tt.sender)}, ind.Evidence["sender_domain"])
			assert.Equal(t, 50, ind.Points)
		})
	}
}

func TestTyposquatRule(t *testing.T) {
	rule := scoring.NewTyposquatRule(30, scoring.TrustedBrands)

	ind := rule.Evaluate(&core.Email{From: "service@paypa1.com"})
	require.NotNil(t, ind)
	assert.Equal(t, []string{"paypal.com"}, ind.Evidence["similar_to"])
	assert.Equal(t, 30, ind.Points)

	ind = rule.Evaluate(&core.Email{From: "no-reply@gooogle.com"})
	require.NotNil(t, ind)
	assert.Equal(t, []string{"google.com"}, ind.Evidence["similar_to"])

	assert.Nil(t, rule.Evaluate(&core.Email{From: "service@paypal.com"}))
	assert.Nil(t, rule.Evaluate(&core.Email{From: "someone@zzzzzzzz.org"}))
	assert.Nil(t, rule.Evaluate(&core.Email{From: ""}))
}
