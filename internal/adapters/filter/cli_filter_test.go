package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/phish-filter/internal/core"
	"github.com/mikey/phish-filter/internal/scoring"
)

func newTestService() *core.PhishingService {
	engine := scoring.NewEngine(scoring.DefaultThresholds, scoring.DefaultRules()...)
	return core.NewPhishingService(engine, zap.NewNop(), core.ServiceOptions{})
}

func TestCliFilter_TextOutput(t *testing.T) {
	var out bytes.Buffer
	f, err := NewCliFilterWithWriter(newTestService(), zap.NewNop(), nil, false, "text", &out)
	require.NoError(t, err)

	a, err := f.ProcessEmail(context.Background(), &core.Email{
		From:    "support@amaz0n.com",
		Subject: "URGENT: verify",
		Body:    "Click bit.ly/x",
	})
	require.NoError(t, err)
	assert.Equal(t, 110, a.Score)

	text := out.String()
	assert.Contains(t, text, "Threat level: critical\n")
	assert.Contains(t, text, "Score: 110\n")
	assert.Contains(t, text, "Is phishing: true\n")
	assert.Contains(t, text, "  - Brand Domain Impersonation (+50)")
	assert.NotContains(t, text, "Body preview")
}

func TestCliFilter_JSONOutput(t *testing.T) {
	var out bytes.Buffer
	f, err := NewCliFilterWithWriter(newTestService(), zap.NewNop(), nil, false, "JSON", &out)
	require.NoError(t, err)

	_, err = f.ProcessEmail(context.Background(), &core.Email{From: "test@example.com", Subject: "hello"})
	require.NoError(t, err)

	var report struct {
		From       string `json:"from"`
		IsPhishing bool   `json:"is_phishing"`
		Assessment struct {
			Score       int    `json:"score"`
			ThreatLevel string `json:"threat_level"`
		} `json:"assessment"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "test@example.com", report.From)
	assert.False(t, report.IsPhishing)
	assert.Equal(t, 0, report.Assessment.Score)
	assert.Equal(t, "safe", report.Assessment.ThreatLevel)
}

func TestCliFilter_VerbosePreview(t *testing.T) {
	var out bytes.Buffer
	f, err := NewCliFilterWithWriter(newTestService(), zap.NewNop(), nil, true, "", &out)
	require.NoError(t, err)

	_, err = f.ProcessEmail(context.Background(), &core.Email{From: "a@example.com", Body: "short body"})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Body preview:\nshort body\n")
	assert.Contains(t, out.String(), "Indicators: none\n")
	assert.Contains(t, out.String(), "Assessment ID: ")
}

func TestCliFilter_UnknownFormat(t *testing.T) {
	_, err := NewCliFilterWithWriter(newTestService(), zap.NewNop(), nil, false, "yaml", &bytes.Buffer{})
	require.Error(t, err)
}

func TestCliFilter_VerboseEvidenceIsSorted(t *testing.T) {
	email := &core.Email{From: "billing@paypa1-amaz0n.com", Subject: "hello"}

	var first string
	for i := 0; i < 10; i++ {
		var out bytes.Buffer
		f, err := NewCliFilterWithWriter(newTestService(), zap.NewNop(), nil, true, "text", &out)
		require.NoError(t, err)

		_, err = f.ProcessEmail(context.Background(), email)
		require.NoError(t, err)

		// Drop the lines that vary per run
		var stable []string
		for _, line := range strings.Split(out.String(), "\n") {
			if strings.HasPrefix(line, "Assessment ID:") || strings.HasPrefix(line, "Processing time:") {
				continue
			}
			stable = append(stable, line)
		}
		text := strings.Join(stable, "\n")

		brands := strings.Index(text, "      impersonated_brands: amazon, paypal\n")
		domain := strings.Index(text, "      sender_domain: paypa1-amaz0n.com\n")
		require.GreaterOrEqual(t, brands, 0)
		require.Greater(t, domain, brands)

		if i == 0 {
			first = text
			continue
		}
		assert.Equal(t, first, text)
	}
}
