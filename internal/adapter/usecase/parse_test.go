package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/domain"
)

func TestParseBrief(t *testing.T) {
	p := parseBrief("Plan a $250K awareness campaign for GMC from 2025-01-01 to 2025-01-31")

	assert.Equal(t, "GMC", p.Advertiser)
	assert.Equal(t, 250_000.0, p.Budget)
	assert.Equal(t, domain.ObjectiveAwareness, p.Objective)
	require.NotNil(t, p.StartDate)
	require.NotNil(t, p.EndDate)
	assert.Equal(t, 30.0, p.CampaignDays())
}

func TestExtractBudget(t *testing.T) {
	cases := []struct {
		text   string
		want   float64
		wantOK bool
	}{
		{"$250K budget", 250_000, true},
		{"spend $40,000 total", 40_000, true},
		{"about 1.5M dollars", 1_500_000, true},
		{"$2b brand push", 2_000_000_000, true},
		{"run it for 30 days", 0, false},
		{"starting 2025-01-01", 0, false},
	}
	for _, tc := range cases {
		got, ok := extractBudget(tc.text)
		assert.Equal(t, tc.wantOK, ok, "text: %s", tc.text)
		if tc.wantOK {
			assert.Equal(t, tc.want, got, "text: %s", tc.text)
		}
	}
}

func TestParseBriefPacingNotes(t *testing.T) {
	p := parseBrief("Plan a $100K campaign for Nike, front-load the first weeks")
	assert.NotEmpty(t, p.Notes)

	p = parseBrief("Plan a $100K campaign for Nike")
	assert.Empty(t, p.Notes)
}

func TestExtractJSON(t *testing.T) {
	raw := extractJSON("Sure, here you go:\n```json\n{\"advertiser\": \"GMC\", \"nested\": {\"a\": 1}}\n``` anything else?")
	assert.Equal(t, `{"advertiser": "GMC", "nested": {"a": 1}}`, raw)

	assert.Empty(t, extractJSON("no json here"))
	assert.Empty(t, extractJSON("{unbalanced"))
}
