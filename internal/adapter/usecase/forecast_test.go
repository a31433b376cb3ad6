package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/domain"
)

func forecastParams(budget float64, notes string) domain.CampaignParameters {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	return domain.CampaignParameters{
		Advertiser: "GMC",
		Budget:     budget,
		Objective:  domain.ObjectiveAwareness,
		StartDate:  &start,
		EndDate:    &end,
		Notes:      notes,
	}
}

func singleItem(budget float64) []domain.LineItem {
	return []domain.LineItem{{Name: "GMC | Sports Enthusiasts", Budget: budget, BidCPM: 12}}
}

func TestForecastHorizonAndEvenPacing(t *testing.T) {
	g := NewForecastGenerator(testForecastConfig(), nil, testLogger())

	f, err := g.Generate(context.Background(), forecastParams(100_000, ""), singleItem(100_000), nil)
	require.NoError(t, err)

	// 30 flight days round up to 5 whole weeks, budget split evenly.
	require.Len(t, f.Weeks, 5)
	var total float64
	for _, w := range f.Weeks {
		assert.Equal(t, 20_000.0, w.Budget)
		total += w.Budget
	}
	assert.Equal(t, 100_000.0, total)
	assert.Equal(t, 12.0, f.Weeks[0].ECPM)
	assert.GreaterOrEqual(t, f.Confidence, 0.0)
	assert.LessOrEqual(t, f.Confidence, 1.0)
}

func TestForecastCarriesShortfallForward(t *testing.T) {
	g := NewForecastGenerator(testForecastConfig(), nil, testLogger())

	f, err := g.Generate(context.Background(), forecastParams(100_000, ""), singleItem(100_000), nil)
	require.NoError(t, err)

	// Fill never reaches 100%, so every week leaves a shortfall that the
	// next week's plan absorbs.
	assert.Zero(t, f.Weeks[0].CarriedShortfall)
	for _, w := range f.Weeks[1:] {
		assert.Greater(t, w.CarriedShortfall, 0.0)
		assert.Greater(t, w.PlannedImpressions, w.DeliveredImpressions)
	}
	assert.Greater(t, f.UnresolvedShortfall, 0.0)
	assert.NotEmpty(t, f.Weeks[len(f.Weeks)-1].Notes, "unresolved shortfall is reported in the final week")
}

func TestForecastFrontLoadPacing(t *testing.T) {
	g := NewForecastGenerator(testForecastConfig(), nil, testLogger())

	f, err := g.Generate(context.Background(), forecastParams(100_000, "please front-load delivery"), singleItem(100_000), nil)
	require.NoError(t, err)

	require.Len(t, f.Weeks, 5)
	assert.Greater(t, f.Weeks[0].Budget, f.Weeks[4].Budget)
	var total float64
	for _, w := range f.Weeks {
		total += w.Budget
	}
	assert.InDelta(t, 100_000, total, 0.01)
}

func TestForecastDefaultHorizonWithoutDates(t *testing.T) {
	g := NewForecastGenerator(testForecastConfig(), nil, testLogger())

	params := domain.CampaignParameters{Advertiser: "GMC", Budget: 40_000}
	f, err := g.Generate(context.Background(), params, singleItem(40_000), nil)
	require.NoError(t, err)
	assert.Len(t, f.Weeks, 4)
}

func TestForecastSupplyConstrained(t *testing.T) {
	g := NewForecastGenerator(testForecastConfig(), nil, testLogger())

	f, err := g.Generate(context.Background(), forecastParams(10_000_000_000, ""), singleItem(10_000_000_000), nil)
	require.NoError(t, err)

	assert.Equal(t, 0.3, f.Weeks[0].FillRate, "fill is floored under extreme demand")
	require.NotEmpty(t, f.Insights)
	assert.Contains(t, f.Insights[0], "supply constrained")
}

func TestForecastConfidenceBlend(t *testing.T) {
	g := NewForecastGenerator(testForecastConfig(), nil, testLogger())

	prefs := &domain.AdvertiserPreferences{
		Advertiser: "GMC",
		Genres:     map[string]float64{"Sports": 0.6, "News": 0.6},
	}
	full := forecastParams(100_000, "")
	full.Geos = []string{"US"}
	full.Devices = []string{"ctv"}
	full.ContentTypes = []string{"sports"}
	full.Dayparts = []string{"primetime"}
	full.Notes = "steady"

	rich, err := g.Generate(context.Background(), full, singleItem(100_000), prefs)
	require.NoError(t, err)

	sparse, err := g.Generate(context.Background(), domain.CampaignParameters{Budget: 100_000}, singleItem(100_000), nil)
	require.NoError(t, err)

	assert.Greater(t, rich.Confidence, sparse.Confidence, "complete stable inputs score higher")
}
