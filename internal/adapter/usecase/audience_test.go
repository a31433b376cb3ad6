package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/domain"
)

func TestAudienceSegmentsFromGenreAffinities(t *testing.T) {
	g := NewAudienceGenerator(testForecastConfig())
	prefs := &domain.AdvertiserPreferences{
		Advertiser: "GMC",
		Genres:     map[string]float64{"Sports": 0.8, "News": 0.4, "Niche": 0.05},
	}

	segs, err := g.Generate(context.Background(), prefs, domain.CampaignParameters{Objective: domain.ObjectiveAwareness})
	require.NoError(t, err)
	require.Len(t, segs, 2, "weights below the cutoff do not become segments")

	assert.Equal(t, "Sports Enthusiasts", segs[0].Name)
	assert.Equal(t, "News Enthusiasts", segs[1].Name)
	assert.Greater(t, segs[0].Reach, segs[1].Reach, "segments are ordered by reach")
	assert.Equal(t, int64(0.8*8_000_000), segs[0].Reach)
	assert.Equal(t, 13.44, segs[0].FloorCPM)
}

func TestAudienceFallbackWithoutAffinitySignal(t *testing.T) {
	g := NewAudienceGenerator(testForecastConfig())
	prefs := &domain.AdvertiserPreferences{Advertiser: "Acme"}

	segs, err := g.Generate(context.Background(), prefs, domain.CampaignParameters{})
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "General CTV Viewers", segs[0].Name)
}

func TestAudienceZeroSegmentsWhenAllWeightsBelowCutoff(t *testing.T) {
	g := NewAudienceGenerator(testForecastConfig())
	prefs := &domain.AdvertiserPreferences{
		Advertiser: "Acme",
		Genres:     map[string]float64{"Niche": 0.05, "Obscure": 0.02},
	}

	segs, err := g.Generate(context.Background(), prefs, domain.CampaignParameters{})
	require.NoError(t, err)
	assert.NotNil(t, segs)
	assert.Empty(t, segs)
}

func TestAudienceSegmentCap(t *testing.T) {
	cfg := testForecastConfig()
	cfg.MaxSegments = 2
	g := NewAudienceGenerator(cfg)
	prefs := &domain.AdvertiserPreferences{
		Advertiser: "GMC",
		Genres:     map[string]float64{"Sports": 0.8, "News": 0.6, "Drama": 0.5, "Reality": 0.4},
	}

	segs, err := g.Generate(context.Background(), prefs, domain.CampaignParameters{})
	require.NoError(t, err)
	assert.Len(t, segs, 2)
	assert.Equal(t, "Sports Enthusiasts", segs[0].Name)
}
