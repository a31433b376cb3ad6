package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/config/configs"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/domain"
)

// minSegmentWeight is the genre affinity below which a segment is not
// worth a dedicated line item.
const minSegmentWeight = 0.1

// AudienceGenerator derives audience segments from an advertiser's
// preference profile. Generation is deterministic: the same profile and
// parameters always yield the same segments, which is what makes cached
// output reuse sound.
type AudienceGenerator struct {
	cfg configs.Forecast
}

// NewAudienceGenerator builds the generator with estimator coefficients.
func NewAudienceGenerator(cfg configs.Forecast) *AudienceGenerator {
	return &AudienceGenerator{cfg: cfg}
}

// Generate builds segments from the profile's genre affinities. A profile
// with no affinity signal at all yields one broad fallback segment; a
// profile whose affinities are all below the cutoff yields zero segments,
// which blocks line item generation until preferences are revised.
func (g *AudienceGenerator) Generate(_ context.Context, prefs *domain.AdvertiserPreferences, params domain.CampaignParameters) ([]domain.AudienceSegment, error) {
	segs := []domain.AudienceSegment{}
	if prefs == nil {
		return segs, nil
	}

	if len(prefs.Genres) == 0 && len(prefs.Networks) == 0 {
		return []domain.AudienceSegment{{
			Name:        "General CTV Viewers",
			Demographic: demographicFor(params.Objective),
			Behavioral:  "broad streaming viewership",
			Reach:       g.cfg.BaseSegmentReach,
			FloorCPM:    g.cfg.DefaultECPM,
		}}, nil
	}

	type affinity struct {
		name   string
		weight float64
	}
	var genres []affinity
	for name, w := range prefs.Genres {
		if w >= minSegmentWeight {
			genres = append(genres, affinity{name: name, weight: w})
		}
	}
	sort.Slice(genres, func(i, j int) bool {
		if genres[i].weight != genres[j].weight {
			return genres[i].weight > genres[j].weight
		}
		return genres[i].name < genres[j].name
	})
	if max := g.cfg.MaxSegments; max > 0 && len(genres) > max {
		genres = genres[:max]
	}

	for _, a := range genres {
		segs = append(segs, domain.AudienceSegment{
			Name:        a.name + " Enthusiasts",
			Demographic: demographicFor(params.Objective),
			Behavioral:  fmt.Sprintf("watches %s programming weekly", a.name),
			Reach:       int64(a.weight * float64(g.cfg.BaseSegmentReach)),
			FloorCPM:    round2(g.cfg.DefaultECPM * (0.8 + 0.4*a.weight)),
		})
	}
	domain.SortSegments(segs)
	return segs, nil
}

func demographicFor(obj domain.Objective) string {
	switch obj {
	case domain.ObjectiveConversion:
		return "Adults 25-54, in-market"
	case domain.ObjectiveConsideration:
		return "Adults 25-54"
	case domain.ObjectiveProductLaunch:
		return "Adults 18-34, early adopters"
	default:
		return "Adults 18-49"
	}
}
