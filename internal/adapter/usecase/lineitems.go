package usecase

import (
	"fmt"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/config/configs"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/domain"
)

// LineItemGenerator splits a campaign budget across audience segments
// into executable line items. Deterministic: segment ordering and budget
// allocation depend only on the inputs.
type LineItemGenerator struct {
	cfg configs.Forecast
}

// NewLineItemGenerator builds the generator with estimator coefficients.
func NewLineItemGenerator(cfg configs.Forecast) *LineItemGenerator {
	return &LineItemGenerator{cfg: cfg}
}

// Generate allocates the budget across the highest-reach segments,
// proportionally to reach. Rounding residue lands on the last item so
// the allocations always sum to the campaign budget exactly.
func (g *LineItemGenerator) Generate(params domain.CampaignParameters, segments []domain.AudienceSegment) []domain.LineItem {
	if len(segments) == 0 || params.Budget <= 0 {
		return []domain.LineItem{}
	}

	sorted := append([]domain.AudienceSegment(nil), segments...)
	domain.SortSegments(sorted)
	if max := g.cfg.MaxLineItems; max > 0 && len(sorted) > max {
		sorted = sorted[:max]
	}

	var totalReach float64
	for _, s := range sorted {
		totalReach += float64(s.Reach)
	}

	days := params.CampaignDays()
	if days <= 0 {
		days = float64(g.cfg.DefaultWeeks) * 7
	}

	items := make([]domain.LineItem, 0, len(sorted))
	allocated := 0.0
	for i, seg := range sorted {
		var budget float64
		switch {
		case i == len(sorted)-1:
			budget = round2(params.Budget - allocated)
		case totalReach > 0:
			budget = round2(params.Budget * float64(seg.Reach) / totalReach)
		default:
			budget = round2(params.Budget / float64(len(sorted)))
		}
		allocated += budget

		floor := seg.FloorCPM
		if floor <= 0 {
			floor = g.cfg.DefaultECPM
		}
		items = append(items, domain.LineItem{
			Name: fmt.Sprintf("%s | %s", params.Advertiser, seg.Name),
			Targeting: domain.Targeting{
				Audience:     seg.Name,
				Geos:         params.Geos,
				Devices:      params.Devices,
				ContentTypes: params.ContentTypes,
				Dayparts:     params.Dayparts,
			},
			Budget:   budget,
			BidCPM:   round2(floor * 1.1),
			DailyCap: round2(budget / days),
			Creative: creativeFor(params.Objective),
		})
	}
	return items
}

func creativeFor(obj domain.Objective) domain.CreativeSlot {
	switch obj {
	case domain.ObjectiveAwareness, domain.ObjectiveBrandBuilding:
		return domain.CreativeSlot{Format: "video-30s", Placement: "pre-roll"}
	case domain.ObjectiveConversion:
		return domain.CreativeSlot{Format: "video-15s", Placement: "mid-roll"}
	default:
		return domain.CreativeSlot{Format: "video-30s", Placement: "mid-roll"}
	}
}
