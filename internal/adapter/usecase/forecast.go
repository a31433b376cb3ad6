package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/config/configs"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/domain"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/port"
)

// targetFrequency is the assumed weekly impressions per reached viewer.
const targetFrequency = 4.0

// ForecastGenerator projects weekly delivery from the campaign budget,
// line items and preference profile. The projection itself is pure
// arithmetic over the configured coefficients; a model call only adds an
// optional narrative insight.
type ForecastGenerator struct {
	cfg     configs.Forecast
	gateway port.CompletionGateway
	logger  *slog.Logger
}

// NewForecastGenerator builds the generator. gateway may be nil.
func NewForecastGenerator(cfg configs.Forecast, gateway port.CompletionGateway, logger *slog.Logger) *ForecastGenerator {
	return &ForecastGenerator{cfg: cfg, gateway: gateway, logger: logger}
}

// Generate projects week-by-week delivery. Undelivered impressions carry
// forward into the next week's plan; whatever remains undelivered at the
// end of the horizon is reported, never silently dropped.
func (g *ForecastGenerator) Generate(ctx context.Context, params domain.CampaignParameters, items []domain.LineItem, prefs *domain.AdvertiserPreferences) (*domain.Forecast, error) {
	weeks := g.horizonWeeks(params)
	weights := pacingWeights(weeks, params.Notes)
	ecpm := g.weightedAvgCPM(items)

	f := &domain.Forecast{Weeks: make([]domain.WeeklyProjection, 0, weeks)}
	carried := 0.0
	allocated := 0.0
	constrained := false
	for i := 0; i < weeks; i++ {
		var budget float64
		if i == weeks-1 {
			budget = round2(params.Budget - allocated)
		} else {
			budget = round2(params.Budget * weights[i])
		}
		allocated += budget

		planned := budget/(ecpm/1000) + carried
		demand := planned / g.cfg.WeeklyInventory
		fill := g.cfg.BaseFillRate
		if demand > 1 {
			fill = g.cfg.BaseFillRate / demand
			constrained = true
		} else {
			fill = g.cfg.BaseFillRate + (1-demand)*0.05
		}
		fill = math.Max(g.cfg.MinFillRate, math.Min(1, fill))
		fill = domain.ClampWeight(fill)

		delivered := planned * fill
		spend := round2(delivered * ecpm / 1000)

		week := domain.WeeklyProjection{
			Week:                 i + 1,
			Budget:               budget,
			PlannedImpressions:   math.Round(planned),
			DeliveredImpressions: math.Round(delivered),
			Reach:                int64(delivered / targetFrequency),
			FillRate:             round2(fill),
			ECPM:                 round2(ecpm),
			Spend:                spend,
			CarriedShortfall:     math.Round(carried),
		}
		carried = planned - delivered

		f.Weeks = append(f.Weeks, week)
		f.TotalSpend = round2(f.TotalSpend + spend)
		f.TotalImpressions += week.DeliveredImpressions
	}

	f.UnresolvedShortfall = math.Round(carried)
	if f.UnresolvedShortfall > 0 {
		f.Weeks[weeks-1].Notes = fmt.Sprintf("%.0f planned impressions remain undelivered at horizon end", f.UnresolvedShortfall)
	}
	f.EstimatedReach = int64(f.TotalImpressions / targetFrequency)
	f.Confidence = g.confidence(params, prefs)
	f.Insights = g.insights(ctx, params, f, constrained)
	return f, nil
}

func (g *ForecastGenerator) horizonWeeks(params domain.CampaignParameters) int {
	if days := params.CampaignDays(); days > 0 {
		return int(math.Ceil(days / 7))
	}
	return g.cfg.DefaultWeeks
}

func (g *ForecastGenerator) weightedAvgCPM(items []domain.LineItem) float64 {
	var spend, budget float64
	for _, it := range items {
		if it.BidCPM > 0 && it.Budget > 0 {
			spend += it.Budget * it.BidCPM
			budget += it.Budget
		}
	}
	if budget <= 0 {
		return g.cfg.DefaultECPM
	}
	return spend / budget
}

// pacingWeights distributes the budget over the horizon. Even by
// default; pacing directives in the campaign notes shift it.
func pacingWeights(weeks int, notes string) []float64 {
	w := make([]float64, weeks)
	n := strings.ToLower(notes)
	switch {
	case strings.Contains(n, "front-load") || strings.Contains(n, "front load") || strings.Contains(n, "frontload"):
		total := 0.0
		for i := range w {
			w[i] = float64(weeks - i)
			total += w[i]
		}
		for i := range w {
			w[i] /= total
		}
	case strings.Contains(n, "back-load") || strings.Contains(n, "back load") || strings.Contains(n, "backload"):
		total := 0.0
		for i := range w {
			w[i] = float64(i + 1)
			total += w[i]
		}
		for i := range w {
			w[i] /= total
		}
	default:
		for i := range w {
			w[i] = 1 / float64(weeks)
		}
	}
	return w
}

// confidence blends input completeness, preference weight stability and
// inventory data freshness using the configured weights.
func (g *ForecastGenerator) confidence(params domain.CampaignParameters, prefs *domain.AdvertiserPreferences) float64 {
	stability := 0.5
	if prefs != nil {
		stability = domain.ClampWeight(1 - 4*prefs.WeightVariance())
	}
	c := g.cfg.CompletenessWeight*params.Completeness() +
		g.cfg.StabilityWeight*stability +
		g.cfg.FreshnessWeight*g.cfg.InventoryFreshness
	return round2(domain.ClampWeight(c))
}

func (g *ForecastGenerator) insights(ctx context.Context, params domain.CampaignParameters, f *domain.Forecast, constrained bool) []string {
	out := []string{}
	if constrained {
		out = append(out, "planned demand exceeds weekly inventory, delivery is supply constrained")
	}
	if f.UnresolvedShortfall > 0 {
		out = append(out, "consider extending the flight or raising bids to absorb the unresolved shortfall")
	}
	if f.Confidence < 0.5 {
		out = append(out, "low confidence projection, more campaign parameters would sharpen it")
	}

	if g.gateway == nil {
		return out
	}
	prompt := fmt.Sprintf("A %s campaign with a %.0f budget projects %.0f impressions over %d weeks at %.2f confidence. Give one sentence of planner advice.",
		params.Objective, params.Budget, f.TotalImpressions, len(f.Weeks), f.Confidence)
	text, err := g.gateway.Complete(ctx, port.ModelForecastAssist, []port.Message{
		{Role: port.RoleSystem, Content: "You are a CTV delivery forecasting assistant. Answer in one plain sentence."},
		{Role: port.RoleUser, Content: prompt},
	}, port.CallParams{})
	if err != nil {
		g.logger.Warn("forecast narrative skipped", slog.Any("error", err))
		return out
	}
	return append(out, strings.TrimSpace(text))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
