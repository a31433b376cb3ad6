package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/domain"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/port"
)

// PreferencesGenerator derives advertiser preference profiles. Profiles
// are derived once per advertiser and cached; concurrent derivations for
// the same advertiser collapse into a single lookup.
type PreferencesGenerator struct {
	store   port.AdvertiserStore
	gateway port.CompletionGateway
	logger  *slog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]*domain.AdvertiserPreferences
}

// NewPreferencesGenerator builds the generator. store and gateway may be
// nil; derivation then falls back to category-level defaults.
func NewPreferencesGenerator(store port.AdvertiserStore, gateway port.CompletionGateway, logger *slog.Logger) *PreferencesGenerator {
	return &PreferencesGenerator{
		store:   store,
		gateway: gateway,
		logger:  logger,
		cache:   make(map[string]*domain.AdvertiserPreferences),
	}
}

// Derive returns the preference profile for an advertiser, from cache
// when available. The returned value is a copy; callers own it.
func (g *PreferencesGenerator) Derive(ctx context.Context, advertiser string) (*domain.AdvertiserPreferences, error) {
	key := strings.ToLower(strings.TrimSpace(advertiser))
	if key == "" {
		return nil, domain.NewValidationError(domain.StepPreferences, "advertiser is required")
	}

	g.mu.RLock()
	cached := g.cache[key]
	g.mu.RUnlock()
	if cached != nil {
		cp := *cached
		return &cp, nil
	}

	v, err, _ := g.group.Do(key, func() (any, error) {
		prefs := g.derive(ctx, advertiser)
		g.mu.Lock()
		g.cache[key] = prefs
		g.mu.Unlock()
		return prefs, nil
	})
	if err != nil {
		return nil, err
	}
	cp := *v.(*domain.AdvertiserPreferences)
	return &cp, nil
}

func (g *PreferencesGenerator) derive(ctx context.Context, advertiser string) *domain.AdvertiserPreferences {
	var recs []port.AdvertiserRecord
	if g.store != nil {
		var err error
		recs, err = g.store.Search(ctx, advertiser, 3)
		if err != nil {
			g.logger.Warn("advertiser store lookup failed, using category defaults",
				slog.String("advertiser", advertiser), slog.Any("error", err))
			recs = nil
		}
	}

	prefs := &domain.AdvertiserPreferences{Advertiser: advertiser}
	if len(recs) > 0 {
		top := recs[0]
		prefs.Networks = clampAll(top.Networks)
		prefs.Genres = clampAll(top.Genres)
		prefs.Devices = clampAll(top.Devices)
		prefs.Dayparts = clampAll(top.Dayparts)
		prefs.Enriched = true
		prefs.Confidence = top.Confidence
		if prefs.Confidence <= 0 {
			prefs.Confidence = 0.7
		}
	} else {
		prefs.Networks = map[string]float64{"ESPN": 0.6, "ABC": 0.55, "NBC": 0.5, "Discovery": 0.45}
		prefs.Genres = map[string]float64{"Sports": 0.6, "Entertainment": 0.55, "News": 0.5, "Drama": 0.45}
		prefs.Devices = map[string]float64{"ctv": 0.7, "mobile": 0.3}
		prefs.Dayparts = map[string]float64{"primetime": 0.6, "daytime": 0.4}
		prefs.Enriched = false
		prefs.Confidence = 0.4
	}

	prefs.Insights = g.insights(ctx, prefs)
	return prefs
}

// insights builds a short list of viewing-pattern observations. The
// model narrative is additive; its failure never fails the derivation.
func (g *PreferencesGenerator) insights(ctx context.Context, prefs *domain.AdvertiserPreferences) []string {
	out := []string{}
	if name, w := topWeight(prefs.Genres); name != "" {
		out = append(out, fmt.Sprintf("%s skews strongly toward %s content (affinity %.2f)", prefs.Advertiser, name, w))
	}
	if name, _ := topWeight(prefs.Dayparts); name != "" {
		out = append(out, fmt.Sprintf("historical delivery concentrates in %s", name))
	}
	if !prefs.Enriched {
		out = append(out, "no direct history found, profile built from category-level defaults")
	}

	if g.gateway == nil {
		return out
	}
	prompt := fmt.Sprintf("Summarise in one sentence what stands out about the CTV viewing profile of %s given genre affinities %s.",
		prefs.Advertiser, formatWeights(prefs.Genres))
	text, err := g.gateway.Complete(ctx, port.ModelGeneration, []port.Message{
		{Role: port.RoleSystem, Content: "You are a CTV media planning analyst. Answer in one plain sentence."},
		{Role: port.RoleUser, Content: prompt},
	}, port.CallParams{})
	if err != nil {
		g.logger.Warn("preference insight generation skipped", slog.Any("error", err))
		return out
	}
	return append(out, strings.TrimSpace(text))
}

func clampAll(m map[string]float64) map[string]float64 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = domain.ClampWeight(v)
	}
	return out
}

func topWeight(m map[string]float64) (string, float64) {
	name, best := "", -1.0
	for k, v := range m {
		if v > best || (v == best && k < name) {
			name, best = k, v
		}
	}
	if best < 0 {
		return "", 0
	}
	return name, best
}

func formatWeights(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.2f", k, m[k]))
	}
	return strings.Join(parts, ", ")
}
