package domain

import "math"

// AdvertiserPreferences captures the historical affinities of one
// advertiser. Weights are in [0,1]. Derived once per advertiser and
// reused until explicitly refreshed.
type AdvertiserPreferences struct {
	Advertiser string             `json:"advertiser"`
	Networks   map[string]float64 `json:"networks,omitempty"`
	Genres     map[string]float64 `json:"genres,omitempty"`
	Devices    map[string]float64 `json:"devices,omitempty"`
	Dayparts   map[string]float64 `json:"dayparts,omitempty"`
	Insights   []string           `json:"insights,omitempty"`
	// Enriched is false when no historical records were found and the
	// category-level fallback heuristics were used instead.
	Enriched   bool    `json:"enriched"`
	Confidence float64 `json:"confidence"`
}

// WeightVariance returns the population variance of all affinity weights.
// Stable historical weights raise forecast confidence.
func (p AdvertiserPreferences) WeightVariance() float64 {
	var weights []float64
	for _, m := range []map[string]float64{p.Networks, p.Genres, p.Devices, p.Dayparts} {
		for _, w := range m {
			weights = append(weights, w)
		}
	}
	if len(weights) == 0 {
		return 0
	}
	var sum float64
	for _, w := range weights {
		sum += w
	}
	mean := sum / float64(len(weights))
	var sq float64
	for _, w := range weights {
		sq += (w - mean) * (w - mean)
	}
	return sq / float64(len(weights))
}

// ClampWeight bounds an affinity weight to [0,1].
func ClampWeight(w float64) float64 {
	return math.Max(0, math.Min(1, w))
}
