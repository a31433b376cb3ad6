package port

import (
	"context"
	"time"
)

// AdvertiserRecord is one ranked record from the similarity store:
// historical affinity and performance signals for an advertiser.
type AdvertiserRecord struct {
	Brand       string             `json:"brand"`
	Category    string             `json:"category"`
	Domain      string             `json:"domain"`
	Networks    map[string]float64 `json:"networks"`
	Genres      map[string]float64 `json:"genres"`
	Devices     map[string]float64 `json:"devices"`
	Dayparts    map[string]float64 `json:"dayparts"`
	AvgCPM      float64            `json:"avg_cpm"`
	Confidence  float64            `json:"confidence"`
	RefreshedAt time.Time          `json:"refreshed_at"`
}

// AdvertiserStore is the outbound port to the advertiser similarity
// store. An empty result means "no enrichment available" and is never
// an error; callers fall back to category-level heuristics.
type AdvertiserStore interface {
	Search(ctx context.Context, query string, limit int) ([]AdvertiserRecord, error)
}
