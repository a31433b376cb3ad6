package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type seedAdvertiser struct {
	brand      string
	category   string
	domain     string
	avgCPM     float64
	confidence float64
	affinities map[string]map[string]float64
}

var seedAdvertisers = []seedAdvertiser{
	{
		brand: "GMC", category: "automotive", domain: "gmc.com", avgCPM: 14.5, confidence: 0.82,
		affinities: map[string]map[string]float64{
			"networks": {"ESPN": 0.72, "Discovery": 0.58, "FOX": 0.55, "History": 0.47},
			"genres":   {"Sports": 0.75, "Outdoors": 0.62, "News": 0.48, "Reality": 0.31},
			"devices":  {"ctv": 0.78, "mobile": 0.22},
			"dayparts": {"primetime": 0.64, "weekend-afternoon": 0.52, "daytime": 0.28},
		},
	},
	{
		brand: "Tide", category: "cpg", domain: "tide.com", avgCPM: 11.2, confidence: 0.77,
		affinities: map[string]map[string]float64{
			"networks": {"ABC": 0.66, "NBC": 0.61, "Hallmark": 0.54, "HGTV": 0.5},
			"genres":   {"Drama": 0.68, "Reality": 0.57, "Lifestyle": 0.55, "News": 0.4},
			"devices":  {"ctv": 0.7, "mobile": 0.3},
			"dayparts": {"daytime": 0.6, "primetime": 0.55, "early-morning": 0.35},
		},
	},
	{
		brand: "McDonald's", category: "qsr", domain: "mcdonalds.com", avgCPM: 12.8, confidence: 0.85,
		affinities: map[string]map[string]float64{
			"networks": {"ESPN": 0.63, "Comedy Central": 0.6, "MTV": 0.52, "ABC": 0.5},
			"genres":   {"Sports": 0.62, "Comedy": 0.61, "Entertainment": 0.58, "Music": 0.44},
			"devices":  {"ctv": 0.65, "mobile": 0.35},
			"dayparts": {"late-night": 0.58, "primetime": 0.56, "lunch": 0.49},
		},
	},
	{
		brand: "Nike", category: "apparel", domain: "nike.com", avgCPM: 15.9, confidence: 0.8,
		affinities: map[string]map[string]float64{
			"networks": {"ESPN": 0.81, "FS1": 0.66, "NBC Sports": 0.6, "MTV": 0.42},
			"genres":   {"Sports": 0.84, "Fitness": 0.66, "Music": 0.45, "Documentary": 0.38},
			"devices":  {"ctv": 0.74, "mobile": 0.26},
			"dayparts": {"primetime": 0.6, "weekend-afternoon": 0.58, "early-morning": 0.4},
		},
	},
	{
		brand: "Amazon", category: "retail", domain: "amazon.com", avgCPM: 13.4, confidence: 0.79,
		affinities: map[string]map[string]float64{
			"networks": {"NBC": 0.58, "ABC": 0.56, "Discovery": 0.51, "Food Network": 0.47},
			"genres":   {"Entertainment": 0.62, "Drama": 0.58, "Reality": 0.5, "News": 0.45},
			"devices":  {"ctv": 0.72, "mobile": 0.28},
			"dayparts": {"primetime": 0.62, "daytime": 0.45, "late-night": 0.4},
		},
	},
}

// Seed inserts demo advertiser records so preference derivation has
// history to draw on in fresh environments. Existing rows are left
// untouched.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	for _, a := range seedAdvertisers {
		affJSON, err := json.Marshal(a.affinities)
		if err != nil {
			return fmt.Errorf("seed %s: %w", a.brand, err)
		}
		_, err = pool.Exec(ctx, `INSERT INTO advertisers
(brand, category, domain, affinities, avg_cpm, confidence, refreshed_at)
VALUES ($1,$2,$3,$4,$5,$6,now()) ON CONFLICT (brand) DO NOTHING`,
			a.brand, a.category, a.domain, affJSON, a.avgCPM, a.confidence)
		if err != nil {
			return fmt.Errorf("seed %s: %w", a.brand, err)
		}
	}
	return nil
}
