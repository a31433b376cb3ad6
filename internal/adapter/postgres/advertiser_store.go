package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/port"
)

// AdvertiserStore looks up historical advertiser records in Postgres.
// Affinity maps are stored as a single jsonb document per row.
type AdvertiserStore struct {
	pool *pgxpool.Pool
}

// NewAdvertiserStore returns a new store instance.
func NewAdvertiserStore(pool *pgxpool.Pool) *AdvertiserStore {
	return &AdvertiserStore{pool: pool}
}

type affinityDoc struct {
	Networks map[string]float64 `json:"networks"`
	Genres   map[string]float64 `json:"genres"`
	Devices  map[string]float64 `json:"devices"`
	Dayparts map[string]float64 `json:"dayparts"`
}

// Search returns advertisers whose brand or domain matches the query,
// best match first. An empty result is not an error; callers fall back
// to category defaults.
func (s *AdvertiserStore) Search(ctx context.Context, query string, limit int) ([]port.AdvertiserRecord, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.pool.Query(ctx, `SELECT brand, category, domain, affinities, avg_cpm, confidence, refreshed_at
FROM advertisers
WHERE brand ILIKE '%' || $1 || '%' OR domain ILIKE '%' || $1 || '%'
ORDER BY (brand ILIKE $1) DESC, confidence DESC, brand ASC
LIMIT $2`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search advertisers: %w", err)
	}
	defer rows.Close()

	var out []port.AdvertiserRecord
	for rows.Next() {
		var (
			rec       port.AdvertiserRecord
			affinJSON []byte
		)
		if err = rows.Scan(&rec.Brand, &rec.Category, &rec.Domain, &affinJSON, &rec.AvgCPM, &rec.Confidence, &rec.RefreshedAt); err != nil {
			return nil, fmt.Errorf("scan advertiser row: %w", err)
		}
		var doc affinityDoc
		if len(affinJSON) > 0 {
			if err = json.Unmarshal(affinJSON, &doc); err != nil {
				return nil, fmt.Errorf("decode advertiser affinities: %w", err)
			}
		}
		rec.Networks = doc.Networks
		rec.Genres = doc.Genres
		rec.Devices = doc.Devices
		rec.Dayparts = doc.Dayparts
		out = append(out, rec)
	}
	return out, rows.Err()
}
