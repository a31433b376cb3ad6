package configs

// Forecast holds the tunable coefficients of the delivery estimator.
// These are heuristics, deliberately configuration rather than code:
// fill-rate and confidence weighting vary by inventory source.
type Forecast struct {
	// DefaultECPM is used when line items carry no usable CPM, dollars
	// per thousand impressions.
	DefaultECPM float64 `env:"DEFAULT_ECPM" envDefault:"12.0"`
	// BaseFillRate is the fill rate under light demand.
	BaseFillRate float64 `env:"BASE_FILL_RATE" envDefault:"0.9"`
	// MinFillRate floors the fill rate under heavy demand pressure.
	MinFillRate float64 `env:"MIN_FILL_RATE" envDefault:"0.3"`
	// WeeklyInventory is the deliverable impression supply per week for
	// the targeted pools.
	WeeklyInventory float64 `env:"WEEKLY_INVENTORY" envDefault:"80000000"`
	// DefaultWeeks is the horizon when the campaign dates are not set.
	DefaultWeeks int `env:"DEFAULT_WEEKS" envDefault:"4"`

	// Confidence blend weights: input completeness, preference weight
	// stability, inventory data freshness.
	CompletenessWeight float64 `env:"COMPLETENESS_WEIGHT" envDefault:"0.4"`
	StabilityWeight    float64 `env:"STABILITY_WEIGHT" envDefault:"0.3"`
	FreshnessWeight    float64 `env:"FRESHNESS_WEIGHT" envDefault:"0.3"`
	// InventoryFreshness scores how current the inventory signals are.
	InventoryFreshness float64 `env:"INVENTORY_FRESHNESS" envDefault:"0.85"`

	// BaseSegmentReach scales audience segment reach estimates.
	BaseSegmentReach int64 `env:"BASE_SEGMENT_REACH" envDefault:"8000000"`
	// MaxSegments caps how many audience segments are generated.
	MaxSegments int `env:"MAX_SEGMENTS" envDefault:"6"`
	// MaxLineItems caps how many line items a campaign is split into.
	MaxLineItems int `env:"MAX_LINE_ITEMS" envDefault:"5"`
}
