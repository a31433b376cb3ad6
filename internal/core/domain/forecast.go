package domain

// WeeklyProjection is one week of the delivery forecast. Planned
// impressions include any shortfall carried in from earlier weeks; the
// carry-in amount is reported separately so nothing is silently dropped.
type WeeklyProjection struct {
	Week                 int     `json:"week"`
	Budget               float64 `json:"budget"`
	PlannedImpressions   float64 `json:"planned_impressions"`
	DeliveredImpressions float64 `json:"delivered_impressions"`
	Reach                int64   `json:"reach"`
	FillRate             float64 `json:"fill_rate"`
	ECPM                 float64 `json:"ecpm"`
	Spend                float64 `json:"spend"`
	CarriedShortfall     float64 `json:"carried_shortfall"`
	Notes                string  `json:"notes,omitempty"`
}

// Forecast is the budget/reach projection over the campaign horizon.
// Confidence is in [0,1]. UnresolvedShortfall is whatever carried
// shortfall remains undelivered at horizon end.
type Forecast struct {
	Weeks               []WeeklyProjection `json:"weeks"`
	TotalSpend          float64            `json:"total_spend"`
	TotalImpressions    float64            `json:"total_impressions"`
	EstimatedReach      int64              `json:"estimated_reach"`
	UnresolvedShortfall float64            `json:"unresolved_shortfall"`
	Confidence          float64            `json:"confidence"`
	Insights            []string           `json:"insights,omitempty"`
}
