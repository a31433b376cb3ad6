package domain

// CreativeSlot describes the ad unit a line item fills.
type CreativeSlot struct {
	Format    string `json:"format"`    // e.g. video-30s
	Placement string `json:"placement"` // pre-roll, mid-roll, post-roll
}

// LineItem is one executable ad-server entry: a targeting descriptor
// with its budget allocation and creative slot. Budgets are in whole
// currency units.
type LineItem struct {
	Name      string       `json:"name"`
	Targeting Targeting    `json:"targeting"`
	Budget    float64      `json:"budget"`
	BidCPM    float64      `json:"bid_cpm"`
	DailyCap  float64      `json:"daily_cap"`
	Creative  CreativeSlot `json:"creative"`
}
