package domain

import "time"

// Objective is the campaign goal driving audience and pacing choices.
type Objective string

const (
	ObjectiveAwareness     Objective = "awareness"
	ObjectiveConsideration Objective = "consideration"
	ObjectiveConversion    Objective = "conversion"
	ObjectiveBrandBuilding Objective = "brand_building"
	ObjectiveProductLaunch Objective = "product_launch"
)

// ParseObjective normalises a free-form objective string. The second
// return value reports whether the input named a known objective.
func ParseObjective(s string) (Objective, bool) {
	switch Objective(s) {
	case ObjectiveAwareness, ObjectiveConsideration, ObjectiveConversion,
		ObjectiveBrandBuilding, ObjectiveProductLaunch:
		return Objective(s), true
	}
	return "", false
}

// CampaignParameters is the accumulated parameter set for one campaign.
// It is the single source of truth across workflow steps: steps may only
// fill fields that are still absent, and overwriting requires an explicit
// edit operation.
type CampaignParameters struct {
	Advertiser   string     `json:"advertiser,omitempty"`
	Budget       float64    `json:"budget,omitempty"`
	Objective    Objective  `json:"objective,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Geos         []string   `json:"geos,omitempty"`
	Devices      []string   `json:"devices,omitempty"`
	ContentTypes []string   `json:"content_types,omitempty"`
	Dayparts     []string   `json:"dayparts,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// FillAbsent copies fields from src into p only where p has no value yet.
// Populated fields are never touched; an explicit edit is the only way to
// overwrite them.
func (p *CampaignParameters) FillAbsent(src CampaignParameters) {
	if p.Advertiser == "" {
		p.Advertiser = src.Advertiser
	}
	if p.Budget <= 0 {
		p.Budget = src.Budget
	}
	if p.Objective == "" {
		p.Objective = src.Objective
	}
	if p.StartDate == nil {
		p.StartDate = src.StartDate
	}
	if p.EndDate == nil {
		p.EndDate = src.EndDate
	}
	if len(p.Geos) == 0 {
		p.Geos = src.Geos
	}
	if len(p.Devices) == 0 {
		p.Devices = src.Devices
	}
	if len(p.ContentTypes) == 0 {
		p.ContentTypes = src.ContentTypes
	}
	if len(p.Dayparts) == 0 {
		p.Dayparts = src.Dayparts
	}
	if p.Notes == "" {
		p.Notes = src.Notes
	}
}

// Completeness returns the populated fraction of parameter fields in
// [0,1]. It feeds the forecast confidence blend.
func (p CampaignParameters) Completeness() float64 {
	total := 10.0
	filled := 0.0
	if p.Advertiser != "" {
		filled++
	}
	if p.Budget > 0 {
		filled++
	}
	if p.Objective != "" {
		filled++
	}
	if p.StartDate != nil {
		filled++
	}
	if p.EndDate != nil {
		filled++
	}
	if len(p.Geos) > 0 {
		filled++
	}
	if len(p.Devices) > 0 {
		filled++
	}
	if len(p.ContentTypes) > 0 {
		filled++
	}
	if len(p.Dayparts) > 0 {
		filled++
	}
	if p.Notes != "" {
		filled++
	}
	return filled / total
}

// CampaignDays returns the planned flight length in days, or 0 when the
// date range is not fully specified.
func (p CampaignParameters) CampaignDays() float64 {
	if p.StartDate == nil || p.EndDate == nil {
		return 0
	}
	d := p.EndDate.Sub(*p.StartDate).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}
