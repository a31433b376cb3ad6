package usecase

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/domain"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/port"
)

var (
	// budgetRe matches amounts like "$250,000", "$250K" or "1.5M". A bare
	// number with neither a dollar sign nor a magnitude suffix is not a
	// budget; that keeps dates and counts out.
	budgetRe = regexp.MustCompile(`(?i)(\$?)\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*([kmb]?)`)

	// advertiserRe captures a capitalised brand name after "for".
	advertiserRe = regexp.MustCompile(`\bfor\s+([A-Z][A-Za-z0-9&'.-]*(?:\s+[A-Z][A-Za-z0-9&'.-]*)*)`)

	isoDateRe = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
)

var objectiveKeywords = []struct {
	keyword   string
	objective domain.Objective
}{
	{"awareness", domain.ObjectiveAwareness},
	{"consideration", domain.ObjectiveConsideration},
	{"conversion", domain.ObjectiveConversion},
	{"purchase", domain.ObjectiveConversion},
	{"launch", domain.ObjectiveProductLaunch},
	{"brand", domain.ObjectiveBrandBuilding},
}

var pacingKeywords = []string{"front-load", "front load", "frontload", "back-load", "back load", "backload", "even pacing"}

// parseBrief extracts campaign parameters from a free-text brief using
// deterministic rules. Anything the rules miss is left absent for the
// model-assisted pass or later steps to fill.
func parseBrief(text string) domain.CampaignParameters {
	var p domain.CampaignParameters

	if amount, ok := extractBudget(text); ok {
		p.Budget = amount
	}
	if m := advertiserRe.FindStringSubmatch(text); m != nil {
		p.Advertiser = strings.TrimSpace(m[1])
	}

	lower := strings.ToLower(text)
	for _, ok := range objectiveKeywords {
		if strings.Contains(lower, ok.keyword) {
			p.Objective = ok.objective
			break
		}
	}

	if dates := isoDateRe.FindAllString(text, 2); len(dates) == 2 {
		start, err1 := time.Parse("2006-01-02", dates[0])
		end, err2 := time.Parse("2006-01-02", dates[1])
		if err1 == nil && err2 == nil && !end.Before(start) {
			p.StartDate = &start
			p.EndDate = &end
		}
	}

	for _, kw := range pacingKeywords {
		if strings.Contains(lower, kw) {
			p.Notes = text
			break
		}
	}
	return p
}

func extractBudget(text string) (float64, bool) {
	for _, m := range budgetRe.FindAllStringSubmatch(text, -1) {
		hasDollar := m[1] == "$"
		suffix := strings.ToLower(m[3])
		if !hasDollar && suffix == "" {
			continue
		}
		raw := strings.ReplaceAll(m[2], ",", "")
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		switch suffix {
		case "k":
			amount *= 1e3
		case "m":
			amount *= 1e6
		case "b":
			amount *= 1e9
		}
		if amount > 0 {
			return amount, true
		}
	}
	return 0, false
}

// assistedBrief is the JSON shape the parsing model is asked to emit.
type assistedBrief struct {
	Advertiser   string   `json:"advertiser"`
	Budget       float64  `json:"budget"`
	Objective    string   `json:"objective"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	Geos         []string `json:"geos"`
	Devices      []string `json:"devices"`
	ContentTypes []string `json:"content_types"`
	Dayparts     []string `json:"dayparts"`
	Notes        string   `json:"notes"`
}

const parsePrompt = `Extract CTV campaign parameters from the brief below.
Respond with a single JSON object using exactly these keys:
advertiser, budget (number, dollars), objective (awareness|consideration|conversion|brand_building|product_launch),
start_date (YYYY-MM-DD), end_date (YYYY-MM-DD), geos, devices, content_types, dayparts (string arrays), notes.
Omit or null anything the brief does not state. No prose.

Brief:
`

// assistedParse asks the parsing model class to extract parameters the
// rules missed. Its failure is tolerated; the caller keeps whatever the
// rules found.
func assistedParse(ctx context.Context, gateway port.CompletionGateway, text string) (domain.CampaignParameters, error) {
	var p domain.CampaignParameters
	if gateway == nil {
		return p, nil
	}
	resp, err := gateway.Complete(ctx, port.ModelParsing, []port.Message{
		{Role: port.RoleSystem, Content: "You extract structured campaign parameters. Output JSON only."},
		{Role: port.RoleUser, Content: parsePrompt + text},
	}, port.CallParams{})
	if err != nil {
		return p, err
	}
	raw := extractJSON(resp)
	if raw == "" {
		return p, nil
	}
	var b assistedBrief
	if err = json.Unmarshal([]byte(raw), &b); err != nil {
		return p, nil
	}

	p.Advertiser = strings.TrimSpace(b.Advertiser)
	if b.Budget > 0 {
		p.Budget = b.Budget
	}
	if obj, ok := domain.ParseObjective(strings.ToLower(b.Objective)); ok {
		p.Objective = obj
	}
	if start, err := time.Parse("2006-01-02", b.StartDate); err == nil {
		p.StartDate = &start
	}
	if end, err := time.Parse("2006-01-02", b.EndDate); err == nil {
		p.EndDate = &end
	}
	p.Geos = b.Geos
	p.Devices = b.Devices
	p.ContentTypes = b.ContentTypes
	p.Dayparts = b.Dayparts
	p.Notes = strings.TrimSpace(b.Notes)
	return p, nil
}

// extractJSON returns the first balanced top-level JSON object in s.
// Models often wrap JSON in prose or code fences; this digs it out.
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
