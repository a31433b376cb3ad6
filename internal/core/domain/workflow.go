package domain

import "fmt"

// Step identifies one stage of the campaign planning sequence.
type Step int

const (
	StepParsing Step = iota
	StepPreferences
	StepAudience
	StepLineItems
	StepForecastInput
	StepForecast
	StepComplete
)

var stepNames = [...]string{
	StepParsing:       "parsing",
	StepPreferences:   "preferences",
	StepAudience:      "audience",
	StepLineItems:     "line_items",
	StepForecastInput: "forecast_input",
	StepForecast:      "forecast",
	StepComplete:      "complete",
}

func (s Step) String() string {
	if s < StepParsing || s > StepComplete {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// Next returns the step following s. Complete is terminal.
func (s Step) Next() Step {
	if s >= StepComplete {
		return StepComplete
	}
	return s + 1
}

// MarshalText stores steps by name so persisted state stays readable.
func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Step) UnmarshalText(b []byte) error {
	name := string(b)
	for i, n := range stepNames {
		if n == name {
			*s = Step(i)
			return nil
		}
	}
	return fmt.Errorf("unknown workflow step %q", name)
}

// generatorSteps are the steps whose outputs are cached and subject to
// dirty invalidation. Parsing and ForecastInput accumulate parameters
// but produce no cached output.
var generatorSteps = [...]Step{StepPreferences, StepAudience, StepLineItems, StepForecast}

// GeneratorSteps returns the cached-output steps in workflow order.
func GeneratorSteps() []Step {
	return generatorSteps[:]
}

// StepSet is a validity bitmap over workflow steps. A set bit marks the
// step's cached output as stale and pending recomputation.
type StepSet uint8

func (s StepSet) Has(st Step) bool {
	return s&(1<<uint(st)) != 0
}

func (s *StepSet) Add(st Step) {
	*s |= 1 << uint(st)
}

func (s *StepSet) Remove(st Step) {
	*s &^= 1 << uint(st)
}

// AddFrom marks st and every generator step after it.
func (s *StepSet) AddFrom(st Step) {
	for _, gs := range generatorSteps {
		if gs >= st {
			s.Add(gs)
		}
	}
}

// Steps lists the marked steps in workflow order.
func (s StepSet) Steps() []Step {
	var out []Step
	for _, gs := range generatorSteps {
		if s.Has(gs) {
			out = append(out, gs)
		}
	}
	return out
}

// WorkflowState is the full state of one campaign planning workflow:
// the current step, the accumulated campaign parameters and the cached
// per-step outputs together with their validity bitmap.
type WorkflowState struct {
	Step        Step                   `json:"step"`
	Params      CampaignParameters     `json:"params"`
	Preferences *AdvertiserPreferences `json:"preferences,omitempty"`
	Segments    []AudienceSegment      `json:"segments,omitempty"`
	LineItems   []LineItem             `json:"line_items,omitempty"`
	Forecast    *Forecast              `json:"forecast,omitempty"`
	Dirty       StepSet                `json:"dirty"`
}

// NewWorkflowState returns an empty workflow positioned at Parsing.
func NewWorkflowState() WorkflowState {
	return WorkflowState{Step: StepParsing}
}

// OutputPresent reports whether the cached output for st exists. Slice
// outputs are present when non-nil: a computed-but-empty segment list is
// present, which is what lets prerequisite checks catch it.
func (s *WorkflowState) OutputPresent(st Step) bool {
	switch st {
	case StepPreferences:
		return s.Preferences != nil
	case StepAudience:
		return s.Segments != nil
	case StepLineItems:
		return s.LineItems != nil
	case StepForecast:
		return s.Forecast != nil
	default:
		return true
	}
}

// MissingFor lists the prerequisites absent for entering step st. An
// empty result means the transition is allowed.
func (s *WorkflowState) MissingFor(st Step) []string {
	var missing []string
	switch st {
	case StepPreferences:
		if s.Params.Advertiser == "" {
			missing = append(missing, "advertiser")
		}
	case StepAudience:
		if s.Preferences == nil {
			missing = append(missing, "preferences")
		}
	case StepLineItems:
		if len(s.Segments) == 0 {
			missing = append(missing, "audience_segments")
		}
	case StepForecastInput:
		if len(s.LineItems) == 0 {
			missing = append(missing, "line_items")
		}
	case StepForecast:
		if len(s.LineItems) == 0 {
			missing = append(missing, "line_items")
		}
		if s.Params.Budget <= 0 {
			missing = append(missing, "budget")
		}
	}
	return missing
}

// Progress returns a coarse completion percentage for presentation.
func (s *WorkflowState) Progress() int {
	switch s.Step {
	case StepParsing:
		return 10
	case StepPreferences:
		return 25
	case StepAudience:
		return 45
	case StepLineItems:
		return 65
	case StepForecastInput:
		return 80
	case StepForecast:
		return 95
	default:
		return 100
	}
}
