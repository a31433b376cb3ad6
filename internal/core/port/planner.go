package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/domain"
)

// ParamsPatch is a partial campaign parameter update. Nil pointer and
// empty slice fields are left untouched; present fields overwrite.
type ParamsPatch struct {
	Advertiser   *string    `json:"advertiser,omitempty"`
	Budget       *float64   `json:"budget,omitempty"`
	Objective    *string    `json:"objective,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Geos         []string   `json:"geos,omitempty"`
	Devices      []string   `json:"devices,omitempty"`
	ContentTypes []string   `json:"content_types,omitempty"`
	Dayparts     []string   `json:"dayparts,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

// Empty reports whether the patch carries no field at all.
func (p ParamsPatch) Empty() bool {
	return p.Advertiser == nil && p.Budget == nil && p.Objective == nil &&
		p.StartDate == nil && p.EndDate == nil && p.Notes == nil &&
		len(p.Geos) == 0 && len(p.Devices) == 0 &&
		len(p.ContentTypes) == 0 && len(p.Dayparts) == 0
}

// StepInput carries what the caller supplies when processing a step: a
// free-text brief and/or a pre-parsed partial parameter set from the
// file-intake collaborator.
type StepInput struct {
	Text   string       `json:"text,omitempty"`
	Params *ParamsPatch `json:"params,omitempty"`
}

// StepResult is what one process call produced: the step that ran, a
// human-readable reasoning trace, the suggested next action and the
// resulting workflow state.
type StepResult struct {
	Step      domain.Step          `json:"step"`
	Reasoning string               `json:"reasoning"`
	Action    string               `json:"action"`
	Progress  int                  `json:"progress"`
	State     domain.WorkflowState `json:"state"`
}

// StatusSummary is the read-only view of a session's workflow.
type StatusSummary struct {
	SessionID uuid.UUID            `json:"session_id"`
	Step      domain.Step          `json:"step"`
	Progress  int                  `json:"progress"`
	Dirty     []domain.Step        `json:"dirty,omitempty"`
	State     domain.WorkflowState `json:"state"`
}

// ChatResult is the outcome of one chat turn. State is set only when the
// message moved or mutated the workflow.
type ChatResult struct {
	Intent domain.Intent         `json:"intent"`
	Reply  string                `json:"reply"`
	State  *domain.WorkflowState `json:"workflow_state,omitempty"`
}

// Planner is the primary inbound port: the session-scoped campaign
// planning workflow. Operations on the same session are serialised; all
// state mutation is all-or-nothing relative to the state visible before
// the call.
type Planner interface {
	// Create starts a new planning session.
	Create(ctx context.Context) (*domain.Session, error)
	// Status summarises the session's workflow state.
	Status(ctx context.Context, id uuid.UUID) (*StatusSummary, error)
	// Process advances the workflow one step, recomputing stale cached
	// outputs first and reusing clean ones verbatim.
	Process(ctx context.Context, id uuid.UUID, in StepInput) (*StepResult, error)
	// Edit merges a partial parameter update and lazily invalidates
	// downstream step outputs; nothing is recomputed.
	Edit(ctx context.Context, id uuid.UUID, patch ParamsPatch) (*domain.WorkflowState, error)
	// Reforecast recomputes the forecast from current parameters and
	// cached line items without replaying earlier steps.
	Reforecast(ctx context.Context, id uuid.UUID) (*domain.Forecast, error)
	// Reset returns the workflow to Parsing with empty parameters and
	// discards all cached outputs. An in-flight operation on the same
	// session is cancelled and its late result discarded.
	Reset(ctx context.Context, id uuid.UUID) (*domain.WorkflowState, error)
	// Destroy deletes the session record outright, cancelling any
	// in-flight operation on it first.
	Destroy(ctx context.Context, id uuid.UUID) error
	// Chat routes a free-form message: conversational reply or workflow
	// advancement/edit/reset depending on classified intent.
	Chat(ctx context.Context, id uuid.UUID, message string) (*ChatResult, error)
}
