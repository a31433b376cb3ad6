package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/config/configs"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/domain"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/port"
)

// Planner is the campaign planning workflow behind port.Planner.
// Operations on the same session are serialised through a per-session
// lock; state reaches storage only when an operation fully succeeds, so
// a failed call leaves the session exactly as it found it.
type Planner struct {
	sessions     port.SessionRepository
	gateway      port.CompletionGateway
	prefs        *PreferencesGenerator
	audience     *AudienceGenerator
	lineItems    *LineItemGenerator
	forecast     *ForecastGenerator
	router       *IntentRouter
	logger       *slog.Logger
	historyLimit int

	mu    sync.Mutex
	locks map[uuid.UUID]*sessionLock
}

// sessionLock serialises operations on one session. The epoch counter
// invalidates in-flight work on reset: an operation that finishes under
// a stale epoch is discarded instead of saved.
type sessionLock struct {
	mu    sync.Mutex
	epoch atomic.Int64
	refs  int

	cmu    sync.Mutex
	cancel context.CancelFunc
}

func (l *sessionLock) setCancel(c context.CancelFunc) {
	l.cmu.Lock()
	l.cancel = c
	l.cmu.Unlock()
}

func (l *sessionLock) cancelInFlight() {
	l.cmu.Lock()
	c := l.cancel
	l.cmu.Unlock()
	if c != nil {
		c()
	}
}

// NewPlanner wires the workflow with its collaborators. store and
// gateway may be nil in degraded or test setups.
func NewPlanner(
	sessions port.SessionRepository,
	store port.AdvertiserStore,
	gateway port.CompletionGateway,
	cfg configs.Forecast,
	historyLimit int,
	logger *slog.Logger,
) *Planner {
	return &Planner{
		sessions:     sessions,
		gateway:      gateway,
		prefs:        NewPreferencesGenerator(store, gateway, logger),
		audience:     NewAudienceGenerator(cfg),
		lineItems:    NewLineItemGenerator(cfg),
		forecast:     NewForecastGenerator(cfg, gateway, logger),
		router:       NewIntentRouter(gateway, logger),
		logger:       logger,
		historyLimit: historyLimit,
		locks:        make(map[uuid.UUID]*sessionLock),
	}
}

// lockFor takes a reference on the session's lock entry; every lockFor
// must be paired with a release so idle entries get pruned.
func (p *Planner) lockFor(id uuid.UUID) *sessionLock {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[id]
	if !ok {
		l = &sessionLock{}
		p.locks[id] = l
	}
	l.refs++
	return l
}

// release drops one reference and removes the registry entry once nobody
// holds or waits on it, keeping the lock map bounded by the number of
// sessions actually being operated on.
func (p *Planner) release(id uuid.UUID, l *sessionLock) {
	p.mu.Lock()
	defer p.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(p.locks, id)
	}
}

// withSession runs fn under the session's lock and persists the session
// only when fn succeeds and no reset happened meanwhile.
func (p *Planner) withSession(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, s *domain.Session) error) error {
	lock := p.lockFor(id)
	defer p.release(id, lock)
	lock.mu.Lock()
	defer lock.mu.Unlock()

	epoch := lock.epoch.Load()
	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	lock.setCancel(cancel)
	defer lock.setCancel(nil)

	s, err := p.sessions.Get(opCtx, id)
	if err != nil {
		return err
	}
	if err = fn(opCtx, s); err != nil {
		if lock.epoch.Load() != epoch {
			return domain.ErrSessionReset
		}
		return err
	}
	if lock.epoch.Load() != epoch {
		return domain.ErrSessionReset
	}
	s.TruncateHistory(p.historyLimit)
	s.UpdatedAt = time.Now().UTC()
	return p.sessions.Save(opCtx, s)
}

// Create starts a new planning session at the Parsing step.
func (p *Planner) Create(ctx context.Context) (*domain.Session, error) {
	s := domain.NewSession()
	if err := p.sessions.Create(ctx, s); err != nil {
		return nil, err
	}
	p.logger.Info("session created", slog.String("session_id", s.ID.String()))
	return s, nil
}

// Status summarises a session's workflow without mutating it.
func (p *Planner) Status(ctx context.Context, id uuid.UUID) (*port.StatusSummary, error) {
	s, err := p.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &port.StatusSummary{
		SessionID: s.ID,
		Step:      s.State.Step,
		Progress:  s.State.Progress(),
		Dirty:     s.State.Dirty.Steps(),
		State:     s.State,
	}, nil
}

// Process advances the workflow one step.
func (p *Planner) Process(ctx context.Context, id uuid.UUID, in port.StepInput) (*port.StepResult, error) {
	var res *port.StepResult
	err := p.withSession(ctx, id, func(ctx context.Context, s *domain.Session) error {
		r, err := p.processLocked(ctx, s, in)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// processLocked runs the current step and moves to the next one. Stale
// upstream outputs are recomputed first, in workflow order; clean cached
// outputs are reused verbatim without touching any backend.
func (p *Planner) processLocked(ctx context.Context, s *domain.Session, in port.StepInput) (*port.StepResult, error) {
	st := &s.State
	if st.Step == domain.StepComplete {
		return &port.StepResult{
			Step:      st.Step,
			Reasoning: "campaign plan is complete",
			Action:    "edit parameters and reforecast to iterate, or reset to start over",
			Progress:  st.Progress(),
			State:     *st,
		}, nil
	}
	cur := st.Step

	for _, gs := range domain.GeneratorSteps() {
		if gs >= cur {
			break
		}
		if !st.Dirty.Has(gs) {
			continue
		}
		if missing := st.MissingFor(gs); len(missing) > 0 {
			return nil, domain.NewMissingPrerequisite(gs, missing...)
		}
		if err := p.regenerate(ctx, st, gs); err != nil {
			return nil, domain.FailAt(gs, err)
		}
	}

	if missing := st.MissingFor(cur); len(missing) > 0 {
		return nil, domain.NewMissingPrerequisite(cur, missing...)
	}

	var reasoning string
	switch cur {
	case domain.StepParsing:
		reasoning = p.runParsing(ctx, st, in)
	case domain.StepForecastInput:
		var err error
		reasoning, err = p.runForecastInput(st, in)
		if err != nil {
			return nil, err
		}
	default:
		if st.OutputPresent(cur) && !st.Dirty.Has(cur) {
			reasoning = fmt.Sprintf("reused cached %s output, inputs unchanged", cur)
		} else {
			if err := p.regenerate(ctx, st, cur); err != nil {
				return nil, domain.FailAt(cur, err)
			}
			reasoning = p.describeOutput(st, cur)
		}
	}

	next := cur.Next()
	if missing := st.MissingFor(next); len(missing) > 0 {
		return nil, domain.NewMissingPrerequisite(next, missing...)
	}
	st.Step = next

	return &port.StepResult{
		Step:      cur,
		Reasoning: reasoning,
		Action:    nextAction(next),
		Progress:  st.Progress(),
		State:     *st,
	}, nil
}

// regenerate recomputes one cached step output and clears its stale bit.
// Every later cached output derived from the replaced one becomes stale
// in turn, so a forecast built over old line items can never survive a
// line item rebuild.
func (p *Planner) regenerate(ctx context.Context, st *domain.WorkflowState, step domain.Step) error {
	switch step {
	case domain.StepPreferences:
		prefs, err := p.prefs.Derive(ctx, st.Params.Advertiser)
		if err != nil {
			return err
		}
		st.Preferences = prefs
	case domain.StepAudience:
		segs, err := p.audience.Generate(ctx, st.Preferences, st.Params)
		if err != nil {
			return err
		}
		if segs == nil {
			segs = []domain.AudienceSegment{}
		}
		st.Segments = segs
	case domain.StepLineItems:
		st.LineItems = p.lineItems.Generate(st.Params, st.Segments)
	case domain.StepForecast:
		f, err := p.forecast.Generate(ctx, st.Params, st.LineItems, st.Preferences)
		if err != nil {
			return err
		}
		st.Forecast = f
	default:
		return nil
	}
	st.Dirty.Remove(step)
	for _, gs := range domain.GeneratorSteps() {
		if gs > step && st.OutputPresent(gs) {
			st.Dirty.Add(gs)
		}
	}
	return nil
}

func (p *Planner) runParsing(ctx context.Context, st *domain.WorkflowState, in port.StepInput) string {
	if in.Params != nil {
		st.Params.FillAbsent(patchToParams(*in.Params))
	}
	if in.Text != "" {
		st.Params.FillAbsent(parseBrief(in.Text))
		if st.Params.Advertiser == "" || st.Params.Budget <= 0 {
			extra, err := assistedParse(ctx, p.gateway, in.Text)
			if err != nil {
				p.logger.Warn("assisted brief parsing skipped", slog.Any("error", err))
			} else {
				st.Params.FillAbsent(extra)
			}
		}
	}
	return fmt.Sprintf("captured campaign brief, %d%% of parameters present", int(st.Params.Completeness()*100))
}

func (p *Planner) runForecastInput(st *domain.WorkflowState, in port.StepInput) (string, error) {
	if in.Params != nil && !in.Params.Empty() {
		if err := p.applyPatch(st, domain.StepForecastInput, *in.Params); err != nil {
			return "", err
		}
	}
	if in.Text != "" {
		st.Params.FillAbsent(parseBrief(in.Text))
	}
	return "forecast inputs confirmed", nil
}

func (p *Planner) describeOutput(st *domain.WorkflowState, step domain.Step) string {
	switch step {
	case domain.StepPreferences:
		return fmt.Sprintf("derived preference profile for %s (confidence %.2f)", st.Params.Advertiser, st.Preferences.Confidence)
	case domain.StepAudience:
		return fmt.Sprintf("generated %d audience segments", len(st.Segments))
	case domain.StepLineItems:
		return fmt.Sprintf("allocated budget across %d line items", len(st.LineItems))
	case domain.StepForecast:
		return fmt.Sprintf("projected %.0f impressions over %d weeks (confidence %.2f)",
			st.Forecast.TotalImpressions, len(st.Forecast.Weeks), st.Forecast.Confidence)
	default:
		return step.String() + " completed"
	}
}

func nextAction(next domain.Step) string {
	switch next {
	case domain.StepPreferences:
		return "derive advertiser preferences"
	case domain.StepAudience:
		return "generate audience segments"
	case domain.StepLineItems:
		return "allocate budget into line items"
	case domain.StepForecastInput:
		return "confirm dates, pacing and remaining inputs"
	case domain.StepForecast:
		return "project weekly delivery"
	default:
		return "review the completed plan"
	}
}

// Edit merges a partial parameter update. Nothing is recomputed here;
// downstream cached outputs are only marked stale.
func (p *Planner) Edit(ctx context.Context, id uuid.UUID, patch port.ParamsPatch) (*domain.WorkflowState, error) {
	var out *domain.WorkflowState
	err := p.withSession(ctx, id, func(_ context.Context, s *domain.Session) error {
		if err := p.applyPatch(&s.State, s.State.Step, patch); err != nil {
			return err
		}
		state := s.State
		out = &state
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// applyPatch validates and applies an overwrite patch, then marks every
// downstream cached output stale starting from the earliest step the
// touched fields feed.
func (p *Planner) applyPatch(st *domain.WorkflowState, step domain.Step, patch port.ParamsPatch) error {
	if patch.Empty() {
		return domain.NewValidationError(step, "no fields to update")
	}
	if patch.Budget != nil && *patch.Budget <= 0 {
		return domain.NewValidationError(step, "budget must be positive")
	}

	var objective domain.Objective
	if patch.Objective != nil {
		var ok bool
		objective, ok = domain.ParseObjective(strings.ToLower(strings.TrimSpace(*patch.Objective)))
		if !ok {
			return domain.NewValidationError(step, fmt.Sprintf("unknown objective %q", *patch.Objective))
		}
	}

	start, end := st.Params.StartDate, st.Params.EndDate
	if patch.StartDate != nil {
		start = patch.StartDate
	}
	if patch.EndDate != nil {
		end = patch.EndDate
	}
	if start != nil && end != nil && end.Before(*start) {
		return domain.NewValidationError(step, "end date precedes start date")
	}

	from := domain.StepComplete
	mark := func(s domain.Step) {
		if s < from {
			from = s
		}
	}

	if patch.Advertiser != nil {
		if strings.TrimSpace(*patch.Advertiser) == "" {
			return domain.NewValidationError(step, "advertiser cannot be empty")
		}
		st.Params.Advertiser = strings.TrimSpace(*patch.Advertiser)
		mark(domain.StepPreferences)
	}
	if patch.Objective != nil {
		st.Params.Objective = objective
		mark(domain.StepAudience)
	}
	if len(patch.Geos) > 0 {
		st.Params.Geos = patch.Geos
		mark(domain.StepAudience)
	}
	if len(patch.Devices) > 0 {
		st.Params.Devices = patch.Devices
		mark(domain.StepAudience)
	}
	if len(patch.ContentTypes) > 0 {
		st.Params.ContentTypes = patch.ContentTypes
		mark(domain.StepAudience)
	}
	if len(patch.Dayparts) > 0 {
		st.Params.Dayparts = patch.Dayparts
		mark(domain.StepAudience)
	}
	if patch.Budget != nil {
		st.Params.Budget = *patch.Budget
		mark(domain.StepLineItems)
	}
	if patch.StartDate != nil {
		st.Params.StartDate = patch.StartDate
		mark(domain.StepForecast)
	}
	if patch.EndDate != nil {
		st.Params.EndDate = patch.EndDate
		mark(domain.StepForecast)
	}
	if patch.Notes != nil {
		st.Params.Notes = *patch.Notes
		mark(domain.StepForecast)
	}

	if from < domain.StepComplete {
		for _, gs := range domain.GeneratorSteps() {
			if gs >= from && st.OutputPresent(gs) {
				st.Dirty.Add(gs)
			}
		}
	}
	return nil
}

// Reforecast recomputes the forecast from the current parameters and
// cached line items, without replaying the earlier steps.
func (p *Planner) Reforecast(ctx context.Context, id uuid.UUID) (*domain.Forecast, error) {
	var out *domain.Forecast
	err := p.withSession(ctx, id, func(ctx context.Context, s *domain.Session) error {
		st := &s.State
		if st.Step < domain.StepForecastInput {
			return domain.NewValidationError(st.Step, "nothing to reforecast before line items exist")
		}
		if missing := st.MissingFor(domain.StepForecast); len(missing) > 0 {
			return domain.NewMissingPrerequisite(domain.StepForecast, missing...)
		}
		if err := p.regenerate(ctx, st, domain.StepForecast); err != nil {
			return domain.FailAt(domain.StepForecast, err)
		}
		if st.Step < domain.StepForecast {
			st.Step = domain.StepForecast
		}
		out = st.Forecast
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reset returns the session to the start of the workflow. Any in-flight
// operation on the same session is cancelled first and its result is
// discarded by the epoch check.
func (p *Planner) Reset(ctx context.Context, id uuid.UUID) (*domain.WorkflowState, error) {
	lock := p.lockFor(id)
	defer p.release(id, lock)
	lock.epoch.Add(1)
	lock.cancelInFlight()

	lock.mu.Lock()
	defer lock.mu.Unlock()

	s, err := p.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.State = domain.NewWorkflowState()
	s.History = nil
	s.UpdatedAt = time.Now().UTC()
	if err = p.sessions.Save(ctx, s); err != nil {
		return nil, err
	}
	p.logger.Info("session reset", slog.String("session_id", id.String()))
	state := s.State
	return &state, nil
}

// Destroy deletes the session record outright. Unlike Reset the session
// does not survive; any in-flight operation is cancelled and its late
// result discarded by the epoch check.
func (p *Planner) Destroy(ctx context.Context, id uuid.UUID) error {
	lock := p.lockFor(id)
	defer p.release(id, lock)
	lock.epoch.Add(1)
	lock.cancelInFlight()

	lock.mu.Lock()
	defer lock.mu.Unlock()

	if err := p.sessions.Delete(ctx, id); err != nil {
		return err
	}
	p.logger.Info("session destroyed", slog.String("session_id", id.String()))
	return nil
}

func patchToParams(patch port.ParamsPatch) domain.CampaignParameters {
	var p domain.CampaignParameters
	if patch.Advertiser != nil {
		p.Advertiser = *patch.Advertiser
	}
	if patch.Budget != nil {
		p.Budget = *patch.Budget
	}
	if patch.Objective != nil {
		if obj, ok := domain.ParseObjective(strings.ToLower(strings.TrimSpace(*patch.Objective))); ok {
			p.Objective = obj
		}
	}
	p.StartDate = patch.StartDate
	p.EndDate = patch.EndDate
	p.Geos = patch.Geos
	p.Devices = patch.Devices
	p.ContentTypes = patch.ContentTypes
	p.Dayparts = patch.Dayparts
	if patch.Notes != nil {
		p.Notes = *patch.Notes
	}
	return p
}
