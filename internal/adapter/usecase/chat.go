package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/domain"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/port"
)

const degradedReply = "I'm having trouble reaching the planning models right now. Your campaign state is safe; please try again in a moment."

const conversationSystemPrompt = `You are Peggy, a CTV campaign planning assistant.
You help advertisers plan campaigns: budgets, audiences, line items and delivery forecasts.
Be concise and concrete. Never invent campaign state; the current state is provided below.`

// Chat routes one free-form message. Workflow refusals become friendly
// replies rather than errors: the conversation absorbs them and the
// session history always records both sides of the turn.
func (p *Planner) Chat(ctx context.Context, id uuid.UUID, message string) (*port.ChatResult, error) {
	var res port.ChatResult
	err := p.withSession(ctx, id, func(ctx context.Context, s *domain.Session) error {
		s.Append(domain.ChatRoleUser, message)

		intent := p.router.Classify(ctx, message)
		res.Intent = intent

		switch intent {
		case domain.IntentReset:
			// Inline reset: the session lock is already held, so no
			// in-flight operation can exist that an epoch bump would
			// need to cancel.
			s.State = domain.NewWorkflowState()
			s.History = nil
			res.Reply = "Done, I've cleared the campaign and we're starting fresh. What would you like to plan?"
			state := s.State
			res.State = &state

		case domain.IntentWorkflowEdit:
			res.Reply = p.chatEdit(s, message)
			state := s.State
			res.State = &state

		case domain.IntentWorkflowAdvance:
			res.Reply = p.chatAdvance(ctx, s, message)
			state := s.State
			res.State = &state

		default:
			res.Reply = p.chatConverse(ctx, s)
		}

		s.Append(domain.ChatRoleAssistant, res.Reply)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (p *Planner) chatEdit(s *domain.Session, message string) string {
	patch := p.router.ExtractPatch(message)
	if patch.Empty() {
		return "I can change the budget, objective or flight dates for you. Which value should I update, and to what?"
	}
	if err := p.applyPatch(&s.State, s.State.Step, patch); err != nil {
		return friendlyError(err)
	}
	reply := "Updated."
	if patch.Budget != nil {
		reply = fmt.Sprintf("Budget updated to $%.0f.", *patch.Budget)
	}
	if dirty := s.State.Dirty.Steps(); len(dirty) > 0 {
		names := make([]string, 0, len(dirty))
		for _, d := range dirty {
			names = append(names, d.String())
		}
		reply += fmt.Sprintf(" The %s output will be recomputed on the next advance.", strings.Join(names, ", "))
	}
	return reply
}

func (p *Planner) chatAdvance(ctx context.Context, s *domain.Session, message string) string {
	// Workflow failures must not leave a half-advanced state behind the
	// friendly reply, so the state is restored on error.
	before := s.State
	r, err := p.processLocked(ctx, s, port.StepInput{Text: message})
	if err != nil {
		s.State = before
		return friendlyError(err)
	}
	return fmt.Sprintf("%s. Next: %s.", capitalize(r.Reasoning), r.Action)
}

func (p *Planner) chatConverse(ctx context.Context, s *domain.Session) string {
	msgs := []port.Message{
		{Role: port.RoleSystem, Content: conversationSystemPrompt + "\n\n" + stateSummary(&s.State)},
	}
	for _, turn := range s.History {
		role := port.RoleUser
		if turn.Role == domain.ChatRoleAssistant {
			role = port.RoleAssistant
		}
		msgs = append(msgs, port.Message{Role: role, Content: turn.Text})
	}

	reply, err := p.gatewayComplete(ctx, msgs)
	if err != nil {
		p.logger.Warn("conversation degraded", slog.Any("error", err))
		return degradedReply
	}
	return strings.TrimSpace(reply)
}

func (p *Planner) gatewayComplete(ctx context.Context, msgs []port.Message) (string, error) {
	if p.gateway == nil {
		return "", domain.ErrBackendUnavailable
	}
	return p.gateway.Complete(ctx, port.ModelConversation, msgs, port.CallParams{})
}

func stateSummary(st *domain.WorkflowState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current step: %s (%d%% complete).", st.Step, st.Progress())
	if st.Params.Advertiser != "" {
		fmt.Fprintf(&b, " Advertiser: %s.", st.Params.Advertiser)
	}
	if st.Params.Budget > 0 {
		fmt.Fprintf(&b, " Budget: $%.0f.", st.Params.Budget)
	}
	if st.Params.Objective != "" {
		fmt.Fprintf(&b, " Objective: %s.", st.Params.Objective)
	}
	if len(st.Segments) > 0 {
		fmt.Fprintf(&b, " %d audience segments generated.", len(st.Segments))
	}
	if st.Forecast != nil {
		fmt.Fprintf(&b, " Forecast: %.0f impressions, confidence %.2f.", st.Forecast.TotalImpressions, st.Forecast.Confidence)
	}
	return b.String()
}

func friendlyError(err error) string {
	var mp *domain.MissingPrerequisiteError
	if errors.As(err, &mp) {
		return fmt.Sprintf("I can't move to %s yet, I still need: %s. Your progress so far is saved.",
			mp.Step, strings.Join(mp.Missing, ", "))
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return fmt.Sprintf("That didn't work: %s.", ve.Reason)
	}
	if errors.Is(err, domain.ErrBackendUnavailable) || errors.Is(err, domain.ErrGenerationFailed) {
		return degradedReply
	}
	return "Something went wrong handling that. Your campaign state is unchanged."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
