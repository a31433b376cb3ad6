package usecase

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/domain"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/port"
)

// IntentRouter classifies chat messages. Deterministic trigger rules run
// first so the common commands never depend on model availability; only
// unmatched messages go to the classifier model, and a classifier
// failure degrades to plain conversation rather than surfacing an error.
type IntentRouter struct {
	gateway port.CompletionGateway
	logger  *slog.Logger
}

// NewIntentRouter builds the router. gateway may be nil; classification
// is then rules-only.
func NewIntentRouter(gateway port.CompletionGateway, logger *slog.Logger) *IntentRouter {
	return &IntentRouter{gateway: gateway, logger: logger}
}

// budgetPlanRe matches a plan command carrying a money amount, either
// dollar-prefixed or with a magnitude suffix ("plan a $250K campaign",
// "plan a 2m launch"). A bare number after "plan" is not enough, so
// "what's the plan for 2025?" falls through to the classifier.
var budgetPlanRe = regexp.MustCompile(`(?i)\bplan\b.*?(?:\$\s*\d|\d[\d,]*(?:\.\d+)?\s*[kmb]\b)`)

var resetPhrases = []string{"start over", "start again", "start from scratch", "scrap this", "reset the session"}

var editPhrases = []string{
	"change the", "change my", "update the", "set the budget", "set budget",
	"make the budget", "increase the budget", "decrease the budget",
	"raise the budget", "lower the budget", "move the dates", "instead of",
}

var advancePhrases = []string{
	"plan a campaign", "next step", "go ahead", "keep going", "move on",
	"run the forecast", "generate the", "build the plan", "let's proceed",
}

// single-word commands matched only as the whole (trimmed) message, so
// "please continue with caution" style sentences go to the phrase rules
// and plain "continue" does not need them.
var resetWords = []string{"reset", "restart"}
var advanceWords = []string{"continue", "proceed", "next", "go", "advance", "yes"}

// Classify maps a message to an intent.
func (r *IntentRouter) Classify(ctx context.Context, message string) domain.Intent {
	lower := strings.ToLower(strings.TrimSpace(message))
	trimmed := strings.Trim(lower, " .!?")

	for _, w := range resetWords {
		if trimmed == w {
			return domain.IntentReset
		}
	}
	for _, p := range resetPhrases {
		if strings.Contains(lower, p) {
			return domain.IntentReset
		}
	}
	for _, p := range editPhrases {
		if strings.Contains(lower, p) {
			return domain.IntentWorkflowEdit
		}
	}
	for _, w := range advanceWords {
		if trimmed == w {
			return domain.IntentWorkflowAdvance
		}
	}
	for _, p := range advancePhrases {
		if strings.Contains(lower, p) {
			return domain.IntentWorkflowAdvance
		}
	}
	if budgetPlanRe.MatchString(message) {
		return domain.IntentWorkflowAdvance
	}

	return r.classifyWithModel(ctx, message)
}

const classifyPrompt = `Classify the user's message into exactly one of:
conversation, workflow_advance, workflow_edit, reset.
workflow_advance means the user wants the campaign plan to move forward.
workflow_edit means the user wants to change an already captured parameter.
reset means the user wants to discard the plan and start over.
Anything else is conversation. Respond with the single label only.

Message: `

func (r *IntentRouter) classifyWithModel(ctx context.Context, message string) domain.Intent {
	if r.gateway == nil {
		return domain.IntentConversation
	}
	resp, err := r.gateway.Complete(ctx, port.ModelParsing, []port.Message{
		{Role: port.RoleSystem, Content: "You are an intent classifier. Output one label only."},
		{Role: port.RoleUser, Content: classifyPrompt + message},
	}, port.CallParams{MaxTokens: 8})
	if err != nil {
		r.logger.Warn("intent classification degraded to conversation", slog.Any("error", err))
		return domain.IntentConversation
	}
	switch {
	case strings.Contains(resp, "workflow_advance"):
		return domain.IntentWorkflowAdvance
	case strings.Contains(resp, "workflow_edit"):
		return domain.IntentWorkflowEdit
	case strings.Contains(resp, "reset"):
		return domain.IntentReset
	default:
		return domain.IntentConversation
	}
}

// ExtractPatch pulls an explicit parameter change out of an edit-intent
// message. An empty patch means the message named no concrete change.
func (r *IntentRouter) ExtractPatch(message string) port.ParamsPatch {
	var patch port.ParamsPatch

	if amount, ok := extractBudget(message); ok {
		patch.Budget = &amount
	}

	lower := strings.ToLower(message)
	for _, ok := range objectiveKeywords {
		if strings.Contains(lower, ok.keyword) {
			obj := string(ok.objective)
			patch.Objective = &obj
			break
		}
	}

	if parsed := parseBrief(message); parsed.StartDate != nil && parsed.EndDate != nil {
		patch.StartDate = parsed.StartDate
		patch.EndDate = parsed.EndDate
	}
	return patch
}
