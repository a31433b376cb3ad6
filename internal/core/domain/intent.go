package domain

// Intent classifies what an incoming chat message asks the system to do.
type Intent string

const (
	IntentConversation    Intent = "conversation"
	IntentWorkflowAdvance Intent = "workflow_advance"
	IntentWorkflowEdit    Intent = "workflow_edit"
	IntentReset           Intent = "reset"
)
