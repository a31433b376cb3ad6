package port

import "context"

// ModelClass is a symbolic tag mapped to a concrete backend and model by
// configuration. Callers pick a class, never a backend.
type ModelClass string

const (
	ModelConversation   ModelClass = "conversation"
	ModelParsing        ModelClass = "parsing"
	ModelGeneration     ModelClass = "generation"
	ModelForecastAssist ModelClass = "forecast-assist"
)

// MessageRole tags a prompt message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one role-tagged prompt message.
type Message struct {
	Role    MessageRole
	Content string
}

// CallParams optionally overrides the route defaults for one call.
// Zero values keep the configured defaults.
type CallParams struct {
	Temperature float64
	MaxTokens   int
}

// CompletionGateway is the uniform interface to the text-completion
// backends. Calls fail with domain.ErrBackendUnavailable when the
// backend is unreachable or past its deadline, and with
// domain.ErrGenerationFailed when the configured fallback also fails or
// the output is unusable.
type CompletionGateway interface {
	Complete(ctx context.Context, class ModelClass, msgs []Message, params CallParams) (string, error)
}
