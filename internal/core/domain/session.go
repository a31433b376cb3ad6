package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatRole tags one side of the conversation.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatTurn is one message in a session's conversation history.
type ChatTurn struct {
	Role ChatRole  `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Session is the per-conversation unit of persistence: its identifier,
// the chat history and the workflow state. Created on first contact,
// its workflow and history are discarded on explicit reset.
type Session struct {
	ID        uuid.UUID     `json:"id"`
	History   []ChatTurn    `json:"history,omitempty"`
	State     WorkflowState `json:"state"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewSession returns a fresh session at the start of the workflow.
func NewSession() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		State:     NewWorkflowState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append records a conversation turn.
func (s *Session) Append(role ChatRole, text string) {
	s.History = append(s.History, ChatTurn{Role: role, Text: text, At: time.Now().UTC()})
}

// TruncateHistory keeps only the most recent limit turns. Older turns
// drop out of context; they are not required to be retained in storage.
func (s *Session) TruncateHistory(limit int) {
	if limit > 0 && len(s.History) > limit {
		s.History = s.History[len(s.History)-limit:]
	}
}
