package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/domain"
)

// SessionRepository is the outbound port for session persistence: one
// record per session keyed by identifier, holding the serialized
// workflow state and the truncated chat history. Implementations must be
// safe for concurrent use; higher layers serialise operations on the
// same session.
type SessionRepository interface {
	// Create stores a new session. The session ID must not exist yet.
	Create(ctx context.Context, s *domain.Session) error
	// Get returns the session or domain.ErrSessionNotFound.
	Get(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	// Save overwrites an existing session's state and history.
	Save(ctx context.Context, s *domain.Session) error
	// Delete removes the session record.
	Delete(ctx context.Context, id uuid.UUID) error
}
