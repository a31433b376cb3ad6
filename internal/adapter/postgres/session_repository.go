package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/domain"
)

// SessionRepository implements port.SessionRepository using pgxpool.
// Workflow state and chat history are stored as jsonb columns so the
// schema survives state shape evolution.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository returns a new repository instance.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create stores a new session row.
func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	state, history, err := marshalSession(s)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO sessions (id, state, history, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`, s.ID, state, history, s.CreatedAt, s.UpdatedAt)
	return err
}

// Get loads a session by id or returns domain.ErrSessionNotFound.
func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var (
		state   []byte
		history []byte
		s       domain.Session
	)
	err := r.pool.QueryRow(ctx, `SELECT state, history, created_at, updated_at
FROM sessions WHERE id = $1`, id).Scan(&state, &history, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	s.ID = id
	if err = json.Unmarshal(state, &s.State); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}
	if len(history) > 0 {
		if err = json.Unmarshal(history, &s.History); err != nil {
			return nil, fmt.Errorf("decode session history: %w", err)
		}
	}
	return &s, nil
}

// Save overwrites an existing session's state and history.
func (r *SessionRepository) Save(ctx context.Context, s *domain.Session) error {
	state, history, err := marshalSession(s)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE sessions SET state = $2, history = $3, updated_at = now()
WHERE id = $1`, s.ID, state, history)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Delete removes the session row. Deleting an unknown session is a no-op.
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func marshalSession(s *domain.Session) (state, history []byte, err error) {
	state, err = json.Marshal(s.State)
	if err != nil {
		return nil, nil, fmt.Errorf("encode session state: %w", err)
	}
	history, err = json.Marshal(s.History)
	if err != nil {
		return nil, nil, fmt.Errorf("encode session history: %w", err)
	}
	return state, history, nil
}
