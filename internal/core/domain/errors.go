package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSessionNotFound means the session identifier is unknown; the
	// caller must re-initialise.
	ErrSessionNotFound = errors.New("session not found")

	// ErrBackendUnavailable means the inference backend was unreachable
	// or timed out and no fallback succeeded in its place.
	ErrBackendUnavailable = errors.New("completion backend unavailable")

	// ErrGenerationFailed means a backend responded but the output was
	// unusable, or the fallback failed after the primary did.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrSessionReset means the session was reset while an operation was
	// in flight; the operation's result was discarded.
	ErrSessionReset = errors.New("session was reset during the operation")
)

// MissingPrerequisiteError reports a refused workflow transition: the
// named step cannot be entered until the listed fields are present.
// Prior progress is always retained.
type MissingPrerequisiteError struct {
	Step    Step
	Missing []string
}

func (e *MissingPrerequisiteError) Error() string {
	return fmt.Sprintf("cannot enter step %s: missing %s", e.Step, strings.Join(e.Missing, ", "))
}

// NewMissingPrerequisite builds the refusal error for step with the
// given missing fields.
func NewMissingPrerequisite(step Step, missing ...string) *MissingPrerequisiteError {
	return &MissingPrerequisiteError{Step: step, Missing: missing}
}

// ValidationError rejects a malformed payload; state is unchanged.
type ValidationError struct {
	Step   Step
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request at step %s: %s", e.Step, e.Reason)
}

// NewValidationError builds a rejection for the given step.
func NewValidationError(step Step, reason string) *ValidationError {
	return &ValidationError{Step: step, Reason: reason}
}

// StepFailure wraps a lower-layer error with the workflow step at which
// it occurred, so every surfaced error can name its step.
type StepFailure struct {
	Step Step
	Err  error
}

func (e *StepFailure) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepFailure) Unwrap() error {
	return e.Err
}

// FailAt annotates err with the step it occurred at. Errors that already
// carry a step pass through unchanged.
func FailAt(step Step, err error) error {
	if err == nil {
		return nil
	}
	var mp *MissingPrerequisiteError
	var ve *ValidationError
	var sf *StepFailure
	if errors.As(err, &mp) || errors.As(err, &ve) || errors.As(err, &sf) {
		return err
	}
	return &StepFailure{Step: step, Err: err}
}
