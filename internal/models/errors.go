package models

import (
	"errors"
	"fmt"
)

// Application-wide standard errors
var (
	// Resource lookups
	ErrNotFound         = errors.New("resource not found")
	ErrTemplateNotFound = errors.New("story template not found")
	ErrArcNotFound      = errors.New("story arc not found")
	ErrEpisodeNotFound  = errors.New("episode not found")

	// Arc lifecycle
	ErrActiveArcExists = errors.New("user already has an active story arc")

	// Terminal generation failure: every provider in a chain failed.
	// Individual provider failures never surface past their chain.
	ErrGenerationFailed = errors.New("episode generation failed")
)

// StateReason is a machine-readable reason code carried by StateError so
// the route layer can translate rejections without string matching.
type StateReason string

const (
	ReasonArcNotActive    StateReason = "arc_not_active"
	ReasonArcCompleted    StateReason = "arc_completed"
	ReasonDayOutOfRange   StateReason = "day_out_of_range"
	ReasonQuotaExceeded   StateReason = "daily_quota_exceeded"
	ReasonActiveArcExists StateReason = "active_arc_exists"
)

// StateError rejects an operation because of the arc's progression state
// or the user's quota, never because of a provider failure.
type StateError struct {
	Reason  StateReason
	Message string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state error (%s): %s", e.Reason, e.Message)
}

// NewStateError builds a StateError with a formatted message.
func NewStateError(reason StateReason, format string, args ...interface{}) *StateError {
	return &StateError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// AsStateError unwraps err into a *StateError when possible.
func AsStateError(err error) (*StateError, bool) {
	var se *StateError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
