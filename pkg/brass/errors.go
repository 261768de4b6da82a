package brass

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEvent is matched by events the current state does not accept.
	ErrInvalidEvent = errors.New("event not accepted in current state")
	// ErrRuleViolation is matched by events rejected by a game rule.
	ErrRuleViolation = errors.New("rule violation")
)

// InvalidEventError reports an event with no transition from the current state.
type InvalidEventError struct {
	State StatePath
	Event EventType
}

func (e *InvalidEventError) Error() string {
	return fmt.Sprintf("%s not accepted in state %s", e.Event, e.State)
}

func (e *InvalidEventError) Unwrap() error { return ErrInvalidEvent }

// RuleError describes why a guard rejected an event.
type RuleError struct {
	Event   EventType
	Message string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Event, e.Message)
}

func (e *RuleError) Unwrap() error { return ErrRuleViolation }

func reject(ev EventType, format string, args ...any) error {
	return &RuleError{Event: ev, Message: fmt.Sprintf(format, args...)}
}
