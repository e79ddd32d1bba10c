package core

import (
	"errors"
	"fmt"
)

// ErrInvariantViolation marks caller bugs: inputs that should have been
// impossible with valid upstream validation, e.g. a nil rule slice element
// reaching the engine. These abort the whole call rather than silently
// producing wrong alerts.
var ErrInvariantViolation = errors.New("invariant violation")

// ConfigurationError reports a detection rule that fails its invariants at
// load or validation time. The rule is excluded from the active set for
// that evaluation pass; evaluation continues for remaining rules.
type ConfigurationError struct {
	RuleID   string
	RuleName string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	name := e.RuleName
	if name == "" {
		name = e.RuleID
	}
	if name == "" {
		return fmt.Sprintf("invalid rule configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid configuration for rule %q: %s", name, e.Reason)
}

// MalformedEventError reports an event missing a field a rule needs. The
// event is skipped for that rule only.
type MalformedEventError struct {
	EventID string
	RuleID  string
	Field   string
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("event %s missing field %q required by rule %s", e.EventID, e.Field, e.RuleID)
}

// Diagnostic is a non-fatal, per-item failure reported alongside normal
// engine output. Per-item failures never abort the batch.
type Diagnostic struct {
	RuleID  string `json:"rule_id,omitempty"`
	EventID string `json:"event_id,omitempty"`
	Message string `json:"message"`
}

// NewDiagnostic builds a Diagnostic from an error, preserving rule and
// event attribution where the error carries it.
func NewDiagnostic(err error) Diagnostic {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return Diagnostic{RuleID: cfgErr.RuleID, Message: err.Error()}
	}
	var evtErr *MalformedEventError
	if errors.As(err, &evtErr) {
		return Diagnostic{RuleID: evtErr.RuleID, EventID: evtErr.EventID, Message: err.Error()}
	}
	return Diagnostic{Message: err.Error()}
}
