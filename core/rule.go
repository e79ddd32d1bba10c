package core

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// RuleType distinguishes the evaluation strategy of a detection rule
type RuleType string

const (
	// RuleTypeThreshold fires when N qualifying events occur within a
	// sliding time window
	RuleTypeThreshold RuleType = "threshold"
	// RuleTypePattern fires on a single event matching a static predicate
	RuleTypePattern RuleType = "pattern"
	// RuleTypeAnomaly is reserved for future statistical detection.
	// Rules of this type validate but never match.
	RuleTypeAnomaly RuleType = "anomaly"
)

// Operator identifies the comparison a pattern condition applies
type Operator string

const (
	OpEquals   Operator = "equals"
	OpContains Operator = "contains"
	OpRegex    Operator = "regex"
)

// EventTypeAny matches every event type when used as a rule's filter.
const EventTypeAny = "any"

// Condition is the declarative predicate of a pattern rule: one event
// field compared against a value. The operator set is closed so pattern
// evaluation stays statically checkable.
type Condition struct {
	Field    string   `json:"field" yaml:"field" validate:"required"`
	Operator Operator `json:"operator" yaml:"operator" validate:"required,oneof=equals contains regex"`
	Value    string   `json:"value" yaml:"value" validate:"required"`
}

// DetectionRule is a declarative detection definition. Rules are
// configuration, not code: analysts create and tune them, the engine only
// reads them.
type DetectionRule struct {
	ID              string     `json:"id" yaml:"id"`
	Name            string     `json:"name" yaml:"name" validate:"required"`
	Description     string     `json:"description,omitempty" yaml:"description,omitempty"`
	RuleType        RuleType   `json:"rule_type" yaml:"rule_type" validate:"required,oneof=threshold pattern anomaly"`
	Severity        Severity   `json:"severity" yaml:"severity" validate:"required,oneof=info low medium high critical"`
	Enabled         bool       `json:"enabled" yaml:"enabled"`
	EventTypeFilter string     `json:"event_type_filter,omitempty" yaml:"event_type_filter,omitempty"`
	Condition       *Condition `json:"condition_logic,omitempty" yaml:"condition_logic,omitempty"`

	// Threshold rule parameters
	ThresholdCount    int    `json:"threshold_count,omitempty" yaml:"threshold_count,omitempty"`
	TimeWindowSeconds int    `json:"time_window_seconds,omitempty" yaml:"time_window_seconds,omitempty"`
	GroupByField      string `json:"group_by_field,omitempty" yaml:"group_by_field,omitempty"`

	// MITRE ATT&CK mapping, copied verbatim onto alerts
	MitreTactic      string `json:"mitre_tactic,omitempty" yaml:"mitre_tactic,omitempty"`
	MitreTechnique   string `json:"mitre_technique,omitempty" yaml:"mitre_technique,omitempty"`
	MitreTechniqueID string `json:"mitre_technique_id,omitempty" yaml:"mitre_technique_id,omitempty"`

	Tags      []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Author    string    `json:"author,omitempty" yaml:"author,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

var ruleValidator = validator.New()

// Validate checks the rule against its structural invariants. Threshold
// rules require threshold_count >= 1 and time_window_seconds > 0; pattern
// rules require a condition. A failing rule is excluded from the active set
// for the evaluation pass, it does not abort evaluation of other rules.
func (r *DetectionRule) Validate() error {
	if r == nil {
		return &ConfigurationError{Reason: "rule is nil"}
	}
	if err := ruleValidator.Struct(r); err != nil {
		return &ConfigurationError{RuleID: r.ID, RuleName: r.Name, Reason: err.Error()}
	}
	switch r.RuleType {
	case RuleTypeThreshold:
		if r.ThresholdCount < 1 {
			return &ConfigurationError{RuleID: r.ID, RuleName: r.Name,
				Reason: fmt.Sprintf("threshold rule requires threshold_count >= 1, got %d", r.ThresholdCount)}
		}
		if r.TimeWindowSeconds <= 0 {
			return &ConfigurationError{RuleID: r.ID, RuleName: r.Name,
				Reason: fmt.Sprintf("threshold rule requires time_window_seconds > 0, got %d", r.TimeWindowSeconds)}
		}
	case RuleTypePattern:
		if r.Condition == nil {
			return &ConfigurationError{RuleID: r.ID, RuleName: r.Name,
				Reason: "pattern rule requires condition_logic"}
		}
	}
	return nil
}

// MatchesEventType reports whether the rule's event type filter admits the
// given event type. An empty filter or "any" admits everything.
func (r *DetectionRule) MatchesEventType(eventType string) bool {
	return r.EventTypeFilter == "" || r.EventTypeFilter == EventTypeAny || r.EventTypeFilter == eventType
}

// Window returns the rule's sliding time window as a duration
func (r *DetectionRule) Window() time.Duration {
	return time.Duration(r.TimeWindowSeconds) * time.Second
}
