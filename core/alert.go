package core

import (
	"time"
)

// AlertStatus represents the triage status of an alert
type AlertStatus string

const (
	AlertStatusOpen          AlertStatus = "open"
	AlertStatusInvestigating AlertStatus = "investigating"
	AlertStatusResolved      AlertStatus = "resolved"
	AlertStatusFalsePositive AlertStatus = "false_positive"
)

// String returns the string representation
func (s AlertStatus) String() string {
	return string(s)
}

// IsValid checks if the status is valid
func (s AlertStatus) IsValid() bool {
	switch s {
	case AlertStatusOpen, AlertStatusInvestigating, AlertStatusResolved, AlertStatusFalsePositive:
		return true
	default:
		return false
	}
}

// IOCIndicators holds deduplicated indicators of compromise extracted from
// the events behind an alert.
type IOCIndicators struct {
	SourceIPs []string `json:"source_ips,omitempty"`
	DestIPs   []string `json:"dest_ips,omitempty"`
	DestPorts []int    `json:"dest_ports,omitempty"`
	Hostnames []string `json:"hostnames,omitempty"`
	Processes []string `json:"processes,omitempty"`
}

// Alert is the output of the detection engine: one rule firing against one
// event (pattern rules) or one qualifying window of events (threshold
// rules). Alerts are created exclusively by the detection engine and
// mutated afterward only by analyst triage.
type Alert struct {
	ID          string      `json:"id"`
	RuleID      string      `json:"rule_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Severity    Severity    `json:"severity"`
	Status      AlertStatus `json:"status"`

	SourceIP string `json:"source_ip,omitempty"`
	DestIP   string `json:"dest_ip,omitempty"`

	MitreTactic      string `json:"mitre_tactic,omitempty"`
	MitreTechnique   string `json:"mitre_technique,omitempty"`
	MitreTechniqueID string `json:"mitre_technique_id,omitempty"`

	// TriggeringEventIDs lists the events that caused the fire, oldest to
	// newest. A pattern alert references exactly one event.
	TriggeringEventIDs []string      `json:"triggering_event_ids"`
	EventCount         int           `json:"event_count"`
	IOCIndicators      IOCIndicators `json:"ioc_indicators"`

	// IncidentID links the alert to its open incident once the correlation
	// engine has attached it. An alert belongs to at most one open incident.
	IncidentID string `json:"incident_id,omitempty"`

	// CreatedAt is the timestamp of the newest triggering event, not wall
	// clock time, so replayed batches produce identical output.
	CreatedAt time.Time `json:"created_at"`

	FalsePositive       bool   `json:"is_false_positive"`
	FalsePositiveReason string `json:"false_positive_reason,omitempty"`
}
