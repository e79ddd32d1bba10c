package core

import (
	"time"
)

// IncidentStatus represents the lifecycle state of an incident
type IncidentStatus string

const (
	IncidentStatusOpen          IncidentStatus = "open"
	IncidentStatusInvestigating IncidentStatus = "investigating"
	IncidentStatusResolved      IncidentStatus = "resolved"
)

// String returns the string representation
func (s IncidentStatus) String() string {
	return string(s)
}

// IsValid checks if the status is valid
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusOpen, IncidentStatusInvestigating, IncidentStatusResolved:
		return true
	default:
		return false
	}
}

// Priority buckets an incident for analyst queue ordering
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// IOCSummary aggregates deduplicated indicators across every alert in an
// incident. It is derived from the constituent alerts, never stored input.
type IOCSummary struct {
	IPAddresses []string `json:"ip_addresses,omitempty"`
	Ports       []int    `json:"ports,omitempty"`
	Hostnames   []string `json:"hostnames,omitempty"`
	Processes   []string `json:"processes,omitempty"`
}

// Incident aggregates two or more related alerts into a single analyst
// workload item with kill-chain context. Incidents are created and updated
// by the correlation engine; the caller owns persistence and resolution.
type Incident struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Severity    Severity       `json:"severity"`
	Status      IncidentStatus `json:"status"`
	Priority    Priority       `json:"priority"`
	Category    string         `json:"category,omitempty"`

	// CorrelationKey is the grouping attribute (source IP) the incident
	// accumulates alerts under. "unknown" when alerts carried no source IP.
	CorrelationKey string `json:"correlation_key"`
	// Unattributed marks incidents built from the fallback key so UIs can
	// distinguish genuine campaigns from grouping artifacts.
	Unattributed bool `json:"unattributed,omitempty"`

	AlertIDs   []string `json:"alert_ids"`
	AlertCount int      `json:"alert_count"`
	EventCount int      `json:"event_count"`

	AffectedHosts   []string `json:"affected_hosts,omitempty"`
	MitreTactics    []string `json:"mitre_tactics,omitempty"`
	MitreTechniques []string `json:"mitre_techniques,omitempty"`

	KillChainPhase KillChainPhase `json:"kill_chain_phase"`
	IOCSummary     IOCSummary     `json:"ioc_summary"`

	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`

	AssignedTo string    `json:"assigned_to,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	ResolvedAt time.Time `json:"resolved_at,omitempty"`
}

// IsOpen reports whether the incident still accepts new alerts. Resolved
// incidents never reopen: a later alert with the same correlation key
// starts a new incident.
func (i *Incident) IsOpen() bool {
	return i.Status == IncidentStatusOpen || i.Status == IncidentStatusInvestigating
}

// HasHost reports whether the given IP or hostname is among the incident's
// affected hosts.
func (i *Incident) HasHost(host string) bool {
	for _, h := range i.AffectedHosts {
		if h == host {
			return true
		}
	}
	return false
}

// TimelineEntry is a derived, read-only row in an incident's chronological
// reconstruction: one row per underlying event or alert. Entries are
// re-derivable from Event and Alert records at any time.
type TimelineEntry struct {
	Timestamp        time.Time `json:"timestamp"`
	EntryType        string    `json:"type"` // "event" or "alert"
	EventType        string    `json:"event_type"`
	Severity         Severity  `json:"severity,omitempty"`
	Description      string    `json:"description"`
	SourceIP         string    `json:"source_ip,omitempty"`
	DestIP           string    `json:"dest_ip,omitempty"`
	DestPort         int       `json:"dest_port,omitempty"`
	MitreTactic      string    `json:"mitre_tactic,omitempty"`
	MitreTechnique   string    `json:"mitre_technique,omitempty"`
	MitreTechniqueID string    `json:"mitre_technique_id,omitempty"`
}
