// Package correlate implements the SOCForge correlation engine: grouping
// related alerts into multi-stage incidents with kill-chain context, and
// deriving incident timelines on demand.
package correlate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"socforge/core"
	"socforge/metrics"
)

// FallbackKey groups alerts that carry no source IP. Incidents built from
// it are flagged unattributed rather than dropped.
const FallbackKey = "unknown"

// defaultMinAlerts is the number of related alerts a correlation key must
// accumulate before a new incident is created.
const defaultMinAlerts = 2

// Engine groups alerts into incidents by source IP. The engine holds no
// state between calls: the caller passes the open incident collection in
// and persists the returned updates. Callers running concurrent cycles
// must serialize access per correlation key; the engine assumes at most
// one Correlate call touches a given incident's data at a time.
type Engine struct {
	logger    *zap.SugaredLogger
	newID     func() string
	minAlerts int
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithIDGenerator overrides incident ID generation for deterministic output
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// WithMinAlerts overrides the incident creation threshold
func WithMinAlerts(n int) Option {
	return func(e *Engine) { e.minAlerts = n }
}

// NewEngine creates a correlation engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:    zap.NewNop().Sugar(),
		newID:     uuid.NewString,
		minAlerts: defaultMinAlerts,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result holds the incidents a correlation pass touched. Updated incidents
// are the same objects the caller passed in, mutated in place; the caller
// persists both lists.
type Result struct {
	Created []*core.Incident `json:"created"`
	Updated []*core.Incident `json:"updated"`
}

// Correlate groups the alert batch by source IP and merges each group into
// an existing open incident for that key, or creates a new incident once a
// key has accumulated at least two related alerts. A lone alert with no
// matching open incident stays unattached until a second related alert
// arrives. Alerts without a source IP correlate under the fallback key and
// their incidents are flagged unattributed.
func (e *Engine) Correlate(alerts []*core.Alert, openIncidents []*core.Incident) (*Result, error) {
	timer := prometheus.NewTimer(metrics.CorrelationDuration)
	defer timer.ObserveDuration()

	for i, a := range alerts {
		if a == nil {
			return nil, fmt.Errorf("%w: nil alert at index %d", core.ErrInvariantViolation, i)
		}
	}
	for i, inc := range openIncidents {
		if inc == nil {
			return nil, fmt.Errorf("%w: nil incident at index %d", core.ErrInvariantViolation, i)
		}
	}

	groups := make(map[string][]*core.Alert)
	for _, alert := range alerts {
		if alert.IncidentID != "" {
			// Already attached to an incident by a previous pass.
			continue
		}
		key := alert.SourceIP
		if key == "" {
			key = FallbackKey
		}
		groups[key] = append(groups[key], alert)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := &Result{}
	updated := make(map[string]bool)

	for _, key := range keys {
		group := groups[key]

		if inc := findOpenIncident(openIncidents, key); inc != nil {
			e.merge(inc, group)
			if !updated[inc.ID] {
				updated[inc.ID] = true
				result.Updated = append(result.Updated, inc)
			}
			continue
		}

		if len(group) >= e.minAlerts {
			inc := e.newIncident(key, group)
			result.Created = append(result.Created, inc)
			// Later groups in this same pass can merge into it.
			openIncidents = append(openIncidents, inc)
			continue
		}

		e.logger.Debugf("correlation key %s has %d alert(s), below incident threshold", key, len(group))
	}

	metrics.IncidentsCreated.Add(float64(len(result.Created)))
	metrics.IncidentsUpdated.Add(float64(len(result.Updated)))

	return result, nil
}

// findOpenIncident returns the first open incident whose correlation key or
// affected hosts match the given key. Resolved incidents never match: a
// new alert with the same key starts a new incident.
func findOpenIncident(incidents []*core.Incident, key string) *core.Incident {
	for _, inc := range incidents {
		if !inc.IsOpen() {
			continue
		}
		if inc.CorrelationKey == key || inc.HasHost(key) {
			return inc
		}
	}
	return nil
}

// merge folds a group of new alerts into an existing open incident,
// recomputing severity, kill-chain phase and the derived aggregates.
func (e *Engine) merge(inc *core.Incident, group []*core.Alert) {
	attached := make(map[string]bool, len(inc.AlertIDs))
	for _, id := range inc.AlertIDs {
		attached[id] = true
	}

	for _, alert := range group {
		if attached[alert.ID] {
			continue
		}
		attached[alert.ID] = true
		alert.IncidentID = inc.ID
		inc.AlertIDs = append(inc.AlertIDs, alert.ID)
		inc.EventCount += alert.EventCount
		inc.Severity = core.MaxSeverity(inc.Severity, alert.Severity)

		inc.MitreTactics = unionStrings(inc.MitreTactics, alertTactics(alert))
		inc.MitreTechniques = unionStrings(inc.MitreTechniques, alertTechniques(alert))
		inc.AffectedHosts = unionStrings(inc.AffectedHosts, alertHosts(alert))
		mergeIOCSummary(&inc.IOCSummary, alert.IOCIndicators)

		if inc.FirstSeen.IsZero() || alert.CreatedAt.Before(inc.FirstSeen) {
			inc.FirstSeen = alert.CreatedAt
		}
		if alert.CreatedAt.After(inc.LastSeen) {
			inc.LastSeen = alert.CreatedAt
		}
	}

	inc.AlertCount = len(inc.AlertIDs)
	// Attack progression is monotonic: the reported phase moves forward as
	// new tactics appear but never backward.
	inc.KillChainPhase = core.FurthestPhase(inc.KillChainPhase, DerivePhase(inc.MitreTactics))
	inc.UpdatedAt = inc.LastSeen

	e.logger.Debugw("merged alerts into incident",
		"incident_id", inc.ID, "correlation_key", inc.CorrelationKey,
		"alert_count", inc.AlertCount, "kill_chain_phase", inc.KillChainPhase)
}

// newIncident seeds an incident from a correlation group of related alerts.
func (e *Engine) newIncident(key string, group []*core.Alert) *core.Incident {
	inc := &core.Incident{
		ID:             e.newID(),
		Title:          fmt.Sprintf("Correlated Attack Activity from %s", key),
		Severity:       maxSeverity(group),
		Status:         core.IncidentStatusOpen,
		Priority:       derivePriority(group),
		Category:       deriveCategory(group),
		CorrelationKey: key,
		Unattributed:   key == FallbackKey,
	}

	names := make([]string, 0, len(group))
	for _, alert := range group {
		names = append(names, alert.Title)
		alert.IncidentID = inc.ID
		inc.AlertIDs = append(inc.AlertIDs, alert.ID)
		inc.EventCount += alert.EventCount

		inc.MitreTactics = unionStrings(inc.MitreTactics, alertTactics(alert))
		inc.MitreTechniques = unionStrings(inc.MitreTechniques, alertTechniques(alert))
		inc.AffectedHosts = unionStrings(inc.AffectedHosts, alertHosts(alert))
		mergeIOCSummary(&inc.IOCSummary, alert.IOCIndicators)

		if inc.FirstSeen.IsZero() || alert.CreatedAt.Before(inc.FirstSeen) {
			inc.FirstSeen = alert.CreatedAt
		}
		if alert.CreatedAt.After(inc.LastSeen) {
			inc.LastSeen = alert.CreatedAt
		}
	}

	if key != FallbackKey {
		inc.AffectedHosts = unionStrings(inc.AffectedHosts, []string{key})
	}
	inc.AlertCount = len(inc.AlertIDs)
	inc.KillChainPhase = DerivePhase(inc.MitreTactics)
	inc.Description = fmt.Sprintf("Multiple detection rules triggered for source %s. Alerts: %s",
		key, strings.Join(names, ", "))
	inc.CreatedAt = inc.LastSeen
	inc.UpdatedAt = inc.LastSeen

	e.logger.Infow("created incident",
		"incident_id", inc.ID, "correlation_key", key,
		"alert_count", inc.AlertCount, "severity", inc.Severity,
		"kill_chain_phase", inc.KillChainPhase, "unattributed", inc.Unattributed)

	return inc
}

func maxSeverity(group []*core.Alert) core.Severity {
	sev := core.SeverityLow
	for _, alert := range group {
		sev = core.MaxSeverity(sev, alert.Severity)
	}
	return sev
}

func alertTactics(alert *core.Alert) []string {
	if alert.MitreTactic == "" {
		return nil
	}
	return []string{alert.MitreTactic}
}

func alertTechniques(alert *core.Alert) []string {
	if alert.MitreTechnique == "" {
		return nil
	}
	return []string{alert.MitreTechnique}
}

// alertHosts gathers the host indicators an alert contributes to the
// incident's affected host set.
func alertHosts(alert *core.Alert) []string {
	var hosts []string
	if alert.SourceIP != "" {
		hosts = append(hosts, alert.SourceIP)
	}
	if alert.DestIP != "" {
		hosts = append(hosts, alert.DestIP)
	}
	hosts = append(hosts, alert.IOCIndicators.SourceIPs...)
	hosts = append(hosts, alert.IOCIndicators.DestIPs...)
	return hosts
}

// unionStrings merges two string sets into a sorted, deduplicated slice.
func unionStrings(existing, add []string) []string {
	if len(add) == 0 {
		return existing
	}
	set := make(map[string]struct{}, len(existing)+len(add))
	for _, s := range existing {
		set[s] = struct{}{}
	}
	for _, s := range add {
		if s != "" {
			set[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
