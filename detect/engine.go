// Package detect implements the SOCForge detection engine: synchronous
// evaluation of event batches against declarative detection rules,
// producing alerts plus a diagnostics list for per-item failures.
package detect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"socforge/core"
	"socforge/metrics"
	"socforge/mitre"
)

// Group keys for threshold rules. A rule without group_by_field counts all
// matching events in one global group; events missing the grouping field
// land in the absence-marker group rather than being dropped.
const (
	GlobalGroup  = "all"
	UnknownGroup = "unknown"
)

// Engine evaluates event batches against the active rule set. The engine
// holds no per-batch state: given identical inputs, Evaluate produces
// identical output (modulo generated alert IDs when the default generator
// is used).
type Engine struct {
	logger *zap.SugaredLogger
	newID  func() string
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithIDGenerator overrides alert ID generation, e.g. for deterministic
// output in tests and replays.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// NewEngine creates a detection engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger: zap.NewNop().Sugar(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs every enabled rule against the event batch and returns the
// generated alerts together with diagnostics for per-item failures. Events
// are re-sorted defensively by timestamp (ties broken by event ID) so
// callers that hand over unsorted batches still get deterministic output.
//
// Per-item failures (one bad rule, one bad event) are isolated and
// reported as diagnostics; only invariant violations on the call contract
// return a non-nil error.
func (e *Engine) Evaluate(events []*core.Event, rules []core.DetectionRule) ([]*core.Alert, []core.Diagnostic, error) {
	timer := prometheus.NewTimer(metrics.DetectionDuration)
	defer timer.ObserveDuration()

	for i, ev := range events {
		if ev == nil {
			return nil, nil, fmt.Errorf("%w: nil event at index %d", core.ErrInvariantViolation, i)
		}
	}
	for i := range rules {
		if rules[i].ThresholdCount < 0 {
			return nil, nil, fmt.Errorf("%w: rule %s has negative threshold_count %d",
				core.ErrInvariantViolation, rules[i].ID, rules[i].ThresholdCount)
		}
	}

	sorted := sortEvents(events)

	var alerts []*core.Alert
	var diags []core.Diagnostic

	for i := range rules {
		rule := &rules[i]
		if !rule.Enabled {
			continue
		}
		if err := rule.Validate(); err != nil {
			e.logger.Warnw("excluding invalid rule from evaluation pass",
				"rule_id", rule.ID, "rule_name", rule.Name, "error", err)
			diags = append(diags, core.NewDiagnostic(err))
			continue
		}

		var ruleAlerts []*core.Alert
		var ruleDiags []core.Diagnostic
		switch rule.RuleType {
		case core.RuleTypePattern:
			ruleAlerts, ruleDiags = e.evaluatePattern(rule, sorted)
		case core.RuleTypeThreshold:
			ruleAlerts, ruleDiags = e.evaluateThreshold(rule, sorted)
		case core.RuleTypeAnomaly:
			// Reserved rule type: validates but never matches.
		}
		alerts = append(alerts, ruleAlerts...)
		diags = append(diags, ruleDiags...)
	}

	metrics.EventsEvaluated.Add(float64(len(events)))
	for _, a := range alerts {
		metrics.AlertsGenerated.WithLabelValues(a.Severity.String()).Inc()
	}
	if len(diags) > 0 {
		metrics.RuleEvaluationFailures.Add(float64(len(diags)))
	}
	e.logger.Debugf("evaluated %d events against %d rules: %d alerts, %d diagnostics",
		len(events), len(rules), len(alerts), len(diags))

	return alerts, diags, nil
}

// evaluatePattern emits one alert per event whose fields satisfy the
// rule's condition. No windowing: multiple events each trigger separate
// alerts independently.
func (e *Engine) evaluatePattern(rule *core.DetectionRule, events []*core.Event) ([]*core.Alert, []core.Diagnostic) {
	var alerts []*core.Alert
	var diags []core.Diagnostic
	reportedConfig := false

	for _, event := range events {
		if !rule.MatchesEventType(event.EventType) {
			continue
		}
		matched, err := evalCondition(rule.Condition, event, rule.ID)
		if err != nil {
			// One configuration diagnostic per rule is enough; the same
			// broken condition would otherwise repeat for every event.
			if isConfigError(err) {
				if !reportedConfig {
					diags = append(diags, core.NewDiagnostic(err))
					reportedConfig = true
				}
			} else {
				diags = append(diags, core.NewDiagnostic(err))
			}
			continue
		}
		if matched {
			alerts = append(alerts, e.newAlert(rule, []*core.Event{event}, patternGroupKey(event)))
		}
	}
	return alerts, diags
}

// evaluateThreshold maintains one sliding window per group and fires when
// the count of matching events within the trailing window reaches the
// threshold. Firing drains the group's window, so one contiguous burst
// produces at most one alert per group; a genuinely new burst must reach
// the threshold again from scratch.
func (e *Engine) evaluateThreshold(rule *core.DetectionRule, events []*core.Event) ([]*core.Alert, []core.Diagnostic) {
	var alerts []*core.Alert
	window := rule.Window()
	groups := make(map[string][]*core.Event)

	for _, event := range events {
		if !rule.MatchesEventType(event.EventType) {
			continue
		}
		key := e.thresholdGroupKey(rule, event)
		buf := append(groups[key], event)

		// Window membership: newest - oldest <= time_window_seconds.
		start := 0
		for start < len(buf) && event.Timestamp.Sub(buf[start].Timestamp) > window {
			start++
		}
		buf = buf[start:]

		if len(buf) >= rule.ThresholdCount {
			triggering := make([]*core.Event, len(buf))
			copy(triggering, buf)
			alerts = append(alerts, e.newAlert(rule, triggering, key))
			buf = nil
		}
		groups[key] = buf
	}
	return alerts, nil
}

// thresholdGroupKey partitions events for a threshold rule's sliding
// windows.
func (e *Engine) thresholdGroupKey(rule *core.DetectionRule, event *core.Event) string {
	if rule.GroupByField == "" {
		return GlobalGroup
	}
	raw, ok := event.FieldValue(rule.GroupByField)
	if !ok {
		return UnknownGroup
	}
	key := fieldString(raw)
	if key == "" {
		return UnknownGroup
	}
	return key
}

func patternGroupKey(event *core.Event) string {
	if event.SourceIP == "" {
		return UnknownGroup
	}
	return event.SourceIP
}

// newAlert builds an alert from a rule firing. Severity and MITRE labels
// come from the rule; when the rule carries no MITRE mapping the event
// type's auto-mapping fills in. created_at is the newest triggering
// event's timestamp so replays are reproducible.
func (e *Engine) newAlert(rule *core.DetectionRule, events []*core.Event, groupKey string) *core.Alert {
	first := events[0]
	last := events[len(events)-1]

	tactic := rule.MitreTactic
	technique := rule.MitreTechnique
	techniqueID := rule.MitreTechniqueID
	if tactic == "" && technique == "" {
		if m, ok := mitre.MapEventType(first.EventType); ok {
			tactic, technique, techniqueID = m.Tactic, m.Technique, m.TechniqueID
		}
	}

	ids := make([]string, len(events))
	for i, ev := range events {
		ids[i] = ev.ID
	}

	return &core.Alert{
		ID:                 e.newID(),
		RuleID:             rule.ID,
		Title:              fmt.Sprintf("[%s] %s - %s", strings.ToUpper(rule.Severity.String()), rule.Name, groupKey),
		Description:        fmt.Sprintf("%s Triggered by %d events from %s.", rule.Description, len(events), groupKey),
		Severity:           rule.Severity,
		Status:             core.AlertStatusOpen,
		SourceIP:           first.SourceIP,
		DestIP:             first.DestIP,
		MitreTactic:        tactic,
		MitreTechnique:     technique,
		MitreTechniqueID:   techniqueID,
		TriggeringEventIDs: ids,
		EventCount:         len(events),
		IOCIndicators:      collectIOCs(events),
		CreatedAt:          last.Timestamp,
	}
}

// collectIOCs extracts deduplicated indicators from the triggering events.
// Output is sorted so identical inputs serialize identically.
func collectIOCs(events []*core.Event) core.IOCIndicators {
	srcIPs := make(map[string]struct{})
	dstIPs := make(map[string]struct{})
	ports := make(map[int]struct{})
	hosts := make(map[string]struct{})
	procs := make(map[string]struct{})

	for _, ev := range events {
		if ev.SourceIP != "" {
			srcIPs[ev.SourceIP] = struct{}{}
		}
		if ev.DestIP != "" {
			dstIPs[ev.DestIP] = struct{}{}
		}
		if ev.DestPort != 0 {
			ports[ev.DestPort] = struct{}{}
		}
		if ev.Hostname != "" {
			hosts[ev.Hostname] = struct{}{}
		}
		if ev.ProcessName != "" {
			procs[ev.ProcessName] = struct{}{}
		}
	}

	return core.IOCIndicators{
		SourceIPs: sortedKeys(srcIPs),
		DestIPs:   sortedKeys(dstIPs),
		DestPorts: sortedInts(ports),
		Hostnames: sortedKeys(hosts),
		Processes: sortedKeys(procs),
	}
}

// sortEvents returns a stable copy ordered by timestamp ascending, ties
// broken by event ID. The engine tolerates unsorted input but its output
// contract depends on time order, so it re-sorts rather than failing.
func sortEvents(events []*core.Event) []*core.Event {
	sorted := make([]*core.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

func isConfigError(err error) bool {
	_, ok := err.(*core.ConfigurationError)
	return ok
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedInts(set map[int]struct{}) []int {
	if len(set) == 0 {
		return nil
	}
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
