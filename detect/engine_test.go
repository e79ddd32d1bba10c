package detect

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socforge/core"
)

var testBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%03d", prefix, n)
	}
}

func testEngine() *Engine {
	return NewEngine(WithIDGenerator(seqIDs("alert")))
}

func sshFailEvent(id string, offset time.Duration, srcIP string) *core.Event {
	return &core.Event{
		ID:        id,
		Timestamp: testBase.Add(offset),
		EventType: "ssh_login_failed",
		SourceIP:  srcIP,
		DestIP:    "10.0.1.10",
		DestPort:  22,
	}
}

func thresholdRule(id string, count, windowSec int) core.DetectionRule {
	return core.DetectionRule{
		ID:                id,
		Name:              "SSH Brute Force",
		Description:       "Multiple failed SSH logins.",
		RuleType:          core.RuleTypeThreshold,
		Severity:          core.SeverityHigh,
		Enabled:           true,
		EventTypeFilter:   "ssh_login_failed",
		ThresholdCount:    count,
		TimeWindowSeconds: windowSec,
		GroupByField:      "source_ip",
		MitreTactic:       "Credential Access",
		MitreTechnique:    "Brute Force",
		MitreTechniqueID:  "T1110",
	}
}

func TestThresholdFiresAtThreshold(t *testing.T) {
	events := []*core.Event{
		sshFailEvent("e1", 0, "1.2.3.4"),
		sshFailEvent("e2", 10*time.Second, "1.2.3.4"),
		sshFailEvent("e3", 20*time.Second, "1.2.3.4"),
		sshFailEvent("e4", 30*time.Second, "1.2.3.4"),
		sshFailEvent("e5", 40*time.Second, "1.2.3.4"),
	}

	alerts, diags, err := testEngine().Evaluate(events, []core.DetectionRule{thresholdRule("r1", 5, 60)})
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, alerts, 1)

	alert := alerts[0]
	assert.Equal(t, "r1", alert.RuleID)
	assert.Equal(t, []string{"e1", "e2", "e3", "e4", "e5"}, alert.TriggeringEventIDs)
	assert.Equal(t, 5, alert.EventCount)
	assert.Equal(t, core.SeverityHigh, alert.Severity)
	assert.Equal(t, core.AlertStatusOpen, alert.Status)
	assert.Equal(t, testBase.Add(40*time.Second), alert.CreatedAt)
	assert.Equal(t, "[HIGH] SSH Brute Force - 1.2.3.4", alert.Title)
	assert.Equal(t, "T1110", alert.MitreTechniqueID)
}

func TestThresholdBelowThresholdNoAlert(t *testing.T) {
	events := []*core.Event{
		sshFailEvent("e1", 0, "1.2.3.4"),
		sshFailEvent("e2", 10*time.Second, "1.2.3.4"),
		sshFailEvent("e3", 20*time.Second, "1.2.3.4"),
		sshFailEvent("e4", 30*time.Second, "1.2.3.4"),
	}

	alerts, diags, err := testEngine().Evaluate(events, []core.DetectionRule{thresholdRule("r1", 5, 60)})
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Empty(t, alerts)
}

func TestThresholdWindowBoundary(t *testing.T) {
	rule := thresholdRule("r1", 2, 60)

	// Exactly at the window edge: newest - oldest == window still counts.
	atEdge := []*core.Event{
		sshFailEvent("e1", 0, "1.2.3.4"),
		sshFailEvent("e2", 60*time.Second, "1.2.3.4"),
	}
	alerts, _, err := testEngine().Evaluate(atEdge, []core.DetectionRule{rule})
	require.NoError(t, err)
	assert.Len(t, alerts, 1)

	// One second past the edge: the older event has left the window.
	pastEdge := []*core.Event{
		sshFailEvent("e1", 0, "1.2.3.4"),
		sshFailEvent("e2", 61*time.Second, "1.2.3.4"),
	}
	alerts, _, err = testEngine().Evaluate(pastEdge, []core.DetectionRule{rule})
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestThresholdBurstFiresOnce(t *testing.T) {
	var events []*core.Event
	for i := 0; i < 5; i++ {
		events = append(events, sshFailEvent(fmt.Sprintf("e%d", i+1), time.Duration(i*10)*time.Second, "1.2.3.4"))
	}

	alerts, _, err := testEngine().Evaluate(events, []core.DetectionRule{thresholdRule("r1", 3, 60)})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, []string{"e1", "e2", "e3"}, alerts[0].TriggeringEventIDs)
}

func TestThresholdSeparateBurstsFireSeparately(t *testing.T) {
	events := []*core.Event{
		sshFailEvent("e1", 0, "1.2.3.4"),
		sshFailEvent("e2", 5*time.Second, "1.2.3.4"),
		sshFailEvent("e3", 10*time.Minute, "1.2.3.4"),
		sshFailEvent("e4", 10*time.Minute+5*time.Second, "1.2.3.4"),
	}

	alerts, _, err := testEngine().Evaluate(events, []core.DetectionRule{thresholdRule("r1", 2, 60)})
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, []string{"e1", "e2"}, alerts[0].TriggeringEventIDs)
	assert.Equal(t, []string{"e3", "e4"}, alerts[1].TriggeringEventIDs)
}

func TestThresholdCountOneFiresPerEvent(t *testing.T) {
	events := []*core.Event{
		sshFailEvent("e1", 0, "1.2.3.4"),
		sshFailEvent("e2", time.Second, "1.2.3.4"),
		sshFailEvent("e3", 2*time.Second, "1.2.3.4"),
	}

	alerts, _, err := testEngine().Evaluate(events, []core.DetectionRule{thresholdRule("r1", 1, 60)})
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	for i, alert := range alerts {
		assert.Equal(t, []string{fmt.Sprintf("e%d", i+1)}, alert.TriggeringEventIDs)
	}
}

func TestThresholdGroupsIndependent(t *testing.T) {
	events := []*core.Event{
		sshFailEvent("e1", 0, "1.1.1.1"),
		sshFailEvent("e2", time.Second, "2.2.2.2"),
		sshFailEvent("e3", 2*time.Second, "1.1.1.1"),
		sshFailEvent("e4", 3*time.Second, "2.2.2.2"),
	}

	alerts, _, err := testEngine().Evaluate(events, []core.DetectionRule{thresholdRule("r1", 2, 60)})
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	sources := []string{alerts[0].SourceIP, alerts[1].SourceIP}
	assert.ElementsMatch(t, []string{"1.1.1.1", "2.2.2.2"}, sources)
}

func TestThresholdMissingGroupFieldUsesUnknown(t *testing.T) {
	rule := thresholdRule("r1", 2, 60)
	rule.GroupByField = "user_account"

	events := []*core.Event{
		sshFailEvent("e1", 0, "1.2.3.4"),
		sshFailEvent("e2", time.Second, "5.6.7.8"),
	}

	alerts, _, err := testEngine().Evaluate(events, []core.DetectionRule{rule})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "[HIGH] SSH Brute Force - unknown", alerts[0].Title)
}

func TestThresholdGlobalGroupWithoutGroupBy(t *testing.T) {
	rule := thresholdRule("r1", 2, 60)
	rule.GroupByField = ""

	events := []*core.Event{
		sshFailEvent("e1", 0, "1.1.1.1"),
		sshFailEvent("e2", time.Second, "2.2.2.2"),
	}

	alerts, _, err := testEngine().Evaluate(events, []core.DetectionRule{rule})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "[HIGH] SSH Brute Force - all", alerts[0].Title)
}

func TestPatternRuleFiresPerMatchingEvent(t *testing.T) {
	rule := core.DetectionRule{
		ID:              "r-shell",
		Name:            "Reverse Shell",
		RuleType:        core.RuleTypePattern,
		Severity:        core.SeverityCritical,
		Enabled:         true,
		EventTypeFilter: "reverse_shell",
		Condition: &core.Condition{
			Field:    "process_name",
			Operator: core.OpRegex,
			Value:    `^(/bin/sh|/bin/bash|nc)$`,
		},
	}

	shell := &core.Event{
		ID: "e1", Timestamp: testBase, EventType: "reverse_shell",
		SourceIP: "10.0.1.10", DestIP: "45.33.32.156", ProcessName: "/bin/bash",
	}
	benign := &core.Event{
		ID: "e2", Timestamp: testBase.Add(time.Second), EventType: "reverse_shell",
		SourceIP: "10.0.1.10", ProcessName: "sshd",
	}
	second := &core.Event{
		ID: "e3", Timestamp: testBase.Add(2 * time.Second), EventType: "reverse_shell",
		SourceIP: "10.0.1.11", ProcessName: "nc",
	}

	alerts, diags, err := testEngine().Evaluate([]*core.Event{shell, benign, second}, []core.DetectionRule{rule})
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, alerts, 2)
	assert.Equal(t, []string{"e1"}, alerts[0].TriggeringEventIDs)
	assert.Equal(t, 1, alerts[0].EventCount)
	assert.Equal(t, []string{"e3"}, alerts[1].TriggeringEventIDs)
}

func TestPatternMitreFallbackFromEventType(t *testing.T) {
	rule := core.DetectionRule{
		ID:       "r-any",
		Name:     "Port Scan Activity",
		RuleType: core.RuleTypePattern,
		Severity: core.SeverityMedium,
		Enabled:  true,
		Condition: &core.Condition{
			Field:    "event_type",
			Operator: core.OpEquals,
			Value:    "port_scan",
		},
	}

	ev := &core.Event{ID: "e1", Timestamp: testBase, EventType: "port_scan", SourceIP: "1.2.3.4"}
	alerts, _, err := testEngine().Evaluate([]*core.Event{ev}, []core.DetectionRule{rule})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Reconnaissance", alerts[0].MitreTactic)
	assert.Equal(t, "T1595", alerts[0].MitreTechniqueID)
}

func TestDisabledRuleSkipped(t *testing.T) {
	rule := thresholdRule("r1", 1, 60)
	rule.Enabled = false

	alerts, diags, err := testEngine().Evaluate(
		[]*core.Event{sshFailEvent("e1", 0, "1.2.3.4")},
		[]core.DetectionRule{rule})
	require.NoError(t, err)
	assert.Empty(t, alerts)
	assert.Empty(t, diags)
}

func TestRuleOrderIndependence(t *testing.T) {
	r1 := thresholdRule("r1", 2, 60)
	r2 := thresholdRule("r2", 3, 60)
	events := []*core.Event{
		sshFailEvent("e1", 0, "1.2.3.4"),
		sshFailEvent("e2", time.Second, "1.2.3.4"),
		sshFailEvent("e3", 2*time.Second, "1.2.3.4"),
	}

	forward, _, err := testEngine().Evaluate(events, []core.DetectionRule{r1, r2})
	require.NoError(t, err)
	reversed, _, err := testEngine().Evaluate(events, []core.DetectionRule{r2, r1})
	require.NoError(t, err)

	byRule := func(alerts []*core.Alert) map[string][]string {
		out := make(map[string][]string)
		for _, a := range alerts {
			out[a.RuleID] = a.TriggeringEventIDs
		}
		return out
	}
	assert.Equal(t, byRule(forward), byRule(reversed))
}

func TestUnsortedInputIsResorted(t *testing.T) {
	events := []*core.Event{
		sshFailEvent("e3", 20*time.Second, "1.2.3.4"),
		sshFailEvent("e1", 0, "1.2.3.4"),
		sshFailEvent("e2", 10*time.Second, "1.2.3.4"),
	}

	alerts, _, err := testEngine().Evaluate(events, []core.DetectionRule{thresholdRule("r1", 3, 60)})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, []string{"e1", "e2", "e3"}, alerts[0].TriggeringEventIDs)
	assert.Equal(t, testBase.Add(20*time.Second), alerts[0].CreatedAt)
}

func TestInvalidRuleExcludedOthersStillRun(t *testing.T) {
	bad := thresholdRule("r-bad", 0, 60) // threshold_count 0 fails validation
	good := thresholdRule("r-good", 2, 60)

	events := []*core.Event{
		sshFailEvent("e1", 0, "1.2.3.4"),
		sshFailEvent("e2", time.Second, "1.2.3.4"),
	}

	alerts, diags, err := testEngine().Evaluate(events, []core.DetectionRule{bad, good})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "r-good", alerts[0].RuleID)
	require.Len(t, diags, 1)
	assert.Equal(t, "r-bad", diags[0].RuleID)
}

func TestMalformedConditionYieldsDiagnosticsNotAbort(t *testing.T) {
	rule := core.DetectionRule{
		ID:       "r1",
		Name:     "Missing Field",
		RuleType: core.RuleTypePattern,
		Severity: core.SeverityLow,
		Enabled:  true,
		Condition: &core.Condition{
			Field:    "no_such_field",
			Operator: core.OpEquals,
			Value:    "x",
		},
	}

	events := []*core.Event{
		sshFailEvent("e1", 0, "1.2.3.4"),
		sshFailEvent("e2", time.Second, "1.2.3.4"),
	}

	alerts, diags, err := testEngine().Evaluate(events, []core.DetectionRule{rule})
	require.NoError(t, err)
	assert.Empty(t, alerts)
	require.Len(t, diags, 2)
	assert.Equal(t, "e1", diags[0].EventID)
	assert.Equal(t, "e2", diags[1].EventID)
}

func TestBadRegexReportedOnce(t *testing.T) {
	rule := core.DetectionRule{
		ID:       "r1",
		Name:     "Broken Regex",
		RuleType: core.RuleTypePattern,
		Severity: core.SeverityLow,
		Enabled:  true,
		Condition: &core.Condition{
			Field:    "source_ip",
			Operator: core.OpRegex,
			Value:    "[unclosed",
		},
	}

	events := []*core.Event{
		sshFailEvent("e1", 0, "1.2.3.4"),
		sshFailEvent("e2", time.Second, "1.2.3.4"),
		sshFailEvent("e3", 2*time.Second, "1.2.3.4"),
	}

	alerts, diags, err := testEngine().Evaluate(events, []core.DetectionRule{rule})
	require.NoError(t, err)
	assert.Empty(t, alerts)
	assert.Len(t, diags, 1)
}

func TestAnomalyRuleNeverMatches(t *testing.T) {
	rule := core.DetectionRule{
		ID:       "r1",
		Name:     "Future Anomaly",
		RuleType: core.RuleTypeAnomaly,
		Severity: core.SeverityMedium,
		Enabled:  true,
	}

	alerts, diags, err := testEngine().Evaluate(
		[]*core.Event{sshFailEvent("e1", 0, "1.2.3.4")},
		[]core.DetectionRule{rule})
	require.NoError(t, err)
	assert.Empty(t, alerts)
	assert.Empty(t, diags)
}

func TestNilEventIsInvariantViolation(t *testing.T) {
	_, _, err := testEngine().Evaluate([]*core.Event{nil}, []core.DetectionRule{thresholdRule("r1", 2, 60)})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvariantViolation)
}

func TestNegativeThresholdIsInvariantViolation(t *testing.T) {
	rule := thresholdRule("r1", -1, 60)
	_, _, err := testEngine().Evaluate([]*core.Event{sshFailEvent("e1", 0, "1.2.3.4")}, []core.DetectionRule{rule})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvariantViolation)
}

func TestAlertIOCIndicatorsSortedAndDeduplicated(t *testing.T) {
	events := []*core.Event{
		sshFailEvent("e1", 0, "9.9.9.9"),
		sshFailEvent("e2", time.Second, "9.9.9.9"),
	}
	events[0].Hostname = "web-srv-2"
	events[1].Hostname = "web-srv-1"
	events[1].DestIP = "10.0.1.11"

	alerts, _, err := testEngine().Evaluate(events, []core.DetectionRule{thresholdRule("r1", 2, 60)})
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	ioc := alerts[0].IOCIndicators
	assert.Equal(t, []string{"9.9.9.9"}, ioc.SourceIPs)
	assert.Equal(t, []string{"10.0.1.10", "10.0.1.11"}, ioc.DestIPs)
	assert.Equal(t, []int{22}, ioc.DestPorts)
	assert.Equal(t, []string{"web-srv-1", "web-srv-2"}, ioc.Hostnames)
}
