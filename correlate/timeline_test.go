package correlate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socforge/core"
)

func timelineFixture() (*core.Incident, []*core.Event, []*core.Alert) {
	scan := &core.Event{
		ID: "e1", Timestamp: corrBase, EventType: "port_scan",
		SourceIP: "9.9.9.9", DestIP: "10.0.1.10", DestPort: 22,
		Message: "Port scan: 9.9.9.9 to 10.0.1.10:22",
	}
	fail := &core.Event{
		ID: "e2", Timestamp: corrBase.Add(time.Minute), EventType: "ssh_login_failed",
		SourceIP: "9.9.9.9", DestIP: "10.0.1.10", DestPort: 22,
	}
	unrelated := &core.Event{
		ID: "e9", Timestamp: corrBase, EventType: "dns_query", SourceIP: "1.1.1.1",
	}

	a1 := &core.Alert{
		ID: "a1", Title: "[MEDIUM] Port Scan - 9.9.9.9",
		Severity: core.SeverityMedium, SourceIP: "9.9.9.9",
		MitreTactic: "Reconnaissance", MitreTechniqueID: "T1595",
		TriggeringEventIDs: []string{"e1"},
		CreatedAt:          corrBase,
	}
	a2 := &core.Alert{
		ID: "a2", Title: "[HIGH] SSH Brute Force - 9.9.9.9",
		Severity: core.SeverityHigh, SourceIP: "9.9.9.9",
		MitreTactic: "Credential Access", MitreTechniqueID: "T1110",
		TriggeringEventIDs: []string{"e2"},
		CreatedAt:          corrBase.Add(time.Minute),
	}
	orphan := &core.Alert{
		ID: "a9", Title: "unrelated", TriggeringEventIDs: []string{"e9"},
		CreatedAt: corrBase,
	}

	inc := &core.Incident{
		ID:       "inc-1",
		Status:   core.IncidentStatusOpen,
		AlertIDs: []string{"a1", "a2"},
	}

	return inc, []*core.Event{scan, fail, unrelated}, []*core.Alert{a1, a2, orphan}
}

func TestBuildTimelineOrderingAndFiltering(t *testing.T) {
	inc, events, alerts := timelineFixture()

	entries := BuildTimeline(inc, events, alerts)
	require.Len(t, entries, 4)

	// Events sort before the alerts they triggered at the same timestamp.
	assert.Equal(t, "event", entries[0].EntryType)
	assert.Equal(t, "port_scan", entries[0].EventType)
	assert.Equal(t, "alert", entries[1].EntryType)
	assert.Equal(t, "[MEDIUM] Port Scan - 9.9.9.9", entries[1].Description)
	assert.Equal(t, "event", entries[2].EntryType)
	assert.Equal(t, "ssh_login_failed", entries[2].EventType)
	assert.Equal(t, "alert", entries[3].EntryType)

	// Nothing from the unrelated event or orphan alert.
	for _, entry := range entries {
		assert.NotEqual(t, "dns_query", entry.EventType)
		assert.NotEqual(t, "unrelated", entry.Description)
	}
}

func TestBuildTimelineIdempotent(t *testing.T) {
	inc, events, alerts := timelineFixture()

	first := BuildTimeline(inc, events, alerts)
	second := BuildTimeline(inc, events, alerts)
	assert.Equal(t, first, second)
}

func TestBuildTimelineEventEnrichment(t *testing.T) {
	inc, events, alerts := timelineFixture()

	entries := BuildTimeline(inc, events, alerts)
	require.NotEmpty(t, entries)

	scan := entries[0]
	assert.Equal(t, "Port scan: 9.9.9.9 to 10.0.1.10:22", scan.Description)
	assert.Equal(t, "Reconnaissance", scan.MitreTactic)
	assert.Equal(t, "T1595", scan.MitreTechniqueID)
	assert.Equal(t, 22, scan.DestPort)

	// Events without a message fall back to a generated description.
	fail := entries[2]
	assert.Equal(t, "ssh_login_failed from 9.9.9.9", fail.Description)
}

func TestBuildTimelineNilIncident(t *testing.T) {
	assert.Nil(t, BuildTimeline(nil, nil, nil))
}

func TestBuildTimelineEmptyIncident(t *testing.T) {
	inc := &core.Incident{ID: "inc-1", Status: core.IncidentStatusOpen}
	assert.Empty(t, BuildTimeline(inc, nil, nil))
}
