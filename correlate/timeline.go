package correlate

import (
	"fmt"
	"sort"

	"socforge/core"
	"socforge/mitre"
)

// timeline entry types
const (
	entryTypeEvent = "event"
	entryTypeAlert = "alert"
)

// entryOrder breaks timestamp ties so the timeline is a total order:
// events sort before the alerts they triggered.
var entryOrder = map[string]int{entryTypeEvent: 0, entryTypeAlert: 1}

// BuildTimeline reconstructs an incident's chronology as a pure function
// of the incident, its alerts and their underlying events. It is
// idempotent: unchanged inputs yield identical ordered output. Events and
// alerts not referenced by the incident are ignored.
func BuildTimeline(incident *core.Incident, events []*core.Event, alerts []*core.Alert) []core.TimelineEntry {
	if incident == nil {
		return nil
	}

	alertIDs := make(map[string]bool, len(incident.AlertIDs))
	for _, id := range incident.AlertIDs {
		alertIDs[id] = true
	}

	eventIDs := make(map[string]bool)
	var incidentAlerts []*core.Alert
	for _, alert := range alerts {
		if alert == nil || !alertIDs[alert.ID] {
			continue
		}
		incidentAlerts = append(incidentAlerts, alert)
		for _, id := range alert.TriggeringEventIDs {
			eventIDs[id] = true
		}
	}

	var entries []core.TimelineEntry
	for _, event := range events {
		if event == nil || !eventIDs[event.ID] {
			continue
		}
		entries = append(entries, eventEntry(event))
	}
	for _, alert := range incidentAlerts {
		entries = append(entries, alertEntry(alert))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if entryOrder[a.EntryType] != entryOrder[b.EntryType] {
			return entryOrder[a.EntryType] < entryOrder[b.EntryType]
		}
		return a.Description < b.Description
	})

	return entries
}

func eventEntry(event *core.Event) core.TimelineEntry {
	description := event.Message
	if description == "" {
		description = fmt.Sprintf("%s from %s", event.EventType, event.SourceIP)
	}
	entry := core.TimelineEntry{
		Timestamp:   event.Timestamp,
		EntryType:   entryTypeEvent,
		EventType:   event.EventType,
		Severity:    event.Severity,
		Description: description,
		SourceIP:    event.SourceIP,
		DestIP:      event.DestIP,
		DestPort:    event.DestPort,
	}
	if m, ok := mitre.MapEventType(event.EventType); ok {
		entry.MitreTactic = m.Tactic
		entry.MitreTechnique = m.Technique
		entry.MitreTechniqueID = m.TechniqueID
	}
	return entry
}

func alertEntry(alert *core.Alert) core.TimelineEntry {
	return core.TimelineEntry{
		Timestamp:        alert.CreatedAt,
		EntryType:        entryTypeAlert,
		EventType:        "alert_generated",
		Severity:         alert.Severity,
		Description:      alert.Title,
		SourceIP:         alert.SourceIP,
		DestIP:           alert.DestIP,
		MitreTactic:      alert.MitreTactic,
		MitreTechnique:   alert.MitreTechnique,
		MitreTechniqueID: alert.MitreTechniqueID,
	}
}
