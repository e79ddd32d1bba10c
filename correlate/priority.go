package correlate

import (
	"strings"

	"socforge/core"
)

// derivePriority buckets an incident for queue ordering from its alert
// volume and the presence of critical alerts.
func derivePriority(group []*core.Alert) core.Priority {
	hasCritical := false
	for _, alert := range group {
		if alert.Severity == core.SeverityCritical {
			hasCritical = true
			break
		}
	}
	switch {
	case hasCritical || len(group) >= 5:
		return core.PriorityCritical
	case len(group) >= 3:
		return core.PriorityHigh
	case len(group) >= 2:
		return core.PriorityMedium
	default:
		return core.PriorityLow
	}
}

// deriveCategory classifies an incident from its alert titles. The first
// matching bucket wins; mixed activity falls through to multi_stage_attack.
func deriveCategory(group []*core.Alert) string {
	titles := make([]string, 0, len(group))
	for _, alert := range group {
		titles = append(titles, strings.ToLower(alert.Title))
	}
	anyContains := func(substrs ...string) bool {
		for _, title := range titles {
			for _, s := range substrs {
				if strings.Contains(title, s) {
					return true
				}
			}
		}
		return false
	}
	switch {
	case anyContains("brute"):
		return "brute_force"
	case anyContains("reverse", "shell"):
		return "malware"
	case anyContains("exfil"):
		return "data_exfiltration"
	case anyContains("lateral"):
		return "lateral_movement"
	default:
		return "multi_stage_attack"
	}
}
