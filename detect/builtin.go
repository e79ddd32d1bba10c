package detect

import "socforge/core"

// BuiltinRules returns the seed detection rule set covering the attack
// scenarios the simulation generator produces. Callers typically merge
// these with analyst-authored rules from the rule store.
func BuiltinRules() []core.DetectionRule {
	return []core.DetectionRule{
		{
			ID:                "builtin-ssh-brute-force",
			Name:              "SSH Brute Force Detection",
			Description:       "Detects multiple failed SSH login attempts from the same source IP within a short time window, indicating a brute force attack.",
			RuleType:          core.RuleTypeThreshold,
			Severity:          core.SeverityHigh,
			Enabled:           true,
			EventTypeFilter:   "ssh_login_failed",
			ThresholdCount:    5,
			TimeWindowSeconds: 60,
			GroupByField:      "source_ip",
			MitreTactic:       "Credential Access",
			MitreTechnique:    "Brute Force",
			MitreTechniqueID:  "T1110",
			Tags:              []string{"brute_force", "ssh", "credential_access"},
		},
		{
			ID:                "builtin-port-scan",
			Name:              "Port Scan Detection",
			Description:       "Detects scanning activity where a source IP targets more than 20 destination ports within 30 seconds.",
			RuleType:          core.RuleTypeThreshold,
			Severity:          core.SeverityMedium,
			Enabled:           true,
			EventTypeFilter:   "port_scan",
			ThresholdCount:    20,
			TimeWindowSeconds: 30,
			GroupByField:      "source_ip",
			MitreTactic:       "Reconnaissance",
			MitreTechnique:    "Active Scanning",
			MitreTechniqueID:  "T1595",
			Tags:              []string{"port_scan", "reconnaissance", "network"},
		},
		{
			ID:              "builtin-reverse-shell",
			Name:            "Reverse Shell Detection",
			Description:     "Detects outbound connections to uncommon ports with shell process activity, indicating a reverse shell.",
			RuleType:        core.RuleTypePattern,
			Severity:        core.SeverityCritical,
			Enabled:         true,
			EventTypeFilter: "reverse_shell",
			Condition: &core.Condition{
				Field:    "process_name",
				Operator: core.OpRegex,
				Value:    `^(/bin/sh|/bin/bash|cmd\.exe|powershell\.exe|nc|ncat)$`,
			},
			MitreTactic:      "Execution",
			MitreTechnique:   "Unix Shell",
			MitreTechniqueID: "T1059.004",
			Tags:             []string{"reverse_shell", "execution", "critical"},
		},
		{
			ID:                "builtin-c2-beacon",
			Name:              "C2 Beaconing Detection",
			Description:       "Detects repeated network connections to the same external IP, indicating command-and-control beaconing behavior.",
			RuleType:          core.RuleTypeThreshold,
			Severity:          core.SeverityHigh,
			Enabled:           true,
			EventTypeFilter:   "c2_beacon",
			ThresholdCount:    5,
			TimeWindowSeconds: 300,
			GroupByField:      "dest_ip",
			MitreTactic:       "Command and Control",
			MitreTechnique:    "Application Layer Protocol",
			MitreTechniqueID:  "T1071",
			Tags:              []string{"c2", "beaconing", "network"},
		},
		{
			ID:              "builtin-web-attack",
			Name:            "Web Attack Detection",
			Description:     "Detects SQL injection, XSS, and path traversal patterns in HTTP request logs.",
			RuleType:        core.RuleTypePattern,
			Severity:        core.SeverityHigh,
			Enabled:         true,
			EventTypeFilter: "web_exploit",
			Condition: &core.Condition{
				Field:    "raw_log",
				Operator: core.OpRegex,
				Value:    `(union\s+select|<script>|\.\./|etc/passwd|cmd\.exe|eval\()`,
			},
			MitreTactic:      "Initial Access",
			MitreTechnique:   "Exploit Public-Facing Application",
			MitreTechniqueID: "T1190",
			Tags:             []string{"web_attack", "sqli", "xss", "initial_access"},
		},
		{
			ID:                "builtin-lateral-movement",
			Name:              "Lateral Movement Detection",
			Description:       "Detects repeated internal host-to-host connections with authentication attempts, indicating lateral movement.",
			RuleType:          core.RuleTypeThreshold,
			Severity:          core.SeverityHigh,
			Enabled:           true,
			EventTypeFilter:   "lateral_movement",
			ThresholdCount:    3,
			TimeWindowSeconds: 120,
			GroupByField:      "source_ip",
			MitreTactic:       "Lateral Movement",
			MitreTechnique:    "Remote Services",
			MitreTechniqueID:  "T1021",
			Tags:              []string{"lateral_movement", "pivoting", "internal"},
		},
	}
}
