// Package mitre provides static MITRE ATT&CK enterprise reference tables
// and the mappings the detection and correlation engines rely on: event
// type to technique, and tactic to kill-chain phase.
package mitre

import (
	"sort"

	"socforge/core"
)

// Tactic is an ATT&CK enterprise tactic
type Tactic struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Technique is an ATT&CK technique or sub-technique
type Technique struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Tactic   string `json:"tactic"`
	TacticID string `json:"tactic_id"`
}

// Mapping ties an event type to its tactic and technique
type Mapping struct {
	Tactic      string `json:"tactic"`
	Technique   string `json:"technique"`
	TechniqueID string `json:"technique_id"`
}

var tactics = map[string]Tactic{
	"TA0043": {ID: "TA0043", Name: "Reconnaissance", Description: "Gathering information to plan operations"},
	"TA0001": {ID: "TA0001", Name: "Initial Access", Description: "Gaining entry to the target network"},
	"TA0002": {ID: "TA0002", Name: "Execution", Description: "Running malicious code"},
	"TA0003": {ID: "TA0003", Name: "Persistence", Description: "Maintaining foothold"},
	"TA0004": {ID: "TA0004", Name: "Privilege Escalation", Description: "Gaining higher-level permissions"},
	"TA0005": {ID: "TA0005", Name: "Defense Evasion", Description: "Avoiding detection"},
	"TA0006": {ID: "TA0006", Name: "Credential Access", Description: "Stealing account credentials"},
	"TA0007": {ID: "TA0007", Name: "Discovery", Description: "Learning about the environment"},
	"TA0008": {ID: "TA0008", Name: "Lateral Movement", Description: "Moving through the network"},
	"TA0009": {ID: "TA0009", Name: "Collection", Description: "Gathering data of interest"},
	"TA0011": {ID: "TA0011", Name: "Command and Control", Description: "Communicating with compromised systems"},
	"TA0010": {ID: "TA0010", Name: "Exfiltration", Description: "Stealing data"},
	"TA0040": {ID: "TA0040", Name: "Impact", Description: "Disrupting availability or integrity"},
}

var techniques = map[string]Technique{
	"T1595":     {ID: "T1595", Name: "Active Scanning", Tactic: "Reconnaissance", TacticID: "TA0043"},
	"T1595.001": {ID: "T1595.001", Name: "Scanning IP Blocks", Tactic: "Reconnaissance", TacticID: "TA0043"},
	"T1595.002": {ID: "T1595.002", Name: "Vulnerability Scanning", Tactic: "Reconnaissance", TacticID: "TA0043"},
	"T1046":     {ID: "T1046", Name: "Network Service Discovery", Tactic: "Discovery", TacticID: "TA0007"},
	"T1110":     {ID: "T1110", Name: "Brute Force", Tactic: "Credential Access", TacticID: "TA0006"},
	"T1110.001": {ID: "T1110.001", Name: "Password Guessing", Tactic: "Credential Access", TacticID: "TA0006"},
	"T1110.003": {ID: "T1110.003", Name: "Password Spraying", Tactic: "Credential Access", TacticID: "TA0006"},
	"T1190":     {ID: "T1190", Name: "Exploit Public-Facing Application", Tactic: "Initial Access", TacticID: "TA0001"},
	"T1059":     {ID: "T1059", Name: "Command and Scripting Interpreter", Tactic: "Execution", TacticID: "TA0002"},
	"T1059.001": {ID: "T1059.001", Name: "PowerShell", Tactic: "Execution", TacticID: "TA0002"},
	"T1059.004": {ID: "T1059.004", Name: "Unix Shell", Tactic: "Execution", TacticID: "TA0002"},
	"T1071":     {ID: "T1071", Name: "Application Layer Protocol", Tactic: "Command and Control", TacticID: "TA0011"},
	"T1071.001": {ID: "T1071.001", Name: "Web Protocols", Tactic: "Command and Control", TacticID: "TA0011"},
	"T1571":     {ID: "T1571", Name: "Non-Standard Port", Tactic: "Command and Control", TacticID: "TA0011"},
	"T1573":     {ID: "T1573", Name: "Encrypted Channel", Tactic: "Command and Control", TacticID: "TA0011"},
	"T1095":     {ID: "T1095", Name: "Non-Application Layer Protocol", Tactic: "Command and Control", TacticID: "TA0011"},
	"T1090":     {ID: "T1090", Name: "Proxy", Tactic: "Command and Control", TacticID: "TA0011"},
	"T1105":     {ID: "T1105", Name: "Ingress Tool Transfer", Tactic: "Command and Control", TacticID: "TA0011"},
	"T1021":     {ID: "T1021", Name: "Remote Services", Tactic: "Lateral Movement", TacticID: "TA0008"},
	"T1021.004": {ID: "T1021.004", Name: "SSH", Tactic: "Lateral Movement", TacticID: "TA0008"},
	"T1078":     {ID: "T1078", Name: "Valid Accounts", Tactic: "Persistence", TacticID: "TA0003"},
	"T1048":     {ID: "T1048", Name: "Exfiltration Over Alternative Protocol", Tactic: "Exfiltration", TacticID: "TA0010"},
	"T1041":     {ID: "T1041", Name: "Exfiltration Over C2 Channel", Tactic: "Exfiltration", TacticID: "TA0010"},
	"T1018":     {ID: "T1018", Name: "Remote System Discovery", Tactic: "Discovery", TacticID: "TA0007"},
	"T1082":     {ID: "T1082", Name: "System Information Discovery", Tactic: "Discovery", TacticID: "TA0007"},
	"T1027":     {ID: "T1027", Name: "Obfuscated Files or Information", Tactic: "Defense Evasion", TacticID: "TA0005"},
	"T1070":     {ID: "T1070", Name: "Indicator Removal", Tactic: "Defense Evasion", TacticID: "TA0005"},
}

// eventTypeMappings auto-maps telemetry event types to ATT&CK labels for
// events that reach the engine without rule-supplied MITRE context.
var eventTypeMappings = map[string]Mapping{
	"port_scan":            {Tactic: "Reconnaissance", Technique: "Active Scanning", TechniqueID: "T1595"},
	"ssh_brute_force":      {Tactic: "Credential Access", Technique: "Brute Force", TechniqueID: "T1110"},
	"ssh_login_failed":     {Tactic: "Credential Access", Technique: "Password Guessing", TechniqueID: "T1110.001"},
	"ssh_login_success":    {Tactic: "Lateral Movement", Technique: "SSH", TechniqueID: "T1021.004"},
	"reverse_shell":        {Tactic: "Execution", Technique: "Unix Shell", TechniqueID: "T1059.004"},
	"c2_beacon":            {Tactic: "Command and Control", Technique: "Application Layer Protocol", TechniqueID: "T1071"},
	"c2_communication":     {Tactic: "Command and Control", Technique: "Web Protocols", TechniqueID: "T1071.001"},
	"web_exploit":          {Tactic: "Initial Access", Technique: "Exploit Public-Facing Application", TechniqueID: "T1190"},
	"sql_injection":        {Tactic: "Initial Access", Technique: "Exploit Public-Facing Application", TechniqueID: "T1190"},
	"xss_attempt":          {Tactic: "Initial Access", Technique: "Exploit Public-Facing Application", TechniqueID: "T1190"},
	"path_traversal":       {Tactic: "Initial Access", Technique: "Exploit Public-Facing Application", TechniqueID: "T1190"},
	"lateral_movement":     {Tactic: "Lateral Movement", Technique: "Remote Services", TechniqueID: "T1021"},
	"data_exfiltration":    {Tactic: "Exfiltration", Technique: "Exfiltration Over C2 Channel", TechniqueID: "T1041"},
	"dns_query":            {Tactic: "Discovery", Technique: "Remote System Discovery", TechniqueID: "T1018"},
	"process_execution":    {Tactic: "Execution", Technique: "Command and Scripting Interpreter", TechniqueID: "T1059"},
	"privilege_escalation": {Tactic: "Privilege Escalation", Technique: "Valid Accounts", TechniqueID: "T1078"},
	"credential_dump":      {Tactic: "Credential Access", Technique: "Brute Force", TechniqueID: "T1110"},
}

// tacticPhases maps every enterprise tactic to exactly one kill-chain
// phase. Tactics that have no dedicated phase collapse into the nearest
// stage of the progression.
var tacticPhases = map[string]core.KillChainPhase{
	"Reconnaissance":       core.PhaseReconnaissance,
	"Discovery":            core.PhaseReconnaissance,
	"Initial Access":       core.PhaseInitialAccess,
	"Credential Access":    core.PhaseInitialAccess,
	"Execution":            core.PhaseExecution,
	"Persistence":          core.PhaseExecution,
	"Privilege Escalation": core.PhaseExecution,
	"Defense Evasion":      core.PhaseExecution,
	"Command and Control":  core.PhaseCommandAndControl,
	"Lateral Movement":     core.PhaseLateralMovement,
	"Collection":           core.PhaseLateralMovement,
	"Exfiltration":         core.PhaseExfiltration,
	"Impact":               core.PhaseExfiltration,
}

// GetTactic returns a tactic by its TA-prefixed ID
func GetTactic(tacticID string) (Tactic, bool) {
	t, ok := tactics[tacticID]
	return t, ok
}

// GetTechnique returns a technique by its T-prefixed ID
func GetTechnique(techniqueID string) (Technique, bool) {
	t, ok := techniques[techniqueID]
	return t, ok
}

// MapEventType auto-maps an event type to its ATT&CK tactic and technique.
// The second return value is false for event types with no mapping
// (benign traffic, unknown telemetry).
func MapEventType(eventType string) (Mapping, bool) {
	m, ok := eventTypeMappings[eventType]
	return m, ok
}

// PhaseForTactic maps an ATT&CK tactic name to its kill-chain phase.
func PhaseForTactic(tactic string) (core.KillChainPhase, bool) {
	p, ok := tacticPhases[tactic]
	return p, ok
}

// AllTactics returns every tactic sorted by ID
func AllTactics() []Tactic {
	out := make([]Tactic, 0, len(tactics))
	for _, t := range tactics {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AllTechniques returns every technique sorted by ID
func AllTechniques() []Technique {
	out := make([]Technique, 0, len(techniques))
	for _, t := range techniques {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
