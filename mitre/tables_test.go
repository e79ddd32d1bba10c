package mitre

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socforge/core"
)

func TestGetTactic(t *testing.T) {
	tactic, ok := GetTactic("TA0006")
	require.True(t, ok)
	assert.Equal(t, "Credential Access", tactic.Name)

	_, ok = GetTactic("TA9999")
	assert.False(t, ok)
}

func TestGetTechnique(t *testing.T) {
	tech, ok := GetTechnique("T1110")
	require.True(t, ok)
	assert.Equal(t, "Brute Force", tech.Name)
	assert.Equal(t, "TA0006", tech.TacticID)

	sub, ok := GetTechnique("T1059.004")
	require.True(t, ok)
	assert.Equal(t, "Unix Shell", sub.Name)

	_, ok = GetTechnique("T9999")
	assert.False(t, ok)
}

func TestTechniquesReferenceKnownTactics(t *testing.T) {
	for _, tech := range AllTechniques() {
		_, ok := GetTactic(tech.TacticID)
		assert.True(t, ok, "technique %s references unknown tactic %s", tech.ID, tech.TacticID)
	}
}

func TestMapEventType(t *testing.T) {
	m, ok := MapEventType("ssh_login_failed")
	require.True(t, ok)
	assert.Equal(t, "Credential Access", m.Tactic)
	assert.Equal(t, "T1110.001", m.TechniqueID)

	m, ok = MapEventType("data_exfiltration")
	require.True(t, ok)
	assert.Equal(t, "T1041", m.TechniqueID)

	_, ok = MapEventType("http_request")
	assert.False(t, ok)
}

func TestMappedEventTypesResolveToKnownTechniques(t *testing.T) {
	for _, eventType := range []string{
		"port_scan", "ssh_login_failed", "ssh_login_success", "reverse_shell",
		"c2_beacon", "web_exploit", "lateral_movement", "data_exfiltration",
	} {
		m, ok := MapEventType(eventType)
		require.True(t, ok, eventType)
		_, ok = GetTechnique(m.TechniqueID)
		assert.True(t, ok, "event type %s maps to unknown technique %s", eventType, m.TechniqueID)
	}
}

func TestPhaseForTacticCoversAllTactics(t *testing.T) {
	for _, tactic := range AllTactics() {
		phase, ok := PhaseForTactic(tactic.Name)
		require.True(t, ok, "tactic %s has no phase mapping", tactic.Name)
		assert.True(t, phase.IsValid())
	}
}

func TestPhaseForTactic(t *testing.T) {
	phase, ok := PhaseForTactic("Command and Control")
	require.True(t, ok)
	assert.Equal(t, core.PhaseCommandAndControl, phase)

	phase, ok = PhaseForTactic("Discovery")
	require.True(t, ok)
	assert.Equal(t, core.PhaseReconnaissance, phase)

	_, ok = PhaseForTactic("Resource Development")
	assert.False(t, ok)
}

func TestAllTacticsSorted(t *testing.T) {
	tactics := AllTactics()
	require.Len(t, tactics, 13)
	for i := 1; i < len(tactics); i++ {
		assert.Less(t, tactics[i-1].ID, tactics[i].ID)
	}
}

func TestCoverageMatrix(t *testing.T) {
	matrix := CoverageMatrix([]string{"T1110", "T1595"})
	require.NotEmpty(t, matrix)

	byTactic := make(map[string]TacticCoverage)
	for _, tc := range matrix {
		byTactic[tc.TacticID] = tc
	}

	cred := byTactic["TA0006"]
	assert.Equal(t, 1, cred.Detected)
	found := false
	for _, tech := range cred.Techniques {
		if tech.ID == "T1110" {
			assert.True(t, tech.Detected)
			found = true
		} else {
			assert.False(t, tech.Detected)
		}
	}
	assert.True(t, found)

	// No rules cover lateral movement in this set.
	assert.Equal(t, 0, byTactic["TA0008"].Detected)
}

func TestCoverageMatrixEmptyInput(t *testing.T) {
	for _, tc := range CoverageMatrix(nil) {
		assert.Equal(t, 0, tc.Detected)
	}
}
