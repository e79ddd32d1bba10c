package core

// KillChainPhase represents a stage of attack progression. Phases are
// ordered; an incident's reported phase only ever moves forward through
// this sequence, never backward.
type KillChainPhase string

const (
	PhaseReconnaissance    KillChainPhase = "reconnaissance"
	PhaseInitialAccess     KillChainPhase = "initial_access"
	PhaseExecution         KillChainPhase = "execution"
	PhaseCommandAndControl KillChainPhase = "command_and_control"
	PhaseLateralMovement   KillChainPhase = "lateral_movement"
	// PhaseExfiltration is the terminal phase. No built-in rule maps to it
	// yet; it exists so exfiltration detections slot in without reordering.
	PhaseExfiltration KillChainPhase = "exfiltration"
)

// killChainOrder defines attack progression. Index is the phase rank.
var killChainOrder = []KillChainPhase{
	PhaseReconnaissance,
	PhaseInitialAccess,
	PhaseExecution,
	PhaseCommandAndControl,
	PhaseLateralMovement,
	PhaseExfiltration,
}

var killChainRank = func() map[KillChainPhase]int {
	m := make(map[KillChainPhase]int, len(killChainOrder))
	for i, p := range killChainOrder {
		m[p] = i
	}
	return m
}()

// String returns the string representation
func (p KillChainPhase) String() string {
	return string(p)
}

// IsValid checks if the phase is a known value
func (p KillChainPhase) IsValid() bool {
	_, ok := killChainRank[p]
	return ok
}

// Rank returns the ordinal position of the phase in the kill chain.
// Unknown phases rank below reconnaissance.
func (p KillChainPhase) Rank() int {
	if r, ok := killChainRank[p]; ok {
		return r
	}
	return -1
}

// FurthestPhase returns the later of two phases.
func FurthestPhase(a, b KillChainPhase) KillChainPhase {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// KillChainPhases returns the ordered phase list, earliest first.
func KillChainPhases() []KillChainPhase {
	out := make([]KillChainPhase, len(killChainOrder))
	copy(out, killChainOrder)
	return out
}
