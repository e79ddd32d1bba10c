package correlate

import (
	"socforge/core"
	"socforge/mitre"
)

// DerivePhase returns the furthest kill-chain phase reached by the given
// ATT&CK tactics. Tactics without a phase mapping are ignored; an empty or
// unmapped set reports reconnaissance, the earliest phase.
func DerivePhase(tactics []string) core.KillChainPhase {
	phase := core.PhaseReconnaissance
	for _, tactic := range tactics {
		if p, ok := mitre.PhaseForTactic(tactic); ok {
			phase = core.FurthestPhase(phase, p)
		}
	}
	return phase
}
