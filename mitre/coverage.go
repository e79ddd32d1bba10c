package mitre

import "sort"

// TechniqueCoverage reports detection status for one technique
type TechniqueCoverage struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Detected bool   `json:"detected"`
}

// TacticCoverage groups technique coverage under one tactic
type TacticCoverage struct {
	TacticID   string              `json:"tactic_id"`
	Tactic     string              `json:"tactic"`
	Techniques []TechniqueCoverage `json:"techniques"`
	Total      int                 `json:"total"`
	Detected   int                 `json:"detected"`
}

// CoverageMatrix returns per-tactic detection coverage given the technique
// IDs observed in alerts. Tactics are ordered by ID, techniques by ID
// within each tactic.
func CoverageMatrix(detectedTechniqueIDs []string) []TacticCoverage {
	detected := make(map[string]bool, len(detectedTechniqueIDs))
	for _, id := range detectedTechniqueIDs {
		detected[id] = true
	}

	byTactic := make(map[string][]TechniqueCoverage)
	for _, tech := range techniques {
		byTactic[tech.TacticID] = append(byTactic[tech.TacticID], TechniqueCoverage{
			ID:       tech.ID,
			Name:     tech.Name,
			Detected: detected[tech.ID],
		})
	}

	out := make([]TacticCoverage, 0, len(tactics))
	for id, tactic := range tactics {
		techs := byTactic[id]
		sort.Slice(techs, func(i, j int) bool { return techs[i].ID < techs[j].ID })
		cov := TacticCoverage{
			TacticID:   id,
			Tactic:     tactic.Name,
			Techniques: techs,
			Total:      len(techs),
		}
		for _, tc := range techs {
			if tc.Detected {
				cov.Detected++
			}
		}
		out = append(out, cov)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TacticID < out[j].TacticID })
	return out
}
