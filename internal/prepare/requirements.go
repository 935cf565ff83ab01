package prepare

import (
	"fmt"
	"strings"

	"remodel/internal/table"
)

// Requirement is one of the four fixed natural-language specifications
// the participants modeled. Immutable reference data.
type Requirement struct {
	ID               string `json:"id"`
	PassiveVoice     bool   `json:"passive_voice"`
	AmbiguousPronoun bool   `json:"ambiguous_pronoun"`
	Treatment        int    `json:"treatment"`
}

// TreatmentCode derives the treatment from the two defect flags:
// passiveVoice + 2×ambiguousPronoun, so 0 = clean, 1 = passive voice,
// 2 = ambiguous pronoun, 3 = both.
func TreatmentCode(passiveVoice, ambiguousPronoun bool) int {
	code := 0
	if passiveVoice {
		code++
	}
	if ambiguousPronoun {
		code += 2
	}
	return code
}

// parseFlag coerces a defect flag cell to a boolean. Malformed flags
// violate the raw data contract and are fatal.
func parseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true, nil
	case "0", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("value %q is not boolean-coercible", s)
}

// LoadRequirements reads the experimental-objects table and derives the
// treatment code per requirement.
func LoadRequirements(tab *table.Table) ([]Requirement, error) {
	reqs := make([]Requirement, 0, len(tab.Rows))
	seen := make(map[string]bool)
	for i := range tab.Rows {
		id, err := tab.Cell(i, "requirement")
		if err != nil {
			return nil, err
		}
		if id == "" {
			return nil, fmt.Errorf("prepare: requirements row %d: empty identifier", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("prepare: duplicate requirement %q", id)
		}
		seen[id] = true

		pvRaw, err := tab.Cell(i, "passive_voice")
		if err != nil {
			return nil, err
		}
		pv, err := parseFlag(pvRaw)
		if err != nil {
			return nil, fmt.Errorf("prepare: requirement %q: passive_voice: %w", id, err)
		}
		apRaw, err := tab.Cell(i, "ambiguous_pronoun")
		if err != nil {
			return nil, err
		}
		ap, err := parseFlag(apRaw)
		if err != nil {
			return nil, fmt.Errorf("prepare: requirement %q: ambiguous_pronoun: %w", id, err)
		}

		reqs = append(reqs, Requirement{
			ID:               id,
			PassiveVoice:     pv,
			AmbiguousPronoun: ap,
			Treatment:        TreatmentCode(pv, ap),
		})
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("prepare: requirements table %q is empty", tab.Path)
	}
	return reqs, nil
}
