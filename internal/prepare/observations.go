package prepare

import (
	"fmt"

	"remodel/internal/table"
)

// Observation is one participant's attempt at modeling one requirement,
// with the six defect counts recorded by the human rater.
type Observation struct {
	Participant string
	Requirement string
	// Period is the 1-based position of this attempt within the
	// participant's session, assigned cyclically from row order.
	Period   int
	Duration float64 // minutes

	MissingEntities         int
	TooCoarseEntities       int
	SuperfluousEntities     int
	MissingAssociations     int
	WrongAssociations       int
	SuperfluousAssociations int

	ExpectedEntities     int
	ExpectedAssociations int
}

// observationCounts are the numeric columns an observation row must
// carry; a missing value in any of them drops the whole row.
var observationCounts = []string{
	"duration",
	"missing_entities",
	"too_coarse_entities",
	"superfluous_entities",
	"missing_associations",
	"wrong_associations",
	"superfluous_associations",
	"expected_entities",
	"expected_associations",
}

// LoadObservations reads the per-attempt results table. Rows with any
// missing value are dropped (recorded in the audit), excluded
// participants are removed, and the period is assigned by re-numbering
// 1..periods cyclically per participant in the surviving row order.
//
// The input must already be grouped by participant in chronological
// attempt order; there is no ordering key in the raw schema, so the
// loader validates what it can: no requirement may repeat within a
// participant, and no participant may exceed `periods` rows.
func LoadObservations(tab *table.Table, excluded map[string]bool, periods int, audit *Audit) ([]Observation, error) {
	obs := make([]Observation, 0, len(tab.Rows))
	seen := make(map[string]map[string]bool) // participant → requirement set
	counts := make(map[string]int)

	for i := range tab.Rows {
		pid, err := tab.Cell(i, "participant")
		if err != nil {
			return nil, err
		}
		rid, err := tab.Cell(i, "requirement")
		if err != nil {
			return nil, err
		}
		if pid == "" || rid == "" {
			return nil, fmt.Errorf("prepare: observations row %d: empty identifier", i)
		}
		if excluded[pid] {
			audit.exclude("observations", fmt.Sprintf("%s/%s", pid, rid))
			continue
		}

		vals := make(map[string]float64, len(observationCounts))
		incomplete := false
		for _, col := range observationCounts {
			v, missing, err := tab.Float(i, col)
			if err != nil {
				return nil, fmt.Errorf("prepare: %w", err)
			}
			if missing {
				incomplete = true
				audit.drop("observations", fmt.Sprintf("%s/%s", pid, rid),
					fmt.Sprintf("missing value in %s", col))
				break
			}
			vals[col] = v
		}
		if incomplete {
			continue
		}

		if seen[pid] == nil {
			seen[pid] = make(map[string]bool)
		}
		if seen[pid][rid] {
			return nil, fmt.Errorf("prepare: participant %s has duplicate observation for requirement %s", pid, rid)
		}
		seen[pid][rid] = true

		counts[pid]++
		if counts[pid] > periods {
			return nil, fmt.Errorf("prepare: participant %s has more than %d observations", pid, periods)
		}
		period := (counts[pid]-1)%periods + 1

		obs = append(obs, Observation{
			Participant:             pid,
			Requirement:             rid,
			Period:                  period,
			Duration:                vals["duration"],
			MissingEntities:         int(vals["missing_entities"]),
			TooCoarseEntities:       int(vals["too_coarse_entities"]),
			SuperfluousEntities:     int(vals["superfluous_entities"]),
			MissingAssociations:     int(vals["missing_associations"]),
			WrongAssociations:       int(vals["wrong_associations"]),
			SuperfluousAssociations: int(vals["superfluous_associations"]),
			ExpectedEntities:        int(vals["expected_entities"]),
			ExpectedAssociations:    int(vals["expected_associations"]),
		})
	}
	return obs, nil
}
