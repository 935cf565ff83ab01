package prepare

import (
	"fmt"
	"strconv"

	"remodel/internal/table"
)

// Row is one line of the prepared analysis table: the join of an
// observation with its requirement and participant, plus the derived
// response columns. The table is the single source of truth for every
// downstream analysis and is never mutated in place.
type Row struct {
	Participant string
	Requirement string
	Treatment   int
	Period      int

	Education       int
	ExpSE           float64 // rescaled to [0,1]
	ExpRE           float64 // rescaled to [0,1]
	PrimaryRole     string
	DomainTelemetry int
	DomainAero      int
	DomainDatabases int
	DomainOpenSrc   int
	ModelingFreq    int
	FormalTraining  bool
	ToolFamiliarity int

	ExpectedEntities    int
	MissingEntities     int
	EntitiesFound       int
	TooCoarseEntities   int
	SuperfluousEntities int

	ExpectedAssociations    int
	MissingAssociations     int
	AssociationsFound       int
	WrongAssociations       int
	SuperfluousAssociations int

	DurationZ        float64 // zero mean, unit variance across the table
	DurationCentered float64 // relative to the participant's own mean
}

// preparedColumns fixes the output column order of the prepared table.
var preparedColumns = []string{
	"participant", "requirement", "treatment", "period",
	"education", "exp_se", "exp_re", "primary_role",
	"domain_telemetry", "domain_aeronautics", "domain_databases", "domain_open_source",
	"modeling_freq", "formal_training", "tool_familiarity",
	"expected_entities", "missing_entities", "entities_found",
	"too_coarse_entities", "superfluous_entities",
	"expected_associations", "missing_associations", "associations_found",
	"wrong_associations", "superfluous_associations",
	"duration_z", "duration_centered",
}

// PreparedColumns returns the documented column order.
func PreparedColumns() []string {
	out := make([]string, len(preparedColumns))
	copy(out, preparedColumns)
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (r Row) record() []string {
	return []string{
		r.Participant, r.Requirement, strconv.Itoa(r.Treatment), strconv.Itoa(r.Period),
		strconv.Itoa(r.Education), formatFloat(r.ExpSE), formatFloat(r.ExpRE), r.PrimaryRole,
		strconv.Itoa(r.DomainTelemetry), strconv.Itoa(r.DomainAero),
		strconv.Itoa(r.DomainDatabases), strconv.Itoa(r.DomainOpenSrc),
		strconv.Itoa(r.ModelingFreq), formatBool(r.FormalTraining), strconv.Itoa(r.ToolFamiliarity),
		strconv.Itoa(r.ExpectedEntities), strconv.Itoa(r.MissingEntities), strconv.Itoa(r.EntitiesFound),
		strconv.Itoa(r.TooCoarseEntities), strconv.Itoa(r.SuperfluousEntities),
		strconv.Itoa(r.ExpectedAssociations), strconv.Itoa(r.MissingAssociations), strconv.Itoa(r.AssociationsFound),
		strconv.Itoa(r.WrongAssociations), strconv.Itoa(r.SuperfluousAssociations),
		formatFloat(r.DurationZ), formatFloat(r.DurationCentered),
	}
}

// Value exposes a numeric column by its prepared-table name. This is
// the lookup the modeling layer uses for responses, trial counts, and
// covariates alike.
func (r Row) Value(name string) (float64, bool) {
	switch name {
	case "treatment":
		return float64(r.Treatment), true
	case "period":
		return float64(r.Period), true
	case "education":
		return float64(r.Education), true
	case "exp_se":
		return r.ExpSE, true
	case "exp_re":
		return r.ExpRE, true
	case "domain_telemetry":
		return float64(r.DomainTelemetry), true
	case "domain_aeronautics":
		return float64(r.DomainAero), true
	case "domain_databases":
		return float64(r.DomainDatabases), true
	case "domain_open_source":
		return float64(r.DomainOpenSrc), true
	case "modeling_freq":
		return float64(r.ModelingFreq), true
	case "formal_training":
		if r.FormalTraining {
			return 1, true
		}
		return 0, true
	case "tool_familiarity":
		return float64(r.ToolFamiliarity), true
	case "expected_entities":
		return float64(r.ExpectedEntities), true
	case "missing_entities":
		return float64(r.MissingEntities), true
	case "entities_found":
		return float64(r.EntitiesFound), true
	case "too_coarse_entities":
		return float64(r.TooCoarseEntities), true
	case "superfluous_entities":
		return float64(r.SuperfluousEntities), true
	case "expected_associations":
		return float64(r.ExpectedAssociations), true
	case "missing_associations":
		return float64(r.MissingAssociations), true
	case "associations_found":
		return float64(r.AssociationsFound), true
	case "wrong_associations":
		return float64(r.WrongAssociations), true
	case "superfluous_associations":
		return float64(r.SuperfluousAssociations), true
	case "duration_z":
		return r.DurationZ, true
	case "duration_centered":
		return r.DurationCentered, true
	}
	return 0, false
}

// WritePrepared persists the analysis table with the documented header
// and column order. Re-running on unchanged input is byte-identical.
func WritePrepared(path string, rows []Row) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = r.record()
	}
	return table.WriteCSV(path, preparedColumns, records)
}

// LoadPrepared reads a previously written analysis table back.
func LoadPrepared(path string) ([]Row, error) {
	tab, err := table.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(tab.Rows))
	for i := range tab.Rows {
		var r Row
		var rowErr error
		str := func(col string) string {
			s, err := tab.Cell(i, col)
			if err != nil && rowErr == nil {
				rowErr = err
			}
			return s
		}
		num := func(col string) float64 {
			v, missing, err := tab.Float(i, col)
			if err != nil && rowErr == nil {
				rowErr = err
			}
			if missing && rowErr == nil {
				rowErr = fmt.Errorf("prepare: prepared table row %d: column %q is empty", i, col)
			}
			return v
		}

		r.Participant = str("participant")
		r.Requirement = str("requirement")
		r.Treatment = int(num("treatment"))
		r.Period = int(num("period"))
		r.Education = int(num("education"))
		r.ExpSE = num("exp_se")
		r.ExpRE = num("exp_re")
		r.PrimaryRole = str("primary_role")
		r.DomainTelemetry = int(num("domain_telemetry"))
		r.DomainAero = int(num("domain_aeronautics"))
		r.DomainDatabases = int(num("domain_databases"))
		r.DomainOpenSrc = int(num("domain_open_source"))
		r.ModelingFreq = int(num("modeling_freq"))
		r.FormalTraining = num("formal_training") != 0
		r.ToolFamiliarity = int(num("tool_familiarity"))
		r.ExpectedEntities = int(num("expected_entities"))
		r.MissingEntities = int(num("missing_entities"))
		r.EntitiesFound = int(num("entities_found"))
		r.TooCoarseEntities = int(num("too_coarse_entities"))
		r.SuperfluousEntities = int(num("superfluous_entities"))
		r.ExpectedAssociations = int(num("expected_associations"))
		r.MissingAssociations = int(num("missing_associations"))
		r.AssociationsFound = int(num("associations_found"))
		r.WrongAssociations = int(num("wrong_associations"))
		r.SuperfluousAssociations = int(num("superfluous_associations"))
		r.DurationZ = num("duration_z")
		r.DurationCentered = num("duration_centered")

		if rowErr != nil {
			return nil, rowErr
		}
		rows = append(rows, r)
	}
	return rows, nil
}
