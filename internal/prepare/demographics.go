package prepare

import (
	"fmt"
	"strconv"
	"strings"

	"remodel/internal/table"
)

// Participant is the demographic and experience profile of one subject.
// Experience years stay raw here; the pipeline rescales them to [0,1]
// after applying the exclusion list.
type Participant struct {
	ID        string
	Education int // 0 high school < 1 bachelor < 2 master < 3 phd

	ExpSE float64 // software engineering, years
	ExpRE float64 // requirements engineering, years

	Roles       []int // aligned with RoleNames()
	PrimaryRole string

	DomainTelemetry   int // 1-5 ratings, 0 when unanswered
	DomainAeronautics int
	DomainDatabases   int
	DomainOpenSource  int

	ModelingFreq    int // 0 none < 1 rarely < 2 sometimes < 3 often
	FormalTraining  bool
	ToolFamiliarity int // same scale as ModelingFreq
}

// roleColumns maps the fixed role order onto demographics columns.
var roleColumns = []string{
	"role_requirements_engineer",
	"role_product_owner",
	"role_architect",
	"role_developer",
	"role_tester",
	"role_qa",
	"role_trainer",
	"role_manager",
}

// parseEducation maps a free-text education answer to its ordinal.
// Numeric answers pass through when already in 0..3.
func parseEducation(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return 0, false
	case strings.HasPrefix(s, "high"):
		return 0, true
	case strings.HasPrefix(s, "bachelor"):
		return 1, true
	case strings.HasPrefix(s, "master"):
		return 2, true
	case strings.HasPrefix(s, "ph"), strings.HasPrefix(s, "doctor"):
		return 3, true
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 && v <= 3 {
		return v, true
	}
	return 0, false
}

// parseFrequency maps None < Rarely < Sometimes < Often to 0..3.
func parseFrequency(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return 0, false
	case "none", "never":
		return 0, true
	case "rarely":
		return 1, true
	case "sometimes":
		return 2, true
	case "often":
		return 3, true
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 && v <= 3 {
		return v, true
	}
	return 0, false
}

// parseRating parses a 1-5 domain-knowledge rating; 0 means unanswered.
func parseRating(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 || v > 5 {
		return 0, false
	}
	return v, true
}

// LoadParticipants reads the demographics table, sanitizing every
// free-text field. Sanitization failures are expected survey noise:
// they default (0 / false) and land in the audit, never abort the run.
func LoadParticipants(tab *table.Table, excluded map[string]bool, audit *Audit) ([]Participant, error) {
	parts := make([]Participant, 0, len(tab.Rows))
	seen := make(map[string]bool)

	for i := range tab.Rows {
		id, err := tab.Cell(i, "participant")
		if err != nil {
			return nil, err
		}
		if id == "" {
			return nil, fmt.Errorf("prepare: demographics row %d: empty identifier", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("prepare: duplicate participant %q", id)
		}
		seen[id] = true
		if excluded[id] {
			audit.exclude("demographics", id)
			continue
		}

		var rowErr error
		cell := func(col string) string {
			s, err := tab.Cell(i, col)
			if err != nil && rowErr == nil {
				rowErr = err
			}
			return s
		}

		p := Participant{ID: id, Roles: make([]int, len(roleColumns))}

		eduRaw := cell("education")
		edu, ok := parseEducation(eduRaw)
		if !ok && eduRaw != "" {
			audit.defaulted("demographics", id, "education", eduRaw, "unparseable education level")
		}
		p.Education = edu

		p.ExpSE = sanitizeExperience(cell("exp_se"), id, "exp_se", audit)
		p.ExpRE = sanitizeExperience(cell("exp_re"), id, "exp_re", audit)

		for j, col := range roleColumns {
			p.Roles[j] = SanitizeIndicator(cell(col))
		}
		p.PrimaryRole = PrimaryRole(p.Roles)

		p.DomainTelemetry = sanitizeRating(cell("domain_telemetry"), id, "domain_telemetry", audit)
		p.DomainAeronautics = sanitizeRating(cell("domain_aeronautics"), id, "domain_aeronautics", audit)
		p.DomainDatabases = sanitizeRating(cell("domain_databases"), id, "domain_databases", audit)
		p.DomainOpenSource = sanitizeRating(cell("domain_open_source"), id, "domain_open_source", audit)

		p.ModelingFreq = sanitizeFrequency(cell("modeling_freq"), id, "modeling_freq", audit)
		p.ToolFamiliarity = sanitizeFrequency(cell("tool_familiarity"), id, "tool_familiarity", audit)
		p.FormalTraining = SanitizeYesNo(cell("formal_training"))

		if rowErr != nil {
			return nil, rowErr
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("prepare: demographics table %q has no usable rows", tab.Path)
	}
	return parts, nil
}

func sanitizeExperience(raw, id, col string, audit *Audit) float64 {
	v, ok := ParseDuration(raw)
	if !ok && strings.TrimSpace(raw) != "" {
		audit.defaulted("demographics", id, col, raw, "unparseable experience duration")
	}
	return v
}

func sanitizeRating(raw, id, col string, audit *Audit) int {
	v, ok := parseRating(raw)
	if !ok && strings.TrimSpace(raw) != "" {
		audit.defaulted("demographics", id, col, raw, "rating outside 1-5")
	}
	return v
}

func sanitizeFrequency(raw, id, col string, audit *Audit) int {
	v, ok := parseFrequency(raw)
	if !ok && strings.TrimSpace(raw) != "" {
		audit.defaulted("demographics", id, col, raw, "unparseable frequency")
	}
	return v
}

// RescaleExperience divides both experience columns by their
// post-exclusion sample maximum, in place.
func RescaleExperience(parts []Participant) {
	se := make([]float64, len(parts))
	re := make([]float64, len(parts))
	for i := range parts {
		se[i] = parts[i].ExpSE
		re[i] = parts[i].ExpRE
	}
	se, re = Rescale(se), Rescale(re)
	for i := range parts {
		parts[i].ExpSE = se[i]
		parts[i].ExpRE = re[i]
	}
}
