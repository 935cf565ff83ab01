// Package prepare implements the data-preparation pipeline: it loads
// the three raw tables, sanitizes free-text survey fields, derives the
// treatment code and response columns, joins everything into one
// denormalized analysis table, and persists it. Pure transformation:
// raw files in, one flat table out.
package prepare

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"remodel/internal/table"
)

// Config selects the raw inputs and the exclusion list for one run.
type Config struct {
	RequirementsPath string
	ObservationsPath string
	DemographicsPath string
	Excluded         []string

	Logger *slog.Logger
}

// Result is the output of one pipeline run.
type Result struct {
	Rows         []Row
	Requirements []Requirement
	Participants []Participant
	Audit        Audit
}

// Run executes the full preparation pipeline. Data-integrity errors
// (malformed flags, observations referencing unknown participants or
// requirements) are fatal; incomplete rows and noisy survey text are
// recovered locally and recorded in the audit.
func Run(cfg Config) (*Result, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	excluded := make(map[string]bool, len(cfg.Excluded))
	for _, id := range cfg.Excluded {
		excluded[id] = true
	}

	reqTab, err := table.ReadCSV(cfg.RequirementsPath)
	if err != nil {
		return nil, err
	}
	reqs, err := LoadRequirements(reqTab)
	if err != nil {
		return nil, err
	}

	var audit Audit

	obsTab, err := table.ReadCSV(cfg.ObservationsPath)
	if err != nil {
		return nil, err
	}
	obs, err := LoadObservations(obsTab, excluded, len(reqs), &audit)
	if err != nil {
		return nil, err
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("prepare: no observations survive exclusion and drop")
	}

	demoTab, err := table.ReadCSV(cfg.DemographicsPath)
	if err != nil {
		return nil, err
	}
	parts, err := LoadParticipants(demoTab, excluded, &audit)
	if err != nil {
		return nil, err
	}
	RescaleExperience(parts)

	rows, err := assemble(obs, reqs, parts)
	if err != nil {
		return nil, err
	}

	logger.Info("prepared analysis table",
		"rows", len(rows),
		"requirements", len(reqs),
		"participants", len(parts),
		"dropped", audit.Dropped,
		"excluded", audit.Excluded,
		"defaulted", audit.Defaulted())

	return &Result{
		Rows:         rows,
		Requirements: reqs,
		Participants: parts,
		Audit:        audit,
	}, nil
}

// assemble joins observations with requirements and participants and
// derives the response columns. Every observation must match exactly
// one requirement and one participant; an unmatched row is a
// data-integrity error, never a silent null-fill.
func assemble(obs []Observation, reqs []Requirement, parts []Participant) ([]Row, error) {
	reqByID := make(map[string]*Requirement, len(reqs))
	for i := range reqs {
		reqByID[reqs[i].ID] = &reqs[i]
	}
	partByID := make(map[string]*Participant, len(parts))
	for i := range parts {
		partByID[parts[i].ID] = &parts[i]
	}

	durations := make([]float64, len(obs))
	perParticipant := make(map[string][]float64)
	for i, o := range obs {
		durations[i] = o.Duration
		perParticipant[o.Participant] = append(perParticipant[o.Participant], o.Duration)
	}
	durMean, durSD := meanSD(durations)

	participantMean := make(map[string]float64, len(perParticipant))
	for id, ds := range perParticipant {
		m, _ := meanSD(ds)
		participantMean[id] = m
	}

	rows := make([]Row, 0, len(obs))
	for _, o := range obs {
		req := reqByID[o.Requirement]
		if req == nil {
			return nil, fmt.Errorf("prepare: observation %s/%s references unknown requirement %q",
				o.Participant, o.Requirement, o.Requirement)
		}
		part := partByID[o.Participant]
		if part == nil {
			return nil, fmt.Errorf("prepare: observation %s/%s references unknown participant %q",
				o.Participant, o.Requirement, o.Participant)
		}

		z := 0.0
		if durSD > 0 {
			z = (o.Duration - durMean) / durSD
		}

		rows = append(rows, Row{
			Participant: o.Participant,
			Requirement: o.Requirement,
			Treatment:   req.Treatment,
			Period:      o.Period,

			Education:       part.Education,
			ExpSE:           part.ExpSE,
			ExpRE:           part.ExpRE,
			PrimaryRole:     part.PrimaryRole,
			DomainTelemetry: part.DomainTelemetry,
			DomainAero:      part.DomainAeronautics,
			DomainDatabases: part.DomainDatabases,
			DomainOpenSrc:   part.DomainOpenSource,
			ModelingFreq:    part.ModelingFreq,
			FormalTraining:  part.FormalTraining,
			ToolFamiliarity: part.ToolFamiliarity,

			ExpectedEntities:    o.ExpectedEntities,
			MissingEntities:     o.MissingEntities,
			EntitiesFound:       o.ExpectedEntities - o.MissingEntities,
			TooCoarseEntities:   o.TooCoarseEntities,
			SuperfluousEntities: o.SuperfluousEntities,

			ExpectedAssociations:    o.ExpectedAssociations,
			MissingAssociations:     o.MissingAssociations,
			AssociationsFound:       o.ExpectedAssociations - o.MissingAssociations,
			WrongAssociations:       o.WrongAssociations,
			SuperfluousAssociations: o.SuperfluousAssociations,

			DurationZ:        z,
			DurationCentered: o.Duration - participantMean[o.Participant],
		})
	}
	return rows, nil
}

func meanSD(vals []float64) (mean, sd float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	mean = stat.Mean(vals, nil)
	if len(vals) < 2 {
		// stat.StdDev is NaN for a single value.
		return mean, 0
	}
	return mean, stat.StdDev(vals, nil)
}
