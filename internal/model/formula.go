package model

import (
	"fmt"
	"strings"
)

// treatmentLevels is the number of non-baseline treatment codes. The
// treatment enters the design as dummy columns against baseline 0.
const treatmentLevels = 3

// Formula describes one regression: a response, its trial column for
// binomial responses, the covariates, the covariates interacted with
// the treatment factor, and the grouping column for the per-participant
// random intercept. The same encoding serves dataset rows and the
// synthetic covariate settings used by posterior evaluation.
type Formula struct {
	Response              string   `json:"response"`
	Trials                string   `json:"trials,omitempty"`
	Covariates            []string `json:"covariates"`
	TreatmentInteractions []string `json:"treatment_interactions"`
	Group                 string   `json:"group"`
}

// ColumnNames returns the design-matrix column names in encoding order:
// intercept, treatment dummies, covariates, then interaction columns.
func (f Formula) ColumnNames() []string {
	cols := []string{"intercept"}
	for k := 1; k <= treatmentLevels; k++ {
		cols = append(cols, fmt.Sprintf("treat%d", k))
	}
	cols = append(cols, f.Covariates...)
	for _, cov := range f.TreatmentInteractions {
		for k := 1; k <= treatmentLevels; k++ {
			cols = append(cols, fmt.Sprintf("treat%d:%s", k, cov))
		}
	}
	return cols
}

// Encode builds one design-matrix row. value resolves a covariate name
// to its numeric value; a missing covariate is an error because the
// design must stay rectangular.
func (f Formula) Encode(treatment int, value func(string) (float64, bool)) ([]float64, error) {
	if treatment < 0 || treatment > treatmentLevels {
		return nil, fmt.Errorf("model: treatment code %d outside [0,%d]", treatment, treatmentLevels)
	}

	row := make([]float64, 0, 1+treatmentLevels+len(f.Covariates)+treatmentLevels*len(f.TreatmentInteractions))
	row = append(row, 1)

	dummies := make([]float64, treatmentLevels)
	if treatment > 0 {
		dummies[treatment-1] = 1
	}
	row = append(row, dummies...)

	for _, cov := range f.Covariates {
		v, ok := value(cov)
		if !ok {
			return nil, fmt.Errorf("model: unknown covariate %q", cov)
		}
		row = append(row, v)
	}
	for _, cov := range f.TreatmentInteractions {
		v, ok := value(cov)
		if !ok {
			return nil, fmt.Errorf("model: unknown interaction covariate %q", cov)
		}
		for k := range dummies {
			row = append(row, dummies[k]*v)
		}
	}
	return row, nil
}

// String renders the formula in conventional notation, for logs.
func (f Formula) String() string {
	var b strings.Builder
	b.WriteString(f.Response)
	if f.Trials != "" {
		fmt.Fprintf(&b, " | trials(%s)", f.Trials)
	}
	b.WriteString(" ~ treatment")
	for _, cov := range f.TreatmentInteractions {
		b.WriteString(" * " + cov)
	}
	for _, cov := range f.Covariates {
		if !contains(f.TreatmentInteractions, cov) {
			b.WriteString(" + " + cov)
		}
	}
	fmt.Fprintf(&b, " + (1|%s)", f.Group)
	return b.String()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
