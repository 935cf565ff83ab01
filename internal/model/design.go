package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"remodel/internal/prepare"
)

// Dataset is the encoded regression input: the design matrix, the
// response vector, the trial counts for binomial responses, and the
// group index for the per-participant random intercept.
type Dataset struct {
	Cols   []string
	X      [][]float64
	Y      []float64
	Trials []float64
	Group  []int
	Groups []string

	// CovariateMeans holds the sample mean of every covariate, the
	// representative setting posterior evaluation holds covariates at.
	CovariateMeans map[string]float64
	// TrialsRef is the rounded mean trial count, used when simulating
	// binomial responses at a synthetic covariate setting.
	TrialsRef float64
}

// BuildDataset encodes prepared rows under a formula. Group levels are
// indexed in order of first appearance, so the encoding is
// deterministic for a fixed prepared table.
func BuildDataset(rows []prepare.Row, f Formula) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("model: prepared table is empty")
	}

	ds := &Dataset{
		Cols:           f.ColumnNames(),
		CovariateMeans: make(map[string]float64),
	}
	groupIdx := make(map[string]int)

	for i, r := range rows {
		y, ok := r.Value(f.Response)
		if !ok {
			return nil, fmt.Errorf("model: unknown response column %q", f.Response)
		}

		x, err := f.Encode(r.Treatment, r.Value)
		if err != nil {
			return nil, fmt.Errorf("model: row %d: %w", i, err)
		}

		if f.Trials != "" {
			n, ok := r.Value(f.Trials)
			if !ok {
				return nil, fmt.Errorf("model: unknown trials column %q", f.Trials)
			}
			if n <= 0 {
				return nil, fmt.Errorf("model: row %d: trials column %q is %v, want positive", i, f.Trials, n)
			}
			if y > n {
				return nil, fmt.Errorf("model: row %d: response %v exceeds trials %v", i, y, n)
			}
			ds.Trials = append(ds.Trials, n)
		}

		g, ok := groupIdx[r.Participant]
		if !ok {
			g = len(ds.Groups)
			groupIdx[r.Participant] = g
			ds.Groups = append(ds.Groups, r.Participant)
		}

		ds.X = append(ds.X, x)
		ds.Y = append(ds.Y, y)
		ds.Group = append(ds.Group, g)
	}

	for _, cov := range append(append([]string{}, f.Covariates...), f.TreatmentInteractions...) {
		if _, done := ds.CovariateMeans[cov]; done {
			continue
		}
		vals := make([]float64, len(rows))
		for i, r := range rows {
			vals[i], _ = r.Value(cov)
		}
		ds.CovariateMeans[cov] = stat.Mean(vals, nil)
	}

	if len(ds.Trials) > 0 {
		ds.TrialsRef = math.Round(stat.Mean(ds.Trials, nil))
	}
	return ds, nil
}
