package posterior

import (
	"fmt"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"remodel/internal/model"
	"remodel/internal/table"
)

// MarginalPoint is one row of a marginal-effect curve: the expected
// response with a credible band at one covariate value, everything
// else held at its sample mean.
type MarginalPoint struct {
	Value    float64
	Estimate float64
	Lower    float64
	Upper    float64
	Label    string
}

// MarginalEffect sweeps one covariate over a grid and summarizes the
// posterior expected response at each value. The label ties exported
// curves back to their response variable when several analyses are
// plotted together.
func MarginalEffect(m *model.FittedModel, covariate string, grid []float64, confidence float64) ([]MarginalPoint, error) {
	if m.PriorOnly {
		return nil, fmt.Errorf("posterior: %q is a prior-only fit", m.Name())
	}
	if !m.Diagnostics.Converged() {
		return nil, fmt.Errorf("posterior: fit %q did not converge (%s); refit before evaluating", m.Name(), m.Diagnostics)
	}
	if len(grid) == 0 {
		return nil, fmt.Errorf("posterior: empty grid for covariate %q", covariate)
	}
	if _, ok := m.CovariateMeans[covariate]; !ok {
		return nil, fmt.Errorf("posterior: %q is not a covariate of fit %q", covariate, m.Name())
	}

	tail := (1 - confidence) / 2
	out := make([]MarginalPoint, 0, len(grid))
	means := make([]float64, len(m.Draws))
	for _, v := range grid {
		overrides := map[string]float64{covariate: v}
		for i, draw := range m.Draws {
			mu, err := m.MeanResponse(draw, 0, overrides)
			if err != nil {
				return nil, err
			}
			means[i] = mu
		}
		sort.Float64s(means)
		out = append(out, MarginalPoint{
			Value:    v,
			Estimate: stat.Quantile(0.5, stat.Empirical, means, nil),
			Lower:    stat.Quantile(tail, stat.Empirical, means, nil),
			Upper:    stat.Quantile(1-tail, stat.Empirical, means, nil),
			Label:    m.Response,
		})
	}
	return out, nil
}

// Grid builds an evenly spaced sweep over [lo, hi].
func Grid(lo, hi float64, steps int) []float64 {
	if steps < 2 {
		return []float64{lo}
	}
	out := make([]float64, steps)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(steps-1)
	}
	return out
}

// marginalColumns is the export schema shared across analyses.
var marginalColumns = []string{"value", "estimate", "lower", "upper", "label"}

// WriteMarginal persists a marginal-effect curve as a small delimited
// file for cross-analysis plotting.
func WriteMarginal(path string, points []MarginalPoint) error {
	records := make([][]string, len(points))
	for i, p := range points {
		records[i] = []string{
			strconv.FormatFloat(p.Value, 'g', -1, 64),
			strconv.FormatFloat(p.Estimate, 'g', -1, 64),
			strconv.FormatFloat(p.Lower, 'g', -1, 64),
			strconv.FormatFloat(p.Upper, 'g', -1, 64),
			p.Label,
		}
	}
	return table.WriteCSV(path, marginalColumns, records)
}
