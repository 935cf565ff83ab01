package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// LOOResult is a leave-one-out estimate of out-of-sample predictive
// accuracy: the expected log pointwise predictive density, its
// standard error, and the per-observation contributions.
type LOOResult struct {
	ELPD      float64   `json:"elpd"`
	SE        float64   `json:"se"`
	Pointwise []float64 `json:"-"`
}

// LOO computes an importance-sampling leave-one-out estimate from a
// full fit and the dataset it was fit against.
func LOO(m *FittedModel, ds *Dataset) (LOOResult, error) {
	if m.PriorOnly {
		return LOOResult{}, fmt.Errorf("model: leave-one-out needs a full fit, got the prior-only fit of %q", m.Response)
	}
	if len(m.Draws) == 0 {
		return LOOResult{}, fmt.Errorf("model: fit %q has no draws", m.Name())
	}

	n := len(ds.Y)
	s := float64(len(m.Draws))
	res := LOOResult{Pointwise: make([]float64, n)}

	negLL := make([]float64, len(m.Draws))
	for i := 0; i < n; i++ {
		for k, draw := range m.Draws {
			beta, u, _, extras := m.Split(draw)
			eta := u[ds.Group[i]]
			for j, v := range ds.X[i] {
				eta += beta[j] * v
			}
			trials := 0.0
			if len(ds.Trials) > 0 {
				trials = ds.Trials[i]
			}
			negLL[k] = -logLik(m.Family, ds.Y[i], trials, eta, extras)
		}
		// Harmonic-mean importance weights: elpd_i = -log mean(1/p).
		res.Pointwise[i] = -(logSumExp(negLL) - math.Log(s))
		res.ELPD += res.Pointwise[i]
	}

	res.SE = stat.StdDev(res.Pointwise, nil) * math.Sqrt(float64(n))
	return res, nil
}

// Better reports whether alt predicts better than base by more than
// one standard error of the pointwise differences. Marginal
// differences do not count as better, so the caller can fall back to
// the simpler family.
func (alt LOOResult) Better(base LOOResult) bool {
	diff := alt.ELPD - base.ELPD
	if diff <= 0 {
		return false
	}
	n := len(alt.Pointwise)
	if n != len(base.Pointwise) || n == 0 {
		return diff > 0
	}
	d := make([]float64, n)
	for i := range d {
		d[i] = alt.Pointwise[i] - base.Pointwise[i]
	}
	seDiff := stat.StdDev(d, nil) * math.Sqrt(float64(n))
	return diff > seDiff
}

func logSumExp(xs []float64) float64 {
	max := math.Inf(-1)
	for _, x := range xs {
		if x > max {
			max = x
		}
	}
	if math.IsInf(max, -1) {
		return max
	}
	sum := 0.0
	for _, x := range xs {
		sum += math.Exp(x - max)
	}
	return max + math.Log(sum)
}
