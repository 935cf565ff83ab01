package model

import (
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

// CheckStat is one summary statistic's predictive envelope: the
// observed value against the central 95% interval of the same
// statistic over simulated replicate datasets.
type CheckStat struct {
	Name     string  `json:"name"`
	Observed float64 `json:"observed"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
	Within   bool    `json:"within"`
}

// Check is the result of a prior- or posterior-predictive check.
type Check struct {
	Stats []CheckStat `json:"stats"`
}

// Pass reports whether every observed statistic lies inside its
// simulated envelope.
func (c Check) Pass() bool {
	for _, s := range c.Stats {
		if !s.Within {
			return false
		}
	}
	return true
}

// Width returns the envelope width for a named statistic, or NaN if
// the check did not compute it. Posterior envelopes are expected to be
// narrower than prior envelopes for the same statistic.
func (c Check) Width(name string) float64 {
	for _, s := range c.Stats {
		if s.Name == name {
			return s.Upper - s.Lower
		}
	}
	return math.NaN()
}

// PredictiveCheck simulates replicate datasets from a fit and compares
// summary statistics of the real response against the simulation
// envelope. The same routine serves prior-predictive checks (on a
// prior-only fit) and posterior-predictive checks (on a full fit).
func PredictiveCheck(m *FittedModel, ds *Dataset, sims int, seed uint64) Check {
	if sims <= 0 || sims > len(m.Draws) {
		sims = len(m.Draws)
	}
	stride := len(m.Draws) / sims
	if stride < 1 {
		stride = 1
	}
	rng := rand.New(rand.NewSource(seed))

	stats := []struct {
		name string
		fn   func([]float64) float64
	}{
		{"mean", func(y []float64) float64 { return stat.Mean(y, nil) }},
		{"sd", func(y []float64) float64 { return stat.StdDev(y, nil) }},
		{"max", maxOf},
	}
	if m.Family.discrete() {
		stats = append(stats, struct {
			name string
			fn   func([]float64) float64
		}{"zero_prop", zeroProp})
	}

	simulated := make([][]float64, len(stats))
	rep := make([]float64, len(ds.Y))
	for s := 0; s < sims; s++ {
		draw := m.Draws[s*stride]
		beta, u, _, _ := m.Split(draw)
		for i, x := range ds.X {
			eta := u[ds.Group[i]]
			for j, v := range x {
				eta += beta[j] * v
			}
			trials := m.TrialsRef
			if len(ds.Trials) > 0 {
				trials = ds.Trials[i]
			}
			rep[i] = m.SimulateTrials(rng, draw, eta, trials)
		}
		for k, st := range stats {
			simulated[k] = append(simulated[k], st.fn(rep))
		}
	}

	var out Check
	for k, st := range stats {
		sort.Float64s(simulated[k])
		lower := stat.Quantile(0.025, stat.Empirical, simulated[k], nil)
		upper := stat.Quantile(0.975, stat.Empirical, simulated[k], nil)
		obs := st.fn(ds.Y)
		out.Stats = append(out.Stats, CheckStat{
			Name:     st.name,
			Observed: obs,
			Lower:    lower,
			Upper:    upper,
			Within:   obs >= lower && obs <= upper,
		})
	}
	return out
}

func maxOf(y []float64) float64 {
	max := math.Inf(-1)
	for _, v := range y {
		if v > max {
			max = v
		}
	}
	return max
}

func zeroProp(y []float64) float64 {
	n := 0
	for _, v := range y {
		if v == 0 {
			n++
		}
	}
	return float64(n) / float64(len(y))
}
