package bayes

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Diagnostics summarizes sampler health for one fit. The harness
// refuses to hand a fit to posterior evaluation when Converged fails.
type Diagnostics struct {
	MaxRHat     float64 `json:"max_rhat"`
	MinESS      float64 `json:"min_ess"`
	AcceptRate  float64 `json:"accept_rate"`
	Divergences int     `json:"divergences"`
}

// rhatThreshold is the split-R̂ bound above which a fit is treated as
// non-converged and must not feed posterior evaluation.
const rhatThreshold = 1.05

// Converged reports whether the sampler diagnostics permit downstream use.
func (d Diagnostics) Converged() bool {
	return d.MaxRHat <= rhatThreshold && d.Divergences == 0
}

func (d Diagnostics) String() string {
	return fmt.Sprintf("rhat=%.3f ess=%.0f accept=%.2f divergences=%d",
		d.MaxRHat, d.MinESS, d.AcceptRate, d.Divergences)
}

// Diagnose computes convergence diagnostics across all parameters of a
// sample: the maximum split-R̂, the minimum effective sample size, the
// pooled acceptance rate, and the divergence count.
func Diagnose(s *Sample) Diagnostics {
	if len(s.Chains) == 0 || len(s.Chains[0].Draws) == 0 {
		return Diagnostics{MaxRHat: math.Inf(1)}
	}
	dim := len(s.Chains[0].Draws[0])

	d := Diagnostics{MinESS: math.Inf(1)}
	for p := 0; p < dim; p++ {
		seqs := s.ParamDraws(p)
		r := SplitRHat(seqs)
		if r > d.MaxRHat {
			d.MaxRHat = r
		}
		if e := EffectiveSampleSize(seqs); e < d.MinESS {
			d.MinESS = e
		}
	}

	accepted, proposed := 0, 0
	for _, c := range s.Chains {
		accepted += c.Accepted
		proposed += c.Proposed
		d.Divergences += c.Divergences
	}
	if proposed > 0 {
		d.AcceptRate = float64(accepted) / float64(proposed)
	}
	return d
}

// SplitRHat computes the split potential-scale-reduction statistic for
// one parameter: each chain is halved, and between- and within-sequence
// variances are compared. Values near 1 indicate the chains mixed.
func SplitRHat(chains [][]float64) float64 {
	var seqs [][]float64
	for _, c := range chains {
		if len(c) < 4 {
			return math.Inf(1)
		}
		half := len(c) / 2
		seqs = append(seqs, c[:half], c[half:half*2])
	}

	n := len(seqs[0])
	m := len(seqs)

	means := make([]float64, m)
	vars := make([]float64, m)
	for i, s := range seqs {
		means[i] = stat.Mean(s, nil)
		vars[i] = stat.Variance(s, nil)
	}

	w := stat.Mean(vars, nil)
	b := float64(n) * stat.Variance(means, nil)
	if w == 0 {
		// Degenerate chains (e.g. the stub engine): identical constant
		// sequences are trivially converged.
		if b == 0 {
			return 1
		}
		return math.Inf(1)
	}

	varPlus := float64(n-1)/float64(n)*w + b/float64(n)
	return math.Sqrt(varPlus / w)
}

// EffectiveSampleSize estimates the effective number of independent
// draws for one parameter using the initial-positive-sequence
// autocorrelation sum per chain.
func EffectiveSampleSize(chains [][]float64) float64 {
	total := 0.0
	for _, c := range chains {
		n := len(c)
		if n < 4 {
			continue
		}
		mean := stat.Mean(c, nil)
		v := stat.Variance(c, nil)
		if v == 0 {
			total += float64(n)
			continue
		}

		sum := 0.0
		for lag := 1; lag < n/2; lag++ {
			acf := 0.0
			for i := 0; i+lag < n; i++ {
				acf += (c[i] - mean) * (c[i+lag] - mean)
			}
			acf /= float64(n-lag) * v
			if acf <= 0 {
				break
			}
			sum += acf
		}
		total += float64(n) / (1 + 2*sum)
	}
	return total
}
