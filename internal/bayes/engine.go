// Package bayes provides the sampling-based inference capability the
// modeling harness configures: a Target log-density to sample from, an
// Engine that produces chains of posterior draws, and convergence
// diagnostics over the result. The harness treats the engine as a
// black box; alternative engines only need to satisfy the interface.
package bayes

import (
	"context"
	"fmt"
)

// Target is a log-density over an unconstrained parameter vector.
type Target interface {
	// Dim is the length of the parameter vector.
	Dim() int
	// LogDensity evaluates the unnormalized log-density at theta.
	// It may return -Inf for invalid regions.
	LogDensity(theta []float64) float64
	// Init returns a starting point. Engines jitter it per chain.
	Init() []float64
}

// Options fixes the sampling run. The defaults match the study design:
// 4 chains of 4000 iterations with the first 1000 discarded as warmup.
type Options struct {
	Chains     int
	Iterations int
	Warmup     int
	Seed       uint64
	// StepScale is the initial proposal standard deviation before
	// warmup adaptation. Zero means the engine default.
	StepScale float64
}

// DefaultOptions returns the study's fixed sampling parameters.
func DefaultOptions(seed uint64) Options {
	return Options{Chains: 4, Iterations: 4000, Warmup: 1000, Seed: seed}
}

func (o Options) validate() error {
	if o.Chains < 1 {
		return fmt.Errorf("bayes: chains %d < 1", o.Chains)
	}
	if o.Warmup < 0 || o.Warmup >= o.Iterations {
		return fmt.Errorf("bayes: warmup %d outside [0,%d)", o.Warmup, o.Iterations)
	}
	return nil
}

// Chain holds one chain's post-warmup draws plus sampling counters.
type Chain struct {
	Draws       [][]float64 `json:"draws"`
	Accepted    int         `json:"accepted"`
	Proposed    int         `json:"proposed"`
	Divergences int         `json:"divergences"`
}

// AcceptRate is the fraction of proposals accepted after warmup.
func (c Chain) AcceptRate() float64 {
	if c.Proposed == 0 {
		return 0
	}
	return float64(c.Accepted) / float64(c.Proposed)
}

// Sample is the result of one engine run.
type Sample struct {
	Chains []Chain `json:"chains"`
}

// Flatten concatenates all chains' draws in chain order.
func (s *Sample) Flatten() [][]float64 {
	var n int
	for _, c := range s.Chains {
		n += len(c.Draws)
	}
	out := make([][]float64, 0, n)
	for _, c := range s.Chains {
		out = append(out, c.Draws...)
	}
	return out
}

// ParamDraws extracts one parameter's draws per chain, for diagnostics.
func (s *Sample) ParamDraws(idx int) [][]float64 {
	out := make([][]float64, len(s.Chains))
	for i, c := range s.Chains {
		seq := make([]float64, len(c.Draws))
		for j, d := range c.Draws {
			seq[j] = d[idx]
		}
		out[i] = seq
	}
	return out
}

// Engine runs sampling-based inference against a Target.
type Engine interface {
	Sample(ctx context.Context, t Target, opts Options) (*Sample, error)
}
