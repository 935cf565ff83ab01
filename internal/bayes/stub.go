package bayes

import (
	"context"
	"fmt"
)

// Stub is a deterministic engine for tests: it returns prescribed
// draws instead of sampling. The draw list is dealt round-robin across
// chains so every chain sees the same distribution.
type Stub struct {
	Draws [][]float64
}

// Sample splits the prescribed draws across opts.Chains chains.
func (s *Stub) Sample(_ context.Context, t Target, opts Options) (*Sample, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(s.Draws) == 0 {
		return nil, fmt.Errorf("bayes: stub engine has no draws")
	}
	for i, d := range s.Draws {
		if len(d) != t.Dim() {
			return nil, fmt.Errorf("bayes: stub draw %d has length %d, want %d", i, len(d), t.Dim())
		}
	}

	chains := make([]Chain, opts.Chains)
	for i, d := range s.Draws {
		c := i % opts.Chains
		chains[c].Draws = append(chains[c].Draws, append([]float64(nil), d...))
		chains[c].Accepted++
		chains[c].Proposed++
	}
	return &Sample{Chains: chains}, nil
}
