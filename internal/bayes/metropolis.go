package bayes

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// chainSeedStride separates per-chain RNG streams. Chains are seeded
// independently, so running them in parallel cannot change the draws.
const chainSeedStride = 1_000_003

// Metropolis is an adaptive random-walk Metropolis engine with
// component-wise updates. Proposal scales adapt per dimension during
// warmup toward the component-wise optimal acceptance rate, then
// freeze, keeping the post-warmup kernel valid.
type Metropolis struct {
	// TargetAccept is the acceptance rate adaptation aims for.
	// Zero means 0.44, the component-wise optimum.
	TargetAccept float64
}

// NewMetropolis returns an engine with default adaptation settings.
func NewMetropolis() *Metropolis {
	return &Metropolis{}
}

// Sample runs opts.Chains independent chains, in parallel, and returns
// their post-warmup draws. Repeated runs with the same seed produce
// identical samples.
func (e *Metropolis) Sample(ctx context.Context, t Target, opts Options) (*Sample, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if t.Dim() < 1 {
		return nil, fmt.Errorf("bayes: target has no parameters")
	}

	chains := make([]Chain, opts.Chains)
	g, ctx := errgroup.WithContext(ctx)
	for c := 0; c < opts.Chains; c++ {
		c := c
		g.Go(func() error {
			ch, err := e.runChain(ctx, t, opts, c)
			if err != nil {
				return err
			}
			chains[c] = ch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Sample{Chains: chains}, nil
}

func (e *Metropolis) runChain(ctx context.Context, t Target, opts Options, chain int) (Chain, error) {
	rng := rand.New(rand.NewSource(opts.Seed + uint64(chain)*chainSeedStride))
	dim := t.Dim()

	targetAccept := e.TargetAccept
	if targetAccept == 0 {
		targetAccept = 0.44
	}
	initScale := opts.StepScale
	if initScale == 0 {
		initScale = 0.5
	}

	theta := append([]float64(nil), t.Init()...)
	if len(theta) != dim {
		return Chain{}, fmt.Errorf("bayes: init length %d, want %d", len(theta), dim)
	}
	// Per-chain jitter so chains start overdispersed.
	for j := range theta {
		theta[j] += 0.1 * rng.NormFloat64()
	}

	cur := t.LogDensity(theta)
	if math.IsNaN(cur) {
		return Chain{}, fmt.Errorf("bayes: log-density is NaN at the initial point")
	}

	scales := make([]float64, dim)
	for j := range scales {
		scales[j] = initScale
	}
	acceptWindow := make([]int, dim)
	proposeWindow := make([]int, dim)
	const adaptEvery = 50

	var out Chain
	keep := opts.Iterations - opts.Warmup
	out.Draws = make([][]float64, 0, keep)

	for iter := 0; iter < opts.Iterations; iter++ {
		if iter%100 == 0 {
			if err := ctx.Err(); err != nil {
				return Chain{}, err
			}
		}
		warm := iter < opts.Warmup

		for j := 0; j < dim; j++ {
			old := theta[j]
			theta[j] = old + scales[j]*rng.NormFloat64()
			prop := t.LogDensity(theta)

			if warm {
				proposeWindow[j]++
			} else {
				out.Proposed++
			}

			switch {
			case math.IsNaN(prop) || math.IsInf(prop, -1):
				if !warm {
					out.Divergences++
				}
				theta[j] = old
			case prop >= cur || math.Log(rng.Float64()) < prop-cur:
				cur = prop
				if warm {
					acceptWindow[j]++
				} else {
					out.Accepted++
				}
			default:
				theta[j] = old
			}
		}

		if warm && (iter+1)%adaptEvery == 0 {
			for j := range scales {
				if proposeWindow[j] == 0 {
					continue
				}
				rate := float64(acceptWindow[j]) / float64(proposeWindow[j])
				scales[j] *= math.Exp(rate - targetAccept)
				acceptWindow[j], proposeWindow[j] = 0, 0
			}
		}

		if !warm {
			out.Draws = append(out.Draws, append([]float64(nil), theta...))
		}
	}
	return out, nil
}
