package model

import (
	"context"
	"fmt"

	"remodel/internal/prepare"
)

// ProbeResult records one direction of a conditional-independence
// probe: the kept covariate's coefficient interval in the full model
// and in the model refit without its alleged confounder.
type ProbeResult struct {
	Kept    string   `json:"kept"`
	Removed string   `json:"removed"`
	Full    Interval `json:"full"`
	Reduced Interval `json:"reduced"`

	// MateriallyUnchanged holds when the reduced interval overlaps the
	// full one and its median moved by less than half the full width.
	MateriallyUnchanged bool `json:"materially_unchanged"`
	// Nonzero holds when both intervals exclude zero. Both directions
	// unchanged and nonzero means the covariates act independently.
	Nonzero bool `json:"nonzero"`
}

// ProbeIndependence tests whether an assumed causal edge between two
// covariates is spurious: the model is refit once without each
// covariate, and the other's credible interval is compared against the
// full fit. Results come back in both directions.
func (h *Harness) ProbeIndependence(ctx context.Context, rows []prepare.Row, spec Spec, covA, covB string, confidence float64) ([]ProbeResult, error) {
	if !contains(spec.Covariates, covA) || !contains(spec.Covariates, covB) {
		return nil, fmt.Errorf("model: probe covariates %q and %q must both be in the specification", covA, covB)
	}

	full, _, err := h.Fit(ctx, rows, spec, spec.Family, false)
	if err != nil {
		return nil, err
	}

	// Reduced refits are transient and would collide with the full
	// fit's artifact name, so they bypass the cache.
	uncached := *h
	uncached.Cache = nil

	var out []ProbeResult
	for _, pair := range [][2]string{{covA, covB}, {covB, covA}} {
		kept, removed := pair[0], pair[1]

		reducedSpec := spec
		reducedSpec.Covariates = without(spec.Covariates, removed)
		reducedSpec.TreatmentInteractions = without(spec.TreatmentInteractions, removed)

		reduced, _, err := uncached.Fit(ctx, rows, reducedSpec, spec.Family, false)
		if err != nil {
			return nil, err
		}

		fullIv, err := full.CoefInterval(kept, confidence)
		if err != nil {
			return nil, err
		}
		redIv, err := reduced.CoefInterval(kept, confidence)
		if err != nil {
			return nil, err
		}

		shift := redIv.Median - fullIv.Median
		if shift < 0 {
			shift = -shift
		}
		overlaps := redIv.Lower <= fullIv.Upper && fullIv.Lower <= redIv.Upper

		out = append(out, ProbeResult{
			Kept:                kept,
			Removed:             removed,
			Full:                fullIv,
			Reduced:             redIv,
			MateriallyUnchanged: overlaps && shift <= 0.5*fullIv.Width(),
			Nonzero:             fullIv.ExcludesZero() && redIv.ExcludesZero(),
		})
	}
	return out, nil
}

func without(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
