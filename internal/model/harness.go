package model

import (
	"context"
	"fmt"
	"log/slog"

	"remodel/internal/bayes"
	"remodel/internal/prepare"
)

// Spec is the tagged configuration record for one analysis: the
// response variable, its family, the optional alternative family to
// compare against, and the formula ingredients.
type Spec struct {
	Response              string
	Family                Family
	Compare               Family
	Trials                string
	Covariates            []string
	TreatmentInteractions []string
}

// formula builds the uniform regression structure every analysis
// shares: treatment interacted with period-style covariates, the
// confounder set, and a per-participant random intercept.
func (s Spec) formula() Formula {
	return Formula{
		Response:              s.Response,
		Trials:                s.Trials,
		Covariates:            s.Covariates,
		TreatmentInteractions: s.TreatmentInteractions,
		Group:                 "participant",
	}
}

// Cache stores fitted-model artifacts by name, making the fitting
// step idempotent: a cached fit is reused rather than recomputed.
type Cache interface {
	Load(name string) (*FittedModel, bool, error)
	Save(m *FittedModel) error
}

// Harness drives the fitting workflow for one response variable:
// prior-only and full fits, family comparison under leave-one-out,
// predictive checks, and the convergence gate.
type Harness struct {
	Engine  bayes.Engine
	Cache   Cache
	Logger  *slog.Logger
	Options bayes.Options
	Priors  Priors

	// CheckSims caps the replicate count per predictive check.
	// Zero means 200.
	CheckSims int
}

// NewHarness returns a harness with default priors around an engine.
func NewHarness(engine bayes.Engine, opts bayes.Options) *Harness {
	return &Harness{Engine: engine, Options: opts, Priors: DefaultPriors()}
}

func (h *Harness) log() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// FitResult is everything FitResponse produces for one response.
type FitResult struct {
	// Model is the selected full fit, Prior its prior-only companion.
	Model *FittedModel
	Prior *FittedModel
	// Rejected is the losing family's full fit when a comparison ran.
	Rejected *FittedModel

	LOO map[Family]LOOResult

	PriorCheck     Check
	PosteriorCheck Check

	// Dispersion is the response's index of dispersion, recorded for
	// count families to justify the negative-binomial choice.
	Dispersion float64
}

// Fit produces one fitted model, reusing a cached artifact when
// present. priorOnly fits sample from the priors alone.
func (h *Harness) Fit(ctx context.Context, rows []prepare.Row, spec Spec, family Family, priorOnly bool) (*FittedModel, *Dataset, error) {
	f := spec.formula()
	if family != Binomial {
		f.Trials = ""
	}
	ds, err := BuildDataset(rows, f)
	if err != nil {
		return nil, nil, err
	}

	name := ArtifactName(spec.Response, family, priorOnly)
	if h.Cache != nil {
		if m, ok, err := h.Cache.Load(name); err != nil {
			return nil, nil, err
		} else if ok {
			h.log().Info("reusing cached fit", "artifact", name, "draws", len(m.Draws))
			return m, ds, nil
		}
	}

	h.log().Info("fitting model",
		"artifact", name,
		"formula", f.String(),
		"rows", len(ds.Y),
		"chains", h.Options.Chains,
		"iterations", h.Options.Iterations)

	t := newTarget(family, ds, h.Priors, priorOnly)
	sample, err := h.Engine.Sample(ctx, t, h.Options)
	if err != nil {
		return nil, nil, fmt.Errorf("model: fit %q: %w", name, err)
	}

	m := &FittedModel{
		Response:       spec.Response,
		Family:         family,
		Formula:        f,
		Cols:           ds.Cols,
		Groups:         ds.Groups,
		PriorOnly:      priorOnly,
		Seed:           h.Options.Seed,
		Draws:          sample.Flatten(),
		Sampler:        sample.Chains,
		Diagnostics:    bayes.Diagnose(sample),
		CovariateMeans: ds.CovariateMeans,
		TrialsRef:      ds.TrialsRef,
	}
	h.log().Info("fit complete", "artifact", name, "diagnostics", m.Diagnostics.String())

	if h.Cache != nil {
		if err := h.Cache.Save(m); err != nil {
			return nil, nil, err
		}
	}
	return m, ds, nil
}

// FitResponse runs the whole workflow for one response: fit the
// configured family, fit and compare the alternative family if one is
// named, gate on convergence, then run prior- and posterior-predictive
// checks on the winner.
func (h *Harness) FitResponse(ctx context.Context, rows []prepare.Row, spec Spec) (*FitResult, error) {
	res := &FitResult{LOO: make(map[Family]LOOResult)}

	full, ds, err := h.Fit(ctx, rows, spec, spec.Family, false)
	if err != nil {
		return nil, err
	}

	if spec.Family.discrete() {
		res.Dispersion = IndexOfDispersion(ds.Y)
		h.log().Info("dispersion check",
			"response", spec.Response,
			"index", res.Dispersion,
			"overdispersed", Overdispersed(ds.Y))
	}

	res.Model = full
	if spec.Compare != "" {
		alt, altDS, err := h.Fit(ctx, rows, spec, spec.Compare, false)
		if err != nil {
			return nil, err
		}
		base, err := LOO(full, ds)
		if err != nil {
			return nil, err
		}
		cand, err := LOO(alt, altDS)
		if err != nil {
			return nil, err
		}
		res.LOO[spec.Family] = base
		res.LOO[spec.Compare] = cand

		res.Model, res.Rejected = selectFamily(full, alt, base, cand)
		if res.Model.Family == spec.Compare {
			ds = altDS
		}
		h.log().Info("family comparison",
			"response", spec.Response,
			"selected", res.Model.Family,
			"elpd_base", base.ELPD, "se_base", base.SE,
			"elpd_alt", cand.ELPD, "se_alt", cand.SE)
	}

	if !res.Model.Diagnostics.Converged() {
		return nil, fmt.Errorf("model: fit %q did not converge (%s); inspect diagnostics before trusting downstream evaluation",
			res.Model.Name(), res.Model.Diagnostics)
	}

	prior, _, err := h.Fit(ctx, rows, spec, res.Model.Family, true)
	if err != nil {
		return nil, err
	}
	res.Prior = prior

	sims := h.CheckSims
	if sims == 0 {
		sims = 200
	}
	res.PriorCheck = PredictiveCheck(prior, ds, sims, h.Options.Seed)
	res.PosteriorCheck = PredictiveCheck(res.Model, ds, sims, h.Options.Seed)
	h.log().Info("predictive checks",
		"response", spec.Response,
		"prior_pass", res.PriorCheck.Pass(),
		"posterior_pass", res.PosteriorCheck.Pass())

	return res, nil
}

// selectFamily picks the better fit under leave-one-out; marginal
// differences favor the simpler family.
func selectFamily(a, b *FittedModel, la, lb LOOResult) (selected, rejected *FittedModel) {
	switch {
	case lb.Better(la):
		return b, a
	case la.Better(lb):
		return a, b
	case b.Family.complexity() < a.Family.complexity():
		return b, a
	default:
		return a, b
	}
}
