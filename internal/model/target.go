package model

import (
	"math"

	"remodel/internal/bayes"
)

// target adapts a dataset, family, and prior specification into the
// engine's log-density interface. The parameter vector is laid out as
// [coefficients, group intercepts, log group sd, family extras], all
// on unconstrained scales; constrained priors pick up the matching
// log-Jacobian terms.
type target struct {
	family    Family
	ds        *Dataset
	priors    Priors
	priorOnly bool
}

func newTarget(family Family, ds *Dataset, priors Priors, priorOnly bool) *target {
	return &target{family: family, ds: ds, priors: priors, priorOnly: priorOnly}
}

func (t *target) Dim() int {
	return len(t.ds.Cols) + len(t.ds.Groups) + 1 + t.family.extraCount()
}

func (t *target) Init() []float64 {
	return make([]float64, t.Dim())
}

func (t *target) split(theta []float64) (beta, u []float64, logSD float64, extras []float64) {
	p := len(t.ds.Cols)
	g := len(t.ds.Groups)
	return theta[:p], theta[p : p+g], theta[p+g], theta[p+g+1:]
}

func (t *target) LogDensity(theta []float64) float64 {
	beta, u, logSD, extras := t.split(theta)

	lp := t.priors.Intercept.LogProb(beta[0])
	for _, b := range beta[1:] {
		lp += t.priors.Slope.LogProb(b)
	}

	sd := math.Exp(logSD)
	lp += t.priors.GroupSD.LogProb(sd) + logSD
	for _, ui := range u {
		lp += normalLogPDF(ui, 0, sd)
	}

	switch t.family {
	case NegBinomial:
		lp += t.priors.Shape.LogProb(math.Exp(extras[0])) + extras[0]
	case ZINB:
		lp += t.priors.Shape.LogProb(math.Exp(extras[0])) + extras[0]
		zi := invLogit(extras[1])
		lp += t.priors.ZeroInflation.LogProb(zi) + math.Log(zi) + math.Log(1-zi)
	case Gaussian:
		lp += t.priors.Sigma.LogProb(math.Exp(extras[0])) + extras[0]
	case SkewNormal:
		lp += t.priors.Sigma.LogProb(math.Exp(extras[0])) + extras[0]
		lp += t.priors.Skew.LogProb(extras[1])
	}

	if t.priorOnly || math.IsInf(lp, -1) || math.IsNaN(lp) {
		return lp
	}

	for i, x := range t.ds.X {
		eta := u[t.ds.Group[i]]
		for j, v := range x {
			eta += beta[j] * v
		}
		trials := 0.0
		if len(t.ds.Trials) > 0 {
			trials = t.ds.Trials[i]
		}
		lp += logLik(t.family, t.ds.Y[i], trials, eta, extras)
	}
	return lp
}

var _ bayes.Target = (*target)(nil)
