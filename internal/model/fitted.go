package model

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"remodel/internal/bayes"
)

// FittedModel is the persisted result of one fit: the posterior draws
// together with everything needed to interpret them later without the
// prepared table at hand. Artifacts are cached by name and reused
// across runs.
type FittedModel struct {
	Response  string        `json:"response"`
	Family    Family        `json:"family"`
	Formula   Formula       `json:"formula"`
	Cols      []string      `json:"cols"`
	Groups    []string      `json:"groups"`
	PriorOnly bool          `json:"prior_only"`
	Seed      uint64        `json:"seed"`
	Draws     [][]float64   `json:"draws"`
	Sampler   []bayes.Chain `json:"sampler"`

	Diagnostics bayes.Diagnostics `json:"diagnostics"`

	CovariateMeans map[string]float64 `json:"covariate_means"`
	TrialsRef      float64            `json:"trials_ref,omitempty"`
}

// ArtifactName derives the deterministic cache key for a fit.
func ArtifactName(response string, family Family, priorOnly bool) string {
	name := fmt.Sprintf("%s-%s", response, family)
	if priorOnly {
		name += ".prior"
	}
	return name
}

// Name returns this model's artifact name.
func (m *FittedModel) Name() string {
	return ArtifactName(m.Response, m.Family, m.PriorOnly)
}

// Split decomposes one posterior draw into coefficients, group
// intercepts, the group standard deviation, and family extras.
func (m *FittedModel) Split(draw []float64) (beta, u []float64, sd float64, extras []float64) {
	p := len(m.Cols)
	g := len(m.Groups)
	return draw[:p], draw[p : p+g], math.Exp(draw[p+g]), draw[p+g+1:]
}

// EncodeSetting builds a design row for a synthetic covariate setting:
// every covariate defaults to its sample mean unless overridden.
func (m *FittedModel) EncodeSetting(treatment int, overrides map[string]float64) ([]float64, error) {
	return m.Formula.Encode(treatment, func(name string) (float64, bool) {
		if v, ok := overrides[name]; ok {
			return v, true
		}
		v, ok := m.CovariateMeans[name]
		return v, ok
	})
}

// LinearPredictor evaluates x·beta for one draw and one design row.
func (m *FittedModel) LinearPredictor(draw, x []float64) float64 {
	beta, _, _, _ := m.Split(draw)
	eta := 0.0
	for j, v := range x {
		eta += beta[j] * v
	}
	return eta
}

// Simulate draws one response from the family's sampling distribution
// at linear predictor eta, using the draw's auxiliary parameters and
// the reference trial count for binomial responses.
func (m *FittedModel) Simulate(rng *rand.Rand, draw []float64, eta float64) float64 {
	return simulateAt(rng, m.Family, eta, m.TrialsRef, extrasOf(m, draw))
}

// SimulateTrials is Simulate with an explicit trial count, for
// replicating observed rows that carry their own trials.
func (m *FittedModel) SimulateTrials(rng *rand.Rand, draw []float64, eta, trials float64) float64 {
	return simulateAt(rng, m.Family, eta, trials, extrasOf(m, draw))
}

func extrasOf(m *FittedModel, draw []float64) []float64 {
	_, _, _, extras := m.Split(draw)
	return extras
}

func simulateAt(rng *rand.Rand, family Family, eta, trials float64, extras []float64) float64 {
	switch family {
	case Binomial:
		return distuv.Binomial{N: trials, P: invLogit(eta), Src: rng}.Rand()
	case NegBinomial:
		return negBinomialRand(rng, math.Exp(eta), math.Exp(extras[0]))
	case ZINB:
		if rng.Float64() < invLogit(extras[1]) {
			return 0
		}
		return negBinomialRand(rng, math.Exp(eta), math.Exp(extras[0]))
	case Gaussian:
		return distuv.Normal{Mu: eta, Sigma: math.Exp(extras[0]), Src: rng}.Rand()
	case SkewNormal:
		return skewNormalRand(rng, eta, math.Exp(extras[0]), extras[1])
	}
	return math.NaN()
}

// negBinomialRand samples via the gamma-Poisson mixture.
func negBinomialRand(rng *rand.Rand, mu, shape float64) float64 {
	lambda := distuv.Gamma{Alpha: shape, Beta: shape / mu, Src: rng}.Rand()
	return distuv.Poisson{Lambda: lambda, Src: rng}.Rand()
}

func skewNormalRand(rng *rand.Rand, loc, scale, alpha float64) float64 {
	delta := alpha / math.Sqrt(1+alpha*alpha)
	u0 := rng.NormFloat64()
	u1 := rng.NormFloat64()
	z := delta*math.Abs(u0) + math.Sqrt(1-delta*delta)*u1
	return loc + scale*z
}

// MeanResponse evaluates the family's expected response for one draw
// at a synthetic covariate setting, with a fresh group intercept of
// zero (the random-intercept mean).
func (m *FittedModel) MeanResponse(draw []float64, treatment int, overrides map[string]float64) (float64, error) {
	x, err := m.EncodeSetting(treatment, overrides)
	if err != nil {
		return 0, err
	}
	eta := m.LinearPredictor(draw, x)
	extras := extrasOf(m, draw)
	switch m.Family {
	case Binomial:
		return m.TrialsRef * invLogit(eta), nil
	case NegBinomial:
		return math.Exp(eta), nil
	case ZINB:
		return (1 - invLogit(extras[1])) * math.Exp(eta), nil
	case Gaussian:
		return eta, nil
	case SkewNormal:
		delta := extras[1] / math.Sqrt(1+extras[1]*extras[1])
		return eta + math.Exp(extras[0])*delta*math.Sqrt(2/math.Pi), nil
	}
	return 0, fmt.Errorf("model: unknown family %q", m.Family)
}

// Interval is a central credible interval for one quantity.
type Interval struct {
	Lower  float64 `json:"lower"`
	Median float64 `json:"median"`
	Upper  float64 `json:"upper"`
}

// Width returns the interval's length.
func (iv Interval) Width() float64 { return iv.Upper - iv.Lower }

// ExcludesZero reports whether the interval lies entirely on one side
// of zero.
func (iv Interval) ExcludesZero() bool {
	return iv.Lower > 0 || iv.Upper < 0
}

// CoefInterval computes the central credible interval at the given
// confidence level for a named design column's coefficient.
func (m *FittedModel) CoefInterval(col string, confidence float64) (Interval, error) {
	idx := -1
	for j, c := range m.Cols {
		if c == col {
			idx = j
			break
		}
	}
	if idx < 0 {
		return Interval{}, fmt.Errorf("model: no coefficient for column %q", col)
	}

	vals := make([]float64, len(m.Draws))
	for i, d := range m.Draws {
		vals[i] = d[idx]
	}
	sort.Float64s(vals)

	tail := (1 - confidence) / 2
	return Interval{
		Lower:  stat.Quantile(tail, stat.Empirical, vals, nil),
		Median: stat.Quantile(0.5, stat.Empirical, vals, nil),
		Upper:  stat.Quantile(1-tail, stat.Empirical, vals, nil),
	}, nil
}
