package model

import (
	"context"
	"math"
	"testing"

	"remodel/internal/bayes"
)

// constEngine returns identical all-zero draws with only the final
// parameter set, which keeps diagnostics trivially converged and every
// downstream computation hand-checkable.
type constEngine struct {
	draws       int
	last        float64
	divergences int
	calls       int
}

func (e *constEngine) Sample(_ context.Context, t bayes.Target, opts bayes.Options) (*bayes.Sample, error) {
	e.calls++
	chains := make([]bayes.Chain, opts.Chains)
	for c := range chains {
		for i := 0; i < e.draws; i++ {
			d := make([]float64, t.Dim())
			d[t.Dim()-1] = e.last
			chains[c].Draws = append(chains[c].Draws, d)
		}
		chains[c].Accepted = e.draws
		chains[c].Proposed = e.draws
	}
	chains[0].Divergences = e.divergences
	return &bayes.Sample{Chains: chains}, nil
}

type memCache struct {
	models map[string]*FittedModel
}

func newMemCache() *memCache { return &memCache{models: map[string]*FittedModel{}} }

func (c *memCache) Load(name string) (*FittedModel, bool, error) {
	m, ok := c.models[name]
	return m, ok, nil
}

func (c *memCache) Save(m *FittedModel) error {
	c.models[m.Name()] = m
	return nil
}

func testOptions() bayes.Options {
	return bayes.Options{Chains: 2, Iterations: 10, Warmup: 2, Seed: 1}
}

func gaussianSpec() Spec {
	return Spec{
		Response:              "duration_z",
		Family:                Gaussian,
		Covariates:            []string{"period", "exp_se"},
		TreatmentInteractions: []string{"period"},
	}
}

func binomialSpec() Spec {
	return Spec{
		Response:              "missing_entities",
		Family:                Binomial,
		Trials:                "expected_entities",
		Covariates:            []string{"period", "exp_se"},
		TreatmentInteractions: []string{"period"},
	}
}

func TestHarnessFit_CacheReuse(t *testing.T) {
	engine := &constEngine{draws: 8}
	h := NewHarness(engine, testOptions())
	h.Cache = newMemCache()

	m1, _, err := h.Fit(context.Background(), testRows(), gaussianSpec(), Gaussian, false)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	m2, _, err := h.Fit(context.Background(), testRows(), gaussianSpec(), Gaussian, false)
	if err != nil {
		t.Fatalf("Fit (cached): %v", err)
	}
	if engine.calls != 1 {
		t.Errorf("engine called %d times, want 1 (second fit served from cache)", engine.calls)
	}
	if m1.Name() != m2.Name() || len(m2.Draws) != len(m1.Draws) {
		t.Error("cached model differs from the original fit")
	}
	if m1.Name() != "duration_z-gaussian" {
		t.Errorf("artifact name = %q", m1.Name())
	}
}

func TestHarnessFit_PriorArtifactName(t *testing.T) {
	h := NewHarness(&constEngine{draws: 8}, testOptions())
	m, _, err := h.Fit(context.Background(), testRows(), gaussianSpec(), Gaussian, true)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if m.Name() != "duration_z-gaussian.prior" {
		t.Errorf("prior artifact name = %q", m.Name())
	}
	if !m.PriorOnly {
		t.Error("prior fit not flagged PriorOnly")
	}
}

func TestFitResponse_TieFavorsSimplerFamily(t *testing.T) {
	// All-zero draws make gaussian and skew-normal (alpha = 0)
	// identical likelihoods, so leave-one-out ties and the simpler
	// gaussian family must win.
	spec := gaussianSpec()
	spec.Compare = SkewNormal

	h := NewHarness(&constEngine{draws: 8}, testOptions())
	res, err := h.FitResponse(context.Background(), testRows(), spec)
	if err != nil {
		t.Fatalf("FitResponse: %v", err)
	}

	if res.Model.Family != Gaussian {
		t.Errorf("selected family = %q, want gaussian on a tie", res.Model.Family)
	}
	if res.Rejected == nil || res.Rejected.Family != SkewNormal {
		t.Error("losing skew-normal fit not recorded")
	}
	if res.Prior == nil || !res.Prior.PriorOnly || res.Prior.Family != Gaussian {
		t.Errorf("prior fit = %+v, want prior-only gaussian", res.Prior)
	}
	if len(res.LOO) != 2 {
		t.Errorf("LOO results for %d families, want 2", len(res.LOO))
	}
	if math.Abs(res.LOO[Gaussian].ELPD-res.LOO[SkewNormal].ELPD) > 1e-9 {
		t.Errorf("elpd tie expected, got %v vs %v", res.LOO[Gaussian].ELPD, res.LOO[SkewNormal].ELPD)
	}
}

func TestFitResponse_Binomial(t *testing.T) {
	h := NewHarness(&constEngine{draws: 8}, testOptions())
	res, err := h.FitResponse(context.Background(), testRows(), binomialSpec())
	if err != nil {
		t.Fatalf("FitResponse: %v", err)
	}
	if res.Model.TrialsRef != 8 {
		t.Errorf("TrialsRef = %v, want 8", res.Model.TrialsRef)
	}
	if res.Dispersion == 0 {
		t.Error("dispersion not recorded for a count response")
	}
	if math.IsNaN(res.PosteriorCheck.Width("zero_prop")) {
		t.Error("discrete family check missing the zero-proportion statistic")
	}
}

func TestFitResponse_ConvergenceGate(t *testing.T) {
	h := NewHarness(&constEngine{draws: 8, divergences: 3}, testOptions())
	if _, err := h.FitResponse(context.Background(), testRows(), gaussianSpec()); err == nil {
		t.Fatal("divergent fit passed the convergence gate")
	}
}

func TestLOO_ConstantDraws(t *testing.T) {
	f := gaussianSpec().formula()
	ds, err := BuildDataset(testRows(), f)
	if err != nil {
		t.Fatalf("BuildDataset: %v", err)
	}

	h := NewHarness(&constEngine{draws: 8}, testOptions())
	m, _, err := h.Fit(context.Background(), testRows(), gaussianSpec(), Gaussian, false)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	res, err := LOO(m, ds)
	if err != nil {
		t.Fatalf("LOO: %v", err)
	}
	// Identical draws: elpd is just the standard-normal log density sum.
	want := 0.0
	for _, y := range ds.Y {
		want += normalLogPDF(y, 0, 1)
	}
	if math.Abs(res.ELPD-want) > 1e-9 {
		t.Errorf("elpd = %v, want %v", res.ELPD, want)
	}
	if res.SE <= 0 {
		t.Errorf("se = %v, want positive", res.SE)
	}

	if _, err := LOO(&FittedModel{PriorOnly: true, Response: "x"}, ds); err == nil {
		t.Error("LOO accepted a prior-only fit")
	}
}

func TestLOOBetter(t *testing.T) {
	base := LOOResult{ELPD: 0, Pointwise: []float64{0, 0, 0, 0}}
	marginal := LOOResult{ELPD: 0.1, Pointwise: []float64{0.5, -0.4, 0.3, -0.3}}
	clear := LOOResult{ELPD: 4.1, Pointwise: []float64{1, 1, 1, 1.1}}

	if marginal.Better(base) {
		t.Error("marginal improvement within one SE counted as better")
	}
	if !clear.Better(base) {
		t.Error("clear improvement not counted as better")
	}
	if base.Better(clear) {
		t.Error("worse fit counted as better")
	}
}

func TestProbeIndependence(t *testing.T) {
	h := NewHarness(&constEngine{draws: 8}, testOptions())
	results, err := h.ProbeIndependence(context.Background(), testRows(), gaussianSpec(), "period", "exp_se", 0.95)
	if err != nil {
		t.Fatalf("ProbeIndependence: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("probe results = %d, want both directions", len(results))
	}
	for _, r := range results {
		if r.Kept == r.Removed {
			t.Errorf("probe kept and removed the same covariate %q", r.Kept)
		}
		// Constant zero draws: intervals collapse at zero and are
		// unchanged by removal, but never exclude zero.
		if !r.MateriallyUnchanged {
			t.Errorf("%s without %s: interval changed for identical draws", r.Kept, r.Removed)
		}
		if r.Nonzero {
			t.Errorf("%s without %s: zero-width interval at 0 flagged nonzero", r.Kept, r.Removed)
		}
	}

	if _, err := h.ProbeIndependence(context.Background(), testRows(), gaussianSpec(), "period", "no_such", 0.95); err == nil {
		t.Error("probe accepted a covariate outside the specification")
	}
}
