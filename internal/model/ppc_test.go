package model

import (
	"testing"
)

// constantModel builds a fitted model whose draws are all zero except
// the final parameter.
func constantModel(t *testing.T, family Family, f Formula, ds *Dataset, draws int, last float64) *FittedModel {
	t.Helper()
	dim := len(ds.Cols) + len(ds.Groups) + 1 + family.extraCount()
	m := &FittedModel{
		Response:       f.Response,
		Family:         family,
		Formula:        f,
		Cols:           ds.Cols,
		Groups:         ds.Groups,
		CovariateMeans: ds.CovariateMeans,
		TrialsRef:      ds.TrialsRef,
	}
	for i := 0; i < draws; i++ {
		d := make([]float64, dim)
		d[dim-1] = last
		m.Draws = append(m.Draws, d)
	}
	return m
}

func TestPredictiveCheck_PosteriorNarrowerThanPrior(t *testing.T) {
	f := gaussianSpec().formula()
	ds, err := BuildDataset(testRows(), f)
	if err != nil {
		t.Fatalf("BuildDataset: %v", err)
	}

	// The "prior" stands much wider (sigma = e^2) than the
	// "posterior" (sigma = 1), as a real prior-predictive fit would.
	prior := constantModel(t, Gaussian, f, ds, 200, 2)
	prior.PriorOnly = true
	posterior := constantModel(t, Gaussian, f, ds, 200, 0)

	priorCheck := PredictiveCheck(prior, ds, 200, 11)
	postCheck := PredictiveCheck(posterior, ds, 200, 11)

	for _, stat := range []string{"mean", "sd"} {
		pw, qw := priorCheck.Width(stat), postCheck.Width(stat)
		if !(qw < pw) {
			t.Errorf("%s envelope: posterior width %v not narrower than prior %v", stat, qw, pw)
		}
	}

	// The observed z-scored durations sit well inside a standard
	// normal's envelope.
	if !postCheck.Pass() {
		t.Errorf("posterior check failed: %+v", postCheck.Stats)
	}
	for _, s := range priorCheck.Stats {
		if s.Name == "mean" && !s.Within {
			t.Errorf("observed mean %v outside the wide prior envelope [%v,%v]", s.Observed, s.Lower, s.Upper)
		}
	}
}

func TestPredictiveCheck_DetectsMisfit(t *testing.T) {
	f := gaussianSpec().formula()
	ds, err := BuildDataset(testRows(), f)
	if err != nil {
		t.Fatalf("BuildDataset: %v", err)
	}
	// Shift the observed response far outside anything a centered
	// standard normal would simulate.
	for i := range ds.Y {
		ds.Y[i] += 50
	}
	m := constantModel(t, Gaussian, f, ds, 200, 0)
	if PredictiveCheck(m, ds, 200, 11).Pass() {
		t.Error("check passed for data 50 sigma away from the model")
	}
}

func TestPredictiveCheck_DiscreteStats(t *testing.T) {
	f := binomialSpec().formula()
	ds, err := BuildDataset(testRows(), f)
	if err != nil {
		t.Fatalf("BuildDataset: %v", err)
	}
	m := constantModel(t, Binomial, f, ds, 100, 0)
	check := PredictiveCheck(m, ds, 100, 3)

	names := map[string]bool{}
	for _, s := range check.Stats {
		names[s.Name] = true
	}
	for _, want := range []string{"mean", "sd", "max", "zero_prop"} {
		if !names[want] {
			t.Errorf("discrete check missing statistic %q", want)
		}
	}
}
