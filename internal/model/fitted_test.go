package model

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

func TestMeanResponse(t *testing.T) {
	f := gaussianSpec().formula()
	ds, err := BuildDataset(testRows(), f)
	if err != nil {
		t.Fatalf("BuildDataset: %v", err)
	}

	cases := []struct {
		family Family
		last   float64
		want   float64
	}{
		{Gaussian, 0, 0},           // eta = 0
		{SkewNormal, 0, 0},         // alpha = 0 removes the skew shift
		{NegBinomial, 0, 1},        // exp(0)
		{ZINB, 0, 0.5},             // zi = invlogit(0) halves the count mean
		// sigma = 1, alpha = 4: mean = delta*sqrt(2/pi), delta = 4/sqrt(17).
		{SkewNormal, 4, 0.7740617},
	}
	for _, c := range cases {
		m := constantModel(t, c.family, f, ds, 4, c.last)
		got, err := m.MeanResponse(m.Draws[0], 0, nil)
		if err != nil {
			t.Fatalf("MeanResponse(%s): %v", c.family, err)
		}
		if math.Abs(got-c.want) > 1e-6 {
			t.Errorf("%s mean response = %v, want %v", c.family, got, c.want)
		}
	}

	bf := binomialSpec().formula()
	bds, err := BuildDataset(testRows(), bf)
	if err != nil {
		t.Fatalf("BuildDataset: %v", err)
	}
	bm := constantModel(t, Binomial, bf, bds, 4, 0)
	got, err := bm.MeanResponse(bm.Draws[0], 0, nil)
	if err != nil {
		t.Fatalf("MeanResponse(binomial): %v", err)
	}
	if got != 4 { // 8 trials at p = 0.5
		t.Errorf("binomial mean response = %v, want 4", got)
	}
}

func TestEncodeSetting_Overrides(t *testing.T) {
	f := gaussianSpec().formula()
	ds, err := BuildDataset(testRows(), f)
	if err != nil {
		t.Fatalf("BuildDataset: %v", err)
	}
	m := constantModel(t, Gaussian, f, ds, 4, 0)

	x, err := m.EncodeSetting(1, map[string]float64{"period": 4})
	if err != nil {
		t.Fatalf("EncodeSetting: %v", err)
	}
	// Columns: intercept, treat1..3, period, exp_se, treat1..3:period.
	if x[4] != 4 {
		t.Errorf("overridden period = %v, want 4", x[4])
	}
	if x[5] != ds.CovariateMeans["exp_se"] {
		t.Errorf("exp_se = %v, want its sample mean %v", x[5], ds.CovariateMeans["exp_se"])
	}
	if x[6] != 4 || x[7] != 0 {
		t.Errorf("interaction columns = %v, want treat1:period = 4 only", x[6:9])
	}
}

func TestSimulate_Moments(t *testing.T) {
	f := gaussianSpec().formula()
	ds, err := BuildDataset(testRows(), f)
	if err != nil {
		t.Fatalf("BuildDataset: %v", err)
	}
	rng := rand.New(rand.NewSource(5))
	const n = 20000

	sim := func(family Family, eta, last float64) []float64 {
		m := constantModel(t, family, f, ds, 4, last)
		m.TrialsRef = 8
		out := make([]float64, n)
		for i := range out {
			out[i] = m.Simulate(rng, m.Draws[0], eta)
		}
		return out
	}

	// Binomial(8, 0.5): mean 4.
	if mean := stat.Mean(sim(Binomial, 0, 0), nil); math.Abs(mean-4) > 0.05 {
		t.Errorf("binomial mean = %v, want 4", mean)
	}
	// Negative binomial with mu = e: mean e.
	if mean := stat.Mean(sim(NegBinomial, 1, 0), nil); math.Abs(mean-math.E) > 0.1 {
		t.Errorf("negbinomial mean = %v, want e", mean)
	}
	// ZINB with zi = 0.5 halves the mean and inflates zeros.
	zinb := sim(ZINB, 1, 0)
	if mean := stat.Mean(zinb, nil); math.Abs(mean-math.E/2) > 0.1 {
		t.Errorf("zinb mean = %v, want e/2", mean)
	}
	if zp := zeroProp(zinb); zp < 0.5 {
		t.Errorf("zinb zero proportion = %v, want above the 0.5 inflation floor", zp)
	}
	// Gaussian at eta = 2, sigma = 1.
	g := sim(Gaussian, 2, 0)
	if mean := stat.Mean(g, nil); math.Abs(mean-2) > 0.05 {
		t.Errorf("gaussian mean = %v, want 2", mean)
	}
	// Skew normal with alpha = 4: mean = delta*sqrt(2/pi).
	delta := 4 / math.Sqrt(17)
	want := delta * math.Sqrt(2/math.Pi)
	if mean := stat.Mean(sim(SkewNormal, 0, 4), nil); math.Abs(mean-want) > 0.05 {
		t.Errorf("skewnormal mean = %v, want %v", mean, want)
	}
}

func TestCoefInterval(t *testing.T) {
	f := gaussianSpec().formula()
	ds, err := BuildDataset(testRows(), f)
	if err != nil {
		t.Fatalf("BuildDataset: %v", err)
	}
	m := constantModel(t, Gaussian, f, ds, 0, 0)
	// Spread the treat1 coefficient over 1..100.
	dim := len(ds.Cols) + len(ds.Groups) + 2
	for i := 1; i <= 100; i++ {
		d := make([]float64, dim)
		d[1] = float64(i)
		m.Draws = append(m.Draws, d)
	}

	iv, err := m.CoefInterval("treat1", 0.9)
	if err != nil {
		t.Fatalf("CoefInterval: %v", err)
	}
	if iv.Median < 45 || iv.Median > 55 {
		t.Errorf("median = %v, want near 50", iv.Median)
	}
	if iv.Lower > 10 || iv.Upper < 90 {
		t.Errorf("interval [%v,%v] does not span the central 90%%", iv.Lower, iv.Upper)
	}
	if !iv.ExcludesZero() {
		t.Error("interval on 1..100 should exclude zero")
	}

	if _, err := m.CoefInterval("no_such", 0.9); err == nil {
		t.Error("unknown column accepted")
	}
}
