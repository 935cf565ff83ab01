package bayes

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/stat"
)

// gaussianTarget is a standard-normal log-density shifted to mu.
type gaussianTarget struct {
	mu []float64
}

func (g gaussianTarget) Dim() int { return len(g.mu) }

func (g gaussianTarget) LogDensity(theta []float64) float64 {
	lp := 0.0
	for j, x := range theta {
		d := x - g.mu[j]
		lp -= 0.5 * d * d
	}
	return lp
}

func (g gaussianTarget) Init() []float64 { return make([]float64, len(g.mu)) }

func TestMetropolis_RecoversGaussian(t *testing.T) {
	target := gaussianTarget{mu: []float64{2, -1}}
	opts := Options{Chains: 4, Iterations: 3000, Warmup: 1000, Seed: 42}

	s, err := NewMetropolis().Sample(context.Background(), target, opts)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}

	draws := s.Flatten()
	if len(draws) != 4*2000 {
		t.Fatalf("draws = %d, want 8000", len(draws))
	}
	for j, want := range target.mu {
		col := make([]float64, len(draws))
		for i, d := range draws {
			col[i] = d[j]
		}
		if mean := stat.Mean(col, nil); math.Abs(mean-want) > 0.2 {
			t.Errorf("param %d posterior mean = %v, want near %v", j, mean, want)
		}
		if sd := stat.StdDev(col, nil); math.Abs(sd-1) > 0.25 {
			t.Errorf("param %d posterior sd = %v, want near 1", j, sd)
		}
	}

	d := Diagnose(s)
	if !d.Converged() {
		t.Errorf("gaussian fit not converged: %v", d)
	}
}

func TestMetropolis_Deterministic(t *testing.T) {
	target := gaussianTarget{mu: []float64{0.5}}
	opts := Options{Chains: 2, Iterations: 500, Warmup: 100, Seed: 7}

	s1, err := NewMetropolis().Sample(context.Background(), target, opts)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	s2, err := NewMetropolis().Sample(context.Background(), target, opts)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if diff := cmp.Diff(s1, s2); diff != "" {
		t.Errorf("same seed produced different samples (-first +second):\n%s", diff)
	}
}

func TestMetropolis_SeedChangesDraws(t *testing.T) {
	target := gaussianTarget{mu: []float64{0}}
	s1, err := NewMetropolis().Sample(context.Background(), target, Options{Chains: 1, Iterations: 200, Warmup: 50, Seed: 1})
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	s2, err := NewMetropolis().Sample(context.Background(), target, Options{Chains: 1, Iterations: 200, Warmup: 50, Seed: 2})
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if cmp.Equal(s1.Chains[0].Draws, s2.Chains[0].Draws) {
		t.Error("different seeds produced identical draws")
	}
}

func TestMetropolis_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	target := gaussianTarget{mu: []float64{0}}
	if _, err := NewMetropolis().Sample(ctx, target, DefaultOptions(1)); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestOptionsValidate(t *testing.T) {
	target := gaussianTarget{mu: []float64{0}}
	bad := []Options{
		{Chains: 0, Iterations: 100, Warmup: 10},
		{Chains: 2, Iterations: 100, Warmup: 100},
		{Chains: 2, Iterations: 100, Warmup: -1},
	}
	for i, opts := range bad {
		if _, err := NewMetropolis().Sample(context.Background(), target, opts); err == nil {
			t.Errorf("case %d: invalid options accepted", i)
		}
	}
}

func TestStub_DealsAcrossChains(t *testing.T) {
	stub := &Stub{Draws: [][]float64{{1}, {2}, {3}, {4}, {5}, {6}}}
	s, err := stub.Sample(context.Background(), gaussianTarget{mu: []float64{0}}, Options{Chains: 2, Iterations: 10, Warmup: 1})
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(s.Chains) != 2 {
		t.Fatalf("chains = %d, want 2", len(s.Chains))
	}
	want := [][]float64{{1}, {3}, {5}}
	if diff := cmp.Diff(want, s.Chains[0].Draws); diff != "" {
		t.Errorf("chain 0 draws mismatch (-want +got):\n%s", diff)
	}
	if got := len(s.Flatten()); got != 6 {
		t.Errorf("flattened draws = %d, want 6", got)
	}
}

func TestStub_DimMismatch(t *testing.T) {
	stub := &Stub{Draws: [][]float64{{1, 2}}}
	if _, err := stub.Sample(context.Background(), gaussianTarget{mu: []float64{0}}, Options{Chains: 1, Iterations: 10, Warmup: 1}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}
