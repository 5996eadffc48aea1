package stats

import (
	"math"
	"testing"

	"github.com/greenan-labs/ablsim/internal/bigreal"
)

func toReals(vs []float64) []bigreal.Real {
	out := make([]bigreal.Real, len(vs))
	for i, v := range vs {
		out[i] = bigreal.New(v)
	}
	return out
}

func TestMeanOfAllZeroes(t *testing.T) {
	s := New(toReals([]float64{0, 0, 0, 0}))
	if s.Mean() != 0 {
		t.Fatalf("Mean: got %v, want 0", s.Mean())
	}
	if s.NumZeroes() != 4 {
		t.Fatalf("NumZeroes: got %d, want 4", s.NumZeroes())
	}
}

func TestMeanMatchesArithmeticMean(t *testing.T) {
	s := New(toReals([]float64{0, 0, 1, 1}))
	if got := s.Mean(); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("Mean: got %v, want 0.5", got)
	}
	if s.NumZeroes() != 2 {
		t.Fatalf("NumZeroes: got %d, want 2", s.NumZeroes())
	}
}

func TestConfIntervalNonNegative(t *testing.T) {
	s := New(toReals([]float64{0, 0, 1, 0, 0, 1, 0, 0, 0, 1}))
	ci := s.ConfInterval("0.90")
	if ci < 0 {
		t.Fatalf("ConfInterval: got %v, want >= 0", ci)
	}
}

func TestRelativeErrorZeroMean(t *testing.T) {
	s := New(toReals([]float64{0, 0, 0}))
	if got := s.RE(); got != 0 {
		t.Fatalf("RE with zero mean: got %v, want 0", got)
	}
}

func TestRelativeErrorShrinksWithMoreSamples(t *testing.T) {
	few := New(toReals([]float64{0, 0, 1, 0, 0}))
	many := New(toReals(repeatPattern([]float64{0, 0, 1, 0, 0}, 1000)))
	if many.RE() >= few.RE() {
		t.Fatalf("relative error should shrink with more samples: few=%v many=%v", few.RE(), many.RE())
	}
}

func repeatPattern(p []float64, n int) []float64 {
	out := make([]float64, 0, len(p)*n)
	for i := 0; i < n; i++ {
		out = append(out, p...)
	}
	return out
}
