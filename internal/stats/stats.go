// Package stats computes the estimator bands spec.md §4.10 defines over
// a run's likelihood-weighted samples: mean, variance, a 90% confidence
// interval, relative error, and the fraction of non-loss iterations
// (original_source/abl.py's Samples usage via sim_analysis_functions,
// which wasn't part of the retrieved source — the formulas here follow
// spec.md directly).
package stats

import (
	"math"

	"github.com/greenan-labs/ablsim/internal/bigreal"
	"github.com/montanaflynn/stats"
)

// zScores maps the supported confidence levels to their standard-normal
// quantile. Only "0.90" is required by spec.md §4.10; more can be added
// without changing ConfInterval's signature.
var zScores = map[string]float64{
	"0.90": 1.645,
	"0.95": 1.96,
	"0.99": 2.576,
}

// Samples wraps a run's per-iteration weights (zero for non-loss runs)
// and reports the estimator quantities spec.md §4.10 defines.
type Samples struct {
	weights []float64
}

// New converts a slice of arbitrary-precision weights to the float64
// samples used by the reporting-boundary estimators, per spec.md §9
// ("Conversions to plain floats occur only at the estimator's reporting
// boundary").
func New(weights []bigreal.Real) *Samples {
	fs := make([]float64, len(weights))
	for i, w := range weights {
		fs[i] = w.Float64()
	}
	return &Samples{weights: fs}
}

// Len returns the number of samples.
func (s *Samples) Len() int { return len(s.weights) }

// Mean returns the arithmetic mean of the weights.
func (s *Samples) Mean() float64 {
	m, _ := stats.Mean(s.weights)
	return m
}

// Var returns the sample variance of the weights.
func (s *Samples) Var() float64 {
	v, _ := stats.SampleVariance(s.weights)
	return v
}

// ConfInterval returns the half-width of a two-sided confidence interval
// at the given level (only "0.90" is guaranteed by spec.md §4.10; other
// common levels are supported as a convenience). The interval itself is
// Mean() +/- the returned half-width.
func (s *Samples) ConfInterval(level string) float64 {
	z, ok := zScores[level]
	if !ok {
		z = zScores["0.90"]
	}
	n := float64(len(s.weights))
	if n == 0 {
		return 0
	}
	return z * math.Sqrt(s.Var()/n)
}

// RE returns the relative error: standard error of the mean divided by
// the mean. Returns 0 when the mean is exactly zero (no loss observed),
// since spec.md treats "no error within an iteration" as the governing
// rule and a zero mean carries no meaningful relative error to report.
func (s *Samples) RE() float64 {
	mean := s.Mean()
	if mean == 0 {
		return 0
	}
	n := float64(len(s.weights))
	stderr := math.Sqrt(s.Var() / n)
	return stderr / mean
}

// NumZeroes returns the count of exactly-zero weights, i.e. the number of
// non-loss iterations.
func (s *Samples) NumZeroes() int {
	n := 0
	for _, w := range s.weights {
		if w == 0 {
			n++
		}
	}
	return n
}
