package component

import (
	"math"

	"github.com/greenan-labs/ablsim/internal/build"
	"gitlab.com/NebulousLabs/errors"
)

// ErrNotHomogeneous is returned by NewHomogeneousWaitingTime when the
// supplied components don't all share one failure distribution and one
// repair distribution. BFB's inverse-transform waiting-time draw (spec.md
// §4.6) assumes a single pair of distributions across the whole array; it
// is a precondition failure, not a recoverable per-iteration case, to
// violate that.
var ErrNotHomogeneous = errors.New("component: fail/repair distributions are not homogeneous across components")

// HomogeneousWaitingTime draws the time to the next event across a set of
// components that all share the same failure distribution and the same
// repair distribution, via the inverse-transform method: rather than
// drawing each component's own waiting time and taking the minimum, it
// solves directly for the waiting time of the *system's* combined hazard
// rate. This is what lets BFB bias the combined rate and still recover a
// single coherent waiting time (original_source/lib/smp_data_structures.py's
// InverseTransformHomogeneousFailRepairRates).
type HomogeneousWaitingTime struct {
	components []*Component

	failShape, failScale     float64
	repairShape, repairScale float64

	failScaleToShape   float64
	repairScaleToShape float64
}

// NewHomogeneousWaitingTime validates that every component shares the first
// component's failure and repair distributions and returns a solver over
// them.
func NewHomogeneousWaitingTime(components []*Component) (*HomogeneousWaitingTime, error) {
	if len(components) == 0 {
		return nil, errors.New("component: HomogeneousWaitingTime requires at least one component")
	}
	first := components[0]
	h := &HomogeneousWaitingTime{
		components:  components,
		failShape:   first.FailDist.Shape,
		failScale:   first.FailDist.Scale,
		repairShape: first.RepairDist.Shape,
		repairScale: first.RepairDist.Scale,
	}
	h.failScaleToShape = math.Pow(h.failScale, h.failShape)
	h.repairScaleToShape = math.Pow(h.repairScale, h.repairShape)

	for _, c := range components {
		if c.FailDist.Shape != h.failShape || c.FailDist.Scale != h.failScale ||
			c.RepairDist.Shape != h.repairShape || c.RepairDist.Scale != h.repairScale ||
			c.FailDist.Location != first.FailDist.Location ||
			c.RepairDist.Location != first.RepairDist.Location {
			return nil, ErrNotHomogeneous
		}
	}
	return h, nil
}

func clockValue(clock, location float64) float64 {
	if clock-location < 0 {
		return 0
	}
	return clock - location
}

// nonNegative clamps x to 0: the secant solver's intermediate iterates can
// briefly extrapolate to a negative waiting time before converging, and
// (x+cv)^shape for a non-integer shape is NaN for a negative base.
func nonNegative(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

// equation evaluates the root function at x for the given device indices
// and uniform draw u, per spec.md §4.7:
//
//	Σ_a [((c_a+W)^k_f - c_a^k_f)/λ_f^k_f] + Σ_f [((r_f+W)^k_r - r_f^k_r)/λ_r^k_r] = -ln(U)
//
// equation(x) is the left-hand composite hazard integral S(x) minus the
// right-hand -ln(u), zero at the drawn waiting time W.
func (h *HomogeneousWaitingTime) equation(x, u float64, avail, failed []int) float64 {
	s := 0.0
	for _, a := range avail {
		loc := h.components[a].FailDist.Location
		cv := clockValue(h.components[a].Clock, loc)
		s += (math.Pow(nonNegative(x+cv), h.failShape) - math.Pow(cv, h.failShape)) / h.failScaleToShape
	}
	for _, f := range failed {
		loc := h.components[f].RepairDist.Location
		cv := clockValue(h.components[f].RepairClock, loc)
		s += (math.Pow(nonNegative(x+cv), h.repairShape) - math.Pow(cv, h.repairShape)) / h.repairScaleToShape
	}

	return s - (-math.Log(u))
}

// DrawWaitingTime solves for the system's combined waiting time given the
// available and failed device indices (into the slice passed to
// NewHomogeneousWaitingTime) and a Uniform(0,1) draw u. Per spec.md §7's
// SolverNonConvergence handling, a solver that fails to produce a finite
// root (including a NaN from the secant method's extrapolation) falls back
// to the bracket's upper endpoint rather than propagating NaN.
func (h *HomogeneousWaitingTime) DrawWaitingTime(avail, failed []int, u float64) float64 {
	f := func(x float64) float64 { return h.equation(x, u, avail, failed) }
	root := secant(f, 0, 100, 1000)
	if math.IsNaN(root) || math.IsInf(root, 0) {
		build.Debugln("secant solver produced a non-finite root, using bracket endpoint")
		return 100
	}
	return math.Abs(root)
}

// secant finds a root of f using the secant method seeded at x0, x1,
// mirroring mpmath.findroot(solver='secant'). Falls back to continuing
// past convergence stalls (a flat f near the root) by returning the best
// estimate once maxIter is reached rather than erroring, since spec.md
// requires no error within an iteration to be fatal. If an iterate ever
// goes non-finite (the secant method's extrapolation overshooting past
// the distribution's support), it stops immediately and reports NaN so
// DrawWaitingTime's SolverNonConvergence fallback can take over, rather
// than continuing to iterate on a NaN that can never recover.
func secant(f func(float64) float64, x0, x1 float64, maxIter int) float64 {
	f0, f1 := f(x0), f(x1)
	for i := 0; i < maxIter; i++ {
		if math.IsNaN(f0) || math.IsNaN(f1) {
			build.Debugln("secant solver hit a non-finite iterate, reporting non-convergence")
			return math.NaN()
		}
		if f1 == f0 {
			return x1
		}
		x2 := x1 - f1*(x1-x0)/(f1-f0)
		if math.Abs(x2-x1) < 1e-12 {
			return x2
		}
		x0, f0 = x1, f1
		x1 = x2
		f1 = f(x1)
	}
	build.Debugln("secant solver did not converge within", maxIter, "iterations, using best estimate", x1)
	return x1
}
