// Package bigreal is the arbitrary-precision arithmetic facade used
// throughout ablsim for hazard rates, probabilities and likelihood ratios.
// Likelihood ratios are products of many per-event probability ratios;
// under Balanced Failure Biasing the true-to-sampling ratio for a rare
// event can be many orders of magnitude away from 1, and float64's
// exponent range underflows long before the precision of the mantissa
// would matter. Real is a thin wrapper over math/big.Float so that
// accumulation never underflows; conversion back to float64 happens only
// at the reporting boundary (internal/stats).
package bigreal

import "math/big"

// prec is the mantissa precision, in bits, carried by every Real. It is
// generous relative to what the statistics actually need; the point of
// this facade is exponent range, not extra significant digits.
const prec = 200

// Real is an arbitrary-precision real number.
type Real struct {
	f *big.Float
}

// Zero is the additive identity.
func Zero() Real { return New(0) }

// One is the multiplicative identity.
func One() Real { return New(1) }

// New constructs a Real from a float64.
func New(v float64) Real {
	return Real{f: new(big.Float).SetPrec(prec).SetFloat64(v)}
}

// clone returns a private copy of f, allocating a fresh big.Float so
// binary operations never alias their receiver's storage.
func (r Real) clone() *big.Float {
	if r.f == nil {
		return new(big.Float).SetPrec(prec)
	}
	return new(big.Float).SetPrec(prec).Set(r.f)
}

// Add returns r + other.
func (r Real) Add(other Real) Real {
	out := r.clone()
	out.Add(out, other.orZero())
	return Real{f: out}
}

// Sub returns r - other.
func (r Real) Sub(other Real) Real {
	out := r.clone()
	out.Sub(out, other.orZero())
	return Real{f: out}
}

// Mul returns r * other.
func (r Real) Mul(other Real) Real {
	out := r.clone()
	out.Mul(out, other.orZero())
	return Real{f: out}
}

// Div returns r / other. Division by zero returns Zero(), since the only
// place this facade divides is normalizing rates that are guarded against
// zero denominators by their callers; silently clamping keeps a single
// pathological degenerate case (e.g. an empty available-disk set) from
// ever panicking an iteration (spec.md's "no error is fatal within an
// iteration").
func (r Real) Div(other Real) Real {
	if other.IsZero() {
		return Zero()
	}
	out := r.clone()
	out.Quo(out, other.orZero())
	return Real{f: out}
}

// Cmp compares r to other: -1 if r < other, 0 if equal, +1 if r > other.
func (r Real) Cmp(other Real) int {
	return r.orZero().Cmp(other.orZero())
}

// IsZero reports whether r is exactly zero.
func (r Real) IsZero() bool {
	return r.orZero().Sign() == 0
}

// Float64 converts to a float64, rounding to nearest. This is the
// reporting-boundary conversion spec.md §4.1/§9 calls for.
func (r Real) Float64() float64 {
	v, _ := r.orZero().Float64()
	return v
}

// String renders the value for logging.
func (r Real) String() string {
	return r.orZero().Text('g', 10)
}

func (r Real) orZero() *big.Float {
	if r.f == nil {
		return new(big.Float).SetPrec(prec)
	}
	return r.f
}
