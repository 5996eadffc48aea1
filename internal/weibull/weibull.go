// Package weibull implements the 3-parameter Weibull distribution
// (shape, scale, location) spec.md §4.1 uses for every component's
// failure and repair clock. Shape 1 degenerates to Exponential.
package weibull

import "math"

// Dist is a 3-parameter Weibull distribution.
type Dist struct {
	Shape    float64
	Scale    float64
	Location float64
}

// New constructs a Dist. Location defaults to 0 when omitted by callers
// that only care about shape and scale.
func New(shape, scale, location float64) Dist {
	return Dist{Shape: shape, Scale: scale, Location: location}
}

// IsExponential reports whether this distribution degenerates to
// Exponential(scale), which several formulas special-case for both clarity
// and numerical stability.
func (d Dist) IsExponential() bool {
	return d.Shape == 1
}

// PDF returns the probability density at x.
func (d Dist) PDF(x float64) float64 {
	if x < 0 || x < d.Location {
		return 0
	}
	a := d.Shape / d.Scale
	b := math.Pow((x-d.Location)/d.Scale, d.Shape-1)
	c := math.Exp(-math.Pow((x-d.Location)/d.Scale, d.Shape))
	return a * b * c
}

// CDF returns P(X <= x), the probability of failure at or before x.
func (d Dist) CDF(x float64) float64 {
	if x < d.Location {
		return 0
	}
	return 1 - math.Exp(-math.Pow((x-d.Location)/d.Scale, d.Shape))
}

// HazardRate returns the instantaneous failure rate at x. Constant across
// x when the distribution is Exponential.
func (d Dist) HazardRate(x float64) float64 {
	if x < d.Location {
		return 0
	}
	if d.IsExponential() {
		return 1 / d.Scale
	}
	return math.Abs(d.PDF(x) / (1 - d.CDF(x)))
}

// sampleHazardPoints walks [1, missionTime) in ten steps, mirroring the
// original's `range(1, mission_time, int(0.1*mission_time))` stride, and
// calls f at every point. Used by MaxHazardRate/MinHazardRate, which need
// the extreme hazard rate over a mission horizon for uniformization's
// dominating Poisson rate (spec.md §4.7).
func (d Dist) sampleHazardPoints(missionTime float64, f func(h float64)) {
	step := 0.1 * missionTime
	if step < 1 {
		step = 1
	}
	for x := 1.0; x < missionTime; x += step {
		h := d.HazardRate(x)
		if math.IsNaN(h) {
			break
		}
		f(h)
	}
}

// MaxHazardRate returns the maximum hazard rate attained over
// [1, missionTime), sampled at ten points. Exponential distributions have a
// constant hazard rate, returned directly.
func (d Dist) MaxHazardRate(missionTime float64) float64 {
	if d.IsExponential() {
		return 1 / d.Scale
	}
	max := 0.0
	d.sampleHazardPoints(missionTime, func(h float64) {
		if h > max {
			max = h
		}
	})
	return max
}

// MinHazardRate returns the minimum hazard rate attained over
// [1, missionTime), sampled at ten points via the same sampleHazardPoints
// helper MaxHazardRate uses (spec.md §4.1's "sampled over [1, T] at 10
// evenly spaced points"; original_source/lib/smp_data_structures.py's
// get_min_hazard_rate instead starts its range at 0, but nothing in this
// port depends on that difference).
func (d Dist) MinHazardRate(missionTime float64) float64 {
	if d.IsExponential() {
		return 1 / d.Scale
	}
	min := 1.0
	seen := false
	d.sampleHazardPoints(missionTime, func(h float64) {
		if !seen || h < min {
			min = h
			seen = true
		}
	})
	return min
}

// Draw samples a waiting time from this distribution using u, a draw from
// Uniform(0,1), via the standard Weibull inverse-CDF transform.
func (d Dist) Draw(u float64) float64 {
	return d.Scale*math.Pow(-math.Log(u), 1/d.Shape) + d.Location
}

// DrawTruncated resamples Draw until it exceeds lower, using next to
// produce each successive Uniform(0,1) draw.
func (d Dist) DrawTruncated(lower float64, next func() float64) float64 {
	v := d.Draw(next())
	for v <= lower {
		v = d.Draw(next())
	}
	return v
}

// DrawInverseTransform draws a waiting time conditioned on having already
// survived to currTime, from the hazard-rate-built CDF (spec.md §4.1, 4.6):
// the BFB and uniformized-BFB simulators use this instead of Draw so that
// biasing the distribution's tail doesn't require resampling.
func (d Dist) DrawInverseTransform(currTime, u float64) float64 {
	inner := -math.Pow(d.Scale, d.Shape)*math.Log(u) + math.Pow(currTime, d.Shape)
	draw := math.Pow(inner, 1/d.Shape) - currTime
	return math.Abs(draw)
}
