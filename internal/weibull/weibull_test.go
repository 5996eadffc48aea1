package weibull

import (
	"math"
	"testing"
)

func TestExponentialHazardRateConstant(t *testing.T) {
	d := New(1, 100, 0)
	for _, x := range []float64{0, 10, 1000} {
		if got := d.HazardRate(x); math.Abs(got-0.01) > 1e-12 {
			t.Fatalf("HazardRate(%v): got %v, want 0.01", x, got)
		}
	}
}

func TestCDFMonotonicallyIncreasing(t *testing.T) {
	d := New(2, 50, 0)
	prev := -1.0
	for x := 0.0; x < 200; x += 5 {
		c := d.CDF(x)
		if c < prev {
			t.Fatalf("CDF not monotonic at x=%v: %v < %v", x, c, prev)
		}
		prev = c
	}
}

func TestCDFBeforeLocationIsZero(t *testing.T) {
	d := New(2, 50, 10)
	if got := d.CDF(5); got != 0 {
		t.Fatalf("CDF before location: got %v, want 0", got)
	}
}

func TestMaxHazardRateExponentialMatchesScale(t *testing.T) {
	d := New(1, 40, 0)
	if got := d.MaxHazardRate(1000); got != 1.0/40 {
		t.Fatalf("MaxHazardRate: got %v, want %v", got, 1.0/40)
	}
}

func TestMaxHazardRateNeverBelowMin(t *testing.T) {
	d := New(2.5, 80, 0)
	max := d.MaxHazardRate(500)
	min := d.MinHazardRate(500)
	if max < min {
		t.Fatalf("max hazard rate %v below min hazard rate %v", max, min)
	}
}

func TestDrawInverseTransformNonNegative(t *testing.T) {
	d := New(1.5, 60, 0)
	for _, u := range []float64{0.01, 0.25, 0.5, 0.75, 0.99} {
		if got := d.DrawInverseTransform(10, u); got < 0 {
			t.Fatalf("DrawInverseTransform(10, %v): got %v, want >= 0", u, got)
		}
	}
}

func TestDrawTruncatedExceedsLower(t *testing.T) {
	d := New(1, 50, 0)
	draws := []float64{0.99, 0.5, 0.1}
	i := 0
	next := func() float64 {
		v := draws[i]
		i++
		return v
	}
	got := d.DrawTruncated(2, next)
	if got <= 2 {
		t.Fatalf("DrawTruncated: got %v, want > 2", got)
	}
}
