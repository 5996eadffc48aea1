// Package sectorfail implements the per-access bad-sector probability
// models spec.md §4.4 defines: plain bit-error-rate exposure, and three
// scrubbing regimes that bound how long a latent sector error can go
// undetected before a scrub catches it (original_source/lib/
// sector_fail_model.py).
package sectorfail

import "math"

// Model is a sector-failure model: given its fixed parameters, it reports
// the probability that at least one bad sector exists on a disk at
// access time, plus the total sector count callers need to pick a
// uniformly random failing sector index.
type Model interface {
	ProbOfBadSector() float64
	TotalNumSectors() int
}

// BER is the plain bit-error-rate model: every sector independently fails
// with probability p, with no scrubbing to catch latent errors early.
type BER struct {
	TotalSectors int
	P            float64
}

// ProbOfBadSector returns 1 - (1-p)^S.
func (m BER) ProbOfBadSector() float64 {
	return 1 - math.Pow(1-m.P, float64(m.TotalSectors))
}

// TotalNumSectors returns the configured total sector count.
func (m BER) TotalNumSectors() int { return m.TotalSectors }

// NoScrub models a disk that is never proactively scrubbed: latent errors
// are only discovered by ordinary read/write access, so the effective
// per-sector failure probability is scaled down by the fraction of
// accesses that are writes (reads can't surface a write-time bit rot the
// same way).
type NoScrub struct {
	TotalSectors int
	P            float64
	WriteRatio   float64
}

// ProbOfBadSector returns 1 - (1-p')^S where p' = writeRatio * p.
func (m NoScrub) ProbOfBadSector() float64 {
	pPrime := m.WriteRatio * m.P
	return 1 - math.Pow(1-pPrime, float64(m.TotalSectors))
}

func (m NoScrub) TotalNumSectors() int { return m.TotalSectors }

// scrubDiskPeriod returns the per-disk scrub period D = scrubInterval *
// totalSectors / sectorsPerRegion, shared by RandomScrub and
// DeterministicScrub.
func scrubDiskPeriod(totalSectors, sectorsPerRegion int, scrubInterval float64) float64 {
	return scrubInterval * float64(totalSectors) / float64(sectorsPerRegion)
}

// RandomScrub models a scrubber that revisits sectors at uniformly random
// times with mean interval D, so the chance a given sector has already
// been caught by the time it's accessed follows an M/M-style occupancy
// fraction ρD/(1+ρD).
type RandomScrub struct {
	TotalSectors     int
	SectorsPerRegion int
	ScrubInterval    float64
	RequestRate      float64
	P                float64
	WriteRatio       float64
}

// ProbOfBadSector returns 1 - (1-q)^S where
// q = (rho*D/(1+rho*D)) * (p*writeRatio).
func (m RandomScrub) ProbOfBadSector() float64 {
	d := scrubDiskPeriod(m.TotalSectors, m.SectorsPerRegion, m.ScrubInterval)
	rhoD := m.RequestRate * d
	q := (rhoD / (1 + rhoD)) * (m.P * m.WriteRatio)
	return 1 - math.Pow(1-q, float64(m.TotalSectors))
}

func (m RandomScrub) TotalNumSectors() int { return m.TotalSectors }

// DeterministicScrub models a scrubber on a fixed deterministic schedule:
// the residual exposure follows the renewal-process formula
// 1 - (1-e^(-rho*D))/(rho*D) instead of RandomScrub's occupancy fraction.
type DeterministicScrub struct {
	TotalSectors     int
	SectorsPerRegion int
	ScrubInterval    float64
	RequestRate      float64
	P                float64
	WriteRatio       float64
}

// ProbOfBadSector returns 1 - (1-q)^S where
// q = (1 - (1-e^(-rho*D))/(rho*D)) * (p*writeRatio).
func (m DeterministicScrub) ProbOfBadSector() float64 {
	d := scrubDiskPeriod(m.TotalSectors, m.SectorsPerRegion, m.ScrubInterval)
	rhoD := m.RequestRate * d
	q := (1 - (1-math.Exp(-rhoD))/rhoD) * (m.P * m.WriteRatio)
	return 1 - math.Pow(1-q, float64(m.TotalSectors))
}

func (m DeterministicScrub) TotalNumSectors() int { return m.TotalSectors }
