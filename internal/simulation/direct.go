package simulation

import (
	"math"

	"github.com/greenan-labs/ablsim/internal/bigreal"
	"github.com/greenan-labs/ablsim/internal/component"
	"github.com/greenan-labs/ablsim/internal/prng"
	"github.com/greenan-labs/ablsim/internal/simstate"
	"github.com/greenan-labs/ablsim/internal/weibull"
)

// Direct samples every event from its real (unbiased) distribution; its
// likelihood ratio is identically 1, since no importance sampling takes
// place (spec.md §4.6,
// original_source/lib/regular_simulation.py's RegularSimulation).
type Direct struct {
	components []*component.Component
	rng        *prng.Source

	state *simstate.State

	// failTime/repairTime are absolute scheduled times for each
	// component's next failure/repair; repairStart is the time the
	// currently-ongoing repair (if any) began.
	failTime    []float64
	repairTime  []float64
	repairStart []float64
}

// NewDirect builds a Direct simulator over n components, each with its
// own failure and repair distribution (failDists[i]/repairDists[i]).
func NewDirect(failDists, repairDists []weibull.Dist, rng *prng.Source) *Direct {
	comps := make([]*component.Component, len(failDists))
	for i := range comps {
		comps[i] = component.New(failDists[i], repairDists[i])
	}
	return &Direct{
		components:  comps,
		rng:         rng,
		failTime:    make([]float64, len(comps)),
		repairTime:  make([]float64, len(comps)),
		repairStart: make([]float64, len(comps)),
	}
}

func (d *Direct) Init() {}

// Reset rewinds all component clocks/state, draws a fresh first-failure
// time for every component, and re-creates the system state.
func (d *Direct) Reset() {
	d.state = simstate.New(uint(len(d.components)))
	for i, c := range d.components {
		c.InitClock(0)
		c.InitState()
		d.failTime[i] = c.FailDist.Draw(d.rng.Uniform())
		d.repairTime[i] = 0
		d.repairStart[i] = 0
	}
}

func (d *Direct) Components() []*component.Component { return d.components }
func (d *Direct) State() *simstate.State              { return d.state }

// LR is identically 1: Direct draws every event from its true
// distribution, so there is no sampling bias to correct for.
func (d *Direct) LR() bigreal.Real { return bigreal.One() }

// NextEvent picks the earliest of the scheduled failure of any available
// disk and the scheduled repair of any failed disk.
func (d *Direct) NextEvent(currTime float64) (float64, component.Event, int, bool) {
	failIdx, failT, hasFail := d.earliest(d.state.AvailableSet().Indices(), d.failTime)
	repIdx, repT, hasRep := d.earliest(d.state.FailedSet().Indices(), d.repairTime)

	if hasFail && (!hasRep || failT <= repT) {
		d.components[failIdx].Fail(failT)
		d.repairTime[failIdx] = failT + d.components[failIdx].RepairDist.Draw(d.rng.Uniform())
		d.repairStart[failIdx] = failT
		return failT, component.EventFail, failIdx, true
	}
	if hasRep {
		d.components[repIdx].Repair()
		d.failTime[repIdx] = repT + d.components[repIdx].FailDist.Draw(d.rng.Uniform())
		return repT, component.EventRepair, repIdx, true
	}
	return math.Inf(1), component.EventFail, 0, false
}

func (d *Direct) earliest(ids []int, times []float64) (idx int, t float64, ok bool) {
	if len(ids) == 0 {
		return 0, 0, false
	}
	idx, t = ids[0], times[ids[0]]
	for _, id := range ids[1:] {
		if times[id] < t {
			idx, t = id, times[id]
		}
	}
	return idx, t, true
}

// CriticalRegion uses the scheduled-repair formula (spec.md §4.5): the
// fraction of the window between the earliest-scheduled repair's start
// and its completion that remains unelapsed at currTime.
func (d *Direct) CriticalRegion(currTime float64, totalSectors int) float64 {
	failed := d.state.FailedSet().Indices()
	if len(failed) == 0 {
		return 0
	}
	minIdx := failed[0]
	for _, id := range failed[1:] {
		if d.repairTime[id] < d.repairTime[minIdx] {
			minIdx = id
		}
	}
	next, start := d.repairTime[minIdx], d.repairStart[minIdx]
	if next == start {
		return 0
	}
	return ((next - currTime) / (next - start)) * float64(totalSectors)
}
