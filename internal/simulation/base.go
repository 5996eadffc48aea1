// Package simulation implements the shared event loop and the three
// interchangeable sampling strategies spec.md §4.5-§4.8 define: direct
// simulation, Balanced Failure Biasing (BFB) via inverse-transform
// waiting times, and BFB with uniformization. All three drive identical
// loss-detection logic; they differ only in how NextEvent chooses the
// next (time, kind, component) triple and whether they maintain a
// likelihood ratio other than 1
// (original_source/lib/simulation.py's Simulation.run_iteration).
package simulation

import (
	"fmt"

	"github.com/greenan-labs/ablsim/internal/bigreal"
	"github.com/greenan-labs/ablsim/internal/component"
	"github.com/greenan-labs/ablsim/internal/erasurecode"
	"github.com/greenan-labs/ablsim/internal/prng"
	"github.com/greenan-labs/ablsim/internal/sectorfail"
	"github.com/greenan-labs/ablsim/internal/simstate"
)

// Result is the outcome of one completed iteration. Weight is the
// likelihood-ratio-weighted sample (zero for a non-loss run), Pattern is
// the canonical "(d, s)" label spec.md §3 defines (d = concurrently
// failed disks, s = 0 for a disk-only loss or 1 for a sector-augmented
// loss), and CriticalRegion is the rebuild-exposure window, in sectors,
// at the moment loss was detected.
type Result struct {
	Weight         bigreal.Real
	Pattern        string
	CriticalRegion float64
}

// nonLoss is the canonical zero-weight result for an iteration that ran
// to mission time without a loss event (spec.md §4.5 step 2).
var nonLoss = Result{Weight: bigreal.Zero(), Pattern: "(0, 0)"}

// Simulator is the capability set RunIteration drives: each of the three
// sampling strategies (Direct, BFB, UnifBFB) implements this once,
// generalizing over how the next event is chosen and whether repairs are
// scheduled ahead of time (spec.md §9).
type Simulator interface {
	// Init performs one-time setup. Called once before the first Reset.
	Init()
	// Reset rewinds every component's clock/state, the system state, and
	// the likelihood ratio to the start of a fresh iteration.
	Reset()
	// NextEvent draws the next (time, kind, componentID) triple given the
	// current simulated time, applying any per-component clock-reset side
	// effects (component.Fail/Repair) the transition requires. ok is false
	// for a uniformization pseudo-event, which advances time without
	// selecting a component, and when no event is scheduled at all (t is
	// then +Inf).
	NextEvent(currTime float64) (t float64, kind component.Event, id int, ok bool)
	// Components returns every component in the array, in ID order.
	Components() []*component.Component
	// State returns the simulator's live system state.
	State() *simstate.State
	// LR returns the likelihood ratio accumulated so far this iteration.
	LR() bigreal.Real
	// CriticalRegion computes the rebuild-exposure window, in sectors, at
	// currTime, among the currently failed components, scaled to
	// totalSectors (spec.md §4.5). Only called when critical-region
	// checking is enabled.
	CriticalRegion(currTime float64, totalSectors int) float64
}

// RunIteration drives sim through one complete iteration against code and
// sectorModel, returning a non-loss Result if mission time elapses first.
// This is the one run loop all three strategies share
// (original_source/lib/simulation.py's Simulation.run_iteration).
func RunIteration(sim Simulator, code *erasurecode.Code, sectorModel sectorfail.Model, missionTime float64, criticalCheck bool, rng *prng.Source) Result {
	sim.Reset()
	currTime := 0.0

	for {
		t, kind, id, ok := sim.NextEvent(currTime)
		currTime = t
		if currTime > missionTime {
			return nonLoss
		}

		for _, c := range sim.Components() {
			c.UpdateClock(currTime)
		}

		if ok {
			sim.State().ApplyEvent(kind, uint(id))
		}

		if !ok || kind == component.EventRepair {
			continue
		}

		numFailed := sim.State().NumFailed()

		if numFailed >= code.MinDiskFailures() {
			failedDisks := sim.State().FailedSet().Indices()
			if code.IsFailure(failedDisks, nil, rng) {
				cr := 0.0
				if criticalCheck {
					cr = sim.CriticalRegion(currTime, sectorModel.TotalNumSectors())
				}
				return Result{Weight: sim.LR(), Pattern: fmt.Sprintf("(%d, 0)", numFailed), CriticalRegion: cr}
			}
		}

		if numFailed >= code.MinDiskFailures()-1 {
			failedDisks := sim.State().FailedSet().Indices()
			cr := float64(sectorModel.TotalNumSectors() - 1)
			if criticalCheck {
				cr = sim.CriticalRegion(currTime, sectorModel.TotalNumSectors())
			}
			sectorFailures := drawSectorFailures(sim.State(), sectorModel, cr, rng)
			if code.IsFailure(failedDisks, sectorFailures, rng) {
				return Result{Weight: sim.LR(), Pattern: fmt.Sprintf("(%d, 1)", numFailed), CriticalRegion: cr}
			}
		}
	}
}

// drawSectorFailures samples, independently for each available disk,
// whether it has at least one bad sector at this access; a positive draw
// picks a uniformly random sector index, recorded only if it falls
// within the critical region (spec.md §4.5 step 6).
func drawSectorFailures(st *simstate.State, model sectorfail.Model, criticalRegion float64, rng *prng.Source) map[int][]int {
	p := model.ProbOfBadSector()
	total := model.TotalNumSectors()
	var out map[int][]int
	for _, disk := range st.AvailableSet().Indices() {
		if !rng.Bernoulli(p) {
			continue
		}
		sector := rng.IntN(total)
		if float64(sector) >= criticalRegion {
			continue
		}
		if out == nil {
			out = make(map[int][]int)
		}
		out[disk] = append(out[disk], sector)
	}
	return out
}
