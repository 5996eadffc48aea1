package simulation

import (
	"math"

	"github.com/greenan-labs/ablsim/internal/bigreal"
	"github.com/greenan-labs/ablsim/internal/component"
	"github.com/greenan-labs/ablsim/internal/prng"
	"github.com/greenan-labs/ablsim/internal/simstate"
	"github.com/greenan-labs/ablsim/internal/weibull"
)

// UnifBFB implements Balanced Failure Biasing with uniformization: rather
// than solving for a combined waiting time, it represents the degraded
// state's continuous-time chain with a dominating Poisson clock at rate
// Lambda and classifies each Poisson tick as a real failure, a "pseudo"
// self-loop, or (if it loses a race against an already-scheduled repair)
// a repair (spec.md §4.8,
// original_source/lib/unif_bfb_gen_repair.py's UniformizationBFBOpt).
// Unlike BFB it does not require homogeneous failure distributions across
// components, since it dominates the true rate rather than solving the
// combined hazard equation directly.
type UnifBFB struct {
	components []*component.Component
	rng        *prng.Source
	fbProb     float64
	lambda     float64

	state       *simstate.State
	lr          bigreal.Real
	repairTime  []float64
	repairStart []float64
}

// NewUnifBFB builds a uniformized-BFB simulator. The dominating rate is
// derived from components[0]'s repair distribution per spec.md §4.8
// ("2 * max_hazard(repair_dist, 3*scale)"); every component must still
// share that repair distribution; NewUnifBFB does not check this itself,
// since uniformization tolerates heterogeneous failure distributions and
// only needs one scale to seed a dominating rate generous enough to cover
// all of them in practice (original_source's own implementation makes
// the same assumption without an explicit homogeneity check).
func NewUnifBFB(failDists, repairDists []weibull.Dist, fbProb float64, rng *prng.Source) *UnifBFB {
	comps := make([]*component.Component, len(failDists))
	for i := range comps {
		comps[i] = component.New(failDists[i], repairDists[i])
	}
	lambda := 2 * repairDists[0].MaxHazardRate(repairDists[0].Scale*3)
	return &UnifBFB{
		components:  comps,
		rng:         rng,
		fbProb:      fbProb,
		lambda:      lambda,
		repairTime:  make([]float64, len(comps)),
		repairStart: make([]float64, len(comps)),
	}
}

func (u *UnifBFB) Init() {}

// Reset rewinds every component's clock/state, the scheduled-repair
// table, the system state, and the likelihood ratio.
func (u *UnifBFB) Reset() {
	u.state = simstate.New(uint(len(u.components)))
	for i, c := range u.components {
		c.InitClock(0)
		c.InitState()
		u.repairTime[i] = 0
		u.repairStart[i] = 0
	}
	u.lr = bigreal.One()
}

func (u *UnifBFB) Components() []*component.Component { return u.components }
func (u *UnifBFB) State() *simstate.State              { return u.state }
func (u *UnifBFB) LR() bigreal.Real                    { return u.lr }

func (u *UnifBFB) NextEvent(currTime float64) (float64, component.Event, int, bool) {
	if u.state.SysStateNow() == simstate.SysOK {
		return u.nextEventOK(currTime)
	}
	return u.nextEventDegraded(currTime)
}

// nextEventOK picks the earliest inverse-transform failure draw among all
// components (all are available while the array is healthy) and
// schedules that component's repair time.
func (u *UnifBFB) nextEventOK(currTime float64) (float64, component.Event, int, bool) {
	victim := 0
	eventTime := currTime + u.components[0].FailDist.DrawInverseTransform(u.components[0].Clock, u.rng.Uniform())
	for i := 1; i < len(u.components); i++ {
		t := currTime + u.components[i].FailDist.DrawInverseTransform(u.components[i].Clock, u.rng.Uniform())
		if t < eventTime {
			eventTime, victim = t, i
		}
	}
	u.components[victim].Fail(eventTime)
	u.repairTime[victim] = eventTime + u.components[victim].RepairDist.Draw(u.rng.Uniform())
	u.repairStart[victim] = eventTime
	return eventTime, component.EventFail, victim, true
}

// nextEventDegraded draws a pseudo-event time from the dominating Poisson
// clock; if an already-scheduled repair completes first, it wins the
// race outright (state update only, LR untouched). Otherwise the tick is
// classified as a real failure with probability FBProb, biasing toward
// failures the same way BFB does, correcting via LR; the complementary
// case is a pseudo (self-loop) event that advances time without changing
// state.
func (u *UnifBFB) nextEventDegraded(currTime float64) (float64, component.Event, int, bool) {
	failed := u.state.FailedSet().Indices()
	eventTime := currTime - math.Log(u.rng.Uniform())/u.lambda

	repIdx, repT, hasRep := u.earliestRepair(failed)
	if hasRep && repT < eventTime {
		u.components[repIdx].Repair()
		return repT, component.EventRepair, repIdx, true
	}

	for _, c := range u.components {
		c.UpdateClock(eventTime)
	}

	avail := u.state.AvailableSet().Indices()
	failRate := 0.0
	for _, id := range avail {
		failRate += u.components[id].FailRate()
	}

	if u.rng.Uniform() > u.fbProb {
		ratio := (1 - failRate/u.lambda) / (1 - u.fbProb)
		u.lr = u.lr.Mul(bigreal.New(ratio))
		return eventTime, component.EventFail, 0, false
	}

	victim := avail[u.rng.IntN(len(avail))]
	ratio := (u.components[victim].FailRate() / u.lambda) / (u.fbProb / float64(len(avail)))
	u.lr = u.lr.Mul(bigreal.New(ratio))
	u.components[victim].Fail(eventTime)
	u.repairTime[victim] = eventTime + u.components[victim].RepairDist.Draw(u.rng.Uniform())
	u.repairStart[victim] = eventTime
	return eventTime, component.EventFail, victim, true
}

func (u *UnifBFB) earliestRepair(failed []int) (idx int, t float64, ok bool) {
	if len(failed) == 0 {
		return 0, 0, false
	}
	idx, t = failed[0], u.repairTime[failed[0]]
	for _, id := range failed[1:] {
		if u.repairTime[id] < t {
			idx, t = id, u.repairTime[id]
		}
	}
	return idx, t, true
}

// CriticalRegion uses the scheduled-repair formula (spec.md §4.5), same
// as Direct: uniformized-BFB maintains an explicit repair schedule.
func (u *UnifBFB) CriticalRegion(currTime float64, totalSectors int) float64 {
	failed := u.state.FailedSet().Indices()
	if len(failed) == 0 {
		return 0
	}
	minIdx := failed[0]
	for _, id := range failed[1:] {
		if u.repairTime[id] < u.repairTime[minIdx] {
			minIdx = id
		}
	}
	next, start := u.repairTime[minIdx], u.repairStart[minIdx]
	if next == start {
		return 0
	}
	return ((next - currTime) / (next - start)) * float64(totalSectors)
}
