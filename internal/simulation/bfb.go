package simulation

import (
	"math"

	"github.com/greenan-labs/ablsim/internal/bigreal"
	"github.com/greenan-labs/ablsim/internal/component"
	"github.com/greenan-labs/ablsim/internal/prng"
	"github.com/greenan-labs/ablsim/internal/simstate"
	"github.com/greenan-labs/ablsim/internal/weibull"
)

// BFB implements Balanced Failure Biasing without forcing: rather than
// drawing each component's own waiting time, it solves for the whole
// system's combined inverse-transform waiting time (requiring every
// component to share one failure distribution and one repair
// distribution), then biases the classification of that event toward
// "failure" with probability FBProb, correcting with a likelihood ratio
// (spec.md §4.7, original_source/lib/bfb_optimization.py's BFBOpt).
type BFB struct {
	components []*component.Component
	rng        *prng.Source
	fbProb     float64

	homog *component.HomogeneousWaitingTime
	state *simstate.State
	lr    bigreal.Real
}

// NewBFB builds a BFB simulator over components sharing one failure
// distribution and one repair distribution (fbProb is the fraction of
// degraded-state events classified as failures). Returns
// component.ErrNotHomogeneous if the distributions aren't uniform across
// components, per spec.md §4.7's stated precondition.
func NewBFB(failDists, repairDists []weibull.Dist, fbProb float64, rng *prng.Source) (*BFB, error) {
	comps := make([]*component.Component, len(failDists))
	for i := range comps {
		comps[i] = component.New(failDists[i], repairDists[i])
	}
	homog, err := component.NewHomogeneousWaitingTime(comps)
	if err != nil {
		return nil, err
	}
	return &BFB{components: comps, rng: rng, fbProb: fbProb, homog: homog}, nil
}

func (b *BFB) Init() {}

// Reset rewinds every component's clock/state and the system state, and
// resets the likelihood ratio to 1.
func (b *BFB) Reset() {
	b.state = simstate.New(uint(len(b.components)))
	for _, c := range b.components {
		c.InitClock(0)
		c.InitState()
	}
	b.lr = bigreal.One()
}

func (b *BFB) Components() []*component.Component { return b.components }
func (b *BFB) State() *simstate.State              { return b.state }
func (b *BFB) LR() bigreal.Real                    { return b.lr }

// NextEvent draws the first-failure time by inverse transform while the
// system is OK, and the biased inter-event waiting time (with likelihood
// ratio correction) once it is degraded.
func (b *BFB) NextEvent(currTime float64) (float64, component.Event, int, bool) {
	if b.state.SysStateNow() == simstate.SysOK {
		return b.nextEventOK(currTime)
	}
	return b.nextEventDegraded(currTime)
}

func (b *BFB) nextEventOK(currTime float64) (float64, component.Event, int, bool) {
	victim := 0
	eventTime := currTime + b.components[0].FailDist.DrawInverseTransform(b.components[0].Clock, b.rng.Uniform())
	for i := 1; i < len(b.components); i++ {
		t := currTime + b.components[i].FailDist.DrawInverseTransform(b.components[i].Clock, b.rng.Uniform())
		if t < eventTime {
			eventTime, victim = t, i
		}
	}
	b.components[victim].Fail(eventTime)
	return eventTime, component.EventFail, victim, true
}

func (b *BFB) nextEventDegraded(currTime float64) (float64, component.Event, int, bool) {
	avail := b.state.AvailableSet().Indices()
	failed := b.state.FailedSet().Indices()

	w := b.homog.DrawWaitingTime(avail, failed, b.rng.Uniform())
	eventTime := currTime + w

	for _, c := range b.components {
		c.UpdateClock(eventTime)
	}

	eventRate := 0.0
	for _, c := range b.components {
		eventRate += c.InstRateSum()
	}

	classify := b.rng.Uniform()
	if classify <= b.fbProb {
		victim := avail[b.rng.IntN(len(avail))]
		ratio := (b.components[victim].FailRate() / eventRate) / (b.fbProb / float64(len(avail)))
		b.lr = b.lr.Mul(bigreal.New(ratio))
		b.components[victim].Fail(eventTime)
		return eventTime, component.EventFail, victim, true
	}

	totalRepairRate := 0.0
	for _, id := range failed {
		totalRepairRate += b.components[id].RepairRate()
	}
	victim := failed[len(failed)-1]
	sel := b.rng.Uniform()
	sum := 0.0
	for _, id := range failed {
		sum += b.components[id].RepairRate() / totalRepairRate
		if sel < sum {
			victim = id
			break
		}
	}
	ratio := (b.components[victim].RepairRate() / eventRate) /
		((1 - b.fbProb) * (b.components[victim].RepairRate() / totalRepairRate))
	b.lr = b.lr.Mul(bigreal.New(ratio))
	b.components[victim].Repair()
	return eventTime, component.EventRepair, victim, true
}

// CriticalRegion uses the closed-form approximation for simulators that
// don't schedule explicit repair times (spec.md §4.5): 1/2^(d-1) of the
// array's sectors, where d is the number of concurrently failed disks.
func (b *BFB) CriticalRegion(_ float64, totalSectors int) float64 {
	d := b.state.NumFailed()
	if d == 0 {
		return 0
	}
	return (1 / math.Pow(2, float64(d-1))) * float64(totalSectors)
}
