// Package component models a single redundancy-group member: its
// operational state, its failure and repair clocks, and the instantaneous
// hazard rates those clocks feed into the simulators (spec.md §4.8,
// original_source/lib/smp_data_structures.py's Component class).
package component

import "github.com/greenan-labs/ablsim/internal/weibull"

// State is a component's operational state.
type State int

const (
	StateOK State = iota
	StateFailed
)

func (s State) String() string {
	if s == StateFailed {
		return "failed"
	}
	return "ok"
}

// Event is a state-transition trigger.
type Event int

const (
	EventFail Event = iota
	EventRepair
)

// Component tracks one array member's clocks and distributions. The clock
// fields are relative: Clock measures time since the component last left
// StateFailed, RepairClock measures time since it entered StateFailed.
// Both reset on the corresponding transition, matching the semi-Markov
// process's memoryless-per-sojourn design.
type Component struct {
	FailDist   weibull.Dist
	RepairDist weibull.Dist

	State State

	LastTimeUpdate float64
	BeginTime      float64
	Clock          float64
	RepairClock    float64
	RepairStart    float64
}

// New returns a Component in StateOK with every clock zeroed.
func New(failDist, repairDist weibull.Dist) *Component {
	return &Component{FailDist: failDist, RepairDist: repairDist, State: StateOK}
}

// InitClock anchors this component's clocks at currTime. Must be called
// before the component takes part in a simulation.
func (c *Component) InitClock(currTime float64) {
	c.LastTimeUpdate = currTime
	c.BeginTime = currTime
	c.Clock = 0
	c.RepairClock = 0
	c.RepairStart = 0
}

// InitState resets the component to StateOK, independent of its clocks.
func (c *Component) InitState() {
	c.State = StateOK
}

// UpdateClock advances Clock by the elapsed time since the last update, and
// recomputes RepairClock from RepairStart when the component is failed.
func (c *Component) UpdateClock(currTime float64) {
	c.Clock += currTime - c.LastTimeUpdate
	if c.State == StateFailed {
		c.RepairClock = currTime - c.RepairStart
	} else {
		c.RepairClock = 0
	}
	c.LastTimeUpdate = currTime
}

// Fail transitions the component to StateFailed, anchoring its repair
// clock at currTime.
func (c *Component) Fail(currTime float64) {
	c.State = StateFailed
	c.RepairClock = 0
	c.RepairStart = currTime
}

// Repair transitions the component back to StateOK and rebases its failure
// clock, as if this were a fresh component starting its life at
// LastTimeUpdate.
func (c *Component) Repair() {
	c.BeginTime = c.LastTimeUpdate
	c.Clock = 0
	c.RepairClock = 0
	c.State = StateOK
}

// FailRate returns the instantaneous whole-component failure rate: zero
// while failed, otherwise the failure distribution's hazard rate at Clock.
func (c *Component) FailRate() float64 {
	if c.State == StateFailed {
		return 0
	}
	return c.FailDist.HazardRate(c.Clock)
}

// RepairRate returns the instantaneous whole-component repair rate: zero
// while operational, otherwise the repair distribution's hazard rate at
// RepairClock.
func (c *Component) RepairRate() float64 {
	if c.State == StateOK {
		return 0
	}
	return c.RepairDist.HazardRate(c.RepairClock)
}

// InstRateSum returns FailRate() + RepairRate(), the total event rate this
// component contributes to the system (one of the two is always zero).
func (c *Component) InstRateSum() float64 {
	return c.FailRate() + c.RepairRate()
}
