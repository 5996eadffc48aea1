// Package simstate tracks which array members are failed or available at
// a point in simulated time (spec.md §4.9, original_source/lib/state.py's
// State class).
package simstate

import (
	"github.com/greenan-labs/ablsim/internal/bitset"
	"github.com/greenan-labs/ablsim/internal/component"
)

// SysState is the coarse operational state of the array as a whole.
type SysState int

const (
	SysOK SysState = iota
	SysDegraded
)

func (s SysState) String() string {
	if s == SysDegraded {
		return "degraded"
	}
	return "ok"
}

// State holds the failed/available component ID sets for an n-component
// array, plus the derived system-level state.
type State struct {
	n         uint
	failed    *bitset.Set
	available *bitset.Set
	numFailed int
	sysState  SysState
}

// New returns a State for n components, all initially available.
func New(n uint) *State {
	avail := bitset.New(n)
	for i := uint(0); i < n; i++ {
		avail.SetBit(i)
	}
	return &State{
		n:         n,
		failed:    bitset.New(n),
		available: avail,
		sysState:  SysOK,
	}
}

// Clone returns an independent deep copy.
func (s *State) Clone() *State {
	return &State{
		n:         s.n,
		failed:    s.failed.Clone(),
		available: s.available.Clone(),
		numFailed: s.numFailed,
		sysState:  s.sysState,
	}
}

// NumFailed returns the number of currently failed components.
func (s *State) NumFailed() int { return s.numFailed }

// SysState returns the array's current coarse operational state.
func (s *State) SysStateNow() SysState { return s.sysState }

// Failed reports whether the given component ID is failed.
func (s *State) Failed(id uint) bool { return s.failed.IsSet(id) }

// FailedSet returns the bitset of failed component IDs. The caller must
// not mutate it.
func (s *State) FailedSet() *bitset.Set { return s.failed }

// AvailableSet returns the bitset of available component IDs. The caller
// must not mutate it.
func (s *State) AvailableSet() *bitset.Set { return s.available }

// ApplyEvent applies a fail or repair transition for component id and
// returns the resulting number of failed components.
//
// original_source/lib/state.py's update_state has a dangling-else bug that
// skips the REPAIR transition's effect on one code path. This port does not
// carry it over: REPAIR always decrements the failure count and restores
// SysOK when the count reaches zero, and both event types return the
// post-transition failure count.
func (s *State) ApplyEvent(ev component.Event, id uint) int {
	switch ev {
	case component.EventFail:
		s.failComponent(id)
		s.sysState = SysDegraded
	case component.EventRepair:
		s.repairComponent(id)
		if s.numFailed == 0 {
			s.sysState = SysOK
		}
	}
	return s.numFailed
}

func (s *State) failComponent(id uint) {
	s.failed.SetBit(id)
	s.available.UnsetBit(id)
	s.numFailed++
}

func (s *State) repairComponent(id uint) {
	s.failed.UnsetBit(id)
	s.available.SetBit(id)
	s.numFailed--
}
