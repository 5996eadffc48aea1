// Package bitset implements the fixed-length bit vectors and the GF(2)
// bit-matrix rank check spec.md §4.2 requires for XOR-code fault checks and
// for the failed/available disk bitmaps in internal/simstate.
package bitset

import (
	"math/rand"

	"github.com/bits-and-blooms/bitset"
)

// Set is a fixed-length packed bit vector.
type Set struct {
	bs  *bitset.BitSet
	len uint
}

// New returns a Set of length n with every bit clear.
func New(n uint) *Set {
	return &Set{bs: bitset.New(n), len: n}
}

// FromIndices returns a Set of length n with every index in idxs set.
func FromIndices(n uint, idxs []int) *Set {
	s := New(n)
	for _, i := range idxs {
		s.SetBit(uint(i))
	}
	return s
}

// Len returns the number of addressable bits.
func (s *Set) Len() uint { return s.len }

// SetBit sets bit i.
func (s *Set) SetBit(i uint) { s.bs.Set(i) }

// UnsetBit clears bit i.
func (s *Set) UnsetBit(i uint) { s.bs.Clear(i) }

// IsSet reports whether bit i is set.
func (s *Set) IsSet(i uint) bool { return s.bs.Test(i) }

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	return &Set{bs: s.bs.Clone(), len: s.len}
}

// AndInto computes dst = s AND other, in place on dst. dst may alias s or
// other.
func AndInto(dst, s, other *Set) {
	otherBits := other.bs.Clone()
	s.bs.Copy(dst.bs)
	dst.bs.InPlaceIntersection(otherBits)
}

// XorInto computes dst = s XOR other, in place on dst. dst may alias s or
// other.
func XorInto(dst, s, other *Set) {
	otherBits := other.bs.Clone()
	s.bs.Copy(dst.bs)
	dst.bs.InPlaceSymmetricDifference(otherBits)
}

// Count returns the population count (number of set bits).
func (s *Set) Count() uint { return s.bs.Count() }

// LeadingOne returns the index of the highest set bit, or -1 if none are
// set.
func (s *Set) LeadingOne() int {
	for i := int(s.len) - 1; i >= 0; i-- {
		if s.bs.Test(uint(i)) {
			return i
		}
	}
	return -1
}

// Randomize sets each bit independently with probability 0.5, using r.
func (s *Set) Randomize(r *rand.Rand) {
	for i := uint(0); i < s.len; i++ {
		s.bs.SetTo(i, r.Intn(2) == 1)
	}
}

// Indices returns the positions of every set bit, in ascending order.
func (s *Set) Indices() []int {
	idxs := make([]int, 0, s.bs.Count())
	for i := uint(0); i < s.len; i++ {
		if s.bs.Test(i) {
			idxs = append(idxs, int(i))
		}
	}
	return idxs
}

// Equal reports whether s and other have identical bits.
func (s *Set) Equal(other *Set) bool {
	return s.bs.Equal(other.bs)
}

// Contains reports whether every bit set in other is also set in s — i.e.
// other is a bitwise subset of s. This backs CHECK_MEL's containment test
// (spec.md §4.3): a minimal-erasure pattern "is a subset of" the erasure
// set.
func (s *Set) Contains(other *Set) bool {
	tmp := other.Clone()
	tmp.bs.InPlaceIntersection(s.bs)
	return tmp.bs.Equal(other.bs)
}
