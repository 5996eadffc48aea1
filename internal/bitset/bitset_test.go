package bitset

import (
	"math/rand"
	"testing"
)

func TestSetUnset(t *testing.T) {
	s := New(8)
	s.SetBit(3)
	if !s.IsSet(3) {
		t.Fatal("expected bit 3 set")
	}
	s.UnsetBit(3)
	if s.IsSet(3) {
		t.Fatal("expected bit 3 clear after UnsetBit")
	}
}

func TestCount(t *testing.T) {
	s := FromIndices(10, []int{1, 2, 5, 9})
	if got := s.Count(); got != 4 {
		t.Fatalf("Count: got %d, want 4", got)
	}
}

func TestLeadingOne(t *testing.T) {
	s := New(10)
	if s.LeadingOne() != -1 {
		t.Fatal("expected -1 for empty set")
	}
	s.SetBit(2)
	s.SetBit(7)
	if got := s.LeadingOne(); got != 7 {
		t.Fatalf("LeadingOne: got %d, want 7", got)
	}
}

func TestXorInto(t *testing.T) {
	a := FromIndices(8, []int{0, 1, 2})
	b := FromIndices(8, []int{1, 2, 3})
	dst := New(8)
	XorInto(dst, a, b)
	want := FromIndices(8, []int{0, 3})
	if !dst.Equal(want) {
		t.Fatalf("XorInto: got count %d, want count %d", dst.Count(), want.Count())
	}
}

func TestXorIntoAliasedDst(t *testing.T) {
	a := FromIndices(8, []int{0, 1})
	b := FromIndices(8, []int{1, 2})
	XorInto(a, a, b)
	want := FromIndices(8, []int{0, 2})
	if !a.Equal(want) {
		t.Fatal("XorInto into an aliased destination produced the wrong result")
	}
}

func TestAndInto(t *testing.T) {
	a := FromIndices(8, []int{0, 1, 2})
	b := FromIndices(8, []int{1, 2, 3})
	dst := New(8)
	AndInto(dst, a, b)
	want := FromIndices(8, []int{1, 2})
	if !dst.Equal(want) {
		t.Fatal("AndInto produced the wrong intersection")
	}
}

func TestContains(t *testing.T) {
	erasures := FromIndices(8, []int{1, 3, 5})
	minimal := FromIndices(8, []int{1, 5})
	if !erasures.Contains(minimal) {
		t.Fatal("expected erasures to contain the minimal erasure pattern")
	}
	notMinimal := FromIndices(8, []int{1, 6})
	if erasures.Contains(notMinimal) {
		t.Fatal("expected erasures not to contain a pattern with a bit outside the set")
	}
}

func TestRandomizeDeterministicWithSeededSource(t *testing.T) {
	r1 := rand.New(rand.NewSource(7))
	r2 := rand.New(rand.NewSource(7))
	a := New(32)
	b := New(32)
	a.Randomize(r1)
	b.Randomize(r2)
	if !a.Equal(b) {
		t.Fatal("expected identical seeds to randomize identically")
	}
}
