package bitset

import "testing"

func TestBuildGeneratorIdentityBlock(t *testing.T) {
	// A (4,2) single-parity-per-pair code: parity 0 covers symbols {0,1},
	// parity 1 covers symbols {2,3}.
	g := BuildGenerator(4, 2, [][]uint{{0, 1}, {2, 3}})
	for i := uint(0); i < 4; i++ {
		if !g.Test(i, i) {
			t.Fatalf("expected identity bit at (%d,%d)", i, i)
		}
	}
	if !g.Test(0, 4) || !g.Test(1, 4) {
		t.Fatal("expected parity 0 column to cover symbols 0 and 1")
	}
	if !g.Test(2, 5) || !g.Test(3, 5) {
		t.Fatal("expected parity 1 column to cover symbols 2 and 3")
	}
	if g.Test(2, 4) || g.Test(3, 4) {
		t.Fatal("parity 0 column should not cover symbols 2 or 3")
	}
}

func TestRankFullRank(t *testing.T) {
	// A 3x3 identity matrix has rank 3.
	m := NewMatrix(3, 3)
	m.Set(0, 0)
	m.Set(1, 1)
	m.Set(2, 2)
	if got := m.Rank(); got != 3 {
		t.Fatalf("Rank: got %d, want 3", got)
	}
}

func TestRankDependentRows(t *testing.T) {
	// Row 2 = row 0 XOR row 1, so rank is 2, not 3.
	m := NewMatrix(3, 3)
	m.Set(0, 0)
	m.Set(1, 1)
	m.Set(2, 0)
	m.Set(2, 1)
	if got := m.Rank(); got != 2 {
		t.Fatalf("Rank: got %d, want 2", got)
	}
}

func TestZeroingColumnsNeverIncreasesRank(t *testing.T) {
	// Testable property: zeroing a superset of columns never increases the
	// rank of the generator matrix (spec.md §8).
	g := BuildGenerator(4, 2, [][]uint{{0, 1, 2}, {1, 2, 3}})
	base := g.Clone().Rank()

	one := g.Clone()
	one.ZeroColumns([]uint{0})
	rankOne := one.Rank()
	if rankOne > base {
		t.Fatalf("zeroing one column increased rank: %d > %d", rankOne, base)
	}

	two := g.Clone()
	two.ZeroColumns([]uint{0, 3})
	rankTwo := two.Rank()
	if rankTwo > rankOne {
		t.Fatalf("zeroing a superset of columns increased rank: %d > %d", rankTwo, rankOne)
	}
}

func TestRankZeroMatrix(t *testing.T) {
	m := NewMatrix(2, 2)
	if got := m.Rank(); got != 0 {
		t.Fatalf("Rank of zero matrix: got %d, want 0", got)
	}
}
