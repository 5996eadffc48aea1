package bigreal

import "testing"

func TestArithmetic(t *testing.T) {
	a := New(3)
	b := New(2)

	if got := a.Add(b).Float64(); got != 5 {
		t.Fatalf("Add: got %v, want 5", got)
	}
	if got := a.Sub(b).Float64(); got != 1 {
		t.Fatalf("Sub: got %v, want 1", got)
	}
	if got := a.Mul(b).Float64(); got != 6 {
		t.Fatalf("Mul: got %v, want 6", got)
	}
	if got := a.Div(b).Float64(); got != 1.5 {
		t.Fatalf("Div: got %v, want 1.5", got)
	}
}

func TestDivByZeroClampsToZero(t *testing.T) {
	if got := New(5).Div(Zero()).Float64(); got != 0 {
		t.Fatalf("Div by zero: got %v, want 0", got)
	}
}

func TestCmp(t *testing.T) {
	if New(1).Cmp(New(2)) >= 0 {
		t.Fatal("expected 1 < 2")
	}
	if New(2).Cmp(New(1)) <= 0 {
		t.Fatal("expected 2 > 1")
	}
	if New(1).Cmp(New(1)) != 0 {
		t.Fatal("expected 1 == 1")
	}
}

func TestZeroValue(t *testing.T) {
	var r Real
	if !r.IsZero() {
		t.Fatal("zero-value Real should report IsZero")
	}
	if got := r.Add(New(4)).Float64(); got != 4 {
		t.Fatalf("zero-value Real Add: got %v, want 4", got)
	}
}

func TestUnderflowResistance(t *testing.T) {
	// float64 underflows to 0 well before 1e-320; bigreal should not.
	tiny := New(1e-300)
	product := One()
	for i := 0; i < 5; i++ {
		product = product.Mul(tiny)
	}
	if product.IsZero() {
		t.Fatal("expected product of tiny probabilities to remain nonzero")
	}
}
