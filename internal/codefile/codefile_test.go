package codefile

import (
	"strings"
	"testing"
)

func TestParseMDS(t *testing.T) {
	src := `[type]
mds
[k]
10
[m]
4
`
	d, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Type != TypeMDS || d.K != 10 || d.M != 4 {
		t.Fatalf("got %+v", d)
	}
	if d.HD != 2 {
		t.Fatalf("HD default: got %d, want 2", d.HD)
	}
}

func TestParseFlatXORWithTannerGraph(t *testing.T) {
	src := `[type]
flat xor
[k]
4
[m]
2
[hd]
3
[tanner graph]
0,1,2;1,2,3
`
	d, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Type != TypeFlatXOR {
		t.Fatalf("Type: got %v", d.Type)
	}
	if d.HD != 3 {
		t.Fatalf("HD: got %d, want 3", d.HD)
	}
	if len(d.TannerGraph) != 2 || len(d.TannerGraph[0]) != 3 || len(d.TannerGraph[1]) != 3 {
		t.Fatalf("TannerGraph: got %+v", d.TannerGraph)
	}
}

func TestParseMinimalFaultSets(t *testing.T) {
	src := `[type]
flat xor
[k]
4
[m]
2
[minimal fault sets]
0,1,2
3,4,5
[END]
`
	d, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(d.MinimalFaultSets) != 2 {
		t.Fatalf("MinimalFaultSets: got %d entries, want 2", len(d.MinimalFaultSets))
	}
	if d.MinimalFaultSets[1][2] != 5 {
		t.Fatalf("MinimalFaultSets[1]: got %v", d.MinimalFaultSets[1])
	}
}

func TestParseFTVAndDSCFT(t *testing.T) {
	src := `[type]
flat xor
[k]
4
[m]
2
[fault tolerance vector]
0.0,0.1,0.9,1.0
[Disk sector conditional fault tolerance]
0.0,0.0;0.1,0.2
`
	d, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(d.FTV) != 4 || d.FTV[2] != 0.9 {
		t.Fatalf("FTV: got %v", d.FTV)
	}
	if len(d.DSCFT) != 2 || d.DSCFT[1][1] != 0.2 {
		t.Fatalf("DSCFT: got %v", d.DSCFT)
	}
}

func TestParseInvalidIntReturnsError(t *testing.T) {
	src := `[type]
mds
[k]
not-a-number
`
	if _, err := Parse(strings.NewReader(src)); err == nil {
		t.Fatal("expected an error for a malformed [k] value")
	}
}
