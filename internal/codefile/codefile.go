// Package codefile loads the on-disk erasure-code descriptor format
// (spec.md §6, original_source/lib/erasure_code.py's ErasureCode.__init__).
// Parsing this format is explicitly out of the hard-engineering scope the
// spec carries forward (it's listed as an "external collaborator"
// interface), but cmd/ablsim still needs a loader to turn a --code_file
// flag into a usable descriptor, so this package implements the section
// format plainly rather than leaving it unimplemented.
package codefile

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"gitlab.com/NebulousLabs/errors"
)

// Type is the erasure-code family a descriptor declares.
type Type string

const (
	TypeMDS      Type = "mds"
	TypeFlatXOR  Type = "flat xor"
	TypeArrayXOR Type = "array xor"
)

// Descriptor is everything a code description file carries. Fields left
// unset by a file with no corresponding section retain their zero value;
// HD defaults to 2, matching the original's "assume HD is at least 2"
// fallback.
type Descriptor struct {
	Type             Type
	K                int
	M                int
	HD               int
	MinDiskFailures  int
	TannerGraph      [][]int
	Layout           [][]int
	MinimalFaultSets [][]int
	FTV              []float64
	DSCFT            [][]float64
}

// Parse reads a code description file from r.
func Parse(r io.Reader) (*Descriptor, error) {
	d := &Descriptor{HD: 2}
	sc := bufio.NewScanner(r)

	line, ok := nextNonEmpty(sc)
	for ok {
		advance := true
		switch line {
		case "[type]":
			v, _ := nextNonEmpty(sc)
			d.Type = Type(v)
		case "[k]":
			v, _ := nextNonEmpty(sc)
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.AddContext(err, "invalid [k] value")
			}
			d.K = n
		case "[m]":
			v, _ := nextNonEmpty(sc)
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.AddContext(err, "invalid [m] value")
			}
			d.M = n
		case "[hd]":
			v, _ := nextNonEmpty(sc)
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.AddContext(err, "invalid [hd] value")
			}
			d.HD = n
		case "[min disk failures]":
			v, _ := nextNonEmpty(sc)
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.AddContext(err, "invalid [min disk failures] value")
			}
			d.MinDiskFailures = n
		case "[tanner graph]":
			v, _ := nextNonEmpty(sc)
			groups, err := parseIntGroups(v)
			if err != nil {
				return nil, errors.AddContext(err, "invalid [tanner graph] value")
			}
			d.TannerGraph = groups
		case "[raw layout]":
			v, _ := nextNonEmpty(sc)
			groups, err := parseIntGroups(v)
			if err != nil {
				return nil, errors.AddContext(err, "invalid [raw layout] value")
			}
			d.Layout = groups
		case "[fault tolerance vector]":
			v, _ := nextNonEmpty(sc)
			floats, err := parseFloatList(v)
			if err != nil {
				return nil, errors.AddContext(err, "invalid [fault tolerance vector] value")
			}
			d.FTV = floats
		case "[Disk sector conditional fault tolerance]":
			v, _ := nextNonEmpty(sc)
			rows, err := parseFloatGroups(v)
			if err != nil {
				return nil, errors.AddContext(err, "invalid [Disk sector conditional fault tolerance] value")
			}
			d.DSCFT = rows
		case "[minimal fault sets]":
			sets, next, hasNext, err := parseUntilEnd(sc)
			if err != nil {
				return nil, err
			}
			d.MinimalFaultSets = sets
			line, ok, advance = next, hasNext, false
		}
		if advance {
			line, ok = nextNonEmpty(sc)
		}
	}

	if err := sc.Err(); err != nil {
		return nil, errors.AddContext(err, "reading code description file")
	}
	return d, nil
}

// nextNonEmpty returns the next trimmed non-blank line, or "", false at
// EOF.
func nextNonEmpty(sc *bufio.Scanner) (string, bool) {
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			return line, true
		}
	}
	return "", false
}

// parseUntilEnd consumes comma-separated integer-list lines until a line
// reading "[END]", returning the collected lists and whether another
// section header follows.
func parseUntilEnd(sc *bufio.Scanner) (sets [][]int, next string, hasNext bool, err error) {
	for {
		line, ok := nextNonEmpty(sc)
		if !ok {
			return sets, "", false, nil
		}
		if line == "[END]" {
			next, ok := nextNonEmpty(sc)
			return sets, next, ok, nil
		}
		ids, err := parseIntList(line)
		if err != nil {
			return nil, "", false, errors.AddContext(err, "invalid [minimal fault sets] entry")
		}
		sets = append(sets, ids)
	}
}

// parseIntGroups parses "0,1;2,3" into [][]int{{0,1},{2,3}}.
func parseIntGroups(s string) ([][]int, error) {
	var out [][]int
	for _, group := range strings.Split(s, ";") {
		ids, err := parseIntList(group)
		if err != nil {
			return nil, err
		}
		out = append(out, ids)
	}
	return out, nil
}

func parseIntList(s string) ([]int, error) {
	fields := strings.Split(s, ",")
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func parseFloatList(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFloatGroups(s string) ([][]float64, error) {
	var out [][]float64
	for _, group := range strings.Split(s, ";") {
		row, err := parseFloatList(group)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}
