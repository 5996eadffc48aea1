// Package erasurecode implements the decodability predicate spec.md §4.3
// requires: given a set of failed disks (and, for sector-granular models,
// failed sectors within otherwise-healthy disks), decide whether the code
// can still reconstruct every symbol.
package erasurecode

import (
	"github.com/greenan-labs/ablsim/internal/bitset"
	"github.com/greenan-labs/ablsim/internal/codefile"
	"github.com/greenan-labs/ablsim/internal/prng"
	"github.com/klauspost/reedsolomon"
	"gitlab.com/NebulousLabs/errors"
)

// CheckType selects how a XOR-based code's decodability is evaluated; MDS
// codes ignore this and always use the closed-form erasure count.
type CheckType int

const (
	CheckRank CheckType = iota
	CheckMEL
	CheckFTV
	CheckDSCFT
)

// ErrUnsupportedCheck is returned when a CheckType is requested that the
// loaded descriptor doesn't carry the data for (e.g. CheckFTV with no FTV
// section).
var ErrUnsupportedCheck = errors.New("erasurecode: descriptor does not carry the data this check type needs")

// Code is an erasure code ready to answer decodability questions.
type Code struct {
	desc      *codefile.Descriptor
	check     CheckType
	generator *bitset.Matrix // only for FLAT_XOR/ARRAY_XOR
	mds       reedsolomon.Encoder
}

// New builds a Code from a parsed descriptor. check is ignored for MDS
// codes. For FLAT_XOR/ARRAY_XOR codes it selects which of
// CheckRank/CheckMEL/CheckFTV/CheckDSCFT decides decodability.
func New(desc *codefile.Descriptor, check CheckType) (*Code, error) {
	c := &Code{desc: desc, check: check}

	switch desc.Type {
	case codefile.TypeFlatXOR, codefile.TypeArrayXOR:
		c.generator = bitset.BuildGenerator(uint(desc.K), uint(desc.M), toUintGroups(desc.TannerGraph))
		switch check {
		case CheckMEL:
			if len(desc.MinimalFaultSets) == 0 {
				return nil, ErrUnsupportedCheck
			}
		case CheckFTV:
			if len(desc.FTV) == 0 {
				return nil, ErrUnsupportedCheck
			}
		case CheckDSCFT:
			if len(desc.DSCFT) == 0 {
				return nil, ErrUnsupportedCheck
			}
		}
	case codefile.TypeMDS:
		enc, err := reedsolomon.New(desc.K, desc.M)
		if err != nil {
			return nil, errors.AddContext(err, "constructing MDS cross-check encoder")
		}
		c.mds = enc
	}

	return c, nil
}

func toUintGroups(groups [][]int) [][]uint {
	out := make([][]uint, len(groups))
	for i, g := range groups {
		row := make([]uint, len(g))
		for j, v := range g {
			row[j] = uint(v)
		}
		out[i] = row
	}
	return out
}

// MinDiskFailures returns the descriptor's minimum number of concurrent
// disk failures before data loss is even possible (spec.md §3).
func (c *Code) MinDiskFailures() int { return c.desc.MinDiskFailures }

// TotalSymbols returns k+m, the systematic code's full symbol width.
func (c *Code) TotalSymbols() int { return c.desc.K + c.desc.M }

// IsFailure reports whether the array is undecodable given failedDisks
// (disk IDs entirely lost) and failedSectors (per-disk lists of failed
// sector indices, for disks not already in failedDisks). Mirrors
// original_source/lib/erasure_code.py's ErasureCode.is_failure.
func (c *Code) IsFailure(failedDisks []int, failedSectors map[int][]int, rng *prng.Source) bool {
	symbolErrors, sectorGroups := c.classifySymbolErrors(failedDisks, failedSectors)

	if c.desc.Type == codefile.TypeMDS {
		for _, sectors := range sectorGroups {
			if c.desc.M < len(symbolErrors)+len(sectors) {
				return true
			}
		}
		return false
	}

	switch c.check {
	case CheckRank:
		return c.checkRank(symbolErrors, sectorGroups)
	case CheckMEL:
		return c.checkMEL(symbolErrors, sectorGroups)
	case CheckFTV:
		return c.checkFTV(symbolErrors, sectorGroups, rng)
	case CheckDSCFT:
		return c.checkDSCFT(failedDisks, sectorGroups, rng)
	}
	return false
}

// classifySymbolErrors turns raw disk/sector failures into the code's
// symbol-error universe: for MDS/FLAT_XOR a symbol is a disk; for
// ARRAY_XOR a symbol is one layout entry per disk. Sector failures on
// disks that are not already fully failed are grouped by the stripe/sector
// they land in, mirroring the original's `unique_sectors` dict.
func (c *Code) classifySymbolErrors(failedDisks []int, failedSectors map[int][]int) ([]int, map[int][]int) {
	failedSet := make(map[int]bool, len(failedDisks))
	for _, d := range failedDisks {
		failedSet[d] = true
	}

	sectorGroups := map[int][]int{}
	if len(failedSectors) == 0 {
		sectorGroups[0] = nil
	}

	var symbolErrors []int

	switch c.desc.Type {
	case codefile.TypeArrayXOR:
		for _, d := range failedDisks {
			symbolErrors = append(symbolErrors, c.desc.Layout[d]...)
		}
		for disk, sectors := range failedSectors {
			if failedSet[disk] {
				continue
			}
			layoutLen := len(c.desc.Layout[disk])
			for _, sector := range sectors {
				stripe := sector / layoutLen
				symIdx := c.desc.Layout[disk][sector%layoutLen]
				sectorGroups[stripe] = append(sectorGroups[stripe], symIdx)
			}
		}
	default: // MDS, FLAT_XOR
		symbolErrors = append(symbolErrors, failedDisks...)
		for disk, sectors := range failedSectors {
			if failedSet[disk] {
				continue
			}
			for _, sector := range sectors {
				sectorGroups[sector] = append(sectorGroups[sector], disk)
			}
		}
	}

	return symbolErrors, sectorGroups
}

func (c *Code) checkRank(symbolErrors []int, sectorGroups map[int][]int) bool {
	for _, sectors := range sectorGroups {
		work := c.generator.Clone()
		cols := make([]uint, 0, len(symbolErrors)+len(sectors))
		for _, v := range symbolErrors {
			cols = append(cols, uint(v))
		}
		for _, v := range sectors {
			cols = append(cols, uint(v))
		}
		work.ZeroColumns(cols)
		if uint(c.desc.K) > work.Rank() {
			return true
		}
	}
	return false
}

func (c *Code) checkMEL(symbolErrors []int, sectorGroups map[int][]int) bool {
	width := uint(c.desc.K + c.desc.M)
	for _, sectors := range sectorGroups {
		erased := bitset.FromIndices(width, append(append([]int{}, symbolErrors...), sectors...))
		for _, pattern := range c.desc.MinimalFaultSets {
			me := bitset.FromIndices(width, pattern)
			if erased.Contains(me) {
				return true
			}
		}
	}
	return false
}

func (c *Code) checkFTV(symbolErrors []int, sectorGroups map[int][]int, rng *prng.Source) bool {
	for _, sectors := range sectorGroups {
		n := len(symbolErrors) + len(sectors)
		if n == 0 {
			continue
		}
		if n-1 >= len(c.desc.FTV) {
			return true
		}
		if rng.Uniform() < c.desc.FTV[n-1] {
			return true
		}
	}
	return false
}

func (c *Code) checkDSCFT(failedDisks []int, sectorGroups map[int][]int, rng *prng.Source) bool {
	nd := len(failedDisks)
	if nd >= len(c.desc.DSCFT) {
		return true
	}
	if rng.Uniform() < c.desc.DSCFT[nd][0] {
		return true
	}
	for _, sectors := range sectorGroups {
		if len(sectors) == 0 {
			continue
		}
		if len(sectors) >= len(c.desc.DSCFT[nd]) {
			return true
		}
		if rng.Uniform() < c.desc.DSCFT[nd][len(sectors)] {
			return true
		}
	}
	return false
}

// VerifyMDSCrossCheck cross-checks the simple "erasures > m" MDS rule
// against a real systematic Reed-Solomon code: it encodes random data,
// nils out exactly `erasures` shards, and confirms Reconstruct succeeds
// iff erasures <= m (spec.md §8, Testable Property 7). Returns an error
// only on an unexpected encoder failure, not on a reconstruction being
// (correctly) impossible.
func (c *Code) VerifyMDSCrossCheck(erasures int) (reconstructable bool, err error) {
	if c.mds == nil {
		return false, errors.New("erasurecode: VerifyMDSCrossCheck requires an MDS code")
	}
	shards, err := c.mds.Split(make([]byte, c.desc.K*64))
	if err != nil {
		return false, errors.AddContext(err, "splitting cross-check payload")
	}
	if err := c.mds.Encode(shards); err != nil {
		return false, errors.AddContext(err, "encoding cross-check shards")
	}
	for i := 0; i < erasures && i < len(shards); i++ {
		shards[i] = nil
	}
	err = c.mds.Reconstruct(shards)
	if err != nil {
		if errors.Contains(err, reedsolomon.ErrTooFewShards) {
			return false, nil
		}
		return false, errors.AddContext(err, "reconstructing cross-check shards")
	}
	return true, nil
}
