// Package runner drives N Monte Carlo iterations of a Simulator to
// completion and aggregates them into the pattern histogram, average
// bytes lost, and estimator bands the CLI reports (spec.md §2,
// original_source/abl.py's Simulate.run_simulation). Iterations are
// independent given each has its own PRNG-seeded simulator (spec.md §5),
// so they run across a worker pool bounded by a
// gitlab.com/NebulousLabs/threadgroup, in the same spirit the teacher
// uses threadgroup to bound and cleanly tear down background work.
package runner

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/greenan-labs/ablsim/internal/bigreal"
	"github.com/greenan-labs/ablsim/internal/erasurecode"
	"github.com/greenan-labs/ablsim/internal/prng"
	"github.com/greenan-labs/ablsim/internal/sectorfail"
	"github.com/greenan-labs/ablsim/internal/simulation"
	"gitlab.com/NebulousLabs/errors"
	"gitlab.com/NebulousLabs/threadgroup"
)

// BytesPerSector is the fixed sector size used to convert a sector count
// into bytes lost, matching original_source/abl.py's hardcoded 4096.
const BytesPerSector = 4096.0

// Config configures one aggregated run of N iterations.
type Config struct {
	Iterations  int
	Parallelism int // <=0 selects runtime.GOMAXPROCS(0)
	MissionTime float64

	CriticalCheck bool

	// UsableCapacityDenominator is the -k flag: avg bytes lost is divided
	// by this to report bytes lost per usable capacity unit (spec.md §6).
	UsableCapacityDenominator float64

	// Progress, if non-nil, is called once per completed iteration so the
	// CLI can drive a progress bar. Called from whichever goroutine
	// drains results; Run itself is single-threaded on the consuming
	// side, so no external synchronization is required.
	Progress func()
}

// Report is the aggregated outcome of a run: the raw per-iteration
// weights (for further estimator queries via internal/stats), the
// average bytes lost per usable-capacity unit, and the pattern
// histogram/probabilities.
type Report struct {
	Weights             []bigreal.Real
	AvgBytesLostPerUnit float64
	PatternCounts       map[string]int
	PatternProbs        map[string]float64
}

// NewSimulator constructs one worker's private Simulator and is handed
// the PRNG source that backs it, seeded from workerID so every worker's
// draw sequence is reproducible and independent of the others (spec.md
// §5, §9 "Deterministic reproducibility").
type NewSimulator func(workerID int, rng *prng.Source) simulation.Simulator

// Run executes cfg.Iterations iterations of simulators built by newSim,
// checked against code and sectorModel, and aggregates the results.
func Run(newSim NewSimulator, code *erasurecode.Code, sectorModel sectorfail.Model, cfg Config) (*Report, error) {
	if cfg.Iterations <= 0 {
		return nil, errors.New("runner: Iterations must be positive")
	}
	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	if parallelism > cfg.Iterations {
		parallelism = cfg.Iterations
	}

	jobs := make(chan int, cfg.Iterations)
	for i := 0; i < cfg.Iterations; i++ {
		jobs <- i
	}
	close(jobs)

	results := make(chan simulation.Result, cfg.Iterations)

	var tg threadgroup.ThreadGroup
	var wg sync.WaitGroup
	for w := 0; w < parallelism; w++ {
		if err := tg.Add(); err != nil {
			return nil, errors.AddContext(err, "starting simulation worker")
		}
		wg.Add(1)
		workerID := w
		go func() {
			defer tg.Done()
			defer wg.Done()

			rng := prng.New(int64(workerID) + 1)
			sim := newSim(workerID, rng)
			sim.Init()

			for range jobs {
				results <- simulation.RunIteration(sim, code, sectorModel, cfg.MissionTime, cfg.CriticalCheck, rng)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	report := &Report{
		PatternCounts: map[string]int{},
		PatternProbs:  map[string]float64{},
	}

	var avgBytesLost float64
	for res := range results {
		if cfg.Progress != nil {
			cfg.Progress()
		}
		report.Weights = append(report.Weights, res.Weight)
		report.PatternCounts[res.Pattern]++
		report.PatternProbs[res.Pattern] += res.Weight.Float64()

		if !res.Weight.IsZero() {
			_, numSectors, err := parsePattern(res.Pattern)
			if err != nil {
				return nil, err
			}
			if numSectors == 0 {
				avgBytesLost += res.CriticalRegion * res.Weight.Float64()
			} else {
				avgBytesLost += 1
			}
		}
	}

	for pattern := range report.PatternProbs {
		report.PatternProbs[pattern] /= float64(cfg.Iterations)
	}

	avgBytesLost = (avgBytesLost * BytesPerSector) / float64(cfg.Iterations)
	denom := cfg.UsableCapacityDenominator
	if denom == 0 {
		denom = 1
	}
	report.AvgBytesLostPerUnit = avgBytesLost / denom

	tg.Stop()
	return report, nil
}

// parsePattern parses the "(d, s)" pattern label spec.md §3/§8 (S6)
// defines back into its disk-count and sector-dimension components.
func parsePattern(pattern string) (numDisks, numSectors int, err error) {
	if _, err := fmt.Sscanf(pattern, "(%d, %d)", &numDisks, &numSectors); err != nil {
		return 0, 0, errors.AddContext(err, "parsing pattern label "+pattern)
	}
	return numDisks, numSectors, nil
}
