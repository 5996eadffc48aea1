// Command ablsim is the CLI driver for the Annualized Bytes Lost
// reliability estimator: it parses a code description file and the flag
// table spec.md §6 defines, runs the selected sampling strategy for the
// requested number of iterations, and reports the pattern histogram and
// average bytes lost (original_source/abl.py's get_parms/usage/main).
package main

import (
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/greenan-labs/ablsim/internal/codefile"
	"github.com/greenan-labs/ablsim/internal/erasurecode"
	"github.com/greenan-labs/ablsim/internal/prng"
	"github.com/greenan-labs/ablsim/internal/runner"
	"github.com/greenan-labs/ablsim/internal/sectorfail"
	"github.com/greenan-labs/ablsim/internal/simulation"
	"github.com/greenan-labs/ablsim/internal/stats"
	"github.com/greenan-labs/ablsim/internal/weibull"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"
	"gitlab.com/NebulousLabs/errors"
)

// usageError wraps ConfigurationError-class failures (spec.md §7) so
// main can tell them apart from everything else and exit(2) instead of
// exit(1).
type usageError struct{ err error }

func (u usageError) Error() string { return u.err.Error() }
func (u usageError) Unwrap() error { return u.err }

// preset bundles the two divergent default sets original_source/abl.py and
// original_source/abl_condor.py disagree on (DESIGN.md Open Question 1):
// which one applies is the one thing --preset controls, never silently
// guessed from flag presence.
type preset struct {
	simMode     string
	repairDist  string
	kMultiplier float64
}

var presets = map[string]preset{
	"default": {simMode: "unif,0.8,0.3", repairDist: "2,24,12", kMultiplier: 37.253},
	"legacy":  {simMode: "bfb,0.5,0.5", repairDist: "2,120,72", kMultiplier: 3.64},
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ue usageError
		if stderrors.As(err, &ue) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		presetName    string
		simMode       string
		missionTime   float64
		numComponents int
		iterations    int
		faultCheck    string
		criticalCheck bool
		codeFile      string
		sectorModel   string
		failDist      string
		repairDist    string
		k             float64
	)

	cmd := &cobra.Command{
		Use:           "ablsim",
		Short:         "Monte Carlo estimator for annualized bytes lost in an erasure-coded array",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := presets[presetName]
			if !ok {
				return usageError{errors.New("unknown --preset " + presetName + " (want default or legacy)")}
			}
			if !cmd.Flags().Changed("sim_mode") {
				simMode = p.simMode
			}
			if !cmd.Flags().Changed("component_repair_dist") {
				repairDist = p.repairDist
			}
			if !cmd.Flags().Changed("k") {
				k = p.kMultiplier
			}
			return run(runParams{
				simMode:       simMode,
				missionTime:   missionTime,
				numComponents: numComponents,
				codeFileSet:   cmd.Flags().Changed("code_file"),
				componentsSet: cmd.Flags().Changed("num_components"),
				iterations:    iterations,
				faultCheck:    faultCheck,
				criticalCheck: criticalCheck,
				codeFile:      codeFile,
				sectorModel:   sectorModel,
				failDist:      failDist,
				repairDist:    repairDist,
				k:             k,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&presetName, "preset", "p", "default", "which divergent original default set to use: default|legacy")
	flags.StringVarP(&simMode, "sim_mode", "s", "unif,0.8,0.3", `"reg" or "bfb,<forcing_prob>,<fb_prob>" or "unif,<forcing_prob>,<fb_prob>"`)
	flags.Float64VarP(&missionTime, "mission_time", "m", 35040, "mission time, in hours")
	flags.IntVarP(&numComponents, "num_components", "n", 0, "number of disks in the array (required with -C)")
	flags.IntVarP(&iterations, "iterations", "i", 10000, "number of Monte Carlo iterations")
	flags.StringVarP(&faultCheck, "fault_check", "f", "ftv", "decodability check for XOR codes: ftv|mel|rank|dscft")
	flags.BoolVarP(&criticalCheck, "critical_check", "c", true, "enable critical-region sizing")
	flags.StringVarP(&codeFile, "code_file", "C", "rs_10_4", "descriptor filename under codes/")
	flags.StringVarP(&sectorModel, "sector_failure_model", "S", "1e9,3.2768e-10", "2-tuple BER (S,p) or 7-tuple scrubbing (kind,S,sectorsPerRegion,scrubInterval,requestRate,p,writeRatio)")
	flags.StringVarP(&failDist, "component_fail_dist", "F", "1.12,281257", "1/2/3-parameter Weibull tuple: shape[,scale[,location]]")
	flags.StringVarP(&repairDist, "component_repair_dist", "R", "2,24,12", "1/2/3-parameter Weibull tuple: shape[,scale[,location]]")
	flags.Float64VarP(&k, "k", "k", 37.253, "usable-capacity denominator multiplier")

	return cmd
}

type runParams struct {
	simMode       string
	missionTime   float64
	numComponents int
	codeFileSet   bool
	componentsSet bool
	iterations    int
	faultCheck    string
	criticalCheck bool
	codeFile      string
	sectorModel   string
	failDist      string
	repairDist    string
	k             float64
}

func run(p runParams) error {
	if p.iterations <= 0 {
		return usageError{errors.New("--iterations must be positive")}
	}

	f, err := os.Open("codes/" + p.codeFile)
	if err != nil {
		return usageError{errors.AddContext(err, "opening code file")}
	}
	defer f.Close()
	desc, err := codefile.Parse(f)
	if err != nil {
		return usageError{errors.AddContext(err, "parsing code file")}
	}

	check, err := parseFaultCheck(p.faultCheck)
	if err != nil {
		return usageError{err}
	}
	code, err := erasurecode.New(desc, check)
	if err != nil {
		return usageError{errors.AddContext(err, "constructing erasure code")}
	}

	n := p.numComponents
	if !p.componentsSet {
		if p.codeFileSet {
			return usageError{errors.New("--num_components is required alongside --code_file")}
		}
		n = desc.K + desc.M
	}
	if n <= 0 {
		return usageError{errors.New("--num_components must be positive")}
	}

	failD, err := parseWeibullTuple(p.failDist)
	if err != nil {
		return usageError{errors.AddContext(err, "parsing --component_fail_dist")}
	}
	repairD, err := parseWeibullTuple(p.repairDist)
	if err != nil {
		return usageError{errors.AddContext(err, "parsing --component_repair_dist")}
	}
	failDists := repeatDist(failD, n)
	repairDists := repeatDist(repairD, n)

	sectorModel, err := parseSectorModel(p.sectorModel)
	if err != nil {
		return usageError{errors.AddContext(err, "parsing --sector_failure_model")}
	}

	newSim, err := parseSimMode(p.simMode, failDists, repairDists)
	if err != nil {
		return usageError{errors.AddContext(err, "parsing --sim_mode")}
	}

	bar := newProgressBar(p.iterations)
	defer bar.Abort(false)

	report, err := runner.Run(newSim, code, sectorModel, runner.Config{
		Iterations:                p.iterations,
		MissionTime:               p.missionTime,
		CriticalCheck:             p.criticalCheck,
		UsableCapacityDenominator: p.k,
		Progress:                 func() { bar.Increment() },
	})
	if err != nil {
		return errors.AddContext(err, "running simulation")
	}

	printReport(report, p.iterations)
	return nil
}

func newProgressBar(total int) *mpb.Bar {
	p := mpb.New(mpb.WithWidth(64))
	return p.AddBar(int64(total),
		mpb.PrependDecorators(decor.Name("ablsim")),
		mpb.AppendDecorators(decor.Percentage()),
	)
}

func printReport(report *runner.Report, iterations int) {
	samples := stats.New(report.Weights)

	fmt.Printf("iterations: %d\n", iterations)
	fmt.Printf("mean P(loss): %.6g  (90%% CI +/- %.6g, RE %.4g)\n", samples.Mean(), samples.ConfInterval("0.90"), samples.RE())
	fmt.Printf("non-loss iterations: %d\n", samples.NumZeroes())
	fmt.Printf("avg bytes lost per usable-capacity unit: %.6g\n", report.AvgBytesLostPerUnit)
	fmt.Println("loss pattern histogram:")
	for pattern, count := range report.PatternCounts {
		fmt.Printf("  %-12s count=%-8d prob=%.6g\n", pattern, count, report.PatternProbs[pattern])
	}
}

// parseFaultCheck maps the -f flag's string values onto erasurecode's
// CheckType.
func parseFaultCheck(s string) (erasurecode.CheckType, error) {
	switch strings.ToLower(s) {
	case "rank":
		return erasurecode.CheckRank, nil
	case "mel":
		return erasurecode.CheckMEL, nil
	case "ftv":
		return erasurecode.CheckFTV, nil
	case "dscft":
		return erasurecode.CheckDSCFT, nil
	}
	return 0, errors.New("--fault_check must be one of ftv|mel|rank|dscft, got " + s)
}

// parseWeibullTuple parses a comma-separated "shape[,scale[,location]]"
// tuple, defaulting scale to 1 and location to 0 when omitted (spec.md
// §6's "1/2/3-parameter Weibull tuple").
func parseWeibullTuple(s string) (weibull.Dist, error) {
	fields := strings.Split(s, ",")
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return weibull.Dist{}, errors.AddContext(err, "invalid Weibull tuple "+s)
		}
		vals[i] = v
	}
	switch len(vals) {
	case 1:
		return weibull.New(vals[0], 1, 0), nil
	case 2:
		return weibull.New(vals[0], vals[1], 0), nil
	case 3:
		return weibull.New(vals[0], vals[1], vals[2]), nil
	}
	return weibull.Dist{}, errors.New("Weibull tuple must have 1-3 fields, got " + s)
}

func repeatDist(d weibull.Dist, n int) []weibull.Dist {
	out := make([]weibull.Dist, n)
	for i := range out {
		out[i] = d
	}
	return out
}

// parseSectorModel parses the -S flag's 2-tuple BER form or 7-tuple
// scrubbing form. The scrubbing form's leading field selects the scrub
// kind: 0=random, 1=deterministic, 2=no-scrub (spec.md §6, §4.4).
func parseSectorModel(s string) (sectorfail.Model, error) {
	fields := strings.Split(s, ",")
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, errors.AddContext(err, "invalid sector failure model "+s)
		}
		vals[i] = v
	}
	switch len(vals) {
	case 2:
		return sectorfail.BER{TotalSectors: int(vals[0]), P: vals[1]}, nil
	case 7:
		totalSectors := int(vals[1])
		sectorsPerRegion := int(vals[2])
		scrubInterval := vals[3]
		requestRate := vals[4]
		p := vals[5]
		writeRatio := vals[6]
		switch int(vals[0]) {
		case 0:
			return sectorfail.RandomScrub{
				TotalSectors: totalSectors, SectorsPerRegion: sectorsPerRegion,
				ScrubInterval: scrubInterval, RequestRate: requestRate,
				P: p, WriteRatio: writeRatio,
			}, nil
		case 1:
			return sectorfail.DeterministicScrub{
				TotalSectors: totalSectors, SectorsPerRegion: sectorsPerRegion,
				ScrubInterval: scrubInterval, RequestRate: requestRate,
				P: p, WriteRatio: writeRatio,
			}, nil
		case 2:
			return sectorfail.NoScrub{TotalSectors: totalSectors, P: p, WriteRatio: writeRatio}, nil
		}
		return nil, errors.New("sector failure model scrub kind must be 0, 1, or 2")
	}
	return nil, errors.New("sector failure model must have 2 or 7 fields, got " + s)
}

// parseSimMode parses the -s flag into a runner.NewSimulator: "reg" for
// Direct, or "bfb,<forcing_prob>,<fb_prob>"/"unif,<forcing_prob>,<fb_prob>"
// for the biased strategies. forcing_prob is parsed and otherwise unused,
// per DESIGN.md's decision to carry it as an inert configuration value
// (spec.md §9).
func parseSimMode(s string, failDists, repairDists []weibull.Dist) (runner.NewSimulator, error) {
	fields := strings.Split(s, ",")
	mode := strings.ToLower(strings.TrimSpace(fields[0]))

	if mode == "reg" {
		return func(workerID int, rng *prng.Source) simulation.Simulator {
			return simulation.NewDirect(failDists, repairDists, rng)
		}, nil
	}

	if len(fields) != 3 {
		return nil, errors.New(`biased --sim_mode needs "bfb,<forcing_prob>,<fb_prob>" or "unif,<forcing_prob>,<fb_prob>", got ` + s)
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64) // forcing_prob: parsed, unused
	if err != nil {
		return nil, errors.AddContext(err, "invalid forcing_prob in --sim_mode")
	}
	fbProb, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return nil, errors.AddContext(err, "invalid fb_prob in --sim_mode")
	}

	switch mode {
	case "bfb":
		// NewBFB only fails on heterogeneous distributions, which can't
		// vary across workers; check once up front so the per-worker
		// closure can't fail.
		if _, err := simulation.NewBFB(failDists, repairDists, fbProb, prng.New(0)); err != nil {
			return nil, err
		}
		return func(workerID int, rng *prng.Source) simulation.Simulator {
			sim, _ := simulation.NewBFB(failDists, repairDists, fbProb, rng)
			return sim
		}, nil
	case "unif":
		return func(workerID int, rng *prng.Source) simulation.Simulator {
			return simulation.NewUnifBFB(failDists, repairDists, fbProb, rng)
		}, nil
	}
	return nil, errors.New(`--sim_mode must be "reg", "bfb,...", or "unif,...", got ` + s)
}
