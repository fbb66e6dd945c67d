package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/jwaldrip/odin/cli"
	"github.com/mudesheng/ssdbg/asm"
	"github.com/mudesheng/ssdbg/config"
	"github.com/mudesheng/ssdbg/fastaio"
	"github.com/mudesheng/ssdbg/optimize"
	"github.com/mudesheng/ssdbg/report"
	"github.com/mudesheng/ssdbg/utils"
)

func defineConfigFlags(sc *cli.SubCommand) {
	d := config.Default(Kmerdef)
	sc.DefineStringFlag("params", "", "params yaml file, replaces all assembly flags below")
	sc.DefineIntFlag("MinKmerCount", d.MinKmerCount, "min kmer count allowed as graph edge")
	sc.DefineIntFlag("MinContigLen", d.MinContigLen, "min contig length output")
	sc.DefineBoolFlag("Correct", d.Correct, "correct reads before graph construction")
	sc.DefineIntFlag("MaxCorrectRounds", d.MaxCorrectRounds, "max correction rounds[0~10]")
	sc.DefineIntFlag("CorrectK", d.CorrectKmer, "kmer length of correction, default[0] chosen by estimated error rate, at most -K")
	sc.DefineIntFlag("EstimateK", d.EstimateKmer, "kmer length of error rate estimation[2~32]")
	sc.DefineIntFlag("RareCount", d.RareCount, "kmers seen less than RareCount times are rare")
	sc.DefineIntFlag("TrustThreshold", d.TrustThreshold, "min count of trusted kmer, default[0] derived from histogram")
	sc.DefineIntFlag("MinIslandWeight", d.MinIslandWeight, "islands lighter than MinIslandWeight are removed")
	sc.DefineIntFlag("MinIslandLen", d.MinIslandLen, "islands shorter than MinIslandLen are removed, default[0] for -K * 2")
	sc.DefineIntFlag("TipMaxLen", d.TipMaxLen, "tips shorter than TipMaxLen bases are removed, default[0] for -K * 2")
	sc.DefineFloat64Flag("TipWeightRatio", d.TipWeightRatio, "tip removed if weight < ratio * competing branch weight")
	sc.DefineIntFlag("MaxTipPasses", d.MaxTipPasses, "max tip removal passes")
	sc.DefineBoolFlag("PopBubbles", d.PopBubbles, "pop bubbles")
	sc.DefineIntFlag("MaxBubbleLen", d.MaxBubbleLen, "Maximum bubble branch edge number, default[0] for -K * 2")
	sc.DefineBoolFlag("CoverageCutoff", d.CoverageCutoff, "remove edges below a weight percentile")
	sc.DefineFloat64Flag("CoveragePercentile", d.CoveragePercentile, "weight percentile of coverage cutoff[0~1)")
	sc.DefineIntFlag("MaxCleanPasses", d.MaxCleanPasses, "max simplify passes")
}

// configFromFlags return the assembly configuration of the -params file or the flags
func configFromFlags(c cli.Command, k int) (cfg config.Config, suc bool) {
	if fn := c.Flag("params").String(); fn != "" {
		var err error
		cfg, err = config.Load(fn, k)
		if err != nil {
			log.Printf("[configFromFlags] load params file: %v err: %v\n", fn, err)
			return cfg, false
		}
		return cfg, true
	}
	cfg = config.Default(k)
	cfg.MinKmerCount = c.Flag("MinKmerCount").Get().(int)
	cfg.MinContigLen = c.Flag("MinContigLen").Get().(int)
	cfg.Correct = c.Flag("Correct").Get().(bool)
	cfg.MaxCorrectRounds = c.Flag("MaxCorrectRounds").Get().(int)
	cfg.CorrectKmer = c.Flag("CorrectK").Get().(int)
	cfg.EstimateKmer = c.Flag("EstimateK").Get().(int)
	cfg.RareCount = c.Flag("RareCount").Get().(int)
	cfg.TrustThreshold = c.Flag("TrustThreshold").Get().(int)
	cfg.MinIslandWeight = c.Flag("MinIslandWeight").Get().(int)
	cfg.MinIslandLen = c.Flag("MinIslandLen").Get().(int)
	cfg.TipMaxLen = c.Flag("TipMaxLen").Get().(int)
	cfg.TipWeightRatio = c.Flag("TipWeightRatio").Get().(float64)
	cfg.MaxTipPasses = c.Flag("MaxTipPasses").Get().(int)
	cfg.PopBubbles = c.Flag("PopBubbles").Get().(bool)
	cfg.MaxBubbleLen = c.Flag("MaxBubbleLen").Get().(int)
	cfg.CoverageCutoff = c.Flag("CoverageCutoff").Get().(bool)
	cfg.CoveragePercentile = c.Flag("CoveragePercentile").Get().(float64)
	cfg.MaxCleanPasses = c.Flag("MaxCleanPasses").Get().(int)
	return cfg, true
}

type optionsAsm struct {
	utils.ArgsOpt
	Input  string
	Graph  bool
	Config config.Config
}

func checkArgsAsm(c cli.Command) (opt optionsAsm, suc bool) {
	gOpt, suc := utils.CheckGlobalArgs(c.Parent())
	if !suc {
		log.Fatalf("[checkArgsAsm] check global Arguments error, opt: %v\n", gOpt)
	}
	opt.ArgsOpt = gOpt
	opt.Input = c.Flag("input").String()
	if opt.Input == "" {
		log.Fatalf("[checkArgsAsm] args 'input' not set\n")
	}
	opt.Graph = c.Flag("Graph").Get().(bool)
	opt.Config, suc = configFromFlags(c, opt.Kmer)
	if !suc {
		return opt, false
	}
	if err := opt.Config.Resolve().Validate(); err != nil {
		log.Fatalf("[checkArgsAsm] %v\n", err)
	}
	return opt, true
}

func loadReads(fn string) [][]byte {
	reads, st, err := fastaio.LoadReads(fn)
	if err != nil {
		log.Fatalf("[loadReads] load reads file: %v err: %v\n", fn, err)
	}
	log.Printf("[loadReads] records: %d reads: %d bases: %d empty: %d ambiguous: %d\n", st.Records, st.Reads, st.Bases, st.Empty, st.Ambiguous)
	return reads
}

func Asm(c cli.Command) {
	opt, suc := checkArgsAsm(c)
	if !suc {
		log.Fatalf("[Asm] check Arguments error, opt: %v\n", opt)
	}
	defer startCPUProfile(opt.Cpuprofile)()
	t0 := time.Now()
	reads := loadReads(opt.Input)

	f := report.Files{Prefix: opt.Prefix}
	var hook asm.GraphHook
	if opt.Graph {
		hook = report.GraphvizHook(f)
	}
	res, err := asm.RunHook(reads, opt.Config, hook)
	if err != nil {
		log.Fatalf("[Asm] assemble err: %v\n", err)
	}
	if err := report.WriteAll(f, opt.Input, res); err != nil {
		log.Fatalf("[Asm] write result err: %v\n", err)
	}
	log.Printf("[Asm] contigs: %d total length: %d N50: %d used time: %v\n", res.Stat.Count, res.Stat.TotalLen, res.Stat.N50, time.Since(t0))
}

type optionsOpt struct {
	optionsAsm
	Grid     string
	Progress bool
}

func checkArgsOpt(c cli.Command) (opt optionsOpt, suc bool) {
	gOpt, suc := utils.CheckGlobalArgs(c.Parent())
	if !suc {
		log.Fatalf("[checkArgsOpt] check global Arguments error, opt: %v\n", gOpt)
	}
	opt.ArgsOpt = gOpt
	opt.Input = c.Flag("input").String()
	if opt.Input == "" {
		log.Fatalf("[checkArgsOpt] args 'input' not set\n")
	}
	opt.Grid = c.Flag("grid").String()
	opt.Progress = c.Flag("Progress").Get().(bool)
	opt.Config, suc = configFromFlags(c, opt.Kmer)
	return opt, suc
}

func Opt(c cli.Command) {
	opt, suc := checkArgsOpt(c)
	if !suc {
		log.Fatalf("[Opt] check Arguments error, opt: %v\n", opt)
	}
	if err := sweepAndWrite(opt); err != nil {
		log.Fatalf("[Opt] %v\n", err)
	}
}

// sweepAndWrite run the sweep and write the best assembly, also when the sweep was
// interrupted after at least one configuration produced contigs
func sweepAndWrite(opt optionsOpt) error {
	defer startCPUProfile(opt.Cpuprofile)()
	t0 := time.Now()
	grid := optimize.DefaultGrid()
	if opt.Grid != "" {
		var err error
		if grid, err = optimize.LoadGrid(opt.Grid); err != nil {
			return err
		}
	}
	cfgs := grid.Configs(opt.Config)
	reads, st, err := fastaio.LoadReads(opt.Input)
	if err != nil {
		return err
	}
	log.Printf("[sweepAndWrite] reads: %d bases: %d configurations: %d\n", st.Reads, st.Bases, len(cfgs))

	f := report.Files{Prefix: opt.Prefix}
	ledger, err := optimize.OpenLedger(f.SweepDB())
	if err != nil {
		return fmt.Errorf("open ledger: %v err: %w", f.SweepDB(), err)
	}
	defer ledger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	best, score, err := optimize.Sweep(ctx, reads, cfgs, ledger, optimize.SweepOpt{Progress: opt.Progress})
	if best == nil {
		return fmt.Errorf("sweep %d configurations err: %w", len(cfgs), err)
	}
	if err != nil {
		log.Printf("[sweepAndWrite] sweep stopped: %v, writing the best assembly so far\n", err)
	}
	if werr := report.WriteAll(f, opt.Input, best); werr != nil {
		return fmt.Errorf("write result err: %w", werr)
	}
	log.Printf("[sweepAndWrite] best kmer_length: %d score: %.1f N50: %d used time: %v\n", best.Config.Kmer, score, best.Stat.N50, time.Since(t0))
	return err
}
