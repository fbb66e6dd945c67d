package main

import (
	"log"
	"os"
	"runtime/pprof"

	"github.com/jwaldrip/odin/cli"
)

const Kmerdef = 21

var app = cli.New("1.0.0", "Single strand de Bruijn graph assembler for short reads", func(c cli.Command) {})

func init() {
	app.DefineStringFlag("cpuprofile", "", "write cpu profile to file")
	app.DefineIntFlag("K", Kmerdef, "kmer length")
	app.DefineStringFlag("p", "ssdbg", "prefix of the output file")
	km := app.DefineSubCommand("kmer", "count kmers of the reads and write the kmer histogram", KmerHist)
	{
		km.DefineStringFlag("input", "reads.fa", "input reads file[*.fa|*.fa.gz|*.fa.zst|*.fa.br]")
	}
	cor := app.DefineSubCommand("correct", "correct substitution errors of the reads", CorrectReads)
	{
		cor.DefineStringFlag("input", "reads.fa", "input reads file[*.fa|*.fa.gz|*.fa.zst|*.fa.br]")
		cor.DefineStringFlag("output", "", "output reads file, default[prefix.corrected.fa]")
		defineConfigFlags(cor)
	}
	as := app.DefineSubCommand("asm", "assemble reads to contigs", Asm)
	{
		as.DefineStringFlag("input", "reads.fa", "input reads file[*.fa|*.fa.gz|*.fa.zst|*.fa.br]")
		as.DefineBoolFlag("Graph", false, "output dot graph file before and after simplify")
		defineConfigFlags(as)
	}
	opt := app.DefineSubCommand("opt", "sweep a grid of assembly parameters and keep the best assembly", Opt)
	{
		opt.DefineStringFlag("input", "reads.fa", "input reads file[*.fa|*.fa.gz|*.fa.zst|*.fa.br]")
		opt.DefineStringFlag("grid", "", "parameter grid yaml file, default grid if not set")
		opt.DefineBoolFlag("Progress", true, "show progress bar")
		defineConfigFlags(opt)
	}
	stat := app.DefineSubCommand("stat", "assembly statistics of a contig file", ContigStat)
	{
		stat.DefineStringFlag("input", "", "input contigs file")
		stat.DefineIntFlag("MinLen", 0, "ignore contigs shorter than MinLen")
	}
	sim := app.DefineSubCommand("simulate", "simulate single strand reads from a genome", SimulateNGS)
	{
		sim.DefineStringFlag("input", "", "input genome fasta file")
		sim.DefineStringFlag("output", "sim.fa", "output reads file")
		sim.DefineIntFlag("ReadLen", 100, "read length")
		sim.DefineIntFlag("Step", 5, "start distance of adjacent reads")
		sim.DefineFloat64Flag("ErrRate", 0, "per base substitution rate[0~1)")
		sim.DefineInt64Flag("Seed", 1, "random seed")
	}
}

// startCPUProfile profile to fn until the returned function is called, no-op if fn is empty
func startCPUProfile(fn string) func() {
	if fn == "" {
		return func() {}
	}
	cpuprofilefp, err := os.Create(fn)
	if err != nil {
		log.Fatalf("[startCPUProfile] open cpuprofile file: %v failed\n", fn)
	}
	if err := pprof.StartCPUProfile(cpuprofilefp); err != nil {
		log.Fatalf("[startCPUProfile] start cpu profile err: %v\n", err)
	}
	return func() {
		pprof.StopCPUProfile()
		cpuprofilefp.Close()
	}
}

func main() {
	app.Start()
}
