package main

import (
	"log"

	"github.com/jwaldrip/odin/cli"
	"github.com/mudesheng/ssdbg/fastaio"
	"github.com/mudesheng/ssdbg/kmer"
	"github.com/mudesheng/ssdbg/preprocess"
	"github.com/mudesheng/ssdbg/report"
	"github.com/mudesheng/ssdbg/utils"
)

type optionsKmer struct {
	utils.ArgsOpt
	Input string
}

func checkArgsKmer(c cli.Command) (opt optionsKmer, suc bool) {
	gOpt, suc := utils.CheckGlobalArgs(c.Parent())
	if !suc {
		log.Fatalf("[checkArgsKmer] check global Arguments error, opt: %v\n", gOpt)
	}
	opt.ArgsOpt = gOpt
	if opt.Kmer < 2 {
		log.Fatalf("[checkArgsKmer] the argument 'K': %d must >= 2\n", opt.Kmer)
	}
	opt.Input = c.Flag("input").String()
	if opt.Input == "" {
		log.Fatalf("[checkArgsKmer] args 'input' not set\n")
	}
	return opt, true
}

func KmerHist(c cli.Command) {
	opt, suc := checkArgsKmer(c)
	if !suc {
		log.Fatalf("[KmerHist] check Arguments error, opt: %v\n", opt)
	}
	defer startCPUProfile(opt.Cpuprofile)()
	reads := loadReads(opt.Input)
	t, st := kmer.Count(reads, opt.Kmer)
	h := t.Histogram()
	f := report.Files{Prefix: opt.Prefix}
	if err := report.WriteHist(f.Hist(), h); err != nil {
		log.Fatalf("[KmerHist] %v\n", err)
	}
	log.Printf("[KmerHist] reads: %d skipped: %d kmers: %d invalid windows: %d distinct: %d\n", st.Reads, st.SkippedReads, st.Kmers, st.InvalidKmers, h.Distinct())
}

type optionsCorrect struct {
	optionsAsm
	Output string
}

func checkArgsCorrect(c cli.Command) (opt optionsCorrect, suc bool) {
	gOpt, suc := utils.CheckGlobalArgs(c.Parent())
	if !suc {
		log.Fatalf("[checkArgsCorrect] check global Arguments error, opt: %v\n", gOpt)
	}
	opt.ArgsOpt = gOpt
	opt.Input = c.Flag("input").String()
	if opt.Input == "" {
		log.Fatalf("[checkArgsCorrect] args 'input' not set\n")
	}
	opt.Output = c.Flag("output").String()
	if opt.Output == "" {
		opt.Output = report.Files{Prefix: opt.Prefix}.Corrected()
	}
	if opt.Config, suc = configFromFlags(c, opt.Kmer); !suc {
		return opt, false
	}
	opt.Config.Correct = true
	if err := opt.Config.Resolve().Validate(); err != nil {
		log.Fatalf("[checkArgsCorrect] %v\n", err)
	}
	return opt, true
}

func CorrectReads(c cli.Command) {
	opt, suc := checkArgsCorrect(c)
	if !suc {
		log.Fatalf("[CorrectReads] check Arguments error, opt: %v\n", opt)
	}
	defer startCPUProfile(opt.Cpuprofile)()
	reads := loadReads(opt.Input)
	corrected, cs := preprocess.Correct(reads, preprocess.OptionsFromConfig(opt.Config))

	fp, err := fastaio.CreateWriter(opt.Output)
	if err != nil {
		log.Fatalf("[CorrectReads] create file: %v err: %v\n", opt.Output, err)
	}
	if err := fastaio.WriteReads(fp, corrected, "read"); err != nil {
		log.Fatalf("[CorrectReads] write file: %v err: %v\n", opt.Output, err)
	}
	if err := fp.Close(); err != nil {
		log.Fatalf("[CorrectReads] close file: %v err: %v\n", opt.Output, err)
	}
	log.Printf("[CorrectReads] error rate: %.4f rounds: %d changed bases: %d invalid positions: %d\n", cs.ErrorRate, cs.Rounds, cs.ChangedBases(), cs.InvalidPositions)
}
