// Package asm runs one assembly: read correction, kmer indexing, DBG construction,
// simplification and contig extraction.
package asm

import (
	"errors"
	"fmt"
	"log"

	"github.com/mudesheng/ssdbg/config"
	"github.com/mudesheng/ssdbg/constructdbg"
	"github.com/mudesheng/ssdbg/findpath"
	"github.com/mudesheng/ssdbg/kmer"
	"github.com/mudesheng/ssdbg/preprocess"
)

var ErrNoReads = errors.New("no reads to assemble")

const (
	StageBeforeSmfy = "beforeSmfy"
	StageAfterSmfy  = "afterSmfy"
)

// GraphHook is called with the DBG before and after simplification
type GraphHook func(stage string, g *constructdbg.DBG) error

type Result struct {
	Config    config.Config // resolved parameters of the run
	Corrected bool
	Correct   preprocess.CorrectStat
	KmerStat  kmer.Stat
	Hist      kmer.Histogram
	Smfy      constructdbg.SmfyStat
	Traverse  findpath.TraverseStat
	Contigs   []findpath.Contig
	Stat      findpath.AsmStat
}

func Run(reads [][]byte, cfg config.Config) (*Result, error) {
	return RunHook(reads, cfg, nil)
}

// RunHook assemble reads with cfg. Configuration errors are reported before any read is
// processed; an empty result is not an error.
func RunHook(reads [][]byte, cfg config.Config, hook GraphHook) (*Result, error) {
	cfg = cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(reads) == 0 {
		return nil, ErrNoReads
	}
	maxLen := 0
	for _, r := range reads {
		if len(r) > maxLen {
			maxLen = len(r)
		}
	}
	if cfg.Kmer >= maxLen {
		return nil, &config.ParamError{Param: "kmer_length", Value: cfg.Kmer, Reason: fmt.Sprintf("must be < longest read length %d", maxLen)}
	}

	res := &Result{Config: cfg}
	if cfg.Correct && cfg.MaxCorrectRounds > 0 {
		reads, res.Correct = preprocess.Correct(reads, preprocess.OptionsFromConfig(cfg))
		res.Corrected = true
	}

	var t kmer.Table
	t, res.KmerStat = kmer.Count(reads, cfg.Kmer)
	res.Hist = t.Histogram()
	log.Printf("[RunHook] reads: %d skipped: %d kmers: %d distinct: %d invalid windows: %d\n", res.KmerStat.Reads, res.KmerStat.SkippedReads, res.KmerStat.Kmers, len(t), res.KmerStat.InvalidKmers)

	g, err := constructdbg.Build(t, cfg.Kmer, cfg.MinKmerCount)
	if err != nil {
		return nil, err
	}
	if hook != nil {
		if err := hook(StageBeforeSmfy, g); err != nil {
			return nil, fmt.Errorf("[RunHook] %s: %w", StageBeforeSmfy, err)
		}
	}
	res.Smfy, err = constructdbg.SmfyDBG(g, constructdbg.SmfyOptFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	if hook != nil {
		if err := hook(StageAfterSmfy, g); err != nil {
			return nil, fmt.Errorf("[RunHook] %s: %w", StageAfterSmfy, err)
		}
	}

	res.Contigs, res.Traverse = findpath.ExtractContigs(g, cfg.MinContigLen)
	res.Stat = findpath.Stat(res.Contigs)
	log.Printf("[RunHook] contigs: %d total length: %d N50: %d\n", res.Stat.Count, res.Stat.TotalLen, res.Stat.N50)
	return res, nil
}
