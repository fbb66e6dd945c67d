// Package report writes the output files of an assembly run.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mudesheng/ssdbg/asm"
	"github.com/mudesheng/ssdbg/config"
	"github.com/mudesheng/ssdbg/constructdbg"
	"github.com/mudesheng/ssdbg/fastaio"
	"github.com/mudesheng/ssdbg/kmer"
)

// Files output file names of a run
type Files struct {
	Prefix string
}

func (f Files) Contigs() string         { return f.Prefix + ".contigs.fa" }
func (f Files) Params() string          { return f.Prefix + ".params.yaml" }
func (f Files) Hist() string            { return f.Prefix + ".kmer.hist.tsv" }
func (f Files) DBGStat() string         { return f.Prefix + ".DBG.stat" }
func (f Files) SmfyDBGStat() string     { return f.Prefix + ".smfy.DBG.stat" }
func (f Files) Report() string          { return f.Prefix + ".report.txt" }
func (f Files) Dot(stage string) string { return f.Prefix + "." + stage + ".dot" }
func (f Files) Corrected() string       { return f.Prefix + ".corrected.fa" }
func (f Files) SweepDB() string         { return f.Prefix + ".sweep.db" }

func WriteParams(fn string, cfg config.Config) error {
	fp, err := os.Create(fn)
	if err != nil {
		return fmt.Errorf("[WriteParams] create file: %s err: %w", fn, err)
	}
	if err := cfg.WriteYAML(fp); err != nil {
		fp.Close()
		return fmt.Errorf("[WriteParams] write file: %s err: %w", fn, err)
	}
	return fp.Close()
}

func WriteHist(fn string, h kmer.Histogram) error {
	fp, err := os.Create(fn)
	if err != nil {
		return fmt.Errorf("[WriteHist] create file: %s err: %w", fn, err)
	}
	if err := kmer.WriteHistogram(fp, h); err != nil {
		fp.Close()
		return fmt.Errorf("[WriteHist] write file: %s err: %w", fn, err)
	}
	return fp.Close()
}

// WriteReport human readable summary of the run
func WriteReport(w io.Writer, input string, res *asm.Result) error {
	bw := bufio.NewWriter(w)
	cfg := res.Config
	fmt.Fprintf(bw, "Genome assembly report\n")
	fmt.Fprintf(bw, "Input: %s\n", input)
	fmt.Fprintf(bw, "k: %d\n", cfg.Kmer)
	fmt.Fprintf(bw, "min_kmer_count: %d\n", cfg.MinKmerCount)
	fmt.Fprintf(bw, "min_contig_len: %d\n", cfg.MinContigLen)
	fmt.Fprintf(bw, "tip_max_len: %d\n", cfg.TipMaxLen)
	fmt.Fprintf(bw, "pop_bubbles: %v\n", cfg.PopBubbles)
	if cfg.PopBubbles {
		fmt.Fprintf(bw, "max_bubble_len: %d\n", cfg.MaxBubbleLen)
	}
	fmt.Fprintf(bw, "\n")

	fmt.Fprintf(bw, "Reads: %d\n", res.KmerStat.Reads)
	fmt.Fprintf(bw, "Reads shorter than k: %d\n", res.KmerStat.SkippedReads)
	fmt.Fprintf(bw, "Kmer windows with invalid bases: %d\n", res.KmerStat.InvalidKmers)
	if res.Corrected {
		cs := res.Correct
		fmt.Fprintf(bw, "Estimated error rate: %.4f\n", cs.ErrorRate)
		fmt.Fprintf(bw, "Correction k: %d\n", cs.Kmer)
		fmt.Fprintf(bw, "Correction rounds: %d/%d\n", cs.Rounds, cs.EstimatedRounds)
		for _, rs := range cs.RoundStats {
			fmt.Fprintf(bw, "  round %d: threshold %d changed reads %d bases %d\n", rs.Round, rs.Threshold, rs.ChangedReads, rs.ChangedBases)
		}
		fmt.Fprintf(bw, "Invalid positions left uncorrected: %d\n", cs.InvalidPositions)
	}
	fmt.Fprintf(bw, "Distinct k-mers: %d\n", res.Hist.Distinct())
	fmt.Fprintf(bw, "\n")

	sm := res.Smfy
	fmt.Fprintf(bw, "Graph before cleaning:\n  nodes: %d\n  edges: %d\n", sm.Before.Nodes, sm.Before.Edges)
	if sm.Cutoff > 0 {
		fmt.Fprintf(bw, "Coverage cutoff: %d removed edges: %d\n", sm.Cutoff, sm.CutoffEdges)
	}
	fmt.Fprintf(bw, "Removed islands: %d (%d edges)\n", sm.Islands, sm.IslandEdges)
	fmt.Fprintf(bw, "Removed tips: %d (%d edges)\n", sm.Tips, sm.TipEdges)
	fmt.Fprintf(bw, "Popped bubbles: %d (%d edges)\n", sm.Bubbles, sm.BubbleEdges)
	fmt.Fprintf(bw, "Graph after cleaning:\n  nodes: %d\n  edges: %d\n", sm.After.Nodes, sm.After.Edges)
	fmt.Fprintf(bw, "\n")

	st := res.Stat
	fmt.Fprintf(bw, "Contigs: %d\n", st.Count)
	fmt.Fprintf(bw, "Total length: %d\n", st.TotalLen)
	fmt.Fprintf(bw, "N50: %d\n", st.N50)
	fmt.Fprintf(bw, "Longest: %d\n", st.Longest)
	fmt.Fprintf(bw, "Shortest: %d\n", st.Shortest)
	fmt.Fprintf(bw, "Mean length: %.1f\n", st.MeanLen)
	return bw.Flush()
}

// WriteAll write contigs, fai index, params, histogram, graph stats and report of res
func WriteAll(f Files, input string, res *asm.Result) error {
	if err := fastaio.WriteContigsFile(f.Contigs(), res.Contigs); err != nil {
		return err
	}
	if err := WriteParams(f.Params(), res.Config); err != nil {
		return err
	}
	if err := WriteHist(f.Hist(), res.Hist); err != nil {
		return err
	}
	if err := constructdbg.DBGStatWriter(f.DBGStat(), res.Smfy.Before); err != nil {
		return err
	}
	if err := constructdbg.DBGStatWriter(f.SmfyDBGStat(), res.Smfy.After); err != nil {
		return err
	}
	fp, err := os.Create(f.Report())
	if err != nil {
		return fmt.Errorf("[WriteAll] create file: %s err: %w", f.Report(), err)
	}
	if err := WriteReport(fp, input, res); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}

// GraphvizHook dump the graph of every stage to <prefix>.<stage>.dot
func GraphvizHook(f Files) asm.GraphHook {
	return func(stage string, g *constructdbg.DBG) error {
		return constructdbg.GraphvizDBG(g, f.Dot(stage))
	}
}
