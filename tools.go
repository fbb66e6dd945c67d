package main

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/jwaldrip/odin/cli"
	"github.com/mudesheng/ssdbg/fastaio"
	"github.com/mudesheng/ssdbg/findpath"
	"github.com/mudesheng/ssdbg/utils"
)

type optionsStat struct {
	Input  string
	MinLen int
}

func checkArgsStat(c cli.Command) (opt optionsStat, suc bool) {
	opt.Input = c.Flag("input").String()
	if opt.Input == "" {
		log.Fatalf("[checkArgsStat] args 'input' not set\n")
	}
	opt.MinLen = c.Flag("MinLen").Get().(int)
	if opt.MinLen < 0 {
		log.Fatalf("[checkArgsStat] the argument 'MinLen': %d must >= 0\n", opt.MinLen)
	}
	return opt, true
}

func ContigStat(c cli.Command) {
	opt, suc := checkArgsStat(c)
	if !suc {
		log.Fatalf("[ContigStat] check Arguments error, opt: %v\n", opt)
	}
	fp, err := fastaio.OpenReader(opt.Input)
	if err != nil {
		log.Fatalf("[ContigStat] open file: %v err: %v\n", opt.Input, err)
	}
	defer fp.Close()
	seqs, _, err := fastaio.ReadSeqs(fp)
	if err != nil {
		log.Fatalf("[ContigStat] read file: %v err: %v\n", opt.Input, err)
	}
	lens := make([]int, 0, len(seqs))
	for _, s := range seqs {
		if len(s) >= opt.MinLen {
			lens = append(lens, len(s))
		}
	}
	st := findpath.StatLens(lens)
	fmt.Printf("File: %s\n", opt.Input)
	fmt.Printf("Contigs: %d\n", st.Count)
	fmt.Printf("Total length: %d\n", st.TotalLen)
	fmt.Printf("N50: %d\n", st.N50)
	fmt.Printf("Longest: %d\n", st.Longest)
	fmt.Printf("Shortest: %d\n", st.Shortest)
	fmt.Printf("Mean length: %.1f\n", st.MeanLen)
}

type optionsSimulateNGS struct {
	Input   string
	Output  string
	ReadLen int
	Step    int
	ErrRate float64
	Seed    int64
}

func checkArgsSimulateNGS(c cli.Command) (opt optionsSimulateNGS, suc bool) {
	opt.Input = c.Flag("input").String()
	opt.Output = c.Flag("output").String()
	if opt.Input == "" || opt.Output == "" {
		log.Fatalf("[checkArgsSimulateNGS] args 'input' and 'output' must be set\n")
	}
	opt.ReadLen = c.Flag("ReadLen").Get().(int)
	opt.Step = c.Flag("Step").Get().(int)
	if opt.ReadLen < 1 || opt.Step < 1 {
		log.Fatalf("[checkArgsSimulateNGS] the argument 'ReadLen': %d and 'Step': %d must >= 1\n", opt.ReadLen, opt.Step)
	}
	opt.ErrRate = c.Flag("ErrRate").Get().(float64)
	if opt.ErrRate < 0 || opt.ErrRate >= 1 {
		log.Fatalf("[checkArgsSimulateNGS] the argument 'ErrRate': %v must [0~1)\n", opt.ErrRate)
	}
	opt.Seed = c.Flag("Seed").Get().(int64)
	return opt, true
}

// SimulateReads tile every sequence of genome with reads of readLen starting every step
// bases, each base substituted with probability errRate
func SimulateReads(genome [][]byte, readLen, step int, errRate float64, rnd *rand.Rand) (reads [][]byte) {
	for _, g := range genome {
		for s := 0; s+readLen <= len(g); s += step {
			r := make([]byte, readLen)
			copy(r, g[s:s+readLen])
			for i := range r {
				if errRate > 0 && rnd.Float64() < errRate {
					r[i] = utils.BntBase[(int(utils.BntVal[r[i]])+1+rnd.Intn(utils.BaseTypeNum-1))%utils.BaseTypeNum]
				}
			}
			reads = append(reads, r)
		}
	}
	return reads
}

func SimulateNGS(c cli.Command) {
	opt, suc := checkArgsSimulateNGS(c)
	if !suc {
		log.Fatalf("[SimulateNGS] check Arguments error, opt: %v\n", opt)
	}
	genome := loadReads(opt.Input)
	reads := SimulateReads(genome, opt.ReadLen, opt.Step, opt.ErrRate, rand.New(rand.NewSource(opt.Seed)))
	fp, err := fastaio.CreateWriter(opt.Output)
	if err != nil {
		log.Fatalf("[SimulateNGS] create file: %v err: %v\n", opt.Output, err)
	}
	if err := fastaio.WriteReads(fp, reads, "sim"); err != nil {
		log.Fatalf("[SimulateNGS] write file: %v err: %v\n", opt.Output, err)
	}
	if err := fp.Close(); err != nil {
		log.Fatalf("[SimulateNGS] close file: %v err: %v\n", opt.Output, err)
	}
	log.Printf("[SimulateNGS] simulate %d reads to file: %v\n", len(reads), opt.Output)
}
