// Package optimize sweeps a grid of assembly parameters and keeps the best scoring run.
package optimize

import (
	"fmt"
	"io"
	"os"

	"github.com/mudesheng/ssdbg/config"
	"github.com/mudesheng/ssdbg/findpath"
	"gopkg.in/yaml.v3"
)

// Grid parameter values to sweep, keys are the params.yaml keys.
// An empty list keeps the value of the base configuration.
type Grid struct {
	Kmer            []int  `yaml:"kmer_length"`
	MinKmerCount    []int  `yaml:"min_kmer_count"`
	MinIslandWeight []int  `yaml:"min_island_weight"`
	TipMaxLen       []int  `yaml:"tip_max_len"`
	PopBubbles      []bool `yaml:"pop_bubbles"`
	MaxBubbleLen    []int  `yaml:"max_bubble_len"` // only swept when pop_bubbles is true
	MinContigLen    []int  `yaml:"min_contig_len"`
}

func DefaultGrid() Grid {
	return Grid{
		Kmer:         []int{17, 19, 21},
		MinKmerCount: []int{1, 2},
		TipMaxLen:    []int{0, 50},
		PopBubbles:   []bool{true, false},
		MaxBubbleLen: []int{0, 10},
	}
}

func LoadGrid(fn string) (Grid, error) {
	var g Grid
	fp, err := os.Open(fn)
	if err != nil {
		return g, err
	}
	defer fp.Close()
	dec := yaml.NewDecoder(fp)
	dec.KnownFields(true)
	if err := dec.Decode(&g); err != nil && err != io.EOF {
		return g, fmt.Errorf("[LoadGrid] parse %s: %w", fn, err)
	}
	return g, nil
}

func orInt(vals []int, def int) []int {
	if len(vals) == 0 {
		return []int{def}
	}
	return vals
}

// Configs the cartesian product of the grid over base
func (g Grid) Configs(base config.Config) (cfgs []config.Config) {
	pops := g.PopBubbles
	if len(pops) == 0 {
		pops = []bool{base.PopBubbles}
	}
	for _, k := range orInt(g.Kmer, base.Kmer) {
		for _, mc := range orInt(g.MinKmerCount, base.MinKmerCount) {
			for _, iw := range orInt(g.MinIslandWeight, base.MinIslandWeight) {
				for _, tl := range orInt(g.TipMaxLen, base.TipMaxLen) {
					for _, pop := range pops {
						bls := []int{base.MaxBubbleLen}
						if pop {
							bls = orInt(g.MaxBubbleLen, base.MaxBubbleLen)
						}
						for _, bl := range bls {
							for _, cl := range orInt(g.MinContigLen, base.MinContigLen) {
								cfg := base
								cfg.Kmer = k
								cfg.MinKmerCount = mc
								cfg.MinIslandWeight = iw
								cfg.TipMaxLen = tl
								cfg.PopBubbles = pop
								cfg.MaxBubbleLen = bl
								cfg.MinContigLen = cl
								cfgs = append(cfgs, cfg)
							}
						}
					}
				}
			}
		}
	}
	return
}

// Score 0.6 * total length + 0.4 * N50, 0 without contigs
func Score(st findpath.AsmStat) float64 {
	if st.Count == 0 {
		return 0
	}
	return 0.6*float64(st.TotalLen) + 0.4*float64(st.N50)
}
