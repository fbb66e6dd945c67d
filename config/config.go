// Package config holds the parameters of one assembly run.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every ParamError
var ErrInvalidConfig = errors.New("invalid configuration")

// ParamError identifies the offending parameter of a configuration error
type ParamError struct {
	Param  string
	Value  interface{}
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter %s=%v: %s", e.Param, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error { return ErrInvalidConfig }

const (
	MaxCorrectRounds = 10
	MaxEstimateK     = 32
)

// Config assembly parameters, yaml keys are the ones written to params.yaml
type Config struct {
	Kmer         int `yaml:"kmer_length"`
	MinKmerCount int `yaml:"min_kmer_count"`
	MinContigLen int `yaml:"min_contig_len"`

	Correct          bool `yaml:"correct"`
	MaxCorrectRounds int  `yaml:"max_correct_rounds"`
	CorrectKmer      int  `yaml:"correct_kmer_length"`
	EstimateKmer     int  `yaml:"estimate_kmer_length"`
	RareCount        int  `yaml:"rare_count"`
	TrustThreshold   int  `yaml:"trust_threshold"`

	MinIslandWeight int `yaml:"min_island_weight"`
	MinIslandLen    int `yaml:"min_island_len"`

	TipMaxLen      int     `yaml:"tip_max_len"`
	TipWeightRatio float64 `yaml:"tip_weight_ratio"`
	MaxTipPasses   int     `yaml:"max_tip_passes"`

	PopBubbles   bool `yaml:"pop_bubbles"`
	MaxBubbleLen int  `yaml:"max_bubble_len"`

	CoverageCutoff     bool    `yaml:"coverage_cutoff"`
	CoveragePercentile float64 `yaml:"coverage_percentile"`

	MaxCleanPasses int `yaml:"max_clean_passes"`
}

// Default returns the default parameters for kmer length k
func Default(k int) Config {
	return Config{
		Kmer:               k,
		MinKmerCount:       1,
		MinContigLen:       100,
		Correct:            true,
		MaxCorrectRounds:   3,
		EstimateKmer:       17,
		RareCount:          2,
		MinIslandWeight:    5,
		TipWeightRatio:     0.5,
		MaxTipPasses:       10,
		CoveragePercentile: 0.2,
		MaxCleanPasses:     10,
	}
}

// Resolve fills the parameters whose zero value means "derive from kmer length"
func (c Config) Resolve() Config {
	if c.MinIslandLen == 0 {
		c.MinIslandLen = 2 * c.Kmer
	}
	if c.TipMaxLen == 0 {
		c.TipMaxLen = 2 * c.Kmer
	}
	if c.MaxBubbleLen == 0 {
		c.MaxBubbleLen = 2 * c.Kmer
	}
	return c
}

// Validate check parameters before any read is processed
func (c Config) Validate() error {
	if c.Kmer < 2 {
		return &ParamError{"kmer_length", c.Kmer, "must be >= 2"}
	}
	if c.MinKmerCount < 1 {
		return &ParamError{"min_kmer_count", c.MinKmerCount, "must be >= 1"}
	}
	if c.MinContigLen < 0 {
		return &ParamError{"min_contig_len", c.MinContigLen, "must be >= 0"}
	}
	if c.MaxCorrectRounds < 0 || c.MaxCorrectRounds > MaxCorrectRounds {
		return &ParamError{"max_correct_rounds", c.MaxCorrectRounds, fmt.Sprintf("must between 0~%d", MaxCorrectRounds)}
	}
	if c.CorrectKmer != 0 && c.CorrectKmer < 2 {
		return &ParamError{"correct_kmer_length", c.CorrectKmer, "must be >= 2"}
	}
	if c.Correct && (c.EstimateKmer < 2 || c.EstimateKmer > MaxEstimateK) {
		return &ParamError{"estimate_kmer_length", c.EstimateKmer, fmt.Sprintf("must between 2~%d", MaxEstimateK)}
	}
	if c.RareCount < 1 {
		return &ParamError{"rare_count", c.RareCount, "must be >= 1"}
	}
	if c.TrustThreshold < 0 {
		return &ParamError{"trust_threshold", c.TrustThreshold, "must be >= 0"}
	}
	if c.MinIslandWeight < 0 {
		return &ParamError{"min_island_weight", c.MinIslandWeight, "must be >= 0"}
	}
	if c.MinIslandLen < 0 {
		return &ParamError{"min_island_len", c.MinIslandLen, "must be >= 0"}
	}
	if c.TipMaxLen < 0 {
		return &ParamError{"tip_max_len", c.TipMaxLen, "must be >= 0"}
	}
	if c.TipWeightRatio <= 0 {
		return &ParamError{"tip_weight_ratio", c.TipWeightRatio, "must be > 0"}
	}
	if c.MaxTipPasses < 1 {
		return &ParamError{"max_tip_passes", c.MaxTipPasses, "must be >= 1"}
	}
	if c.MaxBubbleLen < 0 {
		return &ParamError{"max_bubble_len", c.MaxBubbleLen, "must be >= 0"}
	}
	if c.CoveragePercentile < 0 || c.CoveragePercentile >= 1 {
		return &ParamError{"coverage_percentile", c.CoveragePercentile, "must in [0, 1)"}
	}
	if c.MaxCleanPasses < 1 {
		return &ParamError{"max_clean_passes", c.MaxCleanPasses, "must be >= 1"}
	}
	return nil
}

// WriteYAML dump the parameters used by a run
func (c Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// Load read a params yaml file, keys missing in the file keep the defaults for kmer k
func Load(fn string, k int) (Config, error) {
	c := Default(k)
	fp, err := os.Open(fn)
	if err != nil {
		return c, err
	}
	defer fp.Close()
	dec := yaml.NewDecoder(fp)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return c, fmt.Errorf("[Load] parse %s: %w", fn, err)
	}
	return c, nil
}
