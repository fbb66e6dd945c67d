// Package preprocess corrects sequencing errors of the reads before graph construction.
package preprocess

import (
	"math"

	"github.com/mudesheng/ssdbg/config"
	"github.com/mudesheng/ssdbg/cuckoofilter"
	"github.com/mudesheng/ssdbg/kmer"
	"github.com/mudesheng/ssdbg/utils"
	"github.com/shenwei356/kmers"
)

// MaxErrorRate upper bound of the estimated per base error rate
const MaxErrorRate = 0.2

type Options struct {
	Kmer           int // kmer length of trust voting, 0 means chosen by KmerForErrorRate
	MaxKmer        int // upper bound of the chosen kmer length
	EstimateK      int // kmer length of error rate estimation
	RareCount      int // kmers seen less than RareCount times are rare
	MaxRounds      int
	TrustThreshold int // 0 means derived from the kmer histogram each round
}

// OptionsFromConfig correction options of an assembly configuration
func OptionsFromConfig(cfg config.Config) Options {
	cfg = cfg.Resolve()
	return Options{
		Kmer:           cfg.CorrectKmer,
		MaxKmer:        cfg.Kmer,
		EstimateK:      cfg.EstimateKmer,
		RareCount:      cfg.RareCount,
		MaxRounds:      cfg.MaxCorrectRounds,
		TrustThreshold: cfg.TrustThreshold,
	}
}

// EstimateErrorRate count the EstimateK-mers of reads in a cuckoo filter, return
// the per base error rate and the fraction of distinct kmers that are rare
func EstimateErrorRate(reads [][]byte, opt Options) (rate, fraction float64) {
	ek := opt.EstimateK
	if ek < 1 || ek > 32 {
		return 0, 0
	}
	var n uint64
	for _, r := range reads {
		if len(r) >= ek {
			n += uint64(len(r) - ek + 1)
		}
	}
	if n == 0 {
		return 0, 0
	}
	cf := cuckoofilter.MakeCuckooFilter(n*2, ek)
	for _, r := range reads {
		if len(r) < ek {
			continue
		}
		lastBad := -1
		for i := 0; i < len(r); i++ {
			if !utils.IsBase(r[i]) {
				lastBad = i
			}
			start := i - ek + 1
			if start < 0 || lastBad >= start {
				continue
			}
			code, err := kmers.Encode(r[start : i+1])
			if err != nil {
				continue
			}
			cf.InsertCode(code)
		}
	}
	st := cf.GetStat()
	if st.Items == 0 {
		return 0, 0
	}
	rare := 0
	for c := 1; c < opt.RareCount && c <= cuckoofilter.MaxC; c++ {
		rare += st.Hist[c]
	}
	fraction = float64(rare) / float64(st.Items)
	rate = math.Min(fraction/float64(ek), MaxErrorRate)
	return rate, fraction
}

// RoundsForErrorRate number of correction rounds for an estimated error rate,
// never more than maxRounds
func RoundsForErrorRate(rate float64, maxRounds int) int {
	var r int
	switch {
	case rate < 0.02:
		r = 1
	case rate < 0.04:
		r = 2
	default:
		r = 3
	}
	return utils.MinInt(r, maxRounds)
}

// KmerForErrorRate correction kmer length for an estimated error rate, never more than maxK
// when maxK > 0
func KmerForErrorRate(rate float64, maxK int) int {
	var k int
	switch {
	case rate < 0.02:
		k = 21
	case rate < 0.04:
		k = 17
	default:
		k = 15
	}
	if maxK > 0 {
		k = utils.MinInt(k, maxK)
	}
	return k
}

// TrustThreshold the count of the valley between the error peak and the coverage peak:
// the smallest count in [2, mode] with the fewest distinct kmers, mode taken over counts >= 2
func TrustThreshold(h kmer.Histogram) int {
	mode := 0
	for _, c := range h.Counts() {
		if c < 2 {
			continue
		}
		if mode == 0 || h[c] > h[mode] {
			mode = c
		}
	}
	if mode == 0 {
		return 2
	}
	th := 2
	for c := 3; c <= mode; c++ {
		if h[c] < h[th] {
			th = c
		}
	}
	return th
}
