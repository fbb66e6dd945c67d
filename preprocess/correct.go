package preprocess

import (
	"log"

	"github.com/mudesheng/ssdbg/kmer"
	"github.com/mudesheng/ssdbg/utils"
)

type RoundStat struct {
	Round        int
	Threshold    int
	Distinct     int // distinct kmers indexed at the start of the round
	ChangedReads int
	ChangedBases int
}

type CorrectStat struct {
	ErrorRate        float64
	Kmer             int // kmer length used for voting
	RareFraction     float64
	EstimatedRounds  int
	Rounds           int // rounds actually run
	InvalidPositions int // non A/C/G/T positions left untouched
	RoundStats       []RoundStat
}

// ChangedBases total substitutions over all rounds
func (cs CorrectStat) ChangedBases() (n int) {
	for _, r := range cs.RoundStats {
		n += r.ChangedBases
	}
	return
}

func trustedWindows(seq []byte, pos, k, threshold int, valid []bool, t kmer.Table) (trusted, n int) {
	s := utils.MaxInt(0, pos-k+1)
	e := utils.MinInt(pos, len(seq)-k)
	for ; s <= e; s++ {
		if !valid[s] {
			continue
		}
		n++
		if t.Get(seq[s:s+k]) >= threshold {
			trusted++
		}
	}
	return
}

// CorrectRead vote substitutions position by position and return the corrected copy of read,
// the number of changed bases and the number of skipped non A/C/G/T positions.
// A position is only considered when most of its covering kmers are untrusted; the best
// alternative base must be unique, strictly beat the original and be supported by a
// majority of the covering kmers, otherwise the original base is kept.
func CorrectRead(read []byte, t kmer.Table, k, threshold int) (seq []byte, changed, skipped int) {
	seq = make([]byte, len(read))
	copy(seq, read)
	if k < 1 || len(seq) < k {
		return
	}
	// valid[s] is true if window seq[s:s+k] only contains A/C/G/T
	valid := make([]bool, len(seq)-k+1)
	lastBad := -1
	for i := 0; i < len(seq); i++ {
		if !utils.IsBase(seq[i]) {
			lastBad = i
		}
		if s := i - k + 1; s >= 0 {
			valid[s] = lastBad < s
		}
	}

	for p := 0; p < len(seq); p++ {
		orig := seq[p]
		if !utils.IsBase(orig) {
			skipped++
			continue
		}
		origTrusted, n := trustedWindows(seq, p, k, threshold, valid, t)
		if n == 0 || (n-origTrusted)*2 <= n {
			continue
		}
		best, bestBase, unique := -1, orig, false
		for _, b := range utils.BntBase {
			if b == orig {
				continue
			}
			seq[p] = b
			tr, _ := trustedWindows(seq, p, k, threshold, valid, t)
			if tr > best {
				best, bestBase, unique = tr, b, true
			} else if tr == best {
				unique = false
			}
		}
		seq[p] = orig
		if unique && best > origTrusted && best*2 > n {
			seq[p] = bestBase
			changed++
		}
	}
	return
}

// Correct run rounds of kmer indexing, trust threshold and voting until a round changes
// no read or the estimated number of rounds is reached. reads are not modified.
func Correct(reads [][]byte, opt Options) ([][]byte, CorrectStat) {
	var cs CorrectStat
	cur := utils.CopyReads(reads)
	cs.ErrorRate, cs.RareFraction = EstimateErrorRate(cur, opt)
	cs.EstimatedRounds = RoundsForErrorRate(cs.ErrorRate, opt.MaxRounds)
	cs.Kmer = opt.Kmer
	if cs.Kmer == 0 {
		cs.Kmer = KmerForErrorRate(cs.ErrorRate, opt.MaxKmer)
	}
	log.Printf("[Correct] estimated error rate: %.4f rare fraction: %.4f rounds: %d kmer: %d\n", cs.ErrorRate, cs.RareFraction, cs.EstimatedRounds, cs.Kmer)

	for r := 0; r < cs.EstimatedRounds; r++ {
		t, _ := kmer.Count(cur, cs.Kmer)
		th := opt.TrustThreshold
		if th <= 0 {
			th = TrustThreshold(t.Histogram())
		}
		rs := RoundStat{Round: r + 1, Threshold: th, Distinct: len(t)}
		for i, rd := range cur {
			seq, changed, skipped := CorrectRead(rd, t, cs.Kmer, th)
			if r == 0 {
				cs.InvalidPositions += skipped
			}
			if changed > 0 {
				cur[i] = seq
				rs.ChangedReads++
				rs.ChangedBases += changed
			}
		}
		cs.Rounds++
		cs.RoundStats = append(cs.RoundStats, rs)
		log.Printf("[Correct] round %d threshold: %d changed reads: %d bases: %d\n", rs.Round, th, rs.ChangedReads, rs.ChangedBases)
		if rs.ChangedReads == 0 {
			break
		}
	}
	return cur, cs
}
