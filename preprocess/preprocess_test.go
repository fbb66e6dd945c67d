package preprocess

import (
	"math/rand"
	"testing"

	"github.com/mudesheng/ssdbg/config"
	"github.com/mudesheng/ssdbg/kmer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randSeq(rnd *rand.Rand, n int) []byte {
	seq := make([]byte, n)
	for i := range seq {
		seq[i] = "ACGT"[rnd.Intn(4)]
	}
	return seq
}

// tile reads of length rl every step bases over genome
func tile(genome []byte, rl, step int) (reads [][]byte) {
	for s := 0; s+rl <= len(genome); s += step {
		reads = append(reads, append([]byte(nil), genome[s:s+rl]...))
	}
	return
}

func substitute(b byte) byte {
	if b == 'A' {
		return 'C'
	}
	return 'A'
}

func TestRoundsForErrorRate(t *testing.T) {
	cases := []struct {
		rate float64
		max  int
		want int
	}{
		{0, 3, 1},
		{0.019, 3, 1},
		{0.02, 3, 2},
		{0.039, 3, 2},
		{0.04, 3, 3},
		{0.2, 3, 3},
		{0.2, 10, 3},
		{0.2, 2, 2},
		{0.01, 0, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, RoundsForErrorRate(c.rate, c.max), "rate %v max %d", c.rate, c.max)
	}
}

func TestKmerForErrorRate(t *testing.T) {
	cases := []struct {
		rate float64
		maxK int
		want int
	}{
		{0, 0, 21},
		{0.019, 31, 21},
		{0.02, 31, 17},
		{0.039, 31, 17},
		{0.04, 31, 15},
		{0.2, 31, 15},
		{0.01, 19, 19},
		{0.05, 13, 13},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, KmerForErrorRate(c.rate, c.maxK), "rate %v maxK %d", c.rate, c.maxK)
	}
}

func TestTrustThreshold(t *testing.T) {
	assert.Equal(t, 2, TrustThreshold(kmer.Histogram{}))
	assert.Equal(t, 2, TrustThreshold(kmer.Histogram{1: 100}))
	h := kmer.Histogram{1: 50, 2: 10, 3: 4, 4: 8, 5: 12, 6: 30, 7: 20}
	assert.Equal(t, 3, TrustThreshold(h))
	// counts above the mode are not candidates
	h = kmer.Histogram{1: 50, 2: 10, 3: 20, 4: 1}
	assert.Equal(t, 2, TrustThreshold(h))
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default(21)
	opt := OptionsFromConfig(cfg)
	assert.Equal(t, 0, opt.Kmer)
	assert.Equal(t, 21, opt.MaxKmer)
	assert.Equal(t, 17, opt.EstimateK)
	assert.Equal(t, 2, opt.RareCount)
	assert.Equal(t, 3, opt.MaxRounds)
	cfg.CorrectKmer = 15
	assert.Equal(t, 15, OptionsFromConfig(cfg).Kmer)
}

func TestEstimateErrorRate(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	g := randSeq(rnd, 60)
	reads := [][]byte{g, g, g}
	opt := Options{EstimateK: 17, RareCount: 2}
	rate, frac := EstimateErrorRate(reads, opt)
	assert.Equal(t, 0.0, rate)
	assert.Equal(t, 0.0, frac)

	reads = append(reads, randSeq(rnd, 60))
	rate, frac = EstimateErrorRate(reads, opt)
	assert.InDelta(t, 0.5, frac, 0.01)
	assert.InDelta(t, 0.5/17, rate, 0.001)
	assert.LessOrEqual(t, rate, MaxErrorRate)

	rate, _ = EstimateErrorRate([][]byte{[]byte("ACGT")}, opt)
	assert.Equal(t, 0.0, rate)
}

func TestCorrectReadFixesSubstitution(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	g := randSeq(rnd, 200)
	reads := tile(g, 50, 5)
	bad := append([]byte(nil), g[100:150]...)
	bad[45] = substitute(bad[45])
	reads = append(reads, bad)
	tb, _ := kmer.Count(reads, 21)

	seq, changed, skipped := CorrectRead(bad, tb, 21, 2)
	assert.Equal(t, 1, changed)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, string(g[100:150]), string(seq))
	assert.NotEqual(t, string(g[100:150]), string(bad), "input must not change")

	seq, changed, _ = CorrectRead(reads[3], tb, 21, 2)
	assert.Equal(t, 0, changed)
	assert.Equal(t, string(reads[3]), string(seq))
}

func TestCorrectReadTieKeepsOriginal(t *testing.T) {
	tb := kmer.Table{"CT": 5, "GT": 5}
	seq, changed, _ := CorrectRead([]byte("AT"), tb, 2, 2)
	assert.Equal(t, 0, changed)
	assert.Equal(t, "AT", string(seq))

	tb = kmer.Table{"CT": 5}
	seq, changed, _ = CorrectRead([]byte("AT"), tb, 2, 2)
	assert.Equal(t, 1, changed)
	assert.Equal(t, "CT", string(seq))
}

func TestCorrectReadSkipsInvalid(t *testing.T) {
	tb := kmer.Table{"ACG": 5, "CGT": 5}
	seq, changed, skipped := CorrectRead([]byte("ACGTN"), tb, 3, 2)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 0, changed)
	assert.Equal(t, "ACGTN", string(seq))

	seq, changed, skipped = CorrectRead([]byte("AC"), tb, 3, 2)
	assert.Equal(t, 0, changed+skipped)
	assert.Equal(t, "AC", string(seq))
}

func TestCorrect(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	g := randSeq(rnd, 200)
	reads := tile(g, 50, 5)
	bad := append([]byte(nil), g[100:150]...)
	bad[45] = substitute(bad[45])
	reads = append(reads, bad)
	orig := string(bad)

	opt := OptionsFromConfig(config.Default(21))
	out, cs := Correct(reads, opt)
	require.Len(t, out, len(reads))
	assert.Equal(t, string(g[100:150]), string(out[len(out)-1]))
	assert.Equal(t, orig, string(reads[len(reads)-1]))
	assert.GreaterOrEqual(t, cs.Rounds, 1)
	assert.LessOrEqual(t, cs.Rounds, cs.EstimatedRounds)
	assert.Equal(t, 1, cs.ChangedBases())
	assert.Equal(t, 2, cs.RoundStats[0].Threshold)
	assert.Equal(t, 21, cs.Kmer)
	for i := range reads[:len(reads)-1] {
		assert.Equal(t, string(reads[i]), string(out[i]))
	}

	opt.MaxRounds = 0
	out, cs = Correct(reads, opt)
	assert.Equal(t, 0, cs.Rounds)
	assert.Equal(t, orig, string(out[len(out)-1]))
}

// noisyReads the reads of TestCorrect plus unrelated random reads, which push the
// estimated error rate above 4%
func noisyReads() (genome []byte, reads [][]byte) {
	rnd := rand.New(rand.NewSource(42))
	genome = randSeq(rnd, 200)
	reads = tile(genome, 50, 5)
	bad := append([]byte(nil), genome[100:150]...)
	bad[45] = substitute(bad[45])
	reads = append(reads, bad)
	for i := 0; i < 30; i++ {
		reads = append(reads, randSeq(rnd, 50))
	}
	return genome, reads
}

func TestCorrectHighErrorRateUsesShortKmer(t *testing.T) {
	_, reads := noisyReads()
	_, cs := Correct(reads, OptionsFromConfig(config.Default(21)))
	assert.GreaterOrEqual(t, cs.ErrorRate, 0.04)
	assert.Equal(t, 15, cs.Kmer)

	_, cs = Correct(reads, OptionsFromConfig(config.Default(13)))
	assert.Equal(t, 13, cs.Kmer)

	cfg := config.Default(21)
	cfg.CorrectKmer = 19
	_, cs = Correct(reads, OptionsFromConfig(cfg))
	assert.Equal(t, 19, cs.Kmer)
}

func TestCorrectStopsAtFixedPoint(t *testing.T) {
	genome, reads := noisyReads()
	bad := len(tile(genome, 50, 5))
	out, cs := Correct(reads, OptionsFromConfig(config.Default(21)))
	require.GreaterOrEqual(t, cs.EstimatedRounds, 2)
	assert.Less(t, cs.Rounds, cs.EstimatedRounds)
	require.Len(t, cs.RoundStats, cs.Rounds)
	assert.GreaterOrEqual(t, cs.RoundStats[0].ChangedReads, 1)
	assert.Equal(t, 0, cs.RoundStats[cs.Rounds-1].ChangedReads)
	assert.Equal(t, string(genome[100:150]), string(out[bad]))
}

func TestCorrectStopsAtRoundBound(t *testing.T) {
	genome, reads := noisyReads()
	bad := len(tile(genome, 50, 5))
	opt := OptionsFromConfig(config.Default(21))
	opt.MaxRounds = 1
	out, cs := Correct(reads, opt)
	assert.Equal(t, 1, cs.EstimatedRounds)
	assert.Equal(t, 1, cs.Rounds)
	// the last round still changed reads, only the bound stopped the loop
	assert.GreaterOrEqual(t, cs.RoundStats[0].ChangedReads, 1)
	assert.Equal(t, string(genome[100:150]), string(out[bad]))
}
