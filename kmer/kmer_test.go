package kmer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountOverlapping(t *testing.T) {
	reads := [][]byte{[]byte("AAAAA"), []byte("ACGTAC")}
	tb, st := Count(reads, 3)
	assert.Equal(t, 3, tb["AAA"])
	for _, km := range []string{"ACG", "CGT", "GTA", "TAC"} {
		assert.Equal(t, 1, tb[km], km)
	}
	assert.Len(t, tb, 5)
	assert.Equal(t, Stat{Reads: 2, Kmers: 7}, st)
}

func TestCountAcrossReads(t *testing.T) {
	reads := [][]byte{[]byte("ACGTT"), []byte("TACGT")}
	tb, _ := Count(reads, 4)
	assert.Equal(t, 2, tb["ACGT"])
	assert.Equal(t, 1, tb["CGTT"])
	assert.Equal(t, 1, tb["TACG"])
}

func TestShortReadSkipped(t *testing.T) {
	reads := [][]byte{[]byte("ACG"), []byte(""), []byte("ACGTA")}
	tb, st := Count(reads, 4)
	assert.Equal(t, 2, st.SkippedReads)
	assert.Equal(t, 3, st.Reads)
	assert.Equal(t, 2, st.Kmers)
	assert.Equal(t, Table{"ACGT": 1, "CGTA": 1}, tb)
}

func TestInvalidBaseWindows(t *testing.T) {
	// every window overlapping the N is dropped
	tb, st := Count([][]byte{[]byte("ACGNACGT")}, 3)
	assert.Equal(t, 3, st.InvalidKmers)
	assert.Equal(t, 3, st.Kmers)
	assert.Equal(t, Table{"ACG": 2, "CGT": 1}, tb)
}

func TestCountDoesNotMutate(t *testing.T) {
	r := []byte("GATTACA")
	Count([][]byte{r}, 2)
	assert.Equal(t, "GATTACA", string(r))
}

func TestHistogram(t *testing.T) {
	tb := Table{"AAA": 1, "CCC": 1, "GGG": 3, "TTT": 7}
	h := tb.Histogram()
	assert.Equal(t, Histogram{1: 2, 3: 1, 7: 1}, h)
	assert.Equal(t, []int{1, 3, 7}, h.Counts())
	assert.Equal(t, 4, h.Distinct())
}

func TestGetAndSorted(t *testing.T) {
	tb := Table{"GGG": 3, "AAA": 1}
	assert.Equal(t, 3, tb.Get([]byte("GGG")))
	assert.Equal(t, 0, tb.Get([]byte("CCC")))
	assert.Equal(t, []string{"AAA", "GGG"}, tb.SortedKmers())
}

func TestWriteHistogram(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistogram(&buf, Histogram{11: 1, 1: 20340, 2: 1653}))
	assert.Equal(t, "count\tn_kmers\n1\t20340\n2\t1653\n11\t1\n", buf.String())
}

func Benchmark_Count(b *testing.B) {
	read := bytes.Repeat([]byte("ACGTTGCAAGGCTTAC"), 5)
	reads := make([][]byte, 100)
	for i := range reads {
		reads[i] = read
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Count(reads, 21)
	}
}
