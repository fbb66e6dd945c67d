package findpath

import (
	"math/rand"
	"testing"

	"github.com/mudesheng/ssdbg/constructdbg"
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

func buildDBG(t *testing.T, reads [][]byte, k int) *constructdbg.DBG {
	tb, _ := kmer.Count(reads, k)
	g, err := constructdbg.Build(tb, k, 1)
	require.NoError(t, err)
	return g
}

func TestStatLens(t *testing.T) {
	st := StatLens([]int{100, 100, 300, 500})
	assert.Equal(t, 500, st.N50)
	assert.Equal(t, 1000, st.TotalLen)
	assert.Equal(t, 4, st.Count)
	assert.Equal(t, 500, st.Longest)
	assert.Equal(t, 100, st.Shortest)
	assert.Equal(t, 250.0, st.MeanLen)

	assert.Equal(t, 5, StatLens([]int{2, 3, 4, 5, 6}).N50)
	assert.Equal(t, 7, StatLens([]int{7}).N50)
	assert.Equal(t, AsmStat{}, StatLens(nil))
}

func TestStatContigs(t *testing.T) {
	cs := []Contig{{1, []byte("ACGTA")}, {2, []byte("ACG")}}
	st := Stat(cs)
	assert.Equal(t, 2, st.Count)
	assert.Equal(t, 8, st.TotalLen)
	assert.Equal(t, 5, st.N50)
}

func TestTraverseLinear(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	genome := randSeq(rnd, 50)
	g := buildDBG(t, [][]byte{genome}, 11)
	walks := Traverse(g)
	require.Len(t, walks, 1)
	assert.False(t, walks[0].Cycle)
	assert.Equal(t, string(genome), string(WalkSeq(g, walks[0])))
}

func TestTraverseCycle(t *testing.T) {
	g := buildDBG(t, [][]byte{[]byte("ACGTAC")}, 3)
	walks := Traverse(g)
	require.Len(t, walks, 1)
	assert.True(t, walks[0].Cycle)
	assert.Len(t, walks[0].Edges, 4)
	seq := WalkSeq(g, walks[0])
	assert.Len(t, seq, 6)
	assert.Equal(t, string(seq[:2]), string(seq[4:]))
}

func TestTraverseEveryEdgeOnce(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	var reads [][]byte
	for i := 0; i < 30; i++ {
		reads = append(reads, randSeq(rnd, 30))
	}
	g := buildDBG(t, reads, 5)
	fp := g.Fingerprint()
	seen := make(map[uint32]int)
	for _, w := range Traverse(g) {
		require.NotEmpty(t, w.Edges)
		for i, eID := range w.Edges {
			seen[eID]++
			if i > 0 {
				// consecutive edges share a node
				assert.Equal(t, g.EdgesArr[w.Edges[i-1]].EndNID, g.EdgesArr[eID].StartNID)
			}
		}
	}
	assert.Equal(t, g.EdgesNum(), len(seen))
	for eID, c := range seen {
		assert.Equal(t, 1, c, "edge %d", eID)
	}
	assert.Equal(t, fp, g.Fingerprint())
	assert.NoError(t, g.CheckInvariants())
}

func TestExtractContigsTwoComponents(t *testing.T) {
	rnd := rand.New(rand.NewSource(4))
	r1, r2 := randSeq(rnd, 50), randSeq(rnd, 50)
	g := buildDBG(t, [][]byte{r1, r2}, 21)
	n, _ := constructdbg.RemoveIslands(g, 5, 42)
	assert.Equal(t, 0, n)

	contigs, ts := ExtractContigs(g, 0)
	require.Len(t, contigs, 2)
	assert.Equal(t, 2, ts.Walks)
	assert.Equal(t, 1, contigs[0].ID)
	assert.Equal(t, 2, contigs[1].ID)
	got := map[string]bool{string(contigs[0].Seq): true, string(contigs[1].Seq): true}
	assert.True(t, got[string(r1)])
	assert.True(t, got[string(r2)])
	st := Stat(contigs)
	assert.Equal(t, 2, st.Count)
	assert.Equal(t, 100, st.TotalLen)

	contigs, ts = ExtractContigs(g, 51)
	assert.Empty(t, contigs)
	assert.Equal(t, 2, ts.Filtered)
	assert.Equal(t, AsmStat{}, Stat(contigs))
}

func TestExtractContigsBranch(t *testing.T) {
	// AC->CG->GT and AC->CA->AT: the branch node AC starts two walks
	tb := kmer.Table{"ACG": 1, "CGT": 1, "ACA": 1, "CAT": 1}
	g, err := constructdbg.Build(tb, 3, 1)
	require.NoError(t, err)
	contigs, ts := ExtractContigs(g, 0)
	assert.Equal(t, 2, ts.Walks)
	require.Len(t, contigs, 2)
	assert.Equal(t, "ACAT", string(contigs[0].Seq))
	assert.Equal(t, "ACGT", string(contigs[1].Seq))
}
