// Package findpath extracts contigs from a simplified DBG.
package findpath

import (
	"sort"

	"github.com/mudesheng/ssdbg/constructdbg"
)

// Walk a path of edge IDs, Cycle is set for walks of a component without any branch
type Walk struct {
	Edges []uint32
	Cycle bool
}

type Contig struct {
	ID  int // 1-based
	Seq []byte
}

type TraverseStat struct {
	Walks    int
	Cycles   int
	Filtered int // walks shorter than the min contig length
}

// AsmStat assembly statistics of a contig set
type AsmStat struct {
	Count    int
	TotalLen int
	N50      int
	Longest  int
	Shortest int
	MeanLen  float64
}

// Traverse split the graph into maximal non-branching walks. Every outgoing edge of a node
// that is not 1-in/1-out starts a walk which extends while it reaches 1-in/1-out nodes;
// edges left over belong to isolated cycles and are emitted one walk per cycle.
// Each live edge is in exactly one walk. The graph is not modified.
func Traverse(g *constructdbg.DBG) (walks []Walk) {
	visited := make([]bool, len(g.EdgesArr))
	for i := 1; i < len(g.NodesArr); i++ {
		nd := &g.NodesArr[i]
		if nd.GetDeleteFlag() > 0 || nd.IsLinear() {
			continue
		}
		for _, eID := range nd.Outgoing {
			if visited[eID] {
				continue
			}
			var w Walk
			for {
				visited[eID] = true
				w.Edges = append(w.Edges, eID)
				next := &g.NodesArr[g.EdgesArr[eID].EndNID]
				if !next.IsLinear() || visited[next.Outgoing[0]] {
					break
				}
				eID = next.Outgoing[0]
			}
			walks = append(walks, w)
		}
	}

	for i := 1; i < len(g.EdgesArr); i++ {
		if g.EdgesArr[i].GetDeleteFlag() > 0 || visited[i] {
			continue
		}
		w := Walk{Cycle: true}
		eID := uint32(i)
		for !visited[eID] {
			visited[eID] = true
			w.Edges = append(w.Edges, eID)
			next := &g.NodesArr[g.EdgesArr[eID].EndNID]
			if next.OutDegree != 1 {
				break
			}
			eID = next.Outgoing[0]
		}
		walks = append(walks, w)
	}
	return walks
}

// WalkSeq the start node sequence followed by the last base of every edge
func WalkSeq(g *constructdbg.DBG, w Walk) []byte {
	if len(w.Edges) == 0 {
		return nil
	}
	start := g.NodesArr[g.EdgesArr[w.Edges[0]].StartNID].Seq
	seq := make([]byte, 0, len(start)+len(w.Edges))
	seq = append(seq, start...)
	for _, eID := range w.Edges {
		seq = append(seq, g.EdgesArr[eID].LastBase())
	}
	return seq
}

// ExtractContigs walk the graph and keep the sequences of at least minLen bases
func ExtractContigs(g *constructdbg.DBG, minLen int) (contigs []Contig, ts TraverseStat) {
	for _, w := range Traverse(g) {
		ts.Walks++
		if w.Cycle {
			ts.Cycles++
		}
		seq := WalkSeq(g, w)
		if len(seq) < minLen {
			ts.Filtered++
			continue
		}
		contigs = append(contigs, Contig{ID: len(contigs) + 1, Seq: seq})
	}
	return
}

// StatLens assembly statistics of contig lengths. N50 is the first length of the
// descending sorted lengths at which the cumulative sum reaches half the total.
func StatLens(lens []int) (st AsmStat) {
	if len(lens) == 0 {
		return
	}
	sl := make([]int, len(lens))
	copy(sl, lens)
	sort.Sort(sort.Reverse(sort.IntSlice(sl)))
	for _, l := range sl {
		st.TotalLen += l
	}
	cum := 0
	for _, l := range sl {
		cum += l
		if cum*2 >= st.TotalLen {
			st.N50 = l
			break
		}
	}
	st.Count = len(sl)
	st.Longest = sl[0]
	st.Shortest = sl[len(sl)-1]
	st.MeanLen = float64(st.TotalLen) / float64(st.Count)
	return
}

func Stat(contigs []Contig) AsmStat {
	lens := make([]int, len(contigs))
	for i, c := range contigs {
		lens[i] = len(c.Seq)
	}
	return StatLens(lens)
}
