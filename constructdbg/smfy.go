package constructdbg

import (
	"fmt"
	"log"
	"sort"

	"github.com/mudesheng/ssdbg/config"
)

type SmfyOpt struct {
	CoverageCutoff     bool
	CoveragePercentile float64
	MinIslandWeight    int
	MinIslandLen       int // bases
	TipMaxLen          int // bases
	TipWeightRatio     float64
	MaxTipPasses       int
	PopBubbles         bool
	MaxBubbleLen       int // edges
	MaxCleanPasses     int
}

func SmfyOptFromConfig(cfg config.Config) SmfyOpt {
	cfg = cfg.Resolve()
	return SmfyOpt{
		CoverageCutoff:     cfg.CoverageCutoff,
		CoveragePercentile: cfg.CoveragePercentile,
		MinIslandWeight:    cfg.MinIslandWeight,
		MinIslandLen:       cfg.MinIslandLen,
		TipMaxLen:          cfg.TipMaxLen,
		TipWeightRatio:     cfg.TipWeightRatio,
		MaxTipPasses:       cfg.MaxTipPasses,
		PopBubbles:         cfg.PopBubbles,
		MaxBubbleLen:       cfg.MaxBubbleLen,
		MaxCleanPasses:     cfg.MaxCleanPasses,
	}
}

type SmfyStat struct {
	Cutoff      int // 0 if the coverage cutoff did not run
	CutoffEdges int
	Islands     int
	IslandEdges int
	Tips        int
	TipEdges    int
	Bubbles     int
	BubbleEdges int
	Passes      int
	Before      DBGStat
	After       DBGStat
}

// EstimateCoverageCutoff the edge weight at percentile of the sorted weights, at least 2
func EstimateCoverageCutoff(g *DBG, percentile float64) int {
	ws := make([]int, 0, g.EdgesNum())
	for i := 1; i < len(g.EdgesArr); i++ {
		if g.EdgesArr[i].GetDeleteFlag() == 0 {
			ws = append(ws, g.EdgesArr[i].Weight)
		}
	}
	if len(ws) == 0 {
		return 2
	}
	sort.Ints(ws)
	idx := int(float64(len(ws)) * percentile)
	if idx >= len(ws) {
		idx = len(ws) - 1
	}
	if ws[idx] < 2 {
		return 2
	}
	return ws[idx]
}

// CoverageCutoff delete the edges with weight below the estimated cutoff
func CoverageCutoff(g *DBG, percentile float64) (cutoff, deleteEdgeNum int) {
	cutoff = EstimateCoverageCutoff(g, percentile)
	var ea []uint32
	for i := 1; i < len(g.EdgesArr); i++ {
		e := &g.EdgesArr[i]
		if e.GetDeleteFlag() == 0 && e.Weight < cutoff {
			ea = append(ea, e.ID)
		}
	}
	g.DeleteEdgesArr(ea)
	return cutoff, len(ea)
}

// component collect the weakly connected component of nID by BFS over the undirected view,
// every visited node gets the process flag
func (g *DBG) component(nID uint32) (nodes, edges []uint32) {
	queue := []uint32{nID}
	g.NodesArr[nID].SetProcessFlag()
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		nodes = append(nodes, id)
		nd := &g.NodesArr[id]
		edges = append(edges, nd.Outgoing...)
		for _, eID := range nd.Outgoing {
			if nn := &g.NodesArr[g.EdgesArr[eID].EndNID]; nn.GetProcessFlag() == 0 {
				nn.SetProcessFlag()
				queue = append(queue, nn.ID)
			}
		}
		for _, eID := range nd.Incoming {
			if nn := &g.NodesArr[g.EdgesArr[eID].StartNID]; nn.GetProcessFlag() == 0 {
				nn.SetProcessFlag()
				queue = append(queue, nn.ID)
			}
		}
	}
	return
}

// RemoveIslands delete every weakly connected component whose total edge weight is
// below minWeight or whose length in bases (edges + k - 1) is below minLen
func RemoveIslands(g *DBG, minWeight, minLen int) (islandNum, deleteEdgeNum int) {
	defer g.ResetProcessFlag()
	for i := 1; i < len(g.NodesArr); i++ {
		nd := &g.NodesArr[i]
		if nd.GetDeleteFlag() > 0 || nd.GetProcessFlag() > 0 {
			continue
		}
		nodes, edges := g.component(nd.ID)
		weight := 0
		for _, eID := range edges {
			weight += g.EdgesArr[eID].Weight
		}
		sl := len(edges) + g.Kmerlen - 1
		if weight >= minWeight && sl >= minLen {
			continue
		}
		islandNum++
		deleteEdgeNum += len(edges)
		for _, nID := range nodes {
			g.DeleteNode(nID)
		}
	}
	return
}

func maxWeight(g *DBG, ea []uint32, skip uint32) (max int) {
	for _, eID := range ea {
		if eID != skip && g.EdgesArr[eID].Weight > max {
			max = g.EdgesArr[eID].Weight
		}
	}
	return
}

// tipPath walk from a dead end node toward the graph through linear nodes, forward from a
// source or backward from a sink. ok is false if no junction on the joining side is
// reached within maxEdges edges.
func (g *DBG) tipPath(nID uint32, forward bool, maxEdges int) (path []uint32, junction uint32, ok bool) {
	cur := nID
	for len(path) < maxEdges {
		nd := &g.NodesArr[cur]
		var eID, next uint32
		if forward {
			eID = nd.Outgoing[0]
			next = g.EdgesArr[eID].EndNID
		} else {
			eID = nd.Incoming[0]
			next = g.EdgesArr[eID].StartNID
		}
		path = append(path, eID)
		nn := &g.NodesArr[next]
		if next == nID {
			return path, 0, false
		}
		if (forward && nn.InDegree > 1) || (!forward && nn.OutDegree > 1) {
			return path, next, true
		}
		if !nn.IsLinear() {
			return path, 0, false
		}
		cur = next
	}
	return path, 0, false
}

// RemoveTips delete short low weight dead end paths. A tip starts at a source (or sink) and
// runs through linear nodes to a junction with more than one edge on the joining side; it
// is deleted if its sequence (edges + k - 1 bases) is shorter than maxLen and its max weight is below ratio times the max
// weight of the junction's other edges on that side. The junction is kept.
func RemoveTips(g *DBG, maxLen int, ratio float64, maxPasses int) (tipNum, deleteEdgeNum int) {
	maxEdges := maxLen - g.Kmerlen
	if maxEdges < 1 {
		return
	}
	for pass := 0; pass < maxPasses; pass++ {
		num := 0
		for i := 1; i < len(g.NodesArr); i++ {
			nd := &g.NodesArr[i]
			if nd.GetDeleteFlag() > 0 {
				continue
			}
			var forward bool
			if nd.InDegree == 0 && nd.OutDegree == 1 {
				forward = true
			} else if nd.OutDegree == 0 && nd.InDegree == 1 {
				forward = false
			} else {
				continue
			}
			path, junction, ok := g.tipPath(nd.ID, forward, maxEdges)
			if !ok {
				continue
			}
			tipMax := maxWeight(g, path, 0)
			jn := &g.NodesArr[junction]
			var alt int
			if forward {
				alt = maxWeight(g, jn.Incoming, path[len(path)-1])
			} else {
				alt = maxWeight(g, jn.Outgoing, path[len(path)-1])
			}
			if float64(tipMax) >= ratio*float64(alt) {
				continue
			}
			g.DeleteEdgesArr(path)
			num++
			deleteEdgeNum += len(path)
		}
		tipNum += num
		if num == 0 {
			break
		}
	}
	return
}

type bubbleBranch struct {
	path   []uint32
	end    uint32
	weight int
}

// branchPath follow edge eID through linear nodes, at most maxLen edges
func (g *DBG) branchPath(eID uint32, maxLen int) (br bubbleBranch, ok bool) {
	e := &g.EdgesArr[eID]
	br.path = append(br.path, eID)
	br.weight = e.Weight
	cur := e.EndNID
	for g.NodesArr[cur].IsLinear() && len(br.path) < maxLen {
		ne := &g.EdgesArr[g.NodesArr[cur].Outgoing[0]]
		br.path = append(br.path, ne.ID)
		br.weight += ne.Weight
		cur = ne.EndNID
	}
	br.end = cur
	if cur == e.StartNID || g.NodesArr[cur].InDegree < 2 {
		return br, false
	}
	return br, true
}

// popOneBubble find two branches of nID converging on the same node with the same number
// of edges and delete the weaker one
func (g *DBG) popOneBubble(nID uint32, maxLen int) (deleteEdgeNum int, popped bool) {
	var brs []bubbleBranch
	for _, eID := range g.NodesArr[nID].Outgoing {
		if br, ok := g.branchPath(eID, maxLen); ok {
			brs = append(brs, br)
		}
	}
	for i := 0; i < len(brs); i++ {
		for j := i + 1; j < len(brs); j++ {
			b1, b2 := brs[i], brs[j]
			if b1.end != b2.end || len(b1.path) != len(b2.path) {
				continue
			}
			loser := b2
			if b2.weight > b1.weight || (b2.weight == b1.weight && g.EdgesArr[b1.path[0]].Kmer > g.EdgesArr[b2.path[0]].Kmer) {
				loser = b1
			}
			g.DeleteEdgesArr(loser.path)
			return len(loser.path), true
		}
	}
	return 0, false
}

// PopBubbles collapse simple bubbles: two paths of linear nodes leaving the same node and
// joining at the same node with equal number of edges (at most maxLen). The path with the
// lower total weight is deleted; on equal weight the one with the larger first kmer.
func PopBubbles(g *DBG, maxLen int) (bubbleNum, deleteEdgeNum int) {
	for i := 1; i < len(g.NodesArr); i++ {
		for g.NodesArr[i].GetDeleteFlag() == 0 && g.NodesArr[i].OutDegree > 1 {
			n, ok := g.popOneBubble(uint32(i), maxLen)
			if !ok {
				break
			}
			bubbleNum++
			deleteEdgeNum += n
		}
	}
	return
}

// SmfyDBG simplify the DBG: coverage cutoff once if enabled, then rounds of island removal,
// tip removal and bubble popping until a round deletes nothing or MaxCleanPasses is reached.
// The invariants are checked after every operation.
func SmfyDBG(g *DBG, opt SmfyOpt) (st SmfyStat, err error) {
	st.Before = g.Stat()
	if opt.CoverageCutoff {
		st.Cutoff, st.CutoffEdges = CoverageCutoff(g, opt.CoveragePercentile)
		fmt.Printf("[SmfyDBG] coverage cutoff: %d deleted edges: %d\n", st.Cutoff, st.CutoffEdges)
		if err = g.CheckInvariants(); err != nil {
			return st, fmt.Errorf("[SmfyDBG] after coverage cutoff: %w", err)
		}
	}
	for st.Passes < opt.MaxCleanPasses {
		fp := g.Fingerprint()
		st.Passes++

		n, en := RemoveIslands(g, opt.MinIslandWeight, opt.MinIslandLen)
		st.Islands += n
		st.IslandEdges += en
		if err = g.CheckInvariants(); err != nil {
			return st, fmt.Errorf("[SmfyDBG] after island removal: %w", err)
		}

		n, en = RemoveTips(g, opt.TipMaxLen, opt.TipWeightRatio, opt.MaxTipPasses)
		st.Tips += n
		st.TipEdges += en
		if err = g.CheckInvariants(); err != nil {
			return st, fmt.Errorf("[SmfyDBG] after tip removal: %w", err)
		}

		if opt.PopBubbles {
			n, en = PopBubbles(g, opt.MaxBubbleLen)
			st.Bubbles += n
			st.BubbleEdges += en
			if err = g.CheckInvariants(); err != nil {
				return st, fmt.Errorf("[SmfyDBG] after bubble popping: %w", err)
			}
		}
		if g.Fingerprint() == fp {
			break
		}
	}
	st.After = g.Stat()
	log.Printf("[SmfyDBG] passes: %d islands: %d tips: %d bubbles: %d nodes: %d->%d edges: %d->%d\n", st.Passes, st.Islands, st.Tips, st.Bubbles, st.Before.Nodes, st.After.Nodes, st.Before.Edges, st.After.Edges)
	return st, nil
}
