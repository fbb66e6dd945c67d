// Package constructdbg builds and simplifies the de Bruijn graph.
//
// Nodes are the distinct (k-1)-mers and edges the k-mers, both stored in dense arrays and
// addressed by ID; ID 0 of both arrays is reserved. NodeMap is the only way a (k-1)-mer
// string is resolved to a node, so a string never owns two live nodes.
package constructdbg

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash"
)

// ErrInvariant is returned when the graph structure is inconsistent
var ErrInvariant = errors.New("DBG invariant violated")

type DBGNode struct {
	ID        uint32
	Seq       string   // (k-1)-mer
	Incoming  []uint32 // the edge IDs entering the node
	Outgoing  []uint32
	InDegree  int
	OutDegree int
	Flag      uint8 // from low~high, 1:Process, 2:Delete
}

func (n *DBGNode) String() string {
	return fmt.Sprintf("ID:%d Seq:%s Incoming:%v Outgoing:%v\n", n.ID, n.Seq, n.Incoming, n.Outgoing)
}

func (n *DBGNode) GetProcessFlag() uint8 {
	return n.Flag & 0x1
}

func (n *DBGNode) SetProcessFlag() {
	n.Flag = n.Flag | 0x1
}

func (n *DBGNode) ResetProcessFlag() {
	n.Flag = n.Flag & (0xFF - 0x1)
}

func (n *DBGNode) GetDeleteFlag() uint8 {
	return n.Flag & 0x2
}

func (n *DBGNode) SetDeleteFlag() {
	n.Flag = n.Flag | 0x2
}

// IsLinear one incoming and one outgoing edge
func (n *DBGNode) IsLinear() bool {
	return n.InDegree == 1 && n.OutDegree == 1
}

type DBGEdge struct {
	ID       uint32
	StartNID uint32 // start node ID
	EndNID   uint32 // end node ID
	Kmer     string
	Weight   int // kmer count
	Flag     uint8
}

func (e *DBGEdge) String() string {
	return fmt.Sprintf("eID:%d StartNID:%d EndNID:%d kmer:%s weight:%d\n", e.ID, e.StartNID, e.EndNID, e.Kmer, e.Weight)
}

func (e *DBGEdge) GetProcessFlag() uint8 {
	return e.Flag & 0x1
}

func (e *DBGEdge) SetProcessFlag() {
	e.Flag = e.Flag | 0x1
}

func (e *DBGEdge) ResetProcessFlag() {
	e.Flag = e.Flag & (0xFF - 0x1)
}

func (e *DBGEdge) GetDeleteFlag() uint8 {
	return e.Flag & 0x2
}

func (e *DBGEdge) SetDeleteFlag() {
	e.Flag = e.Flag | 0x2
}

// LastBase the base the edge appends to its start node
func (e *DBGEdge) LastBase() byte {
	return e.Kmer[len(e.Kmer)-1]
}

type DBG struct {
	Kmerlen  int
	NodesArr []DBGNode
	EdgesArr []DBGEdge
	NodeMap  map[string]uint32
	EdgeMap  map[string]uint32
}

func NewDBG(kmerlen int) *DBG {
	g := &DBG{
		Kmerlen:  kmerlen,
		NodesArr: make([]DBGNode, 1),
		EdgesArr: make([]DBGEdge, 1),
		NodeMap:  make(map[string]uint32),
		EdgeMap:  make(map[string]uint32),
	}
	return g
}

// GetOrAddNode return the node ID of seq, create it if not exist
func (g *DBG) GetOrAddNode(seq string) uint32 {
	if id, ok := g.NodeMap[seq]; ok {
		return id
	}
	id := uint32(len(g.NodesArr))
	g.NodesArr = append(g.NodesArr, DBGNode{ID: id, Seq: seq})
	g.NodeMap[seq] = id
	return id
}

// AddEdge create or fetch the edge of kmer and set its weight
func (g *DBG) AddEdge(kmer string, weight int) uint32 {
	if id, ok := g.EdgeMap[kmer]; ok {
		g.EdgesArr[id].Weight = weight
		return id
	}
	k := len(kmer)
	sID := g.GetOrAddNode(kmer[:k-1])
	eNID := g.GetOrAddNode(kmer[1:])
	id := uint32(len(g.EdgesArr))
	g.EdgesArr = append(g.EdgesArr, DBGEdge{ID: id, StartNID: sID, EndNID: eNID, Kmer: kmer, Weight: weight})
	g.EdgeMap[kmer] = id

	sn := &g.NodesArr[sID]
	sn.Outgoing = append(sn.Outgoing, id)
	sn.OutDegree++
	en := &g.NodesArr[eNID]
	en.Incoming = append(en.Incoming, id)
	en.InDegree++
	return id
}

func removeID(arr []uint32, id uint32) []uint32 {
	for i, v := range arr {
		if v == id {
			copy(arr[i:], arr[i+1:])
			return arr[:len(arr)-1]
		}
	}
	return arr
}

// DeleteEdge detach the edge from its nodes and mark it deleted
func (g *DBG) DeleteEdge(eID uint32) {
	e := &g.EdgesArr[eID]
	if e.ID == 0 || e.GetDeleteFlag() > 0 {
		return
	}
	sn := &g.NodesArr[e.StartNID]
	sn.Outgoing = removeID(sn.Outgoing, eID)
	sn.OutDegree = len(sn.Outgoing)
	en := &g.NodesArr[e.EndNID]
	en.Incoming = removeID(en.Incoming, eID)
	en.InDegree = len(en.Incoming)
	delete(g.EdgeMap, e.Kmer)
	e.SetDeleteFlag()
}

// DeleteNode delete the node and all edges attached to it
func (g *DBG) DeleteNode(nID uint32) {
	nd := &g.NodesArr[nID]
	if nd.ID == 0 || nd.GetDeleteFlag() > 0 {
		return
	}
	for len(nd.Outgoing) > 0 {
		g.DeleteEdge(nd.Outgoing[0])
	}
	for len(nd.Incoming) > 0 {
		g.DeleteEdge(nd.Incoming[0])
	}
	delete(g.NodeMap, nd.Seq)
	nd.SetDeleteFlag()
}

// DeleteOrphanNodes delete live nodes without any edge, return the number deleted
func (g *DBG) DeleteOrphanNodes() (num int) {
	for i := 1; i < len(g.NodesArr); i++ {
		nd := &g.NodesArr[i]
		if nd.GetDeleteFlag() > 0 || nd.InDegree > 0 || nd.OutDegree > 0 {
			continue
		}
		g.DeleteNode(nd.ID)
		num++
	}
	return
}

// DeleteEdgesArr delete edges and the nodes they leave without edge
func (g *DBG) DeleteEdgesArr(ea []uint32) {
	for _, eID := range ea {
		e := g.EdgesArr[eID]
		g.DeleteEdge(eID)
		for _, nID := range [2]uint32{e.StartNID, e.EndNID} {
			nd := &g.NodesArr[nID]
			if nd.GetDeleteFlag() == 0 && nd.InDegree == 0 && nd.OutDegree == 0 {
				g.DeleteNode(nID)
			}
		}
	}
}

func (g *DBG) NodesNum() int { return len(g.NodeMap) }

func (g *DBG) EdgesNum() int { return len(g.EdgeMap) }

// GetEdge return edge of kmer, nil if not in the graph
func (g *DBG) GetEdge(kmer string) *DBGEdge {
	id, ok := g.EdgeMap[kmer]
	if !ok {
		return nil
	}
	return &g.EdgesArr[id]
}

// ResetProcessFlag clean the process flag of all nodes and edges
func (g *DBG) ResetProcessFlag() {
	for i := range g.NodesArr {
		g.NodesArr[i].ResetProcessFlag()
	}
	for i := range g.EdgesArr {
		g.EdgesArr[i].ResetProcessFlag()
	}
}

// CheckInvariants check adjacency, degree and label consistency of every live node and edge
func (g *DBG) CheckInvariants() error {
	k := g.Kmerlen
	liveNodes, liveEdges := 0, 0
	for i := 1; i < len(g.NodesArr); i++ {
		nd := &g.NodesArr[i]
		if nd.GetDeleteFlag() > 0 {
			continue
		}
		liveNodes++
		if nd.ID != uint32(i) {
			return fmt.Errorf("%w: node at %d has ID %d", ErrInvariant, i, nd.ID)
		}
		if len(nd.Seq) != k-1 {
			return fmt.Errorf("%w: node %d seq len %d, kmerlen %d", ErrInvariant, nd.ID, len(nd.Seq), k)
		}
		if id, ok := g.NodeMap[nd.Seq]; !ok || id != nd.ID {
			return fmt.Errorf("%w: node %d %s not owned by NodeMap", ErrInvariant, nd.ID, nd.Seq)
		}
		if nd.InDegree != len(nd.Incoming) || nd.OutDegree != len(nd.Outgoing) {
			return fmt.Errorf("%w: node %d degree in:%d/%d out:%d/%d", ErrInvariant, nd.ID, nd.InDegree, len(nd.Incoming), nd.OutDegree, len(nd.Outgoing))
		}
		for _, eID := range nd.Incoming {
			if g.EdgesArr[eID].GetDeleteFlag() > 0 || g.EdgesArr[eID].EndNID != nd.ID {
				return fmt.Errorf("%w: node %d incoming edge %d", ErrInvariant, nd.ID, eID)
			}
		}
		for _, eID := range nd.Outgoing {
			if g.EdgesArr[eID].GetDeleteFlag() > 0 || g.EdgesArr[eID].StartNID != nd.ID {
				return fmt.Errorf("%w: node %d outgoing edge %d", ErrInvariant, nd.ID, eID)
			}
		}
	}
	for i := 1; i < len(g.EdgesArr); i++ {
		e := &g.EdgesArr[i]
		if e.GetDeleteFlag() > 0 {
			continue
		}
		liveEdges++
		if len(e.Kmer) != k {
			return fmt.Errorf("%w: edge %d kmer len %d", ErrInvariant, e.ID, len(e.Kmer))
		}
		sn, en := &g.NodesArr[e.StartNID], &g.NodesArr[e.EndNID]
		if sn.GetDeleteFlag() > 0 || en.GetDeleteFlag() > 0 {
			return fmt.Errorf("%w: edge %d attached to deleted node", ErrInvariant, e.ID)
		}
		if e.Kmer[:k-1] != sn.Seq || e.Kmer[1:] != en.Seq {
			return fmt.Errorf("%w: edge %d kmer %s inconsistent with nodes %s -> %s", ErrInvariant, e.ID, e.Kmer, sn.Seq, en.Seq)
		}
		if id, ok := g.EdgeMap[e.Kmer]; !ok || id != e.ID {
			return fmt.Errorf("%w: edge %d %s not owned by EdgeMap", ErrInvariant, e.ID, e.Kmer)
		}
		if countID(sn.Outgoing, e.ID) != 1 || countID(en.Incoming, e.ID) != 1 {
			return fmt.Errorf("%w: edge %d not listed once by its nodes", ErrInvariant, e.ID)
		}
	}
	if liveNodes != len(g.NodeMap) || liveEdges != len(g.EdgeMap) {
		return fmt.Errorf("%w: live nodes %d/%d edges %d/%d", ErrInvariant, liveNodes, len(g.NodeMap), liveEdges, len(g.EdgeMap))
	}
	return nil
}

func countID(arr []uint32, id uint32) (count int) {
	for _, v := range arr {
		if v == id {
			count++
		}
	}
	return
}

// Fingerprint hash of the live node and edge IDs
func (g *DBG) Fingerprint() uint64 {
	h := xxhash.New()
	var b [4]byte
	for i := 1; i < len(g.NodesArr); i++ {
		if g.NodesArr[i].GetDeleteFlag() == 0 {
			binary.LittleEndian.PutUint32(b[:], uint32(i))
			h.Write(b[:])
		}
	}
	h.Write([]byte{0})
	for i := 1; i < len(g.EdgesArr); i++ {
		if g.EdgesArr[i].GetDeleteFlag() == 0 {
			binary.LittleEndian.PutUint32(b[:], uint32(i))
			h.Write(b[:])
		}
	}
	return h.Sum64()
}

// DBGStat node/edge counts of the live graph
type DBGStat struct {
	Nodes       int
	Edges       int
	TotalWeight int
	Sources     int // in-degree 0
	Sinks       int // out-degree 0
	Branches    int // in-degree or out-degree > 1
}

func (g *DBG) Stat() (st DBGStat) {
	for i := 1; i < len(g.NodesArr); i++ {
		nd := &g.NodesArr[i]
		if nd.GetDeleteFlag() > 0 {
			continue
		}
		st.Nodes++
		if nd.InDegree == 0 {
			st.Sources++
		}
		if nd.OutDegree == 0 {
			st.Sinks++
		}
		if nd.InDegree > 1 || nd.OutDegree > 1 {
			st.Branches++
		}
	}
	for i := 1; i < len(g.EdgesArr); i++ {
		if g.EdgesArr[i].GetDeleteFlag() > 0 {
			continue
		}
		st.Edges++
		st.TotalWeight += g.EdgesArr[i].Weight
	}
	return
}
