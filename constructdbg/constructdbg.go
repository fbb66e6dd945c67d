package constructdbg

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/awalterschulze/gographviz"
	"github.com/mudesheng/ssdbg/config"
	"github.com/mudesheng/ssdbg/kmer"
)

// Build construct the DBG from the kmer table, every kmer with count >= minCount becomes
// one edge whose weight is the kmer count. Kmers are added in sorted order so node and
// edge IDs do not depend on map iteration.
func Build(t kmer.Table, k, minCount int) (*DBG, error) {
	if k < 2 {
		return nil, &config.ParamError{Param: "kmer_length", Value: k, Reason: "must be >= 2"}
	}
	if minCount < 1 {
		minCount = 1
	}
	g := NewDBG(k)
	for _, km := range t.SortedKmers() {
		c := t[km]
		if c < minCount {
			continue
		}
		if len(km) != k {
			return nil, fmt.Errorf("[Build] %w: kmer %s length %d, kmerlen %d", ErrInvariant, km, len(km), k)
		}
		g.AddEdge(km, c)
	}
	if err := g.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("[Build] %w", err)
	}
	return g, nil
}

// DBGStatWriter write node and edge counts in the "name:\tvalue" layout
func DBGStatWriter(DBGStatfn string, st DBGStat) error {
	DBGStatfp, err := os.Create(DBGStatfn)
	if err != nil {
		return fmt.Errorf("[DBGStatWriter] file %s create error: %w", DBGStatfn, err)
	}
	defer DBGStatfp.Close()
	fmt.Fprintf(DBGStatfp, "nodes size:\t%v\n", st.Nodes)
	fmt.Fprintf(DBGStatfp, "edges size:\t%v\n", st.Edges)
	fmt.Fprintf(DBGStatfp, "total weight:\t%v\n", st.TotalWeight)
	fmt.Fprintf(DBGStatfp, "sources:\t%v\n", st.Sources)
	fmt.Fprintf(DBGStatfp, "sinks:\t%v\n", st.Sinks)
	fmt.Fprintf(DBGStatfp, "branches:\t%v\n", st.Branches)
	return DBGStatfp.Close()
}

func DBGStatReader(DBGStatfn string) (st DBGStat, err error) {
	DBGStatfp, err := os.Open(DBGStatfn)
	if err != nil {
		return st, fmt.Errorf("[DBGStatReader] file %s Open error: %w", DBGStatfn, err)
	}
	defer DBGStatfp.Close()
	fields := []struct {
		format string
		v      *int
	}{
		{"nodes size:\t%v\n", &st.Nodes},
		{"edges size:\t%v\n", &st.Edges},
		{"total weight:\t%v\n", &st.TotalWeight},
		{"sources:\t%v\n", &st.Sources},
		{"sinks:\t%v\n", &st.Sinks},
		{"branches:\t%v\n", &st.Branches},
	}
	for _, f := range fields {
		if _, err = fmt.Fscanf(DBGStatfp, f.format, f.v); err != nil {
			return st, fmt.Errorf("[DBGStatReader] file: %v, parse %q error: %w", DBGStatfn, f.format, err)
		}
	}
	return st, nil
}

// WriteGraphviz write the live graph in dot format, nodes labeled by ID and
// edges by ID and weight
func (g *DBG) WriteGraphviz(w io.Writer) error {
	gv := gographviz.NewGraph()
	if err := gv.SetName("G"); err != nil {
		return err
	}
	if err := gv.SetDir(true); err != nil {
		return err
	}
	for i := 1; i < len(g.NodesArr); i++ {
		v := &g.NodesArr[i]
		if v.GetDeleteFlag() > 0 {
			continue
		}
		attr := make(map[string]string)
		attr["color"] = "Green"
		attr["label"] = "\"" + strconv.Itoa(int(v.ID)) + ":" + v.Seq + "\""
		if err := gv.AddNode("G", strconv.Itoa(int(v.ID)), attr); err != nil {
			return err
		}
	}
	for i := 1; i < len(g.EdgesArr); i++ {
		e := &g.EdgesArr[i]
		if e.GetDeleteFlag() > 0 {
			continue
		}
		attr := make(map[string]string)
		attr["color"] = "Blue"
		attr["label"] = "\"ID:" + strconv.Itoa(int(e.ID)) + " w:" + strconv.Itoa(e.Weight) + "\""
		if err := gv.AddEdge(strconv.Itoa(int(e.StartNID)), strconv.Itoa(int(e.EndNID)), true, attr); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, gv.String())
	return err
}

func GraphvizDBG(g *DBG, graphfn string) error {
	gfp, err := os.Create(graphfn)
	if err != nil {
		return fmt.Errorf("[GraphvizDBG] Create file: %s failed, err: %w", graphfn, err)
	}
	defer gfp.Close()
	if err := g.WriteGraphviz(gfp); err != nil {
		return fmt.Errorf("[GraphvizDBG] %w", err)
	}
	return gfp.Close()
}
