// Package kmer counts the k-mers of a read set.
package kmer

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/mudesheng/ssdbg/utils"
)

// Table KmerFrequencyTable, kmer string -> occurrence count
type Table map[string]int

// Histogram count value -> number of distinct kmers with that count
type Histogram map[int]int

// Stat diagnostic counters of one indexing pass
type Stat struct {
	Reads        int // reads seen
	SkippedReads int // reads shorter than k
	Kmers        int // kmer occurrences counted
	InvalidKmers int // windows containing a base outside A/C/G/T
}

// Count slide a window of length k over every read, overlapping windows are counted separately.
// The reads are not modified.
func Count(reads [][]byte, k int) (Table, Stat) {
	var st Stat
	t := make(Table)
	if k < 1 {
		return t, st
	}
	for _, r := range reads {
		st.Reads++
		if len(r) < k {
			st.SkippedReads++
			continue
		}
		// lastBad is the position of the last invalid base seen in the current window
		lastBad := -1
		for i := 0; i < k-1; i++ {
			if !utils.IsBase(r[i]) {
				lastBad = i
			}
		}
		for i := k - 1; i < len(r); i++ {
			if !utils.IsBase(r[i]) {
				lastBad = i
			}
			start := i - k + 1
			if lastBad >= start {
				st.InvalidKmers++
				continue
			}
			t[string(r[start:i+1])]++
			st.Kmers++
		}
	}
	return t, st
}

// Histogram build count histogram of the table
func (t Table) Histogram() Histogram {
	h := make(Histogram)
	for _, c := range t {
		h[c]++
	}
	return h
}

// Get return count of kmer, 0 if absent
func (t Table) Get(kb []byte) int {
	return t[utils.Bytes2String(kb)]
}

// SortedKmers the kmers of the table in lexicographic order
func (t Table) SortedKmers() []string {
	ks := make([]string, 0, len(t))
	for km := range t {
		ks = append(ks, km)
	}
	sort.Strings(ks)
	return ks
}

// Counts sorted count values present in the histogram
func (h Histogram) Counts() []int {
	cs := make([]int, 0, len(h))
	for c := range h {
		cs = append(cs, c)
	}
	sort.Ints(cs)
	return cs
}

// Distinct number of distinct kmers
func (h Histogram) Distinct() (n int) {
	for _, v := range h {
		n += v
	}
	return
}

// WriteHistogram write histogram as TSV "count\tn_kmers"
func WriteHistogram(w io.Writer, h Histogram) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "count\tn_kmers\n")
	for _, c := range h.Counts() {
		fmt.Fprintf(bw, "%d\t%d\n", c, h[c])
	}
	return bw.Flush()
}
