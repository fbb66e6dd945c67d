// Package fastaio reads reads and writes contigs in FASTA format.
//
// Files ending in .gz, .zst or .br are transparently (de)compressed.
package fastaio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/biogo/hts/fai"
	"github.com/google/brotli/go/cbrotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/mudesheng/ssdbg/findpath"
	"github.com/mudesheng/ssdbg/utils"
)

// LineWidth FASTA sequence line width
const LineWidth = 60

var ErrNoReads = errors.New("no reads in input")

type ReadStat struct {
	Records   int
	Empty     int // records without sequence after normalization
	Reads     int
	Bases     int
	Ambiguous int // reads with a base outside A/C/G/T
}

type multiCloser struct {
	io.Reader
	io.Writer
	closers []func() error
}

func (m *multiCloser) Close() (err error) {
	for _, c := range m.closers {
		if e := c(); e != nil && err == nil {
			err = e
		}
	}
	return
}

// OpenReader open fn and decompress it according to the suffix
func OpenReader(fn string) (io.ReadCloser, error) {
	fp, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	mc := &multiCloser{Reader: fp}
	switch {
	case strings.HasSuffix(fn, ".gz"):
		gzfp, err := gzip.NewReader(fp)
		if err != nil {
			fp.Close()
			return nil, fmt.Errorf("[OpenReader] gzip file: %s err: %w", fn, err)
		}
		mc.Reader = gzfp
		mc.closers = append(mc.closers, gzfp.Close)
	case strings.HasSuffix(fn, ".zst"):
		zr, err := zstd.NewReader(fp, zstd.WithDecoderConcurrency(1))
		if err != nil {
			fp.Close()
			return nil, fmt.Errorf("[OpenReader] zstd file: %s err: %w", fn, err)
		}
		mc.Reader = zr
		mc.closers = append(mc.closers, func() error { zr.Close(); return nil })
	case strings.HasSuffix(fn, ".br"):
		brfp := cbrotli.NewReader(fp)
		mc.Reader = brfp
		mc.closers = append(mc.closers, brfp.Close)
	}
	mc.closers = append(mc.closers, fp.Close)
	return mc, nil
}

// CreateWriter create fn and compress it according to the suffix
func CreateWriter(fn string) (io.WriteCloser, error) {
	fp, err := os.Create(fn)
	if err != nil {
		return nil, err
	}
	mc := &multiCloser{Writer: fp}
	switch {
	case strings.HasSuffix(fn, ".gz"):
		gzfp := gzip.NewWriter(fp)
		mc.Writer = gzfp
		mc.closers = append(mc.closers, gzfp.Close)
	case strings.HasSuffix(fn, ".zst"):
		zfp, err := zstd.NewWriter(fp, zstd.WithEncoderCRC(false), zstd.WithEncoderConcurrency(1), zstd.WithEncoderLevel(1))
		if err != nil {
			fp.Close()
			return nil, fmt.Errorf("[CreateWriter] zstd file: %s err: %w", fn, err)
		}
		mc.Writer = zfp
		mc.closers = append(mc.closers, zfp.Close)
	case strings.HasSuffix(fn, ".br"):
		brfp := cbrotli.NewWriter(fp, cbrotli.WriterOptions{Quality: 1})
		mc.Writer = brfp
		mc.closers = append(mc.closers, brfp.Close)
	}
	mc.closers = append(mc.closers, fp.Close)
	return mc, nil
}

// Normalize upper case the bases and drop whitespace
func Normalize(seq []byte) []byte {
	ns := make([]byte, 0, len(seq))
	for _, b := range seq {
		switch {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			continue
		case b >= 'a' && b <= 'z':
			b -= 'a' - 'A'
		}
		ns = append(ns, b)
	}
	return ns
}

// ReadSeqs read all FASTA records of r, return the normalized non empty sequences
func ReadSeqs(r io.Reader) (seqs [][]byte, st ReadStat, err error) {
	fafp := fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA))
	for {
		s, err := fafp.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return seqs, st, fmt.Errorf("[ReadSeqs] record %d: %w", st.Records+1, err)
		}
		st.Records++
		l := s.(*linear.Seq)
		seq := make([]byte, len(l.Seq))
		for j, v := range l.Seq {
			seq[j] = byte(v)
		}
		seq = Normalize(seq)
		if len(seq) == 0 {
			st.Empty++
			continue
		}
		st.Reads++
		st.Bases += len(seq)
		if utils.ValidSeq(seq) >= 0 {
			st.Ambiguous++
		}
		seqs = append(seqs, seq)
	}
	return seqs, st, nil
}

// LoadReads read the reads file fn, a file without any read is an error
func LoadReads(fn string) ([][]byte, ReadStat, error) {
	fp, err := OpenReader(fn)
	if err != nil {
		return nil, ReadStat{}, fmt.Errorf("[LoadReads] open file: %s err: %w", fn, err)
	}
	defer fp.Close()
	reads, st, err := ReadSeqs(fp)
	if err != nil {
		return nil, st, fmt.Errorf("[LoadReads] file: %s %w", fn, err)
	}
	if len(reads) == 0 {
		return nil, st, fmt.Errorf("[LoadReads] file: %s %w", fn, ErrNoReads)
	}
	return reads, st, nil
}

func newSeq(id, desc string, s []byte) *linear.Seq {
	letters := make([]alphabet.Letter, len(s))
	for i, b := range s {
		letters[i] = alphabet.Letter(b)
	}
	ls := linear.NewSeq(id, letters, alphabet.DNA)
	ls.Desc = desc
	return ls
}

// WriteContigs write one record per contig, header "contig_<ID> len=<n>"
func WriteContigs(w io.Writer, contigs []findpath.Contig) error {
	fw := fasta.NewWriter(w, LineWidth)
	for _, c := range contigs {
		s := newSeq("contig_"+strconv.Itoa(c.ID), "len="+strconv.Itoa(len(c.Seq)), c.Seq)
		if _, err := fw.Write(s); err != nil {
			return fmt.Errorf("[WriteContigs] contig %d: %w", c.ID, err)
		}
	}
	return nil
}

// WriteReads write reads as records "<prefix>_<i>", i 1-based
func WriteReads(w io.Writer, reads [][]byte, prefix string) error {
	fw := fasta.NewWriter(w, LineWidth)
	for i, r := range reads {
		if _, err := fw.Write(newSeq(prefix+"_"+strconv.Itoa(i+1), "", r)); err != nil {
			return fmt.Errorf("[WriteReads] read %d: %w", i+1, err)
		}
	}
	return nil
}

// WriteContigsFile write the contigs to fn and index it in fn.fai
func WriteContigsFile(fn string, contigs []findpath.Contig) error {
	fp, err := os.Create(fn)
	if err != nil {
		return fmt.Errorf("[WriteContigsFile] create file: %s err: %w", fn, err)
	}
	if err := WriteContigs(fp, contigs); err != nil {
		fp.Close()
		return err
	}
	if err := fp.Close(); err != nil {
		return err
	}
	return IndexFasta(fn)
}

// IndexFasta write the samtools style fai index of the plain FASTA file fn to fn.fai
func IndexFasta(fn string) error {
	fp, err := os.Open(fn)
	if err != nil {
		return fmt.Errorf("[IndexFasta] open file: %s err: %w", fn, err)
	}
	defer fp.Close()
	idx, err := fai.NewIndex(fp)
	if err != nil {
		return fmt.Errorf("[IndexFasta] index file: %s err: %w", fn, err)
	}
	ifp, err := os.Create(fn + ".fai")
	if err != nil {
		return fmt.Errorf("[IndexFasta] create file: %s.fai err: %w", fn, err)
	}
	if err := fai.WriteTo(ifp, idx); err != nil {
		ifp.Close()
		return fmt.Errorf("[IndexFasta] write file: %s.fai err: %w", fn, err)
	}
	return ifp.Close()
}

// ReadIndex read the fai index of fn
func ReadIndex(fn string) (fai.Index, error) {
	ifp, err := os.Open(fn + ".fai")
	if err != nil {
		return nil, err
	}
	defer ifp.Close()
	return fai.ReadFrom(ifp)
}
