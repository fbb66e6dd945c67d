// Package cuckoofilter is a counting cuckoo filter for kmer spectra.
//
// Every slot stores the kmer fingerprint and its occurrence count in one word, so the
// filter counts distinct kmers in a fixed memory budget without keeping the kmer strings.
package cuckoofilter

import (
	"encoding/binary"
	"math/bits"
	"math/rand"

	"github.com/cespare/xxhash"
)

const (
	// NumFpBits number bits for Fingerprint
	NumFpBits = 24
	// NumCBits number bits for freq Count
	NumCBits = 32 - NumFpBits
	MaxC     = (1 << NumCBits) - 1
	CMask    = MaxC
	FpMask   = (1 << NumFpBits) - 1
)

const BucketSize = 4
const KMaxCount = 500

type Bucket [BucketSize]uint32

type CuckooFilter struct {
	Hash      []Bucket
	Count     uint // number of distinct items stored
	BucketPow uint
	Kmerlen   int
	Failed    int // items lost because no slot was found
	rnd       *rand.Rand
}

// Stat occupancy of the filter, Hist[c] is the number of items with count c
type Stat struct {
	Items   int
	Buckets int
	Load    float64
	Hist    [MaxC + 1]int
}

func upperpower2(x uint64) uint64 {
	if x < 2 {
		return 1
	}
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	x++

	return x
}

// MakeCuckooFilter is for construct Cuckoo Filter able to hold maxNumKeys items
func MakeCuckooFilter(maxNumKeys uint64, kmerLen int) *CuckooFilter {
	numBuckets := upperpower2(maxNumKeys) / BucketSize
	if numBuckets == 0 {
		numBuckets = 1
	}
	cf := &CuckooFilter{
		Hash:      make([]Bucket, numBuckets),
		Kmerlen:   kmerLen,
		BucketPow: uint(bits.TrailingZeros64(numBuckets)),
		rnd:       rand.New(rand.NewSource(int64(numBuckets))),
	}
	return cf
}

func combineFpC(fp uint32, count uint32) uint32 {
	return (fp << NumCBits) | count
}

func GetCount(fc uint32) uint32 {
	return fc & CMask
}

func GetFinger(fc uint32) uint32 {
	return fc >> NumCBits
}

func (cf *CuckooFilter) mask() uint64 {
	return (uint64(1) << cf.BucketPow) - 1
}

func (cf *CuckooFilter) getAltIndex(fp uint32, i uint64) uint64 {
	return (i ^ (uint64(fp) * 0x5bd1e995)) & cf.mask()
}

func (cf *CuckooFilter) getIndexAndFingerprint(hash uint64) (uint64, uint32) {
	fp := uint32(hash & FpMask)
	if fp == 0 {
		fp = 1
	}
	// Use most significant bits for deriving index.
	i1 := (hash >> 32) & cf.mask()
	return i1, fp
}

func (b *Bucket) getFingerprintIndex(fp uint32) int {
	for i, fc := range b {
		if fc != 0 && GetFinger(fc) == fp {
			return i
		}
	}
	return -1
}

func (b *Bucket) insert(fc uint32) bool {
	for i, tfc := range b {
		if tfc == 0 {
			b[i] = fc
			return true
		}
	}
	return false
}

func (b *Bucket) increase(j int) uint32 {
	oc := GetCount(b[j])
	if oc < MaxC {
		b[j]++
	}
	return oc
}

func (cf *CuckooFilter) reinsert(fc uint32, i uint64) bool {
	for k := 0; k < KMaxCount; k++ {
		j := cf.rnd.Intn(BucketSize)
		fc, cf.Hash[i][j] = cf.Hash[i][j], fc
		// look in the alternate location for that random element
		i = cf.getAltIndex(GetFinger(fc), i)
		if cf.Hash[i].insert(fc) {
			return true
		}
	}
	return false
}

func (cf *CuckooFilter) insertHash(hash uint64) (uint32, bool) {
	i1, fp := cf.getIndexAndFingerprint(hash)
	if j := cf.Hash[i1].getFingerprintIndex(fp); j >= 0 {
		return cf.Hash[i1].increase(j), true
	}
	i2 := cf.getAltIndex(fp, i1)
	if j := cf.Hash[i2].getFingerprintIndex(fp); j >= 0 {
		return cf.Hash[i2].increase(j), true
	}

	fc := combineFpC(fp, 1)
	if cf.Hash[i1].insert(fc) || cf.Hash[i2].insert(fc) {
		cf.Count++
		return 0, true
	}
	i := i1
	if (hash>>(32+cf.BucketPow))&1 == 1 {
		i = i2
	}
	if cf.reinsert(fc, i) {
		cf.Count++
		return 0, true
	}
	cf.Failed++
	return 0, false
}

func (cf *CuckooFilter) lookupHash(hash uint64) (uint32, bool) {
	i1, fp := cf.getIndexAndFingerprint(hash)
	if j := cf.Hash[i1].getFingerprintIndex(fp); j >= 0 {
		return GetCount(cf.Hash[i1][j]), true
	}
	i2 := cf.getAltIndex(fp, i1)
	if j := cf.Hash[i2].getFingerprintIndex(fp); j >= 0 {
		return GetCount(cf.Hash[i2][j]), true
	}
	return 0, false
}

func codeHash(code uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], code)
	return xxhash.Sum64(b[:])
}

// Insert add one occurrence of kb, return the count before insertion and if successed
func (cf *CuckooFilter) Insert(kb []byte) (uint32, bool) {
	return cf.insertHash(xxhash.Sum64(kb))
}

// InsertCode same as Insert for a 2-bit encoded kmer
func (cf *CuckooFilter) InsertCode(code uint64) (uint32, bool) {
	return cf.insertHash(codeHash(code))
}

// Lookup return the count of kb
func (cf *CuckooFilter) Lookup(kb []byte) (uint32, bool) {
	return cf.lookupHash(xxhash.Sum64(kb))
}

// LookupCode same as Lookup for a 2-bit encoded kmer
func (cf *CuckooFilter) LookupCode(code uint64) (uint32, bool) {
	return cf.lookupHash(codeHash(code))
}

func (cf *CuckooFilter) GetStat() (st Stat) {
	for _, b := range cf.Hash {
		for _, fc := range b {
			if fc == 0 {
				continue
			}
			st.Hist[GetCount(fc)]++
			st.Items++
		}
	}
	st.Buckets = len(cf.Hash)
	st.Load = float64(st.Items) / float64(len(cf.Hash)*BucketSize)
	return st
}
