package cuckoofilter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpperpower2(t *testing.T) {
	assert.Equal(t, uint64(1), upperpower2(0))
	assert.Equal(t, uint64(1), upperpower2(1))
	assert.Equal(t, uint64(8), upperpower2(5))
	assert.Equal(t, uint64(1024), upperpower2(1024))
}

func TestInsertCount(t *testing.T) {
	cf := MakeCuckooFilter(1024, 5)
	for i := 0; i < 3; i++ {
		old, ok := cf.Insert([]byte("ACGTA"))
		require.True(t, ok)
		assert.Equal(t, uint32(i), old)
	}
	c, ok := cf.Lookup([]byte("ACGTA"))
	assert.True(t, ok)
	assert.Equal(t, uint32(3), c)
	_, ok = cf.Lookup([]byte("TTTTT"))
	assert.False(t, ok)
	assert.Equal(t, uint(1), cf.Count)
}

func TestInsertCode(t *testing.T) {
	cf := MakeCuckooFilter(64, 17)
	cf.InsertCode(42)
	cf.InsertCode(42)
	cf.InsertCode(7)
	c, ok := cf.LookupCode(42)
	assert.True(t, ok)
	assert.Equal(t, uint32(2), c)
	c, _ = cf.LookupCode(7)
	assert.Equal(t, uint32(1), c)
}

func TestCountSaturates(t *testing.T) {
	cf := MakeCuckooFilter(16, 3)
	for i := 0; i < MaxC+10; i++ {
		cf.Insert([]byte("AAA"))
	}
	c, _ := cf.Lookup([]byte("AAA"))
	assert.Equal(t, uint32(MaxC), c)
}

func TestStatManyItems(t *testing.T) {
	n := 3000
	cf := MakeCuckooFilter(uint64(2*n), 8)
	for i := 0; i < n; i++ {
		kb := []byte(fmt.Sprintf("K%07d", i))
		cf.Insert(kb)
		if i%3 == 0 {
			cf.Insert(kb)
		}
	}
	st := cf.GetStat()
	assert.Equal(t, 0, cf.Failed)
	assert.Equal(t, n, st.Items)
	assert.Equal(t, n/3, st.Hist[2])
	assert.Equal(t, n-n/3, st.Hist[1])
	assert.Less(t, st.Load, 1.0)
}

func Benchmark_Insert(b *testing.B) {
	cf := MakeCuckooFilter(1<<20, 21)
	kb := []byte("ACGTACGTACGTACGTACGTA")
	for i := 0; i < b.N; i++ {
		cf.Insert(kb)
	}
}
