package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidSeq(t *testing.T) {
	assert.Equal(t, -1, ValidSeq([]byte("ACGTTGCA")))
	assert.Equal(t, 3, ValidSeq([]byte("ACGNTGCA")))
	assert.Equal(t, 0, ValidSeq([]byte("acgt")))
	assert.Equal(t, -1, ValidSeq(nil))
}

func TestIsBase(t *testing.T) {
	for _, b := range []byte("ACGT") {
		assert.True(t, IsBase(b))
	}
	for _, b := range []byte("NRYacgt-*") {
		assert.False(t, IsBase(b))
	}
}

func TestCopyReads(t *testing.T) {
	reads := [][]byte{[]byte("ACGT"), []byte("TTTT")}
	cp := CopyReads(reads)
	cp[0][0] = 'T'
	assert.Equal(t, "ACGT", string(reads[0]))
	assert.Equal(t, "TCGT", string(cp[0]))
}

func Benchmark_Byte2String(b *testing.B) {
	x := []byte("ACGTACGTACGTACGTACGTACGTACGTACGTACGT")
	for i := 0; i < b.N; i++ {
		_ = Bytes2String(x)
	}
}
