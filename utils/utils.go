package utils

import (
	"log"
	"unsafe"

	"github.com/jwaldrip/odin/cli"
)

// ArgsOpt global arguments shared by all subcommands
type ArgsOpt struct {
	Prefix     string
	Kmer       int
	Cpuprofile string
}

// return global arguments and check if successed
func CheckGlobalArgs(c cli.Command) (opt ArgsOpt, succ bool) {
	opt.Prefix = c.Flag("p").String()
	if opt.Prefix == "" {
		log.Printf("[CheckGlobalArgs] args 'p' not set\n")
		return opt, false
	}
	opt.Cpuprofile = c.Flag("cpuprofile").String()

	var ok bool
	opt.Kmer, ok = c.Flag("K").Get().(int)
	if !ok {
		log.Printf("[CheckGlobalArgs] args 'K' : %v set error\n", c.Flag("K").String())
		return opt, false
	}
	return opt, true
}

// BntVal maps A/C/G/T to 0..3, every other byte to 4
var BntVal [256]uint8

// BaseTypeNum number of valid base letters
const BaseTypeNum = 4

// BntBase the valid bases in 2-bit order
var BntBase = [BaseTypeNum]byte{'A', 'C', 'G', 'T'}

func init() {
	for i := range BntVal {
		BntVal[i] = BaseTypeNum
	}
	for i, b := range BntBase {
		BntVal[b] = uint8(i)
	}
}

// IsBase report b is one of A/C/G/T
func IsBase(b byte) bool {
	return BntVal[b] < BaseTypeNum
}

// ValidSeq return the index of the first non A/C/G/T base in seq, -1 if all valid
func ValidSeq(seq []byte) int {
	for i, b := range seq {
		if BntVal[b] >= BaseTypeNum {
			return i
		}
	}
	return -1
}

func MaxInt(a, b int) int {
	if a > b {
		return a
	} else {
		return b
	}
}

func MinInt(a, b int) int {
	if a > b {
		return b
	} else {
		return a
	}
}

// Bytes2String no-copy conversion, the result must not outlive b or be stored as map key
func Bytes2String(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}

// CopyReads deep copy of a read set
func CopyReads(reads [][]byte) [][]byte {
	nr := make([][]byte, len(reads))
	for i, r := range reads {
		nr[i] = make([]byte, len(r))
		copy(nr[i], r)
	}
	return nr
}
