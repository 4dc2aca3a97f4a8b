// Package bytesutil provides the small, allocation-light byte primitives the
// RLP decoder and trie-node resolver are built from: windowed copies,
// subarray equality, nibble splitting, and big-endian significant-byte
// normalisation. Every function here operates on plain byte slices; callers
// are expected to size their buffers so the documented preconditions hold,
// the same contract the teacher's lower-level geth lessons use for raw byte
// plumbing.
package bytesutil

import (
	"fmt"

	"github.com/blockful-io/daoleaks-mpt/mptfail"
)

// Memcpy copies len(dest) bytes from src starting at offset into dest. The
// caller must size dest so that offset+len(dest) <= len(src); violating that
// is a precondition failure, not a recoverable error, mirroring the source
// circuit's treatment of memcpy as a caller-sized operation.
func Memcpy(dest, src []byte, offset int) {
	if offset < 0 || offset+len(dest) > len(src) {
		panic(fmt.Sprintf("bytesutil: memcpy out of range: offset=%d len=%d src=%d", offset, len(dest), len(src)))
	}
	copy(dest, src[offset:offset+len(dest)])
}

// AssertSubarray reports an error unless sub[i] == arr[offset+i] for every
// 0 <= i < length. It signals a proof-structure mismatch, not a panic,
// because unlike Memcpy's caller-sized buffers this check runs against
// untrusted proof bytes.
func AssertSubarray(sub, arr []byte, length, offset int) error {
	if offset < 0 || offset+length > len(arr) || length > len(sub) {
		return fmt.Errorf("assert subarray bounds: sub=%d arr=%d length=%d offset=%d: %w",
			len(sub), len(arr), length, offset, mptfail.ErrNibbleMismatch)
	}
	for i := 0; i < length; i++ {
		if sub[i] != arr[offset+i] {
			return fmt.Errorf("assert subarray mismatch at index %d (%#x != %#x): %w",
				i, sub[i], arr[offset+i], mptfail.ErrNibbleMismatch)
		}
	}
	return nil
}

// ByteToNibbles splits b into its high and low 4-bit halves.
func ByteToNibbles(b byte) (hi, lo byte) {
	return b >> 4, b & 0x0F
}

// ExpandNibbles returns the most-significant-nibble-first expansion of key,
// twice key's length.
func ExpandNibbles(key []byte) []byte {
	out := make([]byte, 2*len(key))
	for i, b := range key {
		hi, lo := ByteToNibbles(b)
		out[2*i] = hi
		out[2*i+1] = lo
	}
	return out
}

// ByteValue treats in as a big-endian integer that may be left-padded with
// zero bytes. It returns shifted, a copy of in left-shifted so the first
// significant byte lands at index 0, and n, the count of significant bytes
// (0 if in is all zero). shifted[n:] is always zero.
func ByteValue(in []byte) (shifted []byte, n int) {
	lead := 0
	for lead < len(in) && in[lead] == 0 {
		lead++
	}
	n = len(in) - lead
	shifted = LeftByteShift(in, lead)
	return shifted, n
}

// LeftByteShift returns a buffer the same length as in, with out[i] =
// in[i+n] where that index is in range, and 0 beyond it.
func LeftByteShift(in []byte, n int) []byte {
	out := make([]byte, len(in))
	for i := range out {
		if i+n < len(in) {
			out[i] = in[i+n]
		}
	}
	return out
}
