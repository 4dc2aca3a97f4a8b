// Package rlp is a small, from-scratch Recursive Length Prefix decoder
// scoped to exactly what an Ethereum Merkle-Patricia trie node needs: single
// items up to 532 bytes, length prefixes no wider than two bytes, and lists
// of at most 17 fields. It intentionally does not depend on
// go-ethereum/rlp — spec.md calls out the node-window size cap and the
// two-byte length-prefix cap as explicit, permanent constraints of this
// domain, not merely performance shortcuts, so the decoder is its own
// from-scratch implementation of exactly those constraints rather than a
// thin wrapper around a general-purpose library (see DESIGN.md).
package rlp

import (
	"fmt"

	"github.com/blockful-io/daoleaks-mpt/mptfail"
)

// MaxLenInBytes is the widest long-form length prefix this decoder accepts.
// Ethereum trie nodes never need more: a node is capped at 532 bytes, far
// under the 65535 two bytes can express.
const MaxLenInBytes = 2

// DataType classifies the object an RLP header describes.
type DataType uint8

const (
	String DataType = iota
	List
)

func (t DataType) String() string {
	if t == List {
		return "list"
	}
	return "string"
}

// Header is the decoded (offset, length, type) triple of spec.md §3: offset
// is the byte index within input at which the payload begins, length is the
// payload's byte length, and Type distinguishes string from list.
type Header struct {
	Offset int
	Length int
	Type   DataType
}

// End returns the index just past the payload this header describes.
func (h Header) End() int {
	return h.Offset + h.Length
}

// DecodeHeader classifies input's leading RLP prefix byte and computes the
// payload offset/length per the table in spec.md §4.2. It reads at most
// 1+MaxLenInBytes bytes of input before returning.
func DecodeHeader(input []byte) (Header, error) {
	if len(input) == 0 {
		return Header{}, fmt.Errorf("decode header: empty input: %w", mptfail.ErrHeaderOverrun)
	}
	p := input[0]

	switch {
	case p < 0x80:
		return Header{Offset: 0, Length: 1, Type: String}, nil

	case p < 0xb8:
		length := int(p) - 0x80
		return checkStringHeader(input, Header{Offset: 1, Length: length, Type: String})

	case p < 0xc0:
		lenBytes := int(p) - 0xb7
		length, err := readBigEndianLength(input, 1, lenBytes)
		if err != nil {
			return Header{}, err
		}
		return checkStringHeader(input, Header{Offset: 1 + lenBytes, Length: length, Type: String})

	case p < 0xf8:
		length := int(p) - 0xc0
		return checkListHeader(input, Header{Offset: 1, Length: length, Type: List})

	default:
		lenBytes := int(p) - 0xf7
		length, err := readBigEndianLength(input, 1, lenBytes)
		if err != nil {
			return Header{}, err
		}
		return checkListHeader(input, Header{Offset: 1 + lenBytes, Length: length, Type: List})
	}
}

func readBigEndianLength(input []byte, offset, n int) (int, error) {
	if n > MaxLenInBytes {
		return 0, fmt.Errorf("decode header: %d-byte length prefix: %w", n, mptfail.ErrLongLenTooWide)
	}
	if offset+n > len(input) {
		return 0, fmt.Errorf("decode header: length-prefix bytes exceed input: %w", mptfail.ErrHeaderOverrun)
	}
	length := 0
	for i := 0; i < n; i++ {
		length = length<<8 | int(input[offset+i])
	}
	return length, nil
}

func checkStringHeader(input []byte, h Header) (Header, error) {
	if h.End() > len(input) {
		return Header{}, fmt.Errorf("decode header: string payload [%d,%d) exceeds input of length %d: %w",
			h.Offset, h.End(), len(input), mptfail.ErrHeaderOverrun)
	}
	return h, nil
}

func checkListHeader(input []byte, h Header) (Header, error) {
	if h.End() > len(input) {
		return Header{}, fmt.Errorf("decode header: list payload [%d,%d) exceeds input of length %d: %w",
			h.Offset, h.End(), len(input), mptfail.ErrHeaderOverrun)
	}
	return h, nil
}
