package rlp

import (
	"fmt"

	"github.com/blockful-io/daoleaks-mpt/mptfail"
)

// DecodeString parses input's leading RLP header, asserts it describes a
// string (not a list), and returns the payload's (offset, length) within
// input.
func DecodeString(input []byte) (offset, length int, err error) {
	h, err := DecodeHeader(input)
	if err != nil {
		return 0, 0, err
	}
	if h.Type != String {
		return 0, 0, fmt.Errorf("decode string: leading byte describes a list: %w", mptfail.ErrNotString)
	}
	if h.End() > len(input) {
		return 0, 0, fmt.Errorf("decode string: payload [%d,%d) exceeds input of length %d: %w",
			h.Offset, h.End(), len(input), mptfail.ErrHeaderOverrun)
	}
	return h.Offset, h.Length, nil
}
