// Package hexprefix implements Ethereum's hex-prefix encoding: the compact
// nibble packing used in the first field of every trie leaf and extension
// node. spec.md folds this into the node resolver's prose description; this
// port pulls it out into its own testable unit (see SPEC_FULL.md's
// supplemented-features note) because the parity/terminator bit math is
// exactly the kind of off-by-one-prone logic that deserves byte-vector
// tests independent of the surrounding trie-walk.
package hexprefix

import (
	"fmt"

	"github.com/blockful-io/daoleaks-mpt/bytesutil"
	"github.com/blockful-io/daoleaks-mpt/mptfail"
)

// NodeType is the tagged enumeration spec.md §3 defines: a 17-field RLP
// list is always Branch; a 2-field list is Leaf or Extension depending on
// the terminator bit recovered by Decode.
type NodeType uint8

const (
	Branch NodeType = iota
	Leaf
	Extension
)

func (t NodeType) String() string {
	switch t {
	case Branch:
		return "branch"
	case Leaf:
		return "leaf"
	case Extension:
		return "extension"
	default:
		return "unknown"
	}
}

// Classify reads only the first byte of an encoded path and reports whether
// it terminates a leaf, without decoding the rest of the nibbles. Useful
// whenever a caller only needs the leaf/extension distinction.
func Classify(first byte) NodeType {
	t := first >> 4
	if t >= 2 {
		return Leaf
	}
	return Extension
}

// Decode unpacks field — the first of a leaf/extension node's two RLP
// fields — into its key nibbles. The top nibble of field[0] carries a
// parity bit (bit 0: odd-length path, so field[0]'s low nibble is the first
// key nibble) and a terminator bit (bit 1: this node is a Leaf). On an
// even-length path, field[0]'s low nibble must be the zero padding nibble;
// a nonzero value there is rejected with mptfail.ErrNibbleMismatch.
func Decode(field []byte) (nibbles []byte, nodeType NodeType, err error) {
	if len(field) == 0 {
		return nil, 0, fmt.Errorf("hexprefix decode: empty field: %w", mptfail.ErrNibbleMismatch)
	}

	h := field[0]
	t := h >> 4
	oddParity := t&1 == 1
	nodeType = Classify(h)

	hi, lo := bytesutil.ByteToNibbles(h)
	_ = hi

	nibbles = make([]byte, 0, 2*len(field))
	if oddParity {
		nibbles = append(nibbles, lo)
	} else if lo != 0 {
		return nil, 0, fmt.Errorf("hexprefix decode: even-parity path has nonzero padding nibble %#x: %w",
			lo, mptfail.ErrNibbleMismatch)
	}

	for _, b := range field[1:] {
		hi, lo := bytesutil.ByteToNibbles(b)
		nibbles = append(nibbles, hi, lo)
	}

	return nibbles, nodeType, nil
}
