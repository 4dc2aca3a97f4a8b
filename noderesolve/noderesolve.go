// Package noderesolve implements the trie node resolver (spec.md §4.4): it
// classifies a decoded RLP field table as a branch or a leaf/extension node,
// advances the nibble cursor, and extracts either the next child hash or
// the terminal value. It is the one place branch-vs-leaf dispatch happens;
// the proof driver in package mptverify never inspects a field count
// itself.
package noderesolve

import (
	"fmt"

	"github.com/blockful-io/daoleaks-mpt/bytesutil"
	"github.com/blockful-io/daoleaks-mpt/hexprefix"
	"github.com/blockful-io/daoleaks-mpt/mptfail"
	"github.com/blockful-io/daoleaks-mpt/rlp"
)

// KeyLength is the byte length of a keccak256 hash, the size every non-empty
// branch slot and every extension/leaf child hash must have.
const KeyLength = 32

// MaxNumFields is the branch-node slot count: 16 nibble-indexed children
// plus the trailing (unused, for fixed-length keys) value slot.
const MaxNumFields = 17

// Result is what resolving one node window produces: its classification,
// the bytes of its "next step" (a child hash for Branch/Extension, the
// terminal value for Leaf), and the nibble cursor advanced past whatever
// nibbles this node consumed.
type Result struct {
	NodeType   hexprefix.NodeType
	NextValue  []byte
	NextCursor uint64
}

// ResolveNibble32 dispatches on table.NumFields: 2 fields resolve as
// leaf/extension, 17 resolve as branch, anything else is malformed.
func ResolveNibble32(table rlp.ListTable, input []byte, keyNibbles []byte, cursor uint64) (Result, error) {
	switch table.NumFields {
	case 2:
		return resolveLeafExtension(table, input, keyNibbles, cursor)
	case MaxNumFields:
		return resolveBranch(table, input, keyNibbles, cursor)
	default:
		return Result{}, fmt.Errorf("resolve nibble32: list has %d fields: %w", table.NumFields, mptfail.ErrBadFieldCount)
	}
}

func resolveLeafExtension(table rlp.ListTable, input []byte, keyNibbles []byte, cursor uint64) (Result, error) {
	pathOff, pathLen := table.Offset[0], table.Length[0]
	if pathOff+pathLen > len(input) {
		return Result{}, fmt.Errorf("resolve leaf/extension: path field overruns input: %w", mptfail.ErrHeaderOverrun)
	}
	path := input[pathOff : pathOff+pathLen]

	nibbles, nodeType, err := hexprefix.Decode(path)
	if err != nil {
		return Result{}, err
	}

	start := int(cursor)
	if start+len(nibbles) > len(keyNibbles) {
		return Result{}, fmt.Errorf("resolve leaf/extension: %d nibbles at cursor %d overrun key of %d nibbles: %w",
			len(nibbles), cursor, len(keyNibbles), mptfail.ErrNibbleMismatch)
	}
	if err := bytesutil.AssertSubarray(nibbles, keyNibbles, len(nibbles), start); err != nil {
		return Result{}, err
	}

	valOff, valLen := table.Offset[1], table.Length[1]
	if valOff+valLen > len(input) {
		return Result{}, fmt.Errorf("resolve leaf/extension: value field overruns input: %w", mptfail.ErrHeaderOverrun)
	}

	return Result{
		NodeType:   nodeType,
		NextValue:  input[valOff : valOff+valLen],
		NextCursor: cursor + uint64(len(nibbles)),
	}, nil
}

func resolveBranch(table rlp.ListTable, input []byte, keyNibbles []byte, cursor uint64) (Result, error) {
	for i := 0; i < 16; i++ {
		if table.Length[i] != 0 && table.Length[i] != KeyLength {
			return Result{}, fmt.Errorf("resolve branch: slot %d has length %d: %w", i, table.Length[i], mptfail.ErrBranchSlotLength)
		}
	}
	if table.Length[16] != 0 {
		return Result{}, fmt.Errorf("resolve branch: value slot has length %d: %w", table.Length[16], mptfail.ErrBranchValueSlot)
	}

	if int(cursor) >= len(keyNibbles) {
		return Result{}, fmt.Errorf("resolve branch: cursor %d exceeds key of %d nibbles: %w", cursor, len(keyNibbles), mptfail.ErrCursorShort)
	}
	nibble := keyNibbles[cursor]

	if table.Length[nibble] != KeyLength {
		return Result{}, fmt.Errorf("resolve branch: slot %d (selected by nibble) has length %d, want %d: %w",
			nibble, table.Length[nibble], KeyLength, mptfail.ErrBranchSlotLength)
	}
	off := table.Offset[nibble]
	if off+KeyLength > len(input) {
		return Result{}, fmt.Errorf("resolve branch: child hash overruns input: %w", mptfail.ErrHeaderOverrun)
	}

	childHash := make([]byte, KeyLength)
	bytesutil.Memcpy(childHash, input, off)

	return Result{
		NodeType:   hexprefix.Branch,
		NextValue:  childHash,
		NextCursor: cursor + 1,
	}, nil
}
