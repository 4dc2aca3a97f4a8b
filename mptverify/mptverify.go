// Package mptverify implements the proof driver (spec.md §4.5): given a
// terminal value, a key, an encoded proof path, a depth, and an expected
// root hash, it decides whether the proof authenticates the value at the
// key under that root. It exposes the two specialisations spec.md §4
// calls for — an Ethereum storage proof and an Ethereum state/account
// proof — as the two concrete entry points VerifyStorageRoot and
// VerifyStateRoot, per the "either is acceptable" note in spec.md's design
// notes on polymorphism (Go has no const generics over array length, so a
// single generic TrieProof[K,P,V] the way the Noir source parameterises it
// isn't expressible; two concrete types is the idiomatic Go rendition).
package mptverify

import (
	"bytes"
	"fmt"

	"github.com/blockful-io/daoleaks-mpt/bytesutil"
	"github.com/blockful-io/daoleaks-mpt/hexprefix"
	"github.com/blockful-io/daoleaks-mpt/internal/hashutil"
	"github.com/blockful-io/daoleaks-mpt/mptfail"
	"github.com/blockful-io/daoleaks-mpt/noderesolve"
	"github.com/blockful-io/daoleaks-mpt/rlp"
)

const (
	// MaxTrieNodeLength is the worst-case serialised size of an Ethereum
	// trie branch node: 16 child hashes of 33 bytes each (0xa0 header plus
	// 32-byte hash), a 1-byte empty value slot, and a 3-byte list header
	// (16*33 + 1 + 3 = 532).
	// Every node window in a packed proof is exactly this many bytes,
	// right-padded with zeros.
	MaxTrieNodeLength = 532

	// MaxStorageValueLength bounds a storage slot's value: the raw 32-byte
	// word, without its RLP header, left-padded in StorageProof.Value.
	MaxStorageValueLength = 32

	// MaxAccountStateLength bounds the RLP encoding of the account tuple
	// (nonce, balance, storageRoot, codeHash): up to 9 bytes for the
	// nonce, 33 for the balance, 33 for storageRoot, 33 for codeHash, plus
	// a 2-byte long-form list header once the payload exceeds 55 bytes.
	MaxAccountStateLength = 110
)

// StorageProof is an Ethereum storage-slot inclusion proof: a 32-byte
// unhashed slot key, the packed node path, its meaningful depth, and the
// expected (left-padded) slot value.
type StorageProof struct {
	Key   [32]byte
	Proof []byte
	Depth uint64
	Value [MaxStorageValueLength]byte
}

// StateProof is an Ethereum account inclusion proof: a 20-byte unhashed
// address, the packed node path, its meaningful depth, and the expected
// (left-padded) RLP-encoded account tuple.
type StateProof struct {
	Key   [20]byte
	Proof []byte
	Depth uint64
	Value [MaxAccountStateLength]byte
}

// VerifyStorageRoot decides whether proof authenticates proof.Value at
// proof.Key under root, Ethereum storage-trie rules.
func VerifyStorageRoot(proof StorageProof, root [32]byte) error {
	return verify(proof.Key[:], proof.Proof, proof.Depth, root, proof.Value[:], verifyStorageLeaf, true)
}

// VerifyStateRoot decides whether proof authenticates proof.Value (the RLP
// account tuple) at proof.Key under root, Ethereum state-trie rules.
func VerifyStateRoot(proof StateProof, root [32]byte) error {
	return verify(proof.Key[:], proof.Proof, proof.Depth, root, proof.Value[:], verifyStateLeaf, false)
}

// leafValidator checks a terminal leaf's value field (as extracted by the
// node resolver) against the caller-supplied value buffer.
type leafValidator func(leafField, value []byte) error

// verify is the shared proof driver (spec.md §4.5) both specialisations
// instantiate. terminalSmallList selects which RLP list decoder frames the
// terminal leaf node: storage leaves fit the short-string fast path
// (decode_small_list); account leaves' value field is long-form (>55
// bytes), so state verification needs the general decoder.
func verify(key, proofBuf []byte, depth uint64, root [32]byte, value []byte, validateLeaf leafValidator, terminalSmallList bool) error {
	if len(proofBuf) == 0 || len(proofBuf)%MaxTrieNodeLength != 0 {
		return fmt.Errorf("verify: proof buffer length %d: %w", len(proofBuf), mptfail.ErrProofLenNotMultiple)
	}
	maxDepth := uint64(len(proofBuf) / MaxTrieNodeLength)
	if depth == 0 {
		return mptfail.ErrDepthZero
	}
	if depth > maxDepth {
		return fmt.Errorf("verify: depth %d exceeds proof capacity %d: %w", depth, maxDepth, mptfail.ErrDepthOutOfRange)
	}

	hashedKey := hashutil.Keccak256(key)
	nibbles := bytesutil.ExpandNibbles(hashedKey[:])
	cursor := uint64(0)
	expected := root

	for i := uint64(0); i+1 < depth; i++ {
		node := window(proofBuf, i)

		framedLen, err := framedLength(node)
		if err != nil {
			return err
		}
		if hashutil.Keccak256(node[:framedLen]) != expected {
			return fmt.Errorf("verify: internal node %d: %w", i, mptfail.ErrInternalHashMismatch)
		}

		table, err := rlp.DecodeSmallList(node, noderesolve.MaxNumFields)
		if err != nil {
			return fmt.Errorf("verify: internal node %d: %w", i, err)
		}
		res, err := noderesolve.ResolveNibble32(table, node, nibbles, cursor)
		if err != nil {
			return fmt.Errorf("verify: internal node %d: %w", i, err)
		}
		if len(res.NextValue) != noderesolve.KeyLength {
			return fmt.Errorf("verify: internal node %d: child reference is %d bytes, want %d: %w",
				i, len(res.NextValue), noderesolve.KeyLength, mptfail.ErrInlineChild)
		}
		if res.NodeType == hexprefix.Leaf {
			return fmt.Errorf("verify: internal node %d: %w", i, mptfail.ErrLeafAtNonTerminal)
		}

		copy(expected[:], res.NextValue)
		cursor = res.NextCursor
	}

	node := window(proofBuf, depth-1)
	framedLen, err := framedLength(node)
	if err != nil {
		return err
	}
	if hashutil.Keccak256(node[:framedLen]) != expected {
		return mptfail.ErrLeafHashMismatch
	}

	var table rlp.ListTable
	if terminalSmallList {
		table, err = rlp.DecodeSmallList(node, 2)
	} else {
		table, err = rlp.DecodeList(node, 2)
	}
	if err != nil {
		return fmt.Errorf("verify: terminal node: %w", err)
	}

	res, err := noderesolve.ResolveNibble32(table, node, nibbles, cursor)
	if err != nil {
		return fmt.Errorf("verify: terminal node: %w", err)
	}
	if res.NodeType != hexprefix.Leaf {
		return mptfail.ErrNotLeafAtTerminal
	}
	if res.NextCursor != uint64(len(nibbles)) {
		return fmt.Errorf("verify: cursor %d, want %d: %w", res.NextCursor, len(nibbles), mptfail.ErrCursorShort)
	}

	return validateLeaf(res.NextValue, value)
}

// window extracts the i-th 532-byte node slot from a packed proof buffer.
func window(proofBuf []byte, i uint64) []byte {
	start := int(i) * MaxTrieNodeLength
	return proofBuf[start : start+MaxTrieNodeLength]
}

// framedLength decodes node's header and returns its true RLP-framed
// length (header + payload), saturated to node's own length so a caller
// can always safely slice node[:framedLength(node)] even against a
// defensively malformed header.
func framedLength(node []byte) (int, error) {
	header, err := rlp.DecodeHeader(node)
	if err != nil {
		return 0, err
	}
	end := header.End()
	if end > len(node) {
		end = len(node)
	}
	return end, nil
}

// verifyStorageLeaf implements spec.md §4.5 step 5: the leaf's value field
// is itself an RLP string; decode it and compare its significant bytes
// against value's significant bytes (as recovered by byte_value).
func verifyStorageLeaf(leafField, value []byte) error {
	valOff, valLen, err := rlp.DecodeString(leafField)
	if err != nil {
		return fmt.Errorf("verify storage leaf: %w", err)
	}
	shifted, n := bytesutil.ByteValue(value)
	if valLen != n {
		return fmt.Errorf("verify storage leaf: extracted length %d, byte_value length %d: %w", valLen, n, mptfail.ErrValueLengthMismatch)
	}
	if valOff+valLen > len(leafField) {
		return fmt.Errorf("verify storage leaf: value field overruns node: %w", mptfail.ErrHeaderOverrun)
	}
	if !bytes.Equal(shifted[:n], leafField[valOff:valOff+valLen]) {
		return mptfail.ErrValueMismatch
	}
	return nil
}

// verifyStateLeaf implements spec.md §4.5 step 6: the leaf's value field is
// the raw RLP encoding of the account tuple; it is not decoded further,
// only checked for a list tag, matching length, and byte-for-byte equality
// with value's significant bytes.
func verifyStateLeaf(leafField, value []byte) error {
	shifted, n := bytesutil.ByteValue(value)

	header, err := rlp.DecodeHeader(leafField)
	if err != nil {
		return fmt.Errorf("verify state leaf: %w", err)
	}
	if header.Type != rlp.List {
		return fmt.Errorf("verify state leaf: leading byte is not a list tag: %w", mptfail.ErrAccountNotList)
	}
	total := header.End()
	if total != n {
		return fmt.Errorf("verify state leaf: extracted length %d, byte_value length %d: %w", total, n, mptfail.ErrValueLengthMismatch)
	}
	if total > len(leafField) {
		return fmt.Errorf("verify state leaf: value field overruns node: %w", mptfail.ErrHeaderOverrun)
	}
	if !bytes.Equal(shifted[:n], leafField[:n]) {
		return mptfail.ErrValueMismatch
	}
	return nil
}
