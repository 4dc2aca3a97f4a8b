// Package mptfail collects the sentinel errors a Merkle-Patricia Trie proof
// verification can fail with. Every failure of the RLP decoders and of
// VerifyStorageRoot/VerifyStateRoot is one of these, wrapped with fmt.Errorf("...: %w", ...) to add
// position or value context without losing the sentinel for errors.Is checks.
package mptfail

import "errors"

// Structural errors: the RLP bytes do not describe a well-formed object.
var (
	ErrHeaderOverrun  = errors.New("mptfail: rlp header payload exceeds input buffer")
	ErrLongLenTooWide = errors.New("mptfail: rlp long-form length prefix wider than two bytes")
	ErrListOverrun    = errors.New("mptfail: rlp list has more fields than the caller allows")
	ErrListUnderrun   = errors.New("mptfail: rlp list payload left unconsumed bytes")
	ErrNotString      = errors.New("mptfail: expected rlp string, found list")
	ErrSmallListItem  = errors.New("mptfail: small-list item is not a single-byte-header string")
)

// Cryptographic errors: a node's keccak256 image does not match the hash
// the parent (or the caller-supplied root) claims for it.
var (
	ErrInternalHashMismatch = errors.New("mptfail: internal node hash does not match hash extracted from preceding node")
	ErrLeafHashMismatch     = errors.New("mptfail: terminal node hash does not match expected hash")
)

// Path errors: the key nibbles recovered from the proof disagree with the
// nibbles of the hashed key, or the cursor fails to land exactly on the key.
var (
	ErrNibbleMismatch    = errors.New("mptfail: hex-prefix nibbles do not match key at cursor")
	ErrCursorShort       = errors.New("mptfail: nibble cursor did not reach end of key at terminal depth")
	ErrLeafAtNonTerminal = errors.New("mptfail: leaf node encountered before terminal depth")
	ErrNotLeafAtTerminal = errors.New("mptfail: terminal node is not a leaf")
)

// Shape errors: a node's field count or field lengths don't match any of
// the two legal trie-node shapes.
var (
	ErrBadFieldCount    = errors.New("mptfail: rlp list has neither 2 nor 17 fields")
	ErrBranchSlotLength = errors.New("mptfail: branch slot length is neither 0 nor 32")
	ErrBranchValueSlot  = errors.New("mptfail: branch's 17th (value) slot is non-empty")
	ErrInlineChild      = errors.New("mptfail: child reference is inline, not a 32-byte hash")
)

// Value errors: the terminal bytes extracted from the proof disagree with
// the value the caller supplied.
var (
	ErrValueMismatch      = errors.New("mptfail: extracted value does not match supplied value")
	ErrValueLengthMismatch = errors.New("mptfail: extracted value length does not match byte_value length")
	ErrAccountNotList     = errors.New("mptfail: state leaf value is not an rlp list")
)

// Precondition errors: the caller's compile-time-shaped arguments are
// inconsistent before any byte of the proof is even examined.
var (
	ErrProofLenNotMultiple = errors.New("mptfail: proof buffer length is not a positive multiple of 532")
	ErrDepthOutOfRange     = errors.New("mptfail: depth exceeds proof buffer's node capacity")
	ErrDepthZero           = errors.New("mptfail: depth must be at least 1")
)
