package mptverify

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/blockful-io/daoleaks-mpt/bytesutil"
	"github.com/blockful-io/daoleaks-mpt/internal/rlptest"
)

// hexPrefixEncode packs nibbles into Ethereum's hex-prefix path encoding.
// isLeaf selects the terminator bit; used only to build test fixtures.
func hexPrefixEncode(nibbles []byte, isLeaf bool) []byte {
	odd := len(nibbles)%2 == 1
	terminator := byte(0)
	if isLeaf {
		terminator = 1
	}
	parity := byte(0)
	if odd {
		parity = 1
	}
	t := terminator<<1 | parity

	var path []byte
	rest := nibbles
	if odd {
		path = append(path, t<<4|nibbles[0])
		rest = nibbles[1:]
	} else {
		path = append(path, t<<4)
	}
	for i := 0; i < len(rest); i += 2 {
		path = append(path, rest[i]<<4|rest[i+1])
	}
	return path
}

func buildStorageProof(t *testing.T) (proof StorageProof, root [32]byte, key [32]byte, scalarValue []byte) {
	t.Helper()

	for i := range key {
		key[i] = byte(i + 1)
	}
	hashedKey := crypto.Keccak256(key[:])
	nibbles := bytesutil.ExpandNibbles(hashedKey)

	selected := nibbles[0]
	leafNibbles := nibbles[1:]

	scalarValue = []byte{0xDE, 0xAD, 0xBE, 0xEF}
	valueFieldRLP := rlptest.EncodeString(scalarValue)
	leafPath := hexPrefixEncode(leafNibbles, true)
	leafNode := rlptest.EncodeList(rlptest.EncodeString(leafPath), rlptest.EncodeString(valueFieldRLP))
	leafHash := crypto.Keccak256(leafNode)

	branchItems := make([][]byte, 17)
	for i := 0; i < 16; i++ {
		if byte(i) == selected {
			branchItems[i] = rlptest.EncodeString(leafHash)
		} else {
			branchItems[i] = rlptest.EncodeString(nil)
		}
	}
	branchItems[16] = rlptest.EncodeString(nil)
	branchNode := rlptest.EncodeList(branchItems...)
	rootHash := crypto.Keccak256(branchNode)

	packed, depth, err := PackProofNodes([][]byte{branchNode, leafNode})
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	var value [MaxStorageValueLength]byte
	copy(value[MaxStorageValueLength-len(scalarValue):], scalarValue)

	proof = StorageProof{Key: key, Proof: packed, Depth: depth, Value: value}
	root = [32]byte(rootHash)
	return proof, root, key, scalarValue
}

func TestVerifyStorageRootSuccess(t *testing.T) {
	proof, root, _, _ := buildStorageProof(t)
	if err := VerifyStorageRoot(proof, root); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestVerifyStorageRootTamperedValue(t *testing.T) {
	proof, root, _, _ := buildStorageProof(t)
	proof.Value[MaxStorageValueLength-1]++
	if err := VerifyStorageRoot(proof, root); err == nil {
		t.Fatalf("expected failure on tampered value")
	}
}

func TestVerifyStorageRootTamperedRoot(t *testing.T) {
	proof, root, _, _ := buildStorageProof(t)
	root[0]++
	if err := VerifyStorageRoot(proof, root); err == nil {
		t.Fatalf("expected failure on tampered root")
	}
}

func TestVerifyStorageRootTamperedKey(t *testing.T) {
	proof, root, _, _ := buildStorageProof(t)
	proof.Key[0]++
	if err := VerifyStorageRoot(proof, root); err == nil {
		t.Fatalf("expected failure on tampered key")
	}
}

func TestVerifyStorageRootTamperedProofByte(t *testing.T) {
	proof, root, _, _ := buildStorageProof(t)
	proof.Proof[0]++ // corrupt the root branch node's own RLP header byte
	if err := VerifyStorageRoot(proof, root); err == nil {
		t.Fatalf("expected failure on tampered proof byte")
	}
}

func TestVerifyStorageRootWrongDepth(t *testing.T) {
	proof, root, _, _ := buildStorageProof(t)
	proof.Depth = 1
	if err := VerifyStorageRoot(proof, root); err == nil {
		t.Fatalf("expected failure when depth under-counts the path")
	}
}

func TestVerifyStorageRootDepthOutOfRange(t *testing.T) {
	proof, root, _, _ := buildStorageProof(t)
	proof.Depth = 3
	if err := VerifyStorageRoot(proof, root); err == nil {
		t.Fatalf("expected failure when depth exceeds proof capacity")
	}
}

func TestVerifyStorageRootBadProofLength(t *testing.T) {
	proof, root, _, _ := buildStorageProof(t)
	proof.Proof = proof.Proof[:len(proof.Proof)-1]
	if err := VerifyStorageRoot(proof, root); err == nil {
		t.Fatalf("expected failure on non-multiple-of-532 proof length")
	}
}

func TestVerifyStorageRootPermutedNodes(t *testing.T) {
	proof, root, _, _ := buildStorageProof(t)
	// Swap the two node windows out of root-to-leaf order.
	swapped := make([]byte, len(proof.Proof))
	copy(swapped[:MaxTrieNodeLength], proof.Proof[MaxTrieNodeLength:])
	copy(swapped[MaxTrieNodeLength:], proof.Proof[:MaxTrieNodeLength])
	proof.Proof = swapped
	if err := VerifyStorageRoot(proof, root); err == nil {
		t.Fatalf("expected failure when node windows are permuted")
	}
}

func buildStateProof(t *testing.T) (proof StateProof, root [32]byte) {
	t.Helper()

	var address [20]byte
	for i := range address {
		address[i] = byte(i + 1)
	}
	hashedKey := crypto.Keccak256(address[:])
	nibbles := bytesutil.ExpandNibbles(hashedKey)

	selected := nibbles[0]
	leafNibbles := nibbles[1:]

	nonceRLP := rlptest.EncodeString([]byte{0x07})
	balance := make([]byte, 32)
	balance[31] = 0x09
	balanceRLP := rlptest.EncodeString(balance)
	storageRoot := make([]byte, 32)
	storageRoot[0] = 0x11
	storageRootRLP := rlptest.EncodeString(storageRoot)
	codeHash := make([]byte, 32)
	codeHash[0] = 0x22
	codeHashRLP := rlptest.EncodeString(codeHash)
	accountRLP := rlptest.EncodeList(nonceRLP, balanceRLP, storageRootRLP, codeHashRLP)

	leafPath := hexPrefixEncode(leafNibbles, true)
	leafNode := rlptest.EncodeList(rlptest.EncodeString(leafPath), rlptest.EncodeString(accountRLP))
	leafHash := crypto.Keccak256(leafNode)

	branchItems := make([][]byte, 17)
	for i := 0; i < 16; i++ {
		if byte(i) == selected {
			branchItems[i] = rlptest.EncodeString(leafHash)
		} else {
			branchItems[i] = rlptest.EncodeString(nil)
		}
	}
	branchItems[16] = rlptest.EncodeString(nil)
	branchNode := rlptest.EncodeList(branchItems...)
	rootHash := crypto.Keccak256(branchNode)

	packed, depth, err := PackProofNodes([][]byte{branchNode, leafNode})
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	var value [MaxAccountStateLength]byte
	copy(value[MaxAccountStateLength-len(accountRLP):], accountRLP)

	proof = StateProof{Key: address, Proof: packed, Depth: depth, Value: value}
	root = [32]byte(rootHash)
	return proof, root
}

func TestVerifyStateRootSuccess(t *testing.T) {
	proof, root := buildStateProof(t)
	if err := VerifyStateRoot(proof, root); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestVerifyStateRootTamperedAccount(t *testing.T) {
	proof, root := buildStateProof(t)
	proof.Value[MaxAccountStateLength-1]++
	if err := VerifyStateRoot(proof, root); err == nil {
		t.Fatalf("expected failure on tampered account bytes")
	}
}

func TestVerifyStateRootTamperedRoot(t *testing.T) {
	proof, root := buildStateProof(t)
	root[3]++
	if err := VerifyStateRoot(proof, root); err == nil {
		t.Fatalf("expected failure on tampered root")
	}
}

func TestPackProofNodesRejectsOversizedNode(t *testing.T) {
	big := make([]byte, MaxTrieNodeLength+1)
	if _, _, err := PackProofNodes([][]byte{big}); err == nil {
		t.Fatalf("expected error for a node exceeding MaxTrieNodeLength")
	}
}

func TestPackProofNodesRejectsEmpty(t *testing.T) {
	if _, _, err := PackProofNodes(nil); err == nil {
		t.Fatalf("expected error for an empty node list")
	}
}

func TestWindowRightPad(t *testing.T) {
	node := []byte{0xc0}
	padded := rlptest.RightPad(node, MaxTrieNodeLength)
	if len(padded) != MaxTrieNodeLength {
		t.Fatalf("got length %d want %d", len(padded), MaxTrieNodeLength)
	}
	if padded[0] != 0xc0 {
		t.Fatalf("leading byte not preserved")
	}
	for _, b := range padded[1:] {
		if b != 0 {
			t.Fatalf("padding is not zero")
		}
	}
}
