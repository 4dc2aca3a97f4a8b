package mptverify

import "fmt"

// PackProofNodes concatenates nodes — root-to-leaf RLP-encoded trie nodes,
// as returned by eth_getProof — into the wire layout spec.md §6 describes:
// each node right-padded with zero bytes to exactly MaxTrieNodeLength,
// nodes in order. It returns the packed buffer and len(nodes) as the depth.
//
// This is the inverse of the read path VerifyStorageRoot/VerifyStateRoot
// walk; it belongs here rather than in cmd/daoleakproof because any caller
// assembling a TrieProof from a fresh eth_getProof response needs it, not
// just this repo's own CLI.
func PackProofNodes(nodes [][]byte) (proof []byte, depth uint64, err error) {
	if len(nodes) == 0 {
		return nil, 0, fmt.Errorf("pack proof nodes: no nodes supplied")
	}
	proof = make([]byte, len(nodes)*MaxTrieNodeLength)
	for i, node := range nodes {
		if len(node) > MaxTrieNodeLength {
			return nil, 0, fmt.Errorf("pack proof nodes: node %d is %d bytes, exceeds %d", i, len(node), MaxTrieNodeLength)
		}
		copy(proof[i*MaxTrieNodeLength:], node)
	}
	return proof, uint64(len(nodes)), nil
}
