// Package hashutil wraps go-ethereum's keccak256 implementation, the same
// primitive the teacher's geth/11-storage and geth/12-proofs lessons use
// for mapping-slot derivation and proof hashing.
package hashutil

import "github.com/ethereum/go-ethereum/crypto"

// Keccak256 returns the 32-byte keccak256 digest of the concatenation of
// data.
func Keccak256(data ...[]byte) [32]byte {
	return [32]byte(crypto.Keccak256(data...))
}
