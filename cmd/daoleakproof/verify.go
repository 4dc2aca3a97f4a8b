package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/blockful-io/daoleaks-mpt/mptverify"
)

// account is the canonical Ethereum state-trie leaf value: nonce, balance,
// storage root, and code hash, in that field order. go-ethereum's own state
// package RLP-encodes exactly this tuple; re-deriving it here (rather than
// importing core/state, a much heavier dependency) keeps the CLI's account
// preimage construction to the four fields the proof actually commits to.
type account struct {
	Nonce    uint64
	Balance  *big.Int
	Root     common.Hash
	CodeHash common.Hash
}

// Result is what Verify reports back to main for logging.
type Result struct {
	Account     common.Address
	Slot        common.Hash
	HasSlot     bool
	Depth       uint64
	NodeCount   int
	StorageRoot common.Hash
}

// Verify fetches an eth_getProof response for cfg and checks it against
// cfg.StateRoot (and, if cfg.HasSlot, the account's storage root) using
// package mptverify. It never trusts the RPC response: GetProof supplies the
// untrusted candidate, mptverify is the only thing that decides pass/fail.
func Verify(ctx context.Context, client ProofClient, cfg Config) (Result, error) {
	if client == nil {
		return Result{}, errors.New("verify: client is nil")
	}
	if cfg.Account == (common.Address{}) {
		return Result{}, errors.New("verify: account address required")
	}

	var slots []string
	if cfg.HasSlot {
		slots = []string{cfg.Slot.Hex()}
	}

	proof, err := client.GetProof(ctx, cfg.Account, slots, cfg.BlockNumber)
	if err != nil {
		return Result{}, fmt.Errorf("verify: get proof: %w", err)
	}
	if proof == nil {
		return Result{}, errors.New("verify: nil proof response")
	}

	accountProof, err := decodeProofNodes(proof.AccountProof)
	if err != nil {
		return Result{}, fmt.Errorf("verify: account proof: %w", err)
	}
	packedAccount, accountDepth, err := mptverify.PackProofNodes(accountProof)
	if err != nil {
		return Result{}, fmt.Errorf("verify: pack account proof: %w", err)
	}

	acct := account{
		Nonce:    proof.Nonce,
		Balance:  proof.Balance,
		Root:     proof.StorageHash,
		CodeHash: proof.CodeHash,
	}
	accountRLP, err := rlp.EncodeToBytes(acct)
	if err != nil {
		return Result{}, fmt.Errorf("verify: encode account tuple: %w", err)
	}
	if len(accountRLP) > mptverify.MaxAccountStateLength {
		return Result{}, fmt.Errorf("verify: account RLP is %d bytes, exceeds %d", len(accountRLP), mptverify.MaxAccountStateLength)
	}

	var stateValue [mptverify.MaxAccountStateLength]byte
	copy(stateValue[mptverify.MaxAccountStateLength-len(accountRLP):], accountRLP)

	stateProof := mptverify.StateProof{
		Key:   cfg.Account,
		Proof: packedAccount,
		Depth: accountDepth,
		Value: stateValue,
	}
	if err := mptverify.VerifyStateRoot(stateProof, cfg.StateRoot); err != nil {
		return Result{}, fmt.Errorf("verify: state proof: %w", err)
	}

	res := Result{
		Account:     cfg.Account,
		Depth:       accountDepth,
		NodeCount:   len(accountProof),
		StorageRoot: proof.StorageHash,
	}

	if !cfg.HasSlot {
		return res, nil
	}
	if len(proof.StorageProof) == 0 {
		return Result{}, errors.New("verify: requested a storage slot but got no storage proof")
	}

	sp := proof.StorageProof[0]
	storageNodes, err := decodeProofNodes(sp.Proof)
	if err != nil {
		return Result{}, fmt.Errorf("verify: storage proof: %w", err)
	}
	packedStorage, storageDepth, err := mptverify.PackProofNodes(storageNodes)
	if err != nil {
		return Result{}, fmt.Errorf("verify: pack storage proof: %w", err)
	}

	var storageValue [mptverify.MaxStorageValueLength]byte
	if sp.Value != nil {
		b := sp.Value.Bytes()
		if len(b) > mptverify.MaxStorageValueLength {
			return Result{}, fmt.Errorf("verify: storage value is %d bytes, exceeds %d", len(b), mptverify.MaxStorageValueLength)
		}
		copy(storageValue[mptverify.MaxStorageValueLength-len(b):], b)
	}

	storageProof := mptverify.StorageProof{
		Key:   cfg.Slot,
		Proof: packedStorage,
		Depth: storageDepth,
		Value: storageValue,
	}
	if err := mptverify.VerifyStorageRoot(storageProof, proof.StorageHash); err != nil {
		return Result{}, fmt.Errorf("verify: storage proof: %w", err)
	}

	res.Slot = cfg.Slot
	res.HasSlot = true
	return res, nil
}

// decodeProofNodes turns eth_getProof's hex-string RLP nodes into raw bytes
// in root-to-leaf order.
func decodeProofNodes(nodes []string) ([][]byte, error) {
	if len(nodes) == 0 {
		return nil, errors.New("empty proof node list")
	}
	out := make([][]byte, len(nodes))
	for i, n := range nodes {
		out[i] = common.FromHex(n)
	}
	return out, nil
}
