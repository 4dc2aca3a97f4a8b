package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient/gethclient"
)

// ProofClient captures the single eth_getProof call this driver depends on.
// Mirrors the teacher's geth/12-proofs ProofClient interface so the real
// *gethclient.Client and a test fake both satisfy it.
type ProofClient interface {
	GetProof(ctx context.Context, account common.Address, slots []string, blockNumber *big.Int) (*gethclient.AccountResult, error)
}

// Config controls which account/storage proof to fetch and verify.
type Config struct {
	RPCURL      string
	Account     common.Address
	Slot        common.Hash
	HasSlot     bool
	BlockNumber *big.Int
	StateRoot   common.Hash
	LogLevel    string
}

// parseFlags builds a Config from the process's command-line arguments,
// following the validate-then-default pattern the teacher's geth/*/cmd
// entry points use around flag.Parse.
func parseFlags(args []string) (Config, error) {
	fs := flag.NewFlagSet("daoleakproof", flag.ContinueOnError)
	rpcURL := fs.String("rpc", "", "Ethereum JSON-RPC endpoint")
	account := fs.String("account", "", "account address to prove (0x...)")
	slot := fs.String("slot", "", "storage slot to prove (0x..., omit for an account-only proof)")
	block := fs.String("block", "", "block number (decimal, empty for latest)")
	root := fs.String("root", "", "expected state root (0x...), required")
	logLevel := fs.String("log-level", "info", "zerolog level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *rpcURL == "" {
		return Config{}, fmt.Errorf("config: -rpc is required")
	}
	if *account == "" {
		return Config{}, fmt.Errorf("config: -account is required")
	}
	if *root == "" {
		return Config{}, fmt.Errorf("config: -root is required")
	}

	cfg := Config{
		RPCURL:    *rpcURL,
		Account:   common.HexToAddress(*account),
		StateRoot: common.HexToHash(*root),
		LogLevel:  *logLevel,
	}

	if *slot != "" {
		cfg.Slot = common.HexToHash(*slot)
		cfg.HasSlot = true
	}

	if *block != "" {
		n, ok := new(big.Int).SetString(*block, 10)
		if !ok {
			return Config{}, fmt.Errorf("config: -block %q is not a decimal integer", *block)
		}
		cfg.BlockNumber = n
	}

	return cfg, nil
}
