// Command daoleakproof fetches an eth_getProof response for an account (and,
// optionally, one of its storage slots) and checks it against a caller-
// supplied state root using package mptverify. It is a thin I/O shell around
// that library: every verification decision happens in mptverify, never
// here.
package main

import (
	"context"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/ethclient/gethclient"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		logger.Fatal().Err(err).Msg("parse flags")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("parse log level")
	}
	logger = logger.Level(level)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rpcClient, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		logger.Fatal().Err(err).Str("rpc", cfg.RPCURL).Msg("dial rpc")
	}
	defer rpcClient.Close()

	client := gethclient.New(rpcClient.Client())

	logger.Info().
		Str("account", cfg.Account.Hex()).
		Bool("has_slot", cfg.HasSlot).
		Str("state_root", cfg.StateRoot.Hex()).
		Msg("fetching proof")

	res, err := Verify(ctx, client, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("proof verification failed")
	}

	event := logger.Info().
		Str("account", res.Account.Hex()).
		Uint64("depth", res.Depth).
		Int("nodes", res.NodeCount).
		Str("storage_root", res.StorageRoot.Hex())
	if res.HasSlot {
		event = event.Str("slot", res.Slot.Hex())
	}
	event.Msg("proof verified")
}
