// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cpuminer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/palladium-coin/plmd/chaincfg"
	"github.com/palladium-coin/plmd/internal/blockchain"
	"github.com/palladium-coin/plmd/internal/mining"
)

// fixedTimeSource is a time source that always returns the same time.
type fixedTimeSource time.Time

// AdjustedTime returns the fixed time of the time source.
func (s fixedTimeSource) AdjustedTime() time.Time {
	return time.Time(s)
}

// newTestMiner returns a CPU miner that mines on an in-memory chain for the
// provided parameters along with the chain.
func newTestMiner(t *testing.T, params *chaincfg.Params) (*CPUMiner, *blockchain.BlockChain) {
	t.Helper()

	timeSource := fixedTimeSource(time.Unix(2000000000, 0))
	chain, err := blockchain.New(context.Background(), &blockchain.Config{
		ChainParams: params,
		TimeSource:  timeSource,
	})
	if err != nil {
		t.Fatalf("failed to create chain instance: %v", err)
	}
	g := mining.NewBlkTmplGenerator(&mining.Config{
		ChainParams:                params,
		TimeSource:                 timeSource,
		BestSnapshot:               chain.BestSnapshot,
		CalcNextRequiredDifficulty: chain.CalcNextRequiredDifficulty,
	})
	miner := New(&Config{
		ChainParams:      params,
		BlkTmplGenerator: g,
		ProcessBlock:     chain.ProcessBlock,
	})
	return miner, chain
}

// TestGenerateNBlocks ensures the discrete mining mode extends the best chain
// with the requested number of blocks including merge mined ones.
func TestGenerateNBlocks(t *testing.T) {
	t.Parallel()

	params := chaincfg.RegNetParams()
	params.AuxPowStartHeight = 3
	miner, chain := newTestMiner(t, params)

	hashes, err := miner.GenerateNBlocks(context.Background(), 0)
	if err != nil || hashes != nil {
		t.Fatalf("unexpected result for no blocks: %v, %v", hashes, err)
	}

	hashes, err = miner.GenerateNBlocks(context.Background(), 5)
	if err != nil {
		t.Fatalf("failed to generate blocks: %v", err)
	}
	if len(hashes) != 5 {
		t.Fatalf("unexpected number of generated blocks %d", len(hashes))
	}
	best := chain.BestSnapshot()
	if best.Height != 5 || best.Hash != *hashes[4] {
		t.Fatalf("unexpected best chain tip %v at height %d", best.Hash,
			best.Height)
	}
	for i, hash := range hashes {
		height := int64(i + 1)
		header, err := chain.HeaderByHash(hash)
		if err != nil {
			t.Fatalf("failed to fetch header %v: %v", hash, err)
		}
		if header.IsAuxPow() != params.IsAuxPowActive(height) {
			t.Fatalf("height %d: unexpected version %#x", height,
				header.Version)
		}
	}
	if miner.IsMining() {
		t.Fatal("miner still mining after discrete mode finished")
	}
}

// TestGenerateNBlocksUnsupported ensures blocks are not mined when they must
// be merge mined on a network that does not support generating them.
func TestGenerateNBlocksUnsupported(t *testing.T) {
	t.Parallel()

	params := chaincfg.RegNetParams()
	params.AuxPowStartHeight = 2
	params.GenerateSupported = false
	miner, chain := newTestMiner(t, params)

	hashes, err := miner.GenerateNBlocks(context.Background(), 3)
	if !errors.Is(err, mining.ErrGenerateUnsupported) {
		t.Fatalf("mismatched err -- got %v, want %v", err,
			mining.ErrGenerateUnsupported)
	}
	if len(hashes) != 1 || chain.BestSnapshot().Height != 1 {
		t.Fatalf("unexpected generated blocks %v", hashes)
	}
}

// TestGenerateNBlocksCancel ensures the discrete mining mode stops when the
// context is cancelled.
func TestGenerateNBlocksCancel(t *testing.T) {
	t.Parallel()

	miner, _ := newTestMiner(t, chaincfg.RegNetParams())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	hashes, err := miner.GenerateNBlocks(ctx, 3)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("mismatched err -- got %v, want %v", err, context.Canceled)
	}
	if len(hashes) != 0 {
		t.Fatalf("unexpected generated blocks %v", hashes)
	}
}

// TestNormalMining ensures the normal mining mode extends the best chain until
// the number of workers is set to zero.
func TestNormalMining(t *testing.T) {
	t.Parallel()

	miner, chain := newTestMiner(t, chaincfg.RegNetParams())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		miner.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	if miner.IsMining() {
		t.Fatal("idle miner reports mining")
	}
	miner.SetNumWorkers(2)
	if !miner.IsMining() || miner.NumWorkers() != 2 {
		t.Fatalf("unexpected mining state with %d workers",
			miner.NumWorkers())
	}

	// Discrete mining is refused while normal mining.
	if _, err := miner.GenerateNBlocks(ctx, 1); err == nil {
		t.Fatal("discrete mining allowed while normal mining")
	}

	deadline := time.After(30 * time.Second)
	for chain.BestSnapshot().Height < 3 {
		select {
		case <-deadline:
			t.Fatalf("timeout waiting for mined blocks (height %d)",
				chain.BestSnapshot().Height)
		case <-time.After(10 * time.Millisecond):
		}
	}

	miner.SetNumWorkers(0)
	if miner.IsMining() || miner.HashesPerSecond() != 0 {
		t.Fatal("miner still mining after stopping workers")
	}

	// Negative values select the default number of workers and large
	// values are limited to the maximum.
	miner.SetNumWorkers(-1)
	if miner.NumWorkers() != int32(defaultNumWorkers) {
		t.Fatalf("unexpected default workers %d", miner.NumWorkers())
	}
	miner.SetNumWorkers(int32(MaxNumWorkers) + 1)
	if miner.NumWorkers() != int32(MaxNumWorkers) {
		t.Fatalf("unexpected max workers %d", miner.NumWorkers())
	}
	miner.SetNumWorkers(0)
}
