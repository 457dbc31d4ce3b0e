// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2024 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/palladium-coin/plmd/internal/blockchain"
	"github.com/palladium-coin/plmd/internal/mining"
	"github.com/palladium-coin/plmd/internal/mining/cpuminer"
	"github.com/palladium-coin/plmd/internal/version"
)

// softMemLimit is the soft upper memory limit imposed on the Go runtime.
const softMemLimit = 1 << 30 // 1 GiB

// decodePayScript decodes the hex encoded coinbase pay script.
func decodePayScript(payScript string) ([]byte, error) {
	return hex.DecodeString(payScript)
}

// runMiner runs the CPU miner according to the configuration until the provided
// context is cancelled.  When a number of blocks to generate is configured, it
// mines them in the discrete mining mode and requests shutdown once done.
func runMiner(ctx context.Context, cfg *config, chain *blockchain.BlockChain) {
	params := cfg.params
	payScript, _ := decodePayScript(cfg.PayScript)
	g := mining.NewBlkTmplGenerator(&mining.Config{
		ChainParams:                params,
		TimeSource:                 blockchain.NewSystemTimeSource(),
		BestSnapshot:               chain.BestSnapshot,
		CalcNextRequiredDifficulty: chain.CalcNextRequiredDifficulty,
	})
	miner := cpuminer.New(&cpuminer.Config{
		ChainParams:      params,
		BlkTmplGenerator: g,
		ProcessBlock:     chain.ProcessBlock,
		PayScript:        payScript,
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		miner.Run(ctx)
		wg.Done()
	}()
	defer wg.Wait()

	if cfg.NumBlocks == 0 {
		minrLog.Infof("Starting continuous CPU mining with %d %s",
			cfg.MiningWorkers, pickNoun(uint64(cfg.MiningWorkers), "worker",
				"workers"))
		miner.SetNumWorkers(cfg.MiningWorkers)
		<-ctx.Done()
		return
	}

	hashes, err := miner.GenerateNBlocks(ctx, cfg.NumBlocks)
	switch {
	case errors.Is(err, context.Canceled):
	case err != nil:
		minrLog.Errorf("Failed to generate blocks: %v", err)
	}
	minrLog.Infof("Generated %d %s, best block now %v (height %d)",
		len(hashes), pickNoun(uint64(len(hashes)), "block", "blocks"),
		chain.BestSnapshot().Hash, chain.BestSnapshot().Height)
	requestShutdown()
}

// plmdMain is the real main function for plmd.  It is necessary to work around
// the fact that deferred functions do not run when os.Exit() is called.
func plmdMain() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	cfg, _, err := loadConfig(appName, os.Args[1:])
	if err != nil {
		usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
		fmt.Fprintln(os.Stderr, err)
		var e errSuppressUsage
		if !errors.As(err, &e) {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return err
	}
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	// Get a context that will be canceled when a shutdown signal has been
	// triggered either from an OS signal such as SIGINT (Ctrl+C) or from
	// another subsystem such as the miner.
	ctx := shutdownListener()
	defer plmdLog.Info("Shutdown complete")

	// Show version and home dir at startup.
	plmdLog.Infof("Version %s (Go version %s %s/%s)", version.String(),
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
	plmdLog.Infof("Home dir: %s", cfg.HomeDir)
	plmdLog.Infof("Active network: %s (auxpow start height %d)",
		cfg.params.Name, cfg.params.AuxPowStartHeight)
	if cfg.NoFileLogging {
		plmdLog.Info("File logging disabled")
	}
	debug.SetMemoryLimit(softMemLimit)

	// Return now if a shutdown signal was triggered.
	if shutdownRequested(ctx) {
		return nil
	}

	// Load the block database.
	db, err := blockchain.LoadBlockDB(cfg.params, cfg.DataDir)
	if err != nil {
		plmdLog.Errorf("%v", err)
		return err
	}
	defer func() {
		// Ensure the database is sync'd and closed on shutdown.
		plmdLog.Infof("Gracefully shutting down the block database...")
		db.Close()
	}()

	// Return now if a shutdown signal was triggered.
	if shutdownRequested(ctx) {
		return nil
	}

	chain, err := blockchain.New(ctx, &blockchain.Config{
		ChainParams: cfg.params,
		Store:       blockchain.NewLevelDbStore(db),
	})
	if err != nil {
		plmdLog.Errorf("Unable to load the chain: %v", err)
		return err
	}
	best := chain.BestSnapshot()
	plmdLog.Infof("Chain tip %v at height %d", best.Hash, best.Height)

	if cfg.Generate {
		runMiner(ctx, cfg, chain)
	}

	// Wait until shutdown is requested.
	<-ctx.Done()
	return nil
}

func main() {
	// Work around defer not working after os.Exit()
	if err := plmdMain(); err != nil {
		os.Exit(1)
	}
}
