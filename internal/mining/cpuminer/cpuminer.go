// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cpuminer

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/palladium-coin/plmd/blockchain/standalone"
	"github.com/palladium-coin/plmd/chaincfg"
	"github.com/palladium-coin/plmd/internal/blockchain"
	"github.com/palladium-coin/plmd/internal/mining"
	"github.com/palladium-coin/plmd/wire"
)

const (
	// maxNonce is the maximum value a nonce can be in a block header.
	maxNonce = ^uint32(0) // 2^32 - 1

	// hpsUpdateSecs is the number of seconds to wait in between each
	// update to the hashes per second monitor.
	hpsUpdateSecs = 10

	// maxFailedOnParent is the maximum number of solved blocks building on
	// the same parent that may fail to submit before a worker stops mining
	// on that parent.
	maxFailedOnParent uint8 = 4
)

var (
	// MaxNumWorkers is the maximum number of workers that will be allowed for
	// mining and is based on the number of processor cores.  This helps ensure
	// system stays reasonably responsive under heavy load.
	MaxNumWorkers = uint32(runtime.NumCPU() * 2)

	// defaultNumWorkers is the default number of workers to use for mining.
	defaultNumWorkers = uint32(1)

	// littleEndian is a convenience variable since binary.LittleEndian is
	// quite long.
	littleEndian = binary.LittleEndian
)

// speedStats houses tracking information used to monitor the hashing speed of
// the CPU miner.
type speedStats struct {
	totalHashes   atomic.Uint64
	elapsedMicros atomic.Uint64
}

// Config is a descriptor containing the CPU miner configuration.
type Config struct {
	// ChainParams identifies which chain parameters the CPU miner is
	// associated with.
	ChainParams *chaincfg.Params

	// BlkTmplGenerator identifies the instance to use in order to generate
	// block templates that the miner will attempt to solve.
	BlkTmplGenerator *mining.BlkTmplGenerator

	// ProcessBlock defines the function to call with any solved blocks.
	// It typically must run the provided block through the same set of
	// rules and handling as any other block.
	ProcessBlock func(*wire.MsgBlock) (bool, error)

	// PayScript is the script the coinbase of mined blocks pays to.  The
	// coinbase output is redeemable by anyone when it is empty.
	PayScript []byte
}

// CPUMiner provides facilities for solving blocks (mining) using the CPU in a
// concurrency-safe manner.  It consists of two main modes -- a normal mining
// mode that tries to solve blocks continuously and a discrete mining mode,
// which is accessible via GenerateNBlocks, that generates a specific number of
// blocks that extend the main chain.
//
// The normal mining mode consists of two main goroutines -- a speed monitor and
// a controller for additional worker goroutines that generate and solve blocks.
//
// When the CPU miner is first started via the Run method, it will not have any
// workers which means it will be idle.  The number of worker goroutines for the
// normal mining mode can be set via the SetNumWorkers method.
//
// Once the auxiliary proof of work is active, the miner emulates a merge miner
// by building and solving a local parent block for every block it mines.  This
// is only allowed on networks that support generating blocks.
type CPUMiner struct {
	numWorkers atomic.Uint32

	sync.Mutex
	g                 *mining.BlkTmplGenerator
	cfg               *Config
	normalMining      bool
	discreteMining    bool
	submitBlockLock   sync.Mutex
	wg                sync.WaitGroup
	workerWg          sync.WaitGroup
	updateNumWorkers  chan struct{}
	queryHashesPerSec chan float64
	speedStats        map[uint64]*speedStats
	quit              chan struct{}

	// failedOnParents tracks how many solved blocks building on each parent
	// failed to submit.  It is protected by the embedded mutex.
	failedOnParents map[chainhash.Hash]uint8
}

// speedMonitor handles tracking the number of hashes per second the mining
// process is performing.  It must be run as a goroutine.
func (m *CPUMiner) speedMonitor(ctx context.Context) {
	log.Trace("CPU miner speed monitor started")

	var hashesPerSec float64
	ticker := time.NewTicker(time.Second * hpsUpdateSecs)
	defer ticker.Stop()

out:
	for {
		select {
		// Time to update the hashes per second.
		case <-ticker.C:
			// Update the total overall hashes per second to the sum of the
			// hashes per second of each individual worker.
			hashesPerSec = 0
			m.Lock()
			for _, stats := range m.speedStats {
				totalHashes := stats.totalHashes.Swap(0)
				elapsedMicros := stats.elapsedMicros.Swap(0)
				elapsedSecs := (elapsedMicros / 1000000)
				if totalHashes == 0 || elapsedSecs == 0 {
					continue
				}
				hashesPerSec += float64(totalHashes) / float64(elapsedSecs)
			}
			m.Unlock()
			if hashesPerSec != 0 && !math.IsNaN(hashesPerSec) {
				log.Debugf("Hash speed: %6.0f kilohashes/s", hashesPerSec/1000)
			}

		// Request for the number of hashes per second.
		case m.queryHashesPerSec <- hashesPerSec:
			// Nothing to do.

		case <-ctx.Done():
			break out
		}
	}

	m.wg.Done()
	log.Trace("CPU miner speed monitor done")
}

// submitBlock submits the passed block after ensuring it passes all of the
// consensus validation rules.
func (m *CPUMiner) submitBlock(block *wire.MsgBlock, height int64) bool {
	m.submitBlockLock.Lock()
	defer m.submitBlockLock.Unlock()

	_, err := m.cfg.ProcessBlock(block)
	if err != nil {
		if errors.Is(err, blockchain.ErrMissingParent) {
			log.Errorf("Block submitted via CPU miner is an orphan building "+
				"on parent %v", block.Header.PrevBlock)
			return false
		}

		// Anything other than a rule violation is an unexpected error,
		// so log that error as an internal error.
		var rErr blockchain.RuleError
		if !errors.As(err, &rErr) {
			log.Errorf("Unexpected error while processing block submitted via "+
				"CPU miner: %v", err)
			return false
		}

		// Other rule errors should be reported.
		log.Errorf("Block submitted via CPU miner rejected: %v", err)
		return false
	}

	// The block was accepted.
	blockHash := block.BlockHash()
	var powHashStr string
	if auxPow := block.AuxPow(); auxPow != nil {
		powHashStr = ", auxpow parent " + auxPow.ParentBlockHash().String()
	}
	log.Infof("Block submitted via CPU miner accepted (hash %s, height %d%s)",
		blockHash, height, powHashStr)
	return true
}

// randomUint64 returns a cryptographically random uint64 value.
func randomUint64() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return littleEndian.Uint64(b[:]), nil
}

// solveBlock attempts to find some combination of a nonce, extra nonce, and
// current timestamp which makes the header of the passed template hash to a
// value less than the target difficulty.  The timestamp is updated periodically
// and the passed template is modified with all tweaks during this process.
// This means that when the function returns true, the block is ready for
// submission.
//
// This function will return early with false when the provided context is
// cancelled, the template no longer extends the best chain, or an unexpected
// error happens.
func (m *CPUMiner) solveBlock(ctx context.Context, template *mining.BlockTemplate, stats *speedStats) bool {
	// Choose a random extra nonce offset for this block template and
	// worker.
	enOffset, err := randomUint64()
	if err != nil {
		log.Errorf("Unexpected error while generating random extra nonce "+
			"offset: %v", err)
		enOffset = 0
	}

	// Create some convenience variables.
	header := &template.Block.Header
	targetDiff, isNeg, overflows := standalone.CompactToUint256(header.Bits)
	if isNeg || overflows {
		log.Errorf("Unable to convert diff bits %08x to uint256 (negative: %v"+
			", overflows: %v)", header.Bits, isNeg, overflows)
		return false
	}

	// updateSpeedStats is a convenience func to atomically track and update the
	// speed stats from various branches in the code below.
	hashesCompleted := uint64(0)
	start := time.Now()
	updateSpeedStats := func() {
		stats.totalHashes.Add(hashesCompleted)
		elapsedMicros := time.Since(start).Microseconds()
		stats.elapsedMicros.Add(uint64(elapsedMicros))

		hashesCompleted = 0
		start = time.Now()
	}

	// Note that the entire extra nonce range is iterated and the offset is
	// added relying on the fact that overflow will wrap around 0 as
	// provided by the Go spec.  The merkle root changes along with the extra
	// nonce, so the header is serialized again for each extra nonce.
	for extraNonce := uint64(0); ; extraNonce++ {
		mining.UpdateExtraNonce(template, extraNonce+enOffset)

		// Serialize the header once so only the specific bytes that need to
		// be updated can be done in the nonce loop below.
		hdrBytes, err := header.Bytes()
		if err != nil {
			log.Errorf("Unexpected error while serializing header: %v", err)
			return false
		}

		// Search through the entire nonce range for a solution while
		// periodically checking for early quit and stale block conditions
		// along with updates to the speed monitor.
		for nonce := uint32(0); ; nonce++ {
			// Periodically update the speed stats and check for cancellation.
			if nonce > 0 && nonce%65535 == 0 {
				updateSpeedStats()

				select {
				case <-ctx.Done():
					return false

				default:
					// Non-blocking select to fall through
				}

				if err := m.g.UpdateBlockTime(header); err != nil {
					log.Debugf("Abandoning stale template: %v", err)
					return false
				}

				// Update time in the serialized header bytes directly too since
				// it might have changed.
				const timestampOffset = 68
				timestamp := uint32(header.Timestamp.Unix())
				littleEndian.PutUint32(hdrBytes[timestampOffset:], timestamp)
			}

			// Update the nonce in the serialized header bytes directly and
			// compute the block header hash.
			const nonceSerOffset = 76
			littleEndian.PutUint32(hdrBytes[nonceSerOffset:], nonce)
			hash := chainhash.DoubleHashH(hdrBytes)
			hashesCompleted++

			// The block is solved when the new block hash is less than the
			// target difficulty.  Yay!
			if n := standalone.HashToUint256(&hash); n.LtEq(&targetDiff) {
				header.Nonce = nonce
				updateSpeedStats()
				return true
			}

			if nonce == maxNonce {
				updateSpeedStats()
				break
			}
		}
	}
}

// solveAuxBlock attaches an auxiliary proof of work to the block of the passed
// template by building a local parent block that commits to it and solving the
// parent for the target of the block.  The header nonce is advanced whenever
// the nonce range of the parent is exhausted so the commitment changes.
//
// This function will return early with false when the provided context is
// cancelled or an unexpected error happens.
func (m *CPUMiner) solveAuxBlock(ctx context.Context, template *mining.BlockTemplate) bool {
	block := template.Block
	header := &block.Header
	params := m.cfg.ChainParams
	parentTemplate := wire.BlockHeader{
		Timestamp: header.Timestamp,
		Bits:      header.Bits,
	}
	for {
		auxPow := mining.NewAuxPow(header, &parentTemplate)
		err := mining.SolveAuxPow(ctx, auxPow, header.Bits, params.PowLimit)
		if errors.Is(err, mining.ErrParentUnsolved) {
			header.Nonce++
			continue
		}
		if err != nil {
			if ctx.Err() == nil {
				log.Errorf("Unable to solve auxpow parent: %v", err)
			}
			return false
		}
		block.SetAuxPow(auxPow)
		return true
	}
}

// solveTemplate solves the passed template with the kind of proof of work that
// is required at its height.
func (m *CPUMiner) solveTemplate(ctx context.Context, template *mining.BlockTemplate, stats *speedStats) bool {
	if template.Aux != nil {
		return m.solveAuxBlock(ctx, template)
	}
	return m.solveBlock(ctx, template, stats)
}

// newTemplate returns a new block template for the miner or nil when one could
// not be created or CPU mining is not allowed at the next height.
func (m *CPUMiner) newTemplate() *mining.BlockTemplate {
	template, err := m.g.NewBlockTemplate(m.cfg.PayScript, 0)
	if err != nil {
		log.Errorf("Failed to create new block template: %v", err)
		return nil
	}
	err = mining.CheckGenerateAllowed(m.cfg.ChainParams, template.Height)
	if err != nil {
		log.Errorf("Unable to mine block at height %d: %v", template.Height,
			err)
		return nil
	}
	return template
}

// generateBlocks is a worker that is controlled by the miningWorkerController.
//
// It is self contained in that it creates block templates that build on the
// current best chain, attempts to solve them, and submits the solved blocks.
// Templates that no longer extend the best chain are abandoned in favor of new
// ones.  It also stops mining on a parent once too many blocks building on it
// failed to submit.
//
// It must be run as a goroutine.
func (m *CPUMiner) generateBlocks(ctx context.Context, workerID uint64) {
	log.Trace("Starting generate blocks worker")
	defer func() {
		m.workerWg.Done()
		log.Trace("Generate blocks worker done")
	}()

	// Create a new state for tracking speed stats and add it to the global
	// map that the speed monitor periodically polls.
	var speedStats speedStats
	m.Lock()
	m.speedStats[workerID] = &speedStats
	m.Unlock()
	defer func() {
		m.Lock()
		delete(m.speedStats, workerID)
		m.Unlock()
	}()

	for ctx.Err() == nil {
		template := m.newTemplate()
		if template == nil {
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
			continue
		}

		// Don't try to mine any more blocks when the maximum number of
		// alternatives building on the current parent that fail to submit
		// has been reached.
		prevBlock := template.Block.Header.PrevBlock
		m.Lock()
		for k := range m.failedOnParents {
			if k != prevBlock {
				delete(m.failedOnParents, k)
			}
		}
		maxBlocksOnParent := m.failedOnParents[prevBlock] >= maxFailedOnParent
		m.Unlock()
		if maxBlocksOnParent {
			log.Infof("Too many blocks mined on parent %v failed to submit, "+
				"waiting for a new parent", prevBlock)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
			continue
		}

		// Attempt to solve the block.
		//
		// The function will exit with false if the block was not solved for
		// any reason such as the context being cancelled or the template
		// becoming stale, so allow it to loop around to potentially try
		// again in that case.
		if !m.solveTemplate(ctx, template, &speedStats) {
			continue
		}

		// Avoid submitting any solutions that might have been found in
		// between the time a worker was signalled to stop and it actually
		// stopping.
		if ctx.Err() != nil {
			return
		}

		if !m.submitBlock(template.Block, template.Height) {
			m.Lock()
			m.failedOnParents[prevBlock]++
			m.Unlock()
		}
	}
}

// miningWorkerController launches the worker goroutines that are used to
// generate and solve blocks.  It also provides the ability to dynamically
// adjust the number of running worker goroutines.
//
// It must be run as a goroutine.
func (m *CPUMiner) miningWorkerController(ctx context.Context) {
	// launchWorker groups common code to launch a worker for generating and
	// solving blocks.
	type workerState struct {
		cancel context.CancelFunc
	}
	var curWorkerID uint64
	var runningWorkers []workerState
	launchWorker := func() {
		wCtx, wCancel := context.WithCancel(ctx)
		runningWorkers = append(runningWorkers, workerState{
			cancel: wCancel,
		})

		m.workerWg.Add(1)
		go m.generateBlocks(wCtx, curWorkerID)
		curWorkerID++
	}

out:
	for {
		select {
		// Update the number of running workers.
		case <-m.updateNumWorkers:
			numRunning := uint32(len(runningWorkers))
			numWorkers := m.numWorkers.Load()

			// No change.
			if numWorkers == numRunning {
				continue
			}

			// Add new workers.
			if numWorkers > numRunning {
				numToLaunch := numWorkers - numRunning
				for i := uint32(0); i < numToLaunch; i++ {
					launchWorker()
				}
				log.Debugf("Launched %d %s (%d total running)", numToLaunch,
					pickNoun(uint64(numToLaunch), "worker", "workers"),
					numWorkers)
				continue
			}

			// Signal the most recently created goroutines to exit.
			numToStop := numRunning - numWorkers
			for i := uint32(0); i < numToStop; i++ {
				finalWorkerIdx := numRunning - 1 - i
				runningWorkers[finalWorkerIdx].cancel()
				runningWorkers[finalWorkerIdx].cancel = nil
				runningWorkers = runningWorkers[:finalWorkerIdx]
			}
			log.Debugf("Stopped %d %s (%d total running)", numToStop,
				pickNoun(uint64(numToStop), "worker", "workers"), numWorkers)

		case <-ctx.Done():
			// Signal all of the workers to shut down.
			for _, state := range runningWorkers {
				state.cancel()
			}
			break out
		}
	}

	// Wait until all workers shut down.
	m.workerWg.Wait()
	m.wg.Done()
}

// Run starts the CPU miner with zero workers which means it will be idle. It
// blocks until the provided context is cancelled.
//
// Use the SetNumWorkers method to start solving blocks in the normal mining
// mode.
func (m *CPUMiner) Run(ctx context.Context) {
	log.Trace("Starting CPU miner in idle state")

	m.wg.Add(3)
	go m.speedMonitor(ctx)
	go m.miningWorkerController(ctx)
	go func(ctx context.Context) {
		<-ctx.Done()
		close(m.quit)
		m.wg.Done()
	}(ctx)

	m.wg.Wait()
	log.Trace("CPU miner stopped")
}

// IsMining returns whether or not the CPU miner is currently mining in either
// the normal or discrete mining modes.
//
// This function is safe for concurrent access.
func (m *CPUMiner) IsMining() bool {
	m.Lock()
	defer m.Unlock()

	return m.normalMining || m.discreteMining
}

// HashesPerSecond returns the number of hashes per second the normal mode
// mining process is performing.  0 is returned if the miner is not currently
// mining anything in normal mining mode.
//
// This function is safe for concurrent access.
func (m *CPUMiner) HashesPerSecond() float64 {
	m.Lock()
	defer m.Unlock()

	// Nothing to do if the miner is not currently mining anything.
	if !m.normalMining {
		return 0
	}

	var hashesPerSec float64
	select {
	case hps := <-m.queryHashesPerSec:
		hashesPerSec = hps
	case <-m.quit:
	}

	return hashesPerSec
}

// SetNumWorkers sets the number of workers to create for solving blocks in the
// normal mining mode.  Negative values cause the default number of workers to
// be used, values larger than the max allowed are limited to the max, and a
// value of 0 causes all normal mode CPU mining to be stopped.
//
// NOTE: This will have no effect if discrete mining mode is currently active
// via GenerateNBlocks.
//
// This function is safe for concurrent access.
func (m *CPUMiner) SetNumWorkers(numWorkers int32) {
	m.Lock()
	defer m.Unlock()

	// Ignore when the miner is in discrete mode
	if m.discreteMining {
		return
	}

	// Use default number of workers if the provided value is negative or limit
	// it to the maximum allowed if needed.
	targetNumWorkers := uint32(numWorkers)
	if numWorkers < 0 {
		targetNumWorkers = defaultNumWorkers
	} else if targetNumWorkers > MaxNumWorkers {
		targetNumWorkers = MaxNumWorkers
	}
	m.numWorkers.Store(targetNumWorkers)

	// Set the normal mining state accordingly.
	m.normalMining = targetNumWorkers != 0

	// Notify the controller about the change.
	select {
	case m.updateNumWorkers <- struct{}{}:
	case <-m.quit:
	}
}

// NumWorkers returns the number of workers which are running to solve blocks
// in the normal mining mode.
//
// This function is safe for concurrent access.
func (m *CPUMiner) NumWorkers() int32 {
	return int32(m.numWorkers.Load())
}

// GenerateNBlocks generates the requested number of blocks in the discrete
// mining mode and returns a list of the hashes of generated blocks that were
// added to the main chain.
//
// Note that this will only consider blocks successfully added to the main
// chain in the overall count, so, upon returning, the list of hashes will only
// contain the hashes of those blocks.
//
// An error is returned without mining anything when blocks at the next height
// must be merge mined on a network that does not support generating them.
func (m *CPUMiner) GenerateNBlocks(ctx context.Context, n uint32) ([]*chainhash.Hash, error) {
	// Nothing to do.
	if n == 0 {
		return nil, nil
	}

	// Respond with an error if already mining.
	m.Lock()
	if m.normalMining {
		m.Unlock()
		return nil, errors.New("already CPU mining -- stop continuous " +
			"mining before generating a discrete number of blocks")
	}
	if m.discreteMining {
		m.Unlock()
		return nil, errors.New("already discrete mining -- please wait " +
			"until the existing call completes or cancel it")
	}

	m.discreteMining = true
	m.Unlock()
	defer func() {
		m.Lock()
		m.discreteMining = false
		m.Unlock()
	}()

	log.Tracef("Generating %d blocks", n)

	blockHashes := make([]*chainhash.Hash, 0, n)
	var stats speedStats
	for uint32(len(blockHashes)) < n {
		select {
		case <-ctx.Done():
			log.Tracef("Generated %d blocks", len(blockHashes))
			return blockHashes, ctx.Err()
		case <-m.quit:
			log.Tracef("Generated %d blocks", len(blockHashes))
			return blockHashes, nil
		default:
		}

		template, err := m.g.NewBlockTemplate(m.cfg.PayScript, 0)
		if err != nil {
			return blockHashes, err
		}
		err = mining.CheckGenerateAllowed(m.cfg.ChainParams, template.Height)
		if err != nil {
			return blockHashes, err
		}

		// Attempt to solve the block and record its hash only when it was
		// successfully submitted to the main chain.
		if m.solveTemplate(ctx, template, &stats) {
			if m.submitBlock(template.Block, template.Height) {
				blockHash := template.Block.BlockHash()
				blockHashes = append(blockHashes, &blockHash)
			}
		}
	}

	log.Tracef("Generated %d blocks", len(blockHashes))
	return blockHashes, nil
}

// New returns a new instance of a CPU miner for the provided configuration
// options.
//
// Use Run to initialize the CPU miner and then either use SetNumWorkers with a
// non-zero value to start the normal continuous mining mode or use
// GenerateNBlocks to mine a discrete number of blocks.
//
// See the documentation for CPUMiner type for more details.
func New(cfg *Config) *CPUMiner {
	miner := &CPUMiner{
		g:                 cfg.BlkTmplGenerator,
		cfg:               cfg,
		updateNumWorkers:  make(chan struct{}),
		queryHashesPerSec: make(chan float64),
		speedStats:        make(map[uint64]*speedStats),
		failedOnParents:   make(map[chainhash.Hash]uint8),
		quit:              make(chan struct{}),
	}
	miner.numWorkers.Store(defaultNumWorkers)
	return miner
}
