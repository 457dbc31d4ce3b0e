// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2022 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"time"

	"github.com/decred/dcrd/math/uint256"
	"github.com/palladium-coin/plmd/blockchain/standalone"
	"github.com/palladium-coin/plmd/chaincfg"
)

// lwmaMaxSolveTimeFactor is the multiple of the target spacing a single block
// solve time is clamped to in the LWMA calculation.
const lwmaMaxSolveTimeFactor = 6

// calcLegacyRetarget calculates the required difficulty for the block after
// the provided tip using the classic periodic retarget.  The first timestamp
// is the timestamp of the first block in the retarget interval.
//
// The adjustment is limited to a factor of four in either direction and the
// result never exceeds the proof of work limit.
func calcLegacyRetarget(tip ChainIndexAccessor, firstTimestamp int64, params *chaincfg.Params) uint32 {
	if params.PowNoRetargeting {
		return tip.Bits()
	}

	// Limit the amount of adjustment that can occur to the previous
	// difficulty.
	targetTimespan := int64(params.PowTargetTimespan / time.Second)
	actualTimespan := tip.Timestamp().Unix() - firstTimestamp
	log.Debugf("Actual timespan %d before bounds", actualTimespan)
	minTimespan := targetTimespan / 4
	maxTimespan := targetTimespan * 4
	if actualTimespan < minTimespan {
		actualTimespan = minTimespan
	} else if actualTimespan > maxTimespan {
		actualTimespan = maxTimespan
	}

	// Calculate new target difficulty as:
	//  currentDifficulty * (adjustedTimespan / targetTimespan)
	// The result uses integer division which means it will be slightly
	// rounded down.  The multiplication wraps modulo 2^256.
	oldBits := tip.Bits()
	oldTarget, _, _ := standalone.CompactToUint256(oldBits)
	newTarget := oldTarget
	newTarget.MulUint64(uint64(actualTimespan))
	newTarget.DivUint64(uint64(targetTimespan))

	// Limit new value to the proof of work limit.
	if newTarget.Gt(params.PowLimit) {
		newTarget.Set(params.PowLimit)
	}

	newBits := standalone.Uint256ToCompact(&newTarget)
	log.Debugf("Difficulty retarget at block height %d", tip.Height()+1)
	log.Debugf("Old target %08x (%064x)", oldBits, &oldTarget)
	log.Debugf("New target %08x (%064x)", newBits, &newTarget)
	log.Debugf("Actual timespan %v, target timespan %v",
		time.Duration(actualTimespan)*time.Second, params.PowTargetTimespan)

	return newBits
}

// calcLWMARequiredDifficulty calculates the required difficulty for the block
// after the provided tip using a linearly weighted moving average of the
// targets and solve times of the most recent window of blocks.  More recent
// solve times carry a linearly higher weight.
//
// The proof of work limit is returned while there is not yet a full window of
// history.
func calcLWMARequiredDifficulty(tip ChainIndexAccessor, params *chaincfg.Params) uint32 {
	targetSpacing := int64(params.PowTargetSpacingV2 / time.Second)
	window := params.LWMAWindow
	k := window * (window + 1) * targetSpacing / 2
	height := tip.Height()
	if height == 0 || height < window {
		return params.PowLimitBits
	}
	if targetSpacing == 0 {
		log.Tracef("LWMA: no target spacing, requiring the proof of work limit")
		return params.PowLimitBits
	}
	if window <= 0 || targetSpacing < 0 || k <= 0 {
		log.Errorf("LWMA: invalid parameters (window %d, spacing %d, k %d)",
			window, targetSpacing, k)
		return params.PowLimitBits
	}

	windowStart := tip.AncestorAt(height - window)
	if windowStart == nil {
		log.Errorf("LWMA: unable to find ancestor at height %d", height-window)
		return params.PowLimitBits
	}
	prevTimestamp := windowStart.Timestamp().Unix()

	// Accumulate the targets of the window along with the solve times
	// weighted by their position in the window.  Timestamps that go
	// backwards are treated as equal to the previous one and solve times
	// are clamped to [1, 6*T].
	var sumTarget uint256.Uint256
	var weightedSolveTimes, weight int64
	maxSolveTime := lwmaMaxSolveTimeFactor * targetSpacing
	for i := height - window + 1; i <= height; i++ {
		block := tip.AncestorAt(i)
		if block == nil {
			log.Errorf("LWMA: unable to find ancestor at height %d", i)
			return params.PowLimitBits
		}

		timestamp := block.Timestamp().Unix()
		if timestamp < prevTimestamp {
			timestamp = prevTimestamp
		}
		solveTime := timestamp - prevTimestamp
		if solveTime < 1 {
			solveTime = 1
		} else if solveTime > maxSolveTime {
			solveTime = maxSolveTime
		}
		prevTimestamp = timestamp

		weight++
		weightedSolveTimes += solveTime * weight
		target, _, _ := standalone.CompactToUint256(block.Bits())
		sumTarget.Add(&target)
	}

	// next = (sumTarget / N) * t / (k * T)
	nextTarget := sumTarget.DivUint64(uint64(window))
	nextTarget.MulUint64(uint64(weightedSolveTimes))
	nextTarget.DivUint64(uint64(k * targetSpacing))
	if nextTarget.Gt(params.PowLimit) {
		nextTarget.Set(params.PowLimit)
	}

	return standalone.Uint256ToCompact(nextTarget)
}

// findPrevMinDiffExemptBits returns the difficulty bits of the most recent
// block, starting with the provided tip, which did not have the special
// minimum difficulty rule applied.  The walk stops at the first block that is
// on a retarget boundary for its own height, has bits other than the proof of
// work limit, or has no parent.
func findPrevMinDiffExemptBits(tip ChainIndexAccessor, params *chaincfg.Params) uint32 {
	node := tip
	for node.Height() > 0 {
		interval := params.DifficultyAdjustmentInterval(node.Height())
		if node.Height()%interval == 0 || node.Bits() != params.PowLimitBits {
			break
		}
		parent := node.AncestorAt(node.Height() - 1)
		if parent == nil {
			break
		}
		node = parent
	}
	return node.Bits()
}

// CalcNextRequiredDifficulty calculates the required difficulty for the block
// after the provided tip given the timestamp of the candidate block.
//
// The algorithm is selected by height:
//
//   - Tips within the difficulty reset window require the proof of work limit
//   - Blocks at or after the LWMA height use the LWMA algorithm
//   - Earlier blocks use the legacy retarget once per adjustment interval and
//     otherwise keep the difficulty of the tip, subject to the minimum
//     difficulty rules of networks that allow them
//
// Insufficient history is not an error and results in the proof of work
// limit.
//
// This function is safe for concurrent access.
func CalcNextRequiredDifficulty(tip ChainIndexAccessor, newBlockTime time.Time, params *chaincfg.Params) uint32 {
	if tip == nil {
		return params.PowLimitBits
	}

	// Require the proof of work limit for the blocks leading up to the
	// activation of the new algorithm so its average starts from a known
	// state.
	tipHeight := tip.Height()
	if tipHeight >= params.DifficultyResetStart &&
		tipHeight < params.DifficultyResetEnd {

		log.Debugf("Difficulty reset to limit for LWMA activation window at "+
			"height %d", tipHeight+1)
		return params.PowLimitBits
	}

	nextHeight := tipHeight + 1
	if nextHeight >= params.LWMAHeight {
		return calcLWMARequiredDifficulty(tip, params)
	}

	// Only change the difficulty once per adjustment interval.
	interval := params.DifficultyAdjustmentInterval(nextHeight)
	if nextHeight%interval != 0 {
		if params.PowAllowMinDifficultyBlocks {
			// Return minimum difficulty when more than twice the desired
			// block spacing has elapsed without mining a block.
			maxSpacing := 2 * int64(params.PowTargetSpacing/time.Second)
			if newBlockTime.Unix() > tip.Timestamp().Unix()+maxSpacing {
				return params.PowLimitBits
			}

			// Return the bits of the last block which did not have the
			// special minimum difficulty rule applied.
			return findPrevMinDiffExemptBits(tip, params)
		}
		return tip.Bits()
	}

	// Go back by the adjustment interval worth of blocks to find the first
	// block of the interval.
	first := tip.AncestorAt(tipHeight - (interval - 1))
	if first == nil {
		log.Errorf("Unable to find first block of retarget interval at "+
			"height %d", tipHeight-(interval-1))
		return params.PowLimitBits
	}

	return calcLegacyRetarget(tip, first.Timestamp().Unix(), params)
}

// calcNextRequiredDifficulty calculates the required difficulty for the block
// after the passed previous block node.
func (b *BlockChain) calcNextRequiredDifficulty(prevNode *blockNode, newBlockTime time.Time) uint32 {
	if prevNode == nil {
		return b.chainParams.PowLimitBits
	}
	return CalcNextRequiredDifficulty(prevNode, newBlockTime, b.chainParams)
}

// CalcNextRequiredDifficulty calculates the required difficulty for the block
// after the end of the current best chain based on the difficulty retarget
// rules.
//
// This function is safe for concurrent access.
func (b *BlockChain) CalcNextRequiredDifficulty(timestamp time.Time) uint32 {
	b.chainLock.RLock()
	difficulty := b.calcNextRequiredDifficulty(b.bestChainTip(), timestamp)
	b.chainLock.RUnlock()
	return difficulty
}
