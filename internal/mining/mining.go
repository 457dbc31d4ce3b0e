// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2022 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/container/lru"
	"github.com/palladium-coin/plmd/blockchain/standalone"
	"github.com/palladium-coin/plmd/chaincfg"
	"github.com/palladium-coin/plmd/internal/blockchain"
	"github.com/palladium-coin/plmd/wire"
)

const (
	// opTrue is the script opcode that leaves true on the stack, which makes
	// an output redeemable by anyone.
	opTrue = 0x51

	// baseSubsidy is the subsidy of blocks before the first halving in
	// atoms.
	baseSubsidy int64 = 50 * 1e8

	// subsidyHalvingInterval is the number of blocks between subsidy
	// halvings.
	subsidyHalvingInterval = 210000

	// maxNotifiedParents is the maximum number of parent blocks the
	// generator remembers having announced merge mining templates for.
	maxNotifiedParents = 100
)

// Config is a descriptor containing the mining configuration.
type Config struct {
	// ChainParams identifies which chain parameters should be used while
	// generating block templates.
	ChainParams *chaincfg.Params

	// TimeSource defines the time source which is used to retrieve the
	// current time adjusted by the median time offset.  This is used when
	// setting the timestamp in the header of new blocks.
	TimeSource blockchain.TimeSource

	// MiningTimeOffset defines the number of seconds to offset the mining
	// timestamp of a block by (positive values are in the past).
	MiningTimeOffset int

	// BestSnapshot defines the function to use to access information about
	// the current best block.  The returned instance should be treated as
	// immutable.
	BestSnapshot func() *blockchain.BestState

	// CalcNextRequiredDifficulty defines the function to use to calculate
	// the required difficulty for the block after the current best block
	// based on the difficulty retarget rules.
	CalcNextRequiredDifficulty func(timestamp time.Time) uint32
}

// BlockTemplate houses a block that has yet to be solved along with additional
// details needed to solve it.
type BlockTemplate struct {
	// Block is a block that is ready to be solved by miners.  Thus, it is
	// completely valid with the exception of satisfying the proof-of-work
	// requirement.
	Block *wire.MsgBlock

	// Height is the height at which the block template connects to the main
	// chain.
	Height int64

	// Aux houses the merge mining details when the block must be secured by
	// an auxiliary proof of work.  It is nil otherwise.
	Aux *AuxInfo
}

// calcBlockSubsidy returns the subsidy for a block at the provided height.
func calcBlockSubsidy(height int64) int64 {
	halvings := height / subsidyHalvingInterval
	if halvings >= 64 {
		return 0
	}
	return baseSubsidy >> uint(halvings)
}

// serializeScriptNum returns the minimal little-endian encoding of the
// provided non-negative number as used by script number pushes.
func serializeScriptNum(n int64) []byte {
	var result []byte
	for n > 0 {
		result = append(result, byte(n&0xff))
		n >>= 8
	}

	// A set high bit would make the number negative, so add an extra byte.
	if len(result) > 0 && result[len(result)-1]&0x80 != 0 {
		result = append(result, 0)
	}
	return result
}

// standardCoinbaseScript returns a standard script suitable for use as the
// signature script of the coinbase transaction of a new block.  It pushes the
// height of the block followed by an extra nonce which provides additional
// entropy once the header nonce space is exhausted.
func standardCoinbaseScript(nextBlockHeight int64, extraNonce uint64) []byte {
	heightBytes := serializeScriptNum(nextBlockHeight)
	script := make([]byte, 0, len(heightBytes)+10)
	script = append(script, byte(len(heightBytes)))
	script = append(script, heightBytes...)
	script = append(script, 8)
	script = binary.LittleEndian.AppendUint64(script, extraNonce)
	return script
}

// createCoinbaseTx returns a coinbase transaction paying the subsidy of a block
// at the provided height to the provided script.  The output is redeemable by
// anyone when no script is provided.
func createCoinbaseTx(coinbaseScript []byte, nextBlockHeight int64, payScript []byte) *wire.MsgTx {
	if len(payScript) == 0 {
		payScript = []byte{opTrue}
	}

	tx := wire.NewMsgTx(1)
	prevOut := wire.NewOutPoint(&chainhash.Hash{}, wire.MaxPrevOutIndex)
	tx.AddTxIn(wire.NewTxIn(prevOut, coinbaseScript, nil))
	tx.AddTxOut(wire.NewTxOut(calcBlockSubsidy(nextBlockHeight), payScript))
	return tx
}

// UpdateExtraNonce replaces the extra nonce in the coinbase script of the
// provided block template and updates the merkle root of its header
// accordingly.
func UpdateExtraNonce(template *BlockTemplate, extraNonce uint64) {
	block := template.Block
	coinbaseScript := standardCoinbaseScript(template.Height, extraNonce)
	block.Transactions[0].TxIn[0].SignatureScript = coinbaseScript
	block.Header.MerkleRoot = standalone.CalcTxTreeMerkleRoot(
		block.Transactions)
}

// minimumMedianTime returns the minimum allowed timestamp for a block building
// on the end of the current best chain.  In particular, it is one second after
// the median timestamp of the last several blocks per the chain consensus
// rules.
func minimumMedianTime(best *blockchain.BestState) time.Time {
	return best.MedianTime.Add(time.Second)
}

// BlkTmplGenerator provides a type that can be used to generate block templates
// based on the current best chain.
type BlkTmplGenerator struct {
	cfg *Config

	// notifiedParents tracks the parent blocks for which a merge mining
	// template was announced so it is only logged once per parent.
	notifiedParents *lru.Set[chainhash.Hash]
}

// NewBlkTmplGenerator returns a new block template generator for the given
// configuration.
func NewBlkTmplGenerator(cfg *Config) *BlkTmplGenerator {
	return &BlkTmplGenerator{
		cfg:             cfg,
		notifiedParents: lru.NewSet[chainhash.Hash](maxNotifiedParents),
	}
}

// medianAdjustedTime returns the current time adjusted to ensure it is at least
// one second after the median timestamp of the last several blocks per the
// chain consensus rules.
func (g *BlkTmplGenerator) medianAdjustedTime(best *blockchain.BestState) time.Time {
	// The timestamp for the block must not be before the median timestamp
	// of the last several blocks.  Thus, choose the maximum between the
	// current time and one second after the past median time.  The current
	// timestamp is truncated to a second boundary before comparison since a
	// block timestamp does not support a precision greater than one second.
	newTimestamp := g.cfg.TimeSource.AdjustedTime().Truncate(time.Second)
	minTimestamp := minimumMedianTime(best)
	if newTimestamp.Before(minTimestamp) {
		newTimestamp = minTimestamp
	}

	// Adjust by the amount requested from the command line argument.
	newTimestamp = newTimestamp.Add(
		time.Duration(-g.cfg.MiningTimeOffset) * time.Second)

	return newTimestamp
}

// NewBlockTemplate returns a new block template that extends the current best
// chain and pays the block subsidy to the provided script.  The output of the
// coinbase is redeemable by anyone when no script is provided.
//
// The template carries no transactions other than the coinbase.  Its header
// has the difficulty required by the chain and, once the auxiliary proof of
// work is active, the version bit that signals it along with the merge mining
// details in the Aux field.
func (g *BlkTmplGenerator) NewBlockTemplate(payScript []byte, extraNonce uint64) (*BlockTemplate, error) {
	params := g.cfg.ChainParams
	best := g.cfg.BestSnapshot()
	nextHeight := best.Height + 1

	timestamp := g.medianAdjustedTime(best)
	bits := g.cfg.CalcNextRequiredDifficulty(timestamp)
	if err := standalone.CheckProofOfWorkRange(bits, params.PowLimit); err != nil {
		str := fmt.Sprintf("unexpected difficulty %08x for height %d: %v",
			bits, nextHeight, err)
		return nil, makeError(ErrGettingDifficulty, str)
	}

	coinbaseScript := standardCoinbaseScript(nextHeight, extraNonce)
	coinbaseTx := createCoinbaseTx(coinbaseScript, nextHeight, payScript)
	block := wire.NewMsgBlock(&wire.BlockHeader{
		Version:   TemplateVersion(params, nextHeight),
		PrevBlock: best.Hash,
		Timestamp: timestamp,
		Bits:      bits,
	})
	block.AddTransaction(coinbaseTx)
	block.Header.MerkleRoot = standalone.CalcTxTreeMerkleRoot(
		block.Transactions)

	template := &BlockTemplate{
		Block:  block,
		Height: nextHeight,
		Aux:    AuxTemplate(params, nextHeight),
	}
	if template.Aux != nil && !g.notifiedParents.Contains(best.Hash) {
		g.notifiedParents.Put(best.Hash)
		log.Infof("Auxpow active for height %d, templates require merge "+
			"mining with chain id %#08x", nextHeight, template.Aux.ChainID)
	}

	log.Debugf("Created new block template (height %d, bits %08x, version "+
		"%#x)", nextHeight, bits, block.Header.Version)
	return template, nil
}

// IsCurrent returns whether the provided template still extends the current
// best chain.
func (g *BlkTmplGenerator) IsCurrent(template *BlockTemplate) bool {
	return g.cfg.BestSnapshot().Hash == template.Block.Header.PrevBlock
}

// UpdateBlockTime updates the timestamp in the passed header to the current
// time while taking into account the median time of the last several blocks to
// ensure the new time is after that time per the chain consensus rules.
//
// Finally, it will update the target difficulty if needed based on the new time
// for the test networks since their target difficulty can change based upon
// time.
func (g *BlkTmplGenerator) UpdateBlockTime(header *wire.BlockHeader) error {
	best := g.cfg.BestSnapshot()
	if best.Hash != header.PrevBlock {
		str := fmt.Sprintf("template parent %v is no longer the best chain "+
			"tip %v", header.PrevBlock, best.Hash)
		return makeError(ErrGettingDifficulty, str)
	}

	// The new timestamp is potentially adjusted to ensure it comes after
	// the median time of the last several blocks per the chain consensus
	// rules.
	newTimestamp := g.medianAdjustedTime(best)
	header.Timestamp = newTimestamp

	// If running on a network that requires recalculating the difficulty,
	// do so now.
	if g.cfg.ChainParams.PowAllowMinDifficultyBlocks {
		header.Bits = g.cfg.CalcNextRequiredDifficulty(newTimestamp)
	}

	return nil
}
