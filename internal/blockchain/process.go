// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2022 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/palladium-coin/plmd/blockchain/standalone"
	"github.com/palladium-coin/plmd/wire"
)

// CheckBlockSanity performs some preliminary checks on a block to ensure it is
// sane before continuing with block processing.  These checks are context
// free.
//
// The proof of work is not checked here since the difficulty a block must
// satisfy depends on its position in the chain.
func CheckBlockSanity(block *wire.MsgBlock) error {
	header := &block.Header
	blockHash := header.BlockHash()

	// A block must have at least one transaction.
	numTx := len(block.Transactions)
	if numTx == 0 {
		return ruleError(ErrNoTransactions, "block does not contain any "+
			"transactions")
	}

	// A block must not exceed the maximum allowed block payload when
	// serialized.
	serializedSize := block.SerializeSize()
	if serializedSize > wire.MaxBlockPayload {
		str := fmt.Sprintf("serialized block is too big - got %d, max %d",
			serializedSize, wire.MaxBlockPayload)
		return ruleError(ErrBlockTooBig, str)
	}

	// The first transaction in a block must be a coinbase.
	transactions := block.Transactions
	if !transactions[0].IsCoinBase() {
		str := fmt.Sprintf("first transaction in block %v is not a coinbase",
			blockHash)
		return ruleError(ErrFirstTxNotCoinbase, str)
	}

	// A block must not have more than one coinbase.
	for i, tx := range transactions[1:] {
		if tx.IsCoinBase() {
			str := fmt.Sprintf("block %v contains second coinbase at index %d",
				blockHash, i+1)
			return ruleError(ErrMultipleCoinbases, str)
		}
	}

	// Check for duplicate transactions.  This check is done before the merkle
	// root check since duplicate transactions can produce the same merkle
	// root as a block without them.
	existingTxHashes := make(map[chainhash.Hash]struct{}, numTx)
	for _, tx := range transactions {
		hash := tx.TxHash()
		if _, exists := existingTxHashes[hash]; exists {
			str := fmt.Sprintf("block %v contains duplicate transaction %v",
				blockHash, hash)
			return ruleError(ErrDuplicateTx, str)
		}
		existingTxHashes[hash] = struct{}{}
	}

	// Build merkle tree and ensure the calculated merkle root matches the
	// entry in the block header.
	calcMerkleRoot := standalone.CalcTxTreeMerkleRoot(transactions)
	if header.MerkleRoot != calcMerkleRoot {
		str := fmt.Sprintf("block merkle root is invalid - block header "+
			"indicates %v, but calculated value is %v", header.MerkleRoot,
			calcMerkleRoot)
		return ruleError(ErrBadMerkleRoot, str)
	}

	// The auxiliary proof of work payload must be present exactly when the
	// header signals it.
	hasAuxPow := block.AuxPow() != nil
	switch {
	case header.IsAuxPow() && !hasAuxPow:
		str := fmt.Sprintf("block %v signals an auxpow but does not carry "+
			"one", blockHash)
		return ruleError(ErrMissingAuxPow, str)
	case !header.IsAuxPow() && hasAuxPow:
		str := fmt.Sprintf("block %v carries an auxpow without signaling "+
			"it in version %#x", blockHash, header.Version)
		return ruleError(ErrAuxPowFlagMismatch, str)
	}

	return nil
}

// checkBlockHeaderPositional performs several validation checks on the block
// header which depend on its position within the block chain.  Failures are
// determined entirely by the header and its ancestors, so they are stable for
// a given block hash.
//
// This function MUST be called with the chain lock held (for reads).
func (b *BlockChain) checkBlockHeaderPositional(header *wire.BlockHeader, prevNode *blockNode) error {
	blockHeight := prevNode.height + 1

	// Ensure the difficulty specified in the block header matches the
	// calculated difficulty based on the previous block and difficulty
	// retarget rules.
	expDiff := b.calcNextRequiredDifficulty(prevNode, header.Timestamp)
	blockDifficulty := header.Bits
	if blockDifficulty != expDiff {
		str := fmt.Sprintf("block difficulty of %08x is not the expected "+
			"value of %08x", blockDifficulty, expDiff)
		return ruleError(ErrUnexpectedDifficulty, str)
	}

	// Ensure the timestamp for the block header is after the median time of
	// the last several blocks (medianTimeBlocks).
	medianTime := prevNode.CalcPastMedianTime()
	if !header.Timestamp.After(medianTime) {
		str := fmt.Sprintf("block timestamp of %v is not after expected %v",
			header.Timestamp, medianTime)
		return ruleError(ErrTimeTooOld, str)
	}

	// Ensure the block signals an auxiliary proof of work exactly when it is
	// active at its height.
	auxPowActive := b.chainParams.IsAuxPowActive(blockHeight)
	switch {
	case auxPowActive && !header.IsAuxPow():
		str := fmt.Sprintf("block at height %d must be secured by an auxpow "+
			"as of height %d", blockHeight, b.chainParams.AuxPowStartHeight)
		return ruleError(ErrAuxPowRequired, str)
	case !auxPowActive && header.IsAuxPow():
		str := fmt.Sprintf("block at height %d signals an auxpow before its "+
			"activation", blockHeight)
		return ruleError(ErrAuxPowNotActive, str)
	}

	// Ensure chain matches up to predetermined checkpoints.
	blockHash := header.BlockHash()
	for _, checkpoint := range b.chainParams.Checkpoints {
		if checkpoint.Height != blockHeight {
			continue
		}
		if *checkpoint.Hash != blockHash {
			str := fmt.Sprintf("block at height %d does not match checkpoint "+
				"hash %v", blockHeight, checkpoint.Hash)
			return ruleError(ErrBadCheckpoint, str)
		}
		log.Infof("Verified checkpoint at height %d/block %v", blockHeight,
			blockHash)
	}

	return nil
}

// checkBlockTime ensures the timestamp of the block header is not too far in
// the future as compared to the current adjusted time.
func (b *BlockChain) checkBlockTime(header *wire.BlockHeader) error {
	maxTimestamp := b.timeSource.AdjustedTime().Add(maxTimeOffset)
	if header.Timestamp.After(maxTimestamp) {
		str := fmt.Sprintf("block timestamp of %v is too far in the future",
			header.Timestamp)
		return ruleError(ErrTimeTooNew, str)
	}
	return nil
}

// checkProofOfWork ensures the block satisfies the proof of work it claims.
// Blocks with an auxiliary proof of work are checked against the hash of the
// parent block it carries while all others are checked against their own hash.
//
// This function MUST be called with the chain lock held (for reads).
func (b *BlockChain) checkProofOfWork(block *wire.MsgBlock) error {
	header := &block.Header
	if header.IsAuxPow() {
		return CheckAuxProofOfWork(block, b.chainParams, b.usedParents)
	}

	blockHash := header.BlockHash()
	err := standalone.CheckProofOfWork(&blockHash, header.Bits,
		b.chainParams.PowLimit)
	if err != nil {
		kind := ErrUnexpectedDifficulty
		if errors.Is(err, standalone.ErrHighHash) {
			kind = ErrHighHash
		}
		return RuleError{
			Err:         MultiError{kind, err},
			Description: err.Error(),
		}
	}
	return nil
}

// maybeAcceptBlock potentially accepts the passed block into the block index
// and, when it extends the best chain, makes it the new tip.  It performs
// several validation checks which depend on its position within the block
// chain before adding it.
//
// This function MUST be called with the chain lock held (for writes).
func (b *BlockChain) maybeAcceptBlock(block *wire.MsgBlock, prevNode *blockNode) error {
	header := &block.Header
	blockHash := header.BlockHash()

	// Rejections that only depend on the header are remembered so the same
	// block is not processed again.
	if err := b.checkBlockHeaderPositional(header, prevNode); err != nil {
		b.recentRejects.Put(blockHash)
		return err
	}
	if err := b.checkBlockTime(header); err != nil {
		return err
	}

	// Rejections of the proof of work of plain blocks only depend on the
	// header while the auxiliary proof of work is not committed to by the
	// block hash, so only the former are remembered.
	if err := b.checkProofOfWork(block); err != nil {
		if !header.IsAuxPow() {
			b.recentRejects.Put(blockHash)
		}
		return err
	}

	// Create a new block node for the block and determine whether it extends
	// the best chain.
	newNode := newBlockNode(header, prevNode)
	var auxParent *chainhash.Hash
	if auxPow := block.AuxPow(); auxPow != nil {
		newNode.auxParent = auxPow.ParentBlockHash()
		auxParent = &newNode.auxParent
	}
	extendsTip := prevNode == b.bestTip

	// Persist the block before updating the in-memory state so a failure
	// leaves both unchanged.
	if b.store != nil {
		stored := StoredBlock{
			Header:    *header,
			Height:    newNode.height,
			AuxParent: auxParent,
		}
		if err := b.store.PutBlock(&stored, extendsTip); err != nil {
			return err
		}
	}

	// Side chain blocks claim their auxpow parent too since they are never
	// connected later.
	b.index.AddNode(newNode)
	if auxParent != nil {
		b.usedParents.Add(auxParent)
	}
	if extendsTip {
		b.bestTip = newNode
		b.progressLogger.LogProgress(block, newNode.height, false)
	} else {
		log.Infof("Accepted side chain block %v at height %d (best chain "+
			"height %d)", blockHash, newNode.height, b.bestTip.height)
	}

	return nil
}

// ProcessBlock is the main workhorse for handling insertion of new blocks into
// the block chain.  It includes functionality such as rejecting duplicate
// blocks, ensuring blocks follow all rules, and insertion into the block index.
//
// Blocks whose parent is not known are rejected with ErrMissingParent and the
// first return value set to true.  They are not kept around, so the caller is
// expected to submit the missing ancestors first.
//
// Blocks that extend the best chain become its new tip.  Valid blocks on side
// chains are added to the block index without ever becoming the tip.
//
// This function is safe for concurrent access.
func (b *BlockChain) ProcessBlock(block *wire.MsgBlock) (bool, error) {
	b.processLock.Lock()
	defer b.processLock.Unlock()

	blockHash := block.BlockHash()
	log.Tracef("Processing block %v", blockHash)
	currentTime := time.Now()
	defer func() {
		elapsedTime := time.Since(currentTime)
		log.Debugf("Block %v (height %d) finished processing in %s",
			blockHash, b.BestSnapshot().Height, elapsedTime)
	}()

	// The block must not already exist.
	if b.index.HaveBlock(&blockHash) {
		str := fmt.Sprintf("already have block %v", blockHash)
		return false, ruleError(ErrDuplicateBlock, str)
	}

	// The block must not be known to be invalid.
	if b.recentRejects.Contains(blockHash) {
		str := fmt.Sprintf("block %v is known to be invalid", blockHash)
		return false, ruleError(ErrKnownInvalidBlock, str)
	}

	// Perform preliminary sanity checks on the block.  The results are not
	// remembered since the transactions and auxiliary proof of work can be
	// mutated without changing the block hash.
	if err := CheckBlockSanity(block); err != nil {
		return false, err
	}

	// The parent of the block must be known.
	prevHash := &block.Header.PrevBlock
	prevNode := b.index.LookupNode(prevHash)
	if prevNode == nil {
		str := fmt.Sprintf("previous block %v is not known", prevHash)
		return true, ruleError(ErrMissingParent, str)
	}

	b.chainLock.Lock()
	err := b.maybeAcceptBlock(block, prevNode)
	b.chainLock.Unlock()
	if err != nil {
		return false, err
	}

	log.Debugf("Accepted block %v", blockHash)
	return false, nil
}
