// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/palladium-coin/plmd/blockchain/standalone"
	"github.com/palladium-coin/plmd/chaincfg"
	"github.com/palladium-coin/plmd/wire"
)

// UsedParentSet tracks the parent block hashes of every auxiliary proof of
// work that has already secured an accepted block.  A parent block may only be
// used once.
//
// Implementations are not required to be safe for concurrent access.  The
// owner must hold its own lock across a membership check and the subsequent
// insertion.
type UsedParentSet interface {
	// Contains returns whether the parent block hash was already used.
	Contains(hash *chainhash.Hash) bool

	// Add marks the parent block hash as used.
	Add(hash *chainhash.Hash)
}

// usedParentSet is a map based UsedParentSet.  It has no lock of its own since
// the chain lock guards it.
type usedParentSet map[chainhash.Hash]struct{}

// Contains returns whether the parent block hash was already used.
func (s usedParentSet) Contains(hash *chainhash.Hash) bool {
	_, ok := s[*hash]
	return ok
}

// Add marks the parent block hash as used.
func (s usedParentSet) Add(hash *chainhash.Hash) {
	s[*hash] = struct{}{}
}

// extractAuxPowCommitment locates the merged mining magic in the provided
// coinbase signature script and returns the child block hash that follows it.
// The hash is stored byte-reversed in the script.
func extractAuxPowCommitment(sigScript []byte) (chainhash.Hash, error) {
	magicIdx := bytes.Index(sigScript, wire.AuxPowMagic[:])
	if magicIdx < 0 {
		str := fmt.Sprintf("auxpow magic %x not found in coinbase signature "+
			"script %x", wire.AuxPowMagic, sigScript)
		return chainhash.Hash{}, ruleError(ErrAuxPowMagicMissing, str)
	}

	commitment := sigScript[magicIdx+len(wire.AuxPowMagic):]
	if len(commitment) < chainhash.HashSize {
		str := fmt.Sprintf("auxpow commitment is only %d bytes after the "+
			"magic", len(commitment))
		return chainhash.Hash{}, ruleError(ErrAuxPowCommitmentShort, str)
	}

	var hash chainhash.Hash
	for i := 0; i < chainhash.HashSize; i++ {
		hash[i] = commitment[chainhash.HashSize-1-i]
	}
	return hash, nil
}

// CheckChainMerkleBranch returns the root of the merged mining tree implied by
// the provided commitment hash and the chain merkle branch of the auxiliary
// proof of work.  An empty chain branch means the commitment lives directly in
// the coinbase, so the hash is returned unchanged.
//
// The chain branch is not consulted by CheckAuxProofOfWork.
func CheckChainMerkleBranch(auxPow *wire.AuxPow, hash *chainhash.Hash) chainhash.Hash {
	if len(auxPow.ChainMerkleBranch) == 0 {
		return *hash
	}
	return standalone.CalcMerkleRootFromBranch(hash, auxPow.ChainMerkleBranch,
		auxPow.ChainIndex)
}

// CheckAuxProofOfWork ensures the auxiliary proof of work attached to the
// provided block is valid.  Blocks that do not signal an auxiliary proof of
// work are not subject to it and result in nil since the regular proof of work
// check applies to them instead.
//
// The checks are performed in order and the first failure is returned as a
// RuleError whose kind identifies the reason:
//
//   - The payload must be present
//   - The parent block hash must satisfy the difficulty bits of the block
//   - The coinbase merkle branch must lead to the parent block merkle root
//   - The coinbase must commit to the hash of the block with the auxiliary
//     proof of work version bit cleared
//   - The parent block must not have been used for another accepted block
//
// The used parent set is only consulted.  The caller is responsible for
// adding the parent hash once the block is accepted while still holding the
// lock that guards the set.
func CheckAuxProofOfWork(block *wire.MsgBlock, params *chaincfg.Params, usedParents UsedParentSet) error {
	header := &block.Header
	if !header.IsAuxPow() {
		return nil
	}

	blockHash := header.BlockHash()
	auxPow := block.AuxPow()
	if auxPow == nil {
		str := fmt.Sprintf("block %v signals an auxpow but does not carry "+
			"one", blockHash)
		return ruleError(ErrMissingAuxPow, str)
	}
	if auxPow.CoinbaseTx == nil {
		str := fmt.Sprintf("auxpow of block %v has no coinbase", blockHash)
		return ruleError(ErrAuxPowNoCoinbaseInput, str)
	}
	log.Tracef("Checking auxpow for block %v", blockHash)

	// The parent block hash must satisfy the target of the child block.
	parentHash := auxPow.ParentBlockHash()
	err := standalone.CheckProofOfWork(&parentHash, header.Bits, params.PowLimit)
	if err != nil {
		log.Debugf("Auxpow parent block %v does not meet target %08x: %v",
			parentHash, header.Bits, err)
		str := fmt.Sprintf("auxpow parent block %v of block %v does not "+
			"satisfy the proof of work: %v", parentHash, blockHash, err)
		return RuleError{
			Err:         MultiError{ErrAuxPowParentHighHash, err},
			Description: str,
		}
	}

	// The coinbase must be included in the parent block.
	coinbaseHash := auxPow.CoinbaseTx.TxHash()
	calcRoot := standalone.CalcMerkleRootFromBranch(&coinbaseHash,
		auxPow.MerkleBranch, auxPow.MerkleIndex)
	if calcRoot != auxPow.ParentBlock.MerkleRoot {
		log.Debugf("Auxpow coinbase %v with index %d and %d branch hashes "+
			"calculates merkle root %v, parent has %v", coinbaseHash,
			auxPow.MerkleIndex, len(auxPow.MerkleBranch), calcRoot,
			auxPow.ParentBlock.MerkleRoot)
		str := fmt.Sprintf("auxpow coinbase merkle branch of block %v "+
			"calculates root %v instead of parent merkle root %v", blockHash,
			calcRoot, auxPow.ParentBlock.MerkleRoot)
		return ruleError(ErrAuxPowMerkleMismatch, str)
	}

	// The coinbase must commit to this block.
	if len(auxPow.CoinbaseTx.TxIn) == 0 {
		str := fmt.Sprintf("auxpow coinbase of block %v has no inputs",
			blockHash)
		return ruleError(ErrAuxPowNoCoinbaseInput, str)
	}
	sigScript := auxPow.CoinbaseTx.TxIn[0].SignatureScript
	committed, err := extractAuxPowCommitment(sigScript)
	if err != nil {
		log.Debugf("Auxpow coinbase signature script %s of block %v: %v",
			hex.EncodeToString(sigScript), blockHash, err)
		return err
	}
	pureHash := header.PureHash()
	if committed != pureHash {
		str := fmt.Sprintf("auxpow commits to block %v instead of %v",
			committed, pureHash)
		return ruleError(ErrAuxPowCommitmentMismatch, str)
	}

	// A parent block may only secure a single block.
	if usedParents != nil && usedParents.Contains(&parentHash) {
		str := fmt.Sprintf("auxpow parent block %v was already used",
			parentHash)
		return ruleError(ErrDuplicateAuxPowParent, str)
	}

	log.Tracef("Auxpow of block %v with parent %v passed", blockHash,
		parentHash)
	return nil
}
