// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
	"github.com/palladium-coin/plmd/blockchain/standalone"
	"github.com/palladium-coin/plmd/chaincfg"
	"github.com/palladium-coin/plmd/wire"
)

const (
	// maxNonce is the maximum value a nonce can be in a block header.
	maxNonce = ^uint32(0) // 2^32 - 1

	// auxPowParentVersion is the version used for parent block headers
	// built for local merge mining.
	auxPowParentVersion = 1
)

// AuxInfo houses the merge mining details advertised alongside a block
// template once the auxiliary proof of work is active.
type AuxInfo struct {
	// Flags is the hex encoded merged mining magic merge miners place in
	// front of the commitment in the parent coinbase.
	Flags string

	// ChainID is the merged mining chain identifier.
	ChainID uint32

	// SubmitOld indicates whether solutions for stale templates are still
	// accepted.  It is always false.
	SubmitOld bool
}

// AuxTemplate returns the merge mining details for a template of a block at
// the provided height or nil when the auxiliary proof of work is not active at
// that height.
func AuxTemplate(params *chaincfg.Params, nextHeight int64) *AuxInfo {
	if !params.IsAuxPowActive(nextHeight) {
		return nil
	}
	return &AuxInfo{
		Flags:     hex.EncodeToString(wire.AuxPowMagic[:]),
		ChainID:   params.AuxPowChainID,
		SubmitOld: false,
	}
}

// TemplateVersion returns the block version to use for a template of a block
// at the provided height.  The auxiliary proof of work version bit is set when
// it is active at that height.
func TemplateVersion(params *chaincfg.Params, nextHeight int64) int32 {
	header := wire.BlockHeader{Version: wire.BaseVersion}
	header.SetAuxPowFlag(params.IsAuxPowActive(nextHeight))
	return header.Version
}

// CheckSubmitConsistency performs the checks done on a block submitted by a
// miner before it is processed.  The block must signal an auxiliary proof of
// work exactly when it is active at the provided height of the block, carry it
// when signaled, and start with a coinbase.
//
// The returned errors have a kind whose string is the BIP22 reject reason.
func CheckSubmitConsistency(block *wire.MsgBlock, nextHeight int64, params *chaincfg.Params) error {
	shouldHaveAuxPow := params.IsAuxPowActive(nextHeight)
	hasAuxPow := block.Header.IsAuxPow()
	log.Debugf("Submitted block %v at height %d: auxpow expected %v, "+
		"signaled %v", block.BlockHash(), nextHeight, shouldHaveAuxPow,
		hasAuxPow)

	switch {
	case shouldHaveAuxPow && !hasAuxPow:
		str := fmt.Sprintf("block at height %d must signal an auxpow in "+
			"version %#x", nextHeight, block.Header.Version)
		return makeError(ErrAuxPowVersionMissing, str)

	case !shouldHaveAuxPow && hasAuxPow:
		str := fmt.Sprintf("block at height %d signals an auxpow before its "+
			"activation at height %d", nextHeight, params.AuxPowStartHeight)
		return makeError(ErrAuxPowUnexpected, str)

	case shouldHaveAuxPow && block.AuxPow() == nil:
		str := fmt.Sprintf("block at height %d signals an auxpow but does "+
			"not carry one", nextHeight)
		return makeError(ErrAuxPowDataMissing, str)
	}

	if len(block.Transactions) == 0 || !block.Transactions[0].IsCoinBase() {
		str := fmt.Sprintf("block %v does not start with a coinbase",
			block.BlockHash())
		return makeError(ErrCoinbaseMissing, str)
	}

	return nil
}

// CheckGenerateAllowed returns an error when blocks at the provided height can
// not be generated with the CPU miner.  Once the auxiliary proof of work is
// active blocks must be merge mined, which is only emulated locally on
// networks that explicitly support it.
func CheckGenerateAllowed(params *chaincfg.Params, nextHeight int64) error {
	if params.IsAuxPowActive(nextHeight) && !params.GenerateSupported {
		str := fmt.Sprintf("blocks at height %d on %s must be merge mined "+
			"with an auxpow as of height %d", nextHeight, params.Name,
			params.AuxPowStartHeight)
		return makeError(ErrGenerateUnsupported, str)
	}
	return nil
}

// auxPowCommitmentScript returns a parent coinbase signature script that
// commits to the provided child block hash.  The hash is stored byte-reversed
// after the merged mining magic and is followed by the size and nonce of the
// merged mining tree, which has a single leaf.
func auxPowCommitmentScript(childHash *chainhash.Hash, extraNonce uint32) []byte {
	script := make([]byte, 0, 1+len(wire.AuxPowMagic)+chainhash.HashSize+8)
	script = append(script, byte(len(wire.AuxPowMagic)+chainhash.HashSize+8))
	script = append(script, wire.AuxPowMagic[:]...)
	for i := chainhash.HashSize - 1; i >= 0; i-- {
		script = append(script, childHash[i])
	}
	script = binary.LittleEndian.AppendUint32(script, 1)
	script = binary.LittleEndian.AppendUint32(script, extraNonce)
	return script
}

// NewAuxPow returns an auxiliary proof of work for the provided child block
// header that uses a copy of the provided parent header.  The parent coinbase
// commits to the child header with its auxiliary proof of work version bit
// cleared and is the only transaction of the parent block, so the merkle
// branches are empty and the parent merkle root is the coinbase hash.
//
// The parent header is not solved.  Use SolveAuxPow for that.
func NewAuxPow(header *wire.BlockHeader, parentTemplate *wire.BlockHeader) *wire.AuxPow {
	childHash := header.PureHash()
	coinbase := wire.NewMsgTx(1)
	prevOut := wire.NewOutPoint(&chainhash.Hash{}, wire.MaxPrevOutIndex)
	sigScript := auxPowCommitmentScript(&childHash, header.Nonce)
	coinbase.AddTxIn(wire.NewTxIn(prevOut, sigScript, nil))
	coinbase.AddTxOut(wire.NewTxOut(0, []byte{opTrue}))
	coinbaseHash := coinbase.TxHash()

	parent := *parentTemplate
	if parent.Version == 0 {
		parent.Version = auxPowParentVersion
	}
	parent.MerkleRoot = standalone.CalcTxTreeMerkleRoot([]*wire.MsgTx{coinbase})

	return &wire.AuxPow{
		CoinbaseTx:   coinbase,
		CoinbaseHash: coinbaseHash,
		ParentBlock:  parent,
	}
}

// SolveAuxPow increments the nonce of the parent block of the provided
// auxiliary proof of work until its hash satisfies the provided difficulty
// bits.  The nonce search starts from the current nonce of the parent header.
//
// The context error is returned when the provided context is cancelled before
// a solution is found.
func SolveAuxPow(ctx context.Context, auxPow *wire.AuxPow, bits uint32, powLimit *uint256.Uint256) error {
	if err := standalone.CheckProofOfWorkRange(bits, powLimit); err != nil {
		return err
	}
	target, _, _ := standalone.CompactToUint256(bits)

	parent := &auxPow.ParentBlock
	hdrBytes, err := parent.Bytes()
	if err != nil {
		str := fmt.Sprintf("unable to serialize parent header: %v", err)
		return makeError(ErrSerializeHeader, str)
	}

	const nonceSerOffset = 76
	startNonce := parent.Nonce
	for i := uint64(0); i <= uint64(maxNonce); i++ {
		// Periodically check for cancellation.
		if i > 0 && i%65535 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		nonce := startNonce + uint32(i)
		binary.LittleEndian.PutUint32(hdrBytes[nonceSerOffset:], nonce)
		hash := chainhash.DoubleHashH(hdrBytes)
		if n := standalone.HashToUint256(&hash); n.LtEq(&target) {
			parent.Nonce = nonce
			log.Tracef("Solved auxpow parent %v for target %08x", hash, bits)
			return nil
		}
	}

	str := fmt.Sprintf("exhausted the nonce range of parent block for "+
		"target %08x", bits)
	return makeError(ErrParentUnsolved, str)
}
