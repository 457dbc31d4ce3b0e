// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2022 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
	"github.com/palladium-coin/plmd/blockchain/standalone"
	"github.com/palladium-coin/plmd/chaincfg"
	"github.com/palladium-coin/plmd/wire"
)

// testTimeSource is a TimeSource that always returns the same time.
type testTimeSource time.Time

// AdjustedTime returns the fixed time of the time source.
func (s testTimeSource) AdjustedTime() time.Time {
	return time.Time(s)
}

// testNow is the adjusted time used by test chains.  It is far enough after
// the regression test genesis block that generated blocks are never too new.
var testNow = time.Unix(2000000000, 0)

// newTestChain returns a chain instance for the provided parameters that is
// backed by the provided store, which may be nil.
func newTestChain(t *testing.T, params *chaincfg.Params, store Store) *BlockChain {
	t.Helper()

	chain, err := New(context.Background(), &Config{
		ChainParams: params,
		Store:       store,
		TimeSource:  testTimeSource(testNow),
	})
	if err != nil {
		t.Fatalf("failed to create chain instance: %v", err)
	}
	return chain
}

// newTestCoinbaseTx returns a coinbase transaction whose signature script
// starts with the provided height so coinbases of different blocks are unique.
func newTestCoinbaseTx(height int64, extra []byte) *wire.MsgTx {
	var heightBytes [8]byte
	binary.LittleEndian.PutUint64(heightBytes[:], uint64(height))
	sigScript := append(heightBytes[:], extra...)

	tx := wire.NewMsgTx(1)
	prevOut := wire.NewOutPoint(&chainhash.Hash{}, wire.MaxPrevOutIndex)
	tx.AddTxIn(wire.NewTxIn(prevOut, sigScript, nil))
	tx.AddTxOut(wire.NewTxOut(50*1e8, []byte{0x51}))
	return tx
}

// auxPowCommitmentScript returns a parent coinbase signature script that
// commits to the provided child header.
func auxPowCommitmentScript(header *wire.BlockHeader) []byte {
	pureHash := header.PureHash()
	script := []byte{0x03, 0x01, 0x02, 0x03}
	script = append(script, wire.AuxPowMagic[:]...)
	for i := chainhash.HashSize - 1; i >= 0; i-- {
		script = append(script, pureHash[i])
	}
	return script
}

// solveParentHeader increments the nonce of the provided parent header until
// its hash satisfies the provided difficulty bits.
func solveParentHeader(t *testing.T, parent *wire.BlockHeader, bits uint32, powLimit *uint256.Uint256) {
	t.Helper()

	for i := 0; i < 1000; i++ {
		hash := parent.BlockHash()
		if standalone.CheckProofOfWork(&hash, bits, powLimit) == nil {
			return
		}
		parent.Nonce++
	}
	t.Fatalf("unable to solve parent header for bits %08x", bits)
}

// newTestAuxPow returns an auxiliary proof of work whose parent coinbase has
// the provided signature script and whose parent header has been solved for
// the provided bits when solve is set.
func newTestAuxPow(t *testing.T, sigScript []byte, bits uint32, powLimit *uint256.Uint256, solve bool) *wire.AuxPow {
	t.Helper()

	coinbase := wire.NewMsgTx(1)
	prevOut := wire.NewOutPoint(&chainhash.Hash{}, wire.MaxPrevOutIndex)
	coinbase.AddTxIn(wire.NewTxIn(prevOut, sigScript, nil))
	coinbase.AddTxOut(wire.NewTxOut(25*1e8, []byte{0x51}))
	coinbaseHash := coinbase.TxHash()

	auxPow := &wire.AuxPow{
		CoinbaseTx:   coinbase,
		CoinbaseHash: coinbaseHash,
		ParentBlock: wire.BlockHeader{
			Version:    1,
			MerkleRoot: coinbaseHash,
			Timestamp:  time.Unix(1500000000, 0),
			Bits:       bits,
		},
	}
	if solve {
		solveParentHeader(t, &auxPow.ParentBlock, bits, powLimit)
	}
	return auxPow
}

// attachTestAuxPow sets the auxiliary proof of work version bit of the block
// and attaches a valid auxiliary proof of work that commits to it.
func attachTestAuxPow(t *testing.T, block *wire.MsgBlock, params *chaincfg.Params) {
	t.Helper()

	block.Header.SetAuxPowFlag(true)
	script := auxPowCommitmentScript(&block.Header)
	auxPow := newTestAuxPow(t, script, block.Header.Bits, params.PowLimit, true)
	block.SetAuxPow(auxPow)
}

// solveBlock increments the nonce of the provided block until its hash
// satisfies its difficulty bits.
func solveBlock(t *testing.T, block *wire.MsgBlock, powLimit *uint256.Uint256) {
	t.Helper()

	header := &block.Header
	for i := 0; i < 1000; i++ {
		hash := header.BlockHash()
		if standalone.CheckProofOfWork(&hash, header.Bits, powLimit) == nil {
			return
		}
		header.Nonce++
	}
	t.Fatalf("unable to solve block for bits %08x", header.Bits)
}

// newTestBlock returns a block that extends the block identified by the
// provided parent hash at the given height.  The difficulty bits are the ones
// the chain expects and the block carries a valid proof of work of the kind
// requested.
func newTestBlock(t *testing.T, chain *BlockChain, parentHash *chainhash.Hash, timestamp time.Time, auxPow bool) *wire.MsgBlock {
	t.Helper()

	parent := chain.index.LookupNode(parentHash)
	if parent == nil {
		t.Fatalf("unknown parent %v", parentHash)
	}
	height := parent.height + 1

	coinbase := newTestCoinbaseTx(height, nil)
	block := wire.NewMsgBlock(&wire.BlockHeader{
		Version:    wire.BaseVersion,
		PrevBlock:  *parentHash,
		MerkleRoot: coinbase.TxHash(),
		Timestamp:  timestamp,
		Bits:       chain.calcNextRequiredDifficulty(parent, timestamp),
	})
	block.AddTransaction(coinbase)

	params := chain.chainParams
	if auxPow {
		attachTestAuxPow(t, block, params)
	} else {
		solveBlock(t, block, params.PowLimit)
	}
	return block
}

// testBlockTime returns the timestamp used for a block at the provided height
// of a regression test chain.
func testBlockTime(params *chaincfg.Params, height int64) time.Time {
	genesisTime := params.GenesisBlock.Header.Timestamp
	return genesisTime.Add(time.Duration(height) * params.PowTargetSpacing)
}

// extendTestChain adds the provided number of plain blocks to the tip of the
// best chain and returns them.
func extendTestChain(t *testing.T, chain *BlockChain, numBlocks int) []*wire.MsgBlock {
	t.Helper()

	blocks := make([]*wire.MsgBlock, 0, numBlocks)
	for i := 0; i < numBlocks; i++ {
		best := chain.BestSnapshot()
		timestamp := testBlockTime(chain.chainParams, best.Height+1)
		block := newTestBlock(t, chain, &best.Hash, timestamp, false)
		if _, err := chain.ProcessBlock(block); err != nil {
			t.Fatalf("block at height %d not accepted: %v", best.Height+1, err)
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// checkErrorKind fails the test when the provided error does not match the
// expected error kind.
func checkErrorKind(t *testing.T, name string, err error, want error) {
	t.Helper()

	if !errors.Is(err, want) {
		t.Fatalf("%s: mismatched err -- got %v, want %v", name, err, want)
	}
}
