// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2018 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/palladium-coin/plmd/wire"
)

// genesisSubsidy is the 50 coin output of the genesis coinbase.
const genesisSubsidy = 50 * 1e8

// genesisCoinbaseTx returns the coinbase transaction shared by the genesis
// blocks of every network.  A new transaction is returned on each call so the
// networks never share mutable state.
func genesisCoinbaseTx() *wire.MsgTx {
	return &wire.MsgTx{
		Version: 1,
		TxIn: []*wire.TxIn{{
			// Fully null.
			PreviousOutPoint: wire.OutPoint{
				Hash:  chainhash.Hash{},
				Index: 0xffffffff,
			},
			SignatureScript: hexDecode("04ffff001d0104455468652054696d65" +
				"732030332f4a616e2f32303039204368616e63656c6c6f72206f" +
				"6e206272696e6b206f66207365636f6e64206261696c6f757420" +
				"666f722062616e6b73"),
			Sequence: 0xffffffff,
		}},
		TxOut: []*wire.TxOut{{
			Value: genesisSubsidy,
			PkScript: hexDecode("4104678afdb0fe5548271967f1a67130b7105cd6a8" +
				"28e03909a67962e0ea1f61deb649f6bc3f4cef38c4f35504e51ec1" +
				"12de5c384df7ba0b8d578a4c702b6bf11d5fac"),
		}},
		LockTime: 0,
	}
}

// newGenesisBlock creates a genesis block with the shared coinbase and the
// given header values.  The merkle root is the coinbase hash since it is the
// only transaction.
func newGenesisBlock(timestamp int64, nonce, bits uint32) *wire.MsgBlock {
	coinbase := genesisCoinbaseTx()
	return &wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:    1,
			PrevBlock:  chainhash.Hash{}, // All zero.
			MerkleRoot: coinbase.TxHash(),
			Timestamp:  time.Unix(timestamp, 0),
			Bits:       bits,
			Nonce:      nonce,
		},
		Transactions: []*wire.MsgTx{coinbase},
	}
}
