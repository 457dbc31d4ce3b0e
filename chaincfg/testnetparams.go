// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2022 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/palladium-coin/plmd/wire"
)

// TestNetParams returns the network parameters for the public test network.
// The test network allows minimum difficulty blocks after a delay and is reset
// from time to time, so its values are subject to change.
func TestNetParams() *Params {
	// testNetPowLimit is the highest proof of work value a block can have
	// for the test network.  It is the value 2^224 - 1.
	testNetPowLimit := hexToUint256("00000000ffffffffffffffffffffffffffffffffffffffffffffffffffffffff")

	// genesisBlock defines the genesis block of the block chain which serves
	// as the public transaction ledger for the test network.
	genesisBlock := newGenesisBlock(1296688602, 414098458, 0x1d00ffff)

	return &Params{
		Name:        "testnet",
		Net:         wire.TestNet,
		DefaultPort: "12333",
		DNSSeeds:    nil, // NOTE: There must NOT be any seeds.

		// Chain parameters
		GenesisBlock:                genesisBlock,
		GenesisHash:                 *newHashFromStr("000000000933ea01ad0ee984209779baaec3ced90fa3f408719526f8d77f4943"),
		PowLimit:                    testNetPowLimit,
		PowLimitBits:                0x1d00ffff,
		PowTargetTimespan:           time.Hour * 24,
		PowTargetSpacing:            time.Minute * 2,
		PowTargetSpacingV2:          0,
		LWMAHeight:                  29000,
		LWMAWindow:                  240,
		DifficultyResetStart:        28930,
		DifficultyResetEnd:          29000,
		PowAllowMinDifficultyBlocks: true,
		PowNoRetargeting:            false,
		AuxPowStartHeight:           DisabledHeight,
		AuxPowChainID:               AuxPowChainID,
		GenerateSupported:           false,

		// Checkpoints ordered from oldest to newest.
		Checkpoints: []Checkpoint{
			{0, newHashFromStr("000000000933ea01ad0ee984209779baaec3ced90fa3f408719526f8d77f4943")},
		},

		// Address encoding magics
		PubKeyHashAddrID: 127,
		ScriptHashAddrID: 115,
		PrivateKeyID:     255,
		Bech32HRPSegwit:  "tplm",

		// BIP32 hierarchical deterministic extended key magics
		HDPrivateKeyID: [4]byte{0x04, 0x35, 0x83, 0x94}, // starts with tprv
		HDPublicKeyID:  [4]byte{0x04, 0x35, 0x87, 0xcf}, // starts with tpub
	}
}
