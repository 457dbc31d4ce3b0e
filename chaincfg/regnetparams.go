// Copyright (c) 2018-2021 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/palladium-coin/plmd/wire"
)

// RegNetParams returns the network parameters for the regression test network.
// This should not be confused with the public test network.  The purpose of
// this network is primarily for unit tests and local merge mining
// experiments, so blocks may be generated with the CPU miner even after
// auxiliary proof of work activates.
//
// Since this network is only intended for unit testing, its values are subject
// to change even if it would cause a hard fork.
func RegNetParams() *Params {
	// regNetPowLimit is the highest proof of work value a block can have
	// for the regression test network.  It is the value 2^255 - 1.
	regNetPowLimit := hexToUint256("7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")

	// genesisBlock defines the genesis block of the block chain which serves
	// as the public transaction ledger for the regression test network.
	genesisBlock := newGenesisBlock(1296688602, 2, 0x207fffff)

	return &Params{
		Name:        "regnet",
		Net:         wire.RegNet,
		DefaultPort: "28444",
		DNSSeeds:    nil, // NOTE: There must NOT be any seeds.

		// Chain parameters
		GenesisBlock:                genesisBlock,
		GenesisHash:                 *newHashFromStr("0f9188f13cb7b2c71f2a335e3a4fc328bf5beb436012afca590b1a11466e2206"),
		PowLimit:                    regNetPowLimit,
		PowLimitBits:                0x207fffff,
		PowTargetTimespan:           time.Hour * 24,
		PowTargetSpacing:            time.Minute * 2,
		PowTargetSpacingV2:          0,
		LWMAHeight:                  29000,
		LWMAWindow:                  240,
		DifficultyResetStart:        28930,
		DifficultyResetEnd:          29000,
		PowAllowMinDifficultyBlocks: true,
		PowNoRetargeting:            true,
		AuxPowStartHeight:           DisabledHeight,
		AuxPowChainID:               AuxPowChainID,
		GenerateSupported:           true,

		// Checkpoints ordered from oldest to newest.
		Checkpoints: []Checkpoint{
			{0, newHashFromStr("0f9188f13cb7b2c71f2a335e3a4fc328bf5beb436012afca590b1a11466e2206")},
		},

		// Address encoding magics
		PubKeyHashAddrID: 127,
		ScriptHashAddrID: 115,
		PrivateKeyID:     255,
		Bech32HRPSegwit:  "rplm",

		// BIP32 hierarchical deterministic extended key magics
		HDPrivateKeyID: [4]byte{0x04, 0x35, 0x83, 0x94}, // starts with tprv
		HDPublicKeyID:  [4]byte{0x04, 0x35, 0x87, 0xcf}, // starts with tpub
	}
}
