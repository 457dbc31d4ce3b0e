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

// MainNetParams returns the network parameters for the main Palladium network.
func MainNetParams() *Params {
	// mainPowLimit is the highest proof of work value a block can have for
	// the main network.  It is the value 2^224 - 1.
	mainPowLimit := hexToUint256("00000000ffffffffffffffffffffffffffffffffffffffffffffffffffffffff")

	// genesisBlock defines the genesis block of the block chain which serves
	// as the public transaction ledger for the main network.
	genesisBlock := newGenesisBlock(1231006505, 2083236893, 0x1d00ffff)

	return &Params{
		Name:        "mainnet",
		Net:         wire.MainNet,
		DefaultPort: "2333",
		DNSSeeds: []string{
			"dnsseed.palladium-coin.store",
			"dnsseed.palladium-coin.com",
			"dnsseed.palladium-coin.net",
			"dnsseed.palladium-coin.org",
			"dnsseed.palladium-coin.xyz",
			"dnsseed.palladium-coin.de",
			"dnsseed.palladiumblockchain.net",
		},

		// Chain parameters
		GenesisBlock:                genesisBlock,
		GenesisHash:                 *newHashFromStr("000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"),
		PowLimit:                    mainPowLimit,
		PowLimitBits:                0x1d00ffff,
		PowTargetTimespan:           time.Hour * 24,
		PowTargetSpacing:            time.Minute * 10,
		PowTargetSpacingV2:          time.Minute * 2,
		LWMAHeight:                  29000,
		LWMAWindow:                  240,
		DifficultyResetStart:        28930,
		DifficultyResetEnd:          29000,
		PowAllowMinDifficultyBlocks: false,
		PowNoRetargeting:            false,
		AuxPowStartHeight:           DisabledHeight,
		AuxPowChainID:               AuxPowChainID,
		GenerateSupported:           false,

		// Checkpoints ordered from oldest to newest.
		Checkpoints: []Checkpoint{
			{0, newHashFromStr("000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f")},
			{1, newHashFromStr("00000000082962e4c2838933cb63507142c1abb748d84b7ddce6bb233d6407e0")},
			{16, newHashFromStr("000000004cc3eca82841f0691e6231b86c3b269e447fa7d6e7221cd42f725390")},
			{69, newHashFromStr("00000000ae75d0169080e9f0ddbcd80827eda623cfe1f4a2b1be6dcd49b916e6")},
			{22170, newHashFromStr("000000000000086425f826a2eb60c588aefd3e0783ddeccf0f4f0c985d348e69")},
			{26619, newHashFromStr("00000000000000d66df607146de7d9b423cf97150beb804d22439d199e868ca9")},
			{28879, newHashFromStr("0000000000000017e9e74b9b403b775098905418b1333e9612f510af66746aa7")},
			{28925, newHashFromStr("0000000000000014351dee34029945d5a4dea299ec8843626695c88b084b4d10")},
			{50000, newHashFromStr("000000000000041fddecba51204a679b15ae47fc8aa658ef4ea7b953445d95e5")},
			{100000, newHashFromStr("0000000000000850eba93bbc491f085e2c79c0c30c497292858c72e90cae69a5")},
			{142892, newHashFromStr("000000000000829a0a4cab2f040151766df64edfe8817c565d101ae12b51411a")},
			{150000, newHashFromStr("00000000000003212d753a62f2dec5b696ab22524cc49ba7cdc0d80c45d0eb18")},
			{200000, newHashFromStr("000000000000221a9e16556453fc86308b260d95d80c14bafaf053a09374e7eb")},
			{250000, newHashFromStr("0000000000012553b0303deaf5f2883deb66c901b6848dd03bb4a34f1774e0d0")},
			{300000, newHashFromStr("0000000000013acdf07a4fb988bbe9824c36eb421478a71c8196cf524dcba143")},
			{308500, newHashFromStr("000000000000693c6a323a828918f994abae9473373285aa22f0ec71fb5d0f39")},
		},

		// Address encoding magics
		PubKeyHashAddrID: 55,
		ScriptHashAddrID: 5,
		PrivateKeyID:     128,
		Bech32HRPSegwit:  "plm",

		// BIP32 hierarchical deterministic extended key magics
		HDPrivateKeyID: [4]byte{0x04, 0x88, 0xad, 0xe4}, // starts with xprv
		HDPublicKeyID:  [4]byte{0x04, 0x88, 0xb2, 0x1e}, // starts with xpub
	}
}
