// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"encoding/hex"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
	"github.com/palladium-coin/plmd/wire"
)

const (
	// AuxPowChainID is the chain identifier merge miners use to place the
	// commitment of this chain in a merged mining tree.  It is the
	// big-endian interpretation of the auxiliary proof of work magic
	// "plm\x01".
	AuxPowChainID = 0x706c6d01

	// DisabledHeight is used for activation heights of rules that never
	// activate on a network.
	DisabledHeight = int64(1<<31 - 1)
)

// Checkpoint identifies a known good point in the block chain.  Using
// checkpoints allows a few optimizations for old blocks during initial download
// and also prevents forks from old blocks.
type Checkpoint struct {
	Height int64
	Hash   *chainhash.Hash
}

// Params defines a Palladium network by its parameters.  These parameters may
// be used by applications to differentiate networks as well as addresses and
// keys for one network from those intended for use on another network.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// Net defines the magic bytes used to identify the network.
	Net wire.CurrencyNet

	// DefaultPort defines the default peer-to-peer port for the network.
	DefaultPort string

	// DNSSeeds defines a list of DNS seeds for the network that are used
	// as one method to discover peers.
	DNSSeeds []string

	// GenesisBlock defines the first block of the chain.
	GenesisBlock *wire.MsgBlock

	// GenesisHash is the starting block hash.
	GenesisHash chainhash.Hash

	// PowLimit defines the highest allowed proof of work value for a block
	// as a uint256.
	PowLimit *uint256.Uint256

	// PowLimitBits defines the highest allowed proof of work value for a
	// block in compact form.
	PowLimitBits uint32

	// PowTargetTimespan is the desired amount of time that should elapse
	// between legacy difficulty retargets.
	PowTargetTimespan time.Duration

	// PowTargetSpacing is the desired amount of time to generate each
	// block before the LWMA algorithm activates.
	PowTargetSpacing time.Duration

	// PowTargetSpacingV2 is the desired amount of time to generate each
	// block once the LWMA algorithm is active.  A zero value disables the
	// LWMA computation and the proof of work limit is required instead.
	PowTargetSpacingV2 time.Duration

	// LWMAHeight is the first block height whose difficulty is computed by
	// the linearly weighted moving average algorithm.
	LWMAHeight int64

	// LWMAWindow is the number of blocks averaged by the LWMA algorithm.
	LWMAWindow int64

	// DifficultyResetStart and DifficultyResetEnd bound the range of parent
	// heights, end exclusive, whose children are required to use the proof
	// of work limit while the network transitions to the LWMA algorithm.
	DifficultyResetStart int64
	DifficultyResetEnd   int64

	// PowAllowMinDifficultyBlocks defines whether the network allows a
	// block at the proof of work limit when enough time has passed without
	// finding a block.  This is really only useful for test networks and
	// should not be set on a main network.
	PowAllowMinDifficultyBlocks bool

	// PowNoRetargeting disables the legacy difficulty retarget so every
	// block uses the difficulty of its parent.
	PowNoRetargeting bool

	// AuxPowStartHeight is the first block height at which blocks must be
	// merge mined with an auxiliary proof of work.  Blocks below it must
	// not carry one.
	AuxPowStartHeight int64

	// AuxPowChainID is the merged mining chain identifier advertised to
	// merge miners.
	AuxPowChainID uint32

	// GenerateSupported specifies whether or not CPU mining is allowed once
	// auxiliary proof of work is active.
	GenerateSupported bool

	// Checkpoints ordered from oldest to newest.
	Checkpoints []Checkpoint

	// Address encoding magics.
	PubKeyHashAddrID byte
	ScriptHashAddrID byte
	PrivateKeyID     byte

	// Bech32HRPSegwit is the human-readable part for segregated witness
	// addresses.
	Bech32HRPSegwit string

	// BIP32 hierarchical deterministic extended key magics.
	HDPrivateKeyID [4]byte
	HDPublicKeyID  [4]byte
}

// DifficultyAdjustmentInterval returns the number of blocks between legacy
// difficulty retargets for a block at the given height.  The interval uses the
// LWMA spacing at and after the LWMA activation height.
func (p *Params) DifficultyAdjustmentInterval(height int64) int64 {
	spacing := p.PowTargetSpacing
	if height >= p.LWMAHeight && p.PowTargetSpacingV2 > 0 {
		spacing = p.PowTargetSpacingV2
	}
	return int64(p.PowTargetTimespan / spacing)
}

// IsAuxPowActive returns whether blocks at the given height must carry an
// auxiliary proof of work.
func (p *Params) IsAuxPowActive(height int64) bool {
	return height >= p.AuxPowStartHeight
}

// LatestCheckpointHeight is the height of the latest checkpoint block in the
// parameters.
func (p *Params) LatestCheckpointHeight() int64 {
	if len(p.Checkpoints) == 0 {
		return 0
	}
	return p.Checkpoints[len(p.Checkpoints)-1].Height
}

// newHashFromStr converts the passed big-endian hex string into a
// chainhash.Hash.  It only differs from the one available in chainhash in that
// it panics on an error since it will only (and must only) be called with
// hard-coded, and therefore known good, hashes.
func newHashFromStr(hexStr string) *chainhash.Hash {
	hash, err := chainhash.NewHashFromStr(hexStr)
	if err != nil {
		panic(err)
	}
	return hash
}

// hexDecode decodes the passed hex string and returns the resulting bytes.  It
// panics if an error occurs.  It is only called with hard-coded values, so the
// only way it can fail is if there is an error in the source code.
func hexDecode(hexStr string) []byte {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		panic("invalid hex string in source file: " + hexStr)
	}
	return b
}

// hexToUint256 converts the passed big-endian hex string into a uint256 and
// will panic if there is an error.  This is only provided for the hard-coded
// constants so errors in the source code can be detected.  It will only (and
// must only) be called with hard-coded values.
func hexToUint256(hexStr string) *uint256.Uint256 {
	if len(hexStr) != 64 {
		panic("uint256 hex must be 64 characters: " + hexStr)
	}
	return new(uint256.Uint256).SetByteSlice(hexDecode(hexStr))
}
