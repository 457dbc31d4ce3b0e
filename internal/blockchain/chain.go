// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2022 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/container/lru"
	"github.com/decred/dcrd/math/uint256"
	"github.com/palladium-coin/plmd/chaincfg"
	"github.com/palladium-coin/plmd/internal/progresslog"
	"github.com/palladium-coin/plmd/wire"
)

const (
	// maxRecentRejects is the maximum number of recently rejected block
	// hashes to track.
	maxRecentRejects = 1000

	// maxTimeOffset is the maximum amount of time a block timestamp is
	// allowed to be ahead of the adjusted time.
	maxTimeOffset = 2 * time.Hour
)

// TimeSource provides the current time used to judge whether block timestamps
// are too far in the future.
type TimeSource interface {
	// AdjustedTime returns the current time with a one second precision.
	AdjustedTime() time.Time
}

// systemTimeSource is a TimeSource backed by the local clock.
type systemTimeSource struct{}

// AdjustedTime returns the local time truncated to one second precision.
func (systemTimeSource) AdjustedTime() time.Time {
	return time.Unix(time.Now().Unix(), 0)
}

// NewSystemTimeSource returns a TimeSource backed by the local clock.
func NewSystemTimeSource() TimeSource {
	return systemTimeSource{}
}

// BestState houses information about the current best block and other info
// related to the state of the main chain as it exists from the point of view of
// the current best block.
//
// The BestSnapshot method can be used to obtain access to this information
// in a concurrent safe manner.  The returned value is a copy and is safe to
// modify.
type BestState struct {
	Hash       chainhash.Hash  // The hash of the block.
	PrevHash   chainhash.Hash  // The previous block hash.
	Height     int64           // The height of the block.
	Bits       uint32          // The difficulty bits of the block.
	MedianTime time.Time       // Median time as per CalcPastMedianTime.
	WorkSum    uint256.Uint256 // The total work of the chain.
}

// newBestState returns a new best state instance for the given node.
func newBestState(node *blockNode) *BestState {
	var prevHash chainhash.Hash
	if node.parent != nil {
		prevHash = node.parent.hash
	}
	return &BestState{
		Hash:       node.hash,
		PrevHash:   prevHash,
		Height:     node.height,
		Bits:       node.bits,
		MedianTime: node.CalcPastMedianTime(),
		WorkSum:    node.workSum,
	}
}

// BlockChain provides functions for working with the block chain.  It includes
// functionality such as rejecting blocks that do not satisfy the difficulty
// and auxiliary proof of work rules, tracking the best chain, and persisting
// accepted headers.
type BlockChain struct {
	// The following fields are set when the instance is created and can't
	// be changed afterwards, so there is no need to protect them with a
	// separate mutex.
	chainParams    *chaincfg.Params
	store          Store
	timeSource     TimeSource
	progressLogger *progresslog.Logger

	// processLock protects concurrent access to overall chain processing.
	processLock sync.Mutex

	// chainLock protects concurrent access to the vast majority of the
	// fields in this struct below this point.
	chainLock sync.RWMutex

	// index houses the entire block index in memory.  The block index is
	// a tree-shaped structure.  It has its own lock, however it is often
	// also protected by the chain lock to help prevent logic races when
	// blocks are being processed.
	index *blockIndex

	// bestTip is the tip of the best chain.  Blocks only ever extend it, so
	// side chain blocks are indexed but never become the tip.
	bestTip *blockNode

	// usedParents houses the parent block hash of every auxiliary proof of
	// work that secured an accepted block.  It is protected by the chain lock
	// so that the membership check done while verifying a block and the
	// insertion done once it is accepted are atomic.
	usedParents usedParentSet

	// recentRejects tracks blocks whose headers recently failed validation
	// so they are rejected without repeating the work.  It has its own lock.
	recentRejects *lru.Set[chainhash.Hash]
}

// Config is a descriptor which specifies the blockchain instance configuration.
type Config struct {
	// ChainParams identifies which chain parameters the chain is associated
	// with.
	//
	// This field is required.
	ChainParams *chaincfg.Params

	// Store defines the persistent storage for the block index and used
	// auxiliary proof of work parents.
	//
	// This field can be nil in which case the chain only lives in memory.
	Store Store

	// TimeSource defines the time source used to reject blocks with
	// timestamps too far in the future.
	//
	// This field can be nil in which case the local clock is used.
	TimeSource TimeSource
}

// bestChainTip returns the tip of the best chain.
//
// This function MUST be called with the chain lock held (for reads).
func (b *BlockChain) bestChainTip() *blockNode {
	return b.bestTip
}

// createChainState initializes both the in-memory chain state and the store
// to contain only the genesis block.
func (b *BlockChain) createChainState() error {
	genesis := b.chainParams.GenesisBlock
	node := newBlockNode(&genesis.Header, nil)
	if node.hash != b.chainParams.GenesisHash {
		return AssertError(fmt.Sprintf("genesis block hash %v does not match "+
			"expected %v", node.hash, b.chainParams.GenesisHash))
	}

	if b.store != nil {
		stored := StoredBlock{Header: genesis.Header, Height: 0}
		if err := b.store.PutBlock(&stored, true); err != nil {
			return err
		}
	}

	b.index.AddNode(node)
	b.bestTip = node
	return nil
}

// loadChainState rebuilds the block index, the best chain tip, and the used
// auxiliary proof of work parents from the store.
func (b *BlockChain) loadChainState(ctx context.Context, tipHash *chainhash.Hash) error {
	log.Info("Loading block index...")
	blocks, err := b.store.FetchBlocks()
	if err != nil {
		return err
	}

	for i := range blocks {
		if i%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		stored := &blocks[i]
		var parent *blockNode
		if stored.Height == 0 {
			hash := stored.Header.BlockHash()
			if hash != b.chainParams.GenesisHash {
				str := fmt.Sprintf("stored genesis block %v does not match "+
					"expected %v", hash, b.chainParams.GenesisHash)
				return contextError(ErrDBCorruption, str)
			}
		} else {
			parent = b.index.LookupNode(&stored.Header.PrevBlock)
			if parent == nil {
				str := fmt.Sprintf("stored block at height %d references "+
					"unknown parent %v", stored.Height,
					stored.Header.PrevBlock)
				return contextError(ErrDBCorruption, str)
			}
		}

		node := newBlockNode(&stored.Header, parent)
		if node.height != stored.Height {
			str := fmt.Sprintf("stored block %v has height %d instead of %d",
				node.hash, stored.Height, node.height)
			return contextError(ErrDBCorruption, str)
		}
		if stored.AuxParent != nil {
			node.auxParent = *stored.AuxParent
		}
		b.index.AddNode(node)
	}

	tip := b.index.LookupNode(tipHash)
	if tip == nil {
		str := fmt.Sprintf("best chain tip %v is not in the block index",
			tipHash)
		return contextError(ErrDBCorruption, str)
	}
	b.bestTip = tip

	parents, err := b.store.FetchUsedParents()
	if err != nil {
		return err
	}
	for i := range parents {
		b.usedParents.Add(&parents[i])
	}

	log.Infof("Loaded %d blocks and %d used auxpow parents", len(blocks),
		len(parents))
	return nil
}

// initChainState attempts to load and initialize the chain state from the
// store.  When the store does not yet contain any chain state, both it and
// the chain state are initialized to the genesis block.
func (b *BlockChain) initChainState(ctx context.Context) error {
	if b.store == nil {
		return b.createChainState()
	}

	if err := b.store.InitInfo(); err != nil {
		return err
	}
	tipHash, err := b.store.FetchTip()
	if err != nil {
		return err
	}
	if tipHash == nil {
		log.Info("Creating new chain state with the genesis block")
		return b.createChainState()
	}
	return b.loadChainState(ctx, tipHash)
}

// BestSnapshot returns information about the current best chain block and
// related state as of the current point in time.
//
// This function is safe for concurrent access.
func (b *BlockChain) BestSnapshot() *BestState {
	b.chainLock.RLock()
	snapshot := newBestState(b.bestChainTip())
	b.chainLock.RUnlock()
	return snapshot
}

// ChainParams returns the network parameters of the chain.
//
// This function is safe for concurrent access.
func (b *BlockChain) ChainParams() *chaincfg.Params {
	return b.chainParams
}

// HaveBlock returns whether or not the chain instance has the block represented
// by the passed hash.  This includes checking the various places a block can
// be like part of the main chain or on a side chain.
//
// This function is safe for concurrent access.
func (b *BlockChain) HaveBlock(hash *chainhash.Hash) bool {
	return b.index.HaveBlock(hash)
}

// HeaderByHash returns the block header identified by the given hash or an
// error if it doesn't exist.  Note that this will return headers from both the
// main chain and any side chains.
//
// This function is safe for concurrent access.
func (b *BlockChain) HeaderByHash(hash *chainhash.Hash) (wire.BlockHeader, error) {
	node := b.index.LookupNode(hash)
	if node == nil {
		return wire.BlockHeader{}, unknownBlockError(hash)
	}
	return node.Header(), nil
}

// BlockHashByHeight returns the hash of the block at the given height in the
// main chain.
//
// This function is safe for concurrent access.
func (b *BlockChain) BlockHashByHeight(height int64) (*chainhash.Hash, error) {
	b.chainLock.RLock()
	node := b.bestChainTip().Ancestor(height)
	b.chainLock.RUnlock()
	if node == nil {
		str := fmt.Sprintf("no block at height %d exists", height)
		return nil, contextError(ErrUnknownBlock, str)
	}

	hash := node.hash
	return &hash, nil
}

// IsAuxParentUsed returns whether the provided parent block hash already
// secured an accepted block through an auxiliary proof of work.
//
// This function is safe for concurrent access.
func (b *BlockChain) IsAuxParentUsed(hash *chainhash.Hash) bool {
	b.chainLock.RLock()
	used := b.usedParents.Contains(hash)
	b.chainLock.RUnlock()
	return used
}

// New returns a BlockChain instance using the provided configuration details.
func New(ctx context.Context, config *Config) (*BlockChain, error) {
	// Enforce required config fields.
	if config.ChainParams == nil {
		return nil, AssertError("blockchain.New chain parameters nil")
	}

	timeSource := config.TimeSource
	if timeSource == nil {
		timeSource = systemTimeSource{}
	}

	b := BlockChain{
		chainParams:    config.ChainParams,
		store:          config.Store,
		timeSource:     timeSource,
		progressLogger: progresslog.New("Processed", log),
		index:          newBlockIndex(),
		usedParents:    make(usedParentSet),
		recentRejects:  lru.NewSet[chainhash.Hash](maxRecentRejects),
	}

	// Initialize the chain state from the passed store.  When the store
	// does not yet contain any chain state, both it and the chain state
	// will be initialized to contain only the genesis block.
	if err := b.initChainState(ctx); err != nil {
		return nil, err
	}

	bestHdr := b.index.BestHeader()
	log.Infof("Best known header: height %d, hash %v", bestHdr.height,
		bestHdr.hash)

	tip := b.bestTip
	log.Infof("Chain state: height %d, hash %v, work %v, auxpow active at "+
		"height %d", tip.height, tip.hash, &tip.workSum,
		b.chainParams.AuxPowStartHeight)

	return &b, nil
}
