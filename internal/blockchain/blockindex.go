// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2018-2020 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sort"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
	"github.com/palladium-coin/plmd/blockchain/standalone"
	"github.com/palladium-coin/plmd/wire"
)

const (
	// medianTimeBlocks is the number of previous blocks which should be
	// used to calculate the median time used to validate block timestamps.
	medianTimeBlocks = 11
)

// ChainIndexAccessor provides read access to a block in the chain index and
// its ancestors.  It is all the difficulty calculation needs to know about the
// chain, which allows code outside of this package to compute the required
// difficulty for its own view of the chain.
//
// Implementations must be safe for concurrent access and must return nil from
// AncestorAt when the requested height is negative or above the block.
type ChainIndexAccessor interface {
	// Height returns the height of the block.
	Height() int64

	// Timestamp returns the timestamp of the block.
	Timestamp() time.Time

	// Bits returns the compact difficulty target of the block.
	Bits() uint32

	// AncestorAt returns the ancestor of the block at the provided height.
	AncestorAt(height int64) ChainIndexAccessor
}

// blockNode represents a block within the block chain and is primarily used to
// aid in tracking the best chain and computing the difficulty required for
// the next block.  All fields are immutable once the node is created.
type blockNode struct {
	// parent is the parent block for this node.
	parent *blockNode

	// skipToAncestor is used to provide a skip list to significantly speed up
	// traversal to ancestors deep in history.
	skipToAncestor *blockNode

	// hash is the hash of the block this node represents.
	hash chainhash.Hash

	// workSum is the total amount of work in the chain up to and including
	// this node.
	workSum uint256.Uint256

	// auxParent is the parent block hash of the auxiliary proof of work that
	// secured the block.  It is the zero hash for blocks without one.
	auxParent chainhash.Hash

	// Some fields from block headers to aid in reconstructing headers from
	// memory.
	height       int64
	timestamp    int64
	merkleRoot   chainhash.Hash
	blockVersion int32
	bits         uint32
	nonce        uint32
}

// clearLowestOneBit clears the lowest set bit in the passed value.
func clearLowestOneBit(n int64) int64 {
	return n & (n - 1)
}

// calcSkipListHeight calculates the height of an ancestor block to use when
// constructing the ancestor traversal skip list.
func calcSkipListHeight(height int64) int64 {
	if height < 0 {
		return 0
	}

	// Traditional skip lists create multiple levels to achieve expected average
	// search, insert, and delete costs of O(log n).  Since the blockchain is
	// append only, there is no need to handle random insertions or deletions,
	// so this takes advantage of that to effectively create a deterministic
	// skip list with a single level that is reasonably close to O(log n) in
	// order to reduce the number of pointers and implementation complexity.
	//
	// The only real requirement for proper operation of the skip list is for
	// the calculated height to be less than the provided height.
	return clearLowestOneBit(clearLowestOneBit(height))
}

// newBlockNode returns a new block node for the given block header and parent
// node.  The height is one more than the parent, or zero when no parent is
// provided.  The workSum is calculated based on the parent, or, in the case no
// parent is provided, it will just be the work for the passed block.
func newBlockNode(blockHeader *wire.BlockHeader, parent *blockNode) *blockNode {
	node := &blockNode{
		hash:         blockHeader.BlockHash(),
		workSum:      standalone.CalcWork(blockHeader.Bits),
		timestamp:    blockHeader.Timestamp.Unix(),
		merkleRoot:   blockHeader.MerkleRoot,
		blockVersion: blockHeader.Version,
		bits:         blockHeader.Bits,
		nonce:        blockHeader.Nonce,
	}
	if parent != nil {
		node.parent = parent
		node.height = parent.height + 1
		node.skipToAncestor = parent.Ancestor(calcSkipListHeight(node.height))
		node.workSum.Add(&parent.workSum)
	}
	return node
}

// Header constructs a block header from the node and returns it.
//
// This function is safe for concurrent access.
func (node *blockNode) Header() wire.BlockHeader {
	// No lock is needed because all accessed fields are immutable.
	var prevHash chainhash.Hash
	if node.parent != nil {
		prevHash = node.parent.hash
	}
	return wire.BlockHeader{
		Version:    node.blockVersion,
		PrevBlock:  prevHash,
		MerkleRoot: node.merkleRoot,
		Timestamp:  time.Unix(node.timestamp, 0),
		Bits:       node.bits,
		Nonce:      node.nonce,
	}
}

// Height returns the height of the block the node represents.
func (node *blockNode) Height() int64 {
	return node.height
}

// Timestamp returns the timestamp of the block the node represents.
func (node *blockNode) Timestamp() time.Time {
	return time.Unix(node.timestamp, 0)
}

// Bits returns the compact difficulty target of the block the node
// represents.
func (node *blockNode) Bits() uint32 {
	return node.bits
}

// AncestorAt returns the ancestor block node at the provided height as a
// ChainIndexAccessor.  The result is a nil interface when the ancestor does
// not exist.
func (node *blockNode) AncestorAt(height int64) ChainIndexAccessor {
	ancestor := node.Ancestor(height)
	if ancestor == nil {
		return nil
	}
	return ancestor
}

// Ancestor returns the ancestor block node at the provided height by following
// the chain backwards from this node.  The returned block will be nil when a
// height is requested that is after the height of the passed node or is less
// than zero.
//
// This function is safe for concurrent access.
func (node *blockNode) Ancestor(height int64) *blockNode {
	if height < 0 || height > node.height {
		return nil
	}

	n := node
	for n != nil && n.height != height {
		// Skip to the linked ancestor when it won't overshoot the target
		// height.
		if n.skipToAncestor != nil && calcSkipListHeight(n.height) >= height {
			n = n.skipToAncestor
			continue
		}

		n = n.parent
	}

	return n
}

// RelativeAncestor returns the ancestor block node a relative 'distance' blocks
// before this node.  This is equivalent to calling Ancestor with the node's
// height minus provided distance.
//
// This function is safe for concurrent access.
func (node *blockNode) RelativeAncestor(distance int64) *blockNode {
	return node.Ancestor(node.height - distance)
}

// CalcPastMedianTime calculates the median time of the previous few blocks
// prior to, and including, the block node.
//
// This function is safe for concurrent access.
func (node *blockNode) CalcPastMedianTime() time.Time {
	// Create a slice of the previous few block timestamps used to calculate
	// the median per the number defined by the constant medianTimeBlocks.
	timestamps := make([]int64, 0, medianTimeBlocks)
	iterNode := node
	for i := 0; i < medianTimeBlocks && iterNode != nil; i++ {
		timestamps = append(timestamps, iterNode.timestamp)
		iterNode = iterNode.parent
	}
	sort.Slice(timestamps, func(i, j int) bool {
		return timestamps[i] < timestamps[j]
	})

	// NOTE: The consensus rules incorrectly calculate the median for even
	// numbers of blocks.  A true median averages the middle two elements
	// for a set with an even number of elements in it.  Since the constant
	// for the previous number of blocks to be used is odd, this is only an
	// issue for a few blocks near the beginning of the chain.
	medianTimestamp := timestamps[len(timestamps)/2]
	return time.Unix(medianTimestamp, 0)
}

// compareHashesAsUint256LE compares two raw hashes treated as if they were
// little-endian uint256s.  It returns 1 when a > b, -1 when a < b, and 0 when
// a == b.
func compareHashesAsUint256LE(a, b *chainhash.Hash) int {
	// Find the index of the first byte that differs.
	index := len(a) - 1
	for ; index >= 0 && a[index] == b[index]; index-- {
		// Nothing to do.
	}
	if index < 0 {
		return 0
	}
	if a[index] > b[index] {
		return 1
	}
	return -1
}

// workSorterLess returns whether node 'a' is a worse candidate than 'b' for the
// purposes of best header tracking.
//
// Nodes with less cumulative work are worse.  Ties fall back to the hash where
// a larger value as a little-endian uint256 represents less work.
func workSorterLess(a, b *blockNode) bool {
	if workCmp := a.workSum.Cmp(&b.workSum); workCmp != 0 {
		return workCmp < 0
	}
	return compareHashesAsUint256LE(&a.hash, &b.hash) > 0
}

// blockIndex provides facilities for keeping track of an in-memory index of the
// block chain.  Although the name block chain suggests a single chain of
// blocks, it is actually a tree-shaped structure where any node can have
// multiple children.  However, there can only be one active branch which does
// indeed form a chain from the tip all the way back to the genesis block.
type blockIndex struct {
	// These following fields are protected by the embedded mutex.
	//
	// index contains an entry for every known block tracked by the block
	// index.
	//
	// bestHeader tracks the node with the most cumulative work.  Side
	// chains are indexed but never activated, so it may differ from the
	// tip of the best chain.
	sync.RWMutex
	index      map[chainhash.Hash]*blockNode
	bestHeader *blockNode
}

// newBlockIndex returns a new empty instance of a block index.  The index will
// be dynamically populated as block nodes are loaded from the database and
// manually added.
func newBlockIndex() *blockIndex {
	return &blockIndex{
		index: make(map[chainhash.Hash]*blockNode),
	}
}

// HaveBlock returns whether or not the block index contains the provided hash.
//
// This function is safe for concurrent access.
func (bi *blockIndex) HaveBlock(hash *chainhash.Hash) bool {
	bi.RLock()
	_, hasBlock := bi.index[*hash]
	bi.RUnlock()
	return hasBlock
}

// lookupNode returns the block node identified by the provided hash.  It will
// return nil if there is no entry for the hash.
//
// This function MUST be called with the block index lock held (for reads).
func (bi *blockIndex) lookupNode(hash *chainhash.Hash) *blockNode {
	return bi.index[*hash]
}

// LookupNode returns the block node identified by the provided hash.  It will
// return nil if there is no entry for the hash.
//
// This function is safe for concurrent access.
func (bi *blockIndex) LookupNode(hash *chainhash.Hash) *blockNode {
	bi.RLock()
	node := bi.lookupNode(hash)
	bi.RUnlock()
	return node
}

// addNode adds the provided node to the block index.  Duplicate entries are not
// checked so it is up to caller to avoid adding them.
//
// This function MUST be called with the block index lock held (for writes).
func (bi *blockIndex) addNode(node *blockNode) {
	bi.index[node.hash] = node
	if bi.bestHeader == nil || workSorterLess(bi.bestHeader, node) {
		bi.bestHeader = node
	}
}

// AddNode adds the provided node to the block index.  Duplicate entries are not
// checked so it is up to caller to avoid adding them.
//
// This function is safe for concurrent access.
func (bi *blockIndex) AddNode(node *blockNode) {
	bi.Lock()
	bi.addNode(node)
	bi.Unlock()
}

// BestHeader returns the known block node with the most cumulative work.
//
// This function is safe for concurrent access.
func (bi *blockIndex) BestHeader() *blockNode {
	bi.RLock()
	bestHeader := bi.bestHeader
	bi.RUnlock()
	return bestHeader
}

// Count returns the number of nodes in the index.
//
// This function is safe for concurrent access.
func (bi *blockIndex) Count() int {
	bi.RLock()
	count := len(bi.index)
	bi.RUnlock()
	return count
}
