// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2019 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/palladium-coin/plmd/wire"
)

// hashMerkleBranches takes two hashes, treated as the left and right tree
// nodes, and returns the double sha256 of their concatenation.  This is a
// helper function used to aid in the generation of a merkle tree.
func hashMerkleBranches(left, right *chainhash.Hash) chainhash.Hash {
	// Concatenate the left and right nodes.
	var hash [chainhash.HashSize * 2]byte
	copy(hash[:chainhash.HashSize], left[:])
	copy(hash[chainhash.HashSize:], right[:])

	return chainhash.DoubleHashH(hash[:])
}

// CalcMerkleRootInPlace is an in-place version of CalcMerkleRoot that reuses
// the backing array of the provided slice to perform the calculation thereby
// preventing extra allocations.  It is the caller's responsibility to ensure
// it is safe to mutate the entries in the provided slice.
//
// The function internally appends an additional entry in the case the number
// of provided leaves is odd, so the caller may wish to pre-allocate space for
// one additional item in the backing array in that case to ensure it doesn't
// need to be reallocated to expand it.
//
// For example:
//
//	allocLen := len(leaves) + len(leaves)&1
//	leaves := make([]chainhash.Hash, len(leaves), allocLen)
//	// populate the leaves
//
// See CalcMerkleRoot for more details on how the merkle root is calculated.
func CalcMerkleRootInPlace(leaves []chainhash.Hash) chainhash.Hash {
	if len(leaves) == 0 {
		// All zero.
		return chainhash.Hash{}
	}

	// The following algorithm works by replacing the leftmost entries in the
	// slice with the concatenations of each subsequent set of 2 hashes and
	// shrinking the slice by half to account for the fact that each level of
	// the tree is half the size of the previous one.  In the case a level is
	// unbalanced (there is no final right child), the final node is duplicated
	// so it ultimately is concatenated with itself.
	//
	// For example, the following illustrates calculating a tree with 5 leaves:
	//
	// [0 1 2 3 4]                              (5 entries)
	// 1st iteration: [h(0||1) h(2||3) h(4||4)] (3 entries)
	// 2nd iteration: [h(h01||h23) h(h44||h44)] (2 entries)
	// 3rd iteration: [h(h0123||h4444)]         (1 entry)
	for len(leaves) > 1 {
		// When there is no right child, the parent is generated by hashing
		// the concatenation of the left child with itself.
		if len(leaves)&1 != 0 {
			leaves = append(leaves, leaves[len(leaves)-1])
		}

		// Set the parent node to the hash of the concatenation of the left
		// and right children.
		for i := 0; i < len(leaves)/2; i++ {
			leaves[i] = hashMerkleBranches(&leaves[i*2], &leaves[i*2+1])
		}
		leaves = leaves[:len(leaves)/2]
	}
	return leaves[0]
}

// CalcMerkleRoot creates a merkle tree from the slice of hashes and returns
// the root of the tree.
//
// A merkle tree is a tree in which every non-leaf node is the hash of its
// children nodes.  A diagram depicting how this works for transactions
// where h(x) is a double sha256 follows:
//
//	         root = h1234 = h(h12 + h34)
//	        /                           \
//	  h12 = h(h1 + h2)            h34 = h(h3 + h4)
//	   /            \              /            \
//	h1 = h(tx1)  h2 = h(tx2)    h3 = h(tx3)  h4 = h(tx4)
//
// The number of inputs is not always a power of two which results in a
// balanced tree structure as above.  In that case, parent nodes with no
// children are also zero and parent nodes with only a single left node
// are calculated by concatenating the left node with itself before hashing.
func CalcMerkleRoot(leaves []chainhash.Hash) chainhash.Hash {
	allocLen := len(leaves) + len(leaves)&1
	dup := make([]chainhash.Hash, len(leaves), allocLen)
	copy(dup, leaves)
	return CalcMerkleRootInPlace(dup)
}

// CalcTxTreeMerkleRoot calculates and returns the merkle root for the
// provided transactions.  The merkle root commits to the witness-stripped
// transaction hashes.  See CalcMerkleRoot for more details on how the merkle
// root is calculated.
func CalcTxTreeMerkleRoot(transactions []*wire.MsgTx) chainhash.Hash {
	allocLen := len(transactions) + len(transactions)&1
	leaves := make([]chainhash.Hash, 0, allocLen)
	for _, tx := range transactions {
		leaves = append(leaves, tx.TxHash())
	}
	return CalcMerkleRootInPlace(leaves)
}

// calcRootFromBranch folds the provided branch into the leaf hash.  Each bit
// of index, starting with the least significant, selects the side of the
// running hash at that level: a set bit means the branch hash is the left
// sibling.
func calcRootFromBranch(leaf *chainhash.Hash, branch []chainhash.Hash, index uint32) chainhash.Hash {
	hash := *leaf
	for i := range branch {
		if index&1 != 0 {
			hash = hashMerkleBranches(&branch[i], &hash)
		} else {
			hash = hashMerkleBranches(&hash, &branch[i])
		}
		index >>= 1
	}
	return hash
}

// CalcMerkleRootFromBranch returns the merkle root implied by the provided
// leaf hash, its merkle branch and its index in the tree.  An empty branch
// yields the leaf hash itself.
//
// Negative indices are not special.  The index is shifted arithmetically, so
// the sign bit keeps selecting the left side once the low bits run out and an
// index of -1 places every branch hash on the left.
func CalcMerkleRootFromBranch(leaf *chainhash.Hash, branch []chainhash.Hash, index int32) chainhash.Hash {
	hash := *leaf
	for i := range branch {
		if index&1 != 0 {
			hash = hashMerkleBranches(&branch[i], &hash)
		} else {
			hash = hashMerkleBranches(&hash, &branch[i])
		}
		index >>= 1
	}
	return hash
}
