// Copyright (c) 2019 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// GenerateInclusionProof treats the provided slice of hashes as leaves of a
// merkle tree and generates and returns a merkle tree inclusion proof for the
// given leaf index.  The proof can be used to efficiently prove the leaf
// associated with given leaf index is a member of the tree.  It is the same
// merkle branch an auxiliary proof of work carries for the parent coinbase.
//
// A merkle tree inclusion proof consists of the ceil(log2(x)) intermediate
// sibling hashes along the path from the target leaf to prove through the
// root node.  The sibling hashes, along with the original leaf hash (and its
// original leaf index), can be used to recalculate the merkle root which, in
// turn, can be verified against a known good merkle root in order to prove
// the leaf is actually a member of the tree at that position.
//
// For example, consider the following merkle tree:
//
//	         root = h1234 = h(h12 + h34)
//	        /                           \
//	  h12 = h(h1 + h2)            h34 = h(h3 + h4)
//	   /            \              /            \
//	  h1            h2            h3            h4
//
// Further, consider the goal is to prove inclusion of h3 at the 0-based leaf
// index of 2.  The proof will consist of the sibling hashes h4 and h12.  On
// the other hand, if the goal were to prove inclusion of h2 at the 0-based
// leaf index of 1, the proof would consist of the sibling hashes h1 and h34.
//
// Specifying a leaf index that is out of range will return nil.
func GenerateInclusionProof(leaves []chainhash.Hash, leafIndex uint32) []chainhash.Hash {
	// Nothing to do when no leaves were provided or the leaf index is out of
	// range.
	numLeaves := uint32(len(leaves))
	if numLeaves == 0 || leafIndex >= numLeaves {
		return nil
	}

	// Calculate the number of required sibling hashes that will need to be
	// stored in the proof and create a copy of the leaves so they can be
	// mutated while building the proof.
	var numProofHashes uint8
	for n := numLeaves - 1; n > 0; n >>= 1 {
		numProofHashes++
	}
	nodes := make([]chainhash.Hash, numLeaves, numLeaves+numLeaves&1)
	copy(nodes, leaves)

	// Build the proof by recording the sibling at each level of the tree
	// while calculating the parents in place, duplicating the final node of
	// any level with an odd number of nodes.
	proof := make([]chainhash.Hash, 0, numProofHashes)
	for len(nodes) > 1 {
		if len(nodes)&1 != 0 {
			nodes = append(nodes, nodes[len(nodes)-1])
		}
		proof = append(proof, nodes[leafIndex^1])
		for i := 0; i < len(nodes)/2; i++ {
			nodes[i] = hashMerkleBranches(&nodes[i*2], &nodes[i*2+1])
		}
		nodes = nodes[:len(nodes)/2]
		leafIndex >>= 1
	}
	return proof
}

// VerifyInclusionProof returns whether or not the given leaf hash, original
// leaf index, and inclusion proof result in recalculating a merkle root that
// matches the provided merkle root.  See GenerateInclusionProof for details
// about the proof.
func VerifyInclusionProof(root, leaf *chainhash.Hash, leafIndex uint32, proof []chainhash.Hash) bool {
	// The provided leaf index must exist in the tree the proof describes.
	numHashes := uint32(len(proof))
	if numHashes > 32 || (numHashes < 32 && leafIndex >= 1<<numHashes) {
		return false
	}

	return calcRootFromBranch(leaf, proof, leafIndex) == *root
}
