// Copyright (c) 2019 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/palladium-coin/plmd/wire"
)

// mainNetGenesisMerkleRoot is the merkle root of the main network genesis
// block which is the hash of its only transaction.
var mainNetGenesisMerkleRoot = func() chainhash.Hash {
	hash, err := chainhash.NewHashFromStr("4a5e1e4baab89f3a32518a88c31bc87f" +
		"618f76673e2cc77ab2127b7afdeda33b")
	if err != nil {
		panic(err)
	}
	return *hash
}()

// mainNetGenesisCoinbase returns the coinbase transaction of the main network
// genesis block.
func mainNetGenesisCoinbase() *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{
			Hash:  chainhash.Hash{},
			Index: wire.MaxPrevOutIndex,
		},
		SignatureScript: hexToBytes("04ffff001d0104455468652054696d65" +
			"732030332f4a616e2f32303039204368616e63656c6c6f72206f" +
			"6e206272696e6b206f66207365636f6e64206261696c6f757420" +
			"666f722062616e6b73"),
		Sequence: wire.MaxTxInSequenceNum,
	})
	tx.AddTxOut(&wire.TxOut{
		Value: 0x12a05f200,
		PkScript: hexToBytes("4104678afdb0fe5548271967f1a67130b7105cd6a8" +
			"28e03909a67962e0ea1f61deb649f6bc3f4cef38c4f35504e51ec1" +
			"12de5c384df7ba0b8d578a4c702b6bf11d5fac"),
	})
	return tx
}

// testLeaves returns n distinct leaf hashes.
func testLeaves(n int) []chainhash.Hash {
	leaves := make([]chainhash.Hash, n)
	for i := range leaves {
		leaves[i] = chainhash.DoubleHashH([]byte{byte(i), byte(i >> 8)})
	}
	return leaves
}

// TestCalcMerkleRoot ensures the expected merkle root is produced for trees
// of various shapes, including unbalanced ones where the final node of a
// level is concatenated with itself.
func TestCalcMerkleRoot(t *testing.T) {
	t.Parallel()

	l := testLeaves(5)
	h := func(a, b chainhash.Hash) chainhash.Hash {
		return hashMerkleBranches(&a, &b)
	}
	h01, h23, h44 := h(l[0], l[1]), h(l[2], l[3]), h(l[4], l[4])

	tests := []struct {
		name   string           // test description
		leaves []chainhash.Hash // leaves to test
		want   chainhash.Hash   // expected result
	}{{
		name:   "no leaves",
		leaves: nil,
		want:   chainhash.Hash{},
	}, {
		name:   "single leaf",
		leaves: l[:1],
		want:   l[0],
	}, {
		name:   "two leaves",
		leaves: l[:2],
		want:   h01,
	}, {
		name:   "three leaves duplicates the last",
		leaves: l[:3],
		want:   h(h01, h(l[2], l[2])),
	}, {
		name:   "four leaves",
		leaves: l[:4],
		want:   h(h01, h23),
	}, {
		name:   "five leaves",
		leaves: l[:5],
		want:   h(h(h01, h23), h(h44, h44)),
	}}

	testFuncs := []string{"CalcMerkleRoot", "CalcMerkleRootInPlace"}
	for _, funcName := range testFuncs {
		for _, test := range tests {
			// Copy the leaves so the in-place variant can't disturb other
			// tests and keep the originals to detect mutation.
			leaves := make([]chainhash.Hash, len(test.leaves))
			copy(leaves, test.leaves)

			var f func([]chainhash.Hash) chainhash.Hash
			switch funcName {
			case "CalcMerkleRoot":
				f = CalcMerkleRoot
			case "CalcMerkleRootInPlace":
				f = CalcMerkleRootInPlace
			default:
				t.Fatalf("invalid function name: %v", funcName)
			}
			result := f(leaves)
			if result != test.want {
				t.Errorf("%s %q: mismatched result -- got %v, want %v",
					funcName, test.name, result, test.want)
				continue
			}

			// Ensure the leaves were not mutated for the copying version.
			if funcName == "CalcMerkleRoot" {
				for i := range leaves {
					if leaves[i] != test.leaves[i] {
						t.Errorf("%q: unexpected mutation -- got %v, want %v",
							test.name, leaves[i], test.leaves[i])
						break
					}
				}
			}
		}
	}
}

// TestCalcTxTreeMerkleRoot ensures the expected merkle root is produced for
// known transactions.
func TestCalcTxTreeMerkleRoot(t *testing.T) {
	t.Parallel()

	coinbase := mainNetGenesisCoinbase()
	result := CalcTxTreeMerkleRoot([]*wire.MsgTx{coinbase})
	if result != mainNetGenesisMerkleRoot {
		t.Fatalf("mismatched genesis merkle root -- got %v, want %v", result,
			mainNetGenesisMerkleRoot)
	}

	// Witness data must not change the committed root.
	coinbase.TxIn[0].Witness = wire.TxWitness{make([]byte, 32)}
	result = CalcTxTreeMerkleRoot([]*wire.MsgTx{coinbase})
	if result != mainNetGenesisMerkleRoot {
		t.Fatalf("witness changed the merkle root -- got %v, want %v", result,
			mainNetGenesisMerkleRoot)
	}

	if result := CalcTxTreeMerkleRoot(nil); result != (chainhash.Hash{}) {
		t.Fatalf("empty tree root is %v, want zero", result)
	}
}

// TestCalcMerkleRootFromBranch ensures folding a merkle branch reproduces the
// root of trees with 2^k leaves for every leaf index and that any tampering
// with the branch or the index is detected.
func TestCalcMerkleRootFromBranch(t *testing.T) {
	t.Parallel()

	for k := 0; k <= 5; k++ {
		leaves := testLeaves(1 << k)
		root := CalcMerkleRoot(leaves)
		for i := range leaves {
			branch := GenerateInclusionProof(leaves, uint32(i))
			if len(branch) != k {
				t.Fatalf("k=%d index %d: branch length %d, want %d", k, i,
					len(branch), k)
			}

			got := CalcMerkleRootFromBranch(&leaves[i], branch, int32(i))
			if got != root {
				t.Fatalf("k=%d index %d: got root %v, want %v", k, i, got,
					root)
			}
			if k == 0 {
				continue
			}

			// Flipping a single bit of any branch hash changes the root.
			for j := range branch {
				tampered := make([]chainhash.Hash, len(branch))
				copy(tampered, branch)
				tampered[j][0] ^= 0x01
				got := CalcMerkleRootFromBranch(&leaves[i], tampered, int32(i))
				if got == root {
					t.Fatalf("k=%d index %d: tampered hash %d still "+
						"produced the root", k, i, j)
				}
			}

			// The wrong side at the lowest level changes the root.
			got = CalcMerkleRootFromBranch(&leaves[i], branch, int32(i^1))
			if got == root {
				t.Fatalf("k=%d index %d: wrong index still produced the "+
					"root", k, i)
			}
		}
	}
}

// TestCalcMerkleRootFromBranchEdges ensures the special cases of the branch
// fold behave as intended.
func TestCalcMerkleRootFromBranchEdges(t *testing.T) {
	t.Parallel()

	leaf := chainhash.DoubleHashH([]byte("leaf"))
	if got := CalcMerkleRootFromBranch(&leaf, nil, 0); got != leaf {
		t.Fatalf("empty branch: got %v, want the leaf %v", got, leaf)
	}
	branch := testLeaves(3)

	// An index of -1 has every bit set, so each branch hash is the left
	// sibling, and an empty branch still yields the leaf.
	if got := CalcMerkleRootFromBranch(&leaf, nil, -1); got != leaf {
		t.Fatalf("index -1 with empty branch: got %v, want the leaf %v", got,
			leaf)
	}
	want := leaf
	for i := range branch[:2] {
		want = hashMerkleBranches(&branch[i], &want)
	}
	if got := CalcMerkleRootFromBranch(&leaf, branch[:2], -1); got != want {
		t.Fatalf("index -1: got %v, want %v", got, want)
	}
	want = leaf
	for i := range branch {
		want = hashMerkleBranches(&branch[i], &want)
	}
	if got := CalcMerkleRootFromBranch(&leaf, branch, -1); got != want {
		t.Fatalf("index -1 with %d hashes: got %v, want %v", len(branch), got,
			want)
	}

	// Other negative indices fold their two's complement bits.
	want = hashMerkleBranches(&leaf, &branch[0])
	want = hashMerkleBranches(&branch[1], &want)
	if got := CalcMerkleRootFromBranch(&leaf, branch[:2], -2); got != want {
		t.Fatalf("index -2: got %v, want %v", got, want)
	}

	// An odd index places the sibling on the left.
	sibling := branch[0]
	want = hashMerkleBranches(&sibling, &leaf)
	if got := CalcMerkleRootFromBranch(&leaf, branch[:1], 1); got != want {
		t.Fatalf("odd index: got %v, want %v", got, want)
	}
	want = hashMerkleBranches(&leaf, &sibling)
	if got := CalcMerkleRootFromBranch(&leaf, branch[:1], 0); got != want {
		t.Fatalf("even index: got %v, want %v", got, want)
	}
}
