// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// MaxMerkleBranchLen is the maximum number of hashes in a merkle branch.
	// A branch of a tree holding every transaction that could fit into the
	// largest message never exceeds this depth.
	MaxMerkleBranchLen = 32
)

// AuxPowMagic is the marker that precedes the byte-reversed child block hash
// inside the coinbase signature script of a merge-mined parent block.  It is
// "plm" followed by 0x01.
var AuxPowMagic = [4]byte{0x70, 0x6c, 0x6d, 0x01}

// AuxPow is an auxiliary proof of work.  It proves that the miner of a block
// on a merge-mined parent chain committed to a child block of this chain in
// the parent coinbase, so the parent block hash can serve as the child proof
// of work.
//
// The serialized layout is a fixed external contract shared with merge-mining
// software: coinbase transaction, coinbase hash, merkle branch, merkle index,
// chain merkle branch, chain index and finally the 80-byte parent header.
type AuxPow struct {
	// CoinbaseTx is the parent chain coinbase transaction carrying the
	// commitment to the child block.
	CoinbaseTx *MsgTx

	// CoinbaseHash is the claimed hash of CoinbaseTx.  Verification always
	// recomputes the hash from the transaction itself.
	CoinbaseHash chainhash.Hash

	// MerkleBranch and MerkleIndex prove the inclusion of the coinbase in
	// the parent block merkle tree.
	MerkleBranch []chainhash.Hash
	MerkleIndex  int32

	// ChainMerkleBranch and ChainIndex prove the inclusion of the child
	// chain commitment in a merged mining tree.  They are empty when the
	// commitment lives directly in the coinbase.
	ChainMerkleBranch []chainhash.Hash
	ChainIndex        int32

	// ParentBlock is the header of the merge-mined parent block.
	ParentBlock BlockHeader
}

// ParentBlockHash returns the hash of the parent block header which is the
// value that must satisfy the child difficulty target.
func (a *AuxPow) ParentBlockHash() chainhash.Hash {
	return a.ParentBlock.BlockHash()
}

// Deserialize decodes an auxiliary proof of work from r into the receiver.
func (a *AuxPow) Deserialize(r io.Reader) error {
	const op = "AuxPow.Deserialize"
	a.CoinbaseTx = new(MsgTx)
	if err := a.CoinbaseTx.Deserialize(r); err != nil {
		return err
	}
	if len(a.CoinbaseTx.TxIn) == 0 {
		const str = "auxpow coinbase transaction has no inputs"
		return messageError(op, ErrAuxPowInvalid, str)
	}

	if err := readElement(r, &a.CoinbaseHash); err != nil {
		return err
	}

	var err error
	a.MerkleBranch, err = readHashList(r, MaxMerkleBranchLen, "merkle branch")
	if err != nil {
		return err
	}
	if err := readElement(r, &a.MerkleIndex); err != nil {
		return err
	}

	a.ChainMerkleBranch, err = readHashList(r, MaxMerkleBranchLen,
		"chain merkle branch")
	if err != nil {
		return err
	}
	if err := readElement(r, &a.ChainIndex); err != nil {
		return err
	}

	return readBlockHeader(r, &a.ParentBlock)
}

// Serialize encodes the auxiliary proof of work to w.
func (a *AuxPow) Serialize(w io.Writer) error {
	const op = "AuxPow.Serialize"
	if a.CoinbaseTx == nil {
		const str = "auxpow has no coinbase transaction"
		return messageError(op, ErrAuxPowInvalid, str)
	}
	if len(a.MerkleBranch) > MaxMerkleBranchLen ||
		len(a.ChainMerkleBranch) > MaxMerkleBranchLen {

		str := fmt.Sprintf("merkle branch too long [len %d, chain len %d, "+
			"max %d]", len(a.MerkleBranch), len(a.ChainMerkleBranch),
			MaxMerkleBranchLen)
		return messageError(op, ErrTooManyHashes, str)
	}

	if err := a.CoinbaseTx.Serialize(w); err != nil {
		return err
	}
	if err := writeElement(w, &a.CoinbaseHash); err != nil {
		return err
	}
	if err := writeHashList(w, a.MerkleBranch); err != nil {
		return err
	}
	if err := writeElement(w, &a.MerkleIndex); err != nil {
		return err
	}
	if err := writeHashList(w, a.ChainMerkleBranch); err != nil {
		return err
	}
	if err := writeElement(w, &a.ChainIndex); err != nil {
		return err
	}
	return writeBlockHeader(w, &a.ParentBlock)
}

// SerializeSize returns the number of bytes it would take to serialize the
// auxiliary proof of work.
func (a *AuxPow) SerializeSize() int {
	n := 0
	if a.CoinbaseTx != nil {
		n += a.CoinbaseTx.SerializeSize()
	}
	n += chainhash.HashSize
	n += VarIntSerializeSize(uint64(len(a.MerkleBranch))) +
		len(a.MerkleBranch)*chainhash.HashSize + 4
	n += VarIntSerializeSize(uint64(len(a.ChainMerkleBranch))) +
		len(a.ChainMerkleBranch)*chainhash.HashSize + 4
	return n + MaxBlockHeaderPayload
}

// Bytes returns the serialized auxiliary proof of work.
func (a *AuxPow) Bytes() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, a.SerializeSize()))
	if err := a.Serialize(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromBytes decodes an auxiliary proof of work from b.
func (a *AuxPow) FromBytes(b []byte) error {
	return a.Deserialize(bytes.NewReader(b))
}
