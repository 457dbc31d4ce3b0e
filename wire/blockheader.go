// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2024 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// MaxBlockHeaderPayload is the number of bytes a block header can be.
	// Version 4 bytes + PrevBlock 32 bytes + MerkleRoot 32 bytes +
	// Timestamp 4 bytes + Bits 4 bytes + Nonce 4 bytes.
	MaxBlockHeaderPayload = 16 + (chainhash.HashSize * 2)

	// AuxPowVersionBit is the block version bit that signals the block
	// carries an auxiliary proof of work.  When it is set the block must
	// carry an AuxPow payload and when it is clear it must not.
	AuxPowVersionBit int32 = 1 << 8

	// BaseVersion is the block version used for newly created blocks
	// without any feature bits set.
	BaseVersion int32 = 7
)

// BlockHeader defines information about a block and is used in the block
// (MsgBlock) and the auxiliary proof of work (AuxPow) parent block.
type BlockHeader struct {
	// Version of the block.  This is not the same as the protocol version.
	// Bit 8 is the auxiliary proof of work flag.
	Version int32

	// Hash of the previous block in the block chain.
	PrevBlock chainhash.Hash

	// Merkle tree reference to hash of all transactions for the block.
	MerkleRoot chainhash.Hash

	// Time the block was created.  This is, unfortunately, encoded as a
	// uint32 on the wire and therefore is limited to 2106.
	Timestamp time.Time

	// Difficulty target for the block.
	Bits uint32

	// Nonce used to generate the block.
	Nonce uint32
}

// NewBlockHeader returns a new BlockHeader using the provided parameters.
func NewBlockHeader(version int32, prevHash *chainhash.Hash,
	merkleRootHash *chainhash.Hash, bits uint32, nonce uint32) *BlockHeader {

	// Limit the timestamp to one second precision since the protocol
	// doesn't support better.
	return &BlockHeader{
		Version:    version,
		PrevBlock:  *prevHash,
		MerkleRoot: *merkleRootHash,
		Timestamp:  time.Unix(time.Now().Unix(), 0),
		Bits:       bits,
		Nonce:      nonce,
	}
}

// BlockHash computes the block identifier hash for the given block header.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	// Encode the header and double sha256 everything prior to the number of
	// transactions.  Ignore the error returns since there is no way the
	// encode could fail except being out of memory which would cause a
	// run-time panic.
	buf := bytes.NewBuffer(make([]byte, 0, MaxBlockHeaderPayload))
	_ = writeBlockHeader(buf, h)

	return chainhash.DoubleHashH(buf.Bytes())
}

// IsAuxPow returns whether the header signals an auxiliary proof of work.
func (h *BlockHeader) IsAuxPow() bool {
	return h.Version&AuxPowVersionBit != 0
}

// SetAuxPowFlag sets or clears the auxiliary proof of work version bit.
func (h *BlockHeader) SetAuxPowFlag(set bool) {
	if set {
		h.Version |= AuxPowVersionBit
		return
	}
	h.Version &^= AuxPowVersionBit
}

// PureHash returns the hash of the header with the auxiliary proof of work
// version bit cleared.  This is the identity a merge-mined parent coinbase
// commits to, independent of whether the flag is set on the header itself.
func (h *BlockHeader) PureHash() chainhash.Hash {
	pure := *h
	pure.Version &^= AuxPowVersionBit
	return pure.BlockHash()
}

// Deserialize decodes a block header from r into the receiver using a format
// that is suitable for long-term storage such as a database while respecting
// the Version field.
func (h *BlockHeader) Deserialize(r io.Reader) error {
	return readBlockHeader(r, h)
}

// FromBytes deserializes a block header byte slice.
func (h *BlockHeader) FromBytes(b []byte) error {
	r := bytes.NewReader(b)
	return h.Deserialize(r)
}

// Serialize encodes a block header from r into the receiver using a format
// that is suitable for long-term storage such as a database while respecting
// the Version field.
func (h *BlockHeader) Serialize(w io.Writer) error {
	return writeBlockHeader(w, h)
}

// Bytes returns a byte slice containing the serialized contents of the block
// header.
func (h *BlockHeader) Bytes() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, MaxBlockHeaderPayload))
	err := h.Serialize(buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// readBlockHeader reads a block header from r.
func readBlockHeader(r io.Reader, bh *BlockHeader) error {
	return readElements(r, &bh.Version, &bh.PrevBlock, &bh.MerkleRoot,
		(*uint32Time)(&bh.Timestamp), &bh.Bits, &bh.Nonce)
}

// writeBlockHeader writes a block header to w.
func writeBlockHeader(w io.Writer, bh *BlockHeader) error {
	return writeElements(w, &bh.Version, &bh.PrevBlock, &bh.MerkleRoot,
		(*uint32Time)(&bh.Timestamp), &bh.Bits, &bh.Nonce)
}
