// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2024 The Decred developers
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

// defaultTransactionAlloc is the default size used for the backing array
// for transactions.  The transaction array will dynamically grow as needed, but
// this figure is intended to provide enough space for the number of
// transactions in the vast majority of blocks without needing to grow the
// backing array multiple times.
const defaultTransactionAlloc = 2048

// MaxBlockPayload is the maximum bytes a block message can be in bytes.
const MaxBlockPayload = 4000000

// maxTxPerBlock is the maximum number of transactions that could
// possibly fit into a block.
const maxTxPerBlock = (MaxBlockPayload / minTxPayload) + 1

// minTxPayload is the minimum payload size for a transaction.  Version 4
// bytes + varint number of inputs 1 byte + varint number of outputs 1 byte +
// LockTime 4 bytes.
const minTxPayload = 10

// MsgBlock is a block: a header, an auxiliary proof of work when the header
// signals one, and the transactions.
//
// The auxiliary proof of work is only reachable through AuxPow, SetAuxPow and
// ClearAuxPow, which keep the header version bit and the payload in agreement.
// Code that edits Header.Version directly must restore that agreement before
// serializing, otherwise Serialize returns ErrAuxPowMissing.
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx

	auxPow *AuxPow
}

// AddTransaction adds a transaction to the message.
func (msg *MsgBlock) AddTransaction(tx *MsgTx) {
	msg.Transactions = append(msg.Transactions, tx)
}

// ClearTransactions removes all transactions from the message.
func (msg *MsgBlock) ClearTransactions() {
	msg.Transactions = make([]*MsgTx, 0, defaultTransactionAlloc)
}

// AuxPow returns the auxiliary proof of work attached to the block or nil
// when there is none.
func (msg *MsgBlock) AuxPow() *AuxPow {
	return msg.auxPow
}

// SetAuxPow attaches the auxiliary proof of work and sets the header version
// bit.  Passing nil is the same as calling ClearAuxPow.
func (msg *MsgBlock) SetAuxPow(auxPow *AuxPow) {
	if auxPow == nil {
		msg.ClearAuxPow()
		return
	}
	msg.auxPow = auxPow
	msg.Header.SetAuxPowFlag(true)
}

// ClearAuxPow removes any auxiliary proof of work and clears the header
// version bit.
func (msg *MsgBlock) ClearAuxPow() {
	msg.auxPow = nil
	msg.Header.SetAuxPowFlag(false)
}

// Deserialize decodes a block from r into the receiver.  The auxiliary proof
// of work is read only when the header version bit is set, so a decoded block
// always has a payload exactly when the bit is set.
func (msg *MsgBlock) Deserialize(r io.Reader) error {
	const op = "MsgBlock.Deserialize"
	err := readBlockHeader(r, &msg.Header)
	if err != nil {
		return err
	}

	msg.auxPow = nil
	if msg.Header.IsAuxPow() {
		auxPow := new(AuxPow)
		if err := auxPow.Deserialize(r); err != nil {
			return err
		}
		msg.auxPow = auxPow
	}

	txCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}

	// Prevent more transactions than could possibly fit into a block.
	// It would be possible to cause memory exhaustion and panics without
	// a sane upper bound on this count.
	if txCount > maxTxPerBlock {
		str := fmt.Sprintf("too many transactions to fit into a block "+
			"[count %d, max %d]", txCount, maxTxPerBlock)
		return messageError(op, ErrTooManyTxs, str)
	}

	msg.Transactions = make([]*MsgTx, 0, txCount)
	for i := uint64(0); i < txCount; i++ {
		tx := MsgTx{}
		err := tx.Deserialize(r)
		if err != nil {
			return err
		}
		msg.Transactions = append(msg.Transactions, &tx)
	}

	return nil
}

// FromBytes deserializes a block byte slice.
func (msg *MsgBlock) FromBytes(b []byte) error {
	r := bytes.NewReader(b)
	return msg.Deserialize(r)
}

// Serialize encodes the block to w.  The auxiliary proof of work is written
// only when the header version bit is set, and it is an error for the bit to
// be set without a payload or for a payload to be attached without the bit.
func (msg *MsgBlock) Serialize(w io.Writer) error {
	const op = "MsgBlock.Serialize"
	isAuxPow := msg.Header.IsAuxPow()
	switch {
	case isAuxPow && msg.auxPow == nil:
		const str = "block version signals auxpow but no auxpow is attached"
		return messageError(op, ErrAuxPowMissing, str)
	case !isAuxPow && msg.auxPow != nil:
		const str = "auxpow is attached but the block version does not " +
			"signal it"
		return messageError(op, ErrAuxPowInvalid, str)
	}

	err := writeBlockHeader(w, &msg.Header)
	if err != nil {
		return err
	}

	if isAuxPow {
		if err := msg.auxPow.Serialize(w); err != nil {
			return err
		}
	}

	err = WriteVarInt(w, uint64(len(msg.Transactions)))
	if err != nil {
		return err
	}

	for _, tx := range msg.Transactions {
		err = tx.Serialize(w)
		if err != nil {
			return err
		}
	}

	return nil
}

// Bytes returns the serialized form of the block in bytes.
func (msg *MsgBlock) Bytes() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize()))
	err := msg.Serialize(buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeSize returns the number of bytes it would take to serialize the
// block.
func (msg *MsgBlock) SerializeSize() int {
	// Block header bytes + Serialized varint size for the number of
	// transactions.
	n := MaxBlockHeaderPayload + VarIntSerializeSize(uint64(len(msg.Transactions)))
	if msg.Header.IsAuxPow() && msg.auxPow != nil {
		n += msg.auxPow.SerializeSize()
	}

	for _, tx := range msg.Transactions {
		n += tx.SerializeSize()
	}

	return n
}

// BlockHash computes the block identifier hash for this block.
func (msg *MsgBlock) BlockHash() chainhash.Hash {
	return msg.Header.BlockHash()
}

// TxHashes returns a slice of hashes of all of transactions in this block.
func (msg *MsgBlock) TxHashes() []chainhash.Hash {
	hashList := make([]chainhash.Hash, 0, len(msg.Transactions))
	for _, tx := range msg.Transactions {
		hashList = append(hashList, tx.TxHash())
	}
	return hashList
}

// NewMsgBlock returns a new block with the passed header and no
// transactions.  See MsgBlock for details.
func NewMsgBlock(blockHeader *BlockHeader) *MsgBlock {
	return &MsgBlock{
		Header:       *blockHeader,
		Transactions: make([]*MsgTx, 0, defaultTransactionAlloc),
	}
}
