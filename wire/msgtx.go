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
	"strconv"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// TxVersion is the current latest supported transaction version.
	TxVersion = 2

	// MaxTxInSequenceNum is the maximum sequence number the sequence field
	// of a transaction input can be.
	MaxTxInSequenceNum uint32 = 0xffffffff

	// MaxPrevOutIndex is the maximum index the index field of a previous
	// outpoint can be.
	MaxPrevOutIndex uint32 = 0xffffffff

	// witnessMarkerByte is the byte that replaces the input count in the
	// extended serialization to signal witness data follows the outputs.
	witnessMarkerByte = 0x00

	// witnessFlagByte is the only defined flag value following the marker.
	witnessFlagByte = 0x01

	// minTxInPayload is the minimum payload size for a transaction input.
	// PreviousOutPoint.Hash + PreviousOutPoint.Index 4 bytes + Varint for
	// SignatureScript length 1 byte + Sequence 4 bytes.
	minTxInPayload = 9 + chainhash.HashSize

	// maxTxInPerMessage is the maximum number of transaction inputs that a
	// transaction which fits into a message could possibly have.
	maxTxInPerMessage = (MaxMessagePayload / minTxInPayload) + 1

	// minTxOutPayload is the minimum payload size for a transaction output.
	// Value 8 bytes + Varint for PkScript length 1 byte.
	minTxOutPayload = 9

	// maxTxOutPerMessage is the maximum number of transactions outputs that
	// a transaction which fits into a message could possibly have.
	maxTxOutPerMessage = (MaxMessagePayload / minTxOutPayload) + 1

	// maxWitnessItemsPerInput is the maximum number of witness items to be
	// read for the witness data for a single input.
	maxWitnessItemsPerInput = 4_000_000

	// maxWitnessItemSize is the maximum allowed size for an item within an
	// input's witness data.
	maxWitnessItemSize = 4_000_000
)

// OutPoint defines a data type that is used to track previous transaction
// outputs.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new transaction outpoint point with the provided
// hash and index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{
		Hash:  *hash,
		Index: index,
	}
}

// String returns the OutPoint in the human-readable form "hash:index".
func (o OutPoint) String() string {
	// Allocate enough for hash string, colon, and 10 digits.  Although
	// at the time of writing, the number of digits can be no greater than
	// the length of the decimal representation of maxTxOutPerMessage, the
	// maximum message payload may increase in the future and this
	// optimization may go unnoticed, so allocate space for 10 decimal
	// digits, which will fit any uint32.
	buf := make([]byte, 2*chainhash.HashSize+1, 2*chainhash.HashSize+1+10)
	copy(buf, o.Hash.String())
	buf[2*chainhash.HashSize] = ':'
	buf = strconv.AppendUint(buf, uint64(o.Index), 10)
	return string(buf)
}

// TxWitness defines the witness for a TxIn.  A witness is to be interpreted
// as a slice of byte slices, or a stack with one or many elements.
type TxWitness [][]byte

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input's witness.
func (t TxWitness) SerializeSize() int {
	n := VarIntSerializeSize(uint64(len(t)))
	for _, item := range t {
		n += VarIntSerializeSize(uint64(len(item))) + len(item)
	}
	return n
}

// TxIn defines a transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Witness          TxWitness
	Sequence         uint32
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input without its witness.
func (t *TxIn) SerializeSize() int {
	// Outpoint Hash 32 bytes + Outpoint Index 4 bytes + Sequence 4 bytes +
	// serialized varint size for the length of SignatureScript +
	// SignatureScript bytes.
	return 40 + VarIntSerializeSize(uint64(len(t.SignatureScript))) +
		len(t.SignatureScript)
}

// NewTxIn returns a new transaction input with the provided previous outpoint
// point and signature script with a default sequence of MaxTxInSequenceNum.
func NewTxIn(prevOut *OutPoint, signatureScript []byte, witness [][]byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Witness:          witness,
		Sequence:         MaxTxInSequenceNum,
	}
}

// TxOut defines a transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// SerializeSize returns the number of bytes it would take to serialize the
// the transaction output.
func (t *TxOut) SerializeSize() int {
	// Value 8 bytes + serialized varint size for the length of PkScript +
	// PkScript bytes.
	return 8 + VarIntSerializeSize(uint64(len(t.PkScript))) + len(t.PkScript)
}

// NewTxOut returns a new transaction output with the provided transaction
// value and public key script.
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{
		Value:    value,
		PkScript: pkScript,
	}
}

// MsgTx is the transaction format shared by this chain and the merge-mined
// parent chains.  It carries optional segregated witness data which is never
// part of the transaction hash.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// HasWitness returns false if none of the inputs within the transaction
// contain witness data, true otherwise.
func (msg *MsgTx) HasWitness() bool {
	for _, txIn := range msg.TxIn {
		if len(txIn.Witness) != 0 {
			return true
		}
	}
	return false
}

// IsCoinBase determines whether or not a transaction is a coinbase.  A
// coinbase is a special transaction created by miners that has no inputs.
// This is represented in the block chain by a transaction with a single input
// that has a previous output transaction index set to the maximum value along
// with a zero hash.
func (msg *MsgTx) IsCoinBase() bool {
	if len(msg.TxIn) != 1 {
		return false
	}

	prevOut := &msg.TxIn[0].PreviousOutPoint
	return prevOut.Index == MaxPrevOutIndex && prevOut.Hash == chainhash.Hash{}
}

// TxHash generates the hash for the transaction without witness data.
func (msg *MsgTx) TxHash() chainhash.Hash {
	// Encode the transaction and calculate double sha256 on the result.
	// Ignore the error returns since the only way the encode could fail
	// is being out of memory or due to nil pointers, both of which would
	// cause a run-time panic.
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSizeStripped()))
	_ = msg.serialize(buf, false)
	return chainhash.DoubleHashH(buf.Bytes())
}

// WitnessHash generates the hash of the transaction serialized with its
// witness data.  It is identical to TxHash when no input has a witness.
func (msg *MsgTx) WitnessHash() chainhash.Hash {
	if !msg.HasWitness() {
		return msg.TxHash()
	}
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize()))
	_ = msg.serialize(buf, true)
	return chainhash.DoubleHashH(buf.Bytes())
}

// Copy creates a deep copy of a transaction so that the original does not get
// modified when the copy is manipulated.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := MsgTx{
		Version:  msg.Version,
		TxIn:     make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:    make([]*TxOut, 0, len(msg.TxOut)),
		LockTime: msg.LockTime,
	}

	for _, oldTxIn := range msg.TxIn {
		newTxIn := TxIn{
			PreviousOutPoint: oldTxIn.PreviousOutPoint,
			SignatureScript:  bytes.Clone(oldTxIn.SignatureScript),
			Sequence:         oldTxIn.Sequence,
		}
		if len(oldTxIn.Witness) != 0 {
			newTxIn.Witness = make(TxWitness, len(oldTxIn.Witness))
			for i, item := range oldTxIn.Witness {
				newTxIn.Witness[i] = bytes.Clone(item)
			}
		}
		newTx.TxIn = append(newTx.TxIn, &newTxIn)
	}

	for _, oldTxOut := range msg.TxOut {
		newTx.TxOut = append(newTx.TxOut, &TxOut{
			Value:    oldTxOut.Value,
			PkScript: bytes.Clone(oldTxOut.PkScript),
		})
	}

	return &newTx
}

// Deserialize decodes a transaction from r into the receiver.  Both the
// legacy and the segregated witness encodings are accepted.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	const op = "MsgTx.Deserialize"
	err := readElement(r, &msg.Version)
	if err != nil {
		return err
	}

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}

	// A zero input count is the witness marker.  The flag byte that
	// follows must be the only defined flag and the real input count
	// comes after it.
	var hasWitness bool
	if count == witnessMarkerByte {
		var flag uint8
		if err := readUint8(r, &flag); err != nil {
			return err
		}
		if flag != witnessFlagByte {
			str := fmt.Sprintf("witness tx but flag byte is %x", flag)
			return messageError(op, ErrInvalidWitnessFlag, str)
		}
		hasWitness = true

		count, err = ReadVarInt(r)
		if err != nil {
			return err
		}
	}

	// Prevent more input transactions than could possibly fit into a
	// message.  It would be possible to cause memory exhaustion and panics
	// without a sane upper bound on this count.
	if count > uint64(maxTxInPerMessage) {
		str := fmt.Sprintf("too many input transactions to fit into "+
			"max message size [count %d, max %d]", count,
			maxTxInPerMessage)
		return messageError(op, ErrTooManyTxIns, str)
	}

	msg.TxIn = make([]*TxIn, count)
	for i := uint64(0); i < count; i++ {
		ti := new(TxIn)
		err = readElements(r, &ti.PreviousOutPoint.Hash,
			&ti.PreviousOutPoint.Index)
		if err != nil {
			return err
		}
		ti.SignatureScript, err = ReadVarBytes(r, MaxMessagePayload,
			"transaction input signature script")
		if err != nil {
			return err
		}
		err = readElement(r, &ti.Sequence)
		if err != nil {
			return err
		}
		msg.TxIn[i] = ti
	}

	count, err = ReadVarInt(r)
	if err != nil {
		return err
	}

	// Prevent more output transactions than could possibly fit into a
	// message.  It would be possible to cause memory exhaustion and panics
	// without a sane upper bound on this count.
	if count > uint64(maxTxOutPerMessage) {
		str := fmt.Sprintf("too many output transactions to fit into "+
			"max message size [count %d, max %d]", count,
			maxTxOutPerMessage)
		return messageError(op, ErrTooManyTxOuts, str)
	}

	msg.TxOut = make([]*TxOut, count)
	for i := uint64(0); i < count; i++ {
		to := new(TxOut)
		err = readElement(r, &to.Value)
		if err != nil {
			return err
		}
		to.PkScript, err = ReadVarBytes(r, MaxMessagePayload,
			"transaction output public key script")
		if err != nil {
			return err
		}
		msg.TxOut[i] = to
	}

	if hasWitness {
		for _, ti := range msg.TxIn {
			witCount, err := ReadVarInt(r)
			if err != nil {
				return err
			}
			if witCount > maxWitnessItemsPerInput {
				str := fmt.Sprintf("too many witness items to fit "+
					"into max message size [count %d, max %d]",
					witCount, maxWitnessItemsPerInput)
				return messageError(op, ErrTooManyWitnessItems, str)
			}
			ti.Witness = make(TxWitness, witCount)
			for j := uint64(0); j < witCount; j++ {
				ti.Witness[j], err = ReadVarBytes(r,
					maxWitnessItemSize, "script witness item")
				if err != nil {
					return err
				}
			}
		}
	}

	return readElement(r, &msg.LockTime)
}

// Serialize encodes the transaction to w.  Witness data is included when any
// input carries it.
func (msg *MsgTx) Serialize(w io.Writer) error {
	return msg.serialize(w, msg.HasWitness())
}

// SerializeNoWitness encodes the transaction to w in the legacy format that
// is used for the transaction hash.
func (msg *MsgTx) SerializeNoWitness(w io.Writer) error {
	return msg.serialize(w, false)
}

func (msg *MsgTx) serialize(w io.Writer, withWitness bool) error {
	err := writeElement(w, &msg.Version)
	if err != nil {
		return err
	}

	if withWitness {
		if _, err := w.Write([]byte{witnessMarkerByte, witnessFlagByte}); err != nil {
			return err
		}
	}

	err = WriteVarInt(w, uint64(len(msg.TxIn)))
	if err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		err = writeElements(w, &ti.PreviousOutPoint.Hash,
			&ti.PreviousOutPoint.Index)
		if err != nil {
			return err
		}
		err = WriteVarBytes(w, ti.SignatureScript)
		if err != nil {
			return err
		}
		err = writeElement(w, &ti.Sequence)
		if err != nil {
			return err
		}
	}

	err = WriteVarInt(w, uint64(len(msg.TxOut)))
	if err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		err = writeElement(w, &to.Value)
		if err != nil {
			return err
		}
		err = WriteVarBytes(w, to.PkScript)
		if err != nil {
			return err
		}
	}

	if withWitness {
		for _, ti := range msg.TxIn {
			err = WriteVarInt(w, uint64(len(ti.Witness)))
			if err != nil {
				return err
			}
			for _, item := range ti.Witness {
				err = WriteVarBytes(w, item)
				if err != nil {
					return err
				}
			}
		}
	}

	return writeElement(w, &msg.LockTime)
}

// Bytes returns the serialized form of the transaction in bytes.
func (msg *MsgTx) Bytes() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize()))
	err := msg.Serialize(buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeSizeStripped returns the number of bytes it would take to
// serialize the transaction without witness data.
func (msg *MsgTx) SerializeSizeStripped() int {
	// Version 4 bytes + LockTime 4 bytes + Serialized varint size for the
	// number of transaction inputs and outputs.
	n := 8 + VarIntSerializeSize(uint64(len(msg.TxIn))) +
		VarIntSerializeSize(uint64(len(msg.TxOut)))

	for _, txIn := range msg.TxIn {
		n += txIn.SerializeSize()
	}
	for _, txOut := range msg.TxOut {
		n += txOut.SerializeSize()
	}
	return n
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction as Serialize would.
func (msg *MsgTx) SerializeSize() int {
	n := msg.SerializeSizeStripped()
	if msg.HasWitness() {
		// Marker and flag bytes.
		n += 2
		for _, txIn := range msg.TxIn {
			n += txIn.Witness.SerializeSize()
		}
	}
	return n
}

// NewMsgTx returns a new transaction message with the given version and no
// inputs or outputs.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{
		Version: version,
		TxIn:    make([]*TxIn, 0, 1),
		TxOut:   make([]*TxOut, 0, 1),
	}
}
