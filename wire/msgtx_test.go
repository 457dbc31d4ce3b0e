// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2024 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/davecgh/go-spew/spew"
)

// genesisCoinbaseTxBytes is the serialized main network genesis coinbase.
var genesisCoinbaseTxBytes = hexToBytes("01000000" + "01" +
	"0000000000000000000000000000000000000000000000000000000000000000" +
	"ffffffff" + "4d" +
	"04ffff001d0104455468652054696d65732030332f4a616e2f32303039204368" +
	"616e63656c6c6f72206f6e206272696e6b206f66207365636f6e64206261696c" +
	"6f757420666f722062616e6b73" +
	"ffffffff" + "01" + "00f2052a01000000" + "43" +
	"4104678afdb0fe5548271967f1a67130b7105cd6a828e03909a67962e0ea1f61" +
	"deb649f6bc3f4cef38c4f35504e51ec112de5c384df7ba0b8d578a4c702b6bf1" +
	"1d5fac" + "00000000")

// TestTx tests the MsgTx API.
func TestTx(t *testing.T) {
	t.Parallel()

	// Ensure the outpoint hash is stored and rendered as expected.
	prevHash := mainNetGenesisMerkleRoot
	prevOut := NewOutPoint(&prevHash, 1)
	if !prevOut.Hash.IsEqual(&prevHash) {
		t.Errorf("NewOutPoint: wrong hash - got %v, want %v",
			spew.Sprint(&prevOut.Hash), spew.Sprint(&prevHash))
	}
	wantStr := prevHash.String() + ":1"
	if s := prevOut.String(); s != wantStr {
		t.Errorf("OutPoint.String: got %s, want %s", s, wantStr)
	}

	// Ensure we get the same transaction input back out.
	sigScript := []byte{0x04, 0x31, 0xdc, 0x00, 0x1b, 0x01, 0x62}
	txIn := NewTxIn(prevOut, sigScript, nil)
	if txIn.Sequence != MaxTxInSequenceNum {
		t.Errorf("NewTxIn: wrong sequence - got %v, want %v",
			txIn.Sequence, MaxTxInSequenceNum)
	}
	if !bytes.Equal(txIn.SignatureScript, sigScript) {
		t.Errorf("NewTxIn: wrong signature script - got %v, want %v",
			spew.Sdump(txIn.SignatureScript), spew.Sdump(sigScript))
	}

	pkScript := []byte{0x51}
	txOut := NewTxOut(5000000000, pkScript)
	if txOut.Value != 5000000000 {
		t.Errorf("NewTxOut: wrong value - got %v", txOut.Value)
	}

	msg := NewMsgTx(TxVersion)
	msg.AddTxIn(txIn)
	msg.AddTxOut(txOut)
	if len(msg.TxIn) != 1 || len(msg.TxOut) != 1 {
		t.Fatalf("AddTxIn/AddTxOut: got %d inputs and %d outputs",
			len(msg.TxIn), len(msg.TxOut))
	}
	if msg.IsCoinBase() {
		t.Error("IsCoinBase: spending transaction reported as coinbase")
	}
	if msg.HasWitness() {
		t.Error("HasWitness: transaction without witness reports one")
	}
	if msg.WitnessHash() != msg.TxHash() {
		t.Error("WitnessHash differs from TxHash without witness data")
	}

	// Ensure a deep copy is made.
	newMsg := msg.Copy()
	if !reflect.DeepEqual(newMsg, msg) {
		t.Fatalf("Copy: mismatched tx\n got: %s want: %s",
			spew.Sdump(newMsg), spew.Sdump(msg))
	}
	newMsg.TxIn[0].SignatureScript[0] = 0x00
	if msg.TxIn[0].SignatureScript[0] != 0x04 {
		t.Fatal("Copy: signature script shares memory with the original")
	}
}

// TestTxHash tests the ability to generate the hash of a transaction
// accurately using the main network genesis coinbase.
func TestTxHash(t *testing.T) {
	t.Parallel()

	if !genesisCoinbaseTx.IsCoinBase() {
		t.Fatal("IsCoinBase: genesis coinbase not detected")
	}
	txHash := genesisCoinbaseTx.TxHash()
	if !txHash.IsEqual(&mainNetGenesisMerkleRoot) {
		t.Fatalf("TxHash: wrong hash - got %v, want %v", txHash,
			mainNetGenesisMerkleRoot)
	}
}

// TestTxWire tests the MsgTx wire encode and decode.
func TestTxWire(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := genesisCoinbaseTx.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: unexpected error %v", err)
	}
	if !bytes.Equal(buf.Bytes(), genesisCoinbaseTxBytes) {
		t.Fatalf("Serialize\n got: %s want: %s", spew.Sdump(buf.Bytes()),
			spew.Sdump(genesisCoinbaseTxBytes))
	}
	if size := genesisCoinbaseTx.SerializeSize(); size != len(genesisCoinbaseTxBytes) {
		t.Fatalf("SerializeSize: got %d, want %d", size,
			len(genesisCoinbaseTxBytes))
	}

	var tx MsgTx
	if err := tx.Deserialize(bytes.NewReader(genesisCoinbaseTxBytes)); err != nil {
		t.Fatalf("Deserialize: unexpected error %v", err)
	}
	if !reflect.DeepEqual(&tx, &genesisCoinbaseTx) {
		t.Fatalf("Deserialize\n got: %s want: %s", spew.Sdump(&tx),
			spew.Sdump(&genesisCoinbaseTx))
	}
}

// TestTxWitness tests the segregated witness encoding of transactions and
// ensures witness data never affects the transaction hash.
func TestTxWitness(t *testing.T) {
	t.Parallel()

	tx := genesisCoinbaseTx.Copy()
	tx.TxIn[0].Witness = TxWitness{
		bytes.Repeat([]byte{0x00}, 32),
		{0x01, 0x02},
	}
	if !tx.HasWitness() {
		t.Fatal("HasWitness: witness not detected")
	}

	serialized, err := tx.Bytes()
	if err != nil {
		t.Fatalf("Bytes: unexpected error %v", err)
	}
	if len(serialized) != tx.SerializeSize() {
		t.Fatalf("SerializeSize: got %d, want %d", tx.SerializeSize(),
			len(serialized))
	}
	if serialized[4] != witnessMarkerByte || serialized[5] != witnessFlagByte {
		t.Fatalf("missing witness marker: %x", serialized[4:6])
	}

	if got := tx.TxHash(); got != mainNetGenesisMerkleRoot {
		t.Fatalf("TxHash changed by witness: got %v, want %v", got,
			mainNetGenesisMerkleRoot)
	}
	if tx.WitnessHash() == tx.TxHash() {
		t.Fatal("WitnessHash: equals TxHash with witness data present")
	}

	var stripped bytes.Buffer
	if err := tx.SerializeNoWitness(&stripped); err != nil {
		t.Fatalf("SerializeNoWitness: unexpected error %v", err)
	}
	if !bytes.Equal(stripped.Bytes(), genesisCoinbaseTxBytes) {
		t.Fatalf("SerializeNoWitness\n got: %x\nwant: %x", stripped.Bytes(),
			genesisCoinbaseTxBytes)
	}
	if tx.SerializeSizeStripped() != len(genesisCoinbaseTxBytes) {
		t.Fatalf("SerializeSizeStripped: got %d, want %d",
			tx.SerializeSizeStripped(), len(genesisCoinbaseTxBytes))
	}

	var decoded MsgTx
	if err := decoded.Deserialize(bytes.NewReader(serialized)); err != nil {
		t.Fatalf("Deserialize: unexpected error %v", err)
	}
	if !reflect.DeepEqual(&decoded, tx) {
		t.Fatalf("Deserialize\n got: %s want: %s", spew.Sdump(&decoded),
			spew.Sdump(tx))
	}
}

// TestTxWireErrors performs negative tests against wire encode and decode of
// MsgTx to confirm error paths work correctly.
func TestTxWireErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		max      int   // Max size of fixed buffer to induce errors
		writeErr error // Expected write error
		readErr  error // Expected read error
	}{
		// Force error in version.
		{0, io.ErrShortWrite, io.EOF},
		// Force error in number of transaction inputs.
		{4, io.ErrShortWrite, io.EOF},
		// Force error in transaction input previous block hash.
		{5, io.ErrShortWrite, io.EOF},
		// Force error in transaction input previous block output index.
		{37, io.ErrShortWrite, io.EOF},
		// Force error in transaction input signature script length.
		{41, io.ErrShortWrite, io.EOF},
		// Force error in transaction input signature script.
		{42, io.ErrShortWrite, io.EOF},
		// Force error in transaction input sequence.
		{119, io.ErrShortWrite, io.EOF},
		// Force error in number of transaction outputs.
		{123, io.ErrShortWrite, io.EOF},
		// Force error in transaction output value.
		{124, io.ErrShortWrite, io.EOF},
		// Force error in transaction output pk script length.
		{132, io.ErrShortWrite, io.EOF},
		// Force error in transaction output pk script.
		{133, io.ErrShortWrite, io.EOF},
		// Force error in transaction lock time.
		{200, io.ErrShortWrite, io.EOF},
	}

	t.Logf("Running %d tests", len(tests))
	for i, test := range tests {
		w := newFixedWriter(test.max)
		err := genesisCoinbaseTx.Serialize(w)
		if !errors.Is(err, test.writeErr) {
			t.Errorf("Serialize #%d wrong error got: %v, want: %v", i,
				err, test.writeErr)
			continue
		}

		var tx MsgTx
		r := bytes.NewReader(genesisCoinbaseTxBytes[:test.max])
		err = tx.Deserialize(r)
		if !errors.Is(err, test.readErr) {
			t.Errorf("Deserialize #%d wrong error got: %v, want: %v", i,
				err, test.readErr)
			continue
		}
	}
}

// TestTxInvalidWitnessFlag ensures a witness marker followed by an unknown
// flag is rejected.
func TestTxInvalidWitnessFlag(t *testing.T) {
	t.Parallel()

	b := []byte{0x01, 0x00, 0x00, 0x00, witnessMarkerByte, 0x02}
	var tx MsgTx
	err := tx.Deserialize(bytes.NewReader(b))
	if !errors.Is(err, ErrInvalidWitnessFlag) {
		t.Fatalf("Deserialize: got %v, want %v", err, ErrInvalidWitnessFlag)
	}
}

// TestTxOverflowErrors ensures input and output counts far beyond anything a
// message could carry are rejected before allocation.
func TestTxOverflowErrors(t *testing.T) {
	t.Parallel()

	maxCount := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	tests := []struct {
		name string
		buf  []byte
		err  error
	}{{
		name: "too many inputs",
		buf:  append([]byte{0x01, 0x00, 0x00, 0x00}, maxCount...),
		err:  ErrTooManyTxIns,
	}, {
		name: "too many outputs",
		buf: func() []byte {
			b := []byte{0x01, 0x00, 0x00, 0x00, 0x01}
			b = append(b, make([]byte, chainhash.HashSize+4)...)
			b = append(b, 0x00, 0xff, 0xff, 0xff, 0xff)
			return append(b, maxCount...)
		}(),
		err: ErrTooManyTxOuts,
	}}

	for _, test := range tests {
		var tx MsgTx
		err := tx.Deserialize(bytes.NewReader(test.buf))
		if !errors.Is(err, test.err) {
			t.Errorf("%s: got %v, want %v", test.name, err, test.err)
		}
	}
}
