// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// MaxVarIntPayload is the maximum payload size for a variable length integer.
	MaxVarIntPayload = 9

	// MaxMessagePayload is the maximum bytes any single decoded structure
	// is allowed to claim.  It bounds variable length counts read off the
	// wire so malformed input cannot force huge allocations.
	MaxMessagePayload = 1024 * 1024 * 32 // 32MB

	// binaryFreeListMaxItems is the number of buffers to keep in the free
	// list to use for binary serialization and deserialization.
	binaryFreeListMaxItems = 1024
)

var (
	// littleEndian is a convenience variable since binary.LittleEndian is
	// quite long.
	littleEndian = binary.LittleEndian
)

// binaryFreeList defines a concurrent safe free list of byte slices (up to the
// maximum number defined by the binaryFreeListMaxItems constant) that have a
// cap of 8 (thus it supports up to a uint64).  It is used to provide temporary
// buffers for serializing and deserializing primitive numbers to and from their
// binary encoding in order to greatly reduce the number of allocations
// required.
type binaryFreeList chan []byte

// Borrow returns a byte slice from the free list with a length of 8.  A new
// buffer is allocated if there are not any available on the free list.
func (l binaryFreeList) Borrow() []byte {
	var buf []byte
	select {
	case buf = <-l:
	default:
		buf = make([]byte, 8)
	}
	return buf[:8]
}

// Return puts the provided byte slice back on the free list.  The buffer MUST
// have been obtained via the Borrow function and therefore have a cap of 8.
func (l binaryFreeList) Return(buf []byte) {
	select {
	case l <- buf:
	default:
		// Let it go to the garbage collector.
	}
}

// binarySerializer provides a free list of buffers to use for serializing and
// deserializing primitive integer values to and from io.Readers and io.Writers.
var binarySerializer binaryFreeList = make(chan []byte, binaryFreeListMaxItems)

// nonCanonicalVarIntFormat is the common format string used for
// non-canonically encoded variable length integer errors.
var nonCanonicalVarIntFormat = "non-canonical varint %x - discriminant " +
	"%x must encode a value greater than %x"

// uint32Time represents a unix timestamp encoded with a uint32.  It is used as
// a way to signal the readElement function how to decode a timestamp into a Go
// time.Time since it is otherwise ambiguous.
type uint32Time time.Time

// shortRead optimizes short (<= 8 byte) reads from r by special casing
// buffer allocations for specific reader types.
//
// The callback is called with a short buffer of 8 bytes in length, and only
// size bytes should be read from this array.
//
// This function will panic if called with a size greater than 8.
func shortRead(r io.Reader, size int, cb func(p [8]byte)) error {
	var data [8]byte

	switch r := r.(type) {
	// A *bytes.Reader is the common case when decoding blocks and
	// transactions from memory.
	case *bytes.Reader:
		n, _ := r.Read(data[:size])
		if n == 0 {
			return io.EOF
		}
		if n != size {
			return io.ErrUnexpectedEOF
		}
		cb(data)

	case *bytes.Buffer:
		n, _ := r.Read(data[:size])
		if n == 0 {
			return io.EOF
		}
		if n != size {
			return io.ErrUnexpectedEOF
		}
		cb(data)

	default:
		p := binarySerializer.Borrow()
		n, err := io.ReadFull(r, p[:size])
		if err == io.EOF && n > 0 {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			binarySerializer.Return(p)
			return err
		}
		cb(*(*[8]byte)(p))
		binarySerializer.Return(p)
	}

	return nil
}

// readUint8 reads a byte and stores it to *value.
func readUint8(r io.Reader, value *uint8) error {
	return shortRead(r, 1, func(p [8]byte) {
		*value = p[0]
	})
}

// readUint16LE reads the little endian encoding of a uint16 and stores it to *value.
func readUint16LE(r io.Reader, value *uint16) error {
	return shortRead(r, 2, func(p [8]byte) {
		*value = littleEndian.Uint16(p[:])
	})
}

// readUint32LE reads the little endian encoding of a uint32 and stores it to *value.
func readUint32LE(r io.Reader, value *uint32) error {
	return shortRead(r, 4, func(p [8]byte) {
		*value = littleEndian.Uint32(p[:])
	})
}

// readUint64LE reads the little endian encoding of a uint64 and stores it to *value.
func readUint64LE(r io.Reader, value *uint64) error {
	return shortRead(r, 8, func(p [8]byte) {
		*value = littleEndian.Uint64(p[:])
	})
}

// readElement reads the next sequence of bytes from r using little endian
// depending on the concrete type of element pointed to.
func readElement(r io.Reader, element interface{}) error {
	// Attempt to read the element based on the concrete type via fast
	// type assertions first.
	switch e := element.(type) {
	case *uint8:
		return readUint8(r, e)

	case *int32:
		var value uint32
		err := readUint32LE(r, &value)
		if err != nil {
			return err
		}
		*e = int32(value)
		return nil

	case *uint32:
		return readUint32LE(r, e)

	case *int64:
		var value uint64
		err := readUint64LE(r, &value)
		if err != nil {
			return err
		}
		*e = int64(value)
		return nil

	case *uint64:
		return readUint64LE(r, e)

	// Unix timestamp encoded as a uint32.
	case *uint32Time:
		var ts uint32
		err := readUint32LE(r, &ts)
		if err != nil {
			return err
		}
		*e = uint32Time(time.Unix(int64(ts), 0))
		return nil

	case *chainhash.Hash:
		_, err := io.ReadFull(r, e[:])
		return err
	}

	// Fall back to the slower binary.Read if a fast path was not available
	// above.
	return binary.Read(r, littleEndian, element)
}

// readElements reads multiple items from r.  It is equivalent to multiple
// calls to readElement.
func readElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		err := readElement(r, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// shortWrite optimizes short (<= 8 byte) writes to w by special casing
// buffer allocations for specific writer types.
//
// The callback returns a short buffer to 8 bytes in length and a size
// specifying how much of the buffer to write.
func shortWrite(w io.Writer, cb func() (data [8]byte, size int)) error {
	data, size := cb()

	switch w := w.(type) {
	// The most common case is that the writer is a *bytes.Buffer.  Optimize
	// for that case by appending binary serializations to its existing
	// capacity instead of paying the synchronization cost to serialize to
	// temporary buffers pulled from the binary freelist.
	case *bytes.Buffer:
		w.Write(data[:size])
		return nil

	default:
		p := binarySerializer.Borrow()[:size]
		copy(p, data[:size])
		_, err := w.Write(p)
		binarySerializer.Return(p)
		return err
	}
}

// writeUint8 writes the byte value to the writer.
func writeUint8(w io.Writer, value uint8) error {
	return shortWrite(w, func() (buf [8]byte, size int) {
		buf[0] = value
		return buf, 1
	})
}

// writeUint16LE writes the little endian encoding of value to the writer.
func writeUint16LE(w io.Writer, value uint16) error {
	return shortWrite(w, func() (buf [8]byte, size int) {
		littleEndian.PutUint16(buf[:], value)
		return buf, 2
	})
}

// writeUint32LE writes the little endian encoding of value to the writer.
func writeUint32LE(w io.Writer, value uint32) error {
	return shortWrite(w, func() (buf [8]byte, size int) {
		littleEndian.PutUint32(buf[:], value)
		return buf, 4
	})
}

// writeUint64LE writes the little endian encoding of value to the writer.
func writeUint64LE(w io.Writer, value uint64) error {
	return shortWrite(w, func() (buf [8]byte, size int) {
		littleEndian.PutUint64(buf[:], value)
		return buf, 8
	})
}

// writeElement writes the little endian representation of element to w.
func writeElement(w io.Writer, element interface{}) error {
	// Attempt to write the element based on the concrete type via fast
	// type assertions first.
	switch e := element.(type) {
	case *uint8:
		return writeUint8(w, *e)

	case *int32:
		return writeUint32LE(w, uint32(*e))

	case *uint32:
		return writeUint32LE(w, *e)

	case *int64:
		return writeUint64LE(w, uint64(*e))

	case *uint64:
		return writeUint64LE(w, *e)

	// Unix timestamp encoded as a uint32.
	case *uint32Time:
		return writeUint32LE(w, uint32(time.Time(*e).Unix()))

	case *chainhash.Hash:
		_, err := w.Write(e[:])
		return err
	}

	// Fall back to the slower binary.Write if a fast path was not available
	// above.
	return binary.Write(w, littleEndian, element)
}

// writeElements writes multiple items to w.  It is equivalent to multiple
// calls to writeElement.
func writeElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		err := writeElement(w, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadVarInt reads a variable length integer from r and returns it as a uint64.
func ReadVarInt(r io.Reader) (uint64, error) {
	const op = "ReadVarInt"
	var discriminant uint8
	err := readUint8(r, &discriminant)
	if err != nil {
		return 0, err
	}

	var rv uint64
	switch discriminant {
	case 0xff:
		var sv uint64
		err := readUint64LE(r, &sv)
		if err != nil {
			return 0, err
		}
		rv = sv

		// The encoding is not canonical if the value could have been
		// encoded using fewer bytes.
		min := uint64(0x100000000)
		if rv < min {
			msg := fmt.Sprintf(nonCanonicalVarIntFormat, rv, discriminant, min)
			return 0, messageError(op, ErrNonCanonicalVarInt, msg)
		}

	case 0xfe:
		var sv uint32
		err := readUint32LE(r, &sv)
		if err != nil {
			return 0, err
		}
		rv = uint64(sv)

		// The encoding is not canonical if the value could have been
		// encoded using fewer bytes.
		min := uint64(0x10000)
		if rv < min {
			msg := fmt.Sprintf(nonCanonicalVarIntFormat, rv, discriminant, min)
			return 0, messageError(op, ErrNonCanonicalVarInt, msg)
		}

	case 0xfd:
		var sv uint16
		err := readUint16LE(r, &sv)
		if err != nil {
			return 0, err
		}
		rv = uint64(sv)

		// The encoding is not canonical if the value could have been
		// encoded using fewer bytes.
		min := uint64(0xfd)
		if rv < min {
			msg := fmt.Sprintf(nonCanonicalVarIntFormat, rv, discriminant, min)
			return 0, messageError(op, ErrNonCanonicalVarInt, msg)
		}

	default:
		rv = uint64(discriminant)
	}

	return rv, nil
}

// WriteVarInt serializes val to w using a variable number of bytes depending
// on its value.
func WriteVarInt(w io.Writer, val uint64) error {
	if val < 0xfd {
		return writeUint8(w, uint8(val))
	}

	if val <= math.MaxUint16 {
		return shortWrite(w, func() (p [8]byte, size int) {
			p[0] = 0xfd
			littleEndian.PutUint16(p[1:], uint16(val))
			return p, 3
		})
	}

	if val <= math.MaxUint32 {
		return shortWrite(w, func() (p [8]byte, size int) {
			p[0] = 0xfe
			littleEndian.PutUint32(p[1:], uint32(val))
			return p, 5
		})
	}

	// shortWrite is not designed for writes > 8 bytes.
	err := writeUint8(w, 0xff)
	if err != nil {
		return err
	}
	return writeUint64LE(w, val)
}

// VarIntSerializeSize returns the number of bytes it would take to serialize
// val as a variable length integer.
func VarIntSerializeSize(val uint64) int {
	// The value is small enough to be represented by itself, so it's
	// just 1 byte.
	if val < 0xfd {
		return 1
	}

	// Discriminant 1 byte plus 2 bytes for the uint16.
	if val <= math.MaxUint16 {
		return 3
	}

	// Discriminant 1 byte plus 4 bytes for the uint32.
	if val <= math.MaxUint32 {
		return 5
	}

	// Discriminant 1 byte plus 8 bytes for the uint64.
	return 9
}

// ReadVarBytes reads a variable length byte array.  A byte array is encoded
// as a varInt containing the length of the array followed by the bytes
// themselves.  An error is returned if the length is greater than the
// passed maxAllowed parameter which helps protect against memory exhaustion
// attacks and forced panics through malformed messages.  The fieldName
// parameter is only used for the error message so it provides more context in
// the error.
func ReadVarBytes(r io.Reader, maxAllowed uint32, fieldName string) ([]byte, error) {
	const op = "ReadVarBytes"
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}

	// Prevent byte array larger than the max message size.  It would
	// be possible to cause memory exhaustion and panics without a sane
	// upper bound on this count.
	if count > uint64(maxAllowed) {
		msg := fmt.Sprintf("%s is larger than the max allowed size "+
			"[count %d, max %d]", fieldName, count, maxAllowed)
		return nil, messageError(op, ErrVarBytesTooLong, msg)
	}

	b := make([]byte, count)
	_, err = io.ReadFull(r, b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// WriteVarBytes serializes a variable length byte array to w as a varInt
// containing the number of bytes, followed by the bytes themselves.
func WriteVarBytes(w io.Writer, bytes []byte) error {
	slen := uint64(len(bytes))
	err := WriteVarInt(w, slen)
	if err != nil {
		return err
	}

	_, err = w.Write(bytes)
	return err
}

// readHashList reads a variable length list of hashes such as a merkle
// branch.  The count is bounded by maxAllowed.
func readHashList(r io.Reader, maxAllowed uint64, fieldName string) ([]chainhash.Hash, error) {
	const op = "readHashList"
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxAllowed {
		msg := fmt.Sprintf("too many %s hashes [count %d, max %d]",
			fieldName, count, maxAllowed)
		return nil, messageError(op, ErrTooManyHashes, msg)
	}
	if count == 0 {
		return nil, nil
	}

	hashes := make([]chainhash.Hash, count)
	for i := range hashes {
		if err := readElement(r, &hashes[i]); err != nil {
			return nil, err
		}
	}
	return hashes, nil
}

// writeHashList writes a varint count followed by each hash.
func writeHashList(w io.Writer, hashes []chainhash.Hash) error {
	if err := WriteVarInt(w, uint64(len(hashes))); err != nil {
		return err
	}
	for i := range hashes {
		if err := writeElement(w, &hashes[i]); err != nil {
			return err
		}
	}
	return nil
}
