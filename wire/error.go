// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2015-2020 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrNonCanonicalVarInt is returned when a variable length integer is
	// not canonically encoded.
	ErrNonCanonicalVarInt = ErrorKind("ErrNonCanonicalVarInt")

	// ErrVarBytesTooLong is returned when a variable-length byte slice
	// exceeds the maximum message size allowed.
	ErrVarBytesTooLong = ErrorKind("ErrVarBytesTooLong")

	// ErrTooManyTxs is returned when a the number of transactions exceed the
	// maximum allowed.
	ErrTooManyTxs = ErrorKind("ErrTooManyTxs")

	// ErrTooManyTxIns is returned when the number of transaction inputs
	// exceeds the maximum allowed.
	ErrTooManyTxIns = ErrorKind("ErrTooManyTxIns")

	// ErrTooManyTxOuts is returned when the number of transaction outputs
	// exceeds the maximum allowed.
	ErrTooManyTxOuts = ErrorKind("ErrTooManyTxOuts")

	// ErrTooManyWitnessItems is returned when an input witness stack has
	// more items than allowed.
	ErrTooManyWitnessItems = ErrorKind("ErrTooManyWitnessItems")

	// ErrInvalidWitnessFlag is returned when the segregated witness marker
	// is followed by an unsupported flag byte.
	ErrInvalidWitnessFlag = ErrorKind("ErrInvalidWitnessFlag")

	// ErrTooManyHashes is returned when a merkle branch carries more hashes
	// than a branch of a valid tree could.
	ErrTooManyHashes = ErrorKind("ErrTooManyHashes")

	// ErrAuxPowMissing is returned when serializing a block whose header
	// signals an auxiliary proof of work but no payload is attached.
	ErrAuxPowMissing = ErrorKind("ErrAuxPowMissing")

	// ErrAuxPowInvalid is returned when a deserialized auxiliary proof of
	// work is structurally unusable, such as a coinbase without inputs.
	ErrAuxPowInvalid = ErrorKind("ErrAuxPowInvalid")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// MessageError identifies an error related to wire messages. It has
// full support for errors.Is and errors.As, so the caller can
// ascertain the specific reason for the error by checking the
// underlying error.
type MessageError struct {
	Func        string
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e MessageError) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e MessageError) Unwrap() error {
	return e.Err
}

// messageError creates a MessageError given a set of arguments.
func messageError(fn string, kind ErrorKind, desc string) MessageError {
	return MessageError{Func: fn, Err: kind, Description: desc}
}
