// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// AssertError identifies an error that indicates an internal code consistency
// issue and should be treated as a critical and unrecoverable error.
type AssertError string

// Error returns the assertion error as a human-readable string and satisfies
// the error interface.
func (e AssertError) Error() string {
	return "assertion failed: " + string(e)
}

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific ErrorKind.
const (
	// ErrDuplicateBlock indicates a block with the same hash already
	// exists.
	ErrDuplicateBlock = ErrorKind("ErrDuplicateBlock")

	// ErrKnownInvalidBlock indicates a block was recently rejected and is
	// therefore known to be invalid.
	ErrKnownInvalidBlock = ErrorKind("ErrKnownInvalidBlock")

	// ErrMissingParent indicates that the block was an orphan.
	ErrMissingParent = ErrorKind("ErrMissingParent")

	// ErrUnknownBlock indicates a requested block is not known.
	ErrUnknownBlock = ErrorKind("ErrUnknownBlock")

	// ErrNoTransactions indicates the block does not have at least one
	// transaction.  A valid block must have at least the coinbase
	// transaction.
	ErrNoTransactions = ErrorKind("ErrNoTransactions")

	// ErrBlockTooBig indicates the serialized block size exceeds the
	// maximum allowed size.
	ErrBlockTooBig = ErrorKind("ErrBlockTooBig")

	// ErrDuplicateTx indicates a block contains an identical transaction
	// (or at least two transactions which hash to the same value).  A
	// valid block may only contain unique transactions.
	ErrDuplicateTx = ErrorKind("ErrDuplicateTx")

	// ErrFirstTxNotCoinbase indicates the first transaction in a block
	// is not a coinbase transaction.
	ErrFirstTxNotCoinbase = ErrorKind("ErrFirstTxNotCoinbase")

	// ErrMultipleCoinbases indicates a block contains more than one
	// coinbase transaction.
	ErrMultipleCoinbases = ErrorKind("ErrMultipleCoinbases")

	// ErrBadMerkleRoot indicates the calculated merkle root does not match
	// the expected value.
	ErrBadMerkleRoot = ErrorKind("ErrBadMerkleRoot")

	// ErrTimeTooOld indicates the time is either before the median time of
	// the last several blocks per the chain consensus rules.
	ErrTimeTooOld = ErrorKind("ErrTimeTooOld")

	// ErrTimeTooNew indicates the time is too far in the future as compared
	// the current time.
	ErrTimeTooNew = ErrorKind("ErrTimeTooNew")

	// ErrUnexpectedDifficulty indicates specified bits do not align with
	// the expected value either because it doesn't match the calculated
	// value based on difficulty regarding the rules or it is out of the
	// valid range.
	ErrUnexpectedDifficulty = ErrorKind("ErrUnexpectedDifficulty")

	// ErrHighHash indicates the block does not hash to a value which is
	// lower than the required target difficultly.
	ErrHighHash = ErrorKind("ErrHighHash")

	// ErrBadCheckpoint indicates a block that is expected to be at a
	// checkpoint height does not match the expected one.
	ErrBadCheckpoint = ErrorKind("ErrBadCheckpoint")

	// ErrAuxPowRequired indicates a block at or after the auxiliary proof
	// of work activation height does not signal an auxiliary proof of
	// work.
	ErrAuxPowRequired = ErrorKind("ErrAuxPowRequired")

	// ErrAuxPowNotActive indicates a block before the auxiliary proof of
	// work activation height signals an auxiliary proof of work.
	ErrAuxPowNotActive = ErrorKind("ErrAuxPowNotActive")

	// ErrAuxPowFlagMismatch indicates the auxiliary proof of work version
	// bit and the presence of an auxiliary proof of work payload disagree.
	ErrAuxPowFlagMismatch = ErrorKind("ErrAuxPowFlagMismatch")

	// ErrMissingAuxPow indicates a block signals an auxiliary proof of work
	// but carries no payload.
	ErrMissingAuxPow = ErrorKind("ErrMissingAuxPow")

	// ErrAuxPowParentHighHash indicates the auxiliary proof of work parent
	// block hash does not satisfy the difficulty target of the child block.
	ErrAuxPowParentHighHash = ErrorKind("ErrAuxPowParentHighHash")

	// ErrAuxPowMerkleMismatch indicates the coinbase merkle branch of an
	// auxiliary proof of work does not lead to the parent block merkle
	// root.
	ErrAuxPowMerkleMismatch = ErrorKind("ErrAuxPowMerkleMismatch")

	// ErrAuxPowNoCoinbaseInput indicates the auxiliary proof of work
	// coinbase transaction has no inputs.
	ErrAuxPowNoCoinbaseInput = ErrorKind("ErrAuxPowNoCoinbaseInput")

	// ErrAuxPowMagicMissing indicates the merged mining magic was not found
	// in the auxiliary proof of work coinbase signature script.
	ErrAuxPowMagicMissing = ErrorKind("ErrAuxPowMagicMissing")

	// ErrAuxPowCommitmentShort indicates fewer than 32 bytes follow the
	// merged mining magic in the coinbase signature script.
	ErrAuxPowCommitmentShort = ErrorKind("ErrAuxPowCommitmentShort")

	// ErrAuxPowCommitmentMismatch indicates the block hash committed to by
	// the auxiliary proof of work coinbase is not the hash of the child
	// block.
	ErrAuxPowCommitmentMismatch = ErrorKind("ErrAuxPowCommitmentMismatch")

	// ErrDuplicateAuxPowParent indicates the auxiliary proof of work parent
	// block was already used to accept another block.
	ErrDuplicateAuxPowParent = ErrorKind("ErrDuplicateAuxPowParent")

	// ErrDBCorruption indicates the database is corrupt.
	ErrDBCorruption = ErrorKind("ErrDBCorruption")

	// ErrDBClosed indicates an attempt to use a closed database.
	ErrDBClosed = ErrorKind("ErrDBClosed")

	// ErrDBIO indicates an I/O failure while accessing the database.
	ErrDBIO = ErrorKind("ErrDBIO")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// ContextError wraps an error with additional context.  It has full support
// for errors.Is and errors.As, so the caller can ascertain the specific wrapped
// error.
//
// RawErr contains the original error in the case where an error has been
// converted.
type ContextError struct {
	Err         error
	Description string
	RawErr      error
}

// Error satisfies the error interface and prints human-readable errors.
func (e ContextError) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e ContextError) Unwrap() error {
	return e.Err
}

// contextError creates a ContextError given a set of arguments.
func contextError(kind ErrorKind, desc string) ContextError {
	return ContextError{Err: kind, Description: desc}
}

// unknownBlockError create a ContextError with the kind of error set to
// ErrUnknownBlock and a description that includes the provided hash.
func unknownBlockError(hash *chainhash.Hash) ContextError {
	str := fmt.Sprintf("block %s is not known", hash)
	return contextError(ErrUnknownBlock, str)
}

// RuleError identifies a rule violation.  It is used to indicate that
// processing of a block failed due to one of the many validation rules.  It
// has full support for errors.Is and errors.As, so the caller can ascertain the
// specific reason for the rule violation.
type RuleError struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e RuleError) Unwrap() error {
	return e.Err
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(kind ErrorKind, desc string) RuleError {
	return RuleError{Err: kind, Description: desc}
}

// MultiError houses several errors as a single error.  RuleError values whose
// cause is itself a rule error from another package wrap both through this
// type so errors.Is matches either kind.
type MultiError []error

// Error satisfies the error interface and prints human-readable errors.
func (e MultiError) Error() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].Error()
}

// Is implements the interface to work with the standard library's errors.Is.
//
// It iterates each of the errors in the multi error and reports whether any
// of them match target.
func (e MultiError) Is(target error) bool {
	for _, err := range e {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// As implements the interface to work with the standard library's errors.As.
func (e MultiError) As(target interface{}) bool {
	for _, err := range e {
		if errors.As(err, target) {
			return true
		}
	}
	return false
}
