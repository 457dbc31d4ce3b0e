// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

// ErrorKind identifies a kind of error.  It has full support for errors.Is
// and errors.As, so the caller can directly check against an error kind
// when determining the reason for an error.
//
// The kinds that describe why a submitted block is rejected use the reject
// reasons of the BIP22 block submission interface as their string so they can
// be returned to merge miners as is.
type ErrorKind string

// These constants are used to identify a specific RuleError.
const (
	// ErrAuxPowVersionMissing indicates a submitted block at or after the
	// auxiliary proof of work activation height does not signal one in its
	// version.
	ErrAuxPowVersionMissing = ErrorKind("bad-auxpow-version-missing")

	// ErrAuxPowUnexpected indicates a submitted block before the auxiliary
	// proof of work activation height signals one in its version.
	ErrAuxPowUnexpected = ErrorKind("bad-auxpow-unexpected")

	// ErrAuxPowDataMissing indicates a submitted block signals an auxiliary
	// proof of work but does not carry one.
	ErrAuxPowDataMissing = ErrorKind("bad-auxpow-data-missing")

	// ErrCoinbaseMissing indicates a submitted block does not start with a
	// coinbase transaction.
	ErrCoinbaseMissing = ErrorKind("bad-cb-missing")

	// ErrGenerateUnsupported indicates CPU mining was requested on a
	// network where blocks must be merge mined.
	ErrGenerateUnsupported = ErrorKind("ErrGenerateUnsupported")

	// ErrGettingDifficulty indicates that there was an error getting the
	// PoW difficulty.
	ErrGettingDifficulty = ErrorKind("ErrGettingDifficulty")

	// ErrSerializeHeader indicates an attempt to serialize a block header
	// failed.
	ErrSerializeHeader = ErrorKind("ErrSerializeHeader")

	// ErrParentUnsolved indicates the auxiliary proof of work parent block
	// could not be solved for the target of the child block.
	ErrParentUnsolved = ErrorKind("ErrParentUnsolved")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies a mining rule rule violation. It has full support for
// errors.Is and errors.As, so the caller can ascertain the specific reason
// for the error by checking the underlying error. It is used to indicate
// that processing of a block failed due to one of the merge mining rules.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// makeError creates an Error given a set of arguments.
func makeError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}
