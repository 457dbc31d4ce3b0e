// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
)

// CompactToUint256 converts the compact representation used to encode
// difficulty targets to an unsigned 256-bit integer.  The representation is
// similar to IEEE754 floating point numbers.
//
// Like IEEE754 floating point, there are three basic components: the sign,
// the exponent, and the mantissa.  They are broken out as follows:
//
//  1. the most significant 8 bits represent the unsigned base 256 exponent
//  2. zero-based bit 23 (the 24th bit) represents the sign bit
//  3. the least significant 23 bits represent the mantissa
//
// Diagram:
//
//	-------------------------------------------------
//	|   Exponent     |    Sign    |    Mantissa     |
//	|-----------------------------------------------|
//	| 8 bits [31-24] | 1 bit [23] | 23 bits [22-00] |
//	-------------------------------------------------
//
// The formula to calculate N is:
//
//	N = (-1^sign) * mantissa * 256^(exponent-3)
//
// The negative and overflow flags follow the legacy encoding exactly: both are
// only reported for a non-zero mantissa after it has been shifted into place,
// so, for example, 0x01803456 decodes to zero and is not negative.
func CompactToUint256(bits uint32) (n uint256.Uint256, isNegative bool, overflows bool) {
	// Extract the mantissa, sign bit, and exponent.
	mantissa := bits & 0x007fffff
	isSignBitSet := bits&0x00800000 != 0
	exponent := bits >> 24

	// Small exponents shift the mantissa right, possibly to zero, and can
	// never overflow.
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		n.SetUint64(uint64(mantissa))
		return n, mantissa != 0 && isSignBitSet, false
	}

	// Nothing to do when the mantissa is zero as any multiple of it will
	// necessarily also be 0 and therefore it can never be negative or
	// overflow.
	if mantissa == 0 {
		return n, false, false
	}

	// Any encoded exponent of 35 or greater shifts past 256 bits.  An exponent
	// of 34 leaves room for an 8-bit mantissa and 33 for a 16-bit one, while
	// 32 and lower always fit the 23-bit mantissa.
	overflows = exponent >= 35 || (exponent >= 34 && mantissa > 0xff) ||
		(exponent >= 33 && mantissa > 0xffff)
	if overflows {
		return n, isSignBitSet, true
	}
	n.SetUint64(uint64(mantissa))
	n.Lsh(8 * (exponent - 3))
	return n, isSignBitSet, false
}

// uint256ToCompact converts a uint256 to a compact representation using an
// unsigned 32-bit integer.  The compact representation only provides 23 bits
// of precision, so values larger than (2^23 - 1) only encode the most
// significant digits of the number.  See CompactToUint256 for details.
func uint256ToCompact(n *uint256.Uint256, isNegative bool) uint32 {
	// No need to do any work if it's zero.
	if n.IsZero() {
		return 0
	}

	// Since the base for the exponent is 256, the exponent can be treated as
	// the number of bytes it takes to represent the value.  So, shift the
	// number right or left accordingly.  This is equivalent to:
	// mantissa = n / 256^(exponent-3)
	var mantissa uint32
	exponent := uint32((n.BitLen() + 7) / 8)
	if exponent <= 3 {
		mantissa = n.Uint32() << (8 * (3 - exponent))
	} else {
		// Use a copy to avoid modifying the caller's original value.
		mantissa = new(uint256.Uint256).RshVal(n, 8*(exponent-3)).Uint32()
	}

	// When the mantissa already has the sign bit set, the number is too large
	// to fit into the available 23-bits, so divide the number by 256 and
	// increment the exponent accordingly.
	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	bits := exponent<<24 | mantissa
	if isNegative && mantissa&0x007fffff != 0 {
		bits |= 0x00800000
	}
	return bits
}

// Uint256ToCompact converts a uint256 to a compact representation using an
// unsigned 32-bit integer.  The compact representation only provides 23 bits
// of precision, so values larger than (2^23 - 1) only encode the most
// significant digits of the number.  See CompactToUint256 for details.
func Uint256ToCompact(n *uint256.Uint256) uint32 {
	const isNegative = false
	return uint256ToCompact(n, isNegative)
}

// CalcWork calculates a work value from difficulty bits.  The difficulty for
// generating a block is increased by decreasing the value which the generated
// hash must be less than, so the work value which will be accumulated must be
// the inverse of the target.  The result is zero when the bits are negative,
// overflow or encode zero.  Otherwise it is 2^256 / (target+1).
func CalcWork(bits uint32) uint256.Uint256 {
	target, isNegative, overflows := CompactToUint256(bits)
	if isNegative || overflows || target.IsZero() {
		return uint256.Uint256{}
	}

	// 2^256 can't be represented by a uint256, so use the identity
	// 2^256 / (t+1) = ((2^256-t-1) / (t+1)) + 1 where 2^256-t-1 is the one's
	// complement of t.  A target of 2^256-1 can't be encoded in compact form.
	divisor := new(uint256.Uint256).SetUint64(1).Add(&target)
	return *target.Not().Div(divisor).AddUint64(1)
}

// HashToUint256 converts the provided hash to an unsigned 256-bit integer
// that can be used to perform math comparisons.  Hashes are interpreted as
// little endian.
func HashToUint256(hash *chainhash.Hash) uint256.Uint256 {
	return *new(uint256.Uint256).SetBytesLE((*[32]byte)(hash))
}

// checkProofOfWorkRange ensures the provided target difficulty is in min/max
// range per the provided proof-of-work limit and returns the decoded target.
func checkProofOfWorkRange(bits uint32, powLimit *uint256.Uint256) (uint256.Uint256, error) {
	target, isNegative, overflows := CompactToUint256(bits)
	if isNegative {
		str := fmt.Sprintf("target difficulty bits %08x is a negative value",
			bits)
		return uint256.Uint256{}, ruleError(ErrUnexpectedDifficulty, str)
	}
	if overflows {
		str := fmt.Sprintf("target difficulty bits %08x is higher than the "+
			"max limit %064x", bits, powLimit)
		return uint256.Uint256{}, ruleError(ErrUnexpectedDifficulty, str)
	}
	if target.IsZero() {
		str := fmt.Sprintf("target difficulty bits %08x encode zero", bits)
		return uint256.Uint256{}, ruleError(ErrUnexpectedDifficulty, str)
	}

	// The target difficulty must not exceed the maximum allowed.
	if target.Gt(powLimit) {
		str := fmt.Sprintf("target difficulty %064x is higher than max %064x",
			&target, powLimit)
		return uint256.Uint256{}, ruleError(ErrUnexpectedDifficulty, str)
	}

	return target, nil
}

// CheckProofOfWorkRange ensures the provided target difficulty represented by
// the given header bits is in min/max range per the provided proof-of-work
// limit.
func CheckProofOfWorkRange(bits uint32, powLimit *uint256.Uint256) error {
	_, err := checkProofOfWorkRange(bits, powLimit)
	return err
}

// CheckProofOfWork ensures the provided hash is less than or equal to the
// target difficulty represented by given header bits and that said difficulty
// is in min/max range per the provided proof-of-work limit.
//
// The same check serves both a block's own hash and the parent block hash of
// an auxiliary proof of work.  It is pure and safe for concurrent access.
func CheckProofOfWork(powHash *chainhash.Hash, bits uint32, powLimit *uint256.Uint256) error {
	target, err := checkProofOfWorkRange(bits, powLimit)
	if err != nil {
		return err
	}

	hashNum := HashToUint256(powHash)
	if hashNum.Gt(&target) {
		str := fmt.Sprintf("proof of work hash %064x is higher than expected "+
			"max of %064x", &hashNum, &target)
		return ruleError(ErrHighHash, str)
	}

	return nil
}
