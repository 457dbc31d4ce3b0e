// Copyright (c) 2019-2023 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
)

// hexToBytes converts the passed hex string into bytes and will panic if there
// is an error.  This is only provided for the hard-coded constants so errors in
// the source code can be detected. It will only (and must only) be called with
// hard-coded values.
func hexToBytes(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("invalid hex in source file: " + s)
	}
	return b
}

// hexToUint256 converts the passed hex string into a Uint256 and will panic if
// there is an error.  This is only provided for the hard-coded constants so
// errors in the source code can be detected. It will only (and must only) be
// called with hard-coded values.
func hexToUint256(s string) *uint256.Uint256 {
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b := hexToBytes(s)
	if len(b) > 32 {
		panic("hex in source file overflows mod 2^256: " + s)
	}
	return new(uint256.Uint256).SetByteSlice(b)
}

// mockMainNetPowLimit returns the pow limit for the main network as of the
// time this comment was written.  It is used to ensure the tests are stable
// independent of any potential changes to chain parameters.
func mockMainNetPowLimit() *uint256.Uint256 {
	return hexToUint256("00000000ffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
}

// mockRegNetPowLimit returns the pow limit for the regression test network.
func mockRegNetPowLimit() *uint256.Uint256 {
	return hexToUint256("7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
}

// TestCompactToUint256 ensures converting from the compact representation used
// for target difficulties to unsigned 256-bit integers produces the correct
// results including the legacy negative and overflow flags.
func TestCompactToUint256(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string // test description
		input     uint32 // compact target difficulty bits to test
		want      string // expected uint256
		neg       bool   // expect result to be a negative number
		overflows bool   // expect result to overflow
	}{{
		name:  "mainnet genesis",
		input: 0x1d00ffff,
		want:  "00000000ffff0000000000000000000000000000000000000000000000000000",
	}, {
		name:  "regnet genesis",
		input: 0x207fffff,
		want:  "7fffff0000000000000000000000000000000000000000000000000000000000",
	}, {
		name:  "zero",
		input: 0,
		want:  "00",
	}, {
		name:  "exponent 0 shifts the mantissa away",
		input: 0x00123456,
		want:  "00",
	}, {
		name:  "exponent 1 with mantissa below the kept byte",
		input: 0x01003456,
		want:  "00",
	}, {
		name:  "exponent 2 with mantissa below the kept bytes",
		input: 0x02000056,
		want:  "00",
	}, {
		name:  "exponent 3 zero mantissa",
		input: 0x03000000,
		want:  "00",
	}, {
		name:  "exponent 4 zero mantissa",
		input: 0x04000000,
		want:  "00",
	}, {
		name:  "sign bit with exponent 0 is not negative",
		input: 0x00923456,
		want:  "00",
	}, {
		name:  "sign bit with shifted out mantissa is not negative",
		input: 0x01803456,
		want:  "00",
	}, {
		name:  "sign bit with exponent 2 shifted out mantissa",
		input: 0x02800056,
		want:  "00",
	}, {
		name:  "sign bit with exponent 3 zero mantissa",
		input: 0x03800000,
		want:  "00",
	}, {
		name:  "sign bit with exponent 4 zero mantissa",
		input: 0x04800000,
		want:  "00",
	}, {
		name:  "exponent 1",
		input: 0x01123456,
		want:  "12",
	}, {
		name:  "exponent 1 negative",
		input: 0x01fedcba,
		want:  "7e",
		neg:   true,
	}, {
		name:  "exponent 2",
		input: 0x02123456,
		want:  "1234",
	}, {
		name:  "exponent 3",
		input: 0x03123456,
		want:  "123456",
	}, {
		name:  "exponent 4",
		input: 0x04123456,
		want:  "12345600",
	}, {
		name:  "exponent 4 negative",
		input: 0x04923456,
		want:  "12345600",
		neg:   true,
	}, {
		name:  "exponent 5 with high mantissa byte",
		input: 0x05009234,
		want:  "92340000",
	}, {
		name:  "exponent 32",
		input: 0x20123456,
		want:  "1234560000000000000000000000000000000000000000000000000000000000",
	}, {
		name:      "max uint256 + 1 via exponent 33 (overflows)",
		input:     0x21010000,
		want:      "00",
		overflows: true,
	}, {
		name:      "negative max uint256 + 1 (negative and overflows)",
		input:     0x21810000,
		want:      "00",
		neg:       true,
		overflows: true,
	}, {
		name:      "max uint256 + 1 via exponent 34 (overflows)",
		input:     0x22000100,
		want:      "00",
		overflows: true,
	}, {
		name:      "max uint256 + 1 via exponent 35 (overflows)",
		input:     0x23000001,
		want:      "00",
		overflows: true,
	}, {
		name:      "max exponent (overflows)",
		input:     0xff123456,
		want:      "00",
		overflows: true,
	}}

	for _, test := range tests {
		want := hexToUint256(test.want)

		result, isNegative, overflows := CompactToUint256(test.input)
		if !result.Eq(want) {
			t.Errorf("%q: mismatched result -- got %x, want %x", test.name,
				result.Bytes(), want.Bytes())
			continue
		}
		if isNegative != test.neg {
			t.Errorf("%q: mismatched negative -- got %v, want %v", test.name,
				isNegative, test.neg)
			continue
		}
		if overflows != test.overflows {
			t.Errorf("%q: mismatched overflows -- got %v, want %v", test.name,
				overflows, test.overflows)
			continue
		}
	}
}

// TestUint256ToCompact ensures converting from unsigned 256-bit integers to the
// representation used for target difficulties in the header bits field
// produces the correct results.
func TestUint256ToCompact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string // test description
		input string // uint256 to test
		neg   bool   // treat as a negative number
		want  uint32 // expected encoded value
	}{{
		name:  "mainnet pow limit",
		input: "00000000ffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		want:  0x1d00ffff,
	}, {
		name:  "regnet pow limit",
		input: "7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		want:  0x207fffff,
	}, {
		name:  "zero",
		input: "00",
		want:  0,
	}, {
		name:  "negative zero is zero",
		input: "00",
		neg:   true,
		want:  0,
	}, {
		name:  "one byte",
		input: "12",
		want:  0x01120000,
	}, {
		name:  "one byte negative",
		input: "7e",
		neg:   true,
		want:  0x01fe0000,
	}, {
		name:  "128 needs an extra byte",
		input: "80",
		want:  0x02008000,
	}, {
		name:  "two bytes",
		input: "1234",
		want:  0x02123400,
	}, {
		name:  "three bytes",
		input: "123456",
		want:  0x03123456,
	}, {
		name:  "four bytes",
		input: "12345600",
		want:  0x04123456,
	}, {
		name:  "four bytes negative",
		input: "12345600",
		neg:   true,
		want:  0x04923456,
	}, {
		name:  "high mantissa bit moves to the next exponent",
		input: "92340000",
		want:  0x05009234,
	}, {
		name:  "exponent 32",
		input: "1234560000000000000000000000000000000000000000000000000000000000",
		want:  0x20123456,
	}}

	for _, test := range tests {
		input := hexToUint256(test.input)

		var result uint32
		if test.neg {
			result = uint256ToCompact(input, true)
		} else {
			result = Uint256ToCompact(input)
		}
		if result != test.want {
			t.Errorf("%q: mismatched result -- got %x, want %x", test.name,
				result, test.want)
			continue
		}
	}
}

// TestCompactRoundTrip ensures canonical compact encodings survive a decode
// and encode cycle unchanged.
func TestCompactRoundTrip(t *testing.T) {
	t.Parallel()

	canonical := []uint32{0x1d00ffff, 0x1b0404cb, 0x1c05a3f4, 0x207fffff,
		0x1a05db8b, 0x03123456, 0x04123456, 0x05009234, 0x20123456}
	for _, bits := range canonical {
		n, isNegative, overflows := CompactToUint256(bits)
		if isNegative || overflows {
			t.Errorf("%08x: unexpected flags neg=%v overflow=%v", bits,
				isNegative, overflows)
			continue
		}
		if got := Uint256ToCompact(&n); got != bits {
			t.Errorf("%08x: round trip produced %08x", bits, got)
		}
	}
}

// TestCalcWork ensures calculating a work value from a compact target
// difficulty produces the correct results.
func TestCalcWork(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string // test description
		input uint32 // target difficulty bits to test
		want  string // expected uint256
	}{{
		name:  "0x1b01ffff",
		input: 0x1b01ffff,
		want:  "0000000000000000000000000000000000000000000000000000800040002000",
	}, {
		name:  "0x1b01330e",
		input: 0x1b01330e,
		want:  "0000000000000000000000000000000000000000000000000000d56f2dcbe105",
	}, {
		name:  "higher diff (exponent 24)",
		input: 0x185fb28a,
		want:  "000000000000000000000000000000000000000000000002acd33ddd458512da",
	}, {
		name:  "mainnet genesis",
		input: 0x1d00ffff,
		want:  "0000000000000000000000000000000000000000000000000000000100010001",
	}, {
		name:  "zero",
		input: 0,
		want:  "00",
	}, {
		name:  "max uint256",
		input: 0x2100ffff,
		want:  "01",
	}, {
		name:  "negative target difficulty",
		input: 0x1810000,
		want:  "00",
	}, {
		name:  "overflowing target difficulty",
		input: 0x23000001,
		want:  "00",
	}}

	for _, test := range tests {
		want := hexToUint256(test.want)
		result := CalcWork(test.input)
		if !result.Eq(want) {
			t.Errorf("%q: mismatched result -- got %x, want %x", test.name,
				result.Bytes(), want.Bytes())
			continue
		}
	}
}

// TestHashToUint256 ensures converting a hash treated as a little endian
// unsigned 256-bit value to a uint256 works as intended.
func TestHashToUint256(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string // test description
		hash string // hash to convert
		want string // expected uint256 bytes in hex
	}{{
		name: "mainnet genesis hash",
		hash: "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f",
		want: "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f",
	}, {
		name: "regnet genesis hash",
		hash: "0f9188f13cb7b2c71f2a335e3a4fc328bf5beb436012afca590b1a11466e2206",
		want: "0f9188f13cb7b2c71f2a335e3a4fc328bf5beb436012afca590b1a11466e2206",
	}}

	for _, test := range tests {
		hash, err := chainhash.NewHashFromStr(test.hash)
		if err != nil {
			t.Errorf("%q: unexpected err parsing test hash: %v", test.name, err)
			continue
		}
		want := hexToUint256(test.want)

		result := HashToUint256(hash)
		if !result.Eq(want) {
			t.Errorf("%s: unexpected result -- got %x, want %x", test.name,
				result.Bytes(), want.Bytes())
			continue
		}
	}
}

// TestCheckProofOfWorkRange ensures target difficulties that are outside of
// the acceptable ranges are detected as an error and those inside are not.
func TestCheckProofOfWorkRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string           // test description
		bits     uint32           // compact target difficulty bits to test
		powLimit *uint256.Uint256 // proof of work limit
		err      error            // expected error
	}{{
		name:     "harder than the limit",
		bits:     0x1b01ffff,
		powLimit: mockMainNetPowLimit(),
		err:      nil,
	}, {
		name:     "smallest allowed",
		bits:     0x1010000,
		powLimit: mockMainNetPowLimit(),
		err:      nil,
	}, {
		name:     "max allowed (the encoded pow limit)",
		bits:     0x1d00ffff,
		powLimit: mockMainNetPowLimit(),
		err:      nil,
	}, {
		name:     "regnet limit",
		bits:     0x207fffff,
		powLimit: mockRegNetPowLimit(),
		err:      nil,
	}, {
		name:     "zero",
		bits:     0,
		powLimit: mockMainNetPowLimit(),
		err:      ErrUnexpectedDifficulty,
	}, {
		name:     "mantissa shifted to zero",
		bits:     0x01003456,
		powLimit: mockMainNetPowLimit(),
		err:      ErrUnexpectedDifficulty,
	}, {
		name:     "negative",
		bits:     0x1810000,
		powLimit: mockMainNetPowLimit(),
		err:      ErrUnexpectedDifficulty,
	}, {
		name:     "overflows",
		bits:     0x23000001,
		powLimit: mockMainNetPowLimit(),
		err:      ErrUnexpectedDifficulty,
	}, {
		name:     "pow limit + 1",
		bits:     0x1d010000,
		powLimit: mockMainNetPowLimit(),
		err:      ErrUnexpectedDifficulty,
	}, {
		name:     "regnet bits against mainnet limit",
		bits:     0x207fffff,
		powLimit: mockMainNetPowLimit(),
		err:      ErrUnexpectedDifficulty,
	}}

	for _, test := range tests {
		err := CheckProofOfWorkRange(test.bits, test.powLimit)
		if !errors.Is(err, test.err) {
			t.Errorf("%q: unexpected err -- got %v, want %v", test.name, err,
				test.err)
			continue
		}
	}
}

// TestCheckProofOfWork ensures hashes and target difficulties that are outside
// of the acceptable ranges are detected as an error and those inside are not.
func TestCheckProofOfWork(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string           // test description
		hash     string           // proof of work hash to test
		bits     uint32           // compact target difficulty bits to test
		powLimit *uint256.Uint256 // proof of work limit
		err      error            // expected error
	}{{
		name:     "mainnet genesis",
		hash:     "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f",
		bits:     0x1d00ffff,
		powLimit: mockMainNetPowLimit(),
		err:      nil,
	}, {
		name:     "testnet genesis",
		hash:     "000000000933ea01ad0ee984209779baaec3ced90fa3f408719526f8d77f4943",
		bits:     0x1d00ffff,
		powLimit: mockMainNetPowLimit(),
		err:      nil,
	}, {
		name:     "regnet genesis",
		hash:     "0f9188f13cb7b2c71f2a335e3a4fc328bf5beb436012afca590b1a11466e2206",
		bits:     0x207fffff,
		powLimit: mockRegNetPowLimit(),
		err:      nil,
	}, {
		name:     "hash exactly the target",
		hash:     "00000000ffff0000000000000000000000000000000000000000000000000000",
		bits:     0x1d00ffff,
		powLimit: mockMainNetPowLimit(),
		err:      nil,
	}, {
		name:     "hash one above the target",
		hash:     "00000000ffff0000000000000000000000000000000000000000000000000001",
		bits:     0x1d00ffff,
		powLimit: mockMainNetPowLimit(),
		err:      ErrHighHash,
	}, {
		name:     "regnet genesis against a harder target",
		hash:     "0f9188f13cb7b2c71f2a335e3a4fc328bf5beb436012afca590b1a11466e2206",
		bits:     0x1d00ffff,
		powLimit: mockRegNetPowLimit(),
		err:      ErrHighHash,
	}, {
		name:     "zero target",
		hash:     "0000000000000000000000000000000000000000000000000000000000000000",
		bits:     0,
		powLimit: mockMainNetPowLimit(),
		err:      ErrUnexpectedDifficulty,
	}, {
		name:     "negative target",
		hash:     "0000000000000000000000000000000000000000000000000000000000000000",
		bits:     0x1c800001,
		powLimit: mockMainNetPowLimit(),
		err:      ErrUnexpectedDifficulty,
	}, {
		name:     "overflowing target",
		hash:     "0000000000000000000000000000000000000000000000000000000000000000",
		bits:     0x22000100,
		powLimit: mockMainNetPowLimit(),
		err:      ErrUnexpectedDifficulty,
	}, {
		name:     "target above the limit",
		hash:     "0000000000000000000000000000000000000000000000000000000000000000",
		bits:     0x1d010000,
		powLimit: mockMainNetPowLimit(),
		err:      ErrUnexpectedDifficulty,
	}}

	for _, test := range tests {
		hash, err := chainhash.NewHashFromStr(test.hash)
		if err != nil {
			t.Errorf("%q: unexpected err parsing test hash: %v", test.name, err)
			continue
		}

		// The check is pure, so repeating it must produce the same result.
		for i := 0; i < 2; i++ {
			err = CheckProofOfWork(hash, test.bits, test.powLimit)
			if !errors.Is(err, test.err) {
				t.Errorf("%q: unexpected err (pass %d) -- got %v, want %v",
					test.name, i, err, test.err)
				break
			}
		}
	}
}
