// Copyright (c) 2020-2021 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"errors"
	"io"
	"testing"
)

// TestErrorKindStringer tests the stringized output for the ErrorKind type.
func TestErrorKindStringer(t *testing.T) {
	tests := []struct {
		in   ErrorKind
		want string
	}{
		{ErrAuxPowVersionMissing, "bad-auxpow-version-missing"},
		{ErrAuxPowUnexpected, "bad-auxpow-unexpected"},
		{ErrAuxPowDataMissing, "bad-auxpow-data-missing"},
		{ErrCoinbaseMissing, "bad-cb-missing"},
		{ErrGenerateUnsupported, "ErrGenerateUnsupported"},
		{ErrGettingDifficulty, "ErrGettingDifficulty"},
		{ErrSerializeHeader, "ErrSerializeHeader"},
		{ErrParentUnsolved, "ErrParentUnsolved"},
	}

	for i, test := range tests {
		result := test.in.Error()
		if result != test.want {
			t.Errorf("#%d: got: %s want: %s", i, result, test.want)
			continue
		}
	}
}

// TestError tests the error output for the Error type.
func TestError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Error
		want string
	}{{
		Error{Description: "some error"},
		"some error",
	}, {
		Error{Description: "human-readable error"},
		"human-readable error",
	}}

	for i, test := range tests {
		result := test.in.Error()
		if result != test.want {
			t.Errorf("#%d: got: %s want: %s", i, result, test.want)
			continue
		}
	}
}

// TestErrorKindIsAs ensures both ErrorKind and Error can be identified as being
// a specific error kind via errors.Is and unwrapped via errors.As.
func TestErrorKindIsAs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
		wantAs    ErrorKind
	}{{
		name:      "ErrAuxPowUnexpected == ErrAuxPowUnexpected",
		err:       ErrAuxPowUnexpected,
		target:    ErrAuxPowUnexpected,
		wantMatch: true,
		wantAs:    ErrAuxPowUnexpected,
	}, {
		name:      "Error.ErrAuxPowUnexpected == ErrAuxPowUnexpected",
		err:       makeError(ErrAuxPowUnexpected, ""),
		target:    ErrAuxPowUnexpected,
		wantMatch: true,
		wantAs:    ErrAuxPowUnexpected,
	}, {
		name:      "Error.ErrAuxPowUnexpected == Error.ErrAuxPowUnexpected",
		err:       makeError(ErrAuxPowUnexpected, ""),
		target:    makeError(ErrAuxPowUnexpected, ""),
		wantMatch: true,
		wantAs:    ErrAuxPowUnexpected,
	}, {
		name:      "ErrAuxPowUnexpected != ErrCoinbaseMissing",
		err:       ErrAuxPowUnexpected,
		target:    ErrCoinbaseMissing,
		wantMatch: false,
		wantAs:    ErrAuxPowUnexpected,
	}, {
		name:      "Error.ErrAuxPowUnexpected != ErrCoinbaseMissing",
		err:       makeError(ErrAuxPowUnexpected, ""),
		target:    ErrCoinbaseMissing,
		wantMatch: false,
		wantAs:    ErrAuxPowUnexpected,
	}, {
		name:      "ErrAuxPowUnexpected != Error.ErrCoinbaseMissing",
		err:       ErrAuxPowUnexpected,
		target:    makeError(ErrCoinbaseMissing, ""),
		wantMatch: false,
		wantAs:    ErrAuxPowUnexpected,
	}, {
		name:      "Error.ErrAuxPowUnexpected != Error.ErrCoinbaseMissing",
		err:       makeError(ErrAuxPowUnexpected, ""),
		target:    makeError(ErrCoinbaseMissing, ""),
		wantMatch: false,
		wantAs:    ErrAuxPowUnexpected,
	}, {
		name:      "Error.ErrAuxPowUnexpected != io.EOF",
		err:       makeError(ErrAuxPowUnexpected, ""),
		target:    io.EOF,
		wantMatch: false,
		wantAs:    ErrAuxPowUnexpected,
	}}

	for _, test := range tests {
		// Ensure the error matches or not depending on the expected result.
		result := errors.Is(test.err, test.target)
		if result != test.wantMatch {
			t.Errorf("%s: incorrect error identification -- got %v, want %v",
				test.name, result, test.wantMatch)
			continue
		}

		// Ensure the underlying error kind can be unwrapped is and is the
		// expected kind.
		var kind ErrorKind
		if !errors.As(test.err, &kind) {
			t.Errorf("%s: unable to unwrap to error kind", test.name)
			continue
		}
		if kind != test.wantAs {
			t.Errorf("%s: unexpected unwrapped error kind -- got %v, want %v",
				test.name, kind, test.wantAs)
			continue
		}
	}
}
