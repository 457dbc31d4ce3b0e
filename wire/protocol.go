// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
)

// CurrencyNet represents which network a message belongs to.  It is the
// little-endian interpretation of the four message start bytes.
type CurrencyNet uint32

// Constants used to indicate the message network.  They can also be used to
// seek to the next message when a stream's state is unknown, but this package
// does not provide that functionality since it's generally a better idea to
// simply disconnect clients that are misbehaving over TCP.
const (
	// MainNet represents the main network (fa c7 b2 da).
	MainNet CurrencyNet = 0xdab2c7fa

	// TestNet represents the public test network (0b 11 09 07).
	TestNet CurrencyNet = 0x0709110b

	// RegNet represents the regression test network (fa bf b5 da).
	RegNet CurrencyNet = 0xdab5bffa
)

// cnStrings is a map of networks back to their constant names for pretty
// printing.
var cnStrings = map[CurrencyNet]string{
	MainNet: "MainNet",
	TestNet: "TestNet",
	RegNet:  "RegNet",
}

// String returns the CurrencyNet in human-readable form.
func (n CurrencyNet) String() string {
	if s, ok := cnStrings[n]; ok {
		return s
	}

	return fmt.Sprintf("Unknown CurrencyNet (%d)", uint32(n))
}
