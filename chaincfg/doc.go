// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2022 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines chain configuration parameters.
//
// In addition to the main Palladium network, which is intended for the
// transfer of monetary value, there also exists two currently active standard
// networks: regression test and testnet.  These networks are incompatible with
// each other (each sharing a different genesis block or message start bytes)
// and software should handle errors where input intended for one network is
// used on an application instance running on a different network.
//
// Each network fixes the consensus values that govern proof of work: the
// proof of work limit, the legacy retarget timespan and spacing, the height at
// which the linearly weighted moving average (LWMA) difficulty algorithm takes
// over, the difficulty reset window leading up to it, and the height at which
// merge mining with an auxiliary proof of work becomes mandatory.
//
// For main packages, a (typically global) var may be assigned the address of
// one of the standard Param vars for use as the application's "active" network.
// When a network parameter is needed, it may then be looked up through this
// variable (either directly, or hidden in a library call).
//
//	package main
//
//	import (
//		"flag"
//		"fmt"
//
//		"github.com/palladium-coin/plmd/chaincfg"
//	)
//
//	func main() {
//		var testnet = flag.Bool("testnet", false, "operate on the test network")
//		flag.Parse()
//
//		// By default (without -testnet), use mainnet.
//		var chainParams = chaincfg.MainNetParams()
//
//		// Modify active network parameters if operating on testnet.
//		if *testnet {
//			chainParams = chaincfg.TestNetParams()
//		}
//
//		// later...
//
//		fmt.Println(chainParams.GenesisHash)
//	}
//
// If an application does not use one of the standard Palladium networks, a
// new Params struct may be created which defines the parameters for the
// non-standard network.  As a general rule of thumb, all network parameters
// should be unique to the network, but parameter collisions can still occur.
package chaincfg
