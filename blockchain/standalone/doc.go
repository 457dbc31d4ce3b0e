// Copyright (c) 2019-2022 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package standalone provides standalone functions useful for working with the
Palladium block chain consensus rules.

The primary goal of offering these functions via a separate package is to
reduce the required dependencies to a minimum as compared to the blockchain
package.

It is ideal for applications such as lightweight clients and merge-mining
software that need to ensure basic security properties hold, such as block
headers satisfying their proof of work and a given transaction being a member
of the merkle tree committed to by a header.

# Function categories

The provided functions fall into the following categories:

  - Proof-of-work
  - Merkle root calculation
  - Merkle tree inclusion proofs

# Proof-of-work

  - Converting to and from the compact target difficulty representation with
    the legacy negative and overflow flags
  - Calculating work values based on the compact target difficulty
  - Checking a block hash, or the parent block hash of an auxiliary proof of
    work, satisfies a target difficulty and that target difficulty is within
    a valid range

# Merkle root calculation

  - Calculation from individual leaf hashes
  - Calculation from a slice of transactions
  - Calculation from a leaf, its merkle branch and its index

# Merkle tree inclusion proofs

  - Generate an inclusion proof for a given tree and leaf index
  - Verify a leaf is a member of the tree at a given index via the proof

# Errors

Errors returned by this package are of type standalone.RuleError.  The
specific rule violation is identified by the ErrorKind it wraps, so callers
can use errors.Is, for example errors.Is(err, standalone.ErrHighHash).
*/
package standalone
