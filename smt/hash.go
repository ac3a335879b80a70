package smt

import "golang.org/x/crypto/blake2b"

// Depth is the number of bit levels below the root; CKB-style SMTs are
// always depth 256 over H256 keys and values.
const Depth = 256

// zero holds the precomputed hash of an all-empty subtree at every branch
// level, so that empty subtrees never need to be materialized in storage.
// zero[0] is the leaf layer (the canonical empty value); zero[L+1] is the
// hash of two zero[L] children at branch level L.
var zero [Depth + 1]H256

func init() {
	zero[0] = Zero
	for l := 0; l < Depth; l++ {
		zero[l+1] = merge(uint8ForLevel(l), zero[l], zero[l])
	}
}

func uint8ForLevel(level int) byte {
	// levels run 0..255 and fit a byte exactly; kept as a named helper so
	// the mapping from "branch level" to the domain-separation byte fed
	// into merge is documented in one place.
	return byte(level)
}

func zeroAt(level int) H256 {
	return zero[level]
}

// merge is the branch node's hash function: blake2b-256 of the level byte
// (domain separation between tree heights) followed by the two children.
// Two empty (Zero) children merge to Zero, so an empty subtree hashes to
// Zero at every level and an empty tree's root is Zero.
// This is the SMT engine's own internal hashing, independent of the
// blake2b canonical-record hashing the encoding layer performs on typed
// NFT values (nftrecord package) — the two are different uses of the same
// primitive.
func merge(level byte, left, right H256) H256 {
	if left.IsZero() && right.IsZero() {
		return Zero
	}
	buf := make([]byte, 1+32+32)
	buf[0] = level
	copy(buf[1:33], left[:])
	copy(buf[33:65], right[:])
	sum := blake2b.Sum256(buf)
	return H256(sum)
}
