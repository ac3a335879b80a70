// Package types holds the fixed-width primitives of spec.md §3: CotaId,
// TokenIndex, OutPoint, Characteristic, LockHash, and the small value
// types the encoding layer builds records out of. All identifiers are
// fixed-width byte strings; there is no variable-length integer anywhere
// in this layer.
package types

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// CotaID identifies an NFT class: 20 bytes.
type CotaID [20]byte

// TokenIndex is a 4-byte big-endian token index within a class.
type TokenIndex [4]byte

// Uint32 decodes the big-endian token index.
func (t TokenIndex) Uint32() uint32 {
	return binary.BigEndian.Uint32(t[:])
}

// TokenIndexFromUint32 encodes idx as a big-endian TokenIndex.
func TokenIndexFromUint32(idx uint32) TokenIndex {
	var t TokenIndex
	binary.BigEndian.PutUint32(t[:], idx)
	return t
}

// OutPoint references a blockchain cell: a 24-byte tx-hash prefix + index.
type OutPoint [24]byte

// Characteristic is a 20-byte NFT trait blob.
type Characteristic [20]byte

// LockHash namespaces all SMT state for one account: blake2b-256 of the
// account's lock script. The core never recomputes this from a lock
// script — request parsing (out of scope here) derives it once and passes
// it in.
type LockHash [32]byte

// LockHashFromScript derives the namespacing LockHash from a serialized
// lock script, per spec.md §3's "blake2b-256 of an account's lock script".
func LockHashFromScript(lockScript []byte) LockHash {
	return LockHash(blake2b.Sum256(lockScript))
}

// Bytes returns a copy of the underlying bytes.
func (l LockHash) Bytes() []byte {
	out := make([]byte, 32)
	copy(out, l[:])
	return out
}

func (l LockHash) String() string {
	return fmt.Sprintf("0x%x", l[:])
}

// TokenID pairs the two fields that must be unique within one request
// across every entry builder (spec.md §8: "Duplicate (cota_id,
// token_index) within one request is rejected").
type TokenID struct {
	CotaID     CotaID
	TokenIndex TokenIndex
}
