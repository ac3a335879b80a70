package nftrecord

import (
	"encoding/binary"

	"github.com/nervina-labs/cota-smt-aggregator/smt"
	"github.com/nervina-labs/cota-smt-aggregator/types"
	"golang.org/x/crypto/blake2b"
)

// padTo32 right-pads a short key or value object into an H256, per
// spec.md §4.4: "keys/values shorter than 32 bytes are right-padded with
// zero; keys/values that don't fit are hashed instead."
func padTo32(b []byte) smt.H256 {
	var h smt.H256
	copy(h[:], b)
	return h
}

// nftID is the shared 26-byte (cota_id || smt_type || token_index) object
// embedded in Hold, Withdrawal, and Claim key material. Field order
// follows the original aggregator's CotaNFTId layout, not the tag-first
// order Define alone uses.
func nftID(cotaID types.CotaID, tag SMTType, tokenIndex types.TokenIndex) []byte {
	out := make([]byte, 0, 26)
	out = append(out, cotaID[:]...)
	tb := tag.bytes()
	out = append(out, tb[:]...)
	out = append(out, tokenIndex[:]...)
	return out
}

// DefineKey returns the SMT key for a class's Define record: smt_type(2)
// || cota_id(20), right-padded to 32 bytes.
func DefineKey(cotaID types.CotaID) smt.H256 {
	tb := TagDefine.bytes()
	return padTo32(append(append([]byte{}, tb[:]...), cotaID[:]...))
}

// DefineValue returns the SMT value for a Define record: total(4) ||
// issued(4) || configure(1), right-padded to 32 bytes.
func DefineValue(total, issued uint32, configure byte) smt.H256 {
	buf := make([]byte, 9)
	binary.BigEndian.PutUint32(buf[0:4], total)
	binary.BigEndian.PutUint32(buf[4:8], issued)
	buf[8] = configure
	return padTo32(buf)
}

// HoldKey returns the SMT key for a Hold record.
func HoldKey(cotaID types.CotaID, tokenIndex types.TokenIndex) smt.H256 {
	return padTo32(nftID(cotaID, TagHold, tokenIndex))
}

// HoldValue returns the SMT value for a Hold record: configure(1) ||
// state(1) || characteristic(20), right-padded to 32 bytes. The same
// layout is reused, unpadded, as the nft_info embedded in a Withdrawal
// value.
func HoldValue(configure, state byte, characteristic types.Characteristic) smt.H256 {
	return padTo32(nftInfoBytes(configure, state, characteristic))
}

func nftInfoBytes(configure, state byte, characteristic types.Characteristic) []byte {
	buf := make([]byte, 22)
	buf[0] = configure
	buf[1] = state
	copy(buf[2:], characteristic[:])
	return buf
}

// WithdrawalKey returns the SMT key for a Withdrawal record: same shape
// as HoldKey but tagged Withdrawal, so it is a key distinct from the
// token's Hold key; a withdrawal zeroes the Hold leaf and writes this one.
func WithdrawalKey(cotaID types.CotaID, tokenIndex types.TokenIndex) smt.H256 {
	return padTo32(nftID(cotaID, TagWithdrawal, tokenIndex))
}

// WithdrawalValue returns the SMT value for a Withdrawal record:
// blake2b-256(nft_info(22) || out_point(24) || to_lock), since the
// object itself (unbounded to_lock) does not fit in 32 bytes.
func WithdrawalValue(configure, state byte, characteristic types.Characteristic, outPoint types.OutPoint, toLock []byte) smt.H256 {
	buf := make([]byte, 0, 22+24+len(toLock))
	buf = append(buf, nftInfoBytes(configure, state, characteristic)...)
	buf = append(buf, outPoint[:]...)
	buf = append(buf, toLock...)
	return blake2b.Sum256(buf)
}

// ClaimKey returns the SMT key for a Claim record: blake2b-256(nft_id(26)
// || out_point(24)), since the concatenation exceeds 32 bytes.
func ClaimKey(cotaID types.CotaID, tokenIndex types.TokenIndex, outPoint types.OutPoint) smt.H256 {
	buf := make([]byte, 0, 26+24)
	buf = append(buf, nftID(cotaID, TagClaim, tokenIndex)...)
	buf = append(buf, outPoint[:]...)
	return blake2b.Sum256(buf)
}

// ClaimValue is the fixed sentinel every Claim record writes: all bits
// set, meaning "claimed". It carries no further information, so there is
// no ClaimValue(...) constructor — callers use this directly.
var ClaimValue = smt.Claimed
