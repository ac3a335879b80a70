// Package nftrecord is the aggregator's C4: deterministic, endian-fixed
// conversion between typed NFT records (Define, Hold, Withdrawal, Claim)
// and the (H256, H256) leaves the SMT engine stores, per spec.md §4.4.
// Every function here is a pure, total mapping — same inputs always
// produce byte-identical keys and values, which is what spec.md §8's
// "encoding determinism" invariant requires.
package nftrecord

import "encoding/binary"

// SMTType is the 2-byte, big-endian tag embedded in every key object
// except Claim, whose tag lives inside an inner nft_id field.
type SMTType uint16

const (
	TagDefine     SMTType = 0x8100
	TagHold       SMTType = 0x8200
	TagWithdrawal SMTType = 0x8300
	TagClaim      SMTType = 0x8400
)

func (t SMTType) bytes() [2]byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(t))
	return b
}
