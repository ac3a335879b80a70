package nftrecord

import (
	"encoding/binary"
	"testing"

	"github.com/nervina-labs/cota-smt-aggregator/smt"
	"github.com/nervina-labs/cota-smt-aggregator/types"
)

func fillCotaID(b byte) types.CotaID {
	var c types.CotaID
	for i := range c {
		c[i] = b
	}
	return c
}

func TestDefineKeyDeterministic(t *testing.T) {
	cotaID := fillCotaID(0x01)
	k1 := DefineKey(cotaID)
	k2 := DefineKey(cotaID)
	if k1 != k2 {
		t.Fatal("DefineKey is not deterministic")
	}
	if k1.IsZero() {
		t.Fatal("DefineKey must not be zero")
	}
}

func TestHoldAndWithdrawalKeysDiffer(t *testing.T) {
	cotaID := fillCotaID(0x02)
	idx := types.TokenIndexFromUint32(7)
	hk := HoldKey(cotaID, idx)
	wk := WithdrawalKey(cotaID, idx)
	if hk == wk {
		t.Fatal("Hold and Withdrawal keys must differ despite sharing cota_id/token_index")
	}
}

func TestDefineValueRoundTripsFields(t *testing.T) {
	v := DefineValue(100, 3, 0x42)
	if got := binary.BigEndian.Uint32(v[0:4]); got != 100 {
		t.Fatalf("expected total 100 at offset 0, got %d", got)
	}
	if got := binary.BigEndian.Uint32(v[4:8]); got != 3 {
		t.Fatalf("expected issued 3 at offset 4, got %d", got)
	}
	if v[8] != 0x42 {
		t.Fatalf("expected configure byte at offset 8, got %x", v[8])
	}
	for i := 9; i < 32; i++ {
		if v[i] != 0 {
			t.Fatalf("expected zero padding at offset %d, got %x", i, v[i])
		}
	}
}

func TestClaimKeyIsHashedNotPadded(t *testing.T) {
	cotaID := fillCotaID(0x03)
	idx := types.TokenIndexFromUint32(1)
	var op types.OutPoint
	for i := range op {
		op[i] = byte(i)
	}
	k := ClaimKey(cotaID, idx, op)
	if k.IsZero() {
		t.Fatal("claim key must not be zero")
	}
	if k == padTo32(append(nftID(cotaID, TagClaim, idx), op[:]...)) {
		t.Fatal("claim key must be hashed, not the key object cut to 32 bytes")
	}
	if ClaimValue != smt.Claimed {
		t.Fatal("ClaimValue must equal smt.Claimed")
	}
}

func TestWithdrawalValueChangesWithToLock(t *testing.T) {
	var characteristic types.Characteristic
	var op types.OutPoint
	v1 := WithdrawalValue(0x01, 0x00, characteristic, op, []byte("lock-a"))
	v2 := WithdrawalValue(0x01, 0x00, characteristic, op, []byte("lock-b"))
	if v1 == v2 {
		t.Fatal("expected withdrawal value to depend on to_lock bytes")
	}
}
