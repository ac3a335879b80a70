package entries

import (
	"context"
	"encoding/hex"
	"errors"
	"path/filepath"
	"testing"

	"github.com/nervina-labs/cota-smt-aggregator/apperr"
	"github.com/nervina-labs/cota-smt-aggregator/kvstore"
	"github.com/nervina-labs/cota-smt-aggregator/snapshot"
	"github.com/nervina-labs/cota-smt-aggregator/types"
	"github.com/stretchr/testify/require"
)

func mustDecodeHex(t *testing.T, s string) []byte {
	t.Helper()
	raw, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("decode hex: %v", err)
	}
	return raw
}

func openTestKV(t *testing.T) *kvstore.Store {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "db")
	kv, err := kvstore.Open(dir, nil)
	if err != nil {
		t.Fatalf("open kvstore: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func fillLockHash(b byte) types.LockHash {
	var l types.LockHash
	for i := range l {
		l[i] = b
	}
	return l
}

func fillCotaID(b byte) types.CotaID {
	var c types.CotaID
	for i := range c {
		c[i] = b
	}
	return c
}

func TestDefineThenMintOne(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)
	src := snapshot.NewMemSource()
	b := NewBuilder(kv, src)

	lockHash := fillLockHash(0x01)
	cotaID := fillCotaID(0xaa)

	root0, _, err := b.Define(ctx, DefineInput{LockHash: lockHash, CotaID: cotaID, Total: 5, Issued: 0, Configure: 0})
	if err != nil {
		t.Fatalf("define: %v", err)
	}
	src.PutDefine(lockHash, snapshot.DefineRow{CotaID: cotaID, Total: 5, Issued: 0, Configure: 0})

	root1, mintEntry, err := b.Mint(ctx, MintInput{
		LockHash: lockHash,
		CotaID:   cotaID,
		Items: []MintItem{
			{ToLock: []byte("recipient-lock")},
		},
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if root0 == root1 {
		t.Fatal("expected root to change after mint")
	}
	if mintEntry == "" {
		t.Fatal("expected a non-empty mint entry")
	}
}

func TestDefineAlreadyExistsFails(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)
	src := snapshot.NewMemSource()
	b := NewBuilder(kv, src)
	lockHash := fillLockHash(0x02)
	cotaID := fillCotaID(0xbb)

	if _, _, err := b.Define(ctx, DefineInput{LockHash: lockHash, CotaID: cotaID, Total: 1}); err != nil {
		t.Fatal(err)
	}
	src.PutDefine(lockHash, snapshot.DefineRow{CotaID: cotaID, Total: 1})

	_, _, err := b.Define(ctx, DefineInput{LockHash: lockHash, CotaID: cotaID, Total: 1})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindPreconditionMissing {
		t.Fatalf("expected PreconditionMissing, got %v", err)
	}
}

func TestUpdateNoopKeepsRoot(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)
	src := snapshot.NewMemSource()
	b := NewBuilder(kv, src)
	lockHash := fillLockHash(0x03)
	cotaID := fillCotaID(0xcc)
	tokenIndex := types.TokenIndexFromUint32(0)

	src.PutHold(lockHash, snapshot.HoldRow{CotaID: cotaID, TokenIndex: tokenIndex, Configure: 0x01, State: 0x02})

	rootBefore, _, err := b.Update(ctx, UpdateInput{
		LockHash: lockHash,
		Items:    []UpdateItem{{CotaID: cotaID, TokenIndex: tokenIndex, State: 0x09}},
	})
	if err != nil {
		t.Fatal(err)
	}
	src.PutHold(lockHash, snapshot.HoldRow{CotaID: cotaID, TokenIndex: tokenIndex, Configure: 0x01, State: 0x09})

	rootAfter, _, err := b.Update(ctx, UpdateInput{
		LockHash: lockHash,
		Items:    []UpdateItem{{CotaID: cotaID, TokenIndex: tokenIndex, State: 0x09}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if rootBefore != rootAfter {
		t.Fatalf("expected no-op update to keep the root unchanged: %s != %s", rootBefore, rootAfter)
	}
}

func TestClaimMissingWithdrawalFails(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)
	src := snapshot.NewMemSource()
	b := NewBuilder(kv, src)
	claimant := fillLockHash(0x04)
	sender := fillLockHash(0x05)
	cotaID := fillCotaID(0xdd)

	_, _, err := b.Claim(ctx, ClaimInput{
		ClaimantLockHash: claimant,
		Items: []ClaimItem{
			{SenderLockHash: sender, CotaID: cotaID, TokenIndex: types.TokenIndexFromUint32(0)},
		},
	})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindPreconditionMissing {
		t.Fatalf("expected PreconditionMissing (CotaNotWithdrawn), got %v", err)
	}
}

func TestTransferMovesTokenAcrossAccounts(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)
	src := snapshot.NewMemSource()
	b := NewBuilder(kv, src)
	sender := fillLockHash(0x06)
	recipient := fillLockHash(0x07)
	cotaID := fillCotaID(0xee)
	tokenIndex := types.TokenIndexFromUint32(0)

	src.PutHold(sender, snapshot.HoldRow{CotaID: cotaID, TokenIndex: tokenIndex, Configure: 0x01, State: 0x00})

	var outPoint types.OutPoint
	for i := range outPoint {
		outPoint[i] = byte(i)
	}

	rootHex, entryHex, err := b.Transfer(ctx, TransferInput{
		SenderLockHash:    sender,
		RecipientLockHash: recipient,
		Items: []TransferItem{
			{CotaID: cotaID, TokenIndex: tokenIndex, OutPoint: outPoint, ToLock: []byte("recipient-lock")},
		},
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if rootHex == "" || entryHex == "" {
		t.Fatal("expected non-empty root and entry")
	}

	raw := mustDecodeHex(t, entryHex)
	decoded, err := decodeTransferEntry(raw)
	require.NoError(t, err)
	require.Equal(t, actionTransfer, decoded.Action)
	require.Len(t, decoded.Sender.Keys, 2, "vacated hold + new withdrawal")
	require.Len(t, decoded.Recipient.Keys, 2, "claim marker + new hold")
	require.NotEqual(t, decoded.Sender.Root, decoded.Recipient.Root)
}

func TestEntryEncodeDecodeRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)
	src := snapshot.NewMemSource()
	b := NewBuilder(kv, src)
	lockHash := fillLockHash(0x08)
	cotaID := fillCotaID(0xff)

	_, entryHex, err := b.Define(ctx, DefineInput{LockHash: lockHash, CotaID: cotaID, Total: 1})
	if err != nil {
		t.Fatal(err)
	}

	raw := mustDecodeHex(t, entryHex)
	decoded, err := decodeEntry(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Action != actionDefine {
		t.Fatalf("expected action %q, got %q", actionDefine, decoded.Action)
	}
	if len(decoded.Keys) != 1 {
		t.Fatalf("expected 1 key, got %d", len(decoded.Keys))
	}
}
