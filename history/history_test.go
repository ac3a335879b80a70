package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nervina-labs/cota-smt-aggregator/kvstore"
	"github.com/nervina-labs/cota-smt-aggregator/snapshot"
	"github.com/nervina-labs/cota-smt-aggregator/types"
	"github.com/stretchr/testify/require"
)

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

func TestBuildReplaysAllRowKinds(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)
	lockHash := fillLockHash(0x01)
	src := snapshot.NewMemSource()

	cotaID := fillCotaID(0xaa)
	src.PutDefine(lockHash, snapshot.DefineRow{CotaID: cotaID, Total: 5, Issued: 1, Configure: 0})
	src.PutHold(lockHash, snapshot.HoldRow{CotaID: cotaID, TokenIndex: types.TokenIndexFromUint32(0)})
	src.PutWithdrawal(lockHash, snapshot.WithdrawalRow{CotaID: cotaID, TokenIndex: types.TokenIndexFromUint32(1)})
	src.PutClaim(lockHash, snapshot.ClaimRow{CotaID: cotaID, TokenIndex: types.TokenIndexFromUint32(2)})

	handle, err := Build(ctx, kv, src, lockHash)
	require.NoError(t, err)
	require.False(t, handle.Root.IsZero(), "expected a non-zero root after replaying four rows")
}

func TestBuildOfEmptyAccountIsZeroRoot(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)
	lockHash := fillLockHash(0x02)
	src := snapshot.NewMemSource()

	handle, err := Build(ctx, kv, src, lockHash)
	require.NoError(t, err)
	require.True(t, handle.Root.IsZero(), "expected empty account to have a zero root")
}

func TestBuildResumesFromPersistedRoot(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)
	lockHash := fillLockHash(0x03)
	src := snapshot.NewMemSource()
	cotaID := fillCotaID(0xbb)
	src.PutDefine(lockHash, snapshot.DefineRow{CotaID: cotaID, Total: 3, Issued: 0, Configure: 0})

	first, err := Build(ctx, kv, src, lockHash)
	require.NoError(t, err)
	require.NoError(t, first.Store.SaveRoot(first.Root))

	second, err := Build(ctx, kv, src, lockHash)
	require.NoError(t, err)
	require.Equal(t, first.Root, second.Root, "expected second build to reproduce the same root")
}
