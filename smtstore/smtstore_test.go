package smtstore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/nervina-labs/cota-smt-aggregator/apperr"
	"github.com/nervina-labs/cota-smt-aggregator/kvstore"
	"github.com/nervina-labs/cota-smt-aggregator/smt"
	"github.com/nervina-labs/cota-smt-aggregator/types"
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

func lockHashFromByte(b byte) types.LockHash {
	var l types.LockHash
	for i := range l {
		l[i] = b
	}
	return l
}

func h256FromByte(b byte) smt.H256 {
	var h smt.H256
	h[31] = b
	return h
}

func TestTreeOverAdapterPersistsAndReloads(t *testing.T) {
	kv := openTestKV(t)
	lockHash := lockHashFromByte(0xAA)
	store := New(kv, lockHash)

	tree := smt.New(store)
	if err := tree.Update(h256FromByte(1), h256FromByte(0x11)); err != nil {
		t.Fatal(err)
	}
	if err := tree.Update(h256FromByte(2), h256FromByte(0x22)); err != nil {
		t.Fatal(err)
	}
	root := tree.Root()
	if err := store.SaveRoot(root); err != nil {
		t.Fatal(err)
	}

	reloaded := New(kv, lockHash)
	savedRoot, err := reloaded.GetRoot()
	if err != nil {
		t.Fatal(err)
	}
	if savedRoot != root {
		t.Fatalf("reloaded root %x != saved root %x", savedRoot, root)
	}

	resumed := smt.Seed(reloaded, savedRoot)
	value, err := resumed.Get(h256FromByte(1))
	if err != nil {
		t.Fatal(err)
	}
	if value != h256FromByte(0x11) {
		t.Fatalf("expected resumed tree to read back persisted leaf, got %x", value)
	}
}

func TestGetRootOfFreshAccountIsZero(t *testing.T) {
	kv := openTestKV(t)
	store := New(kv, lockHashFromByte(0xBB))
	root, err := store.GetRoot()
	if err != nil {
		t.Fatal(err)
	}
	if root != smt.Zero {
		t.Fatal("expected fresh account to have a zero root")
	}
}

func TestDifferentAccountsAreIsolated(t *testing.T) {
	kv := openTestKV(t)
	a := New(kv, lockHashFromByte(0x01))
	b := New(kv, lockHashFromByte(0x02))

	treeA := smt.New(a)
	if err := treeA.Update(h256FromByte(5), h256FromByte(0x55)); err != nil {
		t.Fatal(err)
	}

	treeB := smt.New(b)
	value, err := treeB.Get(h256FromByte(5))
	if err != nil {
		t.Fatal(err)
	}
	if !value.IsZero() {
		t.Fatal("expected account B to be unaffected by account A's write")
	}
}

func TestBufferedWritesAreInvisibleUntilCommit(t *testing.T) {
	kv := openTestKV(t)
	store := New(kv, lockHashFromByte(0xCC))
	store.Buffer()

	tree := smt.New(store)
	if err := tree.Update(h256FromByte(9), h256FromByte(0x99)); err != nil {
		t.Fatal(err)
	}

	direct := New(kv, lockHashFromByte(0xCC))
	_, found, err := direct.GetLeaf(h256FromByte(9))
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected buffered write to stay invisible until Commit")
	}

	if err := store.Commit(); err != nil {
		t.Fatal(err)
	}
	value, found, err := direct.GetLeaf(h256FromByte(9))
	if err != nil {
		t.Fatal(err)
	}
	if !found || value != h256FromByte(0x99) {
		t.Fatalf("expected committed write to be visible, found=%v value=%x", found, value)
	}
}

func TestMalformedLeafRowIsStoreCorruption(t *testing.T) {
	kv := openTestKV(t)
	lockHash := lockHashFromByte(0xDD)
	store := New(kv, lockHash)

	phys := store.leafPhysicalKey(h256FromByte(1))
	if err := kv.Insert(kvstore.ColumnLeaf, phys, []byte("short")); err != nil {
		t.Fatal(err)
	}

	_, _, err := store.GetLeaf(h256FromByte(1))
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindStoreCorruption {
		t.Fatalf("expected StoreCorruption, got %v", err)
	}
}
