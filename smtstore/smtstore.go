// Package smtstore is the aggregator's C2: it binds a types.LockHash to
// kvstore's four columns and implements smt.Store on top of it, so one
// kvstore.Store backs an independent, namespaced tree per account.
package smtstore

import (
	"github.com/nervina-labs/cota-smt-aggregator/apperr"
	"github.com/nervina-labs/cota-smt-aggregator/kvstore"
	"github.com/nervina-labs/cota-smt-aggregator/smt"
	"github.com/nervina-labs/cota-smt-aggregator/types"
)

// Store adapts one account's slice of a shared kvstore.Store to
// smt.Store. Branch and leaf rows for every account share the same two
// physical columns; the LockHash prefix is what keeps them disjoint.
//
// While buffered (Buffer has been called and Commit hasn't run yet),
// writes are held in an in-memory overlay rather than reaching kv
// immediately. Reads check the overlay first, so a builder that writes
// several leaves and then asks for a Merkle proof over all of them sees
// its own uncommitted mutations — required because merkle_proof reads
// back branch nodes an earlier Update in the same request just changed.
type Store struct {
	kv       *kvstore.Store
	lockHash types.LockHash

	buffered      bool
	leafOverlay   map[smt.H256][]byte // nil value = tombstone
	branchOverlay map[string][]byte
	rootOverlay   []byte // staged SaveRoot value, nil if none staged
}

// New returns an adapter over kv namespaced to lockHash. Writes go
// straight to kv unless the caller has called Buffer first.
func New(kv *kvstore.Store, lockHash types.LockHash) *Store {
	return &Store{kv: kv, lockHash: lockHash}
}

// Buffer switches the adapter into buffered mode: subsequent writes are
// held in memory until Commit. Safe to call again before a Commit to
// discard anything staged so far.
func (s *Store) Buffer() {
	s.buffered = true
	s.leafOverlay = make(map[smt.H256][]byte)
	s.branchOverlay = make(map[string][]byte)
	s.rootOverlay = nil
}

// Commit atomically applies every staged write as one kvstore batch and
// returns the adapter to unbuffered mode. A no-op if Buffer was never
// called or nothing was staged.
func (s *Store) Commit() error {
	if !s.buffered {
		return nil
	}
	batch := kvstore.NewBatch()
	for key, raw := range s.leafOverlay {
		phys := s.leafPhysicalKey(key)
		if raw == nil {
			batch.Delete(kvstore.ColumnLeaf, phys)
		} else {
			batch.Insert(kvstore.ColumnLeaf, phys, raw)
		}
	}
	for physHex, raw := range s.branchOverlay {
		phys := []byte(physHex)
		if raw == nil {
			batch.Delete(kvstore.ColumnBranch, phys)
		} else {
			batch.Insert(kvstore.ColumnBranch, phys, raw)
		}
	}
	if s.rootOverlay != nil {
		batch.Insert(kvstore.ColumnRoot, s.lockHash.Bytes(), s.rootOverlay)
	}
	s.buffered = false
	s.leafOverlay = nil
	s.branchOverlay = nil
	s.rootOverlay = nil
	if err := s.kv.Commit(batch); err != nil {
		return apperr.StoreIO(err)
	}
	return nil
}

// Discard drops any staged writes without committing them, for the
// builder's on-error path: the in-memory SMT is thrown away and the next
// request rebuilds from the still-unchanged persisted root.
func (s *Store) Discard() {
	s.buffered = false
	s.leafOverlay = nil
	s.branchOverlay = nil
	s.rootOverlay = nil
}

// leafPhysicalKey is lock_hash(32) || leaf_smt_key(32): 64 bytes.
func (s *Store) leafPhysicalKey(key smt.H256) []byte {
	out := make([]byte, 0, 64)
	out = append(out, s.lockHash.Bytes()...)
	out = append(out, key.Bytes()...)
	return out
}

// branchPhysicalKey is lock_hash(32) || level(1) || branch_prefix(32):
// 65 bytes, per spec.md §4.2's "deterministic encoding of (height,
// path-prefix)".
func (s *Store) branchPhysicalKey(key smt.BranchKey) []byte {
	out := make([]byte, 0, 65)
	out = append(out, s.lockHash.Bytes()...)
	out = append(out, key.Level)
	out = append(out, key.Key.Bytes()...)
	return out
}

// GetLeaf implements smt.Store.
func (s *Store) GetLeaf(key smt.H256) (smt.H256, bool, error) {
	if s.buffered {
		if raw, staged := s.leafOverlay[key]; staged {
			if raw == nil {
				return smt.H256{}, false, nil
			}
			value, err := smt.FromBytes(raw)
			if err != nil {
				return smt.H256{}, false, apperr.StoreCorruption(err.Error())
			}
			return value, true, nil
		}
	}
	raw, err := s.kv.Get(kvstore.ColumnLeaf, s.leafPhysicalKey(key))
	if err == kvstore.ErrNotFound {
		return smt.H256{}, false, nil
	}
	if err != nil {
		return smt.H256{}, false, apperr.StoreIO(err)
	}
	if len(raw) != 32 {
		return smt.H256{}, false, apperr.StoreCorruption("leaf row has wrong length")
	}
	value, err := smt.FromBytes(raw)
	if err != nil {
		return smt.H256{}, false, apperr.StoreCorruption(err.Error())
	}
	return value, true, nil
}

// InsertLeaf implements smt.Store.
func (s *Store) InsertLeaf(key, value smt.H256) error {
	if s.buffered {
		s.leafOverlay[key] = value.Bytes()
		return nil
	}
	return wrapIO(s.kv.Insert(kvstore.ColumnLeaf, s.leafPhysicalKey(key), value.Bytes()))
}

// RemoveLeaf implements smt.Store.
func (s *Store) RemoveLeaf(key smt.H256) error {
	if s.buffered {
		s.leafOverlay[key] = nil
		return nil
	}
	return wrapIO(s.kv.Delete(kvstore.ColumnLeaf, s.leafPhysicalKey(key)))
}

// GetBranch implements smt.Store.
func (s *Store) GetBranch(key smt.BranchKey) (smt.BranchNode, bool, error) {
	physHex := string(s.branchPhysicalKey(key))
	if s.buffered {
		if raw, staged := s.branchOverlay[physHex]; staged {
			if raw == nil {
				return smt.BranchNode{}, false, nil
			}
			return decodeBranch(raw)
		}
	}
	raw, err := s.kv.Get(kvstore.ColumnBranch, []byte(physHex))
	if err == kvstore.ErrNotFound {
		return smt.BranchNode{}, false, nil
	}
	if err != nil {
		return smt.BranchNode{}, false, apperr.StoreIO(err)
	}
	node, found, err := decodeBranch(raw)
	return node, found, err
}

func decodeBranch(raw []byte) (smt.BranchNode, bool, error) {
	if len(raw) != 64 {
		return smt.BranchNode{}, false, apperr.StoreCorruption("branch row has wrong length")
	}
	left, err := smt.FromBytes(raw[:32])
	if err != nil {
		return smt.BranchNode{}, false, apperr.StoreCorruption(err.Error())
	}
	right, err := smt.FromBytes(raw[32:])
	if err != nil {
		return smt.BranchNode{}, false, apperr.StoreCorruption(err.Error())
	}
	return smt.BranchNode{Left: left, Right: right}, true, nil
}

// InsertBranch implements smt.Store.
func (s *Store) InsertBranch(key smt.BranchKey, node smt.BranchNode) error {
	raw := make([]byte, 0, 64)
	raw = append(raw, node.Left.Bytes()...)
	raw = append(raw, node.Right.Bytes()...)
	if s.buffered {
		s.branchOverlay[string(s.branchPhysicalKey(key))] = raw
		return nil
	}
	return wrapIO(s.kv.Insert(kvstore.ColumnBranch, s.branchPhysicalKey(key), raw))
}

// RemoveBranch implements smt.Store.
func (s *Store) RemoveBranch(key smt.BranchKey) error {
	if s.buffered {
		s.branchOverlay[string(s.branchPhysicalKey(key))] = nil
		return nil
	}
	return wrapIO(s.kv.Delete(kvstore.ColumnBranch, s.branchPhysicalKey(key)))
}

// GetRoot returns the persisted root for the adapter's account, or
// smt.Zero if none has been saved yet (a brand-new account). Root reads
// always go straight to kv: a builder never reads back its own staged
// root write mid-request.
func (s *Store) GetRoot() (smt.H256, error) {
	raw, err := s.kv.Get(kvstore.ColumnRoot, s.lockHash.Bytes())
	if err == kvstore.ErrNotFound {
		return smt.Zero, nil
	}
	if err != nil {
		return smt.H256{}, apperr.StoreIO(err)
	}
	root, err := smt.FromBytes(raw)
	if err != nil {
		return smt.H256{}, apperr.StoreCorruption(err.Error())
	}
	return root, nil
}

// SaveRoot persists root for the adapter's account. Per SPEC_FULL.md's
// resolution of spec.md §9's open question, callers must only call this
// after a proof compile for the same mutation has already succeeded. If
// the adapter is buffered, the root write joins the same atomic Commit as
// the staged branch/leaf writes.
func (s *Store) SaveRoot(root smt.H256) error {
	if s.buffered {
		s.rootOverlay = root.Bytes()
		return nil
	}
	return wrapIO(s.kv.Insert(kvstore.ColumnRoot, s.lockHash.Bytes(), root.Bytes()))
}

func wrapIO(err error) error {
	if err == nil {
		return nil
	}
	return apperr.StoreIO(err)
}
