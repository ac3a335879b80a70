// Package kvstore is the aggregator's C1: a namespaced, persistent
// key/value store over an embedded log-structured database
// (github.com/syndtr/goleveldb), presenting four logical columns —
// leaf, branch, root, and a reserved temporary column — with atomic
// batch commit. It has no notion of accounts or SMTs; smtstore binds a
// LockHash on top of it.
package kvstore

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"go.uber.org/zap"
)

// Column names one of the store's logical column families. goleveldb has
// no native column-family support, so each column is simulated with a
// one-byte prefix ahead of every physical key — the same trick goleveldb
// users reach for when the underlying engine has no native column
// families.
type Column byte

const (
	ColumnLeaf Column = iota
	ColumnBranch
	ColumnRoot
	ColumnTemporary
)

// ErrNotFound is returned by Get when the key does not exist in the given
// column.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is the process-wide KV handle. A single instance is opened at
// startup and shared by every SMT store adapter; goleveldb itself is safe
// for concurrent reads and for writes to disjoint keys.
type Store struct {
	db  *leveldb.DB
	log *zap.Logger
}

// Open opens (creating if absent) the on-disk database at path.
func Open(path string, log *zap.Logger) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func columnKey(col Column, key []byte) []byte {
	out := make([]byte, 1+len(key))
	out[0] = byte(col)
	copy(out[1:], key)
	return out
}

// Get returns the value stored at key in col, or ErrNotFound.
func (s *Store) Get(col Column, key []byte) ([]byte, error) {
	value, err := s.db.Get(columnKey(col, key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Has reports whether key exists in col.
func (s *Store) Has(col Column, key []byte) (bool, error) {
	return s.db.Has(columnKey(col, key), nil)
}

// Insert writes key=value in col, outside of any batch.
func (s *Store) Insert(col Column, key, value []byte) error {
	return s.db.Put(columnKey(col, key), value, nil)
}

// Delete removes key from col, outside of any batch.
func (s *Store) Delete(col Column, key []byte) error {
	return s.db.Delete(columnKey(col, key), nil)
}

// Batch accumulates inserts and deletes across any number of columns for
// one atomic Commit: either every operation becomes visible, or none does.
type Batch struct {
	inner leveldb.Batch
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Insert stages a put in col.
func (b *Batch) Insert(col Column, key, value []byte) {
	b.inner.Put(columnKey(col, key), value)
}

// Delete stages a delete in col.
func (b *Batch) Delete(col Column, key []byte) {
	b.inner.Delete(columnKey(col, key))
}

// Len reports the number of staged operations.
func (b *Batch) Len() int {
	return b.inner.Len()
}

// Commit atomically applies every staged operation in the batch.
func (s *Store) Commit(b *Batch) error {
	if b.inner.Len() == 0 {
		return nil
	}
	if err := s.db.Write(&b.inner, nil); err != nil {
		s.log.Error("kvstore: batch commit failed", zap.Error(err), zap.Int("ops", b.inner.Len()))
		return err
	}
	return nil
}
