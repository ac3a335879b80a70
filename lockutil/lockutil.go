// Package lockutil serializes entry-building requests per account, per
// spec.md §5: "the core MUST serialize per account... obtain a
// per-lock-hash mutex around steps 1-6 of the builder skeleton."
package lockutil

import (
	"sync"

	"github.com/nervina-labs/cota-smt-aggregator/types"
)

// KeyedMutex hands out one *sync.Mutex per LockHash, creating it on
// first use and never removing it — the key space is bounded by the
// number of distinct accounts the process has ever served, which is
// small enough to keep resident for the process lifetime.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[types.LockHash]*sync.Mutex
}

// NewKeyedMutex returns an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[types.LockHash]*sync.Mutex)}
}

func (k *KeyedMutex) lockFor(lockHash types.LockHash) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[lockHash]
	if !ok {
		l = &sync.Mutex{}
		k.locks[lockHash] = l
	}
	return l
}

// Lock blocks until the caller holds lockHash's mutex.
func (k *KeyedMutex) Lock(lockHash types.LockHash) {
	k.lockFor(lockHash).Lock()
}

// Unlock releases lockHash's mutex.
func (k *KeyedMutex) Unlock(lockHash types.LockHash) {
	k.lockFor(lockHash).Unlock()
}

// WithLock runs fn while holding lockHash's mutex.
func (k *KeyedMutex) WithLock(lockHash types.LockHash, fn func() error) error {
	k.Lock(lockHash)
	defer k.Unlock(lockHash)
	return fn()
}

// WithLockTwo runs fn while holding both accounts' mutexes, acquired in
// byte order regardless of call-site argument order so two concurrent
// transfers between the same pair of accounts can never deadlock.
func (k *KeyedMutex) WithLockTwo(a, b types.LockHash, fn func() error) error {
	if a == b {
		return k.WithLock(a, fn)
	}
	first, second := a, b
	if greater(first, second) {
		first, second = second, first
	}
	k.Lock(first)
	defer k.Unlock(first)
	k.Lock(second)
	defer k.Unlock(second)
	return fn()
}

func greater(a, b types.LockHash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}
