package smt

// Tree is a binary sparse Merkle tree of depth 256 bound to a Store. A
// Tree does not own persistence of its own root — callers load the root
// from wherever C2 keeps it (Seed) and persist Root() themselves once a
// request's mutations are durably applied.
type Tree struct {
	store Store
	root  H256
}

// New returns a Tree bound to store, seeded at the empty root.
func New(store Store) *Tree {
	return &Tree{store: store, root: Zero}
}

// Seed returns a Tree bound to store with its root set to an
// already-persisted value, e.g. loaded from the SMT store adapter's root
// column.
func Seed(store Store, root H256) *Tree {
	return &Tree{store: store, root: root}
}

// Root returns the tree's current root hash.
func (t *Tree) Root() H256 {
	return t.root
}

// Get returns the current value stored at key, or Zero if absent.
func (t *Tree) Get(key H256) (H256, error) {
	value, ok, err := t.store.GetLeaf(key)
	if err != nil {
		return Zero, err
	}
	if !ok {
		return Zero, nil
	}
	return value, nil
}

// Update upserts key to value, or removes it if value is Zero (per the
// engine contract, H256::zero() means absent). It rewrites every branch
// node on key's path and recomputes the root.
func (t *Tree) Update(key H256, value H256) error {
	if value.IsZero() {
		if err := t.store.RemoveLeaf(key); err != nil {
			return err
		}
	} else {
		if err := t.store.InsertLeaf(key, value); err != nil {
			return err
		}
	}

	cur := value
	for level := 0; level < Depth; level++ {
		prefix := truncate(key, uint(level)+1)
		bk := BranchKey{Level: uint8(level), Key: prefix}

		node, ok, err := t.store.GetBranch(bk)
		if err != nil {
			return err
		}
		if !ok {
			node = BranchNode{Left: zeroAt(level), Right: zeroAt(level)}
		}

		if bitAt(key, uint(level)) == 0 {
			node.Left = cur
		} else {
			node.Right = cur
		}

		if node.IsEmpty() {
			if err := t.store.RemoveBranch(bk); err != nil {
				return err
			}
		} else if err := t.store.InsertBranch(bk, node); err != nil {
			return err
		}

		cur = merge(uint8(level), node.Left, node.Right)
	}
	t.root = cur
	return nil
}
