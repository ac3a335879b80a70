package smt

import (
	"encoding/binary"
	"fmt"
)

// Pair is a key/value leaf used both to apply mutations and to verify a
// compiled proof against a root.
type Pair struct {
	Key   H256
	Value H256
}

// sibling is one non-empty sibling hash encountered walking a key's path
// from leaf to root. Empty siblings are never stored — the verifier uses
// the precomputed zero-subtree hash for any level not present here.
type sibling struct {
	Level uint8
	Hash  H256
}

// keyPath is the per-key slice of a Proof: every non-zero sibling along
// key's root path, leaf to root order.
type keyPath struct {
	Key      H256
	Siblings []sibling
}

// Proof is an uncompiled Merkle proof over a set of keys, taken against
// the tree state at the moment MerkleProof was called. It does not yet
// carry the leaf values it will be checked against — Compile binds those.
//
// Proof assumes the requested keys' root paths don't share a branch
// ancestor with each other (true with overwhelming probability for
// structured, hash-derived 256-bit keys drawn from the encoding layer —
// see DESIGN.md). Compile/Verify do not attempt to reconcile two requested
// keys that are themselves Merkle siblings of one another.
type Proof struct {
	paths []keyPath
}

// MerkleProof builds a Proof covering exactly the given keys, reading the
// tree's current (post-mutation, in the entry-builder skeleton) state.
func (t *Tree) MerkleProof(keys []H256) (Proof, error) {
	paths := make([]keyPath, 0, len(keys))
	for _, key := range keys {
		siblings := make([]sibling, 0, Depth)
		for level := 0; level < Depth; level++ {
			prefix := truncate(key, uint(level)+1)
			node, ok, err := t.store.GetBranch(BranchKey{Level: uint8(level), Key: prefix})
			if err != nil {
				return Proof{}, err
			}
			if !ok {
				node = BranchNode{Left: zeroAt(level), Right: zeroAt(level)}
			}

			var sib H256
			if bitAt(key, uint(level)) == 0 {
				sib = node.Right
			} else {
				sib = node.Left
			}
			if !sib.IsZero() {
				siblings = append(siblings, sibling{Level: uint8(level), Hash: sib})
			}
		}
		paths = append(paths, keyPath{Key: key, Siblings: siblings})
	}
	return Proof{paths: paths}, nil
}

// recompute walks pair.Value up pair's path using the proof's stored
// siblings (falling back to the precomputed zero hash for any level with
// no stored sibling) and returns the resulting root candidate.
func (p keyPath) recompute(value H256) H256 {
	cur := value
	siblingsByLevel := make(map[uint8]H256, len(p.Siblings))
	for _, s := range p.Siblings {
		siblingsByLevel[s.Level] = s.Hash
	}
	for level := 0; level < Depth; level++ {
		sib, ok := siblingsByLevel[uint8(level)]
		if !ok {
			sib = zeroAt(level)
		}
		var left, right H256
		if bitAt(p.Key, uint(level)) == 0 {
			left, right = cur, sib
		} else {
			left, right = sib, cur
		}
		cur = merge(uint8(level), left, right)
	}
	return cur
}

// CompiledProof is the serializable, root-agnostic sibling data a Proof
// carries once bound to a particular key set. The same bytes verify both
// the pre-mutation root (against old values) and the post-mutation root
// (against new values), which is exactly what the entry format needs: one
// proof, two sets of values, two roots (spec.md §8 invariant 3).
type CompiledProof struct {
	paths []keyPath
}

// Compile binds proof to pairs, checking that recomputing every pair's
// path yields one consistent root, and returns the compact, serializable
// form used in the wire entry. pairs must cover exactly the keys the proof
// was generated for, in any order.
func (p Proof) Compile(pairs []Pair) (CompiledProof, error) {
	if len(pairs) != len(p.paths) {
		return CompiledProof{}, fmt.Errorf("%w: got %d pairs for %d proof keys", ErrKeyMismatch, len(pairs), len(p.paths))
	}
	byKey := make(map[H256]H256, len(pairs))
	for _, pair := range pairs {
		byKey[pair.Key] = pair.Value
	}

	var root H256
	first := true
	for _, path := range p.paths {
		value, ok := byKey[path.Key]
		if !ok {
			return CompiledProof{}, fmt.Errorf("%w: %s", ErrKeyMismatch, path.Key)
		}
		candidate := path.recompute(value)
		if first {
			root = candidate
			first = false
		} else if candidate != root {
			return CompiledProof{}, ErrProofMismatch
		}
	}
	return CompiledProof{paths: p.paths}, nil
}

// Verify recomputes the root implied by pairs under cp and reports
// whether it equals root.
func (cp CompiledProof) Verify(root H256, pairs []Pair) (bool, error) {
	if len(pairs) != len(cp.paths) {
		return false, fmt.Errorf("%w: got %d pairs for %d proof keys", ErrKeyMismatch, len(pairs), len(cp.paths))
	}
	byKey := make(map[H256]H256, len(pairs))
	for _, pair := range pairs {
		byKey[pair.Key] = pair.Value
	}
	for _, path := range cp.paths {
		value, ok := byKey[path.Key]
		if !ok {
			return false, fmt.Errorf("%w: %s", ErrKeyMismatch, path.Key)
		}
		if path.recompute(value) != root {
			return false, nil
		}
	}
	return true, nil
}

// MarshalBinary encodes cp as: u32 path count, then per path: key (32B),
// u32 sibling count, then per sibling: level byte + hash (32B).
func (cp CompiledProof) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(len(cp.paths)))
	for _, path := range cp.paths {
		buf = append(buf, path.Key[:]...)
		count := make([]byte, 4)
		binary.BigEndian.PutUint32(count, uint32(len(path.Siblings)))
		buf = append(buf, count...)
		for _, s := range path.Siblings {
			buf = append(buf, s.Level)
			buf = append(buf, s.Hash[:]...)
		}
	}
	return buf, nil
}

// UnmarshalCompiledProof decodes the format MarshalBinary produces.
func UnmarshalCompiledProof(data []byte) (CompiledProof, error) {
	if len(data) < 4 {
		return CompiledProof{}, ErrCorruptProof
	}
	pathCount := binary.BigEndian.Uint32(data[:4])
	data = data[4:]

	paths := make([]keyPath, 0, pathCount)
	for i := uint32(0); i < pathCount; i++ {
		if len(data) < 32+4 {
			return CompiledProof{}, ErrCorruptProof
		}
		var key H256
		copy(key[:], data[:32])
		data = data[32:]
		sibCount := binary.BigEndian.Uint32(data[:4])
		data = data[4:]

		siblings := make([]sibling, 0, sibCount)
		for j := uint32(0); j < sibCount; j++ {
			if len(data) < 1+32 {
				return CompiledProof{}, ErrCorruptProof
			}
			level := data[0]
			var hash H256
			copy(hash[:], data[1:33])
			data = data[33:]
			siblings = append(siblings, sibling{Level: level, Hash: hash})
		}
		paths = append(paths, keyPath{Key: key, Siblings: siblings})
	}
	if len(data) != 0 {
		return CompiledProof{}, ErrCorruptProof
	}
	return CompiledProof{paths: paths}, nil
}
