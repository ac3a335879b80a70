package entries

import (
	"encoding/hex"

	"github.com/nervina-labs/cota-smt-aggregator/apperr"
	"github.com/nervina-labs/cota-smt-aggregator/history"
	"github.com/nervina-labs/cota-smt-aggregator/kvstore"
	"github.com/nervina-labs/cota-smt-aggregator/lockutil"
	"github.com/nervina-labs/cota-smt-aggregator/smt"
	"github.com/nervina-labs/cota-smt-aggregator/snapshot"
)

// Builder wires the shared collaborators every entry-building operation
// needs: the KV store C5 rebuilds trees over, the relational snapshot
// source, and the per-account lock that enforces spec.md §5's
// serialization rule.
type Builder struct {
	KV    *kvstore.Store
	Src   snapshot.Source
	Locks *lockutil.KeyedMutex
}

// NewBuilder returns a Builder over the given collaborators.
func NewBuilder(kv *kvstore.Store, src snapshot.Source) *Builder {
	return &Builder{KV: kv, Src: src, Locks: lockutil.NewKeyedMutex()}
}

// mutation accumulates the common skeleton's steps 3-4 for one
// operation: for every item touched, the key plus its old and new
// values.
type mutation struct {
	keys      []smt.H256
	oldValues []smt.H256
	newValues []smt.H256
}

func (m *mutation) push(key, oldValue, newValue smt.H256) {
	m.keys = append(m.keys, key)
	m.oldValues = append(m.oldValues, oldValue)
	m.newValues = append(m.newValues, newValue)
}

// applyMutation runs skeleton steps 4-8 against an already-buffered
// handle: it writes every new value to the tree, computes the root,
// requests a proof over exactly the touched keys, and compiles it
// against the new values. It does not commit or save the root — callers
// do that once every account involved in the request has applied
// cleanly, so a failure on one side of a two-account operation
// (Transfer) never leaves the other side partially persisted.
func applyMutation(tree *smt.Tree, m mutation, action string) (smt.H256, []byte, error) {
	for i, key := range m.keys {
		if err := tree.Update(key, m.newValues[i]); err != nil {
			return smt.H256{}, nil, apperr.SMTProofError(action, err)
		}
	}
	root := tree.Root()

	proof, err := tree.MerkleProof(m.keys)
	if err != nil {
		return smt.H256{}, nil, apperr.SMTProofError(action, err)
	}
	pairs := make([]smt.Pair, len(m.keys))
	for i, key := range m.keys {
		pairs[i] = smt.Pair{Key: key, Value: m.newValues[i]}
	}
	compiled, err := proof.Compile(pairs)
	if err != nil {
		return smt.H256{}, nil, apperr.SMTProofError(action, err)
	}
	proofBytes, err := compiled.MarshalBinary()
	if err != nil {
		return smt.H256{}, nil, apperr.SMTProofError(action, err)
	}
	return root, proofBytes, nil
}

// apply is applyMutation followed by entry serialization, the shape
// every single-account builder needs.
func apply(tree *smt.Tree, m mutation, action string) (smt.H256, []byte, error) {
	root, proofBytes, err := applyMutation(tree, m, action)
	if err != nil {
		return smt.H256{}, nil, err
	}
	entry := encodeEntry(m.keys, m.oldValues, m.newValues, proofBytes, action)
	return root, entry, nil
}

// finalize stages a handle's new root into its buffered store and then
// commits the root together with the buffered branch/leaf writes as one
// atomic batch, completing the skeleton's step 6 only after step 8 (proof
// compilation) has already succeeded — spec.md §9's suggested fix for
// the source's persist-before-compile ordering.
func finalize(h *history.Handle, root smt.H256) error {
	if err := h.Store.SaveRoot(root); err != nil {
		return err
	}
	return h.Store.Commit()
}

func result(root smt.H256, entry []byte) (string, string, error) {
	return hex.EncodeToString(root.Bytes()), hex.EncodeToString(entry), nil
}
