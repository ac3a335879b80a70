package entries

import (
	"context"
	"encoding/hex"

	"github.com/nervina-labs/cota-smt-aggregator/apperr"
	"github.com/nervina-labs/cota-smt-aggregator/history"
	"github.com/nervina-labs/cota-smt-aggregator/nftrecord"
	"github.com/nervina-labs/cota-smt-aggregator/types"
)

// UpdateItem names a held token and the state/characteristic it should
// have after the update. Configure is never changed by this operation.
type UpdateItem struct {
	CotaID         types.CotaID
	TokenIndex     types.TokenIndex
	State          byte
	Characteristic types.Characteristic
}

// UpdateInput is the already-decoded payload of a
// generate_update_cota_smt request.
type UpdateInput struct {
	LockHash types.LockHash
	Items    []UpdateItem
}

// Update rewrites state/characteristic on held tokens in place,
// preserving configure. Fails CotaIdAndTokenIndexHasNotHeld if any
// target isn't currently held. Updating a token to its current values
// is a valid no-op: the root is unchanged but the entry still lists the
// token with identical old and new values (spec.md §8 scenario 2).
func (b *Builder) Update(ctx context.Context, in UpdateInput) (rootHex, entryHex string, err error) {
	if len(in.Items) == 0 {
		return "", "", apperr.EmptyItems()
	}
	ids := make([]types.TokenID, len(in.Items))
	for i, it := range in.Items {
		ids[i] = types.TokenID{CotaID: it.CotaID, TokenIndex: it.TokenIndex}
	}
	if dup := findDuplicateTokenID(ids); dup != nil {
		return "", "", apperr.DuplicateItem(hex.EncodeToString(dup.CotaID[:]), hex.EncodeToString(dup.TokenIndex[:]))
	}

	err = b.Locks.WithLock(in.LockHash, func() error {
		h, buildErr := history.Build(ctx, b.KV, b.Src, in.LockHash)
		if buildErr != nil {
			return buildErr
		}

		h.Store.Buffer()
		var m mutation
		for i, item := range in.Items {
			hold, found, getErr := b.Src.GetHold(ctx, in.LockHash, ids[i])
			if getErr != nil {
				return apperr.StoreIO(getErr)
			}
			if !found {
				return apperr.CotaIdAndTokenIndexHasNotHeld(hex.EncodeToString(item.CotaID[:]), hex.EncodeToString(item.TokenIndex[:]))
			}

			key := nftrecord.HoldKey(item.CotaID, item.TokenIndex)
			oldValue := nftrecord.HoldValue(hold.Configure, hold.State, hold.Characteristic)
			newValue := nftrecord.HoldValue(hold.Configure, item.State, item.Characteristic)
			m.push(key, oldValue, newValue)
		}

		root, entry, applyErr := apply(h.Tree, m, actionUpdate)
		if applyErr != nil {
			h.Store.Discard()
			return applyErr
		}
		if commitErr := finalize(h, root); commitErr != nil {
			return commitErr
		}
		rootHex, entryHex, err = result(root, entry)
		return err
	})
	return rootHex, entryHex, err
}
