package entries

import (
	"context"
	"encoding/hex"

	"github.com/nervina-labs/cota-smt-aggregator/apperr"
	"github.com/nervina-labs/cota-smt-aggregator/history"
	"github.com/nervina-labs/cota-smt-aggregator/nftrecord"
	"github.com/nervina-labs/cota-smt-aggregator/smt"
	"github.com/nervina-labs/cota-smt-aggregator/types"
)

// WithdrawalItem names one token to move from Hold to Withdrawal, and
// where it's headed.
type WithdrawalItem struct {
	CotaID     types.CotaID
	TokenIndex types.TokenIndex
	ToLock     []byte
	OutPoint   types.OutPoint
}

// WithdrawalInput is the already-decoded payload of a
// generate_withdrawal_cota_smt request.
type WithdrawalInput struct {
	LockHash types.LockHash
	Items    []WithdrawalItem
}

// Withdrawal vacates len(in.Items) Hold leaves and creates the matching
// Withdrawal leaves, preserving each token's configure/state/
// characteristic. Fails CotaIdAndTokenIndexHasNotHeld if any target
// isn't currently held.
func (b *Builder) Withdrawal(ctx context.Context, in WithdrawalInput) (rootHex, entryHex string, err error) {
	if len(in.Items) == 0 {
		return "", "", apperr.EmptyItems()
	}
	if dup := findDuplicateTokenID(withdrawalTokenIDs(in.Items)); dup != nil {
		return "", "", apperr.DuplicateItem(hex.EncodeToString(dup.CotaID[:]), hex.EncodeToString(dup.TokenIndex[:]))
	}

	err = b.Locks.WithLock(in.LockHash, func() error {
		h, buildErr := history.Build(ctx, b.KV, b.Src, in.LockHash)
		if buildErr != nil {
			return buildErr
		}

		h.Store.Buffer()
		var m mutation
		for _, item := range in.Items {
			id := types.TokenID{CotaID: item.CotaID, TokenIndex: item.TokenIndex}
			hold, found, getErr := b.Src.GetHold(ctx, in.LockHash, id)
			if getErr != nil {
				return apperr.StoreIO(getErr)
			}
			if !found {
				return apperr.CotaIdAndTokenIndexHasNotHeld(hex.EncodeToString(item.CotaID[:]), hex.EncodeToString(item.TokenIndex[:]))
			}

			holdKey := nftrecord.HoldKey(item.CotaID, item.TokenIndex)
			oldHoldValue := nftrecord.HoldValue(hold.Configure, hold.State, hold.Characteristic)
			m.push(holdKey, oldHoldValue, smt.Zero)

			withdrawalKey := nftrecord.WithdrawalKey(item.CotaID, item.TokenIndex)
			newWithdrawalValue := nftrecord.WithdrawalValue(hold.Configure, hold.State, hold.Characteristic, item.OutPoint, item.ToLock)
			m.push(withdrawalKey, smt.Zero, newWithdrawalValue)
		}

		root, entry, applyErr := apply(h.Tree, m, actionWithdrawal)
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

func withdrawalTokenIDs(items []WithdrawalItem) []types.TokenID {
	out := make([]types.TokenID, len(items))
	for i, it := range items {
		out[i] = types.TokenID{CotaID: it.CotaID, TokenIndex: it.TokenIndex}
	}
	return out
}
