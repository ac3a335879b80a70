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

// ClaimItem names one withdrawn token the claimant is now taking
// possession of. SenderLockHash identifies the account whose Withdrawal
// row is the precondition being checked — not mutated by this builder,
// since only the claimant's own tree is touched by a standalone Claim
// (see DESIGN.md's claim.go design decision).
type ClaimItem struct {
	SenderLockHash types.LockHash
	CotaID         types.CotaID
	TokenIndex     types.TokenIndex
	OutPoint       types.OutPoint
	Configure      byte
	State          byte
	Characteristic types.Characteristic
}

// ClaimInput is the already-decoded payload of a generate_claim_cota_smt
// request.
type ClaimInput struct {
	ClaimantLockHash types.LockHash
	Items            []ClaimItem
}

// Claim writes a claimed-marker leaf for each item and a new Hold leaf
// in the claimant's account. Fails CotaNotWithdrawn if the corresponding
// Withdrawal row is absent at the sender.
func (b *Builder) Claim(ctx context.Context, in ClaimInput) (rootHex, entryHex string, err error) {
	if len(in.Items) == 0 {
		return "", "", apperr.EmptyItems()
	}
	if dup := findDuplicateTokenID(claimTokenIDs(in.Items)); dup != nil {
		return "", "", apperr.DuplicateItem(hex.EncodeToString(dup.CotaID[:]), hex.EncodeToString(dup.TokenIndex[:]))
	}

	err = b.Locks.WithLock(in.ClaimantLockHash, func() error {
		h, buildErr := history.Build(ctx, b.KV, b.Src, in.ClaimantLockHash)
		if buildErr != nil {
			return buildErr
		}

		h.Store.Buffer()
		var m mutation
		for _, item := range in.Items {
			id := types.TokenID{CotaID: item.CotaID, TokenIndex: item.TokenIndex}
			_, found, getErr := b.Src.GetWithdrawal(ctx, item.SenderLockHash, id)
			if getErr != nil {
				return apperr.StoreIO(getErr)
			}
			if !found {
				return apperr.CotaNotWithdrawn(hex.EncodeToString(item.CotaID[:]), hex.EncodeToString(item.TokenIndex[:]))
			}

			claimKey := nftrecord.ClaimKey(item.CotaID, item.TokenIndex, item.OutPoint)
			m.push(claimKey, smt.Zero, nftrecord.ClaimValue)

			holdKey := nftrecord.HoldKey(item.CotaID, item.TokenIndex)
			newHoldValue := nftrecord.HoldValue(item.Configure, item.State, item.Characteristic)
			m.push(holdKey, smt.Zero, newHoldValue)
		}

		root, entry, applyErr := apply(h.Tree, m, actionClaim)
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

func claimTokenIDs(items []ClaimItem) []types.TokenID {
	out := make([]types.TokenID, len(items))
	for i, it := range items {
		out[i] = types.TokenID{CotaID: it.CotaID, TokenIndex: it.TokenIndex}
	}
	return out
}
