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

// MintItem is one newly-minted token's recipient and initial state.
type MintItem struct {
	ToLock         []byte
	OutPoint       types.OutPoint
	Configure      byte
	State          byte
	Characteristic types.Characteristic
}

// MintInput is the already-decoded payload of a generate_mint_cota_smt
// request: issue len(Items) more tokens of CotaID.
type MintInput struct {
	LockHash types.LockHash
	CotaID   types.CotaID
	Items    []MintItem
}

// Mint increases a class's issued count by len(in.Items) and writes one
// new Withdrawal leaf per item, token-indexed starting at the class's
// current issued count. Fails InsufficientTotal if total would be
// exceeded.
func (b *Builder) Mint(ctx context.Context, in MintInput) (rootHex, entryHex string, err error) {
	if len(in.Items) == 0 {
		return "", "", apperr.EmptyItems()
	}

	err = b.Locks.WithLock(in.LockHash, func() error {
		h, buildErr := history.Build(ctx, b.KV, b.Src, in.LockHash)
		if buildErr != nil {
			return buildErr
		}

		define, found, getErr := b.Src.GetDefine(ctx, in.LockHash, in.CotaID)
		if getErr != nil {
			return apperr.StoreIO(getErr)
		}
		if !found {
			return apperr.DefineNotFound(hex.EncodeToString(in.CotaID[:]))
		}
		newIssued := define.Issued + uint32(len(in.Items))
		if newIssued > define.Total {
			return apperr.InsufficientTotal(hex.EncodeToString(in.CotaID[:]), define.Total, define.Issued, uint32(len(in.Items)))
		}

		h.Store.Buffer()

		var m mutation
		defineKey := nftrecord.DefineKey(in.CotaID)
		oldDefineValue := nftrecord.DefineValue(define.Total, define.Issued, define.Configure)
		newDefineValue := nftrecord.DefineValue(define.Total, newIssued, define.Configure)
		m.push(defineKey, oldDefineValue, newDefineValue)

		for i, item := range in.Items {
			tokenIndex := types.TokenIndexFromUint32(define.Issued + uint32(i))
			key := nftrecord.WithdrawalKey(in.CotaID, tokenIndex)
			newValue := nftrecord.WithdrawalValue(item.Configure, item.State, item.Characteristic, item.OutPoint, item.ToLock)
			m.push(key, smt.Zero, newValue)
		}

		root, entry, applyErr := apply(h.Tree, m, actionMint)
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
