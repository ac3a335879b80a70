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

// TransferItem names one token moving from the sender's Hold to the
// recipient's Hold in a single request. OutPoint is the shared key
// material linking the sender's new Withdrawal leaf to the recipient's
// new Claim-marker leaf, exactly as an independent Withdrawal-then-Claim
// pair would, but folded into one entry (spec.md §4.6).
type TransferItem struct {
	CotaID         types.CotaID
	TokenIndex     types.TokenIndex
	OutPoint       types.OutPoint
	ToLock         []byte
	Characteristic types.Characteristic
	// State is only consulted by TransferUpdate; Transfer carries the
	// sender's current state through unchanged.
	State byte
}

// TransferInput is the already-decoded payload of a
// generate_transfer_cota_smt or generate_transfer_update_cota_smt
// request.
type TransferInput struct {
	SenderLockHash    types.LockHash
	RecipientLockHash types.LockHash
	Items             []TransferItem
}

// Transfer moves held tokens from sender to recipient in one step: the
// sender's SMT gains a Withdrawal leaf per item (vacating its Hold), and
// the recipient's SMT gains a Claim-marker and a new Hold leaf per item,
// carrying state/characteristic through unchanged.
func (b *Builder) Transfer(ctx context.Context, in TransferInput) (rootHex, entryHex string, err error) {
	return b.transfer(ctx, in, false)
}

// TransferUpdate is Transfer plus an in-flight state/characteristic
// change applied at the recipient's new Hold leaf.
func (b *Builder) TransferUpdate(ctx context.Context, in TransferInput) (rootHex, entryHex string, err error) {
	return b.transfer(ctx, in, true)
}

func (b *Builder) transfer(ctx context.Context, in TransferInput, withUpdate bool) (rootHex, entryHex string, err error) {
	if len(in.Items) == 0 {
		return "", "", apperr.EmptyItems()
	}
	if in.SenderLockHash == in.RecipientLockHash {
		return "", "", apperr.RequestParamNotFound("recipient_lock_hash distinct from sender")
	}
	ids := make([]types.TokenID, len(in.Items))
	for i, it := range in.Items {
		ids[i] = types.TokenID{CotaID: it.CotaID, TokenIndex: it.TokenIndex}
	}
	if dup := findDuplicateTokenID(ids); dup != nil {
		return "", "", apperr.DuplicateItem(hex.EncodeToString(dup.CotaID[:]), hex.EncodeToString(dup.TokenIndex[:]))
	}

	action := actionTransfer
	if withUpdate {
		action = actionTransferUpdate
	}

	err = b.Locks.WithLockTwo(in.SenderLockHash, in.RecipientLockHash, func() error {
		senderHandle, buildErr := history.Build(ctx, b.KV, b.Src, in.SenderLockHash)
		if buildErr != nil {
			return buildErr
		}
		recipientHandle, buildErr := history.Build(ctx, b.KV, b.Src, in.RecipientLockHash)
		if buildErr != nil {
			return buildErr
		}

		senderHandle.Store.Buffer()
		recipientHandle.Store.Buffer()

		var senderMutation, recipientMutation mutation
		for i, item := range in.Items {
			hold, found, getErr := b.Src.GetHold(ctx, in.SenderLockHash, ids[i])
			if getErr != nil {
				return apperr.StoreIO(getErr)
			}
			if !found {
				return apperr.CotaIdAndTokenIndexHasNotHeld(hex.EncodeToString(item.CotaID[:]), hex.EncodeToString(item.TokenIndex[:]))
			}

			senderHoldKey := nftrecord.HoldKey(item.CotaID, item.TokenIndex)
			oldSenderHoldValue := nftrecord.HoldValue(hold.Configure, hold.State, hold.Characteristic)
			senderMutation.push(senderHoldKey, oldSenderHoldValue, smt.Zero)

			withdrawalKey := nftrecord.WithdrawalKey(item.CotaID, item.TokenIndex)
			newWithdrawalValue := nftrecord.WithdrawalValue(hold.Configure, hold.State, hold.Characteristic, item.OutPoint, item.ToLock)
			senderMutation.push(withdrawalKey, smt.Zero, newWithdrawalValue)

			claimKey := nftrecord.ClaimKey(item.CotaID, item.TokenIndex, item.OutPoint)
			recipientMutation.push(claimKey, smt.Zero, nftrecord.ClaimValue)

			recipientState := hold.State
			characteristic := hold.Characteristic
			if withUpdate {
				recipientState = item.State
				characteristic = item.Characteristic
			}
			recipientHoldKey := nftrecord.HoldKey(item.CotaID, item.TokenIndex)
			newRecipientHoldValue := nftrecord.HoldValue(hold.Configure, recipientState, characteristic)
			recipientMutation.push(recipientHoldKey, smt.Zero, newRecipientHoldValue)
		}

		senderRoot, senderProof, applyErr := applyMutation(senderHandle.Tree, senderMutation, action)
		if applyErr != nil {
			senderHandle.Store.Discard()
			recipientHandle.Store.Discard()
			return applyErr
		}
		recipientRoot, recipientProof, applyErr := applyMutation(recipientHandle.Tree, recipientMutation, action)
		if applyErr != nil {
			senderHandle.Store.Discard()
			recipientHandle.Store.Discard()
			return applyErr
		}

		if commitErr := finalize(senderHandle, senderRoot); commitErr != nil {
			recipientHandle.Store.Discard()
			return commitErr
		}
		if commitErr := finalize(recipientHandle, recipientRoot); commitErr != nil {
			return commitErr
		}

		entry := encodeTransferEntry(
			transferSection{root: senderRoot, keys: senderMutation.keys, oldValues: senderMutation.oldValues, newValues: senderMutation.newValues, proof: senderProof},
			transferSection{root: recipientRoot, keys: recipientMutation.keys, oldValues: recipientMutation.oldValues, newValues: recipientMutation.newValues, proof: recipientProof},
			action,
		)
		rootHex = hex.EncodeToString(senderRoot.Bytes())
		entryHex = hex.EncodeToString(entry)
		return nil
	})
	return rootHex, entryHex, err
}
