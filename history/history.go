// Package history is the aggregator's C5: it rebuilds an account's SMT
// from the relational snapshot by replaying every current row through
// the encoding layer, seeded from whatever root is already persisted.
package history

import (
	"context"

	"github.com/nervina-labs/cota-smt-aggregator/apperr"
	"github.com/nervina-labs/cota-smt-aggregator/kvstore"
	"github.com/nervina-labs/cota-smt-aggregator/nftrecord"
	"github.com/nervina-labs/cota-smt-aggregator/smt"
	"github.com/nervina-labs/cota-smt-aggregator/smtstore"
	"github.com/nervina-labs/cota-smt-aggregator/snapshot"
	"github.com/nervina-labs/cota-smt-aggregator/types"
)

// Handle is an SMT bound to one account, ready for an entry builder to
// mutate. Store is exposed so the builder can buffer and commit the
// writes the mutation produces.
type Handle struct {
	Tree  *smt.Tree
	Store *smtstore.Store
	Root  smt.H256
}

// Build loads lockHash's persisted root, replays every current Define,
// Hold, Withdrawal, and Claim row from src through the encoding layer,
// and returns an SMT handle whose root equals the persisted root
// (spec.md §8 invariant 1 and scenario 6).
func Build(ctx context.Context, kv *kvstore.Store, src snapshot.Source, lockHash types.LockHash) (*Handle, error) {
	store := smtstore.New(kv, lockHash)
	persistedRoot, err := store.GetRoot()
	if err != nil {
		return nil, err
	}

	tree := smt.Seed(store, persistedRoot)

	defines, err := src.ListDefines(ctx, lockHash)
	if err != nil {
		return nil, apperr.StoreIO(err)
	}
	for _, row := range defines {
		key := nftrecord.DefineKey(row.CotaID)
		value := nftrecord.DefineValue(row.Total, row.Issued, row.Configure)
		if err := tree.Update(key, value); err != nil {
			return nil, apperr.Encoding(err.Error())
		}
	}

	holds, err := src.ListHolds(ctx, lockHash)
	if err != nil {
		return nil, apperr.StoreIO(err)
	}
	for _, row := range holds {
		key := nftrecord.HoldKey(row.CotaID, row.TokenIndex)
		value := nftrecord.HoldValue(row.Configure, row.State, row.Characteristic)
		if err := tree.Update(key, value); err != nil {
			return nil, apperr.Encoding(err.Error())
		}
	}

	withdrawals, err := src.ListWithdrawals(ctx, lockHash)
	if err != nil {
		return nil, apperr.StoreIO(err)
	}
	for _, row := range withdrawals {
		key := nftrecord.WithdrawalKey(row.CotaID, row.TokenIndex)
		value := nftrecord.WithdrawalValue(row.Configure, row.State, row.Characteristic, row.OutPoint, row.ToLock)
		if err := tree.Update(key, value); err != nil {
			return nil, apperr.Encoding(err.Error())
		}
	}

	claims, err := src.ListClaims(ctx, lockHash)
	if err != nil {
		return nil, apperr.StoreIO(err)
	}
	for _, row := range claims {
		key := nftrecord.ClaimKey(row.CotaID, row.TokenIndex, row.OutPoint)
		if err := tree.Update(key, nftrecord.ClaimValue); err != nil {
			return nil, apperr.Encoding(err.Error())
		}
	}

	return &Handle{Tree: tree, Store: store, Root: tree.Root()}, nil
}
