// Package snapshot defines the core's one inbound dependency on the
// relational layer: a read-only, point-in-time view of an account's
// current NFT rows. The relational schema itself is out of scope (spec.md
// §1); this package only states the shape of what it must hand back.
package snapshot

import (
	"context"

	"github.com/nervina-labs/cota-smt-aggregator/types"
)

// DefineRow is one row from the Define table.
type DefineRow struct {
	CotaID    types.CotaID
	Total     uint32
	Issued    uint32
	Configure byte
}

// HoldRow is one row from the Hold table: a token currently held by the
// account.
type HoldRow struct {
	CotaID         types.CotaID
	TokenIndex     types.TokenIndex
	Configure      byte
	State          byte
	Characteristic types.Characteristic
}

// WithdrawalRow is one row from the Withdrawal table: a token the
// account has sent toward ToLock but that has not yet been claimed.
type WithdrawalRow struct {
	CotaID         types.CotaID
	TokenIndex     types.TokenIndex
	Configure      byte
	State          byte
	Characteristic types.Characteristic
	OutPoint       types.OutPoint
	ToLock         []byte
}

// ClaimRow is one row from the Claim table: an append-only marker that a
// withdrawal has been consumed.
type ClaimRow struct {
	CotaID     types.CotaID
	TokenIndex types.TokenIndex
	OutPoint   types.OutPoint
}

// Source is the external collaborator C5 and C6 read through. The core
// never writes to it; a consistent point-in-time read (snapshot or
// transaction) is the caller's responsibility.
//
// The List* methods feed the history builder's full replay (C5); the
// Get* methods let an entry builder (C6) fetch exactly the pre-image
// rows one request touches, the way the original aggregator's
// lock-hash-plus-(cota_id,token_index) filtered queries do.
type Source interface {
	ListDefines(ctx context.Context, lockHash types.LockHash) ([]DefineRow, error)
	ListHolds(ctx context.Context, lockHash types.LockHash) ([]HoldRow, error)
	ListWithdrawals(ctx context.Context, lockHash types.LockHash) ([]WithdrawalRow, error)
	ListClaims(ctx context.Context, lockHash types.LockHash) ([]ClaimRow, error)

	GetDefine(ctx context.Context, lockHash types.LockHash, cotaID types.CotaID) (DefineRow, bool, error)
	GetHold(ctx context.Context, lockHash types.LockHash, id types.TokenID) (HoldRow, bool, error)
	GetWithdrawal(ctx context.Context, lockHash types.LockHash, id types.TokenID) (WithdrawalRow, bool, error)
}
