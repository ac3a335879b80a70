package snapshot

import (
	"context"

	"github.com/nervina-labs/cota-smt-aggregator/types"
)

// MemSource is an in-memory Source, for tests and for local tooling that
// doesn't have a relational store wired up. Rows are keyed by LockHash;
// within an account, Hold/Withdrawal/Claim rows are additionally keyed
// by types.TokenID so builders can fetch a single pre-image row without
// scanning the full list.
type MemSource struct {
	defines     map[types.LockHash]map[types.CotaID]DefineRow
	holds       map[types.LockHash]map[types.TokenID]HoldRow
	withdrawals map[types.LockHash]map[types.TokenID]WithdrawalRow
	claims      map[types.LockHash][]ClaimRow
}

// NewMemSource returns an empty MemSource.
func NewMemSource() *MemSource {
	return &MemSource{
		defines:     make(map[types.LockHash]map[types.CotaID]DefineRow),
		holds:       make(map[types.LockHash]map[types.TokenID]HoldRow),
		withdrawals: make(map[types.LockHash]map[types.TokenID]WithdrawalRow),
		claims:      make(map[types.LockHash][]ClaimRow),
	}
}

// PutDefine upserts a Define row for lockHash.
func (m *MemSource) PutDefine(lockHash types.LockHash, row DefineRow) {
	if m.defines[lockHash] == nil {
		m.defines[lockHash] = make(map[types.CotaID]DefineRow)
	}
	m.defines[lockHash][row.CotaID] = row
}

// PutHold upserts a Hold row for lockHash.
func (m *MemSource) PutHold(lockHash types.LockHash, row HoldRow) {
	if m.holds[lockHash] == nil {
		m.holds[lockHash] = make(map[types.TokenID]HoldRow)
	}
	m.holds[lockHash][types.TokenID{CotaID: row.CotaID, TokenIndex: row.TokenIndex}] = row
}

// RemoveHold deletes a Hold row, modeling a withdrawal vacating it.
func (m *MemSource) RemoveHold(lockHash types.LockHash, id types.TokenID) {
	delete(m.holds[lockHash], id)
}

// PutWithdrawal upserts a Withdrawal row for lockHash.
func (m *MemSource) PutWithdrawal(lockHash types.LockHash, row WithdrawalRow) {
	if m.withdrawals[lockHash] == nil {
		m.withdrawals[lockHash] = make(map[types.TokenID]WithdrawalRow)
	}
	m.withdrawals[lockHash][types.TokenID{CotaID: row.CotaID, TokenIndex: row.TokenIndex}] = row
}

// RemoveWithdrawal deletes a Withdrawal row, modeling a claim consuming it.
func (m *MemSource) RemoveWithdrawal(lockHash types.LockHash, id types.TokenID) {
	delete(m.withdrawals[lockHash], id)
}

// PutClaim appends a Claim row for lockHash.
func (m *MemSource) PutClaim(lockHash types.LockHash, row ClaimRow) {
	m.claims[lockHash] = append(m.claims[lockHash], row)
}

func (m *MemSource) ListDefines(_ context.Context, lockHash types.LockHash) ([]DefineRow, error) {
	out := make([]DefineRow, 0, len(m.defines[lockHash]))
	for _, row := range m.defines[lockHash] {
		out = append(out, row)
	}
	return out, nil
}

func (m *MemSource) ListHolds(_ context.Context, lockHash types.LockHash) ([]HoldRow, error) {
	out := make([]HoldRow, 0, len(m.holds[lockHash]))
	for _, row := range m.holds[lockHash] {
		out = append(out, row)
	}
	return out, nil
}

func (m *MemSource) ListWithdrawals(_ context.Context, lockHash types.LockHash) ([]WithdrawalRow, error) {
	out := make([]WithdrawalRow, 0, len(m.withdrawals[lockHash]))
	for _, row := range m.withdrawals[lockHash] {
		out = append(out, row)
	}
	return out, nil
}

func (m *MemSource) ListClaims(_ context.Context, lockHash types.LockHash) ([]ClaimRow, error) {
	out := make([]ClaimRow, len(m.claims[lockHash]))
	copy(out, m.claims[lockHash])
	return out, nil
}

// GetDefine fetches a single Define row, for builder pre-image lookups.
func (m *MemSource) GetDefine(_ context.Context, lockHash types.LockHash, cotaID types.CotaID) (DefineRow, bool, error) {
	row, ok := m.defines[lockHash][cotaID]
	return row, ok, nil
}

// GetHold fetches a single Hold row, for builder pre-image lookups.
func (m *MemSource) GetHold(_ context.Context, lockHash types.LockHash, id types.TokenID) (HoldRow, bool, error) {
	row, ok := m.holds[lockHash][id]
	return row, ok, nil
}

// GetWithdrawal fetches a single Withdrawal row, for builder pre-image
// lookups.
func (m *MemSource) GetWithdrawal(_ context.Context, lockHash types.LockHash, id types.TokenID) (WithdrawalRow, bool, error) {
	row, ok := m.withdrawals[lockHash][id]
	return row, ok, nil
}
