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

// DefineInput is the already-decoded payload of a generate_define_cota_smt
// request (request parsing itself is out of scope here).
type DefineInput struct {
	LockHash  types.LockHash
	CotaID    types.CotaID
	Total     uint32
	Issued    uint32
	Configure byte
}

// Define creates a new NFT class. It fails with DefineAlreadyExists if
// cota_id already has a Define row.
func (b *Builder) Define(ctx context.Context, in DefineInput) (rootHex, entryHex string, err error) {
	err = b.Locks.WithLock(in.LockHash, func() error {
		h, buildErr := history.Build(ctx, b.KV, b.Src, in.LockHash)
		if buildErr != nil {
			return buildErr
		}

		if _, found, getErr := b.Src.GetDefine(ctx, in.LockHash, in.CotaID); getErr != nil {
			return apperr.StoreIO(getErr)
		} else if found {
			return apperr.DefineAlreadyExists(hex.EncodeToString(in.CotaID[:]))
		}

		h.Store.Buffer()
		key := nftrecord.DefineKey(in.CotaID)
		newValue := nftrecord.DefineValue(in.Total, in.Issued, in.Configure)

		var m mutation
		m.push(key, smt.Zero, newValue)

		root, entry, applyErr := apply(h.Tree, m, actionDefine)
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
