package entries

import "github.com/nervina-labs/cota-smt-aggregator/types"

// findDuplicateTokenID returns a pointer to the first repeated
// (cota_id, token_index) in ids, or nil if all are distinct. Spec.md §8:
// "Duplicate (cota_id, token_index) within one request is rejected."
func findDuplicateTokenID(ids []types.TokenID) *types.TokenID {
	seen := make(map[types.TokenID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			dup := id
			return &dup
		}
		seen[id] = struct{}{}
	}
	return nil
}
