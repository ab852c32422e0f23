package verify

import (
	"errors"

	"github.com/ton-core/cellproof/pkg/cell"
	"github.com/ton-core/cellproof/pkg/dict"
	"github.com/ton-core/cellproof/pkg/virtualize"
)

// ExtractConfigParam virtualizes proofRoot and walks the opaque
// configuration dictionary down to paramID, the same traversal
// lite-client.cpp performs when pulling one config parameter (e.g. the
// current validator set) out of a masterchain block proof.
func ExtractConfigParam(proofRoot *cell.Cell, paramID int32) ([]byte, error) {
	view := virtualize.Virtualize(proofRoot, 2)

	data, err := dict.Lookup(view, uint32(paramID))
	if err != nil {
		var pruned *virtualize.PrunedBranchAccess
		if errors.As(err, &pruned) {
			return nil, ErrProofInsufficient
		}
		return nil, err
	}
	return data, nil
}
