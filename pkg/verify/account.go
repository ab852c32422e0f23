package verify

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ton-core/cellproof/pkg/cell"
	"github.com/ton-core/cellproof/pkg/dict"
	"github.com/ton-core/cellproof/pkg/virtualize"
)

// AccountState is the payload recovered from an account leaf: just
// enough to exercise the lookup path, not a full account record.
type AccountState struct {
	Address string
	Data    []byte
}

// VerifyAccountState virtualizes proofRoot with counter 1 (mirroring
// vm::MerkleProof::virtualize(block_root, 1)) and walks the virtualized
// view down to the leaf keyed by addr's first four bytes, the same way
// a light client resolves one account out of a shard's account
// dictionary. A path through a pruned branch is reported as
// ErrProofInsufficient rather than surfaced as the raw virtualize error,
// since it means "ask for a fuller proof", not "this proof is invalid".
func VerifyAccountState(proofRoot *cell.Cell, addr []byte) (*AccountState, error) {
	if len(addr) < 4 {
		return nil, fmt.Errorf("verify: address too short: %d bytes", len(addr))
	}
	view := virtualize.Virtualize(proofRoot, 1)

	key := binary.BigEndian.Uint32(addr[:4])
	data, err := dict.Lookup(view, key)
	if err != nil {
		var pruned *virtualize.PrunedBranchAccess
		if errors.As(err, &pruned) {
			return nil, ErrProofInsufficient
		}
		return nil, err
	}
	return &AccountState{Address: hex.EncodeToString(addr), Data: data}, nil
}
