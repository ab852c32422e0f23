package proof

import (
	"fmt"

	"github.com/ton-core/cellproof/pkg/cell"
)

// Unpack validates a serialized Merkle-proof cell and returns the raw
// (possibly pruned) DAG it wraps, ready to be passed to virtualize.New.
// expectedRoot is the level-0 hash the original, unpruned tree is known
// to have; Unpack fails if the wrapped root's level-0 hash doesn't match
// it, since that is exactly what would let a tampered or mismatched proof
// through.
func Unpack(proofCell *cell.Cell, expectedRoot [32]byte) (*cell.Cell, error) {
	if proofCell.Kind() != cell.KindMerkleProof {
		return nil, ErrNotMerkleProof
	}
	if proofCell.RefsLen() != 1 {
		return nil, fmt.Errorf("%w: expected 1 ref, got %d", ErrProofUnpack, proofCell.RefsLen())
	}
	raw, err := cell.UnwrapMerkleProof(proofCell)
	if err != nil {
		return nil, err
	}
	if raw.Hash() != expectedRoot {
		return nil, ErrRootMismatch
	}
	return raw, nil
}
