package verify

import "github.com/ton-core/cellproof/pkg/cell"

// Header is a minimal stand-in for a block header: the fields a caller
// needs to confirm it is looking at the block it asked for.
type Header struct {
	RootHash [32]byte
	Depth    uint16
}

// VerifyBlockHeaderProof unwraps root (expected to be a MerkleProof cell
// wrapping a header cell) and confirms its level-0 hash against
// expectedRoot, the way a light client checks a block header proof
// before trusting anything else in the block.
func VerifyBlockHeaderProof(root *cell.Cell, expectedRoot [32]byte) (*Header, error) {
	if root.Kind() != cell.KindMerkleProof {
		return nil, ErrNotHeaderProof
	}
	header, err := cell.UnwrapMerkleProof(root)
	if err != nil {
		return nil, err
	}
	if header.Hash() != expectedRoot {
		return nil, ErrHeaderMismatch
	}
	return &Header{RootHash: header.Hash(), Depth: header.Depth()}, nil
}
