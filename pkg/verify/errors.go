// Package verify hosts small, concrete consumers of a Merkle proof:
// account-state lookup, block-header confirmation, and configuration
// parameter extraction. None of them add to the cell/proof core — they
// only call into pkg/virtualize and pkg/dict the way a light client
// would, and exist to give those packages an end-to-end caller.
package verify

import "errors"

var (
	// ErrProofInsufficient is returned when a virtualized read hits a
	// pruned branch along the path being walked: the proof on hand does
	// not cover the data asked for, and the caller should fetch a fuller
	// one rather than treat this as a rejection.
	ErrProofInsufficient = errors.New("verify: proof does not cover requested path")

	// ErrHeaderMismatch is returned when a block header proof's root hash
	// does not match the hash it was checked against.
	ErrHeaderMismatch = errors.New("verify: header proof root mismatch")

	// ErrNotHeaderProof is returned when the cell handed to
	// VerifyBlockHeaderProof is not a MerkleProof cell.
	ErrNotHeaderProof = errors.New("verify: cell is not a block header proof")
)
