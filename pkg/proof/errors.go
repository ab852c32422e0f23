// Package proof builds, combines, and unpacks Merkle proofs over the
// cell DAG: collapsing the parts of a tree a traversal never touched
// into pruned-branch stubs, and later merging two such proofs of the
// same root into one that covers the union of what each one kept.
package proof

import "errors"

// Structural errors the builder, combiner, and unpacker can raise, specific
// to proof-level invariants. Cell-package errors (overflow, depth
// overflow) raised while rebuilding cells are returned as they are.
var (
	// ErrInvalidRootLevel is returned by Build when the source root
	// passed in does not have level 0 — a proof can only be generated
	// over a plain, non-Merkle-wrapped cell.
	ErrInvalidRootLevel = errors.New("proof: source root must have level 0")

	// ErrRootMismatch is returned by Combine when the two input proofs
	// do not share the same root hash.
	ErrRootMismatch = errors.New("proof: input proofs do not share a root")

	// ErrNotMerkleProof is returned when unpacking a cell that is not a
	// MerkleProof special cell.
	ErrNotMerkleProof = errors.New("proof: cell is not a Merkle proof")

	// ErrProofUnpack covers structural failures while unwrapping a
	// serialized proof cell (bad header, wrong ref count).
	ErrProofUnpack = errors.New("proof: malformed proof envelope")
)
