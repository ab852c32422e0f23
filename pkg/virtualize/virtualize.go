// Package virtualize provides a lazy, read-only view over a Merkle-proof
// root: ordinary and Merkle-wrapper cells pass straight through, while
// descending into a pruned-branch stub raises a distinguished error
// instead of exposing its placeholder bytes as if they were real data.
package virtualize

import (
	"fmt"

	"github.com/ton-core/cellproof/pkg/cell"
)

// Params controls how a Virtualizer reads its underlying Ref: LevelOffset
// shifts every HashAt/DepthAt query (multiple nested proof layers shift
// further), and Counter is an opaque caller-assigned tag threaded into
// any PrunedBranchAccess raised while reading through this view, so a
// caller juggling several concurrent virtualizations can tell which one
// failed.
type Params struct {
	LevelOffset uint8
	Counter     uint32
}

// PrunedBranchAccess is returned when code tries to read through a
// pruned-branch stub as though it were the real subtree it stands in
// for. It is a typed value, not a panic, so callers can recover the
// Counter with errors.As and decide whether to fetch a fuller proof.
type PrunedBranchAccess struct {
	Counter uint32
}

func (e *PrunedBranchAccess) Error() string {
	return fmt.Sprintf("virtualize: access to pruned branch (counter=%d)", e.Counter)
}

// Virtualizer is a lazy cell.Ref view: every method delegates to the
// wrapped Ref, shifted by Params.LevelOffset, except Ref itself, which
// checks for a pruned-branch stub before descending.
type Virtualizer struct {
	ref    cell.Ref
	params Params
}

// New wraps root for virtualized reading under the given params.
func New(root cell.Ref, params Params) *Virtualizer {
	return &Virtualizer{ref: root, params: params}
}

// Params returns the virtualization parameters in effect for this view.
func (v *Virtualizer) Params() Params { return v.params }

// Underlying returns the wrapped Ref without any virtualization applied.
// Used by code (such as tests) that needs to compare the raw proof
// structure rather than its virtualized reading.
func (v *Virtualizer) Underlying() cell.Ref { return v.ref }

func (v *Virtualizer) Kind() cell.Kind { return v.ref.Kind() }

func (v *Virtualizer) Mask() cell.LevelMask { return v.ref.Mask() }

// BitLen returns the wrapped cell's data bit length verbatim. Reading the
// bits of a pruned-branch stub this way yields its placeholder header,
// not an error — callers must check Kind before trusting the content,
// exactly as a cell.Slice over a special cell must check IsSpecial.
func (v *Virtualizer) BitLen() int { return v.ref.BitLen() }

func (v *Virtualizer) Bits() []byte { return v.ref.Bits() }

func (v *Virtualizer) RefsLen() int { return v.ref.RefsLen() }

// Ref descends into the i'th child. If this cell is itself a
// pruned-branch stub, there is no real child to descend into — the proof
// that would justify it was never attached — so this returns a
// PrunedBranchAccess instead of the generic ErrInvalidRefIndex a plain
// Cell would raise for the same call.
func (v *Virtualizer) Ref(i int) (cell.Ref, error) {
	if v.ref.Kind() == cell.KindPrunedBranch {
		return nil, &PrunedBranchAccess{Counter: v.params.Counter}
	}
	child, err := v.ref.Ref(i)
	if err != nil {
		return nil, err
	}
	return &Virtualizer{ref: child, params: v.params}, nil
}

func (v *Virtualizer) HashAt(level int) [32]byte {
	return v.ref.HashAt(level + int(v.params.LevelOffset))
}

func (v *Virtualizer) DepthAt(level int) uint16 {
	return v.ref.DepthAt(level + int(v.params.LevelOffset))
}

// Virtualize is the package's main entry point: given a Merkle-proof
// root (the cell produced by proof.Build, already unwrapped from its
// MerkleProof special-cell envelope), returns a lazy view counted by
// counter. Successive virtualizations of the same underlying proof with
// different counters are independent; they share no mutable state.
func Virtualize(root cell.Ref, counter uint32) *Virtualizer {
	return New(root, Params{LevelOffset: 0, Counter: counter})
}
