package proof

import "github.com/ton-core/cellproof/pkg/cell"

// Combiner merges two Merkle proofs of the same root into one proof
// covering the union of what each kept: wherever one side pruned a
// branch the other kept in full, the combined proof keeps the fuller
// side; wherever both pruned the same branch, the combined proof prunes
// it too.
type Combiner struct {
	memo map[memoKey]*cell.Cell
}

// NewCombiner returns a ready-to-use proof combiner.
func NewCombiner() *Combiner {
	return &Combiner{memo: make(map[memoKey]*cell.Cell)}
}

// Combine merges proof1 and proof2. Both must be MerkleProof cells
// wrapping the same root (equal level-0 hashes of the wrapped cells);
// anything else is a usage error.
func (cb *Combiner) Combine(proof1, proof2 *cell.Cell) (*cell.Cell, error) {
	if proof1.Kind() != cell.KindMerkleProof || proof2.Kind() != cell.KindMerkleProof {
		return nil, ErrNotMerkleProof
	}
	raw1, err := cell.UnwrapMerkleProof(proof1)
	if err != nil {
		return nil, err
	}
	raw2, err := cell.UnwrapMerkleProof(proof2)
	if err != nil {
		return nil, err
	}
	if raw1.Hash() != raw2.Hash() {
		return nil, ErrRootMismatch
	}
	merged, err := cb.dfs(raw1, raw2, 0)
	if err != nil {
		return nil, err
	}
	return cell.RebuildMerkleProof(merged)
}

// dfs walks c1 and c2 — the same logical node as seen by each proof — in
// lockstep. Both are expected to publish the same level-0 hash at every
// step; a proof that isn't actually over the same tree would diverge
// here rather than produce silently-wrong output.
func (cb *Combiner) dfs(c1, c2 *cell.Cell, merkleDepth int) (*cell.Cell, error) {
	if c1.Hash() != c2.Hash() {
		return nil, ErrRootMismatch
	}
	key := memoKey{hash: c1.Hash(), depth: merkleDepth}
	if v, ok := cb.memo[key]; ok {
		return v, nil
	}

	p1 := c1.Kind() == cell.KindPrunedBranch
	p2 := c2.Kind() == cell.KindPrunedBranch

	var out *cell.Cell
	var err error

	switch {
	case p1 && p2:
		out = c1
	case p1 && !p2:
		out = c2
	case !p1 && p2:
		out = c1
	case c1.RefsLen() == 0:
		// Leaf cell on both sides (an Ordinary cell with no children, or
		// a Library cell): there is nothing below it to combine.
		out = c1
	default:
		childDepth := c1.Kind().ChildMerkleDepth(merkleDepth)
		switch c1.Kind() {
		case cell.KindMerkleProof:
			ch1, rerr := c1.RefCell(0)
			if rerr != nil {
				return nil, rerr
			}
			ch2, rerr := c2.RefCell(0)
			if rerr != nil {
				return nil, rerr
			}
			merged, derr := cb.dfs(ch1, ch2, childDepth)
			if derr != nil {
				return nil, derr
			}
			out, err = cell.RebuildMerkleProof(merged)

		case cell.KindMerkleUpdate:
			o1, rerr := c1.RefCell(0)
			if rerr != nil {
				return nil, rerr
			}
			n1, rerr := c1.RefCell(1)
			if rerr != nil {
				return nil, rerr
			}
			o2, rerr := c2.RefCell(0)
			if rerr != nil {
				return nil, rerr
			}
			n2, rerr := c2.RefCell(1)
			if rerr != nil {
				return nil, rerr
			}
			mergedOld, derr := cb.dfs(o1, o2, childDepth)
			if derr != nil {
				return nil, derr
			}
			mergedNew, derr := cb.dfs(n1, n2, childDepth)
			if derr != nil {
				return nil, derr
			}
			out, err = cell.RebuildMerkleUpdate(mergedOld, mergedNew)

		default: // KindOrdinary
			nb := cell.NewBuilder()
			nb.StoreBits(c1.Bits(), c1.BitLen())
			for i := 0; i < c1.RefsLen(); i++ {
				r1, rerr := c1.RefCell(i)
				if rerr != nil {
					return nil, rerr
				}
				r2, rerr := c2.RefCell(i)
				if rerr != nil {
					return nil, rerr
				}
				merged, derr := cb.dfs(r1, r2, childDepth)
				if derr != nil {
					return nil, derr
				}
				nb.StoreRef(merged)
			}
			out, err = nb.Finalize()
		}
	}
	if err != nil {
		return nil, err
	}
	cb.memo[key] = out
	return out, nil
}
