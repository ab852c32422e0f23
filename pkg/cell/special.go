package cell

import "encoding/binary"

// NewPrunedBranch builds a pruned-branch stub standing in for source,
// which a proof builder has decided not to include in full. level is the
// pruned branch's own level (the traversal's merkle_depth at the point of
// pruning, plus one); it must be at least 1. The stub stores, for each
// level below its own, the source cell's (hash, depth) pair at that
// level — the only information a verifier needs to confirm the stub
// stands in for the right subtree without ever seeing it.
func NewPrunedBranch(source *Cell, level int) (*Cell, error) {
	if level < 1 || level > maxLevel {
		return nil, ErrInvalidSpecialHeader
	}

	db := NewBuilder()
	db.StoreUint(uint64(mustSpecialByte(KindPrunedBranch)), 8)
	db.StoreUint(uint64(LevelMaskOf(level)), 8)
	for i := 0; i < level; i++ {
		h := source.HashAt(i)
		db.StoreBytes(h[:])
		d := source.DepthAt(i)
		var depthBuf [2]byte
		binary.BigEndian.PutUint16(depthBuf[:], d)
		db.StoreBytes(depthBuf[:])
	}
	if db.err != nil {
		return nil, db.err
	}

	mask := LevelMaskOf(level)
	c := &Cell{
		kind:   KindPrunedBranch,
		mask:   mask,
		data:   db.data,
		bitLen: db.bitLen,
	}
	levels, err := computeLevels(levelInputs{
		kind:   c.kind,
		mask:   c.mask,
		data:   c.data,
		bitLen: c.bitLen,
	})
	if err != nil {
		return nil, err
	}
	// The generic formula above correctly computes the top slot (index
	// level, this stub's own hash, since it has zero refs and therefore
	// no child contribution to fold in). The slots below it are not
	// derivable from the stub's own contents — they are the imported
	// values from the original subtree, copied in verbatim.
	for i := 0; i < level; i++ {
		levels[i] = HashDepth{Hash: source.HashAt(i), Depth: source.DepthAt(i)}
	}
	c.levels = levels
	return c, nil
}

// NewPrunedBranchFromStored reconstructs a pruned-branch stub directly
// from its already-decoded stored pairs, used when deserializing a BOC
// stream where the original (pre-pruning) source cell is not available —
// only the stub's own encoded bytes are.
func NewPrunedBranchFromStored(level int, pairs []HashDepth) (*Cell, error) {
	if level < 1 || level > maxLevel || len(pairs) != level {
		return nil, ErrInvalidSpecialHeader
	}

	db := NewBuilder()
	db.StoreUint(uint64(mustSpecialByte(KindPrunedBranch)), 8)
	db.StoreUint(uint64(LevelMaskOf(level)), 8)
	for _, p := range pairs {
		db.StoreBytes(p.Hash[:])
		var depthBuf [2]byte
		binary.BigEndian.PutUint16(depthBuf[:], p.Depth)
		db.StoreBytes(depthBuf[:])
	}
	if db.err != nil {
		return nil, db.err
	}

	mask := LevelMaskOf(level)
	c := &Cell{
		kind:   KindPrunedBranch,
		mask:   mask,
		data:   db.data,
		bitLen: db.bitLen,
	}
	levels, err := computeLevels(levelInputs{
		kind:   c.kind,
		mask:   c.mask,
		data:   c.data,
		bitLen: c.bitLen,
	})
	if err != nil {
		return nil, err
	}
	copy(levels[:level], pairs)
	c.levels = levels
	return c, nil
}

// NewMerkleProof wraps child in a Merkle-proof cell. The wrapper's own
// representation hash is derived from the child's hash one level up (the
// "merkle offset"): descending through this cell bumps the traversal's
// merkle depth by one. child must have level 0, matching the requirement
// that a proof can only be generated over a plain (non-Merkle) root.
func NewMerkleProof(child *Cell) (*Cell, error) {
	if child.Level() != 0 {
		return nil, ErrInvalidSpecialHeader
	}
	return newMerkleWrapper(KindMerkleProof, child)
}

// NewMerkleUpdate wraps two children (the state before and after an
// update) in a single Merkle-update cell. Both must have level 0.
func NewMerkleUpdate(oldState, newState *Cell) (*Cell, error) {
	if oldState.Level() != 0 || newState.Level() != 0 {
		return nil, ErrInvalidSpecialHeader
	}
	return newMerkleWrapper(KindMerkleUpdate, oldState, newState)
}

// RebuildMerkleProof reconstructs a Merkle-proof wrapper around child
// without the level-0 precondition NewMerkleProof enforces. A proof
// builder legitimately re-wraps a child whose level has grown because
// one of its descendants was replaced by a pruned-branch stub; that is
// expected, not an error, so the builder and combiner use this instead
// of the public constructor.
func RebuildMerkleProof(child *Cell) (*Cell, error) {
	return newMerkleWrapper(KindMerkleProof, child)
}

// RebuildMerkleUpdate is RebuildMerkleProof's two-child counterpart for
// Merkle-update wrappers.
func RebuildMerkleUpdate(oldState, newState *Cell) (*Cell, error) {
	return newMerkleWrapper(KindMerkleUpdate, oldState, newState)
}

func newMerkleWrapper(kind Kind, children ...*Cell) (*Cell, error) {
	mb := NewBuilder()
	mb.StoreUint(uint64(mustSpecialByte(kind)), 8)
	for _, ch := range children {
		h := ch.HashAt(1)
		mb.StoreBytes(h[:])
		d := ch.DepthAt(1)
		var depthBuf [2]byte
		binary.BigEndian.PutUint16(depthBuf[:], d)
		mb.StoreBytes(depthBuf[:])
	}
	for _, ch := range children {
		mb.StoreRef(ch)
	}
	if mb.err != nil {
		return nil, mb.err
	}

	mask := LevelMask(0)
	for _, ch := range children {
		mask = mask.Or(ch.Mask().ShiftDown())
	}

	c := &Cell{
		kind:   kind,
		mask:   mask,
		data:   mb.data,
		bitLen: mb.bitLen,
		refs:   append([]*Cell(nil), children...),
	}
	levels, err := computeLevels(levelInputs{
		kind:       c.kind,
		mask:       c.mask,
		data:       c.data,
		bitLen:     c.bitLen,
		refs:       c.refs,
		levelShift: 1,
	})
	if err != nil {
		return nil, err
	}
	c.levels = levels
	return c, nil
}

// UnwrapMerkleProof returns the single child of a Merkle-proof cell.
func UnwrapMerkleProof(c *Cell) (*Cell, error) {
	if c.Kind() != KindMerkleProof || len(c.refs) != 1 {
		return nil, ErrInvalidSpecialHeader
	}
	return c.refs[0], nil
}

// UnwrapMerkleUpdate returns the two children (old, new) of a
// Merkle-update cell.
func UnwrapMerkleUpdate(c *Cell) (oldState, newState *Cell, err error) {
	if c.Kind() != KindMerkleUpdate || len(c.refs) != 2 {
		return nil, nil, ErrInvalidSpecialHeader
	}
	return c.refs[0], c.refs[1], nil
}
