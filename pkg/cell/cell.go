package cell

import "fmt"

// HashDepth is a cell's representation hash and tree depth at one level.
type HashDepth struct {
	Hash  [32]byte
	Depth uint16
}

// Ref is the minimal interface a DAG node must satisfy to be walked and
// hashed. *Cell implements it directly; the usage-tracking wrapper in
// usage.go and the virtualizer's lazy view wrap an inner Ref and implement
// it too, so a Slice can operate uniformly over any of the three.
type Ref interface {
	Kind() Kind
	Mask() LevelMask
	BitLen() int
	Bits() []byte
	RefsLen() int
	Ref(i int) (Ref, error)
	HashAt(level int) [32]byte
	DepthAt(level int) uint16
}

// Cell is an immutable, content-addressed DAG node: up to 1023 data bits
// and up to 4 references, finalized with a per-level hash/depth array.
// Once built, a Cell is never mutated; all derived views (usage-tracked,
// virtualized) wrap it rather than copy or change it.
type Cell struct {
	kind   Kind
	mask   LevelMask
	data   []byte // bitLen bits, MSB-first, trailing unused bits zero
	bitLen int
	refs   []*Cell
	levels [maxLevel + 1]HashDepth
}

// Kind returns the cell's variant tag.
func (c *Cell) Kind() Kind { return c.kind }

// Mask returns the cell's level mask.
func (c *Cell) Mask() LevelMask { return c.mask }

// BitLen returns the number of valid data bits.
func (c *Cell) BitLen() int { return c.bitLen }

// Bits returns the raw packed data bytes (trailing bits beyond BitLen are
// zero). Callers must not mutate the returned slice.
func (c *Cell) Bits() []byte { return c.data }

// RefsLen returns the number of child references.
func (c *Cell) RefsLen() int { return len(c.refs) }

// Ref returns the i'th child reference.
func (c *Cell) Ref(i int) (Ref, error) {
	if i < 0 || i >= len(c.refs) {
		return nil, ErrInvalidRefIndex
	}
	return c.refs[i], nil
}

// RefCell returns the i'th child as a concrete *Cell, bypassing the Ref
// interface. Used by the proof builder and combiner, which need to walk
// the real DAG rather than a wrapped view.
func (c *Cell) RefCell(i int) (*Cell, error) {
	if i < 0 || i >= len(c.refs) {
		return nil, ErrInvalidRefIndex
	}
	return c.refs[i], nil
}

// HashAt returns the representation hash at the given level, clamping to
// the cell's own top level if queried beyond it.
func (c *Cell) HashAt(level int) [32]byte {
	return c.levels[c.mask.HashIndex(level)].Hash
}

// DepthAt returns the tree depth at the given level, with the same
// clamping behavior as HashAt.
func (c *Cell) DepthAt(level int) uint16 {
	return c.levels[c.mask.HashIndex(level)].Depth
}

// Hash returns the level-0 representation hash, the value a parent cell
// or an external verifier checks by default.
func (c *Cell) Hash() [32]byte { return c.HashAt(0) }

// Depth returns the level-0 tree depth.
func (c *Cell) Depth() uint16 { return c.DepthAt(0) }

// Level returns the cell's own Merkle level.
func (c *Cell) Level() int { return c.mask.Level() }

// Dump renders a short human-readable summary of the cell: kind, level,
// bit length, ref count, and level-0 hash. Used by the CLI and by tests
// that need to eyeball a proof tree without a debugger.
func (c *Cell) Dump() string {
	h := c.Hash()
	return fmt.Sprintf("cell{kind=%s level=%d bits=%d refs=%d hash=%x}",
		c.kind, c.Level(), c.bitLen, len(c.refs), h[:8])
}

// equalContent reports whether two cells were built from the same kind,
// data, and child hashes. Nothing in the module calls it at present; the
// combiner keys off hashes alone.
func (c *Cell) equalContent(o *Cell) bool {
	if c.kind != o.kind || c.bitLen != o.bitLen || len(c.refs) != len(o.refs) {
		return false
	}
	for i := range c.data {
		if c.data[i] != o.data[i] {
			return false
		}
	}
	for i := range c.refs {
		if c.refs[i].Hash() != o.refs[i].Hash() {
			return false
		}
	}
	return true
}
