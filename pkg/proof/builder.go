package proof

import (
	"github.com/ton-core/cellproof/pkg/cell"
	"github.com/ton-core/cellproof/pkg/log"
)

var buildLog = log.Default().Module("proof")

// IsPrunedFunc reports whether c, encountered at the given Merkle depth
// during a traversal, should be collapsed into a pruned-branch stub. The
// two supported sources are a UsageTree (FromUsageTree) and a caller-
// supplied predicate (e.g. "prune everything but these hashes").
type IsPrunedFunc func(c *cell.Cell, merkleDepth int) bool

// FromUsageTree adapts a usage tree into an IsPrunedFunc: anything never
// touched during the traversal that populated t is pruned.
func FromUsageTree(t *cell.UsageTree) IsPrunedFunc {
	return func(c *cell.Cell, _ int) bool {
		return !t.IsLoaded(c.Hash())
	}
}

// Stats reports what a Build call did, for observability only — nothing
// downstream branches on these numbers.
type Stats struct {
	Visited  int
	Pruned   int
	MaxDepth int
}

// Builder constructs a Merkle proof by walking a cell DAG depth-first,
// replacing any subtree the predicate marks unused with a pruned-branch
// stub, and memoizing by (hash, merkle depth) so a DAG with shared
// subtrees is only ever visited once per depth.
type Builder struct {
	isPruned IsPrunedFunc
	memo     map[memoKey]*cell.Cell
	stats    Stats
}

type memoKey struct {
	hash  [32]byte
	depth int
}

// NewBuilder returns a proof builder using the given pruning predicate.
func NewBuilder(isPruned IsPrunedFunc) *Builder {
	return &Builder{
		isPruned: isPruned,
		memo:     make(map[memoKey]*cell.Cell),
	}
}

// Stats returns a snapshot of the last Build call's traversal counters.
func (b *Builder) Stats() Stats { return b.stats }

// Build produces a Merkle-proof cell over root: everything the predicate
// says to keep is copied verbatim; everything else is collapsed into a
// pruned-branch stub. root must have level 0 — a proof always attaches
// to a plain, unwrapped cell.
func (b *Builder) Build(root *cell.Cell) (*cell.Cell, error) {
	if root.Level() != 0 {
		return nil, ErrInvalidRootLevel
	}
	b.stats = Stats{}
	raw, err := b.dfs(root, 0)
	if err != nil {
		return nil, err
	}
	wrapped, err := cell.RebuildMerkleProof(raw)
	if err != nil {
		return nil, err
	}
	buildLog.Debug("built proof",
		"visited", b.stats.Visited, "pruned", b.stats.Pruned, "max_depth", b.stats.MaxDepth)
	return wrapped, nil
}

func (b *Builder) dfs(c *cell.Cell, merkleDepth int) (*cell.Cell, error) {
	key := memoKey{hash: c.Hash(), depth: merkleDepth}
	if v, ok := b.memo[key]; ok {
		return v, nil
	}
	b.stats.Visited++
	if merkleDepth > b.stats.MaxDepth {
		b.stats.MaxDepth = merkleDepth
	}

	if b.isPruned(c, merkleDepth) {
		b.stats.Pruned++
		stub, err := cell.NewPrunedBranch(c, merkleDepth+1)
		if err != nil {
			return nil, err
		}
		b.memo[key] = stub
		return stub, nil
	}

	childDepth := c.Kind().ChildMerkleDepth(merkleDepth)

	var out *cell.Cell
	var err error
	switch c.Kind() {
	case cell.KindLibrary, cell.KindPrunedBranch:
		// Neither has children to recurse into: a library cell carries
		// only a referenced hash, and an already-pruned stub has
		// nothing further below it in this DAG.
		out = c

	case cell.KindMerkleProof:
		child, rerr := c.RefCell(0)
		if rerr != nil {
			return nil, rerr
		}
		newChild, derr := b.dfs(child, childDepth)
		if derr != nil {
			return nil, derr
		}
		out, err = cell.RebuildMerkleProof(newChild)

	case cell.KindMerkleUpdate:
		oldChild, rerr := c.RefCell(0)
		if rerr != nil {
			return nil, rerr
		}
		newChild, rerr := c.RefCell(1)
		if rerr != nil {
			return nil, rerr
		}
		newOld, derr := b.dfs(oldChild, childDepth)
		if derr != nil {
			return nil, derr
		}
		newNew, derr := b.dfs(newChild, childDepth)
		if derr != nil {
			return nil, derr
		}
		out, err = cell.RebuildMerkleUpdate(newOld, newNew)

	default: // KindOrdinary
		nb := cell.NewBuilder()
		nb.StoreBits(c.Bits(), c.BitLen())
		for i := 0; i < c.RefsLen(); i++ {
			child, rerr := c.RefCell(i)
			if rerr != nil {
				return nil, rerr
			}
			newChild, derr := b.dfs(child, childDepth)
			if derr != nil {
				return nil, derr
			}
			nb.StoreRef(newChild)
		}
		out, err = nb.Finalize()
	}
	if err != nil {
		return nil, err
	}
	b.memo[key] = out
	return out, nil
}
