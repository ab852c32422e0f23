package dict

import (
	"errors"
	"testing"

	"github.com/ton-core/cellproof/pkg/cell"
)

// buildFoldedTrie builds a KeyBits-deep binary trie where every node's
// two children are the same cell, so the whole structure collapses to
// one cell per level instead of 2^KeyBits. Every key therefore reaches
// the same leaf; this is enough to exercise Lookup's full 32-level walk
// without the exponential blowup a distinct-per-key trie would need.
func buildFoldedTrie(t *testing.T, leafValue uint64) *cell.Cell {
	t.Helper()
	leaf, err := cell.NewBuilder().StoreUint(leafValue, 32).Finalize()
	if err != nil {
		t.Fatalf("Finalize leaf: %v", err)
	}
	cur := leaf
	for i := 0; i < KeyBits; i++ {
		b := cell.NewBuilder()
		b.StoreRef(cur)
		b.StoreRef(cur)
		cur, err = b.Finalize()
		if err != nil {
			t.Fatalf("Finalize level %d: %v", i, err)
		}
	}
	return cur
}

func TestLookup_walksFullKeyWidth(t *testing.T) {
	root := buildFoldedTrie(t, 0xCAFEBABE)
	for _, key := range []uint32{0, 1, 0xFFFFFFFF, 0xA5A5A5A5} {
		got, err := Lookup(root, key)
		if err != nil {
			t.Fatalf("Lookup(%#x): %v", key, err)
		}
		if len(got) != 4 || got[0] != 0xCA || got[3] != 0xBE {
			t.Fatalf("Lookup(%#x) = %x, want leaf storing 0xCAFEBABE", key, got)
		}
	}
}

// buildShallowTrie builds a complete binary trie of the given bit depth
// where each leaf stores its own path prefix, so distinct keys resolve
// to distinct leaves. Used to test that Lookup's bit-by-bit descent
// actually follows the key rather than always landing on one leaf.
func buildShallowTrie(t *testing.T, depth int, prefix uint32) *cell.Cell {
	t.Helper()
	if depth == 0 {
		c, err := cell.NewBuilder().StoreUint(uint64(prefix), 32).Finalize()
		if err != nil {
			t.Fatalf("Finalize leaf: %v", err)
		}
		return c
	}
	left := buildShallowTrie(t, depth-1, prefix<<1)
	right := buildShallowTrie(t, depth-1, (prefix<<1)|1)
	b := cell.NewBuilder()
	b.StoreRef(left)
	b.StoreRef(right)
	c, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize node: %v", err)
	}
	return c
}

func TestLookup_bitsSelectDistinctLeaves(t *testing.T) {
	const depth = 4
	root := buildShallowTrie(t, depth, 0)

	for _, key := range []uint32{0b0000, 0b0101, 0b1111} {
		got, err := lookupDepth(root, depth, key)
		if err != nil {
			t.Fatalf("lookupDepth(%#b): %v", key, err)
		}
		var gotVal uint32
		for _, b := range got {
			gotVal = gotVal<<8 | uint32(b)
		}
		if gotVal != key {
			t.Fatalf("leaf for key %#b resolved to %#b", key, gotVal)
		}
	}
}

func TestLookup_keyNotFound(t *testing.T) {
	leaf, err := cell.NewBuilder().StoreUint(1, 8).Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if _, err := Lookup(leaf, 0); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("Lookup() err = %v, want ErrKeyNotFound", err)
	}
}

// lookupDepth mirrors Lookup's descent but over `depth` bits instead of
// the fixed KeyBits, matching buildShallowTrie's shallower construction.
func lookupDepth(root cell.Ref, depth int, key uint32) ([]byte, error) {
	cur := root
	for i := depth - 1; i >= 0; i-- {
		bit := (key >> uint(i)) & 1
		child, err := cur.Ref(int(bit))
		if err != nil {
			if errors.Is(err, cell.ErrInvalidRefIndex) {
				return nil, ErrKeyNotFound
			}
			return nil, err
		}
		cur = child
	}
	return cur.Bits(), nil
}
