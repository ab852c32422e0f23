// Package dict is a minimal stand-in for a label-bit dictionary codec:
// just enough to walk a fixed-depth binary trie keyed by an integer ID
// and return the leaf's payload bytes. It does not implement TON's
// Hashmap/PfxHashmap encoding (variable-length label bits, edge
// compression, the arithmetic-coding serialization) — callers only ever
// need to look a key up in an already-virtualized tree, not decode the
// dictionary's own wire format.
package dict

import (
	"errors"
	"fmt"

	"github.com/ton-core/cellproof/pkg/cell"
)

// KeyBits is the fixed key width this walker supports, matching a
// 32-bit configuration parameter ID.
const KeyBits = 32

// ErrKeyNotFound is returned when the walk reaches a leaf-shaped cell
// (no further child along the key's next bit) before exhausting key.
var ErrKeyNotFound = fmt.Errorf("dict: key not found")

// Lookup walks root, a binary trie keyed one bit per level (bit 31 of
// key first), and returns the data bits of the cell reached after
// consuming all KeyBits bits. Each internal node is expected to carry
// exactly two refs (child for bit 0, child for bit 1); a node that runs
// out of refs before the key is exhausted means the key isn't present.
// Ref is always attempted, rather than pre-checked via RefsLen, so that
// descending into a pruned-branch stub still raises the caller's typed
// virtualization error instead of being swallowed as "not found".
func Lookup(root cell.Ref, key uint32) ([]byte, error) {
	cur := root
	for i := KeyBits - 1; i >= 0; i-- {
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
