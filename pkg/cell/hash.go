package cell

import "github.com/ton-core/cellproof/pkg/hashing"

// descriptorBytes computes the two TON-style descriptor bytes (d1, d2)
// that prefix a cell's data in its representation hash: d1 packs the
// reference count, the exotic flag, whether extra level hashes are
// present, and the level mask; d2 packs the data length.
func descriptorBytes(refsCount int, exotic bool, mask LevelMask, bitLen int) (byte, byte) {
	var d1 byte
	d1 = byte(refsCount)
	if exotic {
		d1 |= 1 << 3
	}
	if mask.HashCount() > 1 {
		d1 |= 1 << 4
	}
	d1 |= byte(mask) << 5

	fullBytes := bitLen / 8
	d2 := byte(2 * fullBytes)
	if bitLen%8 != 0 {
		d2++
	}
	return d1, d2
}

// padData returns data with the bit-terminator applied: when bitLen isn't
// byte-aligned, the bit immediately following the last data bit is set to
// one so that two cells with a differing number of trailing zero bits
// never hash identically.
func padData(data []byte, bitLen int) []byte {
	if bitLen%8 == 0 {
		return data
	}
	out := make([]byte, len(data))
	copy(out, data)
	bitPos := bitLen % 8
	out[len(out)-1] |= 1 << uint(7-bitPos)
	return out
}

// levelInputs bundles what computeLevels needs to derive one cell's
// per-level hash/depth array from its children.
type levelInputs struct {
	kind       Kind
	mask       LevelMask
	data       []byte
	bitLen     int
	refs       []*Cell
	levelShift int // 0 for ordinary/library/pruned, 1 for Merkle wrappers
}

// computeLevels derives the (hash, depth) pair for every level 0..mask.Level()
// using the standard recursive formula: SHA256(d1,d2 || data_padded ||
// depths-of-children-at-level || hashes-of-children-at-level). Children are
// read at level+levelShift, which implements the "merkle offset" Merkle
// wrapper cells apply before publishing a child's hash. Only the top slot's
// descriptor carries the cell's level mask; the slots below it are hashed
// with an empty mask, so a rebuilt cell whose lower-level child hashes are
// the originals (pruned stubs import them) reproduces the original cell's
// hash at those levels.
func computeLevels(in levelInputs) ([maxLevel + 1]HashDepth, error) {
	var out [maxLevel + 1]HashDepth
	exotic := in.kind.IsSpecial()
	padded := padData(in.data, in.bitLen)

	top := in.mask.Level()
	for level := 0; level <= top; level++ {
		descMask := in.mask
		if level < top {
			descMask = 0
		}
		d1, d2 := descriptorBytes(len(in.refs), exotic, descMask, in.bitLen)

		var depthBuf []byte
		var hashBuf []byte
		maxDepth := 0
		for _, child := range in.refs {
			childLevel := level + in.levelShift
			d := child.DepthAt(childLevel)
			depthBuf = append(depthBuf, byte(d>>8), byte(d))
			if int(d) > maxDepth {
				maxDepth = int(d)
			}
			h := child.HashAt(childLevel)
			hashBuf = append(hashBuf, h[:]...)
		}

		parts := make([][]byte, 0, 4)
		parts = append(parts, []byte{d1, d2}, padded)
		if len(depthBuf) > 0 {
			parts = append(parts, depthBuf, hashBuf)
		}
		out[level].Hash = hashing.Hash(parts...)

		if len(in.refs) == 0 {
			out[level].Depth = 0
		} else {
			if maxDepth+1 > 0xFFFF {
				return out, ErrDepthOverflow
			}
			out[level].Depth = uint16(maxDepth + 1)
		}
	}
	return out, nil
}
