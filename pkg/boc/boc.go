// Package boc implements the Bag-of-Cells wire format: the flat,
// reference-resolved byte encoding a cell DAG is serialized to for
// storage or transport, and decoded back from. It is the external I/O
// glue named in the core's scope, not part of the core itself — the
// core only ever hands it a finished *cell.Cell to serialize or expects
// one back.
package boc

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/ton-core/cellproof/pkg/cell"
)

// magic identifies a cellproof BOC stream, mirrored on the real Bag-of-
// Cells header so a hex dump is recognizable to anyone who has seen one.
const magic = 0xb5ee9c72

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Serialize flattens root's DAG into a BOC byte stream. Shared subtrees
// (the same cell reachable through more than one path) are encoded once
// and referenced by index thereafter. If withCRC is true, a CRC-32C
// (Castagnoli) checksum of everything before it is appended.
func Serialize(root *cell.Cell, withCRC bool) ([]byte, error) {
	order, index, err := topoOrder(root)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 256)
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], magic)
	buf = append(buf, hdr[:]...)

	var flags byte
	if withCRC {
		flags |= 1
	}
	buf = append(buf, flags)

	buf = appendUint32(buf, uint32(len(order)))
	buf = appendUint32(buf, uint32(index[root.Hash()]))

	for _, c := range order {
		exotic := c.Kind().IsSpecial()
		mask := c.Mask()
		d1 := byte(c.RefsLen())
		if exotic {
			d1 |= 1 << 3
		}
		if mask.HashCount() > 1 {
			d1 |= 1 << 4
		}
		d1 |= byte(mask) << 5
		fullBytes := c.BitLen() / 8
		d2 := byte(2 * fullBytes)
		if c.BitLen()%8 != 0 {
			d2++
		}
		buf = append(buf, d1, d2)
		data := append([]byte(nil), c.Bits()...)
		if c.BitLen()%8 != 0 {
			// Terminator bit after the last data bit, which Deserialize
			// uses to recover the exact bit length.
			data[len(data)-1] |= 1 << uint(7-c.BitLen()%8)
		}
		buf = append(buf, data...)

		buf = append(buf, byte(c.RefsLen()))
		for i := 0; i < c.RefsLen(); i++ {
			child, err := c.RefCell(i)
			if err != nil {
				return nil, err
			}
			buf = appendUint32(buf, uint32(index[child.Hash()]))
		}
	}

	if withCRC {
		sum := crc32.Checksum(buf, castagnoli)
		buf = appendUint32(buf, sum)
	}
	return buf, nil
}

// topoOrder returns root's DAG in post-order (children before parents),
// deduplicated by hash, along with a hash-to-index map for the order
// produced.
func topoOrder(root *cell.Cell) ([]*cell.Cell, map[[32]byte]int, error) {
	var order []*cell.Cell
	index := make(map[[32]byte]int)

	var visit func(c *cell.Cell) error
	visit = func(c *cell.Cell) error {
		if _, ok := index[c.Hash()]; ok {
			return nil
		}
		for i := 0; i < c.RefsLen(); i++ {
			child, err := c.RefCell(i)
			if err != nil {
				return err
			}
			if err := visit(child); err != nil {
				return err
			}
		}
		index[c.Hash()] = len(order)
		order = append(order, c)
		return nil
	}
	if err := visit(root); err != nil {
		return nil, nil, err
	}
	return order, index, nil
}

func appendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

// Deserialize decodes a BOC byte stream back into a *cell.Cell DAG,
// returning its root. If the stream carries a CRC-32C footer, it is
// verified before decoding proceeds.
func Deserialize(data []byte) (*cell.Cell, error) {
	if len(data) < 4 || binary.BigEndian.Uint32(data[:4]) != magic {
		return nil, fmt.Errorf("boc: bad magic")
	}
	pos := 4
	if pos >= len(data) {
		return nil, fmt.Errorf("boc: truncated header")
	}
	flags := data[pos]
	pos++
	hasCRC := flags&1 != 0

	if hasCRC {
		if len(data) < 4 {
			return nil, fmt.Errorf("boc: truncated crc")
		}
		body := data[:len(data)-4]
		want := binary.BigEndian.Uint32(data[len(data)-4:])
		got := crc32.Checksum(body, castagnoli)
		if got != want {
			return nil, fmt.Errorf("boc: crc mismatch")
		}
		data = body
	}

	cellCount, pos, err := readUint32(data, pos)
	if err != nil {
		return nil, err
	}
	rootIdx, pos, err := readUint32(data, pos)
	if err != nil {
		return nil, err
	}

	cells := make([]*cell.Cell, cellCount)
	for i := 0; i < int(cellCount); i++ {
		c, next, err := decodeOne(data, pos, cells, i)
		if err != nil {
			return nil, err
		}
		cells[i] = c
		pos = next
	}
	if int(rootIdx) >= len(cells) {
		return nil, fmt.Errorf("boc: root index out of range")
	}
	return cells[rootIdx], nil
}

func readUint32(data []byte, pos int) (uint32, int, error) {
	if pos+4 > len(data) {
		return 0, pos, fmt.Errorf("boc: truncated stream")
	}
	return binary.BigEndian.Uint32(data[pos : pos+4]), pos + 4, nil
}

// decodeOne decodes the cell at position pos. Because the stream lists
// children before parents, the decoded []*cell.Cell slice already holds
// everything earlier entries may reference.
func decodeOne(data []byte, pos int, cells []*cell.Cell, selfIdx int) (*cell.Cell, int, error) {
	if pos+2 > len(data) {
		return nil, pos, fmt.Errorf("boc: truncated descriptor")
	}
	d1 := data[pos]
	d2 := data[pos+1]
	pos += 2

	refsCount := int(d1 & 0x7)
	exotic := d1&(1<<3) != 0
	maskVal := cell.LevelMask(d1 >> 5)

	fullBytes := int(d2) / 2
	numBytes := fullBytes
	aligned := d2%2 == 0
	if !aligned {
		numBytes++
	}
	if pos+numBytes > len(data) {
		return nil, pos, fmt.Errorf("boc: truncated data")
	}
	raw := data[pos : pos+numBytes]
	pos += numBytes

	bitLen := fullBytes * 8
	if !aligned {
		last := raw[numBytes-1]
		trailing := 0
		for i := 0; i < 8; i++ {
			if last&(1<<uint(i)) != 0 {
				break
			}
			trailing++
		}
		bitLen = (numBytes-1)*8 + (7 - trailing)
	}

	if pos >= len(data) {
		return nil, pos, fmt.Errorf("boc: truncated ref count")
	}
	declaredRefs := int(data[pos])
	pos++
	if declaredRefs != refsCount {
		return nil, pos, cell.ErrInvalidSpecialHeader
	}

	refs := make([]*cell.Cell, refsCount)
	for i := 0; i < refsCount; i++ {
		idx, next, err := readUint32(data, pos)
		if err != nil {
			return nil, pos, err
		}
		pos = next
		if int(idx) >= selfIdx {
			return nil, pos, fmt.Errorf("boc: forward reference")
		}
		refs[i] = cells[idx]
	}

	c, err := buildDecoded(exotic, maskVal, raw, bitLen, refs)
	if err != nil {
		return nil, pos, err
	}
	return c, pos, nil
}

func buildDecoded(exotic bool, mask cell.LevelMask, raw []byte, bitLen int, refs []*cell.Cell) (*cell.Cell, error) {
	if !exotic {
		b := cell.NewBuilder()
		b.StoreBits(raw, bitLen)
		for _, r := range refs {
			b.StoreRef(r)
		}
		return b.Finalize()
	}

	if len(raw) == 0 {
		return nil, cell.ErrInvalidSpecialHeader
	}
	switch raw[0] {
	case 0x02: // library
		if len(raw) < 33 {
			return nil, cell.ErrInvalidSpecialHeader
		}
		var libHash [32]byte
		copy(libHash[:], raw[1:33])
		b := cell.NewBuilder()
		return b.FinalizeLibrary(libHash)

	case 0x01: // pruned branch
		level := mask.Level()
		pairs := make([]cell.HashDepth, level)
		off := 2
		for i := 0; i < level; i++ {
			if off+34 > len(raw) {
				return nil, cell.ErrInvalidSpecialHeader
			}
			copy(pairs[i].Hash[:], raw[off:off+32])
			pairs[i].Depth = binary.BigEndian.Uint16(raw[off+32 : off+34])
			off += 34
		}
		return cell.NewPrunedBranchFromStored(level, pairs)

	case 0x03: // merkle proof
		if len(refs) != 1 {
			return nil, cell.ErrInvalidSpecialHeader
		}
		return cell.RebuildMerkleProof(refs[0])

	case 0x04: // merkle update
		if len(refs) != 2 {
			return nil, cell.ErrInvalidSpecialHeader
		}
		return cell.RebuildMerkleUpdate(refs[0], refs[1])

	default:
		return nil, cell.ErrInvalidSpecialHeader
	}
}
