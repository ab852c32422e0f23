package cell

import (
	"bytes"
	"errors"
	"testing"
)

func TestBuilder_StoreUintAndFinalize(t *testing.T) {
	b := NewBuilder()
	b.StoreUint(0xAB, 8)
	c, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if c.Kind() != KindOrdinary {
		t.Errorf("Kind() = %v, want KindOrdinary", c.Kind())
	}
	if c.BitLen() != 8 {
		t.Errorf("BitLen() = %d, want 8", c.BitLen())
	}
	if !bytes.Equal(c.Bits(), []byte{0xAB}) {
		t.Errorf("Bits() = %x, want ab", c.Bits())
	}
}

func TestBuilder_StoreBits_packsAcrossBytes(t *testing.T) {
	b := NewBuilder()
	b.StoreBits([]byte{0xF0}, 4) // top 4 bits of 0xF0 = 1111
	b.StoreBits([]byte{0x0F}, 4) // top 4 bits of 0x0F = 0000
	c, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if c.BitLen() != 8 {
		t.Fatalf("BitLen() = %d, want 8", c.BitLen())
	}
	if c.Bits()[0] != 0xF0 {
		t.Errorf("Bits()[0] = %08b, want 11110000", c.Bits()[0])
	}
}

func TestBuilder_Overflow_bits(t *testing.T) {
	b := NewBuilder()
	b.StoreUint(0, 1000)
	b.StoreUint(0, 100) // pushes total past maxBits (1023)
	if _, err := b.Finalize(); !errors.Is(err, ErrCellOverflow) {
		t.Fatalf("Finalize() err = %v, want ErrCellOverflow", err)
	}
}

func TestBuilder_Overflow_refs(t *testing.T) {
	leaf, err := NewBuilder().Finalize()
	if err != nil {
		t.Fatalf("building leaf: %v", err)
	}
	b := NewBuilder()
	for i := 0; i < maxRefs+1; i++ {
		b.StoreRef(leaf)
	}
	if _, err := b.Finalize(); !errors.Is(err, ErrCellOverflow) {
		t.Fatalf("Finalize() err = %v, want ErrCellOverflow", err)
	}
}

func TestBuilder_StickyError_shortCircuits(t *testing.T) {
	b := NewBuilder()
	b.StoreUint(0, 1024) // immediately overflows
	before := b.BitLen()
	b.StoreUint(0, 8) // should be a no-op once b.err is set
	if b.BitLen() != before {
		t.Errorf("BitLen() changed after sticky error: %d -> %d", before, b.BitLen())
	}
}

func TestBuilder_RefsOrderPreserved(t *testing.T) {
	var leaves []*Cell
	for i := 0; i < 3; i++ {
		lb := NewBuilder()
		lb.StoreUint(uint64(i), 8)
		leaf, err := lb.Finalize()
		if err != nil {
			t.Fatalf("leaf %d: %v", i, err)
		}
		leaves = append(leaves, leaf)
	}
	b := NewBuilder()
	for _, l := range leaves {
		b.StoreRef(l)
	}
	root, err := b.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	for i, want := range leaves {
		got, err := root.RefCell(i)
		if err != nil {
			t.Fatalf("RefCell(%d): %v", i, err)
		}
		if got.Hash() != want.Hash() {
			t.Errorf("ref %d hash mismatch", i)
		}
	}
}

func TestFinalizeLibrary_rejectsRefs(t *testing.T) {
	leaf, err := NewBuilder().Finalize()
	if err != nil {
		t.Fatalf("building leaf: %v", err)
	}
	b := NewBuilder()
	b.StoreRef(leaf)
	if _, err := b.FinalizeLibrary([32]byte{}); !errors.Is(err, ErrInvalidSpecialHeader) {
		t.Fatalf("FinalizeLibrary() err = %v, want ErrInvalidSpecialHeader", err)
	}
}

func TestFinalizeLibrary(t *testing.T) {
	var libHash [32]byte
	libHash[0] = 0x42
	c, err := NewBuilder().FinalizeLibrary(libHash)
	if err != nil {
		t.Fatalf("FinalizeLibrary: %v", err)
	}
	if c.Kind() != KindLibrary {
		t.Errorf("Kind() = %v, want KindLibrary", c.Kind())
	}
	if c.RefsLen() != 0 {
		t.Errorf("RefsLen() = %d, want 0", c.RefsLen())
	}
}
