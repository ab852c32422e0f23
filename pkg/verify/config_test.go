package verify

import (
	"errors"
	"testing"

	"github.com/ton-core/cellproof/pkg/cell"
	"github.com/ton-core/cellproof/pkg/dict"
)

func TestExtractConfigParam_resolvesLeaf(t *testing.T) {
	leaf, err := cell.NewBuilder().StoreUint(0xAABBCCDD, 32).Finalize()
	if err != nil {
		t.Fatalf("Finalize leaf: %v", err)
	}
	cur := leaf
	for i := 0; i < dict.KeyBits; i++ {
		b := cell.NewBuilder()
		b.StoreRef(cur)
		b.StoreRef(cur)
		cur, err = b.Finalize()
		if err != nil {
			t.Fatalf("Finalize level %d: %v", i, err)
		}
	}

	data, err := ExtractConfigParam(cur, 7)
	if err != nil {
		t.Fatalf("ExtractConfigParam: %v", err)
	}
	if len(data) != 4 || data[0] != 0xAA {
		t.Fatalf("data = %x, want leaf storing 0xAABBCCDD", data)
	}
}

func TestExtractConfigParam_prunedBranchReportsInsufficient(t *testing.T) {
	leaf, err := cell.NewBuilder().StoreUint(1, 32).Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	stub, err := cell.NewPrunedBranch(leaf, 1)
	if err != nil {
		t.Fatalf("NewPrunedBranch: %v", err)
	}

	if _, err := ExtractConfigParam(stub, 1); !errors.Is(err, ErrProofInsufficient) {
		t.Fatalf("err = %v, want ErrProofInsufficient", err)
	}
}
