// Command cellproof is a worked example exercising the cell DAG, proof,
// BOC, and verification packages end to end: it builds a small synthetic
// cell tree, proves a subset of it, serializes and reloads the proof,
// virtualizes it, and runs the bundled account lookup against the
// result.
//
// Usage:
//
//	cellproof [flags]
//
// Flags:
//
//	-leaves     Number of leaf cells to build under the synthetic root (default: 4)
//	-keep       Index of the single leaf to keep unpruned (default: 0)
//	-loglevel   Log verbosity: debug, info, warn, error (default: "info")
//	-withcrc    Append a CRC-32C footer to the serialized BOC (default: true)
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ton-core/cellproof/pkg/boc"
	"github.com/ton-core/cellproof/pkg/cell"
	"github.com/ton-core/cellproof/pkg/dict"
	applog "github.com/ton-core/cellproof/pkg/log"
	"github.com/ton-core/cellproof/pkg/proof"
	"github.com/ton-core/cellproof/pkg/verify"
	"github.com/ton-core/cellproof/pkg/virtualize"
)

func main() {
	os.Exit(run())
}

// run is the actual entry point, returning an exit code so the walk-
// through can be invoked from a test without calling os.Exit directly.
func run() int {
	leaves := flag.Int("leaves", 4, "number of leaf cells under the synthetic root")
	keep := flag.Int("keep", 0, "index of the single leaf to keep unpruned")
	logLevel := flag.String("loglevel", "info", "log verbosity (debug, info, warn, error)")
	withCRC := flag.Bool("withcrc", true, "append a CRC-32C footer to the serialized BOC")
	flag.Parse()

	applog.SetDefault(applog.New(slogLevel(applog.LevelFromString(*logLevel))))
	logger := applog.Default().Module("cli")

	if *leaves < 1 || *leaves > 4 {
		logger.Error("leaves out of range", "leaves", *leaves)
		return 1
	}
	if *keep < 0 || *keep >= *leaves {
		logger.Error("keep index out of range", "keep", *keep, "leaves", *leaves)
		return 1
	}

	root, err := buildSyntheticTree(*leaves)
	if err != nil {
		logger.Error("failed to build tree", "err", err)
		return 1
	}
	logger.Info("built root", "dump", root.Dump())

	key := uint32(*keep)
	onPath, err := onPathHashes(root, key)
	if err != nil {
		logger.Error("failed to trace account path", "err", err)
		return 1
	}
	isPruned := func(c *cell.Cell, _ int) bool {
		return !onPath[c.Hash()]
	}
	pb := proof.NewBuilder(isPruned)
	proofCell, err := pb.Build(root)
	if err != nil {
		logger.Error("failed to build proof", "err", err)
		return 1
	}
	stats := pb.Stats()
	logger.Info("built proof", "visited", stats.Visited, "pruned", stats.Pruned)

	wire, err := boc.Serialize(proofCell, *withCRC)
	if err != nil {
		logger.Error("failed to serialize proof", "err", err)
		return 1
	}
	logger.Info("serialized proof", "bytes", len(wire))

	reloaded, err := boc.Deserialize(wire)
	if err != nil {
		logger.Error("failed to deserialize proof", "err", err)
		return 1
	}

	raw, err := proof.Unpack(reloaded, root.Hash())
	if err != nil {
		logger.Error("failed to unpack proof", "err", err)
		return 1
	}
	view := virtualize.Virtualize(raw, 1)
	logger.Info("virtualized proof", "root_kind", view.Kind().String())

	addr := make([]byte, 32)
	binary.BigEndian.PutUint32(addr, key)
	if state, verr := verify.VerifyAccountState(raw, addr); verr != nil {
		logger.Warn("account lookup did not resolve", "err", verr)
	} else {
		fmt.Printf("account %s -> %x\n", state.Address, state.Data)
	}

	return 0
}

// branchBits is the number of key bits that actually distinguish the
// synthetic tree's leaves (2 bits address up to 4 leaves, the flag's
// allowed range). The remaining dict.KeyBits-branchBits levels above
// them are folded — every node's two children are the same cell — so
// the tree costs O(dict.KeyBits) cells instead of 2^dict.KeyBits while
// still being a real dict.KeyBits-deep trie that verify.VerifyAccountState
// (via pkg/dict) can walk end to end, the way its own tests build
// fixtures in pkg/verify/account_test.go's buildAccountRoot.
const branchBits = 2

// buildSyntheticTree builds a dict.KeyBits-deep binary trie with n
// leaves (n <= 1<<branchBits), each storing its own index as 32 bits
// and addressable by that index treated as a big-endian key, the same
// shape VerifyAccountState expects from a real account dictionary.
func buildSyntheticTree(n int) (*cell.Cell, error) {
	leaves := make([]*cell.Cell, n)
	for i := 0; i < n; i++ {
		leaf, err := cell.NewBuilder().StoreUint(uint64(i), 32).Finalize()
		if err != nil {
			return nil, err
		}
		leaves[i] = leaf
	}

	var buildBranch func(remaining, prefix int) (*cell.Cell, error)
	buildBranch = func(remaining, prefix int) (*cell.Cell, error) {
		if remaining == 0 {
			idx := prefix
			if idx >= n {
				// Unreachable slot when n < 1<<branchBits: run() only
				// ever queries an index in [0,n), so which leaf this
				// points to is immaterial.
				idx = 0
			}
			return leaves[idx], nil
		}
		left, err := buildBranch(remaining-1, prefix<<1)
		if err != nil {
			return nil, err
		}
		right, err := buildBranch(remaining-1, prefix<<1|1)
		if err != nil {
			return nil, err
		}
		return cell.NewBuilder().StoreRef(left).StoreRef(right).Finalize()
	}

	cur, err := buildBranch(branchBits, 0)
	if err != nil {
		return nil, err
	}
	for i := 0; i < dict.KeyBits-branchBits; i++ {
		cur, err = cell.NewBuilder().StoreRef(cur).StoreRef(cur).Finalize()
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// onPathHashes walks root the same bit-by-bit way dict.Lookup would for
// key, and returns the set of hashes (root, every intermediate node, and
// the leaf) visited along that single path. Used to build a pruning
// predicate that keeps exactly one account's path and collapses
// everything else into pruned-branch stubs.
func onPathHashes(root *cell.Cell, key uint32) (map[[32]byte]bool, error) {
	onPath := map[[32]byte]bool{root.Hash(): true}
	cur := root
	for i := dict.KeyBits - 1; i >= 0; i-- {
		bit := (key >> uint(i)) & 1
		child, err := cur.RefCell(int(bit))
		if err != nil {
			return nil, err
		}
		onPath[child.Hash()] = true
		cur = child
	}
	return onPath, nil
}

// slogLevel maps the teacher's own LogLevel enum (pkg/log's formatter.go,
// reused here for its -loglevel string parsing) onto the slog.Level the
// JSON-handler-based Logger actually runs on.
func slogLevel(l applog.LogLevel) slog.Level {
	switch l {
	case applog.DEBUG:
		return slog.LevelDebug
	case applog.WARN:
		return slog.LevelWarn
	case applog.ERROR, applog.FATAL:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
