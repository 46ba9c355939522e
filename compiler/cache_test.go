package compiler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/coredao-org/core-genesis-contract/storage/memory"
	"github.com/coredao-org/core-genesis-contract/types"
)

// countingCompiler returns fixed code and counts invocations.
type countingCompiler struct {
	calls atomic.Int32
	code  string
	err   error
}

func (c *countingCompiler) Compile(_ context.Context, job types.CompileJob) (types.Artifact, error) {
	c.calls.Add(1)
	if c.err != nil {
		return types.Artifact{}, c.err
	}
	return types.Artifact{Key: job.Key, Runtime: c.code}, nil
}

func TestCached_HitSkipsCompiler(t *testing.T) {
	inner := &countingCompiler{code: "60806040"}
	store := memory.New()
	c := NewCached(inner, store, types.Root{1}, nil)

	job := types.CompileJob{Key: "burn", SourcePath: "contracts/Burn.sol", ContractName: "Burn"}
	for i := 0; i < 3; i++ {
		a, err := c.Compile(context.Background(), job)
		if err != nil {
			t.Fatalf("Compile #%d: %v", i, err)
		}
		if a.Key != "burn" || a.Runtime != "60806040" {
			t.Errorf("Compile #%d = %+v", i, a)
		}
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("inner compiler called %d times, want 1", got)
	}
}

func TestCached_KeyedByIdentityAndJob(t *testing.T) {
	inner := &countingCompiler{code: "6080"}
	store := memory.New()
	ctx := context.Background()
	job := types.CompileJob{Key: "burn", SourcePath: "contracts/Burn.sol", ContractName: "Burn"}

	if _, err := NewCached(inner, store, types.Root{1}, nil).Compile(ctx, job); err != nil {
		t.Fatal(err)
	}
	if _, err := NewCached(inner, store, types.Root{2}, nil).Compile(ctx, job); err != nil {
		t.Fatal(err)
	}
	other := job
	other.ContractName = "BurnV2"
	if _, err := NewCached(inner, store, types.Root{1}, nil).Compile(ctx, other); err != nil {
		t.Fatal(err)
	}

	if got := inner.calls.Load(); got != 3 {
		t.Errorf("inner compiler called %d times, want 3", got)
	}
	if store.Len() != 3 {
		t.Errorf("store.Len() = %d, want 3", store.Len())
	}
}

func TestCached_FailureNotCached(t *testing.T) {
	inner := &countingCompiler{err: ErrMarkerNotFound}
	store := memory.New()
	c := NewCached(inner, store, types.Root{}, nil)

	job := types.CompileJob{Key: "burn", SourcePath: "contracts/Burn.sol", ContractName: "Burn"}
	for i := 0; i < 2; i++ {
		if _, err := c.Compile(context.Background(), job); !errors.Is(err, ErrMarkerNotFound) {
			t.Fatalf("Compile error = %v, want ErrMarkerNotFound", err)
		}
	}
	if inner.calls.Load() != 2 {
		t.Errorf("inner compiler called %d times, want 2", inner.calls.Load())
	}
	if store.Len() != 0 {
		t.Errorf("store.Len() = %d, want 0", store.Len())
	}
}

func TestTreeDigest(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("Burn.sol", "contract Burn {}")
	write("lib/Memory.sol", "library Memory {}")

	d1, err := TreeDigest(root)
	if err != nil {
		t.Fatalf("TreeDigest: %v", err)
	}
	d2, err := TreeDigest(root)
	if err != nil {
		t.Fatalf("TreeDigest: %v", err)
	}
	if d1 != d2 {
		t.Error("TreeDigest is not deterministic")
	}

	write("lib/Memory.sol", "library Memory { }")
	d3, err := TreeDigest(root)
	if err != nil {
		t.Fatalf("TreeDigest: %v", err)
	}
	if d3 == d1 {
		t.Error("content change did not change the digest")
	}

	if _, err := TreeDigest(root, filepath.Join(root, "missing")); err != nil {
		t.Errorf("missing root should be tolerated: %v", err)
	}
}
