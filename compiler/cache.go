package compiler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/coredao-org/core-genesis-contract/storage"
	"github.com/coredao-org/core-genesis-contract/types"
)

// Cached wraps a Compiler with a CodeStore. An entry is reused only when the
// compiler identity, the source tree and the job all match.
type Cached struct {
	inner    Compiler
	store    storage.CodeStore
	identity types.Root
	logger   *slog.Logger
}

// NewCached returns a caching Compiler. identity should come from Identity.
func NewCached(inner Compiler, store storage.CodeStore, identity types.Root, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{inner: inner, store: store, identity: identity, logger: logger}
}

// Identity combines the settings fingerprint and the source tree digest.
func Identity(fingerprint, tree types.Root) types.Root {
	return sha256.Sum256(append(fingerprint[:], tree[:]...))
}

func (c *Cached) key(job types.CompileJob) [32]byte {
	h := sha256.New()
	h.Write(c.identity[:])
	writeField(h.Write, []byte(job.SourcePath))
	writeField(h.Write, []byte(job.ContractName))
	var k [32]byte
	copy(k[:], h.Sum(nil))
	return k
}

func (c *Cached) Compile(ctx context.Context, job types.CompileJob) (types.Artifact, error) {
	key := c.key(job)
	if code, ok := c.store.GetCode(key); ok && len(code) > 0 {
		c.logger.Debug("code cache hit", "key", job.Key, "contract", job.ContractName)
		return types.Artifact{Key: job.Key, Runtime: hex.EncodeToString(code)}, nil
	}

	a, err := c.inner.Compile(ctx, job)
	if err != nil {
		return a, err
	}
	raw, err := hex.DecodeString(a.Runtime)
	if err != nil {
		return types.Artifact{}, newJobError(job, StageExtract, fmt.Errorf("%w: %v", types.ErrInvalidBytecode, err))
	}
	if err := c.store.PutCode(key, raw); err != nil {
		c.logger.Warn("code cache write failed", "key", job.Key, "error", err)
	}
	return a, nil
}

// TreeDigest hashes the relative path and content of every regular file under
// roots, in lexical order. Missing roots contribute only their name.
func TreeDigest(roots ...string) (types.Root, error) {
	h := sha256.New()
	for _, root := range roots {
		writeField(h.Write, []byte(filepath.ToSlash(root)))

		var files []string
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				files = append(files, path)
			}
			return nil
		})
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return types.Root{}, fmt.Errorf("walk %s: %w", root, err)
		}
		sort.Strings(files)

		for _, path := range files {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return types.Root{}, err
			}
			writeField(h.Write, []byte(filepath.ToSlash(rel)))
			if err := hashFile(h, path); err != nil {
				return types.Root{}, err
			}
		}
	}
	var out types.Root
	copy(out[:], h.Sum(nil))
	return out, nil
}

func hashFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	content := sha256.New()
	if _, err := io.Copy(content, f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	_, err = w.Write(content.Sum(nil))
	return err
}
