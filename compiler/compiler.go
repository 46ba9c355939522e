// Package compiler turns a CompileJob into runtime bytecode. The Compiler
// interface hides how that happens; Solc drives the solc executable and
// parses its text output, Cached memoises any Compiler in a CodeStore.
package compiler

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"strconv"

	"github.com/coredao-org/core-genesis-contract/types"
)

// Compiler compiles a single job. Failures should be returned as *JobError;
// other errors are normalised by AsJobError.
type Compiler interface {
	Compile(ctx context.Context, job types.CompileJob) (types.Artifact, error)
}

// Func adapts a plain function to the Compiler interface.
type Func func(ctx context.Context, job types.CompileJob) (types.Artifact, error)

func (f Func) Compile(ctx context.Context, job types.CompileJob) (types.Artifact, error) {
	return f(ctx, job)
}

// Compiler defaults.
const (
	DefaultBinary       = "solc"
	DefaultOptimizeRuns = 10000
)

// DefaultRemappings are passed to every solc invocation.
var DefaultRemappings = []string{
	"@openzeppelin/=./node_modules/@openzeppelin/",
	"/=/",
}

// Settings is the fixed argument template shared by every job. The optimizer
// settings are part of each artifact's identity.
type Settings struct {
	Binary       string
	Remappings   []string
	OptimizeRuns int
	WorkDir      string // working directory for relative remappings and sources
}

// DefaultSettings returns the solc settings used for mainnet genesis.
func DefaultSettings() Settings {
	return Settings{
		Binary:       DefaultBinary,
		Remappings:   append([]string(nil), DefaultRemappings...),
		OptimizeRuns: DefaultOptimizeRuns,
	}
}

// Args returns the solc arguments for source: remappings, runtime-only binary
// output, optimizer on with the configured run count, then the source path.
func (s Settings) Args(source string) []string {
	args := make([]string, 0, len(s.Remappings)+5)
	args = append(args, s.Remappings...)
	args = append(args,
		"--bin-runtime",
		"--optimize",
		"--optimize-runs", strconv.Itoa(s.OptimizeRuns),
		source,
	)
	return args
}

// Fingerprint digests everything in s that can change compiler output,
// together with the compiler version string.
func (s Settings) Fingerprint(version string) types.Root {
	h := sha256.New()
	writeField(h.Write, []byte(s.Binary))
	writeField(h.Write, []byte(version))
	for _, arg := range s.Args("") {
		writeField(h.Write, []byte(arg))
	}
	var out types.Root
	copy(out[:], h.Sum(nil))
	return out
}

// writeField writes a length-prefixed field so adjacent fields cannot alias.
func writeField(write func([]byte) (int, error), b []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(b)))
	write(n[:])
	write(b)
}
