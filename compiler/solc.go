package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/coredao-org/core-genesis-contract/types"
)

// waitDelay bounds how long Wait blocks on output pipes after the process is
// killed, in case a grandchild keeps them open.
const waitDelay = 2 * time.Second

// Solc compiles jobs by running the solc executable, one process per job.
type Solc struct {
	Settings Settings
}

// NewSolc returns a Solc using settings; empty fields fall back to defaults.
func NewSolc(settings Settings) *Solc {
	if settings.Binary == "" {
		settings.Binary = DefaultBinary
	}
	if settings.OptimizeRuns == 0 {
		settings.OptimizeRuns = DefaultOptimizeRuns
	}
	return &Solc{Settings: settings}
}

// Compile runs solc for job and extracts the runtime bytecode of
// job.ContractName. Stdout is read in full before parsing; stderr is kept
// on the returned JobError.
func (s *Solc) Compile(ctx context.Context, job types.CompileJob) (types.Artifact, error) {
	cmd := exec.CommandContext(ctx, s.Settings.Binary, s.Settings.Args(job.SourcePath)...)
	cmd.Dir = s.Settings.WorkDir
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		jerr := AsJobError(job, ctxErr, ctxErr)
		jerr.Stderr = stderr.String()
		return types.Artifact{}, jerr
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return types.Artifact{}, newJobError(job, StageStart,
				fmt.Errorf("%w: %s: %v", types.ErrCompilerStart, s.Settings.Binary, runErr))
		}
		exitCode = exitErr.ExitCode()
	}

	// The output decides success; the exit status only annotates failures.
	code, err := ExtractRuntime(stdout.String(), job.SourcePath, job.ContractName)
	if err != nil {
		jerr := newJobError(job, StageExtract, err)
		jerr.ExitCode = exitCode
		jerr.Stderr = stderr.String()
		return types.Artifact{}, jerr
	}
	return types.Artifact{Key: job.Key, Runtime: code}, nil
}

// Version returns the last line of `solc --version`.
func (s *Solc) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, s.Settings.Binary, "--version")
	cmd.Dir = s.Settings.WorkDir
	cmd.WaitDelay = waitDelay
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%w: %s --version: %v", types.ErrCompilerStart, s.Settings.Binary, err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(lines[len(lines)-1]), nil
}
