package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/coredao-org/core-genesis-contract/types"
)

// Extraction failures. All wrap types.ErrExtraction.
var (
	ErrSectionNotFound = fmt.Errorf("%w: contract section not found", types.ErrExtraction)
	ErrMarkerNotFound  = fmt.Errorf("%w: runtime marker not found", types.ErrExtraction)
	ErrNoBytecode      = fmt.Errorf("%w: no runtime bytecode after marker", types.ErrExtraction)
)

// Stage names where a job failed.
type Stage string

const (
	StageStart   Stage = "start"   // process could not be started
	StageTimeout Stage = "timeout" // deadline exceeded or caller gave up
	StageExtract Stage = "extract" // output did not yield bytecode
	StageCompile Stage = "compile" // any other Compiler failure
)

// JobError is a failed compile job. Process details stay in the diagnostic
// fields; callers should match on Err with errors.Is.
type JobError struct {
	Key          string
	SourcePath   string
	ContractName string
	Stage        Stage
	ExitCode     int    // -1 when the process did not exit normally
	Stderr       string // retained for diagnostics
	Err          error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("compile %s (%s:%s) %s: %v", e.Key, e.SourcePath, e.ContractName, e.Stage, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }

func newJobError(job types.CompileJob, stage Stage, err error) *JobError {
	return &JobError{
		Key:          job.Key,
		SourcePath:   job.SourcePath,
		ContractName: job.ContractName,
		Stage:        stage,
		ExitCode:     -1,
		Err:          err,
	}
}

// AsJobError normalises err into a *JobError for job. ctxErr is the job
// context's error, used to classify timeouts.
func AsJobError(job types.CompileJob, err, ctxErr error) *JobError {
	var jerr *JobError
	if errors.As(err, &jerr) {
		return jerr
	}
	switch {
	case errors.Is(ctxErr, context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		return newJobError(job, StageTimeout, fmt.Errorf("%w: %v", types.ErrJobTimeout, err))
	case ctxErr != nil:
		return newJobError(job, StageTimeout, ctxErr)
	case errors.Is(err, types.ErrExtraction) || errors.Is(err, types.ErrInvalidBytecode):
		return newJobError(job, StageExtract, err)
	}
	return newJobError(job, StageCompile, err)
}
