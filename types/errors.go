package types

import "errors"

// Sentinel errors for genesis construction.
// Callers may use errors.Is to check for specific failure types.
var (
	ErrInvalidAddress      = errors.New("invalid address")                  // not exactly 20 bytes after hex decoding
	ErrInvalidBalance      = errors.New("invalid balance")                  // not a non-negative integer
	ErrInvalidBytecode     = errors.New("invalid bytecode")                 // not even-length lowercase hex
	ErrEmptyValidatorSet   = errors.New("empty validator set")              // genesis needs at least one validator
	ErrDuplicateJobKey     = errors.New("duplicate compile job key")        // two jobs share a key, or a key is empty
	ErrFieldCollision      = errors.New("descriptor field collision")       // a name is claimed by two namespaces
	ErrExtraction          = errors.New("bytecode extraction failed")       // compiler output has no usable runtime section
	ErrCompilerStart       = errors.New("compiler failed to start")         // executable missing or not runnable
	ErrJobTimeout          = errors.New("compile job timed out")            // per-job deadline exceeded
	ErrIncompleteArtifacts = errors.New("incomplete compilation artifacts") // at least one job failed
	ErrTooManyJobs         = errors.New("too many compile jobs")            // more jobs than a manifest can list
)
