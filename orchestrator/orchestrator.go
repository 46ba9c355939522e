// Package orchestrator runs independent compile jobs concurrently and
// collects their artifacts keyed by job key. A failed job never cancels its
// siblings; the result is available once every job has settled.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/coredao-org/core-genesis-contract/compiler"
	"github.com/coredao-org/core-genesis-contract/types"
)

// Config holds the orchestrator's collaborators and limits.
type Config struct {
	Compiler compiler.Compiler
	Workers  int           // concurrent jobs; <= 0 means one per job
	Timeout  time.Duration // per job; 0 disables
	Logger   *slog.Logger
}

// Orchestrator fans compile jobs out to a Compiler.
type Orchestrator struct {
	compiler compiler.Compiler
	workers  int
	timeout  time.Duration
	logger   *slog.Logger
}

// New creates an orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Compiler == nil {
		return nil, errors.New("orchestrator: nil compiler")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		compiler: cfg.Compiler,
		workers:  cfg.Workers,
		timeout:  cfg.Timeout,
		logger:   logger,
	}, nil
}

// Result is the settled outcome of a run.
type Result struct {
	Artifacts map[string]types.Artifact
	Failures  []*compiler.JobError // sorted by key
}

// Complete reports whether every job produced an artifact.
func (r *Result) Complete() bool { return len(r.Failures) == 0 }

// Keys returns the artifact keys in sorted order.
func (r *Result) Keys() []string {
	keys := make([]string, 0, len(r.Artifacts))
	for k := range r.Artifacts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Err returns nil when the result is complete, otherwise an error wrapping
// types.ErrIncompleteArtifacts and every job failure.
func (r *Result) Err() error {
	if r.Complete() {
		return nil
	}
	var errs error
	for _, f := range r.Failures {
		errs = multierr.Append(errs, f)
	}
	return fmt.Errorf("%w: %d of %d jobs failed: %w",
		types.ErrIncompleteArtifacts, len(r.Failures), len(r.Failures)+len(r.Artifacts), errs)
}

// ValidateJobs rejects empty or duplicate keys.
func ValidateJobs(jobs []types.CompileJob) error {
	seen := make(map[string]struct{}, len(jobs))
	for i, job := range jobs {
		if job.Key == "" {
			return fmt.Errorf("%w: job %d has an empty key", types.ErrDuplicateJobKey, i)
		}
		if _, ok := seen[job.Key]; ok {
			return fmt.Errorf("%w: %q", types.ErrDuplicateJobKey, job.Key)
		}
		seen[job.Key] = struct{}{}
	}
	return nil
}

type outcome struct {
	artifact types.Artifact
	err      *compiler.JobError
}

// Run compiles every job and waits for all of them. The returned error is
// non-nil only for invalid jobs (nothing is started) or when ctx ends;
// per-job failures are reported in Result.Failures.
func (o *Orchestrator) Run(ctx context.Context, jobs []types.CompileJob) (*Result, error) {
	if err := ValidateJobs(jobs); err != nil {
		return nil, err
	}

	outcomes := make(chan outcome, len(jobs))
	var g errgroup.Group
	if o.workers > 0 {
		g.SetLimit(o.workers)
	}
	start := time.Now()
	for _, job := range jobs {
		g.Go(func() error {
			outcomes <- o.runJob(ctx, job)
			return nil
		})
	}
	_ = g.Wait()
	close(outcomes)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	res := &Result{Artifacts: make(map[string]types.Artifact, len(jobs))}
	for oc := range outcomes {
		if oc.err != nil {
			res.Failures = append(res.Failures, oc.err)
			continue
		}
		res.Artifacts[oc.artifact.Key] = oc.artifact
	}
	sort.Slice(res.Failures, func(i, j int) bool { return res.Failures[i].Key < res.Failures[j].Key })

	o.logger.Info("compilation finished",
		"jobs", len(jobs),
		"artifacts", len(res.Artifacts),
		"failures", len(res.Failures),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return res, nil
}

func (o *Orchestrator) runJob(ctx context.Context, job types.CompileJob) outcome {
	logger := o.logger.With("key", job.Key, "source", job.SourcePath, "contract", job.ContractName)
	if err := ctx.Err(); err != nil {
		return outcome{err: compiler.AsJobError(job, err, err)}
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	logger.Debug("compiling")
	a, err := o.compiler.Compile(ctx, job)
	if err == nil {
		err = types.ValidateBytecode(a.Runtime)
	}
	if err != nil {
		jerr := compiler.AsJobError(job, err, ctx.Err())
		logger.Warn("compile failed", "stage", jerr.Stage, "error", jerr.Err)
		return outcome{err: jerr}
	}

	// Key by the job, whatever the compiler reported.
	a.Key = job.Key
	logger.Info("compiled", "bytes", len(a.Runtime)/2, "elapsed", time.Since(start).Round(time.Millisecond))
	return outcome{artifact: a}
}
