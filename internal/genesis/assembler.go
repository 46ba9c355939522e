package genesis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coredao-org/core-genesis-contract/orchestrator"
	"github.com/coredao-org/core-genesis-contract/types"
	"github.com/coredao-org/core-genesis-contract/validator"
)

// Config holds everything needed to assemble one genesis file.
type Config struct {
	Scalars      Scalars
	Validators   []types.ValidatorRecord
	Jobs         []types.CompileJob
	Orchestrator *orchestrator.Orchestrator
	TemplatePath string
	OutputPath   string
	Logger       *slog.Logger
}

// Assembler drives the validator encoder and the compilation orchestrator
// and writes the rendered result.
type Assembler struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an assembler.
func New(cfg Config) (*Assembler, error) {
	if cfg.Orchestrator == nil {
		return nil, errors.New("genesis: nil orchestrator")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{cfg: cfg, logger: logger}, nil
}

// Preflight checks the inputs that need no compiler: a non-empty validator
// set, unique job keys within the manifest limit, and no field collisions.
// Run it before starting any process.
func Preflight(vals []types.ValidatorRecord, jobs []types.CompileJob, flags map[string]string) error {
	if len(vals) == 0 {
		return types.ErrEmptyValidatorSet
	}
	if len(jobs) > types.MaxManifestContracts {
		return fmt.Errorf("%w: %d jobs, limit %d", types.ErrTooManyJobs, len(jobs), types.MaxManifestContracts)
	}
	if err := orchestrator.ValidateJobs(jobs); err != nil {
		return err
	}
	keys := make([]string, len(jobs))
	for i, job := range jobs {
		keys[i] = job.Key
	}
	return CheckCollisions(flags, keys)
}

func (a *Assembler) validate() error {
	return Preflight(a.cfg.Validators, a.cfg.Jobs, a.cfg.Scalars.Flags)
}

// Build validates the configuration, then encodes the validator set while
// the contracts compile, and merges both once every job has settled.
// Configuration errors are returned before any compiler is started.
func (a *Assembler) Build(ctx context.Context) (*Descriptor, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}

	var (
		enc *validator.Encoded
		res *orchestrator.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		enc, err = validator.Encode(a.cfg.Validators)
		if err != nil {
			return fmt.Errorf("encode validators: %w", err)
		}
		a.logger.Debug("validators encoded",
			"validators", len(a.cfg.Validators),
			"extra_data_bytes", len(enc.ExtraData),
		)
		return nil
	})
	g.Go(func() error {
		var err error
		res, err = a.cfg.Orchestrator.Run(gctx, a.cfg.Jobs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !res.Complete() {
		for _, f := range res.Failures {
			a.logger.Error("contract not compiled",
				"key", f.Key,
				"source", f.SourcePath,
				"contract", f.ContractName,
				"stage", f.Stage,
				"error", f.Err,
			)
		}
	}
	d, err := Merge(a.cfg.Scalars, enc, res)
	if err != nil {
		return nil, err
	}
	a.logger.Info("descriptor assembled",
		"chain_id", d.ChainID,
		"contracts", len(d.Contracts),
		"fingerprint", d.Fingerprint.Short(),
	)
	return d, nil
}

// Run builds the descriptor, renders it and writes the output file once.
// On any failure nothing is written.
func (a *Assembler) Run(ctx context.Context) (*Descriptor, error) {
	start := time.Now()
	tmpl, err := ParseTemplate(a.cfg.TemplatePath)
	if err != nil {
		return nil, err
	}

	d, err := a.Build(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := Render(&buf, tmpl, d); err != nil {
		return nil, err
	}
	if err := WriteFileAtomic(a.cfg.OutputPath, buf.Bytes(), 0o644); err != nil {
		return nil, err
	}

	a.logger.Info("genesis written",
		"path", a.cfg.OutputPath,
		"bytes", buf.Len(),
		"fingerprint", d.Fingerprint.Hex(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return d, nil
}
