package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coredao-org/core-genesis-contract/compiler"
	"github.com/coredao-org/core-genesis-contract/config"
	"github.com/coredao-org/core-genesis-contract/internal/genesis"
	"github.com/coredao-org/core-genesis-contract/orchestrator"
	"github.com/coredao-org/core-genesis-contract/storage/pebble"
)

func main() {
	var (
		configPath     string
		chainID        uint64
		templatePath   string
		outputPath     string
		validatorsConf string
		cacheDir       string
		workers        int
		logLevel       string
		logFormat      string
	)

	flag.StringVar(&configPath, "config", "", "Genesis config file (YAML)")
	flag.Uint64Var(&chainID, "chain-id", 0, "Chain id, mainnet 1116 testnet 1115 devnet 1112 (overrides config)")
	flag.StringVar(&templatePath, "template", "", "Genesis template (overrides config)")
	flag.StringVar(&outputPath, "output", "", "Genesis output file (overrides config)")
	flag.StringVar(&validatorsConf, "validators-conf", "", "Validators conf file, one consensus,fee pair per line (overrides config)")
	flag.StringVar(&cacheDir, "cache-dir", "", "Bytecode cache directory (overrides config)")
	flag.IntVar(&workers, "workers", 0, "Concurrent solc processes (overrides config)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	flag.Parse()

	logger := newLogger(os.Stderr, logLevel, logFormat)

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
	}
	if chainID != 0 {
		cfg.ChainID = chainID
	}
	if templatePath != "" {
		cfg.Template = templatePath
	}
	if outputPath != "" {
		cfg.Output = outputPath
	}
	if validatorsConf != "" {
		cfg.Validators = nil
		cfg.ValidatorsConf = validatorsConf
	}
	if cacheDir != "" {
		cfg.Compiler.CacheDir = cacheDir
	}
	if workers > 0 {
		cfg.Compiler.Workers = workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("genesis generation failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// run validates every input before touching the cache or starting solc.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	vals, err := cfg.ValidatorRecords()
	if err != nil {
		return err
	}
	holders, err := cfg.HolderRecords()
	if err != nil {
		return err
	}
	members, err := cfg.MemberAddresses()
	if err != nil {
		return err
	}
	jobs := cfg.CompileJobs()
	if err := genesis.Preflight(vals, jobs, cfg.Flags); err != nil {
		return err
	}

	solc := compiler.NewSolc(cfg.CompilerSettings())
	var c compiler.Compiler = solc
	if cfg.Compiler.CacheDir != "" {
		store, err := pebble.Open(cfg.Compiler.CacheDir, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		version, err := solc.Version(ctx)
		if err != nil {
			return fmt.Errorf("solc version: %w", err)
		}
		tree, err := compiler.TreeDigest(cfg.CacheRoots()...)
		if err != nil {
			return fmt.Errorf("digest sources: %w", err)
		}
		identity := compiler.Identity(solc.Settings.Fingerprint(version), tree)
		logger.Info("bytecode cache enabled",
			"dir", cfg.Compiler.CacheDir,
			"solc", version,
			"identity", identity.Short(),
		)
		c = compiler.NewCached(solc, store, identity, logger)
	}

	orch, err := orchestrator.New(orchestrator.Config{
		Compiler: c,
		Workers:  cfg.Compiler.Workers,
		Timeout:  cfg.Compiler.Timeout,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	asm, err := genesis.New(genesis.Config{
		Scalars: genesis.Scalars{
			ChainID: cfg.ChainID,
			Holders: holders,
			Cycle:   cfg.CycleParams(),
			Members: members,
			Flags:   cfg.Flags,
		},
		Validators:   vals,
		Jobs:         jobs,
		Orchestrator: orch,
		TemplatePath: cfg.Template,
		OutputPath:   cfg.Output,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	_, err = asm.Run(ctx)
	return err
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
