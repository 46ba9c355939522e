// Package config loads the genesis build configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/coredao-org/core-genesis-contract/compiler"
	"github.com/coredao-org/core-genesis-contract/types"
	"github.com/coredao-org/core-genesis-contract/validator"
)

// Defaults used when the file omits a value.
const (
	DefaultChainID        = 1116
	DefaultTemplate       = "./genesis-template.json"
	DefaultOutput         = "./genesis.json"
	DefaultTimeout        = 5 * time.Minute
	DefaultRoundInterval  = 86400
	DefaultValidatorCount = 21
	DefaultMemberSet      = "mainnet"
)

// MemberSets are the built-in governance member lists.
var MemberSets = map[string][]string{
	"mainnet": {
		"0x548e6ACCE441866674E04ab84587af2D394034c0",
		"0xBb06D463bc143EeCC4A0cfa35e0346d5690fa9f6",
		"0xe2fe60f349C6e1a85caaD1d22200C289DA40DC12",
		"0xB198DB68258f06e79D415A0998Be7f9B38Ea7226",
		"0xdd173b85f306128F1B10D7d7219059c28c6D6c09",
	},
	"testnet": {
		"0x91fb7d8a73d2752830ea189737ea0e007f999b94",
		"0x48bfbc530e7c54c332b0fae07312fba7078b8789",
		"0xde60b7d0e6b758ca5dd8c61d377a2c5f1af51ec1",
	},
}

// ValidatorEntry is one validator as written in the config file.
type ValidatorEntry struct {
	ConsensusAddr string `yaml:"consensusAddr"`
	FeeAddr       string `yaml:"feeAddr"`
}

// HolderEntry is an initial balance. Balance is decimal, or hex with 0x.
type HolderEntry struct {
	Address string `yaml:"address"`
	Balance string `yaml:"balance"`
}

type CycleEntry struct {
	RoundInterval  uint64 `yaml:"roundInterval"`
	ValidatorCount uint64 `yaml:"validatorCount"`
}

// ContractEntry is one compile job.
type ContractEntry struct {
	Key    string `yaml:"key"`
	Source string `yaml:"source"`
	Name   string `yaml:"name"`
}

// CompilerConfig configures the solc runner, the worker pool and the cache.
type CompilerConfig struct {
	Binary       string        `yaml:"binary"`
	Remappings   []string      `yaml:"remappings"`
	OptimizeRuns int           `yaml:"optimizeRuns"`
	Timeout      time.Duration `yaml:"timeout"`
	Workers      int           `yaml:"workers"`
	WorkDir      string        `yaml:"workDir"`
	CacheDir     string        `yaml:"cacheDir"`    // empty disables the bytecode cache
	CacheInputs  []string      `yaml:"cacheInputs"` // trees hashed into the cache identity
}

// Config is the complete build configuration.
type Config struct {
	ChainID        uint64            `yaml:"chainId"`
	Validators     []ValidatorEntry  `yaml:"validators"`
	ValidatorsConf string            `yaml:"validatorsConf"`
	Holders        []HolderEntry     `yaml:"holders"`
	Cycle          CycleEntry        `yaml:"cycle"`
	Members        []string          `yaml:"members"`   // overrides memberSet when set
	MemberSet      string            `yaml:"memberSet"` // key of MemberSets
	Flags          map[string]string `yaml:"flags"`
	Contracts      []ContractEntry   `yaml:"contracts"`
	Compiler       CompilerConfig    `yaml:"compiler"`
	Template       string            `yaml:"template"`
	Output         string            `yaml:"output"`
}

// systemContracts are compiled into every genesis, in this order.
var systemContracts = []ContractEntry{
	{"validatorContract", "contracts/ValidatorSet.sol", "ValidatorSet"},
	{"systemRewardContract", "contracts/SystemReward.sol", "SystemReward"},
	{"slashContract", "contracts/SlashIndicator.sol", "SlashIndicator"},
	{"btcLightClient", "contracts/BtcLightClient.sol", "BtcLightClient"},
	{"relayerHub", "contracts/RelayerHub.sol", "RelayerHub"},
	{"candidateHub", "contracts/CandidateHub.sol", "CandidateHub"},
	{"govHub", "contracts/GovHub.sol", "GovHub"},
	{"pledgeAgent", "contracts/PledgeAgent.sol", "PledgeAgent"},
	{"burn", "contracts/Burn.sol", "Burn"},
	{"foundation", "contracts/Foundation.sol", "Foundation"},
	{"stakehub", "contracts/StakeHub.sol", "StakeHub"},
	{"coreagent", "contracts/CoreAgent.sol", "CoreAgent"},
	{"hashpoweragent", "contracts/HashPowerAgent.sol", "HashPowerAgent"},
	{"bitcoinagent", "contracts/BitcoinAgent.sol", "BitcoinAgent"},
	{"bitcoinstake", "contracts/BitcoinStake.sol", "BitcoinStake"},
	{"bitcoinLSTstake", "contracts/BitcoinLSTStake.sol", "BitcoinLSTStake"},
}

// Default returns the mainnet build configuration without validators or
// holders.
func Default() *Config {
	s := compiler.DefaultSettings()
	return &Config{
		ChainID: DefaultChainID,
		Cycle: CycleEntry{
			RoundInterval:  DefaultRoundInterval,
			ValidatorCount: DefaultValidatorCount,
		},
		MemberSet: DefaultMemberSet,
		Flags:     map[string]string{},
		Contracts: append([]ContractEntry(nil), systemContracts...),
		Compiler: CompilerConfig{
			Binary:       s.Binary,
			Remappings:   s.Remappings,
			OptimizeRuns: s.OptimizeRuns,
			Timeout:      DefaultTimeout,
			Workers:      runtime.NumCPU(),
			CacheInputs:  []string{"contracts", "node_modules/@openzeppelin"},
		},
		Template: DefaultTemplate,
		Output:   DefaultOutput,
	}
}

// Load reads a YAML config file over Default. Relative paths in the file,
// and the defaults, are resolved against the file's directory, which is
// also the compiler work dir unless workDir is set. Contract sources and
// cacheInputs stay relative to the work dir.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

func (c *Config) resolve(dir string) {
	for _, p := range []*string{
		&c.ValidatorsConf,
		&c.Template,
		&c.Output,
		&c.Compiler.WorkDir,
		&c.Compiler.CacheDir,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	if c.Compiler.WorkDir == "" {
		c.Compiler.WorkDir = dir
	}
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that do not need any file access.
func (c *Config) Validate() error {
	if c.ChainID == 0 {
		return errors.New("chainId must be set")
	}
	if len(c.Validators) > 0 && c.ValidatorsConf != "" {
		return errors.New("validators and validatorsConf are mutually exclusive")
	}
	if len(c.Contracts) == 0 {
		return errors.New("no contracts configured")
	}
	for i, ct := range c.Contracts {
		if ct.Source == "" || ct.Name == "" {
			return fmt.Errorf("contract %d (%q): source and name are required", i, ct.Key)
		}
	}
	if len(c.Members) == 0 {
		if _, ok := MemberSets[c.MemberSet]; !ok {
			return fmt.Errorf("unknown memberSet %q", c.MemberSet)
		}
	}
	if c.Compiler.Timeout < 0 {
		return fmt.Errorf("negative compiler timeout %s", c.Compiler.Timeout)
	}
	if c.Template == "" || c.Output == "" {
		return errors.New("template and output must be set")
	}
	return nil
}

// ValidatorRecords returns the validator list, from validatorsConf when set.
func (c *Config) ValidatorRecords() ([]types.ValidatorRecord, error) {
	if c.ValidatorsConf != "" {
		return validator.LoadConf(c.ValidatorsConf)
	}
	vals := make([]types.ValidatorRecord, 0, len(c.Validators))
	for i, v := range c.Validators {
		consensus, err := types.ParseAddress(v.ConsensusAddr)
		if err != nil {
			return nil, fmt.Errorf("validator %d consensusAddr: %w", i, err)
		}
		fee, err := types.ParseAddress(v.FeeAddr)
		if err != nil {
			return nil, fmt.Errorf("validator %d feeAddr: %w", i, err)
		}
		vals = append(vals, types.ValidatorRecord{ConsensusAddr: consensus, FeeAddr: fee})
	}
	return vals, nil
}

func (c *Config) HolderRecords() ([]types.Holder, error) {
	holders := make([]types.Holder, 0, len(c.Holders))
	for i, h := range c.Holders {
		addr, err := types.ParseAddress(h.Address)
		if err != nil {
			return nil, fmt.Errorf("holder %d address: %w", i, err)
		}
		bal, err := types.ParseBalance(h.Balance)
		if err != nil {
			return nil, fmt.Errorf("holder %d balance: %w", i, err)
		}
		holders = append(holders, types.Holder{Address: addr, Balance: bal})
	}
	return holders, nil
}

// MemberAddresses returns the governance members: members when set,
// otherwise the named member set.
func (c *Config) MemberAddresses() ([]common.Address, error) {
	members := c.Members
	if len(members) == 0 {
		set, ok := MemberSets[c.MemberSet]
		if !ok {
			return nil, fmt.Errorf("unknown memberSet %q", c.MemberSet)
		}
		members = set
	}
	addrs := make([]common.Address, len(members))
	for i, m := range members {
		addr, err := types.ParseAddress(m)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		addrs[i] = addr
	}
	return addrs, nil
}

func (c *Config) CycleParams() types.Cycle {
	return types.Cycle{RoundInterval: c.Cycle.RoundInterval, ValidatorCount: c.Cycle.ValidatorCount}
}

// CompileJobs returns one job per configured contract, in file order.
func (c *Config) CompileJobs() []types.CompileJob {
	jobs := make([]types.CompileJob, len(c.Contracts))
	for i, ct := range c.Contracts {
		jobs[i] = types.CompileJob{Key: ct.Key, SourcePath: ct.Source, ContractName: ct.Name}
	}
	return jobs
}

// CompilerSettings returns the solc argument template.
func (c *Config) CompilerSettings() compiler.Settings {
	return compiler.Settings{
		Binary:       c.Compiler.Binary,
		Remappings:   append([]string(nil), c.Compiler.Remappings...),
		OptimizeRuns: c.Compiler.OptimizeRuns,
		WorkDir:      c.Compiler.WorkDir,
	}
}

// CacheRoots returns CacheInputs resolved against the compiler work dir.
func (c *Config) CacheRoots() []string {
	roots := make([]string, len(c.Compiler.CacheInputs))
	for i, in := range c.Compiler.CacheInputs {
		if filepath.IsAbs(in) || c.Compiler.WorkDir == "" {
			roots[i] = in
			continue
		}
		roots[i] = filepath.Join(c.Compiler.WorkDir, in)
	}
	return roots
}
