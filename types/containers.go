package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ValidatorRecord is one genesis validator. Its position in the validator
// list is significant: it fixes both the extra-data layout and the RLP order.
type ValidatorRecord struct {
	ConsensusAddr common.Address
	FeeAddr       common.Address
}

// Holder is an account funded at genesis.
type Holder struct {
	Address common.Address
	Balance *big.Int
}

// BalanceHex returns the balance as lowercase hex without prefix.
func (h Holder) BalanceHex() string {
	if h.Balance == nil {
		return "0"
	}
	return h.Balance.Text(16)
}

// Cycle holds the initial round parameters handed to the system contracts.
type Cycle struct {
	RoundInterval  uint64
	ValidatorCount uint64
}

// CompileJob describes one compilation unit.
type CompileJob struct {
	Key          string
	SourcePath   string
	ContractName string
}

// Artifact is the runtime bytecode recovered for a CompileJob.
type Artifact struct {
	Key     string
	Runtime string // lowercase hex, no 0x prefix
}
