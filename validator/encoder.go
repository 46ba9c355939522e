// Package validator encodes the genesis validator set into the two byte
// layouts consumed by consensus: the block extra-data header and the RLP
// validator list handed to the validator-set contract.
// Functions are pure; nothing here performs I/O.
package validator

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/coredao-org/core-genesis-contract/types"
)

// Extra-data layout constants.
const (
	ExtraVanity = 32 // zero-filled prefix
	ExtraSeal   = 65 // zero-filled suffix, reserved for the block seal
)

// Encoded holds both encodings of one ordered validator list.
type Encoded struct {
	ExtraData    []byte
	ValidatorSet []byte
}

// pair is the RLP shape of one validator: [consensus, fee].
type pair struct {
	ConsensusAddr common.Address
	FeeAddr       common.Address
}

// Encode produces the extra data and the RLP validator set for vals.
func Encode(vals []types.ValidatorRecord) (*Encoded, error) {
	extra, err := ExtraData(vals)
	if err != nil {
		return nil, err
	}
	set, err := EncodeValidatorSet(vals)
	if err != nil {
		return nil, err
	}
	return &Encoded{ExtraData: extra, ValidatorSet: set}, nil
}

// ExtraDataLen returns the extra-data length for n validators.
func ExtraDataLen(n int) int {
	return ExtraVanity + n*common.AddressLength + ExtraSeal
}

// ExtraData lays out 32 zero bytes, each consensus address in list order,
// then 65 zero bytes.
func ExtraData(vals []types.ValidatorRecord) ([]byte, error) {
	if len(vals) == 0 {
		return nil, types.ErrEmptyValidatorSet
	}
	out := make([]byte, ExtraVanity, ExtraDataLen(len(vals)))
	for _, v := range vals {
		out = append(out, v.ConsensusAddr.Bytes()...)
	}
	return append(out, make([]byte, ExtraSeal)...), nil
}

// EncodeValidatorSet RLP-encodes [[consensus_1, fee_1], [consensus_2, fee_2], ...].
func EncodeValidatorSet(vals []types.ValidatorRecord) ([]byte, error) {
	if len(vals) == 0 {
		return nil, types.ErrEmptyValidatorSet
	}
	pairs := make([]pair, len(vals))
	for i, v := range vals {
		pairs[i] = pair{ConsensusAddr: v.ConsensusAddr, FeeAddr: v.FeeAddr}
	}
	enc, err := rlp.EncodeToBytes(pairs)
	if err != nil {
		return nil, fmt.Errorf("rlp encode validator set: %w", err)
	}
	return enc, nil
}

// DecodeValidatorSet is the inverse of EncodeValidatorSet.
func DecodeValidatorSet(data []byte) ([]types.ValidatorRecord, error) {
	var pairs []pair
	if err := rlp.DecodeBytes(data, &pairs); err != nil {
		return nil, fmt.Errorf("rlp decode validator set: %w", err)
	}
	vals := make([]types.ValidatorRecord, len(pairs))
	for i, p := range pairs {
		vals[i] = types.ValidatorRecord{ConsensusAddr: p.ConsensusAddr, FeeAddr: p.FeeAddr}
	}
	return vals, nil
}
