// Package genesis merges the validator encoding and the compiled system
// contracts into one genesis descriptor and renders it through a template.
package genesis

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/coredao-org/core-genesis-contract/orchestrator"
	"github.com/coredao-org/core-genesis-contract/types"
	"github.com/coredao-org/core-genesis-contract/validator"
)

// Template field names owned by the descriptor itself.
const (
	FieldChainID      = "chainId"
	FieldInitHolders  = "initHolders"
	FieldInitCycle    = "initCycle"
	FieldExtraData    = "extraData"
	FieldValidatorSet = "validatorSetBytes"
	FieldInitMembers  = "initMembersBytes"
	FieldFingerprint  = "fingerprint"
)

var reservedFields = []string{
	FieldChainID,
	FieldInitHolders,
	FieldInitCycle,
	FieldExtraData,
	FieldValidatorSet,
	FieldInitMembers,
	FieldFingerprint,
}

// Scalars are the descriptor values taken straight from configuration.
type Scalars struct {
	ChainID uint64
	Holders []types.Holder
	Cycle   types.Cycle
	Members []common.Address // governance members, in order
	Flags   map[string]string
}

// Descriptor is a fully merged genesis description. It is only ever built
// from a complete set of artifacts.
type Descriptor struct {
	Scalars
	ExtraData    []byte
	ValidatorSet []byte
	MembersBytes []byte
	Contracts    map[string]string // key -> runtime bytecode hex
	Fingerprint  types.Root
}

// CheckCollisions rejects a flag or contract key that shadows a descriptor
// field, and a contract key equal to a flag name.
func CheckCollisions(flags map[string]string, contractKeys []string) error {
	owner := make(map[string]string, len(reservedFields)+len(flags))
	for _, f := range reservedFields {
		owner[f] = "descriptor field"
	}
	flagNames := make([]string, 0, len(flags))
	for name := range flags {
		flagNames = append(flagNames, name)
	}
	sort.Strings(flagNames)
	for _, name := range flagNames {
		if prev, ok := owner[name]; ok {
			return fmt.Errorf("%w: flag %q is a %s", types.ErrFieldCollision, name, prev)
		}
		owner[name] = "flag"
	}
	for _, key := range contractKeys {
		if prev, ok := owner[key]; ok {
			return fmt.Errorf("%w: contract key %q is a %s", types.ErrFieldCollision, key, prev)
		}
	}
	return nil
}

// Merge joins the scalars, the validator encoding and the compilation
// result. It refuses any result with failures.
func Merge(s Scalars, enc *validator.Encoded, res *orchestrator.Result) (*Descriptor, error) {
	if enc == nil || res == nil {
		return nil, errors.New("merge: missing validator encoding or compilation result")
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	keys := res.Keys()
	if err := CheckCollisions(s.Flags, keys); err != nil {
		return nil, err
	}

	members, err := validator.EncodeMembers(s.Members)
	if err != nil {
		return nil, err
	}

	d := &Descriptor{
		Scalars:      s,
		ExtraData:    enc.ExtraData,
		ValidatorSet: enc.ValidatorSet,
		MembersBytes: members,
		Contracts:    make(map[string]string, len(keys)),
	}
	for _, k := range keys {
		d.Contracts[k] = res.Artifacts[k].Runtime
	}

	fp, err := d.computeFingerprint()
	if err != nil {
		return nil, fmt.Errorf("fingerprint: %w", err)
	}
	d.Fingerprint = fp
	return d, nil
}

// Manifest summarises d for fingerprinting. Contracts are ordered by key.
func (d *Descriptor) Manifest() *types.Manifest {
	keys := make([]string, 0, len(d.Contracts))
	for k := range d.Contracts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := &types.Manifest{
		ChainID:          d.ChainID,
		ExtraDataHash:    types.Root(crypto.Keccak256Hash(d.ExtraData)),
		ValidatorSetHash: types.Root(crypto.Keccak256Hash(d.ValidatorSet)),
		HoldersHash:      holdersHash(d.Holders),
		MembersHash:      types.Root(crypto.Keccak256Hash(d.MembersBytes)),
		Contracts:        make([]types.ContractEntry, len(keys)),
	}
	for i, k := range keys {
		m.Contracts[i] = types.ContractEntry{
			KeyHash:  types.Root(crypto.Keccak256Hash([]byte(k))),
			CodeHash: types.Root(crypto.Keccak256Hash(common.FromHex(d.Contracts[k]))),
		}
	}
	return m
}

func (d *Descriptor) computeFingerprint() (types.Root, error) {
	root, err := d.Manifest().HashTreeRoot()
	if err != nil {
		return types.Root{}, err
	}
	return types.Root(root), nil
}

// holdersHash is keccak256 over address ++ 32-byte balance, in list order.
func holdersHash(holders []types.Holder) types.Root {
	buf := make([]byte, 0, len(holders)*(common.AddressLength+32))
	for _, h := range holders {
		buf = append(buf, h.Address.Bytes()...)
		bal := h.Balance
		if bal == nil {
			bal = new(big.Int)
		}
		buf = append(buf, common.BigToHash(bal).Bytes()...)
	}
	return types.Root(crypto.Keccak256Hash(buf))
}

// Data returns the template context: the descriptor fields, every flag and
// every contract key.
func (d *Descriptor) Data() map[string]any {
	holders := make([]map[string]string, len(d.Holders))
	for i, h := range d.Holders {
		holders[i] = map[string]string{
			"address": strings.ToLower(h.Address.Hex()),
			"balance": h.BalanceHex(),
		}
	}

	data := make(map[string]any, len(reservedFields)+len(d.Flags)+len(d.Contracts))
	for name, v := range d.Flags {
		data[name] = v
	}
	for k, code := range d.Contracts {
		data[k] = code
	}
	data[FieldChainID] = d.ChainID
	data[FieldInitHolders] = holders
	data[FieldInitCycle] = map[string]uint64{
		"roundInterval":  d.Cycle.RoundInterval,
		"validatorCount": d.Cycle.ValidatorCount,
	}
	data[FieldExtraData] = hexutil.Encode(d.ExtraData)
	data[FieldValidatorSet] = hexutil.Encode(d.ValidatorSet)
	data[FieldInitMembers] = hex.EncodeToString(d.MembersBytes) // no prefix, as GovHub embeds it
	data[FieldFingerprint] = d.Fingerprint.Hex()
	return data
}
