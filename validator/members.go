package validator

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// EncodeMembers RLP-encodes the governance member list [addr_1, addr_2, ...]
// in the given order. An empty list encodes as 0xc0.
func EncodeMembers(members []common.Address) ([]byte, error) {
	if members == nil {
		members = []common.Address{}
	}
	enc, err := rlp.EncodeToBytes(members)
	if err != nil {
		return nil, fmt.Errorf("rlp encode members: %w", err)
	}
	return enc, nil
}

// DecodeMembers is the inverse of EncodeMembers.
func DecodeMembers(data []byte) ([]common.Address, error) {
	var members []common.Address
	if err := rlp.DecodeBytes(data, &members); err != nil {
		return nil, fmt.Errorf("rlp decode members: %w", err)
	}
	return members, nil
}
