// Package types defines the value types shared by the validator encoder,
// the compilation orchestrator and the genesis assembler.
package types

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Root is a 32-byte digest.
type Root [32]byte

func (r Root) IsZero() bool { return r == Root{} }

// Short returns a short hex representation of the root (first 4 bytes).
func (r Root) Short() string {
	return fmt.Sprintf("%x", r[:4])
}

// Hex returns the full lowercase hex encoding with a 0x prefix.
func (r Root) Hex() string {
	return "0x" + hex.EncodeToString(r[:])
}

// ParseAddress decodes a 20-byte address from hex (with or without 0x prefix).
// Anything that does not decode to exactly 20 bytes is rejected; the value is
// never padded or truncated.
func ParseAddress(s string) (common.Address, error) {
	raw := trimHexPrefix(strings.TrimSpace(s))
	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	if len(decoded) != common.AddressLength {
		return common.Address{}, fmt.Errorf("%w: %q is %d bytes, want %d",
			ErrInvalidAddress, s, len(decoded), common.AddressLength)
	}
	return common.BytesToAddress(decoded), nil
}

// ParseBalance parses a non-negative balance given in decimal, or in hex
// when prefixed with 0x.
func ParseBalance(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok || s == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBalance, s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidBalance, s)
	}
	return v, nil
}

// ValidateBytecode checks that code is a non-empty, even-length string of
// lowercase hex digits without a 0x prefix.
func ValidateBytecode(code string) error {
	if code == "" {
		return fmt.Errorf("%w: empty", ErrInvalidBytecode)
	}
	if len(code)%2 != 0 {
		return fmt.Errorf("%w: odd length %d", ErrInvalidBytecode, len(code))
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("%w: invalid character %q at offset %d", ErrInvalidBytecode, c, i)
		}
	}
	return nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
