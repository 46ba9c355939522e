package validator

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/coredao-org/core-genesis-contract/types"
)

// filled returns an address with every byte set to b.
func filled(b byte) common.Address {
	var a common.Address
	for i := range a {
		a[i] = b
	}
	return a
}

// makeTestValidators creates n validators with distinct addresses.
func makeTestValidators(n int) []types.ValidatorRecord {
	vals := make([]types.ValidatorRecord, n)
	for i := range vals {
		vals[i] = types.ValidatorRecord{
			ConsensusAddr: filled(byte(2*i + 1)),
			FeeAddr:       filled(byte(2*i + 2)),
		}
	}
	return vals
}

func mustParse(t *testing.T, s string) common.Address {
	t.Helper()
	addr, err := types.ParseAddress(s)
	if err != nil {
		t.Fatalf("ParseAddress(%q): %v", s, err)
	}
	return addr
}

func TestExtraData_TwoValidators(t *testing.T) {
	vals := []types.ValidatorRecord{
		{ConsensusAddr: filled(0xAA), FeeAddr: filled(0xBB)},
		{ConsensusAddr: filled(0xCC), FeeAddr: filled(0xDD)},
	}

	got, err := ExtraData(vals)
	if err != nil {
		t.Fatalf("ExtraData: %v", err)
	}

	var want []byte
	want = append(want, make([]byte, 32)...)
	want = append(want, bytes.Repeat([]byte{0xAA}, 20)...)
	want = append(want, bytes.Repeat([]byte{0xCC}, 20)...)
	want = append(want, make([]byte, 65)...)

	if !bytes.Equal(got, want) {
		t.Errorf("ExtraData = %x, want %x", got, want)
	}
}

func TestExtraData_Length(t *testing.T) {
	for n := 1; n <= 21; n++ {
		got, err := ExtraData(makeTestValidators(n))
		if err != nil {
			t.Fatalf("ExtraData(%d validators): %v", n, err)
		}
		if want := 32 + 20*n + 65; len(got) != want || ExtraDataLen(n) != want {
			t.Errorf("len(ExtraData(%d validators)) = %d, want %d", n, len(got), want)
		}
	}
}

func TestExtraData_FeeAddressIgnored(t *testing.T) {
	a := makeTestValidators(3)
	b := makeTestValidators(3)
	b[1].FeeAddr = filled(0xEE)

	extraA, _ := ExtraData(a)
	extraB, _ := ExtraData(b)
	if !bytes.Equal(extraA, extraB) {
		t.Error("fee address should not affect extra data")
	}
}

func TestEncode_Empty(t *testing.T) {
	if _, err := Encode(nil); !errors.Is(err, types.ErrEmptyValidatorSet) {
		t.Errorf("Encode(nil) error = %v, want ErrEmptyValidatorSet", err)
	}
	if _, err := EncodeValidatorSet([]types.ValidatorRecord{}); !errors.Is(err, types.ErrEmptyValidatorSet) {
		t.Errorf("EncodeValidatorSet(empty) error = %v, want ErrEmptyValidatorSet", err)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	vals := makeTestValidators(7)

	first, err := Encode(vals)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	second, err := Encode(vals)
	if err != nil {
		t.Fatalf("Encode second time: %v", err)
	}

	if !bytes.Equal(first.ExtraData, second.ExtraData) {
		t.Error("ExtraData is not deterministic")
	}
	if !bytes.Equal(first.ValidatorSet, second.ValidatorSet) {
		t.Error("ValidatorSet is not deterministic")
	}
}

func TestEncodeValidatorSet_TwoValidators(t *testing.T) {
	vals := []types.ValidatorRecord{
		{ConsensusAddr: filled(0xAA), FeeAddr: filled(0xBB)},
		{ConsensusAddr: filled(0xCC), FeeAddr: filled(0xDD)},
	}

	got, err := EncodeValidatorSet(vals)
	if err != nil {
		t.Fatalf("EncodeValidatorSet: %v", err)
	}

	// Outer list payload is 2 * 43 = 86 bytes (> 55), so it takes the long form.
	want := "f856" +
		"ea" + "94" + strings.Repeat("aa", 20) + "94" + strings.Repeat("bb", 20) +
		"ea" + "94" + strings.Repeat("cc", 20) + "94" + strings.Repeat("dd", 20)
	if hex.EncodeToString(got) != want {
		t.Errorf("EncodeValidatorSet = %x, want %s", got, want)
	}
}

func TestEncodeValidatorSet_SingleValidator(t *testing.T) {
	got, err := EncodeValidatorSet(makeTestValidators(1))
	if err != nil {
		t.Fatalf("EncodeValidatorSet: %v", err)
	}
	// One pair: 43 bytes, short list form.
	if got[0] != 0xeb || got[1] != 0xea || len(got) != 44 {
		t.Errorf("EncodeValidatorSet prefix = %x (len %d), want eb ea ... (len 44)", got[:2], len(got))
	}
}

func TestEncodeValidatorSet_ReferenceVector(t *testing.T) {
	fee := "0xF8B18CeCC98D976ad253D38E4100a73D4e154726"
	vals := []types.ValidatorRecord{
		{ConsensusAddr: mustParse(t, "0x4121F067B0F5135D77C29b2B329e8Cb1bd96C960"), FeeAddr: mustParse(t, fee)},
		{ConsensusAddr: mustParse(t, "0x7f461f8a1c35eDEcD6816e76Eb2E84eb661751eE"), FeeAddr: mustParse(t, fee)},
		{ConsensusAddr: mustParse(t, "0xfD806AB93db5742944B7B50Ce759E5EeE5f6FE50"), FeeAddr: mustParse(t, fee)},
	}

	got, err := EncodeValidatorSet(vals)
	if err != nil {
		t.Fatalf("EncodeValidatorSet: %v", err)
	}

	want := "f881" +
		"ea944121f067b0f5135d77c29b2b329e8cb1bd96c96094f8b18cecc98d976ad253d38e4100a73d4e154726" +
		"ea947f461f8a1c35edecd6816e76eb2e84eb661751ee94f8b18cecc98d976ad253d38e4100a73d4e154726" +
		"ea94fd806ab93db5742944b7b50ce759e5eee5f6fe5094f8b18cecc98d976ad253d38e4100a73d4e154726"
	if hex.EncodeToString(got) != want {
		t.Errorf("EncodeValidatorSet =\n%x\nwant\n%s", got, want)
	}
}

func TestEncodeValidatorSet_RoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 3, 15, 21} {
		vals := makeTestValidators(n)

		enc, err := EncodeValidatorSet(vals)
		if err != nil {
			t.Fatalf("EncodeValidatorSet(%d): %v", n, err)
		}
		decoded, err := DecodeValidatorSet(enc)
		if err != nil {
			t.Fatalf("DecodeValidatorSet(%d): %v", n, err)
		}

		if len(decoded) != len(vals) {
			t.Fatalf("len(decoded) = %d, want %d", len(decoded), len(vals))
		}
		for i := range vals {
			if decoded[i] != vals[i] {
				t.Errorf("decoded[%d] = %+v, want %+v", i, decoded[i], vals[i])
			}
		}
	}
}

func TestDecodeValidatorSet_Malformed(t *testing.T) {
	if _, err := DecodeValidatorSet([]byte{0xf8, 0x56, 0xea}); err == nil {
		t.Error("expected error for truncated input")
	}
}
