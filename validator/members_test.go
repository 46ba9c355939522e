package validator

import (
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestEncodeMembers_ReferenceVectors(t *testing.T) {
	tests := []struct {
		name    string
		members []string
		want    string
	}{
		{
			name: "testnet",
			members: []string{
				"0x91fb7d8a73d2752830ea189737ea0e007f999b94",
				"0x48bfbc530e7c54c332b0fae07312fba7078b8789",
				"0xde60b7d0e6b758ca5dd8c61d377a2c5f1af51ec1",
			},
			want: "f83f" +
				"9491fb7d8a73d2752830ea189737ea0e007f999b94" +
				"9448bfbc530e7c54c332b0fae07312fba7078b8789" +
				"94de60b7d0e6b758ca5dd8c61d377a2c5f1af51ec1",
		},
		{
			name: "mainnet",
			members: []string{
				"0x548e6ACCE441866674E04ab84587af2D394034c0",
				"0xBb06D463bc143EeCC4A0cfa35e0346d5690fa9f6",
				"0xe2fe60f349C6e1a85caaD1d22200C289DA40DC12",
				"0xB198DB68258f06e79D415A0998Be7f9B38Ea7226",
				"0xdd173b85f306128F1B10D7d7219059c28c6D6c09",
			},
			want: "f869" +
				"94548e6acce441866674e04ab84587af2d394034c0" +
				"94bb06d463bc143eecc4a0cfa35e0346d5690fa9f6" +
				"94e2fe60f349c6e1a85caad1d22200c289da40dc12" +
				"94b198db68258f06e79d415a0998be7f9b38ea7226" +
				"94dd173b85f306128f1b10d7d7219059c28c6d6c09",
		},
		{
			name: "empty",
			want: "c0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addrs := make([]common.Address, len(tt.members))
			for i, m := range tt.members {
				addrs[i] = common.HexToAddress(m)
			}
			got, err := EncodeMembers(addrs)
			if err != nil {
				t.Fatalf("EncodeMembers: %v", err)
			}
			if hex.EncodeToString(got) != tt.want {
				t.Errorf("EncodeMembers = %x, want %s", got, tt.want)
			}

			back, err := DecodeMembers(got)
			if err != nil {
				t.Fatalf("DecodeMembers: %v", err)
			}
			if len(back) != len(addrs) {
				t.Fatalf("DecodeMembers returned %d members, want %d", len(back), len(addrs))
			}
			for i := range addrs {
				if back[i] != addrs[i] {
					t.Errorf("member %d = %s, want %s", i, back[i].Hex(), addrs[i].Hex())
				}
			}
		})
	}
}

func TestDecodeMembers_Malformed(t *testing.T) {
	for _, in := range []string{"", "f8", "c2820102"} {
		data, _ := hex.DecodeString(in)
		if _, err := DecodeMembers(data); err == nil {
			t.Errorf("DecodeMembers(%q) expected error", in)
		}
	}
}
