package validator

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coredao-org/core-genesis-contract/types"
)

const testConf = `# mainnet
0x4121F067B0F5135D77C29b2B329e8Cb1bd96C960,0xF8B18CeCC98D976ad253D38E4100a73D4e154726

0x7f461f8a1c35eDEcD6816e76Eb2E84eb661751eE, 0xF8B18CeCC98D976ad253D38E4100a73D4e154726
`

func TestReadConf(t *testing.T) {
	vals, err := ReadConf(strings.NewReader(testConf))
	if err != nil {
		t.Fatalf("ReadConf: %v", err)
	}
	if len(vals) != 2 {
		t.Fatalf("len(vals) = %d, want 2", len(vals))
	}
	if got := strings.ToLower(vals[1].ConsensusAddr.Hex()); got != "0x7f461f8a1c35edecd6816e76eb2e84eb661751ee" {
		t.Errorf("vals[1].ConsensusAddr = %s", got)
	}
	if vals[0].FeeAddr != vals[1].FeeAddr {
		t.Error("fee addresses should match")
	}
}

func TestReadConf_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"one field", "0x4121F067B0F5135D77C29b2B329e8Cb1bd96C960\n", nil},
		{"three fields", "0x4121F067B0F5135D77C29b2B329e8Cb1bd96C960,0x4121F067B0F5135D77C29b2B329e8Cb1bd96C960,x\n", nil},
		{"short consensus", "0x1234,0xF8B18CeCC98D976ad253D38E4100a73D4e154726\n", types.ErrInvalidAddress},
		{"long fee", "0x4121F067B0F5135D77C29b2B329e8Cb1bd96C960,0xF8B18CeCC98D976ad253D38E4100a73D4e15472600\n", types.ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadConf(strings.NewReader(tt.in))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "validators_devnet.conf")
	if err := os.WriteFile(path, []byte(testConf), 0o644); err != nil {
		t.Fatal(err)
	}

	vals, err := LoadConf(path)
	if err != nil {
		t.Fatalf("LoadConf: %v", err)
	}
	if len(vals) != 2 {
		t.Errorf("len(vals) = %d, want 2", len(vals))
	}

	if _, err := LoadConf(filepath.Join(t.TempDir(), "missing.conf")); err == nil {
		t.Error("expected error for missing file")
	}
}
