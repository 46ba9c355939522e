package validator

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/coredao-org/core-genesis-contract/types"
)

// LoadConf reads a validators conf file. See ReadConf.
func LoadConf(path string) ([]types.ValidatorRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open validators conf: %w", err)
	}
	defer f.Close()

	vals, err := ReadConf(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vals, nil
}

// ReadConf parses one "consensusAddr,feeAddr" pair per line. Blank lines and
// lines starting with '#' are skipped; order is preserved.
func ReadConf(r io.Reader) ([]types.ValidatorRecord, error) {
	var vals []types.ValidatorRecord
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, ",")
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: want 2 comma-separated fields, got %d", line, len(fields))
		}
		consensus, err := types.ParseAddress(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d consensus address: %w", line, err)
		}
		fee, err := types.ParseAddress(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d fee address: %w", line, err)
		}
		vals = append(vals, types.ValidatorRecord{ConsensusAddr: consensus, FeeAddr: fee})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read validators conf: %w", err)
	}
	return vals, nil
}
