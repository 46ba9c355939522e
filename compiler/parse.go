package compiler

import (
	"fmt"
	"strings"

	"github.com/coredao-org/core-genesis-contract/types"
)

// RuntimeMarker precedes the runtime bytecode line inside a contract section.
const RuntimeMarker = "Binary of the runtime part:"

const sectionDelim = "======="

// SectionHeader returns the header line solc prints before a contract's output.
func SectionHeader(source, contract string) string {
	return fmt.Sprintf("%s %s:%s %s", sectionDelim, source, contract, sectionDelim)
}

func isSectionHeader(line string) bool {
	line = strings.TrimSpace(line)
	return len(line) > 2*len(sectionDelim) &&
		strings.HasPrefix(line, sectionDelim) &&
		strings.HasSuffix(line, sectionDelim)
}

// ExtractRuntime returns the runtime bytecode of contract from solc's
// --bin-runtime text output. Only the section headed by source:contract is
// searched; the first non-blank line after RuntimeMarker must be the code.
func ExtractRuntime(output, source, contract string) (string, error) {
	header := SectionHeader(source, contract)
	lines := strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")

	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == header {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return "", fmt.Errorf("%w: %q", ErrSectionNotFound, header)
	}

	section := lines[start:]
	for i, line := range section {
		if isSectionHeader(line) {
			section = section[:i]
			break
		}
	}

	for i, line := range section {
		if strings.TrimSpace(line) != RuntimeMarker {
			continue
		}
		for _, next := range section[i+1:] {
			code := strings.TrimSpace(next)
			if code == "" {
				continue
			}
			if err := types.ValidateBytecode(code); err != nil {
				return "", fmt.Errorf("%w: %v", ErrNoBytecode, err)
			}
			return code, nil
		}
		return "", ErrNoBytecode
	}
	return "", fmt.Errorf("%w in section %q", ErrMarkerNotFound, header)
}
