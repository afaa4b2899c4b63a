package indexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseHash validates a 32-byte 0x-prefixed transaction hash.
func ParseHash(input string) (string, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", fmt.Errorf("hash is required")
	}
	data, err := hexutil.Decode(input)
	if err != nil {
		return "", fmt.Errorf("invalid hash: %s", input)
	}
	if len(data) != 32 {
		return "", fmt.Errorf("invalid hash length: %s", input)
	}
	return input, nil
}

// ParseVersion parses an optional ledger version; empty input yields nil.
func ParseVersion(input string) (*uint64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	version, err := strconv.ParseUint(input, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid version: %s", input)
	}
	return &version, nil
}
