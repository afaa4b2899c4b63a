package launchpad

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const maxAddressBytes = 32

// ParseAddress validates an account address and returns it lower-cased.
// Short forms such as 0x1 are accepted.
func ParseAddress(input string) (string, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if !strings.HasPrefix(input, "0x") {
		return "", fmt.Errorf("invalid address: %s", input)
	}
	digits := input[2:]
	if digits == "" {
		return "", fmt.Errorf("invalid address: %s", input)
	}
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}
	data, err := hexutil.Decode("0x" + digits)
	if err != nil {
		return "", fmt.Errorf("invalid address: %s", input)
	}
	if len(data) > maxAddressBytes {
		return "", fmt.Errorf("invalid address length: %s", input)
	}
	return input, nil
}
