// Package address finds token contract addresses in free text.
package address

import (
	"regexp"
	"strings"

	"github.com/mr-tron/base58"
)

// ContentAddressLength is the decoded size of a Solana public key.
const ContentAddressLength = 32

var contractAddressPattern = regexp.MustCompile(`(?i)\b(0x[a-f0-9]{40}|[1-9A-HJ-NP-Za-km-z]{32,44})\b`)

// FirstContentAddress returns the first whitespace-delimited token in text
// that base58-decodes to exactly 32 bytes. Earlier tokens win over later ones
// regardless of how plausible either looks.
func FirstContentAddress(text string) (string, bool) {
	for _, token := range strings.Fields(text) {
		decoded, err := base58.Decode(token)
		if err != nil {
			continue
		}
		if len(decoded) == ContentAddressLength {
			return token, true
		}
	}
	return "", false
}

// HasContractAddress reports whether text contains something shaped like an
// EVM (0x + 40 hex) or base58 (32-44 chars) contract address.
func HasContractAddress(text string) bool {
	return contractAddressPattern.MatchString(text)
}
