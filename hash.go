package custody

import "golang.org/x/crypto/sha3"

// Keccak256 returns the legacy Keccak-256 digest of the concatenated data.
// All committee and withdrawal identifiers are computed with it.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		_, _ = h.Write(b)
	}
	return h.Sum(nil)
}
