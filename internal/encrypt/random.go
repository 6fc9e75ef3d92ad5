package encrypt

import (
	"crypto/rand"
	"math/big"
)

const uppercaseAlphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomString returns an uppercase alphanumeric string, used for
// order references the storefront did not supply.
func GenerateRandomString(length int) (string, error) {
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		randomIndex, err := rand.Int(rand.Reader, big.NewInt(int64(len(uppercaseAlphanumeric))))
		if err != nil {
			return "", err
		}
		result[i] = uppercaseAlphanumeric[randomIndex.Int64()]
	}
	return string(result), nil
}
