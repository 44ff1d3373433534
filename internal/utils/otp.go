package utils

import (
	"crypto/rand"
	"math/big"
)

const otpCharset = "0123456789"

// GenerateOTP returns a random numeric code of the given length. Digits are
// drawn uniformly from crypto/rand.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	max := big.NewInt(int64(len(otpCharset)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = otpCharset[n.Int64()]
	}
	return string(b), nil
}
