package securitycodes

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode returns six random alphanumeric characters with a dash after
// the third, e.g. "D3K-Z9A".
func GenerateCode() (string, error) {
	buf := make([]byte, 0, 7)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < 6; i++ {
		if i == 3 {
			buf = append(buf, '-')
		}
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random code: %w", err)
		}
		buf = append(buf, codeAlphabet[n.Int64()])
	}
	return string(buf), nil
}
