package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// GenerateMovementReference returns a globally unique movement reference of
// the form "WT-" followed by 12 uppercase hex characters.
func GenerateMovementReference() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return "WT-" + strings.ToUpper(hex.EncodeToString(b)), nil
}

// GenerateOTPCode returns a numeric one-time code of the given length using
// a cryptographic source.
func GenerateOTPCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("otp length must be positive")
	}
	var sb strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to read random digit: %w", err)
		}
		sb.WriteString(n.String())
	}
	return sb.String(), nil
}
