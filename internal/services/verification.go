package services

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"time"
)

const (
	// VerifyCodeLength is the number of digits in a verification code.
	VerifyCodeLength = 6
	// VerifyCodeTTL is how long a freshly issued code stays valid.
	VerifyCodeTTL = time.Hour
)

// GenerateVerifyCode returns a uniformly drawn 6-digit numeric code.
func GenerateVerifyCode() (string, error) {
	code := make([]byte, VerifyCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code[i] = byte(n.Int64()) + '0'
	}
	return string(code), nil
}

// VerifyCodeExpiry returns the expiry for a code issued now.
func VerifyCodeExpiry(now time.Time) time.Time {
	return now.Add(VerifyCodeTTL)
}

// CodesMatch compares a submitted code against the stored one in constant
// time.
func CodesMatch(stored, submitted string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
