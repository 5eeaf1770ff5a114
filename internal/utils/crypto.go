// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"time"
)

const (
	alphanumeric      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	upperAlphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

func GenerateRandomString(length int) (string, error) {
	return randomFromCharset(length, alphanumeric)
}

func randomFromCharset(length int, charset string) (string, error) {
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GenerateOrderNumber returns a reference of the form ORD-20240131-X7K2QA.
func GenerateOrderNumber(now time.Time) (string, error) {
	suffix, err := randomFromCharset(6, upperAlphanumeric)
	if err != nil {
		return "", err
	}
	return "ORD-" + now.Format("20060102") + "-" + suffix, nil
}

// GenerateResetToken returns the raw token mailed to the user and the hash
// that is stored.
func GenerateResetToken() (token, hash string, err error) {
	token, err = GenerateRandomString(48)
	if err != nil {
		return "", "", err
	}
	return token, HashString(token), nil
}

func HashString(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}
