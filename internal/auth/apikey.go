// Package auth implements optional API-key authentication. Accepted keys are
// configured as SHA-256 digests; plaintext keys never appear in config or
// logs.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateKey creates a new API key with the format: askgate-{env}-{32 random alphanumeric chars}
func GenerateKey(env string) (string, error) {
	random, err := randomString(32)
	if err != nil {
		return "", fmt.Errorf("generate random: %w", err)
	}
	return fmt.Sprintf("askgate-%s-%s", env, random), nil
}

// HashKey returns the SHA-256 hex digest of an API key.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

// KeyPrefix extracts a display-safe prefix from a key: askgate-{env}-{first 8 chars}
func KeyPrefix(key string) string {
	if len(key) < 16 {
		return key
	}
	dashes := 0
	for i, c := range key {
		if c == '-' {
			dashes++
			if dashes == 2 {
				end := i + 9 // dash + 8 chars
				if end > len(key) {
					end = len(key)
				}
				return key[:end]
			}
		}
	}
	return key[:16]
}

func randomString(n int) (string, error) {
	b := make([]byte, n)
	max := big.NewInt(int64(len(alphanumeric)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphanumeric[idx.Int64()]
	}
	return string(b), nil
}
