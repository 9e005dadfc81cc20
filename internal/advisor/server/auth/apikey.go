package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashAPIKey hashes an operator-issued API key using bcrypt, so the
// plaintext key never needs to be stored alongside the client record it
// authenticates. Rejects keys longer than 72 bytes (bcrypt's maximum).
func HashAPIKey(apiKey string) (string, error) {
	if len(apiKey) > 72 {
		return "", fmt.Errorf("api key exceeds maximum length of 72 bytes")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckAPIKey compares a plain text API key with a hashed API key.
// Returns true if the key matches the hash, false otherwise.
func CheckAPIKey(apiKey, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(apiKey))
	return err == nil
}
