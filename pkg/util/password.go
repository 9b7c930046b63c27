package util

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost keeps a verification in the tens of milliseconds on server hardware.
const bcryptCost = 10

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// HashPassword hashes a plain text password with a fresh salt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword checks if a plain text password matches a hashed password.
// A malformed hash is reported as a mismatch.
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// BurnPasswordCheck runs a comparison against a throwaway hash so callers can
// reject unknown accounts in roughly the same time as a wrong password.
func BurnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("oms-dummy-password"), bcryptCost)
		if err == nil {
			dummyHash = string(h)
		}
	})
	if dummyHash != "" {
		_ = VerifyPassword(dummyHash, password)
	}
}
