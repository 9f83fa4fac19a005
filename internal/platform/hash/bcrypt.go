// Package hash provides password hashing implementations.
package hash

import "golang.org/x/crypto/bcrypt"

// BcryptHasher hashes and verifies passwords using bcrypt.
// Verification is constant-time by construction.
type BcryptHasher struct{}

// NewBcryptHasher はBcryptHasherの新しいインスタンスを生成します。
func NewBcryptHasher() BcryptHasher {
	return BcryptHasher{}
}

// Hash returns the bcrypt hash of a raw password using the default cost.
func (BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare verifies a raw password against a stored bcrypt hash.
func (BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
