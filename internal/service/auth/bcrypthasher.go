package auth

import (
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// Bcrypt password hasher
// Will be used as default one if user not provide it's own
type BcryptHasher struct{}

func (h BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hash), err
}

// Compare is constant time, bcrypt does that itself
func (h BcryptHasher) Compare(hashedPassword string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
