package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/shashiranjanraj/ayoo/config"
)

// cost reads BCRYPT_COST, clamped to what bcrypt accepts.
func cost() int {
	c := config.Int("BCRYPT_COST", bcrypt.DefaultCost)
	switch {
	case c < bcrypt.MinCost:
		return bcrypt.MinCost
	case c > bcrypt.MaxCost:
		return bcrypt.MaxCost
	}
	return c
}

// HashPassword returns a bcrypt hash of the plain-text password.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost())
	return string(hash), err
}

// CheckPassword reports whether plain matches hash.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
