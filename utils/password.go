package utils

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt will accept.
const MaxPasswordBytes = 72

// HashPassword returns the salted bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares the bcrypt hashed password with its possible plaintext equivalent.
// A malformed hash simply fails the comparison.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var (
	dummyHash     []byte
	dummyHashOnce sync.Once
)

func loadDummyHash() []byte {
	dummyHashOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("minipost-dummy-password"), bcrypt.DefaultCost)
		if err != nil {
			Sugar.Errorw("dummy password hash unavailable, unknown-account logins skip bcrypt", "error", err)
			return
		}
		dummyHash = hash
	})
	return dummyHash
}

// CheckPasswordAgainstNothing burns the same bcrypt work as CheckPassword and
// always reports false. Login uses it for unknown accounts so that response
// time does not reveal whether an email is registered.
func CheckPasswordAgainstNothing(password string) bool {
	_ = bcrypt.CompareHashAndPassword(loadDummyHash(), []byte(password))
	return false
}
