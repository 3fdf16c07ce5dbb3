package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost for stored admin passwords.
const PasswordCost = 12

// MinPasswordLen is enforced when an admin password is set.
const MinPasswordLen = 8

var ErrWeakPassword = errors.New("password must be at least 8 characters")

// dummyHash is compared against when the email is unknown so both failure
// paths take about the same time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("prepboard-dummy-password"), PasswordCost)

// HashPassword returns a bcrypt hash of pw.
func HashPassword(pw string) (string, error) {
	if len(pw) < MinPasswordLen {
		return "", ErrWeakPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether pw matches hash. An empty hash burns a
// comparison and returns false.
func CheckPassword(hash, pw string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(pw))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
