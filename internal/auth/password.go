package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"blog-api/internal/config"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash keeps the cost of a failed lookup close to a real comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("blog-api"), bcrypt.MinCost)

// HashPassword returns the bcrypt hash stored in the users config.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

// Authenticate checks username and password against the configured editors.
func Authenticate(users []config.UserEntry, username, password string) error {
	hash := dummyHash
	found := false
	for _, u := range users {
		if u.Username == username {
			hash, found = []byte(u.PasswordHash), true
			break
		}
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || !found {
		return ErrInvalidCredentials
	}
	return nil
}
