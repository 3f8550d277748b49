package security

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the user is unknown, so a failed login
// costs one bcrypt comparison whether or not the username exists.
var dummyHash = sync.OnceValue(func() string {
	hashed, err := bcrypt.GenerateFromPassword([]byte("unknown-user-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(hashed)
})

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func VerifyPassword(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

func DummyHash() string {
	return dummyHash()
}
