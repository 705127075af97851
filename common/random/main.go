package random

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// GetUUID generates a UUID and returns it as a string without hyphens.
func GetUUID() string {
	code := uuid.New().String()
	code = strings.Replace(code, "-", "", -1)
	return code
}

const keyChars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GetRandomString generates a random string of the specified length
// using a mix of numbers and letters (both uppercase and lowercase).
// It uses crypto/rand for secure random number generation.
func GetRandomString(length int) string {
	key := make([]byte, length)
	for i := range length {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(keyChars))))
		if err != nil {
			// This is unlikely to result in an error, especially on Linux, so it's safe to keep as is.
			panic(err)
		}
		key[i] = keyChars[n.Int64()]
	}
	return string(key)
}
