package pkg

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"unsafe"
)

// BytesToString converts bytes slice to a string without extra allocation
func BytesToString(buf []byte) string {
	return *(*string)(unsafe.Pointer(&buf))
}

// GenerateRandomBytes returns securely generated random bytes.
// It will return an error if the system's secure random
// number generator fails to function correctly, in which
// case the caller should not continue
func GenerateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	// Note that err == nil only if we read len(b) bytes.
	if err != nil {
		return nil, err
	}

	return b, nil
}

var ErrInvalidLength = errors.New("length must be greater than 0")

// GenerateRandomString returns a URL-safe random string of exactly n characters.
func GenerateRandomString(n int) (string, error) {
	if n <= 0 {
		return "", ErrInvalidLength
	}
	b, err := GenerateRandomBytes(base64.RawURLEncoding.DecodedLen(n) + 1)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
