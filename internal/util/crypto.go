package util

import (
	"encoding/hex"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/crypto/sha3"
)

func GenerateNChar(n int) (string, error) {
	id, err := gonanoid.New(n)
	if err != nil {
		return "", err
	}
	return id, nil
}

// HashToken returns the hex SHA3-256 digest stored in place of a signing token.
func HashToken(token string) string {
	sum := sha3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// NewSigningToken mints an opaque token of n url-safe characters and its hash.
func NewSigningToken(n int) (token string, hash string, err error) {
	token, err = GenerateNChar(n)
	if err != nil {
		return "", "", err
	}
	return token, HashToken(token), nil
}
