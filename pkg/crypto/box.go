// Package crypto provides symmetric encryption for sensitive columns.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/nacl/secretbox"
)

var ErrDecrypt = errors.New("cannot decrypt value")

// Box seals and opens short strings with a secret derived from the
// configured key. Output is base64 so it stores in a text column.
type Box struct {
	key [32]byte
}

// NewBox derives the sealing key from an arbitrary-length secret
func NewBox(secret string) *Box {
	return &Box{key: sha256.Sum256([]byte(secret))}
}

// Encrypt seals a plaintext string
func (b *Box) Encrypt(plaintext string) (string, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &b.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt
func (b *Box) Decrypt(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrDecrypt
	}
	if len(sealed) < 24 {
		return "", ErrDecrypt
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	plain, ok := secretbox.Open(nil, sealed[24:], &nonce, &b.key)
	if !ok {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
